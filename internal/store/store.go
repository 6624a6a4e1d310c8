// Package store persists taskdeck records in SQLite. One store serves all
// three domains. The query engine reads through FetchRows, which returns a
// snapshot of freshly scanned rows; writes go through the CRUD methods used
// by the command handlers. The store is the only component that touches disk.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"go.uber.org/zap"

	"taskdeck/internal/logging"
	"taskdeck/internal/query"
	"taskdeck/internal/types"
)

// Store wraps the SQLite database.
type Store struct {
	db   *sql.DB
	path string
	log  *zap.Logger
}

// Open initializes the database at the given path, creating the schema on
// first use.
func Open(path string) (*Store, error) {
	log := logging.Get(logging.CategoryStore)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		log.Debug("failed to set busy_timeout", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		log.Debug("failed to set journal_mode=WAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		log.Debug("failed to set synchronous=NORMAL", zap.Error(err))
	}
	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		log.Debug("failed to enable foreign_keys", zap.Error(err))
	}

	s := &Store{db: db, path: path, log: log}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	log.Info("store opened", zap.String("path", path))
	return s, nil
}

// Close releases the database handle.
func (s *Store) Close() error { return s.db.Close() }

// =============================================================================
// TASKS
// =============================================================================

// AddTask inserts a task and returns its id.
func (s *Store) AddTask(t types.Task) (int, error) {
	if t.Status == "" {
		t.Status = types.StatusPending
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO tasks (title, project, priority, due, tags, status, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		t.Title, t.Project, t.Priority, t.Due, joinTags(t.Tags), t.Status,
		t.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert task: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// GetTask fetches one task by id.
func (s *Store) GetTask(id int) (*types.Task, error) {
	row := s.db.QueryRow(`
		SELECT id, title, project, priority, due, tags, status, created_at, done_at
		FROM tasks WHERE id = ?`, id)
	t, err := scanTask(row)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("task %d not found", id)
	}
	if err != nil {
		return nil, err
	}
	return t, nil
}

// UpdateTask rewrites a task's mutable fields.
func (s *Store) UpdateTask(t types.Task) error {
	var doneAt any
	if t.DoneAt != nil {
		doneAt = t.DoneAt.Format(time.RFC3339)
	}
	res, err := s.db.Exec(`
		UPDATE tasks
		SET title = ?, project = ?, priority = ?, due = ?, tags = ?, status = ?, done_at = ?
		WHERE id = ?`,
		t.Title, t.Project, t.Priority, t.Due, joinTags(t.Tags), t.Status, doneAt, t.ID)
	if err != nil {
		return fmt.Errorf("failed to update task %d: %w", t.ID, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("task %d not found", t.ID)
	}
	return nil
}

// CompleteTasks marks the given tasks completed in one transaction; an error
// rolls the whole batch back. Already-completed and missing ids are counted
// separately from completions.
func (s *Store) CompleteTasks(ids []int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now().Format(time.RFC3339)
	completed := 0
	for _, id := range ids {
		res, err := tx.Exec(`
			UPDATE tasks SET status = ?, done_at = ?
			WHERE id = ? AND status != ?`,
			types.StatusCompleted, now, id, types.StatusCompleted)
		if err != nil {
			return 0, fmt.Errorf("failed to complete task %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			completed++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit completions: %w", err)
	}
	return completed, nil
}

// DeleteTasks removes the given tasks in one transaction and returns how many
// existed.
func (s *Store) DeleteTasks(ids []int) (int, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	deleted := 0
	for _, id := range ids {
		res, err := tx.Exec(`DELETE FROM tasks WHERE id = ?`, id)
		if err != nil {
			return 0, fmt.Errorf("failed to delete task %d: %w", id, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			deleted++
		}
	}
	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit deletions: %w", err)
	}
	return deleted, nil
}

// Tasks returns all tasks ordered by id.
func (s *Store) Tasks() ([]types.Task, error) {
	rows, err := s.db.Query(`
		SELECT id, title, project, priority, due, tags, status, created_at, done_at
		FROM tasks ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	defer rows.Close()

	var out []types.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *t)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanTask(r rowScanner) (*types.Task, error) {
	var t types.Task
	var tags, createdAt string
	var doneAt sql.NullString
	if err := r.Scan(&t.ID, &t.Title, &t.Project, &t.Priority, &t.Due,
		&tags, &t.Status, &createdAt, &doneAt); err != nil {
		return nil, err
	}
	t.Tags = splitTags(tags)
	t.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	if doneAt.Valid {
		if done, err := time.Parse(time.RFC3339, doneAt.String); err == nil {
			t.DoneAt = &done
		}
	}
	return &t, nil
}

// =============================================================================
// PROJECTS
// =============================================================================

// AddProject inserts a project and returns its id. Names are unique.
func (s *Store) AddProject(p types.Project) (int, error) {
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	res, err := s.db.Exec(`
		INSERT INTO projects (name, description, archived, created_at)
		VALUES (?, ?, ?, ?)`,
		p.Name, p.Description, p.Archived, p.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return 0, fmt.Errorf("failed to insert project %q: %w", p.Name, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	return int(id), nil
}

// SetProjectArchived flips a project's archived flag by name.
func (s *Store) SetProjectArchived(name string, archived bool) error {
	res, err := s.db.Exec(`UPDATE projects SET archived = ? WHERE name = ?`, archived, name)
	if err != nil {
		return fmt.Errorf("failed to archive project %q: %w", name, err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return fmt.Errorf("project %q not found", name)
	}
	return nil
}

// Projects returns all projects ordered by name.
func (s *Store) Projects() ([]types.Project, error) {
	rows, err := s.db.Query(`
		SELECT id, name, description, archived, created_at
		FROM projects ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query projects: %w", err)
	}
	defer rows.Close()

	var out []types.Project
	for rows.Next() {
		var p types.Project
		var createdAt string
		if err := rows.Scan(&p.ID, &p.Name, &p.Description, &p.Archived, &createdAt); err != nil {
			return nil, err
		}
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// ProjectNames returns the names of all non-archived projects, for greedy
// project-reference resolution.
func (s *Store) ProjectNames() ([]string, error) {
	rows, err := s.db.Query(`SELECT name FROM projects WHERE archived = 0 ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to query project names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, rows.Err()
}

// =============================================================================
// TIME LOGS
// =============================================================================

// AddTimeLog inserts a time-log entry and returns its id.
func (s *Store) AddTimeLog(l types.TimeLogEntry) (string, error) {
	if l.ID == "" {
		l.ID = uuid.NewString()
	}
	if l.CreatedAt.IsZero() {
		l.CreatedAt = time.Now()
	}
	_, err := s.db.Exec(`
		INSERT INTO time_logs (id, project, task_id, date, minutes, notes, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		l.ID, l.Project, l.TaskID, l.Date, l.Minutes, l.Notes,
		l.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return "", fmt.Errorf("failed to insert time log: %w", err)
	}
	return l.ID, nil
}

// TimeLogs returns all entries ordered by date then creation.
func (s *Store) TimeLogs() ([]types.TimeLogEntry, error) {
	rows, err := s.db.Query(`
		SELECT id, project, task_id, date, minutes, notes, created_at
		FROM time_logs ORDER BY date, created_at`)
	if err != nil {
		return nil, fmt.Errorf("failed to query time logs: %w", err)
	}
	defer rows.Close()

	var out []types.TimeLogEntry
	for rows.Next() {
		var l types.TimeLogEntry
		var createdAt string
		if err := rows.Scan(&l.ID, &l.Project, &l.TaskID, &l.Date, &l.Minutes,
			&l.Notes, &createdAt); err != nil {
			return nil, err
		}
		l.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, l)
	}
	return out, rows.Err()
}

// =============================================================================
// EVALUATOR SNAPSHOT
// =============================================================================

// FetchRows implements query.RowSource. Each call scans fresh rows so an
// evaluation works on its own snapshot. An unknown domain yields an empty
// set, not an error.
func (s *Store) FetchRows(domain string) ([]query.Row, error) {
	switch domain {
	case types.DomainTask:
		tasks, err := s.Tasks()
		if err != nil {
			return nil, err
		}
		rows := make([]query.Row, len(tasks))
		for i := range tasks {
			rows[i] = query.Row{Task: &tasks[i]}
		}
		return rows, nil
	case types.DomainProject:
		projects, err := s.Projects()
		if err != nil {
			return nil, err
		}
		rows := make([]query.Row, len(projects))
		for i := range projects {
			rows[i] = query.Row{Project: &projects[i]}
		}
		return rows, nil
	case types.DomainTimeLog:
		logs, err := s.TimeLogs()
		if err != nil {
			return nil, err
		}
		rows := make([]query.Row, len(logs))
		for i := range logs {
			rows[i] = query.Row{TimeLog: &logs[i]}
		}
		return rows, nil
	}
	s.log.Debug("fetch for unknown domain", zap.String("domain", domain))
	return nil, nil
}

func joinTags(tags []string) string { return strings.Join(tags, ",") }

func splitTags(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(s, ",")
}
