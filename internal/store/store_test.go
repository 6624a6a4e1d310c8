package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/types"
)

func testStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestTaskRoundTrip(t *testing.T) {
	s := testStore(t)

	id, err := s.AddTask(types.Task{
		Title:    "Fix the login flow",
		Project:  "Acme",
		Priority: 1,
		Due:      "2026-09-01",
		Tags:     []string{"auth", "urgent"},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, id)

	got, err := s.GetTask(id)
	require.NoError(t, err)
	assert.Equal(t, "Fix the login flow", got.Title)
	assert.Equal(t, "Acme", got.Project)
	assert.Equal(t, 1, got.Priority)
	assert.Equal(t, "2026-09-01", got.Due)
	assert.Equal(t, []string{"auth", "urgent"}, got.Tags)
	assert.Equal(t, types.StatusPending, got.Status)
	assert.False(t, got.CreatedAt.IsZero())
	assert.Nil(t, got.DoneAt)
}

func TestGetTaskNotFound(t *testing.T) {
	s := testStore(t)
	_, err := s.GetTask(42)
	assert.Error(t, err)
}

func TestUpdateTask(t *testing.T) {
	s := testStore(t)

	id, err := s.AddTask(types.Task{Title: "before"})
	require.NoError(t, err)

	task, err := s.GetTask(id)
	require.NoError(t, err)
	task.Title = "after"
	task.Tags = []string{"x"}
	require.NoError(t, s.UpdateTask(*task))

	got, err := s.GetTask(id)
	require.NoError(t, err)
	assert.Equal(t, "after", got.Title)
	assert.Equal(t, []string{"x"}, got.Tags)

	missing := *task
	missing.ID = 99
	assert.Error(t, s.UpdateTask(missing))
}

func TestCompleteTasks(t *testing.T) {
	s := testStore(t)

	id1, err := s.AddTask(types.Task{Title: "one"})
	require.NoError(t, err)
	id2, err := s.AddTask(types.Task{Title: "two"})
	require.NoError(t, err)

	n, err := s.CompleteTasks([]int{id1, id2, 99})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	got, err := s.GetTask(id1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, got.Status)
	assert.NotNil(t, got.DoneAt)

	// completing again touches nothing
	n, err = s.CompleteTasks([]int{id1})
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}

func TestCompleteTasksBatchCommits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")
	s, err := Open(path)
	require.NoError(t, err)

	id1, err := s.AddTask(types.Task{Title: "one"})
	require.NoError(t, err)
	id2, err := s.AddTask(types.Task{Title: "two"})
	require.NoError(t, err)

	// the whole batch is one transaction; a missing id in the middle does not
	// disturb the rest
	n, err := s.CompleteTasks([]int{id1, 99, id2})
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	for _, id := range []int{id1, id2} {
		got, err := s.GetTask(id)
		require.NoError(t, err)
		assert.Equal(t, types.StatusCompleted, got.Status)
	}
}

func TestDeleteTasks(t *testing.T) {
	s := testStore(t)

	id, err := s.AddTask(types.Task{Title: "doomed"})
	require.NoError(t, err)

	n, err := s.DeleteTasks([]int{id, 99})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetTask(id)
	assert.Error(t, err)
}

func TestProjects(t *testing.T) {
	s := testStore(t)

	_, err := s.AddProject(types.Project{Name: "Beta", Description: "second"})
	require.NoError(t, err)
	_, err = s.AddProject(types.Project{Name: "Alpha"})
	require.NoError(t, err)

	// duplicate names are rejected
	_, err = s.AddProject(types.Project{Name: "Alpha"})
	assert.Error(t, err)

	all, err := s.Projects()
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "Alpha", all[0].Name)
	assert.Equal(t, "Beta", all[1].Name)

	require.NoError(t, s.SetProjectArchived("Beta", true))
	assert.Error(t, s.SetProjectArchived("Missing", true))

	names, err := s.ProjectNames()
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha"}, names)
}

func TestTimeLogs(t *testing.T) {
	s := testStore(t)

	id, err := s.AddTimeLog(types.TimeLogEntry{
		Project: "Acme",
		TaskID:  3,
		Date:    "2026-08-26",
		Minutes: 45,
		Notes:   "sketching",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, id)

	logs, err := s.TimeLogs()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, id, logs[0].ID)
	assert.Equal(t, "Acme", logs[0].Project)
	assert.Equal(t, 3, logs[0].TaskID)
	assert.Equal(t, 45, logs[0].Minutes)
}

func TestFetchRows(t *testing.T) {
	s := testStore(t)

	_, err := s.AddTask(types.Task{Title: "a task"})
	require.NoError(t, err)
	_, err = s.AddProject(types.Project{Name: "Acme"})
	require.NoError(t, err)

	rows, err := s.FetchRows(types.DomainTask)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "a task", rows[0].Task.Title)

	rows, err = s.FetchRows(types.DomainProject)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Acme", rows[0].Project.Name)

	// unknown domains yield an empty set, not an error
	rows, err = s.FetchRows("widget")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestOpenReopens(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.db")

	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.AddTask(types.Task{Title: "persisted"})
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	got, err := s.GetTask(id)
	require.NoError(t, err)
	assert.Equal(t, "persisted", got.Title)
}
