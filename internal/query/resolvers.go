package query

import (
	"fmt"
	"time"

	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// ResolverFunc computes a derived field for one row given the full row set of
// the same domain. Errors are contained by the evaluator: the field becomes
// nil for that row and the query continues.
type ResolverFunc func(row *Row, all []Row) (any, error)

// ResolverTable maps domain then resolver name to its function. Built once at
// startup and read-only afterwards.
type ResolverTable map[string]map[string]ResolverFunc

// Resolve returns the named resolver for a domain.
func (t ResolverTable) Resolve(domain, name string) (ResolverFunc, bool) {
	byName, ok := t[domain]
	if !ok {
		return nil, false
	}
	f, ok := byName[name]
	return f, ok
}

// DefaultRelations builds the relation resolver table. Cross-domain lookups
// go through the same snapshot source the evaluator uses.
func DefaultRelations(source RowSource) ResolverTable {
	return ResolverTable{
		types.DomainTask: {
			"project_row": func(r *Row, _ []Row) (any, error) {
				return findProject(source, r.Task.Project)
			},
		},
		types.DomainProject: {
			"tasks": func(r *Row, _ []Row) (any, error) {
				rows, err := source.FetchRows(types.DomainTask)
				if err != nil {
					return nil, err
				}
				var open []*types.Task
				for i := range rows {
					t := rows[i].Task
					if t != nil && t.Project == r.Project.Name && t.Status == types.StatusPending {
						open = append(open, t)
					}
				}
				return open, nil
			},
		},
		types.DomainTimeLog: {
			"project_row": func(r *Row, _ []Row) (any, error) {
				return findProject(source, r.TimeLog.Project)
			},
			"task_title": func(r *Row, _ []Row) (any, error) {
				if r.TimeLog.TaskID == 0 {
					return nil, fmt.Errorf("entry %s is not linked to a task", r.TimeLog.ID)
				}
				rows, err := source.FetchRows(types.DomainTask)
				if err != nil {
					return nil, err
				}
				for i := range rows {
					if t := rows[i].Task; t != nil && t.ID == r.TimeLog.TaskID {
						return t.Title, nil
					}
				}
				return nil, fmt.Errorf("task %d not found", r.TimeLog.TaskID)
			},
		},
	}
}

// DefaultMetrics builds the metric resolver table.
func DefaultMetrics(source RowSource, now func() time.Time) ResolverTable {
	return ResolverTable{
		types.DomainTask: {
			"logged_minutes": func(r *Row, _ []Row) (any, error) {
				return sumMinutes(source, func(l *types.TimeLogEntry) bool {
					return l.TaskID == r.Task.ID
				})
			},
			"age_days": func(r *Row, _ []Row) (any, error) {
				if r.Task.CreatedAt.IsZero() {
					return nil, fmt.Errorf("task %d has no creation time", r.Task.ID)
				}
				days := int(schema.DateOnly(now()).Sub(schema.DateOnly(r.Task.CreatedAt)).Hours() / 24)
				return days, nil
			},
		},
		types.DomainProject: {
			"open_tasks": func(r *Row, _ []Row) (any, error) {
				rows, err := source.FetchRows(types.DomainTask)
				if err != nil {
					return nil, err
				}
				count := 0
				for i := range rows {
					if t := rows[i].Task; t != nil && t.Project == r.Project.Name && t.Status == types.StatusPending {
						count++
					}
				}
				return count, nil
			},
			"logged_minutes": func(r *Row, _ []Row) (any, error) {
				return sumMinutes(source, func(l *types.TimeLogEntry) bool {
					return l.Project == r.Project.Name
				})
			},
		},
		types.DomainTimeLog: {
			"day_total": func(r *Row, all []Row) (any, error) {
				total := 0
				for i := range all {
					if l := all[i].TimeLog; l != nil && l.Date == r.TimeLog.Date {
						total += l.Minutes
					}
				}
				return total, nil
			},
		},
	}
}

func findProject(source RowSource, name string) (*types.Project, error) {
	rows, err := source.FetchRows(types.DomainProject)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if p := rows[i].Project; p != nil && p.Name == name {
			return p, nil
		}
	}
	return nil, fmt.Errorf("project %q not found", name)
}

func sumMinutes(source RowSource, match func(*types.TimeLogEntry) bool) (int, error) {
	rows, err := source.FetchRows(types.DomainTimeLog)
	if err != nil {
		return 0, err
	}
	total := 0
	for i := range rows {
		if l := rows[i].TimeLog; l != nil && match(l) {
			total += l.Minutes
		}
	}
	return total, nil
}
