// Package query implements the query specification and evaluation engine:
// filtering, relation and metric attachment, grouping and sorting of record
// rows fetched from the store. Evaluation is read-only with respect to source
// rows; computed fields live on the result wrapper, never on the record.
package query

import (
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/types"
)

// Row wraps exactly one domain record for the duration of a single
// evaluation. Computed holds relation and metric fields attached by the
// pipeline; it shadows base fields of the same name.
type Row struct {
	Task     *types.Task
	Project  *types.Project
	TimeLog  *types.TimeLogEntry
	Computed map[string]any
}

// SetComputed attaches a computed field, overwriting any previous value.
func (r *Row) SetComputed(name string, v any) {
	if r.Computed == nil {
		r.Computed = make(map[string]any)
	}
	r.Computed[name] = v
}

// Field returns the named field value. Computed fields win over base fields.
func (r *Row) Field(name string) (any, bool) {
	if v, ok := r.Computed[name]; ok {
		return v, true
	}
	switch {
	case r.Task != nil:
		return taskField(r.Task, name)
	case r.Project != nil:
		return projectField(r.Project, name)
	case r.TimeLog != nil:
		return timeLogField(r.TimeLog, name)
	}
	return nil, false
}

func taskField(t *types.Task, name string) (any, bool) {
	switch name {
	case "id":
		return t.ID, true
	case "title":
		return t.Title, true
	case "project":
		return t.Project, true
	case "priority":
		return t.Priority, true
	case "due":
		return t.Due, true
	case "tags":
		return strings.Join(t.Tags, ","), true
	case "status":
		return t.Status, true
	case "created":
		return t.CreatedAt, true
	}
	return nil, false
}

func projectField(p *types.Project, name string) (any, bool) {
	switch name {
	case "id":
		return p.ID, true
	case "name":
		return p.Name, true
	case "description":
		return p.Description, true
	case "archived":
		return p.Archived, true
	case "created":
		return p.CreatedAt, true
	}
	return nil, false
}

func timeLogField(l *types.TimeLogEntry, name string) (any, bool) {
	switch name {
	case "id":
		return l.ID, true
	case "project":
		return l.Project, true
	case "task_id":
		return l.TaskID, true
	case "date":
		return l.Date, true
	case "minutes":
		return l.Minutes, true
	case "notes":
		return l.Notes, true
	case "created":
		return l.CreatedAt, true
	}
	return nil, false
}

// compareValues orders two field values for sorting. Nil sorts first; values
// of the same comparable type use their natural order; everything else falls
// back to string comparison so a sort never panics.
func compareValues(a, b any) int {
	if a == nil && b == nil {
		return 0
	}
	if a == nil {
		return -1
	}
	if b == nil {
		return 1
	}
	switch av := a.(type) {
	case int:
		if bv, ok := b.(int); ok {
			switch {
			case av < bv:
				return -1
			case av > bv:
				return 1
			}
			return 0
		}
	case string:
		if bv, ok := b.(string); ok {
			return strings.Compare(av, bv)
		}
	case bool:
		if bv, ok := b.(bool); ok {
			switch {
			case !av && bv:
				return -1
			case av && !bv:
				return 1
			}
			return 0
		}
	case time.Time:
		if bv, ok := b.(time.Time); ok {
			switch {
			case av.Before(bv):
				return -1
			case av.After(bv):
				return 1
			}
			return 0
		}
	}
	return strings.Compare(fmt.Sprint(a), fmt.Sprint(b))
}
