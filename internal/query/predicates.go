package query

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// predicate evaluates one filter dimension against one row. A returned error
// means the predicate cannot be decided for that row; the evaluator treats
// that as false and excludes the row, never failing the query.
type predicate func(row *Row) (bool, error)

// buildPredicates translates the filter map into the conjunctive predicate
// set for the spec's domain. Unknown filter keys are ignored. A due-date
// comparison whose literal cannot be normalized is skipped entirely (it does
// not filter); the skip is logged so the asymmetry is observable.
func (e *Evaluator) buildPredicates(spec *Spec) []predicate {
	switch spec.Domain {
	case types.DomainTask:
		return e.taskPredicates(spec)
	case types.DomainProject:
		return e.projectPredicates(spec)
	case types.DomainTimeLog:
		return e.timeLogPredicates(spec)
	}
	return nil
}

func (e *Evaluator) taskPredicates(spec *Spec) []predicate {
	var preds []predicate
	now := e.now()

	if v, ok := stringFilter(spec, "project"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.EqualFold(r.Task.Project, v), nil
		})
	}
	if v, ok := stringFilter(spec, "status"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.EqualFold(r.Task.Status, v), nil
		})
	}

	for key, cmp := range map[string]func(p, n int) bool{
		"p_le": func(p, n int) bool { return p <= n },
		"p_ge": func(p, n int) bool { return p >= n },
		"p_lt": func(p, n int) bool { return p < n },
		"p_gt": func(p, n int) bool { return p > n },
		"p_eq": func(p, n int) bool { return p == n },
	} {
		if n, ok := intFilter(spec, key); ok {
			cmp := cmp
			preds = append(preds, func(r *Row) (bool, error) {
				if r.Task.Priority == 0 {
					return false, fmt.Errorf("task %d has no priority", r.Task.ID)
				}
				return cmp(r.Task.Priority, n), nil
			})
		}
	}
	if raw, ok := spec.Filters["p"]; ok {
		if pr, ok := raw.(PriorityRange); ok {
			preds = append(preds, func(r *Row) (bool, error) {
				if r.Task.Priority == 0 {
					return false, fmt.Errorf("task %d has no priority", r.Task.ID)
				}
				return r.Task.Priority >= pr.Min && r.Task.Priority <= pr.Max, nil
			})
		}
	}

	if b, ok := boolFilter(spec, "overdue"); ok && b {
		today := schema.DateOnly(now)
		preds = append(preds, func(r *Row) (bool, error) {
			due, err := rowDate(r.Task.Due, now)
			if err != nil {
				return false, err
			}
			return due.Before(today), nil
		})
	}

	for key, cmp := range map[string]func(d, n time.Time) bool{
		"due":    func(d, n time.Time) bool { return d.Equal(n) },
		"due_gt": func(d, n time.Time) bool { return d.After(n) },
		"due_lt": func(d, n time.Time) bool { return d.Before(n) },
		"due_ge": func(d, n time.Time) bool { return !d.Before(n) },
		"due_le": func(d, n time.Time) bool { return !d.After(n) },
	} {
		raw, ok := stringFilter(spec, key)
		if !ok {
			continue
		}
		ref, ok := e.normalizeDateFilter(spec.Domain, types.ArgDue, raw)
		if !ok {
			e.log.Warn("due filter literal not normalizable, predicate skipped",
				zap.String("filter", key), zap.String("literal", raw))
			continue
		}
		cmp := cmp
		preds = append(preds, func(r *Row) (bool, error) {
			due, err := rowDate(r.Task.Due, now)
			if err != nil {
				return false, err
			}
			return cmp(due, ref), nil
		})
	}

	if tags, ok := listFilter(spec, "tags_in"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			for _, tag := range tags {
				if !r.Task.HasTag(tag) {
					return false, nil
				}
			}
			return true, nil
		})
	}
	if tags, ok := listFilter(spec, "tags_out"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			for _, tag := range tags {
				if r.Task.HasTag(tag) {
					return false, nil
				}
			}
			return true, nil
		})
	}

	if text, ok := stringFilter(spec, "text"); ok {
		needle := strings.ToLower(text)
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.Contains(strings.ToLower(r.Task.Title), needle), nil
		})
	}
	return preds
}

func (e *Evaluator) projectPredicates(spec *Spec) []predicate {
	var preds []predicate

	if text, ok := stringFilter(spec, "text"); ok {
		needle := strings.ToLower(text)
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.Contains(strings.ToLower(r.Project.Name), needle) ||
				strings.Contains(strings.ToLower(r.Project.Description), needle), nil
		})
	}
	if b, ok := boolFilter(spec, "archived"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			return r.Project.Archived == b, nil
		})
	}
	return preds
}

func (e *Evaluator) timeLogPredicates(spec *Spec) []predicate {
	var preds []predicate
	now := e.now()

	if v, ok := stringFilter(spec, "project"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.EqualFold(r.TimeLog.Project, v), nil
		})
	}
	if raw, ok := stringFilter(spec, "date"); ok {
		if start, end, err := schema.ParseDateRange(raw, now); err == nil {
			preds = append(preds, func(r *Row) (bool, error) {
				d, derr := rowDate(r.TimeLog.Date, now)
				if derr != nil {
					return false, derr
				}
				return !d.Before(start) && !d.After(end), nil
			})
		} else {
			e.log.Warn("date filter literal not normalizable, predicate skipped",
				zap.String("literal", raw))
		}
	}
	if n, ok := intFilter(spec, "task"); ok {
		preds = append(preds, func(r *Row) (bool, error) {
			return r.TimeLog.TaskID == n, nil
		})
	}
	if text, ok := stringFilter(spec, "text"); ok {
		needle := strings.ToLower(text)
		preds = append(preds, func(r *Row) (bool, error) {
			return strings.Contains(strings.ToLower(r.TimeLog.Notes), needle), nil
		})
	}
	return preds
}

// normalizeDateFilter resolves a date filter literal: the domain's field
// schema hook first, then the minimal fallback of "today" or an ISO date.
func (e *Evaluator) normalizeDateFilter(domain string, field types.ArgName, raw string) (time.Time, bool) {
	now := e.now()
	if fs, ok := e.schemas.Field(domain, field); ok && fs.Normalize != nil {
		if v, err := fs.Normalize(types.StringValue(raw), now); err == nil && v.Kind == types.KindDate {
			return v.Date, true
		}
	}
	if strings.EqualFold(raw, "today") {
		return schema.DateOnly(now), true
	}
	if t, err := time.ParseInLocation("2006-01-02", raw, now.Location()); err == nil {
		return t, true
	}
	return time.Time{}, false
}

// rowDate parses a stored date literal from a row. Errors propagate to the
// caller so the evaluator can exclude just that row.
func rowDate(raw string, now time.Time) (time.Time, error) {
	if raw == "" {
		return time.Time{}, fmt.Errorf("no date set")
	}
	return schema.ParseDateLiteral(raw, now)
}

// --- filter value coercion -------------------------------------------------
//
// Filter values arrive loosely typed (parsed tokens or handler-built values).
// Coercion failures mean the filter is ignored, matching the "unknown keys
// are ignored" contract.

func stringFilter(spec *Spec, key string) (string, bool) {
	raw, ok := spec.Filters[key]
	if !ok {
		return "", false
	}
	s, ok := raw.(string)
	return s, ok
}

func intFilter(spec *Spec, key string) (int, bool) {
	raw, ok := spec.Filters[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int:
		return v, true
	case string:
		n, err := strconv.Atoi(v)
		if err != nil {
			return 0, false
		}
		return n, true
	}
	return 0, false
}

func boolFilter(spec *Spec, key string) (bool, bool) {
	raw, ok := spec.Filters[key]
	if !ok {
		return false, false
	}
	switch v := raw.(type) {
	case bool:
		return v, true
	case string:
		b, err := schema.ParseBoolLiteral(v)
		if err != nil {
			return false, false
		}
		return b, true
	}
	return false, false
}

func listFilter(spec *Spec, key string) ([]string, bool) {
	raw, ok := spec.Filters[key]
	if !ok {
		return nil, false
	}
	switch v := raw.(type) {
	case []string:
		return v, len(v) > 0
	case string:
		list := splitList(v)
		return list, len(list) > 0
	}
	return nil, false
}
