// Package schema holds the per-domain field schemas: for every recognized
// argument a normalization hook (raw string to canonical value) and a
// validation hook (canonical value to ok or error). The registry is built
// once at startup and read-only afterwards.
//
// Normalization is soft: a failing hook leaves the raw value in place and the
// parse continues. Validation is the hard failure point.
package schema

import (
	"fmt"
	"time"

	"taskdeck/internal/types"
)

// FieldSchema pairs the two hooks for one (domain, field). Either hook may be
// nil; a nil Normalize passes the value through, a nil Validate accepts.
type FieldSchema struct {
	Normalize func(v types.ArgValue, now time.Time) (types.ArgValue, error)
	Validate  func(v types.ArgValue) error
}

// Registry maps (domain, field) to its schema.
type Registry struct {
	byDomain map[string]map[types.ArgName]FieldSchema
}

// Field returns the schema for (domain, name), if registered.
func (r *Registry) Field(domain string, name types.ArgName) (FieldSchema, bool) {
	fields, ok := r.byDomain[domain]
	if !ok {
		return FieldSchema{}, false
	}
	fs, ok := fields[name]
	return fs, ok
}

// Fields returns the schema map for a domain; nil if the domain is unknown.
func (r *Registry) Fields(domain string) map[types.ArgName]FieldSchema {
	return r.byDomain[domain]
}

// NewRegistry builds the full field-schema registry for all domains.
func NewRegistry() *Registry {
	r := &Registry{byDomain: make(map[string]map[types.ArgName]FieldSchema)}
	r.byDomain[types.DomainTask] = taskFields()
	r.byDomain[types.DomainProject] = projectFields()
	r.byDomain[types.DomainTimeLog] = timeLogFields()
	// Shortcuts operate on task arguments.
	r.byDomain[types.DomainShortcut] = taskFields()
	return r
}

func normalizeDate(v types.ArgValue, now time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	t, err := ParseDateLiteral(v.Str, now)
	if err != nil {
		return v, err
	}
	return types.DateValue(t), nil
}

func normalizeDateRange(v types.ArgValue, now time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	start, end, err := ParseDateRange(v.Str, now)
	if err != nil {
		return v, err
	}
	if start.Equal(end) {
		return types.DateValue(start), nil
	}
	return types.DateRangeValue(start, end), nil
}

func normalizePriority(v types.ArgValue, _ time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	p, err := ParsePriority(v.Str)
	if err != nil {
		return v, err
	}
	return types.IntValue(p), nil
}

func normalizeDuration(v types.ArgValue, _ time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	min, err := ParseDurationMinutes(v.Str)
	if err != nil {
		return v, err
	}
	return types.DurationValue(min), nil
}

func normalizeIDSet(v types.ArgValue, _ time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	ids, err := ParseIDSet(v.Str)
	if err != nil {
		return v, err
	}
	return types.IDSetValue(ids), nil
}

func normalizeBool(v types.ArgValue, _ time.Time) (types.ArgValue, error) {
	if v.Kind != types.KindString {
		return v, nil
	}
	b, err := ParseBoolLiteral(v.Str)
	if err != nil {
		return v, err
	}
	return types.BoolValue(b), nil
}

func validateNonEmptyString(v types.ArgValue) error {
	if v.Kind == types.KindString && v.Str == "" {
		return fmt.Errorf("value must not be empty")
	}
	return nil
}

func validateDate(v types.ArgValue) error {
	if v.Kind != types.KindDate && v.Kind != types.KindDateRange {
		return fmt.Errorf("unrecognized date %q", v.String())
	}
	return nil
}

func validatePriority(v types.ArgValue) error {
	if v.Kind != types.KindInt {
		return fmt.Errorf("unrecognized priority %q", v.String())
	}
	if v.Int < 1 || v.Int > 3 {
		return fmt.Errorf("priority out of range: %d", v.Int)
	}
	return nil
}

func validateDuration(v types.ArgValue) error {
	if v.Kind != types.KindDuration {
		return fmt.Errorf("unrecognized duration %q", v.String())
	}
	return nil
}

func validateIDSet(v types.ArgValue) error {
	if v.Kind != types.KindIDSet || len(v.IDs) == 0 {
		return fmt.Errorf("unrecognized id set %q", v.String())
	}
	return nil
}

func validateTags(v types.ArgValue) error {
	if v.Kind != types.KindStringList {
		return fmt.Errorf("expected tag list, got %q", v.String())
	}
	for _, tag := range v.List {
		if !ValidTag(tag) {
			return fmt.Errorf("invalid tag %q", tag)
		}
	}
	return nil
}

func taskFields() map[types.ArgName]FieldSchema {
	return map[types.ArgName]FieldSchema{
		types.ArgProject:    {Validate: validateNonEmptyString},
		types.ArgPriority:   {Normalize: normalizePriority, Validate: validatePriority},
		types.ArgDue:        {Normalize: normalizeDate, Validate: validateDate},
		types.ArgTags:       {Validate: validateTags},
		types.ArgRemoveTags: {Validate: validateTags},
		types.ArgIDs:        {Normalize: normalizeIDSet, Validate: validateIDSet},
		types.ArgTaskID:     {},
		types.ArgStatus:     {Validate: validateNonEmptyString},
		types.ArgDuration:   {Normalize: normalizeDuration, Validate: validateDuration},
	}
}

func projectFields() map[types.ArgName]FieldSchema {
	return map[types.ArgName]FieldSchema{
		types.ArgProjName: {Validate: validateNonEmptyString},
		types.ArgArchived: {Normalize: normalizeBool},
	}
}

func timeLogFields() map[types.ArgName]FieldSchema {
	return map[types.ArgName]FieldSchema{
		types.ArgProject:  {Validate: validateNonEmptyString},
		types.ArgDate:     {Normalize: normalizeDateRange, Validate: validateDate},
		// due:<date> doubles as the entry date on timelog add
		types.ArgDue:      {Normalize: normalizeDate, Validate: validateDate},
		types.ArgTaskID:   {},
		types.ArgDuration: {Normalize: normalizeDuration, Validate: validateDuration},
	}
}
