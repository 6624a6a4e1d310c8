// Package types provides shared type definitions used across taskdeck packages.
// This package exists to break import cycles between the command, schema, query
// and store packages. Types in this package are foundational data structures
// with no complex dependencies.
package types

import (
	"fmt"
	"strings"
	"time"
)

// =============================================================================
// DOMAINS
// =============================================================================

// Domain names. "shortcut" and "help" are transient domains used only while a
// command context is being resolved; they never correspond to stored rows.
const (
	DomainTask     = "task"
	DomainProject  = "project"
	DomainTimeLog  = "timelog"
	DomainShortcut = "shortcut"
	DomainHelp     = "help"
)

// =============================================================================
// ARGUMENT VALUES
// =============================================================================

// ArgName identifies a recognized command argument. The set is closed per
// domain; unrecognized tokens become free text, never ad-hoc argument keys.
type ArgName string

const (
	ArgProject     ArgName = "project"
	ArgPriority    ArgName = "priority"
	ArgDue         ArgName = "due"
	ArgTags        ArgName = "tags"
	ArgRemoveTags  ArgName = "removeTags"
	ArgIDs         ArgName = "ids"
	ArgTaskID      ArgName = "taskId"
	ArgDuration    ArgName = "duration"
	ArgInteractive ArgName = "interactive"
	ArgDate        ArgName = "date"
	ArgProjName    ArgName = "name"
	ArgArchived    ArgName = "archived"
	ArgStatus      ArgName = "status"
)

// ValueKind discriminates ArgValue.
type ValueKind int

const (
	KindString ValueKind = iota
	KindInt
	KindBool
	KindDate
	KindDateRange
	KindStringList
	KindIDSet
	KindDuration // minutes
)

// ArgValue is a closed tagged union for argument values. Exactly one of the
// payload fields is meaningful, selected by Kind. A freshly parsed argument
// starts life as KindString and is replaced in place by field normalization.
type ArgValue struct {
	Kind    ValueKind
	Str     string
	Int     int
	Bool    bool
	Date    time.Time
	DateEnd time.Time // range end, KindDateRange only
	List    []string
	IDs     []int
	Minutes int
}

func StringValue(s string) ArgValue  { return ArgValue{Kind: KindString, Str: s} }
func IntValue(n int) ArgValue        { return ArgValue{Kind: KindInt, Int: n} }
func BoolValue(b bool) ArgValue      { return ArgValue{Kind: KindBool, Bool: b} }
func DateValue(t time.Time) ArgValue { return ArgValue{Kind: KindDate, Date: t} }

func DateRangeValue(start, end time.Time) ArgValue {
	return ArgValue{Kind: KindDateRange, Date: start, DateEnd: end}
}

func ListValue(items []string) ArgValue { return ArgValue{Kind: KindStringList, List: items} }
func IDSetValue(ids []int) ArgValue     { return ArgValue{Kind: KindIDSet, IDs: ids} }
func DurationValue(min int) ArgValue    { return ArgValue{Kind: KindDuration, Minutes: min} }

// String renders the value for diagnostics and grid cells.
func (v ArgValue) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindInt:
		return fmt.Sprintf("%d", v.Int)
	case KindBool:
		return fmt.Sprintf("%t", v.Bool)
	case KindDate:
		return v.Date.Format("2006-01-02")
	case KindDateRange:
		return v.Date.Format("2006-01-02") + ".." + v.DateEnd.Format("2006-01-02")
	case KindStringList:
		return strings.Join(v.List, ",")
	case KindIDSet:
		parts := make([]string, len(v.IDs))
		for i, id := range v.IDs {
			parts[i] = fmt.Sprintf("%d", id)
		}
		return strings.Join(parts, ",")
	case KindDuration:
		return fmt.Sprintf("%dm", v.Minutes)
	}
	return ""
}

// =============================================================================
// ARGUMENT MAP
// =============================================================================

// ArgMap is an insertion-ordered map of recognized arguments.
type ArgMap struct {
	keys   []ArgName
	values map[ArgName]ArgValue
}

func NewArgMap() *ArgMap {
	return &ArgMap{values: make(map[ArgName]ArgValue)}
}

// Set inserts or replaces a value. Insertion order is preserved; replacing an
// existing key keeps its original position.
func (m *ArgMap) Set(name ArgName, v ArgValue) {
	if _, ok := m.values[name]; !ok {
		m.keys = append(m.keys, name)
	}
	m.values[name] = v
}

func (m *ArgMap) Get(name ArgName) (ArgValue, bool) {
	v, ok := m.values[name]
	return v, ok
}

// AppendList appends an item to a string-list argument, creating it if absent.
func (m *ArgMap) AppendList(name ArgName, item string) {
	v, ok := m.values[name]
	if !ok || v.Kind != KindStringList {
		v = ListValue(nil)
	}
	v.List = append(v.List, item)
	m.Set(name, v)
}

// Keys returns argument names in insertion order.
func (m *ArgMap) Keys() []ArgName {
	out := make([]ArgName, len(m.keys))
	copy(out, m.keys)
	return out
}

func (m *ArgMap) Len() int { return len(m.keys) }

// =============================================================================
// COMMAND CONTEXT
// =============================================================================

// CommandContext is the fully parsed intent of one input line. Once built,
// Domain and Action are non-empty and correspond to a registered handler;
// resolution fails before a context is returned otherwise.
type CommandContext struct {
	Domain   string
	Action   string
	Args     *ArgMap
	FreeText []string
	Raw      string
}

// FreeTextJoined returns the free-text remainder as a single string.
func (c *CommandContext) FreeTextJoined() string {
	return strings.Join(c.FreeText, " ")
}

// =============================================================================
// ROWS
// =============================================================================

// Task statuses.
const (
	StatusPending   = "pending"
	StatusCompleted = "completed"
)

// Task is a stored task row. Due is kept as the raw date literal exactly as
// entered; predicates that compare dates parse it per row so that one bad
// value cannot poison a whole query.
type Task struct {
	ID        int
	Title     string
	Project   string
	Priority  int // 1..3, 0 = unset
	Due       string
	Tags      []string
	Status    string
	CreatedAt time.Time
	DoneAt    *time.Time
}

// HasTag reports whether the task carries the given tag.
func (t *Task) HasTag(tag string) bool {
	for _, have := range t.Tags {
		if have == tag {
			return true
		}
	}
	return false
}

// Project is a stored project row.
type Project struct {
	ID          int
	Name        string
	Description string
	Archived    bool
	CreatedAt   time.Time
}

// TimeLogEntry is a stored time-log row. Date is the raw yyyy-mm-dd literal,
// parsed per row like Task.Due.
type TimeLogEntry struct {
	ID        string // uuid
	Project   string
	TaskID    int // 0 = unlinked
	Date      string
	Minutes   int
	Notes     string
	CreatedAt time.Time
}
