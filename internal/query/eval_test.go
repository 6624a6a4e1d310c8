package query

import (
	"testing"
	"time"

	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// fakeSource serves canned rows per domain.
type fakeSource map[string][]Row

func (f fakeSource) FetchRows(domain string) ([]Row, error) {
	return f[domain], nil
}

func taskRow(t types.Task) Row {
	c := t
	return Row{Task: &c}
}

func fixedClock(y int, m time.Month, d int) func() time.Time {
	return func() time.Time {
		return time.Date(y, m, d, 12, 0, 0, 0, time.UTC)
	}
}

func newTestEvaluator(source RowSource) *Evaluator {
	e := NewEvaluator(source, schema.NewRegistry(), nil)
	e.SetClock(fixedClock(2024, time.January, 3))
	return e
}

func resultIDs(res *Result) []int {
	ids := make([]int, 0, len(res.Rows))
	for i := range res.Rows {
		ids = append(ids, res.Rows[i].Task.ID)
	}
	return ids
}

func TestEvaluateFilterConjunction(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Status: "pending", Priority: 1, Due: "2024-01-05"}),
			taskRow(types.Task{ID: 2, Status: "pending", Priority: 3, Due: "2024-01-01"}),
			taskRow(types.Task{ID: 3, Status: "completed", Priority: 1, Due: "2024-01-02"}),
		},
	}
	e := newTestEvaluator(source)

	spec := ParseSpec("task", []string{"p_le=2", "status=pending"})
	res, err := e.Evaluate(spec)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("result ids = %v, want [1]", got)
	}
}

func TestEvaluateSortStability(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Due: "2024-01-02"}),
			taskRow(types.Task{ID: 2, Due: "2024-01-01"}),
			taskRow(types.Task{ID: 3, Due: "2024-01-01"}),
			taskRow(types.Task{ID: 4, Due: "2024-01-01"}),
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("task", []string{"sort=due:asc"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	want := []int{2, 3, 4, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result ids = %v, want %v (equal keys must keep order)", got, want)
		}
	}
}

func TestEvaluateMultiKeySort(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Priority: 2, Due: "2024-01-01"}),
			taskRow(types.Task{ID: 2, Priority: 1, Due: "2024-01-02"}),
			taskRow(types.Task{ID: 3, Priority: 1, Due: "2024-01-01"}),
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("task", []string{"sort=priority:asc,due:desc"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	want := []int{2, 3, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result ids = %v, want %v", got, want)
		}
	}
}

func TestEvaluateTagPredicates(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Tags: []string{"a", "b"}}),
			taskRow(types.Task{ID: 2, Tags: []string{"a"}}),
			taskRow(types.Task{ID: 3, Tags: []string{"a", "b", "c"}}),
		},
	}
	e := newTestEvaluator(source)

	// tags_in requires a superset, tags_out excludes any overlap
	res, err := e.Evaluate(ParseSpec("task", []string{"tags_in=a,b", "tags_out=c"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("result ids = %v, want [1]", got)
	}
}

func TestEvaluateUnparsableRowDateExcludedByDatePredicatesOnly(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Status: "pending", Due: "2024-01-02"}),
			taskRow(types.Task{ID: 2, Status: "pending", Due: "garbage"}),
		},
	}
	e := newTestEvaluator(source)

	// a due predicate cannot be decided for row 2, so it is excluded there
	res, err := e.Evaluate(ParseSpec("task", []string{"due_lt=2024-02-01"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("due filter result = %v, want [1]", got)
	}

	// a predicate that does not touch the date still sees the row
	res, err = e.Evaluate(ParseSpec("task", []string{"status=pending"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(res); len(got) != 2 {
		t.Errorf("status filter result = %v, want both rows", got)
	}
}

func TestEvaluateUnnormalizableDueLiteralSkipsPredicate(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Due: "2024-01-02"}),
			taskRow(types.Task{ID: 2, Due: "2024-06-01"}),
		},
	}
	e := newTestEvaluator(source)

	// the filter literal itself is unparsable, so the predicate is dropped
	// and filters nothing
	res, err := e.Evaluate(ParseSpec("task", []string{"due_lt=nonsense"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := resultIDs(res); len(got) != 2 {
		t.Errorf("result = %v, want both rows", got)
	}
}

func TestEvaluateOverdue(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Due: "2024-01-01"}),
			taskRow(types.Task{ID: 2, Due: "2024-01-03"}),
			taskRow(types.Task{ID: 3, Due: "2024-01-09"}),
			taskRow(types.Task{ID: 4}),
		},
	}
	e := newTestEvaluator(source) // today is 2024-01-03

	res, err := e.Evaluate(ParseSpec("task", []string{"overdue"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("result ids = %v, want [1]", got)
	}
}

func TestEvaluateUnsetPriorityExcludedByPriorityPredicates(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Priority: 2}),
			taskRow(types.Task{ID: 2}), // no priority set
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("task", []string{"p_le=3"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	if len(got) != 1 || got[0] != 1 {
		t.Errorf("result ids = %v, want [1]", got)
	}
}

func TestEvaluateUnknownDomainYieldsEmptySet(t *testing.T) {
	e := newTestEvaluator(fakeSource{})
	res, err := e.Evaluate(ParseSpec("widget", nil))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 0 {
		t.Errorf("rows = %d, want none", len(res.Rows))
	}
}

func TestEvaluateRelationErrorYieldsNilField(t *testing.T) {
	// no project rows exist, so the project_row relation fails per row; the
	// query still succeeds and the field is nil
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Project: "Ghost"}),
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("task", []string{"with=project_row"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 1 {
		t.Fatalf("rows = %d", len(res.Rows))
	}
	v, ok := res.Rows[0].Computed["project_row"]
	if !ok {
		t.Fatal("project_row not attached")
	}
	if v != nil {
		t.Errorf("project_row = %v, want nil", v)
	}
}

func TestEvaluateUnknownResolverSkipped(t *testing.T) {
	source := fakeSource{
		"task": {taskRow(types.Task{ID: 1})},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("task", []string{"with=nonexistent"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, ok := res.Rows[0].Computed["nonexistent"]; ok {
		t.Error("unknown resolver should be skipped, not attached")
	}
}

func TestEvaluateMetrics(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Project: "Acme",
				CreatedAt: time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)}),
		},
		"timelog": {
			{TimeLog: &types.TimeLogEntry{ID: "a", TaskID: 1, Minutes: 30, Date: "2024-01-02"}},
			{TimeLog: &types.TimeLogEntry{ID: "b", TaskID: 1, Minutes: 45, Date: "2024-01-02"}},
			{TimeLog: &types.TimeLogEntry{ID: "c", TaskID: 9, Minutes: 60, Date: "2024-01-02"}},
		},
	}
	e := newTestEvaluator(source) // today is 2024-01-03

	res, err := e.Evaluate(ParseSpec("task", []string{"metrics=logged_minutes,age_days"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	row := res.Rows[0]
	if got := row.Computed["logged_minutes"]; got != 75 {
		t.Errorf("logged_minutes = %v, want 75", got)
	}
	if got := row.Computed["age_days"]; got != 2 {
		t.Errorf("age_days = %v, want 2", got)
	}
}

func TestEvaluateTimeLogDayTotal(t *testing.T) {
	source := fakeSource{
		"timelog": {
			{TimeLog: &types.TimeLogEntry{ID: "a", Date: "2024-01-02", Minutes: 30}},
			{TimeLog: &types.TimeLogEntry{ID: "b", Date: "2024-01-02", Minutes: 15}},
			{TimeLog: &types.TimeLogEntry{ID: "c", Date: "2024-01-03", Minutes: 60}},
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("timelog", []string{"metrics=day_total"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := res.Rows[0].Computed["day_total"]; got != 45 {
		t.Errorf("day_total = %v, want 45", got)
	}
	if got := res.Rows[2].Computed["day_total"]; got != 60 {
		t.Errorf("day_total = %v, want 60", got)
	}
}

func TestEvaluateGroupPreSortThenExplicitSort(t *testing.T) {
	source := fakeSource{
		"task": {
			taskRow(types.Task{ID: 1, Project: "b", Priority: 2}),
			taskRow(types.Task{ID: 2, Project: "a", Priority: 2}),
			taskRow(types.Task{ID: 3, Project: "b", Priority: 1}),
			taskRow(types.Task{ID: 4, Project: "a", Priority: 1}),
		},
	}
	e := newTestEvaluator(source)

	// the explicit sort dominates; the group pre-sort decides ties
	res, err := e.Evaluate(ParseSpec("task", []string{"group=project", "sort=priority:asc"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := resultIDs(res)
	want := []int{4, 3, 2, 1}
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("result ids = %v, want %v", got, want)
		}
	}
}

func TestEvaluateDateRangeFilter(t *testing.T) {
	source := fakeSource{
		"timelog": {
			{TimeLog: &types.TimeLogEntry{ID: "a", Date: "2024-01-01"}},
			{TimeLog: &types.TimeLogEntry{ID: "b", Date: "2024-01-05"}},
			{TimeLog: &types.TimeLogEntry{ID: "c", Date: "2024-02-01"}},
		},
	}
	e := newTestEvaluator(source)

	res, err := e.Evaluate(ParseSpec("timelog", []string{"date=2024-01-01..2024-01-31"}))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(res.Rows) != 2 {
		t.Fatalf("rows = %d, want 2", len(res.Rows))
	}
	if res.Rows[0].TimeLog.ID != "a" || res.Rows[1].TimeLog.ID != "b" {
		t.Errorf("rows = %s, %s", res.Rows[0].TimeLog.ID, res.Rows[1].TimeLog.ID)
	}
}
