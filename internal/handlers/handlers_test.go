package handlers

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskdeck/internal/command"
	"taskdeck/internal/query"
	"taskdeck/internal/schema"
	"taskdeck/internal/store"
	"taskdeck/internal/types"
	"taskdeck/internal/ui"
)

// testSession wires the full stack against a throwaway database: store,
// evaluator, handlers, registry, resolver, interpreter.
type testSession struct {
	store       *store.Store
	handlers    *Handlers
	interpreter *command.Interpreter
}

func newTestSession(t *testing.T) *testSession {
	t.Helper()

	st, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() })

	clock := func() time.Time {
		return time.Date(2026, 8, 26, 12, 0, 0, 0, time.UTC)
	}

	schemas := schema.NewRegistry()
	eval := query.NewEvaluator(st, schemas, nil)
	eval.SetClock(clock)

	h := New(st, eval, ui.DefaultStyles())
	h.SetClock(clock)

	resolver := command.NewResolver(h.BuildRegistry(), schemas, h.ProjectIndex(), nil)
	resolver.SetClock(clock)

	return &testSession{
		store:       st,
		handlers:    h,
		interpreter: command.NewInterpreter(resolver, nil),
	}
}

// run executes one line, refreshing the project index first like the console
// loop does.
func (s *testSession) run(t *testing.T, line string) string {
	t.Helper()
	s.interpreter.Resolver().SetProjects(s.handlers.ProjectIndex())
	out, err := s.interpreter.Execute(line)
	require.NoError(t, err, "line: %s", line)
	return out
}

func TestTaskLifecycle(t *testing.T) {
	s := newTestSession(t)

	out := s.run(t, "task add Fix the login flow p1 due:friday #auth")
	assert.Contains(t, out, "Added task #1: Fix the login flow")

	task, err := s.store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, 1, task.Priority)
	assert.Equal(t, "2026-08-28", task.Due)
	assert.Equal(t, []string{"auth"}, task.Tags)

	out = s.run(t, "task edit 1 Polish the login flow -#auth #ui")
	assert.Contains(t, out, "Updated 1 task(s)")
	task, err = s.store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, "Polish the login flow", task.Title)
	assert.Equal(t, []string{"ui"}, task.Tags)

	out = s.run(t, "task done 1")
	assert.Contains(t, out, "Completed 1 of 1 task(s)")
	task, err = s.store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, types.StatusCompleted, task.Status)

	out = s.run(t, "task rm 1")
	assert.Contains(t, out, "Removed 1 of 1 task(s)")
	_, err = s.store.GetTask(1)
	assert.Error(t, err)
}

func TestMultiWordProjectResolution(t *testing.T) {
	s := newTestSession(t)

	s.run(t, "project add Client Alpha: retainer work")
	out := s.run(t, "task add Prepare the report @Client Alpha p2")
	assert.Contains(t, out, "(@Client Alpha)")

	task, err := s.store.GetTask(1)
	require.NoError(t, err)
	assert.Equal(t, "Client Alpha", task.Project)
	assert.Equal(t, "Prepare the report", task.Title)
}

func TestShortcuts(t *testing.T) {
	s := newTestSession(t)

	out := s.run(t, "add Quick capture p3")
	assert.Contains(t, out, "Added task #1: Quick capture")

	out = s.run(t, "done 1")
	assert.Contains(t, out, "Completed 1 of 1 task(s)")

	s.run(t, "project add Acme")
	out = s.run(t, "log @Acme 1h30m polishing the grid")
	assert.Contains(t, out, "Logged 90m on @Acme (2026-08-26)")

	logs, err := s.store.TimeLogs()
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, 90, logs[0].Minutes)
	assert.Equal(t, "polishing the grid", logs[0].Notes)
}

func TestTaskQueryFiltersAndSort(t *testing.T) {
	s := newTestSession(t)

	s.run(t, "task add urgent thing p1 due:2026-08-27")
	s.run(t, "task add later thing p3 due:2026-09-15")
	s.run(t, "task add middle thing p2 due:2026-08-30")
	s.run(t, "task done 2")

	out := s.run(t, "task query p_le=2 status=pending sort=due:asc")
	assert.Contains(t, out, "urgent thing")
	assert.Contains(t, out, "middle thing")
	assert.NotContains(t, out, "later thing")
}

func TestTaskQueryOverdue(t *testing.T) {
	s := newTestSession(t)

	s.run(t, "task add stale thing due:2026-08-01")
	s.run(t, "task add fresh thing due:2026-09-01")

	out := s.run(t, "task query overdue")
	assert.Contains(t, out, "stale thing")
	assert.NotContains(t, out, "fresh thing")
}

func TestProjectListMetrics(t *testing.T) {
	s := newTestSession(t)

	s.run(t, "project add Acme")
	s.run(t, "task add one @Acme")
	s.run(t, "task add two @Acme")
	s.run(t, "task add three @Acme")
	s.run(t, "task done 3")

	out := s.run(t, "project list")
	assert.Contains(t, out, "Acme")
	assert.Contains(t, out, "2") // open_tasks

	s.run(t, "project archive @Acme")
	out = s.run(t, "project list")
	assert.NotContains(t, out, "Acme")
	out = s.run(t, "project list all")
	assert.Contains(t, out, "Acme")
}

func TestTimeLogQueryDateRange(t *testing.T) {
	s := newTestSession(t)

	s.run(t, "project add Acme")
	s.run(t, "timelog add @Acme 30m due:2026-08-01 early work")
	s.run(t, "timelog add @Acme 45m")

	out := s.run(t, "timelog query date=2026-08-01..2026-08-10 @Acme")
	assert.Contains(t, out, "30")
	assert.NotContains(t, out, "45")
}

func TestValidationErrorsSurfaceTogether(t *testing.T) {
	s := newTestSession(t)
	s.interpreter.Resolver().SetProjects(s.handlers.ProjectIndex())

	_, err := s.interpreter.Execute("timelog add")
	require.Error(t, err)
	ve, ok := err.(*command.ValidationErrors)
	require.True(t, ok, "error type %T", err)
	assert.Len(t, ve.Messages, 2)
}

func TestHelpSearch(t *testing.T) {
	s := newTestSession(t)

	out := s.run(t, "help search archive")
	assert.Contains(t, out, "project archive")
}
