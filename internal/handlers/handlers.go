// Package handlers implements the business handlers behind the dispatch
// registry: task, project and time-log CRUD, the query commands, and the
// help family. Handlers receive validated command contexts and return
// rendered console output.
package handlers

import (
	"time"

	"github.com/charmbracelet/glamour"
	"go.uber.org/zap"

	"taskdeck/internal/command"
	"taskdeck/internal/logging"
	"taskdeck/internal/query"
	"taskdeck/internal/store"
	"taskdeck/internal/ui"
)

// Handlers bundles the collaborators every handler needs.
type Handlers struct {
	store    *store.Store
	eval     *query.Evaluator
	styles   ui.Styles
	renderer *glamour.TermRenderer
	log      *zap.Logger
	now      func() time.Time
}

// New wires the handler set. The glamour renderer is optional; without it
// help output falls back to raw markdown.
func New(st *store.Store, eval *query.Evaluator, styles ui.Styles) *Handlers {
	renderer, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(100),
	)
	if err != nil {
		renderer = nil
	}
	return &Handlers{
		store:    st,
		eval:     eval,
		styles:   styles,
		renderer: renderer,
		log:      logging.Get(logging.CategoryCommand),
		now:      time.Now,
	}
}

// SetClock overrides the handlers' notion of now. Test hook.
func (h *Handlers) SetClock(now func() time.Time) { h.now = now }

// BuildRegistry assembles the full dispatch registry: every (domain, action)
// pair, the shortcut table, the help sub-forms and the parameter schemas.
// Called once at startup; the result is read-only.
func (h *Handlers) BuildRegistry() *command.Registry {
	b := command.NewBuilder()

	b.Register("task", "add", h.TaskAdd, command.Required(command.ParamFreeText))
	b.Register("task", "done", h.TaskDone, command.Required(command.ParamIdentifierSet))
	b.Register("task", "edit", h.TaskEdit, command.Required(command.ParamIdentifierSet))
	b.Register("task", "rm", h.TaskRemove, command.Required(command.ParamIdentifierSet))
	b.Register("task", "list", h.TaskList)
	b.Register("task", "query", h.TaskQuery)

	b.Register("project", "add", h.ProjectAdd, command.Required(command.ParamFreeText))
	b.Register("project", "archive", h.ProjectArchive)
	b.Register("project", "list", h.ProjectList)
	b.Register("project", "query", h.ProjectQuery)

	b.Register("timelog", "add", h.TimeLogAdd,
		command.Required(command.ParamDuration),
		command.Required(command.ParamProjectReference))
	b.Register("timelog", "list", h.TimeLogList)
	b.Register("timelog", "query", h.TimeLogQuery)

	b.Shortcut("add", h.TaskAdd, command.Required(command.ParamFreeText))
	b.Shortcut("done", h.TaskDone, command.Required(command.ParamIdentifierSet))
	b.Shortcut("log", h.TimeLogAdd,
		command.Required(command.ParamDuration),
		command.Required(command.ParamProjectReference))
	b.Shortcut("ls", h.TaskList)

	b.Help("guide", h.HelpGuide)
	b.Help("search", h.HelpSearch)
	b.Help("examples", h.HelpExamples)
	b.Help("query", h.HelpQuery)
	b.Help("domain", h.HelpDomain)
	b.Help("command", h.HelpCommand)

	return b.Build()
}

// ProjectIndex builds the current project-name index for greedy resolution.
func (h *Handlers) ProjectIndex() command.ProjectIndex {
	names, err := h.store.ProjectNames()
	if err != nil {
		h.log.Warn("failed to load project names", zap.Error(err))
		return command.NewProjectIndex(nil)
	}
	return command.NewProjectIndex(names)
}
