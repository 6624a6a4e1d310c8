package handlers

import (
	"fmt"
	"strings"

	"taskdeck/internal/query"
	"taskdeck/internal/types"
)

// ProjectAdd creates a project. The free text is the name; a "--" separated
// remainder would already have been folded into the free text, so everything
// after the first ":" is treated as description.
func (h *Handlers) ProjectAdd(ctx *types.CommandContext) (string, error) {
	name := ctx.FreeTextJoined()
	description := ""
	if idx := strings.Index(name, ":"); idx > 0 {
		description = strings.TrimSpace(name[idx+1:])
		name = strings.TrimSpace(name[:idx])
	}
	if name == "" {
		return "", fmt.Errorf("project name must not be empty")
	}
	id, err := h.store.AddProject(types.Project{Name: name, Description: description})
	if err != nil {
		return "", err
	}
	return h.styles.Success.Render(fmt.Sprintf("Added project #%d: %s", id, name)), nil
}

// ProjectArchive archives the project named by @reference or free text.
func (h *Handlers) ProjectArchive(ctx *types.CommandContext) (string, error) {
	name := ""
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		name = v.Str
	} else {
		name = ctx.FreeTextJoined()
	}
	if name == "" {
		return "", fmt.Errorf("which project? use @name or the project name")
	}
	if err := h.store.SetProjectArchived(name, true); err != nil {
		return "", err
	}
	return h.styles.Success.Render(fmt.Sprintf("Archived project %s", name)), nil
}

// ProjectList shows projects; active only unless "all" is given.
func (h *Handlers) ProjectList(ctx *types.CommandContext) (string, error) {
	spec := &query.Spec{
		Domain:  types.DomainProject,
		Filters: map[string]any{"archived": false},
		Sort:    []query.SortKey{{Field: "name"}},
		Metrics: []string{"open_tasks"},
	}
	for _, tok := range ctx.FreeText {
		if strings.EqualFold(tok, "all") {
			delete(spec.Filters, "archived")
		}
	}
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderProjectGrid("Projects", result, spec), nil
}

// ProjectQuery evaluates the query sublanguage over projects.
func (h *Handlers) ProjectQuery(ctx *types.CommandContext) (string, error) {
	spec := query.ParseSpec(types.DomainProject, ctx.FreeText)
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderProjectGrid("Project query", result, spec), nil
}
