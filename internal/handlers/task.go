package handlers

import (
	"fmt"
	"strings"

	"taskdeck/internal/command"
	"taskdeck/internal/query"
	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// TaskAdd creates a task from the free text and recognized arguments.
func (h *Handlers) TaskAdd(ctx *types.CommandContext) (string, error) {
	t := types.Task{
		Title:  ctx.FreeTextJoined(),
		Status: types.StatusPending,
	}
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		t.Project = v.Str
	}
	if v, ok := ctx.Args.Get(types.ArgPriority); ok && v.Kind == types.KindInt {
		t.Priority = v.Int
	}
	if v, ok := ctx.Args.Get(types.ArgDue); ok && v.Kind == types.KindDate {
		t.Due = v.Date.Format("2006-01-02")
	}
	if v, ok := ctx.Args.Get(types.ArgTags); ok {
		t.Tags = v.List
	}

	id, err := h.store.AddTask(t)
	if err != nil {
		return "", err
	}
	summary := fmt.Sprintf("Added task #%d: %s", id, t.Title)
	if t.Project != "" {
		summary += fmt.Sprintf(" (@%s)", t.Project)
	}
	return h.styles.Success.Render(summary), nil
}

// TaskDone marks the referenced tasks completed.
func (h *Handlers) TaskDone(ctx *types.CommandContext) (string, error) {
	ids := command.ExtractIDs(ctx)
	if len(ids) == 0 {
		return "", fmt.Errorf("no task ids given")
	}
	n, err := h.store.CompleteTasks(ids)
	if err != nil {
		return "", err
	}
	return h.styles.Success.Render(fmt.Sprintf("Completed %d of %d task(s)", n, len(ids))), nil
}

// TaskRemove deletes the referenced tasks.
func (h *Handlers) TaskRemove(ctx *types.CommandContext) (string, error) {
	ids := command.ExtractIDs(ctx)
	if len(ids) == 0 {
		return "", fmt.Errorf("no task ids given")
	}
	n, err := h.store.DeleteTasks(ids)
	if err != nil {
		return "", err
	}
	return h.styles.Success.Render(fmt.Sprintf("Removed %d of %d task(s)", n, len(ids))), nil
}

// TaskEdit applies argument changes to every referenced task. Free-text
// tokens that are not id sets become the new title.
func (h *Handlers) TaskEdit(ctx *types.CommandContext) (string, error) {
	ids := command.ExtractIDs(ctx)
	if len(ids) == 0 {
		return "", fmt.Errorf("no task ids given")
	}

	var titleParts []string
	for _, tok := range ctx.FreeText {
		if !schema.IDSetLike(tok) {
			titleParts = append(titleParts, tok)
		}
	}
	newTitle := strings.Join(titleParts, " ")

	updated := 0
	for _, id := range ids {
		t, err := h.store.GetTask(id)
		if err != nil {
			return "", err
		}
		if newTitle != "" {
			t.Title = newTitle
		}
		if v, ok := ctx.Args.Get(types.ArgProject); ok {
			t.Project = v.Str
		}
		if v, ok := ctx.Args.Get(types.ArgPriority); ok && v.Kind == types.KindInt {
			t.Priority = v.Int
		}
		if v, ok := ctx.Args.Get(types.ArgDue); ok && v.Kind == types.KindDate {
			t.Due = v.Date.Format("2006-01-02")
		}
		if v, ok := ctx.Args.Get(types.ArgTags); ok {
			for _, tag := range v.List {
				if !t.HasTag(tag) {
					t.Tags = append(t.Tags, tag)
				}
			}
		}
		if v, ok := ctx.Args.Get(types.ArgRemoveTags); ok {
			t.Tags = removeTags(t.Tags, v.List)
		}
		if err := h.store.UpdateTask(*t); err != nil {
			return "", err
		}
		updated++
	}
	return h.styles.Success.Render(fmt.Sprintf("Updated %d task(s)", updated)), nil
}

// TaskList shows pending tasks ordered by priority then due date.
func (h *Handlers) TaskList(ctx *types.CommandContext) (string, error) {
	spec := &query.Spec{
		Domain:  types.DomainTask,
		Filters: map[string]any{"status": types.StatusPending},
		Sort: []query.SortKey{
			{Field: "priority"},
			{Field: "due"},
		},
	}
	h.overlayTaskArgs(ctx, spec)
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderTaskGrid("Tasks", result, spec), nil
}

// TaskQuery evaluates the full query sublanguage over tasks. Recognized
// argument forms parsed out of the line (@project, p1, due:, #tag) are merged
// into the spec as filters alongside the key=value tokens.
func (h *Handlers) TaskQuery(ctx *types.CommandContext) (string, error) {
	spec := query.ParseSpec(types.DomainTask, ctx.FreeText)
	h.overlayTaskArgs(ctx, spec)
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderTaskGrid("Task query", result, spec), nil
}

// overlayTaskArgs merges recognized task arguments into a spec's filters.
func (h *Handlers) overlayTaskArgs(ctx *types.CommandContext, spec *query.Spec) {
	if spec.Filters == nil {
		spec.Filters = make(map[string]any)
	}
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		spec.Filters["project"] = v.Str
	}
	if v, ok := ctx.Args.Get(types.ArgPriority); ok && v.Kind == types.KindInt {
		spec.Filters["p_eq"] = v.Int
	}
	if v, ok := ctx.Args.Get(types.ArgDue); ok && v.Kind == types.KindDate {
		spec.Filters["due"] = v.Date.Format("2006-01-02")
	}
	if v, ok := ctx.Args.Get(types.ArgTags); ok {
		existing, _ := spec.Filters["tags_in"].([]string)
		spec.Filters["tags_in"] = append(existing, v.List...)
	}
}

func removeTags(tags, remove []string) []string {
	drop := make(map[string]bool, len(remove))
	for _, tag := range remove {
		drop[tag] = true
	}
	var kept []string
	for _, tag := range tags {
		if !drop[tag] {
			kept = append(kept, tag)
		}
	}
	return kept
}
