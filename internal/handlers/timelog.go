package handlers

import (
	"fmt"
	"strings"

	"taskdeck/internal/query"
	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// TimeLogAdd records time against a project. The duration comes from the
// duration argument or the first duration-like free-text token; remaining
// free text becomes the notes.
func (h *Handlers) TimeLogAdd(ctx *types.CommandContext) (string, error) {
	entry := types.TimeLogEntry{
		Date: schema.DateOnly(h.now()).Format("2006-01-02"),
	}
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		entry.Project = v.Str
	}
	if v, ok := ctx.Args.Get(types.ArgTaskID); ok && v.Kind == types.KindInt {
		entry.TaskID = v.Int
	}
	if v, ok := ctx.Args.Get(types.ArgDate); ok && v.Kind == types.KindDate {
		entry.Date = v.Date.Format("2006-01-02")
	} else if v, ok := ctx.Args.Get(types.ArgDue); ok && v.Kind == types.KindDate {
		// due:<date> doubles as the log date in the shortcut form
		entry.Date = v.Date.Format("2006-01-02")
	}

	var notes []string
	if v, ok := ctx.Args.Get(types.ArgDuration); ok && v.Kind == types.KindDuration {
		entry.Minutes = v.Minutes
		notes = ctx.FreeText
	} else {
		for _, tok := range ctx.FreeText {
			if entry.Minutes == 0 {
				if min, err := schema.ParseDurationMinutes(tok); err == nil {
					entry.Minutes = min
					continue
				}
			}
			notes = append(notes, tok)
		}
	}
	if entry.Minutes == 0 {
		return "", fmt.Errorf("no duration given")
	}
	entry.Notes = strings.Join(notes, " ")

	if _, err := h.store.AddTimeLog(entry); err != nil {
		return "", err
	}
	summary := fmt.Sprintf("Logged %dm on @%s (%s)", entry.Minutes, entry.Project, entry.Date)
	if entry.TaskID != 0 {
		summary += fmt.Sprintf(" for task #%d", entry.TaskID)
	}
	return h.styles.Success.Render(summary), nil
}

// TimeLogList shows all entries newest last.
func (h *Handlers) TimeLogList(ctx *types.CommandContext) (string, error) {
	spec := &query.Spec{
		Domain:  types.DomainTimeLog,
		Filters: map[string]any{},
		Sort:    []query.SortKey{{Field: "date"}},
	}
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		spec.Filters["project"] = v.Str
	}
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderTimeLogGrid("Time log", result, spec), nil
}

// TimeLogQuery evaluates the query sublanguage over time-log entries.
func (h *Handlers) TimeLogQuery(ctx *types.CommandContext) (string, error) {
	spec := query.ParseSpec(types.DomainTimeLog, ctx.FreeText)
	if v, ok := ctx.Args.Get(types.ArgProject); ok {
		spec.Filters["project"] = v.Str
	}
	if v, ok := ctx.Args.Get(types.ArgTaskID); ok && v.Kind == types.KindInt {
		spec.Filters["task"] = v.Int
	}
	result, err := h.eval.Evaluate(spec)
	if err != nil {
		return "", err
	}
	return h.renderTimeLogGrid("Time-log query", result, spec), nil
}
