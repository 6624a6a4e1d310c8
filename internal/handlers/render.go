package handlers

import (
	"fmt"
	"strings"

	"taskdeck/internal/query"
	"taskdeck/internal/types"
	"taskdeck/internal/ui"
)

// computedColumns lists the relation and metric columns a spec asked for, in
// request order.
func computedColumns(spec *query.Spec) []string {
	return append(append([]string(nil), spec.With...), spec.Metrics...)
}

func computedCell(row *query.Row, name string) string {
	v, ok := row.Computed[name]
	if !ok || v == nil {
		return "-"
	}
	switch t := v.(type) {
	case *types.Project:
		return t.Name
	case []*types.Task:
		return fmt.Sprintf("%d task(s)", len(t))
	default:
		return fmt.Sprint(v)
	}
}

func (h *Handlers) renderTaskGrid(title string, result *query.Result, spec *query.Spec) string {
	headers := []string{"id", "pri", "title", "project", "due", "tags", "status"}
	extra := computedColumns(spec)
	headers = append(headers, extra...)

	table := ui.NewTable(title, headers)
	for i := range result.Rows {
		row := &result.Rows[i]
		t := row.Task
		pri := "-"
		if t.Priority > 0 {
			pri = fmt.Sprintf("p%d", t.Priority)
		}
		cells := []string{
			fmt.Sprintf("%d", t.ID),
			pri,
			t.Title,
			dash(t.Project),
			dash(t.Due),
			dash(strings.Join(t.Tags, ",")),
			t.Status,
		}
		for _, name := range extra {
			cells = append(cells, computedCell(row, name))
		}
		table.AddRow(cells...)
	}
	return table.View(h.styles)
}

func (h *Handlers) renderProjectGrid(title string, result *query.Result, spec *query.Spec) string {
	headers := []string{"id", "name", "description", "archived"}
	extra := computedColumns(spec)
	headers = append(headers, extra...)

	table := ui.NewTable(title, headers)
	for i := range result.Rows {
		row := &result.Rows[i]
		p := row.Project
		cells := []string{
			fmt.Sprintf("%d", p.ID),
			p.Name,
			dash(p.Description),
			fmt.Sprintf("%t", p.Archived),
		}
		for _, name := range extra {
			cells = append(cells, computedCell(row, name))
		}
		table.AddRow(cells...)
	}
	return table.View(h.styles)
}

func (h *Handlers) renderTimeLogGrid(title string, result *query.Result, spec *query.Spec) string {
	headers := []string{"date", "project", "task", "minutes", "notes"}
	extra := computedColumns(spec)
	headers = append(headers, extra...)

	table := ui.NewTable(title, headers)
	total := 0
	for i := range result.Rows {
		row := &result.Rows[i]
		l := row.TimeLog
		task := "-"
		if l.TaskID != 0 {
			task = fmt.Sprintf("#%d", l.TaskID)
		}
		cells := []string{
			l.Date,
			dash(l.Project),
			task,
			fmt.Sprintf("%d", l.Minutes),
			dash(l.Notes),
		}
		for _, name := range extra {
			cells = append(cells, computedCell(row, name))
		}
		table.AddRow(cells...)
		total += l.Minutes
	}
	out := table.View(h.styles)
	if len(result.Rows) > 0 {
		out += h.styles.Muted.Render(fmt.Sprintf("total: %dm", total)) + "\n"
	}
	return out
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
