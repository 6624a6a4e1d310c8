package handlers

import (
	"fmt"
	"strings"

	"taskdeck/internal/types"
)

// helpEntry describes one command for the search and per-command help forms.
type helpEntry struct {
	Domain  string
	Action  string
	Usage   string
	Summary string
}

var helpEntries = []helpEntry{
	{"task", "add", "task add <title> [@project] [p1|p2|p3] [due:<date>] [#tag ...]", "Create a task"},
	{"task", "done", "task done <ids>", "Mark tasks completed"},
	{"task", "edit", "task edit <ids> [new title] [@project] [p1|p2|p3] [due:<date>] [#tag] [-#tag]", "Edit tasks"},
	{"task", "rm", "task rm <ids>", "Delete tasks"},
	{"task", "list", "task list [@project] [#tag]", "List pending tasks"},
	{"task", "query", "task query [filters] [sort=f:dir] [with=...] [metrics=...] [group=f]", "Query tasks"},
	{"project", "add", "project add <name>[: description]", "Create a project"},
	{"project", "archive", "project archive @name", "Archive a project"},
	{"project", "list", "project list [all]", "List projects"},
	{"project", "query", "project query [filters]", "Query projects"},
	{"timelog", "add", "timelog add @project <duration> [task:<id>] [notes...]", "Record time"},
	{"timelog", "list", "timelog list [@project]", "List time-log entries"},
	{"timelog", "query", "timelog query [filters]", "Query time-log entries"},
}

const guideText = `# taskdeck

A console tool for tasks, projects and time tracking.

## Commands

Commands take the form ` + "`domain action [args] [free text]`" + `:

| Form | Example |
|------|---------|
| task add | ` + "`task add Fix the login flow @Client Alpha p1 due:friday #auth`" + ` |
| task done | ` + "`task done 2,4-6`" + ` |
| timelog add | ` + "`timelog add @Client Alpha 1h30m polishing the grid`" + ` |
| project add | ` + "`project add Client Alpha: retainer work`" + ` |

Shortcuts skip the domain: ` + "`add`" + `, ` + "`done`" + `, ` + "`log`" + `, ` + "`ls`" + `.

## Argument forms

- ` + "`@name`" + ` project reference (multi-word names resolve greedily)
- ` + "`p1 p2 p3`" + ` priority
- ` + "`due:<date>`" + ` due date (today, tomorrow, friday, 2026-09-01, +3d)
- ` + "`#tag`" + ` add tag, ` + "`-#tag`" + ` remove tag
- ` + "`task:<id>`" + ` link a time log to a task
- ` + "`--`" + ` everything after is free text

See ` + "`help query`" + ` for the query sublanguage and ` + "`help examples`" + ` for more.
`

const queryHelpText = `# Query sublanguage

` + "`<domain> query [tokens]`" + ` filters, sorts and augments rows.

## Filters (conjunctive)

| Token | Meaning |
|-------|---------|
| ` + "`status=pending`" + ` | status equality |
| ` + "`@name`" + ` or ` + "`project=name`" + ` | project equality |
| ` + "`p_le=2 p_ge=1 p_eq=3 p=1-2`" + ` | priority comparisons and range |
| ` + "`overdue`" + ` | due before today |
| ` + "`due=today due_lt=2026-09-01 due_ge=+3d`" + ` | due-date comparisons |
| ` + "`tags_in=a,b`" + ` / ` + "`#tag`" + ` | rows tagged with all of these |
| ` + "`tags_out=c`" + ` | rows tagged with none of these |
| ` + "`date=2026-08-01..2026-08-31`" + ` | time-log date range |
| ` + "`task=5`" + ` | time logs linked to a task |
| bare words | substring match on the row text |

## Shaping

| Token | Meaning |
|-------|---------|
| ` + "`sort=due:asc,priority:desc`" + ` | stable multi-key sort |
| ` + "`group=project`" + ` | group pre-sort |
| ` + "`with=project_row`" + ` | attach relations |
| ` + "`metrics=logged_minutes,age_days`" + ` | attach metrics |

Rows a predicate cannot be decided for are excluded by that predicate only;
a relation or metric that fails on a row shows ` + "`-`" + ` instead of failing
the query.
`

const examplesText = `# Examples

    add Prepare quarterly report @Acme p2 due:friday #reporting
    task query p_le=2 status=pending sort=due:asc
    task query overdue group=project metrics=logged_minutes
    done 3,5-7
    log @Acme 45m sketching the dashboard
    timelog query date=2026-08-01..2026-08-31 @Acme
    project query archived=false with=tasks
`

func (h *Handlers) renderMarkdown(md string) string {
	if h.renderer != nil {
		if out, err := h.renderer.Render(md); err == nil {
			return out
		}
	}
	return md
}

// HelpGuide renders the top-level guide.
func (h *Handlers) HelpGuide(_ *types.CommandContext) (string, error) {
	return h.renderMarkdown(guideText), nil
}

// HelpQuery renders the query sublanguage reference.
func (h *Handlers) HelpQuery(_ *types.CommandContext) (string, error) {
	return h.renderMarkdown(queryHelpText), nil
}

// HelpExamples renders the worked examples.
func (h *Handlers) HelpExamples(_ *types.CommandContext) (string, error) {
	return h.renderMarkdown(examplesText), nil
}

// HelpSearch finds commands whose usage or summary mentions the terms.
func (h *Handlers) HelpSearch(ctx *types.CommandContext) (string, error) {
	terms := strings.ToLower(ctx.FreeTextJoined())
	if terms == "" {
		return h.renderMarkdown(guideText), nil
	}
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# Commands matching %q\n\n", terms))
	found := 0
	for _, e := range helpEntries {
		haystack := strings.ToLower(e.Usage + " " + e.Summary + " " + e.Domain + " " + e.Action)
		if strings.Contains(haystack, terms) {
			sb.WriteString(fmt.Sprintf("- `%s` - %s\n", e.Usage, e.Summary))
			found++
		}
	}
	if found == 0 {
		sb.WriteString("No matching commands. Try `help` for the guide.\n")
	}
	return h.renderMarkdown(sb.String()), nil
}

// HelpDomain lists the commands of one domain.
func (h *Handlers) HelpDomain(ctx *types.CommandContext) (string, error) {
	if len(ctx.FreeText) == 0 {
		return h.renderMarkdown(guideText), nil
	}
	domain := ctx.FreeText[0]
	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("# %s commands\n\n", domain))
	for _, e := range helpEntries {
		if e.Domain == domain {
			sb.WriteString(fmt.Sprintf("- `%s` - %s\n", e.Usage, e.Summary))
		}
	}
	return h.renderMarkdown(sb.String()), nil
}

// HelpCommand shows the usage of one (domain, action) pair.
func (h *Handlers) HelpCommand(ctx *types.CommandContext) (string, error) {
	if len(ctx.FreeText) < 2 {
		return h.renderMarkdown(guideText), nil
	}
	domain, action := ctx.FreeText[0], ctx.FreeText[1]
	for _, e := range helpEntries {
		if e.Domain == domain && e.Action == action {
			md := fmt.Sprintf("# %s %s\n\n%s\n\n    %s\n", domain, action, e.Summary, e.Usage)
			return h.renderMarkdown(md), nil
		}
	}
	return "", fmt.Errorf("no help for '%s %s'", domain, action)
}
