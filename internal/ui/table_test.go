package ui

import (
	"strings"
	"testing"
)

func TestTableView(t *testing.T) {
	table := NewTable("Tasks", []string{"id", "title"})
	table.AddRow("1", "Fix the login flow")
	table.AddRow("2", "Write docs")

	out := table.View(DefaultStyles())
	for _, want := range []string{"Tasks", "id", "title", "Fix the login flow", "Write docs"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
	if lines := strings.Count(out, "\n"); lines < 4 {
		t.Errorf("expected title, header, divider and rows, got %d lines", lines)
	}
}

func TestTableViewEmpty(t *testing.T) {
	table := NewTable("Tasks", []string{"id", "title"})
	out := table.View(DefaultStyles())
	if !strings.Contains(out, "no rows") {
		t.Errorf("empty table output = %q", out)
	}
}

func TestTableViewShortRow(t *testing.T) {
	// rows with fewer cells than headers render empty trailing cells
	table := NewTable("", []string{"a", "b", "c"})
	table.AddRow("only")
	out := table.View(DefaultStyles())
	if !strings.Contains(out, "only") {
		t.Errorf("output = %q", out)
	}
}

func TestThemeByName(t *testing.T) {
	if ThemeByName("light").IsDark {
		t.Error("light theme marked dark")
	}
	if !ThemeByName("dark").IsDark {
		t.Error("dark theme not marked dark")
	}
}
