package command

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		in   string
		want []string
	}{
		{in: "", want: nil},
		{in: "   ", want: nil},
		{in: "task add Fix login", want: []string{"task", "add", "Fix", "login"}},
		{in: `task add "Fix the login flow" p1`, want: []string{"task", "add", "Fix the login flow", "p1"}},
		{in: `project add 'Client Alpha'`, want: []string{"project", "add", "Client Alpha"}},
		{in: "a\tb  c", want: []string{"a", "b", "c"}},
		// unterminated quote runs to end of line
		{in: `task add "half done`, want: []string{"task", "add", "half done"}},
		// empty quoted span produces no token
		{in: `task add ""`, want: []string{"task", "add", ""}},
	}
	for _, tt := range tests {
		got := Tokenize(tt.in)
		if diff := cmp.Diff(tt.want, got); diff != "" {
			t.Errorf("Tokenize(%q) mismatch (-want +got):\n%s", tt.in, diff)
		}
	}
}
