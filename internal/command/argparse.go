package command

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"taskdeck/internal/types"
)

// ParsedArgs is the output shape shared by both argument-parsing strategies:
// recognized key/value arguments plus the ordered free-text remainder.
type ParsedArgs struct {
	Args     *types.ArgMap
	FreeText []string
}

// ArgumentParser is one parsing strategy. Exactly one strategy's output is
// kept per invocation; outputs are never merged.
type ArgumentParser interface {
	Parse(tokens []string, projects ProjectIndex) (*ParsedArgs, error)
}

// ProjectIndex answers membership questions for greedy multi-word project
// resolution. Lookup is case-insensitive and returns the canonical name.
type ProjectIndex interface {
	Lookup(name string) (canonical string, ok bool)
}

// MapProjectIndex is the trivial in-memory ProjectIndex.
type MapProjectIndex map[string]string

// NewProjectIndex builds an index from canonical project names.
func NewProjectIndex(names []string) MapProjectIndex {
	idx := make(MapProjectIndex, len(names))
	for _, n := range names {
		idx[strings.ToLower(n)] = n
	}
	return idx
}

func (m MapProjectIndex) Lookup(name string) (string, bool) {
	canonical, ok := m[strings.ToLower(name)]
	return canonical, ok
}

var (
	taskRefRe  = regexp.MustCompile(`^task:(\d+)$`)
	priorityRe = regexp.MustCompile(`^p[123]$`)
)

// boundary reports whether a token terminates greedy project-name extension.
func boundary(tok string) bool {
	return tok == "--" ||
		strings.HasPrefix(tok, "@") ||
		priorityRe.MatchString(tok) ||
		strings.HasPrefix(tok, "due:") ||
		strings.HasPrefix(tok, "#") ||
		strings.HasPrefix(tok, "-#")
}

// greedyProject resolves a multi-word project name starting at tokens[start]
// (which carries the @ prefix). The candidate is extended one token at a time
// until a boundary token, re-checking membership after each extension; the
// longest match wins. With no match at all the literal text after @ is used
// and one token is consumed.
func greedyProject(tokens []string, start int, projects ProjectIndex) (name string, consumed int, matched bool) {
	literal := strings.TrimPrefix(tokens[start], "@")
	candidate := literal
	bestName := ""
	bestConsumed := 0
	if projects != nil {
		if canonical, ok := projects.Lookup(candidate); ok {
			bestName, bestConsumed = canonical, 1
		}
		width := 1
		for j := start + 1; j < len(tokens); j++ {
			if boundary(tokens[j]) {
				break
			}
			candidate += " " + tokens[j]
			width++
			if canonical, ok := projects.Lookup(candidate); ok {
				bestName, bestConsumed = canonical, width
			}
		}
	}
	if bestConsumed > 0 {
		return bestName, bestConsumed, true
	}
	return literal, 1, false
}

// =============================================================================
// SECONDARY STRATEGY (token-by-token fallback)
// =============================================================================

// FallbackParser is the lenient token-by-token strategy. It cannot fail: any
// token it does not recognize flips plain mode and becomes free text, and
// every later token follows it there.
type FallbackParser struct{}

func (FallbackParser) Parse(tokens []string, projects ProjectIndex) (*ParsedArgs, error) {
	out := &ParsedArgs{Args: types.NewArgMap()}
	plain := false

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if plain {
			out.FreeText = append(out.FreeText, tok)
			i++
			continue
		}
		switch {
		case tok == "--":
			plain = true
			i++
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			name, consumed, _ := greedyProject(tokens, i, projects)
			out.Args.Set(types.ArgProject, types.StringValue(name))
			i += consumed
		case tok == "-i":
			out.Args.Set(types.ArgInteractive, types.BoolValue(true))
			i++
		case taskRefRe.MatchString(tok):
			id, _ := strconv.Atoi(taskRefRe.FindStringSubmatch(tok)[1])
			out.Args.Set(types.ArgTaskID, types.IntValue(id))
			i++
		case priorityRe.MatchString(tok):
			// Stored as the raw token; normalization types it later.
			out.Args.Set(types.ArgPriority, types.StringValue(tok))
			i++
		case strings.HasPrefix(tok, "due:"):
			out.Args.Set(types.ArgDue, types.StringValue(tok[len("due:"):]))
			i++
		case (strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "+")) && len(tok) > 1:
			out.Args.AppendList(types.ArgTags, tok[1:])
			i++
		case strings.HasPrefix(tok, "-#") && len(tok) > 2:
			out.Args.AppendList(types.ArgRemoveTags, tok[2:])
			i++
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			out.Args.AppendList(types.ArgRemoveTags, tok[1:])
			i++
		default:
			plain = true
			out.FreeText = append(out.FreeText, tok)
			i++
		}
	}
	return out, nil
}

// =============================================================================
// PRIMARY STRATEGY (structured parser)
// =============================================================================

// StrictParser is the preferred strategy: the same token classification as
// FallbackParser, but malformed recognized forms are hard errors instead of
// silently degrading to free text, and free text does not end argument
// recognition ("task add Fix the login @Acme p1" parses the trailing
// arguments). An error here triggers the resolver's explicit fallback to
// FallbackParser.
type StrictParser struct{}

func (StrictParser) Parse(tokens []string, projects ProjectIndex) (*ParsedArgs, error) {
	out := &ParsedArgs{Args: types.NewArgMap()}
	plain := false

	for i := 0; i < len(tokens); {
		tok := tokens[i]
		if plain {
			out.FreeText = append(out.FreeText, tok)
			i++
			continue
		}
		switch {
		case tok == "--":
			plain = true
			i++
		case tok == "@":
			return nil, fmt.Errorf("bare @ without a project name")
		case strings.HasPrefix(tok, "@"):
			name, consumed, _ := greedyProject(tokens, i, projects)
			out.Args.Set(types.ArgProject, types.StringValue(name))
			i += consumed
		case tok == "-i":
			out.Args.Set(types.ArgInteractive, types.BoolValue(true))
			i++
		case strings.HasPrefix(tok, "task:"):
			m := taskRefRe.FindStringSubmatch(tok)
			if m == nil {
				return nil, fmt.Errorf("malformed task reference %q", tok)
			}
			id, _ := strconv.Atoi(m[1])
			out.Args.Set(types.ArgTaskID, types.IntValue(id))
			i++
		case priorityRe.MatchString(tok):
			out.Args.Set(types.ArgPriority, types.StringValue(tok))
			i++
		case strings.HasPrefix(tok, "due:"):
			rest := tok[len("due:"):]
			if rest == "" {
				return nil, fmt.Errorf("due: without a date literal")
			}
			out.Args.Set(types.ArgDue, types.StringValue(rest))
			i++
		case strings.HasPrefix(tok, "#") || strings.HasPrefix(tok, "+"):
			if len(tok) < 2 {
				return nil, fmt.Errorf("empty tag %q", tok)
			}
			out.Args.AppendList(types.ArgTags, tok[1:])
			i++
		case strings.HasPrefix(tok, "-#"):
			if len(tok) < 3 {
				return nil, fmt.Errorf("empty tag removal %q", tok)
			}
			out.Args.AppendList(types.ArgRemoveTags, tok[2:])
			i++
		case strings.HasPrefix(tok, "-") && len(tok) > 1:
			out.Args.AppendList(types.ArgRemoveTags, tok[1:])
			i++
		case tok == "-":
			return nil, fmt.Errorf("bare - without a tag name")
		default:
			out.FreeText = append(out.FreeText, tok)
			i++
		}
	}
	return out, nil
}
