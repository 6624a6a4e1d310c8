package command

import (
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// Resolution is a successfully resolved input line: the validated context and
// the handler it dispatches to.
type Resolution struct {
	Context *types.CommandContext
	Handler HandlerFunc
}

// Resolver turns one raw input line into a Resolution or an error. All of its
// collaborators are constructed once at startup and read-only afterwards.
type Resolver struct {
	registry *Registry
	schemas  *schema.Registry
	projects ProjectIndex
	primary  ArgumentParser
	fallback ArgumentParser
	now      func() time.Time
	log      *zap.Logger
}

// NewResolver wires a resolver. projects may be nil when no project names are
// known yet; greedy resolution then always degrades to the literal text.
func NewResolver(reg *Registry, schemas *schema.Registry, projects ProjectIndex, log *zap.Logger) *Resolver {
	if log == nil {
		log = zap.NewNop()
	}
	return &Resolver{
		registry: reg,
		schemas:  schemas,
		projects: projects,
		primary:  StrictParser{},
		fallback: FallbackParser{},
		now:      time.Now,
		log:      log,
	}
}

// SetProjects swaps the project index. Called between lines (never during a
// resolution) when project rows change.
func (r *Resolver) SetProjects(projects ProjectIndex) { r.projects = projects }

// SetClock overrides the resolver's notion of now. Test hook.
func (r *Resolver) SetClock(now func() time.Time) { r.now = now }

// Resolve runs the full pipeline for one line: tokenize, decide domain and
// action (or help form or shortcut), parse arguments, normalize, validate.
func (r *Resolver) Resolve(line string) (*Resolution, error) {
	tokens := Tokenize(line)
	if len(tokens) == 0 {
		return nil, structural("Empty input")
	}

	first := strings.ToLower(tokens[0])

	if first == "help" {
		return r.resolveHelp(line, tokens)
	}

	if handler, ok := r.registry.ResolveShortcut(first); ok {
		ctx := &types.CommandContext{
			Domain: types.DomainShortcut,
			Action: first,
			Raw:    line,
		}
		if err := r.buildArgs(ctx, tokens[1:]); err != nil {
			return nil, err
		}
		return &Resolution{Context: ctx, Handler: handler}, nil
	}

	if len(tokens) < 2 {
		if r.registry.HasDomain(first) {
			return nil, structural(fmt.Sprintf("Missing action for domain '%s'", first))
		}
		return nil, structural(fmt.Sprintf("Unknown domain '%s'", first))
	}

	domain := first
	action := strings.ToLower(tokens[1])

	if !r.registry.HasDomain(domain) {
		return nil, structural(fmt.Sprintf("Unknown domain '%s'", domain))
	}
	handler, ok := r.registry.ResolveHandler(domain, action)
	if !ok {
		return nil, structural(fmt.Sprintf("Unknown action '%s' for domain '%s'", action, domain))
	}

	ctx := &types.CommandContext{Domain: domain, Action: action, Raw: line}
	if err := r.buildArgs(ctx, tokens[2:]); err != nil {
		return nil, err
	}
	return &Resolution{Context: ctx, Handler: handler}, nil
}

// buildArgs parses the remaining tokens with the primary strategy, falling
// back explicitly on failure, then normalizes and validates. Exactly one
// strategy's output is kept.
func (r *Resolver) buildArgs(ctx *types.CommandContext, rest []string) error {
	parsed, err := r.primary.Parse(rest, r.projects)
	if err != nil {
		r.log.Warn("primary argument parser failed, using fallback",
			zap.String("input", ctx.Raw),
			zap.Error(err))
		parsed, err = r.fallback.Parse(rest, r.projects)
		if err != nil {
			return structural(fmt.Sprintf("Cannot parse arguments: %v", err))
		}
	}
	ctx.Args = parsed.Args
	ctx.FreeText = parsed.FreeText

	NormalizeArgs(ctx, r.schemas, r.now())

	rules := r.registry.ParamRules(ctx.Domain, ctx.Action)
	if errs := ValidateContext(ctx, rules, r.schemas); len(errs) > 0 {
		return &ValidationErrors{Messages: errs}
	}
	return nil
}

// resolveHelp handles the closed set of help sub-forms. These bypass general
// dispatch: each form binds its own handler and context shape.
func (r *Resolver) resolveHelp(line string, tokens []string) (*Resolution, error) {
	form := "guide"
	var free []string

	rest := tokens[1:]
	switch {
	case len(rest) == 0:
		form = "guide"
	case strings.EqualFold(rest[0], "search"):
		form = "search"
		free = rest[1:]
	case strings.EqualFold(rest[0], "examples"):
		form = "examples"
	case strings.EqualFold(rest[0], "query"):
		form = "query"
	case r.registry.HasDomain(strings.ToLower(rest[0])) && len(rest) == 1:
		form = "domain"
		free = []string{strings.ToLower(rest[0])}
	case r.registry.HasDomain(strings.ToLower(rest[0])):
		form = "command"
		free = []string{strings.ToLower(rest[0]), strings.ToLower(rest[1])}
	default:
		form = "search"
		free = rest
	}

	handler, ok := r.registry.ResolveHelp(form)
	if !ok {
		return nil, structural(fmt.Sprintf("No help available for '%s'", strings.Join(rest, " ")))
	}
	ctx := &types.CommandContext{
		Domain:   types.DomainHelp,
		Action:   form,
		Args:     types.NewArgMap(),
		FreeText: free,
		Raw:      line,
	}
	return &Resolution{Context: ctx, Handler: handler}, nil
}

// ExtractIDs merges a resolved ids argument with id-like free-text tokens
// into one deduplicated ordered identifier set. Handlers that act on task
// ids use this after validation has confirmed presence.
func ExtractIDs(ctx *types.CommandContext) []int {
	seen := make(map[int]bool)
	var ids []int
	add := func(id int) {
		if !seen[id] {
			seen[id] = true
			ids = append(ids, id)
		}
	}
	if v, ok := ctx.Args.Get(types.ArgIDs); ok && v.Kind == types.KindIDSet {
		for _, id := range v.IDs {
			add(id)
		}
	}
	for _, tok := range ctx.FreeText {
		if schema.IDSetLike(tok) {
			if parsed, err := schema.ParseIDSet(tok); err == nil {
				for _, id := range parsed {
					add(id)
				}
			}
		}
	}
	return ids
}
