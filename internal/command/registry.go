package command

import (
	"sort"

	"taskdeck/internal/types"
)

// HandlerFunc executes a validated command context and returns rendered
// output for the console.
type HandlerFunc func(ctx *types.CommandContext) (string, error)

// ParamType declares which kind of information a (domain, action) pair needs
// before it can be dispatched. Parameter rules decide presence only; they
// never normalize values.
type ParamType int

const (
	ParamFreeText ParamType = iota
	ParamIdentifierSet
	ParamProjectReference
	ParamPriority
	ParamDateLiteral
	ParamDateRange
	ParamDuration
)

func (p ParamType) describe() string {
	switch p {
	case ParamFreeText:
		return "descriptive text"
	case ParamIdentifierSet:
		return "at least one id (e.g. 3 or 2,4-6)"
	case ParamProjectReference:
		return "a project reference (@name)"
	case ParamPriority:
		return "a priority (p1..p3)"
	case ParamDateLiteral:
		return "a date (due:today, due:2026-09-01)"
	case ParamDateRange:
		return "a date or date range"
	case ParamDuration:
		return "a duration (90, 2h, 45m)"
	}
	return "a value"
}

// ParamRule is one entry of a parameter schema.
type ParamRule struct {
	Type     ParamType
	Required bool
}

func Required(t ParamType) ParamRule { return ParamRule{Type: t, Required: true} }
func Optional(t ParamType) ParamRule { return ParamRule{Type: t, Required: false} }

type dispatchKey struct {
	domain string
	action string
}

// Registry is the dispatch table: (domain, action) to handler, a separate
// shortcut table keyed by a single leading token, the help sub-form handlers,
// and the parameter schemas. It is constructed once through Builder and
// read-only afterwards.
type Registry struct {
	handlers  map[dispatchKey]HandlerFunc
	shortcuts map[string]HandlerFunc
	help      map[string]HandlerFunc
	params    map[dispatchKey][]ParamRule
	domains   map[string]bool
}

// ResolveHandler looks up the handler for (domain, action).
func (r *Registry) ResolveHandler(domain, action string) (HandlerFunc, bool) {
	h, ok := r.handlers[dispatchKey{domain, action}]
	return h, ok
}

// ResolveShortcut looks up the handler bound to a single-token shortcut.
func (r *Registry) ResolveShortcut(token string) (HandlerFunc, bool) {
	h, ok := r.shortcuts[token]
	return h, ok
}

// ResolveHelp looks up the handler for one of the fixed help sub-forms.
func (r *Registry) ResolveHelp(form string) (HandlerFunc, bool) {
	h, ok := r.help[form]
	return h, ok
}

// HasDomain reports whether any action is registered under the domain.
func (r *Registry) HasDomain(domain string) bool { return r.domains[domain] }

// ParamRules returns the parameter schema for (domain, action); nil when none
// was declared.
func (r *Registry) ParamRules(domain, action string) []ParamRule {
	return r.params[dispatchKey{domain, action}]
}

// Actions returns the sorted action names registered under a domain.
func (r *Registry) Actions(domain string) []string {
	var out []string
	for k := range r.handlers {
		if k.domain == domain {
			out = append(out, k.action)
		}
	}
	sort.Strings(out)
	return out
}

// Domains returns the sorted registered domain names.
func (r *Registry) Domains() []string {
	out := make([]string, 0, len(r.domains))
	for d := range r.domains {
		out = append(out, d)
	}
	sort.Strings(out)
	return out
}

// Builder assembles a Registry. All registration happens during startup;
// Build returns the immutable result.
type Builder struct {
	reg *Registry
}

func NewBuilder() *Builder {
	return &Builder{reg: &Registry{
		handlers:  make(map[dispatchKey]HandlerFunc),
		shortcuts: make(map[string]HandlerFunc),
		help:      make(map[string]HandlerFunc),
		params:    make(map[dispatchKey][]ParamRule),
		domains:   make(map[string]bool),
	}}
}

// Register binds (domain, action) to a handler with its parameter schema.
func (b *Builder) Register(domain, action string, h HandlerFunc, rules ...ParamRule) *Builder {
	key := dispatchKey{domain, action}
	b.reg.handlers[key] = h
	b.reg.domains[domain] = true
	if len(rules) > 0 {
		b.reg.params[key] = rules
	}
	return b
}

// Shortcut binds a single leading token to a handler, bypassing the
// two-token form. The parameter schema is stored under ("shortcut", token).
func (b *Builder) Shortcut(token string, h HandlerFunc, rules ...ParamRule) *Builder {
	b.reg.shortcuts[token] = h
	if len(rules) > 0 {
		b.reg.params[dispatchKey{types.DomainShortcut, token}] = rules
	}
	return b
}

// Help binds one of the fixed help sub-forms (guide, search, examples,
// query, domain, command) to a handler.
func (b *Builder) Help(form string, h HandlerFunc) *Builder {
	b.reg.help[form] = h
	return b
}

// Build finalizes the registry.
func (b *Builder) Build() *Registry { return b.reg }
