package command

import (
	"fmt"
	"time"

	"taskdeck/internal/schema"
	"taskdeck/internal/types"
)

// NormalizeArgs replaces every recognized argument that has a field schema
// with its normalized value. Normalization failures are swallowed and the raw
// value kept; validation is the hard failure point. Fields without a schema
// entry pass through unnormalized.
func NormalizeArgs(ctx *types.CommandContext, schemas *schema.Registry, now time.Time) {
	for _, name := range ctx.Args.Keys() {
		fs, ok := schemas.Field(ctx.Domain, name)
		if !ok || fs.Normalize == nil {
			continue
		}
		raw, _ := ctx.Args.Get(name)
		if normalized, err := fs.Normalize(raw, now); err == nil {
			ctx.Args.Set(name, normalized)
		}
	}
}

// ValidateContext runs both validation layers and returns every collected
// message. Layer one checks the parameter schema's required field types;
// layer two runs each argument's per-field validate hook. There is no
// short-circuit between layers or entries.
func ValidateContext(ctx *types.CommandContext, rules []ParamRule, schemas *schema.Registry) []string {
	var errs []string

	for _, rule := range rules {
		if !rule.Required {
			continue
		}
		if !paramSatisfied(ctx, rule.Type) {
			errs = append(errs, fmt.Sprintf("%s %s requires %s",
				ctx.Domain, ctx.Action, rule.Type.describe()))
		}
	}

	for _, name := range ctx.Args.Keys() {
		fs, ok := schemas.Field(ctx.Domain, name)
		if !ok || fs.Validate == nil {
			continue
		}
		v, _ := ctx.Args.Get(name)
		if err := fs.Validate(v); err != nil {
			errs = append(errs, fmt.Sprintf("%s: %s", name, err.Error()))
		}
	}
	return errs
}

// paramSatisfied applies the type-specific presence rule for one required
// field type.
func paramSatisfied(ctx *types.CommandContext, t ParamType) bool {
	switch t {
	case ParamFreeText:
		return len(ctx.FreeText) > 0

	case ParamIdentifierSet:
		if v, ok := ctx.Args.Get(types.ArgIDs); ok && v.Kind == types.KindIDSet {
			return true
		}
		for _, tok := range ctx.FreeText {
			if schema.IDSetLike(tok) {
				return true
			}
		}
		return false

	case ParamProjectReference:
		_, ok := ctx.Args.Get(types.ArgProject)
		return ok

	case ParamPriority:
		_, ok := ctx.Args.Get(types.ArgPriority)
		return ok

	case ParamDateLiteral:
		if v, ok := ctx.Args.Get(types.ArgDue); ok && v.Kind == types.KindDate {
			return true
		}
		if v, ok := ctx.Args.Get(types.ArgDate); ok && v.Kind == types.KindDate {
			return true
		}
		return false

	case ParamDateRange:
		if v, ok := ctx.Args.Get(types.ArgDate); ok {
			return v.Kind == types.KindDate || v.Kind == types.KindDateRange
		}
		return false

	case ParamDuration:
		if v, ok := ctx.Args.Get(types.ArgDuration); ok && v.Kind == types.KindDuration {
			return true
		}
		for _, tok := range ctx.FreeText {
			if schema.DurationLike(tok) {
				return true
			}
		}
		return false
	}
	return true
}
