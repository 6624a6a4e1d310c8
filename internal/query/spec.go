package query

import (
	"strings"
)

// Direction of one sort key.
type Direction int

const (
	Asc Direction = iota
	Desc
)

// SortKey is one entry of an explicit multi-key sort.
type SortKey struct {
	Field     string
	Direction Direction
}

// Spec is a declarative description of which rows to fetch, filter, relate,
// measure, group and sort. Filter keys are domain-specific predicate names;
// unknown keys are ignored, never rejected.
type Spec struct {
	Domain    string
	Columns   []string
	RawTokens []string
	Metrics   []string
	Sort      []SortKey
	With      []string
	Group     string
	Filters   map[string]any
}

// PriorityRange is the {min,max} priority filter value.
type PriorityRange struct {
	Min int
	Max int
}

// ParseSpec builds a Spec from the raw tokens of a query sub-command.
// Recognized token forms:
//
//	key=value          filter (status, project, p_le, due_gt, tags_in, ...)
//	sort=f:dir,f2:dir  explicit sort keys
//	with=a,b           relation names
//	metrics=a,b        metric names
//	group=f            group field
//	cols=a,b           output columns
//	@name              project filter
//	#tag               tags_in entry
//	p1|p2|p3           exact priority filter
//	overdue            overdue flag
//	anything else      free-text substring filter
func ParseSpec(domain string, tokens []string) *Spec {
	spec := &Spec{
		Domain:    domain,
		RawTokens: append([]string(nil), tokens...),
		Filters:   make(map[string]any),
	}
	var text []string

	for _, tok := range tokens {
		if idx := strings.Index(tok, "="); idx > 0 {
			key := strings.ToLower(tok[:idx])
			val := tok[idx+1:]
			switch key {
			case "sort":
				spec.Sort = append(spec.Sort, parseSortKeys(val)...)
			case "with":
				spec.With = append(spec.With, splitList(val)...)
			case "metrics":
				spec.Metrics = append(spec.Metrics, splitList(val)...)
			case "group":
				spec.Group = val
			case "cols", "columns":
				spec.Columns = append(spec.Columns, splitList(val)...)
			case "tags_in", "tags_out":
				spec.Filters[key] = splitList(val)
			case "p":
				if r, ok := parsePriorityRange(val); ok {
					spec.Filters["p"] = r
				}
			default:
				spec.Filters[key] = val
			}
			continue
		}
		switch {
		case strings.HasPrefix(tok, "@") && len(tok) > 1:
			spec.Filters["project"] = tok[1:]
		case strings.HasPrefix(tok, "#") && len(tok) > 1:
			spec.Filters["tags_in"] = appendList(spec.Filters["tags_in"], tok[1:])
		case tok == "p1" || tok == "p2" || tok == "p3":
			spec.Filters["p_eq"] = tok[1:]
		case strings.EqualFold(tok, "overdue"):
			spec.Filters["overdue"] = true
		default:
			text = append(text, tok)
		}
	}
	if len(text) > 0 {
		spec.Filters["text"] = strings.Join(text, " ")
	}
	return spec
}

func splitList(val string) []string {
	var out []string
	for _, part := range strings.Split(val, ",") {
		part = strings.TrimSpace(part)
		if part != "" {
			out = append(out, part)
		}
	}
	return out
}

func appendList(existing any, item string) []string {
	list, _ := existing.([]string)
	return append(list, item)
}

func parseSortKeys(val string) []SortKey {
	var keys []SortKey
	for _, part := range splitList(val) {
		field := part
		dir := Asc
		if idx := strings.Index(part, ":"); idx > 0 {
			field = part[:idx]
			if strings.EqualFold(part[idx+1:], "desc") {
				dir = Desc
			}
		}
		keys = append(keys, SortKey{Field: field, Direction: dir})
	}
	return keys
}

func parsePriorityRange(val string) (PriorityRange, bool) {
	idx := strings.Index(val, "-")
	if idx <= 0 {
		return PriorityRange{}, false
	}
	min, okMin := atoi(val[:idx])
	max, okMax := atoi(val[idx+1:])
	if !okMin || !okMax {
		return PriorityRange{}, false
	}
	if max < min {
		min, max = max, min
	}
	return PriorityRange{Min: min, Max: max}, true
}

func atoi(s string) (int, bool) {
	n := 0
	if s == "" {
		return 0, false
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, false
		}
		n = n*10 + int(r-'0')
	}
	return n, true
}

// SetFilter sets a typed filter value in code. Used by handlers that build
// specs directly instead of going through ParseSpec.
func (s *Spec) SetFilter(key string, v any) *Spec {
	s.Filters[key] = v
	return s
}
