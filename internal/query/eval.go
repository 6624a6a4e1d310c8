package query

import (
	"sort"
	"time"

	"go.uber.org/zap"

	"taskdeck/internal/schema"
)

// RowSource supplies the full row set for a domain. The rows are treated as a
// snapshot for the duration of one evaluation call; the evaluator never
// writes back. An unknown domain yields an empty set, not an error.
type RowSource interface {
	FetchRows(domain string) ([]Row, error)
}

// Result is the output of one evaluation. It lives for a single call and is
// never cached.
type Result struct {
	Domain string
	Rows   []Row
}

// Evaluator executes query specifications. All collaborators are fixed at
// construction; evaluation is synchronous and single-threaded.
type Evaluator struct {
	source    RowSource
	relations ResolverTable
	metrics   ResolverTable
	schemas   *schema.Registry
	now       func() time.Time
	log       *zap.Logger
}

// NewEvaluator wires an evaluator with the default relation and metric
// resolver tables.
func NewEvaluator(source RowSource, schemas *schema.Registry, log *zap.Logger) *Evaluator {
	if log == nil {
		log = zap.NewNop()
	}
	now := time.Now
	return &Evaluator{
		source:    source,
		relations: DefaultRelations(source),
		metrics:   DefaultMetrics(source, func() time.Time { return now() }),
		schemas:   schemas,
		now:       now,
		log:       log,
	}
}

// SetClock overrides the evaluator's notion of now. Test hook; also rebuilds
// the metric table so time-derived metrics observe the same clock.
func (e *Evaluator) SetClock(now func() time.Time) {
	e.now = now
	e.metrics = DefaultMetrics(e.source, now)
}

// Evaluate runs the pipeline in strict order: fetch, filter, relation attach,
// metric attach, group pre-sort, explicit sort.
func (e *Evaluator) Evaluate(spec *Spec) (*Result, error) {
	rows, err := e.source.FetchRows(spec.Domain)
	if err != nil {
		return nil, err
	}

	preds := e.buildPredicates(spec)
	kept := make([]Row, 0, len(rows))
	for i := range rows {
		if e.rowMatches(&rows[i], preds) {
			kept = append(kept, rows[i])
		}
	}

	e.attach(kept, spec.Domain, spec.With, e.relations)
	e.attach(kept, spec.Domain, spec.Metrics, e.metrics)

	if spec.Group != "" {
		field := spec.Group
		sort.SliceStable(kept, func(i, j int) bool {
			a, _ := kept[i].Field(field)
			b, _ := kept[j].Field(field)
			return compareValues(a, b) < 0
		})
	}

	if len(spec.Sort) > 0 {
		sort.SliceStable(kept, func(i, j int) bool {
			for _, key := range spec.Sort {
				a, _ := kept[i].Field(key.Field)
				b, _ := kept[j].Field(key.Field)
				c := compareValues(a, b)
				if c == 0 {
					continue
				}
				if key.Direction == Desc {
					return c > 0
				}
				return c < 0
			}
			return false
		})
	}

	return &Result{Domain: spec.Domain, Rows: kept}, nil
}

// rowMatches applies the conjunctive predicate set to one row. A predicate
// that cannot be decided for the row counts as false for that row only.
func (e *Evaluator) rowMatches(row *Row, preds []predicate) bool {
	for _, p := range preds {
		ok, err := p(row)
		if err != nil {
			e.log.Debug("predicate undecidable for row, excluding",
				zap.Error(err))
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

// attach sets each named computed field on every row. A resolver error
// yields a nil field value for that row; an unknown resolver name is skipped
// with a warning. Source record fields are never touched.
func (e *Evaluator) attach(rows []Row, domain string, names []string, table ResolverTable) {
	for _, name := range names {
		resolver, ok := table.Resolve(domain, name)
		if !ok {
			e.log.Warn("no resolver registered, skipping",
				zap.String("domain", domain), zap.String("name", name))
			continue
		}
		for i := range rows {
			v, err := resolver(&rows[i], rows)
			if err != nil {
				rows[i].SetComputed(name, nil)
				continue
			}
			rows[i].SetComputed(name, v)
		}
	}
}
