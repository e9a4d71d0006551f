package condz

import (
	"fmt"
	"slices"

	"github.com/zoobzio/clockz"
	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Conditional is an immutable ordered sequence of clauses bound to an
// optional input value. It replaces chained if/else statements with a
// declarative first-match-wins pipeline:
//
//	price, err := condz.FirstMatching(condz.Of("shipping", order),
//	    condz.ApplyIf(isExpress, expressRate),
//	    condz.ApplyIf(isOversized, freightRate),
//	    condz.ApplyIf(isDomestic, flatRate),
//	).OrElse(ctx, defaultRate)
//
// Clauses are evaluated in exactly the order they were declared; the
// first clause whose condition holds supplies the action that produces
// the result, and every later clause stays unevaluated. Reordering
// clauses changes the pipeline's meaning.
//
// Every operation on a Conditional returns a new, independent value and
// never mutates the receiver, so a Conditional can be shared freely and
// resolved concurrently from multiple goroutines as long as the supplied
// predicates and actions are themselves safe to share.
//
// Pipelines derived through When, Map, FlatMap and FirstMatching share
// the parent's metrics registry, tracer, hooks and clock, so
// instrumentation set up once on the root pipeline observes the whole
// derivation chain.
type Conditional[In, Out any] struct {
	value   In
	pending Action[In, Out]
	clauses []Clause[In, Out]
	name    Name
	bound   bool

	// Observability, shared across derived pipelines.
	clock   clockz.Clock
	metrics *metricz.Registry
	tracer  *tracez.Tracer
	hooks   *hookz.Hooks[ResolveEvent]
}

// newConditional creates an unbound pipeline with fresh observability
// components and all resolution metrics registered.
func newConditional[In, Out any](name Name) *Conditional[In, Out] {
	metrics := metricz.New()
	metrics.Counter(ConditionalResolvedTotal)
	metrics.Counter(ConditionalMatchedTotal)
	metrics.Counter(ConditionalUnmatchedTotal)
	metrics.Counter(ConditionalFailuresTotal)
	metrics.Gauge(ConditionalClausesTotal)
	metrics.Gauge(ConditionalDurationMs)

	return &Conditional[In, Out]{
		name:    name,
		metrics: metrics,
		tracer:  tracez.New(),
		hooks:   hookz.New[ResolveEvent](),
	}
}

// Of creates a new Conditional bound to the given value. The pipeline
// starts without clauses; declare them with FirstMatching for the batch
// form or Apply/When for the staged form.
//
// Example:
//
//	rules := condz.Of("number-rules", 4)
func Of[In any](name Name, value In) *Conditional[In, In] {
	c := newConditional[In, In](name)
	c.value = value
	c.bound = true
	return c
}

// OfNillable creates a new Conditional from a pointer, binding the
// pointed-to value when the pointer is non-nil. A nil pointer produces an
// unbound pipeline: no condition is ever evaluated and every terminal
// operation takes its fallback branch. This mirrors passing a possibly
// absent input without resorting to reflection.
func OfNillable[In any](name Name, value *In) *Conditional[In, In] {
	c := newConditional[In, In](name)
	if value != nil {
		c.value = *value
		c.bound = true
	}
	return c
}

// FirstMatching declares the ordered clauses of the pipeline in batch
// form, fixing the result type Out. The clauses are evaluated in the
// given order when a terminal operation resolves the pipeline.
//
// FirstMatching is a free function because it changes the pipeline's
// result type, which a Go method cannot do. It can be called with zero
// clauses to change the result type before staging clauses with
// Apply/When.
//
// Panics if the receiver pipeline is nil, if a clause was not built
// through ApplyIf, or if an action staged by Apply is still waiting for
// its When.
func FirstMatching[In, Out any](c *Conditional[In, In], clauses ...Clause[In, Out]) *Conditional[In, Out] {
	if c == nil {
		panic("condz.FirstMatching: conditional cannot be nil")
	}
	if c.pending != nil {
		panic("condz.FirstMatching: a staged action is missing its condition; call When before declaring more clauses")
	}
	for i, clause := range clauses {
		if !clause.valid() {
			panic(fmt.Sprintf("condz.FirstMatching: clause %d is missing a condition or action; build clauses with ApplyIf", i))
		}
	}
	return &Conditional[In, Out]{
		name:    c.name,
		value:   c.value,
		bound:   c.bound,
		clauses: slices.Clone(clauses),
		clock:   c.clock,
		metrics: c.metrics,
		tracer:  c.tracer,
		hooks:   c.hooks,
	}
}

// Apply stages an action for the staged two-step declaration protocol.
// The staged action is appended as a clause by the next When call:
//
//	rules := condz.Of("discount", order).
//	    Apply(seasonal).When(isDecember).
//	    Apply(loyalty).When(isReturning)
//
// Staging a second action while one is already waiting for its When is a
// sequencing violation and panics, as does resolving or transforming a
// pipeline that still carries a staged action. This guards against
// actions that are silently dropped and conditions that refer to no
// action.
func (c *Conditional[In, Out]) Apply(action Action[In, Out]) *Conditional[In, Out] {
	if action == nil {
		panic("condz: Apply requires a non-nil action")
	}
	if c.pending != nil {
		panic("condz: an action is already staged; attach its condition with When before staging another")
	}
	d := c.clone()
	d.pending = action
	return d
}

// When attaches a condition to the action staged by the preceding Apply
// call and appends the completed clause to the end of the pipeline.
// Prior clauses are never reordered or removed.
//
// Calling When with no staged action - before any Apply, or twice in a
// row - is a sequencing violation and panics with a message naming the
// required preceding call.
func (c *Conditional[In, Out]) When(condition Predicate[In]) *Conditional[In, Out] {
	if condition == nil {
		panic("condz: When requires a non-nil condition")
	}
	if c.pending == nil {
		panic("condz: a condition can only be attached after an action was staged with Apply")
	}
	d := c.clone()
	d.clauses = append(d.clauses, Clause[In, Out]{
		condition: condition,
		action:    c.pending,
	})
	d.pending = nil
	return d
}

// clone returns a copy of the pipeline with its own clause slice.
// Observability components are shared by reference.
func (c *Conditional[In, Out]) clone() *Conditional[In, Out] {
	d := *c
	d.clauses = slices.Clone(c.clauses)
	return &d
}

// Name returns the name of this pipeline.
func (c *Conditional[In, Out]) Name() Name {
	return c.name
}

// Len returns the number of completed clauses.
func (c *Conditional[In, Out]) Len() int {
	return len(c.clauses)
}

// Bound returns the bound input value and whether one is present.
func (c *Conditional[In, Out]) Bound() (In, bool) {
	return c.value, c.bound
}

// WithClock returns a copy of the pipeline using the given clock for
// event timestamps and duration measurements. Useful for tests.
func (c *Conditional[In, Out]) WithClock(clock clockz.Clock) *Conditional[In, Out] {
	d := c.clone()
	d.clock = clock
	return d
}

// getClock returns the clock to use.
func (c *Conditional[In, Out]) getClock() clockz.Clock {
	if c.clock == nil {
		return clockz.RealClock
	}
	return c.clock
}

// Metrics returns the metrics registry shared by this pipeline and every
// pipeline derived from it.
func (c *Conditional[In, Out]) Metrics() *metricz.Registry {
	return c.metrics
}

// Tracer returns the tracer shared by this pipeline and every pipeline
// derived from it.
func (c *Conditional[In, Out]) Tracer() *tracez.Tracer {
	return c.tracer
}

// Close gracefully shuts down the observability components shared by
// this pipeline and every pipeline derived from it.
func (c *Conditional[In, Out]) Close() error {
	if c.tracer != nil {
		c.tracer.Close()
	}
	if c.hooks != nil {
		c.hooks.Close()
	}
	return nil
}
