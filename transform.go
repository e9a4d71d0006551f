package condz

import "context"

// Map returns a new pipeline with the same bound value and the same
// ordered conditions, with every clause's action post-composed with
// mapper (new action = mapper(action(x))). Map is purely structural: no
// condition or action is evaluated by Map itself; evaluation stays
// deferred until a terminal operation resolves the pipeline.
//
// Map is a free function because it changes the pipeline's result type,
// which a Go method cannot do.
//
//	labeled := condz.Map(rules, func(_ context.Context, n float64) string {
//	    return fmt.Sprintf("rate: %.2f", n)
//	})
//
// Panics if c or mapper is nil, or if an action staged by Apply is still
// waiting for its When.
func Map[In, Out, Next any](c *Conditional[In, Out], mapper func(context.Context, Out) Next) *Conditional[In, Next] {
	if c == nil {
		panic("condz.Map: conditional cannot be nil")
	}
	if mapper == nil {
		panic("condz.Map: mapper cannot be nil")
	}
	if c.pending != nil {
		panic("condz.Map: a staged action is missing its condition; call When before transforming")
	}

	clauses := make([]Clause[In, Next], len(c.clauses))
	for i, clause := range c.clauses {
		clauses[i] = and(clause, mapper)
	}

	return &Conditional[In, Next]{
		name:    c.name,
		value:   c.value,
		bound:   c.bound,
		clauses: clauses,
		clock:   c.clock,
		metrics: c.metrics,
		tracer:  c.tracer,
		hooks:   c.hooks,
	}
}

// FlatMap resolves the pipeline now, applies flatMapper to the matched
// result, and returns the inner pipeline it produces.
//
// Unlike Map, FlatMap cannot stay lazy: a Conditional always carries its
// bound value, so flattening requires resolving the current pipeline
// first. This is a deliberate deviation from a classical lazy monadic
// flatMap - the current pipeline's conditions (and the matching action)
// run at the FlatMap call itself, which is also why FlatMap takes a
// context and returns an error.
//
// When no clause matches, or the pipeline is unbound, flatMapper is
// never invoked and FlatMap returns an empty pipeline: no clauses, no
// bound value, so resolving it always takes the fallback branch.
//
// Panics if c or flatMapper is nil, if a staged action is missing its
// When, or if flatMapper returns a nil pipeline.
func FlatMap[In, Out, Next any](ctx context.Context, c *Conditional[In, Out], flatMapper func(context.Context, Out) *Conditional[Out, Next]) (*Conditional[Out, Next], error) {
	if c == nil {
		panic("condz.FlatMap: conditional cannot be nil")
	}
	if flatMapper == nil {
		panic("condz.FlatMap: flat mapper cannot be nil")
	}

	out, matched, err := c.resolve(ctx, StrategyFlatMap)
	if err != nil {
		return nil, err
	}
	if !matched {
		empty := newConditional[Out, Next](c.name)
		empty.clock = c.clock
		return empty, nil
	}

	inner := flatMapper(ctx, out)
	if inner == nil {
		panic("condz.FlatMap: flat mapper returned a nil conditional")
	}
	return inner, nil
}
