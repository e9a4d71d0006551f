package condz

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/zoobzio/hookz"
	"github.com/zoobzio/metricz"
	"github.com/zoobzio/tracez"
)

// Observability constants for pipeline resolution.
const (
	// Metrics.
	ConditionalResolvedTotal  = metricz.Key("conditional.resolved.total")
	ConditionalMatchedTotal   = metricz.Key("conditional.matched.total")
	ConditionalUnmatchedTotal = metricz.Key("conditional.unmatched.total")
	ConditionalFailuresTotal  = metricz.Key("conditional.failures.total")
	ConditionalClausesTotal   = metricz.Key("conditional.clauses.total")
	ConditionalDurationMs     = metricz.Key("conditional.duration.ms")

	// Spans.
	ConditionalResolveSpan = tracez.Key("conditional.resolve")

	// Tags.
	ConditionalTagStrategy    = tracez.Tag("conditional.strategy")
	ConditionalTagMatched     = tracez.Tag("conditional.matched")
	ConditionalTagClauseIndex = tracez.Tag("conditional.clause_index")
	ConditionalTagSuccess     = tracez.Tag("conditional.success")
	ConditionalTagError       = tracez.Tag("conditional.error")

	// Hook event keys.
	ConditionalEventMatched   = hookz.Key("conditional.matched")
	ConditionalEventUnmatched = hookz.Key("conditional.unmatched")
)

// Strategy identifies which operation forced the pipeline to resolve.
type Strategy string

// Resolution strategies reported in ResolveEvent and span tags.
const (
	StrategyOrElse      Strategy = "or_else"
	StrategyOrElseGet   Strategy = "or_else_get"
	StrategyOrElseThrow Strategy = "or_else_throw"
	StrategyFlatMap     Strategy = "flat_map"
)

// ResolveEvent represents a single resolution of a pipeline.
// It is emitted via hookz whenever a terminal operation (or an eager
// FlatMap) scans the clauses, providing visibility into which clause
// matched or that the fallback branch was taken.
type ResolveEvent struct {
	Name        Name          // Pipeline name
	Strategy    Strategy      // Operation that forced the resolution
	Matched     bool          // Whether any clause matched
	ClauseIndex int           // Index of the matched clause, -1 when unmatched
	Success     bool          // Whether the matched action succeeded
	Error       error         // Error from the matched action (if failed)
	Duration    time.Duration // Time spent scanning and applying
	Timestamp   time.Time     // When the event occurred
}

// resolve scans the clauses in declared order and applies the action of
// the first clause whose condition holds for the bound value. It reports
// whether a clause matched so callers can distinguish a matched action
// that legitimately produced a zero value from "no match".
//
// An unbound pipeline skips matching entirely: conditions are never
// evaluated against an absent value.
func (c *Conditional[In, Out]) resolve(ctx context.Context, strat Strategy) (result Out, matched bool, err error) {
	if c.pending != nil {
		panic("condz: a staged action is missing its condition; call When before resolving")
	}

	defer recoverFromPanic[In, Out](&result, &err, c.name, c.value)

	if ctx == nil {
		ctx = context.Background()
	}
	clock := c.getClock()

	c.metrics.Counter(ConditionalResolvedTotal).Inc()
	c.metrics.Gauge(ConditionalClausesTotal).Set(float64(len(c.clauses)))
	start := clock.Now()

	ctx, span := c.tracer.StartSpan(ctx, ConditionalResolveSpan)
	span.SetTag(ConditionalTagStrategy, string(strat))
	defer func() {
		elapsed := clock.Now().Sub(start)
		c.metrics.Gauge(ConditionalDurationMs).Set(float64(elapsed.Milliseconds()))

		span.SetTag(ConditionalTagMatched, fmt.Sprintf("%t", matched))
		if err == nil {
			span.SetTag(ConditionalTagSuccess, "true")
		} else {
			c.metrics.Counter(ConditionalFailuresTotal).Inc()
			span.SetTag(ConditionalTagSuccess, "false")
			span.SetTag(ConditionalTagError, err.Error())
		}
		span.Finish()
	}()

	if c.bound {
		for i, clause := range c.clauses {
			if !clause.condition(ctx, c.value) {
				continue
			}

			// First match wins - later clauses stay unevaluated.
			matched = true
			span.SetTag(ConditionalTagClauseIndex, fmt.Sprintf("%d", i))
			c.metrics.Counter(ConditionalMatchedTotal).Inc()

			actionStart := clock.Now()
			result, err = clause.action(ctx, c.value)
			actionDuration := clock.Now().Sub(actionStart)

			if err != nil {
				var zero Out
				result = zero

				var condErr *Error[In]
				if errors.As(err, &condErr) {
					// Prepend this pipeline's name to the error path.
					condErr.Path = append([]Name{c.name}, condErr.Path...)
					err = condErr
				} else {
					err = &Error[In]{
						Timestamp: clock.Now(),
						InputData: c.value,
						Err:       err,
						Path:      []Name{c.name, clauseLabel(i)},
						Duration:  actionDuration,
						Timeout:   errors.Is(err, context.DeadlineExceeded),
						Canceled:  errors.Is(err, context.Canceled),
					}
				}
			}

			_ = c.hooks.Emit(ctx, ConditionalEventMatched, ResolveEvent{ //nolint:errcheck
				Name:        c.name,
				Strategy:    strat,
				Matched:     true,
				ClauseIndex: i,
				Success:     err == nil,
				Error:       err,
				Duration:    actionDuration,
				Timestamp:   clock.Now(),
			})

			return result, true, err
		}
	}

	c.metrics.Counter(ConditionalUnmatchedTotal).Inc()
	_ = c.hooks.Emit(ctx, ConditionalEventUnmatched, ResolveEvent{ //nolint:errcheck
		Name:        c.name,
		Strategy:    strat,
		Matched:     false,
		ClauseIndex: -1,
		Duration:    clock.Now().Sub(start),
		Timestamp:   clock.Now(),
	})

	var zero Out
	return zero, false, nil
}

// clauseLabel synthesizes a path element for an unnamed clause.
func clauseLabel(i int) Name {
	return Name(fmt.Sprintf("clause-%d", i))
}

// OrElse resolves the pipeline and returns the result of the first
// matching clause's action, or defaultValue when no clause matched.
// The default is taken as given, already evaluated by the caller; use
// OrElseGet when producing it is expensive.
//
// A matched action that legitimately produces the zero value is a valid
// result, distinct from "no match", and is returned as-is rather than
// replaced by the default. An unbound pipeline always returns the
// default.
//
// Errors from a failing condition or action abort the resolution and
// are returned wrapped in a *Error[In].
func (c *Conditional[In, Out]) OrElse(ctx context.Context, defaultValue Out) (Out, error) {
	result, matched, err := c.resolve(ctx, StrategyOrElse)
	if err != nil {
		var zero Out
		return zero, err
	}
	if matched {
		return result, nil
	}
	return defaultValue, nil
}

// OrElseGet resolves the pipeline and returns the result of the first
// matching clause's action, invoking supplier to lazily produce the
// fallback when no clause matched. The supplier is only called on the
// no-match branch.
//
// Panics if supplier is nil; the check happens before any matching
// occurs.
func (c *Conditional[In, Out]) OrElseGet(ctx context.Context, supplier Supplier[Out]) (Out, error) {
	if supplier == nil {
		panic("condz: OrElseGet requires a non-nil supplier")
	}
	result, matched, err := c.resolve(ctx, StrategyOrElseGet)
	if err != nil {
		var zero Out
		return zero, err
	}
	if matched {
		return result, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	return supplier(ctx), nil
}

// OrElseThrow resolves the pipeline and returns the result of the first
// matching clause's action, invoking errSupplier to produce the error
// returned to the caller when no clause matched. The produced error is
// returned exactly as supplied, never wrapped.
//
// Panics if errSupplier is nil; the check happens before any matching
// occurs.
func (c *Conditional[In, Out]) OrElseThrow(ctx context.Context, errSupplier ErrSupplier) (Out, error) {
	if errSupplier == nil {
		panic("condz: OrElseThrow requires a non-nil error supplier")
	}
	result, matched, err := c.resolve(ctx, StrategyOrElseThrow)
	if err != nil {
		var zero Out
		return zero, err
	}
	if matched {
		return result, nil
	}
	if ctx == nil {
		ctx = context.Background()
	}
	var zero Out
	return zero, errSupplier(ctx)
}

// OnMatched registers a handler invoked asynchronously whenever a
// resolution finds a matching clause, after its action completed
// (successfully or not).
func (c *Conditional[In, Out]) OnMatched(handler func(context.Context, ResolveEvent) error) error {
	_, err := c.hooks.Hook(ConditionalEventMatched, handler)
	return err
}

// OnUnmatched registers a handler invoked asynchronously whenever a
// resolution finds no matching clause and takes its fallback branch.
func (c *Conditional[In, Out]) OnUnmatched(handler func(context.Context, ResolveEvent) error) error {
	_, err := c.hooks.Hook(ConditionalEventUnmatched, handler)
	return err
}
