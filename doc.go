// Package condz provides a lightweight, type-safe library for declarative conditional pipelines in Go.
//
// # Overview
//
// condz replaces chained if/else statements with an immutable, composable
// first-match-wins pipeline. A pipeline binds an input value to an ordered
// sequence of (condition, action) clauses; resolving it returns the result
// of the first clause whose condition holds, or a caller-supplied fallback
// when none does. Evaluation is pure, synchronous and side-effect-free -
// the library merely sequences and invokes the opaque callables the caller
// supplies.
//
// # Core Concepts
//
//   - Clause[In, Out]: an immutable condition/action pair built with ApplyIf
//   - Conditional[In, Out]: an immutable ordered sequence of clauses plus an
//     optional bound input value
//   - Terminal operations: OrElse, OrElseGet and OrElseThrow resolve the
//     pipeline to a concrete result or error
//
// Every transformation returns a new Conditional and never mutates the
// receiver, so pipelines are safe to share and to resolve concurrently.
//
// # Building Pipelines
//
// Batch form:
//
//	result, err := condz.FirstMatching(condz.Of("number-rules", 4),
//	    condz.ApplyIf(isEven, double),
//	    condz.ApplyIf(isLarge, halve),
//	).OrElse(ctx, 0.0)
//
// Staged form, appending clauses one Apply/When pair at a time:
//
//	rules := condz.Of("discount", order).
//	    Apply(seasonalDiscount).When(isDecember).
//	    Apply(loyaltyDiscount).When(isReturningCustomer)
//
// The two forms are equivalent: clauses are evaluated in exactly the order
// they were declared, whichever way they were declared.
//
// # Matching Rules
//
//   - First match wins: only the action of the first true condition runs;
//     every later condition and action stays unevaluated.
//   - An unbound pipeline (nil pointer passed to OfNillable, or the empty
//     pipeline a non-matching FlatMap produces) never evaluates conditions
//     and always takes the fallback branch.
//   - A matched action that produces the zero value is a valid result,
//     distinct from "no match"; it is returned as-is, not replaced by the
//     fallback.
//   - Repeated resolution of the same pipeline yields identical results.
//
// # Transformation
//
// Map post-composes every action with a mapping function without
// evaluating anything. FlatMap is deliberately eager: it resolves the
// current pipeline immediately and returns the inner pipeline produced
// from the matched result (or an empty pipeline when nothing matched).
// See FlatMap's documentation before relying on laziness.
//
// # Error Handling
//
// Misuse of the construction API - nil conditions, actions, mappers or
// suppliers, or a When with no staged action - panics immediately with a
// descriptive message rather than deferring the failure to resolution
// time. Errors returned by actions, and panics escaping conditions or
// actions, abort the resolution and surface as a *Error[In] carrying the
// pipeline path, the input value and timing information; the original
// error stays reachable through errors.Is and errors.As. Errors produced
// by an OrElseThrow supplier are returned to the caller untouched.
//
// # Observability
//
// Every root pipeline carries a metricz registry, a tracez tracer and
// typed hookz events (OnMatched/OnUnmatched), all shared with the
// pipelines derived from it. Timestamps and durations come from a clockz
// clock that tests can replace via WithClock.
package condz
