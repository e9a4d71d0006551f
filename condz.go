package condz

import "context"

// Name is a type alias for pipeline names.
// Using this type encourages storing names as constants rather than
// using inline strings throughout your code.
//
// Example:
//
//	const (
//	    ShippingRulesName Name = "shipping-rules"
//	    DiscountRulesName Name = "discount-rules"
//	)
//
//	rules := condz.Of(ShippingRulesName, order)
type Name = string

// Predicate decides whether a clause applies to the bound value.
// Predicates receive a context for cancellation awareness and must be
// free of hidden shared mutable state if the pipeline is shared across
// goroutines. A predicate that panics aborts the resolution; the panic
// is converted to a *Error[In] and no later clause is evaluated.
type Predicate[In any] func(context.Context, In) bool

// Action transforms the bound value into a result once its clause matched.
// An action may fail; the returned error propagates to the caller of the
// terminal operation wrapped in a *Error[In], with the original error
// reachable through errors.Is and errors.As.
type Action[In, Out any] func(context.Context, In) (Out, error)

// Supplier lazily produces a fallback value for OrElseGet.
// It is only invoked when no clause matched.
type Supplier[Out any] func(context.Context) Out

// ErrSupplier produces the error raised by OrElseThrow when no clause
// matched. The produced error is returned to the caller exactly as
// supplied, never wrapped.
type ErrSupplier func(context.Context) error

// Clause is an immutable condition/action pair. Clauses hold no identity
// beyond their two fields; two structurally equal clauses are
// interchangeable. Construct clauses with ApplyIf - the zero Clause is
// invalid and is rejected by FirstMatching.
type Clause[In, Out any] struct {
	condition Predicate[In]
	action    Action[In, Out]
}

// ApplyIf creates a Clause from a condition and the action to apply when
// the condition holds. Both are mandatory; passing nil for either panics
// immediately rather than failing later during resolution.
//
// Example:
//
//	even := condz.ApplyIf(
//	    func(_ context.Context, n int) bool { return n%2 == 0 },
//	    func(_ context.Context, n int) (float64, error) { return float64(n) * 2, nil },
//	)
func ApplyIf[In, Out any](condition Predicate[In], action Action[In, Out]) Clause[In, Out] {
	if condition == nil {
		panic("condz.ApplyIf: condition cannot be nil")
	}
	if action == nil {
		panic("condz.ApplyIf: action cannot be nil")
	}
	return Clause[In, Out]{
		condition: condition,
		action:    action,
	}
}

// Condition returns the clause's predicate.
func (c Clause[In, Out]) Condition() Predicate[In] {
	return c.condition
}

// Action returns the clause's action.
func (c Clause[In, Out]) Action() Action[In, Out] {
	return c.action
}

// valid reports whether the clause was built through ApplyIf.
func (c Clause[In, Out]) valid() bool {
	return c.condition != nil && c.action != nil
}

// and post-composes the clause's action with mapper, keeping the
// condition untouched. Free function because Go methods cannot
// introduce type parameters.
func and[In, Out, Next any](c Clause[In, Out], mapper func(context.Context, Out) Next) Clause[In, Next] {
	action := c.action
	return Clause[In, Next]{
		condition: c.condition,
		action: func(ctx context.Context, value In) (Next, error) {
			out, err := action(ctx, value)
			if err != nil {
				var zero Next
				return zero, err
			}
			return mapper(ctx, out), nil
		},
	}
}
