package condz

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/zoobzio/clockz"
)

func TestOrElse_FirstClauseMatches(t *testing.T) {
	result, err := numberRules(4).OrElse(context.Background(), 0.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 8.0 {
		t.Errorf("Expected 8.0, got %v", result)
	}
}

func TestOrElse_SecondClauseMatches(t *testing.T) {
	result, err := numberRules(101).OrElse(context.Background(), 0.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 50.5 {
		t.Errorf("Expected 50.5, got %v", result)
	}
}

func TestOrElse_NoMatchReturnsDefault(t *testing.T) {
	result, err := numberRules(3).OrElse(context.Background(), 0.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 0.0 {
		t.Errorf("Expected default 0.0, got %v", result)
	}
}

func TestOrElse_OrderSensitivity(t *testing.T) {
	first := func(_ context.Context, _ int) (string, error) { return "first", nil }
	second := func(_ context.Context, _ int) (string, error) { return "second", nil }
	always := func(_ context.Context, _ int) bool { return true }

	tests := []struct {
		name string
		c    *Conditional[int, string]
		want string
	}{
		{
			name: "batch declaration order",
			c: FirstMatching(Of("batch", 1),
				ApplyIf(always, first),
				ApplyIf(always, second),
			),
			want: "first",
		},
		{
			name: "batch declaration reversed",
			c: FirstMatching(Of("batch-reversed", 1),
				ApplyIf(always, second),
				ApplyIf(always, first),
			),
			want: "second",
		},
		{
			name: "staged declaration order",
			c: FirstMatching[int, string](Of("staged", 1)).
				Apply(first).When(always).
				Apply(second).When(always),
			want: "first",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := tt.c.OrElse(context.Background(), "none")
			if err != nil {
				t.Fatalf("Expected no error, got %v", err)
			}
			if result != tt.want {
				t.Errorf("Expected %q, got %q", tt.want, result)
			}
		})
	}
}

func TestOrElse_ShortCircuitOnMatch(t *testing.T) {
	laterEvaluated := false

	c := FirstMatching(Of("short-circuit", 4),
		ApplyIf(isEven, double),
		ApplyIf(
			func(_ context.Context, _ int) bool { laterEvaluated = true; return true },
			func(_ context.Context, _ int) (float64, error) {
				laterEvaluated = true
				return 0, errors.New("must never run")
			},
		),
	)

	result, err := c.OrElse(context.Background(), 0.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 8.0 {
		t.Errorf("Expected 8.0, got %v", result)
	}
	if laterEvaluated {
		t.Error("Expected later clause to stay unevaluated after a match")
	}
}

func TestOrElse_ShortCircuitOnError(t *testing.T) {
	reached := false
	boom := errors.New("boom")

	c := FirstMatching(Of("error-stop", 10),
		ApplyIf(
			func(_ context.Context, n int) bool { return n > 100 },
			func(_ context.Context, _ int) (int, error) { return 1, nil },
		),
		ApplyIf(
			func(_ context.Context, _ int) bool { return true },
			func(_ context.Context, _ int) (int, error) { return 0, boom },
		),
		ApplyIf(
			func(_ context.Context, _ int) bool { reached = true; return true },
			func(_ context.Context, _ int) (int, error) { reached = true; return 42, nil },
		),
	)

	result, err := c.OrElse(context.Background(), 0)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, boom) {
		t.Errorf("Expected original error to be reachable via errors.Is, got %v", err)
	}
	if result != 0 {
		t.Errorf("Expected zero value on error, got %d", result)
	}
	if reached {
		t.Error("Expected clause after the failing one to stay unevaluated")
	}
}

func TestOrElse_ActionErrorWrapped(t *testing.T) {
	failing := errors.New("rate lookup failed")

	c := FirstMatching(Of("wrapping", 4),
		ApplyIf(isEven, func(_ context.Context, _ int) (float64, error) { return 0, failing }),
	)

	_, err := c.OrElse(context.Background(), 0.0)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var condErr *Error[int]
	if !errors.As(err, &condErr) {
		t.Fatal("Expected error to be of type *condz.Error[int]")
	}
	if len(condErr.Path) != 2 {
		t.Fatalf("Expected error path length 2, got %d", len(condErr.Path))
	}
	if condErr.Path[0] != "wrapping" {
		t.Errorf("Expected first path element 'wrapping', got %s", condErr.Path[0])
	}
	if condErr.Path[1] != "clause-0" {
		t.Errorf("Expected second path element 'clause-0', got %s", condErr.Path[1])
	}
	if condErr.InputData != 4 {
		t.Errorf("Expected input data 4, got %d", condErr.InputData)
	}
}

func TestOrElse_ConditionPanicConverted(t *testing.T) {
	laterEvaluated := false

	c := FirstMatching(Of("panicky", 4),
		ApplyIf(
			func(_ context.Context, _ int) bool { panic("predicate exploded") },
			double,
		),
		ApplyIf(
			func(_ context.Context, _ int) bool { laterEvaluated = true; return true },
			double,
		),
	)

	result, err := c.OrElse(context.Background(), 0.0)
	if err == nil {
		t.Fatal("Expected error, got nil")
	}

	var condErr *Error[int]
	if !errors.As(err, &condErr) {
		t.Fatal("Expected error to be of type *condz.Error[int]")
	}
	if result != 0 {
		t.Errorf("Expected zero value after panic, got %v", result)
	}
	if laterEvaluated {
		t.Error("Expected later clause to stay unevaluated after a panicking condition")
	}
}

func TestOrElse_UnboundSkipsConditions(t *testing.T) {
	evaluated := false

	c := FirstMatching(OfNillable[int]("unbound", nil),
		ApplyIf(
			func(_ context.Context, _ int) bool { evaluated = true; return true },
			double,
		),
	)

	result, err := c.OrElse(context.Background(), 99.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 99.0 {
		t.Errorf("Expected default 99.0, got %v", result)
	}
	if evaluated {
		t.Error("Expected conditions to never run against an absent value")
	}
}

func TestOrElse_MatchedZeroValueDistinctFromNoMatch(t *testing.T) {
	c := FirstMatching(Of("zero-result", 4),
		ApplyIf(isEven, func(_ context.Context, _ int) (float64, error) { return 0, nil }),
	)

	result, err := c.OrElse(context.Background(), 123.0)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 0.0 {
		t.Errorf("Expected matched zero result, not the default, got %v", result)
	}
}

func TestOrElse_MatchedNilResultDistinctFromNoMatch(t *testing.T) {
	fallback := "fallback"

	c := FirstMatching(Of("nil-result", 4),
		ApplyIf(isEven, func(_ context.Context, _ int) (*string, error) { return nil, nil }),
	)

	result, err := c.OrElse(context.Background(), &fallback)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != nil {
		t.Errorf("Expected matched nil result, not the default, got %v", *result)
	}
}

func TestOrElse_Determinism(t *testing.T) {
	c := numberRules(4)

	for i := 0; i < 10; i++ {
		result, err := c.OrElse(context.Background(), 0.0)
		if err != nil {
			t.Fatalf("Resolution %d: expected no error, got %v", i, err)
		}
		if result != 8.0 {
			t.Errorf("Resolution %d: expected 8.0, got %v", i, result)
		}
	}
}

func TestOrElseGet_Match(t *testing.T) {
	invoked := false

	result, err := numberRules(4).OrElseGet(context.Background(), func(context.Context) float64 {
		invoked = true
		return -1
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 8.0 {
		t.Errorf("Expected 8.0, got %v", result)
	}
	if invoked {
		t.Error("Expected supplier to stay uninvoked on a match")
	}
}

func TestOrElseGet_NoMatchInvokesSupplier(t *testing.T) {
	result, err := numberRules(3).OrElseGet(context.Background(), func(context.Context) float64 {
		return 7.5
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 7.5 {
		t.Errorf("Expected supplied 7.5, got %v", result)
	}
}

func TestOrElseGet_NilSupplierPanicsBeforeMatching(t *testing.T) {
	evaluated := false

	c := FirstMatching(Of("nil-supplier", 4),
		ApplyIf(
			func(_ context.Context, _ int) bool { evaluated = true; return true },
			double,
		),
	)

	expectPanic(t, func() {
		_, _ = c.OrElseGet(context.Background(), nil)
	})
	if evaluated {
		t.Error("Expected the nil supplier check to run before any matching")
	}
}

func TestOrElseThrow_Match(t *testing.T) {
	result, err := numberRules(4).OrElseThrow(context.Background(), func(context.Context) error {
		return errors.New("no rule applied")
	})
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 8.0 {
		t.Errorf("Expected 8.0, got %v", result)
	}
}

func TestOrElseThrow_NoMatchRaisesSuppliedError(t *testing.T) {
	noRule := errors.New("no rule applied")

	result, err := numberRules(3).OrElseThrow(context.Background(), func(context.Context) error {
		return noRule
	})
	if err == nil {
		t.Fatal("Expected error, got nil")
	}
	if !errors.Is(err, noRule) {
		t.Errorf("Expected the supplied error untouched, got %v", err)
	}
	var condErr *Error[int]
	if errors.As(err, &condErr) {
		t.Error("Expected the supplied error to not be wrapped")
	}
	if result != 0.0 {
		t.Errorf("Expected zero value alongside the error, got %v", result)
	}
}

func TestOrElseThrow_NilSupplierPanicsBeforeMatching(t *testing.T) {
	evaluated := false

	c := FirstMatching(Of("nil-err-supplier", 4),
		ApplyIf(
			func(_ context.Context, _ int) bool { evaluated = true; return true },
			double,
		),
	)

	expectPanic(t, func() {
		_, _ = c.OrElseThrow(context.Background(), nil)
	})
	if evaluated {
		t.Error("Expected the nil supplier check to run before any matching")
	}
}

func TestResolve_MatchedHook(t *testing.T) {
	c := numberRules(4)
	events := make(chan ResolveEvent, 1)

	if err := c.OnMatched(func(_ context.Context, event ResolveEvent) error {
		events <- event
		return nil
	}); err != nil {
		t.Fatalf("Expected no error registering hook, got %v", err)
	}

	if _, err := c.OrElse(context.Background(), 0.0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case event := <-events:
		if event.Name != "number-rules" {
			t.Errorf("Expected event name 'number-rules', got %s", event.Name)
		}
		if !event.Matched {
			t.Error("Expected matched event")
		}
		if event.ClauseIndex != 0 {
			t.Errorf("Expected clause index 0, got %d", event.ClauseIndex)
		}
		if event.Strategy != StrategyOrElse {
			t.Errorf("Expected strategy %s, got %s", StrategyOrElse, event.Strategy)
		}
		if !event.Success {
			t.Error("Expected successful event")
		}
	case <-time.After(time.Second):
		t.Fatal("Expected matched event within 1s")
	}
}

func TestResolve_UnmatchedHook(t *testing.T) {
	c := numberRules(3)
	events := make(chan ResolveEvent, 1)

	if err := c.OnUnmatched(func(_ context.Context, event ResolveEvent) error {
		events <- event
		return nil
	}); err != nil {
		t.Fatalf("Expected no error registering hook, got %v", err)
	}

	if _, err := c.OrElseGet(context.Background(), func(context.Context) float64 { return 0 }); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case event := <-events:
		if event.Matched {
			t.Error("Expected unmatched event")
		}
		if event.ClauseIndex != -1 {
			t.Errorf("Expected clause index -1, got %d", event.ClauseIndex)
		}
		if event.Strategy != StrategyOrElseGet {
			t.Errorf("Expected strategy %s, got %s", StrategyOrElseGet, event.Strategy)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected unmatched event within 1s")
	}
}

func TestResolve_WithFakeClock(t *testing.T) {
	clock := clockz.NewFakeClock()
	c := numberRules(4).WithClock(clock)
	events := make(chan ResolveEvent, 1)

	if err := c.OnMatched(func(_ context.Context, event ResolveEvent) error {
		events <- event
		return nil
	}); err != nil {
		t.Fatalf("Expected no error registering hook, got %v", err)
	}

	if _, err := c.OrElse(context.Background(), 0.0); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	select {
	case event := <-events:
		if !event.Timestamp.Equal(clock.Now()) {
			t.Errorf("Expected event timestamp from the fake clock, got %v", event.Timestamp)
		}
		if event.Duration != 0 {
			t.Errorf("Expected zero duration under a frozen clock, got %v", event.Duration)
		}
	case <-time.After(time.Second):
		t.Fatal("Expected matched event within 1s")
	}
}

func TestResolve_NilContext(t *testing.T) {
	result, err := numberRules(4).OrElse(nil, 0.0) //nolint:staticcheck
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if result != 8.0 {
		t.Errorf("Expected 8.0, got %v", result)
	}
}
