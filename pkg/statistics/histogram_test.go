package statistics

import (
	"math"
	"testing"

	"heapstore/pkg/primitives"
)

func TestHistogramScenario(t *testing.T) {
	h := NewIntHistogram(10, 1, 10)
	for v := 1; v <= 10; v++ {
		if err := h.AddValue(v); err != nil {
			t.Fatalf("AddValue(%d): %v", v, err)
		}
	}

	cases := []struct {
		op   primitives.Predicate
		v    int
		want float64
	}{
		{primitives.Equals, 5, 0.1},
		{primitives.GreaterThan, 5, 0.5},
		{primitives.LessThan, 5, 0.4},
	}

	for _, c := range cases {
		got, err := h.EstimateSelectivity(c.op, c.v)
		if err != nil {
			t.Fatalf("EstimateSelectivity(%v, %d): %v", c.op, c.v, err)
		}
		if math.Abs(got-c.want) > 1e-9 {
			t.Errorf("estimate(%v,%d) = %v, want %v", c.op, c.v, got, c.want)
		}
	}
}

func TestHistogramTotalProbability(t *testing.T) {
	h := NewIntHistogram(4, 0, 19)
	for v := 0; v <= 19; v++ {
		if err := h.AddValue(v); err != nil {
			t.Fatalf("AddValue(%d): %v", v, err)
		}
	}

	for v := -5; v <= 25; v++ {
		eq, _ := h.EstimateSelectivity(primitives.Equals, v)
		ne, _ := h.EstimateSelectivity(primitives.NotEqual, v)
		if math.Abs((eq+ne)-1) > 1e-9 {
			t.Errorf("v=%d: estimate(=)+estimate(!=) = %v, want 1", v, eq+ne)
		}

		lt, _ := h.EstimateSelectivity(primitives.LessThan, v)
		gt, _ := h.EstimateSelectivity(primitives.GreaterThan, v)
		total := lt + eq + gt
		if total < -1e-9 || total > 1+1e-9 {
			t.Errorf("v=%d: estimate(<)+estimate(=)+estimate(>) = %v, want in [0,1]", v, total)
		}
	}
}

func TestHistogramOutOfRangeBounds(t *testing.T) {
	h := NewIntHistogram(5, 0, 9)
	for v := 0; v < 10; v++ {
		if err := h.AddValue(v); err != nil {
			t.Fatalf("AddValue(%d): %v", v, err)
		}
	}

	if got, _ := h.EstimateSelectivity(primitives.GreaterThan, -100); got != 1 {
		t.Errorf("estimate(>,-100) = %v, want 1", got)
	}
	if got, _ := h.EstimateSelectivity(primitives.GreaterThan, 100); got != 0 {
		t.Errorf("estimate(>,100) = %v, want 0", got)
	}
	if got, _ := h.EstimateSelectivity(primitives.LessThan, -100); got != 0 {
		t.Errorf("estimate(<,-100) = %v, want 0", got)
	}
	if got, _ := h.EstimateSelectivity(primitives.LessThan, 100); got != 1 {
		t.Errorf("estimate(<,100) = %v, want 1", got)
	}
}

func TestHistogramUnsupportedPredicate(t *testing.T) {
	h := NewIntHistogram(4, 0, 9)
	if _, err := h.EstimateSelectivity(primitives.Predicate(99), 5); err == nil {
		t.Fatal("expected an error for an unrecognized predicate")
	}
}

func TestHistogramAddValueOutOfRange(t *testing.T) {
	h := NewIntHistogram(4, 0, 9)
	if err := h.AddValue(10); err == nil {
		t.Fatal("expected an error adding a value above max")
	}
	if err := h.AddValue(-1); err == nil {
		t.Fatal("expected an error adding a value below min")
	}
}
