package stats

import (
	"math"
	"testing"
)

func TestPearsonCorrelationPerfect(t *testing.T) {
	x := []float64{1, 2, 3, 4, 5}
	y := []float64{2, 4, 6, 8, 10}
	got, err := PearsonCorrelation(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("got %f, want 1.0", got)
	}
}

func TestPearsonCorrelationInverse(t *testing.T) {
	x := []float64{1, 2, 3, 4}
	y := []float64{4, 3, 2, 1}
	got, err := PearsonCorrelation(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-(-1.0)) > 1e-9 {
		t.Errorf("got %f, want -1.0", got)
	}
}

func TestPearsonCorrelationZeroVariance(t *testing.T) {
	x := []float64{3, 3, 3, 3}
	y := []float64{1, 2, 3, 4}
	got, err := PearsonCorrelation(x, y)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != 0 {
		t.Errorf("zero-variance input should correlate as 0, got %f", got)
	}
}

func TestPearsonCorrelationErrors(t *testing.T) {
	if _, err := PearsonCorrelation(nil, nil); err == nil {
		t.Error("expected error for empty signals")
	}
	if _, err := PearsonCorrelation([]float64{1}, []float64{1, 2}); err == nil {
		t.Error("expected error for mismatched lengths")
	}
}

func TestFlattenedCorrelation(t *testing.T) {
	a := [][]float64{{1, 2}, {3, 4}}
	b := [][]float64{{1, 2}, {3, 4}}
	got, err := FlattenedCorrelation(a, b)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if math.Abs(got-1.0) > 1e-9 {
		t.Errorf("identical matrices: got %f, want 1.0", got)
	}

	if _, err := FlattenedCorrelation(nil, b); err == nil {
		t.Error("expected error for empty matrix")
	}
}

func TestFlatten(t *testing.T) {
	flat := Flatten([][]float64{{1, 2}, {3}})
	want := []float64{1, 2, 3}
	if len(flat) != len(want) {
		t.Fatalf("got %d elements, want %d", len(flat), len(want))
	}
	for i := range want {
		if flat[i] != want[i] {
			t.Errorf("flat[%d] = %f, want %f", i, flat[i], want[i])
		}
	}
}
