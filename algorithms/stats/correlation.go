package stats

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// minStdDev is the variance floor below which a signal is treated as
// constant and correlation against it is defined as 0
const minStdDev = 1e-10

// PearsonCorrelation computes the Pearson correlation coefficient between
// two equal-length vectors. Zero-variance inputs yield 0 rather than NaN.
func PearsonCorrelation(x, y []float64) (float64, error) {
	if len(x) == 0 || len(y) == 0 {
		return 0, fmt.Errorf("empty signals provided")
	}
	if len(x) != len(y) {
		return 0, fmt.Errorf("signal lengths differ: %d vs %d", len(x), len(y))
	}

	if stdDev(x) < minStdDev || stdDev(y) < minStdDev {
		return 0, nil
	}

	corr := stat.Correlation(x, y, nil)
	if math.IsNaN(corr) {
		return 0, nil
	}

	return clampCorrelation(corr), nil
}

// FlattenedCorrelation computes the Pearson correlation between two
// time-major feature matrices flattened into 1D vectors. Both matrices must
// already share the same frame and bin counts; callers align frame counts
// before flattening.
func FlattenedCorrelation(a, b [][]float64) (float64, error) {
	av := Flatten(a)
	bv := Flatten(b)

	if len(av) == 0 || len(bv) == 0 {
		return 0, fmt.Errorf("empty feature matrix")
	}
	if len(av) != len(bv) {
		return 0, fmt.Errorf("flattened matrix lengths differ: %d vs %d", len(av), len(bv))
	}

	return PearsonCorrelation(av, bv)
}

// Flatten converts a time-major matrix into a single row-major vector
func Flatten(matrix [][]float64) []float64 {
	total := 0
	for _, row := range matrix {
		total += len(row)
	}

	flat := make([]float64, 0, total)
	for _, row := range matrix {
		flat = append(flat, row...)
	}
	return flat
}

// stdDev computes the population standard deviation
func stdDev(signal []float64) float64 {
	if len(signal) == 0 {
		return 0.0
	}

	mean := stat.Mean(signal, nil)

	variance := 0.0
	for _, val := range signal {
		diff := val - mean
		variance += diff * diff
	}
	variance /= float64(len(signal))

	return math.Sqrt(variance)
}

// clampCorrelation ensures correlation is in valid range [-1, 1]
func clampCorrelation(correlation float64) float64 {
	if correlation > 1.0 {
		return 1.0
	} else if correlation < -1.0 {
		return -1.0
	}
	return correlation
}
