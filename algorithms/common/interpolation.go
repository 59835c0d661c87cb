package common

import (
	"math"
)

// InterpolationType defines interpolation method
type InterpolationType int

const (
	Linear InterpolationType = iota
	Cubic
)

// Interpolator provides interpolation-based resampling for signals and
// feature matrices
type Interpolator struct {
	method InterpolationType
}

// NewInterpolator creates a new interpolator
func NewInterpolator(method InterpolationType) *Interpolator {
	return &Interpolator{
		method: method,
	}
}

// Interpolate performs interpolation at fractional index
func (interp *Interpolator) Interpolate(data []float64, index float64) float64 {
	switch interp.method {
	case Cubic:
		return interp.cubicInterpolate(data, index)
	default:
		return interp.linearInterpolate(data, index)
	}
}

// linearInterpolate performs linear interpolation
func (interp *Interpolator) linearInterpolate(data []float64, index float64) float64 {
	if len(data) == 0 {
		return 0.0
	}

	if index <= 0 {
		return data[0]
	}
	if index >= float64(len(data)-1) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	if i >= len(data)-1 {
		return data[len(data)-1]
	}

	return data[i] + frac*(data[i+1]-data[i])
}

// cubicInterpolate performs cubic interpolation using a Catmull-Rom spline
func (interp *Interpolator) cubicInterpolate(data []float64, index float64) float64 {
	if len(data) < 4 {
		return interp.linearInterpolate(data, index)
	}

	if index <= 1 {
		return data[int(math.Max(0, index))]
	}
	if index >= float64(len(data)-2) {
		return data[len(data)-1]
	}

	i := int(index)
	frac := index - float64(i)

	// Ensure we have 4 points for cubic interpolation
	if i < 1 {
		i = 1
	}
	if i >= len(data)-2 {
		i = len(data) - 3
	}

	y0 := data[i-1]
	y1 := data[i]
	y2 := data[i+1]
	y3 := data[i+2]

	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2
	a3 := y1

	return a0*frac*frac*frac + a1*frac*frac + a2*frac + a3
}

// ResampleSignal resamples a signal to a new sample rate
func (interp *Interpolator) ResampleSignal(signal []float64, originalRate, targetRate int) []float64 {
	if len(signal) == 0 || originalRate <= 0 || targetRate <= 0 {
		return signal
	}
	if originalRate == targetRate {
		return signal
	}

	ratio := float64(originalRate) / float64(targetRate)
	newLength := int(float64(len(signal)) / ratio)

	if newLength <= 0 {
		return []float64{}
	}

	resampled := make([]float64, newLength)

	for i := range resampled {
		sourceIndex := float64(i) * ratio
		resampled[i] = interp.Interpolate(signal, sourceIndex)
	}

	return resampled
}

// InterpolateArray interpolates an entire array to a new length
func (interp *Interpolator) InterpolateArray(data []float64, newLength int) []float64 {
	if len(data) == 0 || newLength <= 0 {
		return []float64{}
	}

	if newLength == len(data) {
		result := make([]float64, len(data))
		copy(result, data)
		return result
	}

	if newLength == 1 {
		return []float64{data[0]}
	}

	result := make([]float64, newLength)
	ratio := float64(len(data)-1) / float64(newLength-1)

	for i := range result {
		sourceIndex := float64(i) * ratio
		result[i] = interp.Interpolate(data, sourceIndex)
	}

	return result
}

// ResampleMatrixFrames resamples a time-major feature matrix (frames x bins)
// along the time axis to the requested frame count. Each bin column is
// interpolated independently so the bin dimension is preserved.
func (interp *Interpolator) ResampleMatrixFrames(matrix [][]float64, newFrames int) [][]float64 {
	if len(matrix) == 0 || newFrames <= 0 {
		return [][]float64{}
	}

	if newFrames == len(matrix) {
		result := make([][]float64, len(matrix))
		for t, frame := range matrix {
			result[t] = make([]float64, len(frame))
			copy(result[t], frame)
		}
		return result
	}

	bins := len(matrix[0])

	// Extract each bin as a time series, resample, then reassemble frames
	column := make([]float64, len(matrix))
	result := make([][]float64, newFrames)
	for t := range result {
		result[t] = make([]float64, bins)
	}

	for b := range bins {
		for t, frame := range matrix {
			if b < len(frame) {
				column[t] = frame[b]
			} else {
				column[t] = 0.0
			}
		}

		resampled := interp.InterpolateArray(column, newFrames)
		for t, val := range resampled {
			result[t][b] = val
		}
	}

	return result
}
