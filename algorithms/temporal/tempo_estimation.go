package temporal

import (
	"math"
)

// TempoEstimation estimates tempo in beats per minute from a mono waveform
type TempoEstimation struct {
	onsetDetector     *OnsetDetection
	envelopeExtractor *Envelope

	minTempo float64
	maxTempo float64
}

// NewTempoEstimation creates a new tempo estimator with the standard
// 30-240 BPM search range
func NewTempoEstimation() *TempoEstimation {
	return &TempoEstimation{
		onsetDetector:     NewOnsetDetection(),
		envelopeExtractor: NewEnvelope(),
		minTempo:          30.0,
		maxTempo:          240.0,
	}
}

// NewTempoEstimationWithRange creates a tempo estimator with a custom BPM range
func NewTempoEstimationWithRange(minTempo, maxTempo float64) *TempoEstimation {
	te := NewTempoEstimation()
	if minTempo > 0 {
		te.minTempo = minTempo
	}
	if maxTempo > te.minTempo {
		te.maxTempo = maxTempo
	}
	return te
}

// EstimateTempo estimates tempo using autocorrelation of the RMS energy
// envelope, falling back to inter-onset intervals when the envelope is too
// short to be periodic. Silent or too-short signals report 0 BPM.
func (te *TempoEstimation) EstimateTempo(signal []float64, sampleRate int) float64 {
	if len(signal) == 0 || sampleRate <= 0 {
		return 0.0
	}

	tempo := te.estimateFromAutocorrelation(signal, sampleRate)
	if tempo > 0 {
		return tempo
	}

	return te.estimateFromOnsets(signal, sampleRate)
}

// estimateFromAutocorrelation estimates tempo from periodicity of the
// energy envelope
func (te *TempoEstimation) estimateFromAutocorrelation(signal []float64, sampleRate int) float64 {
	// 100ms frames with 25% hop for beat analysis
	frameSize := int(0.1 * float64(sampleRate))
	hopSize := frameSize / 4
	if frameSize <= 0 || hopSize <= 0 {
		return 0.0
	}

	envelope := te.envelopeExtractor.ComputeRMS(signal, frameSize, hopSize)

	if len(envelope) < 10 {
		return 0.0
	}

	// All-silent envelope carries no beat information
	if isFlat(envelope) {
		return 0.0
	}

	maxLag := len(envelope) / 2
	autocorr := te.calculateAutocorrelation(envelope, maxLag)

	return te.findTempoFromAutocorrelation(autocorr, hopSize, sampleRate)
}

// estimateFromOnsets estimates tempo from inter-onset intervals
func (te *TempoEstimation) estimateFromOnsets(signal []float64, sampleRate int) float64 {
	onsets := te.onsetDetector.DetectOnsets(signal, sampleRate)
	if len(onsets) < 2 {
		return 0.0
	}

	// Calculate inter-onset intervals in seconds
	intervals := make([]float64, len(onsets)-1)
	for i := range intervals {
		intervalSamples := onsets[i+1] - onsets[i]
		intervals[i] = float64(intervalSamples) / float64(sampleRate)
	}

	return te.findTempoFromIntervals(intervals)
}

// findTempoFromIntervals finds the dominant tempo from inter-onset intervals
func (te *TempoEstimation) findTempoFromIntervals(intervals []float64) float64 {
	if len(intervals) == 0 {
		return 0.0
	}

	minPeriod := 60.0 / te.maxTempo
	maxPeriod := 60.0 / te.minTempo

	// Histogram of candidate tempos quantized to whole BPM
	counts := make(map[int]int)
	for _, interval := range intervals {
		if interval < minPeriod || interval > maxPeriod {
			continue
		}
		bpm := int(math.Round(60.0 / interval))
		counts[bpm]++
	}

	bestTempo := 0.0
	bestCount := 0
	for bpm, count := range counts {
		if count > bestCount || (count == bestCount && float64(bpm) < bestTempo) {
			bestCount = count
			bestTempo = float64(bpm)
		}
	}

	return bestTempo
}

// calculateAutocorrelation calculates the normalized autocorrelation function
func (te *TempoEstimation) calculateAutocorrelation(signal []float64, maxLag int) []float64 {
	if maxLag > len(signal) {
		maxLag = len(signal)
	}

	autocorr := make([]float64, maxLag)

	for lag := 0; lag < maxLag; lag++ {
		sum := 0.0
		count := 0

		for i := 0; i < len(signal)-lag; i++ {
			sum += signal[i] * signal[i+lag]
			count++
		}

		if count > 0 {
			autocorr[lag] = sum / float64(count)
		}
	}

	// Normalize
	if len(autocorr) > 0 && autocorr[0] > 0 {
		for i := range autocorr {
			autocorr[i] /= autocorr[0]
		}
	}

	return autocorr
}

// findTempoFromAutocorrelation finds tempo from autocorrelation peaks
func (te *TempoEstimation) findTempoFromAutocorrelation(autocorr []float64, hopSize int, sampleRate int) float64 {
	if len(autocorr) < 10 {
		return 0.0
	}

	// Convert lag to time period
	timePerFrame := float64(hopSize) / float64(sampleRate)

	minPeriodSec := 60.0 / te.maxTempo
	maxPeriodSec := 60.0 / te.minTempo

	minLag := int(minPeriodSec / timePerFrame)
	maxLag := int(maxPeriodSec / timePerFrame)

	if minLag < 1 {
		minLag = 1
	}
	if maxLag >= len(autocorr) {
		maxLag = len(autocorr) - 1
	}

	// Find highest local maximum in the tempo range
	maxVal := 0.0
	bestLag := 0

	for lag := minLag; lag <= maxLag; lag++ {
		if lag > 0 && lag < len(autocorr)-1 {
			if autocorr[lag] > autocorr[lag-1] &&
				autocorr[lag] > autocorr[lag+1] &&
				autocorr[lag] > maxVal {
				maxVal = autocorr[lag]
				bestLag = lag
			}
		}
	}

	if bestLag == 0 {
		return 0.0
	}

	// Convert lag back to tempo
	period := float64(bestLag) * timePerFrame
	return 60.0 / period
}

// ClassifyTempoCategory classifies tempo into broad categories
func (te *TempoEstimation) ClassifyTempoCategory(tempo float64) string {
	switch {
	case tempo < 60:
		return "very_slow"
	case tempo < 90:
		return "slow"
	case tempo < 120:
		return "moderate"
	case tempo < 150:
		return "fast"
	default:
		return "very_fast"
	}
}

// isFlat reports whether a signal has no variation worth correlating
func isFlat(signal []float64) bool {
	if len(signal) == 0 {
		return true
	}

	first := signal[0]
	for _, val := range signal {
		if math.Abs(val-first) > 1e-12 {
			return false
		}
	}
	return true
}
