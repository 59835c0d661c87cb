package temporal

import (
	"math"
	"sort"
)

// OnsetDetection detects note/event onsets in audio signals using the
// positive derivative of the RMS energy envelope
type OnsetDetection struct {
	envelopeExtractor *Envelope
}

// NewOnsetDetection creates a new onset detector
func NewOnsetDetection() *OnsetDetection {
	return &OnsetDetection{
		envelopeExtractor: NewEnvelope(),
	}
}

// DetectOnsetsEnergy detects onsets using energy-based method.
// Returns onset positions as sample indices.
func (od *OnsetDetection) DetectOnsetsEnergy(signal []float64, sampleRate int, threshold float64, minInterval float64) []int {
	if len(signal) == 0 {
		return []int{}
	}

	// Calculate energy envelope
	frameSize := 512
	hopSize := 256
	envelope := od.envelopeExtractor.ComputeRMS(signal, frameSize, hopSize)

	if len(envelope) == 0 {
		return []int{}
	}

	// Calculate energy derivative for onset detection
	energyDiff := make([]float64, max(len(envelope)-1, 0))
	for i := range energyDiff {
		diff := envelope[i+1] - envelope[i]
		if diff > 0 {
			energyDiff[i] = diff
		} else {
			energyDiff[i] = 0 // Only positive changes
		}
	}

	// Find peaks in energy difference
	onsetFrames := od.findEnergyPeaks(energyDiff, threshold, minInterval, hopSize, sampleRate)

	// Convert frame indices to sample indices
	onsetSamples := make([]int, len(onsetFrames))
	for i, frameIdx := range onsetFrames {
		onsetSamples[i] = frameIdx * hopSize
	}

	return onsetSamples
}

// DetectOnsets detects onsets with an adaptive threshold derived from the
// energy-difference statistics
func (od *OnsetDetection) DetectOnsets(signal []float64, sampleRate int) []int {
	minInterval := 0.05 // 50ms minimum interval

	// First pass with a permissive threshold to gather statistics
	frameSize := 512
	hopSize := 256
	envelope := od.envelopeExtractor.ComputeRMS(signal, frameSize, hopSize)
	if len(envelope) < 2 {
		return []int{}
	}

	energyDiff := make([]float64, len(envelope)-1)
	for i := range energyDiff {
		diff := envelope[i+1] - envelope[i]
		if diff > 0 {
			energyDiff[i] = diff
		}
	}

	threshold := od.AdaptiveThreshold(energyDiff)
	if threshold <= 0 {
		return []int{}
	}

	onsetFrames := od.findEnergyPeaks(energyDiff, threshold, minInterval, hopSize, sampleRate)

	onsetSamples := make([]int, len(onsetFrames))
	for i, frameIdx := range onsetFrames {
		onsetSamples[i] = frameIdx * hopSize
	}

	sort.Ints(onsetSamples)
	return onsetSamples
}

// findEnergyPeaks finds peaks in energy difference signals
func (od *OnsetDetection) findEnergyPeaks(energyDiff []float64, threshold float64, minInterval float64, hopSize int, sampleRate int) []int {
	if len(energyDiff) < 3 {
		return []int{}
	}

	// Convert minimum interval to frames
	minIntervalFrames := int(minInterval * float64(sampleRate) / float64(hopSize))

	var peaks []int
	lastPeakFrame := -minIntervalFrames // Allow first peak

	for i := 1; i < len(energyDiff)-1; i++ {
		// Check if it's a local maximum above threshold
		if energyDiff[i] > energyDiff[i-1] &&
			energyDiff[i] > energyDiff[i+1] &&
			energyDiff[i] >= threshold &&
			i-lastPeakFrame >= minIntervalFrames {
			peaks = append(peaks, i)
			lastPeakFrame = i
		}
	}

	return peaks
}

// ComputeOnsetDensity calculates onset density (onsets per second)
func (od *OnsetDetection) ComputeOnsetDensity(signal []float64, sampleRate int) float64 {
	onsets := od.DetectOnsets(signal, sampleRate)

	duration := float64(len(signal)) / float64(sampleRate)
	if duration == 0 {
		return 0.0
	}

	return float64(len(onsets)) / duration
}

// AdaptiveThreshold calculates adaptive threshold based on energy statistics
func (od *OnsetDetection) AdaptiveThreshold(energyDiff []float64) float64 {
	if len(energyDiff) == 0 {
		return 0.0
	}

	// Calculate mean and standard deviation
	mean := 0.0
	for _, val := range energyDiff {
		mean += val
	}
	mean /= float64(len(energyDiff))

	variance := 0.0
	for _, val := range energyDiff {
		diff := val - mean
		variance += diff * diff
	}
	variance /= float64(len(energyDiff))
	stdDev := math.Sqrt(variance)

	// Adaptive threshold: mean + 2 * standard deviation
	return mean + 2.0*stdDev
}
