package analysis

import (
	"fmt"
	"math"
	"strings"

	"github.com/agnivade/levenshtein"

	"github.com/soundclaim/soundclaim/algorithms/common"
	"github.com/soundclaim/soundclaim/algorithms/stats"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/logging"
)

// Scorer compares a submission's feature representation against reference
// items. Sequence modalities (lyrics, score) use the matching-blocks ratio;
// audio uses tempo plus flattened-matrix correlation.
type Scorer struct {
	interpolator *common.Interpolator
	logger       logging.Logger
}

// NewScorer creates a scorer
func NewScorer() *Scorer {
	return &Scorer{
		interpolator: common.NewInterpolator(common.Linear),
		logger:       logging.WithFields(logging.Fields{"component": "scorer"}),
	}
}

// Score compares a submission against one reference item and returns a
// similarity percentage in [0, 100], rounded to 2 decimals. Comparing across
// modalities is a ComparisonError.
func (s *Scorer) Score(sub features.Representation, ref ReferenceItem) (float64, error) {
	if sub.Modality() != ref.Modality() {
		return 0, &features.ComparisonError{
			Reference: ref.Name(),
			Err:       fmt.Errorf("modality mismatch: %s vs %s", sub.Modality(), ref.Modality()),
		}
	}

	switch subFeature := sub.(type) {
	case *features.TextFeature:
		refFeature := ref.Representation().(*features.TextFeature)
		score := round2(stats.SequenceRatio(subFeature.Runes(), refFeature.Runes()) * 100.0)
		s.logTextDiagnostic(ref.Name(), subFeature.Text(), refFeature.Text(), score)
		return score, nil

	case *features.PitchFeature:
		refFeature := ref.Representation().(*features.PitchFeature)
		score := round2(stats.SequenceRatio(subFeature.Pitches(), refFeature.Pitches()) * 100.0)
		s.logPitchDiagnostic(ref.Name(), subFeature.Pitches(), refFeature.Pitches(), score)
		return score, nil

	case *features.AudioFeature:
		refFeature := ref.Representation().(*features.AudioFeature)
		return s.scoreAudio(subFeature, refFeature, ref.Name())

	default:
		return 0, &features.ComparisonError{
			Reference: ref.Name(),
			Err:       fmt.Errorf("no scorer for modality %s", sub.Modality()),
		}
	}
}

// scoreAudio averages tempo, chroma and timbre similarity
func (s *Scorer) scoreAudio(sub, ref *features.AudioFeature, refName string) (float64, error) {
	tempoSim := tempoSimilarity(sub.Tempo(), ref.Tempo())

	chromaSim, err := s.matrixSimilarity(sub.Chroma(), ref.Chroma())
	if err != nil {
		return 0, &features.ComparisonError{Reference: refName, Err: fmt.Errorf("chroma: %w", err)}
	}

	timbreSim, err := s.matrixSimilarity(sub.MFCC(), ref.MFCC())
	if err != nil {
		return 0, &features.ComparisonError{Reference: refName, Err: fmt.Errorf("timbre: %w", err)}
	}

	score := round2(clamp01((tempoSim + chromaSim + timbreSim) / 3.0) * 100.0)

	s.logger.Debug("audio comparison", logging.Fields{
		"reference":  refName,
		"tempo_sim":  tempoSim,
		"chroma_sim": chromaSim,
		"timbre_sim": timbreSim,
		"score":      score,
	})

	return score, nil
}

// matrixSimilarity correlates two time-major feature matrices. Frame counts
// rarely match across recordings, so both matrices are linearly resampled
// along the time axis to the smaller frame count before flattening.
// Negative correlation reads as dissimilar, not anti-similar, and clamps
// to 0. Zero-variance matrices yield 0.
func (s *Scorer) matrixSimilarity(a, b [][]float64) (float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a[0]) == 0 || len(b[0]) == 0 {
		return 0, fmt.Errorf("empty feature matrix")
	}
	if len(a[0]) != len(b[0]) {
		return 0, fmt.Errorf("bin counts differ: %d vs %d", len(a[0]), len(b[0]))
	}

	frames := min(len(a), len(b))
	a = s.interpolator.ResampleMatrixFrames(a, frames)
	b = s.interpolator.ResampleMatrixFrames(b, frames)

	corr, err := stats.FlattenedCorrelation(a, b)
	if err != nil {
		return 0, err
	}
	return math.Max(corr, 0), nil
}

// tempoSimilarity compares two BPM estimates. Two silent recordings (both
// tempo 0) read as 0, not as a division by zero.
func tempoSimilarity(a, b float64) float64 {
	if a == 0 && b == 0 {
		return 0
	}
	return 1.0 - math.Abs(a-b)/math.Max(a, b)
}

// logTextDiagnostic records an edit-distance cross-check for lyric scores.
// Large disagreement between the two measures usually means heavy
// reordering, worth seeing when tuning corpus content.
func (s *Scorer) logTextDiagnostic(refName, sub, ref string, score float64) {
	s.logger.Debug("lyric comparison", logging.Fields{
		"reference":       refName,
		"score":           score,
		"edit_similarity": round2(editSimilarity(sub, ref) * 100.0),
	})
}

func (s *Scorer) logPitchDiagnostic(refName string, sub, ref []string, score float64) {
	s.logger.Debug("pitch comparison", logging.Fields{
		"reference":       refName,
		"score":           score,
		"edit_similarity": round2(editSimilarity(strings.Join(sub, " "), strings.Join(ref, " ")) * 100.0),
	})
}

// editSimilarity maps Levenshtein distance onto [0, 1]
func editSimilarity(a, b string) float64 {
	if len(a) == 0 && len(b) == 0 {
		return 1.0
	}
	distance := levenshtein.ComputeDistance(a, b)
	longest := max(len([]rune(a)), len([]rune(b)))
	if longest == 0 {
		return 1.0
	}
	return 1.0 - float64(distance)/float64(longest)
}

// round2 rounds to 2 decimal places
func round2(v float64) float64 {
	return math.Round(v*100.0) / 100.0
}

// clamp01 bounds a similarity ratio to [0, 1]
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
