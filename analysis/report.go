package analysis

import (
	"math"

	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
)

// RiskBand labels a similarity score's infringement risk
type RiskBand string

const (
	RiskLow      RiskBand = "low"
	RiskModerate RiskBand = "moderate"
	RiskHigh     RiskBand = "high"
)

// BandFor maps a score onto its risk band using the configured boundaries
func BandFor(score float64, cfg *config.ScoringConfig) RiskBand {
	if cfg == nil {
		cfg = config.DefaultScoringConfig()
	}
	switch {
	case score <= cfg.LowRiskMax:
		return RiskLow
	case score <= cfg.ModerateRiskMax:
		return RiskModerate
	default:
		return RiskHigh
	}
}

// ItemScore pairs one reference work with its similarity score
type ItemScore struct {
	Reference string   `json:"reference"`
	Score     float64  `json:"score"`
	Band      RiskBand `json:"band"`
}

// ScoreReport aggregates one analysis run. SimilarityScores preserves corpus
// iteration order; Items carries the same scores with reference names and
// risk bands for display.
type ScoreReport struct {
	Submission        string            `json:"submission"`
	Modality          features.Modality `json:"modality"`
	SimilarityScores  []float64         `json:"similarity_scores"`
	MaxSimilarity     float64           `json:"max_similarity"`
	AverageSimilarity float64           `json:"average_similarity"`
	Items             []ItemScore       `json:"items"`
}

// newScoreReport computes the aggregate fields from per-item scores. The
// caller guarantees at least one score.
func newScoreReport(submission string, modality features.Modality, items []ItemScore, scoringCfg *config.ScoringConfig) *ScoreReport {
	scores := make([]float64, len(items))
	maxScore := 0.0
	sum := 0.0
	for i, item := range items {
		scores[i] = item.Score
		sum += item.Score
		maxScore = math.Max(maxScore, item.Score)
	}

	for i := range items {
		items[i].Band = BandFor(items[i].Score, scoringCfg)
	}

	return &ScoreReport{
		Submission:        submission,
		Modality:          modality,
		SimilarityScores:  scores,
		MaxSimilarity:     round2(maxScore),
		AverageSimilarity: round2(sum / float64(len(items))),
		Items:             items,
	}
}
