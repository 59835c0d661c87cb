package extract

import (
	"fmt"

	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
)

// Extractor dispatches a submission to the extractor matching its modality
type Extractor struct {
	text  *TextExtractor
	score *ScoreExtractor
	audio *AudioExtractor
}

// NewExtractor creates the full extractor set (nil config uses defaults)
func NewExtractor(cfg *config.ExtractionConfig) *Extractor {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	return &Extractor{
		text:  NewTextExtractor(cfg),
		score: NewScoreExtractor(cfg),
		audio: NewAudioExtractor(cfg),
	}
}

// Extract resolves the submission's modality and produces its feature
// representation
func (e *Extractor) Extract(sub *features.RawSubmission) (features.Representation, error) {
	modality, err := sub.Modality()
	if err != nil {
		return nil, &features.ParseError{Filename: sub.Filename, Err: err}
	}

	switch modality {
	case features.ModalityLyrics:
		return e.text.Extract(sub)
	case features.ModalityScore:
		return e.score.Extract(sub)
	case features.ModalityAudio:
		return e.audio.Extract(sub)
	default:
		return nil, &features.ParseError{
			Filename: sub.Filename,
			Err:      fmt.Errorf("no extractor for modality %q", modality),
		}
	}
}
