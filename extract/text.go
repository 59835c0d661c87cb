// Package extract turns raw submission bytes into normalized feature
// representations, one extractor per modality.
package extract

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/logging"
)

// NormalizeText case-folds lyric text for comparison. Whitespace runs are
// collapsed to single spaces and the result is trimmed, so formatting
// differences (CRLF, trailing newlines, indentation) do not affect scoring.
func NormalizeText(text string) string {
	lowered := strings.ToLower(text)
	return strings.Join(strings.Fields(lowered), " ")
}

// TextExtractor produces TextFeature representations from lyric submissions
type TextExtractor struct {
	config *config.ExtractionConfig
	logger logging.Logger
}

// NewTextExtractor creates a text extractor (nil config uses defaults)
func NewTextExtractor(cfg *config.ExtractionConfig) *TextExtractor {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	return &TextExtractor{
		config: cfg,
		logger: logging.WithFields(logging.Fields{"component": "extract", "modality": "lyrics"}),
	}
}

// Extract normalizes a lyric payload into a TextFeature
func (e *TextExtractor) Extract(sub *features.RawSubmission) (*features.TextFeature, error) {
	if e.config.MaxTextBytes > 0 && len(sub.Data) > e.config.MaxTextBytes {
		return nil, &features.ParseError{
			Filename: sub.Filename,
			Err:      fmt.Errorf("lyric file exceeds %d bytes", e.config.MaxTextBytes),
		}
	}
	if !utf8.Valid(sub.Data) {
		return nil, &features.ParseError{
			Filename: sub.Filename,
			Err:      fmt.Errorf("lyric file is not valid UTF-8"),
		}
	}

	normalized := NormalizeText(string(sub.Data))

	e.logger.Debug("normalized lyrics", logging.Fields{
		"filename": sub.Filename,
		"chars":    utf8.RuneCountInString(normalized),
	})

	return features.NewTextFeature(normalized), nil
}
