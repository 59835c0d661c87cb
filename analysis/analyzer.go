package analysis

import (
	"context"
	"fmt"

	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/extract"
	"github.com/soundclaim/soundclaim/logging"
)

// State tracks one analysis run through its lifecycle
type State string

const (
	StateIdle       State = "idle"
	StateExtracting State = "extracting"
	StateScored     State = "scored"
	StateFailed     State = "failed"
)

// Analyzer orchestrates one submission end to end: modality dispatch,
// extraction, scoring against every same-modality corpus item, and report
// synthesis. Analyzers hold no per-run state, so one instance may serve
// concurrent analyses as long as the corpus is not mutated mid-run.
type Analyzer struct {
	config    *config.Config
	extractor *extract.Extractor
	scorer    *Scorer
	logger    logging.Logger
}

// NewAnalyzer creates an analyzer (nil config uses defaults)
func NewAnalyzer(cfg *config.Config) (*Analyzer, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("analyzer config: %w", err)
	}
	return &Analyzer{
		config:    cfg,
		extractor: extract.NewExtractor(cfg.Extraction),
		scorer:    NewScorer(),
		logger:    logging.WithFields(logging.Fields{"component": "analyzer"}),
	}, nil
}

// Analyze runs one submission against the corpus. Any extraction or scoring
// failure aborts the run; no partial report is produced. The context is
// checked between reference comparisons so long corpora can be cancelled.
func (a *Analyzer) Analyze(ctx context.Context, sub *features.RawSubmission, corpus *Corpus) (*ScoreReport, error) {
	state := StateIdle

	fail := func(err error) (*ScoreReport, error) {
		state = StateFailed
		a.logger.Warn("analysis failed", logging.Fields{
			"submission": sub.Filename,
			"state":      string(state),
			"error":      err.Error(),
		})
		return nil, err
	}

	modality, err := sub.Modality()
	if err != nil {
		return fail(&features.ParseError{Filename: sub.Filename, Err: err})
	}

	references := corpus.ItemsFor(modality)
	if len(references) == 0 {
		return fail(&features.EmptyCorpusError{Modality: modality})
	}

	state = StateExtracting
	representation, err := a.extractor.Extract(sub)
	if err != nil {
		return fail(err)
	}

	items := make([]ItemScore, 0, len(references))
	for _, ref := range references {
		if err := ctx.Err(); err != nil {
			return fail(fmt.Errorf("analysis cancelled: %w", err))
		}
		score, err := a.scorer.Score(representation, ref)
		if err != nil {
			return fail(err)
		}
		items = append(items, ItemScore{Reference: ref.Name(), Score: score})
	}

	state = StateScored
	report := newScoreReport(sub.Filename, modality, items, a.config.Scoring)

	a.logger.Info("analysis complete", logging.Fields{
		"submission": sub.Filename,
		"modality":   string(modality),
		"state":      string(state),
		"references": len(references),
		"max":        report.MaxSimilarity,
		"average":    report.AverageSimilarity,
	})

	return report, nil
}
