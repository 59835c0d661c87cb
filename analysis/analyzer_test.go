package analysis

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"github.com/soundclaim/soundclaim/analysis/features"
)

func lyricsCorpus() *Corpus {
	return NewCorpus(
		NewReferenceItem("Sample 1", features.NewTextFeature("sample lyrics 1")),
		NewReferenceItem("Sample 2", features.NewTextFeature("sample lyrics 2")),
	)
}

func newTestAnalyzer(t *testing.T) *Analyzer {
	t.Helper()
	analyzer, err := NewAnalyzer(nil)
	if err != nil {
		t.Fatalf("new analyzer: %v", err)
	}
	return analyzer
}

func testSubmission(name string, data []byte) *features.RawSubmission {
	return &features.RawSubmission{
		Filename: name,
		Data:     data,
		Received: time.Now(),
	}
}

func TestAnalyzeLyricsScenario(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	report, err := analyzer.Analyze(context.Background(), testSubmission("upload.txt", []byte("Sample lyrics 1")), lyricsCorpus())
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	if len(report.SimilarityScores) != 2 {
		t.Fatalf("got %d scores, want 2", len(report.SimilarityScores))
	}
	if report.SimilarityScores[0] != 100.00 {
		t.Errorf("exact reference scored %.2f, want 100.00", report.SimilarityScores[0])
	}
	if report.SimilarityScores[1] >= 100.00 {
		t.Errorf("different reference scored %.2f, want below 100", report.SimilarityScores[1])
	}
	if report.MaxSimilarity != 100.00 {
		t.Errorf("max = %.2f, want 100.00", report.MaxSimilarity)
	}
}

func TestAnalyzeReportInvariants(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	report, err := analyzer.Analyze(context.Background(), testSubmission("upload.txt", []byte("some other words entirely")), lyricsCorpus())
	if err != nil {
		t.Fatalf("analyze failed: %v", err)
	}

	maxScore := 0.0
	sum := 0.0
	for _, s := range report.SimilarityScores {
		if s < 0 || s > 100 {
			t.Errorf("score out of range: %.2f", s)
		}
		maxScore = math.Max(maxScore, s)
		sum += s
	}
	if report.MaxSimilarity != maxScore {
		t.Errorf("max_similarity = %.2f, want %.2f", report.MaxSimilarity, maxScore)
	}
	wantAvg := math.Round(sum/float64(len(report.SimilarityScores))*100) / 100
	if report.AverageSimilarity != wantAvg {
		t.Errorf("average_similarity = %.2f, want %.2f", report.AverageSimilarity, wantAvg)
	}
	if len(report.Items) != len(report.SimilarityScores) {
		t.Errorf("items and scores disagree: %d vs %d", len(report.Items), len(report.SimilarityScores))
	}
}

func TestAnalyzeEmptyCorpus(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	report, err := analyzer.Analyze(context.Background(), testSubmission("upload.txt", []byte("anything")), NewCorpus())
	if report != nil {
		t.Error("failed analysis must not produce a report")
	}
	var emptyErr *features.EmptyCorpusError
	if !errors.As(err, &emptyErr) {
		t.Fatalf("expected EmptyCorpusError, got %v", err)
	}
	if emptyErr.Modality != features.ModalityLyrics {
		t.Errorf("error names modality %s, want lyrics", emptyErr.Modality)
	}
}

func TestAnalyzeCorruptScore(t *testing.T) {
	analyzer := newTestAnalyzer(t)
	corpus := NewCorpus(
		NewReferenceItem("melody", features.NewPitchFeature([]string{"C4", "D4", "E4"})),
	)

	report, err := analyzer.Analyze(context.Background(), testSubmission("broken.mid", []byte("MThd nope")), corpus)
	if report != nil {
		t.Error("failed analysis must not produce a report")
	}
	var parseErr *features.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError, got %v", err)
	}
}

func TestAnalyzeUnknownExtension(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	_, err := analyzer.Analyze(context.Background(), testSubmission("upload.pdf", []byte("x")), lyricsCorpus())
	var parseErr *features.ParseError
	if !errors.As(err, &parseErr) {
		t.Fatalf("expected ParseError for unrecognized extension, got %v", err)
	}
}

func TestAnalyzeCancelled(t *testing.T) {
	analyzer := newTestAnalyzer(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := analyzer.Analyze(ctx, testSubmission("upload.txt", []byte("words")), lyricsCorpus())
	if report != nil {
		t.Error("cancelled analysis must not produce a report")
	}
	if err == nil || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context cancellation, got %v", err)
	}
}

func TestBandFor(t *testing.T) {
	cases := []struct {
		score float64
		want  RiskBand
	}{
		{0, RiskLow},
		{30, RiskLow},
		{30.01, RiskModerate},
		{70, RiskModerate},
		{70.01, RiskHigh},
		{100, RiskHigh},
	}
	for _, c := range cases {
		if got := BandFor(c.score, nil); got != c.want {
			t.Errorf("BandFor(%.2f) = %s, want %s", c.score, got, c.want)
		}
	}
}
