package analysis

import (
	"errors"
	"math"
	"testing"

	"github.com/soundclaim/soundclaim/analysis/features"
)

func TestScorePitchIdentical(t *testing.T) {
	scorer := NewScorer()
	sub := features.NewPitchFeature([]string{"C4", "D4", "E4"})
	ref := NewReferenceItem("same melody", features.NewPitchFeature([]string{"C4", "D4", "E4"}))

	score, err := scorer.Score(sub, ref)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score != 100.00 {
		t.Errorf("identical pitch sequences: got %.2f, want 100.00", score)
	}
}

func TestScorePitchDisjoint(t *testing.T) {
	scorer := NewScorer()
	sub := features.NewPitchFeature([]string{"C4", "D4", "E4"})
	ref := NewReferenceItem("other melody", features.NewPitchFeature([]string{"G4", "A4", "B4"}))

	score, err := scorer.Score(sub, ref)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score != 0.00 {
		t.Errorf("disjoint pitch sequences: got %.2f, want 0.00", score)
	}
}

func TestScoreTextScenario(t *testing.T) {
	scorer := NewScorer()
	sub := features.NewTextFeature("sample lyrics 1")

	exact := NewReferenceItem("Sample 1", features.NewTextFeature("sample lyrics 1"))
	score, err := scorer.Score(sub, exact)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score != 100.00 {
		t.Errorf("exact lyric match: got %.2f, want 100.00", score)
	}

	near := NewReferenceItem("Sample 2", features.NewTextFeature("sample lyrics 2"))
	score, err = scorer.Score(sub, near)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score >= 100.00 {
		t.Errorf("near lyric match must score below 100, got %.2f", score)
	}
	// 14 of 15 chars shared: 2*14/30 = 93.33
	if math.Abs(score-93.33) > 0.01 {
		t.Errorf("got %.2f, want 93.33", score)
	}
}

func TestScoreTextSymmetric(t *testing.T) {
	scorer := NewScorer()
	a := features.NewTextFeature("hello darkness my old friend")
	b := features.NewTextFeature("my old friend hello darkness")

	ab, err := scorer.Score(a, NewReferenceItem("b", b))
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	ba, err := scorer.Score(b, NewReferenceItem("a", a))
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if ab != ba {
		t.Errorf("similarity not symmetric: %.2f vs %.2f", ab, ba)
	}
}

func TestScoreModalityMismatch(t *testing.T) {
	scorer := NewScorer()
	sub := features.NewTextFeature("lyrics")
	ref := NewReferenceItem("melody", features.NewPitchFeature([]string{"C4"}))

	_, err := scorer.Score(sub, ref)
	var cmpErr *features.ComparisonError
	if !errors.As(err, &cmpErr) {
		t.Fatalf("expected ComparisonError, got %v", err)
	}
}

func constantMatrix(frames, bins int, value float64) [][]float64 {
	m := make([][]float64, frames)
	for i := range m {
		m[i] = make([]float64, bins)
		for j := range m[i] {
			m[i][j] = value
		}
	}
	return m
}

func rampMatrix(frames, bins int, scale float64) [][]float64 {
	m := make([][]float64, frames)
	for i := range m {
		m[i] = make([]float64, bins)
		for j := range m[i] {
			m[i][j] = scale * float64(i*bins+j)
		}
	}
	return m
}

func TestScoreAudioIdentical(t *testing.T) {
	scorer := NewScorer()
	chroma := rampMatrix(10, 12, 1.0)
	mfcc := rampMatrix(10, 13, 0.5)

	sub := features.NewAudioFeature(120, chroma, mfcc)
	ref := NewReferenceItem("same recording", features.NewAudioFeature(120, chroma, mfcc))

	score, err := scorer.Score(sub, ref)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score != 100.00 {
		t.Errorf("identical features: got %.2f, want 100.00", score)
	}
}

func TestScoreAudioAllZero(t *testing.T) {
	// Zero tempo on both sides and zero-variance matrices must read as 0,
	// not NaN and not an error
	scorer := NewScorer()
	sub := features.NewAudioFeature(0, constantMatrix(5, 12, 0), constantMatrix(5, 13, 0))
	ref := NewReferenceItem("silence", features.NewAudioFeature(0, constantMatrix(5, 12, 0), constantMatrix(5, 13, 0)))

	score, err := scorer.Score(sub, ref)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score != 0.00 {
		t.Errorf("all-zero features: got %.2f, want 0.00", score)
	}
	if math.IsNaN(score) {
		t.Error("score is NaN")
	}
}

func TestScoreAudioMismatchedFrames(t *testing.T) {
	// Different frame counts are aligned by resampling, not rejected
	scorer := NewScorer()
	sub := features.NewAudioFeature(120, rampMatrix(20, 12, 1.0), rampMatrix(20, 13, 1.0))
	ref := NewReferenceItem("shorter recording", features.NewAudioFeature(120, rampMatrix(10, 12, 2.0), rampMatrix(10, 13, 2.0)))

	score, err := scorer.Score(sub, ref)
	if err != nil {
		t.Fatalf("score failed: %v", err)
	}
	if score < 0 || score > 100 {
		t.Errorf("score out of range: %.2f", score)
	}
}

func TestScoreAudioEmptyMatrix(t *testing.T) {
	scorer := NewScorer()
	sub := features.NewAudioFeature(120, nil, rampMatrix(10, 13, 1.0))
	ref := NewReferenceItem("ref", features.NewAudioFeature(120, rampMatrix(10, 12, 1.0), rampMatrix(10, 13, 1.0)))

	_, err := scorer.Score(sub, ref)
	var cmpErr *features.ComparisonError
	if !errors.As(err, &cmpErr) {
		t.Fatalf("expected ComparisonError, got %v", err)
	}
}

func TestTempoSimilarity(t *testing.T) {
	cases := []struct {
		a, b, want float64
	}{
		{120, 120, 1.0},
		{0, 0, 0.0},
		{120, 60, 0.5},
		{60, 120, 0.5},
		{0, 100, 0.0},
	}
	for _, c := range cases {
		if got := tempoSimilarity(c.a, c.b); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("tempoSimilarity(%.0f, %.0f) = %f, want %f", c.a, c.b, got, c.want)
		}
	}
}
