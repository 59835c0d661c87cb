package storage

import (
	"testing"

	"github.com/soundclaim/soundclaim/analysis"
	"github.com/soundclaim/soundclaim/analysis/features"
)

func sampleReport() *analysis.ScoreReport {
	return &analysis.ScoreReport{
		Submission:        "upload.txt",
		Modality:          features.ModalityLyrics,
		SimilarityScores:  []float64{100.00, 93.33},
		MaxSimilarity:     100.00,
		AverageSimilarity: 96.67,
		Items: []analysis.ItemScore{
			{Reference: "Sample 1", Score: 100.00, Band: analysis.RiskHigh},
			{Reference: "Sample 2", Score: 93.33, Band: analysis.RiskHigh},
		},
	}
}

func TestSaveAndHistory(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	original := []byte("Sample lyrics 1")
	record, err := store.SaveReport("alice", original, sampleReport())
	if err != nil {
		t.Fatalf("save report: %v", err)
	}
	if record.ID == "" {
		t.Error("record has no ID")
	}
	if record.Checksum == "" {
		t.Error("record has no checksum")
	}
	if record.MaxScore != 100.00 {
		t.Errorf("max score = %.2f, want 100.00", record.MaxScore)
	}

	history, err := store.History("alice")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(history) != 1 {
		t.Fatalf("got %d records, want 1", len(history))
	}

	report, err := history[0].Report()
	if err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if report.MaxSimilarity != 100.00 || len(report.SimilarityScores) != 2 {
		t.Errorf("round-tripped report mismatch: %+v", report)
	}

	other, err := store.History("bob")
	if err != nil {
		t.Fatalf("load history: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("bob should have no history, got %d records", len(other))
	}
}

func TestSameContentSameChecksum(t *testing.T) {
	store, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	defer func() { _ = store.Close() }()

	first, err := store.SaveReport("alice", []byte("content"), sampleReport())
	if err != nil {
		t.Fatalf("save report: %v", err)
	}
	second, err := store.SaveReport("alice", []byte("content"), sampleReport())
	if err != nil {
		t.Fatalf("save report: %v", err)
	}

	if first.ID == second.ID {
		t.Error("records must have distinct IDs")
	}
	if first.Checksum != second.Checksum {
		t.Error("identical content must hash to the same checksum")
	}
}
