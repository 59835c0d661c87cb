// Package storage persists analysis reports for per-submitter history.
package storage

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/google/uuid"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/soundclaim/soundclaim/analysis"
	"github.com/soundclaim/soundclaim/logging"
)

// AnalysisRecord is one persisted analysis outcome. The original bytes are
// not stored, only their checksum, so history stays small and submissions
// stay private.
type AnalysisRecord struct {
	ID         string    `gorm:"primaryKey" json:"id"`
	Submitter  string    `gorm:"index" json:"submitter"`
	Filename   string    `json:"filename"`
	Modality   string    `json:"modality"`
	Checksum   string    `json:"checksum"`
	ReportJSON string    `json:"report_json"`
	MaxScore   float64   `json:"max_score"`
	CreatedAt  time.Time `json:"created_at"`
}

// Store wraps the SQLite-backed history database
type Store struct {
	db     *gorm.DB
	logger logging.Logger
}

// Open opens (and migrates) the history database at path. Use ":memory:"
// for an ephemeral store.
func Open(path string) (*Store, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}
	if err := db.AutoMigrate(&AnalysisRecord{}); err != nil {
		return nil, fmt.Errorf("migrate history schema: %w", err)
	}
	return &Store{
		db:     db,
		logger: logging.WithFields(logging.Fields{"component": "storage"}),
	}, nil
}

// SaveReport appends a report to the submitter's history and returns the
// stored record
func (s *Store) SaveReport(submitter string, original []byte, report *analysis.ScoreReport) (*AnalysisRecord, error) {
	payload, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("encode report: %w", err)
	}

	digest := sha256.Sum256(original)

	record := &AnalysisRecord{
		ID:         uuid.NewString(),
		Submitter:  submitter,
		Filename:   report.Submission,
		Modality:   string(report.Modality),
		Checksum:   hex.EncodeToString(digest[:]),
		ReportJSON: string(payload),
		MaxScore:   report.MaxSimilarity,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.db.Create(record).Error; err != nil {
		return nil, fmt.Errorf("save analysis record: %w", err)
	}

	s.logger.Debug("saved analysis record", logging.Fields{
		"id":        record.ID,
		"submitter": submitter,
		"max_score": record.MaxScore,
	})

	return record, nil
}

// History returns a submitter's records, newest first
func (s *Store) History(submitter string) ([]AnalysisRecord, error) {
	var records []AnalysisRecord
	err := s.db.
		Where("submitter = ?", submitter).
		Order("created_at DESC").
		Find(&records).Error
	if err != nil {
		return nil, fmt.Errorf("load history: %w", err)
	}
	return records, nil
}

// Report decodes the stored report payload
func (r *AnalysisRecord) Report() (*analysis.ScoreReport, error) {
	var report analysis.ScoreReport
	if err := json.Unmarshal([]byte(r.ReportJSON), &report); err != nil {
		return nil, fmt.Errorf("decode stored report: %w", err)
	}
	return &report, nil
}

// Close releases the underlying database handle
func (s *Store) Close() error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}
