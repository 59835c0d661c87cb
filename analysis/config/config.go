// Package config centralizes tunable parameters for extraction and scoring.
package config

import (
	"fmt"
	"time"
)

// ExtractionConfig controls feature extraction across all modalities
type ExtractionConfig struct {
	// Audio pipeline
	TargetSampleRate int           `json:"target_sample_rate"`
	WindowSize       int           `json:"window_size"`
	HopSize          int           `json:"hop_size"`
	NumMFCC          int           `json:"num_mfcc"`
	NumMelFilters    int           `json:"num_mel_filters"`
	MinTempo         float64       `json:"min_tempo"`
	MaxTempo         float64       `json:"max_tempo"`
	MaxAudioDuration time.Duration `json:"max_audio_duration"`

	// Text pipeline
	MaxTextBytes int `json:"max_text_bytes"`
}

// DefaultExtractionConfig returns extraction defaults tuned for music
// similarity work at 22.05 kHz
func DefaultExtractionConfig() *ExtractionConfig {
	return &ExtractionConfig{
		TargetSampleRate: 22050,
		WindowSize:       2048,
		HopSize:          512,
		NumMFCC:          13,
		NumMelFilters:    26,
		MinTempo:         30.0,
		MaxTempo:         240.0,
		MaxAudioDuration: 10 * time.Minute,
		MaxTextBytes:     1 << 20,
	}
}

// Validate checks parameter sanity
func (c *ExtractionConfig) Validate() error {
	if c.TargetSampleRate <= 0 {
		return fmt.Errorf("target sample rate must be positive, got %d", c.TargetSampleRate)
	}
	if c.WindowSize <= 0 || c.HopSize <= 0 {
		return fmt.Errorf("window size and hop size must be positive, got %d/%d", c.WindowSize, c.HopSize)
	}
	if c.HopSize > c.WindowSize {
		return fmt.Errorf("hop size %d exceeds window size %d", c.HopSize, c.WindowSize)
	}
	if c.NumMFCC <= 0 || c.NumMelFilters < c.NumMFCC {
		return fmt.Errorf("need at least as many mel filters (%d) as MFCC coefficients (%d)", c.NumMelFilters, c.NumMFCC)
	}
	if c.MinTempo <= 0 || c.MaxTempo <= c.MinTempo {
		return fmt.Errorf("invalid tempo range [%.1f, %.1f]", c.MinTempo, c.MaxTempo)
	}
	return nil
}

// ScoringConfig controls similarity scoring and report synthesis
type ScoringConfig struct {
	// Risk band boundaries on the 0-100 scale
	LowRiskMax      float64 `json:"low_risk_max"`
	ModerateRiskMax float64 `json:"moderate_risk_max"`
}

// DefaultScoringConfig returns the standard risk band boundaries
func DefaultScoringConfig() *ScoringConfig {
	return &ScoringConfig{
		LowRiskMax:      30.0,
		ModerateRiskMax: 70.0,
	}
}

// Validate checks band ordering
func (c *ScoringConfig) Validate() error {
	if c.LowRiskMax < 0 || c.ModerateRiskMax <= c.LowRiskMax || c.ModerateRiskMax > 100 {
		return fmt.Errorf("invalid risk bands: low<=%.1f, moderate<=%.1f", c.LowRiskMax, c.ModerateRiskMax)
	}
	return nil
}

// Config aggregates all subsystem configs
type Config struct {
	Extraction *ExtractionConfig `json:"extraction"`
	Scoring    *ScoringConfig    `json:"scoring"`
}

// DefaultConfig returns a fully populated default config
func DefaultConfig() *Config {
	return &Config{
		Extraction: DefaultExtractionConfig(),
		Scoring:    DefaultScoringConfig(),
	}
}

// Validate checks all subsystem configs
func (c *Config) Validate() error {
	if c.Extraction == nil || c.Scoring == nil {
		return fmt.Errorf("config sections must not be nil")
	}
	if err := c.Extraction.Validate(); err != nil {
		return fmt.Errorf("extraction: %w", err)
	}
	if err := c.Scoring.Validate(); err != nil {
		return fmt.Errorf("scoring: %w", err)
	}
	return nil
}
