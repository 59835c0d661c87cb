// Package features defines the modality model and the normalized feature
// representations that extractors produce and scorers consume.
package features

import (
	"fmt"
	"strings"
	"time"
)

// Modality identifies which pipeline a submission flows through
type Modality string

const (
	ModalityLyrics Modality = "lyrics"
	ModalityScore  Modality = "score"
	ModalityAudio  Modality = "audio"
)

// extensionModality maps recognized file extensions (lowercase, no dot) to
// their modality
var extensionModality = map[string]Modality{
	"txt":  ModalityLyrics,
	"xml":  ModalityScore,
	"mxl":  ModalityScore,
	"midi": ModalityScore,
	"mid":  ModalityScore,
	"mp3":  ModalityAudio,
	"wav":  ModalityAudio,
}

// ModalityForExtension resolves a file extension to its modality. The
// extension may carry a leading dot and any casing.
func ModalityForExtension(ext string) (Modality, error) {
	normalized := strings.ToLower(strings.TrimPrefix(strings.TrimSpace(ext), "."))
	modality, ok := extensionModality[normalized]
	if !ok {
		return "", fmt.Errorf("unrecognized file extension: %q", ext)
	}
	return modality, nil
}

// RawSubmission is an uninterpreted uploaded work
type RawSubmission struct {
	Filename  string    `json:"filename"`
	Data      []byte    `json:"-"`
	Submitter string    `json:"submitter,omitempty"`
	Received  time.Time `json:"received"`
}

// Extension returns the submission's file extension without the dot
func (s *RawSubmission) Extension() string {
	idx := strings.LastIndex(s.Filename, ".")
	if idx < 0 || idx == len(s.Filename)-1 {
		return ""
	}
	return strings.ToLower(s.Filename[idx+1:])
}

// Modality resolves the submission's modality from its filename
func (s *RawSubmission) Modality() (Modality, error) {
	ext := s.Extension()
	if ext == "" {
		return "", fmt.Errorf("submission %q has no file extension", s.Filename)
	}
	return ModalityForExtension(ext)
}

// Representation is the normalized feature form of one work. Exactly one
// concrete type exists per modality; the sealed marker keeps the set closed.
type Representation interface {
	Modality() Modality
	sealed()
}

// TextFeature holds case-folded lyric text. Lyric similarity compares the
// normalized character sequence directly, so the representation stays a
// single string rather than a token list.
type TextFeature struct {
	normalized string
}

// NewTextFeature wraps normalized lyric text
func NewTextFeature(normalized string) *TextFeature {
	return &TextFeature{normalized: normalized}
}

func (f *TextFeature) Modality() Modality { return ModalityLyrics }
func (f *TextFeature) sealed()            {}

// Text returns the normalized lyric text
func (f *TextFeature) Text() string { return f.normalized }

// Runes returns the normalized text as a comparable rune sequence
func (f *TextFeature) Runes() []rune { return []rune(f.normalized) }

// PitchFeature holds the onset-ordered pitch name sequence of a score
type PitchFeature struct {
	pitches []string
}

// NewPitchFeature wraps an onset-ordered pitch sequence
func NewPitchFeature(pitches []string) *PitchFeature {
	return &PitchFeature{pitches: pitches}
}

func (f *PitchFeature) Modality() Modality { return ModalityScore }
func (f *PitchFeature) sealed()            {}

// Pitches returns the pitch name sequence, e.g. ["C4", "D#4", "E4"]
func (f *PitchFeature) Pitches() []string { return f.pitches }

// AudioFeature holds the perceptual descriptors of a recording
type AudioFeature struct {
	tempo  float64
	chroma [][]float64
	mfcc   [][]float64
}

// NewAudioFeature wraps tempo, chroma and MFCC descriptors. The chroma and
// MFCC matrices are time-major (frames x bins).
func NewAudioFeature(tempo float64, chroma, mfcc [][]float64) *AudioFeature {
	return &AudioFeature{tempo: tempo, chroma: chroma, mfcc: mfcc}
}

func (f *AudioFeature) Modality() Modality { return ModalityAudio }
func (f *AudioFeature) sealed()            {}

// Tempo returns the estimated tempo in BPM (0 when none was detected)
func (f *AudioFeature) Tempo() float64 { return f.tempo }

// Chroma returns the time-major 12-bin chroma matrix
func (f *AudioFeature) Chroma() [][]float64 { return f.chroma }

// MFCC returns the time-major MFCC coefficient matrix
func (f *AudioFeature) MFCC() [][]float64 { return f.mfcc }
