// Package analysis hosts the reference corpus, the similarity scorer and
// the orchestrator that turns one submission into a score report.
package analysis

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/logging"
)

// ReferenceItem is one known work, stored in feature form
type ReferenceItem struct {
	name string
	rep  features.Representation
}

// NewReferenceItem wraps a named feature representation
func NewReferenceItem(name string, rep features.Representation) ReferenceItem {
	return ReferenceItem{name: name, rep: rep}
}

// Name returns the reference work's display name
func (ri ReferenceItem) Name() string { return ri.name }

// Modality returns the reference's modality
func (ri ReferenceItem) Modality() features.Modality { return ri.rep.Modality() }

// Representation returns the reference's feature form
func (ri ReferenceItem) Representation() features.Representation { return ri.rep }

// Corpus is an ordered collection of reference items. It is read-only during
// analysis; iteration order is insertion order, which fixes the ordering of
// per-item scores in reports.
type Corpus struct {
	items []ReferenceItem
}

// NewCorpus creates a corpus from the given items
func NewCorpus(items ...ReferenceItem) *Corpus {
	return &Corpus{items: items}
}

// Add appends a reference item. Not safe to call concurrently with analysis.
func (c *Corpus) Add(item ReferenceItem) {
	c.items = append(c.items, item)
}

// Len returns the total item count across all modalities
func (c *Corpus) Len() int { return len(c.items) }

// ItemsFor returns the items of one modality in insertion order
func (c *Corpus) ItemsFor(modality features.Modality) []ReferenceItem {
	var matched []ReferenceItem
	for _, item := range c.items {
		if item.Modality() == modality {
			matched = append(matched, item)
		}
	}
	return matched
}

// referenceItemJSON is the on-disk form of one reference item. Exactly one
// of the payload fields must be set, matching the declared modality.
type referenceItemJSON struct {
	Name     string   `json:"name"`
	Modality string   `json:"modality"`
	Text     string   `json:"text,omitempty"`
	Pitches  []string `json:"pitches,omitempty"`
	Audio    *struct {
		Tempo  float64     `json:"tempo"`
		Chroma [][]float64 `json:"chroma"`
		Timbre [][]float64 `json:"timbre"`
	} `json:"audio,omitempty"`
}

// LoadCorpusFile reads one JSON corpus file holding an array of reference
// items. Lyric references are case-folded the same way submissions are, so
// casing in corpus files does not affect scores.
func LoadCorpusFile(path string, normalizeText func(string) string) ([]ReferenceItem, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read corpus file: %w", err)
	}

	var entries []referenceItemJSON
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("parse corpus file %s: %w", filepath.Base(path), err)
	}

	items := make([]ReferenceItem, 0, len(entries))
	for i, entry := range entries {
		if entry.Name == "" {
			return nil, fmt.Errorf("corpus file %s: item %d has no name", filepath.Base(path), i)
		}

		var rep features.Representation
		switch features.Modality(entry.Modality) {
		case features.ModalityLyrics:
			text := entry.Text
			if normalizeText != nil {
				text = normalizeText(text)
			}
			rep = features.NewTextFeature(text)
		case features.ModalityScore:
			rep = features.NewPitchFeature(entry.Pitches)
		case features.ModalityAudio:
			if entry.Audio == nil {
				return nil, fmt.Errorf("corpus file %s: audio item %q has no feature payload", filepath.Base(path), entry.Name)
			}
			rep = features.NewAudioFeature(entry.Audio.Tempo, entry.Audio.Chroma, entry.Audio.Timbre)
		default:
			return nil, fmt.Errorf("corpus file %s: item %q has unknown modality %q", filepath.Base(path), entry.Name, entry.Modality)
		}

		items = append(items, NewReferenceItem(entry.Name, rep))
	}
	return items, nil
}

// LoadCorpusDir loads every .json file in a directory, in lexical filename
// order, into one corpus
func LoadCorpusDir(dir string, normalizeText func(string) string) (*Corpus, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read corpus directory: %w", err)
	}

	var paths []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(strings.ToLower(entry.Name()), ".json") {
			continue
		}
		paths = append(paths, filepath.Join(dir, entry.Name()))
	}
	sort.Strings(paths)

	corpus := NewCorpus()
	for _, path := range paths {
		items, err := LoadCorpusFile(path, normalizeText)
		if err != nil {
			return nil, err
		}
		for _, item := range items {
			corpus.Add(item)
		}
	}

	logging.Debug("loaded reference corpus", logging.Fields{
		"dir":   dir,
		"files": len(paths),
		"items": corpus.Len(),
	})

	return corpus, nil
}
