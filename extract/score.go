package extract

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"sort"
	"strings"

	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/logging"
)

// noteNames maps pitch class to its sharp-preferring name
var noteNames = [12]string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

// stepSemitones maps MusicXML step letters to semitone offsets within an octave
var stepSemitones = map[string]int{
	"C": 0, "D": 2, "E": 4, "F": 5, "G": 7, "A": 9, "B": 11,
}

// percussionChannel is the General MIDI drum channel; its events carry no
// melodic pitch and are dropped
const percussionChannel = 9

// pitchName renders a MIDI note number as name-plus-octave, e.g. 60 -> "C4"
func pitchName(note int) string {
	return fmt.Sprintf("%s%d", noteNames[note%12], note/12-1)
}

// ScoreExtractor produces PitchFeature representations from notated-music
// submissions. MIDI (.mid/.midi), MusicXML (.xml) and compressed MusicXML
// (.mxl) are supported.
type ScoreExtractor struct {
	config *config.ExtractionConfig
	logger logging.Logger
}

// NewScoreExtractor creates a score extractor (nil config uses defaults)
func NewScoreExtractor(cfg *config.ExtractionConfig) *ScoreExtractor {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	return &ScoreExtractor{
		config: cfg,
		logger: logging.WithFields(logging.Fields{"component": "extract", "modality": "score"}),
	}
}

// Extract parses a score submission into its onset-ordered pitch sequence
func (e *ScoreExtractor) Extract(sub *features.RawSubmission) (*features.PitchFeature, error) {
	var (
		pitches []string
		err     error
	)

	switch sub.Extension() {
	case "mid", "midi":
		pitches, err = e.extractMIDI(sub.Data)
	case "xml":
		pitches, err = e.extractMusicXML(sub.Data)
	case "mxl":
		pitches, err = e.extractMXL(sub.Data)
	default:
		err = fmt.Errorf("unsupported score format: %q", sub.Extension())
	}

	if err != nil {
		return nil, &features.ParseError{Filename: sub.Filename, Err: err}
	}

	e.logger.Debug("extracted pitch sequence", logging.Fields{
		"filename": sub.Filename,
		"pitches":  len(pitches),
	})

	return features.NewPitchFeature(pitches), nil
}

// midiOnset is a note-on event positioned on the merged absolute timeline
type midiOnset struct {
	tick  int64
	track int
	index int
	note  int
}

// extractMIDI reads a Standard MIDI File and returns its note-on pitches
// merged across tracks in absolute-tick order. Ties are broken by track
// number, then by event order within the track, so multi-track files yield
// a deterministic sequence.
func (e *ScoreExtractor) extractMIDI(data []byte) ([]string, error) {
	score, err := smf.ReadFrom(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("read MIDI: %w", err)
	}

	var onsets []midiOnset
	for trackIdx, track := range score.Tracks {
		var absTick int64
		for eventIdx, event := range track {
			absTick += int64(event.Delta)

			var channel, key, velocity uint8
			if !event.Message.GetNoteStart(&channel, &key, &velocity) {
				continue
			}
			if channel == percussionChannel {
				continue
			}

			onsets = append(onsets, midiOnset{
				tick:  absTick,
				track: trackIdx,
				index: eventIdx,
				note:  int(key),
			})
		}
	}

	sort.Slice(onsets, func(i, j int) bool {
		if onsets[i].tick != onsets[j].tick {
			return onsets[i].tick < onsets[j].tick
		}
		if onsets[i].track != onsets[j].track {
			return onsets[i].track < onsets[j].track
		}
		return onsets[i].index < onsets[j].index
	})

	pitches := make([]string, len(onsets))
	for i, onset := range onsets {
		pitches[i] = pitchName(onset.note)
	}
	return pitches, nil
}

// MusicXML score-partwise document, reduced to the elements pitch
// extraction needs
type musicXMLScore struct {
	XMLName xml.Name       `xml:"score-partwise"`
	Parts   []musicXMLPart `xml:"part"`
}

type musicXMLPart struct {
	Measures []musicXMLMeasure `xml:"measure"`
}

type musicXMLMeasure struct {
	Notes []musicXMLNote `xml:"note"`
}

type musicXMLNote struct {
	Rest  *struct{}      `xml:"rest"`
	Pitch *musicXMLPitch `xml:"pitch"`
}

type musicXMLPitch struct {
	Step   string `xml:"step"`
	Alter  int    `xml:"alter"`
	Octave int    `xml:"octave"`
}

// extractMusicXML parses a score-partwise document into document-order
// pitches. Rests and unpitched notes are dropped. Accidentals are folded
// into the chromatic note number so "D flat 4" and "C sharp 4" both render
// as "C#4", matching the MIDI path.
func (e *ScoreExtractor) extractMusicXML(data []byte) ([]string, error) {
	var score musicXMLScore
	if err := xml.Unmarshal(data, &score); err != nil {
		return nil, fmt.Errorf("parse MusicXML: %w", err)
	}

	var pitches []string
	for _, part := range score.Parts {
		for _, measure := range part.Measures {
			for _, note := range measure.Notes {
				if note.Rest != nil || note.Pitch == nil {
					continue
				}
				semitone, ok := stepSemitones[strings.ToUpper(strings.TrimSpace(note.Pitch.Step))]
				if !ok {
					return nil, fmt.Errorf("invalid pitch step %q", note.Pitch.Step)
				}
				midiNote := (note.Pitch.Octave+1)*12 + semitone + note.Pitch.Alter
				if midiNote < 0 || midiNote > 127 {
					return nil, fmt.Errorf("pitch out of range: %s%d alter %d", note.Pitch.Step, note.Pitch.Octave, note.Pitch.Alter)
				}
				pitches = append(pitches, pitchName(midiNote))
			}
		}
	}
	return pitches, nil
}

// mxlContainer is the META-INF/container.xml manifest of a compressed
// MusicXML archive
type mxlContainer struct {
	RootFiles []struct {
		FullPath string `xml:"full-path,attr"`
	} `xml:"rootfiles>rootfile"`
}

// extractMXL unpacks a compressed MusicXML (.mxl) archive and parses the
// score document named by its container manifest. Archives without a
// manifest fall back to the first top-level XML entry.
func (e *ScoreExtractor) extractMXL(data []byte) ([]string, error) {
	archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("open MXL archive: %w", err)
	}

	rootPath := ""
	for _, file := range archive.File {
		if file.Name != "META-INF/container.xml" {
			continue
		}
		manifest, err := readZipEntry(file)
		if err != nil {
			return nil, fmt.Errorf("read MXL manifest: %w", err)
		}
		var container mxlContainer
		if err := xml.Unmarshal(manifest, &container); err != nil {
			return nil, fmt.Errorf("parse MXL manifest: %w", err)
		}
		if len(container.RootFiles) > 0 {
			rootPath = container.RootFiles[0].FullPath
		}
		break
	}

	if rootPath == "" {
		for _, file := range archive.File {
			if strings.HasPrefix(file.Name, "META-INF/") {
				continue
			}
			if strings.HasSuffix(strings.ToLower(file.Name), ".xml") {
				rootPath = file.Name
				break
			}
		}
	}
	if rootPath == "" {
		return nil, fmt.Errorf("MXL archive contains no score document")
	}

	for _, file := range archive.File {
		if file.Name != rootPath {
			continue
		}
		doc, err := readZipEntry(file)
		if err != nil {
			return nil, fmt.Errorf("read MXL score document: %w", err)
		}
		return e.extractMusicXML(doc)
	}
	return nil, fmt.Errorf("MXL manifest names missing entry %q", rootPath)
}

func readZipEntry(file *zip.File) ([]byte, error) {
	rc, err := file.Open()
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()
	return io.ReadAll(rc)
}
