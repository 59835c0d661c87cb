package extract

import (
	"archive/zip"
	"bytes"
	"errors"
	"testing"

	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"

	"github.com/soundclaim/soundclaim/analysis/features"
)

// buildMIDI writes a single-track SMF with the given notes on channel 0
func buildMIDI(t *testing.T, notes []uint8) []byte {
	t.Helper()

	score := smf.New()
	var track smf.Track
	for _, note := range notes {
		track.Add(0, midi.NoteOn(0, note, 100))
		track.Add(480, midi.NoteOff(0, note))
	}
	track.Close(0)
	if err := score.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}

	var buf bytes.Buffer
	if _, err := score.WriteTo(&buf); err != nil {
		t.Fatalf("write SMF: %v", err)
	}
	return buf.Bytes()
}

func TestScoreExtractorMIDI(t *testing.T) {
	extractor := NewScoreExtractor(nil)

	// C4, D4, E4
	data := buildMIDI(t, []uint8{60, 62, 64})
	feature, err := extractor.Extract(submission("melody.mid", data))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	want := []string{"C4", "D4", "E4"}
	got := feature.Pitches()
	if len(got) != len(want) {
		t.Fatalf("got %d pitches %v, want %d", len(got), got, len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pitch %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScoreExtractorMIDIDropsPercussion(t *testing.T) {
	extractor := NewScoreExtractor(nil)

	score := smf.New()
	var track smf.Track
	track.Add(0, midi.NoteOn(9, 36, 100)) // drum channel
	track.Add(120, midi.NoteOff(9, 36))
	track.Add(0, midi.NoteOn(0, 67, 100)) // G4
	track.Add(480, midi.NoteOff(0, 67))
	track.Close(0)
	if err := score.Add(track); err != nil {
		t.Fatalf("add track: %v", err)
	}
	var buf bytes.Buffer
	if _, err := score.WriteTo(&buf); err != nil {
		t.Fatalf("write SMF: %v", err)
	}

	feature, err := extractor.Extract(submission("beat.mid", buf.Bytes()))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	got := feature.Pitches()
	if len(got) != 1 || got[0] != "G4" {
		t.Errorf("got %v, want [G4]", got)
	}
}

const sampleMusicXML = `<?xml version="1.0" encoding="UTF-8"?>
<score-partwise version="3.1">
  <part id="P1">
    <measure number="1">
      <note><pitch><step>C</step><octave>4</octave></pitch></note>
      <note><rest/></note>
      <note><pitch><step>C</step><alter>1</alter><octave>4</octave></pitch></note>
      <note><pitch><step>D</step><alter>-1</alter><octave>5</octave></pitch></note>
    </measure>
  </part>
</score-partwise>`

func TestScoreExtractorMusicXML(t *testing.T) {
	extractor := NewScoreExtractor(nil)

	feature, err := extractor.Extract(submission("score.xml", []byte(sampleMusicXML)))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	// D flat 5 folds to C#5; the rest is dropped
	want := []string{"C4", "C#4", "C#5"}
	got := feature.Pitches()
	if len(got) != len(want) {
		t.Fatalf("got %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("pitch %d = %q, want %q", i, got[i], want[i])
		}
	}
}

func TestScoreExtractorMXL(t *testing.T) {
	extractor := NewScoreExtractor(nil)

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	manifest, err := zw.Create("META-INF/container.xml")
	if err != nil {
		t.Fatalf("create manifest: %v", err)
	}
	_, _ = manifest.Write([]byte(`<?xml version="1.0"?>
<container><rootfiles><rootfile full-path="score.xml"/></rootfiles></container>`))

	doc, err := zw.Create("score.xml")
	if err != nil {
		t.Fatalf("create score entry: %v", err)
	}
	_, _ = doc.Write([]byte(sampleMusicXML))

	if err := zw.Close(); err != nil {
		t.Fatalf("close archive: %v", err)
	}

	feature, err := extractor.Extract(submission("score.mxl", buf.Bytes()))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}
	if len(feature.Pitches()) != 3 {
		t.Errorf("got %v, want 3 pitches", feature.Pitches())
	}
}

func TestScoreExtractorCorrupt(t *testing.T) {
	extractor := NewScoreExtractor(nil)

	cases := []struct {
		name string
		data []byte
	}{
		{"bad.mid", []byte("MThd truncated garbage")},
		{"bad.xml", []byte("<score-partwise><unclosed")},
		{"wrongroot.xml", []byte("<not-a-score/>")},
		{"bad.mxl", []byte("PK garbage")},
	}
	for _, c := range cases {
		_, err := extractor.Extract(submission(c.name, c.data))
		var parseErr *features.ParseError
		if !errors.As(err, &parseErr) {
			t.Errorf("%s: expected ParseError, got %v", c.name, err)
		}
	}
}

func TestPitchName(t *testing.T) {
	cases := map[int]string{
		60: "C4",
		61: "C#4",
		69: "A4",
		21: "A0",
		71: "B4",
	}
	for note, want := range cases {
		if got := pitchName(note); got != want {
			t.Errorf("pitchName(%d) = %q, want %q", note, got, want)
		}
	}
}
