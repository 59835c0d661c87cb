package features

import (
	"errors"
	"testing"
)

func TestModalityForExtension(t *testing.T) {
	cases := map[string]Modality{
		"txt":   ModalityLyrics,
		"xml":   ModalityScore,
		"mxl":   ModalityScore,
		"midi":  ModalityScore,
		"mid":   ModalityScore,
		"mp3":   ModalityAudio,
		"wav":   ModalityAudio,
		".txt":  ModalityLyrics,
		"WAV":   ModalityAudio,
		" .MID": ModalityScore,
	}
	for ext, want := range cases {
		got, err := ModalityForExtension(ext)
		if err != nil {
			t.Errorf("ModalityForExtension(%q): %v", ext, err)
			continue
		}
		if got != want {
			t.Errorf("ModalityForExtension(%q) = %s, want %s", ext, got, want)
		}
	}

	if _, err := ModalityForExtension("pdf"); err == nil {
		t.Error("expected error for unrecognized extension")
	}
	if _, err := ModalityForExtension(""); err == nil {
		t.Error("expected error for empty extension")
	}
}

func TestRawSubmissionExtension(t *testing.T) {
	cases := map[string]string{
		"song.mp3":        "mp3",
		"path.to.file.WAV": "wav",
		"noextension":     "",
		"trailing.":       "",
	}
	for filename, want := range cases {
		sub := &RawSubmission{Filename: filename}
		if got := sub.Extension(); got != want {
			t.Errorf("Extension(%q) = %q, want %q", filename, got, want)
		}
	}
}

func TestRawSubmissionModality(t *testing.T) {
	sub := &RawSubmission{Filename: "melody.mid"}
	modality, err := sub.Modality()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if modality != ModalityScore {
		t.Errorf("modality = %s, want score", modality)
	}

	if _, err := (&RawSubmission{Filename: "README"}).Modality(); err == nil {
		t.Error("expected error for extension-less filename")
	}
}

func TestErrorUnwrap(t *testing.T) {
	cause := errors.New("root cause")

	var err error = &ParseError{Filename: "x.mid", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ParseError does not unwrap to its cause")
	}

	err = &DecodeError{Filename: "x.wav", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("DecodeError does not unwrap to its cause")
	}

	err = &ComparisonError{Reference: "ref", Err: cause}
	if !errors.Is(err, cause) {
		t.Error("ComparisonError does not unwrap to its cause")
	}
}

func TestRepresentationModalities(t *testing.T) {
	var reps = []Representation{
		NewTextFeature("words"),
		NewPitchFeature([]string{"C4"}),
		NewAudioFeature(120, nil, nil),
	}
	want := []Modality{ModalityLyrics, ModalityScore, ModalityAudio}
	for i, rep := range reps {
		if rep.Modality() != want[i] {
			t.Errorf("representation %d has modality %s, want %s", i, rep.Modality(), want[i])
		}
	}
}
