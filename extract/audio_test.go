package extract

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"testing"

	"github.com/soundclaim/soundclaim/analysis/features"
)

// sineWAV builds a 16-bit mono PCM WAV holding a sine tone
func sineWAV(freq float64, sampleRate int, seconds float64) []byte {
	n := int(float64(sampleRate) * seconds)
	var buf bytes.Buffer
	dataSize := n * 2

	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+dataSize))
	buf.WriteString("WAVE")
	buf.WriteString("fmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(sampleRate*2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(2))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(16))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(dataSize))
	for i := range n {
		sample := int16(20000 * math.Sin(2*math.Pi*freq*float64(i)/float64(sampleRate)))
		_ = binary.Write(&buf, binary.LittleEndian, sample)
	}
	return buf.Bytes()
}

func TestAudioExtractor(t *testing.T) {
	extractor := NewAudioExtractor(nil)

	feature, err := extractor.Extract(submission("tone.wav", sineWAV(440, 22050, 1.0)))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	if feature.Modality() != features.ModalityAudio {
		t.Errorf("modality = %s", feature.Modality())
	}
	if feature.Tempo() < 0 {
		t.Errorf("tempo must be non-negative, got %f", feature.Tempo())
	}

	chroma := feature.Chroma()
	if len(chroma) == 0 {
		t.Fatal("chroma matrix is empty")
	}
	if len(chroma[0]) != 12 {
		t.Errorf("chroma bins = %d, want 12", len(chroma[0]))
	}

	mfcc := feature.MFCC()
	if len(mfcc) == 0 {
		t.Fatal("MFCC matrix is empty")
	}
	if len(mfcc[0]) != 13 {
		t.Errorf("MFCC coefficients = %d, want 13", len(mfcc[0]))
	}
}

func TestAudioExtractorChromaPeaksAtPitchClass(t *testing.T) {
	extractor := NewAudioExtractor(nil)

	// A4 = 440 Hz, pitch class index 9
	feature, err := extractor.Extract(submission("a440.wav", sineWAV(440, 22050, 1.0)))
	if err != nil {
		t.Fatalf("extract failed: %v", err)
	}

	energy := make([]float64, 12)
	for _, frame := range feature.Chroma() {
		for bin, v := range frame {
			energy[bin] += v
		}
	}
	peak := 0
	for bin, v := range energy {
		if v > energy[peak] {
			peak = bin
		}
	}
	if peak != 9 {
		t.Errorf("chroma energy peaks at bin %d, want 9 (A)", peak)
	}
}

func TestAudioExtractorCorrupt(t *testing.T) {
	extractor := NewAudioExtractor(nil)

	_, err := extractor.Extract(submission("noise.wav", []byte("definitely not a RIFF file")))
	var decodeErr *features.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError, got %v", err)
	}
}

func TestAudioExtractorTooShort(t *testing.T) {
	extractor := NewAudioExtractor(nil)

	_, err := extractor.Extract(submission("blip.wav", sineWAV(440, 22050, 0.01)))
	var decodeErr *features.DecodeError
	if !errors.As(err, &decodeErr) {
		t.Fatalf("expected DecodeError for sub-window recording, got %v", err)
	}
}
