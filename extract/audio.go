package extract

import (
	"fmt"

	"github.com/soundclaim/soundclaim/algorithms/chroma"
	"github.com/soundclaim/soundclaim/algorithms/spectral"
	"github.com/soundclaim/soundclaim/algorithms/temporal"
	"github.com/soundclaim/soundclaim/algorithms/windowing"
	"github.com/soundclaim/soundclaim/analysis/config"
	"github.com/soundclaim/soundclaim/analysis/features"
	"github.com/soundclaim/soundclaim/logging"
	"github.com/soundclaim/soundclaim/transcode"
)

// AudioExtractor produces AudioFeature representations from recordings.
// The pipeline decodes to mono PCM at the configured rate, then derives
// tempo (RMS-envelope autocorrelation), a 12-bin chroma matrix (Hann
// windowed STFT) and an MFCC matrix (Hamming windowed STFT).
type AudioExtractor struct {
	config  *config.ExtractionConfig
	decoder *transcode.Decoder
	stft    *spectral.STFT
	logger  logging.Logger
}

// NewAudioExtractor creates an audio extractor (nil config uses defaults)
func NewAudioExtractor(cfg *config.ExtractionConfig) *AudioExtractor {
	if cfg == nil {
		cfg = config.DefaultExtractionConfig()
	}
	return &AudioExtractor{
		config: cfg,
		decoder: transcode.NewDecoder(&transcode.DecoderConfig{
			TargetSampleRate: cfg.TargetSampleRate,
			MaxDuration:      cfg.MaxAudioDuration,
		}),
		stft:   spectral.NewSTFT(),
		logger: logging.WithFields(logging.Fields{"component": "extract", "modality": "audio"}),
	}
}

// Extract decodes an audio submission and derives its feature tuple
func (e *AudioExtractor) Extract(sub *features.RawSubmission) (*features.AudioFeature, error) {
	audio, err := e.decoder.DecodeBytes(sub.Data, sub.Extension())
	if err != nil {
		return nil, &features.DecodeError{Filename: sub.Filename, Err: err}
	}

	if len(audio.PCM) < e.config.WindowSize {
		return nil, &features.DecodeError{
			Filename: sub.Filename,
			Err:      fmt.Errorf("recording too short for analysis: %d samples", len(audio.PCM)),
		}
	}

	tempoEstimator := temporal.NewTempoEstimationWithRange(e.config.MinTempo, e.config.MaxTempo)
	tempo := tempoEstimator.EstimateTempo(audio.PCM, audio.SampleRate)

	chromaComputer := chroma.NewChromaSTFTDefault(audio.SampleRate)
	hann := windowing.NewHann(e.config.WindowSize, false)
	chromaMatrix, err := chromaComputer.ComputeChroma(audio.PCM, e.config.WindowSize, e.config.HopSize, hann)
	if err != nil {
		return nil, &features.DecodeError{Filename: sub.Filename, Err: fmt.Errorf("chroma analysis: %w", err)}
	}

	hamming := windowing.NewHamming(e.config.WindowSize, false)
	stftResult, err := e.stft.ComputeWithWindow(audio.PCM, e.config.WindowSize, e.config.HopSize, audio.SampleRate, hamming)
	if err != nil {
		return nil, &features.DecodeError{Filename: sub.Filename, Err: fmt.Errorf("spectral analysis: %w", err)}
	}

	mfccComputer := spectral.NewMFCCWithParams(audio.SampleRate, spectral.MFCCParams{
		NumCoefficients: e.config.NumMFCC,
		NumMelFilters:   e.config.NumMelFilters,
	})
	if err := mfccComputer.Initialize(e.config.WindowSize); err != nil {
		return nil, &features.DecodeError{Filename: sub.Filename, Err: fmt.Errorf("mel filter bank: %w", err)}
	}
	mfccMatrix, err := mfccComputer.ComputeFrames(stftResult.Magnitude)
	if err != nil {
		return nil, &features.DecodeError{Filename: sub.Filename, Err: fmt.Errorf("cepstral analysis: %w", err)}
	}

	e.logger.Debug("extracted audio features", logging.Fields{
		"filename":      sub.Filename,
		"tempo":         tempo,
		"chroma_frames": len(chromaMatrix),
		"mfcc_frames":   len(mfccMatrix),
	})

	return features.NewAudioFeature(tempo, chromaMatrix, mfccMatrix), nil
}
