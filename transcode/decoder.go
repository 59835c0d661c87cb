package transcode

import (
	"bytes"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/go-audio/wav"
	mp3 "github.com/hajimehoshi/go-mp3"

	"github.com/soundclaim/soundclaim/algorithms/common"
	"github.com/soundclaim/soundclaim/logging"
)

// DecoderConfig controls PCM extraction and normalization
type DecoderConfig struct {
	TargetSampleRate int           `json:"target_sample_rate"`
	MaxDuration      time.Duration `json:"max_duration"`
}

// DefaultDecoderConfig returns sensible defaults for feature extraction work
func DefaultDecoderConfig() *DecoderConfig {
	return &DecoderConfig{
		TargetSampleRate: 22050,
		MaxDuration:      10 * time.Minute,
	}
}

// AudioData holds decoded, mono, resampled PCM samples
type AudioData struct {
	PCM        []float64     `json:"-"`
	SampleRate int           `json:"sample_rate"`
	Channels   int           `json:"channels"`
	Duration   time.Duration `json:"duration"`
}

// Decoder converts compressed or container audio bytes into normalized PCM.
// Stereo input is downmixed to mono by channel averaging, and everything is
// resampled to the configured target rate.
type Decoder struct {
	config       *DecoderConfig
	interpolator *common.Interpolator
	logger       logging.Logger
}

// NewDecoder creates a decoder with the given config (nil uses defaults)
func NewDecoder(config *DecoderConfig) *Decoder {
	if config == nil {
		config = DefaultDecoderConfig()
	}
	return &Decoder{
		config:       config,
		interpolator: common.NewInterpolator(common.Linear),
		logger:       logging.WithFields(logging.Fields{"component": "transcode"}),
	}
}

// DecodeBytes decodes raw file bytes for the given format ("wav" or "mp3")
func (d *Decoder) DecodeBytes(data []byte, format string) (*AudioData, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("empty audio payload")
	}

	var (
		audio *AudioData
		err   error
	)

	switch strings.ToLower(format) {
	case "wav":
		audio, err = d.decodeWAV(data)
	case "mp3":
		audio, err = d.decodeMP3(data)
	default:
		return nil, fmt.Errorf("unsupported audio format: %s", format)
	}

	if err != nil {
		return nil, err
	}

	if d.config.MaxDuration > 0 && audio.Duration > d.config.MaxDuration {
		maxSamples := int(d.config.MaxDuration.Seconds() * float64(audio.SampleRate))
		if maxSamples < len(audio.PCM) {
			audio.PCM = audio.PCM[:maxSamples]
			audio.Duration = d.config.MaxDuration
		}
	}

	if d.config.TargetSampleRate > 0 && audio.SampleRate != d.config.TargetSampleRate {
		audio.PCM = d.interpolator.ResampleSignal(audio.PCM, audio.SampleRate, d.config.TargetSampleRate)
		audio.SampleRate = d.config.TargetSampleRate
	}

	d.logger.Debug("decoded audio", logging.Fields{
		"format":      format,
		"sample_rate": audio.SampleRate,
		"samples":     len(audio.PCM),
		"duration":    audio.Duration.Seconds(),
	})

	return audio, nil
}

// decodeWAV decodes a RIFF/WAVE payload into mono float64 PCM
func (d *Decoder) decodeWAV(data []byte) (*AudioData, error) {
	decoder := wav.NewDecoder(bytes.NewReader(data))
	if !decoder.IsValidFile() {
		return nil, fmt.Errorf("invalid WAV file")
	}

	buf, err := decoder.FullPCMBuffer()
	if err != nil {
		return nil, fmt.Errorf("read WAV PCM: %w", err)
	}
	if buf == nil || len(buf.Data) == 0 {
		return nil, fmt.Errorf("WAV file contains no samples")
	}

	channels := buf.Format.NumChannels
	if channels <= 0 {
		channels = 1
	}
	sampleRate := buf.Format.SampleRate
	if sampleRate <= 0 {
		return nil, fmt.Errorf("WAV file reports invalid sample rate %d", sampleRate)
	}

	bitDepth := int(decoder.BitDepth)
	if bitDepth <= 0 {
		bitDepth = 16
	}
	scale := float64(int64(1) << (bitDepth - 1))

	numFrames := len(buf.Data) / channels
	pcm := make([]float64, numFrames)
	for i := range numFrames {
		sum := 0.0
		for ch := range channels {
			sum += float64(buf.Data[i*channels+ch]) / scale
		}
		pcm[i] = sum / float64(channels)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   channels,
		Duration:   time.Duration(float64(numFrames) / float64(sampleRate) * float64(time.Second)),
	}, nil
}

// decodeMP3 decodes an MPEG-1 Layer III payload into mono float64 PCM.
// go-mp3 always emits 16-bit little-endian stereo frames.
func (d *Decoder) decodeMP3(data []byte) (*AudioData, error) {
	decoder, err := mp3.NewDecoder(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open MP3 stream: %w", err)
	}

	raw, err := io.ReadAll(decoder)
	if err != nil {
		return nil, fmt.Errorf("read MP3 PCM: %w", err)
	}
	if len(raw) < 4 {
		return nil, fmt.Errorf("MP3 file contains no samples")
	}

	// 4 bytes per frame: left int16 LE, right int16 LE
	numFrames := len(raw) / 4
	pcm := make([]float64, numFrames)
	for i := range numFrames {
		left := int16(uint16(raw[i*4]) | uint16(raw[i*4+1])<<8)
		right := int16(uint16(raw[i*4+2]) | uint16(raw[i*4+3])<<8)
		pcm[i] = (float64(left) + float64(right)) / 2.0 / 32768.0
	}

	sampleRate := decoder.SampleRate()
	if sampleRate <= 0 {
		return nil, fmt.Errorf("MP3 stream reports invalid sample rate %d", sampleRate)
	}

	return &AudioData{
		PCM:        pcm,
		SampleRate: sampleRate,
		Channels:   2,
		Duration:   time.Duration(float64(numFrames) / float64(sampleRate) * float64(time.Second)),
	}, nil
}
