package audio

import (
	"bytes"
	"errors"
	"fmt"
	"time"

	"livetsstemme/internal/domain/story"

	"github.com/faiface/beep"
	"github.com/faiface/beep/mp3"
	"github.com/faiface/beep/wav"
)

type Format string

const (
	FormatWAV     Format = "wav"
	FormatMP3     Format = "mp3"
	FormatUnknown Format = ""
)

type Quality string

const (
	QualityLow    Quality = "low"
	QualityMedium Quality = "medium"
	QualityHigh   Quality = "high"
)

var ErrUnsupportedFormat = errors.New("unsupported audio format")

// Analysis is what we learn about a recording before saving it.
type Analysis struct {
	Duration        int     `json:"duration"`
	Quality         Quality `json:"quality"`
	SampleRate      int     `json:"sampleRate"`
	VoiceCloneReady bool    `json:"voiceCloneReady"`
}

type nopSeekCloser struct {
	*bytes.Reader
}

func (nopSeekCloser) Close() error { return nil }

func detect(data []byte) Format {
	switch {
	case len(data) >= 12 && string(data[0:4]) == "RIFF" && string(data[8:12]) == "WAVE":
		return FormatWAV
	case len(data) >= 3 && string(data[0:3]) == "ID3":
		return FormatMP3
	case len(data) >= 2 && data[0] == 0xFF && data[1]&0xE0 == 0xE0:
		return FormatMP3
	}
	return FormatUnknown
}

func decode(data []byte) (beep.StreamSeekCloser, beep.Format, error) {
	r := nopSeekCloser{bytes.NewReader(data)}
	switch detect(data) {
	case FormatWAV:
		return wav.Decode(r)
	case FormatMP3:
		return mp3.Decode(r)
	}
	return nil, beep.Format{}, ErrUnsupportedFormat
}

func qualityFor(sampleRate int) Quality {
	switch {
	case sampleRate >= 44100:
		return QualityHigh
	case sampleRate >= 22050:
		return QualityMedium
	default:
		return QualityLow
	}
}

// Analyze reads the header of a WAV or MP3 recording. Other containers
// return ErrUnsupportedFormat.
func Analyze(data []byte) (Analysis, error) {
	streamer, format, err := decode(data)
	if err != nil {
		if errors.Is(err, ErrUnsupportedFormat) {
			return Analysis{}, err
		}
		return Analysis{}, fmt.Errorf("failed to decode recording: %w", err)
	}
	defer streamer.Close()

	if format.SampleRate <= 0 {
		return Analysis{}, fmt.Errorf("%w: sample rate %d", ErrUnsupportedFormat, format.SampleRate)
	}
	samples := streamer.Len()
	if samples < 0 {
		return Analysis{}, fmt.Errorf("recording length unknown")
	}
	rate := int(format.SampleRate)
	seconds := int(format.SampleRate.D(samples).Round(time.Second) / time.Second)
	quality := qualityFor(rate)

	return Analysis{
		Duration:        seconds,
		Quality:         quality,
		SampleRate:      rate,
		VoiceCloneReady: story.VoiceCloneReady(string(quality), seconds),
	}, nil
}

// Fallback is used when the container cannot be decoded; the client declared
// duration is trusted.
func Fallback(declaredSeconds int) Analysis {
	return Analysis{Duration: declaredSeconds, Quality: QualityLow}
}
