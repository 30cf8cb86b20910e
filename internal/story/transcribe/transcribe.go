package transcribe

import (
	"context"
	"fmt"
	"io"
)

// SimulatedTranscript is returned by the mock provider.
const SimulatedTranscript = "Dette er en simulert transkripsjon av lydopptaket. I en ekte implementering ville denne teksten være den faktiske talen fra opptaket, konvertert til tekst ved hjelp av AI-basert tale-til-tekst teknologi."

type ProviderType string

const (
	ProviderMock    ProviderType = "mock"
	ProviderWhisper ProviderType = "whisper"
)

// Transcriber turns a recording into text.
type Transcriber interface {
	Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error)
}

type Config struct {
	Provider string
	APIKey   string
	BaseURL  string
	Model    string
}

func New(cfg Config) (Transcriber, error) {
	switch ProviderType(cfg.Provider) {
	case ProviderMock, "":
		return Mock{}, nil
	case ProviderWhisper:
		return NewWhisper(cfg)
	default:
		return nil, fmt.Errorf("unsupported transcription provider: %s", cfg.Provider)
	}
}

// Mock returns a fixed transcript without looking at the audio.
type Mock struct{}

func (Mock) Transcribe(_ context.Context, _ io.Reader, _, _ string) (string, error) {
	return SimulatedTranscript, nil
}
