package transcribe

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"github.com/sirupsen/logrus"
)

var ErrNoAPIKey = errors.New("OPENAI_API_KEY not configured")

// Whisper transcribes through the OpenAI audio API.
type Whisper struct {
	client openai.Client
	model  string
}

func NewWhisper(cfg Config) (*Whisper, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	model := cfg.Model
	if model == "" {
		model = string(openai.AudioModelWhisper1)
	}
	return &Whisper{
		client: openai.NewClient(opts...),
		model:  model,
	}, nil
}

func (w *Whisper) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	params := openai.AudioTranscriptionNewParams{
		File:  openai.File(audio, filename, ""),
		Model: openai.AudioModel(w.model),
	}
	if language != "" {
		params.Language = openai.String(whisperLanguage(language))
	}

	resp, err := w.client.Audio.Transcriptions.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("transcription failed: %w", err)
	}

	text := strings.TrimSpace(resp.Text)
	logrus.WithFields(logrus.Fields{
		"model": w.model,
		"chars": len(text),
	}).Debug("Transcribed recording")
	return text, nil
}

// whisperLanguage maps profile languages to ISO-639-1 codes Whisper accepts.
func whisperLanguage(lang string) string {
	if lang == "nb" {
		return "no"
	}
	return lang
}
