// Package nest is the application service. It ties the stores, the audio
// pipeline and the vendor clients together behind user scoped operations.
package nest

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"time"

	"livetsstemme/internal/domain/prompt"
	"livetsstemme/internal/store"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/insight"
	"livetsstemme/internal/story/transcribe"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
	ErrInvalid      = errors.New("invalid input")
)

// ValidationError is a user facing input problem.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func (e *ValidationError) Unwrap() error { return ErrInvalid }

func invalid(format string, args ...any) error {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// VoiceCloner uploads a voice sample to a cloning provider.
type VoiceCloner interface {
	AddVoice(ctx context.Context, name string, audio io.Reader) (json.RawMessage, error)
}

type Options struct {
	Store       store.Store
	Audio       *audio.Store
	Transcriber transcribe.Transcriber
	Suggester   insight.Suggester
	Prompts     *prompt.Catalog
	Voices      VoiceCloner
	SessionTTL  time.Duration

	// Now defaults to time.Now.
	Now func() time.Time
}

type Nest struct {
	store       store.Store
	audio       *audio.Store
	transcriber transcribe.Transcriber
	suggester   insight.Suggester
	prompts     *prompt.Catalog
	voices      VoiceCloner
	sessionTTL  time.Duration
	now         func() time.Time
}

func New(opts Options) *Nest {
	n := &Nest{
		store:       opts.Store,
		audio:       opts.Audio,
		transcriber: opts.Transcriber,
		suggester:   opts.Suggester,
		prompts:     opts.Prompts,
		voices:      opts.Voices,
		sessionTTL:  opts.SessionTTL,
		now:         opts.Now,
	}
	if n.now == nil {
		n.now = time.Now
	}
	if n.sessionTTL <= 0 {
		n.sessionTTL = 30 * 24 * time.Hour
	}
	if n.transcriber == nil {
		n.transcriber = transcribe.Mock{}
	}
	if n.suggester == nil {
		n.suggester = insight.Static{}
	}
	if n.prompts == nil {
		n.prompts = prompt.Default()
	}
	return n
}

// Close releases the underlying store.
func (n *Nest) Close() error {
	return n.store.Close()
}
