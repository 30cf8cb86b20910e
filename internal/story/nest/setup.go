package nest

import (
	"context"
	"fmt"

	"livetsstemme/internal/config"
	"livetsstemme/internal/domain/prompt"
	"livetsstemme/internal/store"
	"livetsstemme/internal/store/filestore"
	"livetsstemme/internal/store/sqlstore"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/insight"
	"livetsstemme/internal/story/transcribe"
	"livetsstemme/internal/voice/elevenlabs"

	"github.com/sirupsen/logrus"
)

// OpenStore picks the backend named by store.driver.
func OpenStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	switch cfg.Store.Driver {
	case "file", "":
		return filestore.New(cfg.DataDir)
	case sqlstore.DriverSQLite, sqlstore.DriverPostgres:
		return sqlstore.Open(ctx, cfg.Store.Driver, cfg.Store.DSN)
	default:
		return nil, fmt.Errorf("unknown store driver: %s", cfg.Store.Driver)
	}
}

// FromConfig builds a Nest with every dependency configured.
func FromConfig(ctx context.Context, cfg config.Config) (*Nest, error) {
	st, err := OpenStore(ctx, cfg)
	if err != nil {
		return nil, err
	}

	audioStore, err := audio.NewStore(cfg.Audio.Dir)
	if err != nil {
		st.Close()
		return nil, err
	}

	transcriber, err := transcribe.New(transcribe.Config{
		Provider: cfg.Transcribe.Provider,
		APIKey:   cfg.Transcribe.APIKey,
		BaseURL:  cfg.Transcribe.BaseURL,
		Model:    cfg.Transcribe.Model,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	suggester, err := insight.New(insight.Config{
		Provider: cfg.Insight.Provider,
		APIKey:   cfg.Insight.APIKey,
		Model:    cfg.Insight.Model,
	})
	if err != nil {
		st.Close()
		return nil, err
	}

	prompts, err := prompt.Load(cfg.Prompts.File)
	if err != nil {
		st.Close()
		return nil, err
	}

	logrus.WithFields(logrus.Fields{
		"store":      cfg.Store.Driver,
		"transcribe": cfg.Transcribe.Provider,
		"insight":    cfg.Insight.Provider,
	}).Debug("Configured story service")

	return New(Options{
		Store:       st,
		Audio:       audioStore,
		Transcriber: transcriber,
		Suggester:   suggester,
		Prompts:     prompts,
		Voices: elevenlabs.New(elevenlabs.Config{
			APIKey:  cfg.ElevenLabs.APIKey,
			BaseURL: cfg.ElevenLabs.BaseURL,
		}),
		SessionTTL: cfg.Auth.SessionTTL,
	}), nil
}
