package cli

import (
	"context"
	"fmt"
	"os"

	"livetsstemme/internal/cli/scheme/colours"
	"livetsstemme/internal/story/tts"
	"livetsstemme/internal/voice/elevenlabs"
)

func (a *App) CloneVoice(ctx context.Context, name, path string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("failed to open sample: %w", err)
	}
	defer f.Close()

	colours.Info.Fprintln(a.out, "🎙️ Laster opp stemmeprøve...")
	body, err := a.nest.CloneVoice(ctx, u.ID, name, f)
	if err != nil {
		return err
	}
	colours.Success.Fprintf(a.out, "✅ Stemmen %q er klonet (id %s)\n", name, elevenlabs.VoiceID(body))
	return nil
}

func (a *App) Purge(ctx context.Context) error {
	res, err := a.nest.PurgeExpired(ctx)
	if err != nil {
		return err
	}
	colours.Success.Fprintf(a.out, "Fjernet %d utløpte økter, avpubliserte %d historier\n", res.Sessions, res.Unshared)
	return nil
}

// Voices lists the reading engines on this machine and the voices of the
// configured one.
func (a *App) Voices() error {
	colours.Title.Fprintln(a.out, "🗣️ Opplesning")
	for _, e := range tts.GetAvailableEngines() {
		fmt.Fprintf(a.out, "  • %s\n", e)
	}

	engine, err := a.newEngine(tts.Config{
		Type:      a.cfg.TTS.Type,
		Voice:     a.cfg.TTS.Voice,
		CachePath: a.cfg.TTS.CachePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create tts engine: %w", err)
	}
	defer engine.Stop()

	voices, err := engine.GetAvailableVoices()
	if err != nil {
		return fmt.Errorf("failed to list voices: %w", err)
	}
	fmt.Fprintln(a.out)
	colours.Prompt.Fprintf(a.out, "Stemmer (%s):\n", a.cfg.TTS.Type)
	for _, v := range voices {
		fmt.Fprintf(a.out, "  • %s\n", v)
	}
	return nil
}
