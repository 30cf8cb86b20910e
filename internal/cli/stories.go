package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"livetsstemme/internal/cli/scheme/colours"
	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/nest"
	"livetsstemme/internal/story/tts"
)

func (a *App) printStory(i int, s story.Story) {
	fmt.Fprintf(a.out, "  %d. ", i)
	colours.Title.Fprintf(a.out, "%s", s.Title)
	fmt.Fprint(a.out, "  ")
	colours.Category.Fprintf(a.out, "%s", s.Category)
	fmt.Fprintf(a.out, "\n     ⏱️ %s | ▶️ %d avspillinger | 📅 %s\n",
		story.FormatDuration(s.Duration), s.PlayCount, s.CreatedAt.Local().Format("2006-01-02"))
	if s.Description != "" {
		fmt.Fprintf(a.out, "     💡 %s\n", s.Description)
	}
	if len(s.Tags) > 0 {
		colours.Tag.Fprintf(a.out, "     #%s\n", strings.Join(s.Tags, " #"))
	}
	colours.Info.Fprintf(a.out, "     ID: %s\n", s.ID)
	fmt.Fprintln(a.out)
}

func (a *App) ListStories(ctx context.Context, q story.Query) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	stories, err := a.nest.ListStories(ctx, u.ID, q)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	colours.Title.Fprintln(a.out, "📚 Mine historier 📚")
	fmt.Fprintln(a.out)
	for i, s := range stories {
		a.printStory(i+1, s)
	}

	if len(stories) == 0 {
		colours.Warning.Fprintln(a.out, "🔍 Ingen historier funnet.")
	} else {
		colours.Success.Fprintf(a.out, "✨ %d historier ✨\n", len(stories))
	}
	return nil
}

func (a *App) ShowStory(ctx context.Context, id string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	s, err := a.nest.GetStory(ctx, u.ID, id)
	if err != nil {
		return err
	}

	fmt.Fprintln(a.out)
	colours.Title.Fprintf(a.out, "📖 %s\n", s.Title)
	colours.Category.Fprintf(a.out, "%s | ⏱️ %s\n", s.Category, story.FormatDuration(s.Duration))
	if s.Description != "" {
		fmt.Fprintf(a.out, "💡 %s\n", s.Description)
	}
	if s.IsPublic {
		colours.Success.Fprintln(a.out, "🔗 Delt")
	}
	if s.Transcript != "" {
		fmt.Fprintln(a.out)
		colours.Info.Fprintln(a.out, "📄 Transkripsjon:")
		fmt.Fprintln(a.out, s.Transcript)
	}
	if m := s.AIMetadata; m != nil {
		fmt.Fprintln(a.out)
		colours.Prompt.Fprintf(a.out, "Stemning: %s\n", m.Mood)
		for _, sug := range m.Suggestions {
			fmt.Fprintf(a.out, "  • %s\n", sug)
		}
		if m.VoiceCloneReady {
			colours.Success.Fprintln(a.out, "🎙️ Klar for stemmekloning")
		}
	}
	return nil
}

func (a *App) DeleteStory(ctx context.Context, id string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	if err := a.nest.DeleteStory(ctx, u.ID, id); err != nil {
		return err
	}
	colours.Success.Fprintln(a.out, "🗑️ Historien er slettet.")
	return nil
}

type RecordOptions struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Duration    int
}

func (a *App) Record(ctx context.Context, path string, opts RecordOptions) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read recording: %w", err)
	}

	colours.Info.Fprintln(a.out, "🎧 Analyserer opptaket...")
	s, err := a.nest.RecordStory(ctx, u.ID, nest.Recording{
		Title:       opts.Title,
		Description: opts.Description,
		Category:    opts.Category,
		Tags:        opts.Tags,
		Duration:    opts.Duration,
		Audio:       data,
		Filename:    filepath.Base(path),
	})
	if err != nil {
		return err
	}

	colours.Success.Fprintln(a.out, "Historien er lagret!")
	a.printStory(1, *s)
	return nil
}

// Listen plays the recording, or reads the transcript aloud when the
// recording cannot be played here.
func (a *App) Listen(ctx context.Context, id string) error {
	u, err := a.currentUser(ctx)
	if err != nil {
		return err
	}
	s, err := a.nest.PlayStory(ctx, u.ID, id)
	if err != nil {
		return err
	}

	colours.Title.Fprintf(a.out, "📖 %s\n", s.Title)
	f, path, err := a.nest.OpenAudio(ctx, u.ID, id)
	if err == nil {
		f.Close()
		colours.Success.Fprintln(a.out, "🎵 Spiller av opptaket... (Ctrl+C for å stoppe)")
		err = a.play(ctx, path)
		if err == nil || !errors.Is(err, audio.ErrUnsupportedFormat) {
			return err
		}
	}
	if !errors.Is(err, audio.ErrNoRecording) && !errors.Is(err, audio.ErrUnsupportedFormat) {
		return err
	}

	if s.Transcript == "" {
		return errors.New("story has neither a playable recording nor a transcript")
	}
	colours.Warning.Fprintln(a.out, "Opptaket kan ikke spilles av her, leser transkripsjonen høyt.")
	return a.readAloud(ctx, s.ID, s.Transcript, string(u.Preferences.Language))
}

func (a *App) readAloud(ctx context.Context, storyID, text, language string) error {
	engine, err := a.newEngine(tts.Config{
		Type:      a.cfg.TTS.Type,
		Speed:     a.cfg.TTS.Speed,
		Volume:    a.cfg.TTS.Volume,
		Voice:     a.cfg.TTS.Voice,
		Language:  language,
		CachePath: a.cfg.TTS.CachePath,
	})
	if err != nil {
		return fmt.Errorf("failed to create tts engine: %w", err)
	}
	if sa, ok := engine.(tts.StoryAware); ok {
		sa.SetStory(storyID)
	}

	done := make(chan error, 1)
	go func() { done <- engine.Speak(text) }()

	lines := make(chan string)
	go func() {
		defer close(lines)
		scanner := bufio.NewScanner(a.in)
		for scanner.Scan() {
			lines <- scanner.Text()
		}
	}()

	fmt.Fprintln(a.out, "⏸️  Trykk 'p' for pause/fortsett, 's' for stopp")
	for {
		select {
		case err := <-done:
			if err != nil {
				return fmt.Errorf("tts: %w", err)
			}
			colours.Success.Fprintln(a.out, "✅ Ferdig!")
			return nil
		case <-ctx.Done():
			engine.Stop()
			return nil
		case line, ok := <-lines:
			if !ok {
				lines = nil
				continue
			}
			switch strings.TrimSpace(strings.ToLower(line)) {
			case "p", "pause":
				if engine.IsPlaying() {
					engine.Pause()
					colours.Warning.Fprintln(a.out, "⏸️  Pause")
				} else {
					engine.Resume()
					colours.Success.Fprintln(a.out, "▶️  Fortsetter")
				}
			case "s", "stop":
				engine.Stop()
				colours.Warning.Fprintln(a.out, "⏹️  Stoppet")
				return nil
			case "":
			default:
				colours.Info.Fprintln(a.out, "ℹ️  Bruk 'p' for pause/fortsett, 's' for stopp")
			}
		}
	}
}
