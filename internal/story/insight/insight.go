package insight

import (
	"context"
	"fmt"

	"livetsstemme/internal/domain/story"
)

// Insight is the feedback shown to a storyteller after a recording.
type Insight struct {
	Suggestions []string `json:"suggestions"`
	Mood        string   `json:"mood"`
	Themes      []string `json:"themes"`
}

// Suggester reads a transcript and proposes how to improve the story.
type Suggester interface {
	Suggest(ctx context.Context, transcript string, tags []string) (Insight, error)
}

type Config struct {
	Provider string
	APIKey   string
	Model    string
}

func New(cfg Config) (Suggester, error) {
	switch cfg.Provider {
	case "static", "":
		return Static{}, nil
	case "gemini":
		return NewGemini(context.Background(), cfg)
	default:
		return nil, fmt.Errorf("unsupported insight provider: %s", cfg.Provider)
	}
}

var staticSuggestions = []string{
	"Denne historien handler om familie og tradisjoner",
	"Kanskje legg til mer om følelsene dine i situasjonen",
	"Beskriv stedet mer detaljert for lytterne",
}

// Static gives the same encouragement for every story.
type Static struct{}

func (Static) Suggest(_ context.Context, _ string, tags []string) (Insight, error) {
	return staticInsight(tags), nil
}

func staticInsight(tags []string) Insight {
	themes := append([]string{}, tags...)
	return Insight{
		Suggestions: append([]string{}, staticSuggestions...),
		Mood:        story.DefaultMood,
		Themes:      themes,
	}
}
