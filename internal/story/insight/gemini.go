package insight

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/sirupsen/logrus"
	"google.golang.org/genai"
)

var ErrNoAPIKey = errors.New("GEMINI_API_KEY not configured")

const geminiPrompt = `Du hjelper eldre mennesker å fortelle livshistorier til familien sin.
Les transkripsjonen under og svar kun med JSON på formen
{"suggestions": ["..."], "mood": "...", "themes": ["..."]}
med tre korte forslag på norsk til hvordan historien kan bli rikere,
ett ord for stemningen og opptil fem temaer.

Emneord: %s

Transkripsjon:
%s`

type generator interface {
	GenerateContent(ctx context.Context, model string, contents []*genai.Content, config *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error)
}

// Gemini asks Google's Gemini models for story feedback.
type Gemini struct {
	models generator
	model  string
}

func NewGemini(ctx context.Context, cfg Config) (*Gemini, error) {
	if cfg.APIKey == "" {
		return nil, ErrNoAPIKey
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create GenAI client: %w", err)
	}
	model := cfg.Model
	if model == "" {
		model = "gemini-2.5-flash"
	}
	return &Gemini{models: client.Models, model: model}, nil
}

// Suggest falls back to the static insight when the model answer is empty or
// not the requested JSON.
func (g *Gemini) Suggest(ctx context.Context, transcript string, tags []string) (Insight, error) {
	if strings.TrimSpace(transcript) == "" {
		return staticInsight(tags), nil
	}

	prompt := fmt.Sprintf(geminiPrompt, strings.Join(tags, ", "), transcript)
	resp, err := g.models.GenerateContent(ctx, g.model, genai.Text(prompt), &genai.GenerateContentConfig{
		ResponseMIMEType: "application/json",
	})
	if err != nil {
		return Insight{}, fmt.Errorf("gemini request failed: %w", err)
	}

	out, ok := parseInsight(resp.Text())
	if !ok {
		logrus.WithField("model", g.model).Warn("Gemini answer unusable, using static insight")
		return staticInsight(tags), nil
	}
	if len(out.Themes) == 0 {
		out.Themes = append([]string{}, tags...)
	}
	return out, nil
}

func parseInsight(text string) (Insight, bool) {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")

	var out Insight
	if err := json.Unmarshal([]byte(strings.TrimSpace(text)), &out); err != nil {
		return Insight{}, false
	}
	if len(out.Suggestions) == 0 || out.Mood == "" {
		return Insight{}, false
	}
	return out, true
}
