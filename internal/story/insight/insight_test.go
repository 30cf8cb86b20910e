package insight

import (
	"context"
	"errors"
	"testing"

	"livetsstemme/internal/domain/story"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

type fakeModels struct {
	text   string
	err    error
	prompt string
}

func (f *fakeModels) GenerateContent(_ context.Context, _ string, contents []*genai.Content, _ *genai.GenerateContentConfig) (*genai.GenerateContentResponse, error) {
	if f.err != nil {
		return nil, f.err
	}
	if len(contents) > 0 && len(contents[0].Parts) > 0 {
		f.prompt = contents[0].Parts[0].Text
	}
	return &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: genai.NewContentFromText(f.text, genai.RoleModel),
		}},
	}, nil
}

func TestStatic(t *testing.T) {
	tags := []string{"familie", "jul"}
	in, err := Static{}.Suggest(context.Background(), "whatever", tags)
	require.NoError(t, err)
	assert.Len(t, in.Suggestions, 3)
	assert.Equal(t, story.DefaultMood, in.Mood)
	assert.Equal(t, tags, in.Themes)

	in.Themes[0] = "changed"
	assert.Equal(t, "familie", tags[0])
}

func TestNew(t *testing.T) {
	s, err := New(Config{})
	require.NoError(t, err)
	assert.IsType(t, Static{}, s)

	_, err = New(Config{Provider: "gemini"})
	assert.ErrorIs(t, err, ErrNoAPIKey)

	_, err = New(Config{Provider: "oracle"})
	assert.Error(t, err)
}

func TestGeminiParsesJSON(t *testing.T) {
	fake := &fakeModels{text: "```json\n{\"suggestions\":[\"Fortell mer om bestefar\"],\"mood\":\"varm\",\"themes\":[\"fiske\"]}\n```"}
	g := &Gemini{models: fake, model: "test"}

	in, err := g.Suggest(context.Background(), "Vi dro ut med båten hver morgen.", []string{"reise"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Fortell mer om bestefar"}, in.Suggestions)
	assert.Equal(t, "varm", in.Mood)
	assert.Equal(t, []string{"fiske"}, in.Themes)
	assert.Contains(t, fake.prompt, "Vi dro ut med båten")
	assert.Contains(t, fake.prompt, "reise")
}

func TestGeminiFallsBack(t *testing.T) {
	g := &Gemini{models: &fakeModels{text: "Beklager, jeg kan ikke hjelpe."}, model: "test"}
	in, err := g.Suggest(context.Background(), "tekst", []string{"jobb"})
	require.NoError(t, err)
	assert.Equal(t, story.DefaultMood, in.Mood)
	assert.Equal(t, []string{"jobb"}, in.Themes)

	in, err = g.Suggest(context.Background(), "   ", nil)
	require.NoError(t, err)
	assert.Len(t, in.Suggestions, 3)
}

func TestGeminiMissingThemesUseTags(t *testing.T) {
	g := &Gemini{models: &fakeModels{text: `{"suggestions":["a"],"mood":"glad"}`}, model: "test"}
	in, err := g.Suggest(context.Background(), "tekst", []string{"barndom"})
	require.NoError(t, err)
	assert.Equal(t, []string{"barndom"}, in.Themes)
}

func TestGeminiError(t *testing.T) {
	boom := errors.New("quota exceeded")
	g := &Gemini{models: &fakeModels{err: boom}, model: "test"}
	_, err := g.Suggest(context.Background(), "tekst", nil)
	assert.ErrorIs(t, err, boom)
}
