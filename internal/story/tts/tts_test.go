package tts

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewEngineMock(t *testing.T) {
	e, err := NewEngine(Config{Type: "mock"})
	require.NoError(t, err)
	assert.IsType(t, &MockTTSEngine{}, e)

	_, err = NewEngine(Config{Type: "sapi"})
	assert.Error(t, err)
}

func TestMockEngine(t *testing.T) {
	m := NewMockTTSEngine(Config{})
	m.delay = 50 * time.Millisecond

	done := make(chan error)
	go func() { done <- m.Speak("Det var en gang") }()

	require.Eventually(t, m.IsPlaying, time.Second, 5*time.Millisecond)
	require.NoError(t, m.Pause())
	assert.False(t, m.IsPlaying())
	require.NoError(t, m.Resume())

	require.NoError(t, <-done)
	assert.False(t, m.IsPlaying())
	assert.Equal(t, []string{"Det var en gang"}, m.Spoken())
}

func TestLanguageCode(t *testing.T) {
	assert.Equal(t, "nb-NO", LanguageCode("nb"))
	assert.Equal(t, "nb-NO", LanguageCode(""))
	assert.Equal(t, "en-US", LanguageCode("en"))
}

func TestESpeakArgs(t *testing.T) {
	args := espeakArgs(Config{Voice: "default", Language: "nb", Speed: 1.0, Volume: 0.8}, "Hei")
	assert.Equal(t, []string{"-v", "nb", "-s", "175", "-a", "80", "Hei"}, args)

	args = espeakArgs(Config{Voice: "en-gb", Speed: 2.0, Volume: 1.0}, "Hello")
	assert.Equal(t, []string{"-v", "en-gb", "-s", "350", "-a", "100", "Hello"}, args)
}

func TestParseESpeakVoices(t *testing.T) {
	out := `Pty Language       Age/Gender VoiceName          File                 Other Languages
 5  nb              --/M      Norwegian_Bokmal   gmw/nb               (no 5)
 5  en-gb           --/M      English_(Great_Britain) gmw/en          (en 2)
`
	assert.Equal(t, []string{"Norwegian_Bokmal", "English_(Great_Britain)"}, parseESpeakVoices(out))
}

func TestSplitIntoChunks(t *testing.T) {
	text := strings.Repeat("æ", 10)
	chunks := splitIntoChunks(text, 4)
	assert.Equal(t, []string{"ææææ", "ææææ", "ææ"}, chunks)
	assert.Empty(t, splitIntoChunks("", 4))
}
