// Package tts reads story transcripts aloud when no recording is available.
package tts

type Config struct {
	Type      string
	Speed     float64
	Volume    float64
	Voice     string
	Language  string
	CachePath string
}

// Engine interface for text-to-speech functionality
type Engine interface {
	Speak(text string) error
	SetVoice(voice string) error
	SetSpeed(speed float64) error
	Stop() error
	Pause() error
	Resume() error
	IsPlaying() bool
	GetAvailableVoices() ([]string, error)
}

// StoryAware engines cache synthesized audio per story.
type StoryAware interface {
	SetStory(storyID string)
}

// LanguageCode maps a profile language to a BCP-47 tag.
func LanguageCode(lang string) string {
	switch lang {
	case "en":
		return "en-US"
	default:
		return "nb-NO"
	}
}
