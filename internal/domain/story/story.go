package story

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	DefaultCategory = "Generelt"
	DefaultMood     = "nostalgisk"

	// VoiceCloneMinSeconds is the recording length a high quality sample
	// must exceed before it is offered for voice cloning.
	VoiceCloneMinSeconds = 120
)

// SuggestedTags are offered next to the tag input while recording.
var SuggestedTags = []string{"familie", "barndom", "reise", "jobb", "tradisjon"}

var ErrTitleRequired = errors.New("title is required")

type ShareSettings struct {
	AllowDownload bool       `json:"allowDownload"`
	AllowComments bool       `json:"allowComments"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	HasPassword   bool       `json:"hasPassword"`
	PasswordHash  string     `json:"passwordHash,omitempty"`
}

type AIMetadata struct {
	Suggestions     []string `json:"suggestions"`
	Mood            string   `json:"mood"`
	Themes          []string `json:"themes"`
	VoiceCloneReady bool     `json:"voiceCloneReady"`
}

// Story is a single recorded narrative.
type Story struct {
	ID            string        `json:"id"`
	UserID        string        `json:"userId"`
	Title         string        `json:"title"`
	Description   string        `json:"description"`
	Category      string        `json:"category"`
	Duration      int           `json:"duration"`
	AudioURL      string        `json:"audioUrl,omitempty"`
	Transcript    string        `json:"transcript,omitempty"`
	Tags          []string      `json:"tags"`
	IsPublic      bool          `json:"isPublic"`
	CreatedAt     time.Time     `json:"createdAt"`
	UpdatedAt     time.Time     `json:"updatedAt"`
	PlayCount     int           `json:"playCount"`
	ShareSettings ShareSettings `json:"shareSettings"`
	AIMetadata    *AIMetadata   `json:"aiMetadata,omitempty"`
}

// New returns a private story with the recording defaults applied.
func New(userID, title string, now time.Time) *Story {
	now = now.UTC()
	return &Story{
		ID:        uuid.NewString(),
		UserID:    userID,
		Title:     title,
		Category:  DefaultCategory,
		Tags:      []string{},
		CreatedAt: now,
		UpdatedAt: now,
		ShareSettings: ShareSettings{
			AllowDownload: false,
			AllowComments: true,
		},
	}
}

func (s *Story) Validate() error {
	if strings.TrimSpace(s.Title) == "" {
		return ErrTitleRequired
	}
	if s.Duration < 0 {
		return errors.New("duration cannot be negative")
	}
	return nil
}

// AddTag appends tag unless it is blank or already present.
func (s *Story) AddTag(tag string) bool {
	tag = strings.TrimSpace(tag)
	if tag == "" {
		return false
	}
	for _, t := range s.Tags {
		if t == tag {
			return false
		}
	}
	s.Tags = append(s.Tags, tag)
	return true
}

func (s *Story) RemoveTag(tag string) bool {
	for i, t := range s.Tags {
		if t == tag {
			s.Tags = append(s.Tags[:i], s.Tags[i+1:]...)
			return true
		}
	}
	return false
}

// VoiceCloneReady reports whether a recording is good enough to clone from.
func VoiceCloneReady(quality string, durationSeconds int) bool {
	return quality == "high" && durationSeconds > VoiceCloneMinSeconds
}

// ShareExpired reports whether the share link stopped being valid at now.
func (s *Story) ShareExpired(now time.Time) bool {
	exp := s.ShareSettings.ExpiresAt
	return exp != nil && !now.Before(*exp)
}

// Public returns a copy safe to hand to clients.
func (s Story) Public() Story {
	s.ShareSettings.HasPassword = s.ShareSettings.PasswordHash != ""
	s.ShareSettings.PasswordHash = ""
	if s.Tags == nil {
		s.Tags = []string{}
	}
	return s
}
