package nest

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/metrics"
	"livetsstemme/internal/store"
	"livetsstemme/internal/story/audio"
	"livetsstemme/internal/story/insight"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"golang.org/x/crypto/bcrypt"
)

// Recording is an uploaded narrative with the form fields sent alongside.
type Recording struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	// Duration is what the client measured, used when the audio cannot be decoded.
	Duration int
	Audio    []byte
	Filename string
}

// ShareRequest changes how a story can be reached through its share link.
// A nil Password keeps the current one, an empty one removes it.
type ShareRequest struct {
	IsPublic      bool       `json:"isPublic"`
	AllowDownload bool       `json:"allowDownload"`
	AllowComments bool       `json:"allowComments"`
	ExpiresAt     *time.Time `json:"expiresAt,omitempty"`
	Password      *string    `json:"password,omitempty"`
}

func audioURL(storyID string) string {
	return "/api/stories/" + storyID + "/audio"
}

// ownStory loads a story and hides other users' stories as not found.
func (n *Nest) ownStory(ctx context.Context, userID, id string) (*story.Story, error) {
	s, err := n.store.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if s.UserID != userID {
		return nil, store.ErrNotFound
	}
	return s, nil
}

func (n *Nest) ListStories(ctx context.Context, userID string, q story.Query) ([]story.Story, error) {
	stories, err := n.store.ListStories(ctx, userID)
	if err != nil {
		return nil, err
	}
	return publicAll(q.Apply(stories)), nil
}

func (n *Nest) GetStory(ctx context.Context, userID, id string) (*story.Story, error) {
	s, err := n.ownStory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	pub := s.Public()
	return &pub, nil
}

// SaveStory creates or replaces a story from client data. Server owned
// fields (owner, creation time, play count, recording, sharing) survive a
// replace. Sharing only changes through ShareStory.
func (n *Nest) SaveStory(ctx context.Context, userID string, in story.Story) (*story.Story, error) {
	now := n.now().UTC()

	var existing *story.Story
	if in.ID != "" {
		s, err := n.store.GetStory(ctx, in.ID)
		switch {
		case err == nil:
			if s.UserID != userID {
				return nil, store.ErrNotFound
			}
			existing = s
		case !errors.Is(err, store.ErrNotFound):
			return nil, err
		}
	}

	in.UserID = userID
	in.UpdatedAt = now
	if existing != nil {
		in.CreatedAt = existing.CreatedAt
		in.PlayCount = existing.PlayCount
		in.AudioURL = existing.AudioURL
		in.IsPublic = existing.IsPublic
		in.ShareSettings = existing.ShareSettings
	} else {
		in.IsPublic = false
		in.ShareSettings = story.ShareSettings{}
		if in.ID == "" {
			in.ID = uuid.NewString()
		}
		in.CreatedAt = now
		in.PlayCount = 0
		in.AudioURL = ""
	}
	if in.Category == "" {
		in.Category = story.DefaultCategory
	}
	tags := in.Tags
	in.Tags = []string{}
	for _, t := range tags {
		in.AddTag(t)
	}
	if err := in.Validate(); err != nil {
		return nil, invalid("%s", err.Error())
	}

	if err := n.store.SaveStory(ctx, &in); err != nil {
		return nil, err
	}
	pub := in.Public()
	return &pub, nil
}

func (n *Nest) DeleteStory(ctx context.Context, userID, id string) error {
	if _, err := n.ownStory(ctx, userID, id); err != nil {
		return err
	}
	return n.deleteStory(ctx, id)
}

func (n *Nest) deleteStory(ctx context.Context, id string) error {
	if n.audio != nil {
		if err := n.audio.Delete(id); err != nil {
			return err
		}
	}
	return n.store.DeleteStory(ctx, id)
}

// RecordStory analyzes the audio, stores and transcribes it and saves the
// resulting story with the recording defaults.
func (n *Nest) RecordStory(ctx context.Context, userID string, rec Recording) (*story.Story, error) {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if strings.TrimSpace(rec.Title) == "" {
		return nil, invalid("%s", story.ErrTitleRequired.Error())
	}
	if len(rec.Audio) == 0 {
		return nil, invalid("audio recording is required")
	}
	if rec.Duration < 0 {
		return nil, invalid("duration cannot be negative")
	}
	if n.audio == nil {
		return nil, errors.New("audio storage is not configured")
	}

	s := story.New(userID, strings.TrimSpace(rec.Title), n.now())
	s.Description = rec.Description
	if rec.Category != "" {
		s.Category = rec.Category
	}
	for _, t := range rec.Tags {
		s.AddTag(t)
	}

	log := logrus.WithFields(logrus.Fields{
		"user":  userID,
		"story": s.ID,
	})

	analysis, err := audio.Analyze(rec.Audio)
	if err != nil {
		log.WithError(err).Warn("Could not analyze recording, using declared duration")
		analysis = audio.Fallback(rec.Duration)
	}
	s.Duration = analysis.Duration

	if _, err := n.audio.Save(s.ID, rec.Audio); err != nil {
		return nil, err
	}
	s.AudioURL = audioURL(s.ID)

	transcript, err := n.transcriber.Transcribe(ctx, bytes.NewReader(rec.Audio), rec.Filename, string(u.Preferences.Language))
	if err != nil {
		log.WithError(err).Warn("Transcription failed")
	}
	s.Transcript = transcript

	ins, err := n.suggester.Suggest(ctx, transcript, s.Tags)
	if err != nil {
		log.WithError(err).Warn("Insight failed, using defaults")
		ins, _ = insight.Static{}.Suggest(ctx, transcript, s.Tags)
	}
	s.AIMetadata = &story.AIMetadata{
		Suggestions:     ins.Suggestions,
		Mood:            ins.Mood,
		Themes:          ins.Themes,
		VoiceCloneReady: analysis.VoiceCloneReady,
	}

	if err := n.store.SaveStory(ctx, s); err != nil {
		if derr := n.audio.Delete(s.ID); derr != nil {
			log.WithError(derr).Warn("Failed to remove orphaned recording")
		}
		return nil, err
	}

	metrics.StoryRecorded(string(analysis.Quality))
	log.WithFields(logrus.Fields{
		"duration": s.Duration,
		"quality":  analysis.Quality,
	}).Info("Recorded story")

	pub := s.Public()
	return &pub, nil
}

// PlayStory counts one play.
func (n *Nest) PlayStory(ctx context.Context, userID, id string) (*story.Story, error) {
	s, err := n.ownStory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	s.PlayCount++
	if err := n.store.SaveStory(ctx, s); err != nil {
		return nil, err
	}
	pub := s.Public()
	return &pub, nil
}

// OpenAudio returns the recording of one of the user's stories.
func (n *Nest) OpenAudio(ctx context.Context, userID, id string) (io.ReadSeekCloser, string, error) {
	if _, err := n.ownStory(ctx, userID, id); err != nil {
		return nil, "", err
	}
	if n.audio == nil {
		return nil, "", audio.ErrNoRecording
	}
	return n.audio.Open(id)
}

func (n *Nest) ShareStory(ctx context.Context, userID, id string, req ShareRequest) (*story.Story, error) {
	s, err := n.ownStory(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if req.ExpiresAt != nil && !req.ExpiresAt.After(n.now()) {
		return nil, invalid("expiry must be in the future")
	}

	s.IsPublic = req.IsPublic
	s.ShareSettings.AllowDownload = req.AllowDownload
	s.ShareSettings.AllowComments = req.AllowComments
	s.ShareSettings.ExpiresAt = req.ExpiresAt
	if req.Password != nil {
		if *req.Password == "" {
			s.ShareSettings.PasswordHash = ""
		} else {
			hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
			if err != nil {
				return nil, fmt.Errorf("failed to hash share password: %w", err)
			}
			s.ShareSettings.PasswordHash = string(hash)
		}
	}
	s.UpdatedAt = n.now().UTC()

	if err := n.store.SaveStory(ctx, s); err != nil {
		return nil, err
	}
	pub := s.Public()
	return &pub, nil
}

// SharedStory resolves a share link. Private and expired stories are not
// found; a wrong password is unauthorized.
func (n *Nest) SharedStory(ctx context.Context, id, password string) (*story.Story, error) {
	s, err := n.store.GetStory(ctx, id)
	if err != nil {
		return nil, err
	}
	if !s.IsPublic || s.ShareExpired(n.now()) {
		return nil, store.ErrNotFound
	}
	if hash := s.ShareSettings.PasswordHash; hash != "" {
		if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
			return nil, ErrUnauthorized
		}
	}
	pub := s.Public()
	return &pub, nil
}
