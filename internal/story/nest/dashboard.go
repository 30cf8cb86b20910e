package nest

import (
	"context"
	"encoding/json"
	"errors"
	"io"

	"livetsstemme/internal/domain/prompt"
	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/metrics"
	"livetsstemme/internal/voice/elevenlabs"

	"github.com/sirupsen/logrus"
)

const recentStories = 3

type Dashboard struct {
	User           *user.User    `json:"user"`
	Summary        story.Summary `json:"summary"`
	Categories     []string      `json:"categories"`
	Recent         []story.Story `json:"recent"`
	PendingInvites int           `json:"pendingInvites"`
}

func (n *Nest) Dashboard(ctx context.Context, userID string) (*Dashboard, error) {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	stories, err := n.store.ListStories(ctx, userID)
	if err != nil {
		return nil, err
	}

	recent := story.Query{Sort: story.SortNewest}.Apply(stories)
	if len(recent) > recentStories {
		recent = recent[:recentStories]
	}
	return &Dashboard{
		User:           u,
		Summary:        story.Summarize(stories),
		Categories:     story.Categories(stories),
		Recent:         publicAll(recent),
		PendingInvites: u.PendingInvites(),
	}, nil
}

func (n *Nest) Prompts(category string) []prompt.Prompt {
	return n.prompts.ForCategory(category)
}

func (n *Nest) PromptCategories() []string {
	return n.prompts.Categories()
}

// CloneVoice forwards a voice sample to the cloning provider. When userID is
// set the returned voice id is kept on the user.
func (n *Nest) CloneVoice(ctx context.Context, userID, name string, sample io.Reader) (json.RawMessage, error) {
	if name == "" || sample == nil {
		return nil, invalid("Missing audio file or voice name")
	}
	if n.voices == nil {
		metrics.VoiceClone("unconfigured")
		return nil, elevenlabs.ErrNoAPIKey
	}

	body, err := n.voices.AddVoice(ctx, name, sample)
	if err != nil {
		var apiErr *elevenlabs.APIError
		switch {
		case errors.Is(err, elevenlabs.ErrNoAPIKey):
			metrics.VoiceClone("unconfigured")
		case errors.As(err, &apiErr):
			metrics.VoiceClone("rejected")
		default:
			metrics.VoiceClone("failed")
		}
		return nil, err
	}
	metrics.VoiceClone("ok")

	if userID == "" {
		return body, nil
	}
	voiceID := elevenlabs.VoiceID(body)
	if voiceID == "" {
		return body, nil
	}
	u, err := n.getUser(ctx, userID)
	if err == nil {
		u.VoiceID = voiceID
		err = n.store.SaveUser(ctx, u)
	}
	if err != nil {
		logrus.WithError(err).WithField("user", userID).Warn("Failed to store cloned voice id")
	}
	return body, nil
}

type PurgeResult struct {
	Sessions int `json:"sessions"`
	Unshared int `json:"unshared"`
}

// PurgeExpired drops expired sessions and unpublishes stories whose share
// link has expired.
func (n *Nest) PurgeExpired(ctx context.Context) (PurgeResult, error) {
	now := n.now()
	var res PurgeResult

	purged, err := n.store.PurgeSessions(ctx, now)
	if err != nil {
		return res, err
	}
	res.Sessions = purged

	stories, err := n.store.AllStories(ctx)
	if err != nil {
		return res, err
	}
	for i := range stories {
		s := &stories[i]
		if !s.IsPublic || !s.ShareExpired(now) {
			continue
		}
		s.IsPublic = false
		if err := n.store.SaveStory(ctx, s); err != nil {
			return res, err
		}
		res.Unshared++
	}

	metrics.Purged("sessions", res.Sessions)
	metrics.Purged("shares", res.Unshared)
	if res.Sessions > 0 || res.Unshared > 0 {
		logrus.WithFields(logrus.Fields{
			"sessions": res.Sessions,
			"unshared": res.Unshared,
		}).Info("Purged expired records")
	}
	return res, nil
}
