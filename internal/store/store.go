// Package store defines persistence for users, stories and sign-in sessions.
package store

import (
	"context"
	"errors"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
)

var ErrNotFound = errors.New("not found")

// Session binds an opaque bearer token to a signed in user.
type Session struct {
	Token     string    `json:"token"`
	UserID    string    `json:"userId"`
	CreatedAt time.Time `json:"createdAt"`
	ExpiresAt time.Time `json:"expiresAt"`
}

func (s Session) Expired(now time.Time) bool {
	return !now.Before(s.ExpiresAt)
}

type UserStore interface {
	GetUser(ctx context.Context, id string) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	SaveUser(ctx context.Context, u *user.User) error
	DeleteUser(ctx context.Context, id string) error
}

type StoryStore interface {
	// ListStories returns the stories owned by userID in insertion order.
	ListStories(ctx context.Context, userID string) ([]story.Story, error)
	// AllStories returns every stored story.
	AllStories(ctx context.Context) ([]story.Story, error)
	GetStory(ctx context.Context, id string) (*story.Story, error)
	// SaveStory replaces the story with the same id or appends it.
	SaveStory(ctx context.Context, s *story.Story) error
	// DeleteStory removes the story if present.
	DeleteStory(ctx context.Context, id string) error
}

type SessionStore interface {
	CreateSession(ctx context.Context, s Session) error
	GetSession(ctx context.Context, token string) (*Session, error)
	DeleteSession(ctx context.Context, token string) error
	// PurgeSessions deletes sessions that expired before t.
	PurgeSessions(ctx context.Context, t time.Time) (int, error)
	// DeleteUserSessions signs userID out everywhere.
	DeleteUserSessions(ctx context.Context, userID string) (int, error)
}

type Store interface {
	UserStore
	StoryStore
	SessionStore
	Close() error
}
