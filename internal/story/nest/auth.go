package nest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// SignIn is passwordless: a known email gets its account back, a new one
// gets a fresh free account.
func (n *Nest) SignIn(ctx context.Context, email string) (*user.User, store.Session, error) {
	email = strings.TrimSpace(email)
	if err := user.ValidateEmail(email); err != nil {
		return nil, store.Session{}, invalid("Ugyldig e-postadresse")
	}

	u, err := n.store.GetUserByEmail(ctx, email)
	switch {
	case errors.Is(err, store.ErrNotFound):
		u = user.NewUser(email, n.now())
		if err := n.store.SaveUser(ctx, u); err != nil {
			return nil, store.Session{}, err
		}
		logrus.WithField("user", u.ID).Info("Created account")
	case err != nil:
		return nil, store.Session{}, fmt.Errorf("failed to look up user: %w", err)
	}

	now := n.now().UTC()
	sess := store.Session{
		Token:     uuid.NewString(),
		UserID:    u.ID,
		CreatedAt: now,
		ExpiresAt: now.Add(n.sessionTTL),
	}
	if err := n.store.CreateSession(ctx, sess); err != nil {
		return nil, store.Session{}, err
	}
	return u, sess, nil
}

func (n *Nest) SignOut(ctx context.Context, token string) error {
	return n.store.DeleteSession(ctx, token)
}

// CurrentUser resolves a session token to its user.
func (n *Nest) CurrentUser(ctx context.Context, token string) (*user.User, error) {
	if token == "" {
		return nil, ErrUnauthorized
	}
	sess, err := n.store.GetSession(ctx, token)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	if err != nil {
		return nil, err
	}
	if sess.Expired(n.now()) {
		return nil, ErrUnauthorized
	}

	u, err := n.store.GetUser(ctx, sess.UserID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

func (n *Nest) getUser(ctx context.Context, userID string) (*user.User, error) {
	u, err := n.store.GetUser(ctx, userID)
	if errors.Is(err, store.ErrNotFound) {
		return nil, ErrUnauthorized
	}
	return u, err
}

func (n *Nest) UpdateProfile(ctx context.Context, userID string, update user.ProfileUpdate) (*user.User, error) {
	u, err := n.getUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := u.ApplyProfile(update); err != nil {
		return nil, invalid("%s", err.Error())
	}
	if err := n.store.SaveUser(ctx, u); err != nil {
		return nil, err
	}
	return u, nil
}

// DeleteAccount removes the user together with their stories, recordings
// and sessions.
func (n *Nest) DeleteAccount(ctx context.Context, userID string) error {
	if _, err := n.getUser(ctx, userID); err != nil {
		return err
	}
	stories, err := n.store.ListStories(ctx, userID)
	if err != nil {
		return err
	}
	for _, s := range stories {
		if err := n.deleteStory(ctx, s.ID); err != nil {
			return err
		}
	}
	sessions, err := n.store.DeleteUserSessions(ctx, userID)
	if err != nil {
		return err
	}
	if err := n.store.DeleteUser(ctx, userID); err != nil {
		return err
	}

	logrus.WithFields(logrus.Fields{
		"user":     userID,
		"stories":  len(stories),
		"sessions": sessions,
	}).Info("Deleted account")
	return nil
}
