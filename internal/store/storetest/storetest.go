// Package storetest holds the behaviour every store.Store backend must share.
package storetest

import (
	"context"
	"testing"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a backend. newStore must return an empty store.
func Run(t *testing.T, newStore func(t *testing.T) store.Store) {
	t.Run("Users", func(t *testing.T) { testUsers(t, newStore(t)) })
	t.Run("Stories", func(t *testing.T) { testStories(t, newStore(t)) })
	t.Run("Sessions", func(t *testing.T) { testSessions(t, newStore(t)) })
}

func testUsers(t *testing.T, s store.Store) {
	ctx := context.Background()

	_, err := s.GetUser(ctx, "missing")
	require.ErrorIs(t, err, store.ErrNotFound)

	u := user.NewUser("Ola@Example.no", time.Now())
	require.NoError(t, s.SaveUser(ctx, u))

	got, err := s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u.Email, got.Email)
	assert.Equal(t, user.LanguageNorwegian, got.Preferences.Language)

	byEmail, err := s.GetUserByEmail(ctx, "ola@example.no")
	require.NoError(t, err)
	assert.Equal(t, u.ID, byEmail.ID)

	member, err := user.NewFamilyMember("datter@example.no", "datter", []user.PermissionType{user.PermissionListen}, time.Now())
	require.NoError(t, err)
	u.AddFamilyMember(member)
	u.Name = "Ola Nordmann"
	require.NoError(t, s.SaveUser(ctx, u))

	got, err = s.GetUser(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, "Ola Nordmann", got.Name)
	require.Len(t, got.FamilyMembers, 1)
	assert.Equal(t, user.InvitePending, got.FamilyMembers[0].InviteStatus)

	require.NoError(t, s.DeleteUser(ctx, u.ID))
	_, err = s.GetUser(ctx, u.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testStories(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now()

	first := story.New("user-a", "Første", now)
	second := story.New("user-a", "Andre", now.Add(time.Second))
	other := story.New("user-b", "Naboens", now)
	for _, st := range []*story.Story{first, second, other} {
		require.NoError(t, s.SaveStory(ctx, st))
	}

	list, err := s.ListStories(ctx, "user-a")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, second.ID, list[1].ID)

	none, err := s.ListStories(ctx, "nobody")
	require.NoError(t, err)
	assert.Empty(t, none)

	first.PlayCount = 5
	first.AddTag("familie")
	require.NoError(t, s.SaveStory(ctx, first))

	got, err := s.GetStory(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, got.PlayCount)
	assert.Equal(t, []string{"familie"}, got.Tags)

	list, err = s.ListStories(ctx, "user-a")
	require.NoError(t, err)
	assert.Len(t, list, 2, "saving an existing id must replace, not append")

	all, err := s.AllStories(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	require.NoError(t, s.DeleteStory(ctx, first.ID))
	require.NoError(t, s.DeleteStory(ctx, first.ID), "deleting twice is a no-op")
	_, err = s.GetStory(ctx, first.ID)
	assert.ErrorIs(t, err, store.ErrNotFound)
}

func testSessions(t *testing.T, s store.Store) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	live := store.Session{Token: "live", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)}
	stale := store.Session{Token: "stale", UserID: "u1", CreatedAt: now.Add(-2 * time.Hour), ExpiresAt: now.Add(-time.Hour)}
	require.NoError(t, s.CreateSession(ctx, live))
	require.NoError(t, s.CreateSession(ctx, stale))

	got, err := s.GetSession(ctx, "live")
	require.NoError(t, err)
	assert.Equal(t, "u1", got.UserID)
	assert.True(t, got.ExpiresAt.Equal(live.ExpiresAt))

	n, err := s.PurgeSessions(ctx, now)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	_, err = s.GetSession(ctx, "stale")
	assert.ErrorIs(t, err, store.ErrNotFound)

	require.NoError(t, s.DeleteSession(ctx, "live"))
	_, err = s.GetSession(ctx, "live")
	assert.ErrorIs(t, err, store.ErrNotFound)

	for _, sess := range []store.Session{
		{Token: "phone", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{Token: "laptop", UserID: "u1", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
		{Token: "other", UserID: "u2", CreatedAt: now, ExpiresAt: now.Add(time.Hour)},
	} {
		require.NoError(t, s.CreateSession(ctx, sess))
	}
	n, err = s.DeleteUserSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	_, err = s.GetSession(ctx, "phone")
	assert.ErrorIs(t, err, store.ErrNotFound)
	_, err = s.GetSession(ctx, "other")
	assert.NoError(t, err)

	n, err = s.DeleteUserSessions(ctx, "u1")
	require.NoError(t, err)
	assert.Zero(t, n)
}
