// Package filestore keeps each collection as one indented JSON document on
// disk. Every call reads the whole collection, changes it and writes it back.
package filestore

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"livetsstemme/internal/domain/story"
	"livetsstemme/internal/domain/user"
	"livetsstemme/internal/store"

	"github.com/sirupsen/logrus"
)

const (
	usersFile    = "users.json"
	storiesFile  = "stories.json"
	sessionsFile = "sessions.json"
)

// FileStore implements store.Store on top of JSON files in a directory.
type FileStore struct {
	dir string
	mu  sync.Mutex
}

var _ store.Store = (*FileStore)(nil)

// New creates the data directory if needed.
func New(dir string) (*FileStore, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}
	return &FileStore{dir: dir}, nil
}

func (fs *FileStore) Close() error { return nil }

func (fs *FileStore) path(name string) string {
	return filepath.Join(fs.dir, name)
}

// load decodes a collection; a missing file is an empty collection.
func load[T any](fs *FileStore, name string) ([]T, error) {
	file, err := os.Open(fs.path(name))
	if errors.Is(err, os.ErrNotExist) {
		return []T{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", name, err)
	}
	defer file.Close()

	var items []T
	if err := json.NewDecoder(file).Decode(&items); err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", name, err)
	}
	return items, nil
}

// save replaces a collection through a temp file and rename.
func save[T any](fs *FileStore, name string, items []T) error {
	tmp, err := os.CreateTemp(fs.dir, name+".*.tmp")
	if err != nil {
		return fmt.Errorf("failed to create temp file for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	encoder := json.NewEncoder(tmp)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(items); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), fs.path(name)); err != nil {
		return fmt.Errorf("failed to replace %s: %w", name, err)
	}

	logrus.WithFields(logrus.Fields{
		"records": len(items),
		"file":    name,
	}).Debug("Saved collection")
	return nil
}

func (fs *FileStore) GetUser(_ context.Context, id string) (*user.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	users, err := load[user.User](fs, usersFile)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (fs *FileStore) GetUserByEmail(_ context.Context, email string) (*user.User, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	users, err := load[user.User](fs, usersFile)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if strings.EqualFold(users[i].Email, email) {
			return &users[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (fs *FileStore) SaveUser(_ context.Context, u *user.User) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	users, err := load[user.User](fs, usersFile)
	if err != nil {
		return err
	}
	replaced := false
	for i := range users {
		if users[i].ID == u.ID {
			users[i] = *u
			replaced = true
			break
		}
	}
	if !replaced {
		users = append(users, *u)
	}
	return save(fs, usersFile, users)
}

func (fs *FileStore) DeleteUser(_ context.Context, id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	users, err := load[user.User](fs, usersFile)
	if err != nil {
		return err
	}
	kept := users[:0]
	for _, u := range users {
		if u.ID != id {
			kept = append(kept, u)
		}
	}
	return save(fs, usersFile, kept)
}

func (fs *FileStore) ListStories(_ context.Context, userID string) ([]story.Story, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all, err := load[story.Story](fs, storiesFile)
	if err != nil {
		return nil, err
	}
	out := []story.Story{}
	for _, s := range all {
		if s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (fs *FileStore) AllStories(_ context.Context) ([]story.Story, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	return load[story.Story](fs, storiesFile)
}

func (fs *FileStore) GetStory(_ context.Context, id string) (*story.Story, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all, err := load[story.Story](fs, storiesFile)
	if err != nil {
		return nil, err
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (fs *FileStore) SaveStory(_ context.Context, s *story.Story) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all, err := load[story.Story](fs, storiesFile)
	if err != nil {
		return err
	}
	idx := -1
	for i := range all {
		if all[i].ID == s.ID {
			idx = i
			break
		}
	}
	if idx >= 0 {
		all[idx] = *s
	} else {
		all = append(all, *s)
	}
	return save(fs, storiesFile, all)
}

func (fs *FileStore) DeleteStory(_ context.Context, id string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	all, err := load[story.Story](fs, storiesFile)
	if err != nil {
		return err
	}
	kept := all[:0]
	for _, s := range all {
		if s.ID != id {
			kept = append(kept, s)
		}
	}
	return save(fs, storiesFile, kept)
}

func (fs *FileStore) CreateSession(_ context.Context, s store.Session) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sessions, err := load[store.Session](fs, sessionsFile)
	if err != nil {
		return err
	}
	sessions = append(sessions, s)
	return save(fs, sessionsFile, sessions)
}

func (fs *FileStore) GetSession(_ context.Context, token string) (*store.Session, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sessions, err := load[store.Session](fs, sessionsFile)
	if err != nil {
		return nil, err
	}
	for i := range sessions {
		if sessions[i].Token == token {
			return &sessions[i], nil
		}
	}
	return nil, store.ErrNotFound
}

func (fs *FileStore) DeleteSession(_ context.Context, token string) error {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sessions, err := load[store.Session](fs, sessionsFile)
	if err != nil {
		return err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.Token != token {
			kept = append(kept, s)
		}
	}
	return save(fs, sessionsFile, kept)
}

func (fs *FileStore) PurgeSessions(_ context.Context, before time.Time) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sessions, err := load[store.Session](fs, sessionsFile)
	if err != nil {
		return 0, err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.ExpiresAt.After(before) {
			kept = append(kept, s)
		}
	}
	purged := len(sessions) - len(kept)
	if purged == 0 {
		return 0, nil
	}
	return purged, save(fs, sessionsFile, kept)
}

func (fs *FileStore) DeleteUserSessions(_ context.Context, userID string) (int, error) {
	fs.mu.Lock()
	defer fs.mu.Unlock()

	sessions, err := load[store.Session](fs, sessionsFile)
	if err != nil {
		return 0, err
	}
	kept := sessions[:0]
	for _, s := range sessions {
		if s.UserID != userID {
			kept = append(kept, s)
		}
	}
	deleted := len(sessions) - len(kept)
	if deleted == 0 {
		return 0, nil
	}
	return deleted, save(fs, sessionsFile, kept)
}
