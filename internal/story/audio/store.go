package audio

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
)

var ErrNoRecording = errors.New("no recording for story")

var extensions = []string{".wav", ".mp3", ".webm", ".ogg"}

// Store keeps one recording file per story in a directory.
type Store struct {
	dir string
}

func NewStore(dir string) (*Store, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create audio directory: %w", err)
	}
	return &Store{dir: dir}, nil
}

// Extension picks a file extension for a recording from its content.
func Extension(data []byte) string {
	switch detect(data) {
	case FormatWAV:
		return ".wav"
	case FormatMP3:
		return ".mp3"
	}
	switch http.DetectContentType(data) {
	case "video/webm", "audio/webm":
		return ".webm"
	case "application/ogg", "audio/ogg":
		return ".ogg"
	}
	return ".webm"
}

// Save writes a recording and returns its path. Older recordings of the same
// story are replaced.
func (s *Store) Save(storyID string, data []byte) (string, error) {
	if err := s.Delete(storyID); err != nil {
		return "", err
	}
	path := filepath.Join(s.dir, storyID+Extension(data))
	if err := os.WriteFile(path, data, 0644); err != nil {
		return "", fmt.Errorf("failed to write recording %s: %w", path, err)
	}

	logrus.WithFields(logrus.Fields{
		"story": storyID,
		"bytes": len(data),
		"file":  path,
	}).Info("Stored recording")
	return path, nil
}

// Path returns the recording file of a story.
func (s *Store) Path(storyID string) (string, error) {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, storyID+ext)
		if _, err := os.Stat(path); err == nil {
			return path, nil
		}
	}
	return "", ErrNoRecording
}

func (s *Store) Open(storyID string) (io.ReadSeekCloser, string, error) {
	path, err := s.Path(storyID)
	if err != nil {
		return nil, "", err
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to open recording: %w", err)
	}
	return f, path, nil
}

// Delete removes the recording of a story. A missing recording is not an error.
func (s *Store) Delete(storyID string) error {
	for _, ext := range extensions {
		path := filepath.Join(s.dir, storyID+ext)
		if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("failed to delete recording: %w", err)
		}
	}
	return nil
}
