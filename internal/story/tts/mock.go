package tts

import (
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
)

// MockTTSEngine pretends to read aloud. Used in tests and on machines
// without a speech engine.
type MockTTSEngine struct {
	mu      sync.Mutex
	playing bool
	paused  bool
	speed   float64
	voice   string
	delay   time.Duration
	spoken  []string
}

func NewMockTTSEngine(c Config) *MockTTSEngine {
	speed := c.Speed
	if speed <= 0 {
		speed = 1.0
	}
	return &MockTTSEngine{
		speed: speed,
		voice: "mock-voice",
		delay: 2 * time.Second,
	}
}

func (m *MockTTSEngine) Speak(text string) error {
	m.mu.Lock()
	m.playing = true
	m.paused = false
	m.spoken = append(m.spoken, text)
	delay := m.delay
	m.mu.Unlock()

	words := len(strings.Fields(text))
	logrus.WithFields(logrus.Fields{
		"words":     words,
		"simulated": time.Duration(float64(words) / 150.0 / m.speed * float64(time.Minute)).Round(time.Second),
	}).Info("Reading aloud (simulated)")

	time.Sleep(delay)

	m.mu.Lock()
	m.playing = false
	m.mu.Unlock()
	return nil
}

// SetDelay changes how long Speak pretends to talk.
func (m *MockTTSEngine) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// Spoken returns every text passed to Speak.
func (m *MockTTSEngine) Spoken() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string{}, m.spoken...)
}

func (m *MockTTSEngine) GetAvailableVoices() ([]string, error) {
	return []string{"mock-voice"}, nil
}

func (m *MockTTSEngine) SetVoice(voice string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.voice = voice
	return nil
}

func (m *MockTTSEngine) SetSpeed(speed float64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.speed = speed
	return nil
}

func (m *MockTTSEngine) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.playing = false
	m.paused = false
	return nil
}

func (m *MockTTSEngine) Pause() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.playing {
		m.paused = true
	}
	return nil
}

func (m *MockTTSEngine) Resume() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paused = false
	return nil
}

func (m *MockTTSEngine) IsPlaying() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.playing && !m.paused
}
