package tts

import (
	"fmt"
	"os/exec"
	"strconv"
	"strings"
	"sync"
)

// ESpeakEngine implements TTS using eSpeak/eSpeak-NG
type ESpeakEngine struct {
	config  Config
	path    string
	cmd     *exec.Cmd
	playing bool
	paused  bool
	stopped bool
	mutex   sync.RWMutex
}

func newESpeakEngine(config Config) (*ESpeakEngine, error) {
	espeakPath, err := findESpeakExecutable()
	if err != nil {
		return nil, fmt.Errorf("eSpeak not found: %w", err)
	}
	if config.Speed <= 0 {
		config.Speed = 1.0
	}
	if config.Volume <= 0 {
		config.Volume = 1.0
	}
	return &ESpeakEngine{config: config, path: espeakPath}, nil
}

func findESpeakExecutable() (string, error) {
	for _, candidate := range []string{"espeak-ng", "espeak"} {
		if path, err := exec.LookPath(candidate); err == nil {
			return path, nil
		}
	}
	return "", fmt.Errorf("eSpeak executable not found in PATH")
}

// espeakArgs builds the command line for a text.
func espeakArgs(config Config, text string) []string {
	var args []string

	voice := config.Voice
	if voice == "" || voice == "default" {
		voice, _, _ = strings.Cut(LanguageCode(config.Language), "-")
	}
	args = append(args, "-v", voice)

	// words per minute, eSpeak default is 175
	args = append(args, "-s", strconv.Itoa(int(175*config.Speed)))
	// amplitude 0-200, default is 100
	args = append(args, "-a", strconv.Itoa(int(100*config.Volume)))

	return append(args, text)
}

// Speak blocks until eSpeak has finished or Stop is called.
func (e *ESpeakEngine) Speak(text string) error {
	e.mutex.Lock()
	if e.playing {
		e.mutex.Unlock()
		return fmt.Errorf("already playing")
	}
	e.cmd = exec.Command(e.path, espeakArgs(e.config, text)...)
	e.playing = true
	e.paused = false
	e.stopped = false
	cmd := e.cmd
	e.mutex.Unlock()

	err := cmd.Run()

	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.playing = false
	e.paused = false
	if err != nil && !e.stopped {
		return fmt.Errorf("eSpeak failed: %w", err)
	}
	return nil
}

func (e *ESpeakEngine) Stop() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if e.cmd != nil && e.cmd.Process != nil && e.playing {
		e.stopped = true
		if err := e.cmd.Process.Kill(); err != nil {
			return err
		}
	}
	return nil
}

func (e *ESpeakEngine) Pause() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.playing || e.paused || e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	if err := e.pauseProcess(); err != nil {
		return err
	}
	e.paused = true
	return nil
}

func (e *ESpeakEngine) Resume() error {
	e.mutex.Lock()
	defer e.mutex.Unlock()

	if !e.paused || e.cmd == nil || e.cmd.Process == nil {
		return nil
	}
	if err := e.resumeProcess(); err != nil {
		return err
	}
	e.paused = false
	return nil
}

func (e *ESpeakEngine) SetVoice(voice string) error {
	voices, err := e.GetAvailableVoices()
	if err != nil {
		return err
	}
	for _, v := range voices {
		if v == voice {
			e.mutex.Lock()
			e.config.Voice = voice
			e.mutex.Unlock()
			return nil
		}
	}
	return fmt.Errorf("voice '%s' not available", voice)
}

func (e *ESpeakEngine) SetSpeed(speed float64) error {
	if speed <= 0 || speed > 3.0 {
		return fmt.Errorf("speed must be between 0.1 and 3.0")
	}
	e.mutex.Lock()
	defer e.mutex.Unlock()
	e.config.Speed = speed
	return nil
}

func (e *ESpeakEngine) IsPlaying() bool {
	e.mutex.RLock()
	defer e.mutex.RUnlock()
	return e.playing && !e.paused
}

func (e *ESpeakEngine) GetAvailableVoices() ([]string, error) {
	output, err := exec.Command(e.path, "--voices").Output()
	if err != nil {
		return nil, err
	}
	return parseESpeakVoices(string(output)), nil
}

// parseESpeakVoices reads the voice name column of `espeak --voices`:
// Pty Language Age/Gender VoiceName File Other Languages
func parseESpeakVoices(output string) []string {
	voices := make([]string, 0)
	for i, line := range strings.Split(output, "\n") {
		if i == 0 || strings.TrimSpace(line) == "" {
			continue
		}
		fields := strings.Fields(line)
		if len(fields) >= 4 {
			voices = append(voices, fields[3])
		}
	}
	return voices
}
