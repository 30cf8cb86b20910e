//go:build windows

package tts

import "fmt"

// Windows has no SIGSTOP, so pausing ends the reading.
func (e *ESpeakEngine) pauseProcess() error {
	e.stopped = true
	return e.cmd.Process.Kill()
}

func (e *ESpeakEngine) resumeProcess() error {
	return fmt.Errorf("resume not supported on Windows")
}
