//go:build unix

package tts

import "syscall"

func (e *ESpeakEngine) pauseProcess() error {
	return e.cmd.Process.Signal(syscall.SIGSTOP)
}

func (e *ESpeakEngine) resumeProcess() error {
	return e.cmd.Process.Signal(syscall.SIGCONT)
}
