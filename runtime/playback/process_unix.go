//go:build unix

package playback

import (
	"os"

	"golang.org/x/sys/unix"
)

const canSuspend = true

func suspendProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGSTOP)
}

func resumeProcess(p *os.Process) error {
	return unix.Kill(p.Pid, unix.SIGCONT)
}
