//go:build !unix

package playback

import "os"

const canSuspend = false

func suspendProcess(*os.Process) error { return ErrPauseUnsupported }

func resumeProcess(*os.Process) error { return ErrPauseUnsupported }
