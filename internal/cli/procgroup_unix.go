//go:build unix

package cli

import (
	"errors"
	"os"
	"os/exec"
	"syscall"
)

// configureProcessGroup starts cmd in its own process group and makes
// cancellation signal the whole group, so build tools spawned by a wrapper
// script stop too.
func configureProcessGroup(cmd *exec.Cmd) {
	cmd.SysProcAttr = &syscall.SysProcAttr{Setpgid: true}
	cmd.Cancel = func() error {
		err := syscall.Kill(-cmd.Process.Pid, syscall.SIGTERM)
		if errors.Is(err, syscall.ESRCH) {
			return os.ErrProcessDone
		}
		return err
	}
}
