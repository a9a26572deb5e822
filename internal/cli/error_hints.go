package cli

import (
	"errors"
	"io/fs"
	"os"
	"os/exec"
	"strings"
	"syscall"
)

func hintForStorage(err error, dir string) string {
	if err == nil {
		return ""
	}

	if errors.Is(err, fs.ErrPermission) {
		return "Check permissions on " + dir + ", or pass --log-dir / set RN_RUN_LOG_DIR to a writable directory"
	}
	if errors.Is(err, syscall.ENOTDIR) {
		return "A file is in the way of " + dir + "; remove it or choose another --log-dir"
	}
	if errors.Is(err, syscall.ENOSPC) {
		return "The disk is full; free some space or run `rn-run prune --keep 3`"
	}

	return ""
}

func hintForCommand(err error, name string) string {
	if err == nil {
		return ""
	}

	if isCommandNotFound(err, name) {
		return name + " not found; check that it is installed and on your PATH"
	}
	if errors.Is(err, fs.ErrPermission) {
		return name + " is not executable; check its permissions"
	}

	return ""
}

func isCommandNotFound(err error, name string) bool {
	if err == nil {
		return false
	}

	var ee *exec.Error
	if errors.As(err, &ee) && strings.EqualFold(ee.Name, name) && errors.Is(ee.Err, exec.ErrNotFound) {
		return true
	}

	var pe *os.PathError
	if errors.As(err, &pe) && errors.Is(pe.Err, fs.ErrNotExist) {
		if strings.EqualFold(pe.Path, name) || strings.HasSuffix(pe.Path, string(os.PathSeparator)+name) {
			return true
		}
	}

	// Fallback to string matching for wrapped errors.
	msg := err.Error()
	return strings.Contains(msg, "executable file not found") && strings.Contains(msg, name)
}
