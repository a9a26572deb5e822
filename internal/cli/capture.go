package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"golang.org/x/sync/errgroup"
)

// outputDrainTimeout bounds how long output is still collected after the
// command exits. Background processes it started (a bundler, a daemon) may
// keep the pipes open indefinitely.
var outputDrainTimeout = 2 * time.Second

// killGrace is how long a cancelled command has after SIGTERM before it is
// killed.
const killGrace = 5 * time.Second

// captured is the complete output of a finished child process.
type captured struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
	Started  bool
	// Detached is set when background processes still held the output open
	// after the command exited, so collection stopped at the drain timeout.
	Detached bool
}

var errDetached = errors.New("output still held open after exit")

// runCapture runs argv to completion, collecting stdout and stderr
// separately. A non-zero exit is reported through ExitCode, not the error.
// Cancelling ctx signals the command's whole process group.
func runCapture(ctx context.Context, argv []string) (captured, error) {
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	configureProcessGroup(cmd)
	cmd.WaitDelay = killGrace

	stdoutR, stdoutW, err := os.Pipe()
	if err != nil {
		return captured{ExitCode: -1}, fmt.Errorf("failed to create stdout pipe: %w", err)
	}
	defer stdoutR.Close()
	stderrR, stderrW, err := os.Pipe()
	if err != nil {
		stdoutW.Close()
		return captured{ExitCode: -1}, fmt.Errorf("failed to create stderr pipe: %w", err)
	}
	defer stderrR.Close()

	cmd.Stdout = stdoutW
	cmd.Stderr = stderrW
	startErr := cmd.Start()
	// The child has its own copies of the write ends.
	stdoutW.Close()
	stderrW.Close()
	if startErr != nil {
		return captured{ExitCode: -1}, startErr
	}

	var stdout, stderr bytes.Buffer
	var group errgroup.Group
	group.Go(func() error { return drain(&stdout, stdoutR, "stdout") })
	group.Go(func() error { return drain(&stderr, stderrR, "stderr") })

	waitErr := cmd.Wait()

	timer := time.AfterFunc(outputDrainTimeout, func() {
		stopReading(stdoutR)
		stopReading(stderrR)
	})
	readErr := group.Wait()
	timer.Stop()

	res := captured{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: cmd.ProcessState.ExitCode(),
		Started:  true,
	}
	if errors.Is(readErr, errDetached) {
		res.Detached = true
		readErr = nil
	}
	if readErr != nil {
		return res, readErr
	}

	var exitErr *exec.ExitError
	switch {
	case waitErr == nil, errors.As(waitErr, &exitErr):
		return res, nil
	case ctx.Err() != nil && errors.Is(waitErr, ctx.Err()):
		// Cancelled around a clean exit; the caller sees ctx itself.
		return res, nil
	default:
		return res, waitErr
	}
}

func drain(dst *bytes.Buffer, r io.Reader, stream string) error {
	if _, err := io.Copy(dst, r); err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, os.ErrClosed) {
			return errDetached
		}
		return fmt.Errorf("%s read error: %w", stream, err)
	}
	return nil
}

// stopReading unblocks a pending read on f.
func stopReading(f *os.File) {
	if err := f.SetReadDeadline(time.Now()); err != nil {
		f.Close()
	}
}
