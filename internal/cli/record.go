package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/output"
)

// RecordCmd runs a build command and captures its output to a new build log
type RecordCmd struct {
	Platform string   `short:"p" required:"" enum:"ios,android" help:"Platform the build targets (ios, android)"`
	Command  []string `arg:"" passthrough:"" help:"Command to run, after --"`
}

// Run executes the record command
func (c *RecordCmd) Run(globals *Globals) error {
	signalCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return c.run(signalCtx, globals)
}

func (c *RecordCmd) run(ctx context.Context, globals *Globals) error {
	if len(c.Command) == 0 {
		return outputErrorCommon(globals, "record", "INVALID_ARGS", "no command given", "Example: rn-run record --platform ios -- npx react-native run-ios")
	}

	store := globals.Store()
	sess, err := store.Open(c.Platform, globals.Console(), buildlog.WithLogger(globals.logger()))
	if err != nil {
		return withCause(outputErrorCommon(globals, "record", "LOG_OPEN_FAILED", err.Error(), hintForStorage(err, store.Dir())), err)
	}

	commandLine := strings.Join(c.Command, " ")
	sess.WriteHighlighted("Running: " + commandLine)

	start := time.Now()
	res, runErr := runCapture(ctx, c.Command)
	duration := time.Since(start)

	sess.WriteProcessOutput(res.Stdout, res.Stderr)

	if !res.Started {
		sess.WriteLine("Failed to start: " + runErr.Error())
		sess.WriteLine("Log saved to: " + sess.Path())
		return withCause(outputErrorCommon(globals, "record", "START_FAILED", runErr.Error(), hintForCommand(runErr, c.Command[0])), runErr)
	}

	interrupted := ctx.Err() != nil
	if runErr != nil && !interrupted {
		globals.Debug("output capture error: %v", runErr)
		emitWarning(globals, "output capture incomplete: "+runErr.Error())
	}
	if res.Detached {
		globals.Debug("background processes kept output open; stopped reading %s after exit", outputDrainTimeout)
	}

	switch {
	case interrupted:
		sess.WriteLine("Interrupted")
	case res.ExitCode == 0:
		sess.WriteHighlighted(fmt.Sprintf("Finished in %s", duration.Round(time.Millisecond)))
	default:
		sess.WriteLine(fmt.Sprintf("Command exited with status %d after %s", res.ExitCode, duration.Round(time.Millisecond)))
	}
	sess.WriteLine("Log saved to: " + sess.Path())

	if n := sess.Dropped(); n > 0 {
		emitWarning(globals, fmt.Sprintf("%d write(s) to %s failed; the log is incomplete", n, sess.Path()))
	}

	result := output.RecordOutput{
		Path:          sess.Path(),
		Platform:      sess.Platform(),
		Command:       c.Command,
		ExitCode:      res.ExitCode,
		DurationMs:    duration.Milliseconds(),
		DroppedWrites: sess.Dropped(),
		Interrupted:   interrupted,
	}

	var code, message string
	switch {
	case interrupted:
		code, message = "INTERRUPTED", fmt.Sprintf("%s was interrupted", c.Command[0])
	case res.ExitCode != 0:
		code, message = "COMMAND_FAILED", fmt.Sprintf("%s exited with status %d", c.Command[0], res.ExitCode)
	default:
		if globals.Format == "ndjson" {
			return output.NewNDJSONWriter(globals.Stdout).WriteResult("record", result)
		}
		return nil
	}

	hint := "See the full log with `rn-run show-log`"
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteFailedResult("record", code, message, hint, result)
		return &CLIError{Code: code, Message: message, Hint: hint, Err: ctx.Err()}
	}
	return withCause(outputErrorCommon(globals, "record", code, message, hint), ctx.Err())
}
