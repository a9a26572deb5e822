package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/x/ansi"
	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/output"
	"github.com/vburojevic/rnrun/internal/sanitize"
)

// ShowLogCmd prints a captured build log
type ShowLogCmd struct {
	Index int  `arg:"" optional:"" help:"Log index from 'rn-run logs' (1-based, default: latest)"`
	Raw   bool `help:"Print the log exactly as captured, control sequences included"`
	Width int  `help:"Truncate each cleaned line to this many columns (0 = no limit; ignored with --raw)"`
}

// Run executes the show-log command
func (c *ShowLogCmd) Run(globals *Globals) error {
	store := globals.Store()

	entry, err := c.resolve(globals, store)
	if err != nil {
		return err
	}

	data, err := os.ReadFile(entry.Path)
	if err != nil {
		return outputErrorCommon(globals, "show-log", "READ_LOG_ERROR", fmt.Sprintf("failed to read %s: %v", entry.Path, err), hintForStorage(err, store.Dir()))
	}

	content := string(data)
	switch {
	case c.Raw:
		// Raw lines still carry the carriage returns that join spinner
		// frames, so column widths are meaningless.
		if c.Width > 0 {
			globals.Debug("--width ignored with --raw")
		}
	case c.Width > 0:
		content = truncateLines(sanitize.Clean(content), c.Width)
	default:
		content = sanitize.Clean(content)
	}

	if globals.Format == "ndjson" {
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("show-log", output.LogContentOutput{
			LogFileOutput: logFileOutput(*entry),
			Cleaned:       !c.Raw,
			Content:       content,
		})
	}

	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "%s %s\n\n", paint(globals, output.Styles.Label, "Log:"), entry.Path)
	}
	fmt.Fprint(globals.Stdout, content)
	return nil
}

func (c *ShowLogCmd) resolve(globals *Globals, store *buildlog.Store) (*buildlog.Entry, error) {
	const noLogsHint = "Capture one with `rn-run record --platform ios -- <build command>`"

	if c.Index == 0 {
		latest, err := store.Latest()
		if err != nil {
			return nil, outputErrorCommon(globals, "show-log", "LIST_LOGS_ERROR", err.Error(), hintForStorage(err, store.Dir()))
		}
		if latest == nil {
			return nil, outputErrorCommon(globals, "show-log", "NO_LOGS", "no build logs found in "+store.Dir(), noLogsHint)
		}
		return latest, nil
	}

	entries, err := store.List()
	if err != nil {
		return nil, outputErrorCommon(globals, "show-log", "LIST_LOGS_ERROR", err.Error(), hintForStorage(err, store.Dir()))
	}
	if len(entries) == 0 {
		return nil, outputErrorCommon(globals, "show-log", "NO_LOGS", "no build logs found in "+store.Dir(), noLogsHint)
	}
	if c.Index < 1 || c.Index > len(entries) {
		return nil, outputErrorCommon(globals, "show-log", "INVALID_INDEX",
			fmt.Sprintf("index %d out of range (1-%d)", c.Index, len(entries)), "Run `rn-run logs` to see available indexes")
	}
	return &entries[c.Index-1], nil
}

// truncateLines cuts every line to width display columns.
func truncateLines(content string, width int) string {
	lines := strings.Split(content, "\n")
	for i, line := range lines {
		lines[i] = ansi.Truncate(line, width, "…")
	}
	return strings.Join(lines, "\n")
}
