package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/vburojevic/rnrun/internal/output"
)

// outputErrorCommon normalizes error emission across commands, respecting
// ndjson vs text formats so automation always gets machine-readable failures.
func outputErrorCommon(globals *Globals, command, code, message, hint string) error {
	if globals != nil && globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteError(command, code, message, hint)
	} else if globals != nil {
		fmt.Fprintf(globals.Stderr, "%s %s\n", paint(globals, output.Styles.Danger, "Error ["+code+"]:"), message)
		if hint != "" {
			fmt.Fprintf(globals.Stderr, "Hint: %s\n", hint)
		}
	}
	return &CLIError{Code: code, Message: message, Hint: hint}
}

// emitWarning respects format/quiet.
func emitWarning(globals *Globals, msg string) {
	if globals.Quiet {
		return
	}
	if globals.Format == "ndjson" {
		output.NewNDJSONWriter(globals.Stdout).WriteWarning(msg)
		return
	}
	fmt.Fprintf(globals.Stderr, "%s %s\n", paint(globals, output.Styles.Warning, "Warning:"), msg)
}

// paint renders s with style only when colors are enabled.
func paint(globals *Globals, style lipgloss.Style, s string) string {
	if !globals.Color {
		return s
	}
	return style.Render(s)
}
