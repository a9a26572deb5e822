package cli

import (
	"fmt"
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/vburojevic/rnrun/internal/buildlog"
	"github.com/vburojevic/rnrun/internal/output"
)

// LogsCmd lists captured build logs
type LogsCmd struct {
	Limit int `default:"0" help:"Max logs to show (0 = all)"`
}

// Run executes the logs command
func (c *LogsCmd) Run(globals *Globals) error {
	store := globals.Store()
	entries, err := store.List()
	if err != nil {
		return outputErrorCommon(globals, "logs", "LIST_LOGS_ERROR", err.Error(), hintForStorage(err, store.Dir()))
	}
	globals.Debug("found %d log(s) in %s", len(entries), store.Dir())

	// Limit output
	if c.Limit > 0 && len(entries) > c.Limit {
		entries = entries[:c.Limit]
	}

	if globals.Format == "ndjson" {
		logs := make([]output.LogFileOutput, 0, len(entries))
		for _, e := range entries {
			logs = append(logs, logFileOutput(e))
		}
		return output.NewNDJSONWriter(globals.Stdout).WriteResult("logs", output.LogListOutput{
			Directory: store.Dir(),
			Count:     len(logs),
			Logs:      logs,
		})
	}

	if len(entries) == 0 {
		fmt.Fprintln(globals.Stdout, "No build logs found")
		fmt.Fprintf(globals.Stdout, "Log directory: %s\n", store.Dir())
		return nil
	}

	fmt.Fprintln(globals.Stdout, paint(globals, output.Styles.Header, fmt.Sprintf("Build logs (%d)", len(entries))))
	table := tablewriter.NewWriter(globals.Stdout)
	table.Header("#", "Platform", "Modified", "Size", "Name")
	for i, e := range entries {
		platform := e.Platform
		if platform == "" {
			platform = "-"
		}
		platform = paint(globals, output.PlatformStyle(e.Platform), platform)
		if err := table.Append([]string{
			strconv.Itoa(i + 1),
			platform,
			output.FormatModified(e.ModTime),
			formatSize(e.Size),
			e.Name,
		}); err != nil {
			return err
		}
	}
	if err := table.Render(); err != nil {
		return err
	}

	if !globals.Quiet {
		fmt.Fprintf(globals.Stdout, "\n%s %s\n", paint(globals, output.Styles.Label, "Directory:"), store.Dir())
	}
	return nil
}

func logFileOutput(e buildlog.Entry) output.LogFileOutput {
	return output.LogFileOutput{
		Path:     e.Path,
		Name:     e.Name,
		Platform: e.Platform,
		Size:     e.Size,
		Modified: output.FormatModified(e.ModTime),
	}
}

// formatSize formats bytes into human-readable format
func formatSize(bytes int64) string {
	const unit = 1024
	if bytes < unit {
		return strconv.FormatInt(bytes, 10) + " B"
	}
	div, exp := int64(unit), 0
	for n := bytes / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(bytes)/float64(div), "KMGTPE"[exp])
}
