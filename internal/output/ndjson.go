package output

import (
	"encoding/json"
	"io"
	"time"
)

// NDJSONWriter writes one JSON object per line
type NDJSONWriter struct {
	w       io.Writer
	encoder *json.Encoder
}

// NewNDJSONWriter creates a new NDJSON writer
func NewNDJSONWriter(w io.Writer) *NDJSONWriter {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false) // keep paths and log text unescaped
	return &NDJSONWriter{
		w:       w,
		encoder: enc,
	}
}

// Result wraps the outcome of a command. Automation should parse this
// instead of scraping text output.
type Result struct {
	Type          string `json:"type"` // Always "result"
	SchemaVersion int    `json:"schemaVersion"`
	Command       string `json:"command"`
	Success       bool   `json:"success"`
	Data          any    `json:"data,omitempty"`
	Error         string `json:"error,omitempty"`
	Code          string `json:"code,omitempty"`
	SuggestedFix  string `json:"suggested_fix,omitempty"`
}

// LogFileOutput describes one stored build log
type LogFileOutput struct {
	Path     string `json:"path"`
	Name     string `json:"name"`
	Platform string `json:"platform,omitempty"`
	Size     int64  `json:"size"`
	Modified string `json:"modified"`
}

// LogListOutput is the payload of the logs command
type LogListOutput struct {
	Directory string          `json:"directory"`
	Count     int             `json:"count"`
	Logs      []LogFileOutput `json:"logs"`
}

// LogContentOutput is the payload of the show-log command
type LogContentOutput struct {
	LogFileOutput
	Cleaned bool   `json:"cleaned"`
	Content string `json:"content"`
}

// RecordOutput is the payload of the record command
type RecordOutput struct {
	Path          string   `json:"path"`
	Platform      string   `json:"platform"`
	Command       []string `json:"command"`
	ExitCode      int      `json:"exit_code"`
	DurationMs    int64    `json:"duration_ms"`
	DroppedWrites int      `json:"dropped_writes,omitempty"`
	Interrupted   bool     `json:"interrupted,omitempty"`
}

// PruneOutput is the payload of the prune command
type PruneOutput struct {
	Directory string   `json:"directory"`
	Keep      int      `json:"keep"`
	Removed   []string `json:"removed"`
}

// WarningOutput represents a warning message
type WarningOutput struct {
	Type          string `json:"type"` // Always "warning"
	SchemaVersion int    `json:"schemaVersion"`
	Message       string `json:"message"`
}

// WriteResult outputs a successful command result
func (w *NDJSONWriter) WriteResult(command string, data any) error {
	return w.encoder.Encode(&Result{
		Type:          "result",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Success:       true,
		Data:          data,
	})
}

// WriteError outputs a failed command result
func (w *NDJSONWriter) WriteError(command, code, message string, hint ...string) error {
	res := &Result{
		Type:          "result",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Success:       false,
		Error:         message,
		Code:          code,
	}
	if len(hint) > 0 {
		res.SuggestedFix = hint[0]
	}
	return w.encoder.Encode(res)
}

// WriteFailedResult outputs a failed command result that still carries data,
// such as the log path of a build that exited non-zero
func (w *NDJSONWriter) WriteFailedResult(command, code, message, hint string, data any) error {
	return w.encoder.Encode(&Result{
		Type:          "result",
		SchemaVersion: SchemaVersion,
		Command:       command,
		Success:       false,
		Data:          data,
		Error:         message,
		Code:          code,
		SuggestedFix:  hint,
	})
}

// WriteWarning outputs a warning message
func (w *NDJSONWriter) WriteWarning(message string) error {
	return w.encoder.Encode(&WarningOutput{
		Type:          "warning",
		SchemaVersion: SchemaVersion,
		Message:       message,
	})
}

// FormatModified formats a log file modification time for output
func FormatModified(t time.Time) string {
	return t.Format("2006-01-02 15:04:05")
}
