package buildlog

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

// ErrInvalidPlatform is returned when a session is opened for an unknown platform.
var ErrInvalidPlatform = errors.New("invalid platform")

// Platforms lists the platforms a session can be opened for.
var Platforms = []string{"ios", "android"}

// ValidatePlatform reports whether platform is one of Platforms.
func ValidatePlatform(platform string) error {
	for _, p := range Platforms {
		if p == platform {
			return nil
		}
	}
	return fmt.Errorf("%w %q (expected ios or android)", ErrInvalidPlatform, platform)
}

// Console is where a session mirrors its output.
type Console struct {
	Stdout io.Writer
	Stderr io.Writer
	// Highlight styles highlighted lines. Leave it zero to print them plain.
	Highlight *lipgloss.Style
}

// StdConsole mirrors to the process's stdout and stderr.
func StdConsole(highlight *lipgloss.Style) Console {
	return Console{Stdout: os.Stdout, Stderr: os.Stderr, Highlight: highlight}
}

// Session writes one build run's log. Every append opens the file, writes
// and closes it; nothing is held open between writes.
type Session struct {
	path      string
	platform  string
	startedAt time.Time
	console   Console
	logger    *zap.Logger
	dropped   int
}

// SessionOption customizes Open.
type SessionOption func(*Session)

// WithLogger routes the session's diagnostics to logger.
func WithLogger(logger *zap.Logger) SessionOption {
	return func(s *Session) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Open rotates old logs, then creates a new log file for platform and writes
// its header.
func (s *Store) Open(platform string, console Console, opts ...SessionOption) (*Session, error) {
	if err := ValidatePlatform(platform); err != nil {
		return nil, err
	}

	sess := &Session{
		platform: platform,
		console:  console,
		logger:   zap.NewNop(),
	}
	for _, opt := range opts {
		opt(sess)
	}
	if sess.console.Stdout == nil {
		sess.console.Stdout = io.Discard
	}
	if sess.console.Stderr == nil {
		sess.console.Stderr = io.Discard
	}

	// Leave one slot free for the file about to be created.
	removed, err := s.rotate(s.maxLogs - 1)
	if err != nil {
		sess.logger.Debug("log rotation skipped", zap.String("dir", s.dir), zap.Error(err))
	} else if len(removed) > 0 {
		sess.logger.Debug("rotated old logs", zap.Int("removed", len(removed)))
	}

	if err := s.EnsureDirectory(); err != nil {
		return nil, err
	}

	sess.startedAt = s.clock.Now()
	sess.path = s.AllocatePath(platform)

	header := fmt.Sprintf("=== rn-run %s build log ===\nStarted: %s\n\n",
		platform, sess.startedAt.Format(HeaderTimestampFormat))

	f, err := os.OpenFile(sess.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to create log file: %w", err)
	}
	_, writeErr := io.WriteString(f, header)
	closeErr := f.Close()
	if err := errors.Join(writeErr, closeErr); err != nil {
		return nil, fmt.Errorf("failed to write log header: %w", err)
	}

	sess.logger.Debug("opened build log", zap.String("path", sess.path), zap.String("platform", platform))
	return sess, nil
}

// Path returns the log file path.
func (s *Session) Path() string { return s.path }

// Platform returns the platform the session was opened for.
func (s *Session) Platform() string { return s.platform }

// StartedAt returns the time written in the header.
func (s *Session) StartedAt() time.Time { return s.startedAt }

// Dropped returns how many appends to the log file failed.
func (s *Session) Dropped() int { return s.dropped }

// WriteLine prints message to the console and appends it to the log.
func (s *Session) WriteLine(message string) {
	fmt.Fprintln(s.console.Stdout, message)
	s.append([]byte(message + "\n"))
}

// WriteHighlighted is WriteLine with the console copy styled. The log file
// always receives the plain message.
func (s *Session) WriteHighlighted(message string) {
	styled := message
	if s.console.Highlight != nil {
		styled = s.console.Highlight.Render(message)
	}
	fmt.Fprintln(s.console.Stdout, styled)
	s.append([]byte(message + "\n"))
}

// WriteProcessOutput mirrors captured child output to the console streams and
// appends it to the log byte for byte.
func (s *Session) WriteProcessOutput(stdout, stderr []byte) {
	if len(stdout) > 0 {
		s.console.Stdout.Write(stdout)
		s.append(stdout)
	}
	if len(stderr) > 0 {
		s.console.Stderr.Write(stderr)
		s.append(stderr)
	}
}

// append writes p to the end of the log file. The file must already exist.
func (s *Session) append(p []byte) {
	if err := appendFile(s.path, p); err != nil {
		s.dropped++
		s.logger.Debug("dropped log write", zap.String("path", s.path), zap.Error(err))
	}
}

func appendFile(path string, p []byte) error {
	f, err := os.OpenFile(path, os.O_APPEND|os.O_WRONLY, 0)
	if err != nil {
		return err
	}
	_, writeErr := f.Write(p)
	return errors.Join(writeErr, f.Close())
}
