// Package buildlog stores one plain-text log file per build run and keeps the
// log directory bounded.
package buildlog

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/benbjohnson/clock"
)

const (
	// DefaultLogDir is the log directory relative to the home directory.
	DefaultLogDir = ".rn-run/logs"

	// DefaultMaxLogs is how many log files survive a rotation pass.
	DefaultMaxLogs = 10

	// FileTimestampFormat is the timestamp used in log file names.
	FileTimestampFormat = "2006-01-02_15-04-05"

	// HeaderTimestampFormat is the timestamp written in the log header.
	HeaderTimestampFormat = "2006-01-02 15:04:05"

	filePrefix = "rn-run-"
	fileExt    = ".log"
)

// Options configures a Store. Zero values select the defaults.
type Options struct {
	Dir     string
	MaxLogs int
	Clock   clock.Clock
}

// Store manages the log directory.
type Store struct {
	dir     string
	maxLogs int
	clock   clock.Clock
	remove  func(name string) error
}

// Entry describes a log file found in the directory.
type Entry struct {
	Path     string    `json:"path"`
	Name     string    `json:"name"`
	Platform string    `json:"platform,omitempty"`
	Size     int64     `json:"size"`
	ModTime  time.Time `json:"modified"`
}

// NewStore creates a Store. It does not touch the filesystem.
func NewStore(opts Options) *Store {
	s := &Store{
		dir:     opts.Dir,
		maxLogs: opts.MaxLogs,
		clock:   opts.Clock,
		remove:  os.Remove,
	}
	if s.dir == "" {
		s.dir = ResolveDirectory()
	}
	if s.maxLogs <= 0 {
		s.maxLogs = DefaultMaxLogs
	}
	if s.clock == nil {
		s.clock = clock.New()
	}
	return s
}

// ResolveDirectory returns the default log directory under the user's home.
// When the home directory is unknown it falls back to the working directory.
func ResolveDirectory() string {
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, DefaultLogDir)
	}
	if cwd, err := os.Getwd(); err == nil {
		return filepath.Join(cwd, DefaultLogDir)
	}
	return DefaultLogDir
}

// Dir returns the directory this store manages.
func (s *Store) Dir() string { return s.dir }

// MaxLogs returns the retention cap.
func (s *Store) MaxLogs() int { return s.maxLogs }

// EnsureDirectory creates the log directory and its parents if needed.
func (s *Store) EnsureDirectory() error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// AllocatePath returns the path for a new log file for platform, stamped with
// the current time. The file is not created.
func (s *Store) AllocatePath(platform string) string {
	timestamp := s.clock.Now().Format(FileTimestampFormat)
	return filepath.Join(s.dir, filePrefix+platform+"-"+timestamp+fileExt)
}

// candidate is a directory entry with the metadata we could read for it.
type candidate struct {
	path string
	name string
	info fs.FileInfo // nil when metadata could not be read
}

// scan returns the *.log files in the directory, newest first. Files whose
// metadata could not be read are placed last.
func (s *Store) scan() ([]candidate, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil // No logs yet
		}
		return nil, fmt.Errorf("failed to read log directory: %w", err)
	}

	var logs []candidate
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != fileExt {
			continue
		}
		c := candidate{
			path: filepath.Join(s.dir, entry.Name()),
			name: entry.Name(),
		}
		if info, err := entry.Info(); err == nil {
			c.info = info
		}
		logs = append(logs, c)
	}

	sortNewestFirst(logs)
	return logs, nil
}

// sortNewestFirst orders logs by modification time, newest first. Entries
// without metadata go last, in directory order.
func sortNewestFirst(logs []candidate) {
	sort.SliceStable(logs, func(i, j int) bool {
		a, b := logs[i].info, logs[j].info
		switch {
		case a == nil:
			return false
		case b == nil:
			return true
		default:
			return a.ModTime().After(b.ModTime())
		}
	})
}

// Rotate deletes the oldest log files so at most MaxLogs remain. Removal
// failures are skipped. It returns the paths that were removed.
func (s *Store) Rotate() ([]string, error) {
	return s.rotate(s.maxLogs)
}

func (s *Store) rotate(keep int) ([]string, error) {
	logs, err := s.scan()
	if err != nil {
		return nil, err
	}
	if len(logs) <= keep {
		return nil, nil
	}

	var removed []string
	for _, c := range logs[keep:] {
		if err := s.remove(c.path); err != nil {
			continue
		}
		removed = append(removed, c.path)
	}
	return removed, nil
}

// List returns the log files, newest first. A missing directory yields an
// empty list.
func (s *Store) List() ([]Entry, error) {
	logs, err := s.scan()
	if err != nil {
		return nil, err
	}

	entries := make([]Entry, 0, len(logs))
	for _, c := range logs {
		if c.info == nil {
			continue
		}
		entries = append(entries, Entry{
			Path:     c.path,
			Name:     c.name,
			Platform: platformFromName(c.name),
			Size:     c.info.Size(),
			ModTime:  c.info.ModTime(),
		})
	}
	return entries, nil
}

// Latest returns the most recently modified log file, or nil if there is none.
func (s *Store) Latest() (*Entry, error) {
	entries, err := s.List()
	if err != nil {
		return nil, err
	}
	if len(entries) == 0 {
		return nil, nil
	}
	return &entries[0], nil
}

// platformFromName extracts the platform from rn-run-<platform>-<timestamp>.log.
func platformFromName(name string) string {
	rest, ok := strings.CutPrefix(name, filePrefix)
	if !ok {
		return ""
	}
	platform, _, ok := strings.Cut(rest, "-")
	if !ok {
		return ""
	}
	return platform
}
