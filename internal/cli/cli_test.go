package cli

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
	"github.com/vburojevic/rnrun/internal/config"
	"go.uber.org/goleak"
	"go.uber.org/zap"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m,
		goleak.IgnoreTopFunction("os/signal.signal_recv"),
		goleak.IgnoreAnyFunction("os/signal.loop"),
	)
}

// testGlobals creates a Globals struct with captured stdout/stderr and an
// isolated log directory
func testGlobals(t *testing.T, format string) (*Globals, *bytes.Buffer, *bytes.Buffer) {
	t.Helper()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	cfg := config.Default()
	cfg.Logs.Dir = filepath.Join(t.TempDir(), "logs")
	return &Globals{
		Format: format,
		Stdout: stdout,
		Stderr: stderr,
		Config: cfg,
		Logger: zap.NewNop(),
	}, stdout, stderr
}

// writeLog creates a log file with the given content and modification time.
func writeLog(t *testing.T, dir, name, content string, mtime time.Time) string {
	t.Helper()
	require.NoError(t, os.MkdirAll(dir, 0o755))
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	require.NoError(t, os.Chtimes(path, mtime, mtime))
	return path
}

func requireShell(t *testing.T) {
	t.Helper()
	if _, err := exec.LookPath("sh"); err != nil {
		t.Skip("sh not available")
	}
}

var base = time.Date(2026, 10, 16, 9, 0, 0, 0, time.Local)

// --- Logs Command Tests ---

func TestLogsCmd_Run(t *testing.T) {
	t.Run("reports empty directory in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")

		require.NoError(t, (&LogsCmd{}).Run(globals))

		assert.Contains(t, stdout.String(), "No build logs found")
		assert.Contains(t, stdout.String(), globals.Config.Logs.Dir)
	})

	t.Run("lists logs newest first in a table", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		dir := globals.Config.Logs.Dir
		writeLog(t, dir, "rn-run-ios-2026-10-16_09-00-00.log", "a", base)
		writeLog(t, dir, "rn-run-android-2026-10-16_10-00-00.log", strings.Repeat("x", 2048), base.Add(time.Hour))

		require.NoError(t, (&LogsCmd{}).Run(globals))

		out := stdout.String()
		assert.Contains(t, out, "Build logs (2)")
		assert.Contains(t, out, "2.0 KB")
		androidAt := strings.Index(out, "rn-run-android-2026-10-16_10-00-00.log")
		iosAt := strings.Index(out, "rn-run-ios-2026-10-16_09-00-00.log")
		require.NotEqual(t, -1, androidAt)
		require.NotEqual(t, -1, iosAt)
		assert.Less(t, androidAt, iosAt)
	})

	t.Run("outputs NDJSON envelope", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")
		dir := globals.Config.Logs.Dir
		for i := range 3 {
			writeLog(t, dir, "rn-run-ios-"+string(rune('a'+i))+".log", "log", base.Add(time.Duration(i)*time.Minute))
		}

		require.NoError(t, (&LogsCmd{Limit: 2}).Run(globals))

		line := stdout.String()
		assert.Equal(t, "logs", gjson.Get(line, "command").String())
		assert.True(t, gjson.Get(line, "success").Bool())
		assert.Equal(t, dir, gjson.Get(line, "data.directory").String())
		assert.Equal(t, int64(2), gjson.Get(line, "data.count").Int())
		assert.Equal(t, "rn-run-ios-c.log", gjson.Get(line, "data.logs.0.name").String())
		assert.Equal(t, "rn-run-ios-b.log", gjson.Get(line, "data.logs.1.name").String())
		assert.Equal(t, "ios", gjson.Get(line, "data.logs.0.platform").String())
	})

	t.Run("empty NDJSON list is an array", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")

		require.NoError(t, (&LogsCmd{}).Run(globals))

		assert.True(t, gjson.Get(stdout.String(), "data.logs").IsArray())
		assert.Equal(t, int64(0), gjson.Get(stdout.String(), "data.count").Int())
	})

	t.Run("log-dir flag overrides config", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")
		globals.LogDir = t.TempDir()
		writeLog(t, globals.LogDir, "rn-run-android-x.log", "log", base)

		require.NoError(t, (&LogsCmd{}).Run(globals))

		assert.Equal(t, globals.LogDir, gjson.Get(stdout.String(), "data.directory").String())
		assert.Equal(t, int64(1), gjson.Get(stdout.String(), "data.count").Int())
	})
}

// --- Show-Log Command Tests ---

const rawBuildLog = "=== rn-run ios build log ===\n" +
	"Started: 2026-10-16 09:00:00\n" +
	"\n" +
	"Running: npx react-native run-ios\n" +
	"\x1b[36m- Building project.\x1b[0m\r\n" +
	"\x1b[36m- Building project..\x1b[0m\r\n" +
	"\x1b[36m- Building project...\x1b[0m\r\n" +
	"\x1b[32mBuilding\x1b[0m...\r\n" +
	"\x1b[31merror\x1b[0m: Command PhaseScriptExecution failed\n"

func TestShowLogCmd_Run(t *testing.T) {
	t.Run("cleans the latest log", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		dir := globals.Config.Logs.Dir
		writeLog(t, dir, "rn-run-android-old.log", "old build\n", base)
		path := writeLog(t, dir, "rn-run-ios-new.log", rawBuildLog, base.Add(time.Hour))

		require.NoError(t, (&ShowLogCmd{}).Run(globals))

		out := stdout.String()
		assert.Contains(t, out, path)
		assert.NotContains(t, out, "\x1b")
		assert.NotContains(t, out, "\r")
		assert.NotContains(t, out, "old build")
		assert.Equal(t, 1, strings.Count(out, "- Building project..."))
		assert.Contains(t, out, "Building...\n")
		assert.Contains(t, out, "error: Command PhaseScriptExecution failed\n")

		raw, err := os.ReadFile(path)
		require.NoError(t, err)
		assert.Equal(t, rawBuildLog, string(raw), "show-log must not rewrite the file")
	})

	t.Run("raw output keeps control sequences", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Quiet = true
		writeLog(t, globals.Config.Logs.Dir, "rn-run-ios-new.log", rawBuildLog, base)

		require.NoError(t, (&ShowLogCmd{Raw: true}).Run(globals))

		assert.Equal(t, rawBuildLog, stdout.String())
	})

	t.Run("selects by index", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")
		dir := globals.Config.Logs.Dir
		writeLog(t, dir, "rn-run-ios-a.log", "first\n", base)
		writeLog(t, dir, "rn-run-ios-b.log", "second\n", base.Add(time.Minute))

		require.NoError(t, (&ShowLogCmd{Index: 2}).Run(globals))

		line := stdout.String()
		assert.Equal(t, "rn-run-ios-a.log", gjson.Get(line, "data.name").String())
		assert.Equal(t, "first\n", gjson.Get(line, "data.content").String())
		assert.True(t, gjson.Get(line, "data.cleaned").Bool())
	})

	t.Run("truncates lines to width", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Quiet = true
		writeLog(t, globals.Config.Logs.Dir, "rn-run-ios-a.log", "short\nthis line is far too long\n", base)

		require.NoError(t, (&ShowLogCmd{Width: 10}).Run(globals))

		for _, line := range strings.Split(strings.TrimSuffix(stdout.String(), "\n"), "\n") {
			assert.LessOrEqual(t, len([]rune(line)), 10)
		}
		assert.Contains(t, stdout.String(), "short\n")
	})

	t.Run("width does not apply to raw output", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Quiet = true
		raw := "- Building.\r- Building..\r- Building...\r\n"
		writeLog(t, globals.Config.Logs.Dir, "rn-run-ios-a.log", raw, base)

		require.NoError(t, (&ShowLogCmd{Raw: true, Width: 5}).Run(globals))

		assert.Equal(t, raw, stdout.String())
	})

	t.Run("no logs is an error with a hint", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")

		err := (&ShowLogCmd{}).Run(globals)
		require.Error(t, err)

		var cliErr *CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, "NO_LOGS", cliErr.Code)
		assert.False(t, gjson.Get(stdout.String(), "success").Bool())
		assert.Equal(t, "NO_LOGS", gjson.Get(stdout.String(), "code").String())
		assert.Contains(t, gjson.Get(stdout.String(), "suggested_fix").String(), "rn-run record")
	})

	t.Run("index out of range", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")
		writeLog(t, globals.Config.Logs.Dir, "rn-run-ios-a.log", "log\n", base)

		err := (&ShowLogCmd{Index: 5}).Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Error [INVALID_INDEX]: index 5 out of range (1-1)")
	})
}

// --- Prune Command Tests ---

func TestPruneCmd_Run(t *testing.T) {
	t.Run("keeps the newest logs", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")
		dir := globals.Config.Logs.Dir
		var paths []string
		for i := range 5 {
			paths = append(paths, writeLog(t, dir, "rn-run-ios-"+string(rune('a'+i))+".log", "log", base.Add(time.Duration(i)*time.Minute)))
		}

		require.NoError(t, (&PruneCmd{Keep: 2}).Run(globals))

		line := stdout.String()
		assert.Equal(t, int64(2), gjson.Get(line, "data.keep").Int())
		assert.Len(t, gjson.Get(line, "data.removed").Array(), 3)
		assert.FileExists(t, paths[4])
		assert.FileExists(t, paths[3])
		assert.NoFileExists(t, paths[0])
	})

	t.Run("uses the configured cap by default", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		globals.Config.Logs.MaxLogs = 1
		dir := globals.Config.Logs.Dir
		writeLog(t, dir, "rn-run-ios-a.log", "log", base)
		writeLog(t, dir, "rn-run-ios-b.log", "log", base.Add(time.Minute))

		require.NoError(t, (&PruneCmd{}).Run(globals))

		assert.Contains(t, stdout.String(), "Deleted 1 log(s):")
		assert.Contains(t, stdout.String(), "rn-run-ios-a.log")
	})

	t.Run("nothing to prune", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")

		require.NoError(t, (&PruneCmd{}).Run(globals))

		assert.Contains(t, stdout.String(), "Nothing to prune (keeping 10)")
	})

	t.Run("rejects negative keep", func(t *testing.T) {
		globals, _, _ := testGlobals(t, "text")

		assert.Error(t, (&PruneCmd{Keep: -1}).Run(globals))
	})
}

// --- Record Command Tests ---

func TestRecordCmd_Run(t *testing.T) {
	t.Run("captures output into a new log", func(t *testing.T) {
		requireShell(t)
		globals, stdout, stderr := testGlobals(t, "text")

		cmd := &RecordCmd{
			Platform: "ios",
			Command:  []string{"sh", "-c", `printf '\033[32m- Building.\033[0m\r\n'; echo 'warning: slow' >&2`},
		}
		require.NoError(t, cmd.Run(globals))

		out := stdout.String()
		assert.Contains(t, out, "Running: sh -c")
		assert.Contains(t, out, "\x1b[32m- Building.\x1b[0m\r\n")
		assert.Contains(t, out, "Finished in")
		assert.Contains(t, stderr.String(), "warning: slow\n")

		entries, err := globals.Store().List()
		require.NoError(t, err)
		require.Len(t, entries, 1)
		assert.Contains(t, out, "Log saved to: "+entries[0].Path)

		content, err := os.ReadFile(entries[0].Path)
		require.NoError(t, err)
		text := string(content)
		assert.True(t, strings.HasPrefix(text, "=== rn-run ios build log ===\nStarted: "))
		assert.Contains(t, text, "\x1b[32m- Building.\x1b[0m\r\nwarning: slow\n")
		assert.True(t, strings.HasSuffix(text, "Log saved to: "+entries[0].Path+"\n"))
	})

	t.Run("reports the log path as NDJSON", func(t *testing.T) {
		requireShell(t)
		globals, stdout, stderr := testGlobals(t, "ndjson")

		cmd := &RecordCmd{Platform: "android", Command: []string{"sh", "-c", "echo assembled"}}
		require.NoError(t, cmd.Run(globals))

		line := stdout.String()
		assert.Equal(t, 1, strings.Count(line, "\n"), "stdout carries only the result")
		assert.True(t, gjson.Get(line, "success").Bool())
		assert.Equal(t, "android", gjson.Get(line, "data.platform").String())
		assert.Equal(t, int64(0), gjson.Get(line, "data.exit_code").Int())
		assert.FileExists(t, gjson.Get(line, "data.path").String())
		assert.Contains(t, stderr.String(), "assembled")
	})

	t.Run("non-zero exit fails but keeps the log", func(t *testing.T) {
		requireShell(t)
		globals, stdout, _ := testGlobals(t, "ndjson")

		cmd := &RecordCmd{Platform: "ios", Command: []string{"sh", "-c", "echo 'BUILD FAILED' >&2; exit 65"}}
		err := cmd.Run(globals)
		require.Error(t, err)

		line := stdout.String()
		assert.False(t, gjson.Get(line, "success").Bool())
		assert.Equal(t, "COMMAND_FAILED", gjson.Get(line, "code").String())
		assert.Equal(t, int64(65), gjson.Get(line, "data.exit_code").Int())

		content, readErr := os.ReadFile(gjson.Get(line, "data.path").String())
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "BUILD FAILED\n")
		assert.Contains(t, string(content), "Command exited with status 65")
	})

	t.Run("missing executable", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")

		cmd := &RecordCmd{Platform: "ios", Command: []string{"rn-run-definitely-not-installed"}}
		err := cmd.Run(globals)
		require.Error(t, err)

		assert.Contains(t, stderr.String(), "Error [START_FAILED]")
		assert.Contains(t, stderr.String(), "rn-run-definitely-not-installed not found")
		assert.ErrorIs(t, err, exec.ErrNotFound)
	})

	t.Run("requires a command", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")

		err := (&RecordCmd{Platform: "ios"}).Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "INVALID_ARGS")
	})

	t.Run("log directory blocked by a file", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "text")
		blocker := filepath.Join(t.TempDir(), "blocker")
		require.NoError(t, os.WriteFile(blocker, nil, 0o644))
		globals.LogDir = filepath.Join(blocker, "logs")

		err := (&RecordCmd{Platform: "ios", Command: []string{"true"}}).Run(globals)
		require.Error(t, err)
		assert.Contains(t, stderr.String(), "Error [LOG_OPEN_FAILED]")
		assert.Contains(t, stderr.String(), "Hint: A file is in the way")
	})

	t.Run("interrupted run still reports the log", func(t *testing.T) {
		requireShell(t)
		globals, stdout, _ := testGlobals(t, "ndjson")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		time.AfterFunc(300*time.Millisecond, cancel)

		start := time.Now()
		cmd := &RecordCmd{Platform: "ios", Command: []string{"sh", "-c", "echo compiling; sleep 30"}}
		err := cmd.run(ctx, globals)
		require.Error(t, err)
		assert.Less(t, time.Since(start), 5*time.Second)

		var cliErr *CLIError
		require.True(t, errors.As(err, &cliErr))
		assert.Equal(t, "INTERRUPTED", cliErr.Code)
		assert.ErrorIs(t, err, context.Canceled)

		line := stdout.String()
		assert.Equal(t, 1, strings.Count(line, "\n"))
		assert.False(t, gjson.Get(line, "success").Bool())
		assert.Equal(t, "INTERRUPTED", gjson.Get(line, "code").String())
		assert.True(t, gjson.Get(line, "data.interrupted").Bool())
		path := gjson.Get(line, "data.path").String()
		content, readErr := os.ReadFile(path)
		require.NoError(t, readErr)
		assert.Contains(t, string(content), "compiling\n")
		assert.True(t, strings.HasSuffix(string(content), "Interrupted\nLog saved to: "+path+"\n"))
	})

	t.Run("interrupted run reports dropped writes before the result", func(t *testing.T) {
		requireShell(t)
		globals, stdout, _ := testGlobals(t, "ndjson")
		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		time.AfterFunc(300*time.Millisecond, cancel)

		script := fmt.Sprintf("rm -f '%s'/*.log; echo gone; sleep 30", globals.Config.Logs.Dir)
		err := (&RecordCmd{Platform: "android", Command: []string{"sh", "-c", script}}).run(ctx, globals)
		require.Error(t, err)

		lines := strings.Split(strings.TrimSpace(stdout.String()), "\n")
		require.Len(t, lines, 2)
		assert.Equal(t, "warning", gjson.Get(lines[0], "type").String())
		assert.Contains(t, gjson.Get(lines[0], "message").String(), "3 write(s)")
		assert.Equal(t, int64(3), gjson.Get(lines[1], "data.dropped_writes").Int())
		assert.True(t, gjson.Get(lines[1], "data.interrupted").Bool())
	})

	t.Run("record then show-log round trip", func(t *testing.T) {
		requireShell(t)
		globals, stdout, _ := testGlobals(t, "text")

		// A script file keeps the progress text out of the "Running:" line.
		script := filepath.Join(t.TempDir(), "pods.sh")
		body := "for i in 1 2 3; do printf '\\033[36m- Installing pods...\\033[0m\\r\\n'; done\necho 'Pod installation complete!'\n"
		require.NoError(t, os.WriteFile(script, []byte(body), 0o644))
		require.NoError(t, (&RecordCmd{Platform: "ios", Command: []string{"sh", script}}).Run(globals))

		stdout.Reset()
		globals.Quiet = true
		require.NoError(t, (&ShowLogCmd{}).Run(globals))

		out := stdout.String()
		assert.True(t, strings.HasPrefix(out, "=== rn-run ios build log ===\n"))
		assert.Equal(t, 1, strings.Count(out, "- Installing pods..."))
		assert.Contains(t, out, "Pod installation complete!\n")
		assert.NotContains(t, out, "\x1b")
	})

	t.Run("rotates when opening a new log", func(t *testing.T) {
		requireShell(t)
		globals, _, _ := testGlobals(t, "text")
		globals.Config.Logs.MaxLogs = 3
		dir := globals.Config.Logs.Dir
		for i := range 5 {
			writeLog(t, dir, "rn-run-ios-"+string(rune('a'+i))+".log", "log", base.Add(time.Duration(i)*time.Minute))
		}

		require.NoError(t, (&RecordCmd{Platform: "ios", Command: []string{"true"}}).Run(globals))

		entries, err := globals.Store().List()
		require.NoError(t, err)
		assert.Len(t, entries, 3)
	})
}

// --- Config Command Tests ---

func TestConfigShowCmd_Run(t *testing.T) {
	t.Run("outputs config in text format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")

		require.NoError(t, (&ConfigShowCmd{}).Run(globals))

		out := stdout.String()
		assert.Contains(t, out, "Current Configuration:")
		assert.Contains(t, out, "format:")
		assert.Contains(t, out, "max_logs: 10")
		assert.Contains(t, out, globals.Config.Logs.Dir)
	})

	t.Run("outputs config in NDJSON format", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "ndjson")
		globals.Config.Logs.MaxLogs = 4

		require.NoError(t, (&ConfigShowCmd{}).Run(globals))

		line := stdout.String()
		assert.Equal(t, "config", gjson.Get(line, "command").String())
		assert.Equal(t, int64(4), gjson.Get(line, "data.logs.max_logs").Int())
		assert.Equal(t, globals.Config.Logs.Dir, gjson.Get(line, "data.logs.dir").String())
	})
}

func TestConfigGenerateCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals(t, "text")

	require.NoError(t, (&ConfigGenerateCmd{}).Run(globals))

	out := stdout.String()
	assert.Contains(t, out, "max_logs: 10")
	assert.Contains(t, out, "~/.rn-run/logs")
}

func TestVersionCmd_Run(t *testing.T) {
	globals, stdout, _ := testGlobals(t, "ndjson")

	require.NoError(t, (&VersionCmd{}).Run(globals))

	assert.Equal(t, Version, gjson.Get(stdout.String(), "data.version").String())
}

// --- Globals Tests ---

func TestGlobalsConsole(t *testing.T) {
	t.Run("text mode mirrors to stdout", func(t *testing.T) {
		globals, stdout, _ := testGlobals(t, "text")
		assert.Same(t, stdout, globals.Console().Stdout)
		assert.Nil(t, globals.Console().Highlight)
	})

	t.Run("ndjson mode keeps stdout for results", func(t *testing.T) {
		globals, _, stderr := testGlobals(t, "ndjson")
		assert.Same(t, stderr, globals.Console().Stdout)
	})

	t.Run("color enables highlighting", func(t *testing.T) {
		globals, _, _ := testGlobals(t, "text")
		globals.Color = true
		assert.NotNil(t, globals.Console().Highlight)
	})
}

func TestNewGlobalsWithConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Quiet = true
	cfg.Verbose = true

	g := NewGlobalsWithConfig(&CLI{Format: "text"}, cfg)

	assert.True(t, g.Quiet)
	assert.True(t, g.Verbose)
	assert.NotNil(t, g.Logger)

	d := NewGlobals(&CLI{Format: "ndjson"})
	require.NotNil(t, d.Config)
	assert.Equal(t, 10, d.Store().MaxLogs())
}

func TestHintForStorage(t *testing.T) {
	assert.Empty(t, hintForStorage(nil, "/logs"))
	assert.Contains(t, hintForStorage(&os.PathError{Op: "mkdir", Path: "/logs", Err: os.ErrPermission}, "/logs"), "Check permissions on /logs")
	assert.Empty(t, hintForStorage(errors.New("boom"), "/logs"))
}

func TestFormatSize(t *testing.T) {
	assert.Equal(t, "512 B", formatSize(512))
	assert.Equal(t, "1.5 KB", formatSize(1536))
	assert.Equal(t, "3.0 MB", formatSize(3*1024*1024))
}

func TestCompletionCmd_Run(t *testing.T) {
	for _, shell := range []string{"bash", "zsh", "fish"} {
		t.Run(shell, func(t *testing.T) {
			globals, stdout, _ := testGlobals(t, "text")

			require.NoError(t, (&CompletionCmd{Shell: shell}).Run(globals))

			out := stdout.String()
			assert.Contains(t, out, "rn-run")
			assert.Contains(t, out, "show-log")
			assert.NotContains(t, out, "xcw")
		})
	}
}
