package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// captureStdout redirects os.Stdout to a pipe and returns a function
// that restores stdout and returns the captured output.
// Uses a goroutine to read concurrently, avoiding pipe buffer deadlocks.
func captureStdout(t *testing.T) func() string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatal(err)
	}
	os.Stdout = w

	// Read concurrently to avoid pipe buffer deadlock on large outputs
	var buf bytes.Buffer
	done := make(chan struct{})
	go func() {
		_, _ = buf.ReadFrom(r)
		close(done)
	}()

	return func() string {
		_ = w.Close()
		<-done
		os.Stdout = old
		return buf.String()
	}
}

// testEnv is an isolated environment with a fake PostgreSQL installation.
type testEnv struct {
	home      string
	root      string
	dataDir   string
	logFile   string
	socketDir string
	journal   string
	argsLog   string // every fake pg_ctl invocation appends its args here
}

// configEnvVars are every variable the CLI reads.
var configEnvVars = []string{
	"DATABASE_URL", "DATABASE_URL_SYNC", "TELEGRAM_BOT_TOKEN", "TELEGRAM_API_URL",
	"TELEGRAM_WEBHOOK_URL", "TELEGRAM_WEBHOOK_SECRET",
	"ADMIN_IDS", "PG_ROOT", "PG_DATA_DIR", "PG_LOG_FILE", "PG_SOCKET_DIR",
	"SELLERCTL_JOURNAL", "SELLERCTL_OUTPUT", "LOG_LEVEL", "ENV", "FAKE_EXIT", "FAKE_LOG",
}

// newTestEnv isolates HOME and the environment so no real config is loaded,
// and installs a fake pg_ctl that records its arguments and exits with
// $FAKE_EXIT.
func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("fake pg_ctl is a shell script")
	}
	for _, key := range configEnvVars {
		t.Setenv(key, "")
	}

	dir := t.TempDir()
	env := &testEnv{
		home:      filepath.Join(dir, "home"),
		root:      filepath.Join(dir, "pg"),
		dataDir:   filepath.Join(dir, "pgdata"),
		logFile:   filepath.Join(dir, "logs", "postgres.log"),
		socketDir: filepath.Join(dir, "run", "postgresql"),
		journal:   filepath.Join(dir, "state", "journal.sqlite"),
		argsLog:   filepath.Join(dir, "pg_ctl.args"),
	}
	require.NoError(t, os.MkdirAll(env.home, 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(env.root, "bin"), 0o755))
	script := "#!/bin/sh\n" +
		"echo \"$*\" >> \"$FAKE_LOG\"\n" +
		"echo \"fake pg_ctl: $*\"\n" +
		"exit ${FAKE_EXIT:-0}\n"
	require.NoError(t, os.WriteFile(filepath.Join(env.root, "bin", "pg_ctl"), []byte(script), 0o755))

	t.Setenv("HOME", env.home)
	t.Setenv("PG_ROOT", env.root)
	t.Setenv("PG_DATA_DIR", env.dataDir)
	t.Setenv("PG_LOG_FILE", env.logFile)
	t.Setenv("PG_SOCKET_DIR", env.socketDir)
	t.Setenv("SELLERCTL_JOURNAL", env.journal)
	t.Setenv("FAKE_LOG", env.argsLog)
	t.Setenv("LOG_LEVEL", "error")
	return env
}

// invocations returns the recorded pg_ctl argument lines.
func (e *testEnv) invocations(t *testing.T) []string {
	t.Helper()
	data, err := os.ReadFile(e.argsLog)
	if os.IsNotExist(err) {
		return nil
	}
	require.NoError(t, err)
	return strings.Split(strings.TrimRight(string(data), "\n"), "\n")
}

// runCLI executes the command tree with args and returns the exit code and
// captured stdout.
func runCLI(t *testing.T, args ...string) (int, string) {
	t.Helper()
	done := captureStdout(t)
	code := run(context.Background(), args)
	return code, done()
}
