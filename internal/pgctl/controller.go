// Package pgctl starts, stops and probes a local PostgreSQL server through
// its own process manager, pg_ctl. Every operation targets one fixed Layout
// and runs a single synchronous pg_ctl invocation. There is no retry and no
// readiness polling: the outcome is whatever pg_ctl reports, and its output
// reaches the operator unmodified.
package pgctl

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
)

// ErrInstallationRoot is returned, wrapped, when the installation root is
// missing. No pg_ctl command is issued in that case.
var ErrInstallationRoot = errors.New("installation root not found")

// statusNotRunning is pg_ctl's exit code for "no server running".
const statusNotRunning = 3

// Status is the result of a status probe.
type Status struct {
	Running bool
	Output  string
}

// Controller drives pg_ctl against a single Layout.
type Controller struct {
	layout  Layout
	runner  Runner
	logger  *slog.Logger
	environ func() []string
	stdout  io.Writer
	stderr  io.Writer
}

// NewController returns a Controller writing pg_ctl output to the process's
// stdout and stderr. A nil logger discards log records.
func NewController(layout Layout, runner Runner, logger *slog.Logger) *Controller {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Controller{
		layout:  layout,
		runner:  runner,
		logger:  logger,
		environ: os.Environ,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
}

// SetOutput redirects pg_ctl's stdout and stderr.
func (c *Controller) SetOutput(stdout, stderr io.Writer) {
	c.stdout = stdout
	c.stderr = stderr
}

// SetEnviron replaces the source of the inherited environment.
func (c *Controller) SetEnviron(environ func() []string) {
	c.environ = environ
}

// Layout returns the layout the controller operates on.
func (c *Controller) Layout() Layout { return c.layout }

// Start creates the socket directory if needed and runs
//
//	pg_ctl -D <data> -l <log> -o "-k <socketdir>" start
func (c *Controller) Start(ctx context.Context) error {
	if err := os.MkdirAll(c.layout.SocketDir, 0o700); err != nil {
		return fmt.Errorf("create socket directory: %w", err)
	}
	return c.pgCtl(ctx, c.stdout,
		"-D", c.layout.DataDir,
		"-l", c.layout.LogFile,
		"-o", socketOption(c.layout.SocketDir),
		"start",
	)
}

// Stop runs a fast shutdown: active connections are dropped and no
// checkpoint wait happens. It does not check whether a server is running
// first, so stopping a stopped server fails with pg_ctl's exit code.
func (c *Controller) Stop(ctx context.Context) error {
	return c.pgCtl(ctx, c.stdout, "-D", c.layout.DataDir, "-m", "fast", "stop")
}

// Status runs pg_ctl status. A server that is not running is reported as
// Running=false rather than an error.
func (c *Controller) Status(ctx context.Context) (Status, error) {
	var buf bytes.Buffer
	err := c.pgCtl(ctx, io.MultiWriter(&buf, c.stdout), "-D", c.layout.DataDir, "status")
	if err == nil {
		return Status{Running: true, Output: buf.String()}, nil
	}
	var exitErr *ExitError
	if errors.As(err, &exitErr) && exitErr.Code == statusNotRunning {
		return Status{Running: false, Output: buf.String()}, nil
	}
	return Status{Output: buf.String()}, err
}

func (c *Controller) pgCtl(ctx context.Context, stdout io.Writer, args ...string) error {
	env := BuildEnv(c.environ(), c.layout)
	if err := c.checkRoot(); err != nil {
		return err
	}

	inv := Invocation{
		Path:   c.layout.PgCtl(),
		Args:   args,
		Env:    env,
		Stdout: stdout,
		Stderr: c.stderr,
	}
	c.logger.Debug("running pg_ctl", "command", inv.String())
	return c.runner.Run(ctx, inv)
}

func (c *Controller) checkRoot() error {
	info, err := os.Stat(c.layout.Root)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", ErrInstallationRoot, c.layout.Root)
		}
		return fmt.Errorf("stat installation root: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%w: %s is not a directory", ErrInstallationRoot, c.layout.Root)
	}
	return nil
}
