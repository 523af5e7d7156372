package pgctl

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strings"
)

// Invocation describes one synchronous run of an external program.
type Invocation struct {
	Path   string
	Args   []string
	Env    []string // full environment; nil would inherit, so callers always set it
	Stdout io.Writer
	Stderr io.Writer
}

// String renders the invocation as a command line for logs and errors.
func (inv Invocation) String() string {
	if len(inv.Args) == 0 {
		return inv.Path
	}
	return inv.Path + " " + strings.Join(inv.Args, " ")
}

// Runner executes external programs. ExecRunner is the production
// implementation; tests substitute fakes.
type Runner interface {
	Run(ctx context.Context, inv Invocation) error
}

// ExitError reports that the external program ran and exited non-zero.
// The program's own diagnostics have already been written to the
// invocation's Stderr; ExitError only carries the code.
type ExitError struct {
	Command string
	Code    int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s: exit status %d", e.Command, e.Code)
}

// ExitCode returns the program's exit code so the CLI can propagate it.
func (e *ExitError) ExitCode() int { return e.Code }

// ExecRunner runs programs with os/exec.
type ExecRunner struct{}

// Run starts the program and waits for it. Context cancellation kills it.
func (ExecRunner) Run(ctx context.Context, inv Invocation) error {
	cmd := exec.CommandContext(ctx, inv.Path, inv.Args...) //nolint:gosec // path comes from the resolved layout
	cmd.Env = inv.Env
	cmd.Stdout = inv.Stdout
	cmd.Stderr = inv.Stderr

	err := cmd.Run()
	if err == nil {
		return nil
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) && exitErr.ExitCode() > 0 {
		return &ExitError{Command: inv.String(), Code: exitErr.ExitCode()}
	}
	return fmt.Errorf("run %s: %w", inv.Path, err)
}
