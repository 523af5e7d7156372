package cli

import "fmt"

// ExitError signals a non-zero exit code without printing an extra error
// message. The command is expected to have already written its own output,
// e.g. "db status" for a stopped server or "health" with failed checks.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit code %d", e.Code)
}

// ExitCode returns the exit code. Execute checks for this interface on
// returned errors to tell a handled non-zero exit from an unexpected error.
func (e *ExitError) ExitCode() int {
	return e.Code
}
