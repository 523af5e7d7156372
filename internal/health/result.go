// Package health implements the sellerctl doctor: a fixed list of checks
// covering configuration, the local server, the bot database and the
// Telegram bot token.
package health

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass Status = "pass"
	StatusWarn Status = "warn"
	StatusFail Status = "fail"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single health check.
type Result struct {
	Name    string `json:"name"`
	Status  Status `json:"status"`
	Message string `json:"message"`
}

// Pass creates a passing check result.
func Pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

// Warn creates a warning check result. Warnings do not fail the report.
func Warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

// Fail creates a failing check result.
func Fail(name, message string) Result {
	return Result{Name: name, Status: StatusFail, Message: message}
}

// Skip creates a skipped check result, used when a prerequisite failed.
func Skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// Report is the ordered outcome of a doctor run.
type Report struct {
	Checks []Result `json:"checks"`
	OK     bool     `json:"ok"`
}

func newReport(results []Result) Report {
	ok := true
	for _, r := range results {
		if r.Status == StatusFail {
			ok = false
		}
	}
	return Report{Checks: results, OK: ok}
}
