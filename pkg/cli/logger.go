package cli

import (
	"io"
	"log/slog"
	"os"

	"golang.org/x/term"

	"sellerctl/internal/domain"
)

// newCommandLogger creates the logger for one CLI invocation. When stderr is
// a terminal it uses slog.TextHandler, otherwise slog.JSONHandler so piped
// output stays machine-parseable. Every record carries the invocation's
// run_id.
func newCommandLogger(level slog.Level) *slog.Logger {
	return newLoggerFor(os.Stderr, term.IsTerminal(int(os.Stderr.Fd())), level)
}

func newLoggerFor(w io.Writer, text bool, level slog.Level) *slog.Logger {
	var handler slog.Handler
	options := &slog.HandlerOptions{Level: level}
	if text {
		handler = slog.NewTextHandler(w, options)
	} else {
		handler = slog.NewJSONHandler(w, options)
	}
	return slog.New(handler).With("run_id", domain.NewID())
}
