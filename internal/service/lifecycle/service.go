// Package lifecycle runs database lifecycle commands and journals each one.
package lifecycle

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"sellerctl/internal/domain"
	"sellerctl/internal/pgctl"
)

// ServerController is the subset of *pgctl.Controller the service drives.
type ServerController interface {
	Start(ctx context.Context) error
	Stop(ctx context.Context) error
	Status(ctx context.Context) (pgctl.Status, error)
	Layout() pgctl.Layout
}

// ErrNoJournal is returned by History when the service has no journal.
var ErrNoJournal = errors.New("lifecycle journal unavailable")

// notRunningCode is the exit code recorded for a status probe of a stopped
// server.
const notRunningCode = 3

// Service wraps a ServerController. Journal failures are logged and never
// change the outcome of the command.
type Service struct {
	ctl     ServerController
	journal domain.LifecycleEventRepository // nil disables journaling
	logger  *slog.Logger
	now     func() time.Time
}

// NewService creates a new Service. journal may be nil.
func NewService(ctl ServerController, journal domain.LifecycleEventRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{ctl: ctl, journal: journal, logger: logger, now: time.Now}
}

// Start starts the server.
func (s *Service) Start(ctx context.Context) error {
	return s.run(ctx, domain.ActionStart, func(ctx context.Context) (int, error) {
		err := s.ctl.Start(ctx)
		return ExitCode(err), err
	})
}

// Stop stops the server with a fast shutdown.
func (s *Service) Stop(ctx context.Context) error {
	return s.run(ctx, domain.ActionStop, func(ctx context.Context) (int, error) {
		err := s.ctl.Stop(ctx)
		return ExitCode(err), err
	})
}

// Status probes the server.
func (s *Service) Status(ctx context.Context) (pgctl.Status, error) {
	var st pgctl.Status
	err := s.run(ctx, domain.ActionStatus, func(ctx context.Context) (int, error) {
		var err error
		st, err = s.ctl.Status(ctx)
		if err == nil && !st.Running {
			return notRunningCode, nil
		}
		return ExitCode(err), err
	})
	return st, err
}

// History returns the most recent journaled events, newest first.
func (s *Service) History(ctx context.Context, limit int) ([]domain.LifecycleEvent, error) {
	if s.journal == nil {
		return nil, ErrNoJournal
	}
	return s.journal.List(ctx, limit)
}

func (s *Service) run(ctx context.Context, action domain.LifecycleAction, fn func(context.Context) (int, error)) error {
	dataDir := s.ctl.Layout().DataDir
	started := s.now()
	s.logger.Debug("lifecycle command", "action", action, "data_dir", dataDir)

	code, err := fn(ctx)
	elapsed := s.now().Sub(started)

	level := slog.LevelInfo
	if err != nil {
		level = slog.LevelError
	}
	s.logger.Log(ctx, level, "lifecycle command finished",
		"action", action, "exit_code", code, "duration", elapsed)

	s.record(ctx, domain.LifecycleEvent{
		Action:    action,
		DataDir:   dataDir,
		ExitCode:  code,
		Error:     errorText(err),
		StartedAt: started,
		Duration:  elapsed,
	})
	return err
}

func (s *Service) record(ctx context.Context, e domain.LifecycleEvent) {
	if s.journal == nil {
		return
	}
	// Record even when the command was cancelled.
	ctx = context.WithoutCancel(ctx)
	if err := s.journal.Record(ctx, &e); err != nil {
		s.logger.Warn("lifecycle journal write failed", "action", e.Action, "error", err)
	}
}

// ExitCode returns the process exit code err corresponds to: 0 for nil,
// the code of any error implementing ExitCode() int, 1 otherwise.
func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) {
		return coded.ExitCode()
	}
	return 1
}

func errorText(err error) *string {
	if err == nil {
		return nil
	}
	s := err.Error()
	return &s
}
