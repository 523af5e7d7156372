package db

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"
	"time"

	"github.com/pressly/goose/v3"
)

// MigrationSet names one directory of embedded migrations together with
// the goose dialect it runs under.
type MigrationSet struct {
	Dir     string
	Dialect goose.Dialect
}

var (
	// BootstrapMigrations create the bot tables the admin and smoke
	// commands rely on.
	BootstrapMigrations = MigrationSet{Dir: "migrations/postgres", Dialect: goose.DialectPostgres}

	// JournalMigrations create the local lifecycle journal.
	JournalMigrations = MigrationSet{Dir: "migrations/journal", Dialect: goose.DialectSQLite3}
)

// MigrationInfo describes one migration and whether it is applied.
type MigrationInfo struct {
	Version   int64      `json:"version"`
	Path      string     `json:"path"`
	Applied   bool       `json:"applied"`
	AppliedAt *time.Time `json:"applied_at,omitempty"`
}

// MigrationResult describes one migration that ran.
type MigrationResult struct {
	Version   int64         `json:"version"`
	Path      string        `json:"path"`
	Direction string        `json:"direction"`
	Duration  time.Duration `json:"duration"`
}

func newProvider(db *sql.DB, set MigrationSet) (*goose.Provider, error) {
	fsys, err := fs.Sub(EmbedMigrations, set.Dir)
	if err != nil {
		return nil, fmt.Errorf("migrations %s: %w", set.Dir, err)
	}
	provider, err := goose.NewProvider(set.Dialect, db, fsys)
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// RunMigrations executes all pending migrations of the set.
func RunMigrations(ctx context.Context, db *sql.DB, set MigrationSet) ([]MigrationResult, error) {
	provider, err := newProvider(db, set)
	if err != nil {
		return nil, err
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return convertResults(results), nil
}

// RollbackMigration reverts the most recently applied migration.
func RollbackMigration(ctx context.Context, db *sql.DB, set MigrationSet) (MigrationResult, error) {
	provider, err := newProvider(db, set)
	if err != nil {
		return MigrationResult{}, err
	}
	result, err := provider.Down(ctx)
	if err != nil {
		return MigrationResult{}, fmt.Errorf("goose down: %w", err)
	}
	return convertResult(result), nil
}

// ResetMigrations reverts every applied migration, dropping the tables they
// created, and then applies them all again.
func ResetMigrations(ctx context.Context, db *sql.DB, set MigrationSet) ([]MigrationResult, error) {
	provider, err := newProvider(db, set)
	if err != nil {
		return nil, err
	}
	down, err := provider.DownTo(ctx, 0)
	if err != nil {
		return nil, fmt.Errorf("goose down to 0: %w", err)
	}
	up, err := provider.Up(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose up: %w", err)
	}
	return append(convertResults(down), convertResults(up)...), nil
}

// MigrationStatus lists every migration of the set in version order.
func MigrationStatus(ctx context.Context, db *sql.DB, set MigrationSet) ([]MigrationInfo, error) {
	provider, err := newProvider(db, set)
	if err != nil {
		return nil, err
	}
	statuses, err := provider.Status(ctx)
	if err != nil {
		return nil, fmt.Errorf("goose status: %w", err)
	}
	infos := make([]MigrationInfo, 0, len(statuses))
	for _, s := range statuses {
		info := MigrationInfo{
			Version: s.Source.Version,
			Path:    s.Source.Path,
			Applied: s.State == goose.StateApplied,
		}
		if info.Applied && !s.AppliedAt.IsZero() {
			at := s.AppliedAt
			info.AppliedAt = &at
		}
		infos = append(infos, info)
	}
	return infos, nil
}

// PendingMigrations returns how many migrations of the set are not applied.
func PendingMigrations(ctx context.Context, db *sql.DB, set MigrationSet) (int, error) {
	infos, err := MigrationStatus(ctx, db, set)
	if err != nil {
		return 0, err
	}
	pending := 0
	for _, info := range infos {
		if !info.Applied {
			pending++
		}
	}
	return pending, nil
}

func convertResults(results []*goose.MigrationResult) []MigrationResult {
	out := make([]MigrationResult, 0, len(results))
	for _, r := range results {
		out = append(out, convertResult(r))
	}
	return out
}

func convertResult(r *goose.MigrationResult) MigrationResult {
	if r == nil || r.Source == nil {
		return MigrationResult{}
	}
	return MigrationResult{
		Version:   r.Source.Version,
		Path:      r.Source.Path,
		Direction: r.Direction,
		Duration:  r.Duration,
	}
}
