package cli

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	internaldb "sellerctl/internal/db"
	"sellerctl/internal/db/repository"
	"sellerctl/internal/domain"
	"sellerctl/internal/service/bootstrap"
	"sellerctl/internal/service/lifecycle"
)

func newDBCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Control the local database server and the bot schema",
	}

	cmd.AddCommand(newDBStartCmd(a))
	cmd.AddCommand(newDBStopCmd(a))
	cmd.AddCommand(newDBStatusCmd(a))
	cmd.AddCommand(newDBInitCmd(a))
	cmd.AddCommand(newDBMigrateCmd(a))
	cmd.AddCommand(newDBResetCmd(a))
	cmd.AddCommand(newDBSmokeCmd(a))
	cmd.AddCommand(newDBHistoryCmd(a))

	return cmd
}

// lifecycleResult is the JSON document printed by start and stop.
type lifecycleResult struct {
	Action   string `json:"action"`
	OK       bool   `json:"ok"`
	ExitCode int    `json:"exit_code"`
	DataDir  string `json:"data_dir"`
	Error    string `json:"error,omitempty"`
}

func newLifecycleCmd(a *app, action domain.LifecycleAction, short string, op func(*lifecycle.Service, *cobra.Command) error) *cobra.Command {
	return &cobra.Command{
		Use:   string(action),
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeJournal, err := a.lifecycle(cmd)
			if err != nil {
				return err
			}
			defer closeJournal()

			err = op(svc, cmd)
			if getOutputFormat(cmd) == "json" {
				res := lifecycleResult{
					Action:   string(action),
					OK:       err == nil,
					ExitCode: lifecycle.ExitCode(err),
					DataDir:  a.cfg.Server.DataDir,
				}
				if err != nil {
					res.Error = err.Error()
				}
				if perr := printJSON(os.Stdout, res); perr != nil {
					return perr
				}
				if err != nil {
					// The document above already reports the failure.
					return &ExitError{Code: res.ExitCode}
				}
			}
			return err
		},
	}
}

func newDBStartCmd(a *app) *cobra.Command {
	return newLifecycleCmd(a, domain.ActionStart, "Start the local database server",
		func(svc *lifecycle.Service, cmd *cobra.Command) error { return svc.Start(cmd.Context()) })
}

func newDBStopCmd(a *app) *cobra.Command {
	return newLifecycleCmd(a, domain.ActionStop, "Stop the local database server (fast shutdown)",
		func(svc *lifecycle.Service, cmd *cobra.Command) error { return svc.Stop(cmd.Context()) })
}

func newDBStatusCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Report whether the local database server is running (exit 3 when stopped)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeJournal, err := a.lifecycle(cmd)
			if err != nil {
				return err
			}
			defer closeJournal()

			st, err := svc.Status(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				if err := printJSON(os.Stdout, map[string]interface{}{
					"running":  st.Running,
					"data_dir": a.cfg.Server.DataDir,
				}); err != nil {
					return err
				}
			}
			if !st.Running {
				return &ExitError{Code: 3}
			}
			return nil
		},
	}
}

func newDBInitCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Apply pending bootstrap migrations to the bot database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			results, err := internaldb.RunMigrations(cmd.Context(), db, internaldb.BootstrapMigrations)
			if err != nil {
				return err
			}
			a.logger.Info("bootstrap migrations applied", "count", len(results))
			return printMigrationResults(cmd, results, "Schema is up to date.")
		},
	}
}

func newDBMigrateCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Inspect or roll back bootstrap migrations",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "List bootstrap migrations and whether they are applied",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			infos, err := internaldb.MigrationStatus(cmd.Context(), db, internaldb.BootstrapMigrations)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, infos)
			}
			rows := make([][]string, 0, len(infos))
			for _, info := range infos {
				appliedAt := ""
				if info.AppliedAt != nil {
					appliedAt = info.AppliedAt.Local().Format(time.DateTime)
				}
				rows = append(rows, []string{
					strconv.FormatInt(info.Version, 10), info.Path, strconv.FormatBool(info.Applied), appliedAt,
				})
			}
			printTable(os.Stdout, []string{"version", "path", "applied", "applied_at"}, rows)
			return nil
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recently applied bootstrap migration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			res, err := internaldb.RollbackMigration(cmd.Context(), db, internaldb.BootstrapMigrations)
			if err != nil {
				return err
			}
			return printMigrationResults(cmd, []internaldb.MigrationResult{res}, "")
		},
	})

	return cmd
}

func newDBResetCmd(a *app) *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Drop every bootstrap table and recreate the schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if !yes {
				return domain.ErrValidation("refusing to drop the bot tables without --yes")
			}
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			a.logger.Warn("dropping bootstrap tables", "url", internaldb.MaskURL(a.cfg.DatabaseURL))
			results, err := internaldb.ResetMigrations(cmd.Context(), db, internaldb.BootstrapMigrations)
			if err != nil {
				return err
			}
			return printMigrationResults(cmd, results, "")
		},
	}

	cmd.Flags().BoolVar(&yes, "yes", false, "Confirm that all bot data will be deleted")

	return cmd
}

func newDBSmokeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "smoke",
		Short: "Ensure the smoke-test user exists in the bot database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			svc := bootstrap.NewSmokeService(repository.NewUserRepo(db), a.logger)
			user, created, err := svc.EnsureTestUser(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{
					"id":          user.ID,
					"telegram_id": user.TelegramID,
					"created":     created,
				})
			}
			verb := "already present"
			if created {
				verb = "created"
			}
			_, _ = fmt.Fprintf(os.Stdout, "Test user %d %s (id %d)\n", user.TelegramID, verb, user.ID)
			return nil
		},
	}
}

func newDBHistoryCmd(a *app) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show recent lifecycle commands from the local journal",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			svc, closeJournal, err := a.lifecycle(cmd)
			if err != nil {
				return err
			}
			defer closeJournal()

			events, err := svc.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, historyJSON(events))
			}
			rows := make([][]string, 0, len(events))
			for _, e := range events {
				errText := ""
				if e.Error != nil {
					errText = *e.Error
				}
				rows = append(rows, []string{
					e.StartedAt.Local().Format(time.DateTime),
					string(e.Action),
					strconv.FormatBool(e.Succeeded()),
					strconv.Itoa(e.ExitCode),
					e.Duration.Round(time.Millisecond).String(),
					e.DataDir,
					errText,
				})
			}
			printTable(os.Stdout, []string{"time", "action", "ok", "exit", "duration", "data_dir", "error"}, rows)
			return nil
		},
	}

	cmd.Flags().IntVar(&limit, "limit", 20, "Maximum number of events to show")

	return cmd
}

type historyEvent struct {
	ID         string    `json:"id"`
	Action     string    `json:"action"`
	OK         bool      `json:"ok"`
	DataDir    string    `json:"data_dir"`
	ExitCode   int       `json:"exit_code"`
	Error      *string   `json:"error,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	DurationMs int64     `json:"duration_ms"`
}

func historyJSON(events []domain.LifecycleEvent) []historyEvent {
	out := make([]historyEvent, 0, len(events))
	for _, e := range events {
		out = append(out, historyEvent{
			ID:         e.ID,
			Action:     string(e.Action),
			OK:         e.Succeeded(),
			DataDir:    e.DataDir,
			ExitCode:   e.ExitCode,
			Error:      e.Error,
			StartedAt:  e.StartedAt,
			DurationMs: e.Duration.Milliseconds(),
		})
	}
	return out
}

func printMigrationResults(cmd *cobra.Command, results []internaldb.MigrationResult, emptyMsg string) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, results)
	}
	if len(results) == 0 && emptyMsg != "" {
		_, _ = fmt.Fprintln(os.Stdout, emptyMsg)
		return nil
	}
	rows := make([][]string, 0, len(results))
	for _, r := range results {
		rows = append(rows, []string{
			strconv.FormatInt(r.Version, 10), r.Path, r.Direction, r.Duration.Round(time.Millisecond).String(),
		})
	}
	printTable(os.Stdout, []string{"version", "path", "direction", "duration"}, rows)
	return nil
}
