package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	internaldb "sellerctl/internal/db"
	"sellerctl/internal/health"
	"sellerctl/internal/pgctl"
	"sellerctl/internal/telegram"
)

func newHealthCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "health",
		Short: "Check configuration, server, database and bot token",
		Long:  "Run every health check and print a checklist. Exits 1 when any check fails; warnings do not fail.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			layout, err := cfg.Layout()
			if err != nil {
				return err
			}

			ctl := pgctl.NewController(layout, pgctl.ExecRunner{}, a.logger)
			ctl.SetOutput(io.Discard, io.Discard)

			var opened []io.Closer
			defer func() {
				for _, c := range opened {
					_ = c.Close()
				}
			}()
			connect := func(ctx context.Context) (health.Database, error) {
				db, err := internaldb.OpenPostgres(ctx, cfg.DatabaseURL)
				if err != nil {
					return nil, err
				}
				opened = append(opened, db)
				return health.SQLDatabase{DB: db}, nil
			}

			bot := telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, nil)
			report, err := health.NewDoctor(cfg, layout, ctl, connect, bot, a.logger).Run(cmd.Context())
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				if err := printJSON(os.Stdout, report); err != nil {
					return err
				}
			} else {
				printChecklist(os.Stdout, report)
			}
			if !report.OK {
				return &ExitError{Code: 1}
			}
			return nil
		},
	}
}

// printChecklist prints check results as a human-readable checklist.
func printChecklist(w io.Writer, report health.Report) {
	for _, r := range report.Checks {
		_, _ = fmt.Fprintf(w, "[%-4s]  %-14s  %s\n", strings.ToUpper(string(r.Status)), r.Name, r.Message)
	}
	_, _ = fmt.Fprintln(w)
	if report.OK {
		_, _ = fmt.Fprintln(w, "All checks passed.")
		return
	}
	_, _ = fmt.Fprintln(w, "Some checks failed.")
}
