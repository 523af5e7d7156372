// Package cli implements the sellerctl command tree.
package cli

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"sellerctl/internal/config"
	internaldb "sellerctl/internal/db"
	"sellerctl/internal/db/repository"
	"sellerctl/internal/domain"
	"sellerctl/internal/pgctl"
	"sellerctl/internal/service/lifecycle"
)

var (
	version = "dev"
	commit  = "none"
)

// Execute runs the CLI and returns the process exit code.
func Execute() int {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run(ctx, os.Args[1:])
}

func run(ctx context.Context, args []string) int {
	rootCmd := newRootCmd()
	rootCmd.SetArgs(args)
	err := rootCmd.ExecuteContext(ctx)
	if err == nil {
		return 0
	}

	var coded interface{ ExitCode() int }
	if errors.As(err, &coded) && coded.ExitCode() != 0 {
		return coded.ExitCode()
	}

	output, _ := rootCmd.PersistentFlags().GetString("output")
	if output == "json" {
		errObj := map[string]interface{}{
			"error": err.Error(),
		}
		var verr *domain.ValidationError
		if errors.As(err, &verr) {
			errObj["code"] = "validation"
		}
		_ = printJSON(os.Stdout, errObj)
	} else {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

// app carries the state resolved once per invocation.
type app struct {
	output  string
	profile string
	envFile string

	cfg    *config.Config
	logger *slog.Logger
}

func newRootCmd() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:           "sellerctl",
		Short:         "Operator CLI for the sales bot database",
		Long:          "Start and stop the local PostgreSQL server, bootstrap the bot schema and admins, and check the deployment's health.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			if err := config.LoadDotEnv(a.envFile); err != nil {
				return fmt.Errorf("load %s: %w", a.envFile, err)
			}

			// Config file is optional
			userCfg, err := LoadUserConfig()
			if err != nil {
				userCfg = emptyUserConfig()
			}
			p, err := userCfg.ActiveProfile(a.profile)
			if err != nil {
				return err
			}

			// Apply precedence: flag > env > profile > default
			if err := exportSettings(cmd.Flags(), p); err != nil {
				return err
			}
			if !cmd.Flags().Changed("output") {
				if v := os.Getenv("SELLERCTL_OUTPUT"); v != "" {
					a.output = v
				} else if p.Output != "" {
					a.output = p.Output
				}
				// Keep getOutputFormat in sync with the resolved value.
				_ = cmd.Root().PersistentFlags().Set("output", a.output)
			}
			return validateOutputFormat(a.output)
		},
	}

	rootCmd.PersistentFlags().StringVarP(&a.output, "output", "o", "table", "Output format (table, json)")
	rootCmd.PersistentFlags().StringVarP(&a.profile, "profile", "p", "", "Config profile to use")
	rootCmd.PersistentFlags().StringVar(&a.envFile, "env-file", ".env", "Environment file loaded before the process environment is read")
	addSettingFlags(rootCmd.PersistentFlags())

	rootCmd.AddCommand(newDBCmd(a))
	rootCmd.AddCommand(newAdminCmd(a))
	rootCmd.AddCommand(newBotCmd(a))
	rootCmd.AddCommand(newHealthCmd(a))
	rootCmd.AddCommand(newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())

	// Shell completions
	rootCmd.AddCommand(newCompletionCmd())

	return rootCmd
}

// config loads the environment configuration on first use and sets up the
// invocation logger.
func (a *app) config() (*config.Config, error) {
	if a.cfg != nil {
		return a.cfg, nil
	}
	cfg, err := config.LoadFromEnv()
	if err != nil {
		return nil, err
	}
	a.logger = newCommandLogger(cfg.SlogLevel())
	for _, w := range cfg.Warnings {
		a.logger.Warn(w)
	}
	a.cfg = cfg
	return cfg, nil
}

// lifecycle builds the journaled lifecycle service. The returned func
// closes the journal.
func (a *app) lifecycle(cmd *cobra.Command) (*lifecycle.Service, func(), error) {
	cfg, err := a.config()
	if err != nil {
		return nil, nil, err
	}
	layout, err := cfg.Layout()
	if err != nil {
		return nil, nil, err
	}

	ctl := pgctl.NewController(layout, pgctl.ExecRunner{}, a.logger)
	if getOutputFormat(cmd) == "json" {
		// stdout is reserved for the JSON document.
		ctl.SetOutput(os.Stderr, os.Stderr)
	}

	var journal domain.LifecycleEventRepository
	closeJournal := func() {}
	jdb, err := internaldb.OpenJournal(cmd.Context(), cfg.JournalPath)
	if err != nil {
		a.logger.Warn("lifecycle journal unavailable", "path", cfg.JournalPath, "error", err)
	} else {
		journal = repository.NewLifecycleEventRepo(jdb)
		closeJournal = func() { _ = jdb.Close() }
	}
	return lifecycle.NewService(ctl, journal, a.logger), closeJournal, nil
}

// openBotDB connects to the bot database.
func (a *app) openBotDB(ctx context.Context) (*sql.DB, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	a.logger.Info("connecting to database", "url", internaldb.MaskURL(cfg.DatabaseURL))
	return internaldb.OpenPostgres(ctx, cfg.DatabaseURL)
}

func newCompletionCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "completion [bash|zsh|fish|powershell]",
		Short: "Generate shell completion scripts",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletion(os.Stdout)
			case "zsh":
				return cmd.Root().GenZshCompletion(os.Stdout)
			case "fish":
				return cmd.Root().GenFishCompletion(os.Stdout, true)
			case "powershell":
				return cmd.Root().GenPowerShellCompletionWithDesc(os.Stdout)
			default:
				return fmt.Errorf("unsupported shell: %s", args[0])
			}
		},
	}
	return cmd
}
