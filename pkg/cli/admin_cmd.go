package cli

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"sellerctl/internal/db/repository"
	"sellerctl/internal/domain"
	"sellerctl/internal/service/bootstrap"
)

func newAdminCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "admin",
		Short: "Manage bot administrators",
	}

	cmd.AddCommand(newAdminCreateCmd(a))
	cmd.AddCommand(newAdminListCmd(a))

	return cmd
}

func newAdminCreateCmd(a *app) *cobra.Command {
	var role string

	cmd := &cobra.Command{
		Use:   "create [TELEGRAM_ID]",
		Short: "Register a Telegram user as bot administrator",
		Long:  "Register a Telegram user as bot administrator. Without an argument the ID is read from standard input.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rawID := ""
			if len(args) == 1 {
				rawID = args[0]
			} else {
				var err error
				rawID, err = promptLine(cmd.InOrStdin(), os.Stderr, "Telegram ID: ")
				if err != nil {
					return err
				}
			}
			// Reject bad input before touching the database.
			if _, err := domain.ParseTelegramID(rawID); err != nil {
				return err
			}
			if _, err := domain.ParseAdminRole(role); err != nil {
				return err
			}

			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			svc := bootstrap.NewAdminService(repository.NewAdminRepo(db), a.logger)
			admin, err := svc.CreateFirstAdmin(cmd.Context(), rawID, role)
			var conflict *domain.ConflictError
			if errors.As(err, &conflict) {
				// An existing admin is not a failure.
				a.logger.Warn("admin not created", "reason", conflict.Message)
				if getOutputFormat(cmd) == "json" {
					return printJSON(os.Stdout, map[string]interface{}{"created": false, "message": conflict.Message})
				}
				_, _ = fmt.Fprintf(os.Stdout, "Warning: %s\n", conflict.Message)
				return nil
			}
			if err != nil {
				return err
			}

			if getOutputFormat(cmd) == "json" {
				return printJSON(os.Stdout, map[string]interface{}{
					"created":     true,
					"telegram_id": admin.TelegramID,
					"role":        admin.Role,
				})
			}
			_, _ = fmt.Fprintf(os.Stdout, "Admin %d created with role %s\n", admin.TelegramID, admin.Role)
			return nil
		},
	}

	cmd.Flags().StringVar(&role, "role", string(domain.RoleOwner), "Admin role (owner, admin, editor, manager)")

	return cmd
}

func newAdminListCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List bot administrators",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			db, err := a.openBotDB(cmd.Context())
			if err != nil {
				return err
			}
			defer db.Close() //nolint:errcheck

			admins, err := bootstrap.NewAdminService(repository.NewAdminRepo(db), a.logger).List(cmd.Context())
			if err != nil {
				return err
			}
			if getOutputFormat(cmd) == "json" {
				out := make([]map[string]interface{}, 0, len(admins))
				for _, ad := range admins {
					out = append(out, map[string]interface{}{
						"telegram_id": ad.TelegramID,
						"role":        ad.Role,
						"created_at":  ad.CreatedAt,
					})
				}
				return printJSON(os.Stdout, out)
			}
			rows := make([][]string, 0, len(admins))
			for _, ad := range admins {
				rows = append(rows, []string{
					strconv.FormatInt(ad.TelegramID, 10), string(ad.Role), ad.CreatedAt.Local().Format(time.DateTime),
				})
			}
			printTable(os.Stdout, []string{"telegram_id", "role", "created_at"}, rows)
			return nil
		},
	}
}

// promptLine reads one line from in. The prompt is shown only when in is
// an interactive terminal.
func promptLine(in io.Reader, prompt io.Writer, label string) (string, error) {
	if f, ok := in.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		_, _ = fmt.Fprint(prompt, label)
	}
	line, err := bufio.NewReader(in).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read telegram id: %w", err)
	}
	// An empty line is rejected by domain.ParseTelegramID.
	return strings.TrimSpace(line), nil
}
