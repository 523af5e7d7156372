package cli

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sellerctl/internal/config"
	"sellerctl/internal/domain"
	"sellerctl/internal/telegram"
)

func newBotCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "bot",
		Short: "Manage the Telegram bot registration",
	}

	cmd.AddCommand(newBotWebhookCmd(a))

	return cmd
}

func newBotWebhookCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "webhook",
		Short: "Inspect, set or remove the bot webhook",
		Long:  "Inspect, set or remove the bot webhook. The bot only receives updates by polling while no webhook is set.",
	}

	cmd.AddCommand(newBotWebhookInfoCmd(a))
	cmd.AddCommand(newBotWebhookRemoveCmd(a))
	cmd.AddCommand(newBotWebhookSetCmd(a))

	return cmd
}

// botClient returns a Bot API client for the configured token.
func (a *app) botClient() (*telegram.Client, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}
	if config.IsPlaceholder("TELEGRAM_BOT_TOKEN", cfg.TelegramBotToken) {
		return nil, domain.ErrValidation("TELEGRAM_BOT_TOKEN is not set")
	}
	return telegram.NewClient(cfg.TelegramAPIURL, cfg.TelegramBotToken, nil), nil
}

func newBotWebhookInfoCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the current webhook configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.botClient()
			if err != nil {
				return err
			}
			info, err := client.GetWebhookInfo(cmd.Context())
			if err != nil {
				return err
			}
			a.logger.Info("webhook info", "url", info.URL, "pending_updates", info.PendingUpdateCount)
			return printWebhookInfo(cmd, info)
		},
	}
}

func newBotWebhookRemoveCmd(a *app) *cobra.Command {
	var keepPending bool

	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove the webhook so the bot can poll for updates",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			client, err := a.botClient()
			if err != nil {
				return err
			}
			if err := client.DeleteWebhook(cmd.Context(), !keepPending); err != nil {
				return err
			}
			a.logger.Info("webhook removed", "drop_pending_updates", !keepPending)
			return confirmWebhook(cmd, client)
		},
	}

	cmd.Flags().BoolVar(&keepPending, "keep-pending", false, "Keep updates queued while the webhook was set")

	return cmd
}

func newBotWebhookSetCmd(a *app) *cobra.Command {
	var (
		secret      string
		keepPending bool
	)

	cmd := &cobra.Command{
		Use:   "set [URL]",
		Short: "Point the bot at an HTTPS webhook endpoint",
		Long:  "Point the bot at an HTTPS webhook endpoint. Without an argument TELEGRAM_WEBHOOK_URL is used.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.config()
			if err != nil {
				return err
			}
			target := cfg.TelegramWebhookURL
			if len(args) == 1 {
				target = args[0]
			}
			if err := validateWebhookURL(target); err != nil {
				return err
			}
			if !cmd.Flags().Changed("secret") {
				secret = cfg.TelegramWebhookSecret
			}

			client, err := a.botClient()
			if err != nil {
				return err
			}
			err = client.SetWebhook(cmd.Context(), telegram.WebhookOptions{
				URL:                target,
				SecretToken:        secret,
				DropPendingUpdates: !keepPending,
			})
			if err != nil {
				return err
			}
			if secret == "" {
				a.logger.Warn("webhook set without a secret token; requests to it are not authenticated")
			}
			a.logger.Info("webhook set", "url", target)
			return confirmWebhook(cmd, client)
		},
	}

	cmd.Flags().StringVar(&secret, "secret", "", "Secret token Telegram sends with every update (default $TELEGRAM_WEBHOOK_SECRET)")
	cmd.Flags().BoolVar(&keepPending, "keep-pending", false, "Keep updates queued before the webhook was set")

	return cmd
}

func validateWebhookURL(raw string) error {
	if raw == "" {
		return domain.ErrValidation("webhook url is required (argument or TELEGRAM_WEBHOOK_URL)")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return domain.ErrValidation("invalid webhook url %q", raw)
	}
	if u.Scheme != "https" {
		return domain.ErrValidation("webhook url must use https, got %q", u.Scheme)
	}
	return nil
}

// confirmWebhook re-reads the webhook after a change and prints it.
func confirmWebhook(cmd *cobra.Command, client *telegram.Client) error {
	ctx, cancel := context.WithTimeout(cmd.Context(), 10*time.Second)
	defer cancel()
	info, err := client.GetWebhookInfo(ctx)
	if err != nil {
		return fmt.Errorf("confirm webhook: %w", err)
	}
	return printWebhookInfo(cmd, info)
}

func printWebhookInfo(cmd *cobra.Command, info telegram.WebhookInfo) error {
	if getOutputFormat(cmd) == "json" {
		return printJSON(os.Stdout, info)
	}

	webhook := info.URL
	if webhook == "" {
		webhook = "none (polling)"
	}
	allowed := "all"
	if len(info.AllowedUpdates) > 0 {
		allowed = strings.Join(info.AllowedUpdates, ",")
	}
	rows := [][]string{
		{"url", webhook},
		{"pending_updates", strconv.Itoa(info.PendingUpdateCount)},
		{"max_connections", strconv.Itoa(info.MaxConnections)},
		{"allowed_updates", allowed},
	}
	if info.LastErrorDate != 0 {
		rows = append(rows, []string{
			"last_error",
			time.Unix(info.LastErrorDate, 0).Local().Format(time.DateTime) + " " + info.LastErrorMessage,
		})
	}
	printTable(os.Stdout, []string{"field", "value"}, rows)
	return nil
}
