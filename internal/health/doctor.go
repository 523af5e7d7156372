package health

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"sellerctl/internal/config"
	internaldb "sellerctl/internal/db"
	"sellerctl/internal/pgctl"
	"sellerctl/internal/telegram"
)

// Check names, in report order.
const (
	CheckConfig       = "config"
	CheckInstallation = "installation"
	CheckServer       = "server"
	CheckDatabase     = "database"
	CheckMigrations   = "migrations"
	CheckBotToken     = "bot token"
)

// maxConcurrentChecks bounds how many checks run at once.
const maxConcurrentChecks = 4

// ServerProber reports whether the local server is running.
type ServerProber interface {
	Status(ctx context.Context) (pgctl.Status, error)
}

// Database is the bot database as seen by the doctor.
type Database interface {
	Ping(ctx context.Context) error
	PendingMigrations(ctx context.Context) (int, error)
}

// BotIdentifier resolves the bot behind the configured token.
type BotIdentifier interface {
	GetMe(ctx context.Context) (telegram.BotInfo, error)
}

// Doctor runs the health checks.
type Doctor struct {
	cfg     *config.Config
	layout  pgctl.Layout
	server  ServerProber
	connect func(ctx context.Context) (Database, error)
	bot     BotIdentifier
	logger  *slog.Logger
}

// NewDoctor creates a Doctor. connect is called at most once per Run.
func NewDoctor(cfg *config.Config, layout pgctl.Layout, server ServerProber,
	connect func(ctx context.Context) (Database, error), bot BotIdentifier, logger *slog.Logger) *Doctor {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Doctor{cfg: cfg, layout: layout, server: server, connect: connect, bot: bot, logger: logger}
}

// Run executes every check concurrently and returns the results in fixed
// order. Individual check failures are results, not errors; Run only
// fails when ctx is cancelled.
func (d *Doctor) Run(ctx context.Context) (Report, error) {
	connect := sync.OnceValues(func() (Database, error) { return d.connect(ctx) })

	checks := []func(context.Context) Result{
		d.checkConfig,
		d.checkInstallation,
		d.checkServer,
		func(ctx context.Context) Result { return d.checkDatabase(ctx, connect) },
		func(ctx context.Context) Result { return d.checkMigrations(ctx, connect) },
		d.checkBotToken,
	}

	results := make([]Result, len(checks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentChecks)
	for i, check := range checks {
		g.Go(func() error {
			results[i] = check(gctx)
			d.logger.Debug("health check", "name", results[i].Name, "status", results[i].Status)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return Report{}, err
	}
	if err := ctx.Err(); err != nil {
		return Report{}, fmt.Errorf("health checks: %w", err)
	}
	return newReport(results), nil
}

func (d *Doctor) checkConfig(context.Context) Result {
	var missing []string
	if config.IsPlaceholder("TELEGRAM_BOT_TOKEN", d.cfg.TelegramBotToken) {
		missing = append(missing, "TELEGRAM_BOT_TOKEN")
	}
	if config.IsPlaceholder("DATABASE_URL", d.cfg.DatabaseURL) {
		missing = append(missing, "DATABASE_URL")
	}
	if len(missing) > 0 {
		return Fail(CheckConfig, fmt.Sprintf("not set: %v", missing))
	}
	if ids, _ := d.cfg.AdminIDList(); len(ids) == 0 {
		return Warn(CheckConfig, "ADMIN_IDS is empty")
	}
	return Pass(CheckConfig, "required settings present")
}

func (d *Doctor) checkInstallation(context.Context) Result {
	path := d.layout.PgCtl()
	info, err := os.Stat(path)
	switch {
	case err != nil:
		return Fail(CheckInstallation, fmt.Sprintf("%s not found (check PG_ROOT)", path))
	case info.IsDir():
		return Fail(CheckInstallation, fmt.Sprintf("%s is a directory", path))
	case info.Mode().Perm()&0o111 == 0:
		return Fail(CheckInstallation, fmt.Sprintf("%s is not executable", path))
	}
	return Pass(CheckInstallation, path)
}

func (d *Doctor) checkServer(ctx context.Context) Result {
	st, err := d.server.Status(ctx)
	if err != nil {
		return Fail(CheckServer, err.Error())
	}
	if !st.Running {
		return Warn(CheckServer, fmt.Sprintf("not running (data dir %s)", d.layout.DataDir))
	}
	return Pass(CheckServer, fmt.Sprintf("running (data dir %s)", d.layout.DataDir))
}

func (d *Doctor) checkDatabase(ctx context.Context, connect func() (Database, error)) Result {
	db, err := connect()
	if err != nil {
		return Fail(CheckDatabase, err.Error())
	}
	if err := db.Ping(ctx); err != nil {
		return Fail(CheckDatabase, err.Error())
	}
	return Pass(CheckDatabase, internaldb.MaskURL(d.cfg.DatabaseURL))
}

func (d *Doctor) checkMigrations(ctx context.Context, connect func() (Database, error)) Result {
	db, err := connect()
	if err != nil {
		return Skip(CheckMigrations, "database unreachable")
	}
	pending, err := db.PendingMigrations(ctx)
	if err != nil {
		return Fail(CheckMigrations, err.Error())
	}
	if pending > 0 {
		return Warn(CheckMigrations, fmt.Sprintf("%d pending migration(s), run 'sellerctl db init'", pending))
	}
	return Pass(CheckMigrations, "schema up to date")
}

func (d *Doctor) checkBotToken(ctx context.Context) Result {
	if config.IsPlaceholder("TELEGRAM_BOT_TOKEN", d.cfg.TelegramBotToken) {
		return Skip(CheckBotToken, "TELEGRAM_BOT_TOKEN not set")
	}
	info, err := d.bot.GetMe(ctx)
	if err != nil {
		return Fail(CheckBotToken, err.Error())
	}
	return Pass(CheckBotToken, "@"+info.Username)
}

// SQLDatabase adapts an open bot database to the Database interface.
type SQLDatabase struct {
	DB *sql.DB
}

// Ping implements Database.
func (s SQLDatabase) Ping(ctx context.Context) error {
	return internaldb.Ping(ctx, s.DB)
}

// PendingMigrations implements Database.
func (s SQLDatabase) PendingMigrations(ctx context.Context) (int, error) {
	return internaldb.PendingMigrations(ctx, s.DB, internaldb.BootstrapMigrations)
}
