package db

import "embed"

// EmbedMigrations contains the embedded SQL migration files: postgres/ for
// the bot database bootstrap schema, journal/ for the local lifecycle
// journal.
//
//go:embed migrations/postgres/*.sql migrations/journal/*.sql
var EmbedMigrations embed.FS
