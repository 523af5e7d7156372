package cli

import (
	"fmt"
	"os"

	"github.com/spf13/pflag"
)

// envFlag ties a global flag to the environment variable read by
// config.LoadFromEnv.
type envFlag struct {
	name  string
	env   string
	usage string
}

// settingFlags are exported to the environment before the configuration is
// loaded, giving flag > env > profile > default precedence.
var settingFlags = []envFlag{
	{name: "pg-root", env: "PG_ROOT", usage: "PostgreSQL installation root containing bin/ and lib/ (env PG_ROOT)"},
	{name: "data-dir", env: "PG_DATA_DIR", usage: "Database cluster data directory (env PG_DATA_DIR)"},
	{name: "log-file", env: "PG_LOG_FILE", usage: "Server log file (env PG_LOG_FILE)"},
	{name: "socket-dir", env: "PG_SOCKET_DIR", usage: "Unix socket directory (env PG_SOCKET_DIR)"},
}

// profileOnly are settings a profile may provide without a matching flag.
var profileOnly = []envFlag{
	{name: "database-url", env: "DATABASE_URL"},
}

func addSettingFlags(fs *pflag.FlagSet) {
	for _, f := range settingFlags {
		fs.String(f.name, "", f.usage)
	}
}

// exportSettings writes explicitly set flags into the environment and fills
// variables that are still unset from the profile.
func exportSettings(fs *pflag.FlagSet, p Profile) error {
	for _, f := range settingFlags {
		if fl := fs.Lookup(f.name); fl != nil && fl.Changed {
			if err := os.Setenv(f.env, fl.Value.String()); err != nil {
				return fmt.Errorf("setenv %s: %w", f.env, err)
			}
			continue
		}
		if err := setFromProfile(f, p); err != nil {
			return err
		}
	}
	for _, f := range profileOnly {
		if err := setFromProfile(f, p); err != nil {
			return err
		}
	}
	return nil
}

func setFromProfile(f envFlag, p Profile) error {
	v := p.value(f.name)
	if v == "" || os.Getenv(f.env) != "" {
		return nil
	}
	if err := os.Setenv(f.env, v); err != nil {
		return fmt.Errorf("setenv %s: %w", f.env, err)
	}
	return nil
}
