package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// UserConfig represents ~/.sellerctl/config.yaml.
type UserConfig struct {
	CurrentProfile string             `yaml:"current-profile"`
	Profiles       map[string]Profile `yaml:"profiles"`
}

// Profile represents a single named configuration profile. Every field is
// a fallback used only when neither a flag nor the environment sets it.
type Profile struct {
	PGRoot      string `yaml:"pg-root,omitempty"`
	DataDir     string `yaml:"data-dir,omitempty"`
	LogFile     string `yaml:"log-file,omitempty"`
	SocketDir   string `yaml:"socket-dir,omitempty"`
	DatabaseURL string `yaml:"database-url,omitempty"`
	Output      string `yaml:"output,omitempty"`
}

// value returns the profile field named like the matching CLI flag.
func (p Profile) value(flag string) string {
	switch flag {
	case "pg-root":
		return p.PGRoot
	case "data-dir":
		return p.DataDir
	case "log-file":
		return p.LogFile
	case "socket-dir":
		return p.SocketDir
	case "database-url":
		return p.DatabaseURL
	case "output":
		return p.Output
	}
	return ""
}

// ActiveProfile returns the profile to use based on the override or current-profile.
// A missing current profile yields an empty Profile; a missing override is an error.
func (c *UserConfig) ActiveProfile(override string) (Profile, error) {
	name := c.CurrentProfile
	if override != "" {
		name = override
	}
	if p, ok := c.Profiles[name]; ok {
		return p, nil
	}
	if override != "" {
		return Profile{}, fmt.Errorf("profile %q not found", override)
	}
	return Profile{}, nil
}

// ConfigDir returns the path to ~/.sellerctl/.
func ConfigDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".sellerctl")
}

// ConfigPath returns the path to ~/.sellerctl/config.yaml.
func ConfigPath() string {
	return filepath.Join(ConfigDir(), "config.yaml")
}

// LoadUserConfig reads ~/.sellerctl/config.yaml.
func LoadUserConfig() (*UserConfig, error) {
	path := ConfigPath()
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var cfg UserConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if cfg.Profiles == nil {
		cfg.Profiles = map[string]Profile{}
	}
	return &cfg, nil
}

// SaveUserConfig writes ~/.sellerctl/config.yaml.
func SaveUserConfig(cfg *UserConfig) error {
	dir := ConfigDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}
	return os.WriteFile(ConfigPath(), data, 0o600)
}

func emptyUserConfig() *UserConfig {
	return &UserConfig{
		CurrentProfile: "default",
		Profiles:       map[string]Profile{},
	}
}
