package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"

	"github.com/balkashynov/tempo/internal/paths"
)

// DefaultIdleThreshold is the maximum gap between consecutive events
// still considered continuous activity. Shared by the session gap rule
// and the work-pattern walk.
const DefaultIdleThreshold = 2 * time.Minute

// Config holds the daemon's settings.
type Config struct {
	DataDir       string
	SocketPath    string
	DatabasePath  string
	IdleThreshold time.Duration
}

// Load resolves settings from defaults, an optional config file at
// <data_dir>/config.toml, and TEMPO_* environment variables, in
// increasing order of precedence.
func Load() (*Config, error) {
	dataDir, err := paths.DataDir()
	if err != nil {
		return nil, fmt.Errorf("resolve data directory: %w", err)
	}
	return load(dataDir)
}

// LoadFrom is Load with an explicit data directory, for tests and the
// --data-dir flag.
func LoadFrom(dataDir string) (*Config, error) {
	return load(dataDir)
}

func load(dataDir string) (*Config, error) {
	v := viper.New()
	v.SetDefault("data_dir", dataDir)
	v.SetDefault("idle_threshold", DefaultIdleThreshold)

	v.SetEnvPrefix("TEMPO")
	v.AutomaticEnv()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(dataDir)
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is the normal case.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	dir := v.GetString("data_dir")

	cfg := &Config{
		DataDir:       dir,
		SocketPath:    v.GetString("socket_path"),
		DatabasePath:  v.GetString("db_path"),
		IdleThreshold: v.GetDuration("idle_threshold"),
	}
	if cfg.SocketPath == "" {
		cfg.SocketPath = paths.SocketPath(dir)
	}
	if cfg.DatabasePath == "" {
		cfg.DatabasePath = paths.DatabasePath(dir)
	}
	if cfg.IdleThreshold <= 0 {
		cfg.IdleThreshold = DefaultIdleThreshold
	}
	return cfg, nil
}
