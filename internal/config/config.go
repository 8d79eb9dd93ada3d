package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds everything the server needs to run. Values come from an
// optional YAML file, overridden by TIMELY_* environment variables.
type Config struct {
	Addr       string         `mapstructure:"addr"`
	BasePath   string         `mapstructure:"base_path"`
	Password   string         `mapstructure:"password"`
	SessionTTL time.Duration  `mapstructure:"session_ttl"`
	Database   DatabaseConfig `mapstructure:"database"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" or "postgres".
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// Load reads configuration from path. An empty path means env and defaults
// only.
func Load(path string) (Config, error) {
	v := viper.New()

	v.SetDefault("addr", ":8080")
	v.SetDefault("base_path", "")
	// Registered empty so AutomaticEnv can resolve TIMELY_PASSWORD.
	v.SetDefault("password", "")
	v.SetDefault("session_ttl", 30*24*time.Hour)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "timely.db")

	v.SetEnvPrefix("TIMELY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// A missing config file is fine; env and defaults cover everything.
	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			v.SetConfigType("yaml")
			if err := v.ReadInConfig(); err != nil {
				return Config{}, fmt.Errorf("reading config %s: %w", path, err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshaling config: %w", err)
	}

	if cfg.Password == "" {
		return Config{}, errors.New("password is required (set TIMELY_PASSWORD)")
	}
	switch cfg.Database.Driver {
	case "sqlite", "postgres":
	default:
		return Config{}, fmt.Errorf("unsupported database driver %q", cfg.Database.Driver)
	}
	// Normalize so "/timely/" and "/timely" behave the same.
	cfg.BasePath = strings.TrimRight(cfg.BasePath, "/")
	if cfg.BasePath != "" && !strings.HasPrefix(cfg.BasePath, "/") {
		cfg.BasePath = "/" + cfg.BasePath
	}

	return cfg, nil
}
