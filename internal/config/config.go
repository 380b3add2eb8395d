package config

import (
	"fmt"
	"os"
	"slices"
	"strings"

	"github.com/spf13/viper"
)

const (
	DefaultURLEnv     = "DATABASE_URL"
	DefaultConfigName = "rowseed.config"
)

var SupportedProviders = []string{"postgresql", "postgres", "mysql", "sqlite", "sqlite3", "sqlserver", "mssql"}

type Config struct {
	Database Database `json:"database" mapstructure:"database"`
	Seed     Seed     `json:"seed" mapstructure:"seed"`
}

type Database struct {
	Provider string `json:"provider,omitempty" mapstructure:"provider"` // empty = detect from URL
	URLEnv   string `json:"url_env" mapstructure:"url_env"`
}

type Seed struct {
	Ignore  []string `json:"ignore,omitempty" mapstructure:"ignore"`
	Verbose bool     `json:"verbose,omitempty" mapstructure:"verbose"`
	Report  string   `json:"report,omitempty" mapstructure:"report"`
}

// Load reads the configuration viper has collected from the config file and
// the environment, and fills in defaults.
func Load() (*Config, error) {
	return LoadFrom(viper.GetViper())
}

func LoadFrom(v *viper.Viper) (*Config, error) {
	var cfg Config

	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if cfg.Database.URLEnv == "" {
		cfg.Database.URLEnv = DefaultURLEnv
	}
	cfg.Database.Provider = strings.ToLower(strings.TrimSpace(cfg.Database.Provider))

	return &cfg, nil
}

// GetDatabaseURL returns the connection URL from the configured environment
// variable.
func (c *Config) GetDatabaseURL() (string, error) {
	dbURL := os.Getenv(c.Database.URLEnv)
	if dbURL == "" {
		return "", fmt.Errorf("database URL not found in environment variable %s", c.Database.URLEnv)
	}
	return dbURL, nil
}

// ResolveDatabaseURL prefers an explicit URL over the environment.
func (c *Config) ResolveDatabaseURL(explicit string) (string, error) {
	if explicit != "" {
		return explicit, nil
	}
	return c.GetDatabaseURL()
}

func (c *Config) Validate() error {
	if c.Database.Provider != "" && !slices.Contains(SupportedProviders, c.Database.Provider) {
		return fmt.Errorf("unsupported database provider: %s. Supported providers: %v", c.Database.Provider, SupportedProviders)
	}

	if c.Database.URLEnv == "" {
		return fmt.Errorf("database.url_env cannot be empty")
	}

	for _, name := range c.Seed.Ignore {
		if strings.TrimSpace(name) == "" {
			return fmt.Errorf("seed.ignore contains an empty table name")
		}
	}

	return nil
}
