package model

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"
)

// DatabaseConfig locates the SQLite database.
type DatabaseConfig struct {
	// Path is the database file. ":memory:" opens a throwaway database.
	Path string `mapstructure:"path" yaml:"path"`
}

// AuthConfig lists the authentication schemes users may choose from.
type AuthConfig struct {
	// Schemes are the accepted values of User.AuthType.
	Schemes []string `mapstructure:"schemes" yaml:"schemes"`

	// Preferred is offered first on signup; empty means the first scheme.
	Preferred string `mapstructure:"preferred" yaml:"preferred"`
}

// PaginationConfig holds listing page sizes.
type PaginationConfig struct {
	PerPage int `mapstructure:"per_page" yaml:"per_page"`
}

// LogConfig controls the zerolog output.
type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// AppConfig is the top-level application configuration.
type AppConfig struct {
	Database   DatabaseConfig   `mapstructure:"database" yaml:"database"`
	Auth       AuthConfig       `mapstructure:"auth" yaml:"auth"`
	Pagination PaginationConfig `mapstructure:"pagination" yaml:"pagination"`
	Log        LogConfig        `mapstructure:"log" yaml:"log"`
}

// PreferredAuth returns the scheme offered first on signup.
func (c AppConfig) PreferredAuth() string {
	if c.Auth.Preferred != "" {
		return c.Auth.Preferred
	}
	if len(c.Auth.Schemes) > 0 {
		return c.Auth.Schemes[0]
	}
	return DefaultAuthType
}

// AuthSchemeEnabled reports whether scheme is configured.
func (c AppConfig) AuthSchemeEnabled(scheme string) bool {
	for _, s := range c.Auth.Schemes {
		if s == scheme {
			return true
		}
	}
	return false
}

// DefaultConfigPath returns the default path for the configuration file,
// located at ~/.config/tracks/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(".", "config.yaml")
	}
	return filepath.Join(home, ".config", "tracks", "config.yaml")
}

// DefaultDatabasePath returns ~/.local/share/tracks/tracks.db.
func DefaultDatabasePath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "tracks.db"
	}
	return filepath.Join(home, ".local", "share", "tracks", "tracks.db")
}

// DefaultAppConfig returns a sensible default configuration.
func DefaultAppConfig() *AppConfig {
	return &AppConfig{
		Database:   DatabaseConfig{Path: DefaultDatabasePath()},
		Auth:       AuthConfig{Schemes: []string{DefaultAuthType}},
		Pagination: PaginationConfig{PerPage: 5},
		Log:        LogConfig{Level: "info", Format: "console"},
	}
}

func setDefaults(v *viper.Viper) {
	def := DefaultAppConfig()
	v.SetDefault("database.path", def.Database.Path)
	v.SetDefault("auth.schemes", def.Auth.Schemes)
	v.SetDefault("auth.preferred", "")
	v.SetDefault("pagination.per_page", def.Pagination.PerPage)
	v.SetDefault("log.level", def.Log.Level)
	v.SetDefault("log.format", def.Log.Format)
}

// LoadConfig reads configuration from the given YAML file path using Viper.
// Environment variables prefixed with TRACKS_ override file values
// (TRACKS_DATABASE_PATH, TRACKS_LOG_LEVEL, ...). If the file does not
// exist, defaults and environment are used.
func LoadConfig(path string) (*AppConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("tracks")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		_, missingFile := err.(*os.PathError)
		_, notFound := err.(viper.ConfigFileNotFoundError)
		if !missingFile && !notFound {
			return nil, fmt.Errorf("reading config %s: %w", path, err)
		}
	}

	cfg := DefaultAppConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}

	if cfg.Pagination.PerPage <= 0 {
		cfg.Pagination.PerPage = 5
	}
	if len(cfg.Auth.Schemes) == 0 {
		cfg.Auth.Schemes = []string{DefaultAuthType}
	}

	return cfg, nil
}

// SaveConfig writes the given configuration to a YAML file at path,
// creating parent directories if needed.
func SaveConfig(path string, cfg *AppConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config directory %s: %w", dir, err)
	}

	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.Set("database", cfg.Database)
	v.Set("auth", cfg.Auth)
	v.Set("pagination", cfg.Pagination)
	v.Set("log", cfg.Log)

	if err := v.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}

	return nil
}
