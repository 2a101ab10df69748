// Package config loads lifelog settings from an optional config file, .env
// files and LIFELOG_* environment variables, in increasing precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gookit/validate"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/losebird/lifelog-ai/internal/constants"
	"github.com/losebird/lifelog-ai/internal/enrich"
	"github.com/losebird/lifelog-ai/internal/storage"
)

const EnvPrefix = "LIFELOG"

type StorageConfig struct {
	Backend string `mapstructure:"backend" validate:"required|in:json,sqlite,postgres"`
	Path    string `mapstructure:"path"`
	DSN     string `mapstructure:"dsn"`
}

type AIConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model" validate:"required"`
	Timeout    time.Duration `mapstructure:"timeout" validate:"min:1"`
	MaxRetries int           `mapstructure:"max_retries" validate:"min:0|max:10"`
}

// InsightsConfig tunes background suggestions. A zero MinRecords would read
// as unset downstream, so the threshold starts at 1.
type InsightsConfig struct {
	MinRecords int `mapstructure:"min_records" validate:"min:1"`
	Window     int `mapstructure:"window" validate:"min:1"`
}

type LogConfig struct {
	Debug bool `mapstructure:"debug"`
}

// Config is the resolved application configuration.
type Config struct {
	// Dir holds the data file, logs and backups.
	Dir string `mapstructure:"-"`
	// File is the config file that was read, empty when none was found.
	File string `mapstructure:"-"`

	Storage  StorageConfig  `mapstructure:"storage"`
	AI       AIConfig       `mapstructure:"ai"`
	Insights InsightsConfig `mapstructure:"insights"`
	Log      LogConfig      `mapstructure:"log"`
}

// Options controls where Load looks.
type Options struct {
	// Dir is the config directory. Defaults to DefaultConfigDir.
	Dir string
	// File is an explicit config file. It must exist when set.
	File string
	// EnvFiles are loaded before reading the environment. Missing files are
	// skipped. Defaults to .env in the working directory and in Dir.
	EnvFiles []string
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("storage.backend", string(storage.BackendJSON))
	v.SetDefault("storage.path", "")
	v.SetDefault("storage.dsn", "")
	v.SetDefault("ai.enabled", true)
	v.SetDefault("ai.base_url", enrich.DefaultBaseURL)
	v.SetDefault("ai.model", enrich.DefaultModel)
	v.SetDefault("ai.timeout", constants.AITimeout.String())
	v.SetDefault("ai.max_retries", constants.AIMaxRetries)
	v.SetDefault("insights.min_records", constants.SuggestionMinRecords)
	v.SetDefault("insights.window", constants.SuggestionWindow)
	v.SetDefault("log.debug", false)
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)
	return v
}

// Load resolves the configuration. A missing default config file is not an
// error; every setting has a default.
func Load(opts Options) (*Config, error) {
	dir, err := storage.ExpandPath(opts.Dir)
	if err != nil {
		return nil, err
	}
	if dir == "" {
		if dir, err = storage.ExpandPath(constants.DefaultConfigDir); err != nil {
			return nil, err
		}
	}

	envFiles := opts.EnvFiles
	if envFiles == nil {
		envFiles = []string{".env", filepath.Join(dir, ".env")}
	}
	if err := loadEnvFiles(envFiles); err != nil {
		return nil, err
	}

	v := newViper()
	if opts.File != "" {
		file, err := storage.ExpandPath(opts.File)
		if err != nil {
			return nil, err
		}
		v.SetConfigFile(file)
	} else {
		v.AddConfigPath(dir)
		v.SetConfigName(constants.DefaultConfigName)
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode into config struct: %w", err)
	}
	cfg.Dir = dir
	cfg.File = v.ConfigFileUsed()

	if cfg.Storage.Path, err = storage.ExpandPath(cfg.Storage.Path); err != nil {
		return nil, err
	}
	if cfg.Storage.Path == "" {
		cfg.Storage.Path = cfg.DefaultDataPath()
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// loadEnvFiles applies .env files without overriding variables that are
// already set.
func loadEnvFiles(paths []string) error {
	for _, p := range paths {
		if p == "" {
			continue
		}
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load env file %s: %w", p, err)
		}
	}
	return nil
}

// Validate checks field rules and cross-field constraints.
func (c *Config) Validate() error {
	v := validate.Struct(c)
	if !v.Validate() {
		return fmt.Errorf("invalid config: %s", v.Errors.One())
	}
	if c.Storage.Backend == string(storage.BackendPostgres) && strings.TrimSpace(c.Storage.DSN) == "" {
		return fmt.Errorf("invalid config: storage.dsn is required for the postgres backend")
	}
	if c.Storage.Backend != string(storage.BackendPostgres) && c.Storage.Path == "" {
		return fmt.Errorf("invalid config: storage.path must not be empty")
	}
	return nil
}

// DefaultDataPath is the data location used when storage.path is unset.
func (c *Config) DefaultDataPath() string {
	if c.Storage.Backend == string(storage.BackendSQLite) {
		return filepath.Join(c.Dir, constants.AppName+".db")
	}
	return filepath.Join(c.Dir, constants.DefaultDataFile)
}

// StorageSpec describes the configured backend. password is only used by
// postgres.
func (c *Config) StorageSpec(password string) storage.Spec {
	spec := storage.Spec{
		Type:     storage.BackendType(c.Storage.Backend),
		Location: c.Storage.Path,
	}
	if spec.Type == storage.BackendPostgres {
		spec.Location = c.Storage.DSN
		spec.Password = password
	}
	return spec
}

// EnrichConfig builds the AI client configuration around apiKey.
func (c *Config) EnrichConfig(apiKey string) enrich.Config {
	return enrich.Config{
		BaseURL:    c.AI.BaseURL,
		APIKey:     apiKey,
		Model:      c.AI.Model,
		Timeout:    c.AI.Timeout,
		MaxRetries: c.AI.MaxRetries,
	}
}

// APIKeyFromEnv returns the AI API key from LIFELOG_AI_API_KEY or
// OPENAI_API_KEY.
func APIKeyFromEnv() string {
	for _, name := range []string{EnvPrefix + "_AI_API_KEY", "OPENAI_API_KEY"} {
		if v := strings.TrimSpace(os.Getenv(name)); v != "" {
			return v
		}
	}
	return ""
}

// DBPasswordFromEnv returns the database password from LIFELOG_DB_PASSWORD.
func DBPasswordFromEnv() string {
	return os.Getenv(EnvPrefix + "_DB_PASSWORD")
}

// WriteDefault writes a config file with every default into dir and returns
// its path. An existing file is left alone and reported as an error.
func WriteDefault(dir string) (string, error) {
	dir, err := storage.ExpandPath(dir)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create config directory: %w", err)
	}
	path := filepath.Join(dir, constants.DefaultConfigName+".yaml")

	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	if err := v.SafeWriteConfigAs(path); err != nil {
		return "", fmt.Errorf("failed to write config: %w", err)
	}
	return path, nil
}
