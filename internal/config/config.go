package config

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/lorenzotomasdiez/debate-arena/internal/debate"
)

// Config is the complete arena configuration.
type Config struct {
	Gemini   GeminiConfig   `mapstructure:"gemini"`
	Server   ServerConfig   `mapstructure:"server"`
	Debate   DebateConfig   `mapstructure:"debate"`
	Votes    VotesConfig    `mapstructure:"votes"`
	Personas PersonasConfig `mapstructure:"personas"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// GeminiConfig controls the generative API client.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	// BaseURL overrides the SDK endpoint; empty uses the SDK default.
	BaseURL string `mapstructure:"base_url"`
}

// ServerConfig controls the HTTP listener.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	StaticDir       string        `mapstructure:"static_dir"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DebateConfig controls the orchestrator.
type DebateConfig struct {
	Topic     string        `mapstructure:"topic"`
	TurnLimit int           `mapstructure:"turn_limit"`
	TurnDelay time.Duration `mapstructure:"turn_delay"`
	// TurnTimeout bounds a single generation call. Zero means no bound.
	TurnTimeout time.Duration `mapstructure:"turn_timeout"`
}

// VotesConfig selects the vote storage backend.
type VotesConfig struct {
	// Backend is one of "file", "sqlite" or "memory".
	Backend    string `mapstructure:"backend"`
	Path       string `mapstructure:"path"`
	SQLitePath string `mapstructure:"sqlite_path"`
}

// PersonasConfig points at an optional persona file.
type PersonasConfig struct {
	File string `mapstructure:"file"`
}

// LoggingConfig controls the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

const (
	minTurnLimit = 1
	maxTurnLimit = 20
)

// Default returns the configuration used when nothing is overridden.
func Default() *Config {
	return &Config{
		Gemini: GeminiConfig{
			Model: "gemini-2.5-flash-lite",
		},
		Server: ServerConfig{
			Port:            3000,
			StaticDir:       "public",
			ShutdownTimeout: 10 * time.Second,
		},
		Debate: DebateConfig{
			Topic:     debate.DefaultTopic,
			TurnLimit: debate.DefaultTurnLimit,
			TurnDelay: 4 * time.Second,
		},
		Votes: VotesConfig{
			Backend:    "file",
			Path:       "votes.json",
			SQLitePath: "votes.db",
		},
		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// SetDefaults registers every key on v so environment overrides are visible to Unmarshal.
func SetDefaults(v *viper.Viper) {
	d := Default()

	v.SetDefault("gemini.api_key", d.Gemini.APIKey)
	v.SetDefault("gemini.model", d.Gemini.Model)
	v.SetDefault("gemini.base_url", d.Gemini.BaseURL)

	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("server.static_dir", d.Server.StaticDir)
	v.SetDefault("server.shutdown_timeout", d.Server.ShutdownTimeout)

	v.SetDefault("debate.topic", d.Debate.Topic)
	v.SetDefault("debate.turn_limit", d.Debate.TurnLimit)
	v.SetDefault("debate.turn_delay", d.Debate.TurnDelay)
	v.SetDefault("debate.turn_timeout", d.Debate.TurnTimeout)

	v.SetDefault("votes.backend", d.Votes.Backend)
	v.SetDefault("votes.path", d.Votes.Path)
	v.SetDefault("votes.sqlite_path", d.Votes.SQLitePath)

	v.SetDefault("personas.file", d.Personas.File)

	v.SetDefault("logging.level", d.Logging.Level)
	v.SetDefault("logging.development", d.Logging.Development)
}

// New builds a viper instance with defaults, environment bindings and the config file.
// An empty cfgFile looks for arena.yaml in the working directory and tolerates its absence.
func New(cfgFile string) (*viper.Viper, error) {
	v := viper.New()
	SetDefaults(v)

	v.SetEnvPrefix("ARENA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The conventional names win over the prefixed ones.
	if err := v.BindEnv("gemini.api_key", "GEMINI_API_KEY", "ARENA_GEMINI_API_KEY"); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if err := v.BindEnv("server.port", "PORT", "ARENA_SERVER_PORT"); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("config: reading %s: %w", cfgFile, err)
		}
		return v, nil
	}

	v.SetConfigName("arena")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("config: %w", err)
		}
	}
	return v, nil
}

// Load reads the configuration and validates it.
func Load(cfgFile string) (*Config, error) {
	v, err := New(cfgFile)
	if err != nil {
		return nil, err
	}
	return FromViper(v)
}

// FromViper unmarshals v into a validated Config.
func FromViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	if errs := cfg.Validate(); len(errs) > 0 {
		return nil, fmt.Errorf("config: %w", errors.Join(errs...))
	}
	return &cfg, nil
}

// Validate reports every problem with c.
func (c *Config) Validate() []error {
	var errs []error
	if c.Gemini.APIKey == "" {
		errs = append(errs, errors.New("GEMINI_API_KEY is required"))
	}
	if c.Gemini.Model == "" {
		errs = append(errs, errors.New("gemini.model must not be empty"))
	}
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Errorf("server.port must be within 1..65535, got %d", c.Server.Port))
	}
	if c.Debate.TurnLimit < minTurnLimit || c.Debate.TurnLimit > maxTurnLimit {
		errs = append(errs, fmt.Errorf("debate.turn_limit must be within %d..%d, got %d", minTurnLimit, maxTurnLimit, c.Debate.TurnLimit))
	}
	if c.Debate.TurnDelay < 0 {
		errs = append(errs, fmt.Errorf("debate.turn_delay must be >= 0, got %s", c.Debate.TurnDelay))
	}
	if c.Debate.TurnTimeout < 0 {
		errs = append(errs, fmt.Errorf("debate.turn_timeout must be >= 0, got %s", c.Debate.TurnTimeout))
	}
	if strings.TrimSpace(c.Debate.Topic) == "" {
		errs = append(errs, errors.New("debate.topic must not be empty"))
	}
	switch c.Votes.Backend {
	case "file":
		if c.Votes.Path == "" {
			errs = append(errs, errors.New("votes.path is required for the file backend"))
		}
	case "sqlite":
		if c.Votes.SQLitePath == "" {
			errs = append(errs, errors.New("votes.sqlite_path is required for the sqlite backend"))
		}
	case "memory":
	default:
		errs = append(errs, fmt.Errorf("votes.backend must be file, sqlite or memory, got %q", c.Votes.Backend))
	}
	return errs
}

// LoadDotEnv copies KEY=VALUE lines from path into the process environment.
// Variables that are already set are left alone. A missing file is not an error.
func LoadDotEnv(path string) error {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("config: opening .env: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		line = strings.TrimPrefix(line, "export ")
		key, val, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		key = strings.TrimSpace(key)
		val = strings.Trim(strings.TrimSpace(val), `"'`)
		if _, set := os.LookupEnv(key); !set {
			os.Setenv(key, val)
		}
	}
	return scanner.Err()
}
