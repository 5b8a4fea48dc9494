package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config holds the settings of a run. Every field can be set from a
// PACDUEL_* environment variable; command line flags override them.
type Config struct {
	Agent1           string        `env:"PACDUEL_AGENT1"            envDefault:"greedy"`
	Agent2           string        `env:"PACDUEL_AGENT2"            envDefault:"random"`
	Layout           string        `env:"PACDUEL_LAYOUT"`
	NumGames         int           `env:"PACDUEL_NUM_GAMES"         envDefault:"1"`
	Timeout          time.Duration `env:"PACDUEL_TIMEOUT"           envDefault:"20s"`
	GameTime         time.Duration `env:"PACDUEL_GAME_TIME"         envDefault:"90s"`
	CatchErrors      bool          `env:"PACDUEL_CATCH_ERRORS"      envDefault:"false"`
	OutputDir        string        `env:"PACDUEL_OUTPUT_DIR"`
	LogLevel         string        `env:"PACDUEL_LOG_LEVEL"         envDefault:"info"`
	SearchGoroutines int           `env:"PACDUEL_SEARCH_GOROUTINES" envDefault:"4"`
	SearchDuration   time.Duration `env:"PACDUEL_SEARCH_DURATION"   envDefault:"1s"`
}

// Load reads the configuration from the environment.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	return cfg, cfg.Validate()
}

func (c Config) Validate() error {
	var errs []error
	if c.Agent1 == "" || c.Agent2 == "" {
		errs = append(errs, errors.New("both agents must be named"))
	}
	if c.NumGames < 1 {
		errs = append(errs, fmt.Errorf("number of games must be positive, got %d", c.NumGames))
	}
	if c.Timeout <= 0 {
		errs = append(errs, fmt.Errorf("timeout must be positive, got %s", c.Timeout))
	}
	if c.GameTime < 0 {
		errs = append(errs, fmt.Errorf("game time cannot be negative, got %s", c.GameTime))
	}
	if c.SearchGoroutines < 1 {
		errs = append(errs, fmt.Errorf("search goroutines must be positive, got %d", c.SearchGoroutines))
	}
	if c.SearchDuration <= 0 {
		errs = append(errs, fmt.Errorf("search duration must be positive, got %s", c.SearchDuration))
	}
	if _, err := c.Level(); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// Level is the zerolog level named by LogLevel.
func (c Config) Level() (zerolog.Level, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.NoLevel, fmt.Errorf("invalid log level %q: %w", c.LogLevel, err)
	}
	return level, nil
}
