package bot

import (
	"errors"
	"fmt"
	"io/fs"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the bot configuration loaded from environment variables.
type Config struct {
	DiscordToken string `env:"DISCORD_TOKEN,notEmpty"`

	// CommandPrefix precedes every text command.
	CommandPrefix string `env:"COMMAND_PREFIX" envDefault:"!"`

	// CommandRateLimit is the sustained number of commands per second a single
	// user may issue. Zero or less disables rate limiting.
	CommandRateLimit float64 `env:"COMMAND_RATE_LIMIT" envDefault:"2"`
	CommandRateBurst int     `env:"COMMAND_RATE_BURST" envDefault:"5"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"console"`
}

// LoadConfig loads configuration from environment variables.
// Returns an error if required fields are missing.
func LoadConfig() (*Config, error) {
	cfg := &Config{}

	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	if cfg.CommandPrefix == "" {
		return nil, errors.New("COMMAND_PREFIX must not be empty")
	}

	return cfg, nil
}

// LoadDotEnv loads environment variables from the given files (".env" when
// none are given). Missing files are ignored; variables already present in the
// environment are never overridden.
func LoadDotEnv(filenames ...string) error {
	if len(filenames) == 0 {
		filenames = []string{".env"}
	}

	for _, name := range filenames {
		if err := godotenv.Load(name); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("failed to load %s: %w", name, err)
		}
	}

	return nil
}
