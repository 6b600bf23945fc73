package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the full configuration for the simulation driver.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Game    GameConfig    `mapstructure:"game"`
}

// LoggingConfig configures the zap logger.
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Development bool   `mapstructure:"development"`
}

// GameConfig configures the simulated game.
type GameConfig struct {
	Mode    string   `mapstructure:"mode"`
	Players []string `mapstructure:"players"`
	Turns   int      `mapstructure:"turns"`
}

// Load reads configuration from the given file, with environment overrides
// prefixed MAGE_ (e.g. MAGE_GAME_TURNS). A missing file falls back to
// defaults.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.development", false)
	v.SetDefault("game.mode", "FREE_FOR_ALL")
	v.SetDefault("game.players", []string{"alice", "bob"})
	v.SetDefault("game.turns", 4)

	v.SetEnvPrefix("MAGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		if _, err := os.Stat(path); err == nil {
			v.SetConfigFile(path)
			if err := v.ReadInConfig(); err != nil {
				return nil, fmt.Errorf("read config: %w", err)
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if len(cfg.Game.Players) < 2 {
		return nil, fmt.Errorf("config needs at least 2 players, got %d", len(cfg.Game.Players))
	}
	if cfg.Game.Turns < 1 {
		return nil, fmt.Errorf("config needs at least 1 turn, got %d", cfg.Game.Turns)
	}
	return &cfg, nil
}
