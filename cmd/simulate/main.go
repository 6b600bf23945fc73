package main

import (
	"flag"
	"fmt"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/magefree/mage-rules-go/internal/config"
	"github.com/magefree/mage-rules-go/internal/game"
	"github.com/magefree/mage-rules-go/internal/game/multiplayer"
)

var configPath = flag.String("config", "config/config.yaml", "path to configuration file")

func main() {
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := initLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("starting game simulation",
		zap.String("mode", cfg.Game.Mode),
		zap.Strings("players", cfg.Game.Players),
		zap.Int("turns", cfg.Game.Turns),
	)

	engine, err := game.NewGameEngine(multiplayer.GameMode(cfg.Game.Mode), cfg.Game.Players, logger)
	if err != nil {
		logger.Fatal("failed to create engine", zap.Error(err))
	}

	// Seed each player with a small library so draw steps have cards.
	for _, playerID := range cfg.Game.Players {
		for i := 0; i < 10; i++ {
			engine.AddCardToLibrary(playerID, &game.Card{
				Name:     "Mountain",
				ManaCost: "",
				Types:    []string{"Land"},
			})
		}
	}

	engine.StartGame()
	startTurn := engine.Turns().TurnNumber()
	for engine.Turns().TurnNumber() < startTurn+cfg.Game.Turns && !engine.IsGameOver() {
		engine.NextStep()
	}

	for _, msg := range engine.Messages() {
		logger.Info(msg.Text, zap.String("category", msg.Category))
	}
	if winner, over := engine.Winner(); over {
		logger.Info("game over", zap.String("winner", winner))
	} else {
		logger.Info("simulation finished",
			zap.Int("turn", engine.Turns().TurnNumber()),
			zap.String("active_player", engine.Turns().ActivePlayer()),
		)
	}
}

func initLogger(cfg config.LoggingConfig) (*zap.Logger, error) {
	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", cfg.Level, err)
	}
	var zapCfg zap.Config
	if cfg.Development {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}
	zapCfg.Level = zap.NewAtomicLevelAt(level)
	return zapCfg.Build()
}
