// Self-play driver: plays one complete game with the built-in random agents
// and writes the training artifacts. Fully deterministic for a fixed
// (-seed, -random-seed) pair.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/zedmor/mafia-token-engine/internal/agent"
	"github.com/zedmor/mafia-token-engine/internal/artifacts"
	"github.com/zedmor/mafia-token-engine/internal/config"
	"github.com/zedmor/mafia-token-engine/internal/engine"
	"github.com/zedmor/mafia-token-engine/internal/observability"
	"github.com/zedmor/mafia-token-engine/internal/server"
)

func main() {
	os.Exit(run())
}

func run() int {
	if err := godotenv.Load(); err != nil {
		fmt.Println("Warning: .env file not found")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("cannot load config: %v", err)
	}

	seed := flag.Int("seed", cfg.Seed, "role arrangement seed (0..2519)")
	randomSeed := flag.Int64("random-seed", cfg.RandomSeed, "agent action selection seed")
	logDir := flag.String("log-dir", cfg.LogDir, "root for training artifacts (empty disables)")
	flag.Parse()
	cfg.Seed = *seed
	cfg.RandomSeed = *randomSeed
	cfg.LogDir = *logDir
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logger, err := observability.SetupLogger()
	if err != nil {
		log.Fatalf("cannot init logger: %v", err)
	}
	defer logger.Sync()

	turnServer := server.New(logger, nil)
	turnServer.Initialize(cfg.Seed)

	agents := make([]*agent.Random, engine.NumPlayers)
	for i := range agents {
		agents[i] = agent.NewRandom(cfg.RandomSeed + int64(i))
	}

	actions := 0
	for {
		if _, over := turnServer.Result(); over {
			break
		}
		active, err := turnServer.ActivePlayer()
		if err != nil {
			logger.Error("cannot read active player", zap.Error(err))
			return 1
		}
		legal, err := turnServer.LegalActions()
		if err != nil {
			logger.Error("cannot compute legal actions", zap.Error(err))
			return 1
		}
		choice := agents[active].Choose(legal)
		if choice == nil {
			logger.Error("no legal actions for active player", zap.Int("player", active))
			return 1
		}
		if err := turnServer.ApplyAction(choice, active); err != nil {
			logger.Error("apply failed", zap.Int("player", active), zap.Error(err))
			return 1
		}
		actions++
	}

	state, err := turnServer.Snapshot()
	if err != nil {
		logger.Error("cannot snapshot final state", zap.Error(err))
		return 1
	}
	winner, _ := state.WinnerToken()
	logger.Info("self-play finished",
		zap.Int("seed", cfg.Seed),
		zap.Int64("random_seed", cfg.RandomSeed),
		zap.String("winner", winner.String()),
		zap.Int("actions", actions),
		zap.Int("cycles", state.Phase.Cycle))

	if cfg.LogDir != "" {
		if err := artifacts.Write(cfg.LogDir, state); err != nil {
			logger.Error("artifact write failed", zap.Error(err))
			return 1
		}
		logger.Info("artifacts written", zap.String("dir", cfg.LogDir))
	}
	return 0
}
