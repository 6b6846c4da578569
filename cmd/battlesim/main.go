// Command battlesim runs seeded simulations of one encounter and optionally
// stores the reports in PostgreSQL.
//
// Configuration is read from config/battlesim.yaml (or $TSAUTO_CONFIG) and
// TSAUTO_* environment variables.
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/QirangMilco/TSAuto/internal/ai"
	"github.com/QirangMilco/TSAuto/internal/battle"
	"github.com/QirangMilco/TSAuto/internal/config"
	"github.com/QirangMilco/TSAuto/internal/data"
	"github.com/QirangMilco/TSAuto/internal/db"
	"github.com/QirangMilco/TSAuto/internal/game/equipment"
	"github.com/QirangMilco/TSAuto/internal/rng"
)

const ConfigPath = "config/battlesim.yaml"

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := run(ctx); err != nil {
		slog.Error("fatal", "err", err)
		os.Exit(1)
	}
}

func run(ctx context.Context) error {
	cfgPath := ConfigPath
	if p := os.Getenv("TSAUTO_CONFIG"); p != "" {
		cfgPath = p
	}
	cfg, err := config.LoadSimulator(cfgPath)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	level := cfg.SlogLevel()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{
		Level: level,
	})))
	ai.EnableDebugLogging(level == slog.LevelDebug)
	battle.EnableDebugLogging(level == slog.LevelDebug)

	slog.Info("battlesim starting",
		"encounter", cfg.Simulation.Encounter,
		"runs", cfg.Simulation.Runs,
		"seed", cfg.Battle.Seed,
		"log_level", cfg.LogLevel)

	store, err := data.Load(cfg.Simulation.ContentDir)
	if err != nil {
		return fmt.Errorf("loading definitions: %w", err)
	}

	var repo *db.ReportRepository
	if cfg.Database.Enabled {
		dsn := cfg.Database.DSN()
		if err := db.RunMigrations(ctx, dsn); err != nil {
			return fmt.Errorf("running migrations: %w", err)
		}
		database, err := db.New(ctx, dsn, db.WithMaxConns(cfg.Simulation.Concurrency))
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		defer database.Close()
		repo = database.Reports()
		slog.Info("report storage enabled", "host", cfg.Database.Host, "db", cfg.Database.DBName)
	}

	started := time.Now()
	sum, err := simulate(ctx, store, cfg, repo)
	if err != nil {
		return err
	}

	slog.Info("simulation finished",
		"encounter", cfg.Simulation.Encounter,
		"runs", sum.runs,
		"victories", sum.victories,
		"defeats", sum.defeats,
		"unfinished", sum.unfinished,
		"avg_rounds", sum.avgRounds(),
		"elapsed", time.Since(started))
	return nil
}

type summary struct {
	mu          sync.Mutex
	runs        int
	victories   int
	defeats     int
	unfinished  int
	totalRounds int
}

func (s *summary) add(rep battle.Report) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runs++
	s.totalRounds += rep.Rounds
	switch rep.Result {
	case "VICTORY":
		s.victories++
	case "DEFEAT":
		s.defeats++
	default:
		s.unfinished++
	}
}

func (s *summary) avgRounds() float64 {
	if s.runs == 0 {
		return 0
	}
	return float64(s.totalRounds) / float64(s.runs)
}

// simulate runs cfg.Simulation.Runs battles, seed+i for run i, at most
// Concurrency at a time. Each battle has its own engine and state.
func simulate(ctx context.Context, store *data.Store, cfg config.Simulator, repo *db.ReportRepository) (*summary, error) {
	sum := &summary{}
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(max(cfg.Simulation.Concurrency, 1))

	for i := range cfg.Simulation.Runs {
		bc := battle.ConfigFrom(cfg)
		bc.Seed = cfg.Battle.Seed + int64(i)
		bc.BattleID = fmt.Sprintf("%s-%d", cfg.Simulation.Encounter, bc.Seed)

		g.Go(func() error {
			rep, err := runBattle(gctx, store, bc)
			if err != nil {
				return fmt.Errorf("battle %s: %w", bc.BattleID, err)
			}
			sum.add(rep)
			slog.Info("battle finished",
				"battle", rep.BattleID,
				"result", rep.Result,
				"rounds", rep.Rounds,
				"events", rep.EventCount,
				"digest", rep.Digest)

			if repo != nil {
				if err := repo.SaveReport(gctx, rep); err != nil {
					return fmt.Errorf("saving report %s: %w", rep.BattleID, err)
				}
			}
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return sum, err
	}
	return sum, nil
}

func runBattle(ctx context.Context, store *data.Store, cfg battle.Config) (battle.Report, error) {
	armory := equipment.NewArmory(store, equipment.NewGenerator(rng.New(cfg.Seed)))
	players, enemies, err := battle.BuildEncounter(store, cfg.EncounterID, battle.WithArmory(armory))
	if err != nil {
		return battle.Report{}, err
	}
	if armory.Forged() > 0 {
		slog.Debug("equipment rolled", "battle", cfg.BattleID, "pieces", armory.Forged())
	}

	e := battle.New(armory, cfg)
	if err := e.InitBattleState(players, enemies); err != nil {
		return battle.Report{}, err
	}

	err = e.StartBattle(ctx)
	switch {
	case errors.Is(err, battle.ErrTurnLimit):
		slog.Warn("battle hit the turn limit", "battle", cfg.BattleID, "max_turns", cfg.MaxTurns)
	case err != nil:
		return battle.Report{}, err
	}

	if unit, ok := e.AwaitingInput(); ok {
		return battle.Report{}, fmt.Errorf("unit %s is waiting for input, enable auto_players", unit)
	}
	return e.Report(), nil
}
