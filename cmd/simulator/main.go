package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/asynkron/protoactor-go/actor"
	"github.com/lmittmann/tint"

	"goorm-board/internal/config"
	"goorm-board/internal/engine"
	"goorm-board/internal/events"
	"goorm-board/internal/transport"
	"goorm-board/internal/utils"
	"goorm-board/simulator"
)

func main() {
	actions := flag.Int("actions", 200, "number of user intents to fire")
	doubleClickRate := flag.Float64("double-click-rate", 0.3, "fraction of likes immediately repeated")
	commentRate := flag.Float64("comment-rate", 0.2, "fraction of intents that touch comments")
	actionDelay := flag.Duration("delay", 10*time.Millisecond, "pause between intents")
	seed := flag.Int64("seed", 0, "rng seed, 0 for time-based")
	flag.Parse()

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := slog.New(tint.NewHandler(os.Stderr, &tint.Options{Level: slog.LevelInfo}))
	slog.SetDefault(logger)

	metrics := utils.NewMetricsCollector()
	hub := events.NewHub(logger)
	client := transport.NewClient(cfg.API.BaseURL, cfg.API.RequestTimeout)

	system := actor.NewActorSystem()
	eng := engine.NewEngine(system, client, cfg, metrics, hub, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	sim := simulator.New(simulator.SimConfig{
		Actions:         *actions,
		DoubleClickRate: *doubleClickRate,
		CommentRate:     *commentRate,
		ActionDelay:     *actionDelay,
		RequestTimeout:  cfg.API.RequestTimeout + time.Second,
		Seed:            *seed,
	}, eng, logger)

	if err := sim.Run(ctx); err != nil {
		logger.Error("simulation failed", "error", err)
		os.Exit(1)
	}

	// Give the last settle timers and confirmations time to land.
	time.Sleep(cfg.Interaction.Settle + 100*time.Millisecond)

	logger.Info("engine metrics",
		"requests", metrics.RequestCount(),
		"errors", metrics.ErrorCount(),
		"likeLatency", metrics.AverageLatency("like_post"),
		"commentLikeLatency", metrics.AverageLatency("like_comment"),
		"dedupRejected", metrics.DedupRejections("like_post")+metrics.DedupRejections("like_comment"),
	)
}
