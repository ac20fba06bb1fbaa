package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/celulas/celulas-api/internal/config"
	"github.com/celulas/celulas-api/internal/domain/notification"
	"github.com/celulas/celulas-api/internal/pkg/database"
	"github.com/celulas/celulas-api/internal/pkg/logger"
)

// Publishing anything here triggers an immediate pass
const wakeChannel = "notifications:cleanup"

func main() {
	once := flag.Bool("once", false, "run a single cleanup pass and exit")
	flag.Parse()

	cfg := config.Load()
	if err := logger.Init(logger.Config{
		Level:       cfg.LogLevel,
		Environment: cfg.Env,
		LogFile:     cfg.LogFile,
		Service:     "notification-cleanup",
	}); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize logger")
	}

	db, err := database.Open(cfg.DatabaseDriver, cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to open database")
	}
	defer database.Close(db)

	job := notification.NewCleanupJob(notification.NewRepository(db), cfg.NotificationRetentionDays)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if *once {
		result, err := job.RunOnce(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("Notification cleanup failed")
		}
		log.Info().
			Int64("expired", result.Expired).
			Int64("read", result.Read).
			Int64("stale_unread", result.Stale).
			Msg("Notification cleanup done")
		return
	}

	rdb, err := database.NewRedis(cfg.RedisURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to Redis")
	}
	defer database.CloseRedis(rdb)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)
	go func() {
		<-sigChan
		log.Info().Msg("Shutdown signal received")
		cancel()
	}()

	if rdb != nil {
		go subscribeWakeups(ctx, rdb, job)
	}

	log.Info().
		Dur("interval", cfg.NotificationCleanupEvery).
		Int("retention_days", cfg.NotificationRetentionDays).
		Msg("Starting notification cleanup")
	job.Start(ctx, cfg.NotificationCleanupEvery)
}

func subscribeWakeups(ctx context.Context, rdb *redis.Client, job *notification.CleanupJob) {
	sub := rdb.Subscribe(ctx, wakeChannel)
	defer func() { _ = sub.Close() }()

	for {
		select {
		case <-ctx.Done():
			return
		case _, ok := <-sub.Channel():
			if !ok {
				return
			}
			if _, err := job.RunOnce(ctx); err != nil {
				log.Error().Err(err).Msg("On-demand notification cleanup failed")
			}
		}
	}
}
