package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	_ "github.com/pointplay/rewards-gateway/docs"
	"github.com/pointplay/rewards-gateway/internal/api"
	"github.com/pointplay/rewards-gateway/internal/infrastructure/backend"
	"github.com/pointplay/rewards-gateway/internal/infrastructure/config"
	mongodb "github.com/pointplay/rewards-gateway/internal/infrastructure/db/mongo"
	redisdb "github.com/pointplay/rewards-gateway/internal/infrastructure/db/redis"
	"github.com/pointplay/rewards-gateway/pkg/logger"
)

const shutdownTimeout = 10 * time.Second

// @title Rewards Gateway API
// @version 1.0
// @description Session gateway for the PointPlay rewards platform.
// @BasePath /
func main() {
	cfg := config.Load()

	log := logger.Init(logger.Options{
		Level:  cfg.LogLevel,
		Pretty: cfg.Env == "development",
	})

	ctx := context.Background()

	mongoClient, db, err := mongodb.Connect(ctx, mongodb.Config{
		URI:      cfg.Mongo.URI,
		Database: cfg.Mongo.Database,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("mongo connection failed")
	}
	defer func() { _ = mongoClient.Disconnect(context.Background()) }()

	rdb, err := redisdb.Connect(ctx, redisdb.Config{
		Addr: cfg.Redis.Addr,
		DB:   cfg.Redis.DB,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("redis connection failed")
	}
	defer func() { _ = rdb.Close() }()

	upstream, err := backend.New(backend.Config{
		BaseURL: cfg.Backend.URL,
		Timeout: cfg.Backend.Timeout,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("backend client setup failed")
	}

	e, chat := api.NewRouter(upstream, db, rdb, cfg, log)

	// signal.Notify requires the channel to be buffered
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-stop
		log.Info().Msg("shutting down")
		chat.Stop()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := e.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("forced shutdown")
			_ = e.Close()
		}
	}()

	log.Info().Str("port", cfg.Port).Str("env", cfg.Env).Msg("starting rewards gateway")
	if err := e.Start(":" + cfg.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server stopped unexpectedly")
	}
	log.Info().Msg("server closed")
}
