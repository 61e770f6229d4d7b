package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-redis/redis/v8"

	"streamflix/proj/internal/config"
	"streamflix/proj/internal/lib/logger"
	"streamflix/proj/internal/session"
)

const version = "1.0.0"

type sessionStore interface {
	session.Store
	Close() error
}

func main() {
	cfgPath := flag.String("config", "config/local.yml", "path to config file")

	flag.Parse()
	cfg := config.MustLoad(*cfgPath)
	log := logger.SetupLogger(cfg.Debug)
	store, err := newSessionStore(cfg, log)
	if err != nil {
		log.Error("failed to set up session store", "store", cfg.Session.Store, "errMsg", err.Error())
		os.Exit(1)
	}
	defer store.Close()
	app := NewApplication(cfg, log, store)
	if err := app.serve(); err != nil {
		app.log.Error("shutting down the server", "reason", err.Error())
		os.Exit(1)
	}
}

func newSessionStore(cfg *config.Config, log *slog.Logger) (sessionStore, error) {
	switch cfg.Session.Store {
	case config.SessionStoreRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			client.Close()
			return nil, fmt.Errorf("connecting to redis at %s: %w", cfg.Redis.Addr, err)
		}
		log.Info("redis connection established", "addr", cfg.Redis.Addr)
		return session.NewRedisStore(client, cfg.Redis.Prefix), nil
	default:
		return session.NewMemoryStore(cfg.Session.CleanupInterval), nil
	}
}
