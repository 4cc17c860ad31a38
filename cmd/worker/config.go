package main

import (
	"github.com/hibiken/asynq"
	"github.com/rs/zerolog/log"

	"classifieds-backend/internal/config"
)

// Config holds all configuration for the worker
type Config struct {
	RedisOpt    asynq.RedisClientOpt
	Concurrency int
	HealthPort  string
}

// loadConfig lấy phần config worker cần từ application config
func loadConfig(app *config.Config) *Config {
	cfg := &Config{
		RedisOpt: asynq.RedisClientOpt{
			Addr:     app.Redis.Host,
			Password: app.Redis.Password,
			DB:       app.Redis.DB,
		},
		Concurrency: app.Queue.Concurrency,
		HealthPort:  app.Queue.WorkerHealthPort,
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 5
	}

	log.Info().
		Str("redis", cfg.RedisOpt.Addr).
		Int("concurrency", cfg.Concurrency).
		Msg("[Config] Worker configuration loaded")

	return cfg
}
