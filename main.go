package main

import (
	"context"
	"math"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"

	"socialfeed/cache"
	"socialfeed/config"
	"socialfeed/engine"
	"socialfeed/events"
	"socialfeed/media"
	"socialfeed/server"
	"socialfeed/storage"
	"socialfeed/storage/hybrid"
	"socialfeed/storage/memory"
	"socialfeed/storage/postgres"
	"socialfeed/tasks"
	"socialfeed/utils"
)

func main() {
	cfg := config.Load()

	logLevel, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		logLevel = log.InfoLevel
	}
	log.SetLevel(logLevel)

	ctx := context.Background()

	var backend storage.Backend
	var statsCache *cache.UsersCache

	switch cfg.Backend {
	case "memory":
		backend = memory.New()

	case "postgres":
		pg := connectPostgres(ctx, cfg)
		backend = pg

	case "hybrid":
		pg := connectPostgres(ctx, cfg)
		redisClient := connectRedis(cfg)
		backend = hybrid.New(pg, redisClient)
		statsCache = cache.NewUsersCache(redisClient, 24*time.Hour)

	default:
		log.Fatalf("Unknown backend %q", cfg.Backend)
	}

	var mediaStore *media.Store
	if cfg.Minio.Enabled() {
		mediaStore, err = media.New(
			cfg.Minio.Endpoint,
			cfg.Minio.AccessKey,
			cfg.Minio.SecretKey,
			cfg.Minio.Bucket,
			cfg.Minio.UseSSL,
		)
		if err != nil {
			log.Fatalf("Error creating media store: %v", err)
		}
		if err := mediaStore.EnsureBucket(ctx); err != nil {
			log.Fatalf("Error ensuring media bucket: %v", err)
		}
	}

	broadcaster := events.NewBroadcaster()
	socialEngine := engine.New(backend, broadcaster, statsCache, cfg.BackendTimeout)

	if statsCache != nil {
		statisticsUpdater := tasks.NewStatisticsUpdater(backend, statsCache, cfg.StatisticsInterval)
		go utils.Recoverer(math.MaxInt, "statistics_updater", func() {
			statisticsUpdater.Run()
		})
	}

	log.Infof("Starting server on %s with %s backend", cfg.ListenAddr, cfg.Backend)
	srv := server.NewServer(socialEngine, broadcaster, mediaStore, []byte(cfg.JWTSecret), cfg.ListenAddr)
	srv.Run()
}

func connectPostgres(ctx context.Context, cfg config.Config) *postgres.Backend {
	pool, err := pgxpool.New(ctx, cfg.PostgresDSN())
	if err != nil {
		log.Fatalf("Unable to create connection pool: %v", err)
	}

	pg := postgres.New(pool)
	if err := pg.EnsureSchema(ctx); err != nil {
		log.Fatalf("Error initializing schema: %v", err)
	}
	return pg
}

func connectRedis(cfg config.Config) *redis.Client {
	return redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr(),
	})
}
