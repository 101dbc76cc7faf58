package services

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	appContext "github.com/alphabatem/common/context"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"github.com/heartletter/letter_api/services/repositories"
)

type RedisService struct {
	appContext.DefaultService
	redis *redis.Client
	store *repositories.RedisStore
}

const REDIS_SVC = "redis_svc"

func (svc RedisService) Id() string {
	return REDIS_SVC
}

func (svc *RedisService) Configure(ctx *appContext.Context) error {
	if err := svc.initRedisClient(); err != nil {
		return err
	}
	return svc.DefaultService.Configure(ctx)
}

func (svc *RedisService) Start() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := svc.redis.Ping(ctx).Result(); err != nil {
		return fmt.Errorf("failed to connect to Redis: %w", err)
	}
	log.Info().Str("addr", svc.redis.Options().Addr).Msg("Redis connected")
	return nil
}

func (svc *RedisService) Shutdown() {
	if svc.redis != nil {
		_ = svc.redis.Close()
	}
}

// initRedisClient prefers REDIS_URL (the form Upstash hands out) and falls
// back to REDIS_ADDR, REDIS_PASSWORD and REDIS_DB.
func (svc *RedisService) initRedisClient() error {
	if url := os.Getenv("REDIS_URL"); url != "" {
		opts, err := redis.ParseURL(url)
		if err != nil {
			return fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		svc.setClient(redis.NewClient(opts))
		return nil
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}

	redisDB := 0
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if db, err := strconv.Atoi(dbStr); err == nil {
			redisDB = db
		}
	}

	svc.setClient(redis.NewClient(&redis.Options{
		Addr:     redisAddr,
		Password: os.Getenv("REDIS_PASSWORD"),
		DB:       redisDB,
	}))
	return nil
}

func (svc *RedisService) setClient(client *redis.Client) {
	svc.redis = client
	svc.store = repositories.NewRedisStore(client)
}

func (svc *RedisService) GetClient() *redis.Client {
	return svc.redis
}

// Store exposes the client through the repository store interface.
func (svc *RedisService) Store() repositories.Store {
	return svc.store
}

// NewRedisServiceFromEnv builds a connected service outside the service
// context, for command line tools.
func NewRedisServiceFromEnv() (*RedisService, error) {
	svc := &RedisService{}
	if err := svc.initRedisClient(); err != nil {
		return nil, err
	}
	if err := svc.Start(); err != nil {
		return nil, err
	}
	return svc, nil
}
