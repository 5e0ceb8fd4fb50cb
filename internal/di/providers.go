// Package di assembles the application object graph.
package di

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"chatdesk/internal/autochat"
	"chatdesk/internal/cache"
	"chatdesk/internal/common"
	"chatdesk/internal/config"
	"chatdesk/internal/dbmongo"
	"chatdesk/internal/httpapi"
	"chatdesk/internal/realtime"
)

// Application is everything main needs to run and shut down the
// service.
type Application struct {
	Config *config.Config
	DB     *gorm.DB
	Mongo  *dbmongo.MongoClient
	Cache  cache.Cache
	Hub    *realtime.Hub
	Server *httpapi.Server
}

func ProvideConfig() *config.Config {
	return config.Load()
}

// ProvideCache picks Redis when an address is configured, otherwise
// the bounded in-process cache.
func ProvideCache(cfg *config.Config) (cache.Cache, error) {
	if cfg.Redis.Addr == "" {
		return cache.NewMemoryCache(cfg.Cache.MaxEntries), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("cannot connect to redis: %w", err)
	}
	return cache.NewRedisCache(client), nil
}

func ProvideAttachmentStorageIface(storage *dbmongo.AttachmentStorage) common.AttachmentStorage {
	return storage
}

func ProvideMessageLimits(cfg *config.Config) config.MessageConfig {
	return cfg.Message
}

func ProvideAutoChatSettings(cfg *config.Config) config.AutoChatConfig {
	return cfg.AutoChat
}

func ProvideConfigStore(db *gorm.DB, c cache.Cache, cfg *config.Config) *autochat.ConfigStore {
	return autochat.NewConfigStore(db, c, cfg.AutoChat.ConfigTTL)
}
