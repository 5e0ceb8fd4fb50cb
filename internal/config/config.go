package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Mongo    MongoConfig
	Message  MessageConfig
	AutoChat AutoChatConfig
	Cache    CacheConfig
}

// ServerConfig contains server-related configuration
type ServerConfig struct {
	Host         string
	Port         string
	ReadTimeout  int
	WriteTimeout int
}

// DatabaseConfig contains MySQL connection configuration
type DatabaseConfig struct {
	Host         string
	Port         string
	Username     string
	Password     string
	DatabaseName string
	MaxOpenConns int
	MaxIdleConns int
}

// RedisConfig contains the cache backing store address. Leave Addr
// empty to run on the in-process cache only.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// MongoConfig contains the attachment storage connection.
type MongoConfig struct {
	URI      string
	Database string
}

// MessageConfig holds content and attachment caps.
type MessageConfig struct {
	MaxTextLength  int
	MaxAttachments int
}

// AutoChatConfig holds bot quota and welcome window settings.
type AutoChatConfig struct {
	MaxMessages  int
	WelcomeGrace time.Duration
	ConfigTTL    time.Duration
}

// CacheConfig holds read-model cache tuning.
type CacheConfig struct {
	ConversationTTL time.Duration
	MaxEntries      int
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Host:         getEnv("SERVER_HOST", "0.0.0.0"),
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvAsInt("SERVER_READ_TIMEOUT", 15),
			WriteTimeout: getEnvAsInt("SERVER_WRITE_TIMEOUT", 15),
		},
		Database: DatabaseConfig{
			Host:         getEnv("DB_HOST", "localhost"),
			Port:         getEnv("DB_PORT", "3306"),
			Username:     getEnv("DB_USER", "chatdesk_user"),
			Password:     getEnv("DB_PASSWORD", ""),
			DatabaseName: getEnv("DB_NAME", "chatdesk_db"),
			MaxOpenConns: getEnvAsInt("DB_MAX_OPEN_CONNS", 25),
			MaxIdleConns: getEnvAsInt("DB_MAX_IDLE_CONNS", 5),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvAsInt("REDIS_DB", 0),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
			Database: getEnv("MONGO_DB", "chatdesk_media"),
		},
		Message: MessageConfig{
			MaxTextLength:  getEnvAsInt("MESSAGE_MAX_LENGTH", 2000),
			MaxAttachments: getEnvAsInt("MESSAGE_MAX_ATTACHMENTS", 5),
		},
		AutoChat: AutoChatConfig{
			MaxMessages:  getEnvAsInt("AUTO_CHAT_MAX_MESSAGES", 10),
			WelcomeGrace: time.Duration(getEnvAsInt("WELCOME_GRACE_MINUTES", 10)) * time.Minute,
			ConfigTTL:    time.Duration(getEnvAsInt("AUTO_REPLY_CONFIG_TTL_SECONDS", 300)) * time.Second,
		},
		Cache: CacheConfig{
			ConversationTTL: time.Duration(getEnvAsInt("CACHE_TTL_SECONDS", 25)) * time.Second,
			MaxEntries:      getEnvAsInt("CACHE_MAX_ENTRIES", 1000),
		},
	}
}

func (cfg *Config) DSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=Local",
		cfg.Database.Username,
		cfg.Database.Password,
		cfg.Database.Host,
		cfg.Database.Port,
		cfg.Database.DatabaseName,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvAsInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}
