package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server ServerConfig
	Redis  RedisConfig
	Kafka  KafkaConfig
	Admin  AdminConfig
	Gate   GateConfig
	Board  BoardConfig
}

type ServerConfig struct {
	Port         string
	PublicURL    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	IdleTimeout  time.Duration
}

type RedisConfig struct {
	Addr string
}

type KafkaConfig struct {
	Brokers []string
	Enabled bool
}

// AdminConfig carries the fixed admin credentials and the session token
// secret. The credential comparison is deliberately a verbatim equality
// check; it is not a security boundary.
type AdminConfig struct {
	Username    string
	Password    string
	TokenSecret string
}

type GateConfig struct {
	PollInterval time.Duration
}

type BoardConfig struct {
	SaveLockTTL time.Duration
}

func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", ":8080"),
			PublicURL:    getEnv("PUBLIC_URL", "http://localhost:8080"),
			ReadTimeout:  15 * time.Second,
			WriteTimeout: 15 * time.Second,
			IdleTimeout:  60 * time.Second,
		},
		Redis: RedisConfig{
			Addr: getEnv("REDIS_ADDR", "localhost:6379"),
		},
		Kafka: KafkaConfig{
			Brokers: []string{getEnv("KAFKA_BROKERS", "localhost:9092")},
			Enabled: getEnvBool("KAFKA_ENABLED", true),
		},
		Admin: AdminConfig{
			Username:    getEnv("ADMIN_USERNAME", "admin"),
			Password:    getEnv("ADMIN_PASSWORD", "mmfc1234"),
			TokenSecret: getEnv("ADMIN_TOKEN_SECRET", "mmfc-attendance-secret"),
		},
		Gate: GateConfig{
			PollInterval: time.Duration(getEnvInt("GATE_POLL_SECONDS", 15)) * time.Second,
		},
		Board: BoardConfig{
			SaveLockTTL: time.Duration(getEnvInt("BOARD_SAVE_TTL_SECONDS", 10)) * time.Second,
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
