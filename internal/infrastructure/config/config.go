package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	// SessionTTL bounds both the gateway ticket lifetime and the persisted
	// session's idle expiry.
	SessionTTL time.Duration `env:"SESSION_TTL, default=24h"`

	Backend BackendConfig
	Mongo   MongoConfig
	Redis   RedisConfig
	Chat    ChatConfig
}

type BackendConfig struct {
	URL     string        `env:"BACKEND_URL,     default=https://predict-backend-63un.onrender.com/api"`
	Timeout time.Duration `env:"BACKEND_TIMEOUT, default=10s"`
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=rewards_gateway"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type ChatConfig struct {
	PollInterval time.Duration `env:"CHAT_POLL_INTERVAL, default=5s"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
