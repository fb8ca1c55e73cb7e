package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Env      string
	LogLevel string

	HTTPPort           string
	RequestTimeout     time.Duration
	ShutdownTimeout    time.Duration
	MaxRequestBodySize int64

	MongoURI            string
	MongoDBName         string
	MongoConnectTimeout time.Duration
	MongoSelectTimeout  time.Duration
	MongoMaxPoolSize    uint64
	MongoMinPoolSize    uint64

	RedisAddr     string
	RedisPassword string

	JWTSecret  string
	TokenTTL   time.Duration
	SessionTTL time.Duration
}

func Load() *Config {
	return &Config{
		Env:      getEnv("APP_ENV", "dev"),
		LogLevel: getEnv("LOG_LEVEL", "info"),

		HTTPPort:           getEnv("HTTP_PORT", "8080"),
		RequestTimeout:     getEnvDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:    getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		MaxRequestBodySize: 1 << 20, // 1MB

		MongoURI:            getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:         getEnv("MONGO_DB_NAME", "ecommerce"),
		MongoConnectTimeout: getEnvDuration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MongoSelectTimeout:  getEnvDuration("MONGO_SELECT_TIMEOUT", 5*time.Second),
		MongoMaxPoolSize:    getEnvUint("MONGO_MAX_POOL_SIZE", 100),
		MongoMinPoolSize:    getEnvUint("MONGO_MIN_POOL_SIZE", 10),

		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),

		JWTSecret:  getEnv("JWT_SECRET", "dev-secret-change-me"),
		TokenTTL:   getEnvDuration("TOKEN_TTL", time.Hour),
		SessionTTL: getEnvDuration("SESSION_TTL", 24*time.Hour),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvUint(key string, defaultValue uint64) uint64 {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	n, err := strconv.ParseUint(v, 10, 64)
	if err != nil {
		return defaultValue
	}
	return n
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	v := os.Getenv(key)
	if v == "" {
		return defaultValue
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		if secs, err2 := strconv.Atoi(v); err2 == nil {
			return time.Duration(secs) * time.Second
		}
		return defaultValue
	}
	return d
}
