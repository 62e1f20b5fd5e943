// internal/config/config.go
package config

import (
	"os"
	"strconv"
)

// Config holds everything the server reads from the environment.
// Empty PostgresDSN or RedisAddr disables the corresponding optional
// subsystem; the game engine runs fine without either.
type Config struct {
	Addr           string
	PostgresDSN    string
	RedisAddr      string
	RedisDB        int
	HistorianQueue string
}

// Load reads configuration from the environment with sane defaults.
func Load() Config {
	return Config{
		Addr:           ":" + GetEnv("PORT", "8080"),
		PostgresDSN:    GetEnv("POSTGRES_DSN", ""),
		RedisAddr:      GetEnv("REDIS_ADDR", ""),
		RedisDB:        GetEnvInt("REDIS_DB", 0),
		HistorianQueue: GetEnv("HISTORIAN_QUEUE_NAME", ""),
	}
}

// GetEnv reads an environment variable or returns a default value.
func GetEnv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// GetEnvInt parses an environment variable as integer, else a default.
func GetEnvInt(key string, def int) int {
	s := os.Getenv(key)
	if s == "" {
		return def
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return v
}
