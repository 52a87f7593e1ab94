package config

import (
	"os"
	"strconv"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	Stream   string
}

// GetRedisConfig resolves redis settings from the environment, falling back
// to whatever the yaml config carries.
func GetRedisConfig(cfg *Config) RedisConfig {
	rc := RedisConfig{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
		Stream:   cfg.Redis.Stream,
	}

	if addr := os.Getenv("REDIS_ADDR"); addr != "" {
		rc.Addr = addr
	}
	if rc.Addr == "" {
		rc.Addr = "localhost:6379"
	}
	if password := os.Getenv("REDIS_PASSWORD"); password != "" {
		rc.Password = password
	}
	if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
		if parsed, err := strconv.Atoi(dbStr); err == nil {
			rc.DB = parsed
		}
	}
	if stream := os.Getenv("REDIS_STREAM"); stream != "" {
		rc.Stream = stream
	}

	return rc
}
