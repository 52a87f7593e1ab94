package main

import (
	"context"
	"flag"
	"log"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/config"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/database"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/events"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/server"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	// Initialize database
	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

	// Initialize provider client
	client, err := api.NewClient(api.ClientConfig{
		APIKey:   cfg.Provider.APIKey,
		BaseURL:  cfg.Provider.BaseURL,
		GeoURL:   cfg.Provider.GeoURL,
		Timeout:  time.Duration(cfg.Provider.TimeoutSeconds) * time.Second,
		GeoLimit: cfg.Provider.GeoLimit,
	})
	if err != nil {
		log.Fatalf("Failed to initialize provider client: %v", err)
	}

	// Sync events are optional; run without a publisher when redis is down
	var publisher service.Publisher
	redisCfg := config.GetRedisConfig(cfg)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	if err := redisClient.Ping(context.Background()).Err(); err != nil {
		log.Printf("Redis unavailable, sync events disabled: %v", err)
	} else {
		publisher = events.NewPublisher(redisClient, redisCfg.Stream)
	}

	svc := service.New(db, client, publisher, cfg.Provider.SyncType)

	httpServer := server.NewServer(svc)
	if err := httpServer.Start(cfg.Server.Addr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
