package main

import (
	"context"
	"flag"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/config"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/database"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/events"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// One-shot collector: syncs every tracked location once and exits. Meant
// to be run from cron or by hand.
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

	db, err := database.NewDB(config.GetDatabaseDSN())
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()

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

	var publisher service.Publisher
	redisCfg := config.GetRedisConfig(cfg)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	ctx := context.Background()
	if err := redisClient.Ping(ctx).Err(); err != nil {
		log.Printf("Redis unavailable, sync events disabled: %v", err)
	} else {
		publisher = events.NewPublisher(redisClient, redisCfg.Stream)
	}

	svc := service.New(db, client, publisher, cfg.Provider.SyncType)

	locations, err := svc.ListLocations(ctx)
	if err != nil {
		log.Fatalf("Failed to list locations: %v", err)
	}
	if len(locations) == 0 {
		log.Println("No locations to sync. Run the seed command first.")
		return
	}

	var wg sync.WaitGroup
	for _, location := range locations {
		wg.Add(1)
		go func(loc models.Location) {
			defer wg.Done()

			if _, _, err := svc.SyncWeather(ctx, loc.ID); err != nil {
				log.Printf("Sync failed for %s: %v", loc.Name, err)
			}
		}(location)
	}

	wg.Wait()
	log.Printf("Weather collection completed for %d locations. Exiting", len(locations))
}
