package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/config"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/database"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// Seeds the database with the locations listed in config.yaml, resolving
// each one through the provider's geocoding API.
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
	if len(cfg.Locations) == 0 {
		log.Println("No locations configured, nothing to seed")
		return
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

	svc := service.New(db, client, nil, cfg.Provider.SyncType)

	ctx := context.Background()
	seeded := 0
	for _, seed := range cfg.Locations {
		loc, err := svc.AddLocation(ctx, seed.Name, seed.Country)
		if err != nil {
			if errors.Is(err, service.ErrNoGeocodeMatch) {
				log.Printf("Skipping %q: no geocoding match", seed.Name)
				continue
			}
			log.Fatalf("Failed to seed location %q: %v", seed.Name, err)
		}
		log.Printf("Seeded %q (id=%d)", loc.Name, loc.ID)
		seeded++
	}

	log.Printf("✓ Seeded %d of %d configured locations", seeded, len(cfg.Locations))
}
