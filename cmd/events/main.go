package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/config"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// Tails the sync-event stream with a consumer group and logs every sync
// outcome. Useful for watching sync activity across server and collect
// processes.
func main() {
	configPath := flag.String("config", "./config.yaml", "path to config file")
	consumerName := flag.String("consumer", "consumer-1", "consumer name within the group")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("No .env file found: %v", err)
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	redisCfg := config.GetRedisConfig(cfg)
	redisClient := redis.NewClient(&redis.Options{
		Addr:     redisCfg.Addr,
		Password: redisCfg.Password,
		DB:       redisCfg.DB,
	})
	defer redisClient.Close()

	consumerGroup := "sync_event_consumers"
	stream := redisCfg.Stream

	// Create consumer group if it doesn't exist
	err = redisClient.XGroupCreateMkStream(context.Background(), stream, consumerGroup, "0").Err()
	if err != nil && err.Error() != "BUSYGROUP Consumer Group name already exists" {
		log.Fatalf("Failed to create consumer group: %v", err)
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown signal
	go func() {
		<-quit
		log.Println("Shutting down event consumer...")
		cancel()
	}()

	log.Printf("Consuming sync events from stream %q. Press Ctrl+C to stop...", stream)

	for {
		msgs, err := redisClient.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    consumerGroup,
			Consumer: *consumerName,
			Streams:  []string{stream, ">"},
			Count:    10,
			Block:    time.Second * 5,
		}).Result()

		if ctx.Err() != nil {
			// Context cancelled, exit gracefully
			break
		}

		if err != nil && err != redis.Nil {
			log.Printf("Error reading from Redis: %v", err)
			continue
		}

		for _, msg := range msgs {
			for _, m := range msg.Messages {
				data, ok := m.Values["data"].(string)
				if !ok {
					log.Printf("Skipping malformed message %s", m.ID)
					redisClient.XAck(ctx, stream, consumerGroup, m.ID)
					continue
				}

				var event service.SyncEvent
				if err := json.Unmarshal([]byte(data), &event); err != nil {
					log.Printf("Failed to decode sync event %s: %v", m.ID, err)
					redisClient.XAck(ctx, stream, consumerGroup, m.ID)
					continue
				}

				if event.Status == "success" {
					log.Printf("✓ %s (id=%d) synced at %s", event.LocationName, event.LocationID, event.SyncedAt.Format(time.RFC3339))
				} else {
					log.Printf("✗ %s (id=%d) sync failed: %s", event.LocationName, event.LocationID, event.Error)
				}

				redisClient.XAck(ctx, stream, consumerGroup, m.ID)
			}
		}
	}

	log.Println("Event consumer stopped")
}
