package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// SeedLocation is a location to register on first start, resolved through geocoding
type SeedLocation struct {
	Name    string `yaml:"name"`
	Country string `yaml:"country"`
}

// Config is the application configuration loaded from config.yaml.
// Values are handed to constructors explicitly; packages outside cmd
// never read the environment or this file themselves.
type Config struct {
	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`
	Provider struct {
		APIKey         string `yaml:"api_key"`
		BaseURL        string `yaml:"base_url"`
		GeoURL         string `yaml:"geo_url"`
		TimeoutSeconds int    `yaml:"timeout_seconds"`
		GeoLimit       int    `yaml:"geo_limit"`
		SyncType       string `yaml:"sync_type"`
	} `yaml:"provider"`
	Redis struct {
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Stream   string `yaml:"stream"`
	} `yaml:"redis"`
	Locations []SeedLocation `yaml:"locations"`
}

func Load(configPath string) (*Config, error) {
	cfg := &Config{}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", configPath, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = ":8080"
	}
	if c.Provider.TimeoutSeconds == 0 {
		c.Provider.TimeoutSeconds = 10
	}
	if c.Provider.GeoLimit == 0 {
		c.Provider.GeoLimit = 5
	}
	if c.Provider.SyncType == "" {
		c.Provider.SyncType = "all"
	}
	if c.Redis.Stream == "" {
		c.Redis.Stream = "weather_sync_events"
	}
	// API key usually comes from the environment rather than the yaml file
	if c.Provider.APIKey == "" {
		c.Provider.APIKey = os.Getenv("OPENWEATHER_API_KEY")
	}
}

func (c *Config) validate() error {
	for i, loc := range c.Locations {
		if loc.Name == "" {
			return fmt.Errorf("locations[%d]: name cannot be empty", i)
		}
	}
	return nil
}
