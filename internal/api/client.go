package api

import (
	"fmt"
	"net/http"
	"time"

	"github.com/sony/gobreaker"
)

// ProviderError wraps any transport, parse, or status failure from the
// weather provider so callers can tell it apart from local errors.
type ProviderError struct {
	Endpoint string
	Err      error
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider %s: %v", e.Endpoint, e.Err)
}

func (e *ProviderError) Unwrap() error {
	return e.Err
}

// ClientConfig holds everything the OpenWeatherMap client needs. The API key
// and URLs are injected here rather than read from the environment so the
// client can be pointed at a test server.
type ClientConfig struct {
	APIKey   string
	BaseURL  string // data endpoints, default https://api.openweathermap.org/data/2.5
	GeoURL   string // geocoding endpoints, default http://api.openweathermap.org/geo/1.0
	Timeout  time.Duration
	GeoLimit int // max geocoding candidates to request
}

const (
	defaultBaseURL  = "https://api.openweathermap.org/data/2.5"
	defaultGeoURL   = "http://api.openweathermap.org/geo/1.0"
	defaultTimeout  = 10 * time.Second
	defaultGeoLimit = 5
)

// Client is a client for the OpenWeatherMap API
type Client struct {
	apiKey   string
	baseURL  string
	geoURL   string
	geoLimit int
	client   *http.Client
	circuit  *gobreaker.CircuitBreaker
}

// NewClient creates a new OpenWeatherMap API client
func NewClient(cfg ClientConfig) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openweathermap api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if cfg.GeoURL == "" {
		cfg.GeoURL = defaultGeoURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = defaultTimeout
	}
	if cfg.GeoLimit == 0 {
		cfg.GeoLimit = defaultGeoLimit
	}

	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        "openweathermap",
		MaxRequests: 5,
		Interval:    1 * time.Minute,
		Timeout:     2 * time.Minute,
	})

	return &Client{
		apiKey:   cfg.APIKey,
		baseURL:  cfg.BaseURL,
		geoURL:   cfg.GeoURL,
		geoLimit: cfg.GeoLimit,
		client:   &http.Client{Timeout: cfg.Timeout},
		circuit:  cb,
	}, nil
}
