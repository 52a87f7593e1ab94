package models

import "time"

// Location represents a tracked place with coordinates and display metadata
type Location struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Country     string    `json:"country"`
	Latitude    float64   `json:"latitude"`
	Longitude   float64   `json:"longitude"`
	DisplayName *string   `json:"display_name"`
	IsFavorite  bool      `json:"is_favorite"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// GeoCandidate is one geocoding result from the provider, kept in
// provider relevance order
type GeoCandidate struct {
	Name      string  `json:"name"`
	Country   string  `json:"country"`
	Latitude  float64 `json:"lat"`
	Longitude float64 `json:"lon"`
}

// WeatherSnapshot is a single stored current-weather observation.
// Snapshots are append-only; the latest one is selected by RecordedAt descending.
type WeatherSnapshot struct {
	ID                 int64     `json:"id"`
	LocationID         int64     `json:"location_id"`
	Temperature        float64   `json:"temperature"`
	FeelsLike          float64   `json:"feels_like"`
	TempMin            float64   `json:"temp_min"`
	TempMax            float64   `json:"temp_max"`
	Pressure           int       `json:"pressure"`
	Humidity           int       `json:"humidity"`
	WeatherMain        string    `json:"weather_main"`
	WeatherDescription string    `json:"weather_description"`
	WeatherIcon        string    `json:"weather_icon"`
	WindSpeed          float64   `json:"wind_speed"`
	WindDeg            *int      `json:"wind_deg"`
	Clouds             int       `json:"clouds"`
	Visibility         *int      `json:"visibility"`
	APITimestamp       int64     `json:"api_timestamp"`
	RecordedAt         time.Time `json:"recorded_at"`
}

// ForecastItem is one future-time weather prediction slot. The set of rows for
// a location always represents exactly one complete forecast fetch.
type ForecastItem struct {
	ID                 int64   `json:"id"`
	LocationID         int64   `json:"location_id"`
	ForecastTimestamp  int64   `json:"forecast_timestamp"`
	Temperature        float64 `json:"temperature"`
	FeelsLike          float64 `json:"feels_like"`
	TempMin            float64 `json:"temp_min"`
	TempMax            float64 `json:"temp_max"`
	Pressure           int     `json:"pressure"`
	Humidity           int     `json:"humidity"`
	WeatherMain        string  `json:"weather_main"`
	WeatherDescription string  `json:"weather_description"`
	WeatherIcon        string  `json:"weather_icon"`
	WindSpeed          float64 `json:"wind_speed"`
	WindDeg            *int    `json:"wind_deg"`
	Clouds             int     `json:"clouds"`
	Pop                float64 `json:"pop"` // precipitation probability, 0.0-1.0
}

// Sync history statuses
const (
	SyncStatusSuccess = "success"
	SyncStatusFailed  = "failed"
)

// SyncRecord is one immutable audit entry for a sync attempt
type SyncRecord struct {
	ID           int64     `json:"id"`
	LocationID   int64     `json:"location_id"`
	SyncType     string    `json:"sync_type"`
	Status       string    `json:"status"`
	ErrorMessage *string   `json:"error_message"`
	SyncedAt     time.Time `json:"synced_at"`
}

// Preference is a single key/value user setting
type Preference struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

// WeatherData bundles everything known about a location for read endpoints
type WeatherData struct {
	Location   Location         `json:"location"`
	Current    *WeatherSnapshot `json:"current"`
	Forecast   []ForecastItem   `json:"forecast"`
	LastSynced *time.Time       `json:"last_synced"`
}
