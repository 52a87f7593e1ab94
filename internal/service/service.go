package service

import (
	"context"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// Gateway is the outbound weather/geocoding provider contract. Both data
// calls of a sync go through it; it is the only suspension point of the
// system.
type Gateway interface {
	Geocode(ctx context.Context, name, country string) ([]models.GeoCandidate, error)
	CurrentWeather(ctx context.Context, lat, lon float64, units string) (*models.WeatherSnapshot, error)
	Forecast(ctx context.Context, lat, lon float64, units string) ([]models.ForecastItem, error)
}

// Store is the persistence contract the orchestrator depends on. The
// multi-statement write of a successful sync happens inside ReplaceWeather
// as one transaction.
type Store interface {
	InsertLocation(ctx context.Context, name, country string, latitude, longitude float64) (*models.Location, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	UpdateLocation(ctx context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error)
	DeleteLocation(ctx context.Context, id int64) (bool, error)

	ReplaceWeather(ctx context.Context, locationID int64, snap models.WeatherSnapshot, items []models.ForecastItem, syncType string) (*models.WeatherSnapshot, []models.ForecastItem, error)
	RecordSyncFailure(ctx context.Context, locationID int64, syncType, errorMessage string) error
	LatestSnapshot(ctx context.Context, locationID int64) (*models.WeatherSnapshot, error)
	GetForecasts(ctx context.Context, locationID int64) ([]models.ForecastItem, error)
	LastSuccessfulSync(ctx context.Context, locationID int64) (*time.Time, error)
	GetSyncHistory(ctx context.Context, locationID int64, limit int) ([]models.SyncRecord, error)

	GetPreferences(ctx context.Context) ([]models.Preference, error)
	GetPreference(ctx context.Context, key string) (string, bool, error)
	UpsertPreference(ctx context.Context, key, value string) error
}

// SyncEvent describes the outcome of one sync attempt, published to the
// event stream for downstream consumers
type SyncEvent struct {
	LocationID   int64     `json:"location_id"`
	LocationName string    `json:"location_name"`
	Status       string    `json:"status"`
	Error        string    `json:"error,omitempty"`
	SyncedAt     time.Time `json:"synced_at"`
}

// Publisher emits sync events. Publishing is best effort and never affects
// the outcome of a sync.
type Publisher interface {
	PublishSyncEvent(ctx context.Context, event SyncEvent) error
}

const (
	// PrefKeyUnits selects the measurement unit system for provider fetches
	PrefKeyUnits = "units"

	// DefaultUnits applies when no units preference is stored
	DefaultUnits = "metric"
)

// Service orchestrates location resolution, weather synchronization, and
// the read-only accessors over the store
type Service struct {
	store     Store
	gateway   Gateway
	publisher Publisher // may be nil
	syncType  string
}

// New creates a new Service. publisher may be nil when no event stream is
// configured.
func New(store Store, gateway Gateway, publisher Publisher, syncType string) *Service {
	if syncType == "" {
		syncType = "all"
	}
	return &Service{
		store:     store,
		gateway:   gateway,
		publisher: publisher,
		syncType:  syncType,
	}
}
