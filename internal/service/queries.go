package service

import (
	"context"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// LatestSnapshot returns the most recent stored observation, or nil when
// the location has never been synced. A location with zero syncs is a
// valid, fully formed entity; absence is not an error.
func (s *Service) LatestSnapshot(ctx context.Context, locationID int64) (*models.WeatherSnapshot, error) {
	return s.store.LatestSnapshot(ctx, locationID)
}

// GetForecast returns the stored forecast set ordered by forecast time
func (s *Service) GetForecast(ctx context.Context, locationID int64) ([]models.ForecastItem, error) {
	return s.store.GetForecasts(ctx, locationID)
}

// LastSyncTime returns when the location last synced successfully, or nil
func (s *Service) LastSyncTime(ctx context.Context, locationID int64) (*time.Time, error) {
	return s.store.LastSuccessfulSync(ctx, locationID)
}

// GetSyncHistory returns recent audit entries for a location, newest first
func (s *Service) GetSyncHistory(ctx context.Context, locationID int64, limit int) ([]models.SyncRecord, error) {
	if _, err := s.GetLocation(ctx, locationID); err != nil {
		return nil, err
	}
	return s.store.GetSyncHistory(ctx, locationID, limit)
}

// GetWeatherData bundles the latest known weather state for a location:
// current snapshot, forecast set, and last successful sync time. Requires
// the location to exist but not to have any data yet.
func (s *Service) GetWeatherData(ctx context.Context, locationID int64) (*models.WeatherData, error) {
	loc, err := s.GetLocation(ctx, locationID)
	if err != nil {
		return nil, err
	}

	current, err := s.store.LatestSnapshot(ctx, locationID)
	if err != nil {
		return nil, err
	}

	forecast, err := s.store.GetForecasts(ctx, locationID)
	if err != nil {
		return nil, err
	}

	lastSynced, err := s.store.LastSuccessfulSync(ctx, locationID)
	if err != nil {
		return nil, err
	}

	return &models.WeatherData{
		Location:   *loc,
		Current:    current,
		Forecast:   forecast,
		LastSynced: lastSynced,
	}, nil
}

// GetPreferences returns all stored preferences
func (s *Service) GetPreferences(ctx context.Context) ([]models.Preference, error) {
	return s.store.GetPreferences(ctx)
}

// UpdatePreference upserts one preference. Only presence is validated;
// interpretation of the value happens at read time.
func (s *Service) UpdatePreference(ctx context.Context, key, value string) error {
	if key == "" {
		return &ValidationError{Msg: "preference key cannot be empty"}
	}
	if value == "" {
		return &ValidationError{Msg: "preference value cannot be empty"}
	}
	return s.store.UpsertPreference(ctx, key, value)
}
