package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// SyncWeather runs one fetch-and-persist attempt for the given location.
//
// The location must exist; otherwise ErrLocationNotFound is returned and no
// audit row is written, since the attempt never reached the provider. On
// success the new snapshot is appended, the forecast set is fully replaced,
// and a success audit row is written, all in one transaction. On any
// provider failure a failed audit row is written on its own and the error is
// returned; previously stored weather data stays untouched.
//
// Two concurrent calls for the same location are not serialized: each writes
// its own snapshot and audit row, and the last transaction to commit wins
// the forecast set.
func (s *Service) SyncWeather(ctx context.Context, locationID int64) (*models.WeatherSnapshot, []models.ForecastItem, error) {
	loc, err := s.store.GetLocation(ctx, locationID)
	if err != nil {
		return nil, nil, err
	}
	if loc == nil {
		return nil, nil, ErrLocationNotFound
	}

	units := s.resolveUnits(ctx)

	current, items, fetchErr := s.fetch(ctx, loc, units)
	if fetchErr != nil {
		// Audit the failure before re-signaling it. This is the one place a
		// failure is intercepted rather than purely propagated.
		if auditErr := s.store.RecordSyncFailure(ctx, locationID, s.syncType, fetchErr.Error()); auditErr != nil {
			log.Printf("Failed to record sync failure for location %d: %v", locationID, auditErr)
		}
		metrics.RecordSync(models.SyncStatusFailed)
		s.publish(ctx, loc, models.SyncStatusFailed, fetchErr)
		return nil, nil, fetchErr
	}

	snap, stored, err := s.store.ReplaceWeather(ctx, locationID, *current, items, s.syncType)
	if err != nil {
		return nil, nil, err
	}

	metrics.RecordSync(models.SyncStatusSuccess)
	s.publish(ctx, loc, models.SyncStatusSuccess, nil)
	log.Printf("✓ Synced %q: 1 snapshot, %d forecast slots", loc.Name, len(stored))

	return snap, stored, nil
}

// fetch performs the two provider calls of one logical sync attempt
func (s *Service) fetch(ctx context.Context, loc *models.Location, units string) (*models.WeatherSnapshot, []models.ForecastItem, error) {
	current, err := s.gateway.CurrentWeather(ctx, loc.Latitude, loc.Longitude, units)
	if err != nil {
		return nil, nil, fmt.Errorf("current weather fetch failed: %w", err)
	}

	items, err := s.gateway.Forecast(ctx, loc.Latitude, loc.Longitude, units)
	if err != nil {
		return nil, nil, fmt.Errorf("forecast fetch failed: %w", err)
	}

	return current, items, nil
}

// resolveUnits reads the active units preference, defaulting to metric.
// A store error here is logged but never fails the sync.
func (s *Service) resolveUnits(ctx context.Context) string {
	value, found, err := s.store.GetPreference(ctx, PrefKeyUnits)
	if err != nil {
		log.Printf("Failed to read units preference, using %s: %v", DefaultUnits, err)
		return DefaultUnits
	}
	if !found || value == "" {
		return DefaultUnits
	}
	return value
}

// publish emits a sync event when a publisher is configured; best effort
func (s *Service) publish(ctx context.Context, loc *models.Location, status string, syncErr error) {
	if s.publisher == nil {
		return
	}

	event := SyncEvent{
		LocationID:   loc.ID,
		LocationName: loc.Name,
		Status:       status,
		SyncedAt:     time.Now().UTC(),
	}
	if syncErr != nil {
		event.Error = syncErr.Error()
	}

	if err := s.publisher.PublishSyncEvent(ctx, event); err != nil {
		log.Printf("Failed to publish sync event for location %d: %v", loc.ID, err)
	}
}
