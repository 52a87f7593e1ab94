package service

import (
	"context"
	"errors"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// fakeStore is an in-memory Store with the same replace/append semantics
// as the MySQL implementation
type fakeStore struct {
	nextID    int64
	locations map[int64]models.Location
	snapshots []models.WeatherSnapshot
	forecasts map[int64][]models.ForecastItem
	history   []models.SyncRecord
	prefs     map[string]string

	replaceErr error
	prefErr    error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		nextID:    1,
		locations: make(map[int64]models.Location),
		forecasts: make(map[int64][]models.ForecastItem),
		prefs:     make(map[string]string),
	}
}

func (f *fakeStore) InsertLocation(_ context.Context, name, country string, latitude, longitude float64) (*models.Location, error) {
	now := time.Now().UTC()
	loc := models.Location{
		ID:          f.nextID,
		Name:        name,
		Country:     country,
		Latitude:    latitude,
		Longitude:   longitude,
		DisplayName: &name,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	f.nextID++
	f.locations[loc.ID] = loc
	return &loc, nil
}

func (f *fakeStore) GetLocation(_ context.Context, id int64) (*models.Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return nil, nil
	}
	return &loc, nil
}

func (f *fakeStore) ListLocations(_ context.Context) ([]models.Location, error) {
	var out []models.Location
	for _, loc := range f.locations {
		out = append(out, loc)
	}
	return out, nil
}

func (f *fakeStore) UpdateLocation(_ context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error) {
	loc, ok := f.locations[id]
	if !ok {
		return nil, nil
	}
	if displayName != nil {
		loc.DisplayName = displayName
	}
	if isFavorite != nil {
		loc.IsFavorite = *isFavorite
	}
	loc.UpdatedAt = time.Now().UTC()
	f.locations[id] = loc
	return &loc, nil
}

func (f *fakeStore) DeleteLocation(_ context.Context, id int64) (bool, error) {
	if _, ok := f.locations[id]; !ok {
		return false, nil
	}
	delete(f.locations, id)

	// Cascade like the schema does
	var kept []models.WeatherSnapshot
	for _, s := range f.snapshots {
		if s.LocationID != id {
			kept = append(kept, s)
		}
	}
	f.snapshots = kept
	delete(f.forecasts, id)

	var keptHistory []models.SyncRecord
	for _, h := range f.history {
		if h.LocationID != id {
			keptHistory = append(keptHistory, h)
		}
	}
	f.history = keptHistory

	return true, nil
}

func (f *fakeStore) ReplaceWeather(_ context.Context, locationID int64, snap models.WeatherSnapshot, items []models.ForecastItem, syncType string) (*models.WeatherSnapshot, []models.ForecastItem, error) {
	if f.replaceErr != nil {
		return nil, nil, f.replaceErr
	}

	now := time.Now().UTC()
	snap.ID = f.nextID
	f.nextID++
	snap.LocationID = locationID
	snap.RecordedAt = now
	f.snapshots = append(f.snapshots, snap)

	stored := make([]models.ForecastItem, 0, len(items))
	for _, item := range items {
		item.ID = f.nextID
		f.nextID++
		item.LocationID = locationID
		stored = append(stored, item)
	}
	f.forecasts[locationID] = stored

	f.history = append(f.history, models.SyncRecord{
		ID:         f.nextID,
		LocationID: locationID,
		SyncType:   syncType,
		Status:     models.SyncStatusSuccess,
		SyncedAt:   now,
	})
	f.nextID++

	return &snap, stored, nil
}

func (f *fakeStore) RecordSyncFailure(_ context.Context, locationID int64, syncType, errorMessage string) error {
	f.history = append(f.history, models.SyncRecord{
		ID:           f.nextID,
		LocationID:   locationID,
		SyncType:     syncType,
		Status:       models.SyncStatusFailed,
		ErrorMessage: &errorMessage,
		SyncedAt:     time.Now().UTC(),
	})
	f.nextID++
	return nil
}

func (f *fakeStore) LatestSnapshot(_ context.Context, locationID int64) (*models.WeatherSnapshot, error) {
	var latest *models.WeatherSnapshot
	for i := range f.snapshots {
		s := f.snapshots[i]
		if s.LocationID != locationID {
			continue
		}
		if latest == nil || s.RecordedAt.After(latest.RecordedAt) || (s.RecordedAt.Equal(latest.RecordedAt) && s.ID > latest.ID) {
			latest = &s
		}
	}
	return latest, nil
}

func (f *fakeStore) GetForecasts(_ context.Context, locationID int64) ([]models.ForecastItem, error) {
	return f.forecasts[locationID], nil
}

func (f *fakeStore) LastSuccessfulSync(_ context.Context, locationID int64) (*time.Time, error) {
	var last *time.Time
	for _, h := range f.history {
		if h.LocationID != locationID || h.Status != models.SyncStatusSuccess {
			continue
		}
		ts := h.SyncedAt
		if last == nil || ts.After(*last) {
			last = &ts
		}
	}
	return last, nil
}

func (f *fakeStore) GetSyncHistory(_ context.Context, locationID int64, limit int) ([]models.SyncRecord, error) {
	var out []models.SyncRecord
	for i := len(f.history) - 1; i >= 0 && len(out) < limit; i-- {
		if f.history[i].LocationID == locationID {
			out = append(out, f.history[i])
		}
	}
	return out, nil
}

func (f *fakeStore) GetPreferences(_ context.Context) ([]models.Preference, error) {
	var out []models.Preference
	for k, v := range f.prefs {
		out = append(out, models.Preference{Key: k, Value: v})
	}
	return out, nil
}

func (f *fakeStore) GetPreference(_ context.Context, key string) (string, bool, error) {
	if f.prefErr != nil {
		return "", false, f.prefErr
	}
	v, ok := f.prefs[key]
	return v, ok, nil
}

func (f *fakeStore) UpsertPreference(_ context.Context, key, value string) error {
	f.prefs[key] = value
	return nil
}

// historyFor counts audit rows for one location
func (f *fakeStore) historyFor(locationID int64) []models.SyncRecord {
	var out []models.SyncRecord
	for _, h := range f.history {
		if h.LocationID == locationID {
			out = append(out, h)
		}
	}
	return out
}

// fakeGateway returns canned responses or errors
type fakeGateway struct {
	candidates []models.GeoCandidate
	geocodeErr error

	current    *models.WeatherSnapshot
	currentErr error

	forecast    []models.ForecastItem
	forecastErr error

	lastUnits string
}

var errProviderDown = &api.ProviderError{Endpoint: "current_weather", Err: errors.New("connection refused")}

func (g *fakeGateway) Geocode(_ context.Context, name, country string) ([]models.GeoCandidate, error) {
	if g.geocodeErr != nil {
		return nil, g.geocodeErr
	}
	return g.candidates, nil
}

func (g *fakeGateway) CurrentWeather(_ context.Context, lat, lon float64, units string) (*models.WeatherSnapshot, error) {
	g.lastUnits = units
	if g.currentErr != nil {
		return nil, g.currentErr
	}
	return g.current, nil
}

func (g *fakeGateway) Forecast(_ context.Context, lat, lon float64, units string) ([]models.ForecastItem, error) {
	if g.forecastErr != nil {
		return nil, g.forecastErr
	}
	return g.forecast, nil
}

// capturingPublisher records published events
type capturingPublisher struct {
	events []SyncEvent
}

func (p *capturingPublisher) PublishSyncEvent(_ context.Context, event SyncEvent) error {
	p.events = append(p.events, event)
	return nil
}
