package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// stubService implements WeatherService with per-test function hooks
type stubService struct {
	addLocation    func(name, country string) (*models.Location, error)
	listLocations  func() ([]models.Location, error)
	getLocation    func(id int64) (*models.Location, error)
	updateLocation func(id int64, displayName *string, isFavorite *bool) (*models.Location, error)
	deleteLocation func(id int64) error
	syncWeather    func(id int64) (*models.WeatherSnapshot, []models.ForecastItem, error)
	getWeatherData func(id int64) (*models.WeatherData, error)
	getSyncHistory func(id int64, limit int) ([]models.SyncRecord, error)
	lastSyncTime   func(id int64) (*time.Time, error)
	getPreferences func() ([]models.Preference, error)
	updatePref     func(key, value string) error
}

func (s *stubService) AddLocation(_ context.Context, name, country string) (*models.Location, error) {
	return s.addLocation(name, country)
}
func (s *stubService) ListLocations(_ context.Context) ([]models.Location, error) {
	return s.listLocations()
}
func (s *stubService) GetLocation(_ context.Context, id int64) (*models.Location, error) {
	return s.getLocation(id)
}
func (s *stubService) UpdateLocation(_ context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error) {
	return s.updateLocation(id, displayName, isFavorite)
}
func (s *stubService) DeleteLocation(_ context.Context, id int64) error {
	return s.deleteLocation(id)
}
func (s *stubService) SyncWeather(_ context.Context, id int64) (*models.WeatherSnapshot, []models.ForecastItem, error) {
	return s.syncWeather(id)
}
func (s *stubService) GetWeatherData(_ context.Context, id int64) (*models.WeatherData, error) {
	return s.getWeatherData(id)
}
func (s *stubService) GetSyncHistory(_ context.Context, id int64, limit int) ([]models.SyncRecord, error) {
	return s.getSyncHistory(id, limit)
}
func (s *stubService) LastSyncTime(_ context.Context, id int64) (*time.Time, error) {
	return s.lastSyncTime(id)
}
func (s *stubService) GetPreferences(_ context.Context) ([]models.Preference, error) {
	return s.getPreferences()
}
func (s *stubService) UpdatePreference(_ context.Context, key, value string) error {
	return s.updatePref(key, value)
}

func doRequest(t *testing.T, svc WeatherService, method, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Buffer
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("failed to marshal request body: %v", err)
		}
		reader = bytes.NewBuffer(data)
	} else {
		reader = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	w := httptest.NewRecorder()
	NewServer(svc).Handler().ServeHTTP(w, req)
	return w
}

func TestHandleHealth(t *testing.T) {
	w := doRequest(t, &stubService{}, http.MethodGet, "/health", nil)

	resp := w.Result()
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Errorf("health status = %v, want %v", resp.StatusCode, http.StatusOK)
	}

	var response map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if response["status"] != "healthy" {
		t.Errorf("status in body = %v, want healthy", response["status"])
	}
}

func TestHandleCreateLocation(t *testing.T) {
	svc := &stubService{
		addLocation: func(name, country string) (*models.Location, error) {
			if name != "Austin" || country != "US" {
				t.Errorf("addLocation(%q, %q), want Austin, US", name, country)
			}
			return &models.Location{ID: 1, Name: "Austin", Country: "US", Latitude: 30.27, Longitude: -97.74}, nil
		},
	}

	w := doRequest(t, svc, http.MethodPost, "/locations", map[string]string{"name": "Austin", "country": "US"})

	if w.Code != http.StatusCreated {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusCreated)
	}

	var loc models.Location
	if err := json.NewDecoder(w.Body).Decode(&loc); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if loc.ID != 1 || loc.Latitude != 30.27 {
		t.Errorf("location = %+v, want id=1 lat=30.27", loc)
	}
}

func TestHandleCreateLocation_MissingName(t *testing.T) {
	w := doRequest(t, &stubService{}, http.MethodPost, "/locations", map[string]string{"country": "US"})

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestHandleCreateLocation_InvalidJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/locations", bytes.NewBufferString("not json"))
	w := httptest.NewRecorder()
	NewServer(&stubService{}).Handler().ServeHTTP(w, req)

	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestHandleCreateLocation_NoGeocodeMatch(t *testing.T) {
	svc := &stubService{
		addLocation: func(name, country string) (*models.Location, error) {
			return nil, service.ErrNoGeocodeMatch
		},
	}

	w := doRequest(t, svc, http.MethodPost, "/locations", map[string]string{"name": "Nowhereville"})

	if w.Code != http.StatusNotFound {
		t.Errorf("status = %v, want %v", w.Code, http.StatusNotFound)
	}
}

func TestHandleGetLocation_InvalidID(t *testing.T) {
	tests := []struct {
		name string
		path string
	}{
		{name: "non-numeric", path: "/locations/abc"},
		{name: "zero", path: "/locations/0"},
		{name: "negative", path: "/locations/-3"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := doRequest(t, &stubService{}, http.MethodGet, tt.path, nil)
			if w.Code != http.StatusBadRequest {
				t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
			}
		})
	}
}

func TestHandleSyncWeather_ErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
	}{
		{
			name:       "missing location",
			err:        service.ErrLocationNotFound,
			wantStatus: http.StatusNotFound,
		},
		{
			name:       "provider failure",
			err:        &api.ProviderError{Endpoint: "forecast", Err: errors.New("timeout")},
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "wrapped provider failure",
			err:        errors.Join(errors.New("forecast fetch failed"), &api.ProviderError{Endpoint: "forecast", Err: errors.New("bad payload")}),
			wantStatus: http.StatusBadGateway,
		},
		{
			name:       "storage failure",
			err:        errors.New("commit failed"),
			wantStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := &stubService{
				syncWeather: func(id int64) (*models.WeatherSnapshot, []models.ForecastItem, error) {
					return nil, nil, tt.err
				},
			}

			w := doRequest(t, svc, http.MethodPost, "/locations/1/sync", nil)
			if w.Code != tt.wantStatus {
				t.Errorf("status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func TestHandleSyncWeather_Success(t *testing.T) {
	now := time.Now().UTC()
	svc := &stubService{
		syncWeather: func(id int64) (*models.WeatherSnapshot, []models.ForecastItem, error) {
			return &models.WeatherSnapshot{ID: 10, LocationID: id, Temperature: 22.5},
				[]models.ForecastItem{{ForecastTimestamp: 1700010800}, {ForecastTimestamp: 1700021600}}, nil
		},
		getLocation: func(id int64) (*models.Location, error) {
			return &models.Location{ID: id, Name: "Austin"}, nil
		},
		lastSyncTime: func(id int64) (*time.Time, error) {
			return &now, nil
		},
	}

	w := doRequest(t, svc, http.MethodPost, "/locations/1/sync", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}

	var data models.WeatherData
	if err := json.NewDecoder(w.Body).Decode(&data); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if data.Current == nil || data.Current.Temperature != 22.5 {
		t.Errorf("current = %+v, want synced snapshot", data.Current)
	}
	if len(data.Forecast) != 2 {
		t.Errorf("forecast items = %d, want 2", len(data.Forecast))
	}
	if data.LastSynced == nil {
		t.Error("last_synced = nil, want timestamp")
	}
}

func TestHandleGetWeatherData_EmptyState(t *testing.T) {
	svc := &stubService{
		getWeatherData: func(id int64) (*models.WeatherData, error) {
			return &models.WeatherData{Location: models.Location{ID: id, Name: "Austin"}}, nil
		},
	}

	w := doRequest(t, svc, http.MethodGet, "/locations/1/weather", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v (absence is not an error)", w.Code, http.StatusOK)
	}

	var body map[string]json.RawMessage
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to decode response: %v", err)
	}
	if string(body["current"]) != "null" {
		t.Errorf("current = %s, want null", body["current"])
	}
	if string(body["forecast"]) != "[]" {
		t.Errorf("forecast = %s, want []", body["forecast"])
	}
}

func TestHandleUpdatePreference(t *testing.T) {
	svc := &stubService{
		updatePref: func(key, value string) error {
			if key != "units" || value != "imperial" {
				t.Errorf("updatePref(%q, %q), want units, imperial", key, value)
			}
			return nil
		},
	}

	w := doRequest(t, svc, http.MethodPatch, "/preferences/units", map[string]string{"value": "imperial"})
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}
}

func TestHandleUpdatePreference_MissingValue(t *testing.T) {
	w := doRequest(t, &stubService{}, http.MethodPatch, "/preferences/units", map[string]string{})
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %v, want %v", w.Code, http.StatusBadRequest)
	}
}

func TestHandleListLocations_Empty(t *testing.T) {
	svc := &stubService{
		listLocations: func() ([]models.Location, error) {
			return nil, nil
		},
	}

	w := doRequest(t, svc, http.MethodGet, "/locations", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}
	if got := bytes.TrimSpace(w.Body.Bytes()); string(got) != "[]" {
		t.Errorf("body = %s, want []", got)
	}
}

func TestHandleDeleteLocation(t *testing.T) {
	svc := &stubService{
		deleteLocation: func(id int64) error {
			if id != 4 {
				t.Errorf("deleteLocation(%d), want 4", id)
			}
			return nil
		},
	}

	w := doRequest(t, svc, http.MethodDelete, "/locations/4", nil)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %v, want %v", w.Code, http.StatusOK)
	}
}
