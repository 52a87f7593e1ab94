package server

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/api"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/service"
)

// WeatherService is the application surface the HTTP layer dispatches to
type WeatherService interface {
	AddLocation(ctx context.Context, name, country string) (*models.Location, error)
	ListLocations(ctx context.Context) ([]models.Location, error)
	GetLocation(ctx context.Context, id int64) (*models.Location, error)
	UpdateLocation(ctx context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error)
	DeleteLocation(ctx context.Context, id int64) error

	SyncWeather(ctx context.Context, locationID int64) (*models.WeatherSnapshot, []models.ForecastItem, error)
	GetWeatherData(ctx context.Context, locationID int64) (*models.WeatherData, error)
	GetSyncHistory(ctx context.Context, locationID int64, limit int) ([]models.SyncRecord, error)
	LastSyncTime(ctx context.Context, locationID int64) (*time.Time, error)

	GetPreferences(ctx context.Context) ([]models.Preference, error)
	UpdatePreference(ctx context.Context, key, value string) error
}

// Server represents the HTTP server
type Server struct {
	svc      WeatherService
	mux      *http.ServeMux
	validate *validator.Validate
}

// NewServer creates a new HTTP server
func NewServer(svc WeatherService) *Server {
	s := &Server{
		svc:      svc,
		mux:      http.NewServeMux(),
		validate: validator.New(),
	}

	// Register routes
	s.mux.HandleFunc("GET /health", s.handleHealth)
	s.mux.Handle("GET /metrics", promhttp.Handler())

	s.mux.HandleFunc("POST /locations", s.handleCreateLocation)
	s.mux.HandleFunc("GET /locations", s.handleListLocations)
	s.mux.HandleFunc("GET /locations/{id}", s.handleGetLocation)
	s.mux.HandleFunc("PATCH /locations/{id}", s.handleUpdateLocation)
	s.mux.HandleFunc("DELETE /locations/{id}", s.handleDeleteLocation)
	s.mux.HandleFunc("POST /locations/{id}/sync", s.handleSyncWeather)
	s.mux.HandleFunc("GET /locations/{id}/weather", s.handleGetWeatherData)
	s.mux.HandleFunc("GET /locations/{id}/history", s.handleGetSyncHistory)

	s.mux.HandleFunc("GET /preferences", s.handleGetPreferences)
	s.mux.HandleFunc("PATCH /preferences/{key}", s.handleUpdatePreference)

	return s
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	log.Printf("Starting server on %s", addr)
	return http.ListenAndServe(addr, s.mux)
}

// Handler exposes the mux for tests
func (s *Server) Handler() http.Handler {
	return s.mux
}

// handleHealth returns the server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status": "healthy",
		"time":   time.Now().UTC().String(),
	})
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// writeError maps service errors onto HTTP status codes
func writeError(w http.ResponseWriter, err error) {
	var validationErr *service.ValidationError
	var providerErr *api.ProviderError

	switch {
	case service.IsNotFound(err):
		writeJSON(w, http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.As(err, &validationErr):
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
	case errors.As(err, &providerErr):
		writeJSON(w, http.StatusBadGateway, map[string]string{"error": err.Error()})
	default:
		log.Printf("Internal error: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
	}
}
