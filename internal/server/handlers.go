package server

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

type createLocationRequest struct {
	Name    string `json:"name" validate:"required"`
	Country string `json:"country" validate:"omitempty,max=10"`
}

type updateLocationRequest struct {
	DisplayName *string `json:"display_name" validate:"omitempty,max=255"`
	IsFavorite  *bool   `json:"is_favorite"`
}

type updatePreferenceRequest struct {
	Value string `json:"value" validate:"required,max=255"`
}

// pathID parses the {id} path segment; writes a 400 and returns false on
// malformed input
func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil || id <= 0 {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid location id"})
		return 0, false
	}
	return id, true
}

// decodeAndValidate decodes the JSON body into v and runs validator tags;
// writes a 400 and returns false on any violation
func (s *Server) decodeAndValidate(w http.ResponseWriter, r *http.Request, v interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "invalid request body: " + err.Error()})
		return false
	}
	if err := s.validate.Struct(v); err != nil {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": err.Error()})
		return false
	}
	return true
}

// handleCreateLocation resolves a name through geocoding and registers it
func (s *Server) handleCreateLocation(w http.ResponseWriter, r *http.Request) {
	var req createLocationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	loc, err := s.svc.AddLocation(r.Context(), req.Name, req.Country)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, loc)
}

func (s *Server) handleListLocations(w http.ResponseWriter, r *http.Request) {
	locations, err := s.svc.ListLocations(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if locations == nil {
		locations = []models.Location{}
	}
	writeJSON(w, http.StatusOK, locations)
}

func (s *Server) handleGetLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	loc, err := s.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleUpdateLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	var req updateLocationRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	loc, err := s.svc.UpdateLocation(r.Context(), id, req.DisplayName, req.IsFavorite)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loc)
}

func (s *Server) handleDeleteLocation(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	if err := s.svc.DeleteLocation(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// handleSyncWeather runs one sync attempt and returns the full weather
// bundle for the location
func (s *Server) handleSyncWeather(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	current, forecast, err := s.svc.SyncWeather(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	loc, err := s.svc.GetLocation(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	lastSynced, err := s.svc.LastSyncTime(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, models.WeatherData{
		Location:   *loc,
		Current:    current,
		Forecast:   forecast,
		LastSynced: lastSynced,
	})
}

func (s *Server) handleGetWeatherData(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	data, err := s.svc.GetWeatherData(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	if data.Forecast == nil {
		data.Forecast = []models.ForecastItem{}
	}
	writeJSON(w, http.StatusOK, data)
}

func (s *Server) handleGetSyncHistory(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}

	limit := 50
	if limitStr := r.URL.Query().Get("limit"); limitStr != "" {
		if l, err := strconv.Atoi(limitStr); err == nil && l > 0 {
			limit = l
		}
	}

	records, err := s.svc.GetSyncHistory(r.Context(), id, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	if records == nil {
		records = []models.SyncRecord{}
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"count":   len(records),
		"history": records,
	})
}

func (s *Server) handleGetPreferences(w http.ResponseWriter, r *http.Request) {
	prefs, err := s.svc.GetPreferences(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	if prefs == nil {
		prefs = []models.Preference{}
	}
	writeJSON(w, http.StatusOK, prefs)
}

func (s *Server) handleUpdatePreference(w http.ResponseWriter, r *http.Request) {
	key := r.PathValue("key")

	var req updatePreferenceRequest
	if !s.decodeAndValidate(w, r, &req) {
		return
	}

	if err := s.svc.UpdatePreference(r.Context(), key, req.Value); err != nil {
		writeError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "updated",
		"key":    key,
		"value":  req.Value,
	})
}
