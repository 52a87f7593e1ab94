package service

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// AddLocation resolves a user-supplied name (and optional country hint)
// through geocoding and stores the first candidate. The provider ranks by
// relevance, so the first result is authoritative; no secondary scoring.
// Returns ErrNoGeocodeMatch when the provider finds nothing, in which case
// no row is created.
func (s *Service) AddLocation(ctx context.Context, name, country string) (*models.Location, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, &ValidationError{Msg: "name cannot be empty"}
	}

	candidates, err := s.gateway.Geocode(ctx, name, country)
	if err != nil {
		return nil, fmt.Errorf("geocoding %q failed: %w", name, err)
	}
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoGeocodeMatch, name)
	}

	best := candidates[0]
	loc, err := s.store.InsertLocation(ctx, best.Name, best.Country, best.Latitude, best.Longitude)
	if err != nil {
		return nil, err
	}

	log.Printf("Added location %q (%s) at %.4f,%.4f", best.Name, best.Country, best.Latitude, best.Longitude)
	return loc, nil
}

// ListLocations returns all tracked locations, favorites first
func (s *Service) ListLocations(ctx context.Context) ([]models.Location, error) {
	return s.store.ListLocations(ctx)
}

// GetLocation returns one location or ErrLocationNotFound
func (s *Service) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	loc, err := s.store.GetLocation(ctx, id)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}

// UpdateLocation applies a partial display-name/favorite update
func (s *Service) UpdateLocation(ctx context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error) {
	if displayName != nil && strings.TrimSpace(*displayName) == "" {
		return nil, &ValidationError{Msg: "display_name cannot be empty"}
	}

	loc, err := s.store.UpdateLocation(ctx, id, displayName, isFavorite)
	if err != nil {
		return nil, err
	}
	if loc == nil {
		return nil, ErrLocationNotFound
	}
	return loc, nil
}

// DeleteLocation removes a location and, via schema cascade, all of its
// snapshots, forecasts and sync history
func (s *Service) DeleteLocation(ctx context.Context, id int64) error {
	deleted, err := s.store.DeleteLocation(ctx, id)
	if err != nil {
		return err
	}
	if !deleted {
		return ErrLocationNotFound
	}
	return nil
}
