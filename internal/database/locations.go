package database

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

const locationColumns = `id, name, country, latitude, longitude, display_name, is_favorite, created_at, updated_at`

// scanLocation maps one row into a Location field by field so malformed
// rows fail loudly instead of producing a partially populated record
func scanLocation(row interface {
	Scan(dest ...interface{}) error
}) (*models.Location, error) {
	var loc models.Location
	var displayName sql.NullString

	if err := row.Scan(
		&loc.ID,
		&loc.Name,
		&loc.Country,
		&loc.Latitude,
		&loc.Longitude,
		&displayName,
		&loc.IsFavorite,
		&loc.CreatedAt,
		&loc.UpdatedAt,
	); err != nil {
		return nil, err
	}

	if displayName.Valid {
		loc.DisplayName = &displayName.String
	}

	return &loc, nil
}

// InsertLocation creates a new location row. The display name starts out as
// the provider's canonical name.
func (db *DB) InsertLocation(ctx context.Context, name, country string, latitude, longitude float64) (*models.Location, error) {
	now := time.Now().UTC()

	query := `INSERT INTO locations (name, country, latitude, longitude, display_name, is_favorite, created_at, updated_at)
	          VALUES (?, ?, ?, ?, ?, FALSE, ?, ?)`
	queryStart := time.Now()
	result, err := db.conn.ExecContext(ctx, query, name, country, latitude, longitude, name, now, now)
	metrics.RecordDBQuery("INSERT", "locations", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to insert location: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return nil, fmt.Errorf("failed to resolve inserted location id: %w", err)
	}

	return db.GetLocation(ctx, id)
}

// GetLocation retrieves a location by id; returns (nil, nil) when it does not exist
func (db *DB) GetLocation(ctx context.Context, id int64) (*models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations WHERE id = ?`
	queryStart := time.Now()
	row := db.conn.QueryRowContext(ctx, query, id)

	loc, err := scanLocation(row)
	metrics.RecordDBQuery("SELECT", "locations", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan location: %w", err)
	}

	return loc, nil
}

// ListLocations retrieves all locations, favorites first, then by name
func (db *DB) ListLocations(ctx context.Context) ([]models.Location, error) {
	query := `SELECT ` + locationColumns + ` FROM locations ORDER BY is_favorite DESC, name ASC`
	queryStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "locations", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query locations: %w", err)
	}
	defer rows.Close()

	var locations []models.Location
	for rows.Next() {
		loc, err := scanLocation(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan location: %w", err)
		}
		locations = append(locations, *loc)
	}

	return locations, rows.Err()
}

// UpdateLocation applies a partial update of display name and/or favorite
// flag; fields left nil are untouched. Returns (nil, nil) when the location
// does not exist.
func (db *DB) UpdateLocation(ctx context.Context, id int64, displayName *string, isFavorite *bool) (*models.Location, error) {
	var updates []string
	var args []interface{}

	if displayName != nil {
		updates = append(updates, "display_name = ?")
		args = append(args, *displayName)
	}
	if isFavorite != nil {
		updates = append(updates, "is_favorite = ?")
		args = append(args, *isFavorite)
	}

	if len(updates) == 0 {
		return db.GetLocation(ctx, id)
	}

	updates = append(updates, "updated_at = ?")
	args = append(args, time.Now().UTC(), id)

	query := fmt.Sprintf("UPDATE locations SET %s WHERE id = ?", strings.Join(updates, ", "))
	queryStart := time.Now()
	_, err := db.conn.ExecContext(ctx, query, args...)
	metrics.RecordDBQuery("UPDATE", "locations", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to update location: %w", err)
	}

	return db.GetLocation(ctx, id)
}

// DeleteLocation removes a location; snapshots, forecasts and sync history
// cascade at the schema level. Returns false when nothing was deleted.
func (db *DB) DeleteLocation(ctx context.Context, id int64) (bool, error) {
	query := `DELETE FROM locations WHERE id = ?`
	queryStart := time.Now()
	result, err := db.conn.ExecContext(ctx, query, id)
	metrics.RecordDBQuery("DELETE", "locations", time.Since(queryStart), err)
	if err != nil {
		return false, fmt.Errorf("failed to delete location: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to check deleted rows: %w", err)
	}

	return affected > 0, nil
}
