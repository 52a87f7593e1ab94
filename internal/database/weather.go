package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

const snapshotColumns = `id, location_id, temperature, feels_like, temp_min, temp_max, pressure, humidity,
	weather_main, weather_description, weather_icon, wind_speed, wind_deg, clouds, visibility,
	api_timestamp, recorded_at`

const forecastColumns = `id, location_id, forecast_timestamp, temperature, feels_like, temp_min, temp_max,
	pressure, humidity, weather_main, weather_description, weather_icon, wind_speed, wind_deg, clouds, pop`

func scanSnapshot(row interface {
	Scan(dest ...interface{}) error
}) (*models.WeatherSnapshot, error) {
	var snap models.WeatherSnapshot
	var windDeg, visibility sql.NullInt64

	if err := row.Scan(
		&snap.ID,
		&snap.LocationID,
		&snap.Temperature,
		&snap.FeelsLike,
		&snap.TempMin,
		&snap.TempMax,
		&snap.Pressure,
		&snap.Humidity,
		&snap.WeatherMain,
		&snap.WeatherDescription,
		&snap.WeatherIcon,
		&snap.WindSpeed,
		&windDeg,
		&snap.Clouds,
		&visibility,
		&snap.APITimestamp,
		&snap.RecordedAt,
	); err != nil {
		return nil, err
	}

	if windDeg.Valid {
		v := int(windDeg.Int64)
		snap.WindDeg = &v
	}
	if visibility.Valid {
		v := int(visibility.Int64)
		snap.Visibility = &v
	}

	return &snap, nil
}

func scanForecastItem(row interface {
	Scan(dest ...interface{}) error
}) (*models.ForecastItem, error) {
	var item models.ForecastItem
	var windDeg sql.NullInt64

	if err := row.Scan(
		&item.ID,
		&item.LocationID,
		&item.ForecastTimestamp,
		&item.Temperature,
		&item.FeelsLike,
		&item.TempMin,
		&item.TempMax,
		&item.Pressure,
		&item.Humidity,
		&item.WeatherMain,
		&item.WeatherDescription,
		&item.WeatherIcon,
		&item.WindSpeed,
		&windDeg,
		&item.Clouds,
		&item.Pop,
	); err != nil {
		return nil, err
	}

	if windDeg.Valid {
		v := int(windDeg.Int64)
		item.WindDeg = &v
	}

	return &item, nil
}

func nullableInt(v *int) interface{} {
	if v == nil {
		return nil
	}
	return *v
}

// ReplaceWeather persists one successful sync as a single transaction:
// append the snapshot, replace the complete forecast set, and record a
// success audit row. Readers never observe a partially replaced forecast.
func (db *DB) ReplaceWeather(ctx context.Context, locationID int64, snap models.WeatherSnapshot, items []models.ForecastItem, syncType string) (*models.WeatherSnapshot, []models.ForecastItem, error) {
	defer db.recordPoolStats()

	now := time.Now().UTC()
	queryStart := time.Now()

	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback() // Will be ignored if committed

	// Append the snapshot
	result, err := tx.ExecContext(ctx, `INSERT INTO weather_snapshots (
			location_id, temperature, feels_like, temp_min, temp_max, pressure, humidity,
			weather_main, weather_description, weather_icon, wind_speed, wind_deg, clouds,
			visibility, api_timestamp, recorded_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		locationID, snap.Temperature, snap.FeelsLike, snap.TempMin, snap.TempMax,
		snap.Pressure, snap.Humidity, snap.WeatherMain, snap.WeatherDescription,
		snap.WeatherIcon, snap.WindSpeed, nullableInt(snap.WindDeg), snap.Clouds,
		nullableInt(snap.Visibility), snap.APITimestamp, now,
	)
	if err != nil {
		metrics.RecordDBQuery("INSERT", "weather_snapshots", time.Since(queryStart), err)
		return nil, nil, fmt.Errorf("failed to insert snapshot: %w", err)
	}

	snapID, err := result.LastInsertId()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to resolve inserted snapshot id: %w", err)
	}

	// Replace the forecast set: delete then insert, never merge
	if _, err := tx.ExecContext(ctx, `DELETE FROM forecasts WHERE location_id = ?`, locationID); err != nil {
		return nil, nil, fmt.Errorf("failed to clear forecasts: %w", err)
	}

	stmt, err := tx.PrepareContext(ctx, `INSERT INTO forecasts (
			location_id, forecast_timestamp, temperature, feels_like, temp_min, temp_max,
			pressure, humidity, weather_main, weather_description, weather_icon,
			wind_speed, wind_deg, clouds, pop
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to prepare forecast insert: %w", err)
	}
	defer stmt.Close()

	stored := make([]models.ForecastItem, 0, len(items))
	for _, item := range items {
		result, err := stmt.ExecContext(ctx,
			locationID, item.ForecastTimestamp, item.Temperature, item.FeelsLike,
			item.TempMin, item.TempMax, item.Pressure, item.Humidity, item.WeatherMain,
			item.WeatherDescription, item.WeatherIcon, item.WindSpeed,
			nullableInt(item.WindDeg), item.Clouds, item.Pop,
		)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to insert forecast slot %d: %w", item.ForecastTimestamp, err)
		}

		id, err := result.LastInsertId()
		if err != nil {
			return nil, nil, fmt.Errorf("failed to resolve inserted forecast id: %w", err)
		}

		item.ID = id
		item.LocationID = locationID
		stored = append(stored, item)
	}

	// Audit the attempt
	if _, err := tx.ExecContext(ctx,
		`INSERT INTO sync_history (location_id, sync_type, status, synced_at) VALUES (?, ?, ?, ?)`,
		locationID, syncType, models.SyncStatusSuccess, now,
	); err != nil {
		return nil, nil, fmt.Errorf("failed to record sync history: %w", err)
	}

	err = tx.Commit()
	metrics.RecordDBQuery("TX", "weather_snapshots", time.Since(queryStart), err)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to commit sync transaction: %w", err)
	}

	snap.ID = snapID
	snap.LocationID = locationID
	snap.RecordedAt = now

	return &snap, stored, nil
}

// RecordSyncFailure appends a failed audit row. This is deliberately a
// standalone statement: a failed sync must leave prior snapshot and
// forecast rows untouched.
func (db *DB) RecordSyncFailure(ctx context.Context, locationID int64, syncType, errorMessage string) error {
	query := `INSERT INTO sync_history (location_id, sync_type, status, error_message, synced_at) VALUES (?, ?, ?, ?, ?)`
	queryStart := time.Now()
	_, err := db.conn.ExecContext(ctx, query, locationID, syncType, models.SyncStatusFailed, errorMessage, time.Now().UTC())
	metrics.RecordDBQuery("INSERT", "sync_history", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to record sync failure: %w", err)
	}
	return nil
}

// LatestSnapshot retrieves the most recent stored observation for a
// location; returns (nil, nil) when the location has never been synced
func (db *DB) LatestSnapshot(ctx context.Context, locationID int64) (*models.WeatherSnapshot, error) {
	query := `SELECT ` + snapshotColumns + ` FROM weather_snapshots WHERE location_id = ? ORDER BY recorded_at DESC LIMIT 1`
	queryStart := time.Now()
	row := db.conn.QueryRowContext(ctx, query, locationID)

	snap, err := scanSnapshot(row)
	metrics.RecordDBQuery("SELECT", "weather_snapshots", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan snapshot: %w", err)
	}

	return snap, nil
}

// GetForecasts retrieves the stored forecast set ordered by forecast time
func (db *DB) GetForecasts(ctx context.Context, locationID int64) ([]models.ForecastItem, error) {
	query := `SELECT ` + forecastColumns + ` FROM forecasts WHERE location_id = ? ORDER BY forecast_timestamp ASC`
	queryStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, locationID)
	metrics.RecordDBQuery("SELECT", "forecasts", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query forecasts: %w", err)
	}
	defer rows.Close()

	var items []models.ForecastItem
	for rows.Next() {
		item, err := scanForecastItem(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan forecast item: %w", err)
		}
		items = append(items, *item)
	}

	return items, rows.Err()
}

// LastSuccessfulSync retrieves the timestamp of the most recent successful
// sync; returns (nil, nil) when the location has never synced successfully
func (db *DB) LastSuccessfulSync(ctx context.Context, locationID int64) (*time.Time, error) {
	query := `SELECT synced_at FROM sync_history WHERE location_id = ? AND status = ? ORDER BY synced_at DESC LIMIT 1`
	queryStart := time.Now()

	var syncedAt time.Time
	err := db.conn.QueryRowContext(ctx, query, locationID, models.SyncStatusSuccess).Scan(&syncedAt)
	metrics.RecordDBQuery("SELECT", "sync_history", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync time: %w", err)
	}

	return &syncedAt, nil
}

// GetSyncHistory retrieves recent audit entries for a location, newest first
func (db *DB) GetSyncHistory(ctx context.Context, locationID int64, limit int) ([]models.SyncRecord, error) {
	query := `SELECT id, location_id, sync_type, status, error_message, synced_at
	          FROM sync_history WHERE location_id = ? ORDER BY synced_at DESC LIMIT ?`
	queryStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query, locationID, limit)
	metrics.RecordDBQuery("SELECT", "sync_history", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync history: %w", err)
	}
	defer rows.Close()

	var records []models.SyncRecord
	for rows.Next() {
		var rec models.SyncRecord
		var errorMessage sql.NullString
		if err := rows.Scan(&rec.ID, &rec.LocationID, &rec.SyncType, &rec.Status, &errorMessage, &rec.SyncedAt); err != nil {
			return nil, fmt.Errorf("failed to scan sync record: %w", err)
		}
		if errorMessage.Valid {
			rec.ErrorMessage = &errorMessage.String
		}
		records = append(records, rec)
	}

	return records, rows.Err()
}
