package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
	"github.com/swoet/Weather-Data-Integration-Platform/internal/models"
)

// GetPreferences retrieves all user preferences
func (db *DB) GetPreferences(ctx context.Context) ([]models.Preference, error) {
	query := `SELECT pref_key, pref_value FROM user_preferences ORDER BY pref_key`
	queryStart := time.Now()
	rows, err := db.conn.QueryContext(ctx, query)
	metrics.RecordDBQuery("SELECT", "user_preferences", time.Since(queryStart), err)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	var prefs []models.Preference
	for rows.Next() {
		var p models.Preference
		if err := rows.Scan(&p.Key, &p.Value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		prefs = append(prefs, p)
	}

	return prefs, rows.Err()
}

// GetPreference retrieves one preference value by key; found reports
// whether the key exists
func (db *DB) GetPreference(ctx context.Context, key string) (value string, found bool, err error) {
	query := `SELECT pref_value FROM user_preferences WHERE pref_key = ?`
	queryStart := time.Now()
	err = db.conn.QueryRowContext(ctx, query, key).Scan(&value)
	metrics.RecordDBQuery("SELECT", "user_preferences", time.Since(queryStart), err)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to scan preference: %w", err)
	}
	return value, true, nil
}

// UpsertPreference inserts or updates a preference by key
func (db *DB) UpsertPreference(ctx context.Context, key, value string) error {
	query := `INSERT INTO user_preferences (pref_key, pref_value, updated_at) VALUES (?, ?, ?)
	          ON DUPLICATE KEY UPDATE pref_value = VALUES(pref_value), updated_at = VALUES(updated_at)`
	queryStart := time.Now()
	_, err := db.conn.ExecContext(ctx, query, key, value, time.Now().UTC())
	metrics.RecordDBQuery("UPSERT", "user_preferences", time.Since(queryStart), err)
	if err != nil {
		return fmt.Errorf("failed to upsert preference: %w", err)
	}
	return nil
}
