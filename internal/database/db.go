package database

import (
	"database/sql"
	"fmt"
	"time"

	_ "github.com/go-sql-driver/mysql"

	"github.com/swoet/Weather-Data-Integration-Platform/internal/metrics"
)

// DB represents the database connection
type DB struct {
	conn *sql.DB
}

// NewDB creates a new database connection and initializes the schema
// dsn format: "username:password@tcp(host:port)/dbname?parseTime=true"
// example: "user:pass@tcp(localhost:3306)/weather_platform?parseTime=true"
func NewDB(dsn string) (*DB, error) {
	conn, err := sql.Open("mysql", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Test connection
	if err := conn.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// Configure connection pool
	conn.SetMaxOpenConns(25)
	conn.SetMaxIdleConns(5)
	conn.SetConnMaxLifetime(5 * time.Minute)

	db := &DB{conn: conn}

	// Initialize schema
	if err := db.initSchema(); err != nil {
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return db, nil
}

// initSchema creates the necessary tables
func (db *DB) initSchema() error {
	// MySQL doesn't support multiple statements in one Exec, so we need to split them
	statements := []string{
		`CREATE TABLE IF NOT EXISTS locations (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			name VARCHAR(255) NOT NULL,
			country VARCHAR(10) NOT NULL DEFAULT '',
			latitude DOUBLE NOT NULL,
			longitude DOUBLE NOT NULL,
			display_name VARCHAR(255) NULL,
			is_favorite BOOLEAN NOT NULL DEFAULT FALSE,
			created_at DATETIME(6) NOT NULL,
			updated_at DATETIME(6) NOT NULL,
			INDEX idx_locations_name (name)
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS weather_snapshots (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location_id BIGINT NOT NULL,
			temperature DOUBLE NOT NULL,
			feels_like DOUBLE NOT NULL,
			temp_min DOUBLE NOT NULL,
			temp_max DOUBLE NOT NULL,
			pressure INT NOT NULL,
			humidity INT NOT NULL,
			weather_main VARCHAR(100) NOT NULL,
			weather_description VARCHAR(255) NOT NULL,
			weather_icon VARCHAR(20) NOT NULL,
			wind_speed DOUBLE NOT NULL,
			wind_deg INT NULL,
			clouds INT NOT NULL,
			visibility INT NULL,
			api_timestamp BIGINT NOT NULL,
			recorded_at DATETIME(6) NOT NULL,
			INDEX idx_snapshots_location_recorded (location_id, recorded_at),
			CONSTRAINT fk_snapshots_location FOREIGN KEY (location_id)
				REFERENCES locations(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS forecasts (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location_id BIGINT NOT NULL,
			forecast_timestamp BIGINT NOT NULL,
			temperature DOUBLE NOT NULL,
			feels_like DOUBLE NOT NULL,
			temp_min DOUBLE NOT NULL,
			temp_max DOUBLE NOT NULL,
			pressure INT NOT NULL,
			humidity INT NOT NULL,
			weather_main VARCHAR(100) NOT NULL,
			weather_description VARCHAR(255) NOT NULL,
			weather_icon VARCHAR(20) NOT NULL,
			wind_speed DOUBLE NOT NULL,
			wind_deg INT NULL,
			clouds INT NOT NULL,
			pop DOUBLE NOT NULL DEFAULT 0,
			INDEX idx_forecasts_location_ts (location_id, forecast_timestamp),
			CONSTRAINT fk_forecasts_location FOREIGN KEY (location_id)
				REFERENCES locations(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS sync_history (
			id BIGINT AUTO_INCREMENT PRIMARY KEY,
			location_id BIGINT NOT NULL,
			sync_type VARCHAR(50) NOT NULL,
			status VARCHAR(20) NOT NULL,
			error_message TEXT NULL,
			synced_at DATETIME(6) NOT NULL,
			INDEX idx_sync_history_location_synced (location_id, synced_at),
			CONSTRAINT fk_sync_history_location FOREIGN KEY (location_id)
				REFERENCES locations(id) ON DELETE CASCADE
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,

		`CREATE TABLE IF NOT EXISTS user_preferences (
			pref_key VARCHAR(100) PRIMARY KEY,
			pref_value VARCHAR(255) NOT NULL,
			updated_at DATETIME(6) NOT NULL
		) ENGINE=InnoDB DEFAULT CHARSET=utf8mb4`,
	}

	for _, stmt := range statements {
		if _, err := db.conn.Exec(stmt); err != nil {
			return fmt.Errorf("failed to execute schema statement: %w", err)
		}
	}

	return nil
}

// recordPoolStats pushes connection pool statistics to prometheus
func (db *DB) recordPoolStats() {
	stats := db.conn.Stats()
	metrics.UpdateDBConnectionStats(stats.OpenConnections, stats.InUse, stats.Idle)
}

// Close closes the database connection
func (db *DB) Close() error {
	if db.conn != nil {
		return db.conn.Close()
	}
	return nil
}
