package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre una conexión pool a Postgres usando pgx (database/sql).
// Backend opcional, se activa con DB_DSN.
func Open(dsn string) (*sql.DB, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}

	// defaults razonables (ajustable luego)
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxIdleTime(5 * time.Minute)
	db.SetConnMaxLifetime(30 * time.Minute)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if err := ensureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}

	return db, nil
}

func ensureSchema(ctx context.Context, db *sql.DB) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS devices (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL UNIQUE,
			label TEXT NOT NULL DEFAULT '',
			location TEXT NOT NULL DEFAULT '',
			emergency_contact TEXT NOT NULL DEFAULT '',
			conditions TEXT NOT NULL DEFAULT '',
			notes TEXT NOT NULL DEFAULT '',
			owner_id TEXT NOT NULL DEFAULT '',
			registered_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vitals_readings (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			heart_rate INT NOT NULL DEFAULT 0,
			heart_rate_alert BOOLEAN NOT NULL DEFAULT FALSE,
			bp_systolic INT NOT NULL DEFAULT 0,
			bp_diastolic INT NOT NULL DEFAULT 0,
			bp_alert BOOLEAN NOT NULL DEFAULT FALSE,
			glucose INT NOT NULL DEFAULT 0,
			glucose_alert BOOLEAN NOT NULL DEFAULT FALSE,
			spo2 INT NOT NULL DEFAULT 0,
			spo2_alert BOOLEAN NOT NULL DEFAULT FALSE,
			alert_triggered BOOLEAN NOT NULL DEFAULT FALSE,
			caregiver_notified BOOLEAN NOT NULL DEFAULT FALSE,
			UNIQUE (device_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vitals_device_ts ON vitals_readings (device_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS safety_events (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			ts TIMESTAMPTZ NOT NULL,
			movement_activity TEXT NOT NULL DEFAULT '',
			fall_detected BOOLEAN NOT NULL DEFAULT FALSE,
			impact_force TEXT NOT NULL DEFAULT '',
			post_fall_inactivity INT NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			alert_triggered BOOLEAN NOT NULL DEFAULT FALSE,
			caregiver_notified BOOLEAN NOT NULL DEFAULT FALSE,
			severity TEXT NOT NULL DEFAULT '',
			resolved BOOLEAN NOT NULL DEFAULT FALSE,
			resolved_at TIMESTAMPTZ,
			UNIQUE (device_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_safety_device_ts ON safety_events (device_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			scheduled_at TIMESTAMPTZ NOT NULL,
			recurrence TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'medium',
			completed BOOLEAN NOT NULL DEFAULT FALSE,
			completed_at TIMESTAMPTZ,
			sent BOOLEAN NOT NULL DEFAULT FALSE,
			acknowledged BOOLEAN NOT NULL DEFAULT FALSE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_device_sched ON reminders (device_id, scheduled_at)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			ts TIMESTAMPTZ NOT NULL,
			source TEXT NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			severity TEXT NOT NULL DEFAULT 'info'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_events_ts ON events (ts DESC)`,
		`CREATE TABLE IF NOT EXISTS care_grants (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			owner_id TEXT NOT NULL,
			caregiver_id TEXT NOT NULL,
			scopes TEXT NOT NULL DEFAULT '',
			status TEXT NOT NULL,
			created_at TIMESTAMPTZ NOT NULL,
			updated_at TIMESTAMPTZ NOT NULL,
			revoked_at TIMESTAMPTZ
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_notes (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata JSONB NOT NULL DEFAULT '{}',
			embedding JSONB NOT NULL DEFAULT '[]',
			created_at TIMESTAMPTZ NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

func timePtr(t sql.NullTime) *time.Time {
	if !t.Valid {
		return nil
	}
	v := t.Time
	return &v
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return *t
}
