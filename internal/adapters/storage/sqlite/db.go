package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "modernc.org/sqlite"
)

var (
	ErrNotFound = errors.New("not found")
)

// Open abre (o crea) la base SQLite local y asegura el esquema.
// Es el backend default, igual que el aicareplus.db original.
func Open(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}

	// El driver modernc no soporta escrituras concurrentes; una sola conexión
	// evita SQLITE_BUSY en el servidor.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
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
			registered_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS vitals_readings (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			ts TEXT NOT NULL,
			heart_rate INTEGER NOT NULL DEFAULT 0,
			heart_rate_alert INTEGER NOT NULL DEFAULT 0,
			bp_systolic INTEGER NOT NULL DEFAULT 0,
			bp_diastolic INTEGER NOT NULL DEFAULT 0,
			bp_alert INTEGER NOT NULL DEFAULT 0,
			glucose INTEGER NOT NULL DEFAULT 0,
			glucose_alert INTEGER NOT NULL DEFAULT 0,
			spo2 INTEGER NOT NULL DEFAULT 0,
			spo2_alert INTEGER NOT NULL DEFAULT 0,
			alert_triggered INTEGER NOT NULL DEFAULT 0,
			caregiver_notified INTEGER NOT NULL DEFAULT 0,
			UNIQUE (device_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_vitals_device_ts ON vitals_readings (device_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS safety_events (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			ts TEXT NOT NULL,
			movement_activity TEXT NOT NULL DEFAULT '',
			fall_detected INTEGER NOT NULL DEFAULT 0,
			impact_force TEXT NOT NULL DEFAULT '',
			post_fall_inactivity INTEGER NOT NULL DEFAULT 0,
			location TEXT NOT NULL DEFAULT '',
			alert_triggered INTEGER NOT NULL DEFAULT 0,
			caregiver_notified INTEGER NOT NULL DEFAULT 0,
			severity TEXT NOT NULL DEFAULT '',
			resolved INTEGER NOT NULL DEFAULT 0,
			resolved_at TEXT,
			UNIQUE (device_id, ts)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_safety_device_ts ON safety_events (device_id, ts DESC)`,
		`CREATE TABLE IF NOT EXISTS reminders (
			id TEXT PRIMARY KEY,
			device_id TEXT NOT NULL,
			created_at TEXT NOT NULL,
			type TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			scheduled_at TEXT NOT NULL,
			recurrence TEXT NOT NULL DEFAULT '',
			priority TEXT NOT NULL DEFAULT 'medium',
			completed INTEGER NOT NULL DEFAULT 0,
			completed_at TEXT,
			sent INTEGER NOT NULL DEFAULT 0,
			acknowledged INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_reminders_device_sched ON reminders (device_id, scheduled_at)`,
		`CREATE TABLE IF NOT EXISTS events (
			id TEXT PRIMARY KEY,
			ts TEXT NOT NULL,
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
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			revoked_at TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS knowledge_notes (
			id TEXT PRIMARY KEY,
			content TEXT NOT NULL,
			metadata TEXT NOT NULL DEFAULT '{}',
			embedding TEXT NOT NULL DEFAULT '[]',
			created_at TEXT NOT NULL
		)`,
	}

	for _, stmt := range stmts {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// Los timestamps se guardan como texto RFC3339 en UTC para no depender
// del mapeo de time.Time del driver.
const timeLayout = time.RFC3339Nano

func fmtTime(t time.Time) string {
	return t.UTC().Format(timeLayout)
}

func fmtTimePtr(t *time.Time) any {
	if t == nil {
		return nil
	}
	return fmtTime(*t)
}

func parseTime(s string) time.Time {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

func parseTimePtr(s sql.NullString) *time.Time {
	if !s.Valid || s.String == "" {
		return nil
	}
	t := parseTime(s.String)
	return &t
}
