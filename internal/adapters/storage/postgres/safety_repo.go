package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/safety"
)

type SafetyRepo struct {
	db *sql.DB
}

func NewSafetyRepo(db *sql.DB) *SafetyRepo {
	return &SafetyRepo{db: db}
}

func (r *SafetyRepo) Create(ctx context.Context, e safety.SafetyEvent) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO safety_events (
			id, device_id, ts,
			movement_activity, fall_detected, impact_force,
			post_fall_inactivity, location,
			alert_triggered, caregiver_notified,
			severity, resolved, resolved_at
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13)
	`,
		e.ID,
		e.DeviceID,
		e.Timestamp,
		e.MovementActivity,
		e.FallDetected,
		string(e.ImpactForce),
		e.PostFallInactivitySeconds,
		e.Location,
		e.AlertTriggered,
		e.CaregiverNotified,
		string(e.Severity),
		e.Resolved,
		nullTime(e.ResolvedAt),
	)
	return err
}

func (r *SafetyRepo) ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM safety_events WHERE device_id = $1 AND ts = $2
	`, deviceID, ts).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *SafetyRepo) GetByID(ctx context.Context, id string) (safety.SafetyEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return safety.SafetyEvent{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, device_id, ts,
			movement_activity, fall_detected, impact_force,
			post_fall_inactivity, location,
			alert_triggered, caregiver_notified,
			severity, resolved, resolved_at
		FROM safety_events
		WHERE id = $1
	`, id)

	return scanSafetyEvent(row)
}

func (r *SafetyRepo) Update(ctx context.Context, e safety.SafetyEvent) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE safety_events
		SET
			caregiver_notified = $1,
			severity = $2,
			resolved = $3,
			resolved_at = $4
		WHERE id = $5
	`,
		e.CaregiverNotified,
		string(e.Severity),
		e.Resolved,
		nullTime(e.ResolvedAt),
		e.ID,
	)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *SafetyRepo) ListByDevice(ctx context.Context, deviceID string, filter safety.ListFilter) ([]safety.SafetyEvent, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, device_id, ts,
			movement_activity, fall_detected, impact_force,
			post_fall_inactivity, location,
			alert_triggered, caregiver_notified,
			severity, resolved, resolved_at
		FROM safety_events
		WHERE device_id = $1
	`)

	args := []any{deviceID}

	if filter.OnlyUnresolved {
		sb.WriteString(" AND resolved = FALSE")
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 20
	}
	if limit > 200 {
		limit = 200
	}

	sb.WriteString(" ORDER BY ts DESC LIMIT $2")
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]safety.SafetyEvent, 0)
	for rows.Next() {
		e, err := scanSafetyEvent(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (r *SafetyRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT device_id FROM safety_events ORDER BY device_id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]string, 0)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func scanSafetyEvent(row rowScanner) (safety.SafetyEvent, error) {
	var e safety.SafetyEvent
	var impact, severity string
	var resolvedAt sql.NullTime

	if err := row.Scan(
		&e.ID,
		&e.DeviceID,
		&e.Timestamp,
		&e.MovementActivity,
		&e.FallDetected,
		&impact,
		&e.PostFallInactivitySeconds,
		&e.Location,
		&e.AlertTriggered,
		&e.CaregiverNotified,
		&severity,
		&e.Resolved,
		&resolvedAt,
	); err != nil {
		if err == sql.ErrNoRows {
			return safety.SafetyEvent{}, ErrNotFound
		}
		return safety.SafetyEvent{}, err
	}

	e.ImpactForce = safety.ImpactForce(impact)
	e.Severity = safety.Severity(severity)
	e.ResolvedAt = timePtr(resolvedAt)
	return e, nil
}
