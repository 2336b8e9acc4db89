package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/vitals"
)

type VitalsRepo struct {
	db *sql.DB
}

func NewVitalsRepo(db *sql.DB) *VitalsRepo {
	return &VitalsRepo{db: db}
}

func (r *VitalsRepo) Create(ctx context.Context, reading vitals.Reading) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO vitals_readings (
			id, device_id, ts,
			heart_rate, heart_rate_alert,
			bp_systolic, bp_diastolic, bp_alert,
			glucose, glucose_alert,
			spo2, spo2_alert,
			alert_triggered, caregiver_notified
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12,$13,$14)
	`,
		reading.ID,
		reading.DeviceID,
		reading.Timestamp,
		reading.HeartRate,
		reading.HeartRateAlert,
		reading.BPSystolic,
		reading.BPDiastolic,
		reading.BPAlert,
		reading.Glucose,
		reading.GlucoseAlert,
		reading.SpO2,
		reading.SpO2Alert,
		reading.AlertTriggered,
		reading.CaregiverNotified,
	)
	return err
}

func (r *VitalsRepo) ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM vitals_readings WHERE device_id = $1 AND ts = $2
	`, deviceID, ts).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *VitalsRepo) ListByDevice(ctx context.Context, deviceID string, filter vitals.ListFilter) ([]vitals.Reading, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, device_id, ts,
			heart_rate, heart_rate_alert,
			bp_systolic, bp_diastolic, bp_alert,
			glucose, glucose_alert,
			spo2, spo2_alert,
			alert_triggered, caregiver_notified
		FROM vitals_readings
		WHERE device_id = $1
	`)

	args := []any{deviceID}
	argN := 2

	if filter.From != nil {
		sb.WriteString(fmt.Sprintf(" AND ts >= $%d", argN))
		args = append(args, *filter.From)
		argN++
	}
	if filter.To != nil {
		sb.WriteString(fmt.Sprintf(" AND ts <= $%d", argN))
		args = append(args, *filter.To)
		argN++
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	if limit > 500 {
		limit = 500
	}

	sb.WriteString(" ORDER BY ts DESC")
	sb.WriteString(fmt.Sprintf(" LIMIT $%d", argN))
	args = append(args, limit)

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]vitals.Reading, 0)
	for rows.Next() {
		var reading vitals.Reading

		if err := rows.Scan(
			&reading.ID,
			&reading.DeviceID,
			&reading.Timestamp,
			&reading.HeartRate,
			&reading.HeartRateAlert,
			&reading.BPSystolic,
			&reading.BPDiastolic,
			&reading.BPAlert,
			&reading.Glucose,
			&reading.GlucoseAlert,
			&reading.SpO2,
			&reading.SpO2Alert,
			&reading.AlertTriggered,
			&reading.CaregiverNotified,
		); err != nil {
			return nil, err
		}

		out = append(out, reading)
	}

	return out, rows.Err()
}

func (r *VitalsRepo) MarkNotified(ctx context.Context, id string) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE vitals_readings SET caregiver_notified = TRUE WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *VitalsRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT device_id FROM vitals_readings ORDER BY device_id ASC
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
