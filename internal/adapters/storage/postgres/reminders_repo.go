package postgres

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/reminders"
)

type RemindersRepo struct {
	db *sql.DB
}

func NewRemindersRepo(db *sql.DB) *RemindersRepo {
	return &RemindersRepo{db: db}
}

func (r *RemindersRepo) Create(ctx context.Context, rem reminders.Reminder) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reminders (
			id, device_id, created_at,
			type, description, scheduled_at,
			recurrence, priority,
			completed, completed_at,
			sent, acknowledged
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`,
		rem.ID,
		rem.DeviceID,
		rem.CreatedAt,
		rem.Type,
		rem.Description,
		rem.ScheduledAt,
		string(rem.Recurrence),
		string(rem.Priority),
		rem.Completed,
		nullTime(rem.CompletedAt),
		rem.Sent,
		rem.Acknowledged,
	)
	return err
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET
			completed = $1,
			completed_at = $2,
			sent = $3,
			acknowledged = $4
		WHERE id = $5
	`,
		rem.Completed,
		nullTime(rem.CompletedAt),
		rem.Sent,
		rem.Acknowledged,
		rem.ID,
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

func (r *RemindersRepo) GetByID(ctx context.Context, id string) (reminders.Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return reminders.Reminder{}, ErrNotFound
	}

	row := r.db.QueryRowContext(ctx, `
		SELECT
			id, device_id, created_at,
			type, description, scheduled_at,
			recurrence, priority,
			completed, completed_at,
			sent, acknowledged
		FROM reminders
		WHERE id = $1
	`, id)

	return scanReminder(row)
}

func (r *RemindersRepo) ExistsScheduled(ctx context.Context, deviceID string, scheduledAt time.Time, remType string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM reminders WHERE device_id = $1 AND scheduled_at = $2 AND type = $3
	`, deviceID, scheduledAt, remType).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func (r *RemindersRepo) ListByDevice(ctx context.Context, deviceID string, completed *bool) ([]reminders.Reminder, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, nil
	}

	sb := strings.Builder{}
	sb.WriteString(`
		SELECT
			id, device_id, created_at,
			type, description, scheduled_at,
			recurrence, priority,
			completed, completed_at,
			sent, acknowledged
		FROM reminders
		WHERE device_id = $1
	`)

	args := []any{deviceID}

	if completed != nil {
		sb.WriteString(" AND completed = $2")
		args = append(args, *completed)
	}

	sb.WriteString(" ORDER BY scheduled_at ASC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) DueBefore(ctx context.Context, t time.Time) ([]reminders.Reminder, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT
			id, device_id, created_at,
			type, description, scheduled_at,
			recurrence, priority,
			completed, completed_at,
			sent, acknowledged
		FROM reminders
		WHERE completed = FALSE AND sent = FALSE AND scheduled_at <= $1
		ORDER BY scheduled_at ASC
	`, t)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]reminders.Reminder, 0)
	for rows.Next() {
		rem, err := scanReminder(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, rem)
	}
	return out, rows.Err()
}

func (r *RemindersRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT DISTINCT device_id FROM reminders ORDER BY device_id ASC
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

func scanReminder(row rowScanner) (reminders.Reminder, error) {
	var rem reminders.Reminder
	var recurrence, priority string
	var completedAt sql.NullTime

	if err := row.Scan(
		&rem.ID,
		&rem.DeviceID,
		&rem.CreatedAt,
		&rem.Type,
		&rem.Description,
		&rem.ScheduledAt,
		&recurrence,
		&priority,
		&rem.Completed,
		&completedAt,
		&rem.Sent,
		&rem.Acknowledged,
	); err != nil {
		if err == sql.ErrNoRows {
			return reminders.Reminder{}, ErrNotFound
		}
		return reminders.Reminder{}, err
	}

	rem.Recurrence = reminders.Recurrence(recurrence)
	rem.Priority = reminders.Priority(priority)
	rem.CompletedAt = timePtr(completedAt)
	return rem, nil
}
