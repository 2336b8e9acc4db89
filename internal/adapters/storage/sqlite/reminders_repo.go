package sqlite

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
		) VALUES (?,?,?,?,?,?,?,?,?,?,?,?)
	`,
		rem.ID,
		rem.DeviceID,
		fmtTime(rem.CreatedAt),
		rem.Type,
		rem.Description,
		fmtTime(rem.ScheduledAt),
		string(rem.Recurrence),
		string(rem.Priority),
		rem.Completed,
		fmtTimePtr(rem.CompletedAt),
		rem.Sent,
		rem.Acknowledged,
	)
	return err
}

func (r *RemindersRepo) Update(ctx context.Context, rem reminders.Reminder) error {
	res, err := r.db.ExecContext(ctx, `
		UPDATE reminders
		SET
			completed = ?,
			completed_at = ?,
			sent = ?,
			acknowledged = ?
		WHERE id = ?
	`,
		rem.Completed,
		fmtTimePtr(rem.CompletedAt),
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
		WHERE id = ?
	`, id)

	return scanReminder(row)
}

func (r *RemindersRepo) ExistsScheduled(ctx context.Context, deviceID string, scheduledAt time.Time, remType string) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `
		SELECT 1 FROM reminders WHERE device_id = ? AND scheduled_at = ? AND type = ?
	`, deviceID, fmtTime(scheduledAt), remType).Scan(&one)
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
		WHERE device_id = ?
	`)

	args := []any{deviceID}

	if completed != nil {
		sb.WriteString(" AND completed = ?")
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
		WHERE completed = 0 AND sent = 0 AND scheduled_at <= ?
		ORDER BY scheduled_at ASC
	`, fmtTime(t))
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
	var createdAt, scheduledAt, recurrence, priority string
	var completedAt sql.NullString

	if err := row.Scan(
		&rem.ID,
		&rem.DeviceID,
		&createdAt,
		&rem.Type,
		&rem.Description,
		&scheduledAt,
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

	rem.CreatedAt = parseTime(createdAt)
	rem.ScheduledAt = parseTime(scheduledAt)
	rem.Recurrence = reminders.Recurrence(recurrence)
	rem.Priority = reminders.Priority(priority)
	rem.CompletedAt = parseTimePtr(completedAt)
	return rem, nil
}
