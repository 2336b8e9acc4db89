package sqlite

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
)

type EventLogRepo struct {
	db *sql.DB
}

func NewEventLogRepo(db *sql.DB) *EventLogRepo {
	return &EventLogRepo{db: db}
}

func (r *EventLogRepo) Create(ctx context.Context, e eventlog.Event) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO events (id, ts, source, type, description, severity)
		VALUES (?,?,?,?,?,?)
	`,
		e.ID,
		fmtTime(e.Timestamp),
		e.Source,
		e.Type,
		e.Description,
		string(e.Severity),
	)
	return err
}

func (r *EventLogRepo) ListSince(ctx context.Context, since time.Time, f eventlog.Filter) ([]eventlog.Event, error) {
	sb := strings.Builder{}
	sb.WriteString(`
		SELECT id, ts, source, type, description, severity
		FROM events
		WHERE ts >= ?
	`)

	args := []any{fmtTime(since)}

	if s := strings.TrimSpace(f.Source); s != "" {
		sb.WriteString(" AND source LIKE ?")
		args = append(args, "%"+s+"%")
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		sb.WriteString(" AND type LIKE ?")
		args = append(args, "%"+t+"%")
	}
	if f.Severity != "" {
		sb.WriteString(" AND severity = ?")
		args = append(args, string(f.Severity))
	}

	sb.WriteString(" ORDER BY ts DESC")

	rows, err := r.db.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]eventlog.Event, 0)
	for rows.Next() {
		var e eventlog.Event
		var ts, severity string

		if err := rows.Scan(&e.ID, &ts, &e.Source, &e.Type, &e.Description, &severity); err != nil {
			return nil, err
		}

		e.Timestamp = parseTime(ts)
		e.Severity = eventlog.Severity(severity)
		out = append(out, e)
	}
	return out, rows.Err()
}
