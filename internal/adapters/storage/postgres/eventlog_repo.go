package postgres

import (
	"context"
	"database/sql"
	"fmt"
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
		VALUES ($1,$2,$3,$4,$5,$6)
	`,
		e.ID,
		e.Timestamp,
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
		WHERE ts >= $1
	`)

	args := []any{since}
	argN := 2

	if s := strings.TrimSpace(f.Source); s != "" {
		sb.WriteString(fmt.Sprintf(" AND source ILIKE $%d", argN))
		args = append(args, "%"+s+"%")
		argN++
	}
	if t := strings.TrimSpace(f.Type); t != "" {
		sb.WriteString(fmt.Sprintf(" AND type ILIKE $%d", argN))
		args = append(args, "%"+t+"%")
		argN++
	}
	if f.Severity != "" {
		sb.WriteString(fmt.Sprintf(" AND severity = $%d", argN))
		args = append(args, string(f.Severity))
		argN++
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
		var severity string

		if err := rows.Scan(&e.ID, &e.Timestamp, &e.Source, &e.Type, &e.Description, &severity); err != nil {
			return nil, err
		}

		e.Severity = eventlog.Severity(severity)
		out = append(out, e)
	}
	return out, rows.Err()
}
