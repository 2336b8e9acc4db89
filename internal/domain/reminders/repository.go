package reminders

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Reminder) error
	Update(ctx context.Context, r Reminder) error
	GetByID(ctx context.Context, id string) (Reminder, error)
	// ExistsScheduled detecta duplicados (device, scheduled_at, type) del import.
	ExistsScheduled(ctx context.Context, deviceID string, scheduledAt time.Time, remType string) (bool, error)
	// ListByDevice devuelve por scheduled_at asc; completed filtra por estado (nil = todos).
	ListByDevice(ctx context.Context, deviceID string, completed *bool) ([]Reminder, error)
	// DueBefore: incompletos, no enviados, con scheduled_at <= t.
	DueBefore(ctx context.Context, t time.Time) ([]Reminder, error)
	DeviceIDs(ctx context.Context) ([]string, error)
}
