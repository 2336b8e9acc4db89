package vitals

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, r Reading) error
	// ExistsAt detecta duplicados (device, timestamp) para el dedupe del import.
	ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error)
	ListByDevice(ctx context.Context, deviceID string, filter ListFilter) ([]Reading, error)
	MarkNotified(ctx context.Context, id string) error
	DeviceIDs(ctx context.Context) ([]string, error)
}
