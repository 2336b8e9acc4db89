package safety

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e SafetyEvent) error
	ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error)
	GetByID(ctx context.Context, id string) (SafetyEvent, error)
	Update(ctx context.Context, e SafetyEvent) error
	ListByDevice(ctx context.Context, deviceID string, filter ListFilter) ([]SafetyEvent, error)
	DeviceIDs(ctx context.Context) ([]string, error)
}
