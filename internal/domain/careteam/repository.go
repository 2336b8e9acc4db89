package careteam

import "context"

type Repository interface {
	Create(ctx context.Context, g Grant) error
	Update(ctx context.Context, g Grant) error
	GetByID(ctx context.Context, id string) (Grant, error)
	ListByDevice(ctx context.Context, deviceID string) ([]Grant, error)
	ListByCaregiver(ctx context.Context, caregiverID string) ([]Grant, error)
	// GetActiveGrant devuelve el grant activo más reciente para (device, caregiver).
	GetActiveGrant(ctx context.Context, deviceID, caregiverID string) (Grant, error)
}
