package devices

import "context"

type Repository interface {
	Create(ctx context.Context, d Device) error
	Update(ctx context.Context, d Device) error
	GetByDeviceID(ctx context.Context, deviceID string) (Device, error)
	List(ctx context.Context) ([]Device, error)
}
