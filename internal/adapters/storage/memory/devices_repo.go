package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/prinik8/AIcare/internal/domain/devices"
)

var (
	ErrNotFound = errors.New("not found")
)

type deviceRepo struct {
	mu         sync.RWMutex
	byDeviceID map[string]devices.Device
}

func NewDeviceRepo() devices.Repository {
	return &deviceRepo{
		byDeviceID: make(map[string]devices.Device),
	}
}

func (r *deviceRepo) Create(ctx context.Context, d devices.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(d.DeviceID) == "" {
		return errors.New("device id required")
	}
	if _, exists := r.byDeviceID[d.DeviceID]; exists {
		return errors.New("device already exists")
	}
	r.byDeviceID[d.DeviceID] = d
	return nil
}

func (r *deviceRepo) Update(ctx context.Context, d devices.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byDeviceID[d.DeviceID]; !exists {
		return ErrNotFound
	}
	r.byDeviceID[d.DeviceID] = d
	return nil
}

func (r *deviceRepo) GetByDeviceID(ctx context.Context, deviceID string) (devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	d, ok := r.byDeviceID[deviceID]
	if !ok {
		return devices.Device{}, ErrNotFound
	}
	return d, nil
}

func (r *deviceRepo) List(ctx context.Context) ([]devices.Device, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]devices.Device, 0, len(r.byDeviceID))
	for _, d := range r.byDeviceID {
		out = append(out, d)
	}

	// Orden estable por registro asc (consistencia en dev)
	sort.Slice(out, func(i, j int) bool {
		return out[i].RegisteredAt.Before(out[j].RegisteredAt)
	})
	return out, nil
}
