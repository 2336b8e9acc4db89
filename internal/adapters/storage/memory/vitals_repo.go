package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prinik8/AIcare/internal/domain/vitals"
)

type vitalsRepo struct {
	mu   sync.RWMutex
	byID map[string]vitals.Reading
}

func NewVitalsRepo() vitals.Repository {
	return &vitalsRepo{
		byID: make(map[string]vitals.Reading),
	}
}

func (r *vitalsRepo) Create(ctx context.Context, reading vitals.Reading) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(reading.ID) == "" {
		return errors.New("reading id required")
	}
	if _, exists := r.byID[reading.ID]; exists {
		return errors.New("reading already exists")
	}
	r.byID[reading.ID] = reading
	return nil
}

func (r *vitalsRepo) ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, reading := range r.byID {
		if reading.DeviceID == deviceID && reading.Timestamp.Equal(ts) {
			return true, nil
		}
	}
	return false, nil
}

func (r *vitalsRepo) ListByDevice(ctx context.Context, deviceID string, filter vitals.ListFilter) ([]vitals.Reading, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]vitals.Reading, 0)
	for _, reading := range r.byID {
		if reading.DeviceID != deviceID {
			continue
		}
		if filter.From != nil && reading.Timestamp.Before(*filter.From) {
			continue
		}
		if filter.To != nil && reading.Timestamp.After(*filter.To) {
			continue
		}
		out = append(out, reading)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *vitalsRepo) MarkNotified(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reading, ok := r.byID[id]
	if !ok {
		return ErrNotFound
	}
	reading.CaregiverNotified = true
	r.byID[id] = reading
	return nil
}

func (r *vitalsRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, reading := range r.byID {
		if _, ok := seen[reading.DeviceID]; ok {
			continue
		}
		seen[reading.DeviceID] = struct{}{}
		out = append(out, reading.DeviceID)
	}
	sort.Strings(out)
	return out, nil
}
