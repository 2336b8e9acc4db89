package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prinik8/AIcare/internal/domain/safety"
)

type safetyRepo struct {
	mu   sync.RWMutex
	byID map[string]safety.SafetyEvent
}

func NewSafetyRepo() safety.Repository {
	return &safetyRepo{
		byID: make(map[string]safety.SafetyEvent),
	}
}

func (r *safetyRepo) Create(ctx context.Context, e safety.SafetyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("safety event id required")
	}
	if _, exists := r.byID[e.ID]; exists {
		return errors.New("safety event already exists")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *safetyRepo) ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	for _, e := range r.byID {
		if e.DeviceID == deviceID && e.Timestamp.Equal(ts) {
			return true, nil
		}
	}
	return false, nil
}

func (r *safetyRepo) GetByID(ctx context.Context, id string) (safety.SafetyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.byID[id]
	if !ok {
		return safety.SafetyEvent{}, ErrNotFound
	}
	return e, nil
}

func (r *safetyRepo) Update(ctx context.Context, e safety.SafetyEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[e.ID]; !exists {
		return ErrNotFound
	}
	r.byID[e.ID] = e
	return nil
}

func (r *safetyRepo) ListByDevice(ctx context.Context, deviceID string, filter safety.ListFilter) ([]safety.SafetyEvent, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]safety.SafetyEvent, 0)
	for _, e := range r.byID {
		if e.DeviceID != deviceID {
			continue
		}
		if filter.OnlyUnresolved && e.Resolved {
			continue
		}
		out = append(out, e)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})

	if filter.Limit > 0 && len(out) > filter.Limit {
		out = out[:filter.Limit]
	}
	return out, nil
}

func (r *safetyRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, e := range r.byID {
		if _, ok := seen[e.DeviceID]; ok {
			continue
		}
		seen[e.DeviceID] = struct{}{}
		out = append(out, e.DeviceID)
	}
	sort.Strings(out)
	return out, nil
}
