package memory

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/prinik8/AIcare/internal/domain/careteam"
)

type careteamRepo struct {
	mu   sync.RWMutex
	byID map[string]careteam.Grant
}

func NewCareteamRepo() careteam.Repository {
	return &careteamRepo{
		byID: make(map[string]careteam.Grant),
	}
}

func (r *careteamRepo) Create(ctx context.Context, g careteam.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(g.ID) == "" {
		return errors.New("grant id required")
	}
	if _, exists := r.byID[g.ID]; exists {
		return errors.New("grant already exists")
	}
	r.byID[g.ID] = g
	return nil
}

func (r *careteamRepo) Update(ctx context.Context, g careteam.Grant) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.byID[g.ID]; !exists {
		return ErrNotFound
	}
	r.byID[g.ID] = g
	return nil
}

func (r *careteamRepo) GetByID(ctx context.Context, id string) (careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	g, ok := r.byID[id]
	if !ok {
		return careteam.Grant{}, ErrNotFound
	}
	return g, nil
}

func (r *careteamRepo) ListByDevice(ctx context.Context, deviceID string) ([]careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]careteam.Grant, 0)
	for _, g := range r.byID {
		if g.DeviceID == deviceID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *careteamRepo) ListByCaregiver(ctx context.Context, caregiverID string) ([]careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]careteam.Grant, 0)
	for _, g := range r.byID {
		if g.CaregiverID == caregiverID {
			out = append(out, g)
		}
	}
	return out, nil
}

func (r *careteamRepo) GetActiveGrant(ctx context.Context, deviceID, caregiverID string) (careteam.Grant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var winner careteam.Grant
	has := false

	for _, g := range r.byID {
		if g.DeviceID != deviceID || g.CaregiverID != caregiverID {
			continue
		}
		if g.Status != careteam.StatusActive {
			continue
		}

		if !has {
			winner = g
			has = true
			continue
		}
		if g.UpdatedAt.After(winner.UpdatedAt) {
			winner = g
			continue
		}
		if g.UpdatedAt.Equal(winner.UpdatedAt) && g.CreatedAt.After(winner.CreatedAt) {
			winner = g
		}
	}

	if !has {
		return careteam.Grant{}, ErrNotFound
	}
	return winner, nil
}
