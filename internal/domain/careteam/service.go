package careteam

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrForbidden    = errors.New("forbidden")
	ErrNotFound     = errors.New("not found")
	ErrBadState     = errors.New("invalid state")
)

type Service struct {
	repo Repository
	now  func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo: repo,
		now:  time.Now,
	}
}

type InviteInput struct {
	DeviceID    string
	OwnerID     string
	CaregiverID string
	Scopes      []Scope
}

func (s *Service) Invite(ctx context.Context, in InviteInput) (Grant, error) {
	deviceID := strings.TrimSpace(in.DeviceID)
	ownerID := strings.TrimSpace(in.OwnerID)
	caregiverID := strings.TrimSpace(in.CaregiverID)

	if deviceID == "" || ownerID == "" || caregiverID == "" {
		return Grant{}, ErrInvalidInput
	}
	if ownerID == caregiverID {
		return Grant{}, ErrInvalidInput
	}

	// Scopes: vacío => default útil (ver dispositivo + vitales).
	// Con valores => validación estricta.
	var scopes []Scope
	var err error
	if len(in.Scopes) == 0 {
		scopes = []Scope{ScopeDeviceRead, ScopeVitalsRead}
	} else {
		scopes, err = normalizeScopesStrict(in.Scopes)
		if err != nil {
			return Grant{}, err
		}
		if len(scopes) == 0 {
			return Grant{}, ErrInvalidInput
		}
	}

	now := s.now()

	// Re-invitar al mismo caregiver actualiza el grant existente (dedupe),
	// salvo que esté revoked: ahí se crea uno nuevo.
	existing, err := s.latestMatch(ctx, deviceID, ownerID, caregiverID)
	if err == nil && existing.ID != "" && existing.Status != StatusRevoked {
		existing.Scopes = scopes
		existing.UpdatedAt = now
		if err := s.repo.Update(ctx, existing); err != nil {
			return Grant{}, err
		}
		return existing, nil
	}

	g := Grant{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		OwnerID:     ownerID,
		CaregiverID: caregiverID,
		Scopes:      scopes,
		Status:      StatusInvited,
		CreatedAt:   now,
		UpdatedAt:   now,
		RevokedAt:   nil,
	}

	if err := s.repo.Create(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) Accept(ctx context.Context, grantID, caregiverID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	caregiverID = strings.TrimSpace(caregiverID)

	if grantID == "" || caregiverID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.CaregiverID != caregiverID {
		return Grant{}, ErrForbidden
	}
	if g.Status == StatusRevoked {
		return Grant{}, ErrBadState
	}

	// Idempotente
	if g.Status == StatusActive {
		return g, nil
	}
	if g.Status != StatusInvited {
		return Grant{}, ErrBadState
	}

	now := s.now()
	g.Status = StatusActive
	g.UpdatedAt = now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) Revoke(ctx context.Context, grantID, ownerID string) (Grant, error) {
	grantID = strings.TrimSpace(grantID)
	ownerID = strings.TrimSpace(ownerID)

	if grantID == "" || ownerID == "" {
		return Grant{}, ErrInvalidInput
	}

	g, err := s.repo.GetByID(ctx, grantID)
	if err != nil {
		return Grant{}, ErrNotFound
	}

	if g.OwnerID != ownerID {
		return Grant{}, ErrForbidden
	}

	// Idempotente
	if g.Status == StatusRevoked {
		return g, nil
	}

	now := s.now()
	g.Status = StatusRevoked
	g.UpdatedAt = now
	g.RevokedAt = &now

	if err := s.repo.Update(ctx, g); err != nil {
		return Grant{}, err
	}
	return g, nil
}

func (s *Service) GetActiveGrant(ctx context.Context, deviceID, caregiverID string) (Grant, error) {
	return s.repo.GetActiveGrant(ctx, deviceID, caregiverID)
}

func (s *Service) ListByCaregiver(ctx context.Context, caregiverID string) ([]Grant, error) {
	return s.repo.ListByCaregiver(ctx, caregiverID)
}

func (s *Service) ListByDevice(ctx context.Context, deviceID string) ([]Grant, error) {
	return s.repo.ListByDevice(ctx, deviceID)
}

// latestMatch busca el grant más reciente para (device, owner, caregiver).
func (s *Service) latestMatch(ctx context.Context, deviceID, ownerID, caregiverID string) (Grant, error) {
	all, err := s.repo.ListByDevice(ctx, deviceID)
	if err != nil {
		return Grant{}, err
	}

	matches := make([]Grant, 0)
	for _, g := range all {
		if g.OwnerID == ownerID && g.CaregiverID == caregiverID {
			matches = append(matches, g)
		}
	}
	if len(matches) == 0 {
		return Grant{}, ErrNotFound
	}

	sort.Slice(matches, func(i, j int) bool {
		if !matches[i].UpdatedAt.Equal(matches[j].UpdatedAt) {
			return matches[i].UpdatedAt.After(matches[j].UpdatedAt)
		}
		return matches[i].CreatedAt.After(matches[j].CreatedAt)
	})

	return matches[0], nil
}

func normalizeScopesStrict(in []Scope) ([]Scope, error) {
	seen := map[Scope]struct{}{}
	out := make([]Scope, 0, len(in))

	for _, raw := range in {
		s := Scope(strings.TrimSpace(string(raw)))
		if s == "" {
			continue
		}
		if !validScope(s) {
			return nil, ErrInvalidInput
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}

	return out, nil
}
