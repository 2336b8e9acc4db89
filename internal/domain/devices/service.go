package devices

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrNotFound      = errors.New("not found")
	ErrAlreadyExists = errors.New("device already registered")
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

type RegisterInput struct {
	DeviceID         string
	Label            string
	Location         string
	EmergencyContact string
	Conditions       string
	Notes            string
}

func (s *Service) Register(ctx context.Context, ownerID string, in RegisterInput) (Device, error) {
	if strings.TrimSpace(ownerID) == "" {
		return Device{}, ErrInvalidInput
	}
	deviceID := strings.TrimSpace(in.DeviceID)
	if deviceID == "" {
		return Device{}, ErrInvalidInput
	}

	// DeviceID es único: registrar dos veces es error, no upsert.
	if _, err := s.repo.GetByDeviceID(ctx, deviceID); err == nil {
		return Device{}, ErrAlreadyExists
	}

	now := s.now()
	d := Device{
		ID:               uuid.NewString(),
		DeviceID:         deviceID,
		Label:            strings.TrimSpace(in.Label),
		Location:         strings.TrimSpace(in.Location),
		EmergencyContact: strings.TrimSpace(in.EmergencyContact),
		Conditions:       strings.TrimSpace(in.Conditions),
		Notes:            strings.TrimSpace(in.Notes),
		OwnerID:          strings.TrimSpace(ownerID),
		RegisteredAt:     now,
		UpdatedAt:        now,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return Device{}, err
	}
	return d, nil
}

type UpdateProfileInput struct {
	// Punteros para PATCH real: nil = no tocar.
	Label            *string
	Location         *string
	EmergencyContact *string
	Conditions       *string
	Notes            *string
}

func (s *Service) UpdateProfile(ctx context.Context, deviceID string, in UpdateProfileInput) (Device, error) {
	d, err := s.GetByDeviceID(ctx, deviceID)
	if err != nil {
		return Device{}, err
	}

	if in.Label != nil {
		d.Label = strings.TrimSpace(*in.Label)
	}
	if in.Location != nil {
		d.Location = strings.TrimSpace(*in.Location)
	}
	if in.EmergencyContact != nil {
		d.EmergencyContact = strings.TrimSpace(*in.EmergencyContact)
	}
	if in.Conditions != nil {
		d.Conditions = strings.TrimSpace(*in.Conditions)
	}
	if in.Notes != nil {
		d.Notes = strings.TrimSpace(*in.Notes)
	}
	d.UpdatedAt = s.now()

	if err := s.repo.Update(ctx, d); err != nil {
		return Device{}, err
	}
	return d, nil
}

func (s *Service) GetByDeviceID(ctx context.Context, deviceID string) (Device, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Device{}, ErrInvalidInput
	}
	return s.repo.GetByDeviceID(ctx, deviceID)
}

func (s *Service) List(ctx context.Context) ([]Device, error) {
	return s.repo.List(ctx)
}
