package safety

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNotFound     = errors.New("not found")
	ErrDuplicate    = errors.New("duplicate safety event")
)

// Una caída seguida de este tiempo sin movimiento escala a critical,
// independiente de la fuerza de impacto.
const criticalInactivitySeconds = 60

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

type RecordInput struct {
	Timestamp                 time.Time
	MovementActivity          string
	FallDetected              bool
	ImpactForce               ImpactForce
	PostFallInactivitySeconds int
	Location                  string

	AlertTriggered    bool
	CaregiverNotified bool
}

func (s *Service) Record(ctx context.Context, deviceID string, in RecordInput) (SafetyEvent, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return SafetyEvent{}, ErrInvalidInput
	}
	if !validImpact(in.ImpactForce) {
		return SafetyEvent{}, ErrInvalidInput
	}
	if in.PostFallInactivitySeconds < 0 {
		return SafetyEvent{}, ErrInvalidInput
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	exists, err := s.repo.ExistsAt(ctx, deviceID, ts)
	if err != nil {
		return SafetyEvent{}, err
	}
	if exists {
		return SafetyEvent{}, ErrDuplicate
	}

	e := SafetyEvent{
		ID:                        uuid.NewString(),
		DeviceID:                  deviceID,
		Timestamp:                 ts,
		MovementActivity:          strings.TrimSpace(in.MovementActivity),
		FallDetected:              in.FallDetected,
		ImpactForce:               in.ImpactForce,
		PostFallInactivitySeconds: in.PostFallInactivitySeconds,
		Location:                  strings.TrimSpace(in.Location),
		AlertTriggered:            in.AlertTriggered,
		CaregiverNotified:         in.CaregiverNotified,
		Severity:                  DeriveSeverity(in.FallDetected, in.ImpactForce, in.PostFallInactivitySeconds),
		Resolved:                  false,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return SafetyEvent{}, err
	}
	return e, nil
}

// DeriveSeverity mapea fuerza de impacto a severidad (high→critical,
// medium→warning, low→info). Caída + inactividad prolongada escala a critical.
func DeriveSeverity(fall bool, impact ImpactForce, inactivitySeconds int) Severity {
	sev := SeverityNone
	switch impact {
	case ImpactHigh:
		sev = SeverityCritical
	case ImpactMedium:
		sev = SeverityWarning
	case ImpactLow:
		sev = SeverityInfo
	}

	if fall && inactivitySeconds >= criticalInactivitySeconds {
		sev = SeverityCritical
	}
	return sev
}

func (s *Service) GetByID(ctx context.Context, id string) (SafetyEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SafetyEvent{}, ErrInvalidInput
	}
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListByDevice(ctx context.Context, deviceID string, filter ListFilter) ([]SafetyEvent, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 20
	}
	if filter.Limit > 200 {
		filter.Limit = 200
	}
	return s.repo.ListByDevice(ctx, deviceID, filter)
}

// Resolve marca el evento como atendido. Idempotente.
func (s *Service) Resolve(ctx context.Context, id string) (SafetyEvent, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return SafetyEvent{}, ErrInvalidInput
	}

	e, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return SafetyEvent{}, ErrNotFound
	}

	if e.Resolved {
		return e, nil
	}

	now := s.now()
	e.Resolved = true
	e.ResolvedAt = &now

	if err := s.repo.Update(ctx, e); err != nil {
		return SafetyEvent{}, err
	}
	return e, nil
}

func (s *Service) DeviceIDs(ctx context.Context) ([]string, error) {
	return s.repo.DeviceIDs(ctx)
}

func validImpact(f ImpactForce) bool {
	switch f {
	case ImpactNone, ImpactLow, ImpactMedium, ImpactHigh:
		return true
	default:
		return false
	}
}

// ParseImpactForce normaliza los valores de los CSV ("High", "-", vacío).
func ParseImpactForce(s string) ImpactForce {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "low":
		return ImpactLow
	case "medium", "moderate":
		return ImpactMedium
	case "high":
		return ImpactHigh
	default:
		return ImpactNone
	}
}
