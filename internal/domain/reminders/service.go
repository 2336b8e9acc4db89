package reminders

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
	ErrDuplicate    = errors.New("duplicate reminder")
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

type CreateInput struct {
	Type        string
	Description string
	ScheduledAt time.Time
	Recurrence  Recurrence
	Priority    Priority // vacío => derivada del tipo

	// Flags de los CSV históricos.
	Sent         bool
	Acknowledged bool
}

func (s *Service) Create(ctx context.Context, deviceID string, in CreateInput) (Reminder, error) {
	deviceID = strings.TrimSpace(deviceID)
	remType := strings.TrimSpace(in.Type)
	desc := strings.TrimSpace(in.Description)

	if deviceID == "" || remType == "" || desc == "" {
		return Reminder{}, ErrInvalidInput
	}
	if in.ScheduledAt.IsZero() {
		return Reminder{}, ErrInvalidInput
	}
	if !validRecurrence(in.Recurrence) {
		return Reminder{}, ErrInvalidInput
	}

	exists, err := s.repo.ExistsScheduled(ctx, deviceID, in.ScheduledAt, remType)
	if err != nil {
		return Reminder{}, err
	}
	if exists {
		return Reminder{}, ErrDuplicate
	}

	priority := in.Priority
	if priority == "" {
		priority = DerivePriority(remType)
	}
	if priority != PriorityLow && priority != PriorityMedium && priority != PriorityHigh {
		return Reminder{}, ErrInvalidInput
	}

	r := Reminder{
		ID:           uuid.NewString(),
		DeviceID:     deviceID,
		CreatedAt:    s.now(),
		Type:         remType,
		Description:  desc,
		ScheduledAt:  in.ScheduledAt,
		Recurrence:   in.Recurrence,
		Priority:     priority,
		Completed:    false,
		Sent:         in.Sent,
		Acknowledged: in.Acknowledged,
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// DerivePriority aplica la regla del import original:
// medication→high, appointment→medium, resto→low.
func DerivePriority(remType string) Priority {
	switch strings.ToLower(strings.TrimSpace(remType)) {
	case "medication":
		return PriorityHigh
	case "appointment":
		return PriorityMedium
	default:
		return PriorityLow
	}
}

func (s *Service) ListUpcoming(ctx context.Context, deviceID string) ([]Reminder, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidInput
	}
	completed := false
	return s.repo.ListByDevice(ctx, deviceID, &completed)
}

func (s *Service) ListCompleted(ctx context.Context, deviceID string) ([]Reminder, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidInput
	}
	completed := true
	return s.repo.ListByDevice(ctx, deviceID, &completed)
}

// Complete marca el reminder como hecho. Idempotente.
func (s *Service) Complete(ctx context.Context, id string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, ErrNotFound
	}

	if r.Completed {
		return r, nil
	}

	now := s.now()
	r.Completed = true
	r.CompletedAt = &now

	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// Acknowledge: la persona mayor confirmó que vio el recordatorio.
func (s *Service) Acknowledge(ctx context.Context, id string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, ErrNotFound
	}

	if r.Acknowledged {
		return r, nil
	}

	r.Acknowledged = true
	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// MarkSent lo usa el dispatcher cuando entrega el recordatorio.
func (s *Service) MarkSent(ctx context.Context, id string) (Reminder, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return Reminder{}, ErrInvalidInput
	}

	r, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return Reminder{}, ErrNotFound
	}

	if r.Sent {
		return r, nil
	}

	r.Sent = true
	if err := s.repo.Update(ctx, r); err != nil {
		return Reminder{}, err
	}
	return r, nil
}

// DueBefore lista reminders pendientes de entrega con horario vencido.
func (s *Service) DueBefore(ctx context.Context, t time.Time) ([]Reminder, error) {
	if t.IsZero() {
		t = s.now()
	}
	return s.repo.DueBefore(ctx, t)
}

func (s *Service) DeviceIDs(ctx context.Context) ([]string, error) {
	return s.repo.DeviceIDs(ctx)
}

func validRecurrence(r Recurrence) bool {
	switch r {
	case RecurrenceNone, RecurrenceDaily, RecurrenceWeekly:
		return true
	default:
		return false
	}
}
