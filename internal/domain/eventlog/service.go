package eventlog

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
)

var (
	ErrInvalidInput = errors.New("invalid input")
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

// Log registra un evento. Severity vacía => info.
func (s *Service) Log(ctx context.Context, source, eventType, description string, severity Severity) (Event, error) {
	source = strings.TrimSpace(source)
	eventType = strings.TrimSpace(eventType)

	if source == "" || eventType == "" {
		return Event{}, ErrInvalidInput
	}
	if severity == "" {
		severity = SeverityInfo
	}

	e := Event{
		ID:          uuid.NewString(),
		Timestamp:   s.now(),
		Source:      source,
		Type:        eventType,
		Description: strings.TrimSpace(description),
		Severity:    severity,
	}

	if err := s.repo.Create(ctx, e); err != nil {
		return Event{}, err
	}
	return e, nil
}

// Recent devuelve eventos de las últimas f.Hours horas (default 24).
func (s *Service) Recent(ctx context.Context, f Filter) ([]Event, error) {
	hours := f.Hours
	if hours <= 0 {
		hours = 24
	}
	since := s.now().Add(-time.Duration(hours) * time.Hour)
	return s.repo.ListSince(ctx, since, f)
}
