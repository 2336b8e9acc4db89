package vitals

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
	ErrDuplicate    = errors.New("duplicate reading")
)

type Service struct {
	repo       Repository
	thresholds Thresholds
	now        func() time.Time
}

func NewService(repo Repository) *Service {
	return &Service{
		repo:       repo,
		thresholds: DefaultThresholds(),
		now:        time.Now,
	}
}

// SetThresholds reemplaza los límites de alerta (config/runtime).
func (s *Service) SetThresholds(t Thresholds) { s.thresholds = t }

type RecordInput struct {
	Timestamp   time.Time
	HeartRate   int
	BPSystolic  int
	BPDiastolic int
	Glucose     int
	SpO2        int

	// PresetFlags: los CSV históricos ya traen los flags calculados.
	// Si viene true, se respetan los flags de Flags en vez de evaluar thresholds.
	PresetFlags bool
	Flags       PresetAlertFlags
}

// PresetAlertFlags replica las columnas Yes/No de los CSV.
type PresetAlertFlags struct {
	HeartRateAlert    bool
	BPAlert           bool
	GlucoseAlert      bool
	SpO2Alert         bool
	AlertTriggered    bool
	CaregiverNotified bool
}

func (s *Service) Record(ctx context.Context, deviceID string, in RecordInput) (Reading, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return Reading{}, ErrInvalidInput
	}

	ts := in.Timestamp
	if ts.IsZero() {
		ts = s.now()
	}

	exists, err := s.repo.ExistsAt(ctx, deviceID, ts)
	if err != nil {
		return Reading{}, err
	}
	if exists {
		return Reading{}, ErrDuplicate
	}

	r := Reading{
		ID:          uuid.NewString(),
		DeviceID:    deviceID,
		Timestamp:   ts,
		HeartRate:   in.HeartRate,
		BPSystolic:  in.BPSystolic,
		BPDiastolic: in.BPDiastolic,
		Glucose:     in.Glucose,
		SpO2:        in.SpO2,
	}

	if in.PresetFlags {
		r.HeartRateAlert = in.Flags.HeartRateAlert
		r.BPAlert = in.Flags.BPAlert
		r.GlucoseAlert = in.Flags.GlucoseAlert
		r.SpO2Alert = in.Flags.SpO2Alert
		r.AlertTriggered = in.Flags.AlertTriggered
		r.CaregiverNotified = in.Flags.CaregiverNotified
	} else {
		s.thresholds.Evaluate(&r)
	}

	if err := s.repo.Create(ctx, r); err != nil {
		return Reading{}, err
	}
	return r, nil
}

func (s *Service) ListByDevice(ctx context.Context, deviceID string, filter ListFilter) ([]Reading, error) {
	deviceID = strings.TrimSpace(deviceID)
	if deviceID == "" {
		return nil, ErrInvalidInput
	}
	if filter.Limit <= 0 {
		filter.Limit = 50
	}
	if filter.Limit > 500 {
		filter.Limit = 500
	}
	return s.repo.ListByDevice(ctx, deviceID, filter)
}

// Latest devuelve las últimas n lecturas (desc).
func (s *Service) Latest(ctx context.Context, deviceID string, n int) ([]Reading, error) {
	if n <= 0 {
		n = 10
	}
	return s.ListByDevice(ctx, deviceID, ListFilter{Limit: n})
}

func (s *Service) MarkNotified(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return ErrInvalidInput
	}
	return s.repo.MarkNotified(ctx, id)
}

// DeviceIDs lista los device IDs con datos (dropdown del dashboard).
func (s *Service) DeviceIDs(ctx context.Context) ([]string, error) {
	return s.repo.DeviceIDs(ctx)
}
