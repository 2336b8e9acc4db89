package vitals

import (
	"context"
	"errors"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	readings []Reading
}

func newTestRepo() *testRepo {
	return &testRepo{readings: []Reading{}}
}

func (r *testRepo) Create(ctx context.Context, reading Reading) error {
	if reading.ID == "" {
		return errors.New("repo: id required")
	}
	r.readings = append(r.readings, reading)
	return nil
}

func (r *testRepo) ExistsAt(ctx context.Context, deviceID string, ts time.Time) (bool, error) {
	for _, reading := range r.readings {
		if reading.DeviceID == deviceID && reading.Timestamp.Equal(ts) {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) ListByDevice(ctx context.Context, deviceID string, filter ListFilter) ([]Reading, error) {
	out := make([]Reading, 0)
	// desc, como los repos reales
	for i := len(r.readings) - 1; i >= 0; i-- {
		reading := r.readings[i]
		if reading.DeviceID != deviceID {
			continue
		}
		if filter.From != nil && reading.Timestamp.Before(*filter.From) {
			continue
		}
		out = append(out, reading)
		if filter.Limit > 0 && len(out) == filter.Limit {
			break
		}
	}
	return out, nil
}

func (r *testRepo) MarkNotified(ctx context.Context, id string) error {
	for i := range r.readings {
		if r.readings[i].ID == id {
			r.readings[i].CaregiverNotified = true
			return nil
		}
	}
	return ErrNotFound
}

func (r *testRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, reading := range r.readings {
		if _, ok := seen[reading.DeviceID]; ok {
			continue
		}
		seen[reading.DeviceID] = struct{}{}
		out = append(out, reading.DeviceID)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Record_EvaluatesThresholds(t *testing.T) {
	svc := NewService(newTestRepo())

	// 145/90 dispara presión (145 > 140), SpO2 90 dispara (< 92)
	r, err := svc.Record(context.Background(), "D3000", RecordInput{
		HeartRate:   82,
		BPSystolic:  145,
		BPDiastolic: 90,
		Glucose:     130,
		SpO2:        90,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}

	if !r.BPAlert {
		t.Fatalf("expected BP alert at 145/90")
	}
	if !r.SpO2Alert {
		t.Fatalf("expected SpO2 alert at 90")
	}
	if r.HeartRateAlert || r.GlucoseAlert {
		t.Fatalf("expected HR/glucose within range, got %+v", r)
	}
	if !r.AlertTriggered {
		t.Fatalf("expected AlertTriggered when any metric alerts")
	}
}

func TestService_Record_HealthyReading_NoAlerts(t *testing.T) {
	svc := NewService(newTestRepo())

	r, err := svc.Record(context.Background(), "D2000", RecordInput{
		HeartRate:   75,
		BPSystolic:  125,
		BPDiastolic: 85,
		Glucose:     110,
		SpO2:        97,
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if r.AlertTriggered {
		t.Fatalf("expected no alerts for healthy reading, got %+v", r)
	}
}

func TestService_Record_ZeroMetricNeverAlerts(t *testing.T) {
	svc := NewService(newTestRepo())

	// Lectura parcial: solo frecuencia cardíaca
	r, err := svc.Record(context.Background(), "D1000", RecordInput{HeartRate: 70})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if r.BPAlert || r.GlucoseAlert || r.SpO2Alert || r.AlertTriggered {
		t.Fatalf("expected unmeasured metrics (0) to never alert, got %+v", r)
	}
}

func TestService_Record_PresetFlags_SkipEvaluation(t *testing.T) {
	svc := NewService(newTestRepo())

	// Valores sanos pero flags del CSV que dicen lo contrario: se respetan.
	r, err := svc.Record(context.Background(), "D1000", RecordInput{
		HeartRate:   75,
		SpO2:        97,
		PresetFlags: true,
		Flags: PresetAlertFlags{
			SpO2Alert:         true,
			AlertTriggered:    true,
			CaregiverNotified: true,
		},
	})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if !r.SpO2Alert || !r.AlertTriggered || !r.CaregiverNotified {
		t.Fatalf("expected preset flags to be kept, got %+v", r)
	}
}

func TestService_Record_DuplicateTimestamp(t *testing.T) {
	svc := NewService(newTestRepo())

	ts := time.Date(2026, 1, 15, 8, 30, 0, 0, time.UTC)

	if _, err := svc.Record(context.Background(), "D1000", RecordInput{Timestamp: ts, HeartRate: 70}); err != nil {
		t.Fatalf("Record #1 error: %v", err)
	}

	_, err := svc.Record(context.Background(), "D1000", RecordInput{Timestamp: ts, HeartRate: 75})
	if !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Mismo timestamp en otro device no es duplicado
	if _, err := svc.Record(context.Background(), "D2000", RecordInput{Timestamp: ts, HeartRate: 75}); err != nil {
		t.Fatalf("Record other device error: %v", err)
	}
}

func TestService_Record_DefaultsTimestampToNow(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	r, err := svc.Record(context.Background(), "D1000", RecordInput{HeartRate: 70})
	if err != nil {
		t.Fatalf("Record returned error: %v", err)
	}
	if !r.Timestamp.Equal(now) {
		t.Fatalf("expected timestamp defaulted to now, got %v", r.Timestamp)
	}
}

func TestService_ListByDevice_ClampsLimit(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	base := time.Date(2026, 1, 10, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 30; i++ {
		if _, err := svc.Record(context.Background(), "D1000", RecordInput{
			Timestamp: base.Add(time.Duration(i) * time.Minute),
			HeartRate: 70,
		}); err != nil {
			t.Fatalf("Record %d error: %v", i, err)
		}
	}

	items, err := svc.ListByDevice(context.Background(), "D1000", ListFilter{Limit: 10})
	if err != nil {
		t.Fatalf("ListByDevice error: %v", err)
	}
	if len(items) != 10 {
		t.Fatalf("expected 10 readings, got %d", len(items))
	}
	// Desc: la primera es la más nueva
	if !items[0].Timestamp.After(items[1].Timestamp) {
		t.Fatalf("expected descending order")
	}
}

func TestBuildChartData_ChronologicalAndSkipsZeros(t *testing.T) {
	t1 := time.Date(2026, 1, 15, 8, 0, 0, 0, time.UTC)
	t2 := t1.Add(time.Hour)

	// Entrada desc, como ListByDevice
	readings := []Reading{
		{Timestamp: t2, HeartRate: 80, BPSystolic: 130, BPDiastolic: 85, Glucose: 0, SpO2: 96},
		{Timestamp: t1, HeartRate: 75, BPSystolic: 125, BPDiastolic: 82, Glucose: 110, SpO2: 97},
	}

	data := BuildChartData(readings)

	if len(data.HeartRate.Values) != 2 {
		t.Fatalf("expected 2 heart rate points, got %d", len(data.HeartRate.Values))
	}
	if data.HeartRate.Values[0] != 75 || data.HeartRate.Values[1] != 80 {
		t.Fatalf("expected chronological order, got %v", data.HeartRate.Values)
	}

	// Glucosa en 0 se omite
	if len(data.Glucose.Values) != 1 || data.Glucose.Values[0] != 110 {
		t.Fatalf("expected single glucose point 110, got %v", data.Glucose.Values)
	}

	// La presión siempre entra
	if len(data.BloodPressure.Systolic) != 2 || data.BloodPressure.Systolic[0] != 125 {
		t.Fatalf("expected both pressure points, got %v", data.BloodPressure.Systolic)
	}
}
