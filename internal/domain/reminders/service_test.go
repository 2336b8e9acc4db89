package reminders

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

var errRepoNotFound = errors.New("repo: not found")

type testRepo struct {
	byID map[string]Reminder
}

func newTestRepo() *testRepo {
	return &testRepo{byID: map[string]Reminder{}}
}

func (r *testRepo) Create(ctx context.Context, rem Reminder) error {
	if rem.ID == "" {
		return errors.New("repo: id required")
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) Update(ctx context.Context, rem Reminder) error {
	if _, ok := r.byID[rem.ID]; !ok {
		return errRepoNotFound
	}
	r.byID[rem.ID] = rem
	return nil
}

func (r *testRepo) GetByID(ctx context.Context, id string) (Reminder, error) {
	rem, ok := r.byID[id]
	if !ok {
		return Reminder{}, errRepoNotFound
	}
	return rem, nil
}

func (r *testRepo) ExistsScheduled(ctx context.Context, deviceID string, scheduledAt time.Time, remType string) (bool, error) {
	for _, rem := range r.byID {
		if rem.DeviceID == deviceID && rem.ScheduledAt.Equal(scheduledAt) && rem.Type == remType {
			return true, nil
		}
	}
	return false, nil
}

func (r *testRepo) ListByDevice(ctx context.Context, deviceID string, completed *bool) ([]Reminder, error) {
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if rem.DeviceID != deviceID {
			continue
		}
		if completed != nil && rem.Completed != *completed {
			continue
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *testRepo) DueBefore(ctx context.Context, t time.Time) ([]Reminder, error) {
	out := make([]Reminder, 0)
	for _, rem := range r.byID {
		if rem.Completed || rem.Sent {
			continue
		}
		if rem.ScheduledAt.After(t) {
			continue
		}
		out = append(out, rem)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	return out, nil
}

func (r *testRepo) DeviceIDs(ctx context.Context) ([]string, error) {
	seen := map[string]struct{}{}
	out := make([]string, 0)
	for _, rem := range r.byID {
		if _, ok := seen[rem.DeviceID]; ok {
			continue
		}
		seen[rem.DeviceID] = struct{}{}
		out = append(out, rem.DeviceID)
	}
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestDerivePriority(t *testing.T) {
	if got := DerivePriority("Medication"); got != PriorityHigh {
		t.Fatalf("expected medication => high, got %s", got)
	}
	if got := DerivePriority("appointment"); got != PriorityMedium {
		t.Fatalf("expected appointment => medium, got %s", got)
	}
	if got := DerivePriority("exercise"); got != PriorityLow {
		t.Fatalf("expected anything else => low, got %s", got)
	}
}

func TestService_Create_DerivesPriorityWhenEmpty(t *testing.T) {
	svc := NewService(newTestRepo())

	rem, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Take blood pressure medication",
		ScheduledAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
		Recurrence:  RecurrenceDaily,
	})
	if err != nil {
		t.Fatalf("Create returned error: %v", err)
	}
	if rem.Priority != PriorityHigh {
		t.Fatalf("expected derived priority high, got %s", rem.Priority)
	}
	if rem.Completed || rem.Sent || rem.Acknowledged {
		t.Fatalf("new reminder must start clean, got %+v", rem)
	}
}

func TestService_Create_RejectsBadInput(t *testing.T) {
	svc := NewService(newTestRepo())
	scheduled := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)

	cases := []struct {
		name string
		in   CreateInput
	}{
		{"missing type", CreateInput{Description: "x", ScheduledAt: scheduled}},
		{"missing description", CreateInput{Type: "medication", ScheduledAt: scheduled}},
		{"zero schedule", CreateInput{Type: "medication", Description: "x"}},
		{"bad recurrence", CreateInput{Type: "medication", Description: "x", ScheduledAt: scheduled, Recurrence: Recurrence("hourly")}},
		{"bad priority", CreateInput{Type: "medication", Description: "x", ScheduledAt: scheduled, Priority: Priority("urgent")}},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if _, err := svc.Create(context.Background(), "D1000", tc.in); !errors.Is(err, ErrInvalidInput) {
				t.Fatalf("expected ErrInvalidInput, got %v", err)
			}
		})
	}
}

func TestService_Create_DuplicateSchedule(t *testing.T) {
	svc := NewService(newTestRepo())

	in := CreateInput{
		Type:        "medication",
		Description: "Take blood pressure medication",
		ScheduledAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	}
	if _, err := svc.Create(context.Background(), "D2000", in); err != nil {
		t.Fatalf("Create #1 error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "D2000", in); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("expected ErrDuplicate, got %v", err)
	}

	// Mismo horario con otro tipo no es duplicado
	in.Type = "appointment"
	in.Description = "Doctor appointment"
	if _, err := svc.Create(context.Background(), "D2000", in); err != nil {
		t.Fatalf("Create other type error: %v", err)
	}
}

func TestService_Complete_Idempotent(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2026, 1, 15, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	rem, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Take blood pressure medication",
		ScheduledAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	done, err := svc.Complete(context.Background(), rem.ID)
	if err != nil {
		t.Fatalf("Complete error: %v", err)
	}
	if !done.Completed || done.CompletedAt == nil || !done.CompletedAt.Equal(now) {
		t.Fatalf("expected completed at now, got %+v", done)
	}

	svc.now = func() time.Time { return now.Add(time.Hour) }
	again, err := svc.Complete(context.Background(), rem.ID)
	if err != nil {
		t.Fatalf("Complete #2 error: %v", err)
	}
	if !again.CompletedAt.Equal(now) {
		t.Fatalf("expected idempotent complete, CompletedAt changed")
	}
}

func TestService_Acknowledge(t *testing.T) {
	svc := NewService(newTestRepo())

	rem, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Take blood pressure medication",
		ScheduledAt: time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC),
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}

	acked, err := svc.Acknowledge(context.Background(), rem.ID)
	if err != nil {
		t.Fatalf("Acknowledge error: %v", err)
	}
	if !acked.Acknowledged {
		t.Fatalf("expected acknowledged")
	}
}

func TestService_DueBefore_SkipsSentAndCompleted(t *testing.T) {
	svc := NewService(newTestRepo())

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	due, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Morning pills",
		ScheduledAt: now.Add(-2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Create due error: %v", err)
	}

	sent, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Noon pills",
		ScheduledAt: now.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("Create sent error: %v", err)
	}
	if _, err := svc.MarkSent(context.Background(), sent.ID); err != nil {
		t.Fatalf("MarkSent error: %v", err)
	}

	if _, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "appointment",
		Description: "Doctor appointment",
		ScheduledAt: now.Add(3 * time.Hour),
	}); err != nil {
		t.Fatalf("Create future error: %v", err)
	}

	items, err := svc.DueBefore(context.Background(), now)
	if err != nil {
		t.Fatalf("DueBefore error: %v", err)
	}
	if len(items) != 1 || items[0].ID != due.ID {
		t.Fatalf("expected only the unsent overdue reminder, got %+v", items)
	}
}

func TestService_ListUpcomingAndCompleted(t *testing.T) {
	svc := NewService(newTestRepo())

	base := time.Date(2026, 1, 15, 9, 0, 0, 0, time.UTC)
	first, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "medication",
		Description: "Morning pills",
		ScheduledAt: base,
	})
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if _, err := svc.Create(context.Background(), "D2000", CreateInput{
		Type:        "appointment",
		Description: "Doctor appointment",
		ScheduledAt: base.Add(time.Hour),
	}); err != nil {
		t.Fatalf("Create error: %v", err)
	}

	if _, err := svc.Complete(context.Background(), first.ID); err != nil {
		t.Fatalf("Complete error: %v", err)
	}

	upcoming, err := svc.ListUpcoming(context.Background(), "D2000")
	if err != nil {
		t.Fatalf("ListUpcoming error: %v", err)
	}
	if len(upcoming) != 1 || upcoming[0].Type != "appointment" {
		t.Fatalf("expected only the appointment upcoming, got %+v", upcoming)
	}

	completed, err := svc.ListCompleted(context.Background(), "D2000")
	if err != nil {
		t.Fatalf("ListCompleted error: %v", err)
	}
	if len(completed) != 1 || completed[0].ID != first.ID {
		t.Fatalf("expected the completed reminder, got %+v", completed)
	}
}
