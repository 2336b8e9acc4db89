package scheduler

import (
	"context"
	"testing"
	"time"

	mem "github.com/prinik8/AIcare/internal/adapters/storage/memory"
	"github.com/prinik8/AIcare/internal/domain/eventlog"
	"github.com/prinik8/AIcare/internal/domain/reminders"
	"github.com/prinik8/AIcare/internal/platform/logger"
)

func newDispatcher(t *testing.T) (*Dispatcher, *reminders.Service, *eventlog.Service) {
	t.Helper()
	rems := reminders.NewService(mem.NewRemindersRepo())
	events := eventlog.NewService(mem.NewEventlogRepo())
	return NewDispatcher(rems, events, logger.Nop(), time.Minute), rems, events
}

func TestDispatchDue_MarksDueRemindersSent(t *testing.T) {
	d, rems, events := newDispatcher(t)

	base := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	ctx := context.Background()

	due, err := rems.Create(ctx, "D1000", reminders.CreateInput{
		Type:        "medication",
		Description: "Take blood pressure medication",
		ScheduledAt: base.Add(-10 * time.Minute),
	})
	if err != nil {
		t.Fatalf("create due: %v", err)
	}

	future, err := rems.Create(ctx, "D1000", reminders.CreateInput{
		Type:        "appointment",
		Description: "Doctor appointment",
		ScheduledAt: base.Add(2 * time.Hour),
	})
	if err != nil {
		t.Fatalf("create future: %v", err)
	}

	n, err := d.DispatchDue(ctx)
	if err != nil {
		t.Fatalf("DispatchDue error: %v", err)
	}
	if n != 1 {
		t.Fatalf("expected 1 dispatched, got %d", n)
	}

	upcoming, err := rems.ListUpcoming(ctx, "D1000")
	if err != nil {
		t.Fatalf("list upcoming: %v", err)
	}
	sent := map[string]bool{}
	for _, r := range upcoming {
		sent[r.ID] = r.Sent
	}
	if !sent[due.ID] {
		t.Fatalf("expected due reminder marked sent")
	}
	if sent[future.ID] {
		t.Fatalf("future reminder must not be sent")
	}

	// El envío queda en el eventlog con severity warning (priority high)
	logged, err := events.Recent(ctx, eventlog.Filter{Source: "scheduler"})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(logged) != 1 {
		t.Fatalf("expected 1 scheduler event, got %d", len(logged))
	}
	e := logged[0]
	if e.Type != "reminder_sent" || e.Severity != eventlog.SeverityWarning {
		t.Fatalf("unexpected event: %+v", e)
	}
}

func TestDispatchDue_InfoSeverityForLowPriority(t *testing.T) {
	d, rems, events := newDispatcher(t)

	base := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	ctx := context.Background()
	if _, err := rems.Create(ctx, "D1000", reminders.CreateInput{
		Type:        "hydration",
		Description: "Drink a glass of water",
		ScheduledAt: base.Add(-time.Minute),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if _, err := d.DispatchDue(ctx); err != nil {
		t.Fatalf("DispatchDue: %v", err)
	}

	logged, err := events.Recent(ctx, eventlog.Filter{Source: "scheduler"})
	if err != nil {
		t.Fatalf("events: %v", err)
	}
	if len(logged) != 1 || logged[0].Severity != eventlog.SeverityInfo {
		t.Fatalf("expected single info event, got %+v", logged)
	}
}

func TestDispatchDue_SecondPassIsNoop(t *testing.T) {
	d, rems, _ := newDispatcher(t)

	base := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	ctx := context.Background()
	if _, err := rems.Create(ctx, "D1000", reminders.CreateInput{
		Type:        "medication",
		Description: "Evening pills",
		ScheduledAt: base.Add(-time.Hour),
	}); err != nil {
		t.Fatalf("create: %v", err)
	}

	if n, err := d.DispatchDue(ctx); err != nil || n != 1 {
		t.Fatalf("first pass: n=%d err=%v", n, err)
	}
	if n, err := d.DispatchDue(ctx); err != nil || n != 0 {
		t.Fatalf("second pass should be a noop: n=%d err=%v", n, err)
	}
}

func TestDispatchDue_SkipsCompleted(t *testing.T) {
	d, rems, _ := newDispatcher(t)

	base := time.Date(2025, 1, 22, 10, 0, 0, 0, time.UTC)
	d.now = func() time.Time { return base }

	ctx := context.Background()
	r, err := rems.Create(ctx, "D1000", reminders.CreateInput{
		Type:        "medication",
		Description: "Morning pills",
		ScheduledAt: base.Add(-time.Hour),
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if _, err := rems.Complete(ctx, r.ID); err != nil {
		t.Fatalf("complete: %v", err)
	}

	if n, err := d.DispatchDue(ctx); err != nil || n != 0 {
		t.Fatalf("completed reminder must not dispatch: n=%d err=%v", n, err)
	}
}
