package eventlog

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"
)

// -------------------------
// Test repo (in-memory)
// -------------------------

type testRepo struct {
	events []Event
}

func newTestRepo() *testRepo {
	return &testRepo{events: []Event{}}
}

func (r *testRepo) Create(ctx context.Context, e Event) error {
	if e.ID == "" {
		return errors.New("repo: id required")
	}
	r.events = append(r.events, e)
	return nil
}

func (r *testRepo) ListSince(ctx context.Context, since time.Time, f Filter) ([]Event, error) {
	out := make([]Event, 0)
	for _, e := range r.events {
		if e.Timestamp.Before(since) {
			continue
		}
		if f.Source != "" && !strings.Contains(e.Source, f.Source) {
			continue
		}
		if f.Type != "" && !strings.Contains(e.Type, f.Type) {
			continue
		}
		if f.Severity != "" && e.Severity != f.Severity {
			continue
		}
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	return out, nil
}

// -------------------------
// Tests
// -------------------------

func TestService_Log_DefaultsSeverityToInfo(t *testing.T) {
	svc := NewService(newTestRepo())

	e, err := svc.Log(context.Background(), "ui", "dashboard_access", "Dashboard viewed", "")
	if err != nil {
		t.Fatalf("Log returned error: %v", err)
	}
	if e.Severity != SeverityInfo {
		t.Fatalf("expected info severity, got %s", e.Severity)
	}
	if e.ID == "" || e.Timestamp.IsZero() {
		t.Fatalf("expected id and timestamp, got %+v", e)
	}
}

func TestService_Log_RequiresSourceAndType(t *testing.T) {
	svc := NewService(newTestRepo())

	if _, err := svc.Log(context.Background(), "", "x", "", SeverityInfo); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty source, got %v", err)
	}
	if _, err := svc.Log(context.Background(), "ui", "  ", "", SeverityInfo); !errors.Is(err, ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput for empty type, got %v", err)
	}
}

func TestService_Recent_WindowAndFilters(t *testing.T) {
	repo := newTestRepo()
	svc := NewService(repo)

	now := time.Date(2026, 1, 15, 12, 0, 0, 0, time.UTC)

	seed := []Event{
		{ID: "old", Timestamp: now.Add(-30 * time.Hour), Source: "health_agent", Type: "workflow_completed", Severity: SeverityInfo},
		{ID: "health", Timestamp: now.Add(-2 * time.Hour), Source: "health_agent", Type: "workflow_completed", Severity: SeverityInfo},
		{ID: "safety", Timestamp: now.Add(-time.Hour), Source: "safety_agent", Type: "workflow_completed", Severity: SeverityInfo},
		{ID: "sched", Timestamp: now.Add(-10 * time.Minute), Source: "scheduler", Type: "reminder_sent", Severity: SeverityWarning},
	}
	for _, e := range seed {
		if err := repo.Create(context.Background(), e); err != nil {
			t.Fatalf("seed error: %v", err)
		}
	}

	svc.now = func() time.Time { return now }

	// Default: 24h, sin filtros. El de 30h queda fuera.
	items, err := svc.Recent(context.Background(), Filter{})
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 events within 24h, got %d", len(items))
	}
	if items[0].ID != "sched" {
		t.Fatalf("expected newest first, got %s", items[0].ID)
	}

	// Source por substring: "_agent" matchea ambos agents
	items, err = svc.Recent(context.Background(), Filter{Source: "_agent"})
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("expected 2 agent events, got %d", len(items))
	}

	// Severity exacto
	items, err = svc.Recent(context.Background(), Filter{Severity: SeverityWarning})
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	if len(items) != 1 || items[0].ID != "sched" {
		t.Fatalf("expected the warning event, got %+v", items)
	}

	// Ventana acotada: 1 hora deja fuera al health agent
	items, err = svc.Recent(context.Background(), Filter{Hours: 1})
	if err != nil {
		t.Fatalf("Recent error: %v", err)
	}
	for _, e := range items {
		if e.ID == "health" {
			t.Fatalf("expected health event outside 1h window")
		}
	}
}
