package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/prinik8/AIcare/internal/domain/eventlog"
)

type eventlogRepo struct {
	mu   sync.RWMutex
	byID map[string]eventlog.Event
}

func NewEventlogRepo() eventlog.Repository {
	return &eventlogRepo{
		byID: make(map[string]eventlog.Event),
	}
}

func (r *eventlogRepo) Create(ctx context.Context, e eventlog.Event) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(e.ID) == "" {
		return errors.New("event id required")
	}
	r.byID[e.ID] = e
	return nil
}

func (r *eventlogRepo) ListSince(ctx context.Context, since time.Time, f eventlog.Filter) ([]eventlog.Event, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]eventlog.Event, 0)
	for _, e := range r.byID {
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

	sort.Slice(out, func(i, j int) bool {
		return out[i].Timestamp.After(out[j].Timestamp)
	})
	return out, nil
}
