package eventlog

import (
	"context"
	"time"
)

type Repository interface {
	Create(ctx context.Context, e Event) error
	// ListSince devuelve eventos con timestamp >= since, desc.
	ListSince(ctx context.Context, since time.Time, f Filter) ([]Event, error)
}
