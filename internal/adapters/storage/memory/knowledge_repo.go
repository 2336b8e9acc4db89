package memory

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"

	"github.com/prinik8/AIcare/internal/domain/knowledge"
)

type knowledgeRepo struct {
	mu   sync.RWMutex
	byID map[string]knowledge.Note
}

func NewKnowledgeRepo() knowledge.Repository {
	return &knowledgeRepo{
		byID: make(map[string]knowledge.Note),
	}
}

func (r *knowledgeRepo) Create(ctx context.Context, n knowledge.Note) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if strings.TrimSpace(n.ID) == "" {
		return errors.New("note id required")
	}
	r.byID[n.ID] = n
	return nil
}

func (r *knowledgeRepo) List(ctx context.Context) ([]knowledge.Note, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]knowledge.Note, 0, len(r.byID))
	for _, n := range r.byID {
		out = append(out, n)
	}

	sort.Slice(out, func(i, j int) bool {
		return out[i].CreatedAt.Before(out[j].CreatedAt)
	})
	return out, nil
}

func (r *knowledgeRepo) Count(ctx context.Context) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byID), nil
}
