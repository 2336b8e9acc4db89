package knowledge

import (
	"context"
	"errors"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/prinik8/AIcare/internal/ports/llm"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrNoEmbedder   = errors.New("no embedding engine configured")
)

// Store indexa notas por embedding y las recupera por similitud coseno.
type Store struct {
	repo     Repository
	embedder llm.Embedder
	now      func() time.Time
}

func NewStore(repo Repository, embedder llm.Embedder) *Store {
	return &Store{
		repo:     repo,
		embedder: embedder,
		now:      time.Now,
	}
}

func (s *Store) Add(ctx context.Context, content string, metadata map[string]string) (Note, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return Note{}, ErrInvalidInput
	}
	if s.embedder == nil {
		return Note{}, ErrNoEmbedder
	}

	emb, err := s.embedder.Embed(ctx, content)
	if err != nil {
		return Note{}, err
	}

	n := Note{
		ID:        uuid.NewString(),
		Content:   content,
		Metadata:  metadata,
		Embedding: emb,
		CreatedAt: s.now(),
	}

	if err := s.repo.Create(ctx, n); err != nil {
		return Note{}, err
	}
	return n, nil
}

// Search rankea todas las notas contra el query embebido. Notas con
// dimensión distinta (modelo de embedding cambiado) se saltean.
func (s *Store) Search(ctx context.Context, query string, k int) ([]ScoredNote, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrInvalidInput
	}
	if s.embedder == nil {
		return nil, ErrNoEmbedder
	}
	if k <= 0 {
		k = 3
	}

	qemb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, err
	}

	notes, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	scored := make([]ScoredNote, 0, len(notes))
	for _, n := range notes {
		if len(n.Embedding) != len(qemb) {
			continue
		}
		scored = append(scored, ScoredNote{Note: n, Score: cosine(qemb, n.Embedding)})
	}

	sort.Slice(scored, func(i, j int) bool {
		return scored[i].Score > scored[j].Score
	})

	if len(scored) > k {
		scored = scored[:k]
	}
	return scored, nil
}

func (s *Store) Count(ctx context.Context) (int, error) {
	return s.repo.Count(ctx)
}

func cosine(a, b []float32) float64 {
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
