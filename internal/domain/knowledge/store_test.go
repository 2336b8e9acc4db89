package knowledge

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// fakeEmbedder produce vectores deterministas: un eje por keyword.
type fakeEmbedder struct {
	keywords []string
}

func (f *fakeEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	out := make([]float32, len(f.keywords))
	lower := strings.ToLower(text)
	for i, kw := range f.keywords {
		if strings.Contains(lower, kw) {
			out[i] = 1
		}
	}
	return out, nil
}

func (f *fakeEmbedder) Dimensions() int { return len(f.keywords) }

type failingEmbedder struct{}

func (failingEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	return nil, errors.New("embedder down")
}

func (failingEmbedder) Dimensions() int { return 0 }

type memRepo struct {
	notes []Note
}

func (r *memRepo) Create(ctx context.Context, n Note) error {
	r.notes = append(r.notes, n)
	return nil
}

func (r *memRepo) List(ctx context.Context) ([]Note, error) {
	return append([]Note(nil), r.notes...), nil
}

func (r *memRepo) Count(ctx context.Context) (int, error) {
	return len(r.notes), nil
}

func TestStore_Add_EmbedsAndStores(t *testing.T) {
	repo := &memRepo{}
	store := NewStore(repo, &fakeEmbedder{keywords: []string{"hypertension", "fall"}})

	n, err := store.Add(context.Background(), "Hypertension management for elderly patients", map[string]string{"topic": "hypertension"})
	require.NoError(t, err)
	require.NotEmpty(t, n.ID)
	require.Equal(t, []float32{1, 0}, n.Embedding)

	count, err := store.Count(context.Background())
	require.NoError(t, err)
	require.Equal(t, 1, count)
}

func TestStore_Add_Validation(t *testing.T) {
	store := NewStore(&memRepo{}, &fakeEmbedder{keywords: []string{"x"}})

	_, err := store.Add(context.Background(), "   ", nil)
	require.ErrorIs(t, err, ErrInvalidInput)

	noEmbedder := NewStore(&memRepo{}, nil)
	_, err = noEmbedder.Add(context.Background(), "content", nil)
	require.ErrorIs(t, err, ErrNoEmbedder)
}

func TestStore_Add_EmbedderFailurePropagates(t *testing.T) {
	store := NewStore(&memRepo{}, failingEmbedder{})

	_, err := store.Add(context.Background(), "content", nil)
	require.Error(t, err)
}

func TestStore_Search_RanksByCosine(t *testing.T) {
	repo := &memRepo{}
	store := NewStore(repo, &fakeEmbedder{keywords: []string{"hypertension", "fall", "glucose"}})

	for _, content := range []string{
		"Managing hypertension in elderly patients",
		"Fall prevention at home",
		"Glucose monitoring basics",
		"Hypertension and fall risk interact",
	} {
		_, err := store.Add(context.Background(), content, nil)
		require.NoError(t, err)
	}

	results, err := store.Search(context.Background(), "hypertension", 2)
	require.NoError(t, err)
	require.Len(t, results, 2)

	// La nota solo-hypertension puntúa más alto que la mixta
	require.Contains(t, results[0].Note.Content, "Managing hypertension")
	require.Greater(t, results[0].Score, results[1].Score)
}

func TestStore_Search_SkipsDimensionMismatch(t *testing.T) {
	repo := &memRepo{}

	// Nota vieja con otra dimensionalidad de embedding
	repo.notes = append(repo.notes, Note{ID: "legacy", Content: "legacy note", Embedding: []float32{1, 0, 0, 0, 0}})

	store := NewStore(repo, &fakeEmbedder{keywords: []string{"fall", "glucose"}})
	_, err := store.Add(context.Background(), "Fall prevention", nil)
	require.NoError(t, err)

	results, err := store.Search(context.Background(), "fall", 5)
	require.NoError(t, err)
	require.Len(t, results, 1)
	require.NotEqual(t, "legacy", results[0].Note.ID)
}

func TestStore_Search_DefaultK(t *testing.T) {
	repo := &memRepo{}
	store := NewStore(repo, &fakeEmbedder{keywords: []string{"care"}})

	for i := 0; i < 5; i++ {
		_, err := store.Add(context.Background(), "care note", nil)
		require.NoError(t, err)
	}

	results, err := store.Search(context.Background(), "care", 0)
	require.NoError(t, err)
	require.Len(t, results, 3)
}

func TestCosine(t *testing.T) {
	require.InDelta(t, 1.0, cosine([]float32{1, 0}, []float32{1, 0}), 1e-9)
	require.InDelta(t, 0.0, cosine([]float32{1, 0}, []float32{0, 1}), 1e-9)
	// Vector cero no divide por cero
	require.Equal(t, 0.0, cosine([]float32{0, 0}, []float32{1, 0}))
}
