package knowledge

import "time"

// Note es un documento del corpus de cuidado (protocolos, guías,
// notas del caregiver) con su embedding precalculado.
type Note struct {
	ID        string
	Content   string
	Metadata  map[string]string
	Embedding []float32
	CreatedAt time.Time
}

// ScoredNote acompaña cada resultado de Search con su similitud coseno.
type ScoredNote struct {
	Note  Note
	Score float64
}
