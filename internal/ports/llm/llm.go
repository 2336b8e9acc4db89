package llm

import "context"

// Generator produce texto a partir de un prompt (backend local tipo Ollama).
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder produce vectores para búsqueda semántica.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
	// Dimensions es la dimensionalidad esperada (0 = desconocida).
	Dimensions() int
}

// HealthChecker es opcional: permite verificar disponibilidad del runtime
// antes de correr un workflow completo.
type HealthChecker interface {
	Healthy(ctx context.Context) error
}
