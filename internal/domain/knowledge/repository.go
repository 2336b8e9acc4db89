package knowledge

import "context"

type Repository interface {
	Create(ctx context.Context, n Note) error
	// List devuelve todas las notas; el ranking se hace en memoria.
	List(ctx context.Context) ([]Note, error)
	Count(ctx context.Context) (int, error)
}
