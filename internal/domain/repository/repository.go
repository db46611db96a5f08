package repository

import "context"

// Repository define el puerto genérico CRUD + búsqueda para un tipo de entidad T
// con actualizaciones parciales de tipo P. La implementación vive en infrastructure.
//
// GetByID devuelve (nil, nil) cuando el registro no existe. Update y Delete
// devuelven domain.ErrNotFound en ese caso: la vista del llamador está desfasada.
type Repository[T any, P any] interface {
	// GetAll devuelve todas las filas ordenadas por la clave canónica (sin distinguir mayúsculas).
	GetAll(ctx context.Context) ([]*T, error)
	// Count devuelve el número total de filas.
	Count(ctx context.Context) (int64, error)
	GetByID(ctx context.Context, id int64) (*T, error)
	// Create valida y persiste e, y devuelve la fila almacenada con su ID asignado.
	Create(ctx context.Context, e *T) (*T, error)
	// Update aplica solo los campos presentes en patch.
	Update(ctx context.Context, id int64, patch P) (*T, error)
	// Delete elimina la fila y devuelve su contenido previo.
	Delete(ctx context.Context, id int64) (*T, error)
	// Search filtra por subcadena (sin distinguir mayúsculas) en los campos de búsqueda
	// de la entidad, o por ID exacto si query es un entero. limit <= 0 significa sin límite.
	Search(ctx context.Context, query string, limit int) ([]*T, error)
}
