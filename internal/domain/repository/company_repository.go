package repository

import (
	"context"

	"github.com/jhoicas/saminvoice/internal/domain/entity"
)

// CompanyStore define el puerto de persistencia para la empresa (valor único, sin direccionamiento por ID).
type CompanyStore interface {
	// Get devuelve la empresa guardada o (nil, nil) si nunca se guardó.
	Get(ctx context.Context) (*entity.Company, error)
	// GetOrDefault devuelve la empresa guardada o una Company vacía.
	GetOrDefault(ctx context.Context) (*entity.Company, error)
	// Save crea o actualiza la empresa en una sola transacción. El logo solo se
	// reemplaza si in.Logo no es nil.
	Save(ctx context.Context, in entity.Company) (*entity.Company, error)
	// Logo devuelve la imagen del logo o nil.
	Logo(ctx context.Context) ([]byte, error)
}
