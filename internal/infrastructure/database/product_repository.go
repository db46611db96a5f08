package database

import (
	"github.com/jhoicas/saminvoice/internal/domain/entity"
	"github.com/jhoicas/saminvoice/internal/domain/repository"
)

var _ repository.ProductRepository = (*ProductRepo)(nil)

// ProductRepo implementación de ProductRepository. Busca por referencia y nombre
// y ordena por referencia.
type ProductRepo struct {
	genericRepository[entity.Product, entity.ProductPatch]
}

// NewProductRepository construye el adaptador de persistencia para artículos.
func NewProductRepository(s *Store) *ProductRepo {
	return &ProductRepo{newGenericRepository(s.DB, table[entity.Product, entity.ProductPatch]{
		name:    "products",
		columns: []string{"reference", "name", "price", "stock", "sold"},
		search:  []string{"reference", "name"},
		sortKey: "reference",
		values: func(p *entity.Product) []any {
			return []any{p.Reference, p.Name, p.Price, p.Stock, p.Sold}
		},
		apply:     (*entity.Product).Apply,
		normalize: (*entity.Product).Normalize,
	})}
}
