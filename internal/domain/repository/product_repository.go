package repository

import "github.com/jhoicas/saminvoice/internal/domain/entity"

// ProductRepository define el puerto de persistencia para Product (artículos).
type ProductRepository interface {
	Repository[entity.Product, entity.ProductPatch]
}
