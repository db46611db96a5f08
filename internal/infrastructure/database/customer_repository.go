package database

import (
	"github.com/jhoicas/saminvoice/internal/domain/entity"
	"github.com/jhoicas/saminvoice/internal/domain/repository"
)

var _ repository.CustomerRepository = (*CustomerRepo)(nil)

// CustomerRepo implementación de CustomerRepository. Busca por nombre, email y dirección
// y ordena por nombre.
type CustomerRepo struct {
	genericRepository[entity.Customer, entity.CustomerPatch]
}

// NewCustomerRepository construye el adaptador de persistencia para clientes.
func NewCustomerRepository(s *Store) *CustomerRepo {
	return &CustomerRepo{newGenericRepository(s.DB, table[entity.Customer, entity.CustomerPatch]{
		name:    "customers",
		columns: []string{"name", "address", "email"},
		search:  []string{"name", "email", "address"},
		sortKey: "name",
		values: func(c *entity.Customer) []any {
			return []any{c.Name, c.Address, c.Email}
		},
		apply:     (*entity.Customer).Apply,
		normalize: (*entity.Customer).Normalize,
	})}
}
