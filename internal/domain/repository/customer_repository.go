package repository

import "github.com/jhoicas/saminvoice/internal/domain/entity"

// CustomerRepository define el puerto de persistencia para Customer.
type CustomerRepository interface {
	Repository[entity.Customer, entity.CustomerPatch]
}
