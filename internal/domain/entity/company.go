package entity

import "strings"

// Company datos de la empresa emisora de facturas. Registro único: solo la primera fila tiene sentido.
type Company struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name" validate:"required"`
	Address *string `db:"address"`
	Email   *string `db:"email"`
	Phone   *string `db:"phone"`
	Logo    []byte  `db:"logo"` // imagen del logo, nil si no hay
}

// Normalize deja la entidad en su representación canónica.
func (c *Company) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = trimOptional(c.Address)
	c.Email = trimOptional(c.Email)
	c.Phone = trimOptional(c.Phone)
}
