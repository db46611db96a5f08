package entity

import (
	"errors"
	"strings"

	"github.com/jhoicas/saminvoice/internal/domain"
)

// Customer representa un cliente de la empresa (facturación).
// Name y Address son obligatorios con al menos 3 caracteres tras recortar espacios.
type Customer struct {
	ID      int64   `db:"id"`
	Name    string  `db:"name" validate:"required,min=3"`
	Address string  `db:"address" validate:"required,min=3"`
	Email   *string `db:"email"`
}

// CustomerPatch actualización parcial: nil deja el campo sin cambios.
type CustomerPatch struct {
	Name    *string
	Address *string
	Email   *string
}

// Normalize deja la entidad en su representación canónica (espacios recortados, opcionales vacíos a nil).
func (c *Customer) Normalize() {
	c.Name = strings.TrimSpace(c.Name)
	c.Address = strings.TrimSpace(c.Address)
	c.Email = trimOptional(c.Email)
}

// Apply aplica sobre c solo los campos presentes en p.
func (c *Customer) Apply(p CustomerPatch) {
	if p.Name != nil {
		c.Name = *p.Name
	}
	if p.Address != nil {
		c.Address = *p.Address
	}
	if p.Email != nil {
		c.Email = p.Email
	}
}

// Label texto para la lista: "Nombre (email)".
func (c *Customer) Label() string {
	name := c.Name
	if name == "" {
		name = "(sin nombre)"
	}
	if c.Email != nil && *c.Email != "" {
		return name + " (" + *c.Email + ")"
	}
	return name
}

// ValidateCustomerFields valida los campos del formulario de cliente y devuelve
// el mensaje a mostrar cuando no son válidos.
func ValidateCustomerFields(name, address string) (bool, string) {
	c := Customer{Name: name, Address: address}
	c.Normalize()
	if err := Validate(&c); err != nil {
		var vErr *domain.ValidationError
		if errors.As(err, &vErr) {
			return false, vErr.Message
		}
		return false, err.Error()
	}
	return true, ""
}

func trimOptional(s *string) *string {
	if s == nil {
		return nil
	}
	t := strings.TrimSpace(*s)
	if t == "" {
		return nil
	}
	return &t
}
