package entity

import (
	"strings"

	"github.com/shopspring/decimal"
)

// Product representa un artículo del catálogo (vino, referencia de bodega).
// Reference es obligatoria; el resto de campos son opcionales.
type Product struct {
	ID        int64               `db:"id"`
	Reference string              `db:"reference" validate:"required"`
	Name      *string             `db:"name"`
	Price     decimal.NullDecimal `db:"price" validate:"-"` // precio unitario, >= 0
	Stock     *int64              `db:"stock"`
	Sold      *int64              `db:"sold"`
}

// ProductPatch actualización parcial: nil deja el campo sin cambios.
type ProductPatch struct {
	Reference *string
	Name      *string
	Price     *decimal.Decimal
	Stock     *int64
	Sold      *int64
}

// Normalize deja la entidad en su representación canónica.
func (p *Product) Normalize() {
	p.Reference = strings.TrimSpace(p.Reference)
	p.Name = trimOptional(p.Name)
}

// Apply aplica sobre p solo los campos presentes en patch.
func (p *Product) Apply(patch ProductPatch) {
	if patch.Reference != nil {
		p.Reference = *patch.Reference
	}
	if patch.Name != nil {
		p.Name = patch.Name
	}
	if patch.Price != nil {
		p.Price = decimal.NewNullDecimal(*patch.Price)
	}
	if patch.Stock != nil {
		p.Stock = patch.Stock
	}
	if patch.Sold != nil {
		p.Sold = patch.Sold
	}
}

// Label texto para la lista: "REF - Nombre".
func (p *Product) Label() string {
	if p.Name != nil && *p.Name != "" {
		return p.Reference + " - " + *p.Name
	}
	return p.Reference
}
