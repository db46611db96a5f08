package entity

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/jhoicas/saminvoice/internal/domain"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// Los errores usan el nombre de columna (tag db) para que coincidan con el almacén.
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("db"), ",")
		if name == "" || name == "-" {
			return f.Name
		}
		return name
	})
	v.RegisterStructValidation(productStructLevel, Product{})
	return v
}

func productStructLevel(sl validator.StructLevel) {
	p := sl.Current().Interface().(Product)
	if p.Price.Valid && p.Price.Decimal.IsNegative() {
		sl.ReportError(p.Price, "price", "Price", "nonnegative", "")
	}
}

var fieldLabels = map[string]string{
	"name":      "nombre",
	"address":   "dirección",
	"reference": "referencia",
	"price":     "precio",
}

// Validate comprueba las invariantes de una entidad ya normalizada.
// Devuelve *domain.ValidationError con el primer campo inválido.
func Validate(e any) error {
	err := validate.Struct(e)
	if err == nil {
		return nil
	}
	var vErrs validator.ValidationErrors
	if !errors.As(err, &vErrs) || len(vErrs) == 0 {
		return fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}
	fe := vErrs[0]
	return &domain.ValidationError{Field: fe.Field(), Message: message(fe)}
}

func message(fe validator.FieldError) string {
	label, ok := fieldLabels[fe.Field()]
	if !ok {
		label = fe.Field()
	}
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("el campo %s es obligatorio", label)
	case "min":
		return fmt.Sprintf("el campo %s debe tener al menos %s caracteres", label, fe.Param())
	case "nonnegative":
		return fmt.Sprintf("el campo %s no puede ser negativo", label)
	default:
		return fmt.Sprintf("el campo %s no es válido (%s)", label, fe.Tag())
	}
}
