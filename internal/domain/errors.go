package domain

import (
	"errors"
	"fmt"
)

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound       = errors.New("recurso no encontrado")
	ErrValidation     = errors.New("datos inválidos")
	ErrStorage        = errors.New("fallo del almacenamiento")
	ErrSearchDelivery = errors.New("la búsqueda falló")
	ErrInvalidInput   = errors.New("entrada inválida")
)

// ValidationError describe la violación de una invariante de entidad.
// Es recuperable: el llamador debe volver a pedir los datos, no reintentar.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return e.Field + ": " + e.Message
}

// Is permite errors.Is(err, ErrValidation).
func (e *ValidationError) Is(target error) bool {
	return target == ErrValidation
}

// StorageError envuelve un fallo inesperado del almacén con la operación que lo produjo.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("%s: %s: %v", ErrStorage.Error(), e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// Is permite errors.Is(err, ErrStorage).
func (e *StorageError) Is(target error) bool {
	return target == ErrStorage
}

// SearchError lo entrega el orquestador de búsqueda cuando la consulta en segundo plano falla.
type SearchError struct {
	Query string
	Err   error
}

func (e *SearchError) Error() string {
	return fmt.Sprintf("%s (%q): %v", ErrSearchDelivery.Error(), e.Query, e.Err)
}

func (e *SearchError) Unwrap() error { return e.Err }

func (e *SearchError) Is(target error) bool {
	return target == ErrSearchDelivery
}
