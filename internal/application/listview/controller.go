// Package listview mantiene el estado de una vista lista/detalle sin depender de ningún toolkit:
// recibe resultados del orquestador de búsqueda y decide qué se muestra y qué está seleccionado.
package listview

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/saminvoice/internal/application/search"
	"github.com/jhoicas/saminvoice/internal/domain"
)

// Source lo que el controlador necesita del repositorio.
type Source[T any] interface {
	GetAll(ctx context.Context) ([]*T, error)
	Count(ctx context.Context) (int64, error)
}

// Detail muestra el elemento seleccionado.
type Detail[T any] interface {
	Show(item *T)
	Clear()
}

// DefaultMaxShown máximo de filas en la lista.
const DefaultMaxShown = 50

var _ search.Consumer[struct{}] = (*Controller[struct{}])(nil)

// Controller estado de la vista. Es seguro para uso concurrente, aunque los métodos
// están pensados para el hilo interactivo.
type Controller[T any] struct {
	src      Source[T]
	detail   Detail[T]
	maxShown int
	log      zerolog.Logger

	mu       sync.Mutex
	items    []*T
	selected int
	total    int64
	status   string
	lastErr  error
	errFresh bool // lastErr acompaña al próximo OnSearchResults
}

// New crea el controlador. maxShown <= 0 usa DefaultMaxShown.
func New[T any](src Source[T], detail Detail[T], maxShown int, log zerolog.Logger) *Controller[T] {
	if maxShown <= 0 {
		maxShown = DefaultMaxShown
	}
	return &Controller[T]{src: src, detail: detail, maxShown: maxShown, log: log, selected: -1}
}

// OnSearchResults repuebla la lista y selecciona el primer elemento.
func (c *Controller[T]) OnSearchResults(items []*T) {
	c.mu.Lock()
	if len(items) > c.maxShown {
		items = items[:c.maxShown]
	}
	c.items = items
	c.selected = -1
	var first *T
	if len(items) > 0 {
		c.selected = 0
		first = items[0]
	}
	c.status = fmt.Sprintf("%d / %d resultados", len(items), c.total)
	if !c.errFresh {
		c.lastErr = nil
	}
	c.errFresh = false
	c.mu.Unlock()

	if first != nil {
		c.detail.Show(first)
	} else {
		c.detail.Clear()
	}
}

// OnSearchError guarda el error para mostrarlo; la lista se vacía con el OnSearchResults siguiente.
func (c *Controller[T]) OnSearchError(err error) {
	c.log.Warn().Err(err).Msg("búsqueda fallida")
	c.mu.Lock()
	c.lastErr = err
	c.errFresh = true
	c.mu.Unlock()
}

// Reload recarga la lista completa de forma síncrona (arranque y tras una mutación).
func (c *Controller[T]) Reload(ctx context.Context) error {
	total, err := c.src.Count(ctx)
	if err != nil {
		return c.fail(err)
	}
	items, err := c.src.GetAll(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.mu.Lock()
	c.total = total
	c.lastErr = nil
	c.mu.Unlock()
	c.OnSearchResults(items)
	return nil
}

// Mutate ejecuta una creación, actualización o borrado y recarga la vista. Un ErrNotFound
// indica que la vista estaba desactualizada: también recarga y devuelve el error.
func (c *Controller[T]) Mutate(ctx context.Context, op func(ctx context.Context) error) error {
	err := op(ctx)
	switch {
	case err == nil, errors.Is(err, domain.ErrNotFound):
		if rErr := c.Reload(ctx); rErr != nil {
			return errors.Join(err, rErr)
		}
		return err
	default:
		return c.fail(err)
	}
}

// RefreshTotal actualiza el total mostrado en la línea de estado.
func (c *Controller[T]) RefreshTotal(ctx context.Context) error {
	total, err := c.src.Count(ctx)
	if err != nil {
		return c.fail(err)
	}
	c.mu.Lock()
	c.total = total
	c.status = fmt.Sprintf("%d / %d resultados", len(c.items), total)
	c.mu.Unlock()
	return nil
}

// Select cambia la selección y muestra ese elemento.
func (c *Controller[T]) Select(i int) error {
	c.mu.Lock()
	if i < 0 || i >= len(c.items) {
		c.mu.Unlock()
		return fmt.Errorf("seleccionar %d: %w", i, domain.ErrInvalidInput)
	}
	c.selected = i
	it := c.items[i]
	c.mu.Unlock()
	c.detail.Show(it)
	return nil
}

func (c *Controller[T]) fail(err error) error {
	c.mu.Lock()
	c.lastErr = err
	c.mu.Unlock()
	return err
}

// Items devuelve una copia de la lista mostrada.
func (c *Controller[T]) Items() []*T {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*T(nil), c.items...)
}

// Selected devuelve el índice y el elemento seleccionado, o (-1, nil).
func (c *Controller[T]) Selected() (int, *T) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.selected < 0 {
		return -1, nil
	}
	return c.selected, c.items[c.selected]
}

// Status línea de estado "<mostrados> / <total> resultados".
func (c *Controller[T]) Status() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.status
}

// Err último error de búsqueda o de almacén, nil tras una recarga correcta.
func (c *Controller[T]) Err() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastErr
}
