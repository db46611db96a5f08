// Package terminal es una vista de línea de comandos sobre listview y search: cada línea leída
// es el contenido del cuadro de búsqueda.
package terminal

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strconv"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"github.com/jhoicas/saminvoice/internal/application/listview"
	"github.com/jhoicas/saminvoice/internal/application/search"
)

// Comandos reconocidos además del texto de búsqueda.
const (
	cmdQuit   = ":q"
	cmdSelect = ":s "
)

// View conecta la entrada de texto con el orquestador y pinta la lista tras cada entrega.
type View[T any] struct {
	orch  *search.Orchestrator[T]
	ctrl  *listview.Controller[T]
	label func(*T) string
	out   io.Writer

	mu      sync.Mutex
	current *T
}

// NewView crea la vista. label da el texto de cada fila.
func NewView[T any](orch *search.Orchestrator[T], src listview.Source[T], maxShown int, label func(*T) string, out io.Writer, log zerolog.Logger) *View[T] {
	v := &View[T]{orch: orch, label: label, out: out}
	v.ctrl = listview.New[T](src, v, maxShown, log)
	return v
}

// Controller devuelve el controlador de la vista.
func (v *View[T]) Controller() *listview.Controller[T] { return v.ctrl }

// Show implementa listview.Detail.
func (v *View[T]) Show(item *T) {
	v.mu.Lock()
	v.current = item
	v.mu.Unlock()
}

// Clear implementa listview.Detail.
func (v *View[T]) Clear() {
	v.mu.Lock()
	v.current = nil
	v.mu.Unlock()
}

// Run carga la lista completa y procesa la entrada hasta EOF, ":q" o la cancelación de ctx.
func (v *View[T]) Run(ctx context.Context, in io.Reader) error {
	if err := v.ctrl.Reload(ctx); err != nil {
		return err
	}
	v.render()

	lines := make(chan string)
	go func() {
		defer close(lines)
		sc := bufio.NewScanner(in)
		for sc.Scan() {
			select {
			case lines <- sc.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case line, ok := <-lines:
			if !ok || strings.TrimSpace(line) == cmdQuit {
				return nil
			}
			if rest, isSel := strings.CutPrefix(line, cmdSelect); isSel {
				v.selectRow(rest)
				continue
			}
			v.orch.TextChanged(line)
		case res, ok := <-v.orch.Results():
			if !ok {
				return nil
			}
			if v.orch.Deliver(res, v.ctrl) {
				v.render()
			}
		}
	}
}

func (v *View[T]) selectRow(arg string) {
	n, err := strconv.Atoi(strings.TrimSpace(arg))
	if err == nil {
		err = v.ctrl.Select(n - 1)
	}
	if err != nil {
		fmt.Fprintf(v.out, "selección inválida: %q\n", arg)
		return
	}
	v.render()
}

// render pinta la línea de estado, las filas (la seleccionada con ">") y el detalle.
func (v *View[T]) render() {
	var b strings.Builder
	if err := v.ctrl.Err(); err != nil {
		fmt.Fprintf(&b, "error: %v\n", err)
	}
	fmt.Fprintln(&b, v.ctrl.Status())
	sel, _ := v.ctrl.Selected()
	for i, it := range v.ctrl.Items() {
		marker := " "
		if i == sel {
			marker = ">"
		}
		fmt.Fprintf(&b, "%s %2d. %s\n", marker, i+1, v.label(it))
	}
	v.mu.Lock()
	if v.current != nil {
		fmt.Fprintf(&b, "detalle: %s\n", v.label(v.current))
	}
	v.mu.Unlock()
	_, _ = io.WriteString(v.out, b.String())
}
