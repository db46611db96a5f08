// Package search coordina la búsqueda incremental de una vista de lista: espera a que la
// escritura se asiente, ejecuta la consulta fuera del hilo interactivo y descarta
// respuestas obsoletas.
package search

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/jhoicas/saminvoice/internal/domain"
)

// Source es el repositorio consultado por el orquestador.
type Source[T any] interface {
	Search(ctx context.Context, query string, limit int) ([]*T, error)
	GetAll(ctx context.Context) ([]*T, error)
}

// Consumer recibe los resultados en el hilo interactivo.
type Consumer[T any] interface {
	OnSearchResults(items []*T)
	OnSearchError(err error)
}

// Valores por defecto del cuadro de búsqueda.
const (
	DefaultDebounce = 250 * time.Millisecond
	DefaultLimit    = 50
	DefaultTimeout  = 5 * time.Second
)

// Options parámetros de una sesión de búsqueda. Los valores no positivos toman el valor por defecto.
type Options struct {
	Debounce time.Duration
	Limit    int
	Timeout  time.Duration
}

func (o Options) withDefaults() Options {
	if o.Debounce <= 0 {
		o.Debounce = DefaultDebounce
	}
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	return o
}

// State estado observable del orquestador.
type State int

const (
	Idle State = iota
	Debouncing
	Dispatched
)

func (s State) String() string {
	switch s {
	case Idle:
		return "idle"
	case Debouncing:
		return "debouncing"
	case Dispatched:
		return "dispatched"
	}
	return "unknown"
}

// Result respuesta del carril de búsqueda, etiquetada con su número de secuencia.
type Result[T any] struct {
	Seq      uint64
	Query    string // vacío para "todos los registros"
	Items    []*T
	Err      error
	Duration time.Duration
}

// Timer es el temporizador de espera; *time.Timer lo satisface.
type Timer interface {
	Stop() bool
}

// AfterFunc programa f tras d. Por defecto envuelve time.AfterFunc.
type AfterFunc func(d time.Duration, f func()) Timer

func realAfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

type settings struct {
	afterFunc AfterFunc
	log       zerolog.Logger
}

// Option configura el orquestador.
type Option func(*settings)

// WithAfterFunc reemplaza el reloj (tests).
func WithAfterFunc(f AfterFunc) Option {
	return func(s *settings) { s.afterFunc = f }
}

// WithLogger asigna el logger.
func WithLogger(l zerolog.Logger) Option {
	return func(s *settings) { s.log = l }
}

type request struct {
	seq   uint64
	query string
	all   bool
}

// Orchestrator sesión de búsqueda de una vista. TextChanged nunca bloquea en E/S: las
// consultas se ejecutan en un único carril FIFO y los resultados se publican en Results().
type Orchestrator[T any] struct {
	src       Source[T]
	opts      Options
	afterFunc AfterFunc
	log       zerolog.Logger

	mu        sync.Mutex
	timer     Timer
	gen       uint64 // invalida disparos de temporizadores ya reemplazados
	pending   string
	seq       uint64 // última secuencia despachada
	delivered uint64
	queue     []request
	closed    bool

	wake    chan struct{}
	results chan Result[T]
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	once    sync.Once
}

// New crea la sesión y arranca su carril.
func New[T any](src Source[T], opts Options, options ...Option) *Orchestrator[T] {
	s := settings{afterFunc: realAfterFunc, log: zerolog.Nop()}
	for _, fn := range options {
		fn(&s)
	}
	ctx, cancel := context.WithCancel(context.Background())
	o := &Orchestrator[T]{
		src:       src,
		opts:      opts.withDefaults(),
		afterFunc: s.afterFunc,
		log:       s.log.With().Str("search_session", uuid.NewString()).Logger(),
		wake:      make(chan struct{}, 1),
		results:   make(chan Result[T], 16),
		ctx:       ctx,
		cancel:    cancel,
	}
	o.wg.Add(1)
	go o.lane()
	return o
}

// TextChanged recibe el contenido actual del cuadro de búsqueda. Un texto vacío cancela la
// espera y pide todos los registros; cualquier otro reinicia la espera.
func (o *Orchestrator[T]) TextChanged(text string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return
	}
	o.stopTimerLocked()

	if strings.TrimSpace(text) == "" {
		o.pending = ""
		o.enqueueLocked(request{all: true})
		return
	}
	o.pending = text
	gen := o.gen
	o.timer = o.afterFunc(o.opts.Debounce, func() { o.fire(gen) })
}

func (o *Orchestrator[T]) stopTimerLocked() {
	if o.timer != nil {
		o.timer.Stop()
		o.timer = nil
	}
	o.gen++
}

func (o *Orchestrator[T]) fire(gen uint64) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed || gen != o.gen {
		return
	}
	o.timer = nil
	o.enqueueLocked(request{query: o.pending})
}

func (o *Orchestrator[T]) enqueueLocked(req request) {
	o.seq++
	req.seq = o.seq
	o.queue = append(o.queue, req)
	o.log.Debug().Uint64("seq", req.seq).Str("query", req.query).Bool("all", req.all).Msg("consulta despachada")
	select {
	case o.wake <- struct{}{}:
	default:
	}
}

func (o *Orchestrator[T]) next() (request, bool) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if len(o.queue) == 0 {
		return request{}, false
	}
	req := o.queue[0]
	o.queue = o.queue[1:]
	return req, true
}

// lane procesa las solicitudes de una en una en orden de llegada.
func (o *Orchestrator[T]) lane() {
	defer o.wg.Done()
	for {
		select {
		case <-o.ctx.Done():
			return
		case <-o.wake:
		}
		for {
			req, ok := o.next()
			if !ok {
				break
			}
			res := o.execute(req)
			select {
			case o.results <- res:
			case <-o.ctx.Done():
				return
			}
		}
	}
}

type outcome[T any] struct {
	items []*T
	err   error
}

// execute corre la consulta con Options.Timeout. Si el almacén no responde a tiempo el
// carril informa StorageError y sigue, aunque la llamada no haya vuelto.
func (o *Orchestrator[T]) execute(req request) Result[T] {
	start := time.Now()
	ctx, cancel := context.WithTimeout(o.ctx, o.opts.Timeout)
	defer cancel()

	ch := make(chan outcome[T], 1)
	go func() {
		var out outcome[T]
		if req.all {
			out.items, out.err = o.src.GetAll(ctx)
		} else {
			out.items, out.err = o.src.Search(ctx, req.query, o.opts.Limit)
		}
		ch <- out
	}()

	res := Result[T]{Seq: req.seq, Query: req.query}
	select {
	case out := <-ch:
		res.Items, res.Err = out.items, out.err
	case <-ctx.Done():
		res.Err = &domain.StorageError{Op: "search", Err: ctx.Err()}
	}
	res.Duration = time.Since(start)

	ev := o.log.Debug()
	if res.Err != nil {
		ev = o.log.Warn().Err(res.Err)
	}
	ev.Uint64("seq", res.Seq).Str("query", res.Query).Int("count", len(res.Items)).
		Dur("duration", res.Duration).Msg("consulta resuelta")
	return res
}

// Results cola de un solo consumidor con las respuestas del carril, en orden de despacho.
func (o *Orchestrator[T]) Results() <-chan Result[T] {
	return o.results
}

// Deliver entrega res al consumidor si es la respuesta de la última consulta despachada.
// Debe llamarse desde el hilo interactivo. Devuelve false si res era obsoleta.
// Un error se informa con OnSearchError seguido de un conjunto vacío.
func (o *Orchestrator[T]) Deliver(res Result[T], c Consumer[T]) bool {
	o.mu.Lock()
	if res.Seq != o.seq {
		latest := o.seq
		o.mu.Unlock()
		o.log.Debug().Uint64("seq", res.Seq).Uint64("latest", latest).Msg("resultado obsoleto descartado")
		return false
	}
	o.delivered = res.Seq
	o.mu.Unlock()

	if res.Err != nil {
		c.OnSearchError(&domain.SearchError{Query: res.Query, Err: res.Err})
		c.OnSearchResults([]*T{})
		return true
	}
	items := res.Items
	if items == nil {
		items = []*T{}
	}
	c.OnSearchResults(items)
	return true
}

// Run entrega resultados a c hasta que ctx termine o se cierre el orquestador.
func (o *Orchestrator[T]) Run(ctx context.Context, c Consumer[T]) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case res, ok := <-o.results:
			if !ok {
				return nil
			}
			o.Deliver(res, c)
		}
	}
}

// State informa si hay una espera en curso o una consulta sin entregar.
func (o *Orchestrator[T]) State() State {
	o.mu.Lock()
	defer o.mu.Unlock()
	switch {
	case o.timer != nil:
		return Debouncing
	case o.seq != o.delivered:
		return Dispatched
	}
	return Idle
}

// Close detiene el temporizador y el carril. Las consultas pendientes se abandonan.
func (o *Orchestrator[T]) Close() {
	o.once.Do(func() {
		o.mu.Lock()
		o.closed = true
		o.stopTimerLocked()
		o.queue = nil
		o.mu.Unlock()

		o.cancel()
		o.wg.Wait()
		close(o.results)
	})
}
