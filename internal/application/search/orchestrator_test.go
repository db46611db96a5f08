package search

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saminvoice/internal/domain"
)

type item struct{ name string }

// fakeClock registra los temporizadores y los dispara a mano.
type fakeClock struct {
	mu     sync.Mutex
	timers []*fakeTimer
}

type fakeTimer struct {
	d       time.Duration
	f       func()
	stopped bool
	fired   bool
}

func (t *fakeTimer) Stop() bool {
	active := !t.stopped && !t.fired
	t.stopped = true
	return active
}

func (c *fakeClock) AfterFunc(d time.Duration, f func()) Timer {
	c.mu.Lock()
	defer c.mu.Unlock()
	t := &fakeTimer{d: d, f: f}
	c.timers = append(c.timers, t)
	return t
}

// elapse dispara los temporizadores activos, como si pasara el periodo de espera.
func (c *fakeClock) elapse() {
	c.mu.Lock()
	var due []*fakeTimer
	for _, t := range c.timers {
		if !t.stopped && !t.fired {
			t.fired = true
			due = append(due, t)
		}
	}
	c.mu.Unlock()
	for _, t := range due {
		t.f()
	}
}

// fakeSource registra las consultas recibidas.
type fakeSource struct {
	mu      sync.Mutex
	queries []string
	limits  []int
	search  func(ctx context.Context, q string) ([]*item, error)
	all     []*item
}

func (s *fakeSource) Search(ctx context.Context, q string, limit int) ([]*item, error) {
	s.mu.Lock()
	s.queries = append(s.queries, q)
	s.limits = append(s.limits, limit)
	fn := s.search
	s.mu.Unlock()
	if fn != nil {
		return fn(ctx, q)
	}
	return []*item{{name: q}}, nil
}

func (s *fakeSource) GetAll(ctx context.Context) ([]*item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.queries = append(s.queries, "*")
	return s.all, nil
}

func (s *fakeSource) seen() []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]string(nil), s.queries...)
}

type recorder struct {
	results [][]*item
	errs    []error
}

func (r *recorder) OnSearchResults(items []*item) { r.results = append(r.results, items) }
func (r *recorder) OnSearchError(err error)       { r.errs = append(r.errs, err) }

func (r *recorder) last() []*item {
	if len(r.results) == 0 {
		return nil
	}
	return r.results[len(r.results)-1]
}

func newTest(t *testing.T, src *fakeSource, opts Options) (*Orchestrator[item], *fakeClock) {
	t.Helper()
	clock := &fakeClock{}
	o := New[item](src, opts, WithAfterFunc(clock.AfterFunc))
	t.Cleanup(o.Close)
	return o, clock
}

func receive(t *testing.T, o *Orchestrator[item]) Result[item] {
	t.Helper()
	select {
	case res := <-o.Results():
		return res
	case <-time.After(2 * time.Second):
		t.Fatal("no llegó ningún resultado")
	}
	return Result[item]{}
}

func TestOrchestrator_EsperaAgrupaTeclas(t *testing.T) {
	src := &fakeSource{}
	o, clock := newTest(t, src, Options{})

	o.TextChanged("m")
	o.TextChanged("ma")
	o.TextChanged("mar")
	assert.Equal(t, Debouncing, o.State())
	require.Len(t, clock.timers, 3)
	assert.Equal(t, DefaultDebounce, clock.timers[2].d)

	clock.elapse()
	res := receive(t, o)
	assert.Equal(t, "mar", res.Query)
	assert.Equal(t, []string{"mar"}, src.seen(), "una sola consulta por ráfaga")
	assert.Equal(t, []int{DefaultLimit}, src.limits)
	assert.Equal(t, Dispatched, o.State())

	rec := &recorder{}
	assert.True(t, o.Deliver(res, rec))
	assert.Equal(t, Idle, o.State())
	require.Len(t, rec.last(), 1)
	assert.Equal(t, "mar", rec.last()[0].name)

	o.TextChanged("mart")
	clock.elapse()
	res = receive(t, o)
	assert.Equal(t, "mart", res.Query)
	assert.Equal(t, []string{"mar", "mart"}, src.seen())
}

func TestOrchestrator_TemporizadorReemplazadoNoDispara(t *testing.T) {
	src := &fakeSource{}
	o, clock := newTest(t, src, Options{Debounce: time.Second})

	o.TextChanged("a")
	first := clock.timers[0]
	o.TextChanged("ab")

	// El disparo tardío de un temporizador ya detenido se ignora.
	first.f()
	clock.elapse()

	res := receive(t, o)
	assert.Equal(t, "ab", res.Query)
	assert.Equal(t, []string{"ab"}, src.seen())
}

func TestOrchestrator_TextoVacioPideTodo(t *testing.T) {
	src := &fakeSource{all: []*item{{name: "Alice"}, {name: "Dupont"}}}
	o, clock := newTest(t, src, Options{})

	o.TextChanged("du")
	o.TextChanged("   ")
	assert.True(t, clock.timers[0].stopped, "el texto vacío cancela la espera")

	res := receive(t, o)
	assert.Empty(t, res.Query)
	rec := &recorder{}
	require.True(t, o.Deliver(res, rec))
	assert.Len(t, rec.last(), 2)
	assert.Equal(t, []string{"*"}, src.seen())
}

func TestOrchestrator_DescartaResultadoObsoleto(t *testing.T) {
	src := &fakeSource{}
	o, clock := newTest(t, src, Options{})

	o.TextChanged("al")
	clock.elapse()
	o.TextChanged("ali")
	clock.elapse()

	a := receive(t, o)
	b := receive(t, o)
	require.Equal(t, "al", a.Query)
	require.Equal(t, "ali", b.Query)
	assert.Less(t, a.Seq, b.Seq)

	rec := &recorder{}
	assert.True(t, o.Deliver(b, rec))
	assert.False(t, o.Deliver(a, rec), "la respuesta de una consulta anterior se descarta")

	require.Len(t, rec.results, 1)
	assert.Equal(t, "ali", rec.last()[0].name)
	assert.Equal(t, Idle, o.State())
}

func TestOrchestrator_ErrorEntregaVacioYDiagnostico(t *testing.T) {
	boom := errors.New("database is locked")
	src := &fakeSource{search: func(context.Context, string) ([]*item, error) { return nil, boom }}
	o, clock := newTest(t, src, Options{})

	o.TextChanged("x")
	clock.elapse()
	res := receive(t, o)

	rec := &recorder{}
	require.True(t, o.Deliver(res, rec))
	require.Len(t, rec.errs, 1)
	assert.ErrorIs(t, rec.errs[0], domain.ErrSearchDelivery)
	assert.ErrorIs(t, rec.errs[0], boom)
	require.Len(t, rec.results, 1)
	assert.NotNil(t, rec.results[0])
	assert.Empty(t, rec.results[0])
}

func TestOrchestrator_TiempoAgotadoEsStorageError(t *testing.T) {
	release := make(chan struct{})
	defer close(release)
	src := &fakeSource{search: func(ctx context.Context, q string) ([]*item, error) {
		if q == "lento" {
			<-release // ignora el contexto
		}
		return []*item{{name: q}}, nil
	}}
	o, clock := newTest(t, src, Options{Timeout: 20 * time.Millisecond})

	o.TextChanged("lento")
	clock.elapse()
	o.TextChanged("rapido")
	clock.elapse()

	slow := receive(t, o)
	assert.ErrorIs(t, slow.Err, domain.ErrStorage)
	assert.ErrorIs(t, slow.Err, context.DeadlineExceeded)

	fast := receive(t, o)
	require.NoError(t, fast.Err)
	assert.Equal(t, "rapido", fast.Query)
}

func TestOrchestrator_RunYClose(t *testing.T) {
	src := &fakeSource{}
	o, clock := newTest(t, src, Options{})
	rec := &recorder{}

	done := make(chan error, 1)
	go func() { done <- o.Run(context.Background(), rec) }()

	o.TextChanged("vin")
	clock.elapse()
	require.Eventually(t, func() bool { return o.State() == Idle }, 2*time.Second, 5*time.Millisecond)

	o.Close()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó tras Close")
	}
	require.Len(t, rec.results, 1)
	assert.Equal(t, "vin", rec.last()[0].name)

	o.TextChanged("ignorado")
	assert.Equal(t, Idle, o.State())
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "idle", Idle.String())
	assert.Equal(t, "debouncing", Debouncing.String())
	assert.Equal(t, "dispatched", Dispatched.String())
}
