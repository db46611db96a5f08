package terminal

import (
	"bytes"
	"context"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jhoicas/saminvoice/internal/application/search"
)

type row struct{ name string }

type memSource struct{ rows []*row }

func (s *memSource) GetAll(context.Context) ([]*row, error) { return s.rows, nil }
func (s *memSource) Count(context.Context) (int64, error)  { return int64(len(s.rows)), nil }
func (s *memSource) Search(_ context.Context, q string, limit int) ([]*row, error) {
	out := []*row{}
	for _, r := range s.rows {
		if strings.Contains(strings.ToLower(r.name), strings.ToLower(strings.TrimSpace(q))) {
			out = append(out, r)
		}
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func TestView_BuscaYSelecciona(t *testing.T) {
	src := &memSource{rows: []*row{{"Alice"}, {"Dupont"}, {"Martin"}}}
	orch := search.New[row](src, search.Options{Debounce: time.Millisecond})
	defer orch.Close()

	out := &syncBuffer{}
	v := NewView[row](orch, src, 0, func(r *row) string { return r.name }, out, zerolog.Nop())

	pr, pw := io.Pipe()
	defer pw.Close()
	done := make(chan error, 1)
	go func() { done <- v.Run(context.Background(), pr) }()

	require.Eventually(t, func() bool { return strings.Contains(out.String(), "3 / 3 resultados") },
		2*time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), "detalle: Alice")

	_, err := io.WriteString(pw, "mart\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "1 / 3 resultados") },
		2*time.Second, 5*time.Millisecond)
	assert.Contains(t, out.String(), ">  1. Martin")
	assert.Contains(t, out.String(), "detalle: Martin")

	_, err = io.WriteString(pw, "\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Count(out.String(), "3 / 3 resultados") == 2 },
		2*time.Second, 5*time.Millisecond)

	_, err = io.WriteString(pw, ":s 2\n")
	require.NoError(t, err)
	require.Eventually(t, func() bool { return strings.Contains(out.String(), "detalle: Dupont") },
		2*time.Second, 5*time.Millisecond)

	_, err = io.WriteString(pw, ":s 9\n")
	require.NoError(t, err)
	_, err = io.WriteString(pw, ":q\n")
	require.NoError(t, err)

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run no terminó con :q")
	}
	assert.Contains(t, out.String(), `selección inválida: "9"`)
}
