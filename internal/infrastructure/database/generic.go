package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/jhoicas/saminvoice/internal/domain"
	"github.com/jhoicas/saminvoice/internal/domain/entity"
)

// table describe una entidad para el repositorio genérico: tabla, columnas editables,
// columnas de búsqueda y clave de orden canónica.
type table[T any, P any] struct {
	name    string
	columns []string // sin id, en el orden de values
	search  []string
	sortKey string

	values    func(*T) []any
	apply     func(*T, P)
	normalize func(*T)
}

// genericRepository implementa repository.Repository[T, P] sobre sqlx para cualquier descriptor.
type genericRepository[T any, P any] struct {
	db *sqlx.DB
	t  table[T, P]
}

func newGenericRepository[T any, P any](db *sqlx.DB, t table[T, P]) genericRepository[T, P] {
	return genericRepository[T, P]{db: db, t: t}
}

// queryParams partes variables de un SELECT.
type queryParams struct {
	Where   string
	Binds   []any
	OrderBy string
	Limit   int
}

func (r genericRepository[T, P]) selectQuery(qp queryParams) (string, []any) {
	var buf strings.Builder
	buf.WriteString("SELECT id, ")
	buf.WriteString(strings.Join(r.t.columns, ", "))
	buf.WriteString(" FROM ")
	buf.WriteString(r.t.name)
	if qp.Where != "" {
		buf.WriteString(" WHERE ")
		buf.WriteString(qp.Where)
	}
	if qp.OrderBy != "" {
		buf.WriteString(" ORDER BY ")
		buf.WriteString(qp.OrderBy)
	}
	binds := qp.Binds
	if qp.Limit > 0 {
		buf.WriteString(" LIMIT ?")
		binds = append(binds, qp.Limit)
	}
	return r.db.Rebind(buf.String()), binds
}

func (r genericRepository[T, P]) orderBy() string {
	return "LOWER(" + r.t.sortKey + "), id"
}

func (r genericRepository[T, P]) list(ctx context.Context, op string, qp queryParams) ([]*T, error) {
	query, binds := r.selectQuery(qp)
	out := make([]*T, 0)
	if err := sqlx.SelectContext(ctx, r.db, &out, query, binds...); err != nil {
		return nil, classify(op+" "+r.t.name, err)
	}
	return out, nil
}

// GetAll devuelve todas las filas ordenadas por la clave canónica sin distinguir mayúsculas.
func (r genericRepository[T, P]) GetAll(ctx context.Context) ([]*T, error) {
	return r.list(ctx, "get all", queryParams{OrderBy: r.orderBy()})
}

func (r genericRepository[T, P]) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.GetContext(ctx, &n, "SELECT COUNT(*) FROM "+r.t.name); err != nil {
		return 0, classify("count "+r.t.name, err)
	}
	return n, nil
}

// GetByID devuelve (nil, nil) si no existe.
func (r genericRepository[T, P]) GetByID(ctx context.Context, id int64) (*T, error) {
	e, err := r.get(ctx, r.db, id)
	if err != nil {
		return nil, classify("get "+r.t.name, err)
	}
	return e, nil
}

func (r genericRepository[T, P]) get(ctx context.Context, q sqlx.QueryerContext, id int64) (*T, error) {
	query, binds := r.selectQuery(queryParams{Where: "id = ?", Binds: []any{id}})
	var e T
	if err := sqlx.GetContext(ctx, q, &e, query, binds...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &e, nil
}

// Search aplica el filtro de subcadena sin distinguir mayúsculas sobre las columnas de
// búsqueda y, si la consulta es un entero, la coincidencia exacta por id.
func (r genericRepository[T, P]) Search(ctx context.Context, query string, limit int) ([]*T, error) {
	query = strings.TrimSpace(query)
	qp := queryParams{OrderBy: r.orderBy(), Limit: limit}
	if query == "" {
		return r.list(ctx, "search", qp)
	}

	// Columna y patrón se pliegan con la misma LOWER del motor.
	pattern := "%" + likeEscaper.Replace(query) + "%"
	conds := make([]string, 0, len(r.t.search)+1)
	for _, col := range r.t.search {
		conds = append(conds, "LOWER("+col+`) LIKE LOWER(?) ESCAPE '\'`)
		qp.Binds = append(qp.Binds, pattern)
	}
	if id, err := strconv.ParseInt(query, 10, 64); err == nil {
		conds = append(conds, "id = ?")
		qp.Binds = append(qp.Binds, id)
	}
	qp.Where = strings.Join(conds, " OR ")
	return r.list(ctx, "search", qp)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

func (r genericRepository[T, P]) prepare(e *T) error {
	if r.t.normalize != nil {
		r.t.normalize(e)
	}
	return entity.Validate(e)
}

func (r genericRepository[T, P]) Create(ctx context.Context, e *T) (*T, error) {
	if e == nil {
		return nil, fmt.Errorf("create %s: %w", r.t.name, domain.ErrInvalidInput)
	}
	in := *e
	if err := r.prepare(&in); err != nil {
		return nil, err
	}

	placeholders := strings.TrimSuffix(strings.Repeat("?, ", len(r.t.columns)), ", ")
	insert := r.db.Rebind(fmt.Sprintf("INSERT INTO %s (%s) VALUES (%s) RETURNING id",
		r.t.name, strings.Join(r.t.columns, ", "), placeholders))

	var out *T
	err := withTx(ctx, r.db, "create "+r.t.name, func(tx *sqlx.Tx) error {
		var id int64
		if err := tx.QueryRowxContext(ctx, insert, r.t.values(&in)...).Scan(&id); err != nil {
			return err
		}
		got, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		out = got
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Update aplica patch sobre la fila id. Devuelve domain.ErrNotFound si no existe.
func (r genericRepository[T, P]) Update(ctx context.Context, id int64, patch P) (*T, error) {
	sets := make([]string, len(r.t.columns))
	for i, col := range r.t.columns {
		sets[i] = col + " = ?"
	}
	update := r.db.Rebind(fmt.Sprintf("UPDATE %s SET %s WHERE id = ?", r.t.name, strings.Join(sets, ", ")))

	var out *T
	err := withTx(ctx, r.db, "update "+r.t.name, func(tx *sqlx.Tx) error {
		cur, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("%s %d: %w", r.t.name, id, domain.ErrNotFound)
		}
		r.t.apply(cur, patch)
		if err := r.prepare(cur); err != nil {
			return err
		}
		args := append(r.t.values(cur), id)
		if _, err := tx.ExecContext(ctx, update, args...); err != nil {
			return err
		}
		out, err = r.get(ctx, tx, id)
		return err
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// Delete borra la fila id y devuelve su contenido previo. Devuelve domain.ErrNotFound si no existe.
func (r genericRepository[T, P]) Delete(ctx context.Context, id int64) (*T, error) {
	del := r.db.Rebind("DELETE FROM " + r.t.name + " WHERE id = ?")

	var out *T
	err := withTx(ctx, r.db, "delete "+r.t.name, func(tx *sqlx.Tx) error {
		cur, err := r.get(ctx, tx, id)
		if err != nil {
			return err
		}
		if cur == nil {
			return fmt.Errorf("%s %d: %w", r.t.name, id, domain.ErrNotFound)
		}
		if _, err := tx.ExecContext(ctx, del, id); err != nil {
			return err
		}
		out = cur
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
