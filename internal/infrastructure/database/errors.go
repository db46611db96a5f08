package database

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jmoiron/sqlx"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/jhoicas/saminvoice/internal/domain"
)

// Las restricciones CHECK siguen el patrón ck_<tabla>_<campo>_<regla>.
var reConstraint = regexp.MustCompile(`ck_[a-z]+_([a-z]+)_[a-z]+`)

// classify convierte un error del driver en un error de dominio: las violaciones de
// CHECK / NOT NULL son ValidationError; el resto, StorageError.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, domain.ErrValidation) || errors.Is(err, domain.ErrNotFound) || errors.Is(err, domain.ErrStorage) {
		return err
	}
	if isTimeout(err) {
		return &domain.StorageError{Op: op + " (cancelada)", Err: err}
	}
	if field, ok := constraintViolation(err); ok {
		return &domain.ValidationError{Field: field, Message: "el campo " + field + " no cumple las restricciones del almacén"}
	}
	return &domain.StorageError{Op: op, Err: err}
}

// constraintViolation informa si err es una violación de CHECK (23514 / SQLITE_CONSTRAINT_CHECK)
// o NOT NULL (23502 / SQLITE_CONSTRAINT_NOTNULL) y el campo afectado si se conoce.
func constraintViolation(err error) (string, bool) {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case "23514": // check_violation
			return fieldFromConstraint(pgErr.ConstraintName), true
		case "23502": // not_null_violation
			return pgErr.ColumnName, true
		}
		return "", false
	}
	var sqErr *sqlite.Error
	if errors.As(err, &sqErr) {
		switch sqErr.Code() {
		case sqlite3.SQLITE_CONSTRAINT_CHECK:
			return fieldFromConstraint(sqErr.Error()), true
		case sqlite3.SQLITE_CONSTRAINT_NOTNULL:
			return notNullColumn(sqErr.Error()), true
		}
	}
	msg := err.Error()
	switch {
	case strings.Contains(msg, "CHECK constraint failed"):
		return fieldFromConstraint(msg), true
	case strings.Contains(msg, "NOT NULL constraint failed"):
		return notNullColumn(msg), true
	}
	return "", false
}

func fieldFromConstraint(s string) string {
	m := reConstraint.FindStringSubmatch(s)
	if len(m) < 2 {
		return ""
	}
	return m[1]
}

// notNullColumn extrae la columna de "NOT NULL constraint failed: customers.name".
func notNullColumn(msg string) string {
	_, after, ok := strings.Cut(msg, "NOT NULL constraint failed: ")
	if !ok {
		return ""
	}
	after, _, _ = strings.Cut(after, " ")
	if _, col, ok := strings.Cut(after, "."); ok {
		return col
	}
	return after
}

// isTimeout informa si la consulta se canceló por el contexto.
func isTimeout(err error) bool {
	return errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
}

// withTx ejecuta fn dentro de una transacción y hace Commit o Rollback.
// Es la "sesión" de una sola llamada al repositorio: no hay transacciones entre llamadas.
func withTx(ctx context.Context, db *sqlx.DB, op string, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return &domain.StorageError{Op: op + ": begin", Err: err}
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(tx); err != nil {
		return classify(op, err)
	}
	if err := tx.Commit(); err != nil {
		return classify(op+": commit", err)
	}
	return nil
}
