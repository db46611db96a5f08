package database

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"

	"github.com/jhoicas/saminvoice/pkg/config"
)

// SQLiteDriver nombre del driver database/sql de modernc.org/sqlite.
const SQLiteDriver = "sqlite"

// Store conexión al almacén relacional compartida por los repositorios.
// Cada llamada a un repositorio toma y libera su propia conexión del pool de database/sql.
type Store struct {
	*sqlx.DB
	driver string
	pool   *pgxpool.Pool
}

// Driver devuelve config.DriverSQLite o config.DriverPostgres.
func (s *Store) Driver() string { return s.driver }

// Close cierra la conexión y, en PostgreSQL, el pool subyacente.
func (s *Store) Close() error {
	err := s.DB.Close()
	if s.pool != nil {
		s.pool.Close()
	}
	return err
}

// Open abre el almacén configurado y aplica las migraciones pendientes.
func Open(ctx context.Context, cfg config.DBConfig, log zerolog.Logger) (*Store, error) {
	var (
		s   *Store
		err error
	)
	switch cfg.Driver {
	case config.DriverPostgres:
		s, err = openPostgres(ctx, cfg)
	default:
		s, err = OpenSQLite(ctx, cfg.Path)
	}
	if err != nil {
		return nil, err
	}
	if err := Migrate(ctx, s.DB.DB, s.driver, log); err != nil {
		if cErr := s.Close(); cErr != nil {
			log.Error().Err(cErr).Msg("cerrar almacén tras migración fallida")
		}
		return nil, err
	}
	log.Debug().Str("driver", s.driver).Msg("almacén abierto")
	return s, nil
}

// OpenSQLite abre (o crea) una base SQLite local. path ":memory:" crea una base en memoria
// limitada a una conexión, porque cada conexión en memoria es una base distinta.
func OpenSQLite(ctx context.Context, path string) (*Store, error) {
	dsn := path
	memory := path == ":memory:" || strings.Contains(path, "mode=memory")
	if !memory {
		dsn = "file:" + uriPathEscaper.Replace(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	}
	db, err := sqlx.Open(SQLiteDriver, dsn)
	if err != nil {
		return nil, fmt.Errorf("abrir sqlite: %w", err)
	}
	if memory {
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping sqlite: %w", err)
	}
	return &Store{DB: db, driver: config.DriverSQLite}, nil
}

// uriPathEscaper evita que '?', '#' o '%' del nombre de archivo se lean como sintaxis URI.
var uriPathEscaper = strings.NewReplacer("%", "%25", "?", "%3f", "#", "%23")

func openPostgres(ctx context.Context, cfg config.DBConfig) (*Store, error) {
	pool, err := NewPool(ctx, cfg)
	if err != nil {
		return nil, err
	}
	db := sqlx.NewDb(stdlib.OpenDBFromPool(pool), "pgx")
	return &Store{DB: db, driver: config.DriverPostgres, pool: pool}, nil
}
