package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"golang.org/x/sync/errgroup"

	"github.com/jhoicas/saminvoice/internal/application/search"
	"github.com/jhoicas/saminvoice/internal/domain/entity"
	"github.com/jhoicas/saminvoice/internal/infrastructure/database"
	"github.com/jhoicas/saminvoice/internal/interfaces/terminal"
	"github.com/jhoicas/saminvoice/pkg/config"
	"github.com/jhoicas/saminvoice/pkg/logger"
)

const usage = `uso: saminvoice [-db ruta] <comando>

comandos:
  migrate                      aplica las migraciones pendientes
  browse customers|products    lista con búsqueda incremental (":s N" selecciona, ":q" sale)
  company                      muestra los datos de la empresa
`

var errUsage = errors.New("comando inválido")

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "cargar configuración:", err)
		os.Exit(1)
	}

	fs := flag.NewFlagSet("saminvoice", flag.ExitOnError)
	fs.Usage = func() { fmt.Fprint(fs.Output(), usage) }
	fs.StringVar(&cfg.DB.Path, "db", cfg.DB.Path, "archivo SQLite (DB_PATH)")
	fs.StringVar(&cfg.App.LogLevel, "log-level", cfg.App.LogLevel, "nivel de log (LOG_LEVEL)")
	fs.Parse(os.Args[1:])

	log := logger.New(logger.Config{
		Env:   cfg.App.Env,
		Level: cfg.App.LogLevel,
	})

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, log, fs.Args(), os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fs.Usage()
			os.Exit(2)
		}
		if errors.Is(err, context.Canceled) {
			return
		}
		log.Error().Err(err).Msg("saminvoice")
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	store, err := database.Open(ctx, cfg.DB, log.Component("database"))
	if err != nil {
		return fmt.Errorf("abrir almacén: %w", err)
	}
	defer store.Close()

	log.Debug().Str("app", cfg.App.Name).Str("driver", store.Driver()).Str("cmd", args[0]).Msg("iniciando")

	switch args[0] {
	case "migrate":
		// Open ya migró.
		fmt.Fprintln(out, "migraciones aplicadas")
		return nil
	case "browse":
		if len(args) < 2 {
			return errUsage
		}
		return browse(ctx, cfg, log, store, args[1], in, out)
	case "company":
		return showCompany(ctx, store, out)
	}
	return errUsage
}

func browse(ctx context.Context, cfg *config.Config, log *logger.Logger, store *database.Store, kind string, in io.Reader, out io.Writer) error {
	opts := search.Options{
		Debounce: cfg.Search.Debounce,
		Limit:    cfg.Search.Limit,
		Timeout:  cfg.Search.Timeout,
	}
	switch kind {
	case "customers":
		repo := database.NewCustomerRepository(store)
		orch := search.New[entity.Customer](repo, opts, search.WithLogger(log.Component("search.customers")))
		defer orch.Close()
		v := terminal.NewView[entity.Customer](orch, repo, cfg.Search.MaxShown, (*entity.Customer).Label, out, log.Component("listview"))
		return v.Run(ctx, in)
	case "products":
		repo := database.NewProductRepository(store)
		orch := search.New[entity.Product](repo, opts, search.WithLogger(log.Component("search.products")))
		defer orch.Close()
		v := terminal.NewView[entity.Product](orch, repo, cfg.Search.MaxShown, (*entity.Product).Label, out, log.Component("listview"))
		return v.Run(ctx, in)
	}
	return errUsage
}

// showCompany imprime la empresa y el tamaño del catálogo, consultados en paralelo.
func showCompany(ctx context.Context, store *database.Store, out io.Writer) error {
	var (
		company             *entity.Company
		customers, products int64
	)
	eg, ctx := errgroup.WithContext(ctx)
	eg.Go(func() (err error) {
		company, err = database.NewCompanyStore(store).GetOrDefault(ctx)
		return err
	})
	eg.Go(func() (err error) {
		customers, err = database.NewCustomerRepository(store).Count(ctx)
		return err
	})
	eg.Go(func() (err error) {
		products, err = database.NewProductRepository(store).Count(ctx)
		return err
	})
	if err := eg.Wait(); err != nil {
		return err
	}

	name := company.Name
	if name == "" {
		name = "(sin configurar)"
	}
	fmt.Fprintf(out, "empresa:   %s\n", name)
	for _, f := range []struct {
		label string
		value *string
	}{
		{"dirección", company.Address},
		{"email", company.Email},
		{"teléfono", company.Phone},
	} {
		if f.value != nil {
			fmt.Fprintf(out, "%-10s %s\n", f.label+":", *f.value)
		}
	}
	if len(company.Logo) > 0 {
		fmt.Fprintf(out, "logo:      %d bytes\n", len(company.Logo))
	}
	fmt.Fprintf(out, "clientes:  %d\nartículos: %d\n", customers, products)
	return nil
}
