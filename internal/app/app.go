package app

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/finance-dashboard/dashboard/internal/broker"
	"github.com/finance-dashboard/dashboard/internal/config"
	"github.com/finance-dashboard/dashboard/internal/database"
	"github.com/finance-dashboard/dashboard/internal/event_bus"
	"github.com/finance-dashboard/dashboard/internal/rest"
	"github.com/finance-dashboard/dashboard/pkg/expense"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 30 * time.Second

// Application wires configuration, storage, router and server lifecycle.
type Application struct {
	cfg     config.Application
	router  *mux.Router
	srv     *http.Server
	closers []func() error
}

// NewApplication constructs the full HTTP application, ready to Run().
func NewApplication() (*Application, error) {
	cfg, err := config.Load("./config/application.yaml")
	if err != nil {
		return nil, err
	}
	return newApplication(cfg)
}

func newApplication(cfg config.Application) (*Application, error) {
	a := &Application{cfg: cfg}

	repo, err := a.openRepository()
	if err != nil {
		a.close()
		return nil, err
	}

	bus := event_bus.NewEventBus()
	if cfg.Amqp.Url != "" {
		publisher, err := broker.Dial(cfg.Amqp.Url, cfg.Amqp.Exchange)
		if err != nil {
			a.close()
			return nil, err
		}
		publisher.Attach(bus)
		a.closers = append(a.closers, publisher.Close)
	}

	r := mux.NewRouter()
	deps := BuildDependencies(repo, bus)
	SetupMiddleware(r, deps, cfg)
	RegisterRoutes(r, deps, cfg)

	if cfg.Frontend.Enabled {
		frontend := rest.NewFrontendHandler(cfg.Frontend.Dir, "index.html")
		r.PathPrefix("/").Handler(frontend)
	}

	a.router = r
	a.srv = &http.Server{
		Handler:      r,
		Addr:         cfg.Server.Addr,
		WriteTimeout: 15 * time.Second,
		ReadTimeout:  15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	return a, nil
}

func (a *Application) openRepository() (expense.Repository, error) {
	switch a.cfg.Storage.Backend {
	case config.BackendCsv:
		repo := expense.NewCsvRepository(a.cfg.Storage.CsvPath)
		if err := repo.Init(); err != nil {
			return nil, err
		}
		log.Infof("Using CSV storage at %s", a.cfg.Storage.CsvPath)
		return repo, nil
	case config.BackendSqlite:
		db, err := database.OpenSqlite(a.cfg.Storage.SqlitePath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, db.Close)
		log.Infof("Using SQLite storage at %s", a.cfg.Storage.SqlitePath)
		return expense.NewSqliteRepository(db), nil
	case config.BackendPostgres:
		if err := database.Migrate(a.cfg.Database); err != nil {
			return nil, err
		}
		pool, err := database.Open(a.cfg.Database)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() error {
			pool.Close()
			return nil
		})
		log.Infof("Using Postgres storage at %s:%d/%s", a.cfg.Database.Host, a.cfg.Database.Port, a.cfg.Database.Name)
		return expense.NewPostgresRepository(pool), nil
	default:
		return nil, fmt.Errorf("unsupported storage backend %q", a.cfg.Storage.Backend)
	}
}

// Run serves HTTP until ctx is cancelled or SIGINT/SIGTERM arrives, then
// shuts the server down gracefully and releases storage and broker resources.
func (a *Application) Run(ctx context.Context) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	defer a.close()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Infof("Starting server on %s", a.srv.Addr)
		if err := a.srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return a.srv.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		return err
	}
	log.Info("Server stopped gracefully")
	return nil
}

func (a *Application) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Errorf("failed to release resource: %v", err)
		}
	}
	a.closers = nil
}
