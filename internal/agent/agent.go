package agent

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/JadonKrys/file-catalog/internal/api"
	config "github.com/JadonKrys/file-catalog/internal/config/server"
	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/db/store"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/mwantia/fabric/pkg/container"
)

type FileCatalogAgent struct {
	mutex sync.RWMutex
	wait  sync.WaitGroup

	cfg *config.BaseServerConfig
	sc  *container.ServiceContainer
	log log.LoggerService

	newStore func(config.MetadataServerConfig, log.LoggerService) (store.RecordStore, error)
	store    store.RecordStore
	catalog  *catalog.Catalog
	server   *api.Server
}

func NewAgent(cfg *config.BaseServerConfig) *FileCatalogAgent {
	return &FileCatalogAgent{
		cfg: cfg,
		sc:  container.NewServiceContainer(),
		log: log.NewLoggerService("filecatalog", cfg.Log),

		newStore: store.New,
	}
}

func (fca *FileCatalogAgent) setupServices(ctx context.Context) error {
	fca.log.Debug("Registering 'LoggerService'...")
	if err := container.Register[log.LoggerServiceImpl](fca.sc,
		container.With[log.LoggerService](),
		container.WithInstance(fca.log)); err != nil {
		return err
	}

	loggers := make(map[string]log.LoggerService)
	for _, name := range []string{"store", "catalog", "http"} {
		l, err := log.ResolveNamed(ctx, fca.sc, name)
		if err != nil {
			return err
		}
		loggers[name] = l
	}

	s, err := fca.newStore(fca.cfg.Metadata, loggers["store"])
	if err != nil {
		return fmt.Errorf("failed to create metadata store: %w", err)
	}
	// Set before Connect so closeStore releases a half-opened store.
	fca.store = s
	if err := s.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect metadata store: %w", err)
	}
	if err := s.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate metadata store: %w", err)
	}

	validator := catalog.NewValidator(catalog.PolicyFromConfig(fca.cfg.Catalog))
	fca.catalog = catalog.New(s, validator, loggers["catalog"])

	fca.server = api.NewServer(api.Options{
		HTTP:    fca.cfg.HTTP,
		Catalog: fca.cfg.Catalog,
		Metrics: fca.cfg.Metrics,
	}, fca.catalog, loggers["http"])

	errs := container.Errors{}

	fca.log.Debug("Registering 'RecordStore' (%s)...", fca.cfg.Metadata.Type)
	errs.Add(container.Register[store.BoundedStore](fca.sc,
		container.With[store.RecordStore](),
		container.WithInstance(fca.store)))

	fca.log.Debug("Registering 'Catalog'...")
	errs.Add(container.Register[catalog.Catalog](fca.sc,
		container.WithInstance(fca.catalog)))

	fca.log.Debug("Registering 'Server'...")
	errs.Add(container.Register[api.Server](fca.sc,
		container.WithInstance(fca.server)))

	return errs.Errors()
}

func (fca *FileCatalogAgent) Serve(ctx context.Context) error {
	ctx, cancel := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer cancel()

	fca.mutex.Lock()

	if err := fca.setupServices(ctx); err != nil {
		fca.mutex.Unlock()
		fca.closeStore()
		return err
	}

	fca.log.Info("Metadata store: %s (%d workers)", fca.cfg.Metadata.Type, fca.cfg.Metadata.Workers)
	fca.log.Info("Rate limit: %d in-flight requests per address", fca.cfg.Catalog.RateLimit)
	fca.log.Info("Debug: %t", fca.cfg.HTTP.Debug)

	serverErr := make(chan error, 1)
	fca.wait.Add(1)
	go func() {
		defer fca.wait.Done()
		serverErr <- fca.server.Start(ctx)
	}()

	fca.mutex.Unlock()

	var runErr error
	select {
	case <-ctx.Done():
	case runErr = <-serverErr:
	}

	timeout := config.Duration(fca.cfg.ShutdownTimeout, 60*time.Second)
	shutdown, cancelShutdown := context.WithTimeout(context.Background(), timeout)
	defer cancelShutdown()

	if err := fca.server.Stop(shutdown); err != nil {
		fca.log.Error("%v", err)
	}

	if err := fca.sc.Cleanup(shutdown); err != nil {
		return fmt.Errorf("failed to complete service container cleanup: %w", err)
	}

	cancel()
	fca.wait.Wait()
	fca.closeStore()

	return runErr
}

func (fca *FileCatalogAgent) closeStore() {
	if fca.store == nil {
		return
	}
	if err := fca.store.Close(); err != nil {
		fca.log.Error("Failed to close metadata store: %v", err)
	}
}
