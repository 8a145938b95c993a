package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/JadonKrys/file-catalog/internal/admission"
	config "github.com/JadonKrys/file-catalog/internal/config/server"
	"github.com/JadonKrys/file-catalog/pkg/catalog"
	"github.com/JadonKrys/file-catalog/pkg/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Options configures the HTTP surface.
type Options struct {
	HTTP    config.HTTPServerConfig
	Catalog config.CatalogServerConfig
	Metrics config.MetricsServerConfig

	// Registry receives the API collectors and is served on the metrics
	// path. A fresh registry is created when nil.
	Registry *prometheus.Registry
}

// Server exposes the catalog as a HAL+JSON API.
type Server struct {
	catalog   *catalog.Catalog
	admission *admission.Controller
	metrics   *Metrics
	log       log.LoggerService

	urls     urls
	maxFiles int
	debug    bool

	handler      http.Handler
	server       *http.Server
	shutdownOnce sync.Once
}

func NewServer(opts Options, c *catalog.Catalog, logger log.LoggerService) *Server {
	base := "/" + strings.Trim(opts.HTTP.BaseURL, "/")

	s := &Server{
		catalog:   c,
		admission: admission.New(opts.Catalog.RateLimit),
		log:       logger,
		urls:      urls{base: base},
		maxFiles:  opts.Catalog.MaxFiles,
		debug:     opts.HTTP.Debug,
	}

	// "GET /" would match every path below the root.
	rootPattern := "GET " + base
	if base == "/" {
		rootPattern = "GET /{$}"
	}

	api := http.NewServeMux()
	api.Handle(rootPattern, s.handle("HATEOASHandler", s.handleRoot))
	api.Handle("GET "+s.urls.files(), s.handle("FilesHandler", s.handleListFiles))
	api.Handle("POST "+s.urls.files(), s.handle("FilesHandler", s.handleCreateFile))
	api.Handle("GET "+s.urls.files()+"/{id}", s.handle("SingleFileHandler", s.handleGetFile))
	api.Handle("PATCH "+s.urls.files()+"/{id}", s.handle("SingleFileHandler", s.handlePatchFile))
	api.Handle("PUT "+s.urls.files()+"/{id}", s.handle("SingleFileHandler", s.handlePutFile))
	api.Handle("DELETE "+s.urls.files()+"/{id}", s.handle("SingleFileHandler", s.handleDeleteFile))

	mux := http.NewServeMux()
	mux.Handle("/", s.admit(api))

	if opts.Metrics.Enabled {
		registry := opts.Registry
		if registry == nil {
			registry = prometheus.NewRegistry()
		}
		s.metrics = NewMetrics(registry)
		mux.Handle("GET "+opts.Metrics.Path, promhttp.HandlerFor(registry, promhttp.HandlerOpts{
			EnableOpenMetrics: true,
		}))
	}

	s.handler = s.logRequests(mux)
	s.server = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", opts.HTTP.Address, opts.HTTP.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       config.Duration(opts.HTTP.ReadTimeout, 30*time.Second),
		WriteTimeout:      config.Duration(opts.HTTP.WriteTimeout, 30*time.Second),
		IdleTimeout:       config.Duration(opts.HTTP.IdleTimeout, 120*time.Second),
	}

	return s
}

// Handler returns the fully wrapped request handler.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start serves requests until ctx is cancelled or the listener fails.
// Cancellation does not stop the server; call Stop for that.
func (s *Server) Start(ctx context.Context) error {
	errChan := make(chan error, 1)
	go func() {
		s.log.Info("Listening on %s (base url %s)", s.server.Addr, s.urls.root())

		if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()

	select {
	case <-ctx.Done():
		return nil
	case err := <-errChan:
		return fmt.Errorf("http server failed: %w", err)
	}
}

// Stop gracefully shuts the server down. It is safe to call more than once.
func (s *Server) Stop(ctx context.Context) error {
	var shutdownErr error
	s.shutdownOnce.Do(func() {
		s.log.Debug("HTTP server shutdown initiated")

		if err := s.server.Shutdown(ctx); err != nil {
			shutdownErr = fmt.Errorf("http server shutdown error: %w", err)
			return
		}
		s.log.Info("HTTP server stopped gracefully")
	})
	return shutdownErr
}
