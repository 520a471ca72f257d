// Package server is the screener HTTP backend: raw provider payloads for the
// browser dashboard plus server-side screener views.
package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/komsit37/screener/pkg/screener/config"
	"github.com/komsit37/screener/pkg/screener/types"
)

// Backend serves raw provider payloads, typically a provider.Cached.
type Backend interface {
	Batch(ctx context.Context) ([]types.RawTicker, error)
	Ticker(ctx context.Context, symbol string) (types.RawTicker, error)
}

type Options struct {
	Config config.ServerConfig
	// Backend may be nil, in which case only Seed rows are served.
	Backend Backend
	// Seed rows fill in symbols and periodicities the backend does not
	// report, such as annual history.
	Seed         []types.TickerRow
	AccessLogger *zerolog.Logger
}

type Server struct {
	cfg     config.ServerConfig
	backend Backend
	seed    []types.TickerRow
	access  zerolog.Logger
	router  chi.Router
}

func New(opts Options) *Server {
	s := &Server{
		cfg:     opts.Config,
		backend: opts.Backend,
		seed:    opts.Seed,
		access:  log.Logger,
	}
	if opts.AccessLogger != nil {
		s.access = *opts.AccessLogger
	}
	s.router = s.routes()
	return s
}

// Handler returns the root handler.
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) routes() chi.Router {
	origins := s.cfg.CORSOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(accessLog(s.access, "/health"))
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		ExposedHeaders: []string{"X-Request-ID"},
		MaxAge:         300,
	}))

	r.Get("/health", s.health)
	r.Route("/api", func(r chi.Router) {
		r.Get("/sp500-data", s.sp500Data)
		r.Get("/quote/{symbol}", s.quote)
		r.Get("/screener", s.screener)
		r.Get("/sectors/{sector}", s.sectorDetail)
		r.Get("/tickers/{symbol}/rise", s.rise)
		r.Get("/chart/{symbol}.png", s.chart)
	})
	return r
}

// ListenAndServe serves until ctx is canceled, then shuts down gracefully.
func (s *Server) ListenAndServe(ctx context.Context) error {
	srv := &http.Server{
		Addr:         s.cfg.Addr,
		Handler:      s.router,
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
		IdleTimeout:  s.cfg.IdleTimeout,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("address", s.cfg.Addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
		close(errc)
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	log.Info().Msg("shutdown signal received, stopping server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	log.Info().Msg("server stopped")
	return nil
}
