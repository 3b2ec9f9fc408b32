// Package httpapi exposes the auth and order operations over HTTP.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/silvercar/backend/internal/logging"
	"github.com/silvercar/backend/internal/server/auth"
	"github.com/silvercar/backend/internal/server/services"
)

type Server struct {
	address string
	authSvc *services.AuthService
	reset   *services.ResetService
	orders  *services.OrderService
	codec   *auth.Codec
	logger  logging.Logger
}

func NewServer(address string, logger logging.Logger, as *services.AuthService, rs *services.ResetService,
	os *services.OrderService, codec *auth.Codec) *Server {

	return &Server{
		address: address,
		authSvc: as,
		reset:   rs,
		orders:  os,
		codec:   codec,
		logger:  logger.With("module", "http_server"),
	}
}

// Router builds the route table. Split out from Run so tests can drive the
// handlers through httptest without binding a socket.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Post("/user/register", s.handleRegister)
	r.Post("/admin/login", s.handleLogin)

	r.Route("/password", func(r chi.Router) {
		r.Post("/forgot", s.handleForgotPassword)
		r.Post("/reset", s.handleResetPassword)
		r.With(s.requireToken).Post("/change", s.handleChangePassword)
	})

	r.Route("/orders", func(r chi.Router) {
		r.Post("/add_order", s.handlePlaceOrder)
		r.Get("/fromid/{id}", s.handleOrdersByFromID)
	})

	return r
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {

	srv := &http.Server{
		Addr:         s.address,
		Handler:      s.Router(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info(ctx, "starting HTTP server", "address", s.address)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	s.logger.Info(ctx, "stopping HTTP server...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
