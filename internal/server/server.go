// Package server exposes the shipping core over HTTP.
package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-playground/validator/v10"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/uptrace/opentelemetry-go-extra/otelzap"
	"github.com/vietcart/fulfillment/internal/shipping"
	"github.com/vietcart/fulfillment/internal/telemetry"
	"github.com/vietcart/fulfillment/pkg/carrier"
	"go.uber.org/zap"
)

// Server is the HTTP server for the fulfillment service.
type Server struct {
	port         int
	registry     *carrier.Registry
	orchestrator *shipping.Orchestrator
	waybills     *shipping.WaybillService
	bulk         *shipping.BulkRunner
	logger       *otelzap.Logger
	metrics      *telemetry.Metrics
	validate     *validator.Validate
}

// Config holds server configuration.
type Config struct {
	Port int
}

// New creates a new server instance.
func New(cfg Config, registry *carrier.Registry, orchestrator *shipping.Orchestrator, waybills *shipping.WaybillService, bulk *shipping.BulkRunner, logger *otelzap.Logger, metrics *telemetry.Metrics) *Server {
	return &Server{
		port:         cfg.Port,
		registry:     registry,
		orchestrator: orchestrator,
		waybills:     waybills,
		bulk:         bulk,
		logger:       logger,
		metrics:      metrics,
		validate:     validator.New(),
	}
}

// Router builds the chi router with all routes mounted.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.logRequests)

	r.Get("/healthz", s.handleHealth)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/shipping", func(r chi.Router) {
		r.Post("/quote", s.handleQuote)
		r.Post("/create", s.handleCreate)
		r.Post("/cancel", s.handleCancel)
		r.Post("/webhook/{provider}", s.handleWebhook)

		r.Route("/bulk", func(r chi.Router) {
			r.Post("/confirm", s.handleBulkConfirm)
			r.Post("/cancel", s.handleBulkCancel)
			r.Post("/print", s.handleBulkPrint)
		})
	})

	return r
}

// Run starts the HTTP server and blocks until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", s.port),
		Handler:      s.Router(),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("Starting server", zap.Int("port", s.port))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		s.logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	case err := <-errCh:
		return err
	}
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	w.Write([]byte("ok"))
}

// logRequests is a small structured-logging middleware.
func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)
		s.logger.Info("http request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", ww.Status()),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
