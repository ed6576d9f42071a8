// Package server exposes registered webhook endpoints over HTTP and owns the
// process lifecycle of the webhook service.
package server

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/onetakeda/sapio-webhooks/config"
	"github.com/onetakeda/sapio-webhooks/datastore"
	"github.com/onetakeda/sapio-webhooks/pkg/log"
)

type Server struct {
	s        *http.Server
	cfg      config.Configuration
	registry *Registry

	// repo may be nil; the invocation log is optional.
	repo   datastore.InvocationRepository
	logger log.StdLogger
}

func New(cfg config.Configuration, repo datastore.InvocationRepository, logger log.StdLogger) *Server {
	clientTimeout := time.Duration(cfg.Client.TimeoutSeconds) * time.Second

	return &Server{
		s: &http.Server{
			Addr:        fmt.Sprintf(":%d", cfg.Server.HTTP.Port),
			ReadTimeout: 30 * time.Second,
			// A handler may hold its invocation open for the full length of
			// its platform calls.
			WriteTimeout: clientTimeout + 30*time.Second,
		},
		cfg:      cfg,
		registry: NewRegistry(),
		repo:     repo,
		logger:   logger,
	}
}

// Registry returns the endpoint table. Register endpoints before Listen.
func (s *Server) Registry() *Registry {
	return s.registry
}

// BuildRoutes assembles the router from the registered endpoints.
func (s *Server) BuildRoutes() http.Handler {
	router := chi.NewRouter()

	router.Use(chiMiddleware.RequestID)
	router.Use(chiMiddleware.Recoverer)
	router.Use(writeRequestIDHeader)
	router.Use(s.logHTTPRequest)

	// Health check route. Required for deployments behind an App Runner
	// style load balancer.
	router.Get("/ping", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("Alive!"))
	})

	router.Handle("/metrics", promhttp.Handler())
	router.Get("/invocations", s.getInvocations)

	for _, e := range s.registry.Endpoints() {
		e := e
		router.With(chiMiddleware.AllowContentType("application/json")).
			Post(e.Path, s.handleWebhook(e))
	}

	s.s.Handler = router
	return router
}

// Listen serves until SIGINT/SIGTERM, then drains connections for up to ten
// seconds.
func (s *Server) Listen() {
	if s.s.Handler == nil {
		s.BuildRoutes()
	}

	go func() {
		if err := s.s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.WithError(err).Fatal("failed to listen")
		}
	}()

	s.logger.Infof("webhook server listening on %s", s.s.Addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit

	s.logger.Info("stopping webhook server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := s.s.Shutdown(ctx); err != nil {
		s.logger.WithError(err).Fatal("server shutdown failed")
	}

	s.logger.Info("webhook server exited")
}
