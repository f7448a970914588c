package web

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/embackup/embackup/internal/config"
	"github.com/embackup/embackup/internal/database"
	"github.com/sirupsen/logrus"
)

type Server struct {
	config  *config.Config
	handler *Handler
	server  *http.Server
	log     logrus.FieldLogger
}

func NewServer(cfg *config.Config, repo *database.Repository, t Tracker, customPort int, log logrus.FieldLogger) *Server {
	handler := NewHandler(cfg, repo, t, log)
	mux := http.NewServeMux()
	handler.SetupRoutes(mux)

	port := cfg.Web.Port
	if customPort > 0 {
		port = customPort
	}

	addr := fmt.Sprintf("%s:%d", cfg.Web.Host, port)
	httpServer := &http.Server{
		Addr:         addr,
		Handler:      mux,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 10 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return &Server{
		config:  cfg,
		handler: handler,
		server:  httpServer,
		log:     log,
	}
}

func (s *Server) Start() error {
	s.log.Infof("Starting status API on http://%s", s.server.Addr)
	return s.server.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	s.log.Info("Shutting down status API...")
	return s.server.Shutdown(ctx)
}

func (s *Server) GetAddress() string {
	return s.server.Addr
}
