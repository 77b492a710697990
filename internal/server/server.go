package server

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"meetbot/internal/auth"
	"meetbot/internal/database"
)

// MessageHandler turns one inbound chat message into one reply.
// Implemented by engine.Engine.
type MessageHandler interface {
	HandleMessage(ctx context.Context, from, body string) string
}

type Server struct {
	db      *database.DB
	engine  MessageHandler
	gate    *auth.Gate
	httpSrv *http.Server
	port    int
}

// ServerConfig holds the wiring for the HTTP surface
type ServerConfig struct {
	DB     *database.DB
	Engine MessageHandler
	Gate   *auth.Gate
	Port   int
}

func New(cfg ServerConfig) *Server {
	s := &Server{
		db:     cfg.DB,
		engine: cfg.Engine,
		gate:   cfg.Gate,
		port:   cfg.Port,
	}

	mux := http.NewServeMux()
	s.registerRoutes(mux)

	s.httpSrv = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      mux,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	return s
}

func (s *Server) registerRoutes(mux *http.ServeMux) {
	// Health check
	mux.HandleFunc("GET /health", s.handleHealthCheck)

	// Messaging webhook (Twilio posts form-encoded WhatsApp messages here)
	mux.HandleFunc("POST /webhook/whatsapp", s.handleWhatsAppWebhook)

	// Google OAuth
	mux.HandleFunc("GET /oauth/callback", s.handleOAuthCallback)
}

func (s *Server) Start() error {
	fmt.Printf("Starting HTTP server on http://localhost:%d\n", s.port)
	return s.httpSrv.ListenAndServe()
}

func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpSrv.Shutdown(ctx)
}

// Handler returns the server's HTTP handler for testing purposes
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}
