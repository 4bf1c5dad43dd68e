// Package server exposes the chat service over HTTP.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/cors"

	"github.com/dewantaratirta/agentkit/logging"
)

// maxBodyBytes caps the size of an agent request body.
const maxBodyBytes = 1 << 20

// MessageHandler answers one user message. *chat.Service implements it.
type MessageHandler interface {
	HandleUserMessage(ctx context.Context, userText string) (string, error)
}

// AgentRequest is the body of POST /api/agent.
type AgentRequest struct {
	UserMessage string `json:"userMessage"`
}

// AgentResponse is the body returned by POST /api/agent. Exactly one field
// is present.
type AgentResponse struct {
	Response *string `json:"response,omitempty"`
	Error    string  `json:"error,omitempty"`
}

// Options configure a Server.
type Options struct {
	Logger logging.Logger

	// CORSOrigins lists allowed origins. Empty allows any origin.
	CORSOrigins []string

	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// Server is the HTTP front end.
type Server struct {
	addr    string
	handler MessageHandler
	logger  logging.Logger
	opts    Options
	server  *http.Server
}

// NewServer creates a Server listening on addr (host:port).
func NewServer(addr string, handler MessageHandler, optFns ...func(o *Options)) *Server {
	opts := Options{
		Logger:       logging.NoOpLogger{},
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 120 * time.Second,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	s := &Server{
		addr:    addr,
		handler: handler,
		logger:  logging.OrNoOp(opts.Logger),
		opts:    opts,
	}

	s.server = &http.Server{
		Addr:         addr,
		Handler:      s.Handler(),
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
	}

	return s
}

// Handler returns the fully wrapped HTTP handler (routes, CORS, request logging).
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/agent", s.handleAgent)
	mux.HandleFunc("/api/agent", s.handleAgentMethod)
	mux.HandleFunc("GET /healthz", s.handleHealth)

	return s.withLogging(s.corsHandler().Handler(mux))
}

func (s *Server) corsHandler() *cors.Cors {
	if len(s.opts.CORSOrigins) == 0 {
		return cors.AllowAll()
	}

	return cors.New(cors.Options{
		AllowedOrigins: s.opts.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})
}

// Start serves until Shutdown is called. A clean shutdown returns nil.
func (s *Server) Start(_ context.Context) error {
	s.logger.Info("server.start", "addr", s.addr)

	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}

	return nil
}

// Shutdown gracefully stops the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info("server.shutdown", "addr", s.addr)
	return s.server.Shutdown(ctx)
}

// handleAgentMethod keeps the JSON envelope for methods other than POST.
func (s *Server) handleAgentMethod(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, AgentResponse{Error: fmt.Sprintf("method %s not allowed, use POST", r.Method)})
}

// handleAgent always answers 200 with either a response or an error field.
func (s *Server) handleAgent(w http.ResponseWriter, r *http.Request) {
	var req AgentRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes)).Decode(&req); err != nil {
		s.logger.Warn("server.agent.bad_request", "error", err.Error())
		s.writeJSON(w, AgentResponse{Error: err.Error()})
		return
	}

	reply, err := s.handler.HandleUserMessage(r.Context(), req.UserMessage)
	if err != nil {
		s.writeJSON(w, AgentResponse{Error: err.Error()})
		return
	}

	s.writeJSON(w, AgentResponse{Response: &reply})
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, map[string]string{"status": "healthy"})
}

func (s *Server) writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)

	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Debug("server.write_json.failed", "error", err.Error())
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(rec, r)

		s.logger.Info("server.request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"duration_ms", time.Since(start).Milliseconds(),
		)
	})
}
