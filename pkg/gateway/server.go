package gateway

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Server exposes the gateway's offer/answer exchange over HTTP: a
// browser posts its SDP offer to /offer, and within that same request
// the gateway extracts its transport state, anonymizes it, and merges
// the anonymized body with local transport state into the answer it
// returns.
type Server struct {
	logger     *slog.Logger
	httpServer *http.Server
	deps       func() Deps
	maxBitrate uint64

	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewServer creates an HTTP server for offer/answer exchange. deps is
// called once per new session to obtain its collaborators, so callers
// can hand out fresh per-session pacers or credentials if desired.
func NewServer(deps func() Deps, maxBitrate uint64, logger *slog.Logger) *Server {
	return &Server{
		logger:     logger,
		deps:       deps,
		maxBitrate: maxBitrate,
		sessions:   make(map[string]*Session),
	}
}

// Start begins serving on addr. It returns once the listener is up (or
// has failed within a short grace period), leaving the server running
// in the background.
func (s *Server) Start(ctx context.Context, addr string) error {
	mux := http.NewServeMux()
	mux.HandleFunc("/offer", s.handleOffer)
	mux.HandleFunc("/sessions/", s.handleSessionOperation)

	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.withLogging(mux),
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
	}

	s.logger.Info("starting HTTP server", "address", addr)

	errChan := make(chan error, 1)
	go func() {
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			s.logger.Error("HTTP server error", "error", err)
			errChan <- err
		}
	}()

	select {
	case err := <-errChan:
		return err
	case <-time.After(100 * time.Millisecond):
		return nil
	}
}

// Stop gracefully stops the HTTP server and closes every live session.
func (s *Server) Stop(ctx context.Context) error {
	s.mu.Lock()
	sessions := make([]*Session, 0, len(s.sessions))
	for id, sess := range s.sessions {
		sessions = append(sessions, sess)
		delete(s.sessions, id)
	}
	s.mu.Unlock()

	for _, sess := range sessions {
		sess.Close()
	}

	if s.httpServer == nil {
		return nil
	}
	s.logger.Info("stopping HTTP server")
	return s.httpServer.Shutdown(ctx)
}

type offerRequest struct {
	SDP string `json:"sdp"`
}

type offerResponse struct {
	SessionID string `json:"sessionId"`
	SDP       string `json:"sdp"`
}

func (s *Server) handleOffer(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	var req offerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}

	id := uuid.NewString()
	sess := NewSession(r.Context(), id, s.deps(), s.maxBitrate, s.logger)

	anonymized, err := sess.HandleOffer([]byte(req.SDP))
	if err != nil {
		sess.Close()
		s.logger.Error("offer processing failed", "session", id, "error", err)
		http.Error(w, fmt.Sprintf("processing offer: %v", err), http.StatusBadRequest)
		return
	}

	answer, err := sess.BuildAnswer(anonymized)
	if err != nil {
		sess.Close()
		s.logger.Error("answer build failed", "session", id, "error", err)
		http.Error(w, fmt.Sprintf("building answer: %v", err), http.StatusInternalServerError)
		return
	}

	s.mu.Lock()
	s.sessions[id] = sess
	s.mu.Unlock()

	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(offerResponse{SessionID: id, SDP: string(answer)})
}

// handleSessionOperation serves DELETE /sessions/{id} to tear a session
// down on hangup.
func (s *Server) handleSessionOperation(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodDelete {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	id := r.URL.Path[len("/sessions/"):]
	s.mu.Lock()
	sess, ok := s.sessions[id]
	delete(s.sessions, id)
	s.mu.Unlock()

	if !ok {
		http.Error(w, "no such session", http.StatusNotFound)
		return
	}

	if err := sess.Close(); err != nil {
		s.logger.Error("session close failed", "session", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}

		next.ServeHTTP(wrapped, r)

		s.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", wrapped.statusCode,
			"duration_ms", time.Since(start).Milliseconds(),
			"remote_addr", r.RemoteAddr,
		)
	})
}

type responseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}
