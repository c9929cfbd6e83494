// Copyright (c) 2025-2026 complex (complex@ft.hn)
// See LICENSE for licensing information

// Package rpc serves the wallet operations over HTTP. Every response body
// is an ethwallet.Envelope.
package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"github.com/complex-gh/ethwallet"
	klog "github.com/complex-gh/ethwallet/internal/log"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// timeoutBody is written by the timeout handler when a request overruns.
const timeoutBody = `{"success":false,"error":"request timed out"}`

// Config controls the transport.
type Config struct {
	// Timeout bounds each request. Zero disables the limit.
	Timeout time.Duration
	// CORSOrigins lists allowed browser origins. Empty disables CORS
	// headers; "*" allows any origin.
	CORSOrigins []string
}

// Server is the HTTP front end of an ethwallet.Service.
type Server struct {
	addr    string
	svc     *ethwallet.Service
	cfg     Config
	handler http.Handler
	server  *http.Server
	ln      net.Listener
	logger  zerolog.Logger
}

// New creates a server for svc that will listen on addr.
func New(addr string, svc *ethwallet.Service, cfg Config) *Server {
	s := &Server{
		addr:   addr,
		svc:    svc,
		cfg:    cfg,
		logger: klog.RPC,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/generate", s.post(s.handleGenerate))
	mux.HandleFunc("/restore", s.post(s.handleRestore))
	mux.HandleFunc("/derive", s.post(s.handleDerive))
	mux.HandleFunc("/validate", s.post(s.handleValidate))
	mux.HandleFunc("/address", s.post(s.handleAddress))
	mux.HandleFunc("/xpub", s.post(s.handleXPub))
	mux.HandleFunc("/health", s.handleHealth)
	mux.HandleFunc("/", s.handleNotFound)

	var h http.Handler = mux
	if cfg.Timeout > 0 {
		h = http.TimeoutHandler(h, cfg.Timeout, timeoutBody)
	}
	if len(cfg.CORSOrigins) > 0 {
		h = cors.New(cors.Options{
			AllowedOrigins: cfg.CORSOrigins,
			AllowedMethods: []string{http.MethodGet, http.MethodPost},
			AllowedHeaders: []string{"Content-Type"},
		}).Handler(h)
	}
	s.handler = s.logRequests(h)

	s.server = &http.Server{
		Handler:           s.handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

// Handler returns the root handler, for embedding or tests.
func (s *Server) Handler() http.Handler {
	return s.handler
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("HTTP server error")
		}
	}()

	s.logger.Info().Str("addr", ln.Addr().String()).Msg("listening")
	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// statusRecorder captures the status code for request logging.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}

func (s *Server) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, r)
		s.logger.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", rec.status).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

// post rejects anything but POST with an envelope.
func (s *Server) post(h http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.Header().Set("Allow", http.MethodPost)
			writeEnvelope(w, http.StatusMethodNotAllowed, ethwallet.Failure(errMethodNotAllowed))
			return
		}
		h(w, r)
	}
}

func writeEnvelope(w http.ResponseWriter, status int, env ethwallet.Envelope) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(env)
}

// respond writes data or err. Caller errors map to 400; a failing
// randomness source or cancelled request is a server problem.
func respond(w http.ResponseWriter, data any, err error) {
	if err == nil {
		writeEnvelope(w, http.StatusOK, ethwallet.Success(data))
		return
	}
	writeEnvelope(w, statusFor(err), ethwallet.Failure(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, ethwallet.ErrEntropyFailure):
		return http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return http.StatusServiceUnavailable
	default:
		return http.StatusBadRequest
	}
}

// decode reads a JSON request body of at most maxBodySize bytes.
func decode(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", errBadRequest, err)
	}
	return nil
}
