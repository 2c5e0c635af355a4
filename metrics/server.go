package metrics

import (
	"context"
	"errors"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/sarchlab/packetgraph/logging"
)

// Server serves a Collector on /metrics.
type Server struct {
	addr     string
	registry *prometheus.Registry
	server   *http.Server

	mu       sync.Mutex
	listener net.Listener
	running  bool
}

// NewServer creates a Server listening on addr. Go runtime metrics are
// served along with the collector's.
func NewServer(addr string, c *Collector) (*Server, error) {
	registry := prometheus.NewRegistry()

	if err := registry.Register(c); err != nil {
		return nil, err
	}

	if err := registry.Register(collectors.NewGoCollector()); err != nil {
		return nil, err
	}

	s := &Server{
		addr:     addr,
		registry: registry,
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", s.Handler())
	s.server = &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	return s, nil
}

// Handler returns the /metrics handler.
func (s *Server) Handler() http.Handler {
	return promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{})
}

// Start listens and serves in the background.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.listener = ln
	s.running = true
	s.mu.Unlock()

	logger := logging.Get(logging.Metrics)
	logger.Info("prometheus server listening", "addr", ln.Addr().String())

	go func() {
		err := s.server.Serve(ln)
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("prometheus server error", "error", err)
		}

		s.mu.Lock()
		s.running = false
		s.mu.Unlock()
	}()

	return nil
}

// Addr returns the address the server listens on, once started.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.listener == nil {
		return s.addr
	}

	return s.listener.Addr().String()
}

// Running reports whether the server is serving.
func (s *Server) Running() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.running
}

// Stop shuts the server down.
func (s *Server) Stop(ctx context.Context) error {
	logging.Get(logging.Metrics).Info("stopping prometheus server")

	return s.server.Shutdown(ctx)
}
