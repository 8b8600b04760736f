package statusapi

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"

	"github.com/kbukum/servicecore/logger"
)

// Server is the status HTTP server. Routes are registered on the Gin engine;
// the engine is wrapped in h2c so HTTP/2 probes work without TLS.
type Server struct {
	httpServer *http.Server
	engine     *gin.Engine
	cfg        Config
	log        *logger.Logger

	mu   sync.Mutex
	addr string
}

// NewServer creates a server with recovery, request ID and request logging
// middleware installed. cfg should already have defaults applied.
func NewServer(cfg Config, log *logger.Logger) *Server {
	if zerolog.GlobalLevel() <= zerolog.DebugLevel {
		gin.SetMode(gin.DebugMode)
	} else {
		gin.SetMode(gin.ReleaseMode)
	}
	if log == nil {
		log = logger.Get("statusapi")
	}
	log = log.WithComponent("statusapi")

	engine := gin.New()
	engine.Use(Recovery(log), RequestID(), RequestLogger(log))

	h2s := &http2.Server{
		MaxConcurrentStreams: 250,
		IdleTimeout:          120 * time.Second,
	}

	return &Server{
		httpServer: &http.Server{
			Addr:         cfg.Addr(),
			Handler:      h2c.NewHandler(engine, h2s),
			ReadTimeout:  cfg.ReadTimeout,
			WriteTimeout: cfg.WriteTimeout,
			IdleTimeout:  cfg.IdleTimeout,
		},
		engine: engine,
		cfg:    cfg,
		log:    log,
		addr:   cfg.Addr(),
	}
}

// Engine returns the Gin engine for route registration.
func (s *Server) Engine() *gin.Engine {
	return s.engine
}

// Handler returns the root handler, including the h2c wrapper.
func (s *Server) Handler() http.Handler {
	return s.httpServer.Handler
}

// Addr returns the bound address once Start has returned, otherwise the
// configured one.
func (s *Server) Addr() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.addr
}

// Start binds the port and serves in a goroutine. It returns once the
// listener is bound.
func (s *Server) Start(ctx context.Context) error {
	listener, err := net.Listen("tcp", s.httpServer.Addr)
	if err != nil {
		return fmt.Errorf("status server failed to bind %s: %w", s.httpServer.Addr, err)
	}

	s.mu.Lock()
	s.addr = listener.Addr().String()
	s.mu.Unlock()

	go func() {
		if err := s.httpServer.Serve(listener); err != nil && err != http.ErrServerClosed {
			s.log.Error("Status server error", map[string]interface{}{
				"error": err.Error(),
			})
		}
	}()

	s.log.Info("Status server started", map[string]interface{}{
		"addr": s.Addr(),
	})
	return nil
}

// Stop shuts the server down, waiting at most ShutdownTimeout for in-flight
// requests.
func (s *Server) Stop(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, s.cfg.ShutdownTimeout)
	defer cancel()

	if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("status server shutdown: %w", err)
	}
	s.log.Info("Status server stopped")
	return nil
}
