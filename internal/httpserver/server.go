package httpserver

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"duka-pos/internal/logging"
)

const readyTimeout = time.Second

// ReadyCheck is one dependency checked by /readyz.
type ReadyCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Server wraps the POS HTTP listener.
type Server struct {
	httpServer *http.Server
	logger     *zap.Logger
}

// New builds a Server with the POS routes.
func New(addr string, logger *zap.Logger, deps Deps) (*Server, error) {
	logger = logging.OrNop(logger)
	router, err := buildRouter(logger, deps)
	if err != nil {
		return nil, err
	}

	return &Server{
		httpServer: &http.Server{
			Addr:              addr,
			Handler:           router,
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			WriteTimeout:      30 * time.Second,
			IdleTimeout:       2 * time.Minute,
			ErrorLog:          zap.NewStdLog(logger.Named("net/http")),
		},
		logger: logger,
	}, nil
}

// ListenAndServe blocks serving requests until Shutdown.
func (s *Server) ListenAndServe() error {
	s.logger.Info("http server listening", zap.String("addr", s.httpServer.Addr))
	return s.httpServer.ListenAndServe()
}

// Shutdown drains in-flight requests until ctx expires.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func healthHandler(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// readyHandler reports each dependency by name. Any failure, or having
// nothing to check, answers 503.
func readyHandler(logger *zap.Logger, checks []ReadyCheck) gin.HandlerFunc {
	return func(c *gin.Context) {
		if len(checks) == 0 {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unavailable", "reason": "no dependencies configured"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), readyTimeout)
		defer cancel()

		status, code := "ready", http.StatusOK
		results := make(map[string]string, len(checks))
		for _, rc := range checks {
			if err := rc.Check(ctx); err != nil {
				logger.Warn("readiness check failed", zap.String("dependency", rc.Name), zap.Error(err))
				results[rc.Name] = "unreachable"
				status, code = "unavailable", http.StatusServiceUnavailable
				continue
			}
			results[rc.Name] = "ok"
		}
		c.JSON(code, gin.H{"status": status, "checks": results})
	}
}
