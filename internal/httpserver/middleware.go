package httpserver

import (
	"context"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"duka-pos/internal/domain"
)

type ctxKey string

const storeCtxKey ctxKey = "store"

// storeMiddleware resolves :storeKey and puts the store on the request context.
func storeMiddleware(repo StoreRepository) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := strings.TrimSpace(c.Param("storeKey"))
		if key == "" {
			writeError(c, http.StatusBadRequest, "INVALID_INPUT", "store key required")
			return
		}
		store, err := repo.GetByKey(c.Request.Context(), key)
		if errors.Is(err, domain.ErrNotFound) {
			writeError(c, http.StatusNotFound, "STORE_NOT_FOUND", "store not found")
			return
		}
		if err != nil {
			writeError(c, http.StatusInternalServerError, "INTERNAL_ERROR", "store lookup failed")
			return
		}
		ctx := context.WithValue(c.Request.Context(), storeCtxKey, store)
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

func storeFrom(c *gin.Context) *domain.Store {
	s, _ := c.Request.Context().Value(storeCtxKey).(*domain.Store)
	return s
}

// requestLogger logs each request once it completes, at a level that follows
// the status class.
func requestLogger(logger *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		status := c.Writer.Status()
		fields := []zap.Field{
			zap.String("method", c.Request.Method),
			zap.String("route", route),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", status),
			zap.Duration("latency", time.Since(start)),
			zap.Int("bytes", c.Writer.Size()),
		}
		if len(c.Errors) > 0 {
			fields = append(fields, zap.String("error", c.Errors.String()))
		}

		switch {
		case status >= http.StatusInternalServerError:
			logger.Error("request completed", fields...)
		case status >= http.StatusBadRequest:
			logger.Warn("request completed", fields...)
		default:
			logger.Debug("request completed", fields...)
		}
	}
}
