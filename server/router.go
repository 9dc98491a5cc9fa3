// Package server wires the HTTP surface of the backend: the JSON-RPC
// endpoint, its websocket twin, health and metrics.
package server

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"github.com/orangerpc/orange/config"
	"github.com/orangerpc/orange/metrics"
	"github.com/orangerpc/orange/rpc"
	"github.com/orangerpc/orange/server/handlers"
	rpcMiddleware "github.com/orangerpc/orange/server/middleware"
)

// NewRouter creates and configures the HTTP router
func NewRouter(engine *rpc.Engine, serverConfig *config.ServerConfig, authConfig *config.AuthConfig, logger *zap.Logger) chi.Router {
	metrics.RegisterMetrics()

	r := chi.NewRouter()

	// Basic middleware
	r.Use(rpcMiddleware.RequestID())
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(serverConfig.RequestTimeout))
	r.Use(rpcMiddleware.SecurityHeaders())

	// Custom logging and metrics middleware
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)

			next.ServeHTTP(ww, req)

			duration := time.Since(start)

			metrics.HTTPRequestsTotal.WithLabelValues(
				req.Method,
				req.URL.Path,
				http.StatusText(ww.Status()),
			).Inc()

			metrics.HTTPRequestDuration.WithLabelValues(
				req.Method,
				req.URL.Path,
			).Observe(duration.Seconds())

			logger.Info("HTTP request",
				zap.String("method", req.Method),
				zap.String("path", req.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("duration", duration),
				zap.String("remote_addr", req.RemoteAddr))
		})
	})

	// Health check endpoint (no auth required)
	r.Get("/health", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write([]byte(`{"status":"ok"}`)); err != nil {
			logger.Error("failed to write health check response", zap.Error(err))
		}
	})

	// Metrics endpoint (no auth required)
	r.Handle("/metrics", promhttp.Handler())

	// JSON-RPC endpoint plus its websocket twin. Session tokens travel
	// inside the JSON-RPC payload, so there is no auth middleware; the
	// engine enforces permissions per call.
	loginLimiter := rate.NewLimiter(rate.Limit(authConfig.LoginRate), authConfig.LoginBurst)
	handler := handlers.NewHandler(engine, loginLimiter, logger)
	r.Post("/rpc", handler.ServeHTTP)
	r.Get("/ws", handler.ServeWebSocket)

	logger.Info("HTTP router configured successfully")

	return r
}
