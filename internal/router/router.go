package router

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/gorilla/mux"
	"github.com/shaibs3/scrapeapi/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Handler registers a group of routes
type Handler interface {
	RegisterRoutes(router *mux.Router, logger *zap.Logger)
}

// Router assembles the handlers behind the shared middleware chain
type Router struct {
	limiter   *rate.Limiter
	telemetry *telemetry.Telemetry
	logger    *zap.Logger
	handlers  []Handler

	requests metric.Int64Counter
	latency  metric.Float64Histogram
}

// NewRouter creates a router. limiter and tel may be nil.
func NewRouter(limiter *rate.Limiter, tel *telemetry.Telemetry, logger *zap.Logger, handlers []Handler) *Router {
	r := &Router{
		limiter:   limiter,
		telemetry: tel,
		logger:    logger.Named("router"),
		handlers:  handlers,
	}
	if tel != nil {
		var err error
		if r.requests, err = tel.Meter.Int64Counter("http.server.request.count",
			metric.WithDescription("Number of HTTP requests served")); err != nil {
			r.logger.Warn("failed to create request counter", zap.Error(err))
		}
		if r.latency, err = tel.Meter.Float64Histogram("http.server.request.duration",
			metric.WithDescription("Duration of HTTP requests"),
			metric.WithUnit("s")); err != nil {
			r.logger.Warn("failed to create latency histogram", zap.Error(err))
		}
	}
	return r
}

// Handler builds the mux with every registered route and the middleware chain
func (r *Router) Handler() http.Handler {
	m := mux.NewRouter()
	m.Use(r.loggingMiddleware, r.recoverMiddleware)
	if r.limiter != nil {
		m.Use(r.rateLimitMiddleware)
	}

	if r.telemetry != nil {
		m.Handle("/metrics", r.telemetry.MetricsHandler()).Methods(http.MethodGet)
	}
	for _, h := range r.handlers {
		h.RegisterRoutes(m, r.logger)
	}
	return m
}

// CreateServer wraps the router in an http.Server listening on addr
func (r *Router) CreateServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           r.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (r *Router) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rec, req)
		elapsed := time.Since(start)

		route := req.URL.Path
		if cur := mux.CurrentRoute(req); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		if r.requests != nil {
			attrs := metric.WithAttributes(
				attribute.String("method", req.Method),
				attribute.String("route", route),
				attribute.Int("status", rec.status),
			)
			r.requests.Add(req.Context(), 1, attrs)
			r.latency.Record(req.Context(), elapsed.Seconds(), attrs)
		}
		r.logger.Info("request handled",
			zap.String("method", req.Method),
			zap.String("path", req.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", elapsed))
	})
}

func (r *Router) recoverMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		defer func() {
			if p := recover(); p != nil {
				r.logger.Error("panic while handling request",
					zap.Any("panic", p),
					zap.String("path", req.URL.Path),
					zap.Stack("stack"))
				writeError(w, http.StatusInternalServerError, "internal server error")
			}
		}()
		next.ServeHTTP(w, req)
	})
}

func (r *Router) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if !r.limiter.Allow() {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, req)
	})
}

func writeError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"error": msg})
}
