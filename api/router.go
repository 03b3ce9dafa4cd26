// Package api exposes the differential engine over HTTP. The surface is a
// small JSON API: session lifecycle, board and graph inspection, the event
// log and a markdown transcript, plus health and metrics endpoints.
package api

import (
	"encoding/json"
	"net/http"
	"runtime"
	"sync/atomic"
	"time"

	mw "github.com/cognovo/differential/api/middleware"
	"github.com/cognovo/differential/engine"
	"github.com/cognovo/differential/logging"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

// Options configure the API app.
type Options struct {
	// Logger receives request and handler logs. Defaults to NoOp.
	Logger logging.Logger

	// RateLimitRPS and RateLimitBurst bound per-client request rates.
	RateLimitRPS   float64
	RateLimitBurst int
}

// App holds the router and the engine it fronts.
type App struct {
	Router *chi.Mux

	engine       *engine.Engine
	logger       logging.Logger
	startTime    time.Time
	requestCount atomic.Int64
	errorCount   atomic.Int64
}

// NewApp wires the middleware stack and routes around an engine.
func NewApp(eng *engine.Engine, optFns ...func(o *Options)) *App {
	opts := Options{
		Logger:         logging.NoOpLogger{},
		RateLimitRPS:   100,
		RateLimitBurst: 20,
	}
	for _, fn := range optFns {
		fn(&opts)
	}

	r := chi.NewRouter()
	app := &App{
		Router:    r,
		engine:    eng,
		logger:    opts.Logger,
		startTime: time.Now(),
	}

	// Global middleware (order matters)
	r.Use(mw.RequestID)
	r.Use(middleware.RealIP)
	r.Use(app.countRequests)
	r.Use(mw.Logging(opts.Logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.RateLimit(opts.RateLimitRPS, opts.RateLimitBurst))

	r.Get("/health", app.health)
	r.Get("/metrics", app.metrics)

	r.Route("/v1", func(r chi.Router) {
		r.Get("/agents", app.listAgents)
		r.Get("/stats", app.stats)
		r.Get("/events", app.listEvents)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", app.createSession)
			r.Get("/", app.listSessions)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", app.getSession)
				r.Post("/run", app.runSession)
				r.Get("/board", app.getBoard)
				r.Get("/graph", app.getGraph)
				r.Get("/result", app.getResult)
				r.Get("/events", app.getEvents)
				r.Get("/transcript", app.getTranscript)
			})
		})
	})

	return app
}

// WithLogger sets the app logger.
func WithLogger(logger logging.Logger) func(o *Options) {
	return func(o *Options) { o.Logger = logger }
}

// WithRateLimit sets the per-client rate limit.
func WithRateLimit(rps float64, burst int) func(o *Options) {
	return func(o *Options) {
		o.RateLimitRPS = rps
		o.RateLimitBurst = burst
	}
}

func (app *App) countRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		app.requestCount.Add(1)
		rw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)
		if rw.status >= http.StatusInternalServerError {
			app.errorCount.Add(1)
		}
	})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	s.status = code
	s.ResponseWriter.WriteHeader(code)
}

func (app *App) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (app *App) metrics(w http.ResponseWriter, _ *http.Request) {
	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)
	uptime := time.Since(app.startTime)

	writeJSON(w, http.StatusOK, map[string]any{
		"uptime_seconds": uptime.Seconds(),
		"uptime_human":   uptime.Round(time.Second).String(),
		"request_count":  app.requestCount.Load(),
		"error_count":    app.errorCount.Load(),
		"goroutines":     runtime.NumGoroutine(),
		"sessions":       app.engine.Stats(),
		"memory": map[string]any{
			"alloc_mb": float64(memStats.Alloc) / 1024 / 1024,
			"sys_mb":   float64(memStats.Sys) / 1024 / 1024,
			"num_gc":   memStats.NumGC,
		},
		"go_version": runtime.Version(),
	})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
