// Package httpapi serves schema validation over HTTP.
//
//	POST /v1/schemas/{name}/validate  validate the request body
//	GET  /v1/schemas/{name}           schema metadata
//	GET  /v1/schemas                  list schema names
//	GET  /healthz                     liveness
//	GET  /metrics                     Prometheus metrics
package httpapi

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	skemac "github.com/reoring/skemac"
	"github.com/reoring/skemac/registry"
)

// Config holds the listen address, body decoding options and timeouts.
type Config struct {
	Addr            string
	ParseOpt        skemac.ParseOpt
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

// DefaultConfig returns the server defaults.
func DefaultConfig() Config {
	return Config{
		Addr:            ":8080",
		ParseOpt:        DefaultParseOpt(),
		ReadTimeout:     10 * time.Second,
		WriteTimeout:    10 * time.Second,
		ShutdownTimeout: 5 * time.Second,
	}
}

// Server exposes schema validation over HTTP.
type Server struct {
	cfg      Config
	registry *registry.Registry
	gatherer prometheus.Gatherer
	logger   log.Logger

	requests *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

// NewServer builds a server over reg. Request metrics are registered on
// promReg and /metrics exposes gatherer.
func NewServer(cfg Config, reg *registry.Registry, promReg prometheus.Registerer, gatherer prometheus.Gatherer, logger log.Logger) *Server {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Server{
		cfg:      cfg,
		registry: reg,
		gatherer: gatherer,
		logger:   logger,
		requests: promauto.With(promReg).NewCounterVec(prometheus.CounterOpts{
			Name: "skemac_http_requests_total",
			Help: "Total number of HTTP requests by route and status code.",
		}, []string{"route", "code"}),
		duration: promauto.With(promReg).NewHistogramVec(prometheus.HistogramOpts{
			Name:    "skemac_http_request_duration_seconds",
			Help:    "Time spent serving HTTP requests.",
			Buckets: prometheus.DefBuckets,
		}, []string{"route"}),
	}
}

// Handler returns the routed HTTP handler.
func (s *Server) Handler() http.Handler {
	router := mux.NewRouter()
	router.Use(s.instrument)
	router.HandleFunc("/healthz", s.handleHealth).Methods(http.MethodGet)
	if s.gatherer != nil {
		router.Handle("/metrics", promhttp.HandlerFor(s.gatherer, promhttp.HandlerOpts{}))
	}

	api := router.PathPrefix("/v1/schemas").Subrouter()
	api.HandleFunc("", s.handleList).Methods(http.MethodGet)
	api.HandleFunc("/{name}", s.handleSchema).Methods(http.MethodGet)

	validate := api.Path("/{name}/validate").Methods(http.MethodPost).Subrouter()
	validate.Use(ValidateJSON(s.registry, s.cfg.ParseOpt))
	validate.HandleFunc("", s.handleValid)
	return router
}

// Run serves until ctx is cancelled, then shuts down gracefully.
func (s *Server) Run(ctx context.Context) error {
	// Listen first, so we fail early if the address is in use.
	listener, err := net.Listen("tcp", s.cfg.Addr)
	if err != nil {
		return err
	}
	srv := &http.Server{
		Handler:      s.Handler(),
		ReadTimeout:  s.cfg.ReadTimeout,
		WriteTimeout: s.cfg.WriteTimeout,
	}
	level.Info(s.logger).Log("msg", "server listening", "addr", listener.Addr())

	errc := make(chan error, 1)
	go func() { errc <- srv.Serve(listener) }()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	level.Info(s.logger).Log("msg", "server stopped")
	return nil
}

func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) handleList(w http.ResponseWriter, _ *http.Request) {
	names, err := s.registry.Names()
	if err != nil {
		writeError(w, http.StatusNotImplemented, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string][]string{"schemas": names})
}

func (s *Server) handleSchema(w http.ResponseWriter, r *http.Request) {
	entry, err := s.registry.Get(r.Context(), mux.Vars(r)["name"])
	if err != nil {
		writeError(w, schemaStatus(err), err)
		return
	}
	w.Header().Set("ETag", `"`+entry.DigestHex()+`"`)
	body := map[string]any{
		"name":     entry.Name,
		"digest":   entry.DigestHex(),
		"compiled": entry.Compiled.UTC().Format(time.RFC3339),
	}
	if title := entry.Validator.Schema().Title; title != "" {
		body["title"] = title
	}
	writeJSON(w, http.StatusOK, body)
}

func (s *Server) handleValid(w http.ResponseWriter, r *http.Request) {
	if _, ok := ValidatedFromContext(r.Context()); !ok {
		writeError(w, http.StatusInternalServerError, errors.New("no validated document in context"))
		return
	}
	writeJSON(w, http.StatusOK, ErrorPayload(nil))
}

func (s *Server) instrument(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(rw, r)

		route := "unmatched"
		if cur := mux.CurrentRoute(r); cur != nil {
			if tpl, err := cur.GetPathTemplate(); err == nil {
				route = tpl
			}
		}
		elapsed := time.Since(start)
		s.requests.WithLabelValues(route, strconv.Itoa(rw.status)).Inc()
		s.duration.WithLabelValues(route).Observe(elapsed.Seconds())
		level.Debug(s.logger).Log("msg", "request", "method", r.Method, "route", route, "status", rw.status, "duration", elapsed)
	})
}

type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}
