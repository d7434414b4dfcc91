// Package metrics exposes counters about the run loop on an optional
// prometheus endpoint.
package metrics

import (
	"errors"
	"net"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"
)

var (
	// Tick metrics
	TicksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wtl_ticks_total",
			Help: "Scheduler ticks handled, by job",
		},
		[]string{"job"},
	)

	TickErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wtl_tick_errors_total",
			Help: "Scheduler ticks that returned an error, by job",
		},
		[]string{"job"},
	)

	// Session metrics
	TogglesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wtl_toggles_total",
			Help: "Toggles applied, by resulting label",
		},
		[]string{"label"},
	)

	AutoStarts = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wtl_auto_starts_total",
			Help: "Intervals opened automatically by the overtime check",
		},
	)

	OvertimeEvents = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wtl_overtime_events_total",
			Help: "Overtime ticks that recorded an amount in the ledger",
		},
	)

	Notifications = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "wtl_notifications_total",
			Help: "End-of-work notifications shown",
		},
	)

	WorkingSeconds = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "wtl_working_seconds",
			Help: "Working time of the current day at the last overtime check",
		},
	)

	// Activity metrics
	ActivitySeconds = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wtl_activity_seconds_total",
			Help: "Sampled seconds, by state",
		},
		[]string{"state"},
	)

	// Persistence metrics
	PersistFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "wtl_persist_failures_total",
			Help: "Failed writes of a store file, by store",
		},
		[]string{"store"},
	)
)

func init() {
	prometheus.MustRegister(
		TicksTotal,
		TickErrors,
		TogglesTotal,
		AutoStarts,
		OvertimeEvents,
		Notifications,
		WorkingSeconds,
		ActivitySeconds,
		PersistFailures,
	)
}

// Server is the metrics HTTP server
type Server struct {
	server   *http.Server
	logger   zerolog.Logger
	listener net.Listener // set for systemd socket activation
}

// NewServer creates a new metrics server
func NewServer(addr string, logger zerolog.Logger) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	return &Server{
		server: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
		logger: logger.With().Str("component", "metrics").Logger(),
	}
}

// Handler returns the HTTP handler serving /metrics and /health.
func (s *Server) Handler() http.Handler {
	return s.server.Handler
}

// SetListener sets a pre-created listener for systemd socket activation
func (s *Server) SetListener(ln net.Listener) {
	s.listener = ln
}

// Start serves in the background. Bind errors are returned synchronously.
func (s *Server) Start() error {
	ln := s.listener
	if ln == nil {
		var err error
		if ln, err = net.Listen("tcp", s.server.Addr); err != nil {
			return err
		}
	} else {
		s.logger.Debug().Msg("Using systemd socket-activated metrics listener")
	}
	s.logger.Info().Str("addr", ln.Addr().String()).Msg("Starting metrics server")
	go func() {
		if err := s.server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			s.logger.Error().Err(err).Msg("Metrics server error")
		}
	}()
	return nil
}

// Stop stops the metrics server
func (s *Server) Stop() error {
	s.logger.Info().Msg("Stopping metrics server")
	return s.server.Close()
}
