package monitoring

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics. Collectors live on a private
// registry so several instances can coexist in one process.
type Metrics struct {
	registry *prometheus.Registry

	// HTTP metrics
	RequestsTotal   *prometheus.CounterVec
	RequestDuration *prometheus.HistogramVec

	// Session metrics
	SessionsActive  prometheus.Gauge
	SessionsCreated prometheus.Counter
	SessionsExpired *prometheus.CounterVec

	// Desktop metrics
	WindowOps     *prometheus.CounterVec
	ThemeToggles  *prometheus.CounterVec
	AudioFailures *prometheus.CounterVec
	MediaProbes   *prometheus.HistogramVec
	DroppedEvents prometheus.Counter

	// Snake metrics
	SnakeGamesStarted prometheus.Counter
	SnakeGamesEnded   *prometheus.CounterVec
	SnakeScore        prometheus.Histogram

	// WebSocket metrics
	WSConnections prometheus.Gauge
	WSMessages    *prometheus.CounterVec

	// System metrics
	Uptime    prometheus.GaugeFunc
	startTime time.Time

	snapshot Snapshot
	mu       sync.RWMutex
}

// Snapshot holds running totals for the JSON health endpoint.
type Snapshot struct {
	TotalRequests  int64   `json:"total_requests"`
	TotalErrors    int64   `json:"total_errors"`
	ActiveSessions int64   `json:"active_sessions"`
	ActiveSockets  int64   `json:"active_sockets"`
	AvgLatencyMS   float64 `json:"avg_latency_ms"`
	UptimeSeconds  float64 `json:"uptime_seconds"`

	totalDuration float64
}

// NewMetrics creates a metrics collector with its own registry.
func NewMetrics() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	f := promauto.With(reg)

	m := &Metrics{
		registry:  reg,
		startTime: time.Now(),

		RequestsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		RequestDuration: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskfolio_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5},
			},
			[]string{"method", "route"},
		),

		SessionsActive: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskfolio_sessions_active",
				Help: "Number of live visitor sessions",
			},
		),
		SessionsCreated: f.NewCounter(
			prometheus.CounterOpts{
				Name: "deskfolio_sessions_created_total",
				Help: "Total number of visitor sessions created",
			},
		),
		SessionsExpired: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_sessions_ended_total",
				Help: "Visitor sessions ended, by reason",
			},
			[]string{"reason"},
		),

		WindowOps: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_window_operations_total",
				Help: "Window operations that changed state",
			},
			[]string{"op"},
		),
		ThemeToggles: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_theme_toggles_total",
				Help: "Theme toggles by resulting mode",
			},
			[]string{"mode", "persisted"},
		),
		AudioFailures: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_audio_playback_failures_total",
				Help: "Tracks that failed to start",
			},
			[]string{"track"},
		),
		MediaProbes: f.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskfolio_media_probe_duration_seconds",
				Help:    "Track probe duration in seconds",
				Buckets: []float64{.005, .025, .1, .25, .5, 1, 2.5, 5},
			},
			[]string{"source", "result"},
		),
		DroppedEvents: f.NewCounter(
			prometheus.CounterOpts{
				Name: "deskfolio_events_dropped_total",
				Help: "Session events dropped for slow subscribers",
			},
		),

		SnakeGamesStarted: f.NewCounter(
			prometheus.CounterOpts{
				Name: "deskfolio_snake_games_started_total",
				Help: "Snake games started",
			},
		),
		SnakeGamesEnded: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_snake_games_ended_total",
				Help: "Snake games ended, by result",
			},
			[]string{"result"},
		),
		SnakeScore: f.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deskfolio_snake_score",
				Help:    "Final snake scores",
				Buckets: prometheus.LinearBuckets(0, 5, 10),
			},
		),

		WSConnections: f.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskfolio_ws_connections",
				Help: "Number of active WebSocket connections",
			},
		),
		WSMessages: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskfolio_ws_messages_total",
				Help: "Total number of WebSocket messages",
			},
			[]string{"direction", "type"},
		),
	}

	m.Uptime = f.NewGaugeFunc(
		prometheus.GaugeOpts{
			Name: "deskfolio_uptime_seconds",
			Help: "Server uptime in seconds",
		},
		func() float64 { return time.Since(m.startTime).Seconds() },
	)

	return m
}

// Handler serves the registry in Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// RecordHTTPRequest records an HTTP request.
func (m *Metrics) RecordHTTPRequest(method, route, status string, duration time.Duration) {
	m.RequestsTotal.WithLabelValues(method, route, status).Inc()
	m.RequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())

	m.mu.Lock()
	m.snapshot.TotalRequests++
	m.snapshot.totalDuration += duration.Seconds()
	if status[0] == '4' || status[0] == '5' {
		m.snapshot.TotalErrors++
	}
	m.mu.Unlock()
}

// SessionCreated counts a new visitor session.
func (m *Metrics) SessionCreated() {
	m.SessionsCreated.Inc()
}

// SessionEnded counts a session removal. reason is "expired" or "closed".
func (m *Metrics) SessionEnded(reason string) {
	m.SessionsExpired.WithLabelValues(reason).Inc()
}

// SetSessionsActive sets the live session gauge.
func (m *Metrics) SetSessionsActive(count int) {
	m.SessionsActive.Set(float64(count))
	m.mu.Lock()
	m.snapshot.ActiveSessions = int64(count)
	m.mu.Unlock()
}

// WindowOp counts a window operation that changed state.
func (m *Metrics) WindowOp(op string) {
	m.WindowOps.WithLabelValues(op).Inc()
}

// ThemeToggled counts a theme toggle.
func (m *Metrics) ThemeToggled(mode string, persisted bool) {
	p := "false"
	if persisted {
		p = "true"
	}
	m.ThemeToggles.WithLabelValues(mode, p).Inc()
}

// PlaybackFailed counts a track that could not start.
func (m *Metrics) PlaybackFailed(track string) {
	m.AudioFailures.WithLabelValues(track).Inc()
}

// ObserveProbe records a media probe.
func (m *Metrics) ObserveProbe(source, result string, d time.Duration) {
	m.MediaProbes.WithLabelValues(source, result).Observe(d.Seconds())
}

// EventDropped counts an event not delivered to a slow subscriber.
func (m *Metrics) EventDropped() {
	m.DroppedEvents.Inc()
}

// SnakeStarted counts a started game.
func (m *Metrics) SnakeStarted() {
	m.SnakeGamesStarted.Inc()
}

// SnakeEnded records a finished game.
func (m *Metrics) SnakeEnded(score int, won bool) {
	result := "collided"
	if won {
		result = "won"
	}
	m.SnakeGamesEnded.WithLabelValues(result).Inc()
	m.SnakeScore.Observe(float64(score))
}

// RecordWSMessage records a WebSocket message.
func (m *Metrics) RecordWSMessage(direction, msgType string) {
	m.WSMessages.WithLabelValues(direction, msgType).Inc()
}

// IncWSConnections increments WebSocket connections.
func (m *Metrics) IncWSConnections() {
	m.WSConnections.Inc()
	m.mu.Lock()
	m.snapshot.ActiveSockets++
	m.mu.Unlock()
}

// DecWSConnections decrements WebSocket connections.
func (m *Metrics) DecWSConnections() {
	m.WSConnections.Dec()
	m.mu.Lock()
	m.snapshot.ActiveSockets--
	m.mu.Unlock()
}

// Snapshot returns running totals.
func (m *Metrics) Snapshot() Snapshot {
	m.mu.RLock()
	defer m.mu.RUnlock()

	s := m.snapshot
	if s.TotalRequests > 0 {
		s.AvgLatencyMS = s.totalDuration / float64(s.TotalRequests) * 1000
	}
	s.UptimeSeconds = time.Since(m.startTime).Seconds()
	return s
}
