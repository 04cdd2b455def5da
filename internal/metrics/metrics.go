// Package metrics exports WebUI request and torrent gauges to Prometheus.
package metrics

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pokerjest/qbittorrent-go/pkg/qbittorrent"
	"github.com/pokerjest/qbittorrent-go/pkg/torrentclient"
)

const namespace = "qbit_bridge"

// Metrics owns its registry so several instances can coexist in tests.
type Metrics struct {
	registry *prometheus.Registry

	requests        *prometheus.CounterVec
	requestDuration *prometheus.HistogramVec
	logins          *prometheus.CounterVec
	torrents        *prometheus.GaugeVec
	events          *prometheus.CounterVec
}

var _ qbittorrent.Observer = (*Metrics)(nil)

func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webui_requests_total",
			Help:      "WebUI requests by endpoint and status code (0 for transport errors)",
		}, []string{"endpoint", "code"}),
		requestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "webui_request_duration_seconds",
			Help:      "WebUI request latency by endpoint",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		}, []string{"endpoint"}),
		logins: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "webui_logins_total",
			Help:      "Login attempts by result",
		}, []string{"result"}),
		torrents: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "torrents",
			Help:      "Torrents by normalized state at the last poll",
		}, []string{"state"}),
		events: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "events_total",
			Help:      "Torrent events published by type",
		}, []string{"type"}),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.requests, m.requestDuration, m.logins, m.torrents, m.events,
	)
	return m
}

func (m *Metrics) ObserveRequest(endpoint string, status int, elapsed time.Duration, _ error) {
	m.requests.WithLabelValues(endpoint, strconv.Itoa(status)).Inc()
	m.requestDuration.WithLabelValues(endpoint).Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveLogin(err error) {
	result := "success"
	switch {
	case errors.Is(err, qbittorrent.ErrAuthFailed):
		result = "rejected"
	case err != nil:
		result = "error"
	}
	m.logins.WithLabelValues(result).Inc()
}

var states = []torrentclient.State{
	torrentclient.StateDownloading,
	torrentclient.StateSeeding,
	torrentclient.StatePaused,
	torrentclient.StateQueued,
	torrentclient.StateChecking,
	torrentclient.StateWarning,
	torrentclient.StateError,
	torrentclient.StateUnknown,
}

// SetTorrents replaces the per-state gauges with counts from torrents.
func (m *Metrics) SetTorrents(torrents []torrentclient.NormalizedTorrent) {
	counts := make(map[torrentclient.State]int, len(states))
	for _, t := range torrents {
		counts[t.State]++
	}
	for _, s := range states {
		m.torrents.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
}

func (m *Metrics) IncEvent(eventType string) {
	m.events.WithLabelValues(eventType).Inc()
}

func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
