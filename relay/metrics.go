// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package relay

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics are the relay's Prometheus instruments. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	sessions        prometheus.Counter
	connected       prometheus.Gauge
	disconnects     *prometheus.CounterVec
	sessionDuration prometheus.Histogram
	records         prometheus.Counter
	linesSent       prometheus.Counter
	clockOffset     prometheus.Gauge
	syncErrors      prometheus.Counter
}

// NewMetrics creates the relay's instruments and registers them with
// registerer. Pass nil to skip registration.
func NewMetrics(registerer prometheus.Registerer) *Metrics {
	m := &Metrics{
		sessions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pose_relay_sessions_total",
			Help: "Controller sessions accepted.",
		}),
		connected: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pose_relay_session_connected",
			Help: "1 while a controller session is live.",
		}),
		disconnects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pose_relay_disconnects_total",
			Help: "Sessions ended, by reason.",
		}, []string{"reason"}),
		sessionDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pose_relay_session_duration_seconds",
			Help:    "Time from accept to disconnect.",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		}),
		records: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pose_relay_records_total",
			Help: "Pose records read from the source, before decimation.",
		}),
		linesSent: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pose_relay_lines_sent_total",
			Help: "Telemetry lines written to controllers.",
		}),
		clockOffset: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "pose_relay_clock_offset_milliseconds",
			Help: "Last computed relay-minus-controller clock offset.",
		}),
		syncErrors: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pose_relay_sync_errors_total",
			Help: "Clock sync messages discarded as malformed or out of order.",
		}),
	}
	// Pre-create every reason so rates are defined before the first
	// disconnect of each kind.
	for _, reason := range Reasons {
		m.disconnects.WithLabelValues(string(reason))
	}

	if registerer != nil {
		registerer.MustRegister(
			m.sessions, m.connected, m.disconnects, m.sessionDuration,
			m.records, m.linesSent, m.clockOffset, m.syncErrors,
		)
	}
	return m
}

func (m *Metrics) sessionStarted() {
	if m == nil {
		return
	}
	m.sessions.Inc()
	m.connected.Set(1)
}

func (m *Metrics) sessionEnded(reason DisconnectReason, duration time.Duration) {
	if m == nil {
		return
	}
	m.connected.Set(0)
	m.disconnects.WithLabelValues(string(reason)).Inc()
	m.sessionDuration.Observe(duration.Seconds())
}

func (m *Metrics) recordRead() {
	if m == nil {
		return
	}
	m.records.Inc()
}

func (m *Metrics) lineSent() {
	if m == nil {
		return
	}
	m.linesSent.Inc()
}

func (m *Metrics) clockSynced(offsetMillis int64) {
	if m == nil {
		return
	}
	m.clockOffset.Set(float64(offsetMillis))
}

func (m *Metrics) syncFailed() {
	if m == nil {
		return
	}
	m.syncErrors.Inc()
}
