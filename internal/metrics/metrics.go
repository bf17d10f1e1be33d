// Package metrics exposes opboxlink's Prometheus metrics: frame throughput,
// connection state, notification latency, and actuator pattern activity.
//
// All metrics use the opboxlink_ prefix.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics holds every Prometheus collector opboxlink registers.
type Metrics struct {
	FramesSentTotal     *prometheus.CounterVec
	FramesReceivedTotal *prometheus.CounterVec
	DecodeErrorsTotal   prometheus.Counter

	ConnectionUp *prometheus.GaugeVec

	NotificationAckLatency prometheus.Histogram
	NotificationsTotal     *prometheus.CounterVec

	ActuatorPatternSwapsTotal *prometheus.CounterVec
}

// New creates opboxlink's metrics and registers them against reg.
func New(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		FramesSentTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opboxlink_frames_sent_total",
				Help: "Total frames transmitted by frame id.",
			},
			[]string{"frame_id"},
		),
		FramesReceivedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opboxlink_frames_received_total",
				Help: "Total frames successfully decoded by frame id.",
			},
			[]string{"frame_id"},
		),
		DecodeErrorsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "opboxlink_decode_errors_total",
				Help: "Total checksum/unknown-frame resync events.",
			},
		),
		ConnectionUp: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "opboxlink_connection_up",
				Help: "1 if the link is connected, 0 otherwise.",
			},
			[]string{"role"},
		),
		NotificationAckLatency: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "opboxlink_notification_ack_latency_seconds",
				Help:    "Time from send_notification to ack, for acknowledged notifications.",
				Buckets: prometheus.DefBuckets,
			},
		),
		NotificationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opboxlink_notifications_total",
				Help: "Total send_notification attempts by outcome.",
			},
			[]string{"outcome"}, // "acked", "timed_out", "error"
		),
		ActuatorPatternSwapsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "opboxlink_actuator_pattern_swaps_total",
				Help: "Total actuator pattern installs by indicator.",
			},
			[]string{"indicator"},
		),
	}

	reg.MustRegister(
		m.FramesSentTotal,
		m.FramesReceivedTotal,
		m.DecodeErrorsTotal,
		m.ConnectionUp,
		m.NotificationAckLatency,
		m.NotificationsTotal,
		m.ActuatorPatternSwapsTotal,
	)

	return m
}
