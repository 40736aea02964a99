// Package stats tracks relay-wide counters and gauges and exposes them to
// Prometheus, continuing this codebase's stats.Tracker role -- narrowed
// from a multi-node StatsD-or-Prometheus split down to Prometheus only,
// since the relay has no StatsD deployment to support.
package stats

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Tracker is the set of counters and gauges the rendezvous engine updates
// as it creates, matches, and expires transfers.
type Tracker struct {
	reg *prometheus.Registry

	TransfersCreated   prometheus.Counter
	TransfersCompleted prometheus.Counter
	TransfersExpired   prometheus.Counter
	TransfersRetired   prometheus.Counter
	UploadsRejected    *prometheus.CounterVec // by reason
	BytesRelayed       prometheus.Counter
	ActiveTransfers    prometheus.Gauge
	QueuedUploaders    prometheus.Gauge
}

func New() *Tracker {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Tracker{
		reg: reg,
		TransfersCreated: f.NewCounter(prometheus.CounterOpts{
			Name: "rdv_transfers_created_total",
			Help: "Number of transfers created via /1/id/request.",
		}),
		TransfersCompleted: f.NewCounter(prometheus.CounterOpts{
			Name: "rdv_transfers_completed_total",
			Help: "Number of uploads fully relayed to a downloader.",
		}),
		TransfersExpired: f.NewCounter(prometheus.CounterOpts{
			Name: "rdv_transfers_expired_total",
			Help: "Number of transfers reclaimed by the expiration sweeper.",
		}),
		TransfersRetired: f.NewCounter(prometheus.CounterOpts{
			Name: "rdv_transfers_retired_total",
			Help: "Number of transfers removed via /1/id/retire.",
		}),
		UploadsRejected: f.NewCounterVec(prometheus.CounterOpts{
			Name: "rdv_uploads_rejected_total",
			Help: "Number of uploads rejected, by reason.",
		}, []string{"reason"}),
		BytesRelayed: f.NewCounter(prometheus.CounterOpts{
			Name: "rdv_bytes_relayed_total",
			Help: "Total bytes forwarded from uploaders to downloaders.",
		}),
		ActiveTransfers: f.NewGauge(prometheus.GaugeOpts{
			Name: "rdv_active_transfers",
			Help: "Number of transfers currently registered.",
		}),
		QueuedUploaders: f.NewGauge(prometheus.GaugeOpts{
			Name: "rdv_queued_uploaders",
			Help: "Number of uploaders currently queued awaiting a downloader.",
		}),
	}
}

// Handler returns the HTTP handler serving this tracker's metrics.
func (t *Tracker) Handler() http.Handler {
	return promhttp.HandlerFor(t.reg, promhttp.HandlerOpts{})
}
