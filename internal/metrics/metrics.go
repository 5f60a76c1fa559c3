package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Archive metrics
	PostsArchived = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archiver_posts_archived_total",
			Help: "Total number of posts stored in the archive",
		},
	)

	PostsSkipped = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archiver_posts_skipped_total",
			Help: "Total number of posts skipped because they were already archived",
		},
	)

	ArchiveJobsRunning = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "archiver_jobs_running",
			Help: "Number of user archive jobs currently running",
		},
	)

	// Remote instance metrics
	RemoteRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archiver_remote_requests_total",
			Help: "Total number of remote API requests by endpoint and outcome",
		},
		[]string{"endpoint", "outcome"},
	)

	RemoteRetriesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "archiver_remote_retries_total",
			Help: "Total number of retried remote API requests",
		},
	)

	// Media metrics
	MediaDownloadsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archiver_media_downloads_total",
			Help: "Total number of media downloads by outcome",
		},
		[]string{"outcome"},
	)

	// Snapshot metrics
	SnapshotCapturesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "archiver_snapshot_captures_total",
			Help: "Total number of snapshot captures by outcome",
		},
		[]string{"outcome"},
	)
)

func init() {
	// Register all metrics
	prometheus.MustRegister(PostsArchived)
	prometheus.MustRegister(PostsSkipped)
	prometheus.MustRegister(ArchiveJobsRunning)
	prometheus.MustRegister(RemoteRequestsTotal)
	prometheus.MustRegister(RemoteRetriesTotal)
	prometheus.MustRegister(MediaDownloadsTotal)
	prometheus.MustRegister(SnapshotCapturesTotal)
}

// Handler returns the Prometheus HTTP handler
func Handler() http.Handler {
	return promhttp.Handler()
}
