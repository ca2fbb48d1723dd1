package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Download outcomes used as the "outcome" label.
const (
	OutcomeFetched       = "fetched"
	OutcomeExtraction    = "extraction_failed"
	OutcomeOutputMissing = "output_missing"
	OutcomeError         = "error"
)

var (
	DownloadsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vdl",
		Name:      "downloads_total",
		Help:      "Total number of download requests by outcome",
	}, []string{"outcome"})

	DownloadDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vdl",
		Name:      "download_duration_seconds",
		Help:      "Time spent fetching media through the extractor",
		Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
	}, []string{"outcome"})

	FetchesInFlight = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vdl",
		Name:      "fetches_in_flight",
		Help:      "Number of extractor processes currently running",
	})

	FetchesWaiting = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "vdl",
		Name:      "fetches_waiting",
		Help:      "Number of requests waiting for a fetch slot",
	})

	ArtifactBytesServed = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vdl",
		Name:      "artifact_bytes_served_total",
		Help:      "Total bytes of downloaded media written to clients",
	})

	ArtifactsSwept = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "vdl",
		Name:      "artifacts_swept_total",
		Help:      "Orphaned scratch directories removed by the sweeper",
	})

	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vdl",
		Name:      "http_request_duration_seconds",
		Help:      "HTTP request duration",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})
)
