package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce       sync.Once
	requestsTotal      *prometheus.CounterVec
	latencySeconds     *prometheus.HistogramVec
	errorsTotal        *prometheus.CounterVec
	uploadLatency      prometheus.Histogram
	uploadsRejected    *prometheus.CounterVec
	peersSkipped       *prometheus.CounterVec
	submissionsFlagged prometheus.Counter
)

// RegisterMetrics initialises the Prometheus collectors used by the API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		requestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "integrity_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		latencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "integrity_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		errorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "integrity_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		uploadLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "integrity_upload_duration_seconds",
			Help:    "End-to-end duration of the submission upload pipeline.",
			Buckets: []float64{0.1, 0.25, 0.5, 1.0, 2.5, 5.0, 10.0, 30.0},
		})

		uploadsRejected = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "integrity_uploads_rejected_total",
			Help: "Uploads rejected before scoring, by reason.",
		}, []string{"reason"})

		peersSkipped = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "integrity_peers_skipped_total",
			Help: "Peer documents skipped during a comparison, by reason.",
		}, []string{"reason"})

		submissionsFlagged = prometheus.NewCounter(prometheus.CounterOpts{
			Name: "integrity_submissions_flagged_total",
			Help: "Submissions flagged for exceeding the similarity threshold.",
		})

		prometheus.MustRegister(requestsTotal, latencySeconds, errorsTotal, uploadLatency, uploadsRejected, peersSkipped, submissionsFlagged)
	})
}

// Requests exposes the counter for API requests.
func Requests() *prometheus.CounterVec {
	RegisterMetrics()
	return requestsTotal
}

// Latency exposes the latency histogram for API requests.
func Latency() *prometheus.HistogramVec {
	RegisterMetrics()
	return latencySeconds
}

// Errors exposes the counter for error responses.
func Errors() *prometheus.CounterVec {
	RegisterMetrics()
	return errorsTotal
}

// UploadLatency exposes the histogram for the upload pipeline.
func UploadLatency() prometheus.Histogram {
	RegisterMetrics()
	return uploadLatency
}

// UploadsRejected exposes the counter for rejected uploads.
func UploadsRejected() *prometheus.CounterVec {
	RegisterMetrics()
	return uploadsRejected
}

// PeersSkipped exposes the counter for skipped peer documents.
func PeersSkipped() *prometheus.CounterVec {
	RegisterMetrics()
	return peersSkipped
}

// SubmissionsFlagged exposes the counter for flagged submissions.
func SubmissionsFlagged() prometheus.Counter {
	RegisterMetrics()
	return submissionsFlagged
}
