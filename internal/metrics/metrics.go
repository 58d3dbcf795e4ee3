package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics for the exporter endpoints
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tags_http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	HTTPRequestsInFlight = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tags_http_requests_in_flight",
			Help: "Number of HTTP requests currently being processed",
		},
	)
)

// Database metrics
var (
	DBQueryTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_db_queries_total",
			Help: "Total number of database queries",
		},
		[]string{"operation", "status"},
	)

	DBQueryDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tags_db_query_duration_seconds",
			Help:    "Database query duration in seconds",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)

	DBTransactionDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tags_db_transaction_duration_seconds",
			Help:    "Database transaction duration in seconds by result",
			Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"result"}, // "commit", "rollback"
	)

	DBConnectionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tags_db_connections_open",
			Help: "Number of open database connections",
		},
	)
)

// Tag graph metrics
var (
	TagRegistrationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_registrations_total",
			Help: "Total number of tag registrations by outcome",
		},
		[]string{"outcome"}, // "inserted", "already_exists", "category_upgraded", "merged_into_existing", "error"
	)

	TagMergesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_merges_total",
			Help: "Total number of tag merges",
		},
		[]string{"status"},
	)

	TagMergeLinksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_merge_links_total",
			Help: "Content links touched by tag merges",
		},
		[]string{"action"}, // "relinked", "dropped"
	)

	TagGraphTotal = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tags_graph_total",
			Help: "Size of the tag graph by kind",
		},
		[]string{"kind"}, // "tags", "aliases", "links", "content"
	)
)

// Query compiler metrics
var (
	QueryGroups = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tags_query_groups",
			Help:    "Number of tag groups per compiled content query",
			Buckets: []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)

	QueryPlaceholders = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tags_query_placeholders",
			Help:    "Number of bound tag ids per compiled content query",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
	)

	QueryRowsReturned = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "tags_query_rows_returned",
			Help:    "Number of content rows returned by content queries",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"ordering"},
	)
)

// Import metrics
var (
	ImportDocumentsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "tags_import_documents_total",
			Help: "Tag documents processed by imports",
		},
		[]string{"result"}, // "registered", "existing", "failed"
	)

	ImportWorkers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "tags_import_workers",
			Help: "Number of workers used by the last import",
		},
	)

	ImportDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "tags_import_duration_seconds",
			Help:    "Duration of tag imports",
			Buckets: []float64{0.1, 0.5, 1, 5, 10, 30, 60, 300},
		},
	)
)

// Application info metric
var (
	AppInfo = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "tags_app_info",
			Help: "Application information",
		},
		[]string{"version", "commit", "go_version"},
	)
)

// SetAppInfo sets the application info metric
func SetAppInfo(version, commit, goVersion string) {
	AppInfo.WithLabelValues(version, commit, goVersion).Set(1)
}
