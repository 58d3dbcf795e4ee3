// Package metrics provides Prometheus instrumentation for the tag library.
//
// All metrics are prefixed with "tags_" and registered with the default
// registry through promauto.
//
// # Metric Categories
//
// ## HTTP Metrics
//
// Recorded by the exporter middleware of tagctl serve-metrics:
//
//   - HTTPRequestsTotal: Counter of requests by method, path and status
//   - HTTPRequestDuration: Histogram of request duration
//   - HTTPRequestsInFlight: Gauge of requests being served
//
// ## Database Metrics
//
//   - DBQueryTotal: Counter of queries by operation and status
//   - DBQueryDuration: Histogram of query duration by operation
//   - DBTransactionDuration: Histogram of transaction duration by result
//   - DBConnectionsOpen: Gauge of open database connections
//
// ## Tag Graph Metrics
//
//   - TagRegistrationsTotal: Counter of registrations by outcome
//   - TagMergesTotal: Counter of merges by status
//   - TagMergeLinksTotal: Counter of content links relinked or dropped by merges
//   - TagGraphTotal: Gauge of tags, aliases, links and content rows
//
// ## Query Compiler Metrics
//
//   - QueryGroups: Histogram of tag groups per compiled query
//   - QueryPlaceholders: Histogram of bound tag ids per compiled query
//   - QueryRowsReturned: Histogram of returned rows by ordering mode
//
// # Collector
//
// [Collector] periodically samples a [StatsProvider] and updates the
// TagGraphTotal gauges:
//
//	collector := metrics.NewCollector(store, db, time.Minute)
//	collector.Start()
//	defer collector.Stop()
package metrics
