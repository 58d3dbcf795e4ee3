package metrics

import (
	"context"
	"time"

	"media-tags/internal/logging"
)

// StatsProvider interface for collecting stats
type StatsProvider interface {
	GraphStats(ctx context.Context) (Stats, error)
}

// DBMetricsUpdater refreshes connection-pool gauges.
type DBMetricsUpdater interface {
	UpdateDBMetrics()
}

// Stats holds the current statistics
type Stats struct {
	TotalTags    int
	TotalAliases int
	TotalLinks   int
	TotalContent int
}

// Collector periodically collects and updates metrics
type Collector struct {
	statsProvider StatsProvider
	dbUpdater     DBMetricsUpdater
	interval      time.Duration
	timeout       time.Duration
	stopChan      chan struct{}
	doneChan      chan struct{}
}

// NewCollector creates a new metrics collector. dbUpdater may be nil.
func NewCollector(provider StatsProvider, dbUpdater DBMetricsUpdater, interval time.Duration) *Collector {
	if interval <= 0 {
		interval = time.Minute
	}
	return &Collector{
		statsProvider: provider,
		dbUpdater:     dbUpdater,
		interval:      interval,
		timeout:       10 * time.Second,
		stopChan:      make(chan struct{}),
		doneChan:      make(chan struct{}),
	}
}

// Start begins the metrics collection loop
func (c *Collector) Start() {
	go c.collectLoop()
}

// Stop stops the metrics collection and waits for the loop to exit.
func (c *Collector) Stop() {
	close(c.stopChan)
	<-c.doneChan
}

func (c *Collector) collectLoop() {
	defer close(c.doneChan)

	// Collect immediately on start
	c.collect()

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			c.collect()
		case <-c.stopChan:
			return
		}
	}
}

func (c *Collector) collect() {
	if c.dbUpdater != nil {
		c.dbUpdater.UpdateDBMetrics()
	}

	if c.statsProvider == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	stats, err := c.statsProvider.GraphStats(ctx)
	if err != nil {
		logging.Warn("Metrics collection failed: %v", err)
		return
	}

	TagGraphTotal.WithLabelValues("tags").Set(float64(stats.TotalTags))
	TagGraphTotal.WithLabelValues("aliases").Set(float64(stats.TotalAliases))
	TagGraphTotal.WithLabelValues("links").Set(float64(stats.TotalLinks))
	TagGraphTotal.WithLabelValues("content").Set(float64(stats.TotalContent))

	logging.Debug("Metrics collected: tags=%d, aliases=%d, links=%d, content=%d",
		stats.TotalTags, stats.TotalAliases, stats.TotalLinks, stats.TotalContent)
}
