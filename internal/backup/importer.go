package backup

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"media-tags/internal/database"
	"media-tags/internal/logging"
	"media-tags/internal/metrics"
	"media-tags/internal/tags"
	"media-tags/internal/workers"
)

// maxImportWorkers caps the default pool; more writers only queue on the
// database lock.
const maxImportWorkers = 8

// LastImportKey is the metadata key holding the time of the last import.
const LastImportKey = "last_import"

// ImporterConfig configures an Importer.
type ImporterConfig struct {
	// NumWorkers is the number of concurrent registrars (0 = auto)
	NumWorkers int
	// ChannelBuffer is the size of the document queue
	ChannelBuffer int
}

// DefaultImporterConfig sizes the pool from the CPU quota, honouring
// TAGS_WORKERS.
func DefaultImporterConfig() ImporterConfig {
	return ImporterConfig{
		NumWorkers:    workers.ForIO(maxImportWorkers),
		ChannelBuffer: 256,
	}
}

// Report counts what an import did.
type Report struct {
	Registered    int `json:"registered" yaml:"registered"`
	Existing      int `json:"existing" yaml:"existing"`
	AliasesAdded  int `json:"aliasesAdded" yaml:"aliases_added"`
	ParentsLinked int `json:"parentsLinked" yaml:"parents_linked"`
	Failed        int `json:"failed" yaml:"failed"`
}

// Importer restores tag documents into a session.
type Importer struct {
	session database.Session
	config  ImporterConfig

	mu  sync.Mutex
	ids map[TagKey]int64

	registered    atomic.Int64
	existing      atomic.Int64
	aliasesAdded  atomic.Int64
	parentsLinked atomic.Int64
	failed        atomic.Int64
}

// NewImporter creates an importer writing through s.
func NewImporter(s database.Session, config ImporterConfig) *Importer {
	if config.NumWorkers <= 0 {
		config.NumWorkers = workers.ForIO(maxImportWorkers)
	}
	if config.ChannelBuffer < 0 {
		config.ChannelBuffer = 0
	}
	return &Importer{
		session: s,
		config:  config,
		ids:     make(map[TagKey]int64),
	}
}

// Import registers every document, adds its extra aliases and then links
// parents. Failed documents are logged and counted without stopping the
// import; the returned error reports them after the import completes.
func (im *Importer) Import(ctx context.Context, dump Dump) (Report, error) {
	logging.Info("Starting tag import of %d documents with %d workers", len(dump.Tags), im.config.NumWorkers)
	startTime := time.Now()
	metrics.ImportWorkers.Set(float64(im.config.NumWorkers))

	jobs := make(chan TagDocument, im.config.ChannelBuffer)

	var wg sync.WaitGroup
	for range im.config.NumWorkers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for doc := range jobs {
				im.registerDocument(ctx, doc)
			}
		}()
	}

enqueue:
	for _, doc := range dump.Tags {
		select {
		case jobs <- doc:
		case <-ctx.Done():
			break enqueue
		}
	}
	close(jobs)
	wg.Wait()

	if err := ctx.Err(); err != nil {
		return im.report(), fmt.Errorf("tag import cancelled: %w", err)
	}

	im.linkParents(ctx, dump.Tags)

	duration := time.Since(startTime)
	metrics.ImportDuration.Observe(duration.Seconds())
	report := im.report()
	logging.Info("Tag import complete: %d registered, %d existing, %d aliases, %d parents in %v (failed: %d)",
		report.Registered, report.Existing, report.AliasesAdded, report.ParentsLinked, duration, report.Failed)

	if err := database.SetMetadata(ctx, im.session, LastImportKey, time.Now().UTC().Format(time.RFC3339)); err != nil {
		logging.Warn("Failed to record import time: %v", err)
	}

	if report.Failed > 0 {
		return report, fmt.Errorf("%d of %d tag documents failed to import", report.Failed, len(dump.Tags))
	}
	return report, nil
}

func (im *Importer) registerDocument(ctx context.Context, doc TagDocument) {
	if ctx.Err() != nil {
		return
	}

	category := doc.Category
	if category == "" {
		category = tags.CategoryContent
	}
	var primary string
	if len(doc.Aliases) > 0 {
		primary = doc.Aliases[0]
	}

	res, err := tags.Register(ctx, im.session, doc.Title, category, primary)
	if err != nil {
		im.fail(doc.Key(), err)
		return
	}
	switch res.Outcome {
	case tags.Inserted:
		im.registered.Add(1)
		metrics.ImportDocumentsTotal.WithLabelValues("registered").Inc()
	default:
		im.existing.Add(1)
		metrics.ImportDocumentsTotal.WithLabelValues("existing").Inc()
	}

	im.mu.Lock()
	im.ids[doc.Key()] = res.ID
	im.mu.Unlock()

	for _, alias := range doc.Aliases[min(1, len(doc.Aliases)):] {
		err := tags.AddAlias(ctx, im.session, res.ID, alias)
		switch {
		case err == nil:
			im.aliasesAdded.Add(1)
		case errors.Is(err, tags.ErrAliasExists):
			logging.Debug("Alias %q of %s already taken, skipping", alias, doc.Key())
		default:
			logging.Warn("Failed to add alias %q to %s: %v", alias, doc.Key(), err)
		}
	}
}

// linkParents runs after every document is registered, so parent keys
// defined anywhere in the dump resolve.
func (im *Importer) linkParents(ctx context.Context, docs []TagDocument) {
	for _, doc := range docs {
		if doc.Parent == nil {
			continue
		}
		childID, ok := im.ids[doc.Key()]
		if !ok {
			continue
		}

		parentID, ok := im.ids[*doc.Parent]
		if !ok {
			id, found, err := tags.CheckExists(ctx, im.session, doc.Parent.Title, doc.Parent.Category)
			if err != nil {
				im.fail(doc.Key(), err)
				continue
			}
			if !found {
				im.fail(doc.Key(), fmt.Errorf("%w: parent %s", tags.ErrTagNotFound, doc.Parent))
				continue
			}
			parentID = id
		}

		if err := tags.SetParent(ctx, im.session, childID, parentID); err != nil {
			im.fail(doc.Key(), err)
			continue
		}
		im.parentsLinked.Add(1)
	}
}

func (im *Importer) fail(key TagKey, err error) {
	im.failed.Add(1)
	metrics.ImportDocumentsTotal.WithLabelValues("failed").Inc()
	logging.Warn("Failed to import tag %s: %v", key, err)
}

func (im *Importer) report() Report {
	return Report{
		Registered:    int(im.registered.Load()),
		Existing:      int(im.existing.Load()),
		AliasesAdded:  int(im.aliasesAdded.Load()),
		ParentsLinked: int(im.parentsLinked.Load()),
		Failed:        int(im.failed.Load()),
	}
}
