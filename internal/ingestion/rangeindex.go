package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
)

// rangeBatchSize mirrors index_files' default batch_size.
const rangeBatchSize = 50

// RangeStats mirrors index_files' returned statistics.
type RangeStats struct {
	TotalMessages int
	TotalFiles    int
	Duplicate     int
	Errors        int
	NoMedia       int
}

// ProgressFunc is invoked after each processed batch.
type ProgressFunc func(RangeStats)

// RangeDriver runs the admin-triggered full-history index of one channel,
// holding an exclusive lock so only one range scan runs at a time
// (the live ingestion Worker keeps draining its own queue independently),
// grounded on core/services/indexing.py's IndexingService.
type RangeDriver struct {
	client    platform.Client
	index     *mediaindex.Index
	extractor Extractor
	log       zerolog.Logger

	mu       sync.Mutex
	indexing bool
	cancel   bool
	skip     int
}

// NewRangeDriver builds a RangeDriver.
func NewRangeDriver(client platform.Client, index *mediaindex.Index, extractor Extractor, log zerolog.Logger) *RangeDriver {
	return &RangeDriver{client: client, index: index, extractor: extractor, log: log}
}

// IsIndexing reports whether a range scan currently holds the lock.
func (d *RangeDriver) IsIndexing() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.indexing
}

// SetSkip sets the starting message offset for the next Run call.
func (d *RangeDriver) SetSkip(skip int) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.skip = skip
}

// Cancel requests the in-progress Run to stop after its current batch.
func (d *RangeDriver) Cancel() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.cancel = true
}

// Run scans chatID from the current skip offset up to lastMsgID,
// extracting and bulk-saving media in batches of rangeBatchSize, invoking
// progress after each batch. Only one Run executes at a time; a
// concurrent call returns apperr.InvalidInput.
func (d *RangeDriver) Run(ctx context.Context, chatID int64, lastMsgID int64, progress ProgressFunc) (RangeStats, error) {
	d.mu.Lock()
	if d.indexing {
		d.mu.Unlock()
		return RangeStats{}, apperr.New(apperr.InvalidInput, "an indexing run is already in progress")
	}
	d.indexing = true
	d.cancel = false
	fromID := int64(d.skip)
	d.mu.Unlock()

	defer func() {
		d.mu.Lock()
		d.indexing = false
		d.mu.Unlock()
	}()

	iter, err := d.client.MessageIterator(ctx, chatID, fromID, lastMsgID)
	if err != nil {
		return RangeStats{}, apperr.Wrap(apperr.TelegramAPIError, "open message iterator", err)
	}
	defer iter.Close()

	var stats RangeStats
	batch := make([]platform.Message, 0, rangeBatchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		bstats := d.processBatch(ctx, batch)
		stats.TotalFiles += bstats.TotalFiles
		stats.Duplicate += bstats.Duplicate
		stats.Errors += bstats.Errors
		stats.NoMedia += bstats.NoMedia
		batch = batch[:0]
		if progress != nil {
			progress(stats)
		}
	}

	for {
		if d.cancelRequested() {
			flush()
			break
		}
		msg, ok, err := iter.Next(ctx)
		if err != nil {
			flush()
			return stats, apperr.Wrap(apperr.TelegramAPIError, "iterate messages", err)
		}
		if !ok {
			break
		}
		stats.TotalMessages++
		batch = append(batch, msg)
		if len(batch) >= rangeBatchSize {
			flush()
			time.Sleep(time.Second) // throttle, mirrors progress_callback's 1s pause
		}
	}
	flush()
	return stats, nil
}

func (d *RangeDriver) cancelRequested() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.cancel
}

func (d *RangeDriver) processBatch(ctx context.Context, messages []platform.Message) RangeStats {
	var stats RangeStats
	var files []models.MediaFile
	for _, m := range messages {
		if m.Document == nil {
			stats.NoMedia++
			continue
		}
		f, ok := d.extractor(m)
		if !ok {
			stats.NoMedia++
			continue
		}
		files = append(files, f)
	}
	if len(files) == 0 {
		return stats
	}
	result, err := d.index.BulkSaveMedia(ctx, files)
	if err != nil {
		stats.Errors += len(files)
		return stats
	}
	stats.TotalFiles = result.Saved
	stats.Duplicate = result.Duplicate
	stats.Errors = result.Errored
	return stats
}
