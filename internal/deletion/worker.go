package deletion

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/mediaindex"
)

const (
	batchSize = 50
	batchWait = 5 * time.Second
)

// BatchResult summarizes one processed delete batch.
type BatchResult struct {
	Deleted  int
	NotFound int
	Errors   int
	Total    int
}

// SummaryFunc is invoked after each non-empty batch, used to post a
// deletion summary to a log channel.
type SummaryFunc func(BatchResult)

// Worker drains a Queue in batches, deleting each file from the index.
type Worker struct {
	queue   *Queue
	index   *mediaindex.Index
	summary SummaryFunc
	log     zerolog.Logger
}

// NewWorker builds a Worker. summary may be nil.
func NewWorker(queue *Queue, index *mediaindex.Index, summary SummaryFunc, log zerolog.Logger) *Worker {
	return &Worker{queue: queue, index: index, summary: summary, log: log}
}

// Serve drains the queue until ctx is cancelled, matching
// _process_delete_queue's collect-up-to-50-or-wait-5s loop.
func (w *Worker) Serve(ctx context.Context) error {
	w.log.Info().Msg("delete queue processor started")
	for {
		batch := w.nextBatch(ctx)
		if ctx.Err() != nil {
			return nil
		}
		if len(batch) == 0 {
			continue
		}
		result := w.processBatch(ctx, batch)
		if w.summary != nil && result.Deleted > 0 {
			w.summary(result)
		}
	}
}

func (w *Worker) nextBatch(ctx context.Context) []Item {
	deadline := time.NewTimer(batchWait)
	defer deadline.Stop()

	batch := make([]Item, 0, batchSize)
	for len(batch) < batchSize {
		select {
		case item := <-w.queue.ch:
			batch = append(batch, item)
		case <-deadline.C:
			return batch
		case <-ctx.Done():
			return batch
		}
	}
	return batch
}

func (w *Worker) processBatch(ctx context.Context, batch []Item) BatchResult {
	result := BatchResult{Total: len(batch)}
	for _, item := range batch {
		deleted, err := w.index.DeleteFile(ctx, item.FileUniqueID)
		switch {
		case err != nil:
			result.Errors++
			w.log.Error().Err(err).Str("file_unique_id", item.FileUniqueID).Msg("error deleting file")
		case deleted:
			result.Deleted++
		default:
			result.NotFound++
		}
	}
	w.log.Info().Int("deleted", result.Deleted).Int("not_found", result.NotFound).Int("errors", result.Errors).Msg("batch processing results")
	return result
}
