package ingestion

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
)

// batchWait bounds how long Worker waits to fill an adaptive batch before
// indexing whatever it has collected.
const batchWait = 2 * time.Second

// Extractor turns a platform message's document into an indexable
// MediaFile, deciding file type/caption normalization.
type Extractor func(platform.Message) (models.MediaFile, bool)

// Worker drains a Queue, extracts MediaFile records from each batch, and
// bulk-saves them, suitable for registration as a suture.Service.
type Worker struct {
	queue     *Queue
	client    platform.Client
	index     *mediaindex.Index
	extractor Extractor
	log       zerolog.Logger
}

// NewWorker builds a Worker.
func NewWorker(queue *Queue, client platform.Client, index *mediaindex.Index, extractor Extractor, log zerolog.Logger) *Worker {
	return &Worker{queue: queue, client: client, index: index, extractor: extractor, log: log}
}

// Serve implements suture.Service: it loops draining batches from the
// queue and bulk-indexing them until ctx is cancelled.
func (w *Worker) Serve(ctx context.Context) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		batch := w.queue.nextBatch(ctx, batchWait)
		if len(batch) == 0 {
			continue
		}
		if err := w.indexBatch(ctx, batch); err != nil {
			w.log.Error().Err(err).Int("batch_size", len(batch)).Msg("failed to index message batch")
		}
	}
}

func (w *Worker) indexBatch(ctx context.Context, batch []Item) error {
	byChat := make(map[int64][]int64)
	for _, item := range batch {
		byChat[item.ChatID] = append(byChat[item.ChatID], item.MessageID)
	}

	var files []models.MediaFile
	for chatID, ids := range byChat {
		messages, err := w.client.GetMessages(ctx, chatID, ids)
		if err != nil {
			w.log.Error().Err(err).Int64("chat_id", chatID).Msg("failed to fetch messages for indexing")
			continue
		}
		for _, m := range messages {
			if f, ok := w.extractor(m); ok {
				files = append(files, f)
			}
		}
	}
	if len(files) == 0 {
		return nil
	}

	result, err := w.index.BulkSaveMedia(ctx, files)
	if err != nil {
		return err
	}
	w.log.Info().Int("saved", result.Saved).Int("duplicate", result.Duplicate).Int("errored", result.Errored).Msg("indexed message batch")
	return nil
}
