// Package deletion removes indexed files one at a time (via a forwarded
// delete-channel message or an explicit file_unique_id) or in bulk by
// keyword, grounded on handlers/delete.py's DeleteHandler.
package deletion

import (
	"time"

	"github.com/rs/zerolog"
)

// queueCapacity mirrors delete_queue's asyncio.Queue(maxsize=1000).
const queueCapacity = 1000

// Item is a single file queued for deletion.
type Item struct {
	FileUniqueID string
	FileName     string
	Queued       time.Time
}

// Queue is a bounded, drop-when-full delete request queue. Unlike the
// ingestion queue it has no overflow tier: the original drops and logs a
// warning on QueueFull rather than buffering further.
type Queue struct {
	ch  chan Item
	log zerolog.Logger
}

// NewQueue builds an empty Queue.
func NewQueue(log zerolog.Logger) *Queue {
	return &Queue{ch: make(chan Item, queueCapacity), log: log}
}

// Push enqueues item, dropping it with a warning if the queue is full.
func (q *Queue) Push(item Item) {
	select {
	case q.ch <- item:
	default:
		q.log.Warn().Str("file_name", item.FileName).Msg("delete queue is full, skipping file")
	}
}

// Depth reports the number of items currently queued.
func (q *Queue) Depth() int { return len(q.ch) }
