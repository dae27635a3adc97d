// Package ingestion buffers inbound channel messages behind a bounded
// queue with an overflow spillover, batches them for bulk indexing, and
// drives the admin "index this channel's history" range scan, grounded on
// handlers/channel.py and handlers/indexing.py.
package ingestion

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// queueCapacity and overflowCapacity mirror the original's
// asyncio.Queue(maxsize=1000) and max_overflow_size=500.
const (
	queueCapacity    = 1000
	overflowCapacity = 500
)

// Item is one message queued for indexing.
type Item struct {
	ChatID    int64
	MessageID int64
	Queued    time.Time
}

// Queue is a bounded primary channel with an in-memory overflow slice,
// mirroring message_queue/overflow_queue's two-tier buffering.
type Queue struct {
	ch chan Item

	mu          sync.Mutex
	overflow    []Item
	fullWarnings int

	log zerolog.Logger
}

// NewQueue builds an empty Queue.
func NewQueue(log zerolog.Logger) *Queue {
	return &Queue{
		ch:  make(chan Item, queueCapacity),
		log: log,
	}
}

// Push enqueues item, spilling to the overflow slice when the primary
// channel is full, and dropping the oldest overflow item once the
// overflow is itself at capacity.
func (q *Queue) Push(item Item) {
	select {
	case q.ch <- item:
		return
	default:
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if len(q.overflow) < overflowCapacity {
		q.overflow = append(q.overflow, item)
		return
	}
	q.overflow = append(q.overflow[1:], item)
	q.fullWarnings++
	if q.fullWarnings%10 == 0 {
		q.log.Warn().Int("warnings", q.fullWarnings).Msg("ingestion queue overflow repeatedly dropping items")
	}
}

// drainOverflow moves as many overflow items as fit into the primary
// channel, leaving headroom so producers calling Push don't immediately
// spill again, mirroring _process_overflow_queue's headroom check.
func (q *Queue) drainOverflow() {
	const headroom = 5
	q.mu.Lock()
	defer q.mu.Unlock()
	for len(q.overflow) > 0 && len(q.ch) < cap(q.ch)-headroom {
		item := q.overflow[0]
		select {
		case q.ch <- item:
			q.overflow = q.overflow[1:]
		default:
			return
		}
	}
}

// batchSize returns the adaptive batch size for the current queue depth,
// mirroring _process_message_queue's max_batch_size tiers.
func (q *Queue) batchSize() int {
	switch depth := len(q.ch); {
	case depth > 500:
		return 50
	case depth > 200:
		return 30
	default:
		return 20
	}
}

// Depth reports the primary channel's current occupancy and the overflow
// slice's length, for status reporting.
func (q *Queue) Depth() (primary, overflow int) {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.ch), len(q.overflow)
}

// nextBatch blocks for up to batchWait collecting up to batchSize items,
// returning early once the batch is full.
func (q *Queue) nextBatch(ctx context.Context, batchWait time.Duration) []Item {
	q.drainOverflow()
	size := q.batchSize()
	batch := make([]Item, 0, size)

	deadline := time.NewTimer(batchWait)
	defer deadline.Stop()

	for len(batch) < size {
		select {
		case item := <-q.ch:
			batch = append(batch, item)
		case <-deadline.C:
			return batch
		case <-ctx.Done():
			return batch
		}
	}
	return batch
}
