// Package autodelete schedules best-effort deletion of delivered messages
// after a configured delay, grounded on the teacher's own self-deleting
// background task and handlers/deeplink.py's _auto_delete_message.
package autodelete

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/filevault/botcore/internal/platform"
)

// Scheduler fires a platform delete for one message after a delay,
// swallowing delete errors since the message may already be gone.
type Scheduler struct {
	client platform.Client
	log    zerolog.Logger
}

// New builds a Scheduler.
func New(client platform.Client, log zerolog.Logger) *Scheduler {
	return &Scheduler{client: client, log: log}
}

// Schedule deletes chatID/messageID after delay on its own goroutine. It
// does not block the caller and is cancelled if ctx is done first.
func (s *Scheduler) Schedule(ctx context.Context, chatID, messageID int64, delay time.Duration) {
	if delay <= 0 {
		return
	}
	go func() {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
		}
		if err := s.client.DeleteMessages(context.Background(), chatID, []int64{messageID}); err != nil {
			s.log.Debug().Err(err).Int64("chat_id", chatID).Int64("message_id", messageID).Msg("auto-delete failed")
		}
	}()
}
