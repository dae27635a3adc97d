// Package broadcast fans a single message out to every principal (or an
// explicit target list) in paged batches, pacing sends with a token-bucket
// limiter and an adaptive inter-batch delay, and removing principals whose
// chat has gone away, grounded on core/services/broadcast.py's
// BroadcastService.
package broadcast

import (
	"context"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
	"github.com/filevault/botcore/internal/store"
)

const (
	batchSize           = 50
	delayBetweenBatches = 2 * time.Second
	progressEvery       = 50

	// sendsPerSecond paces individual sends within a batch so a 50-chat
	// batch doesn't burst all at once against the platform's flood limit.
	sendsPerSecond = 25
)

// Stats mirrors broadcast_to_users' returned counters.
type Stats struct {
	Total   int
	Success int
	Blocked int
	Deleted int
	Failed  int
}

func (s Stats) processed() int { return s.Success + s.Blocked + s.Deleted + s.Failed }

// ProgressFunc is invoked roughly every progressEvery processed sends.
type ProgressFunc func(Stats)

// Service fans a message out to principals.
type Service struct {
	client  platform.Client
	repo    store.Repository[models.Principal]
	delay   time.Duration
	limiter *rate.Limiter
}

// New builds a Service.
func New(client platform.Client, coll store.Collection) *Service {
	return &Service{
		client:  client,
		repo:    store.NewRepository[models.Principal](coll),
		delay:   delayBetweenBatches,
		limiter: rate.NewLimiter(sendsPerSecond, 1),
	}
}

// SendFunc delivers the broadcast payload to a single chat; callers supply
// this to either copy a message or send fresh text.
type SendFunc func(ctx context.Context, chatID int64) error

// BroadcastToUsers fans sendFn out to every non-banned principal, or to
// targetIDs when provided, in batches of batchSize, pacing itself twice as
// slowly whenever the rolling success rate drops below 0.5, and removing
// principals whose chat classifies as permanently gone.
func (s *Service) BroadcastToUsers(ctx context.Context, sendFn SendFunc, targetIDs []int64, progress ProgressFunc) (Stats, error) {
	var stats Stats
	lastProgressAt := 0
	offset := 0

	for {
		var batch []int64
		if targetIDs != nil {
			if offset >= len(targetIDs) {
				break
			}
			end := offset + batchSize
			if end > len(targetIDs) {
				end = len(targetIDs)
			}
			batch = targetIDs[offset:end]
		} else {
			principals, err := s.repo.FindMany(ctx, map[string]any{"status": map[string]any{"$ne": string(models.PrincipalBanned)}}, store.FindOptions{
				Skip: int64(offset), Limit: int64(batchSize),
			})
			if err != nil {
				return stats, apperr.Wrap(apperr.DatabaseError, "list broadcast targets", err)
			}
			if len(principals) == 0 {
				break
			}
			batch = make([]int64, len(principals))
			for i, p := range principals {
				batch[i] = p.ID
			}
		}
		if len(batch) == 0 {
			break
		}

		for _, chatID := range batch {
			if err := s.limiter.Wait(ctx); err != nil {
				return stats, ctx.Err()
			}

			stats.Total++
			err := sendFn(ctx, chatID)
			if err == nil {
				stats.Success++
				continue
			}
			switch classifyError(err) {
			case classBlocked:
				stats.Blocked++
			case classDeleted:
				stats.Deleted++
				_, _ = s.repo.Delete(ctx, chatID)
			default:
				stats.Failed++
			}
		}

		if progress != nil && stats.processed()-lastProgressAt >= progressEvery {
			progress(stats)
			lastProgressAt = stats.processed()
		}

		delay := s.delay
		if stats.Total > 0 && float64(stats.Success)/float64(stats.Total) < 0.5 {
			delay *= 2
		}
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return stats, ctx.Err()
		}

		offset += batchSize
	}

	if progress != nil {
		progress(stats)
	}
	return stats, nil
}

type errorClass int

const (
	classFailed errorClass = iota
	classBlocked
	classDeleted
)

// classifyError buckets a send failure the same way broadcast_to_users
// pattern-matches the platform error message.
func classifyError(err error) errorClass {
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "blocked") || strings.Contains(msg, "forbidden"):
		return classBlocked
	case strings.Contains(msg, "user not found") || strings.Contains(msg, "chat not found"):
		return classDeleted
	default:
		return classFailed
	}
}
