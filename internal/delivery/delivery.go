package delivery

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/access"
	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/delivery/autodelete"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/platform"
	"github.com/filevault/botcore/internal/ratelimit"
)

// Engine delivers indexed files to principals, reserving quota and routing
// every platform call through a circuit breaker and semaphore.
type Engine struct {
	client    platform.Client
	index     *mediaindex.Index
	access    *access.Engine
	breakers  *ratelimit.Breakers
	sems      *ratelimit.Semaphores
	autodel   *autodelete.Scheduler
	caption   CaptionConfig
	autoDeleteMinutes int
}

// Config bundles an Engine's collaborators.
type Config struct {
	Client            platform.Client
	Index             *mediaindex.Index
	Access            *access.Engine
	Breakers          *ratelimit.Breakers
	Semaphores        *ratelimit.Semaphores
	Autodelete        *autodelete.Scheduler
	Caption           CaptionConfig
	AutoDeleteMinutes int
}

// New builds an Engine.
func New(cfg Config) *Engine {
	return &Engine{
		client:            cfg.Client,
		index:             cfg.Index,
		access:            cfg.Access,
		breakers:          cfg.Breakers,
		sems:              cfg.Semaphores,
		autodel:           cfg.Autodelete,
		caption:           cfg.Caption,
		autoDeleteMinutes: cfg.AutoDeleteMinutes,
	}
}

// SendFile delivers a single file identified by fileUniqueID to
// principalID, after an access/quota check.
func (e *Engine) SendFile(ctx context.Context, principalID int64, ownerID *int64, policy access.Policy, fileUniqueID string, protect bool) (platform.Message, error) {
	decision, err := e.access.CanRetrieve(ctx, principalID, ownerID, policy)
	if err != nil {
		return platform.Message{}, err
	}
	if !decision.Allowed {
		return platform.Message{}, apperr.New(apperr.RateLimitExceeded, decision.Reason)
	}

	file, err := e.index.FindFile(ctx, fileUniqueID)
	if err != nil {
		return platform.Message{}, err
	}
	if file == nil {
		return platform.Message{}, apperr.New(apperr.NotFound, "file not found")
	}

	caption := FormatCaption(e.caption, *file, false, e.autoDeleteMinutes)

	result, err := ratelimit.Guarded(ctx, e.breakers, e.sems, "send_cached_media", "platform_send", func(ctx context.Context) (any, error) {
		return e.client.SendCachedMedia(ctx, principalID, file.FileID, caption, protect)
	})
	if err != nil {
		return platform.Message{}, err
	}
	msg := result.(platform.Message)

	if e.autodel != nil && e.autoDeleteMinutes > 0 {
		e.autodel.Schedule(ctx, msg.ChatID, msg.ID, time.Duration(e.autoDeleteMinutes)*time.Minute)
	}
	return msg, nil
}

// BulkResult summarizes a bulk send.
type BulkResult struct {
	Sent  int
	Total int
}

// SendAll delivers every file in files to principalID, reserving quota for
// the whole batch up front and releasing any unused portion if delivery
// stops early (e.g. on a platform error), grounded on
// handlers/deeplink.py's _send_all_from_search.
func (e *Engine) SendAll(ctx context.Context, principalID int64, dailyLimit int, files []models.MediaFile, protect bool) (BulkResult, error) {
	requested := len(files)
	ok, reserved, reason, err := e.access.ReserveQuotaAtomic(ctx, principalID, requested, dailyLimit)
	if err != nil {
		return BulkResult{}, err
	}
	if !ok {
		return BulkResult{}, apperr.New(apperr.RateLimitExceeded, reason)
	}

	sent := 0
	for i := 0; i < reserved && i < len(files); i++ {
		file := files[i]
		caption := FormatCaption(e.caption, file, true, e.autoDeleteMinutes)
		result, err := ratelimit.Guarded(ctx, e.breakers, e.sems, "send_cached_media", "platform_send", func(ctx context.Context) (any, error) {
			return e.client.SendCachedMedia(ctx, principalID, file.FileID, caption, protect)
		})
		if err != nil {
			break
		}
		msg := result.(platform.Message)
		if e.autodel != nil && e.autoDeleteMinutes > 0 {
			e.autodel.Schedule(ctx, msg.ChatID, msg.ID, time.Duration(e.autoDeleteMinutes)*time.Minute)
		}
		sent++
	}

	if unused := reserved - sent; unused > 0 {
		_ = e.access.ReleaseQuota(ctx, principalID, unused)
	}
	return BulkResult{Sent: sent, Total: requested}, nil
}

// SendRange copies messages [fromID, toID] from sourceChatID to
// principalID via the platform's channel-copy primitive, grounded on
// FileStoreService.send_channel_files.
func (e *Engine) SendRange(ctx context.Context, principalID, sourceChatID, fromID, toID int64, protect bool) (BulkResult, error) {
	iter, err := e.client.MessageIterator(ctx, sourceChatID, fromID, toID)
	if err != nil {
		return BulkResult{}, apperr.Wrap(apperr.TelegramAPIError, "open message iterator", err)
	}
	defer iter.Close()

	var sent, total int
	for {
		msg, ok, err := iter.Next(ctx)
		if err != nil {
			break
		}
		if !ok {
			break
		}
		if msg.Document == nil {
			continue
		}
		total++
		_, err = ratelimit.Guarded(ctx, e.breakers, e.sems, "copy_message", "platform_send", func(ctx context.Context) (any, error) {
			return e.client.Copy(ctx, principalID, sourceChatID, msg.ID, protect)
		})
		if err != nil {
			continue
		}
		sent++
	}
	return BulkResult{Sent: sent, Total: total}, nil
}
