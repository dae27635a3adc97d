package deletion

import (
	"context"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/mediaindex"
)

// BulkDeleter runs the keyword-confirm-then-delete flow for /deleteall.
// The confirmation window itself lives in the cache store, keyed per
// principal, and expires via TTL rather than a manual deadline check,
// matching the rest of this repo's session-like state. The confirmation
// step itself (prompting and awaiting the reply) belongs to the caller;
// BulkDeleter only tracks whether a window is open and executes the
// delete once confirmed.
type BulkDeleter struct {
	index *mediaindex.Index
	cache cachestore.Store
}

// NewBulkDeleter builds a BulkDeleter.
func NewBulkDeleter(index *mediaindex.Index, cache cachestore.Store) *BulkDeleter {
	return &BulkDeleter{index: index, cache: cache}
}

// RequestConfirmation opens a cachestore.TTL.DeleteAllConfirm-long window
// during which Confirm(principalID) will execute the delete for keyword,
// mirroring handle_deleteall_command's 30-second wait_for_message timeout.
func (b *BulkDeleter) RequestConfirmation(ctx context.Context, principalID int64, keyword string) {
	b.cache.Set(ctx, cachestore.Keys.DeleteAllPending(principalID), keyword, cachestore.TTL.DeleteAllConfirm)
}

// Cancel discards any open confirmation for principalID.
func (b *BulkDeleter) Cancel(ctx context.Context, principalID int64) {
	b.cache.Delete(ctx, cachestore.Keys.DeleteAllPending(principalID))
}

// Confirm executes the pending deletion for principalID if a confirmation
// window is still open; the cache entry having expired or never existed
// both surface as "no pending deletion".
func (b *BulkDeleter) Confirm(ctx context.Context, principalID int64) (int, error) {
	key := cachestore.Keys.DeleteAllPending(principalID)
	var keyword string
	if !b.cache.Get(ctx, key, &keyword) {
		return 0, apperr.New(apperr.InvalidInput, "no pending deletion to confirm")
	}
	b.cache.Delete(ctx, key)
	return b.index.DeleteFilesByKeyword(ctx, keyword)
}
