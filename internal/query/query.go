// Package query implements the search pipeline and result-session
// materialization backing the "Send All" flow, grounded on
// handlers/search.py's _send_search_results.
package query

import (
	"context"
	"crypto/rand"
	"encoding/hex"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/mediaindex"
	"github.com/filevault/botcore/internal/models"
)

// Engine wraps a mediaindex.Index with session materialization for
// bulk-send ("Send All") callbacks.
type Engine struct {
	index *mediaindex.Index
	cache cachestore.Store
}

// New builds an Engine.
func New(index *mediaindex.Index, cache cachestore.Store) *Engine {
	return &Engine{index: index, cache: cache}
}

// Search runs a paginated keyword search, delegating to the media index.
func (e *Engine) Search(ctx context.Context, query string, fileType models.FileType, offset, limit int, useCaption bool) (mediaindex.SearchResult, error) {
	return e.index.SearchFiles(ctx, query, fileType, offset, limit, useCaption)
}

// MaterializeSession stores the full result set for principalID behind a
// short random session id, returning the id to embed in a "Send All"
// callback. Sessions expire after cachestore.TTL.SearchSession.
func (e *Engine) MaterializeSession(ctx context.Context, principalID int64, query string, files []models.MediaFile) (string, error) {
	sessionID, err := newSessionID()
	if err != nil {
		return "", apperr.Wrap(apperr.SystemError, "generate session id", err)
	}

	session := models.ResultSession{
		SessionID:   sessionID,
		PrincipalID: principalID,
		Query:       query,
		FileRefs:    files,
	}

	key := cachestore.Keys.SearchSession(principalID, sessionID)
	if !e.cache.Set(ctx, key, session, cachestore.TTL.SearchSession) {
		return "", apperr.New(apperr.SystemError, "failed to store search session")
	}
	return sessionID, nil
}

// LoadSession fetches a previously materialized session, returning
// (session, false, nil) when it has expired or never existed.
func (e *Engine) LoadSession(ctx context.Context, principalID int64, sessionID string) (models.ResultSession, bool, error) {
	var session models.ResultSession
	key := cachestore.Keys.SearchSession(principalID, sessionID)
	if !e.cache.Get(ctx, key, &session) {
		return models.ResultSession{}, false, nil
	}
	return session, true, nil
}

// newSessionID generates an 8-hex-character random id, matching
// uuid.uuid4().hex[:8]'s length and alphabet.
func newSessionID() (string, error) {
	b := make([]byte, 4)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}
