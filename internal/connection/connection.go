// Package connection manages a principal's linked groups and which one is
// active for filter/search context, grounded on
// repositories/connection.py's ConnectionRepository plus the DB-facing
// half of core/services/connection.py's ConnectionService (the
// Telegram-membership-verification half belongs to the handler layer
// above this package, which isn't built yet).
package connection

import (
	"context"
	"time"

	"github.com/filevault/botcore/internal/apperr"
	"github.com/filevault/botcore/internal/cachestore"
	"github.com/filevault/botcore/internal/models"
	"github.com/filevault/botcore/internal/store"
)

// Engine manages principal-to-group connections.
type Engine struct {
	repo  store.Repository[models.Connection]
	cache cachestore.Store
	clock func() time.Time
}

// New builds an Engine over coll.
func New(coll store.Collection, cache cachestore.Store) *Engine {
	return &Engine{
		repo:  store.NewRepository[models.Connection](coll),
		cache: cache,
		clock: time.Now,
	}
}

// Connect links groupID to principalID and makes it active, per
// add_connection. Returns false when the group is already linked.
func (e *Engine) Connect(ctx context.Context, principalID, groupID string) (bool, error) {
	conn, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "find connection", err)
	}

	now := e.clock()
	if !found {
		conn = &models.Connection{
			PrincipalID: principalID,
			Groups:      []models.GroupLink{{GroupID: groupID}},
			ActiveGroup: groupID,
			CreatedAt:   now,
			UpdatedAt:   now,
		}
		if err := e.repo.Create(ctx, *conn); err != nil {
			return false, apperr.Wrap(apperr.DatabaseError, "create connection", err)
		}
		return true, nil
	}

	if conn.HasGroup(groupID) {
		return false, nil
	}
	conn.Groups = append(conn.Groups, models.GroupLink{GroupID: groupID})
	conn.ActiveGroup = groupID
	conn.UpdatedAt = now
	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"group_details": conn.Groups,
		"active_group":  groupID,
		"updated_at":    now,
	}, false); err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "update connection", err)
	}
	e.invalidate(ctx, principalID)
	return true, nil
}

// Disconnect unlinks groupID from principalID, reassigning active_group to
// the last remaining group (or clearing it), per delete_connection.
func (e *Engine) Disconnect(ctx context.Context, principalID, groupID string) (bool, error) {
	conn, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "find connection", err)
	}
	if !found {
		return false, nil
	}

	remaining := make([]models.GroupLink, 0, len(conn.Groups))
	for _, g := range conn.Groups {
		if g.GroupID != groupID {
			remaining = append(remaining, g)
		}
	}
	if len(remaining) == len(conn.Groups) {
		return false, nil
	}

	active := conn.ActiveGroup
	if active == groupID {
		if len(remaining) > 0 {
			active = remaining[len(remaining)-1].GroupID
		} else {
			active = ""
		}
	}

	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"group_details": remaining,
		"active_group":  active,
		"updated_at":    e.clock(),
	}, false); err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "update connection", err)
	}
	e.invalidate(ctx, principalID)
	return true, nil
}

// ActiveGroup returns the active group for principalID, cache-first, per
// get_active_connection.
func (e *Engine) ActiveGroup(ctx context.Context, principalID string) (string, bool, error) {
	var cached string
	if e.cache.Get(ctx, cachestore.Keys.UserConnections(principalID), &cached) {
		return cached, cached != "", nil
	}

	conn, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return "", false, apperr.Wrap(apperr.DatabaseError, "find connection", err)
	}
	if !found {
		return "", false, nil
	}
	e.cache.Set(ctx, cachestore.Keys.UserConnections(principalID), conn.ActiveGroup, cachestore.TTL.UserConnections)
	return conn.ActiveGroup, conn.ActiveGroup != "", nil
}

// AllGroups returns every group linked to principalID, per
// get_all_connections. found is false when the principal has no
// connection document at all.
func (e *Engine) AllGroups(ctx context.Context, principalID string) (groups []string, found bool, err error) {
	conn, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return nil, false, apperr.Wrap(apperr.DatabaseError, "find connection", err)
	}
	if !found {
		return nil, false, nil
	}
	out := make([]string, len(conn.Groups))
	for i, g := range conn.Groups {
		out[i] = g.GroupID
	}
	return out, true, nil
}

// SetActive marks groupID active, failing if principalID isn't linked to
// it, per make_active.
func (e *Engine) SetActive(ctx context.Context, principalID, groupID string) (bool, error) {
	conn, found, err := e.repo.FindByID(ctx, principalID)
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "find connection", err)
	}
	if !found || !conn.HasGroup(groupID) {
		return false, nil
	}
	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"active_group": groupID,
		"updated_at":   e.clock(),
	}, false); err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "set active connection", err)
	}
	e.invalidate(ctx, principalID)
	return true, nil
}

// ClearActive deactivates every connection for principalID, per
// make_inactive/deactivate_all_connections.
func (e *Engine) ClearActive(ctx context.Context, principalID string) error {
	if _, err := e.repo.Update(ctx, principalID, map[string]any{
		"active_group": "",
		"updated_at":   e.clock(),
	}, false); err != nil {
		return apperr.Wrap(apperr.DatabaseError, "clear active connection", err)
	}
	e.invalidate(ctx, principalID)
	return nil
}

// DeleteAll removes every connection for principalID, per
// delete_all_connections.
func (e *Engine) DeleteAll(ctx context.Context, principalID string) (bool, error) {
	ok, err := e.repo.Delete(ctx, principalID)
	if err != nil {
		return false, apperr.Wrap(apperr.DatabaseError, "delete connections", err)
	}
	if ok {
		e.invalidate(ctx, principalID)
	}
	return ok, nil
}

// MembershipChecker reports whether principalID is still a member of
// groupID, injected so this package never depends on platform.Client
// directly, mirroring BroadcastToUsers' SendFunc injection.
type MembershipChecker func(ctx context.Context, principalID, groupID string) bool

// CleanupInvalid removes every connection where isMember reports the
// principal is no longer in the group, per cleanup_invalid_connections.
func (e *Engine) CleanupInvalid(ctx context.Context, principalID string, isMember MembershipChecker) (int, error) {
	groups, found, err := e.AllGroups(ctx, principalID)
	if err != nil || !found {
		return 0, err
	}

	removed := 0
	for _, groupID := range groups {
		if isMember(ctx, principalID, groupID) {
			continue
		}
		ok, err := e.Disconnect(ctx, principalID, groupID)
		if err != nil {
			continue
		}
		if ok {
			removed++
		}
	}
	return removed, nil
}

// ValidateAll scans every connection document and repairs any whose
// active_group no longer appears in its own group list, per
// validate_all_connections.
func (e *Engine) ValidateAll(ctx context.Context) (int, error) {
	conns, err := e.repo.FindMany(ctx, map[string]any{}, store.FindOptions{})
	if err != nil {
		return 0, apperr.Wrap(apperr.DatabaseError, "list connections", err)
	}

	fixed := 0
	for _, conn := range conns {
		if conn.ActiveGroup == "" || conn.HasGroup(conn.ActiveGroup) {
			continue
		}
		if len(conn.Groups) > 0 {
			e.SetActive(ctx, conn.PrincipalID, conn.Groups[0].GroupID)
		} else {
			e.ClearActive(ctx, conn.PrincipalID)
		}
		fixed++
	}
	return fixed, nil
}

func (e *Engine) invalidate(ctx context.Context, principalID string) {
	e.cache.Delete(ctx, cachestore.Keys.UserConnections(principalID))
}
