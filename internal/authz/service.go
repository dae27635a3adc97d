// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
service.go - Gatekeeper: the bot's admin/owner gating facade.

This replaces the teacher's database-backed RBAC service (viewer/editor/admin
roles persisted per HTTP user, looked up on every request) with a much
narrower model: there is no per-user role store. The config package's
admin/owner ID lists are the single source of truth for who holds the
"admin" role; Gatekeeper's job is to keep the Casbin enforcer's grouping
policy in sync with that list and answer "can this principal do X" against
the fixed resource set in policy.csv.

Resources gated here: broadcast, delete, settings, quota_bypass,
subscription_bypass, stats, connection_manage, filter_manage.
*/

package authz

import (
	"fmt"
	"strconv"
	"time"
)

// Gatekeeper checks whether a principal may perform a privileged action and
// records the decision for audit/observability.
type Gatekeeper struct {
	enforcer    *Enforcer
	auditLogger *AuditLogger
}

// NewGatekeeper wires an enforcer and an optional audit logger (nil disables
// audit logging) into a Gatekeeper.
func NewGatekeeper(enforcer *Enforcer, auditLogger *AuditLogger) *Gatekeeper {
	return &Gatekeeper{enforcer: enforcer, auditLogger: auditLogger}
}

// SyncAdmins replaces the enforcer's "admin" grouping policy with exactly
// the given principal IDs. Called at startup and whenever a /settings
// reload changes the configured admin/owner ID lists.
func (g *Gatekeeper) SyncAdmins(adminIDs []int64) error {
	current, err := g.enforcer.GetUsersForRole("admin")
	if err != nil {
		RecordAuthzError("role_lookup_error")
		return fmt.Errorf("list current admins: %w", err)
	}

	want := make(map[string]struct{}, len(adminIDs))
	for _, id := range adminIDs {
		want[strconv.FormatInt(id, 10)] = struct{}{}
	}

	for _, user := range current {
		if _, ok := want[user]; !ok {
			if _, err := g.enforcer.DeleteRoleForUser(user, "admin"); err != nil {
				return fmt.Errorf("revoke admin from %s: %w", user, err)
			}
			RecordRoleAssignment("admin", "revoke")
		}
		delete(want, user)
	}

	for user := range want {
		if _, err := g.enforcer.AddRoleForUser(user, "admin"); err != nil {
			return fmt.Errorf("grant admin to %s: %w", user, err)
		}
		RecordRoleAssignment("admin", "assign")
	}

	return nil
}

// check runs the enforcement, records metrics, and logs an audit event.
func (g *Gatekeeper) check(correlationID string, principalID int64, resource string) bool {
	start := time.Now()
	subject := strconv.FormatInt(principalID, 10)

	_, cacheHit := g.enforcer.cache.get(subject, resource, "execute")

	allowed, err := g.enforcer.Enforce(subject, resource, "execute")
	duration := time.Since(start)
	if err != nil {
		RecordAuthzError("enforcer_error")
		allowed = false
	}

	role := "user"
	if allowed {
		role = "admin"
	}
	RecordAuthzDecision(role, resource, "execute", allowed, duration, cacheHit)

	reason := ""
	if !allowed {
		reason = "insufficient permissions"
	}
	g.auditLogger.LogDecision(&AuditEvent{
		CorrelationID: correlationID,
		ActorID:       subject,
		ActorRole:     role,
		Resource:      resource,
		Action:        "execute",
		Decision:      allowed,
		Reason:        reason,
		Duration:      duration,
		CacheHit:      cacheHit,
	})

	return allowed
}

// IsAdmin reports whether the principal holds the admin role.
func (g *Gatekeeper) IsAdmin(principalID int64) bool {
	roles, err := g.enforcer.GetRolesForUser(strconv.FormatInt(principalID, 10))
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r == "admin" {
			return true
		}
	}
	return false
}

// CanBroadcast gates the /broadcast and /pbroadcast admin commands.
func (g *Gatekeeper) CanBroadcast(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "broadcast")
}

// CanDelete gates /deleteall and link-based batch deletion.
func (g *Gatekeeper) CanDelete(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "delete")
}

// CanManageSettings gates runtime BotSetting mutation.
func (g *Gatekeeper) CanManageSettings(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "settings")
}

// CanViewStats gates /stats and maintenance-report commands.
func (g *Gatekeeper) CanViewStats(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "stats")
}

// CanManageConnections gates admin-only connection administration.
func (g *Gatekeeper) CanManageConnections(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "connection_manage")
}

// CanManageFilters gates admin-only filter administration beyond a group's
// own connected-chat owner.
func (g *Gatekeeper) CanManageFilters(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "filter_manage")
}

// BypassesQuota reports whether the principal is exempt from the daily
// retrieval quota (admin/auth-user bypass per spec.md's access module).
func (g *Gatekeeper) BypassesQuota(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "quota_bypass")
}

// BypassesSubscription reports whether the principal is exempt from the
// mandatory-channel subscription gate.
func (g *Gatekeeper) BypassesSubscription(correlationID string, principalID int64) bool {
	return g.check(correlationID, principalID, "subscription_bypass")
}

// Close releases the gatekeeper's audit logger.
func (g *Gatekeeper) Close() {
	if g.auditLogger != nil {
		g.auditLogger.Close()
	}
}
