// Package authz gates the bot's privileged operations using Casbin RBAC.
//
// This package has no HTTP surface: the bot has no API routes to protect.
// Its job is narrower than the platform it was adapted from: decide whether
// a principal (a chat platform user ID) is allowed to perform a privileged,
// named action — "broadcast", "delete", "settings", "quota_bypass",
// "subscription_bypass", "stats", "connection_manage", "filter_manage" — and
// audit every decision.
//
// # RBAC Model
//
// Casbin's RBAC model with exact object/action matching (no path globbing,
// since objects here are a small fixed enum rather than URL paths):
//
//	[request_definition]
//	r = sub, obj, act
//
//	[policy_definition]
//	p = sub, obj, act
//
//	[role_definition]
//	g = _, _
//
//	[policy_effect]
//	e = some(where (p.eft == allow))
//
//	[matchers]
//	m = g(r.sub, p.sub) && r.obj == p.obj && r.act == p.act
//
// policy.csv grants the "admin" role every privileged action; it carries no
// grouping (g) rules of its own. The bound subset — which principal IDs hold
// the "admin" role at runtime — is synced from configuration at startup and
// whenever /settings reload changes the admin/owner ID lists, via
// Gatekeeper.SyncAdmins. There is no per-user role database: all roles
// beyond the config-driven admin/owner lists are out of scope.
//
// # Usage
//
//	enforcer, err := authz.NewEnforcer(ctx, authz.DefaultEnforcerConfig())
//	gate := authz.NewGatekeeper(enforcer, authz.NewAuditLogger(nil))
//	gate.SyncAdmins(cfg.AdminIDs())
//
//	if !gate.CanBroadcast(correlationID, principalID) {
//	    return apperr.New(apperr.CodePermissionDenied, "admin only")
//	}
//
// # Caching
//
// Enforcement decisions are cached per (subject, object, action) tuple with
// a configurable TTL; SyncAdmins and any policy mutation invalidate the
// affected cache entries.
//
// # See Also
//
//   - internal/logging: structured audit events for domain operations
//     (broadcast/deletion/settings), as opposed to the raw allow/deny
//     decision stream recorded here
//   - github.com/casbin/casbin/v2: underlying authorization library
package authz
