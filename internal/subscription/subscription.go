// Package subscription gates bot use behind membership in one or more
// required channels/groups ("force subscribe"), grounded on
// handlers/callbacks_handlers/subscription.py and bot.py's
// SubscriptionManager wiring (auth_channel/auth_groups, admin/auth-user
// bypass).
package subscription

import (
	"context"

	"github.com/filevault/botcore/internal/platform"
)

// RequiredChannel is one channel or group a principal must belong to.
type RequiredChannel struct {
	ChatID   int64
	Username string // invite-link/username shown to the user, may be empty
	Title    string
}

// PendingSubscription lists the channels a principal still needs to join,
// carried back to the handler layer to render join buttons plus a
// "Try Again" callback, per subscription.py's handle_checksub_callback.
type PendingSubscription struct {
	Missing []RequiredChannel
}

// MembershipChecker reports whether principalID currently belongs to
// chatID, injected so this package depends on neither platform.Client nor
// internal/authz directly — mirrors connection.MembershipChecker and
// broadcast.SendFunc.
type MembershipChecker func(ctx context.Context, chatID, principalID int64) (platform.Member, error)

// BypassChecker reports whether principalID is exempt from the
// subscription gate (admins, explicitly authorized users), the Go
// equivalent of bot.py's ADMINS/AUTH_USERS check. Backed by
// internal/authz once that package is adapted to this domain.
type BypassChecker func(principalID int64) bool

// Gate enforces membership in every configured RequiredChannel.
type Gate struct {
	isMember MembershipChecker
	bypass   BypassChecker
}

// New builds a Gate. bypass may be nil, meaning no principal is exempt.
func New(isMember MembershipChecker, bypass BypassChecker) *Gate {
	if bypass == nil {
		bypass = func(int64) bool { return false }
	}
	return &Gate{isMember: isMember, bypass: bypass}
}

// joined reports whether a membership status counts as "still in the
// channel", per subscription.py's is_subscribed treatment of left/kicked
// as not subscribed.
func joined(m platform.Member) bool {
	return m.Status != platform.MemberStatusLeft && m.Status != platform.MemberStatusBanned
}

// Check reports whether principalID satisfies every entry in required. When
// it does not, pending lists exactly the channels still missing, for the
// handler layer to render join prompts.
func (g *Gate) Check(ctx context.Context, principalID int64, required []RequiredChannel) (ok bool, pending *PendingSubscription) {
	if len(required) == 0 || g.bypass(principalID) {
		return true, nil
	}

	var missing []RequiredChannel
	for _, ch := range required {
		member, err := g.isMember(ctx, ch.ChatID, principalID)
		if err != nil || !joined(member) {
			missing = append(missing, ch)
		}
	}
	if len(missing) == 0 {
		return true, nil
	}
	return false, &PendingSubscription{Missing: missing}
}
