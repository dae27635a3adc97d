// Package models holds the persisted entities of the media index bot:
// Principal, MediaFile, IndexedChannel, Connection, Filter, BatchLink,
// ResultSession and BotSetting.
package models

import "time"

// PrincipalStatus is the membership state of a Principal.
type PrincipalStatus string

const (
	PrincipalActive   PrincipalStatus = "active"
	PrincipalBanned   PrincipalStatus = "banned"
	PrincipalInactive PrincipalStatus = "inactive"
)

// Principal is a bot user/account, the subject of access control and quota.
type Principal struct {
	ID                    int64           `bson:"_id"`
	Name                  string          `bson:"name"`
	Status                PrincipalStatus `bson:"status"`
	BanReason             string          `bson:"ban_reason,omitempty"`
	IsPremium             bool            `bson:"is_premium"`
	PremiumActivationDate *time.Time      `bson:"premium_activation_date,omitempty"`
	DailyRetrievalCount   int             `bson:"daily_retrieval_count"`
	LastRetrievalDate     *time.Time      `bson:"last_retrieval_date,omitempty"`
	CreatedAt             time.Time       `bson:"created_at"`
	UpdatedAt             time.Time       `bson:"updated_at"`
}

// PremiumExpiry returns the activation date plus the configured premium
// duration. The caller supplies the duration since it is a runtime setting,
// not an entity field.
func (p *Principal) PremiumExpiry(duration time.Duration) (time.Time, bool) {
	if p.PremiumActivationDate == nil {
		return time.Time{}, false
	}
	return p.PremiumActivationDate.Add(duration), true
}
