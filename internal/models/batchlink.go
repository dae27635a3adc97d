package models

import "time"

// BatchLink is a shareable range-send link, optionally gated to premium
// principals and optionally forcing protected-content delivery.
type BatchLink struct {
	ID           string     `bson:"_id"`
	SourceChatID int64      `bson:"source_chat_id"`
	FromMsgID    int64      `bson:"from_msg_id"`
	ToMsgID      int64      `bson:"to_msg_id"`
	Protected    bool       `bson:"protected"`
	PremiumOnly  bool       `bson:"premium_only"`
	CreatedBy    int64      `bson:"created_by"`
	CreatedAt    time.Time  `bson:"created_at"`
	ExpiresAt    *time.Time `bson:"expires_at,omitempty"`
}

// Expired reports whether the link has passed its expiry, if any was set.
func (b *BatchLink) Expired(now time.Time) bool {
	return b.ExpiresAt != nil && now.After(*b.ExpiresAt)
}
