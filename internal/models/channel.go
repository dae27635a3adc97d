package models

import "time"

// IndexedChannel is a chat monitored by the live ingestion pipeline
// (Mode A) or available for an admin-triggered range index (Mode B).
type IndexedChannel struct {
	ChannelID     int64      `bson:"_id"`
	Username      string     `bson:"channel_username,omitempty"`
	Title         string     `bson:"channel_title,omitempty"`
	AddedBy       int64      `bson:"added_by"`
	Enabled       bool       `bson:"enabled"`
	IndexedCount  int64      `bson:"indexed_count"`
	LastIndexedAt *time.Time `bson:"last_indexed_at,omitempty"`
	CreatedAt     time.Time  `bson:"created_at"`
	UpdatedAt     time.Time  `bson:"updated_at"`
}
