package models

import "time"

// Filter is a per-group keyword-triggered auto-reply record.
type Filter struct {
	GroupID   string    `bson:"group_id"`
	Text      string    `bson:"text"`
	Reply     string    `bson:"reply"`
	Button    string    `bson:"btn,omitempty"`
	File      string    `bson:"file,omitempty"`
	Alert     string    `bson:"alert,omitempty"`
	CreatedAt time.Time `bson:"created_at"`
	UpdatedAt time.Time `bson:"updated_at"`
}
