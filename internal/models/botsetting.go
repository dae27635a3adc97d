package models

import "time"

// SettingValueType tags the dynamic type carried in BotSetting.Value.
type SettingValueType string

const (
	SettingString SettingValueType = "str"
	SettingInt    SettingValueType = "int"
	SettingBool   SettingValueType = "bool"
	SettingList   SettingValueType = "list"
)

// BotSetting is one runtime-mutable configuration key, distinct from the
// process's immutable boot-time config (credentials, store DSNs), which is
// never represented as a BotSetting.
type BotSetting struct {
	Key          string           `bson:"_id"`
	Value        any              `bson:"value"`
	ValueType    SettingValueType `bson:"value_type"`
	DefaultValue any              `bson:"default_value"`
	Description  string           `bson:"description"`
	UpdatedAt    time.Time        `bson:"updated_at"`
}

// ProtectedSettingKeys can never be written through BotSetting's runtime
// write path; they are process boot configuration only.
var ProtectedSettingKeys = map[string]bool{
	"bot_token":        true,
	"api_id":           true,
	"api_hash":         true,
	"document_store_dsn": true,
	"cache_store_dsn":  true,
	"owner_ids":        true,
}
