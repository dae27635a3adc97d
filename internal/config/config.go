// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import "time"

// Config is the root configuration for the bot, loaded by Load via the
// koanf-based layered loader (env vars > YAML file > struct defaults).
type Config struct {
	Platform PlatformConfig `koanf:"platform"`
	Owners   OwnersConfig   `koanf:"owners"`
	Quota    QuotaConfig    `koanf:"quota"`
	Store    StoreConfig    `koanf:"store"`
	Cache    CacheConfig    `koanf:"cache"`
	Channels ChannelsConfig `koanf:"channels"`
	Delivery DeliveryConfig `koanf:"delivery"`
	Caption  CaptionConfig  `koanf:"caption"`
	Logging  LoggingConfig  `koanf:"logging"`
	Metrics  MetricsConfig  `koanf:"metrics"`
}

// PlatformConfig holds the chat platform's own credentials, grounded on
// bot.py's API_ID/API_HASH/BOT_TOKEN.
type PlatformConfig struct {
	APIID    int64  `koanf:"api_id"`
	APIHash  string `koanf:"api_hash"`
	BotToken string `koanf:"bot_token"`
	// SessionName names the platform client's local session file.
	SessionName string `koanf:"session_name"`
	// Workers bounds the platform client's internal worker pool.
	Workers int `koanf:"workers"`
}

// OwnersConfig holds the principals with unrestricted access, grounded on
// bot.py's ADMINS list (owner is always also an admin).
type OwnersConfig struct {
	// OwnerID is the single principal treated as the bot's owner; it is
	// always included in Admins even if not listed explicitly.
	OwnerID int64 `koanf:"owner_id"`
	// Admins are principal IDs granted admin-only operations (filters,
	// broadcast, deletion, maintenance triggers, settings mutation).
	Admins []int64 `koanf:"admins"`
	// AuthUsers are principal IDs exempt from the subscription gate and
	// quota enforcement, in addition to Admins, grounded on AUTH_USERS.
	AuthUsers []int64 `koanf:"auth_users"`
}

// QuotaConfig holds retrieval quota and premium-grant defaults, grounded on
// NON_PREMIUM_DAILY_LIMIT/PREMIUM_DURATION_DAYS.
type QuotaConfig struct {
	DailyRetrievalLimit int `koanf:"daily_retrieval_limit"`
	// PremiumDurationDays mirrors the original's day-granularity env var;
	// PremiumDuration is derived from it after loading.
	PremiumDurationDays int           `koanf:"premium_duration_days"`
	PremiumDuration     time.Duration `koanf:"-"`
}

// StoreConfig holds the document store connection, grounded on
// DATABASE_URI/DATABASE_NAME/COLLECTION_NAME.
type StoreConfig struct {
	URI             string `koanf:"uri"`
	Database        string `koanf:"database"`
	FilesCollection string `koanf:"files_collection"`
}

// CacheConfig holds the cache store connection, grounded on REDIS_URI.
type CacheConfig struct {
	URI string `koanf:"uri"`
}

// ChannelsConfig holds the monitored/administrative channel set, grounded
// on CHANNELS/LOG_CHANNEL/DELETE_CHANNEL/INDEX_REQ_CHANNEL.
type ChannelsConfig struct {
	// Monitored lists the channel IDs ingestion listens to for new media.
	Monitored []int64 `koanf:"monitored"`
	// LogChannel receives operational notices (new files, errors).
	LogChannel int64 `koanf:"log_channel"`
	// DeleteChannel is where /deleteall and link-based batch deletes
	// source their target set; 0 disables the feature.
	DeleteChannel int64 `koanf:"delete_channel"`
	// RequestChannel receives "file not found" request notices; falls
	// back to LogChannel when unset, per bot.py's REQ_CHANNEL.
	RequestChannel int64 `koanf:"request_channel"`
}

// DeliveryConfig holds outbound message lifetime settings, grounded on
// MESSAGE_DELETE_SECONDS/MAX_BTN_SIZE.
type DeliveryConfig struct {
	// AutoDeleteAfterSeconds mirrors the original's second-granularity env
	// var; AutoDeleteAfter is derived from it after loading.
	AutoDeleteAfterSeconds int           `koanf:"auto_delete_after_seconds"`
	AutoDeleteAfter        time.Duration `koanf:"-"`
	MaxButtonsPerPage      int           `koanf:"max_buttons_per_page"`
}

// CaptionConfig holds the result-caption picture pool and templates,
// grounded on PICS/CUSTOM_FILE_CAPTION/BATCH_FILE_CAPTION.
type CaptionConfig struct {
	Pictures             []string `koanf:"pictures"`
	FileCaptionTemplate  string   `koanf:"file_caption_template"`
	BatchCaptionTemplate string   `koanf:"batch_caption_template"`
}

// LoggingConfig controls the zerolog wrapper, kept verbatim from the teacher.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// MetricsConfig controls whether the prometheus registry records metrics.
// There is no HTTP listener here; an external exporter scrapes the
// registry returned by metrics.Registry().
type MetricsConfig struct {
	Enabled bool `koanf:"enabled"`
}

// Load loads configuration using the layered koanf loader. It is the sole
// supported entry point; LoadWithKoanf is retained as its implementation
// for symmetry with the teacher's naming.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
