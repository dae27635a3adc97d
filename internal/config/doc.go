// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package config provides centralized configuration management for the bot.

This package handles loading, validation, and parsing of settings for every
component of the bot. It ensures consistent configuration across packages
and provides sensible defaults for optional settings.

# Configuration Sources

Settings are layered, in increasing priority:
  - Built-in struct defaults
  - An optional YAML config file (config.yaml, or $CONFIG_PATH)
  - Environment variables

# Configuration Structure

  - PlatformConfig: chat platform credentials (API ID/hash, bot token)
  - OwnersConfig: owner and admin principal IDs, auth-exempt principals
  - QuotaConfig: daily retrieval limit, premium grant duration
  - StoreConfig: document store DSN, database/collection names
  - CacheConfig: cache store DSN
  - ChannelsConfig: monitored channels, log/delete/request channel IDs
  - DeliveryConfig: auto-delete lifetime, result pagination width
  - CaptionConfig: result caption picture pool and templates
  - LoggingConfig: zerolog level/format/caller settings
  - MetricsConfig: whether the prometheus registry records metrics

# Environment Variables

The package recognizes the original bot's environment variable names so an
existing deployment's env file carries over unchanged:

	API_ID, API_HASH, BOT_TOKEN, SESSION_NAME, WORKERS
	OWNER_ID, ADMINS, AUTH_USERS
	NON_PREMIUM_DAILY_LIMIT, PREMIUM_DURATION_DAYS
	DATABASE_URI, DATABASE_NAME, COLLECTION_NAME, REDIS_URI
	CHANNELS, LOG_CHANNEL, DELETE_CHANNEL, REQ_CHANNEL
	MESSAGE_DELETE_SECONDS, MAX_BTN_SIZE
	PICS, CUSTOM_FILE_CAPTION, BATCH_FILE_CAPTION
	LOG_LEVEL, LOG_FORMAT, LOG_CALLER
	METRICS_ENABLED

# Usage Example

	import "github.com/filevault/botcore/internal/config"

	cfg, err := config.Load()
	if err != nil {
	    log.Fatalf("failed to load config: %v", err)
	}

	fmt.Printf("listening on channels: %v\n", cfg.Channels.Monitored)

# Validation

Load fails closed: a missing platform credential, document-store DSN, or
cache DSN is a startup error rather than a degraded mode, since none of
this bot's modules can operate without them.

# Credential encryption

CredentialEncryptor (encryption.go) provides AES-256-GCM encryption for
values that might be persisted at rest alongside non-sensitive settings
(e.g. a BotSetting holding a secondary bot token). It is not required for
the environment/YAML-sourced Config itself, which is never persisted by
this package.
*/
package config
