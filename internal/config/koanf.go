// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths lists the paths where config files are searched in order of priority.
// The first file found will be used.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/botcore/config.yaml",
	"/etc/botcore/config.yml",
}

// ConfigPathEnvVar is the environment variable that can override the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

// defaultConfig returns a Config struct with all sensible default values.
// These defaults are applied first, then overridden by config file and env vars.
func defaultConfig() *Config {
	return &Config{
		Platform: PlatformConfig{
			SessionName: "botcore",
			Workers:     50,
		},
		Quota: QuotaConfig{
			DailyRetrievalLimit: 10,
			PremiumDurationDays: 30,
		},
		Store: StoreConfig{
			Database:        "botcore",
			FilesCollection: "files",
		},
		Delivery: DeliveryConfig{
			AutoDeleteAfterSeconds: 300,
			MaxButtonsPerPage:      12,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

// LoadWithKoanf loads configuration using Koanf v2 with layered sources:
//  1. Defaults: Built-in sensible defaults
//  2. Config File: Optional YAML config file (if exists)
//  3. Environment Variables: Override any setting
//
// This function provides:
//   - Type-safe configuration unmarshaling
//   - Clear precedence: ENV > File > Defaults
//   - Support for nested configuration via koanf struct tags
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	// Layer 1: Load defaults from struct
	defaults := defaultConfig()
	if err := k.Load(structs.Provider(defaults, "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// Layer 2: Load config file (optional)
	configPath := findConfigFile()
	if configPath != "" {
		if err := k.Load(file.Provider(configPath), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	}

	// Layer 3: Load environment variables (highest priority)
	envProvider := env.Provider("", ".", envTransformFunc)
	if err := k.Load(envProvider, nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	// Post-process slice fields from comma-separated strings
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	// Unmarshal into Config struct
	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	// Owners.OwnerID is always implicitly an admin.
	if cfg.Owners.OwnerID != 0 {
		cfg.Owners.Admins = appendUnique(cfg.Owners.Admins, cfg.Owners.OwnerID)
	}
	cfg.Owners.AuthUsers = appendUnique(cfg.Owners.AuthUsers, cfg.Owners.Admins...)

	cfg.Quota.PremiumDuration = time.Duration(cfg.Quota.PremiumDurationDays) * 24 * time.Hour
	cfg.Delivery.AutoDeleteAfter = time.Duration(cfg.Delivery.AutoDeleteAfterSeconds) * time.Second

	// RequestChannel falls back to LogChannel, per REQ_CHANNEL's default.
	if cfg.Channels.RequestChannel == 0 {
		cfg.Channels.RequestChannel = cfg.Channels.LogChannel
	}

	// Validate the configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func appendUnique(base []int64, extra ...int64) []int64 {
	seen := make(map[int64]bool, len(base))
	for _, v := range base {
		seen[v] = true
	}
	for _, v := range extra {
		if !seen[v] {
			base = append(base, v)
			seen[v] = true
		}
	}
	return base
}

// findConfigFile searches for a config file in the default paths.
// Returns the path to the first file found, or empty string if none found.
func findConfigFile() string {
	// Check environment variable first
	if envPath := os.Getenv(ConfigPathEnvVar); envPath != "" {
		if _, err := os.Stat(envPath); err == nil {
			return envPath
		}
	}

	// Search default paths
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// sliceConfigPaths defines which config paths should be parsed as comma-separated slices
var sliceConfigPaths = []string{
	"owners.admins",
	"owners.auth_users",
	"channels.monitored",
	"caption.pictures",
}

// processSliceFields converts comma-separated string values to slices for known slice fields.
// This is necessary because env vars come in as strings, but the config expects slices.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		val := k.Get(path)
		if val == nil {
			continue
		}

		// If it's already a slice (from YAML file), skip
		if _, ok := val.([]interface{}); ok {
			continue
		}
		if _, ok := val.([]string); ok {
			continue
		}
		if _, ok := val.([]int64); ok {
			continue
		}

		// If it's a string, split by comma
		if strVal, ok := val.(string); ok {
			if strVal == "" {
				continue
			}
			parts := strings.Split(strVal, ",")
			trimmed := make([]string, 0, len(parts))
			for _, p := range parts {
				p = strings.TrimSpace(p)
				if p != "" {
					trimmed = append(trimmed, p)
				}
			}
			if len(trimmed) > 0 {
				if err := k.Set(path, trimmed); err != nil {
					return fmt.Errorf("failed to set %s: %w", path, err)
				}
			}
		}
	}
	return nil
}

// envTransformFunc transforms environment variable names to koanf config paths.
//
// Examples:
//   - BOT_TOKEN -> platform.bot_token
//   - ADMINS -> owners.admins
//   - DATABASE_URI -> store.uri
//   - REDIS_URI -> cache.uri
func envTransformFunc(key string) string {
	key = strings.ToLower(key)

	envMappings := map[string]string{
		// Platform credentials
		"api_id":       "platform.api_id",
		"api_hash":     "platform.api_hash",
		"bot_token":    "platform.bot_token",
		"session_name": "platform.session_name",
		"workers":      "platform.workers",

		// Owners / admins
		"owner_id":   "owners.owner_id",
		"admins":     "owners.admins",
		"auth_users": "owners.auth_users",

		// Quota
		"non_premium_daily_limit": "quota.daily_retrieval_limit",
		"premium_duration_days":   "quota.premium_duration_days",

		// Store / cache
		"database_uri":    "store.uri",
		"database_name":   "store.database",
		"collection_name": "store.files_collection",
		"redis_uri":       "cache.uri",

		// Channels
		"channels":          "channels.monitored",
		"log_channel":       "channels.log_channel",
		"delete_channel":    "channels.delete_channel",
		"req_channel":       "channels.request_channel",
		"index_req_channel": "channels.request_channel",

		// Delivery
		"message_delete_seconds": "delivery.auto_delete_after_seconds",
		"max_btn_size":           "delivery.max_buttons_per_page",

		// Captions
		"pics":                "caption.pictures",
		"custom_file_caption": "caption.file_caption_template",
		"batch_file_caption":  "caption.batch_caption_template",

		// Logging
		"log_level":  "logging.level",
		"log_format": "logging.format",
		"log_caller": "logging.caller",

		// Metrics
		"metrics_enabled": "metrics.enabled",
	}

	if mapped, ok := envMappings[key]; ok {
		return mapped
	}

	// For unmapped keys, return empty string to skip them
	// This prevents random environment variables from polluting config
	return ""
}

// GetKoanfInstance returns a new Koanf instance for advanced usage.
// This is useful for:
//   - Hot-reload scenarios (with proper mutex protection)
//   - Custom configuration sources
//   - Testing with mock configurations
func GetKoanfInstance() *koanf.Koanf {
	return koanf.New(".")
}

// WatchConfigFile sets up a file watcher for hot-reload capability.
// Note: The caller is responsible for mutex protection when accessing
// configuration during reloads.
func WatchConfigFile(path string, callback func()) error {
	provider := file.Provider(path)

	return provider.Watch(func(event interface{}, err error) {
		if err != nil {
			return
		}
		callback()
	})
}
