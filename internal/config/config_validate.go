// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"strings"
)

var validLogLevels = map[string]bool{
	"trace": true, "debug": true, "info": true, "warn": true, "error": true,
}

var validLogFormats = map[string]bool{
	"json": true, "console": true,
}

// Validate checks that required configuration is present and valid,
// mirroring bot.py's REQUIRED_CONFIG check (BOT_TOKEN, API_ID, API_HASH,
// DATABASE_URI) plus this rewrite's cache/quota/delivery settings.
func (c *Config) Validate() error {
	if err := c.validatePlatform(); err != nil {
		return err
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateCache(); err != nil {
		return err
	}
	if err := c.validateQuota(); err != nil {
		return err
	}
	if err := c.validateDelivery(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validatePlatform() error {
	if c.Platform.APIID == 0 {
		return fmt.Errorf("API_ID is required")
	}
	if c.Platform.APIHash == "" {
		return fmt.Errorf("API_HASH is required")
	}
	if containsPlaceholder(c.Platform.APIHash) {
		return fmt.Errorf("API_HASH appears to be a placeholder value")
	}
	if c.Platform.BotToken == "" {
		return fmt.Errorf("BOT_TOKEN is required")
	}
	if containsPlaceholder(c.Platform.BotToken) {
		return fmt.Errorf("BOT_TOKEN appears to be a placeholder value")
	}
	if c.Platform.Workers <= 0 {
		return fmt.Errorf("platform.workers must be positive, got %d", c.Platform.Workers)
	}
	return nil
}

func (c *Config) validateStore() error {
	if c.Store.URI == "" {
		return fmt.Errorf("DATABASE_URI is required")
	}
	if c.Store.Database == "" {
		return fmt.Errorf("store.database must not be empty")
	}
	if c.Store.FilesCollection == "" {
		return fmt.Errorf("store.files_collection must not be empty")
	}
	return validateMongoURI(c.Store.URI)
}

func (c *Config) validateCache() error {
	if c.Cache.URI == "" {
		return fmt.Errorf("REDIS_URI is required")
	}
	return validateRedisURI(c.Cache.URI)
}

func (c *Config) validateQuota() error {
	if c.Quota.DailyRetrievalLimit < 0 {
		return fmt.Errorf("NON_PREMIUM_DAILY_LIMIT must not be negative, got %d", c.Quota.DailyRetrievalLimit)
	}
	if c.Quota.PremiumDurationDays <= 0 {
		return fmt.Errorf("PREMIUM_DURATION_DAYS must be positive, got %d", c.Quota.PremiumDurationDays)
	}
	return nil
}

func (c *Config) validateDelivery() error {
	if c.Delivery.AutoDeleteAfterSeconds < 0 {
		return fmt.Errorf("MESSAGE_DELETE_SECONDS must not be negative, got %d", c.Delivery.AutoDeleteAfterSeconds)
	}
	if c.Delivery.MaxButtonsPerPage <= 0 {
		return fmt.Errorf("MAX_BTN_SIZE must be positive, got %d", c.Delivery.MaxButtonsPerPage)
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !validLogLevels[c.Logging.Level] {
		return fmt.Errorf("LOG_LEVEL must be one of: trace, debug, info, warn, error")
	}
	if c.Logging.Format != "" && !validLogFormats[c.Logging.Format] {
		return fmt.Errorf("LOG_FORMAT must be one of: json, console")
	}
	return nil
}

// placeholderPatterns defines common placeholder patterns that indicate
// the user forgot to set a real value. This prevents accidental deployment
// with insecure default credentials.
var placeholderPatterns = []string{
	"REPLACE",
	"CHANGEME",
	"CHANGE_ME",
	"YOUR_SECRET",
	"YOUR_TOKEN",
	"PLACEHOLDER",
	"TODO",
	"FIXME",
	"XXX",
	"EXAMPLE",
}

// containsPlaceholder checks if a value contains common placeholder patterns
// that indicate the user forgot to set a real value.
func containsPlaceholder(value string) bool {
	upperValue := strings.ToUpper(value)
	return containsAnyPattern(upperValue, placeholderPatterns)
}

// containsAnyPattern checks if a string contains any of the provided patterns
func containsAnyPattern(s string, patterns []string) bool {
	for _, pattern := range patterns {
		if strings.Contains(s, pattern) {
			return true
		}
	}
	return false
}
