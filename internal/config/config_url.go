// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"net/url"
)

// validateMongoURI validates that the document store DSN uses a supported
// scheme and names a host, grounded on DATABASE_URI.
func validateMongoURI(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("DATABASE_URI failed to parse: %w", err)
	}

	validSchemes := map[string]bool{"mongodb": true, "mongodb+srv": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("DATABASE_URI scheme must be mongodb or mongodb+srv, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("DATABASE_URI host is required")
	}

	return nil
}

// validateRedisURI validates that the cache store DSN uses a supported
// scheme and names a host, grounded on REDIS_URI.
func validateRedisURI(rawURL string) error {
	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("REDIS_URI failed to parse: %w", err)
	}

	validSchemes := map[string]bool{"redis": true, "rediss": true}
	if !validSchemes[parsedURL.Scheme] {
		return fmt.Errorf("REDIS_URI scheme must be redis or rediss, got: %s", parsedURL.Scheme)
	}

	if parsedURL.Host == "" {
		return fmt.Errorf("REDIS_URI host is required")
	}

	return nil
}
