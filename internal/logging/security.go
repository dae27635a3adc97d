// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package logging

import (
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// AuditEvent represents an access-control or quota-relevant event for
// audit logging, fielded per spec.md §7's event/correlation_id/
// principal_id/outcome convention.
type AuditEvent struct {
	// Event is the type of event (e.g., "admin_command", "quota_denied").
	Event string
	// PrincipalID is the chat platform user ID the event concerns.
	PrincipalID int64
	// CorrelationID ties the event to the originating update, if known.
	CorrelationID string
	// Outcome is "allowed", "denied", or "error".
	Outcome string
	// Reason explains a denied/error outcome.
	Reason string
	// Details contains additional sanitized details.
	Details map[string]string
}

// AuditLogger provides logging for access-control and quota decisions.
// It automatically sanitizes sensitive data before logging.
type AuditLogger struct {
	logger zerolog.Logger
}

// NewAuditLogger creates a new audit logger.
func NewAuditLogger() *AuditLogger {
	return &AuditLogger{
		logger: With().Str("component", "authz").Logger(),
	}
}

// NewAuditLoggerWithLogger creates an audit logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewAuditLoggerWithLogger(logger zerolog.Logger) *AuditLogger {
	return &AuditLogger{
		logger: logger.With().Str("component", "authz").Logger(),
	}
}

// LogEvent logs an audit event with automatic sanitization.
func (l *AuditLogger) LogEvent(event *AuditEvent) {
	e := l.logger.Info().
		Str("event", event.Event).
		Int64("principal_id", event.PrincipalID)

	if event.Outcome != "" {
		e = e.Str("outcome", event.Outcome)
	}

	if event.CorrelationID != "" {
		e = e.Str("correlation_id", event.CorrelationID)
	}

	if event.Reason != "" {
		e = e.Str("reason", SanitizeError(event.Reason))
	}

	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// Debug logs a debug-level message.
func (l *AuditLogger) Debug(msg string, fields ...interface{}) {
	e := l.logger.Debug()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Info logs an info-level message.
func (l *AuditLogger) Info(msg string, fields ...interface{}) {
	e := l.logger.Info()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Warn logs a warning-level message.
func (l *AuditLogger) Warn(msg string, fields ...interface{}) {
	e := l.logger.Warn()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Error logs an error-level message.
func (l *AuditLogger) Error(msg string, fields ...interface{}) {
	e := l.logger.Error()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// addFieldPairs adds key-value pairs to a zerolog event.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			e = e.Interface(key, fields[i+1])
		}
	}
	return e
}

// ============================================================
// Pre-defined Audit Events
// ============================================================

// LogAdminCommandDenied logs a non-admin attempting an admin-only command.
func (l *AuditLogger) LogAdminCommandDenied(principalID int64, correlationID, command string) {
	l.LogEvent(&AuditEvent{
		Event:         "admin_command_denied",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "denied",
		Details:       map[string]string{"command": command},
	})
}

// LogAdminCommandExecuted logs a successful admin-only command.
func (l *AuditLogger) LogAdminCommandExecuted(principalID int64, correlationID, command string) {
	l.LogEvent(&AuditEvent{
		Event:         "admin_command_executed",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "allowed",
		Details:       map[string]string{"command": command},
	})
}

// LogQuotaDenied logs a retrieval denied by the daily quota gate.
func (l *AuditLogger) LogQuotaDenied(principalID int64, correlationID string, used, limit int) {
	l.LogEvent(&AuditEvent{
		Event:         "quota_denied",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "denied",
		Details: map[string]string{
			"used":  strconv.Itoa(used),
			"limit": strconv.Itoa(limit),
		},
	})
}

// LogSubscriptionCheckDenied logs a delivery blocked by the subscription gate.
func (l *AuditLogger) LogSubscriptionCheckDenied(principalID int64, correlationID, channel string) {
	l.LogEvent(&AuditEvent{
		Event:         "subscription_check_denied",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "denied",
		Details:       map[string]string{"channel": channel},
	})
}

// LogFloodWait logs the platform client reporting a flood-wait backoff.
func (l *AuditLogger) LogFloodWait(principalID int64, correlationID string, waitSeconds int) {
	l.LogEvent(&AuditEvent{
		Event:         "flood_wait",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "error",
		Details:       map[string]string{"wait_seconds": strconv.Itoa(waitSeconds)},
	})
}

// LogBroadcastStarted logs the start of an admin-initiated broadcast.
func (l *AuditLogger) LogBroadcastStarted(principalID int64, correlationID string, targetCount int) {
	l.LogEvent(&AuditEvent{
		Event:         "broadcast_started",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "allowed",
		Details:       map[string]string{"target_count": strconv.Itoa(targetCount)},
	})
}

// LogBroadcastCompleted logs the completion of a broadcast run.
func (l *AuditLogger) LogBroadcastCompleted(principalID int64, correlationID string, sent, failed int) {
	l.LogEvent(&AuditEvent{
		Event:         "broadcast_completed",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "allowed",
		Details: map[string]string{
			"sent":   strconv.Itoa(sent),
			"failed": strconv.Itoa(failed),
		},
	})
}

// LogDeletionExecuted logs an admin-triggered delete-all or link-based batch delete.
func (l *AuditLogger) LogDeletionExecuted(principalID int64, correlationID string, deletedCount int) {
	l.LogEvent(&AuditEvent{
		Event:         "deletion_executed",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "allowed",
		Details:       map[string]string{"deleted_count": strconv.Itoa(deletedCount)},
	})
}

// LogSettingChanged logs an admin changing a bot setting.
func (l *AuditLogger) LogSettingChanged(principalID int64, correlationID, setting, newValue string) {
	l.LogEvent(&AuditEvent{
		Event:         "setting_changed",
		PrincipalID:   principalID,
		CorrelationID: correlationID,
		Outcome:       "allowed",
		Details: map[string]string{
			"setting":   setting,
			"new_value": newValue,
		},
	})
}

// ============================================================
// Sanitization Functions
// ============================================================

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "123456:AAHx9y2pzKj8vT3mN7qR1sW5uY8bC0dE2fG" -> "1234...2fG"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"password",
		"secret",
		"token",
		"key",
		"bearer",
		"authorization",
		"cookie",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "authorization error"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := map[string]bool{
		"token":         true,
		"bot_token":     true,
		"password":      true,
		"secret":        true,
		"api_key":       true,
		"apikey":        true,
		"authorization": true,
		"bearer":        true,
	}

	if sensitiveKeys[lowerKey] {
		return SanitizeToken(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}

func strconv.Itoa(n int) string {
	return strconv.Itoa(n)
}
