package cachestore

import (
	"fmt"
	"strconv"
	"strings"
)

// Keys mirrors CacheKeyGenerator's key-naming methods so every package
// builds cache keys the same way.
var Keys = keyGenerator{}

type keyGenerator struct{}

func (keyGenerator) User(id int64) string          { return fmt.Sprintf("user:%d", id) }
func (keyGenerator) BannedUsers() string            { return "banned_users" }
func (keyGenerator) Media(identifier string) string { return "media:" + identifier }

func (keyGenerator) SearchResults(query, fileType string, offset, limit int, useCaption bool) string {
	normalized := strings.ToLower(strings.TrimSpace(query))
	return fmt.Sprintf("search:%s:%s:%d:%d:%t", normalized, fileType, offset, limit, useCaption)
}

func (g keyGenerator) SearchResultsVersioned(query, fileType string, offset, limit int, useCaption bool, version int64) string {
	return g.SearchResults(query, fileType, offset, limit, useCaption) + ":v" + strconv.FormatInt(version, 10)
}

func (keyGenerator) FileStats() string                { return "file_stats" }
func (keyGenerator) UserConnections(userID string) string { return "connections:" + userID }
func (keyGenerator) ActiveChannels() string           { return "active_channels_list" }
func (keyGenerator) Channel(id int64) string          { return fmt.Sprintf("channel:%d", id) }
func (keyGenerator) Filter(groupID, text string) string { return fmt.Sprintf("filter:%s:%s", groupID, text) }
func (keyGenerator) FilterList(groupID string) string { return "filters_list:" + groupID }
func (keyGenerator) BotSetting(key string) string     { return "bot_setting:" + key }
func (keyGenerator) AllSettings() string               { return "all_bot_settings" }
func (keyGenerator) RateLimit(principalID int64, action string) string {
	return fmt.Sprintf("rate_limit:%d:%s", principalID, action)
}
func (keyGenerator) RateLimitCooldown(principalID int64, action string) string {
	return fmt.Sprintf("rate_limit:%d:%s:cooldown", principalID, action)
}
func (keyGenerator) SearchSession(principalID int64, sessionID string) string {
	return fmt.Sprintf("search_results_%d_%s", principalID, sessionID)
}
func (keyGenerator) RecentSettingsEdit(principalID int64) string {
	return fmt.Sprintf("recent_settings_edit:%d", principalID)
}
func (keyGenerator) LastCounterResetDate() string { return "last_counter_reset_date" }
func (keyGenerator) BatchLink(batchID string) string { return "batch_link:" + batchID }
func (keyGenerator) DeleteAllPending(principalID int64) string {
	return fmt.Sprintf("deleteall_pending:%d", principalID)
}
func (keyGenerator) PremiumStatus(principalID int64) string {
	return fmt.Sprintf("premium_status:%d", principalID)
}
func (keyGenerator) BroadcastState() string { return "broadcast:state" }
func (keyGenerator) TokenBucket(key string) string { return "token_bucket:" + key }
func (keyGenerator) SubscriptionSession(sessionID string) string {
	return "checksub_session:" + sessionID
}
func (keyGenerator) SearchCacheVersion() string { return "search_cache:version" }
func (keyGenerator) UserStats() string          { return "user_stats" }
func (keyGenerator) SearchHistory(principalID int64) string {
	return fmt.Sprintf("search_history:%d", principalID)
}

// Patterns mirrors CachePatterns' glob patterns for bulk cache operations.
var Patterns = patternSet{}

type patternSet struct{}

func (patternSet) AllSessions() string      { return "session:*" }
func (patternSet) AllRateLimits() string    { return "rate_limit:*" }
func (patternSet) AllSearchResults() string { return "search_results_*" }
func (patternSet) AllFilters() string       { return "filter:*" }
func (patternSet) AllBotSettings() string   { return "bot_setting:*" }

func (patternSet) RateLimitFor(principalID int64) string {
	return fmt.Sprintf("rate_limit:%d:*", principalID)
}
func (patternSet) SearchResultsFor(principalID int64) string {
	return fmt.Sprintf("search_results_%d_*", principalID)
}

// UserRelated returns every cache key/pattern touching a principal, used by
// ban/unban invalidation.
func UserRelated(principalID int64) []string {
	return []string{
		Keys.User(principalID),
		Keys.UserConnections(strconv.FormatInt(principalID, 10)),
		Patterns.RateLimitFor(principalID),
		Patterns.SearchResultsFor(principalID),
		Keys.RecentSettingsEdit(principalID),
	}
}
