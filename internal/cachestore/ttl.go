package cachestore

import "time"

// TTL centralizes every cache TTL used in this repo, grounded 1:1 on
// CacheTTLConfig.
var TTL = struct {
	UserData                time.Duration
	BannedUsersList          time.Duration
	UserStats                time.Duration
	MediaFile                time.Duration
	SearchResults            time.Duration
	FileStats                time.Duration
	UserConnections          time.Duration
	ConnectionStats          time.Duration
	ActiveChannels           time.Duration
	ChannelStats             time.Duration
	FilterData               time.Duration
	FilterList               time.Duration
	BotSettings              time.Duration
	RateLimitWindow          time.Duration
	EditSession              time.Duration
	SearchSession            time.Duration
	RecentEditFlag           time.Duration
	OperationLock            time.Duration
	BatchLink                time.Duration
	RateLimitCooldown        time.Duration
	MaintenanceResetCounters time.Duration
	DeleteAllConfirm         time.Duration
	SearchHistory            time.Duration
}{
	UserData:                5 * time.Minute,
	BannedUsersList:         1 * time.Hour,
	UserStats:               10 * time.Minute,
	MediaFile:               5 * time.Minute,
	SearchResults:           5 * time.Minute,
	FileStats:               30 * time.Minute,
	UserConnections:         5 * time.Minute,
	ConnectionStats:         30 * time.Minute,
	ActiveChannels:          10 * time.Minute,
	ChannelStats:            30 * time.Minute,
	FilterData:              5 * time.Minute,
	FilterList:              10 * time.Minute,
	BotSettings:             30 * time.Minute,
	RateLimitWindow:         1 * time.Minute,
	EditSession:             1 * time.Minute,
	SearchSession:           1 * time.Hour,
	RecentEditFlag:          2 * time.Second,
	OperationLock:           10 * time.Second,
	BatchLink:               24 * time.Hour,
	RateLimitCooldown:       1 * time.Hour,
	MaintenanceResetCounters: 25 * time.Hour,
	DeleteAllConfirm:        30 * time.Second,
	SearchHistory:           7 * 24 * time.Hour,
}
