package constants

import "time"

// Centralized default values for timeouts, intervals, and related settings.
// These provide sane defaults; environment/config may override where supported.

const (
	// Database
	DBReadTimeoutDefault  = 8 * time.Second
	DBWriteTimeoutDefault = 6 * time.Second

	// Google Places
	PlacesOperationTimeout  = 10 * time.Second
	PlacesOpenFor           = 30 * time.Second
	PlacesSlowCallThreshold = 1500 * time.Millisecond
	PlacesMaxConsecFailures = 5

	// Health
	HealthTimeoutDefault = 30 * time.Second

	// Config watcher
	ConfigWatcherIntervalDefault = 2 * time.Second

	// App shutdown
	GracefulShutdownTimeoutDefault = 10 * time.Second

	// Event store SQL operations
	EventsSQLTimeoutDefault = 5 * time.Second
)
