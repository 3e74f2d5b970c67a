package constants

import "time"

const (
	RatingCacheTTL = 5 * time.Minute
	GlobalCooldown = 15 * time.Second
	UserCooldown   = 60 * time.Second
)

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RefreshTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 25
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	// Discord embeds/messages cap out well above this; the body is clamped so
	// the edit call never fails on length.
	MaxBodyLength = 3800

	HistoryQueryLimit = 50
)
