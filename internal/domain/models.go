package domain

import (
	"strings"
	"time"
)

// Participant is one registered player: a Discord identity mapped to a
// chess.com username. Written by the registration commands, read-only to the
// refresh engine.
type Participant struct {
	CallerID    string
	DisplayName string
	Username    string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Row is one leaderboard line. A nil Rating means the player is unrated; the
// delta fields are nil whenever either side of the difference is unavailable
// (first appearance, unrated, missing baseline).
type Row struct {
	DisplayName string
	Username    string
	Rank        int
	Rating      *int
	RankMove    *int
	RatingDelta *int
	WeeklyDelta *int
}

// Snapshot is the persisted state of the last rendered refresh: where the
// leaderboard message lives and what each player's rating/rank looked like.
// All maps are keyed by the normalized username.
type Snapshot struct {
	ChannelID        string
	MessageID        string
	LastRatings      map[string]int
	LastRanks        map[string]int
	WeeklyBaseline   map[string]int
	WeeklyBaselineAt time.Time
}

// EmptySnapshot returns a snapshot with all maps allocated, used both for a
// fresh install and as the fallback when persisted state cannot be read.
func EmptySnapshot() *Snapshot {
	return &Snapshot{
		LastRatings:    map[string]int{},
		LastRanks:      map[string]int{},
		WeeklyBaseline: map[string]int{},
	}
}

// Observation is one append-only rating-history record, written per ranked
// participant on every completed refresh.
type Observation struct {
	ID         string
	Username   string
	Rating     *int
	Rank       int
	RefreshID  string
	RecordedAt time.Time
}

// NormalizeUsername lower-cases and trims a chess.com username. The
// normalized form is the sole key used for the rating cache and all snapshot
// maps.
func NormalizeUsername(username string) string {
	return strings.ToLower(strings.TrimSpace(username))
}
