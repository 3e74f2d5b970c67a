package repository

import (
	"context"
	"database/sql"
	"fmt"

	"chess-leaderboard-bot/internal/domain"

	"github.com/rs/zerolog"
)

// SnapshotRepository persists the last rendered refresh as a single logical
// record: one singleton header row plus one entry row per username.
type SnapshotRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewSnapshotRepository(db *sql.DB, logger zerolog.Logger) *SnapshotRepository {
	return &SnapshotRepository{db: db, logger: logger}
}

// Load reads the whole snapshot. It never fails: a missing or unreadable
// snapshot degrades to an empty one, which simply means a cold start with no
// deltas on the next render.
func (r *SnapshotRepository) Load(ctx context.Context) *domain.Snapshot {
	snap := domain.EmptySnapshot()

	var baselineAt sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT channel_id, message_id, weekly_baseline_at
		FROM snapshot
		WHERE id = 1`).
		Scan(&snap.ChannelID, &snap.MessageID, &baselineAt)
	if err == sql.ErrNoRows {
		return snap
	}
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load snapshot, starting from empty state")
		return domain.EmptySnapshot()
	}
	if baselineAt.Valid {
		snap.WeeklyBaselineAt = baselineAt.Time
	}

	rows, err := r.db.QueryContext(ctx, `
		SELECT username, last_rating, last_rank, weekly_baseline_rating
		FROM snapshot_entries`)
	if err != nil {
		r.logger.Warn().Err(err).Msg("failed to load snapshot entries, starting from empty state")
		return domain.EmptySnapshot()
	}
	defer rows.Close()

	for rows.Next() {
		var username string
		var rating, rank, baseline sql.NullInt64
		if err := rows.Scan(&username, &rating, &rank, &baseline); err != nil {
			r.logger.Warn().Err(err).Msg("failed to scan snapshot entry, starting from empty state")
			return domain.EmptySnapshot()
		}
		if rating.Valid {
			snap.LastRatings[username] = int(rating.Int64)
		}
		if rank.Valid {
			snap.LastRanks[username] = int(rank.Int64)
		}
		if baseline.Valid {
			snap.WeeklyBaseline[username] = int(baseline.Int64)
		}
	}
	if err := rows.Err(); err != nil {
		r.logger.Warn().Err(err).Msg("failed to read snapshot entries, starting from empty state")
		return domain.EmptySnapshot()
	}

	return snap
}

// Replace swaps the persisted snapshot for the given one in a single
// transaction. Callers invoke it only after the render and message edit have
// succeeded, so the stored record always reflects a fully rendered refresh.
func (r *SnapshotRepository) Replace(ctx context.Context, snap *domain.Snapshot) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var baselineAt any
	if !snap.WeeklyBaselineAt.IsZero() {
		baselineAt = snap.WeeklyBaselineAt
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO snapshot (id, channel_id, message_id, weekly_baseline_at)
		VALUES (1, ?, ?, ?)
		ON CONFLICT (id) DO UPDATE SET
			channel_id = excluded.channel_id,
			message_id = excluded.message_id,
			weekly_baseline_at = excluded.weekly_baseline_at`,
		snap.ChannelID, snap.MessageID, baselineAt)
	if err != nil {
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_entries`); err != nil {
		return fmt.Errorf("failed to clear snapshot entries: %w", err)
	}

	for _, username := range snapshotUsernames(snap) {
		var rating, rank, baseline any
		if v, ok := snap.LastRatings[username]; ok {
			rating = v
		}
		if v, ok := snap.LastRanks[username]; ok {
			rank = v
		}
		if v, ok := snap.WeeklyBaseline[username]; ok {
			baseline = v
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO snapshot_entries (username, last_rating, last_rank, weekly_baseline_rating)
			VALUES (?, ?, ?, ?)`,
			username, rating, rank, baseline)
		if err != nil {
			return fmt.Errorf("failed to write snapshot entry for %s: %w", username, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit snapshot: %w", err)
	}

	r.logger.Debug().
		Int("entries", len(snap.LastRanks)).
		Str("message_id", snap.MessageID).
		Msg("snapshot replaced")
	return nil
}

// snapshotUsernames is the union of all map keys; a username can sit in the
// weekly baseline without being in the current roster.
func snapshotUsernames(snap *domain.Snapshot) []string {
	seen := map[string]bool{}
	var usernames []string
	add := func(m map[string]int) {
		for username := range m {
			if !seen[username] {
				seen[username] = true
				usernames = append(usernames, username)
			}
		}
	}
	add(snap.LastRanks)
	add(snap.LastRatings)
	add(snap.WeeklyBaseline)
	return usernames
}
