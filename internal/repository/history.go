package repository

import (
	"context"
	"database/sql"
	"fmt"

	"chess-leaderboard-bot/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

// HistoryRepository is the append-only log of observed ratings, one row per
// ranked participant per completed refresh.
type HistoryRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewHistoryRepository(db *sql.DB, logger zerolog.Logger) *HistoryRepository {
	return &HistoryRepository{db: db, logger: logger}
}

func (r *HistoryRepository) RecordBatch(ctx context.Context, observations []domain.Observation) error {
	if len(observations) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	for _, obs := range observations {
		id := obs.ID
		if id == "" {
			id, err = gonanoid.New()
			if err != nil {
				return fmt.Errorf("failed to generate nanoid: %w", err)
			}
		}

		var rating any
		if obs.Rating != nil {
			rating = *obs.Rating
		}

		_, err := tx.ExecContext(ctx, `
			INSERT INTO rating_history (id, username, rating, rank, refresh_id, recorded_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			id, obs.Username, rating, obs.Rank, obs.RefreshID, obs.RecordedAt)
		if err != nil {
			return fmt.Errorf("failed to insert observation for %s: %w", obs.Username, err)
		}
	}

	return tx.Commit()
}

func (r *HistoryRepository) RecentByUsername(ctx context.Context, username string, limit int) ([]domain.Observation, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, username, rating, rank, refresh_id, recorded_at
		FROM rating_history
		WHERE username = ?
		ORDER BY recorded_at DESC
		LIMIT ?`,
		domain.NormalizeUsername(username), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query rating history: %w", err)
	}
	defer rows.Close()

	var observations []domain.Observation
	for rows.Next() {
		var obs domain.Observation
		var rating sql.NullInt64
		if err := rows.Scan(&obs.ID, &obs.Username, &rating, &obs.Rank, &obs.RefreshID, &obs.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan observation: %w", err)
		}
		if rating.Valid {
			v := int(rating.Int64)
			obs.Rating = &v
		}
		observations = append(observations, obs)
	}
	return observations, rows.Err()
}
