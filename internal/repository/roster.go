package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"chess-leaderboard-bot/internal/domain"

	"github.com/rs/zerolog"
)

// RosterRepository is the participant registry: one row per Discord user,
// keyed by their id.
type RosterRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewRosterRepository(db *sql.DB, logger zerolog.Logger) *RosterRepository {
	return &RosterRepository{db: db, logger: logger}
}

// List returns every registered participant ordered by display name, so
// iteration order is stable across refreshes.
func (r *RosterRepository) List(ctx context.Context) ([]domain.Participant, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT caller_id, display_name, username, created_at, updated_at
		FROM participants
		ORDER BY display_name COLLATE NOCASE, caller_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	defer rows.Close()

	var participants []domain.Participant
	for rows.Next() {
		var p domain.Participant
		if err := rows.Scan(&p.CallerID, &p.DisplayName, &p.Username, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan participant: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, rows.Err()
}

func (r *RosterRepository) Get(ctx context.Context, callerID string) (*domain.Participant, error) {
	var p domain.Participant
	err := r.db.QueryRowContext(ctx, `
		SELECT caller_id, display_name, username, created_at, updated_at
		FROM participants
		WHERE caller_id = ?`, callerID).
		Scan(&p.CallerID, &p.DisplayName, &p.Username, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *RosterRepository) Upsert(ctx context.Context, p *domain.Participant) error {
	now := time.Now()
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO participants (caller_id, display_name, username, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (caller_id) DO UPDATE SET
			display_name = excluded.display_name,
			username = excluded.username,
			updated_at = excluded.updated_at`,
		p.CallerID, p.DisplayName, p.Username, now, now)
	if err != nil {
		r.logger.Error().Err(err).Str("caller_id", p.CallerID).Msg("failed to upsert participant")
		return fmt.Errorf("failed to upsert participant: %w", err)
	}

	r.logger.Info().
		Str("caller_id", p.CallerID).
		Str("display_name", p.DisplayName).
		Str("username", p.Username).
		Msg("participant saved")
	return nil
}
