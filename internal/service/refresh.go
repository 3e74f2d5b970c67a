package service

import (
	"context"
	"fmt"
	"time"

	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/domain"
	"chess-leaderboard-bot/internal/leaderboard"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"
)

// RosterStore lists the registered participants.
type RosterStore interface {
	List(ctx context.Context) ([]domain.Participant, error)
}

// SnapshotStore loads and atomically replaces the persisted refresh state.
type SnapshotStore interface {
	Load(ctx context.Context) *domain.Snapshot
	Replace(ctx context.Context, snap *domain.Snapshot) error
}

// HistoryStore records per-refresh rating observations.
type HistoryStore interface {
	RecordBatch(ctx context.Context, observations []domain.Observation) error
}

type RefreshOptions struct {
	// Trigger labels the invocation source in logs: startup, weekly, command,
	// registration.
	Trigger string

	// SetWeeklyBaseline freezes the just-observed ratings as the new weekly
	// reference point. Only the scheduled weekly refresh sets this.
	SetWeeklyBaseline bool
}

// RefreshService runs one full leaderboard refresh: roster -> ratings ->
// ranking -> render -> message reconcile -> snapshot persist. Overlapping
// invocations for the same channel coalesce into a single in-flight refresh.
type RefreshService struct {
	ratings    *RatingService
	roster     RosterStore
	snapshots  SnapshotStore
	history    HistoryStore
	reconciler *leaderboard.Reconciler
	chat       leaderboard.ChatClient
	logger     zerolog.Logger

	group singleflight.Group
	now   func() time.Time
}

func NewRefreshService(
	ratings *RatingService,
	roster RosterStore,
	snapshots SnapshotStore,
	history HistoryStore,
	reconciler *leaderboard.Reconciler,
	chat leaderboard.ChatClient,
	logger zerolog.Logger,
) *RefreshService {
	return &RefreshService{
		ratings:    ratings,
		roster:     roster,
		snapshots:  snapshots,
		history:    history,
		reconciler: reconciler,
		chat:       chat,
		logger:     logger,
		now:        time.Now,
	}
}

// Refresh runs a refresh for the given channel, or joins one already in
// flight. Nothing is persisted unless the whole refresh completes through the
// message edit, so a failure leaves the prior snapshot untouched.
func (s *RefreshService) Refresh(ctx context.Context, channelID string, opts RefreshOptions) error {
	if channelID == "" {
		return fmt.Errorf("no leaderboard channel configured")
	}

	_, err, shared := s.group.Do(channelID, func() (any, error) {
		return nil, s.refresh(ctx, channelID, opts)
	})
	if shared {
		s.logger.Debug().Str("channel_id", channelID).Str("trigger", opts.Trigger).
			Msg("refresh coalesced with one already in flight")
	}
	return err
}

func (s *RefreshService) refresh(ctx context.Context, channelID string, opts RefreshOptions) error {
	refreshID := uuid.NewString()
	log := s.logger.With().
		Str("refresh_id", refreshID).
		Str("channel_id", channelID).
		Str("trigger", opts.Trigger).
		Logger()

	ctx, cancel := context.WithTimeout(ctx, constants.RefreshTimeout)
	defer cancel()

	start := s.now()
	log.Info().Bool("set_weekly_baseline", opts.SetWeeklyBaseline).Msg("refresh started")

	prev := s.snapshots.Load(ctx)

	roster, err := s.roster.List(ctx)
	if err != nil {
		return fmt.Errorf("failed to load roster: %w", err)
	}

	ratings := s.resolveRatings(ctx, roster)

	rows := leaderboard.Rank(roster, ratings, prev)
	body := leaderboard.Render(rows)

	messageID, err := s.reconciler.Ensure(ctx, channelID, prev)
	if err != nil {
		return err
	}
	if err := s.chat.EditMessage(ctx, channelID, messageID, body); err != nil {
		return fmt.Errorf("failed to edit leaderboard message: %w", err)
	}

	next := leaderboard.NextSnapshot(prev, rows, channelID, messageID, opts.SetWeeklyBaseline)
	if opts.SetWeeklyBaseline {
		next.WeeklyBaselineAt = s.now()
	}
	if err := s.snapshots.Replace(ctx, next); err != nil {
		return fmt.Errorf("failed to persist snapshot: %w", err)
	}

	// History is an observation log, not refresh state: a write failure is
	// logged and the refresh still counts as complete.
	if err := s.history.RecordBatch(ctx, s.observations(rows, refreshID)); err != nil {
		log.Warn().Err(err).Msg("failed to record rating history")
	}

	log.Info().
		Int("participants", len(rows)).
		Dur("duration", s.now().Sub(start)).
		Msg("refresh completed")
	return nil
}

// resolveRatings fetches every participant's rating with the calls in flight
// concurrently. Each lookup gets its own timeout and failures resolve to
// unrated, so one slow or broken profile never blocks the others.
func (s *RefreshService) resolveRatings(ctx context.Context, roster []domain.Participant) map[string]*int {
	results := make([]*int, len(roster))

	g, gctx := errgroup.WithContext(ctx)
	for i, p := range roster {
		i, p := i, p
		g.Go(func() error {
			callCtx, cancel := context.WithTimeout(gctx, constants.ExternalAPITimeout)
			defer cancel()
			results[i], _ = s.ratings.RapidRating(callCtx, p.Username)
			return nil
		})
	}
	_ = g.Wait()

	ratings := make(map[string]*int, len(roster))
	for i, p := range roster {
		if norm := domain.NormalizeUsername(p.Username); norm != "" {
			ratings[norm] = results[i]
		}
	}
	return ratings
}

func (s *RefreshService) observations(rows []domain.Row, refreshID string) []domain.Observation {
	recordedAt := s.now()
	observations := make([]domain.Observation, 0, len(rows))
	for _, row := range rows {
		norm := domain.NormalizeUsername(row.Username)
		if norm == "" {
			continue
		}
		observations = append(observations, domain.Observation{
			Username:   norm,
			Rating:     row.Rating,
			Rank:       row.Rank,
			RefreshID:  refreshID,
			RecordedAt: recordedAt,
		})
	}
	return observations
}
