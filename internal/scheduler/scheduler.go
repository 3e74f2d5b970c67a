package scheduler

import (
	"context"
	"fmt"
	"time"

	"chess-leaderboard-bot/internal/config"
	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/service"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler fires the weekly baseline refresh on a fixed calendar expression
// in the configured timezone. Failures are logged and contained; the cron
// entry keeps firing regardless.
type Scheduler struct {
	cron   *cron.Cron
	logger zerolog.Logger
}

func New(cfg *config.Config, refresher *service.RefreshService, logger zerolog.Logger) (*Scheduler, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("failed to load timezone %q: %w", cfg.Timezone, err)
	}

	c := cron.New(cron.WithLocation(loc))

	_, err = c.AddFunc(cfg.WeeklyCron, func() {
		defer func() {
			if rec := recover(); rec != nil {
				logger.Error().Interface("panic", rec).Msg("weekly refresh panicked")
			}
		}()

		if cfg.LeaderboardChannelID == "" {
			logger.Debug().Msg("weekly refresh skipped, no leaderboard channel configured")
			return
		}

		ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshTimeout)
		defer cancel()

		err := refresher.Refresh(ctx, cfg.LeaderboardChannelID, service.RefreshOptions{
			Trigger:           "weekly",
			SetWeeklyBaseline: true,
		})
		if err != nil {
			logger.Error().Err(err).Msg("weekly refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("invalid weekly cron expression %q: %w", cfg.WeeklyCron, err)
	}

	return &Scheduler{cron: c, logger: logger}, nil
}

func (s *Scheduler) Start() {
	s.cron.Start()
	s.logger.Info().Msg("weekly refresh scheduled")
}

func (s *Scheduler) Stop() {
	<-s.cron.Stop().Done()
}
