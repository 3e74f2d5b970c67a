package main

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"

	"chess-leaderboard-bot/internal/config"
	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/discord"
	fxmodules "chess-leaderboard-bot/internal/fx"
	"chess-leaderboard-bot/internal/scheduler"
	"chess-leaderboard-bot/internal/server"

	"github.com/rs/zerolog"
	"go.uber.org/fx"
)

func main() {
	fx.New(
		fxmodules.Module,
		fx.Invoke(runBot),
	).Run()
}

func runBot(
	lc fx.Lifecycle,
	cfg *config.Config,
	db *sql.DB,
	client *discord.Client,
	handler *discord.Handler,
	sched *scheduler.Scheduler,
	status *server.StatusServer,
	logger zerolog.Logger,
) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.HTTPPort),
		Handler: status.Handler(),
	}

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			handler.Register()
			if err := client.Open(); err != nil {
				return err
			}

			sched.Start()

			go func() {
				logger.Info().Str("addr", srv.Addr).Msg("status server starting")
				if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
					logger.Fatal().Err(err).Msg("status server failed")
				}
			}()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			logger.Info().Msg("shutting down")

			sched.Stop()
			if err := client.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing discord session")
			}

			shutdownCtx, cancel := context.WithTimeout(context.Background(), constants.ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				logger.Warn().Err(err).Msg("status server shutdown failed")
			}

			if err := db.Close(); err != nil {
				logger.Warn().Err(err).Msg("error closing database connection")
			}

			logger.Info().Msg("stopped gracefully")
			return nil
		},
	})
}
