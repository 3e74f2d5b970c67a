package fx

import (
	"chess-leaderboard-bot/internal/api"
	"chess-leaderboard-bot/internal/config"
	"chess-leaderboard-bot/internal/cooldown"
	"chess-leaderboard-bot/internal/database"
	"chess-leaderboard-bot/internal/discord"
	"chess-leaderboard-bot/internal/leaderboard"
	"chess-leaderboard-bot/internal/logger"
	"chess-leaderboard-bot/internal/repository"
	"chess-leaderboard-bot/internal/scheduler"
	"chess-leaderboard-bot/internal/server"
	"chess-leaderboard-bot/internal/service"

	"go.uber.org/fx"
)

var Module = fx.Options(
	fx.Provide(logger.New),
	fx.Provide(config.Load),
	fx.Provide(database.New),
	// repos
	fx.Provide(repository.NewRosterRepository),
	fx.Provide(repository.NewSnapshotRepository),
	fx.Provide(repository.NewHistoryRepository),
	fx.Provide(func(r *repository.RosterRepository) service.RosterStore { return r }),
	fx.Provide(func(r *repository.SnapshotRepository) service.SnapshotStore { return r }),
	fx.Provide(func(r *repository.HistoryRepository) service.HistoryStore { return r }),
	// external clients
	fx.Provide(api.NewChessClient),
	fx.Provide(func(c *api.ChessClient) service.RatingFetcher { return c }),
	fx.Provide(discord.New),
	fx.Provide(func(c *discord.Client) leaderboard.ChatClient { return c }),
	// core engine
	fx.Provide(cooldown.NewGate),
	fx.Provide(leaderboard.NewReconciler),
	fx.Provide(service.NewRatingService),
	fx.Provide(service.NewRefreshService),
	// surfaces
	fx.Provide(discord.NewHandler),
	fx.Provide(scheduler.New),
	fx.Provide(server.NewStatusServer),
)
