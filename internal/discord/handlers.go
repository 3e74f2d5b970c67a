package discord

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"chess-leaderboard-bot/internal/config"
	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/cooldown"
	"chess-leaderboard-bot/internal/domain"
	"chess-leaderboard-bot/internal/repository"
	"chess-leaderboard-bot/internal/service"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

var commands = []*discordgo.ApplicationCommand{
	{
		Name:        "setchess",
		Description: "Link your Chess.com username to the leaderboard",
		Options: []*discordgo.ApplicationCommandOption{
			{
				Type:        discordgo.ApplicationCommandOptionString,
				Name:        "username",
				Description: "Your Chess.com username",
				Required:    true,
			},
		},
	},
	{
		Name:        "mychess",
		Description: "Show your saved Chess.com username",
	},
	{
		Name:        "players",
		Description: "List everyone registered on the leaderboard",
	},
	{
		Name:        "leaderboard",
		Description: "Refresh the leaderboard now",
	},
}

// Handler owns the slash-command surface and the system-initiated refresh
// triggers that ride on gateway events.
type Handler struct {
	client    *Client
	roster    *repository.RosterRepository
	gate      *cooldown.Gate
	refresher *service.RefreshService
	channelID string
	logger    zerolog.Logger
}

func NewHandler(
	client *Client,
	roster *repository.RosterRepository,
	gate *cooldown.Gate,
	refresher *service.RefreshService,
	cfg *config.Config,
	logger zerolog.Logger,
) *Handler {
	return &Handler{
		client:    client,
		roster:    roster,
		gate:      gate,
		refresher: refresher,
		channelID: cfg.LeaderboardChannelID,
		logger:    logger,
	}
}

// Register attaches the gateway handlers. Call before opening the session.
func (h *Handler) Register() {
	h.client.session.AddHandler(h.onReady)
	h.client.session.AddHandler(h.onInteraction)
}

func (h *Handler) onReady(s *discordgo.Session, r *discordgo.Ready) {
	if _, err := s.ApplicationCommandBulkOverwrite(r.User.ID, "", commands); err != nil {
		h.logger.Error().Err(err).Msg("failed to register application commands")
	}
	h.logger.Info().Str("user", r.User.String()).Msg("bot ready")

	// Best-effort startup refresh. Failure is contained here so it can never
	// take the process down with it.
	if h.channelID != "" {
		go h.backgroundRefresh(h.channelID, service.RefreshOptions{Trigger: "startup"})
	}
}

func (h *Handler) backgroundRefresh(channelID string, opts service.RefreshOptions) {
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error().Interface("panic", rec).Str("trigger", opts.Trigger).Msg("refresh panicked")
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshTimeout)
	defer cancel()

	if err := h.refresher.Refresh(ctx, channelID, opts); err != nil {
		h.logger.Warn().Err(err).Str("trigger", opts.Trigger).Msg("background refresh failed")
	}
}

func (h *Handler) onInteraction(s *discordgo.Session, i *discordgo.InteractionCreate) {
	if i.Type != discordgo.InteractionApplicationCommand {
		return
	}

	switch i.ApplicationCommandData().Name {
	case "setchess":
		h.handleSetChess(s, i)
	case "mychess":
		h.handleMyChess(s, i)
	case "players":
		h.handlePlayers(s, i)
	case "leaderboard":
		h.handleLeaderboard(s, i)
	}
}

func (h *Handler) handleSetChess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	username := strings.TrimSpace(i.ApplicationCommandData().Options[0].StringValue())
	if domain.NormalizeUsername(username) == "" {
		h.replyEphemeral(s, i, "Please provide a valid Chess.com username.")
		return
	}

	user := interactionUser(i)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	err := h.roster.Upsert(ctx, &domain.Participant{
		CallerID:    user.ID,
		DisplayName: user.String(),
		Username:    username,
	})
	if err != nil {
		h.logger.Error().Err(err).Str("caller_id", user.ID).Msg("failed to save registration")
		h.replyEphemeral(s, i, "Could not save your username. Try again later.")
		return
	}

	h.replyEphemeral(s, i, fmt.Sprintf("Saved: **%s** -> **%s**", user.String(), username))

	// Registration refreshes the board so the new player shows up right away;
	// it is system-initiated and bypasses the cooldown gate.
	go h.backgroundRefresh(h.targetChannel(i), service.RefreshOptions{Trigger: "registration"})
}

func (h *Handler) handleMyChess(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)

	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	participant, err := h.roster.Get(ctx, user.ID)
	if errors.Is(err, sql.ErrNoRows) {
		h.replyEphemeral(s, i, "You are not registered yet. Use `/setchess <username>`.")
		return
	}
	if err != nil {
		h.logger.Error().Err(err).Str("caller_id", user.ID).Msg("failed to look up registration")
		h.replyEphemeral(s, i, "Could not look up your registration. Try again later.")
		return
	}

	h.replyEphemeral(s, i, fmt.Sprintf("Your saved Chess.com username is: **%s**", participant.Username))
}

func (h *Handler) handlePlayers(s *discordgo.Session, i *discordgo.InteractionCreate) {
	ctx, cancel := context.WithTimeout(context.Background(), constants.DatabaseTimeout)
	defer cancel()

	participants, err := h.roster.List(ctx)
	if err != nil {
		h.logger.Error().Err(err).Msg("failed to list participants")
		h.replyEphemeral(s, i, "Could not list registrations. Try again later.")
		return
	}
	if len(participants) == 0 {
		h.replyEphemeral(s, i, "No one is registered yet. Use `/setchess <username>`.")
		return
	}

	lines := make([]string, 0, len(participants))
	for _, p := range participants {
		lines = append(lines, fmt.Sprintf("**%s** -> %s", p.DisplayName, p.Username))
	}
	h.replyEphemeral(s, i, strings.Join(lines, "\n"))
}

func (h *Handler) handleLeaderboard(s *discordgo.Session, i *discordgo.InteractionCreate) {
	user := interactionUser(i)

	if !h.gate.TryAcquire(user.ID) {
		h.replyEphemeral(s, i, "Leaderboard is refreshing. Try again shortly.")
		return
	}

	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseDeferredChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{Flags: discordgo.MessageFlagsEphemeral},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to defer interaction reply")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), constants.RefreshTimeout)
	defer cancel()

	if err := h.refresher.Refresh(ctx, h.targetChannel(i), service.RefreshOptions{Trigger: "command"}); err != nil {
		h.logger.Error().Err(err).Str("caller_id", user.ID).Msg("on-demand refresh failed")
		content := "Could not refresh the leaderboard. Try again later."
		if _, err := s.InteractionResponseEdit(i.Interaction, &discordgo.WebhookEdit{Content: &content}); err != nil {
			h.logger.Warn().Err(err).Msg("failed to edit interaction reply")
		}
		return
	}

	if err := s.InteractionResponseDelete(i.Interaction); err != nil {
		h.logger.Warn().Err(err).Msg("failed to delete interaction reply")
	}
}

// targetChannel prefers the configured leaderboard channel and falls back to
// wherever the command was issued.
func (h *Handler) targetChannel(i *discordgo.InteractionCreate) string {
	if h.channelID != "" {
		return h.channelID
	}
	return i.ChannelID
}

func (h *Handler) replyEphemeral(s *discordgo.Session, i *discordgo.InteractionCreate, content string) {
	err := s.InteractionRespond(i.Interaction, &discordgo.InteractionResponse{
		Type: discordgo.InteractionResponseChannelMessageWithSource,
		Data: &discordgo.InteractionResponseData{
			Content: content,
			Flags:   discordgo.MessageFlagsEphemeral,
		},
	})
	if err != nil {
		h.logger.Warn().Err(err).Msg("failed to send interaction reply")
	}
}

func interactionUser(i *discordgo.InteractionCreate) *discordgo.User {
	if i.Member != nil {
		return i.Member.User
	}
	return i.User
}
