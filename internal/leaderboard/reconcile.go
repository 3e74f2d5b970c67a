package leaderboard

import (
	"context"
	"fmt"

	"chess-leaderboard-bot/internal/domain"

	"github.com/rs/zerolog"
)

const placeholderBody = "Creating leaderboard..."

// ChatClient is the narrow slice of the chat platform the engine needs.
type ChatClient interface {
	FetchChannel(ctx context.Context, channelID string) error
	FetchMessage(ctx context.Context, channelID, messageID string) error
	SendMessage(ctx context.Context, channelID, content string) (string, error)
	EditMessage(ctx context.Context, channelID, messageID, content string) error
}

// Reconciler locates the single leaderboard message or creates it. The bot
// edits one message in place forever; it never appends a second one.
type Reconciler struct {
	chat   ChatClient
	logger zerolog.Logger
}

func NewReconciler(chat ChatClient, logger zerolog.Logger) *Reconciler {
	return &Reconciler{chat: chat, logger: logger}
}

// Ensure returns the id of the message to write the leaderboard into. When
// the snapshot points at a message in this channel that is still fetchable,
// that id is reused. Otherwise a placeholder message is sent first so the id
// exists before the real content does; the caller fills it in afterwards. A
// stale pointer is abandoned, never deleted.
//
// An unreachable channel is the one unrecoverable case: the refresh must
// abort without touching the snapshot.
func (r *Reconciler) Ensure(ctx context.Context, channelID string, snap *domain.Snapshot) (string, error) {
	if err := r.chat.FetchChannel(ctx, channelID); err != nil {
		return "", fmt.Errorf("failed to fetch leaderboard channel %s: %w", channelID, err)
	}

	if snap.MessageID != "" && snap.ChannelID == channelID {
		if err := r.chat.FetchMessage(ctx, channelID, snap.MessageID); err == nil {
			return snap.MessageID, nil
		}
		r.logger.Warn().
			Str("channel_id", channelID).
			Str("message_id", snap.MessageID).
			Msg("persisted leaderboard message unreachable, creating a new one")
	}

	messageID, err := r.chat.SendMessage(ctx, channelID, placeholderBody)
	if err != nil {
		return "", fmt.Errorf("failed to create leaderboard message: %w", err)
	}

	r.logger.Info().Str("channel_id", channelID).Str("message_id", messageID).Msg("leaderboard message created")
	return messageID, nil
}
