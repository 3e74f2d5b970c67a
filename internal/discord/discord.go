// Package discord wraps the Discord gateway: session lifecycle, the chat
// operations the leaderboard engine needs, and the slash-command surface.
package discord

import (
	"context"
	"fmt"

	"chess-leaderboard-bot/internal/config"

	"github.com/bwmarrin/discordgo"
	"github.com/rs/zerolog"
)

// Client owns the gateway session and implements leaderboard.ChatClient.
type Client struct {
	session *discordgo.Session
	logger  zerolog.Logger
}

func New(cfg *config.Config, logger zerolog.Logger) (*Client, error) {
	session, err := discordgo.New("Bot " + cfg.DiscordToken)
	if err != nil {
		return nil, fmt.Errorf("failed to create discord session: %w", err)
	}
	session.Identify.Intents = discordgo.IntentsGuilds

	return &Client{session: session, logger: logger}, nil
}

func (c *Client) Open() error {
	if err := c.session.Open(); err != nil {
		return fmt.Errorf("failed to open discord session: %w", err)
	}
	c.logger.Info().Msg("discord session opened")
	return nil
}

func (c *Client) Close() error {
	return c.session.Close()
}

func (c *Client) FetchChannel(ctx context.Context, channelID string) error {
	_, err := c.session.Channel(channelID, discordgo.WithContext(ctx))
	return err
}

func (c *Client) FetchMessage(ctx context.Context, channelID, messageID string) error {
	_, err := c.session.ChannelMessage(channelID, messageID, discordgo.WithContext(ctx))
	return err
}

func (c *Client) SendMessage(ctx context.Context, channelID, content string) (string, error) {
	msg, err := c.session.ChannelMessageSend(channelID, content, discordgo.WithContext(ctx))
	if err != nil {
		return "", err
	}
	return msg.ID, nil
}

func (c *Client) EditMessage(ctx context.Context, channelID, messageID, content string) error {
	_, err := c.session.ChannelMessageEdit(channelID, messageID, content, discordgo.WithContext(ctx))
	return err
}
