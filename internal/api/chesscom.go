package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"time"

	"chess-leaderboard-bot/internal/domain"

	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const userAgent = "RapidChessLeaderboardBot/1.0"

// ChessClient fetches player stats from the chess.com public API.
type ChessClient struct {
	client *fasthttp.Client
	logger zerolog.Logger
}

func NewChessClient(logger zerolog.Logger) *ChessClient {
	return &ChessClient{
		client: &fasthttp.Client{
			MaxConnsPerHost:     100,
			ReadTimeout:         10 * time.Second,
			WriteTimeout:        10 * time.Second,
			MaxIdleConnDuration: 1 * time.Minute,
		},
		logger: logger,
	}
}

type statsResponse struct {
	ChessRapid struct {
		Last struct {
			Rating *int `json:"rating"`
		} `json:"last"`
	} `json:"chess_rapid"`
}

// RapidRating returns the player's current rapid rating, or nil when the
// player is unrated or the lookup fails in any way. The leaderboard must
// always render, so transport errors, non-200 statuses and malformed bodies
// all resolve to nil here instead of propagating.
func (c *ChessClient) RapidRating(ctx context.Context, username string) *int {
	norm := domain.NormalizeUsername(username)
	if norm == "" {
		return nil
	}

	addr := fmt.Sprintf("https://api.chess.com/pub/player/%s/stats", url.PathEscape(norm))

	body, err := c.get(ctx, addr)
	if err != nil {
		c.logger.Warn().Err(err).Str("username", norm).Msg("rating fetch failed, treating as unrated")
		return nil
	}

	var stats statsResponse
	if err := json.Unmarshal(body, &stats); err != nil {
		c.logger.Warn().Err(err).Str("username", norm).Msg("malformed stats payload, treating as unrated")
		return nil
	}

	rating := stats.ChessRapid.Last.Rating
	if rating == nil {
		c.logger.Debug().Str("username", norm).Msg("no rapid rating on profile")
	}
	return rating
}

func (c *ChessClient) get(ctx context.Context, addr string) ([]byte, error) {
	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(addr)
	req.Header.SetMethod(fasthttp.MethodGet)
	req.Header.SetUserAgent(userAgent)

	if deadline, ok := ctx.Deadline(); ok {
		if err := c.client.DoDeadline(req, resp, deadline); err != nil {
			return nil, err
		}
	} else {
		if err := c.client.Do(req, resp); err != nil {
			return nil, err
		}
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		return nil, fmt.Errorf("API error: %d", resp.StatusCode())
	}

	// Body() is only valid until release; hand back a copy.
	out := make([]byte, len(resp.Body()))
	copy(out, resp.Body())
	return out, nil
}
