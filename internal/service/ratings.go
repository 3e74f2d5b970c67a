package service

import (
	"context"
	"sync"
	"time"

	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/domain"

	"github.com/rs/zerolog"
	"golang.org/x/sync/singleflight"
)

// RatingFetcher retrieves one player's current rating from the external
// source. nil means unrated; failures never surface as errors.
type RatingFetcher interface {
	RapidRating(ctx context.Context, username string) *int
}

type cacheEntry struct {
	rating    *int
	fetchedAt time.Time
}

// RatingService shields chess.com from redundant calls: results (including
// "unrated") are cached per normalized username for the TTL. The cache lives
// in process memory only; a restart just means cold fetches.
type RatingService struct {
	fetcher RatingFetcher
	logger  zerolog.Logger

	mu    sync.Mutex
	cache map[string]cacheEntry

	group singleflight.Group
	ttl   time.Duration
	now   func() time.Time
}

func NewRatingService(fetcher RatingFetcher, logger zerolog.Logger) *RatingService {
	return &RatingService{
		fetcher: fetcher,
		logger:  logger,
		cache:   map[string]cacheEntry{},
		ttl:     constants.RatingCacheTTL,
		now:     time.Now,
	}
}

// RapidRating returns the player's rating and whether it was served from
// cache. Concurrent lookups for the same username share one upstream call.
func (s *RatingService) RapidRating(ctx context.Context, username string) (rating *int, fromCache bool) {
	norm := domain.NormalizeUsername(username)
	if norm == "" {
		return nil, false
	}

	s.mu.Lock()
	entry, ok := s.cache[norm]
	live := ok && s.now().Sub(entry.fetchedAt) < s.ttl
	s.mu.Unlock()

	if live {
		s.logger.Debug().Str("username", norm).Msg("rating served from cache")
		return entry.rating, true
	}

	result, _, shared := s.group.Do(norm, func() (any, error) {
		rating := s.fetcher.RapidRating(ctx, norm)

		s.mu.Lock()
		s.cache[norm] = cacheEntry{rating: rating, fetchedAt: s.now()}
		s.mu.Unlock()

		return rating, nil
	})

	return result.(*int), shared
}
