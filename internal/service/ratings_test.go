package service

import (
	"context"
	"testing"
	"time"

	"chess-leaderboard-bot/internal/constants"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

type fakeFetcher struct {
	ratings map[string]*int
	calls   int
}

func (f *fakeFetcher) RapidRating(ctx context.Context, username string) *int {
	f.calls++
	return f.ratings[username]
}

func intp(v int) *int { return &v }

func newTestRatingService(fetcher RatingFetcher) (*RatingService, *time.Time) {
	current := time.Date(2026, 8, 24, 12, 0, 0, 0, time.UTC)
	s := NewRatingService(fetcher, zerolog.Nop())
	s.now = func() time.Time { return current }
	return s, &current
}

func TestRatingServiceFetchesOnColdCache(t *testing.T) {
	fetcher := &fakeFetcher{ratings: map[string]*int{"alice": intp(1500)}}
	s, _ := newTestRatingService(fetcher)

	rating, fromCache := s.RapidRating(context.Background(), "alice")
	require.Equal(t, intp(1500), rating)
	require.False(t, fromCache)
	require.Equal(t, 1, fetcher.calls)
}

func TestRatingServiceServesWithinTTL(t *testing.T) {
	fetcher := &fakeFetcher{ratings: map[string]*int{"alice": intp(1500)}}
	s, clock := newTestRatingService(fetcher)

	s.RapidRating(context.Background(), "alice")

	*clock = clock.Add(constants.RatingCacheTTL - time.Second)
	rating, fromCache := s.RapidRating(context.Background(), "alice")
	require.Equal(t, intp(1500), rating)
	require.True(t, fromCache)
	require.Equal(t, 1, fetcher.calls)
}

func TestRatingServiceRefetchesAfterTTL(t *testing.T) {
	fetcher := &fakeFetcher{ratings: map[string]*int{"alice": intp(1500)}}
	s, clock := newTestRatingService(fetcher)

	s.RapidRating(context.Background(), "alice")

	*clock = clock.Add(constants.RatingCacheTTL + time.Second)
	fetcher.ratings["alice"] = intp(1520)

	rating, fromCache := s.RapidRating(context.Background(), "alice")
	require.Equal(t, intp(1520), rating)
	require.False(t, fromCache)
	require.Equal(t, 2, fetcher.calls)
}

func TestRatingServiceCachesUnratedResults(t *testing.T) {
	fetcher := &fakeFetcher{ratings: map[string]*int{}}
	s, _ := newTestRatingService(fetcher)

	rating, _ := s.RapidRating(context.Background(), "ghost")
	require.Nil(t, rating)

	rating, fromCache := s.RapidRating(context.Background(), "ghost")
	require.Nil(t, rating)
	require.True(t, fromCache)
	require.Equal(t, 1, fetcher.calls)
}

func TestRatingServiceNormalizesUsernames(t *testing.T) {
	fetcher := &fakeFetcher{ratings: map[string]*int{"alice": intp(1500)}}
	s, _ := newTestRatingService(fetcher)

	s.RapidRating(context.Background(), "  ALICE ")

	rating, fromCache := s.RapidRating(context.Background(), "alice")
	require.Equal(t, intp(1500), rating)
	require.True(t, fromCache)
	require.Equal(t, 1, fetcher.calls)
}

func TestRatingServiceSkipsEmptyUsername(t *testing.T) {
	fetcher := &fakeFetcher{}
	s, _ := newTestRatingService(fetcher)

	rating, fromCache := s.RapidRating(context.Background(), "   ")
	require.Nil(t, rating)
	require.False(t, fromCache)
	require.Zero(t, fetcher.calls)
}
