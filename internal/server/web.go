// Package server exposes a small read-only HTTP status surface next to the
// bot: health, current standings, and recent rating history.
package server

import (
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"time"

	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/cors"
	"github.com/rs/zerolog"
)

type StatusServer struct {
	snapshots *repository.SnapshotRepository
	history   *repository.HistoryRepository
	logger    zerolog.Logger
}

func NewStatusServer(
	snapshots *repository.SnapshotRepository,
	history *repository.HistoryRepository,
	logger zerolog.Logger,
) *StatusServer {
	return &StatusServer{snapshots: snapshots, history: history, logger: logger}
}

func (s *StatusServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /leaderboard.json", s.handleLeaderboard)
	mux.HandleFunc("GET /history", s.handleHistory)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	})

	return s.requestID(c.Handler(mux))
}

func (s *StatusServer) requestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.New().String()
		}
		w.Header().Set("X-Request-ID", requestID)

		log := s.logger.With().Str("request_id", requestID).Logger()
		next.ServeHTTP(w, r.WithContext(log.WithContext(r.Context())))

		log.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request completed")
	})
}

func (s *StatusServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

type standingEntry struct {
	Username       string `json:"username"`
	Rank           int    `json:"rank"`
	Rating         *int   `json:"rating"`
	WeeklyBaseline *int   `json:"weekly_baseline,omitempty"`
}

type standingsResponse struct {
	MessageID        string          `json:"message_id,omitempty"`
	WeeklyBaselineAt *time.Time      `json:"weekly_baseline_at,omitempty"`
	Standings        []standingEntry `json:"standings"`
}

// handleLeaderboard reports the standings as of the last completed refresh,
// straight from the snapshot; it never triggers a refresh itself.
func (s *StatusServer) handleLeaderboard(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	snap := s.snapshots.Load(ctx)

	resp := standingsResponse{
		MessageID: snap.MessageID,
		Standings: make([]standingEntry, 0, len(snap.LastRanks)),
	}
	if !snap.WeeklyBaselineAt.IsZero() {
		t := snap.WeeklyBaselineAt
		resp.WeeklyBaselineAt = &t
	}

	for username, rank := range snap.LastRanks {
		entry := standingEntry{Username: username, Rank: rank}
		if rating, ok := snap.LastRatings[username]; ok {
			v := rating
			entry.Rating = &v
		}
		if base, ok := snap.WeeklyBaseline[username]; ok {
			v := base
			entry.WeeklyBaseline = &v
		}
		resp.Standings = append(resp.Standings, entry)
	}
	sort.Slice(resp.Standings, func(i, j int) bool {
		return resp.Standings[i].Rank < resp.Standings[j].Rank
	})

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *StatusServer) handleHistory(w http.ResponseWriter, r *http.Request) {
	username := r.URL.Query().Get("username")
	if username == "" {
		http.Error(w, "username is required", http.StatusBadRequest)
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), constants.DatabaseTimeout)
	defer cancel()

	observations, err := s.history.RecentByUsername(ctx, username, constants.HistoryQueryLimit)
	if err != nil {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("failed to query history")
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	s.writeJSON(w, http.StatusOK, observations)
}

func (s *StatusServer) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		s.logger.Warn().Err(err).Msg("failed to encode response")
	}
}
