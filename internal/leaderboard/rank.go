// Package leaderboard holds the pure leaderboard engine: ranking with
// deterministic tie-breaking, delta computation against the previous
// snapshot, rendering, and reconciliation of the single output message.
package leaderboard

import (
	"sort"

	"chess-leaderboard-bot/internal/domain"
)

// Rank orders the roster into 1-based leaderboard rows and annotates each row
// with its movement against the previous snapshot.
//
// Sort order: rated players above unrated ones, higher rating first, ties
// (including all-unrated) broken by display name ascending. The order is a
// deterministic total order, which keeps rank movement meaningful across
// refreshes with identical inputs.
//
// ratings is keyed by normalized username. Each delta is computed only when
// both operands exist; a player absent from the snapshot gets nil deltas, not
// synthetic zeros.
func Rank(roster []domain.Participant, ratings map[string]*int, prev *domain.Snapshot) []domain.Row {
	rows := make([]domain.Row, 0, len(roster))
	for _, p := range roster {
		rows = append(rows, domain.Row{
			DisplayName: p.DisplayName,
			Username:    p.Username,
			Rating:      ratings[domain.NormalizeUsername(p.Username)],
		})
	}

	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i].Rating, rows[j].Rating
		switch {
		case a == nil && b == nil:
			return rows[i].DisplayName < rows[j].DisplayName
		case a == nil:
			return false
		case b == nil:
			return true
		case *a != *b:
			return *a > *b
		default:
			return rows[i].DisplayName < rows[j].DisplayName
		}
	})

	for i := range rows {
		rows[i].Rank = i + 1

		norm := domain.NormalizeUsername(rows[i].Username)
		if norm == "" {
			continue
		}

		if rows[i].Rating != nil {
			if last, ok := prev.LastRatings[norm]; ok {
				d := *rows[i].Rating - last
				rows[i].RatingDelta = &d
			}
			if base, ok := prev.WeeklyBaseline[norm]; ok {
				d := *rows[i].Rating - base
				rows[i].WeeklyDelta = &d
			}
		}
		if lastRank, ok := prev.LastRanks[norm]; ok {
			m := lastRank - rows[i].Rank
			rows[i].RankMove = &m
		}
	}

	return rows
}

// NextSnapshot derives the persisted state for a completed refresh from its
// ranked rows. Unrated players keep their rank recorded but contribute no
// rating. The weekly baseline is frozen to the just-observed ratings only
// when setBaseline is true; otherwise it is carried forward untouched.
func NextSnapshot(prev *domain.Snapshot, rows []domain.Row, channelID, messageID string, setBaseline bool) *domain.Snapshot {
	next := &domain.Snapshot{
		ChannelID:        channelID,
		MessageID:        messageID,
		LastRatings:      map[string]int{},
		LastRanks:        map[string]int{},
		WeeklyBaseline:   prev.WeeklyBaseline,
		WeeklyBaselineAt: prev.WeeklyBaselineAt,
	}

	for _, row := range rows {
		norm := domain.NormalizeUsername(row.Username)
		if norm == "" {
			continue
		}
		next.LastRanks[norm] = row.Rank
		if row.Rating != nil {
			next.LastRatings[norm] = *row.Rating
		}
	}

	if setBaseline {
		next.WeeklyBaseline = next.LastRatings
	}
	return next
}
