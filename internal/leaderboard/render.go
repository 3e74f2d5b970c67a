package leaderboard

import (
	"fmt"
	"strconv"
	"strings"

	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/domain"
)

const emptyBody = "No one is registered yet. Use `/setchess <username>`."

// Render turns ranked rows into the leaderboard message body. The body never
// exceeds MaxBodyLength; when it would, trailing lines are dropped wholesale
// so a row is never cut mid-line.
func Render(rows []domain.Row) string {
	if len(rows) == 0 {
		return emptyBody
	}

	lines := make([]string, 0, len(rows))
	for _, row := range rows {
		lines = append(lines, renderRow(row))
	}
	return joinBounded(lines, constants.MaxBodyLength)
}

func renderRow(row domain.Row) string {
	ratingText := "unrated"
	if row.Rating != nil {
		ratingText = strconv.Itoa(*row.Rating)
	}

	var parts []string
	if s := formatRankMove(row.RankMove); s != "" {
		parts = append(parts, s)
	}
	if s := formatRatingDelta(row.RatingDelta); s != "" {
		parts = append(parts, s)
	}
	if s := formatWeeklyDelta(row.WeeklyDelta); s != "" {
		parts = append(parts, s)
	}

	suffix := ""
	if len(parts) > 0 {
		suffix = " · " + strings.Join(parts, " · ")
	}

	return fmt.Sprintf("%s **%s** -> %s (**%s**)%s",
		rankPrefix(row.Rank), row.DisplayName, row.Username, ratingText, suffix)
}

func rankPrefix(rank int) string {
	switch rank {
	case 1:
		return "🥇"
	case 2:
		return "🥈"
	case 3:
		return "🥉"
	default:
		return fmt.Sprintf("%d.", rank)
	}
}

// Zero deltas are valid computations but render as nothing: a row only
// carries movement markers when something actually moved.
func formatRatingDelta(delta *int) string {
	if delta == nil || *delta == 0 {
		return ""
	}
	if *delta > 0 {
		return fmt.Sprintf("⬆️ +%d", *delta)
	}
	return fmt.Sprintf("⬇️ %d", *delta)
}

func formatRankMove(move *int) string {
	if move == nil || *move == 0 {
		return ""
	}
	if *move > 0 {
		return fmt.Sprintf("⬆️%d", *move)
	}
	return fmt.Sprintf("⬇️%d", -*move)
}

func formatWeeklyDelta(delta *int) string {
	if delta == nil || *delta == 0 {
		return ""
	}
	if *delta > 0 {
		return fmt.Sprintf("wk +%d", *delta)
	}
	return fmt.Sprintf("wk %d", *delta)
}

func joinBounded(lines []string, max int) string {
	var b strings.Builder
	for i, line := range lines {
		need := len(line)
		if i > 0 {
			need++
		}
		if b.Len()+need > max {
			break
		}
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString(line)
	}
	return b.String()
}
