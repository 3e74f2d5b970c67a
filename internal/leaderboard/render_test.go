package leaderboard

import (
	"strings"
	"testing"

	"chess-leaderboard-bot/internal/constants"
	"chess-leaderboard-bot/internal/domain"

	"github.com/stretchr/testify/require"
)

func TestRenderEmptyRoster(t *testing.T) {
	require.Equal(t, "No one is registered yet. Use `/setchess <username>`.", Render(nil))
}

func TestRenderRankPrefixes(t *testing.T) {
	rows := []domain.Row{
		{DisplayName: "A", Username: "a", Rank: 1, Rating: intp(2000)},
		{DisplayName: "B", Username: "b", Rank: 2, Rating: intp(1900)},
		{DisplayName: "C", Username: "c", Rank: 3, Rating: intp(1800)},
		{DisplayName: "D", Username: "d", Rank: 4, Rating: intp(1700)},
	}

	lines := strings.Split(Render(rows), "\n")
	require.Len(t, lines, 4)
	require.True(t, strings.HasPrefix(lines[0], "🥇 "))
	require.True(t, strings.HasPrefix(lines[1], "🥈 "))
	require.True(t, strings.HasPrefix(lines[2], "🥉 "))
	require.True(t, strings.HasPrefix(lines[3], "4. "))
}

func TestRenderRowContent(t *testing.T) {
	rows := []domain.Row{
		{
			DisplayName: "Alice",
			Username:    "alice",
			Rank:        1,
			Rating:      intp(1520),
			RankMove:    intp(2),
			RatingDelta: intp(20),
			WeeklyDelta: intp(-5),
		},
	}

	body := Render(rows)
	require.Equal(t, "🥇 **Alice** -> alice (**1520**) · ⬆️2 · ⬆️ +20 · wk -5", body)
}

func TestRenderUnratedRow(t *testing.T) {
	rows := []domain.Row{{DisplayName: "Bob", Username: "bob", Rank: 1}}
	require.Equal(t, "🥇 **Bob** -> bob (**unrated**)", Render(rows))
}

func TestRenderOmitsZeroAndAbsentDeltas(t *testing.T) {
	rows := []domain.Row{
		{
			DisplayName: "Alice",
			Username:    "alice",
			Rank:        1,
			Rating:      intp(1500),
			RankMove:    intp(0),
			RatingDelta: intp(0),
		},
	}

	body := Render(rows)
	require.Equal(t, "🥇 **Alice** -> alice (**1500**)", body)
	require.NotContains(t, body, "·")
}

func TestRenderNegativeDeltas(t *testing.T) {
	rows := []domain.Row{
		{
			DisplayName: "Alice",
			Username:    "alice",
			Rank:        2,
			Rating:      intp(1480),
			RankMove:    intp(-1),
			RatingDelta: intp(-20),
			WeeklyDelta: intp(-20),
		},
	}

	body := Render(rows)
	require.Contains(t, body, "⬇️1")
	require.Contains(t, body, "⬇️ -20")
	require.Contains(t, body, "wk -20")
}

func TestRenderTruncatesOnLineBoundaries(t *testing.T) {
	name := strings.Repeat("x", 60)
	var rows []domain.Row
	for i := 0; i < 100; i++ {
		rows = append(rows, domain.Row{
			DisplayName: name,
			Username:    name,
			Rank:        i + 1,
			Rating:      intp(1500),
		})
	}

	full := make([]string, len(rows))
	for i, row := range rows {
		full[i] = renderRow(row)
	}

	body := Render(rows)
	require.LessOrEqual(t, len(body), constants.MaxBodyLength)

	// Every emitted line must be a complete row, in order.
	lines := strings.Split(body, "\n")
	require.Less(t, len(lines), len(rows))
	for i, line := range lines {
		require.Equal(t, full[i], line)
	}
}
