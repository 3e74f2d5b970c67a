package leaderboard

import (
	"testing"

	"chess-leaderboard-bot/internal/domain"

	"github.com/stretchr/testify/require"
)

func intp(v int) *int { return &v }

func roster(entries ...[2]string) []domain.Participant {
	var participants []domain.Participant
	for _, e := range entries {
		participants = append(participants, domain.Participant{
			CallerID:    e[0],
			DisplayName: e[0],
			Username:    e[1],
		})
	}
	return participants
}

func TestRankIsDeterministic(t *testing.T) {
	r := roster([2]string{"Alice", "alice"}, [2]string{"Bob", "bob"}, [2]string{"Carol", "carol"})
	ratings := map[string]*int{"alice": intp(1500), "bob": nil, "carol": intp(1500)}

	first := Rank(r, ratings, domain.EmptySnapshot())
	second := Rank(r, ratings, domain.EmptySnapshot())
	require.Equal(t, first, second)
}

func TestRankUnratedSortAfterRated(t *testing.T) {
	r := roster([2]string{"Aaron", "aaron"}, [2]string{"Zoe", "zoe"})
	ratings := map[string]*int{"aaron": nil, "zoe": intp(800)}

	rows := Rank(r, ratings, domain.EmptySnapshot())
	require.Equal(t, "Zoe", rows[0].DisplayName)
	require.Equal(t, "Aaron", rows[1].DisplayName)
	require.Equal(t, 1, rows[0].Rank)
	require.Equal(t, 2, rows[1].Rank)
}

func TestRankTieBreaksByDisplayName(t *testing.T) {
	r := roster([2]string{"Carol", "carol"}, [2]string{"Alice", "alice"}, [2]string{"Bob", "bob"})
	ratings := map[string]*int{"alice": intp(1500), "bob": intp(1500), "carol": intp(1500)}

	rows := Rank(r, ratings, domain.EmptySnapshot())
	require.Equal(t, []string{"Alice", "Bob", "Carol"},
		[]string{rows[0].DisplayName, rows[1].DisplayName, rows[2].DisplayName})
}

func TestRankAllUnratedTieBreaksByDisplayName(t *testing.T) {
	r := roster([2]string{"Zoe", "zoe"}, [2]string{"Alice", "alice"})
	ratings := map[string]*int{"zoe": nil, "alice": nil}

	rows := Rank(r, ratings, domain.EmptySnapshot())
	require.Equal(t, "Alice", rows[0].DisplayName)
	require.Equal(t, "Zoe", rows[1].DisplayName)
}

func TestRankFirstAppearanceHasNilDeltas(t *testing.T) {
	r := roster([2]string{"Alice", "alice"})
	ratings := map[string]*int{"alice": intp(1500)}

	rows := Rank(r, ratings, domain.EmptySnapshot())
	require.Nil(t, rows[0].RatingDelta)
	require.Nil(t, rows[0].RankMove)
	require.Nil(t, rows[0].WeeklyDelta)
}

func TestRankComputesExactDeltas(t *testing.T) {
	prev := domain.EmptySnapshot()
	prev.LastRatings = map[string]int{"alice": 1500, "bob": 1600}
	prev.LastRanks = map[string]int{"alice": 2, "bob": 1}
	prev.WeeklyBaseline = map[string]int{"alice": 1480}

	r := roster([2]string{"Alice", "alice"}, [2]string{"Bob", "bob"})
	ratings := map[string]*int{"alice": intp(1620), "bob": intp(1600)}

	rows := Rank(r, ratings, prev)

	// Alice overtook Bob: rank 2 -> 1.
	require.Equal(t, "Alice", rows[0].DisplayName)
	require.Equal(t, intp(120), rows[0].RatingDelta)
	require.Equal(t, intp(1), rows[0].RankMove)
	require.Equal(t, intp(140), rows[0].WeeklyDelta)

	// Bob's rating is unchanged: zero is a computed delta, not nil.
	require.Equal(t, intp(0), rows[1].RatingDelta)
	require.Equal(t, intp(-1), rows[1].RankMove)
	require.Nil(t, rows[1].WeeklyDelta)
}

func TestRankUnratedHasNilDeltasEvenWithHistory(t *testing.T) {
	prev := domain.EmptySnapshot()
	prev.LastRatings = map[string]int{"alice": 1500}
	prev.LastRanks = map[string]int{"alice": 1}

	r := roster([2]string{"Alice", "alice"})
	ratings := map[string]*int{"alice": nil}

	rows := Rank(r, ratings, prev)
	require.Nil(t, rows[0].RatingDelta)
	require.Nil(t, rows[0].WeeklyDelta)
	// Rank movement only needs ranks on both sides.
	require.Equal(t, intp(0), rows[0].RankMove)
}

func TestRankNormalizesUsernamesForLookups(t *testing.T) {
	prev := domain.EmptySnapshot()
	prev.LastRatings = map[string]int{"alice": 1500}
	prev.LastRanks = map[string]int{"alice": 1}

	r := roster([2]string{"Alice", "  ALICE "})
	ratings := map[string]*int{"alice": intp(1510)}

	rows := Rank(r, ratings, prev)
	require.Equal(t, intp(10), rows[0].RatingDelta)
}

func TestNextSnapshotRecordsRanksAndNumericRatings(t *testing.T) {
	rows := []domain.Row{
		{DisplayName: "Alice", Username: "alice", Rank: 1, Rating: intp(1500)},
		{DisplayName: "Bob", Username: "bob", Rank: 2},
	}

	next := NextSnapshot(domain.EmptySnapshot(), rows, "chan", "msg", false)
	require.Equal(t, "chan", next.ChannelID)
	require.Equal(t, "msg", next.MessageID)
	require.Equal(t, map[string]int{"alice": 1500}, next.LastRatings)
	require.Equal(t, map[string]int{"alice": 1, "bob": 2}, next.LastRanks)
	require.Empty(t, next.WeeklyBaseline)
}

func TestNextSnapshotWeeklyBaseline(t *testing.T) {
	prev := domain.EmptySnapshot()
	prev.WeeklyBaseline = map[string]int{"alice": 1480}

	rows := []domain.Row{{DisplayName: "Alice", Username: "alice", Rank: 1, Rating: intp(1520)}}

	carried := NextSnapshot(prev, rows, "chan", "msg", false)
	require.Equal(t, map[string]int{"alice": 1480}, carried.WeeklyBaseline)

	frozen := NextSnapshot(prev, rows, "chan", "msg", true)
	require.Equal(t, map[string]int{"alice": 1520}, frozen.WeeklyBaseline)
}
