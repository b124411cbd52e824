package standings

import (
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

func testClubs(names ...string) []models.LeagueClub {
	out := make([]models.LeagueClub, len(names))
	for i, n := range names {
		out[i] = models.LeagueClub{ClubID: uuid.New(), Name: n}
	}
	return out
}

func result(home, away models.LeagueClub, hs, as int, events ...models.MatchEvent) models.Match {
	return models.Match{
		HomeClubID: home.ClubID, HomeClubName: home.Name,
		AwayClubID: away.ClubID, AwayClubName: away.Name,
		HomeScore: hs, AwayScore: as,
		Events: events,
	}
}

func rowFor(t *testing.T, s models.Standings, id uuid.UUID) models.LeaderboardRow {
	t.Helper()
	for _, r := range s.Leaderboard {
		if r.ClubID == id {
			return r
		}
	}
	t.Fatalf("no row for %s", id)
	return models.LeaderboardRow{}
}

// TestApplyPoints verifies win, draw and loss accounting.
func TestApplyPoints(t *testing.T) {
	tests := []struct {
		hs, as           int
		homePts, awayPts int
	}{
		{2, 1, 3, 0},
		{1, 1, 1, 1},
		{0, 3, 0, 3},
	}
	for _, tt := range tests {
		clubs := testClubs("A", "B")
		s := New(clubs)
		Apply(&s, result(clubs[0], clubs[1], tt.hs, tt.as))

		h, a := rowFor(t, s, clubs[0].ClubID), rowFor(t, s, clubs[1].ClubID)
		if h.Points != tt.homePts || a.Points != tt.awayPts {
			t.Fatalf("%d-%d points = %d/%d, want %d/%d", tt.hs, tt.as, h.Points, a.Points, tt.homePts, tt.awayPts)
		}
		if h.GoalDifference+a.GoalDifference != 0 {
			t.Fatalf("%d-%d goal differences %d and %d do not cancel", tt.hs, tt.as, h.GoalDifference, a.GoalDifference)
		}
		if h.Played != 1 || a.Played != 1 || h.Won+h.Drawn+h.Lost != 1 {
			t.Fatalf("%d-%d played counters wrong: %+v %+v", tt.hs, tt.as, h, a)
		}
	}
}

// TestSortTieBreaks verifies the ordering rules including the card tie-break.
func TestSortTieBreaks(t *testing.T) {
	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	rows := []models.LeaderboardRow{
		{ClubID: ids[0], Points: 6, GoalDifference: 1, GoalsFor: 4, YellowCards: 3},
		{ClubID: ids[1], Points: 6, GoalDifference: 1, GoalsFor: 4, RedCards: 1},
		{ClubID: ids[2], Points: 6, GoalDifference: 1, GoalsFor: 5, RedCards: 4},
		{ClubID: ids[3], Points: 6, GoalDifference: 2, GoalsFor: 2},
		{ClubID: ids[4], Points: 7},
	}
	Sort(rows)

	var got []uuid.UUID
	for _, r := range rows {
		got = append(got, r.ClubID)
	}
	want := []uuid.UUID{ids[4], ids[3], ids[2], ids[1], ids[0]}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("order mismatch (-want +got):\n%s", diff)
	}
}

// TestApplyCardsAndCharts verifies card tallies and scorer and assist charts.
func TestApplyCardsAndCharts(t *testing.T) {
	clubs := testClubs("A", "B")
	s := New(clubs)
	Apply(&s, result(clubs[0], clubs[1], 2, 1,
		models.MatchEvent{Minute: 10, Type: models.EventTypeGoal, Side: models.SideHome, PlayerID: 9, PlayerName: "Nine", AssistPlayerID: 10, AssistName: "Ten"},
		models.MatchEvent{Minute: 20, Type: models.EventTypeYellowCard, Side: models.SideAway, PlayerID: 40},
		models.MatchEvent{Minute: 30, Type: models.EventTypeGoal, Side: models.SideAway, PlayerID: 41, PlayerName: "Forty-one"},
		models.MatchEvent{Minute: 60, Type: models.EventTypeRedCard, Side: models.SideHome, PlayerID: 5},
		models.MatchEvent{Minute: 80, Type: models.EventTypeGoal, Side: models.SideHome, PlayerID: 9, PlayerName: "Nine", Penalty: true},
	))

	h, a := rowFor(t, s, clubs[0].ClubID), rowFor(t, s, clubs[1].ClubID)
	if h.RedCards != 1 || h.YellowCards != 0 || a.YellowCards != 1 {
		t.Fatalf("cards home %d/%d away %d, want 0/1 and 1", h.YellowCards, h.RedCards, a.YellowCards)
	}
	if s.Leaderboard[0].ClubID != clubs[0].ClubID {
		t.Fatalf("leader = %s, want home club", s.Leaderboard[0].ClubName)
	}
	if len(s.TopScorers) != 2 || s.TopScorers[0].PlayerID != 9 || s.TopScorers[0].Count != 2 {
		t.Fatalf("TopScorers = %+v, want player 9 with 2 first", s.TopScorers)
	}
	if s.TopScorers[1].ClubID != clubs[1].ClubID {
		t.Fatalf("second scorer club = %s, want away club", s.TopScorers[1].ClubID)
	}
	if len(s.TopAssists) != 1 || s.TopAssists[0].PlayerID != 10 {
		t.Fatalf("TopAssists = %+v, want player 10 only", s.TopAssists)
	}
}

// TestChartTruncated verifies charts keep only the top entries.
func TestChartTruncated(t *testing.T) {
	clubs := testClubs("A", "B")
	s := New(clubs)
	var events []models.MatchEvent
	for id := int64(1); id <= 15; id++ {
		events = append(events, models.MatchEvent{Type: models.EventTypeGoal, Side: models.SideHome, PlayerID: id})
	}
	events = append(events, models.MatchEvent{Type: models.EventTypeGoal, Side: models.SideHome, PlayerID: 15})
	Apply(&s, result(clubs[0], clubs[1], 16, 0, events...))

	if len(s.TopScorers) != ChartSize {
		t.Fatalf("len(TopScorers) = %d, want %d", len(s.TopScorers), ChartSize)
	}
	if s.TopScorers[0].PlayerID != 1 || s.TopScorers[0].Count != 1 {
		t.Fatalf("TopScorers[0] = %+v, want player 1 with 1", s.TopScorers[0])
	}
	if Rank(s, clubs[1].ClubID) != 2 {
		t.Fatalf("Rank(away) = %d, want 2", Rank(s, clubs[1].ClubID))
	}
}
