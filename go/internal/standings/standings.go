// Package standings folds match results into the league table and player charts.
package standings

import (
	"sort"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// ChartSize bounds the top scorer and top assist tables
const ChartSize = 10

const (
	pointsWin  = 3
	pointsDraw = 1
)

// New returns a zeroed table with one row per club in join order.
func New(clubs []models.LeagueClub) models.Standings {
	rows := make([]models.LeaderboardRow, 0, len(clubs))
	for _, c := range clubs {
		rows = append(rows, models.LeaderboardRow{ClubID: c.ClubID, ClubName: c.Name, ClubLogo: c.LogoURL})
	}
	return models.Standings{
		Leaderboard: rows,
		TopScorers:  []models.PlayerStat{},
		TopAssists:  []models.PlayerStat{},
	}
}

// CardWeight is the disciplinary tie-break value of a row.
func CardWeight(r models.LeaderboardRow) int {
	return r.YellowCards + 2*r.RedCards
}

// Sort orders the leaderboard by points, goal difference, goals scored, then fewest cards.
func Sort(rows []models.LeaderboardRow) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := rows[i], rows[j]
		if a.Points != b.Points {
			return a.Points > b.Points
		}
		if a.GoalDifference != b.GoalDifference {
			return a.GoalDifference > b.GoalDifference
		}
		if a.GoalsFor != b.GoalsFor {
			return a.GoalsFor > b.GoalsFor
		}
		return CardWeight(a) < CardWeight(b)
	})
}

// Apply records a completed match in the table and charts.
func Apply(s *models.Standings, m models.Match) {
	hi := ensure(s, m.HomeClubID, m.HomeClubName)
	ai := ensure(s, m.AwayClubID, m.AwayClubName)
	home, away := &s.Leaderboard[hi], &s.Leaderboard[ai]
	record(home, m.HomeScore, m.AwayScore)
	record(away, m.AwayScore, m.HomeScore)

	for _, e := range m.Events {
		r, club, name := home, m.HomeClubID, m.HomeClubName
		if e.Side == models.SideAway {
			r, club, name = away, m.AwayClubID, m.AwayClubName
		}
		switch e.Type {
		case models.EventTypeYellowCard:
			r.YellowCards++
		case models.EventTypeRedCard:
			r.RedCards++
		case models.EventTypeGoal:
			s.TopScorers = bump(s.TopScorers, e.PlayerID, e.PlayerName, club, name)
			if e.AssistPlayerID != 0 {
				s.TopAssists = bump(s.TopAssists, e.AssistPlayerID, e.AssistName, club, name)
			}
		}
	}

	Sort(s.Leaderboard)
}

// ensure returns the index of the club's row, appending one if the club is missing.
func ensure(s *models.Standings, id uuid.UUID, name string) int {
	for i := range s.Leaderboard {
		if s.Leaderboard[i].ClubID == id {
			return i
		}
	}
	s.Leaderboard = append(s.Leaderboard, models.LeaderboardRow{ClubID: id, ClubName: name})
	return len(s.Leaderboard) - 1
}

func record(r *models.LeaderboardRow, scored, conceded int) {
	r.Played++
	r.GoalsFor += scored
	r.GoalsAgainst += conceded
	r.GoalDifference = r.GoalsFor - r.GoalsAgainst
	switch {
	case scored > conceded:
		r.Won++
		r.Points += pointsWin
	case scored == conceded:
		r.Drawn++
		r.Points += pointsDraw
	default:
		r.Lost++
	}
}

func bump(chart []models.PlayerStat, playerID int64, playerName string, clubID uuid.UUID, clubName string) []models.PlayerStat {
	found := false
	for i := range chart {
		if chart[i].PlayerID == playerID {
			chart[i].Count++
			found = true
			break
		}
	}
	if !found {
		chart = append(chart, models.PlayerStat{
			PlayerID:   playerID,
			PlayerName: playerName,
			ClubID:     clubID,
			ClubName:   clubName,
			Count:      1,
		})
	}
	sort.SliceStable(chart, func(i, j int) bool { return chart[i].Count > chart[j].Count })
	if len(chart) > ChartSize {
		chart = chart[:ChartSize]
	}
	return chart
}

// Rank returns the 1-based leaderboard position of the club, or 0 if absent.
func Rank(s models.Standings, clubID uuid.UUID) int {
	for i, r := range s.Leaderboard {
		if r.ClubID == clubID {
			return i + 1
		}
	}
	return 0
}
