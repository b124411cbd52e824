package models

import "github.com/google/uuid"

// LeaderboardRow is one club's running league record
type LeaderboardRow struct {
	ClubID         uuid.UUID `json:"club_id"`
	ClubName       string    `json:"club_name"`
	ClubLogo       string    `json:"club_logo,omitempty"`
	Played         int       `json:"played"`
	Won            int       `json:"won"`
	Drawn          int       `json:"drawn"`
	Lost           int       `json:"lost"`
	GoalsFor       int       `json:"goals_for"`
	GoalsAgainst   int       `json:"goals_against"`
	GoalDifference int       `json:"goal_difference"`
	Points         int       `json:"points"`
	YellowCards    int       `json:"yellow_cards"`
	RedCards       int       `json:"red_cards"`
}

// PlayerStat is a running goal or assist total
type PlayerStat struct {
	PlayerID   int64     `json:"player_id"`
	PlayerName string    `json:"player_name"`
	ClubID     uuid.UUID `json:"club_id"`
	ClubName   string    `json:"club_name"`
	Count      int       `json:"count"`
}

// Standings holds the leaderboard and the bounded player charts
type Standings struct {
	Leaderboard []LeaderboardRow `json:"leaderboard"`
	TopScorers  []PlayerStat     `json:"top_scorers"`
	TopAssists  []PlayerStat     `json:"top_assists"`
}
