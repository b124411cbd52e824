package models

import (
	"time"

	"github.com/google/uuid"
)

type LeagueStatus string

const (
	LeagueStatusCreated  LeagueStatus = "created"
	LeagueStatusStarted  LeagueStatus = "started"
	LeagueStatusFinished LeagueStatus = "finished"
)

// PrizeDistribution is the money paid by final rank
type PrizeDistribution struct {
	First  int64 `json:"first"`
	Second int64 `json:"second"`
	Third  int64 `json:"third"`
	Others int64 `json:"others"`
}

// ForRank returns the prize for a 1-based leaderboard rank
func (p PrizeDistribution) ForRank(rank int) int64 {
	switch rank {
	case 1:
		return p.First
	case 2:
		return p.Second
	case 3:
		return p.Third
	default:
		return p.Others
	}
}

// LeagueClub is the display record of a joined club
type LeagueClub struct {
	ClubID  uuid.UUID `json:"club_id"`
	Name    string    `json:"name"`
	LogoURL string    `json:"logo_url,omitempty"`
}

// League is a double round-robin competition inside a server
type League struct {
	ID                uuid.UUID         `json:"id"`
	ServerID          uuid.UUID         `json:"server_id"`
	Name              string            `json:"name"`
	PasswordHash      string            `json:"password_hash,omitempty"`
	MaxCapacity       int               `json:"max_capacity"`
	PrizeDistribution PrizeDistribution `json:"prize_distribution"`
	RewardPlayerID    *int64            `json:"reward_player_id,omitempty"`
	Clubs             []LeagueClub      `json:"clubs"`
	Fixtures          []Fixture         `json:"fixtures"`
	Matches           []Match           `json:"matches"`
	CurrentMatchday   int               `json:"current_matchday"`
	Status            LeagueStatus      `json:"status"`
	Standings         Standings         `json:"standings"`
	PrizesDistributed bool              `json:"prizes_distributed"`
	CreatedAt         time.Time         `json:"created_at"`
	StartDate         *time.Time        `json:"start_date,omitempty"`
	ResetAt           *time.Time        `json:"reset_at,omitempty"`
}

// HasClub reports whether the club has joined the league
func (l *League) HasClub(id uuid.UUID) bool {
	for _, c := range l.Clubs {
		if c.ClubID == id {
			return true
		}
	}
	return false
}

// FixtureIndex returns the index of the fixture or -1
func (l *League) FixtureIndex(id uuid.UUID) int {
	for i, f := range l.Fixtures {
		if f.ID == id {
			return i
		}
	}
	return -1
}

// TotalMatchdays returns the highest matchday number in the schedule
func (l *League) TotalMatchdays() int {
	max := 0
	for _, f := range l.Fixtures {
		if f.Matchday > max {
			max = f.Matchday
		}
	}
	return max
}
