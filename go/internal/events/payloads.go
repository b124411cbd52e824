package events

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Event types published on league.events.<league_id>
const (
	TypeLeagueStarted     = "LeagueStarted"
	TypeFixturePlayed     = "FixturePlayed"
	TypeFixtureForfeited  = "FixtureForfeited"
	TypeMatchdayAdvanced  = "MatchdayAdvanced"
	TypeLeagueFinished    = "LeagueFinished"
	TypeLeagueReset       = "LeagueReset"
	TypeTransferCompleted = "TransferCompleted"
	TypeFriendlyPlayed    = "FriendlyPlayed"
)

// LeagueStartedPayload is the payload for a LeagueStarted event
type LeagueStartedPayload struct {
	LeagueID  string    `json:"league_id"`
	Clubs     int       `json:"clubs"`
	Fixtures  int       `json:"fixtures"`
	Matchdays int       `json:"matchdays"`
	StartedAt time.Time `json:"started_at"`
}

// MatchPayload carries a completed match for FixturePlayed, FixtureForfeited and FriendlyPlayed events
type MatchPayload struct {
	LeagueID     string              `json:"league_id,omitempty"`
	FixtureID    string              `json:"fixture_id,omitempty"`
	MatchID      string              `json:"match_id"`
	Matchday     int                 `json:"matchday,omitempty"`
	HomeClubID   string              `json:"home_club_id"`
	HomeClubName string              `json:"home_club_name"`
	AwayClubID   string              `json:"away_club_id"`
	AwayClubName string              `json:"away_club_name"`
	HomeScore    int                 `json:"home_score"`
	AwayScore    int                 `json:"away_score"`
	Forfeited    bool                `json:"forfeited"`
	Events       []models.MatchEvent `json:"events,omitempty"`
	Commentary   []string            `json:"commentary,omitempty"`
	PlayedAt     time.Time           `json:"played_at"`
}

// NewMatchPayload flattens a match record
func NewMatchPayload(leagueID string, m models.Match) MatchPayload {
	p := MatchPayload{
		LeagueID:     leagueID,
		MatchID:      m.ID.String(),
		Matchday:     m.Matchday,
		HomeClubID:   m.HomeClubID.String(),
		HomeClubName: m.HomeClubName,
		AwayClubID:   m.AwayClubID.String(),
		AwayClubName: m.AwayClubName,
		HomeScore:    m.HomeScore,
		AwayScore:    m.AwayScore,
		Forfeited:    m.Forfeited,
		Events:       m.Events,
		Commentary:   m.Commentary,
		PlayedAt:     m.PlayedAt,
	}
	if m.FixtureID != uuid.Nil {
		p.FixtureID = m.FixtureID.String()
	}
	return p
}

// MatchdayAdvancedPayload is the payload for a MatchdayAdvanced event
type MatchdayAdvancedPayload struct {
	LeagueID string `json:"league_id"`
	Matchday int    `json:"matchday"`
}

// LeagueFinishedPayload is the payload for a LeagueFinished event
type LeagueFinishedPayload struct {
	LeagueID       string    `json:"league_id"`
	ChampionClubID string    `json:"champion_club_id,omitempty"`
	PrizesPaid     bool      `json:"prizes_paid"`
	FinishedAt     time.Time `json:"finished_at"`
}

// LeagueResetPayload is the payload for a LeagueReset event
type LeagueResetPayload struct {
	LeagueID string    `json:"league_id"`
	ResetAt  time.Time `json:"reset_at"`
}

// TransferCompletedPayload is the payload for a TransferCompleted event
type TransferCompletedPayload struct {
	OfferID     string    `json:"offer_id"`
	Kind        string    `json:"kind"`
	PlayerID    int64     `json:"player_id"`
	PlayerName  string    `json:"player_name"`
	FromClubID  string    `json:"from_club_id"`
	ToClubID    string    `json:"to_club_id"`
	Fee         int64     `json:"fee"`
	CompletedAt time.Time `json:"completed_at"`
}
