package leagues

import (
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// CreateLeagueRequest represents the data needed to create a new league
type CreateLeagueRequest struct {
	ServerID          uuid.UUID                 `json:"server_id" validate:"required"`
	Name              string                    `json:"name" validate:"required,max=64"`
	Password          string                    `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
	MaxCapacity       int                       `json:"max_capacity" validate:"required,min=2,max=16"`
	PrizeDistribution *models.PrizeDistribution `json:"prize_distribution,omitempty"`
	RewardPlayerID    *int64                    `json:"reward_player_id,omitempty"`
}

// JoinLeagueRequest asks for a club to be entered into a league
type JoinLeagueRequest struct {
	LeagueID uuid.UUID `json:"league_id" validate:"required"`
	ClubID   uuid.UUID `json:"club_id" validate:"required"`
	Password string    `json:"password,omitempty"`
}

// PlayFixtureRequest identifies the fixture to simulate
type PlayFixtureRequest struct {
	LeagueID  uuid.UUID `json:"league_id" validate:"required"`
	FixtureID uuid.UUID `json:"fixture_id" validate:"required"`
}

// LeagueRequest identifies a league
type LeagueRequest struct {
	LeagueID uuid.UUID `json:"league_id" validate:"required"`
}

// ListLeaguesRequest filters leagues by status; an empty status lists all
type ListLeaguesRequest struct {
	Status models.LeagueStatus `json:"status,omitempty" validate:"omitempty,oneof=created started finished"`
}

// ListLeaguesResponse wraps a list of leagues
type ListLeaguesResponse struct {
	Leagues []models.League `json:"leagues"`
}

// ForfeitResponse reports how many fixtures a sweep forfeited
type ForfeitResponse struct {
	Forfeited int `json:"forfeited"`
}

// Payout is the money and reward a club received when the league was terminated
type Payout struct {
	ClubID       uuid.UUID `json:"club_id"`
	Rank         int       `json:"rank"`
	Prize        int64     `json:"prize"`
	RewardPlayer *int64    `json:"reward_player,omitempty"`
}

// TerminateResponse reports the final league and its payouts
type TerminateResponse struct {
	League  *models.League `json:"league"`
	Payouts []Payout       `json:"payouts"`
}
