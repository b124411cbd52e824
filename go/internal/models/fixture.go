package models

import (
	"time"

	"github.com/google/uuid"
)

type FixtureStatus string

const (
	FixtureStatusScheduled FixtureStatus = "scheduled"
	FixtureStatusAvailable FixtureStatus = "available"
	FixtureStatusPlaying   FixtureStatus = "playing"
	FixtureStatusPlayed    FixtureStatus = "played"
	FixtureStatusForfeited FixtureStatus = "forfeited"
)

// Done reports whether the fixture has a final result
func (s FixtureStatus) Done() bool {
	return s == FixtureStatusPlayed || s == FixtureStatusForfeited
}

// FixtureResult is the final score attached to a completed fixture
type FixtureResult struct {
	HomeScore int       `json:"home_score"`
	AwayScore int       `json:"away_score"`
	MatchID   uuid.UUID `json:"match_id"`
}

// Fixture is one scheduled pairing in a league
type Fixture struct {
	ID            uuid.UUID      `json:"id"`
	Matchday      int            `json:"matchday"`
	HomeClubID    uuid.UUID      `json:"home_club_id"`
	HomeClubName  string         `json:"home_club_name"`
	AwayClubID    uuid.UUID      `json:"away_club_id"`
	AwayClubName  string         `json:"away_club_name"`
	ScheduledDate time.Time      `json:"scheduled_date"`
	Status        FixtureStatus  `json:"status"`
	Result        *FixtureResult `json:"result,omitempty"`
}
