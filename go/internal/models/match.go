package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchKind distinguishes league fixtures from friendlies
type MatchKind string

const (
	MatchKindLeague   MatchKind = "league"
	MatchKindFriendly MatchKind = "friendly"
)

type Side string

const (
	SideHome Side = "home"
	SideAway Side = "away"
)

type EventType string

const (
	EventTypeKickoff    EventType = "kickoff"
	EventTypeGoal       EventType = "goal"
	EventTypeYellowCard EventType = "yellow_card"
	EventTypeRedCard    EventType = "red_card"
	EventTypeCorner     EventType = "corner"
	EventTypeFreeKick   EventType = "freekick"
	EventTypeNearMiss   EventType = "near_miss"
	EventTypeCommentary EventType = "commentary"
)

// MatchEvent is one entry of the minute-by-minute timeline
type MatchEvent struct {
	Minute         int       `json:"minute"`
	Type           EventType `json:"type"`
	Side           Side      `json:"side,omitempty"`
	PlayerID       int64     `json:"player_id,omitempty"`
	PlayerName     string    `json:"player_name,omitempty"`
	AssistPlayerID int64     `json:"assist_player_id,omitempty"`
	AssistName     string    `json:"assist_name,omitempty"`
	Penalty        bool      `json:"penalty,omitempty"`
	Description    string    `json:"description"`
}

// Match is the immutable outcome record of a played or forfeited fixture
type Match struct {
	ID           uuid.UUID    `json:"id"`
	FixtureID    uuid.UUID    `json:"fixture_id"`
	Kind         MatchKind    `json:"kind"`
	Matchday     int          `json:"matchday"`
	HomeClubID   uuid.UUID    `json:"home_club_id"`
	HomeClubName string       `json:"home_club_name"`
	AwayClubID   uuid.UUID    `json:"away_club_id"`
	AwayClubName string       `json:"away_club_name"`
	HomeScore    int          `json:"home_score"`
	AwayScore    int          `json:"away_score"`
	Forfeited    bool         `json:"forfeited"`
	Seed         int64        `json:"seed,omitempty"`
	Events       []MatchEvent `json:"events"`
	Commentary   []string     `json:"commentary"`
	PlayedAt     time.Time    `json:"played_at"`
}
