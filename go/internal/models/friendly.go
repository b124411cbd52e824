package models

import (
	"time"

	"github.com/google/uuid"
)

// FriendlyCooldown is the minimum time between two friendlies of the same club
const FriendlyCooldown = 24 * time.Hour

type InviteStatus string

const (
	InviteStatusPending  InviteStatus = "pending"
	InviteStatusAccepted InviteStatus = "accepted"
	InviteStatusDeclined InviteStatus = "declined"
)

// FriendlyInvite is a challenge for a non-league match between two clubs.
// The inviting club plays at home.
type FriendlyInvite struct {
	ID           uuid.UUID    `json:"id"`
	ServerID     uuid.UUID    `json:"server_id"`
	FromClubID   uuid.UUID    `json:"from_club_id"`
	FromClubName string       `json:"from_club_name"`
	ToClubID     uuid.UUID    `json:"to_club_id"`
	ToClubName   string       `json:"to_club_name"`
	Status       InviteStatus `json:"status"`
	MatchID      *uuid.UUID   `json:"match_id,omitempty"`
	CreatedAt    time.Time    `json:"created_at"`
	RespondedAt  *time.Time   `json:"responded_at,omitempty"`
}
