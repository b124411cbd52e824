package friendlies

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// InviteRequest challenges another club of the same server to a friendly
type InviteRequest struct {
	FromClubID uuid.UUID `json:"from_club_id" validate:"required"`
	ToClubID   uuid.UUID `json:"to_club_id" validate:"required"`
}

// RespondRequest accepts or declines an invite on behalf of the invited club
type RespondRequest struct {
	InviteID uuid.UUID `json:"invite_id" validate:"required"`
	ClubID   uuid.UUID `json:"club_id" validate:"required"`
	Accept   bool      `json:"accept"`
}

// ClubRequest identifies a club
type ClubRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
}

// HistoryRequest lists a club's recent friendlies
type HistoryRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
	Limit  int       `json:"limit,omitempty" validate:"min=0,max=100"`
}

// RespondResponse is the resolved invite and the match it produced when accepted
type RespondResponse struct {
	Invite *models.FriendlyInvite `json:"invite"`
	Match  *models.Match          `json:"match,omitempty"`
}

// InvitesResponse splits a club's invites into pending received ones and those it sent
type InvitesResponse struct {
	Received []models.FriendlyInvite `json:"received"`
	Sent     []models.FriendlyInvite `json:"sent"`
}

// AvailabilityResponse tells whether a club is off its friendly cooldown
type AvailabilityResponse struct {
	Available bool          `json:"available"`
	NextAt    time.Time     `json:"next_at,omitempty"`
	Remaining time.Duration `json:"remaining"`
}

// MatchesResponse wraps friendly matches
type MatchesResponse struct {
	Matches []models.Match `json:"matches"`
}
