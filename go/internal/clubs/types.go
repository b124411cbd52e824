package clubs

import "github.com/google/uuid"

// CreateClubRequest represents the data needed to create a club in a server
type CreateClubRequest struct {
	ServerID       uuid.UUID `json:"server_id" validate:"required"`
	ServerPassword string    `json:"server_password,omitempty"`
	OwnerID        string    `json:"owner_id" validate:"required"`
	Name           string    `json:"name" validate:"required,max=40"`
	ManagerName    string    `json:"manager_name" validate:"required,max=40"`
	LogoURL        string    `json:"logo_url,omitempty" validate:"omitempty,url"`
	PrimaryColor   string    `json:"primary_color,omitempty" validate:"omitempty,hexcolor"`
	SecondaryColor string    `json:"secondary_color,omitempty" validate:"omitempty,hexcolor"`
}

// ClubRequest identifies a club
type ClubRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
}

// OwnerRequest looks up the club a manager owns in a server
type OwnerRequest struct {
	ServerID uuid.UUID `json:"server_id" validate:"required"`
	OwnerID  string    `json:"owner_id" validate:"required"`
}

// ServerRequest identifies a server
type ServerRequest struct {
	ServerID uuid.UUID `json:"server_id" validate:"required"`
}

// SetLineupRequest names the eleven starters and the bench in order
type SetLineupRequest struct {
	ClubID      uuid.UUID `json:"club_id" validate:"required"`
	Starters    []int64   `json:"starters" validate:"len=11,unique"`
	Substitutes []int64   `json:"substitutes" validate:"max=6,unique"`
}

// AdjustBudgetRequest credits (positive) or debits (negative) a club's budget
type AdjustBudgetRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
	Delta  int64     `json:"delta" validate:"ne=0"`
	Reason string    `json:"reason,omitempty"`
}

// ClearSuspensionsResponse reports how many players became available again
type ClearSuspensionsResponse struct {
	Cleared int `json:"cleared"`
}
