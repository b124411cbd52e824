package transfers

import (
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// DirectOfferRequest offers money for another club's player.
// The fee is always the player's market value; a non-zero amount must match it.
type DirectOfferRequest struct {
	FromClubID     uuid.UUID `json:"from_club_id" validate:"required"`
	ToClubID       uuid.UUID `json:"to_club_id" validate:"required"`
	TargetPlayerID int64     `json:"target_player_id" validate:"required"`
	Amount         int64     `json:"amount" validate:"min=0"`
}

// SwapOfferRequest offers one of the bidder's players, plus an optional top-up, for another club's player
type SwapOfferRequest struct {
	FromClubID     uuid.UUID `json:"from_club_id" validate:"required"`
	ToClubID       uuid.UUID `json:"to_club_id" validate:"required"`
	TargetPlayerID int64     `json:"target_player_id" validate:"required"`
	SwapPlayerID   int64     `json:"swap_player_id" validate:"required"`
	Amount         int64     `json:"amount" validate:"min=0"`
}

// RespondRequest accepts or declines an offer on behalf of the club it was made to
type RespondRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
	ClubID  uuid.UUID `json:"club_id" validate:"required"`
	Accept  bool      `json:"accept"`
}

// OfferRequest identifies an offer
type OfferRequest struct {
	OfferID uuid.UUID `json:"offer_id" validate:"required"`
}

// ClubRequest identifies a club
type ClubRequest struct {
	ClubID uuid.UUID `json:"club_id" validate:"required"`
}

// HistoryRequest lists completed transfers of a server, newest first
type HistoryRequest struct {
	ServerID uuid.UUID  `json:"server_id" validate:"required"`
	ClubID   *uuid.UUID `json:"club_id,omitempty"`
	Limit    int        `json:"limit,omitempty" validate:"min=0,max=200"`
}

// OffersResponse splits a club's offers into those it received and those it made
type OffersResponse struct {
	Received []models.TransferOffer `json:"received"`
	Made     []models.TransferOffer `json:"made"`
}

// HistoryResponse wraps transfer records
type HistoryResponse struct {
	Transfers []models.TransferRecord `json:"transfers"`
}

// TransferResult is the resolved offer and, when accepted, the player moves it produced
type TransferResult struct {
	Offer   *models.TransferOffer   `json:"offer"`
	Records []models.TransferRecord `json:"records,omitempty"`
}
