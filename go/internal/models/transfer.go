package models

import (
	"time"

	"github.com/google/uuid"
)

type OfferKind string

const (
	OfferKindDirect OfferKind = "direct"
	OfferKindSwap   OfferKind = "swap"
)

type OfferStatus string

const (
	OfferStatusPending  OfferStatus = "pending"
	OfferStatusAccepted OfferStatus = "accepted"
	OfferStatusDeclined OfferStatus = "declined"
)

// TransferOffer is a proposal from one club for another club's player
type TransferOffer struct {
	ID               uuid.UUID   `json:"id"`
	ServerID         uuid.UUID   `json:"server_id"`
	FromClubID       uuid.UUID   `json:"from_club_id"`
	FromClubName     string      `json:"from_club_name"`
	ToClubID         uuid.UUID   `json:"to_club_id"`
	ToClubName       string      `json:"to_club_name"`
	Kind             OfferKind   `json:"kind"`
	TargetPlayerID   int64       `json:"target_player_id"`
	TargetPlayerName string      `json:"target_player_name"`
	SwapPlayerID     *int64      `json:"swap_player_id,omitempty"`
	SwapPlayerName   string      `json:"swap_player_name,omitempty"`
	Amount           int64       `json:"amount"`
	Status           OfferStatus `json:"status"`
	CreatedAt        time.Time   `json:"created_at"`
	RespondedAt      *time.Time  `json:"responded_at,omitempty"`
}

// TransferRecord is an entry of a completed transfer's history
type TransferRecord struct {
	ID           uuid.UUID `json:"id"`
	ServerID     uuid.UUID `json:"server_id"`
	OfferID      uuid.UUID `json:"offer_id"`
	PlayerID     int64     `json:"player_id"`
	PlayerName   string    `json:"player_name"`
	FromClubID   uuid.UUID `json:"from_club_id"`
	FromClubName string    `json:"from_club_name"`
	ToClubID     uuid.UUID `json:"to_club_id"`
	ToClubName   string    `json:"to_club_name"`
	Fee          int64     `json:"fee"`
	Kind         OfferKind `json:"kind"`
	CompletedAt  time.Time `json:"completed_at"`
}
