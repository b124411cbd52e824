package models

import (
	"time"

	"github.com/google/uuid"
)

// Server is a join-scope grouping clubs; it hosts at most one league
type Server struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	PasswordHash string     `json:"password_hash,omitempty"`
	MaxCapacity  int        `json:"max_capacity"`
	CurrentClubs int        `json:"current_clubs"`
	LeagueID     *uuid.UUID `json:"league_id,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}
