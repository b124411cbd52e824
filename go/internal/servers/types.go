package servers

import "github.com/google/uuid"

// CreateServerRequest represents the data needed to create a server
type CreateServerRequest struct {
	Name        string `json:"name" validate:"required,max=64"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=4,max=72"`
	MaxCapacity int    `json:"max_capacity" validate:"omitempty,min=2,max=200"`
}

// JoinServerRequest checks access to a server before a club is created in it
type JoinServerRequest struct {
	ServerID uuid.UUID `json:"server_id" validate:"required"`
	Password string    `json:"password,omitempty"`
}

// GetServerRequest identifies a server
type GetServerRequest struct {
	ServerID uuid.UUID `json:"server_id" validate:"required"`
}
