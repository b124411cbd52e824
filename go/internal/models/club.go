package models

import (
	"sort"
	"time"

	"github.com/google/uuid"
)

const (
	// MaxSquadSize is the hard roster cap
	MaxSquadSize = 23
	// StartersCount is the size of a starting eleven
	StartersCount = 11
	// BenchLimit is the roster size under which new arrivals join the bench
	BenchLimit = 17
)

// Club is a manager's team within a server
type Club struct {
	ID             uuid.UUID  `json:"id"`
	OwnerID        string     `json:"owner_id"`
	ServerID       uuid.UUID  `json:"server_id"`
	LeagueID       *uuid.UUID `json:"league_id,omitempty"`
	Name           string     `json:"name"`
	ManagerName    string     `json:"manager_name"`
	LogoURL        string     `json:"logo_url,omitempty"`
	PrimaryColor   string     `json:"primary_color,omitempty"`
	SecondaryColor string     `json:"secondary_color,omitempty"`
	Budget         int64      `json:"budget"`
	Players        []Player   `json:"players"`
	LastFriendlyAt *time.Time `json:"last_friendly_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
}

var roleOrder = map[SquadRole]int{
	SquadRoleStarter:    0,
	SquadRoleSubstitute: 1,
	SquadRoleReserve:    2,
}

// SortSquad orders players starters first, then substitutes, then reserves
func (c *Club) SortSquad() {
	sort.SliceStable(c.Players, func(i, j int) bool {
		return roleOrder[c.Players[i].SquadRole] < roleOrder[c.Players[j].SquadRole]
	})
}

// PlayerIndex returns the roster index of the player or -1
func (c *Club) PlayerIndex(id int64) int {
	for i, p := range c.Players {
		if p.ID == id {
			return i
		}
	}
	return -1
}

// RoleForArrival picks the squad role of a newly acquired player by current roster size
func (c *Club) RoleForArrival() SquadRole {
	switch n := len(c.Players); {
	case n < StartersCount:
		return SquadRoleStarter
	case n < BenchLimit:
		return SquadRoleSubstitute
	default:
		return SquadRoleReserve
	}
}
