package simulation

import (
	"sort"

	"github.com/mcdev12/matchday/go/internal/models"
)

// Lineup orders a club's roster for kickoff.
// Available players come first by squad role; suspended players drop to the end.
func Lineup(club *models.Club) Squad {
	players := append([]models.Player(nil), club.Players...)
	rank := func(p models.Player) int {
		r := 0
		switch p.SquadRole {
		case models.SquadRoleSubstitute:
			r = 1
		case models.SquadRoleReserve:
			r = 2
		}
		if p.IsSuspended {
			r += 3
		}
		return r
	}
	sort.SliceStable(players, func(i, j int) bool {
		return rank(players[i]) < rank(players[j])
	})
	return Squad{ClubID: club.ID, Name: club.Name, Players: players}
}
