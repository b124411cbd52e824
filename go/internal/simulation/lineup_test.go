package simulation

import (
	"testing"

	"github.com/mcdev12/matchday/go/internal/models"
)

func TestLineup_SuspendedPlayersDropToTheEnd(t *testing.T) {
	club := &models.Club{
		Name: "Rovers",
		Players: []models.Player{
			{ID: 1, SquadRole: models.SquadRoleReserve},
			{ID: 2, SquadRole: models.SquadRoleStarter, IsSuspended: true},
			{ID: 3, SquadRole: models.SquadRoleSubstitute},
			{ID: 4, SquadRole: models.SquadRoleStarter},
		},
	}

	got := Lineup(club)

	want := []int64{4, 3, 1, 2}
	for i, p := range got.Players {
		if p.ID != want[i] {
			t.Fatalf("lineup order = %v, want %v", ids(got.Players), want)
		}
	}
	if club.Players[0].ID != 1 {
		t.Error("Lineup reordered the club roster in place")
	}
}

func TestNewSeed_NonNegative(t *testing.T) {
	for i := 0; i < 100; i++ {
		seed, err := NewSeed()
		if err != nil {
			t.Fatalf("NewSeed: %v", err)
		}
		if seed < 0 {
			t.Fatalf("seed %d is negative", seed)
		}
	}
}

func ids(players []models.Player) []int64 {
	out := make([]int64, 0, len(players))
	for _, p := range players {
		out = append(out, p.ID)
	}
	return out
}
