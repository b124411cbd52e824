package squad

import (
	"errors"
	"math/rand"
	"testing"

	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
)

func testPool() []models.Player {
	var pool []models.Player
	id := int64(1)
	add := func(pos models.Position, n int) {
		for i := 0; i < n; i++ {
			pool = append(pool, models.Player{ID: id, Position: pos, StaminaPct: 40, YellowCards: 1})
			id++
		}
	}
	add(models.PositionGoalkeeper, 3)
	add(models.PositionCentreBack, 5)
	add(models.PositionLeftBack, 2)
	add(models.PositionCentralMidfield, 7)
	add(models.PositionLeftWinger, 2)
	add(models.PositionCentreForward, 2)
	return pool
}

// TestSelectBalancedSquad verifies the starter and bench shapes.
func TestSelectBalancedSquad(t *testing.T) {
	squad, err := Select(rand.New(rand.NewSource(7)), testPool())
	if err != nil {
		t.Fatalf("Select error = %v", err)
	}
	if len(squad) != 17 {
		t.Fatalf("len(squad) = %d, want 17", len(squad))
	}

	counts := map[models.SquadRole]map[models.Line]int{
		models.SquadRoleStarter:    {},
		models.SquadRoleSubstitute: {},
	}
	seen := map[int64]bool{}
	for i, p := range squad {
		if seen[p.ID] {
			t.Fatalf("player %d selected twice", p.ID)
		}
		seen[p.ID] = true
		if (i < models.StartersCount) != (p.SquadRole == models.SquadRoleStarter) {
			t.Fatalf("squad[%d].SquadRole = %q, starters must come first", i, p.SquadRole)
		}
		if p.StaminaPct != 100 || p.YellowCards != 0 {
			t.Fatalf("squad[%d] not reset: %+v", i, p)
		}
		counts[p.SquadRole][p.Position.Line()]++
	}
	for l, n := range StartingShape {
		if counts[models.SquadRoleStarter][l] != n {
			t.Fatalf("starters on %s = %d, want %d", l, counts[models.SquadRoleStarter][l], n)
		}
	}
	for l, n := range BenchShape {
		if counts[models.SquadRoleSubstitute][l] != n {
			t.Fatalf("substitutes on %s = %d, want %d", l, counts[models.SquadRoleSubstitute][l], n)
		}
	}
}

// TestSelectShortPool verifies a thin pool is rejected.
func TestSelectShortPool(t *testing.T) {
	pool := Available(testPool(), map[int64]bool{1: true, 2: true})
	_, err := Select(rand.New(rand.NewSource(1)), pool)
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("Select error = %v, want validation error", err)
	}
}
