// Package squad builds balanced initial squads from a pool of unowned players.
package squad

import (
	"math/rand"

	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Shape is the number of players drawn per formation line
type Shape map[models.Line]int

var (
	// StartingShape is a 1-4-4-2 eleven
	StartingShape = Shape{models.LineGoalkeeper: 1, models.LineDefence: 4, models.LineMidfield: 4, models.LineAttack: 2}
	// BenchShape covers every line once or twice
	BenchShape = Shape{models.LineGoalkeeper: 1, models.LineDefence: 2, models.LineMidfield: 2, models.LineAttack: 1}
)

var lineOrder = []models.Line{models.LineGoalkeeper, models.LineDefence, models.LineMidfield, models.LineAttack}

// Select draws a starting eleven and a bench from pool.
// The returned squad is ordered starters first and every player starts fresh.
func Select(rng *rand.Rand, pool []models.Player) ([]models.Player, error) {
	byLine := make(map[models.Line][]models.Player)
	for _, p := range pool {
		l := p.Position.Line()
		byLine[l] = append(byLine[l], p)
	}
	for _, l := range lineOrder {
		players := byLine[l]
		rng.Shuffle(len(players), func(i, j int) { players[i], players[j] = players[j], players[i] })
	}

	squad := make([]models.Player, 0, models.BenchLimit)
	for _, step := range []struct {
		shape Shape
		role  models.SquadRole
	}{
		{StartingShape, models.SquadRoleStarter},
		{BenchShape, models.SquadRoleSubstitute},
	} {
		for _, l := range lineOrder {
			need := step.shape[l]
			if len(byLine[l]) < need {
				return nil, apperr.Validation("not enough %s players available: need %d, have %d", l, need, len(byLine[l]))
			}
			for _, p := range byLine[l][:need] {
				squad = append(squad, fresh(p, step.role))
			}
			byLine[l] = byLine[l][need:]
		}
	}
	return squad, nil
}

func fresh(p models.Player, role models.SquadRole) models.Player {
	p.SquadRole = role
	p.StaminaPct = 100
	p.YellowCards = 0
	p.RedCards = 0
	p.IsSuspended = false
	p.SuspensionReason = models.SuspensionReasonNone
	return p
}

// Available filters pool down to players not already owned in the server.
func Available(pool []models.Player, owned map[int64]bool) []models.Player {
	out := make([]models.Player, 0, len(pool))
	for _, p := range pool {
		if !owned[p.ID] {
			out = append(out, p)
		}
	}
	return out
}
