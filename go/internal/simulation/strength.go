package simulation

import (
	"math"

	"github.com/mcdev12/matchday/go/internal/models"
)

const (
	ratingWeight    = 0.40
	staminaWeight   = 0.25
	chemistryWeight = 0.20

	chemistryPenalty = 5
	chemistryFloor   = 50

	homeBonus = 0.15
	luckMin   = 0.85
	luckSpan  = 0.30
)

var idealShape = map[models.Line]int{
	models.LineGoalkeeper: 1,
	models.LineDefence:    4,
	models.LineMidfield:   4,
	models.LineAttack:     2,
}

// TeamStrength blends average rating, average stamina and chemistry of the starters.
func TeamStrength(starters []models.Player) float64 {
	if len(starters) == 0 {
		return 0
	}
	var rating, stamina float64
	for _, p := range starters {
		rating += p.Rating()
		stamina += float64(p.StaminaPct)
	}
	n := float64(len(starters))
	return rating/n*ratingWeight + stamina/n*staminaWeight + Chemistry(starters)*chemistryWeight
}

// Chemistry scores how closely the starters match a 1-4-4-2 shape.
func Chemistry(starters []models.Player) float64 {
	counts := make(map[models.Line]int, len(idealShape))
	for _, p := range starters {
		counts[p.Position.Line()]++
	}
	score := 100
	for line, want := range idealShape {
		diff := counts[line] - want
		if diff < 0 {
			diff = -diff
		}
		score -= diff * chemistryPenalty
	}
	return math.Max(chemistryFloor, float64(score))
}
