// Package condition tracks player fatigue and discipline between matches.
package condition

import "github.com/mcdev12/matchday/go/internal/models"

const (
	MinStamina = 0
	MaxStamina = 100

	// YellowCardLimit is the accumulated yellow count that triggers a suspension
	YellowCardLimit = 2
)

// StaminaDelta returns the stamina change for starters and for the rest of the roster.
func StaminaDelta(kind models.MatchKind) (starter, bench int) {
	if kind == models.MatchKindFriendly {
		return -10, 5
	}
	return -20, 10
}

// Clamp bounds a stamina value to [0,100].
func Clamp(v int) int {
	if v < MinStamina {
		return MinStamina
	}
	if v > MaxStamina {
		return MaxStamina
	}
	return v
}

// ApplyStamina adjusts the player's stamina after a match and returns the new value.
func ApplyStamina(p *models.Player, starter bool, kind models.MatchKind) int {
	s, b := StaminaDelta(kind)
	delta := b
	if starter {
		delta = s
	}
	p.StaminaPct = Clamp(p.StaminaPct + delta)
	return p.StaminaPct
}

// ApplyCard records a card against the player.
// A second accumulated yellow resets the count and suspends; a red always suspends.
func ApplyCard(p *models.Player, card models.EventType) {
	switch card {
	case models.EventTypeYellowCard:
		p.YellowCards++
		if p.YellowCards >= YellowCardLimit {
			p.YellowCards = 0
			p.IsSuspended = true
			p.SuspensionReason = models.SuspensionReasonYellowCards
		}
	case models.EventTypeRedCard:
		p.RedCards++
		p.IsSuspended = true
		p.SuspensionReason = models.SuspensionReasonRedCard
	}
}

// ClearSuspension makes the player available again.
func ClearSuspension(p *models.Player) bool {
	if !p.IsSuspended {
		return false
	}
	p.IsSuspended = false
	p.SuspensionReason = models.SuspensionReasonNone
	return true
}

// StaminaChange is the before/after stamina of one player
type StaminaChange struct {
	PlayerID int64 `json:"player_id"`
	Starter  bool  `json:"starter"`
	Before   int   `json:"before"`
	After    int   `json:"after"`
}

// Impact computes stamina changes for a squad whose first eleven entries started.
func Impact(squad []models.Player, kind models.MatchKind) []StaminaChange {
	out := make([]StaminaChange, 0, len(squad))
	for i := range squad {
		p := squad[i]
		before := p.StaminaPct
		starter := i < models.StartersCount
		after := ApplyStamina(&p, starter, kind)
		out = append(out, StaminaChange{PlayerID: p.ID, Starter: starter, Before: before, After: after})
	}
	return out
}

// ApplyMatch folds a match into a club's current roster.
// Stamina moves by the starter or bench delta from each player's present value, so
// writes committed after the simulation read the squad are kept. Players absent from
// changes are left alone.
func ApplyMatch(club *models.Club, changes []StaminaChange, kind models.MatchKind, events []models.MatchEvent, side models.Side) {
	byID := make(map[int64]int, len(club.Players))
	for i, p := range club.Players {
		byID[p.ID] = i
	}
	for _, c := range changes {
		if i, ok := byID[c.PlayerID]; ok {
			ApplyStamina(&club.Players[i], c.Starter, kind)
		}
	}
	for _, e := range events {
		if e.Side != side || (e.Type != models.EventTypeYellowCard && e.Type != models.EventTypeRedCard) {
			continue
		}
		if i, ok := byID[e.PlayerID]; ok {
			ApplyCard(&club.Players[i], e.Type)
		}
	}
}
