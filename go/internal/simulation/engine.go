// Package simulation plays a match minute by minute from two squads and a random source.
package simulation

import (
	"fmt"
	"math/rand"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/models"
)

const (
	Minutes = 90

	assistChance = 0.6
	crunchFactor = 1.5
	upsetLuck    = 0.9

	crowdMin  = 20000
	crowdSpan = 30000
)

type eventKind int

const (
	kindGoal eventKind = iota
	kindPenalty
	kindYellow
	kindRed
	kindCorner
	kindFreeKick
	kindNearMiss
	kindFlow
)

// categories are sampled in this order every minute.
var categories = []struct {
	kind        eventKind
	probability float64
}{
	{kindGoal, 0.02},
	{kindPenalty, 0.002},
	{kindYellow, 0.008},
	{kindRed, 0.001},
	{kindCorner, 0.05},
	{kindFreeKick, 0.03},
	{kindNearMiss, 0.015},
	{kindFlow, 0.05},
}

// Squad is one side of a match. The first eleven players start.
type Squad struct {
	ClubID  uuid.UUID
	Name    string
	Players []models.Player
}

func (s Squad) starters() []models.Player {
	return s.Players[:models.StartersCount]
}

// Result is the outcome of a simulated match
type Result struct {
	HomeScore    int
	AwayScore    int
	Events       []models.MatchEvent
	Commentary   []string
	HomeStrength float64
	AwayStrength float64
	HomeLuck     float64
	AwayLuck     float64
	HomeStamina  []condition.StaminaChange
	AwayStamina  []condition.StaminaChange
}

// crunchTime reports whether the minute falls in the closing stretch of a half.
func crunchTime(minute int) bool {
	return (minute >= 30 && minute <= 45) || (minute >= 75 && minute <= 90)
}

// Simulate plays home against away. The outcome depends only on the inputs and rng.
func Simulate(rng *rand.Rand, home, away Squad, kind models.MatchKind) (*Result, error) {
	for _, s := range []Squad{home, away} {
		if len(s.Players) < models.StartersCount {
			return nil, fmt.Errorf("squad %q has %d players, need %d to start", s.Name, len(s.Players), models.StartersCount)
		}
	}

	res := &Result{
		HomeStrength: TeamStrength(home.starters()),
		AwayStrength: TeamStrength(away.starters()),
	}
	res.HomeStrength *= 1 + homeBonus
	res.HomeLuck = luckMin + rng.Float64()*luckSpan
	res.AwayLuck = luckMin + rng.Float64()*luckSpan
	res.HomeStrength *= res.HomeLuck
	res.AwayStrength *= res.AwayLuck

	homeAdvantage := 0.5 + 0.01*(res.HomeStrength-res.AwayStrength)

	crowd := crowdMin + rng.Intn(crowdSpan)
	res.Events = append(res.Events, models.MatchEvent{
		Minute:      0,
		Type:        models.EventTypeKickoff,
		Description: kickoffLine(home.Name, away.Name, crowd),
	})

	m := &match{
		rng:  rng,
		home: home,
		away: away,
		res:  res,
		eligible: map[models.Side][]models.Player{
			models.SideHome: append([]models.Player(nil), home.starters()...),
			models.SideAway: append([]models.Player(nil), away.starters()...),
		},
	}
	for minute := 1; minute <= Minutes; minute++ {
		mult := 1.0
		if crunchTime(minute) {
			mult = crunchFactor
		}
		for _, c := range categories {
			if rng.Float64() >= c.probability*mult {
				continue
			}
			side := models.SideAway
			if rng.Float64() < homeAdvantage {
				side = models.SideHome
			}
			m.event(minute, c.kind, side)
		}
	}

	res.Commentary = fullTimeLines(home.Name, away.Name, res)
	res.HomeStamina = condition.Impact(home.Players, kind)
	res.AwayStamina = condition.Impact(away.Players, kind)
	return res, nil
}

type match struct {
	rng      *rand.Rand
	home     Squad
	away     Squad
	res      *Result
	eligible map[models.Side][]models.Player
}

func (m *match) team(side models.Side) string {
	if side == models.SideHome {
		return m.home.Name
	}
	return m.away.Name
}

// choose draws a player from the side's eligible pool, preferring attacking positions.
func (m *match) choose(side models.Side) (models.Player, bool) {
	pool := m.eligible[side]
	if len(pool) == 0 {
		return models.Player{}, false
	}
	var attackers []models.Player
	for _, p := range pool {
		if p.Position.Attacking() {
			attackers = append(attackers, p)
		}
	}
	if len(attackers) > 0 {
		return attackers[m.rng.Intn(len(attackers))], true
	}
	return pool[m.rng.Intn(len(pool))], true
}

func (m *match) sendOff(side models.Side, id int64) {
	pool := m.eligible[side]
	for i, p := range pool {
		if p.ID == id {
			m.eligible[side] = append(pool[:i:i], pool[i+1:]...)
			return
		}
	}
}

func (m *match) score(side models.Side) {
	if side == models.SideHome {
		m.res.HomeScore++
	} else {
		m.res.AwayScore++
	}
}

func (m *match) event(minute int, kind eventKind, side models.Side) {
	rng := m.rng
	team := m.team(side)
	ev := models.MatchEvent{Minute: minute, Side: side}

	switch kind {
	case kindGoal, kindPenalty, kindYellow, kindRed, kindNearMiss:
		p, ok := m.choose(side)
		if !ok {
			return
		}
		ev.PlayerID, ev.PlayerName = p.ID, p.Name

		switch kind {
		case kindGoal:
			ev.Type = models.EventTypeGoal
			if rng.Float64() < assistChance {
				if a, ok := m.choose(side); ok && a.ID != p.ID {
					ev.AssistPlayerID, ev.AssistName = a.ID, a.Name
				}
			}
			ev.Description = goalLine(rng, minute, p.Name, ev.AssistName, team)
			m.score(side)
		case kindPenalty:
			ev.Type = models.EventTypeGoal
			ev.Penalty = true
			ev.Description = stamp(minute, "PENALTY! "+fill(pick(rng, penaltyLines), p.Name, team))
			m.score(side)
		case kindYellow:
			ev.Type = models.EventTypeYellowCard
			ev.Description = stamp(minute, fill(pick(rng, yellowLines), p.Name, team))
		case kindRed:
			ev.Type = models.EventTypeRedCard
			ev.Description = stamp(minute, fill(pick(rng, redLines), p.Name, team))
			m.sendOff(side, p.ID)
		case kindNearMiss:
			ev.Type = models.EventTypeNearMiss
			ev.Description = stamp(minute, fill(pick(rng, nearMissLines), p.Name, team))
		}
	case kindCorner:
		ev.Type = models.EventTypeCorner
		ev.Description = stamp(minute, fill(pick(rng, cornerLines), team))
	case kindFreeKick:
		ev.Type = models.EventTypeFreeKick
		ev.Description = stamp(minute, fill(pick(rng, freeKickLines), team))
	case kindFlow:
		ev.Type = models.EventTypeCommentary
		ev.Side = ""
		ev.Description = flowLine(rng, minute, m.home.Name, m.away.Name)
	}

	m.res.Events = append(m.res.Events, ev)
}

// Goals returns the goal events of the match in order.
func (r *Result) Goals() []models.MatchEvent {
	var out []models.MatchEvent
	for _, e := range r.Events {
		if e.Type == models.EventTypeGoal {
			out = append(out, e)
		}
	}
	return out
}
