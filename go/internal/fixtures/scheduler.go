// Package fixtures generates double round-robin league schedules.
package fixtures

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
)

const (
	MinClubs = 2
	MaxClubs = 16
)

// ClubRef identifies a club taking part in the schedule
type ClubRef struct {
	ID   uuid.UUID
	Name string
}

type pairing struct {
	home, away int
}

// Generate builds the full home-and-away schedule for clubs starting on startDate.
// Every matchday holds ⌊N/2⌋ fixtures and no club appears twice on the same matchday.
func Generate(clubs []ClubRef, startDate time.Time) ([]models.Fixture, error) {
	if len(clubs) < MinClubs {
		return nil, apperr.Validation("at least %d clubs are required, got %d", MinClubs, len(clubs))
	}
	if len(clubs) > MaxClubs {
		return nil, apperr.Validation("at most %d clubs are allowed, got %d", MaxClubs, len(clubs))
	}
	seen := make(map[uuid.UUID]bool, len(clubs))
	for _, c := range clubs {
		if seen[c.ID] {
			return nil, apperr.Validation("club %s listed twice", c.ID)
		}
		seen[c.ID] = true
	}

	rounds := roundRobin(len(clubs))
	day := StartOfDay(startDate)

	fixtures := make([]models.Fixture, 0, len(clubs)*(len(clubs)-1))
	for leg := 0; leg < 2; leg++ {
		for r, round := range rounds {
			matchday := leg*len(rounds) + r + 1
			status := models.FixtureStatusScheduled
			if matchday == 1 {
				status = models.FixtureStatusAvailable
			}
			for _, p := range round {
				home, away := clubs[p.home], clubs[p.away]
				if leg == 1 {
					home, away = away, home
				}
				fixtures = append(fixtures, models.Fixture{
					ID:            uuid.New(),
					Matchday:      matchday,
					HomeClubID:    home.ID,
					HomeClubName:  home.Name,
					AwayClubID:    away.ID,
					AwayClubName:  away.Name,
					ScheduledDate: day.AddDate(0, 0, matchday-1),
					Status:        status,
				})
			}
		}
	}

	if err := Verify(fixtures, clubs); err != nil {
		return nil, err
	}
	return fixtures, nil
}

// roundRobin pairs n club indexes with the circle method.
// The lower index is always at home in the first leg.
func roundRobin(n int) [][]pairing {
	slots := make([]int, 0, n+1)
	for i := 0; i < n; i++ {
		slots = append(slots, i)
	}
	if n%2 == 1 {
		slots = append(slots, -1) // bye
	}
	m := len(slots)

	rounds := make([][]pairing, 0, m-1)
	for r := 0; r < m-1; r++ {
		round := make([]pairing, 0, m/2)
		for i := 0; i < m/2; i++ {
			a, b := slots[i], slots[m-1-i]
			if a < 0 || b < 0 {
				continue
			}
			if a > b {
				a, b = b, a
			}
			round = append(round, pairing{home: a, away: b})
		}
		rounds = append(rounds, round)

		last := slots[m-1]
		copy(slots[2:], slots[1:m-1])
		slots[1] = last
	}
	return rounds
}

// Verify checks the structural invariants of a generated schedule.
func Verify(fixtures []models.Fixture, clubs []ClubRef) error {
	n := len(clubs)
	if want := n * (n - 1); len(fixtures) != want {
		return apperr.Consistency("schedule has %d fixtures, want %d", len(fixtures), want)
	}

	type pair struct{ home, away uuid.UUID }
	legs := make(map[pair]int, len(fixtures))
	perDay := make(map[int]map[uuid.UUID]bool)
	for _, f := range fixtures {
		if f.HomeClubID == f.AwayClubID {
			return apperr.Consistency("fixture %s pairs club %s with itself", f.ID, f.HomeClubID)
		}
		legs[pair{f.HomeClubID, f.AwayClubID}]++
		if perDay[f.Matchday] == nil {
			perDay[f.Matchday] = make(map[uuid.UUID]bool)
		}
		for _, id := range []uuid.UUID{f.HomeClubID, f.AwayClubID} {
			if perDay[f.Matchday][id] {
				return apperr.Consistency("club %s plays twice on matchday %d", id, f.Matchday)
			}
			perDay[f.Matchday][id] = true
		}
	}

	for i := 0; i < n; i++ {
		for j := i + 1; j < n; j++ {
			a, b := clubs[i].ID, clubs[j].ID
			if legs[pair{a, b}] != 1 || legs[pair{b, a}] != 1 {
				return apperr.Consistency("clubs %s and %s do not meet exactly once home and once away", a, b)
			}
		}
	}
	return nil
}

// StartOfDay truncates t to midnight UTC.
func StartOfDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// Matchdays returns the number of matchdays a league of n clubs plays.
func Matchdays(n int) int {
	if n < MinClubs {
		return 0
	}
	if n%2 == 1 {
		return 2 * n
	}
	return 2 * (n - 1)
}
