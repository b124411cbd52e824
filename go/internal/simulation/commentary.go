package simulation

import (
	"fmt"
	"math/rand"
)

var (
	goalFinishes = []string{
		"a rocket from outside the box",
		"a calm finish into the bottom corner",
		"an acrobatic overhead kick",
		"a curler that kisses the inside of the post",
		"a tap-in from two yards",
		"a solo run past three defenders",
		"a glancing header at the near post",
		"a low drive through the keeper's legs",
	}
	penaltyLines = []string{
		"%s sends the keeper the wrong way from the spot for %s",
		"%s smashes the penalty high into the net for %s",
		"%s keeps cool from twelve yards and %s celebrate",
		"%s rolls the penalty into the corner for %s",
	}
	nearMissLines = []string{
		"%s rattles the crossbar for %s",
		"%s is denied by a flying save",
		"%s drags a shot inches wide",
		"a last-ditch block stops %s at the edge of the six-yard box",
		"%s skies it from close range, %s cannot believe it",
		"%s clips the outside of the post",
	}
	yellowLines = []string{
		"%s of %s is booked for a late challenge",
		"%s goes into the book for a cynical foul",
		"%s is cautioned for dissent",
		"a clumsy tackle earns %s a yellow card",
	}
	redLines = []string{
		"%s is shown a straight red, %s are down a man",
		"%s sees red for a dangerous lunge",
		"off goes %s after a moment of madness",
		"%s is sent off and %s must reorganise",
	}
	cornerLines = []string{
		"%s win a corner",
		"corner to %s, the big men go forward",
		"%s force a corner from a deflected cross",
		"set piece for %s from the corner flag",
	}
	freeKickLines = []string{
		"free kick to %s in a promising position",
		"%s line up a free kick on the edge of the area",
		"%s have a set piece to test the keeper",
		"the wall is lining up as %s prepare a free kick",
	}
	flowLines = []string{
		"%s are keeping the ball but %s sit deep and compact",
		"end-to-end football now",
		"%s have ten men behind the ball",
		"the tempo lifts as both sides push for a goal",
		"the referee waves play on to protests from %s",
		"tempers flare and the referee steps in",
		"%s break forward at pace",
		"patient build-up from %s",
	}
	lateLines = []string{
		"into the final ten minutes and the tension is rising",
		"time is running out, both sides throw bodies forward",
		"frantic final minutes",
		"who will find a winner",
	}
)

func pick(rng *rand.Rand, lines []string) string {
	return lines[rng.Intn(len(lines))]
}

// fill substitutes args into the template, ignoring surplus arguments.
func fill(tmpl string, args ...any) string {
	n := 0
	for i := 0; i+1 < len(tmpl); i++ {
		if tmpl[i] == '%' && tmpl[i+1] == 's' {
			n++
		}
	}
	if n < len(args) {
		args = args[:n]
	}
	return fmt.Sprintf(tmpl, args...)
}

func stamp(minute int, line string) string {
	return fmt.Sprintf("[%d'] %s", minute, line)
}

func goalLine(rng *rand.Rand, minute int, scorer, assister, team string) string {
	finish := pick(rng, goalFinishes)
	if assister != "" {
		return stamp(minute, fmt.Sprintf("GOAL! %s scores for %s, set up by %s, %s", scorer, team, assister, finish))
	}
	return stamp(minute, fmt.Sprintf("GOAL! %s scores for %s with %s", scorer, team, finish))
}

func flowLine(rng *rand.Rand, minute int, home, away string) string {
	if minute > 80 {
		return stamp(minute, pick(rng, lateLines))
	}
	return stamp(minute, fill(pick(rng, flowLines), home, away))
}

func kickoffLine(home, away string, crowd int) string {
	return fmt.Sprintf("Welcome to %s Stadium, where %s host %s in front of %d fans", home, home, away, crowd)
}

func fullTimeLines(home, away string, res *Result) []string {
	score := fmt.Sprintf("FULL TIME: %s %d-%d %s", home, res.HomeScore, res.AwayScore, away)
	switch {
	case res.HomeScore == res.AwayScore:
		return []string{score + ". Honours even."}
	case res.HomeScore > res.AwayScore:
		lines := []string{score + ". Victory for the home side."}
		if res.HomeLuck < upsetLuck && res.HomeStrength < res.AwayStrength {
			lines = append(lines, fmt.Sprintf("An upset! %s defied the odds.", home))
		}
		return lines
	default:
		lines := []string{score + ". Away win."}
		if res.AwayLuck < upsetLuck && res.AwayStrength < res.HomeStrength {
			lines = append(lines, fmt.Sprintf("A stunning upset on the road for %s.", away))
		}
		return lines
	}
}
