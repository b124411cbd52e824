package models

import (
	"fmt"
	"strings"
)

// Position is a player's normalized playing position
type Position string

const (
	PositionGoalkeeper        Position = "Goalkeeper"
	PositionCentreBack        Position = "Centre-Back"
	PositionLeftBack          Position = "Left-Back"
	PositionRightBack         Position = "Right-Back"
	PositionDefensiveMidfield Position = "Defensive Midfield"
	PositionCentralMidfield   Position = "Central Midfield"
	PositionAttackingMidfield Position = "Attacking Midfield"
	PositionLeftMidfield      Position = "Left Midfield"
	PositionRightMidfield     Position = "Right Midfield"
	PositionLeftWinger        Position = "Left Winger"
	PositionRightWinger       Position = "Right Winger"
	PositionCentreForward     Position = "Centre-Forward"
	PositionSecondStriker     Position = "Second Striker"
)

// Line groups positions into the four formation buckets
type Line string

const (
	LineGoalkeeper Line = "GK"
	LineDefence    Line = "DEF"
	LineMidfield   Line = "MID"
	LineAttack     Line = "ATT"
)

// Line returns the formation bucket the position belongs to
func (p Position) Line() Line {
	s := string(p)
	switch {
	case s == string(PositionGoalkeeper):
		return LineGoalkeeper
	case strings.Contains(s, "Back"):
		return LineDefence
	case strings.Contains(s, "Midfield"):
		return LineMidfield
	default:
		return LineAttack
	}
}

// Attacking reports whether the position is drawn on for goals and incidents
func (p Position) Attacking() bool {
	l := p.Line()
	return l == LineMidfield || l == LineAttack
}

var positionAliases = map[string]Position{
	"goalkeeper":         PositionGoalkeeper,
	"gk":                 PositionGoalkeeper,
	"centre-back":        PositionCentreBack,
	"center-back":        PositionCentreBack,
	"cb":                 PositionCentreBack,
	"left-back":          PositionLeftBack,
	"lb":                 PositionLeftBack,
	"right-back":         PositionRightBack,
	"rb":                 PositionRightBack,
	"defensive midfield": PositionDefensiveMidfield,
	"cdm":                PositionDefensiveMidfield,
	"central midfield":   PositionCentralMidfield,
	"cm":                 PositionCentralMidfield,
	"attacking midfield": PositionAttackingMidfield,
	"cam":                PositionAttackingMidfield,
	"left midfield":      PositionLeftMidfield,
	"right midfield":     PositionRightMidfield,
	"left winger":        PositionLeftWinger,
	"lw":                 PositionLeftWinger,
	"right winger":       PositionRightWinger,
	"rw":                 PositionRightWinger,
	"centre-forward":     PositionCentreForward,
	"center-forward":     PositionCentreForward,
	"cf":                 PositionCentreForward,
	"st":                 PositionCentreForward,
	"striker":            PositionCentreForward,
	"second striker":     PositionSecondStriker,
	"ss":                 PositionSecondStriker,
}

// ParsePosition normalizes a free-form position label
func ParsePosition(raw string) (Position, error) {
	if p, ok := positionAliases[strings.ToLower(strings.TrimSpace(raw))]; ok {
		return p, nil
	}
	return "", fmt.Errorf("unknown position: %q", raw)
}

// SquadRole is a player's assignment within the club squad
type SquadRole string

const (
	SquadRoleStarter    SquadRole = "starter"
	SquadRoleSubstitute SquadRole = "substitute"
	SquadRoleReserve    SquadRole = "reserve"
)

// SuspensionReason explains why a player is unavailable
type SuspensionReason string

const (
	SuspensionReasonNone        SuspensionReason = ""
	SuspensionReasonYellowCards SuspensionReason = "yellow_cards"
	SuspensionReasonRedCard     SuspensionReason = "red_card"
)

// Player is a footballer owned by a club. ID is the catalog identifier.
type Player struct {
	ID               int64              `json:"id"`
	Name             string             `json:"name"`
	Position         Position           `json:"position"`
	Nationality      string             `json:"nationality,omitempty"`
	ImageURL         string             `json:"image_url,omitempty"`
	Attributes       map[string]float64 `json:"attributes,omitempty"`
	MarketValue      int64              `json:"market_value"`
	StaminaPct       int                `json:"stamina_pct"`
	YellowCards      int                `json:"yellow_cards"`
	RedCards         int                `json:"red_cards"`
	IsSuspended      bool               `json:"is_suspended"`
	SuspensionReason SuspensionReason   `json:"suspension_reason,omitempty"`
	SquadRole        SquadRole          `json:"squad_role"`
}

// Rating is the mean of the player's numeric attributes
func (p Player) Rating() float64 {
	if len(p.Attributes) == 0 {
		return 0
	}
	var sum float64
	for _, v := range p.Attributes {
		sum += v
	}
	return sum / float64(len(p.Attributes))
}
