package config

import (
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/mcdev12/matchday/go/internal/models"
	"gopkg.in/yaml.v3"
)

// Rules are the tunable game settings
type Rules struct {
	StartingBudget   int64         `yaml:"starting_budget" validate:"min=0"`
	ServerCapacity   int           `yaml:"server_capacity" validate:"min=2"`
	FriendlyCooldown time.Duration `yaml:"friendly_cooldown" validate:"min=0"`
	ReplayPace       time.Duration `yaml:"replay_pace" validate:"min=0"`
	Prizes           Prizes        `yaml:"prizes"`
}

// Prizes is the default prize table for leagues that do not set one
type Prizes struct {
	First  int64 `yaml:"first" validate:"min=0"`
	Second int64 `yaml:"second" validate:"min=0"`
	Third  int64 `yaml:"third" validate:"min=0"`
	Others int64 `yaml:"others" validate:"min=0"`
}

func (p Prizes) Distribution() models.PrizeDistribution {
	return models.PrizeDistribution{First: p.First, Second: p.Second, Third: p.Third, Others: p.Others}
}

func DefaultRules() Rules {
	return Rules{
		StartingBudget:   300000,
		ServerCapacity:   20,
		FriendlyCooldown: models.FriendlyCooldown,
		ReplayPace:       time.Second,
		Prizes: Prizes{
			First:  500000,
			Second: 300000,
			Third:  150000,
			Others: 50000,
		},
	}
}

// ParseRules overlays a YAML rules document on the defaults. Keys it omits keep their default.
func ParseRules(data []byte) (Rules, error) {
	rules := DefaultRules()
	if err := yaml.Unmarshal(data, &rules); err != nil {
		return Rules{}, fmt.Errorf("failed to parse rules: %w", err)
	}
	if err := validator.New().Struct(rules); err != nil {
		return Rules{}, fmt.Errorf("invalid rules: %w", err)
	}
	return rules, nil
}
