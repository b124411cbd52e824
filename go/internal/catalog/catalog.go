// Package catalog is the read-only source of player seed records used to build squads and rewards.
package catalog

import (
	"fmt"
	"os"
	"sort"

	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
	"gopkg.in/yaml.v3"
)

// Catalog looks up seed players keyed by team
type Catalog interface {
	Teams() []string
	TeamPlayers(team string) ([]models.Player, error)
	Player(id int64) (models.Player, bool)
	All() []models.Player
}

type seedFile struct {
	Teams map[string]seedTeam `yaml:"teams"`
}

type seedTeam struct {
	Name    string       `yaml:"name"`
	Logo    string       `yaml:"logo"`
	Players []seedPlayer `yaml:"players"`
}

type seedPlayer struct {
	ID          int64              `yaml:"id"`
	Name        string             `yaml:"name"`
	Position    string             `yaml:"position"`
	Nationality string             `yaml:"nationality"`
	MarketValue string             `yaml:"market_value"`
	ImageURL    string             `yaml:"image_url"`
	Attributes  map[string]float64 `yaml:"attributes"`
}

// Static is an in-memory catalog
type Static struct {
	teams map[string][]models.Player
	byID  map[int64]models.Player
	order []int64
}

// NewStatic builds a catalog from already-normalized players grouped by team.
func NewStatic(teams map[string][]models.Player) *Static {
	c := &Static{
		teams: make(map[string][]models.Player, len(teams)),
		byID:  make(map[int64]models.Player),
	}
	keys := make([]string, 0, len(teams))
	for k := range teams {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		for _, p := range teams[k] {
			if _, dup := c.byID[p.ID]; dup {
				continue
			}
			c.teams[k] = append(c.teams[k], p)
			c.byID[p.ID] = p
			c.order = append(c.order, p.ID)
		}
	}
	return c
}

// LoadFile reads a YAML (or JSON) catalog and normalizes every player.
// Players with an unknown position are skipped.
func LoadFile(path string) (*Static, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog %s: %w", path, err)
	}
	return Parse(data)
}

// Parse decodes catalog bytes.
func Parse(data []byte) (*Static, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("failed to parse catalog: %w", err)
	}

	teams := make(map[string][]models.Player, len(f.Teams))
	for key, team := range f.Teams {
		for _, sp := range team.Players {
			p, err := normalize(sp)
			if err != nil {
				log.Warn().Err(err).Str("team", key).Int64("player_id", sp.ID).Msg("skipping catalog player")
				continue
			}
			teams[key] = append(teams[key], p)
		}
	}
	return NewStatic(teams), nil
}

func normalize(sp seedPlayer) (models.Player, error) {
	pos, err := models.ParsePosition(sp.Position)
	if err != nil {
		return models.Player{}, err
	}
	value, err := ParseMarketValue(sp.MarketValue)
	if err != nil {
		return models.Player{}, err
	}
	return models.Player{
		ID:          sp.ID,
		Name:        sp.Name,
		Position:    pos,
		Nationality: sp.Nationality,
		ImageURL:    sp.ImageURL,
		Attributes:  sp.Attributes,
		MarketValue: value,
		StaminaPct:  condition.MaxStamina,
		SquadRole:   models.SquadRoleReserve,
	}, nil
}

func (c *Static) Teams() []string {
	out := make([]string, 0, len(c.teams))
	for k := range c.teams {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}

func (c *Static) TeamPlayers(team string) ([]models.Player, error) {
	players, ok := c.teams[team]
	if !ok {
		return nil, fmt.Errorf("unknown team %q", team)
	}
	return append([]models.Player(nil), players...), nil
}

func (c *Static) Player(id int64) (models.Player, bool) {
	p, ok := c.byID[id]
	return p, ok
}

// All returns every player in a stable order.
func (c *Static) All() []models.Player {
	out := make([]models.Player, 0, len(c.order))
	for _, id := range c.order {
		out = append(out, c.byID[id])
	}
	return out
}
