package clubs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/servers"
	"github.com/mcdev12/matchday/go/internal/simulation"
	"github.com/mcdev12/matchday/go/internal/squad"
	"github.com/rs/zerolog/log"
)

// ClubsRepository defines what the app layer needs from the repository
type ClubsRepository interface {
	CreateClub(ctx context.Context, club *models.Club, server docstore.Versioned[models.Server]) error
	GetServer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Server], error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetClub(ctx context.Context, id uuid.UUID) (*models.Club, error)
	ListServerClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error)
	ListOwnerClubs(ctx context.Context, ownerID string) ([]models.Club, error)
	UpdateClub(ctx context.Context, id uuid.UUID, fn func(*models.Club) error) (*models.Club, error)
}

// App handles clubs business logic
type App struct {
	repo           ClubsRepository
	catalog        catalog.Catalog
	clock          clockwork.Clock
	startingBudget int64
	newRand        func() (*rand.Rand, error)
	validate       *validator.Validate
}

// NewApp creates a new clubs App. Squads are drawn with a freshly seeded generator per club.
func NewApp(repo ClubsRepository, cat catalog.Catalog, clock clockwork.Clock, startingBudget int64) *App {
	return &App{
		repo:           repo,
		catalog:        cat,
		clock:          clock,
		startingBudget: startingBudget,
		newRand: func() (*rand.Rand, error) {
			seed, err := simulation.NewSeed()
			if err != nil {
				return nil, err
			}
			return simulation.NewRand(seed), nil
		},
		validate: validator.New(),
	}
}

// CreateClub creates a club in a server with a balanced squad of players nobody there owns yet.
func (a *App) CreateClub(ctx context.Context, req CreateClubRequest) (*models.Club, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	rng, err := a.newRand()
	if err != nil {
		return nil, fmt.Errorf("failed to seed squad selection: %w", err)
	}

	var club *models.Club
	err = docstore.Retry(func() error {
		server, err := a.repo.GetServer(ctx, req.ServerID)
		if err != nil {
			return err
		}
		if err := servers.CheckAccess(server.Value, req.ServerPassword); err != nil {
			return err
		}

		existing, err := a.repo.ListServerClubs(ctx, req.ServerID)
		if err != nil {
			return err
		}
		owned := make(map[int64]bool)
		for _, c := range existing {
			if c.OwnerID == req.OwnerID {
				return apperr.StateConflict("owner %s already manages %s in this server", req.OwnerID, c.Name)
			}
			if strings.EqualFold(c.Name, req.Name) {
				return apperr.StateConflict("club name %q is taken in this server", req.Name)
			}
			for _, p := range c.Players {
				owned[p.ID] = true
			}
		}
		if err := a.reserveReward(ctx, server.Value, owned); err != nil {
			return err
		}

		players, err := squad.Select(rng, squad.Available(a.catalog.All(), owned))
		if err != nil {
			return err
		}

		club = &models.Club{
			ID:             uuid.New(),
			OwnerID:        req.OwnerID,
			ServerID:       req.ServerID,
			Name:           req.Name,
			ManagerName:    req.ManagerName,
			LogoURL:        req.LogoURL,
			PrimaryColor:   req.PrimaryColor,
			SecondaryColor: req.SecondaryColor,
			Budget:         a.startingBudget,
			Players:        players,
			CreatedAt:      a.clock.Now().UTC(),
		}
		server.Value.CurrentClubs++
		return a.repo.CreateClub(ctx, club, server)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create club: %w", err)
	}

	log.Info().
		Str("club_id", club.ID.String()).
		Str("server_id", club.ServerID.String()).
		Str("owner_id", club.OwnerID).
		Int("players", len(club.Players)).
		Msg("created club")
	return club, nil
}

// GetClub retrieves a club by ID
func (a *App) GetClub(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	return a.repo.GetClub(ctx, id)
}

// GetClubByOwner returns the club a manager owns in a server
func (a *App) GetClubByOwner(ctx context.Context, serverID uuid.UUID, ownerID string) (*models.Club, error) {
	clubs, err := a.repo.ListOwnerClubs(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	for i := range clubs {
		if clubs[i].ServerID == serverID {
			return &clubs[i], nil
		}
	}
	return nil, apperr.NotFound("owner %s has no club in server %s", ownerID, serverID)
}

// ListClubs lists the clubs of a server
func (a *App) ListClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error) {
	return a.repo.ListServerClubs(ctx, serverID)
}

// AvailablePlayers lists catalog players no club in the server owns.
// A league's reward player is withheld until its prizes are paid.
func (a *App) AvailablePlayers(ctx context.Context, serverID uuid.UUID) ([]models.Player, error) {
	server, err := a.repo.GetServer(ctx, serverID)
	if err != nil {
		return nil, err
	}
	clubs, err := a.repo.ListServerClubs(ctx, serverID)
	if err != nil {
		return nil, err
	}
	owned := make(map[int64]bool)
	for _, c := range clubs {
		for _, p := range c.Players {
			owned[p.ID] = true
		}
	}
	if err := a.reserveReward(ctx, server.Value, owned); err != nil {
		return nil, err
	}
	return squad.Available(a.catalog.All(), owned), nil
}

// reserveReward marks the reward player the server's league still owes its champion as taken.
func (a *App) reserveReward(ctx context.Context, server *models.Server, owned map[int64]bool) error {
	if server.LeagueID == nil {
		return nil
	}
	l, err := a.repo.GetLeague(ctx, *server.LeagueID)
	if errors.Is(err, apperr.ErrNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if l.RewardPlayerID != nil && !l.PrizesDistributed {
		owned[*l.RewardPlayerID] = true
	}
	return nil
}

// SetLineup assigns squad roles: the named starters, then the named substitutes, everyone else in reserve.
// The roster is reordered so the first eleven entries are the starters.
func (a *App) SetLineup(ctx context.Context, req SetLineupRequest) (*models.Club, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}

	club, err := a.repo.UpdateClub(ctx, req.ClubID, func(c *models.Club) error {
		roles := make(map[int64]models.SquadRole, len(c.Players))
		for _, id := range req.Starters {
			i := c.PlayerIndex(id)
			if i < 0 {
				return apperr.Validation("player %d is not in the squad", id)
			}
			if c.Players[i].IsSuspended {
				return apperr.Validation("%s is suspended and cannot start", c.Players[i].Name)
			}
			roles[id] = models.SquadRoleStarter
		}
		for _, id := range req.Substitutes {
			if c.PlayerIndex(id) < 0 {
				return apperr.Validation("player %d is not in the squad", id)
			}
			if _, dup := roles[id]; dup {
				return apperr.Validation("player %d is both a starter and a substitute", id)
			}
			roles[id] = models.SquadRoleSubstitute
		}

		order := make(map[int64]int, len(c.Players))
		for i, id := range append(append([]int64(nil), req.Starters...), req.Substitutes...) {
			order[id] = i
		}
		for i := range c.Players {
			p := &c.Players[i]
			if role, ok := roles[p.ID]; ok {
				p.SquadRole = role
			} else {
				p.SquadRole = models.SquadRoleReserve
			}
		}
		c.SortSquad()
		named := len(order)
		sortNamed(c.Players[:named], order)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to set lineup: %w", err)
	}

	log.Info().Str("club_id", club.ID.String()).Msg("lineup updated")
	return club, nil
}

// sortNamed orders the named players as the request listed them
func sortNamed(players []models.Player, order map[int64]int) {
	for i := 1; i < len(players); i++ {
		for j := i; j > 0 && order[players[j].ID] < order[players[j-1].ID]; j-- {
			players[j], players[j-1] = players[j-1], players[j]
		}
	}
}

// ClearSuspensions makes every suspended player in the club available again.
func (a *App) ClearSuspensions(ctx context.Context, id uuid.UUID) (int, error) {
	cleared := 0
	_, err := a.repo.UpdateClub(ctx, id, func(c *models.Club) error {
		cleared = 0
		for i := range c.Players {
			if condition.ClearSuspension(&c.Players[i]) {
				cleared++
			}
		}
		return nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to clear suspensions: %w", err)
	}
	if cleared > 0 {
		log.Info().Str("club_id", id.String()).Int("cleared", cleared).Msg("suspensions cleared")
	}
	return cleared, nil
}

// AdjustBudget applies a ledger credit or debit. The budget never goes below zero.
func (a *App) AdjustBudget(ctx context.Context, req AdjustBudgetRequest) (*models.Club, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	club, err := a.repo.UpdateClub(ctx, req.ClubID, func(c *models.Club) error {
		if c.Budget+req.Delta < 0 {
			return apperr.Validation("insufficient budget: have %s, need %s", catalog.FormatCurrency(c.Budget), catalog.FormatCurrency(-req.Delta))
		}
		c.Budget += req.Delta
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to adjust budget: %w", err)
	}

	log.Info().
		Str("club_id", club.ID.String()).
		Int64("delta", req.Delta).
		Int64("budget", club.Budget).
		Str("reason", req.Reason).
		Msg("budget adjusted")
	return club, nil
}
