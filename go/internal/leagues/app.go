package leagues

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/simulation"
	"github.com/mcdev12/matchday/go/internal/standings"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"golang.org/x/crypto/bcrypt"
)

var tracer = otel.Tracer("github.com/mcdev12/matchday/go/internal/leagues")

// LeaguesRepository defines what the app layer needs from the repository
type LeaguesRepository interface {
	CreateLeague(ctx context.Context, league *models.League, server docstore.Versioned[models.Server]) error
	GetServer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Server], error)
	GetLeague(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.League], error)
	ListLeagues(ctx context.Context, status models.LeagueStatus) ([]models.League, error)
	UpdateLeague(ctx context.Context, id uuid.UUID, fn func(*models.League) error) (*models.League, error)
	GetClub(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Club], error)
	ListServerClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error)
	SaveLeague(ctx context.Context, league docstore.Versioned[models.League], clubs ...docstore.Versioned[models.Club]) error
}

// StandingsCache keeps a read copy of league tables.
// LoadStandings returns nil without error on a miss.
type StandingsCache interface {
	StoreStandings(ctx context.Context, leagueID uuid.UUID, s models.Standings) error
	LoadStandings(ctx context.Context, leagueID uuid.UUID) (*models.Standings, error)
	DropStandings(ctx context.Context, leagueID uuid.UUID) error
}

type noCache struct{}

func (noCache) StoreStandings(context.Context, uuid.UUID, models.Standings) error { return nil }

func (noCache) LoadStandings(context.Context, uuid.UUID) (*models.Standings, error) { return nil, nil }

func (noCache) DropStandings(context.Context, uuid.UUID) error { return nil }

// App handles league lifecycle and match play
type App struct {
	repo     LeaguesRepository
	catalog  catalog.Catalog
	events   events.Emitter
	cache    StandingsCache
	clock    clockwork.Clock
	seed     func() (int64, error)
	prizes   models.PrizeDistribution
	validate *validator.Validate
}

// Option configures an App
type Option func(*App)

// WithClock replaces the wall clock, mainly for tests
func WithClock(c clockwork.Clock) Option {
	return func(a *App) { a.clock = c }
}

// WithSeedSource replaces the entropy source used to seed matches
func WithSeedSource(fn func() (int64, error)) Option {
	return func(a *App) { a.seed = fn }
}

// WithStandingsCache enables caching of league tables.
// Reads fill the cache and every committed change drops the entry.
func WithStandingsCache(c StandingsCache) Option {
	return func(a *App) { a.cache = c }
}

// WithDefaultPrizes sets the prize distribution used when a league does not specify one
func WithDefaultPrizes(p models.PrizeDistribution) Option {
	return func(a *App) { a.prizes = p }
}

// NewApp creates a new leagues App
func NewApp(repo LeaguesRepository, cat catalog.Catalog, emitter events.Emitter, opts ...Option) *App {
	a := &App{
		repo:     repo,
		catalog:  cat,
		events:   emitter,
		cache:    noCache{},
		clock:    clockwork.NewRealClock(),
		seed:     simulation.NewSeed,
		validate: validator.New(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// CreateLeague creates a league in a server. A server hosts at most one league.
func (a *App) CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}

	prizes := a.prizes
	if req.PrizeDistribution != nil {
		prizes = *req.PrizeDistribution
	}
	if prizes.First < 0 || prizes.Second < 0 || prizes.Third < 0 || prizes.Others < 0 {
		return nil, apperr.Validation("prize amounts must not be negative")
	}
	if req.RewardPlayerID != nil {
		if _, ok := a.catalog.Player(*req.RewardPlayerID); !ok {
			return nil, apperr.Validation("reward player %d is not in the catalog", *req.RewardPlayerID)
		}
	}

	var hash string
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash league password: %w", err)
		}
		hash = string(h)
	}

	league := &models.League{
		ID:                uuid.New(),
		ServerID:          req.ServerID,
		Name:              req.Name,
		PasswordHash:      hash,
		MaxCapacity:       req.MaxCapacity,
		PrizeDistribution: prizes,
		RewardPlayerID:    req.RewardPlayerID,
		Clubs:             []models.LeagueClub{},
		Fixtures:          []models.Fixture{},
		Matches:           []models.Match{},
		CurrentMatchday:   1,
		Status:            models.LeagueStatusCreated,
		Standings:         standings.New(nil),
		CreatedAt:         a.clock.Now().UTC(),
	}

	err := retry(func() error {
		server, err := a.repo.GetServer(ctx, req.ServerID)
		if err != nil {
			return err
		}
		if server.Value.LeagueID != nil {
			return apperr.StateConflict("server %s already hosts league %s", req.ServerID, *server.Value.LeagueID)
		}
		if req.RewardPlayerID != nil {
			clubs, err := a.repo.ListServerClubs(ctx, req.ServerID)
			if err != nil {
				return err
			}
			if owner := ownerOf(clubs, *req.RewardPlayerID); owner != nil {
				return apperr.Validation("reward player %d already plays for %s", *req.RewardPlayerID, owner.Name)
			}
		}
		server.Value.LeagueID = &league.ID
		return a.repo.CreateLeague(ctx, league, server)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create league: %w", err)
	}

	log.Info().
		Str("league_id", league.ID.String()).
		Str("server_id", league.ServerID.String()).
		Int("max_capacity", league.MaxCapacity).
		Msg("created league")
	return league, nil
}

// GetLeague retrieves a league by ID
func (a *App) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	league, err := a.repo.GetLeague(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return league.Value, nil
}

// ListLeagues lists leagues, optionally filtered by status
func (a *App) ListLeagues(ctx context.Context, status models.LeagueStatus) ([]models.League, error) {
	leagues, err := a.repo.ListLeagues(ctx, status)
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	return leagues, nil
}

// GetStandings returns the league table, served from the cache when possible
func (a *App) GetStandings(ctx context.Context, id uuid.UUID) (*models.Standings, error) {
	cached, err := a.cache.LoadStandings(ctx, id)
	if err != nil {
		log.Warn().Err(err).Str("league_id", id.String()).Msg("standings cache read failed")
	}
	if cached != nil {
		return cached, nil
	}
	league, err := a.GetLeague(ctx, id)
	if err != nil {
		return nil, err
	}
	a.storeStandings(ctx, league)
	return &league.Standings, nil
}

// JoinLeague enters a club into a league that has not started yet.
func (a *App) JoinLeague(ctx context.Context, req JoinLeagueRequest) (*models.League, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}

	var joined *models.League
	err := retry(func() error {
		league, err := a.repo.GetLeague(ctx, req.LeagueID)
		if err != nil {
			return err
		}
		club, err := a.repo.GetClub(ctx, req.ClubID)
		if err != nil {
			return err
		}
		l, c := league.Value, club.Value

		if l.Status != models.LeagueStatusCreated {
			return apperr.StateConflict("league %s is %s and no longer accepts clubs", l.ID, l.Status)
		}
		if l.PasswordHash != "" {
			if err := bcrypt.CompareHashAndPassword([]byte(l.PasswordHash), []byte(req.Password)); err != nil {
				return apperr.Validation("wrong password for league %s", l.ID)
			}
		}
		if c.ServerID != l.ServerID {
			return apperr.Validation("club %s belongs to another server", c.ID)
		}
		if len(l.Clubs) >= l.MaxCapacity {
			return apperr.Validation("league %s is full (%d clubs)", l.ID, l.MaxCapacity)
		}
		if l.HasClub(c.ID) {
			return apperr.StateConflict("club %s already joined league %s", c.ID, l.ID)
		}
		if c.LeagueID != nil && *c.LeagueID != l.ID {
			other, err := a.repo.GetLeague(ctx, *c.LeagueID)
			if err != nil && !errors.Is(err, apperr.ErrNotFound) {
				return err
			}
			if err == nil && other.Value.Status != models.LeagueStatusFinished {
				return apperr.StateConflict("club %s already plays in league %s", c.ID, other.Value.ID)
			}
		}

		l.Clubs = append(l.Clubs, models.LeagueClub{ClubID: c.ID, Name: c.Name, LogoURL: c.LogoURL})
		c.LeagueID = &l.ID
		if err := a.repo.SaveLeague(ctx, league, club); err != nil {
			return err
		}
		joined = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to join league: %w", err)
	}

	log.Info().
		Str("league_id", joined.ID.String()).
		Str("club_id", req.ClubID.String()).
		Int("clubs", len(joined.Clubs)).
		Msg("club joined league")
	return joined, nil
}

// ownerOf returns the club holding the player, or nil when nobody does.
func ownerOf(clubs []models.Club, playerID int64) *models.Club {
	for i := range clubs {
		if clubs[i].PlayerIndex(playerID) >= 0 {
			return &clubs[i]
		}
	}
	return nil
}

// retry reruns a read-modify-write across several documents until it commits without a version conflict.
func retry(fn func() error) error {
	err := docstore.Retry(fn)
	if errors.Is(err, docstore.ErrConflict) {
		return apperr.Wrap(apperr.KindStateConflict, "too many concurrent updates", err)
	}
	return err
}

func (a *App) storeStandings(ctx context.Context, l *models.League) {
	if err := a.cache.StoreStandings(ctx, l.ID, l.Standings); err != nil {
		log.Warn().Err(err).Str("league_id", l.ID.String()).Msg("failed to cache standings")
	}
}

// dropStandings evicts the cached table after a commit.
func (a *App) dropStandings(ctx context.Context, id uuid.UUID) {
	if err := a.cache.DropStandings(ctx, id); err != nil {
		log.Warn().Err(err).Str("league_id", id.String()).Msg("failed to drop cached standings")
	}
}

// emit records a domain event. Failures are logged and never fail the operation.
func (a *App) emit(ctx context.Context, leagueID uuid.UUID, eventType string, payload any) {
	if err := a.events.Emit(ctx, leagueID, eventType, payload); err != nil {
		log.Error().Err(err).Str("league_id", leagueID.String()).Str("event_type", eventType).Msg("failed to emit league event")
	}
}
