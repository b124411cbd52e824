package leagues

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Repository implements league data access over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new leagues repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// CreateLeague stores a new league and claims the server for it in one write.
func (r *Repository) CreateLeague(ctx context.Context, league *models.League, server docstore.Versioned[models.Server]) error {
	create, err := docstore.Create(docstore.Leagues, league.ID.String(), league)
	if err != nil {
		return err
	}
	claim, err := docstore.Put(docstore.Servers, server.Value.ID.String(), server.Version, server.Value)
	if err != nil {
		return err
	}
	if err := r.store.Apply(ctx, create, claim); err != nil {
		return fmt.Errorf("failed to create league: %w", err)
	}
	return nil
}

// GetServer retrieves a server with its version
func (r *Repository) GetServer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Server], error) {
	s, err := docstore.Load[models.Server](ctx, r.store, docstore.Servers, id.String())
	if err != nil {
		return s, notFound(err, "server", id)
	}
	return s, nil
}

// GetLeague retrieves a league with its version
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.League], error) {
	l, err := docstore.Load[models.League](ctx, r.store, docstore.Leagues, id.String())
	if err != nil {
		return l, notFound(err, "league", id)
	}
	return l, nil
}

// ListLeagues returns leagues in creation order, optionally filtered by status
func (r *Repository) ListLeagues(ctx context.Context, status models.LeagueStatus) ([]models.League, error) {
	var (
		docs []docstore.Versioned[models.League]
		err  error
	)
	if status == "" {
		docs, err = docstore.All[models.League](ctx, r.store, docstore.Leagues)
	} else {
		docs, err = docstore.Query[models.League](ctx, r.store, docstore.Leagues, "status", string(status))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list leagues: %w", err)
	}
	leagues := make([]models.League, 0, len(docs))
	for _, d := range docs {
		leagues = append(leagues, *d.Value)
	}
	return leagues, nil
}

// UpdateLeague applies fn to the latest league and writes it back, retrying on version conflicts.
func (r *Repository) UpdateLeague(ctx context.Context, id uuid.UUID, fn func(*models.League) error) (*models.League, error) {
	l, err := docstore.Update(ctx, r.store, docstore.Leagues, id.String(), fn)
	if err != nil {
		return nil, notFound(err, "league", id)
	}
	return l, nil
}

// GetClub retrieves a club with its version
func (r *Repository) GetClub(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Club], error) {
	c, err := docstore.Load[models.Club](ctx, r.store, docstore.Clubs, id.String())
	if err != nil {
		return c, notFound(err, "club", id)
	}
	return c, nil
}

// ListServerClubs returns every club registered in a server
func (r *Repository) ListServerClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error) {
	docs, err := docstore.Query[models.Club](ctx, r.store, docstore.Clubs, "server_id", serverID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list server clubs: %w", err)
	}
	clubs := make([]models.Club, 0, len(docs))
	for _, d := range docs {
		clubs = append(clubs, *d.Value)
	}
	return clubs, nil
}

// SaveLeague writes the league and clubs together, each guarded by the version it was read at.
func (r *Repository) SaveLeague(ctx context.Context, league docstore.Versioned[models.League], clubs ...docstore.Versioned[models.Club]) error {
	writes := make([]docstore.Write, 0, len(clubs)+1)
	w, err := docstore.Put(docstore.Leagues, league.Value.ID.String(), league.Version, league.Value)
	if err != nil {
		return err
	}
	writes = append(writes, w)
	for _, c := range clubs {
		w, err := docstore.Put(docstore.Clubs, c.Value.ID.String(), c.Version, c.Value)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	return r.store.Apply(ctx, writes...)
}

func notFound(err error, what string, id uuid.UUID) error {
	if errors.Is(err, docstore.ErrNotFound) {
		return apperr.NotFound("%s %s not found", what, id)
	}
	return err
}
