package clubs

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Repository implements club data access over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new clubs repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// CreateClub stores the club and the server's updated club count in one write
func (r *Repository) CreateClub(ctx context.Context, club *models.Club, server docstore.Versioned[models.Server]) error {
	create, err := docstore.Create(docstore.Clubs, club.ID.String(), club)
	if err != nil {
		return err
	}
	count, err := docstore.Put(docstore.Servers, server.Value.ID.String(), server.Version, server.Value)
	if err != nil {
		return err
	}
	if err := r.store.Apply(ctx, create, count); err != nil {
		return fmt.Errorf("failed to create club: %w", err)
	}
	return nil
}

// GetServer retrieves a server with its version
func (r *Repository) GetServer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Server], error) {
	s, err := docstore.Load[models.Server](ctx, r.store, docstore.Servers, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return s, apperr.NotFound("server %s not found", id)
	}
	return s, err
}

// GetLeague retrieves a league by ID
func (r *Repository) GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	l, err := docstore.Load[models.League](ctx, r.store, docstore.Leagues, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("league %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get league: %w", err)
	}
	return l.Value, nil
}

// GetClub retrieves a club by ID
func (r *Repository) GetClub(ctx context.Context, id uuid.UUID) (*models.Club, error) {
	c, err := docstore.Load[models.Club](ctx, r.store, docstore.Clubs, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("club %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get club: %w", err)
	}
	return c.Value, nil
}

// ListServerClubs returns the clubs of a server in creation order
func (r *Repository) ListServerClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error) {
	return r.query(ctx, "server_id", serverID.String())
}

// ListOwnerClubs returns every club a manager owns across servers
func (r *Repository) ListOwnerClubs(ctx context.Context, ownerID string) ([]models.Club, error) {
	return r.query(ctx, "owner_id", ownerID)
}

func (r *Repository) query(ctx context.Context, field, value string) ([]models.Club, error) {
	docs, err := docstore.Query[models.Club](ctx, r.store, docstore.Clubs, field, value)
	if err != nil {
		return nil, fmt.Errorf("failed to query clubs by %s: %w", field, err)
	}
	out := make([]models.Club, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.Value)
	}
	return out, nil
}

// UpdateClub applies fn to the latest club and writes it back
func (r *Repository) UpdateClub(ctx context.Context, id uuid.UUID, fn func(*models.Club) error) (*models.Club, error) {
	c, err := docstore.Update(ctx, r.store, docstore.Clubs, id.String(), fn)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("club %s not found", id)
	}
	return c, err
}
