package servers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Repository implements server data access over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new servers repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// CreateServer stores a new server
func (r *Repository) CreateServer(ctx context.Context, s *models.Server) error {
	if err := docstore.Insert(ctx, r.store, docstore.Servers, s.ID.String(), s); err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}
	return nil
}

// GetServer retrieves a server by ID
func (r *Repository) GetServer(ctx context.Context, id uuid.UUID) (*models.Server, error) {
	s, err := docstore.Load[models.Server](ctx, r.store, docstore.Servers, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("server %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get server: %w", err)
	}
	return s.Value, nil
}

// ListServers returns every server in creation order
func (r *Repository) ListServers(ctx context.Context) ([]models.Server, error) {
	docs, err := docstore.All[models.Server](ctx, r.store, docstore.Servers)
	if err != nil {
		return nil, fmt.Errorf("failed to list servers: %w", err)
	}
	out := make([]models.Server, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.Value)
	}
	return out, nil
}
