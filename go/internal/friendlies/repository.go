package friendlies

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Repository implements invite and friendly match storage over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new friendlies repository
func NewRepository(store docstore.Store) *Repository {
	return &Repository{
		store: store,
	}
}

// GetClub retrieves a club with its version
func (r *Repository) GetClub(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Club], error) {
	c, err := docstore.Load[models.Club](ctx, r.store, docstore.Clubs, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return c, apperr.NotFound("club %s not found", id)
	}
	return c, err
}

// CreateInvite stores a new invite
func (r *Repository) CreateInvite(ctx context.Context, invite *models.FriendlyInvite) error {
	if err := docstore.Insert(ctx, r.store, docstore.FriendlyInvites, invite.ID.String(), invite); err != nil {
		return fmt.Errorf("failed to create invite: %w", err)
	}
	return nil
}

// GetInvite retrieves an invite with its version
func (r *Repository) GetInvite(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.FriendlyInvite], error) {
	inv, err := docstore.Load[models.FriendlyInvite](ctx, r.store, docstore.FriendlyInvites, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return inv, apperr.NotFound("invite %s not found", id)
	}
	return inv, err
}

// ListInvites returns the invites whose club field (from_club_id or to_club_id) matches clubID
func (r *Repository) ListInvites(ctx context.Context, field string, clubID uuid.UUID) ([]models.FriendlyInvite, error) {
	docs, err := docstore.Query[models.FriendlyInvite](ctx, r.store, docstore.FriendlyInvites, field, clubID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list invites by %s: %w", field, err)
	}
	out := make([]models.FriendlyInvite, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.Value)
	}
	return out, nil
}

// UpdateInvite applies fn to the latest invite and writes it back
func (r *Repository) UpdateInvite(ctx context.Context, id uuid.UUID, fn func(*models.FriendlyInvite) error) (*models.FriendlyInvite, error) {
	inv, err := docstore.Update(ctx, r.store, docstore.FriendlyInvites, id.String(), fn)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("invite %s not found", id)
	}
	return inv, err
}

// SaveFriendly writes the accepted invite, both clubs and the new match in one batch.
func (r *Repository) SaveFriendly(ctx context.Context, invite docstore.Versioned[models.FriendlyInvite], home, away docstore.Versioned[models.Club], match *models.Match) error {
	writes := make([]docstore.Write, 0, 4)
	w, err := docstore.Put(docstore.FriendlyInvites, invite.Value.ID.String(), invite.Version, invite.Value)
	if err != nil {
		return err
	}
	writes = append(writes, w)
	for _, c := range []docstore.Versioned[models.Club]{home, away} {
		w, err := docstore.Put(docstore.Clubs, c.Value.ID.String(), c.Version, c.Value)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	w, err = docstore.Create(docstore.FriendlyMatches, match.ID.String(), match)
	if err != nil {
		return err
	}
	writes = append(writes, w)
	if err := r.store.Apply(ctx, writes...); err != nil {
		return fmt.Errorf("failed to save friendly: %w", err)
	}
	return nil
}

// ListMatches returns the friendlies a club played at home or away
func (r *Repository) ListMatches(ctx context.Context, clubID uuid.UUID) ([]models.Match, error) {
	var out []models.Match
	for _, field := range []string{"home_club_id", "away_club_id"} {
		docs, err := docstore.Query[models.Match](ctx, r.store, docstore.FriendlyMatches, field, clubID.String())
		if err != nil {
			return nil, fmt.Errorf("failed to list friendlies by %s: %w", field, err)
		}
		for _, d := range docs {
			out = append(out, *d.Value)
		}
	}
	return out, nil
}
