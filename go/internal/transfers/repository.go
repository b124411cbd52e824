package transfers

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

// Repository implements offer and transfer history storage over the document store
type Repository struct {
	store docstore.Store
}

// NewRepository creates a new transfers repository
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

// CreateOffer stores a new offer
func (r *Repository) CreateOffer(ctx context.Context, offer *models.TransferOffer) error {
	if err := docstore.Insert(ctx, r.store, docstore.TransferOffers, offer.ID.String(), offer); err != nil {
		return fmt.Errorf("failed to create offer: %w", err)
	}
	return nil
}

// GetOffer retrieves an offer with its version
func (r *Repository) GetOffer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.TransferOffer], error) {
	o, err := docstore.Load[models.TransferOffer](ctx, r.store, docstore.TransferOffers, id.String())
	if errors.Is(err, docstore.ErrNotFound) {
		return o, apperr.NotFound("offer %s not found", id)
	}
	return o, err
}

// ListOffers returns the offers whose club field (from_club_id or to_club_id) matches clubID
func (r *Repository) ListOffers(ctx context.Context, field string, clubID uuid.UUID) ([]models.TransferOffer, error) {
	docs, err := docstore.Query[models.TransferOffer](ctx, r.store, docstore.TransferOffers, field, clubID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list offers by %s: %w", field, err)
	}
	out := make([]models.TransferOffer, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.Value)
	}
	return out, nil
}

// UpdateOffer applies fn to the latest offer and writes it back
func (r *Repository) UpdateOffer(ctx context.Context, id uuid.UUID, fn func(*models.TransferOffer) error) (*models.TransferOffer, error) {
	o, err := docstore.Update(ctx, r.store, docstore.TransferOffers, id.String(), fn)
	if errors.Is(err, docstore.ErrNotFound) {
		return nil, apperr.NotFound("offer %s not found", id)
	}
	return o, err
}

// CompleteTransfer writes both clubs, consumes the offer and appends the history records in one batch.
func (r *Repository) CompleteTransfer(ctx context.Context, offer docstore.Versioned[models.TransferOffer], from, to docstore.Versioned[models.Club], records []models.TransferRecord) error {
	writes := make([]docstore.Write, 0, 3+len(records))
	for _, c := range []docstore.Versioned[models.Club]{from, to} {
		w, err := docstore.Put(docstore.Clubs, c.Value.ID.String(), c.Version, c.Value)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	writes = append(writes, docstore.Delete(docstore.TransferOffers, offer.Value.ID.String(), offer.Version))
	for _, rec := range records {
		w, err := docstore.Create(docstore.TransferHistory, rec.ID.String(), rec)
		if err != nil {
			return err
		}
		writes = append(writes, w)
	}
	if err := r.store.Apply(ctx, writes...); err != nil {
		return fmt.Errorf("failed to complete transfer: %w", err)
	}
	return nil
}

// ListHistory returns the transfers completed in a server
func (r *Repository) ListHistory(ctx context.Context, serverID uuid.UUID) ([]models.TransferRecord, error) {
	docs, err := docstore.Query[models.TransferRecord](ctx, r.store, docstore.TransferHistory, "server_id", serverID.String())
	if err != nil {
		return nil, fmt.Errorf("failed to list transfer history: %w", err)
	}
	out := make([]models.TransferRecord, 0, len(docs))
	for _, d := range docs {
		out = append(out, *d.Value)
	}
	return out, nil
}
