// Package transfers moves players between clubs through direct and swap offers.
package transfers

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
)

const (
	// SwapTopUpPercent caps a swap's money top-up as a share of the value gap
	SwapTopUpPercent = 30
	// DefaultHistoryLimit is the number of records History returns when no limit is given
	DefaultHistoryLimit = 50
)

// TransfersRepository defines what the app layer needs from the repository
type TransfersRepository interface {
	GetClub(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Club], error)
	CreateOffer(ctx context.Context, offer *models.TransferOffer) error
	GetOffer(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.TransferOffer], error)
	ListOffers(ctx context.Context, field string, clubID uuid.UUID) ([]models.TransferOffer, error)
	UpdateOffer(ctx context.Context, id uuid.UUID, fn func(*models.TransferOffer) error) (*models.TransferOffer, error)
	CompleteTransfer(ctx context.Context, offer docstore.Versioned[models.TransferOffer], from, to docstore.Versioned[models.Club], records []models.TransferRecord) error
	ListHistory(ctx context.Context, serverID uuid.UUID) ([]models.TransferRecord, error)
}

// App handles transfer business logic
type App struct {
	repo     TransfersRepository
	events   events.Emitter
	clock    clockwork.Clock
	validate *validator.Validate
}

// NewApp creates a new transfers App
func NewApp(repo TransfersRepository, emitter events.Emitter, clock clockwork.Clock) *App {
	return &App{
		repo:     repo,
		events:   emitter,
		clock:    clock,
		validate: validator.New(),
	}
}

// MaxSwapTopUp is the most money a bidder may add to a swap: 30% of how much the target
// is worth above the offered player, and nothing when the offered player is worth as much or more.
func MaxSwapTopUp(targetValue, swapValue int64) int64 {
	gap := targetValue - swapValue
	if gap <= 0 {
		return 0
	}
	return gap * SwapTopUpPercent / 100
}

// MakeDirectOffer records a pending money offer for another club's player at its market value.
func (a *App) MakeDirectOffer(ctx context.Context, req DirectOfferRequest) (*models.TransferOffer, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	from, to, err := a.parties(ctx, req.FromClubID, req.ToClubID)
	if err != nil {
		return nil, err
	}
	i := to.PlayerIndex(req.TargetPlayerID)
	if i < 0 {
		return nil, apperr.Validation("player %d does not play for %s", req.TargetPlayerID, to.Name)
	}
	target := to.Players[i]
	fee := target.MarketValue
	if req.Amount != 0 && req.Amount != fee {
		return nil, apperr.Validation("%s is priced at %s, not %s", target.Name, catalog.FormatCurrency(fee), catalog.FormatCurrency(req.Amount))
	}
	if err := checkDirect(from, to, target, fee); err != nil {
		return nil, err
	}

	offer := a.newOffer(from, to, models.OfferKindDirect, target, fee)
	if err := a.repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	log.Info().
		Str("offer_id", offer.ID.String()).
		Str("from_club_id", from.ID.String()).
		Str("to_club_id", to.ID.String()).
		Int64("player_id", target.ID).
		Int64("amount", fee).
		Msg("direct offer made")
	return offer, nil
}

// MakeSwapOffer records a pending offer exchanging one player from each club.
// The top-up is bounded by MaxSwapTopUp.
func (a *App) MakeSwapOffer(ctx context.Context, req SwapOfferRequest) (*models.TransferOffer, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	from, to, err := a.parties(ctx, req.FromClubID, req.ToClubID)
	if err != nil {
		return nil, err
	}
	ti := to.PlayerIndex(req.TargetPlayerID)
	if ti < 0 {
		return nil, apperr.Validation("player %d does not play for %s", req.TargetPlayerID, to.Name)
	}
	si := from.PlayerIndex(req.SwapPlayerID)
	if si < 0 {
		return nil, apperr.Validation("player %d does not play for %s", req.SwapPlayerID, from.Name)
	}
	target, swap := to.Players[ti], from.Players[si]

	if limit := MaxSwapTopUp(target.MarketValue, swap.MarketValue); req.Amount > limit {
		return nil, apperr.Validation("top-up %s exceeds the %s allowed for this swap", catalog.FormatCurrency(req.Amount), catalog.FormatCurrency(limit))
	}
	if from.Budget < req.Amount {
		return nil, insufficient(from, req.Amount)
	}

	offer := a.newOffer(from, to, models.OfferKindSwap, target, req.Amount)
	offer.SwapPlayerID = &swap.ID
	offer.SwapPlayerName = swap.Name
	if err := a.repo.CreateOffer(ctx, offer); err != nil {
		return nil, err
	}
	log.Info().
		Str("offer_id", offer.ID.String()).
		Str("from_club_id", from.ID.String()).
		Str("to_club_id", to.ID.String()).
		Int64("player_id", target.ID).
		Int64("swap_player_id", swap.ID).
		Int64("amount", req.Amount).
		Msg("swap offer made")
	return offer, nil
}

// RespondToOffer lets the receiving club decline an offer or accept it.
// Accepting processes the transfer immediately.
func (a *App) RespondToOffer(ctx context.Context, req RespondRequest) (*TransferResult, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	offer, err := a.repo.GetOffer(ctx, req.OfferID)
	if err != nil {
		return nil, err
	}
	if offer.Value.ToClubID != req.ClubID {
		return nil, apperr.Validation("offer %s was not made to club %s", req.OfferID, req.ClubID)
	}
	if req.Accept {
		return a.ProcessTransfer(ctx, req.OfferID)
	}

	declined, err := a.repo.UpdateOffer(ctx, req.OfferID, func(o *models.TransferOffer) error {
		if o.Status != models.OfferStatusPending {
			return apperr.StateConflict("offer %s is already %s", o.ID, o.Status)
		}
		now := a.clock.Now().UTC()
		o.Status = models.OfferStatusDeclined
		o.RespondedAt = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decline offer: %w", err)
	}
	log.Info().Str("offer_id", declined.ID.String()).Msg("offer declined")
	return &TransferResult{Offer: declined}, nil
}

// ProcessTransfer executes a pending offer. Both rosters and budgets, the consumed offer
// and the history records are written together or not at all.
func (a *App) ProcessTransfer(ctx context.Context, offerID uuid.UUID) (*TransferResult, error) {
	var result *TransferResult
	err := docstore.Retry(func() error {
		offer, err := a.repo.GetOffer(ctx, offerID)
		if err != nil {
			return err
		}
		o := offer.Value
		if o.Status != models.OfferStatusPending {
			return apperr.StateConflict("offer %s is already %s", o.ID, o.Status)
		}
		from, err := a.repo.GetClub(ctx, o.FromClubID)
		if err != nil {
			return err
		}
		to, err := a.repo.GetClub(ctx, o.ToClubID)
		if err != nil {
			return err
		}

		now := a.clock.Now().UTC()
		var records []models.TransferRecord
		switch o.Kind {
		case models.OfferKindDirect:
			records, err = moveDirect(o, from.Value, to.Value, now)
		case models.OfferKindSwap:
			records, err = moveSwap(o, from.Value, to.Value, now)
		default:
			err = apperr.Validation("unknown offer kind %q", o.Kind)
		}
		if err != nil {
			return err
		}

		o.Status = models.OfferStatusAccepted
		o.RespondedAt = &now
		if err := a.repo.CompleteTransfer(ctx, offer, from, to, records); err != nil {
			return err
		}
		result = &TransferResult{Offer: o, Records: records}
		return nil
	})
	if errors.Is(err, docstore.ErrConflict) {
		err = apperr.Wrap(apperr.KindStateConflict, "too many concurrent updates", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to process transfer: %w", err)
	}

	for _, rec := range result.Records {
		log.Info().
			Str("offer_id", offerID.String()).
			Int64("player_id", rec.PlayerID).
			Str("from_club_id", rec.FromClubID.String()).
			Str("to_club_id", rec.ToClubID.String()).
			Int64("fee", rec.Fee).
			Msg("transfer completed")
		a.emit(ctx, rec)
	}
	return result, nil
}

// ListOffers returns the pending offers a club received and every offer it made
func (a *App) ListOffers(ctx context.Context, clubID uuid.UUID) (*OffersResponse, error) {
	received, err := a.repo.ListOffers(ctx, "to_club_id", clubID)
	if err != nil {
		return nil, err
	}
	made, err := a.repo.ListOffers(ctx, "from_club_id", clubID)
	if err != nil {
		return nil, err
	}
	pending := received[:0]
	for _, o := range received {
		if o.Status == models.OfferStatusPending {
			pending = append(pending, o)
		}
	}
	return &OffersResponse{Received: pending, Made: made}, nil
}

// History lists a server's completed transfers, newest first
func (a *App) History(ctx context.Context, req HistoryRequest) ([]models.TransferRecord, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	records, err := a.repo.ListHistory(ctx, req.ServerID)
	if err != nil {
		return nil, err
	}
	if req.ClubID != nil {
		filtered := records[:0]
		for _, r := range records {
			if r.FromClubID == *req.ClubID || r.ToClubID == *req.ClubID {
				filtered = append(filtered, r)
			}
		}
		records = filtered
	}
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].CompletedAt.After(records[j].CompletedAt)
	})
	limit := req.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if len(records) > limit {
		records = records[:limit]
	}
	return records, nil
}

// parties loads the bidding and receiving clubs and checks they can trade
func (a *App) parties(ctx context.Context, fromID, toID uuid.UUID) (*models.Club, *models.Club, error) {
	if fromID == toID {
		return nil, nil, apperr.Validation("a club cannot make an offer to itself")
	}
	from, err := a.repo.GetClub(ctx, fromID)
	if err != nil {
		return nil, nil, err
	}
	to, err := a.repo.GetClub(ctx, toID)
	if err != nil {
		return nil, nil, err
	}
	if from.Value.ServerID != to.Value.ServerID {
		return nil, nil, apperr.Validation("%s and %s play in different servers", from.Value.Name, to.Value.Name)
	}
	return from.Value, to.Value, nil
}

func (a *App) newOffer(from, to *models.Club, kind models.OfferKind, target models.Player, amount int64) *models.TransferOffer {
	return &models.TransferOffer{
		ID:               uuid.New(),
		ServerID:         from.ServerID,
		FromClubID:       from.ID,
		FromClubName:     from.Name,
		ToClubID:         to.ID,
		ToClubName:       to.Name,
		Kind:             kind,
		TargetPlayerID:   target.ID,
		TargetPlayerName: target.Name,
		Amount:           amount,
		Status:           models.OfferStatusPending,
		CreatedAt:        a.clock.Now().UTC(),
	}
}

func (a *App) emit(ctx context.Context, rec models.TransferRecord) {
	payload := events.TransferCompletedPayload{
		OfferID:     rec.OfferID.String(),
		Kind:        string(rec.Kind),
		PlayerID:    rec.PlayerID,
		PlayerName:  rec.PlayerName,
		FromClubID:  rec.FromClubID.String(),
		ToClubID:    rec.ToClubID.String(),
		Fee:         rec.Fee,
		CompletedAt: rec.CompletedAt,
	}
	if err := a.events.Emit(ctx, rec.ServerID, events.TypeTransferCompleted, payload); err != nil {
		log.Error().Err(err).Str("offer_id", rec.OfferID.String()).Msg("failed to emit transfer event")
	}
}
