package transfers

import (
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/models"
)

// checkDirect enforces the budget and roster rules of a direct purchase.
// The buyer must afford both the fee and the player's market value.
func checkDirect(buyer, seller *models.Club, target models.Player, fee int64) error {
	need := fee
	if target.MarketValue > need {
		need = target.MarketValue
	}
	if buyer.Budget < need {
		return insufficient(buyer, need)
	}
	if len(buyer.Players)+1 > models.MaxSquadSize {
		return apperr.Validation("%s already has %d players", buyer.Name, models.MaxSquadSize)
	}
	if len(seller.Players) <= models.BenchLimit {
		return apperr.Validation("%s must keep %d players and cannot sell directly", seller.Name, models.BenchLimit)
	}
	return nil
}

func insufficient(c *models.Club, need int64) error {
	return apperr.Validation("insufficient budget: %s has %s, needs %s", c.Name, catalog.FormatCurrency(c.Budget), catalog.FormatCurrency(need))
}

// moveDirect transfers the target from seller to buyer for the offered fee.
// The player joins the buyer in the role its roster size calls for.
func moveDirect(o *models.TransferOffer, buyer, seller *models.Club, at time.Time) ([]models.TransferRecord, error) {
	i := seller.PlayerIndex(o.TargetPlayerID)
	if i < 0 {
		return nil, apperr.StateConflict("%s no longer plays for %s", o.TargetPlayerName, seller.Name)
	}
	player := seller.Players[i]
	if err := checkDirect(buyer, seller, player, o.Amount); err != nil {
		return nil, err
	}

	seller.Players = append(seller.Players[:i], seller.Players[i+1:]...)
	player.SquadRole = buyer.RoleForArrival()
	buyer.Players = append(buyer.Players, player)
	buyer.Budget -= o.Amount
	seller.Budget += o.Amount

	return []models.TransferRecord{record(o, player, seller, buyer, o.Amount, at)}, nil
}

// moveSwap exchanges the two named players. Each arrival takes over the squad role
// of the player it replaces and the bidder pays the top-up.
func moveSwap(o *models.TransferOffer, bidder, receiver *models.Club, at time.Time) ([]models.TransferRecord, error) {
	if o.SwapPlayerID == nil {
		return nil, apperr.Validation("swap offer %s names no player to swap", o.ID)
	}
	ti := receiver.PlayerIndex(o.TargetPlayerID)
	if ti < 0 {
		return nil, apperr.StateConflict("%s no longer plays for %s", o.TargetPlayerName, receiver.Name)
	}
	si := bidder.PlayerIndex(*o.SwapPlayerID)
	if si < 0 {
		return nil, apperr.StateConflict("%s no longer plays for %s", o.SwapPlayerName, bidder.Name)
	}
	if bidder.Budget < o.Amount {
		return nil, insufficient(bidder, o.Amount)
	}

	target, swap := receiver.Players[ti], bidder.Players[si]
	target.SquadRole, swap.SquadRole = swap.SquadRole, target.SquadRole
	receiver.Players[ti] = swap
	bidder.Players[si] = target
	bidder.Budget -= o.Amount
	receiver.Budget += o.Amount

	return []models.TransferRecord{
		record(o, target, receiver, bidder, o.Amount, at),
		record(o, swap, bidder, receiver, 0, at),
	}, nil
}

func record(o *models.TransferOffer, p models.Player, from, to *models.Club, fee int64, at time.Time) models.TransferRecord {
	return models.TransferRecord{
		ID:           uuid.New(),
		ServerID:     o.ServerID,
		OfferID:      o.ID,
		PlayerID:     p.ID,
		PlayerName:   p.Name,
		FromClubID:   from.ID,
		FromClubName: from.Name,
		ToClubID:     to.ID,
		ToClubName:   to.Name,
		Fee:          fee,
		Kind:         o.Kind,
		CompletedAt:  at,
	}
}
