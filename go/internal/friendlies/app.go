// Package friendlies schedules and plays non-league matches between clubs of a server.
package friendlies

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/simulation"
	"github.com/rs/zerolog/log"
)

// DefaultHistoryLimit is the number of friendlies MatchHistory returns when no limit is given
const DefaultHistoryLimit = 20

// FriendliesRepository defines what the app layer needs from the repository
type FriendliesRepository interface {
	GetClub(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.Club], error)
	CreateInvite(ctx context.Context, invite *models.FriendlyInvite) error
	GetInvite(ctx context.Context, id uuid.UUID) (docstore.Versioned[models.FriendlyInvite], error)
	ListInvites(ctx context.Context, field string, clubID uuid.UUID) ([]models.FriendlyInvite, error)
	UpdateInvite(ctx context.Context, id uuid.UUID, fn func(*models.FriendlyInvite) error) (*models.FriendlyInvite, error)
	SaveFriendly(ctx context.Context, invite docstore.Versioned[models.FriendlyInvite], home, away docstore.Versioned[models.Club], match *models.Match) error
	ListMatches(ctx context.Context, clubID uuid.UUID) ([]models.Match, error)
}

// App handles friendly invites and matches
type App struct {
	repo     FriendliesRepository
	events   events.Emitter
	clock    clockwork.Clock
	seed     func() (int64, error)
	cooldown time.Duration
	validate *validator.Validate
}

// NewApp creates a new friendlies App. A zero cooldown uses models.FriendlyCooldown.
func NewApp(repo FriendliesRepository, emitter events.Emitter, clock clockwork.Clock, cooldown time.Duration) *App {
	if cooldown <= 0 {
		cooldown = models.FriendlyCooldown
	}
	return &App{
		repo:     repo,
		events:   emitter,
		clock:    clock,
		seed:     simulation.NewSeed,
		cooldown: cooldown,
		validate: validator.New(),
	}
}

// Invite challenges another club of the same server. The inviter must be off its cooldown.
func (a *App) Invite(ctx context.Context, req InviteRequest) (*models.FriendlyInvite, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	if req.FromClubID == req.ToClubID {
		return nil, apperr.Validation("a club cannot invite itself to a friendly")
	}
	from, err := a.repo.GetClub(ctx, req.FromClubID)
	if err != nil {
		return nil, err
	}
	to, err := a.repo.GetClub(ctx, req.ToClubID)
	if err != nil {
		return nil, err
	}
	if from.Value.ServerID != to.Value.ServerID {
		return nil, apperr.Validation("%s and %s play in different servers", from.Value.Name, to.Value.Name)
	}
	if err := a.checkCooldown(from.Value); err != nil {
		return nil, err
	}

	sent, err := a.repo.ListInvites(ctx, "from_club_id", req.FromClubID)
	if err != nil {
		return nil, err
	}
	for _, inv := range sent {
		if inv.ToClubID == req.ToClubID && inv.Status == models.InviteStatusPending {
			return nil, apperr.StateConflict("%s already has a pending invite to %s", from.Value.Name, to.Value.Name)
		}
	}

	invite := &models.FriendlyInvite{
		ID:           uuid.New(),
		ServerID:     from.Value.ServerID,
		FromClubID:   from.Value.ID,
		FromClubName: from.Value.Name,
		ToClubID:     to.Value.ID,
		ToClubName:   to.Value.Name,
		Status:       models.InviteStatusPending,
		CreatedAt:    a.clock.Now().UTC(),
	}
	if err := a.repo.CreateInvite(ctx, invite); err != nil {
		return nil, err
	}
	log.Info().
		Str("invite_id", invite.ID.String()).
		Str("from_club_id", invite.FromClubID.String()).
		Str("to_club_id", invite.ToClubID.String()).
		Msg("friendly invite sent")
	return invite, nil
}

// Respond resolves a pending invite. Accepting plays the friendly with the inviter at home,
// applies friendly fatigue and cards to both rosters and starts both clubs' cooldown.
func (a *App) Respond(ctx context.Context, req RespondRequest) (*RespondResponse, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	invite, err := a.repo.GetInvite(ctx, req.InviteID)
	if err != nil {
		return nil, err
	}
	if invite.Value.ToClubID != req.ClubID {
		return nil, apperr.Validation("invite %s was not sent to club %s", req.InviteID, req.ClubID)
	}
	if !req.Accept {
		return a.decline(ctx, req.InviteID)
	}
	return a.play(ctx, req.InviteID)
}

func (a *App) decline(ctx context.Context, id uuid.UUID) (*RespondResponse, error) {
	inv, err := a.repo.UpdateInvite(ctx, id, func(inv *models.FriendlyInvite) error {
		if inv.Status != models.InviteStatusPending {
			return apperr.StateConflict("invite %s is already %s", inv.ID, inv.Status)
		}
		now := a.clock.Now().UTC()
		inv.Status = models.InviteStatusDeclined
		inv.RespondedAt = &now
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to decline invite: %w", err)
	}
	log.Info().Str("invite_id", id.String()).Msg("friendly invite declined")
	return &RespondResponse{Invite: inv}, nil
}

func (a *App) play(ctx context.Context, id uuid.UUID) (*RespondResponse, error) {
	seed, err := a.seed()
	if err != nil {
		return nil, apperr.Computation("failed to seed friendly", err)
	}

	var resp *RespondResponse
	err = docstore.Retry(func() error {
		invite, err := a.repo.GetInvite(ctx, id)
		if err != nil {
			return err
		}
		inv := invite.Value
		if inv.Status != models.InviteStatusPending {
			return apperr.StateConflict("invite %s is already %s", inv.ID, inv.Status)
		}
		home, err := a.repo.GetClub(ctx, inv.FromClubID)
		if err != nil {
			return err
		}
		away, err := a.repo.GetClub(ctx, inv.ToClubID)
		if err != nil {
			return err
		}
		for _, c := range []*models.Club{home.Value, away.Value} {
			if err := a.checkCooldown(c); err != nil {
				return err
			}
		}

		res, err := simulation.Run(seed, simulation.Lineup(home.Value), simulation.Lineup(away.Value), models.MatchKindFriendly)
		if err != nil {
			return apperr.Computation(fmt.Sprintf("failed to simulate friendly %s", inv.ID), err)
		}

		now := a.clock.Now().UTC()
		match := &models.Match{
			ID:           uuid.New(),
			Kind:         models.MatchKindFriendly,
			HomeClubID:   home.Value.ID,
			HomeClubName: home.Value.Name,
			AwayClubID:   away.Value.ID,
			AwayClubName: away.Value.Name,
			HomeScore:    res.HomeScore,
			AwayScore:    res.AwayScore,
			Seed:         seed,
			Events:       res.Events,
			Commentary:   res.Commentary,
			PlayedAt:     now,
		}
		condition.ApplyMatch(home.Value, res.HomeStamina, models.MatchKindFriendly, res.Events, models.SideHome)
		condition.ApplyMatch(away.Value, res.AwayStamina, models.MatchKindFriendly, res.Events, models.SideAway)
		home.Value.LastFriendlyAt = &now
		away.Value.LastFriendlyAt = &now

		inv.Status = models.InviteStatusAccepted
		inv.RespondedAt = &now
		inv.MatchID = &match.ID
		if err := a.repo.SaveFriendly(ctx, invite, home, away, match); err != nil {
			return err
		}
		resp = &RespondResponse{Invite: inv, Match: match}
		return nil
	})
	if errors.Is(err, docstore.ErrConflict) {
		err = apperr.Wrap(apperr.KindStateConflict, "too many concurrent updates", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to play friendly: %w", err)
	}

	m := resp.Match
	log.Info().
		Str("invite_id", id.String()).
		Str("match_id", m.ID.String()).
		Int("home_score", m.HomeScore).
		Int("away_score", m.AwayScore).
		Msg("friendly played")
	if err := a.events.Emit(ctx, resp.Invite.ServerID, events.TypeFriendlyPlayed, events.NewMatchPayload("", *m)); err != nil {
		log.Error().Err(err).Str("match_id", m.ID.String()).Msg("failed to emit friendly event")
	}
	return resp, nil
}

// ListInvites returns a club's pending received invites and every invite it sent
func (a *App) ListInvites(ctx context.Context, clubID uuid.UUID) (*InvitesResponse, error) {
	received, err := a.repo.ListInvites(ctx, "to_club_id", clubID)
	if err != nil {
		return nil, err
	}
	sent, err := a.repo.ListInvites(ctx, "from_club_id", clubID)
	if err != nil {
		return nil, err
	}
	pending := received[:0]
	for _, inv := range received {
		if inv.Status == models.InviteStatusPending {
			pending = append(pending, inv)
		}
	}
	return &InvitesResponse{Received: pending, Sent: sent}, nil
}

// Availability reports whether the club may play a friendly now and, if not, when it can.
func (a *App) Availability(ctx context.Context, clubID uuid.UUID) (*AvailabilityResponse, error) {
	club, err := a.repo.GetClub(ctx, clubID)
	if err != nil {
		return nil, err
	}
	next := a.nextAt(club.Value)
	remaining := next.Sub(a.clock.Now())
	if remaining <= 0 {
		return &AvailabilityResponse{Available: true}, nil
	}
	return &AvailabilityResponse{NextAt: next, Remaining: remaining}, nil
}

// MatchHistory returns a club's friendlies, newest first
func (a *App) MatchHistory(ctx context.Context, req HistoryRequest) ([]models.Match, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	matches, err := a.repo.ListMatches(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].PlayedAt.After(matches[j].PlayedAt)
	})
	limit := req.Limit
	if limit == 0 {
		limit = DefaultHistoryLimit
	}
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}

func (a *App) nextAt(c *models.Club) time.Time {
	if c.LastFriendlyAt == nil {
		return time.Time{}
	}
	return c.LastFriendlyAt.Add(a.cooldown)
}

func (a *App) checkCooldown(c *models.Club) error {
	if next := a.nextAt(c); a.clock.Now().Before(next) {
		return apperr.Validation("%s can play its next friendly at %s", c.Name, next.UTC().Format(time.RFC3339))
	}
	return nil
}
