package leagues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/fixtures"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/standings"
	"github.com/rs/zerolog/log"
)

// StartLeague generates the double round-robin schedule and opens matchday 1.
// A schedule that fails verification aborts the start and leaves the league untouched.
func (a *App) StartLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	league, err := a.repo.UpdateLeague(ctx, id, func(l *models.League) error {
		if l.Status != models.LeagueStatusCreated {
			return apperr.StateConflict("league %s is %s and cannot be started", l.ID, l.Status)
		}
		if len(l.Clubs) < fixtures.MinClubs {
			return apperr.Validation("league %s needs at least %d clubs to start, has %d", l.ID, fixtures.MinClubs, len(l.Clubs))
		}

		today := fixtures.StartOfDay(a.clock.Now())
		refs := make([]fixtures.ClubRef, 0, len(l.Clubs))
		for _, c := range l.Clubs {
			refs = append(refs, fixtures.ClubRef{ID: c.ClubID, Name: c.Name})
		}
		schedule, err := fixtures.Generate(refs, today)
		if err != nil {
			return err
		}

		l.Fixtures = schedule
		l.Matches = []models.Match{}
		l.Standings = standings.New(l.Clubs)
		l.CurrentMatchday = 1
		l.Status = models.LeagueStatusStarted
		l.StartDate = &today
		l.PrizesDistributed = false
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to start league: %w", err)
	}

	log.Info().
		Str("league_id", league.ID.String()).
		Int("clubs", len(league.Clubs)).
		Int("fixtures", len(league.Fixtures)).
		Msg("league started")

	a.emit(ctx, league.ID, events.TypeLeagueStarted, events.LeagueStartedPayload{
		LeagueID:  league.ID.String(),
		Clubs:     len(league.Clubs),
		Fixtures:  len(league.Fixtures),
		Matchdays: league.TotalMatchdays(),
		StartedAt: *league.StartDate,
	})
	a.dropStandings(ctx, league.ID)
	return league, nil
}

// TerminateLeague finishes the league and pays prizes by final rank.
// The champion also receives the reward player when its roster has room and no club in the server owns it.
// Every club credit and the league update commit together or not at all.
func (a *App) TerminateLeague(ctx context.Context, id uuid.UUID) (*TerminateResponse, error) {
	ctx, span := tracer.Start(ctx, "leagues.TerminateLeague")
	defer span.End()

	var resp *TerminateResponse
	err := retry(func() error {
		league, err := a.repo.GetLeague(ctx, id)
		if err != nil {
			return err
		}
		l := league.Value
		if l.Status == models.LeagueStatusCreated {
			return apperr.StateConflict("league %s has not started", l.ID)
		}
		if l.PrizesDistributed {
			return apperr.StateConflict("league %s already distributed its prizes", l.ID)
		}

		rows := append([]models.LeaderboardRow(nil), l.Standings.Leaderboard...)
		standings.Sort(rows)

		rewardFree := false
		if l.RewardPlayerID != nil {
			serverClubs, err := a.repo.ListServerClubs(ctx, l.ServerID)
			if err != nil {
				return err
			}
			if owner := ownerOf(serverClubs, *l.RewardPlayerID); owner != nil {
				log.Warn().Int64("player_id", *l.RewardPlayerID).Str("club_id", owner.ID.String()).Msg("reward player already owned, skipping reward")
			} else {
				rewardFree = true
			}
		}

		clubs := make([]docstore.Versioned[models.Club], 0, len(rows))
		payouts := make([]Payout, 0, len(rows))
		for i, row := range rows {
			club, err := a.repo.GetClub(ctx, row.ClubID)
			if err != nil {
				return err
			}
			rank := i + 1
			payout := Payout{ClubID: row.ClubID, Rank: rank, Prize: l.PrizeDistribution.ForRank(rank)}
			club.Value.Budget += payout.Prize
			if rank == 1 && rewardFree && a.grantReward(club.Value, *l.RewardPlayerID) {
				payout.RewardPlayer = l.RewardPlayerID
			}
			clubs = append(clubs, club)
			payouts = append(payouts, payout)
		}

		l.Status = models.LeagueStatusFinished
		l.PrizesDistributed = true
		if err := a.repo.SaveLeague(ctx, league, clubs...); err != nil {
			return err
		}
		resp = &TerminateResponse{League: l, Payouts: payouts}
		return nil
	})
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to terminate league: %w", err)
	}

	var champion string
	if len(resp.Payouts) > 0 {
		champion = resp.Payouts[0].ClubID.String()
	}
	log.Info().
		Str("league_id", id.String()).
		Str("champion", champion).
		Int("payouts", len(resp.Payouts)).
		Msg("league terminated")

	a.emit(ctx, id, events.TypeLeagueFinished, events.LeagueFinishedPayload{
		LeagueID:       id.String(),
		ChampionClubID: champion,
		PrizesPaid:     true,
		FinishedAt:     a.clock.Now().UTC(),
	})
	return resp, nil
}

// grantReward adds the catalog player to the club when the roster has room.
func (a *App) grantReward(club *models.Club, playerID int64) bool {
	p, ok := a.catalog.Player(playerID)
	if !ok {
		log.Warn().Int64("player_id", playerID).Msg("reward player missing from catalog")
		return false
	}
	if club.PlayerIndex(playerID) >= 0 || len(club.Players) >= models.MaxSquadSize {
		return false
	}
	p.SquadRole = models.SquadRoleSubstitute
	if len(club.Players) >= models.BenchLimit {
		p.SquadRole = models.SquadRoleReserve
	}
	p.StaminaPct = condition.MaxStamina
	p.YellowCards = 0
	p.RedCards = 0
	p.IsSuspended = false
	p.SuspensionReason = models.SuspensionReasonNone
	club.Players = append(club.Players, p)
	return true
}

// ResetLeague clears the schedule, results and membership and returns the league to created.
func (a *App) ResetLeague(ctx context.Context, id uuid.UUID) (*models.League, error) {
	var reset *models.League
	err := retry(func() error {
		league, err := a.repo.GetLeague(ctx, id)
		if err != nil {
			return err
		}
		l := league.Value

		clubs := make([]docstore.Versioned[models.Club], 0, len(l.Clubs))
		for _, lc := range l.Clubs {
			club, err := a.repo.GetClub(ctx, lc.ClubID)
			if errors.Is(err, apperr.ErrNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			if club.Value.LeagueID != nil && *club.Value.LeagueID == l.ID {
				club.Value.LeagueID = nil
				clubs = append(clubs, club)
			}
		}

		now := a.clock.Now().UTC()
		l.Clubs = []models.LeagueClub{}
		l.Fixtures = []models.Fixture{}
		l.Matches = []models.Match{}
		l.Standings = standings.New(nil)
		l.CurrentMatchday = 1
		l.Status = models.LeagueStatusCreated
		l.StartDate = nil
		l.PrizesDistributed = false
		l.ResetAt = &now
		if err := a.repo.SaveLeague(ctx, league, clubs...); err != nil {
			return err
		}
		reset = l
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to reset league: %w", err)
	}

	log.Info().Str("league_id", id.String()).Msg("league reset")
	a.emit(ctx, id, events.TypeLeagueReset, events.LeagueResetPayload{
		LeagueID: id.String(),
		ResetAt:  *reset.ResetAt,
	})
	a.dropStandings(ctx, reset.ID)
	return reset, nil
}

// advance moves the league past completed matchdays and finishes it once every fixture is done.
func advance(l *models.League) progress {
	var p progress
	for l.Status == models.LeagueStatusStarted {
		remaining := 0
		for _, f := range l.Fixtures {
			if !f.Status.Done() {
				remaining++
			}
		}
		if remaining == 0 {
			l.Status = models.LeagueStatusFinished
			p.finished = true
			return p
		}
		for _, f := range l.Fixtures {
			if f.Matchday == l.CurrentMatchday && !f.Status.Done() {
				return p
			}
		}
		l.CurrentMatchday++
		for i := range l.Fixtures {
			if l.Fixtures[i].Matchday == l.CurrentMatchday && l.Fixtures[i].Status == models.FixtureStatusScheduled {
				l.Fixtures[i].Status = models.FixtureStatusAvailable
			}
		}
		p.advanced = append(p.advanced, l.CurrentMatchday)
	}
	return p
}

// progress records matchday changes made by advance
type progress struct {
	advanced []int
	finished bool
}

func (p *progress) merge(o progress) {
	p.advanced = append(p.advanced, o.advanced...)
	p.finished = p.finished || o.finished
}

// announce emits the events describing league progress after a commit.
func (a *App) announce(ctx context.Context, l *models.League, p progress, at time.Time) {
	for _, md := range p.advanced {
		a.emit(ctx, l.ID, events.TypeMatchdayAdvanced, events.MatchdayAdvancedPayload{
			LeagueID: l.ID.String(),
			Matchday: md,
		})
	}
	if !p.finished {
		return
	}
	rows := append([]models.LeaderboardRow(nil), l.Standings.Leaderboard...)
	standings.Sort(rows)
	payload := events.LeagueFinishedPayload{LeagueID: l.ID.String(), FinishedAt: at}
	if len(rows) > 0 {
		payload.ChampionClubID = rows[0].ClubID.String()
	}
	log.Info().Str("league_id", l.ID.String()).Str("champion", payload.ChampionClubID).Msg("league finished")
	a.emit(ctx, l.ID, events.TypeLeagueFinished, payload)
}
