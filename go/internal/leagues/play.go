package leagues

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/condition"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/fixtures"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/simulation"
	"github.com/mcdev12/matchday/go/internal/standings"
	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// Forfeit score awarded to the away club
const (
	forfeitHomeGoals = 0
	forfeitAwayGoals = 3
)

var errUnchanged = errors.New("league unchanged")

// PlayFixture simulates an available fixture and records its result.
// The fixture is claimed as playing first so concurrent calls cannot both run it.
// When simulation fails the claim is released and nothing else changes.
func (a *App) PlayFixture(ctx context.Context, req PlayFixtureRequest) (*models.Match, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}

	ctx, span := tracer.Start(ctx, "leagues.PlayFixture", trace.WithAttributes(
		attribute.String("league.id", req.LeagueID.String()),
		attribute.String("fixture.id", req.FixtureID.String()),
	))
	defer span.End()

	fixture, err := a.claimFixture(ctx, req)
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to play fixture: %w", err)
	}

	match, league, p, err := a.playClaimed(ctx, req.LeagueID, fixture)
	if err != nil {
		a.releaseFixture(ctx, req.LeagueID, fixture.ID)
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return nil, fmt.Errorf("failed to play fixture: %w", err)
	}
	span.SetAttributes(attribute.Int64("match.seed", match.Seed))

	log.Info().
		Str("league_id", req.LeagueID.String()).
		Str("fixture_id", fixture.ID.String()).
		Int("matchday", fixture.Matchday).
		Int("home_score", match.HomeScore).
		Int("away_score", match.AwayScore).
		Msg("fixture played")

	a.emit(ctx, req.LeagueID, events.TypeFixturePlayed, events.NewMatchPayload(req.LeagueID.String(), *match))
	a.announce(ctx, league, p, match.PlayedAt)
	a.dropStandings(ctx, league.ID)
	return match, nil
}

func (a *App) claimFixture(ctx context.Context, req PlayFixtureRequest) (models.Fixture, error) {
	var claimed models.Fixture
	_, err := a.repo.UpdateLeague(ctx, req.LeagueID, func(l *models.League) error {
		if l.Status != models.LeagueStatusStarted {
			return apperr.StateConflict("league %s is %s", l.ID, l.Status)
		}
		i := l.FixtureIndex(req.FixtureID)
		if i < 0 {
			return apperr.NotFound("fixture %s not found in league %s", req.FixtureID, l.ID)
		}
		f := &l.Fixtures[i]
		if f.Status != models.FixtureStatusAvailable {
			return apperr.StateConflict("fixture %s is %s", f.ID, f.Status)
		}
		if a.clock.Now().Before(f.ScheduledDate) {
			return apperr.StateConflict("fixture %s is scheduled for %s", f.ID, f.ScheduledDate.Format(time.DateOnly))
		}
		f.Status = models.FixtureStatusPlaying
		claimed = *f
		return nil
	})
	return claimed, err
}

// releaseFixture returns a claimed fixture to available after a failed play.
func (a *App) releaseFixture(ctx context.Context, leagueID, fixtureID uuid.UUID) {
	_, err := a.repo.UpdateLeague(ctx, leagueID, func(l *models.League) error {
		i := l.FixtureIndex(fixtureID)
		if i < 0 || l.Fixtures[i].Status != models.FixtureStatusPlaying {
			return errUnchanged
		}
		l.Fixtures[i].Status = models.FixtureStatusAvailable
		return nil
	})
	if err != nil && !errors.Is(err, errUnchanged) {
		log.Error().Err(err).Str("league_id", leagueID.String()).Str("fixture_id", fixtureID.String()).Msg("failed to release fixture")
	}
}

// playClaimed runs the simulation and commits the result, standings and both rosters together.
func (a *App) playClaimed(ctx context.Context, leagueID uuid.UUID, f models.Fixture) (*models.Match, *models.League, progress, error) {
	home, err := a.repo.GetClub(ctx, f.HomeClubID)
	if err != nil {
		return nil, nil, progress{}, err
	}
	away, err := a.repo.GetClub(ctx, f.AwayClubID)
	if err != nil {
		return nil, nil, progress{}, err
	}

	seed, err := a.seed()
	if err != nil {
		return nil, nil, progress{}, apperr.Computation("failed to seed match", err)
	}
	res, err := simulation.Run(seed, simulation.Lineup(home.Value), simulation.Lineup(away.Value), models.MatchKindLeague)
	if err != nil {
		return nil, nil, progress{}, apperr.Computation(fmt.Sprintf("failed to simulate fixture %s", f.ID), err)
	}

	match := &models.Match{
		ID:           uuid.New(),
		FixtureID:    f.ID,
		Kind:         models.MatchKindLeague,
		Matchday:     f.Matchday,
		HomeClubID:   f.HomeClubID,
		HomeClubName: f.HomeClubName,
		AwayClubID:   f.AwayClubID,
		AwayClubName: f.AwayClubName,
		HomeScore:    res.HomeScore,
		AwayScore:    res.AwayScore,
		Seed:         seed,
		Events:       res.Events,
		Commentary:   res.Commentary,
		PlayedAt:     a.clock.Now().UTC(),
	}

	var (
		saved *models.League
		p     progress
	)
	err = retry(func() error {
		league, err := a.repo.GetLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		l := league.Value
		i := l.FixtureIndex(f.ID)
		if i < 0 || l.Fixtures[i].Status != models.FixtureStatusPlaying {
			return apperr.Consistency("fixture %s is no longer in play", f.ID)
		}
		l.Fixtures[i].Status = models.FixtureStatusPlayed
		l.Fixtures[i].Result = &models.FixtureResult{HomeScore: match.HomeScore, AwayScore: match.AwayScore, MatchID: match.ID}
		l.Matches = append(l.Matches, *match)
		standings.Apply(&l.Standings, *match)
		p = advance(l)

		home, err := a.repo.GetClub(ctx, f.HomeClubID)
		if err != nil {
			return err
		}
		away, err := a.repo.GetClub(ctx, f.AwayClubID)
		if err != nil {
			return err
		}
		condition.ApplyMatch(home.Value, res.HomeStamina, models.MatchKindLeague, res.Events, models.SideHome)
		condition.ApplyMatch(away.Value, res.AwayStamina, models.MatchKindLeague, res.Events, models.SideAway)

		if err := a.repo.SaveLeague(ctx, league, home, away); err != nil {
			return err
		}
		saved = l
		return nil
	})
	if err != nil {
		return nil, nil, progress{}, err
	}
	return match, saved, p, nil
}

// ProcessAutoForfeits forfeits every available fixture whose scheduled day has passed.
// The away club wins 0-3. Running it again without the date moving changes nothing.
func (a *App) ProcessAutoForfeits(ctx context.Context, id uuid.UUID) (int, error) {
	ctx, span := tracer.Start(ctx, "leagues.ProcessAutoForfeits", trace.WithAttributes(
		attribute.String("league.id", id.String()),
	))
	defer span.End()

	var (
		forfeits []models.Match
		p        progress
	)
	league, err := a.repo.UpdateLeague(ctx, id, func(l *models.League) error {
		forfeits, p = nil, progress{}
		if l.Status != models.LeagueStatusStarted {
			return errUnchanged
		}
		now := a.clock.Now().UTC()
		today := fixtures.StartOfDay(now)
		for {
			before := len(forfeits)
			for i := range l.Fixtures {
				f := &l.Fixtures[i]
				if f.Status != models.FixtureStatusAvailable || !f.ScheduledDate.Before(today) {
					continue
				}
				m := forfeitMatch(f, now)
				f.Status = models.FixtureStatusForfeited
				f.Result = &models.FixtureResult{HomeScore: m.HomeScore, AwayScore: m.AwayScore, MatchID: m.ID}
				l.Matches = append(l.Matches, m)
				standings.Apply(&l.Standings, m)
				forfeits = append(forfeits, m)
				p.merge(advance(l))
			}
			if len(forfeits) == before {
				break
			}
		}
		if len(forfeits) == 0 {
			return errUnchanged
		}
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return 0, nil
	}
	if err != nil {
		span.RecordError(err)
		return 0, fmt.Errorf("failed to process forfeits: %w", err)
	}

	span.SetAttributes(attribute.Int("forfeits", len(forfeits)))
	log.Info().
		Str("league_id", id.String()).
		Int("forfeits", len(forfeits)).
		Int("matchday", league.CurrentMatchday).
		Msg("forfeited overdue fixtures")

	for _, m := range forfeits {
		a.emit(ctx, id, events.TypeFixtureForfeited, events.NewMatchPayload(id.String(), m))
	}
	a.announce(ctx, league, p, a.clock.Now().UTC())
	a.dropStandings(ctx, league.ID)
	return len(forfeits), nil
}

func forfeitMatch(f *models.Fixture, at time.Time) models.Match {
	return models.Match{
		ID:           uuid.New(),
		FixtureID:    f.ID,
		Kind:         models.MatchKindLeague,
		Matchday:     f.Matchday,
		HomeClubID:   f.HomeClubID,
		HomeClubName: f.HomeClubName,
		AwayClubID:   f.AwayClubID,
		AwayClubName: f.AwayClubName,
		HomeScore:    forfeitHomeGoals,
		AwayScore:    forfeitAwayGoals,
		Forfeited:    true,
		Events:       []models.MatchEvent{},
		Commentary: []string{
			fmt.Sprintf("%s did not play by the deadline. %s are awarded a %d-%d win.", f.HomeClubName, f.AwayClubName, forfeitHomeGoals, forfeitAwayGoals),
		},
		PlayedAt: at,
	}
}
