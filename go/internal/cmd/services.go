package main

import (
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/clubs"
	"github.com/mcdev12/matchday/go/internal/config"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/friendlies"
	"github.com/mcdev12/matchday/go/internal/leagues"
	"github.com/mcdev12/matchday/go/internal/servers"
	"github.com/mcdev12/matchday/go/internal/transfers"
)

type Services struct {
	Servers    *servers.Service
	Clubs      *clubs.Service
	Leagues    *leagues.Service
	Transfers  *transfers.Service
	Friendlies *friendlies.Service

	// LeagueApp also backs the sweeper and the feed snapshots
	LeagueApp *leagues.App
}

func setupServices(cfg *config.Config, store docstore.Store, cat catalog.Catalog, emitter events.Emitter, standings leagues.StandingsCache, clock clockwork.Clock) *Services {
	// Wire up dependency injection chain
	// Store → Repository layer → App layer → Service layer
	rules := cfg.Rules

	// Servers
	serverRepo := servers.NewRepository(store)
	serverApp := servers.NewApp(serverRepo, clock, rules.ServerCapacity)
	serverService := servers.NewService(serverApp)

	// Clubs
	clubRepo := clubs.NewRepository(store)
	clubApp := clubs.NewApp(clubRepo, cat, clock, rules.StartingBudget)
	clubService := clubs.NewService(clubApp)

	// Leagues
	leagueOpts := []leagues.Option{
		leagues.WithClock(clock),
		leagues.WithDefaultPrizes(rules.Prizes.Distribution()),
	}
	if standings != nil {
		leagueOpts = append(leagueOpts, leagues.WithStandingsCache(standings))
	}
	leagueRepo := leagues.NewRepository(store)
	leagueApp := leagues.NewApp(leagueRepo, cat, emitter, leagueOpts...)
	leagueService := leagues.NewService(leagueApp)

	// Transfers
	transferRepo := transfers.NewRepository(store)
	transferApp := transfers.NewApp(transferRepo, emitter, clock)
	transferService := transfers.NewService(transferApp)

	// Friendlies
	friendlyRepo := friendlies.NewRepository(store)
	friendlyApp := friendlies.NewApp(friendlyRepo, emitter, clock, rules.FriendlyCooldown)
	friendlyService := friendlies.NewService(friendlyApp)

	return &Services{
		Servers:    serverService,
		Clubs:      clubService,
		Leagues:    leagueService,
		Transfers:  transferService,
		Friendlies: friendlyService,
		LeagueApp:  leagueApp,
	}
}
