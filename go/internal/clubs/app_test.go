package clubs

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/catalog"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/models"
)

const startingBudget = 300000

// testCatalog holds enough players per line for n clubs.
func testCatalog(n int) *catalog.Static {
	lines := []struct {
		pos   models.Position
		count int
	}{
		{models.PositionGoalkeeper, 2},
		{models.PositionCentreBack, 6},
		{models.PositionCentralMidfield, 6},
		{models.PositionCentreForward, 3},
	}
	var players []models.Player
	id := int64(1)
	for _, l := range lines {
		for i := 0; i < l.count*n; i++ {
			players = append(players, models.Player{
				ID:          id,
				Name:        fmt.Sprintf("Player %d", id),
				Position:    l.pos,
				Attributes:  map[string]float64{"pace": 70},
				MarketValue: 100000,
				StaminaPct:  100,
				SquadRole:   models.SquadRoleReserve,
			})
			id++
		}
	}
	return catalog.NewStatic(map[string][]models.Player{"pool": players})
}

type fixture struct {
	ctx    context.Context
	store  *docstore.Memory
	app    *App
	server models.Server
}

func newFixture(t *testing.T, clubs, capacity int) *fixture {
	t.Helper()
	f := &fixture{ctx: context.Background(), store: docstore.NewMemory()}
	f.app = NewApp(NewRepository(f.store), testCatalog(clubs), clockwork.NewFakeClockAt(time.Date(2026, 4, 1, 0, 0, 0, 0, time.UTC)), startingBudget)
	seed := int64(0)
	f.app.newRand = func() (*rand.Rand, error) {
		seed++
		return rand.New(rand.NewSource(seed)), nil
	}
	f.server = models.Server{ID: uuid.New(), Name: "Test", MaxCapacity: capacity}
	if err := docstore.Insert(f.ctx, f.store, docstore.Servers, f.server.ID.String(), f.server); err != nil {
		t.Fatalf("insert server: %v", err)
	}
	return f
}

func (f *fixture) create(t *testing.T, owner string) *models.Club {
	t.Helper()
	c, err := f.app.CreateClub(f.ctx, CreateClubRequest{ServerID: f.server.ID, OwnerID: owner, Name: owner + " FC", ManagerName: owner})
	if err != nil {
		t.Fatalf("CreateClub(%s): %v", owner, err)
	}
	return c
}

func (f *fixture) suspend(t *testing.T, clubID uuid.UUID, playerID int64) {
	t.Helper()
	_, err := f.app.repo.UpdateClub(f.ctx, clubID, func(c *models.Club) error {
		i := c.PlayerIndex(playerID)
		c.Players[i].IsSuspended = true
		c.Players[i].SuspensionReason = models.SuspensionReasonRedCard
		return nil
	})
	if err != nil {
		t.Fatalf("suspend %d: %v", playerID, err)
	}
}

func TestCreateClub_BalancedSquad(t *testing.T) {
	f := newFixture(t, 2, 10)
	c := f.create(t, "alice")

	if len(c.Players) != 17 {
		t.Fatalf("squad size = %d, want 17", len(c.Players))
	}
	if c.Budget != startingBudget {
		t.Errorf("budget = %d, want %d", c.Budget, startingBudget)
	}
	lines := map[models.Line]int{}
	for i, p := range c.Players {
		wantRole := models.SquadRoleStarter
		if i >= models.StartersCount {
			wantRole = models.SquadRoleSubstitute
		}
		if p.SquadRole != wantRole {
			t.Errorf("player %d role = %s, want %s", i, p.SquadRole, wantRole)
		}
		if i < models.StartersCount {
			lines[p.Position.Line()]++
		}
	}
	want := map[models.Line]int{models.LineGoalkeeper: 1, models.LineDefence: 4, models.LineMidfield: 4, models.LineAttack: 2}
	for l, n := range want {
		if lines[l] != n {
			t.Errorf("starting %s = %d, want %d", l, lines[l], n)
		}
	}

	s, err := docstore.Load[models.Server](f.ctx, f.store, docstore.Servers, f.server.ID.String())
	if err != nil {
		t.Fatalf("load server: %v", err)
	}
	if s.Value.CurrentClubs != 1 {
		t.Errorf("server clubs = %d, want 1", s.Value.CurrentClubs)
	}
}

func TestCreateClub_PlayersAreExclusiveWithinServer(t *testing.T) {
	f := newFixture(t, 2, 10)
	a := f.create(t, "alice")
	b := f.create(t, "bob")

	seen := map[int64]bool{}
	for _, p := range a.Players {
		seen[p.ID] = true
	}
	for _, p := range b.Players {
		if seen[p.ID] {
			t.Errorf("player %d owned by both clubs", p.ID)
		}
	}

	available, err := f.app.AvailablePlayers(f.ctx, f.server.ID)
	if err != nil {
		t.Fatalf("AvailablePlayers: %v", err)
	}
	if len(available) != 0 {
		t.Errorf("available = %d, want 0 once both squads are drawn", len(available))
	}

	_, err = f.app.CreateClub(f.ctx, CreateClubRequest{ServerID: f.server.ID, OwnerID: "carol", Name: "Carol FC", ManagerName: "carol"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("empty pool: err = %v, want validation", err)
	}
}

func TestCreateClub_WithholdsLeagueRewardPlayer(t *testing.T) {
	f := newFixture(t, 1, 10)
	reward := int64(1)
	league := models.League{ID: uuid.New(), ServerID: f.server.ID, Name: "Premier", RewardPlayerID: &reward, Status: models.LeagueStatusCreated}
	if err := docstore.Insert(f.ctx, f.store, docstore.Leagues, league.ID.String(), league); err != nil {
		t.Fatalf("insert league: %v", err)
	}
	_, err := docstore.Update(f.ctx, f.store, docstore.Servers, f.server.ID.String(), func(s *models.Server) error {
		s.LeagueID = &league.ID
		return nil
	})
	if err != nil {
		t.Fatalf("link league: %v", err)
	}

	available, err := f.app.AvailablePlayers(f.ctx, f.server.ID)
	if err != nil {
		t.Fatalf("AvailablePlayers: %v", err)
	}
	if len(available) != 16 {
		t.Errorf("available = %d, want 16", len(available))
	}
	for _, p := range available {
		if p.ID == reward {
			t.Errorf("reward player %d offered while the league still owes it", reward)
		}
	}

	// one goalkeeper short of a squad while the reward is withheld
	_, err = f.app.CreateClub(f.ctx, CreateClubRequest{ServerID: f.server.ID, OwnerID: "alice", Name: "Alice FC", ManagerName: "alice"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Fatalf("err = %v, want validation", err)
	}

	_, err = docstore.Update(f.ctx, f.store, docstore.Leagues, league.ID.String(), func(l *models.League) error {
		l.Status = models.LeagueStatusFinished
		l.PrizesDistributed = true
		return nil
	})
	if err != nil {
		t.Fatalf("finish league: %v", err)
	}
	c := f.create(t, "alice")
	if c.PlayerIndex(reward) < 0 {
		t.Errorf("player %d not drawn after prizes were paid", reward)
	}
}

func TestCreateClub_Rejections(t *testing.T) {
	f := newFixture(t, 3, 2)
	f.create(t, "alice")

	tests := []struct {
		name    string
		req     CreateClubRequest
		wantErr error
	}{
		{"same owner", CreateClubRequest{OwnerID: "alice", Name: "Other", ManagerName: "a"}, apperr.ErrStateConflict},
		{"same name", CreateClubRequest{OwnerID: "bob", Name: "ALICE fc", ManagerName: "b"}, apperr.ErrStateConflict},
		{"missing name", CreateClubRequest{OwnerID: "bob", ManagerName: "b"}, apperr.ErrValidation},
		{"bad color", CreateClubRequest{OwnerID: "bob", Name: "Bob", ManagerName: "b", PrimaryColor: "red"}, apperr.ErrValidation},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ServerID = f.server.ID
			if _, err := f.app.CreateClub(f.ctx, tt.req); !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	f.create(t, "bob")
	_, err := f.app.CreateClub(f.ctx, CreateClubRequest{ServerID: f.server.ID, OwnerID: "carol", Name: "Carol", ManagerName: "c"})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("full server: err = %v, want validation", err)
	}
}

func TestGetClubByOwner(t *testing.T) {
	f := newFixture(t, 1, 10)
	c := f.create(t, "alice")

	got, err := f.app.GetClubByOwner(f.ctx, f.server.ID, "alice")
	if err != nil {
		t.Fatalf("GetClubByOwner: %v", err)
	}
	if got.ID != c.ID {
		t.Errorf("club = %s, want %s", got.ID, c.ID)
	}
	if _, err := f.app.GetClubByOwner(f.ctx, uuid.New(), "alice"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("other server: err = %v, want not found", err)
	}
}

func TestSetLineup(t *testing.T) {
	f := newFixture(t, 1, 10)
	c := f.create(t, "alice")

	// Promote the substitutes into the eleven in place of the first six starters.
	var starters, subs []int64
	for _, p := range c.Players[6:] {
		starters = append(starters, p.ID)
	}
	for _, p := range c.Players[:2] {
		subs = append(subs, p.ID)
	}

	got, err := f.app.SetLineup(f.ctx, SetLineupRequest{ClubID: c.ID, Starters: starters, Substitutes: subs})
	if err != nil {
		t.Fatalf("SetLineup: %v", err)
	}
	for i, id := range starters {
		if got.Players[i].ID != id || got.Players[i].SquadRole != models.SquadRoleStarter {
			t.Errorf("slot %d = %d (%s), want starter %d", i, got.Players[i].ID, got.Players[i].SquadRole, id)
		}
	}
	for i, id := range subs {
		p := got.Players[models.StartersCount+i]
		if p.ID != id || p.SquadRole != models.SquadRoleSubstitute {
			t.Errorf("bench %d = %d (%s), want substitute %d", i, p.ID, p.SquadRole, id)
		}
	}
	reserves := 0
	for _, p := range got.Players {
		if p.SquadRole == models.SquadRoleReserve {
			reserves++
		}
	}
	if reserves != 4 {
		t.Errorf("reserves = %d, want 4", reserves)
	}
}

func TestSetLineup_Rejections(t *testing.T) {
	f := newFixture(t, 1, 10)
	c := f.create(t, "alice")
	ids := make([]int64, 0, len(c.Players))
	for _, p := range c.Players {
		ids = append(ids, p.ID)
	}

	f.suspend(t, c.ID, ids[0])

	tests := []struct {
		name string
		req  SetLineupRequest
	}{
		{"ten starters", SetLineupRequest{Starters: ids[1:11]}},
		{"duplicate starter", SetLineupRequest{Starters: append([]int64{ids[1]}, ids[1:11]...)}},
		{"unknown player", SetLineupRequest{Starters: append([]int64{999999}, ids[1:11]...)}},
		{"suspended starter", SetLineupRequest{Starters: ids[:11]}},
		{"starter on bench", SetLineupRequest{Starters: ids[1:12], Substitutes: []int64{ids[1]}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.ClubID = c.ID
			if _, err := f.app.SetLineup(f.ctx, tt.req); !errors.Is(err, apperr.ErrValidation) {
				t.Errorf("err = %v, want validation", err)
			}
		})
	}
}

func TestClearSuspensions(t *testing.T) {
	f := newFixture(t, 1, 10)
	c := f.create(t, "alice")
	for _, p := range c.Players[:3] {
		f.suspend(t, c.ID, p.ID)
	}

	n, err := f.app.ClearSuspensions(f.ctx, c.ID)
	if err != nil {
		t.Fatalf("ClearSuspensions: %v", err)
	}
	if n != 3 {
		t.Errorf("cleared = %d, want 3", n)
	}
	got, _ := f.app.GetClub(f.ctx, c.ID)
	for _, p := range got.Players {
		if p.IsSuspended || p.SuspensionReason != models.SuspensionReasonNone {
			t.Errorf("player %d still suspended", p.ID)
		}
	}
	if n, _ := f.app.ClearSuspensions(f.ctx, c.ID); n != 0 {
		t.Errorf("second clear = %d, want 0", n)
	}
}

func TestAdjustBudget(t *testing.T) {
	f := newFixture(t, 1, 10)
	c := f.create(t, "alice")

	got, err := f.app.AdjustBudget(f.ctx, AdjustBudgetRequest{ClubID: c.ID, Delta: -100000})
	if err != nil {
		t.Fatalf("AdjustBudget: %v", err)
	}
	if got.Budget != 200000 {
		t.Errorf("budget = %d, want 200000", got.Budget)
	}

	_, err = f.app.AdjustBudget(f.ctx, AdjustBudgetRequest{ClubID: c.ID, Delta: -200001})
	if !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("overdraft: err = %v, want validation", err)
	}
	got, _ = f.app.GetClub(f.ctx, c.ID)
	if got.Budget != 200000 {
		t.Errorf("budget after rejected debit = %d, want 200000", got.Budget)
	}
}
