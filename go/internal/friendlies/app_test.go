package friendlies

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/docstore"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/simulation"
)

const testSeed = 7

var afternoon = time.Date(2026, time.May, 9, 15, 0, 0, 0, time.UTC)

type harness struct {
	t        *testing.T
	ctx      context.Context
	store    *docstore.Memory
	clock    *clockwork.FakeClock
	recorder *events.Recorder
	app      *App
	serverID uuid.UUID
	nextID   int64
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	h := &harness{
		t:        t,
		ctx:      context.Background(),
		store:    docstore.NewMemory(),
		clock:    clockwork.NewFakeClockAt(afternoon),
		recorder: &events.Recorder{},
		serverID: uuid.New(),
		nextID:   1,
	}
	h.app = NewApp(NewRepository(h.store), h.recorder, h.clock, 0)
	h.app.seed = func() (int64, error) { return testSeed, nil }
	return h
}

func (h *harness) club(name string, serverID uuid.UUID) *models.Club {
	h.t.Helper()
	positions := []models.Position{
		models.PositionGoalkeeper,
		models.PositionCentreBack, models.PositionCentreBack, models.PositionLeftBack, models.PositionRightBack,
		models.PositionCentralMidfield, models.PositionDefensiveMidfield, models.PositionLeftMidfield, models.PositionRightMidfield,
		models.PositionCentreForward, models.PositionSecondStriker,
		models.PositionGoalkeeper, models.PositionLeftWinger,
	}
	c := &models.Club{ID: uuid.New(), OwnerID: name, ServerID: serverID, Name: name, CreatedAt: afternoon}
	for i, pos := range positions {
		role := models.SquadRoleStarter
		if i >= models.StartersCount {
			role = models.SquadRoleSubstitute
		}
		c.Players = append(c.Players, models.Player{
			ID:         h.nextID,
			Name:       fmt.Sprintf("%s %d", name, i+1),
			Position:   pos,
			Attributes: map[string]float64{"pace": 70, "shooting": 68, "passing": 72},
			StaminaPct: 100,
			SquadRole:  role,
		})
		h.nextID++
	}
	if err := docstore.Insert(h.ctx, h.store, docstore.Clubs, c.ID.String(), c); err != nil {
		h.t.Fatalf("insert club: %v", err)
	}
	return c
}

func (h *harness) load(id uuid.UUID) *models.Club {
	h.t.Helper()
	c, err := docstore.Load[models.Club](h.ctx, h.store, docstore.Clubs, id.String())
	if err != nil {
		h.t.Fatalf("load club: %v", err)
	}
	return c.Value
}

func (h *harness) invite(from, to *models.Club) *models.FriendlyInvite {
	h.t.Helper()
	inv, err := h.app.Invite(h.ctx, InviteRequest{FromClubID: from.ID, ToClubID: to.ID})
	if err != nil {
		h.t.Fatalf("Invite: %v", err)
	}
	return inv
}

func TestAcceptPlaysFriendly(t *testing.T) {
	h := newHarness(t)
	home := h.club("Home", h.serverID)
	away := h.club("Away", h.serverID)
	inv := h.invite(home, away)

	resp, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: away.ID, Accept: true})
	if err != nil {
		t.Fatalf("Respond: %v", err)
	}
	m := resp.Match
	if m == nil || m.Kind != models.MatchKindFriendly || m.Seed != testSeed {
		t.Fatalf("match = %+v, want a friendly seeded %d", m, testSeed)
	}
	if resp.Invite.Status != models.InviteStatusAccepted || resp.Invite.MatchID == nil || *resp.Invite.MatchID != m.ID {
		t.Errorf("invite = %s match %v, want accepted and linked to %s", resp.Invite.Status, resp.Invite.MatchID, m.ID)
	}

	want, err := simulation.Simulate(simulation.NewRand(testSeed), simulation.Lineup(home), simulation.Lineup(away), models.MatchKindFriendly)
	if err != nil {
		t.Fatalf("Simulate: %v", err)
	}
	if m.HomeScore != want.HomeScore || m.AwayScore != want.AwayScore || len(m.Events) != len(want.Events) {
		t.Errorf("friendly %d-%d with %d events, replay gives %d-%d with %d", m.HomeScore, m.AwayScore, len(m.Events), want.HomeScore, want.AwayScore, len(want.Events))
	}

	for _, c := range []*models.Club{h.load(home.ID), h.load(away.ID)} {
		if c.LastFriendlyAt == nil || !c.LastFriendlyAt.Equal(afternoon) {
			t.Errorf("%s last friendly = %v, want %v", c.Name, c.LastFriendlyAt, afternoon)
		}
		for _, p := range c.Players {
			want := 100
			if p.SquadRole == models.SquadRoleStarter {
				want = 90
			}
			if p.StaminaPct != want {
				t.Errorf("%s stamina = %d, want %d", p.Name, p.StaminaPct, want)
			}
		}
	}
	if n := h.recorder.Count(events.TypeFriendlyPlayed); n != 1 {
		t.Errorf("friendly events = %d, want 1", n)
	}
}

func TestInviteRejections(t *testing.T) {
	h := newHarness(t)
	a := h.club("A", h.serverID)
	b := h.club("B", h.serverID)
	stranger := h.club("Stranger", uuid.New())
	h.invite(a, b)

	tests := []struct {
		name     string
		from, to *models.Club
		wantErr  error
	}{
		{"self", a, a, apperr.ErrValidation},
		{"other server", a, stranger, apperr.ErrValidation},
		{"pending already", a, b, apperr.ErrStateConflict},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.app.Invite(h.ctx, InviteRequest{FromClubID: tt.from.ID, ToClubID: tt.to.ID})
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("err = %v, want %v", err, tt.wantErr)
			}
		})
	}

	if _, err := h.app.Invite(h.ctx, InviteRequest{FromClubID: b.ID, ToClubID: a.ID}); err != nil {
		t.Errorf("reverse invite: %v", err)
	}
}

func TestCooldown(t *testing.T) {
	h := newHarness(t)
	a := h.club("A", h.serverID)
	b := h.club("B", h.serverID)
	c := h.club("C", h.serverID)

	inv := h.invite(a, b)
	pending := h.invite(c, a)
	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: b.ID, Accept: true}); err != nil {
		t.Fatalf("Respond: %v", err)
	}

	h.clock.Advance(2 * time.Hour)
	if _, err := h.app.Invite(h.ctx, InviteRequest{FromClubID: a.ID, ToClubID: c.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("invite during cooldown: err = %v, want validation", err)
	}
	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: pending.ID, ClubID: a.ID, Accept: true}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("accept during cooldown: err = %v, want validation", err)
	}

	got, err := h.app.Availability(h.ctx, a.ID)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if got.Available || got.Remaining != 22*time.Hour {
		t.Errorf("availability = %+v, want unavailable for 22h", got)
	}

	h.clock.Advance(22 * time.Hour)
	got, err = h.app.Availability(h.ctx, a.ID)
	if err != nil {
		t.Fatalf("Availability: %v", err)
	}
	if !got.Available {
		t.Errorf("availability after cooldown = %+v, want available", got)
	}
	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: pending.ID, ClubID: a.ID, Accept: true}); err != nil {
		t.Errorf("accept after cooldown: %v", err)
	}
}

func TestRespond_DeclineIsTerminal(t *testing.T) {
	h := newHarness(t)
	a := h.club("A", h.serverID)
	b := h.club("B", h.serverID)
	inv := h.invite(a, b)

	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: a.ID}); !errors.Is(err, apperr.ErrValidation) {
		t.Errorf("inviter responding: err = %v, want validation", err)
	}
	resp, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: b.ID})
	if err != nil {
		t.Fatalf("decline: %v", err)
	}
	if resp.Invite.Status != models.InviteStatusDeclined || resp.Match != nil {
		t.Errorf("decline = %s with match %v", resp.Invite.Status, resp.Match)
	}
	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: b.ID, Accept: true}); !errors.Is(err, apperr.ErrStateConflict) {
		t.Errorf("accept after decline: err = %v, want state conflict", err)
	}

	list, err := h.app.ListInvites(h.ctx, b.ID)
	if err != nil {
		t.Fatalf("ListInvites: %v", err)
	}
	if len(list.Received) != 0 {
		t.Errorf("pending received = %d, want 0", len(list.Received))
	}
	if h.load(a.ID).LastFriendlyAt != nil {
		t.Errorf("declined invite started the cooldown")
	}
}

func TestRespond_SeedFailureKeepsInvitePending(t *testing.T) {
	h := newHarness(t)
	a := h.club("A", h.serverID)
	b := h.club("B", h.serverID)
	inv := h.invite(a, b)
	h.app.seed = func() (int64, error) { return 0, errors.New("entropy exhausted") }

	if _, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: b.ID, Accept: true}); !errors.Is(err, apperr.ErrComputation) {
		t.Fatalf("err = %v, want computation", err)
	}
	list, err := h.app.ListInvites(h.ctx, b.ID)
	if err != nil {
		t.Fatalf("ListInvites: %v", err)
	}
	if len(list.Received) != 1 {
		t.Errorf("pending received = %d, want 1", len(list.Received))
	}
}

func TestMatchHistory_NewestFirst(t *testing.T) {
	h := newHarness(t)
	a := h.club("A", h.serverID)
	b := h.club("B", h.serverID)

	var played []uuid.UUID
	for i := 0; i < 3; i++ {
		from, to := a, b
		if i%2 == 1 {
			from, to = b, a
		}
		inv := h.invite(from, to)
		resp, err := h.app.Respond(h.ctx, RespondRequest{InviteID: inv.ID, ClubID: to.ID, Accept: true})
		if err != nil {
			t.Fatalf("Respond %d: %v", i, err)
		}
		played = append(played, resp.Match.ID)
		h.clock.Advance(models.FriendlyCooldown)
	}

	got, err := h.app.MatchHistory(h.ctx, HistoryRequest{ClubID: a.ID, Limit: 2})
	if err != nil {
		t.Fatalf("MatchHistory: %v", err)
	}
	if len(got) != 2 || got[0].ID != played[2] || got[1].ID != played[1] {
		t.Errorf("history = %v, want the last two friendlies newest first", got)
	}
}
