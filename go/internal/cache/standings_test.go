package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

type fakeKV struct {
	data    map[string]string
	ttls    map[string]time.Duration
	failGet error
}

func newFakeKV() *fakeKV {
	return &fakeKV{data: make(map[string]string), ttls: make(map[string]time.Duration)}
}

func (f *fakeKV) Get(_ context.Context, key string) *redis.StringCmd {
	if f.failGet != nil {
		return redis.NewStringResult("", f.failGet)
	}
	v, ok := f.data[key]
	if !ok {
		return redis.NewStringResult("", redis.Nil)
	}
	return redis.NewStringResult(v, nil)
}

func (f *fakeKV) Set(_ context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	f.data[key] = string(value.([]byte))
	f.ttls[key] = expiration
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeKV) Del(_ context.Context, keys ...string) *redis.IntCmd {
	var n int64
	for _, k := range keys {
		if _, ok := f.data[k]; ok {
			delete(f.data, k)
			n++
		}
	}
	return redis.NewIntResult(n, nil)
}

func TestStandingsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newFakeKV()
	c := NewStandings(store, 10*time.Minute)
	leagueID := uuid.New()
	clubID := uuid.New()

	want := models.Standings{
		Leaderboard: []models.LeaderboardRow{{ClubID: clubID, ClubName: "Harbour Town", Played: 2, Won: 1, Drawn: 1, GoalsFor: 4, GoalsAgainst: 2, GoalDifference: 2, Points: 4}},
		TopScorers:  []models.PlayerStat{{PlayerID: 9, PlayerName: "R. Okafor", ClubID: clubID, ClubName: "Harbour Town", Count: 3}},
		TopAssists:  []models.PlayerStat{},
	}
	if err := c.StoreStandings(ctx, leagueID, want); err != nil {
		t.Fatalf("StoreStandings: %v", err)
	}
	if ttl := store.ttls[keyPrefix+leagueID.String()]; ttl != 10*time.Minute {
		t.Errorf("ttl = %v, want 10m", ttl)
	}

	got, err := c.LoadStandings(ctx, leagueID)
	if err != nil {
		t.Fatalf("LoadStandings: %v", err)
	}
	if diff := cmp.Diff(&want, got); diff != "" {
		t.Errorf("standings mismatch (-want +got):\n%s", diff)
	}
}

func TestDropStandings(t *testing.T) {
	ctx := context.Background()
	c := NewStandings(newFakeKV(), 0)
	leagueID := uuid.New()

	if err := c.StoreStandings(ctx, leagueID, models.Standings{Leaderboard: []models.LeaderboardRow{{Played: 3}}}); err != nil {
		t.Fatalf("StoreStandings: %v", err)
	}
	if err := c.DropStandings(ctx, leagueID); err != nil {
		t.Fatalf("DropStandings: %v", err)
	}
	got, err := c.LoadStandings(ctx, leagueID)
	if err != nil || got != nil {
		t.Fatalf("LoadStandings after drop = %v, %v; want nil, nil", got, err)
	}
	if err := c.DropStandings(ctx, leagueID); err != nil {
		t.Errorf("dropping a missing entry: %v", err)
	}
}

func TestLoadStandingsMiss(t *testing.T) {
	c := NewStandings(newFakeKV(), 0)
	got, err := c.LoadStandings(context.Background(), uuid.New())
	if err != nil || got != nil {
		t.Fatalf("LoadStandings = %v, %v; want nil, nil", got, err)
	}
}

func TestLoadStandingsErrors(t *testing.T) {
	leagueID := uuid.New()

	down := newFakeKV()
	down.failGet = errors.New("dial tcp: connection refused")
	if _, err := NewStandings(down, 0).LoadStandings(context.Background(), leagueID); err == nil {
		t.Error("LoadStandings hid a connection error")
	}

	corrupt := newFakeKV()
	corrupt.data[keyPrefix+leagueID.String()] = "{not json"
	if _, err := NewStandings(corrupt, 0).LoadStandings(context.Background(), leagueID); err == nil {
		t.Error("LoadStandings accepted a corrupt entry")
	}
}
