package leagues

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/models"
)

type fakeForfeits struct {
	mu      sync.Mutex
	leagues []models.League
	listErr error
	calls   chan uuid.UUID
}

func (f *fakeForfeits) ListLeagues(_ context.Context, status models.LeagueStatus) ([]models.League, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []models.League
	for _, l := range f.leagues {
		if l.Status == status {
			out = append(out, l)
		}
	}
	return out, nil
}

func (f *fakeForfeits) ProcessAutoForfeits(_ context.Context, id uuid.UUID) (int, error) {
	f.calls <- id
	return 1, nil
}

func (f *fakeForfeits) setListErr(err error) {
	f.mu.Lock()
	f.listErr = err
	f.mu.Unlock()
}

func collect(t *testing.T, calls <-chan uuid.UUID, n int) map[uuid.UUID]int {
	t.Helper()
	got := make(map[uuid.UUID]int)
	for i := 0; i < n; i++ {
		select {
		case id := <-calls:
			got[id]++
		case <-time.After(2 * time.Second):
			t.Fatalf("got %d forfeit passes, want %d", i, n)
		}
	}
	return got
}

func TestSweeper_DailyAndTriggeredPasses(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	a, b := uuid.New(), uuid.New()
	app := &fakeForfeits{
		leagues: []models.League{
			{ID: a, Status: models.LeagueStatusStarted},
			{ID: b, Status: models.LeagueStatusStarted},
			{ID: uuid.New(), Status: models.LeagueStatusFinished},
		},
		calls: make(chan uuid.UUID, 16),
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC))
	s := NewSweeper(app, clock, 2, 5*time.Minute)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	first := collect(t, app.calls, 2)
	if first[a] != 1 || first[b] != 1 {
		t.Fatalf("startup pass = %v", first)
	}

	// next pass is due at 00:05 the following day
	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for sweep timer: %v", err)
	}
	clock.Advance(14*time.Hour + 4*time.Minute)
	select {
	case id := <-app.calls:
		t.Fatalf("swept %s before the daily rollover", id)
	case <-time.After(50 * time.Millisecond):
	}
	clock.Advance(time.Minute)
	collect(t, app.calls, 2)

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for sweep timer: %v", err)
	}
	s.Trigger()
	collect(t, app.calls, 2)

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Run returned %v", err)
	}
}

func TestSweeper_RetriesFailedListing(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	id := uuid.New()
	app := &fakeForfeits{
		leagues: []models.League{{ID: id, Status: models.LeagueStatusStarted}},
		listErr: errors.New("store unavailable"),
		calls:   make(chan uuid.UUID, 4),
	}
	clock := clockwork.NewFakeClockAt(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC))
	s := NewSweeper(app, clock, 1, 0)

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	if err := clock.BlockUntilContext(ctx, 1); err != nil {
		t.Fatalf("waiting for retry timer: %v", err)
	}
	app.setListErr(nil)
	clock.Advance(time.Minute)

	if got := collect(t, app.calls, 1); got[id] != 1 {
		t.Errorf("retry pass = %v", got)
	}
	cancel()
	<-done
}

func TestSweeper_RunsAgainAfterStop(t *testing.T) {
	id := uuid.New()
	app := &fakeForfeits{
		leagues: []models.League{{ID: id, Status: models.LeagueStatusStarted}},
		calls:   make(chan uuid.UUID, 4),
	}
	s := NewSweeper(app, clockwork.NewFakeClockAt(time.Date(2026, time.March, 2, 10, 0, 0, 0, time.UTC)), 1, 0)

	for round := 1; round <= 2; round++ {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		done := make(chan error, 1)
		go func() { done <- s.Run(ctx) }()

		if got := collect(t, app.calls, 1); got[id] != 1 {
			t.Errorf("round %d startup pass = %v", round, got)
		}
		cancel()
		if err := <-done; err != nil {
			t.Errorf("round %d: Run returned %v", round, err)
		}
	}
}

func TestSweeper_UntilNext(t *testing.T) {
	tests := []struct {
		name string
		now  time.Time
		want time.Duration
	}{
		{"before offset", time.Date(2026, time.March, 2, 0, 1, 0, 0, time.UTC), 4 * time.Minute},
		{"at offset", time.Date(2026, time.March, 2, 0, 5, 0, 0, time.UTC), 24 * time.Hour},
		{"afternoon", time.Date(2026, time.March, 2, 18, 0, 0, 0, time.UTC), 6*time.Hour + 5*time.Minute},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := NewSweeper(&fakeForfeits{}, clockwork.NewFakeClockAt(tt.now), 1, 5*time.Minute)
			if got := s.untilNext(); got != tt.want {
				t.Errorf("untilNext() = %v, want %v", got, tt.want)
			}
		})
	}
}
