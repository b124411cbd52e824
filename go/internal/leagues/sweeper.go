package leagues

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/fixtures"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
)

// ForfeitApp is what the sweeper needs from the leagues app
type ForfeitApp interface {
	ListLeagues(ctx context.Context, status models.LeagueStatus) ([]models.League, error)
	ProcessAutoForfeits(ctx context.Context, id uuid.UUID) (int, error)
}

// Sweeper runs the forfeit pass over every started league once a day and on demand.
type Sweeper struct {
	app        ForfeitApp
	clock      clockwork.Clock
	offset     time.Duration // delay after midnight UTC
	wakeCh     chan struct{}
	instanceID string

	numWorkers int

	inFlight   map[uuid.UUID]bool
	inFlightMu sync.Mutex
}

// NewSweeper creates a sweeper with a small worker pool
func NewSweeper(app ForfeitApp, clock clockwork.Clock, numWorkers int, offset time.Duration) *Sweeper {
	if numWorkers < 1 {
		numWorkers = 1
	}
	return &Sweeper{
		app:        app,
		clock:      clock,
		offset:     offset,
		wakeCh:     make(chan struct{}, 1),
		instanceID: uuid.New().String()[:8],
		numWorkers: numWorkers,
		inFlight:   make(map[uuid.UUID]bool),
	}
}

// Trigger asks the sweeper to run a pass now.
func (s *Sweeper) Trigger() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// Run sweeps immediately, then after every daily rollover, until ctx is cancelled.
// It may be called again after it returns.
func (s *Sweeper) Run(ctx context.Context) error {
	log.Info().Str("instance", s.instanceID).Int("workers", s.numWorkers).Msg("forfeit sweeper started")

	var wg sync.WaitGroup
	workCh := make(chan uuid.UUID, s.numWorkers*2)
	workerCtx, cancelWorkers := context.WithCancel(ctx)
	for i := 0; i < s.numWorkers; i++ {
		wg.Add(1)
		go s.worker(workerCtx, &wg, i, workCh)
	}
	defer func() {
		cancelWorkers()
		close(workCh)
		wg.Wait()
		// leagues queued but never processed
		s.inFlightMu.Lock()
		clear(s.inFlight)
		s.inFlightMu.Unlock()
		log.Info().Str("instance", s.instanceID).Msg("forfeit sweeper stopped")
	}()

	timer := s.clock.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case <-timer.Chan():
		case <-s.wakeCh:
			stopAndDrainTimer(timer)
			log.Debug().Str("instance", s.instanceID).Msg("sweep triggered")
		}

		if err := s.sweep(ctx, workCh); err != nil {
			log.Error().Err(err).Str("instance", s.instanceID).Msg("forfeit sweep failed; retrying in 1m")
			timer.Reset(time.Minute)
			continue
		}
		timer.Reset(s.untilNext())
	}
}

// untilNext returns the wait until the next sweep after midnight UTC.
func (s *Sweeper) untilNext() time.Duration {
	now := s.clock.Now()
	next := fixtures.StartOfDay(now).Add(s.offset)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next.Sub(now)
}

func (s *Sweeper) sweep(ctx context.Context, workCh chan<- uuid.UUID) error {
	leagues, err := s.app.ListLeagues(ctx, models.LeagueStatusStarted)
	if err != nil {
		return err
	}
	log.Info().Str("instance", s.instanceID).Int("leagues", len(leagues)).Msg("sweeping started leagues")

	for _, l := range leagues {
		s.inFlightMu.Lock()
		if s.inFlight[l.ID] {
			s.inFlightMu.Unlock()
			continue
		}
		s.inFlight[l.ID] = true
		s.inFlightMu.Unlock()

		select {
		case <-ctx.Done():
			s.done(l.ID)
			return nil
		case workCh <- l.ID:
		}
	}
	return nil
}

func (s *Sweeper) worker(ctx context.Context, wg *sync.WaitGroup, workerID int, workCh <-chan uuid.UUID) {
	defer wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case leagueID, ok := <-workCh:
			if !ok {
				return
			}
			n, err := s.app.ProcessAutoForfeits(ctx, leagueID)
			if err != nil {
				log.Error().Err(err).Str("league_id", leagueID.String()).Int("worker_id", workerID).Msg("forfeit pass failed")
			} else if n > 0 {
				log.Info().Str("league_id", leagueID.String()).Int("forfeits", n).Int("worker_id", workerID).Msg("forfeit pass completed")
			}
			s.done(leagueID)
		}
	}
}

func (s *Sweeper) done(id uuid.UUID) {
	s.inFlightMu.Lock()
	delete(s.inFlight, id)
	s.inFlightMu.Unlock()
}

// stopAndDrainTimer stops t and discards a pending fire so Reset starts clean.
func stopAndDrainTimer(t clockwork.Timer) {
	if !t.Stop() {
		select {
		case <-t.Chan():
		default:
		}
	}
}
