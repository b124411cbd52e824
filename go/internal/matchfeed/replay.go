package matchfeed

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
)

// fullTime is the last minute replayed when no event runs later
const fullTime = 90

// Broadcaster delivers feed events to the clients of a channel
type Broadcaster interface {
	Broadcast(channel uuid.UUID, event *FeedEvent)
}

type replayJob struct {
	channel uuid.UUID
	match   events.MatchPayload
}

// Replayer plays finished matches back to viewers one minute at a time.
type Replayer struct {
	out   Broadcaster
	clock clockwork.Clock
	pace  time.Duration
	jobs  chan replayJob
	wg    sync.WaitGroup
}

// NewReplayer waits pace between minutes; zero sends the whole timeline at once.
func NewReplayer(out Broadcaster, clock clockwork.Clock, pace time.Duration) *Replayer {
	return &Replayer{
		out:   out,
		clock: clock,
		pace:  pace,
		jobs:  make(chan replayJob, 64),
	}
}

// Enqueue schedules a replay. It never blocks; a full queue drops the replay.
func (r *Replayer) Enqueue(channel uuid.UUID, match events.MatchPayload) {
	select {
	case r.jobs <- replayJob{channel: channel, match: match}:
	default:
		log.Warn().Str("match_id", match.MatchID).Msg("replay queue full, skipping replay")
	}
}

// Run starts queued replays until ctx is cancelled, then waits for running ones to stop.
func (r *Replayer) Run(ctx context.Context) {
	defer r.wg.Wait()
	for {
		select {
		case <-ctx.Done():
			return
		case job := <-r.jobs:
			r.wg.Add(1)
			go func() {
				defer r.wg.Done()
				r.replay(ctx, job.channel, job.match)
			}()
		}
	}
}

func (r *Replayer) replay(ctx context.Context, channel uuid.UUID, m events.MatchPayload) {
	byMinute := make(map[int][]models.MatchEvent)
	last := fullTime
	for _, e := range m.Events {
		byMinute[e.Minute] = append(byMinute[e.Minute], e)
		if e.Minute > last {
			last = e.Minute
		}
	}

	log.Debug().Str("match_id", m.MatchID).Str("channel", channel.String()).Dur("pace", r.pace).Msg("replaying match")

	home, away := 0, 0
	for minute := 0; minute <= last; minute++ {
		if minute > 0 && r.pace > 0 {
			select {
			case <-ctx.Done():
				return
			case <-r.clock.After(r.pace):
			}
		}

		happened := byMinute[minute]
		for _, e := range happened {
			if e.Type != models.EventTypeGoal {
				continue
			}
			if e.Side == models.SideHome {
				home++
			} else {
				away++
			}
		}
		if happened == nil {
			happened = []models.MatchEvent{}
		}

		data, err := json.Marshal(MinutePayload{
			MatchID:   m.MatchID,
			Minute:    minute,
			HomeScore: home,
			AwayScore: away,
			Events:    happened,
			FullTime:  minute == last,
		})
		if err != nil {
			log.Error().Err(err).Str("match_id", m.MatchID).Msg("failed to encode replay minute")
			return
		}
		r.out.Broadcast(channel, newFeedEvent(uuid.New(), channel, EventTypeMatchMinute, r.clock.Now().UTC(), data))
	}
}
