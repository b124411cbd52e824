package matchfeed

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/events"
	"github.com/mcdev12/matchday/go/internal/models"
)

var kickoff = time.Date(2026, time.September, 12, 15, 0, 0, 0, time.UTC)

type recordingBroadcaster struct {
	ch chan *FeedEvent
}

func newRecordingBroadcaster() *recordingBroadcaster {
	return &recordingBroadcaster{ch: make(chan *FeedEvent, 256)}
}

func (b *recordingBroadcaster) Broadcast(_ uuid.UUID, e *FeedEvent) {
	b.ch <- e
}

func (b *recordingBroadcaster) next(t *testing.T) MinutePayload {
	t.Helper()
	select {
	case e := <-b.ch:
		if e.Type != EventTypeMatchMinute {
			t.Fatalf("event type = %q, want %q", e.Type, EventTypeMatchMinute)
		}
		var p MinutePayload
		if err := json.Unmarshal(e.Data, &p); err != nil {
			t.Fatalf("decode minute: %v", err)
		}
		return p
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a replayed minute")
	}
	return MinutePayload{}
}

func (b *recordingBroadcaster) quiet(t *testing.T) {
	t.Helper()
	select {
	case e := <-b.ch:
		t.Fatalf("unexpected event %+v", e)
	case <-time.After(50 * time.Millisecond):
	}
}

func derby() events.MatchPayload {
	return events.MatchPayload{
		MatchID:   uuid.NewString(),
		HomeScore: 2,
		AwayScore: 1,
		Events: []models.MatchEvent{
			{Minute: 0, Type: models.EventTypeKickoff, Description: "Kick-off"},
			{Minute: 12, Type: models.EventTypeGoal, Side: models.SideHome, PlayerName: "L. Moreau"},
			{Minute: 30, Type: models.EventTypeYellowCard, Side: models.SideAway, PlayerName: "T. Brandt"},
			{Minute: 58, Type: models.EventTypeGoal, Side: models.SideAway, PlayerName: "K. Osei"},
			{Minute: 58, Type: models.EventTypeCommentary, Description: "The away end erupts"},
			{Minute: 93, Type: models.EventTypeGoal, Side: models.SideHome, PlayerName: "L. Moreau"},
		},
		PlayedAt: kickoff,
	}
}

func TestReplayPacesEachMinute(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	out := newRecordingBroadcaster()
	clock := clockwork.NewFakeClockAt(kickoff)
	r := NewReplayer(out, clock, time.Second)
	m := derby()

	done := make(chan struct{})
	go func() {
		r.replay(ctx, uuid.New(), m)
		close(done)
	}()

	first := out.next(t)
	if first.Minute != 0 || len(first.Events) != 1 || first.FullTime {
		t.Fatalf("minute 0 = %+v", first)
	}
	out.quiet(t)

	byMinute := map[int]MinutePayload{0: first}
	for minute := 1; minute <= 93; minute++ {
		if err := clock.BlockUntilContext(ctx, 1); err != nil {
			t.Fatalf("waiting for replay timer: %v", err)
		}
		clock.Advance(time.Second)
		p := out.next(t)
		if p.Minute != minute {
			t.Fatalf("got minute %d, want %d", p.Minute, minute)
		}
		byMinute[minute] = p
	}
	<-done

	checks := []struct {
		minute     int
		home, away int
		events     int
	}{
		{11, 0, 0, 0},
		{12, 1, 0, 1},
		{30, 1, 0, 1},
		{58, 1, 1, 2},
		{90, 1, 1, 0},
		{93, 2, 1, 1},
	}
	for _, c := range checks {
		p := byMinute[c.minute]
		if p.HomeScore != c.home || p.AwayScore != c.away || len(p.Events) != c.events {
			t.Errorf("minute %d = %d-%d with %d events, want %d-%d with %d", c.minute, p.HomeScore, p.AwayScore, len(p.Events), c.home, c.away, c.events)
		}
	}
	if !byMinute[93].FullTime || byMinute[90].FullTime {
		t.Errorf("full time flagged at the wrong minute")
	}
}

func TestReplayWithoutPaceSendsWholeTimeline(t *testing.T) {
	out := newRecordingBroadcaster()
	r := NewReplayer(out, clockwork.NewFakeClockAt(kickoff), 0)
	m := derby()
	m.Events = m.Events[:3]

	r.replay(context.Background(), uuid.New(), m)

	if got := len(out.ch); got != 91 {
		t.Fatalf("replayed %d minutes, want 91", got)
	}
	var last MinutePayload
	for len(out.ch) > 0 {
		last = out.next(t)
	}
	if last.Minute != 90 || !last.FullTime || last.HomeScore != 1 || last.AwayScore != 0 {
		t.Errorf("final minute = %+v", last)
	}
}

func TestReplayStopsWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	out := newRecordingBroadcaster()
	clock := clockwork.NewFakeClockAt(kickoff)
	r := NewReplayer(out, clock, time.Minute)

	done := make(chan struct{})
	go func() {
		r.replay(ctx, uuid.New(), derby())
		close(done)
	}()
	out.next(t)
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("replay kept running after cancel")
	}
	out.quiet(t)
}

func TestDispatchQueuesReplayForPlayedMatches(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	replayer := NewReplayer(newRecordingBroadcaster(), clockwork.NewFakeClockAt(kickoff), time.Second)
	svc := NewService(cm, replayer, clockwork.NewFakeClockAt(kickoff))
	leagueID := uuid.New()

	match, err := json.Marshal(derby())
	if err != nil {
		t.Fatalf("marshal match: %v", err)
	}
	advanced, err := json.Marshal(events.MatchdayAdvancedPayload{LeagueID: leagueID.String(), Matchday: 2})
	if err != nil {
		t.Fatalf("marshal matchday: %v", err)
	}

	if err := svc.Dispatch(envelope(leagueID, events.TypeFixturePlayed, match)); err != nil {
		t.Fatalf("Dispatch FixturePlayed: %v", err)
	}
	if err := svc.Dispatch(envelope(leagueID, events.TypeMatchdayAdvanced, advanced)); err != nil {
		t.Fatalf("Dispatch MatchdayAdvanced: %v", err)
	}

	if got := len(cm.broadcastCh); got != 2 {
		t.Errorf("broadcasts queued = %d, want 2", got)
	}
	if got := len(replayer.jobs); got != 1 {
		t.Errorf("replays queued = %d, want 1", got)
	}

	bad := envelope(leagueID, events.TypeFixturePlayed, match)
	bad.AggregateID = "league-7"
	if err := svc.Dispatch(bad); err == nil {
		t.Error("Dispatch accepted a malformed aggregate id")
	}
}

func TestEmitDispatchesLocally(t *testing.T) {
	cm := NewConnectionManager(DefaultConnectionConfig())
	replayer := NewReplayer(newRecordingBroadcaster(), clockwork.NewFakeClockAt(kickoff), 0)
	svc := NewService(cm, replayer, clockwork.NewFakeClockAt(kickoff))

	if err := svc.Emit(context.Background(), uuid.New(), events.TypeFriendlyPlayed, derby()); err != nil {
		t.Fatalf("Emit: %v", err)
	}
	msg := <-cm.broadcastCh
	if msg.Event.Type != events.TypeFriendlyPlayed || !msg.Event.Timestamp.Equal(kickoff) {
		t.Errorf("broadcast = %+v", msg.Event)
	}
	if got := len(replayer.jobs); got != 1 {
		t.Errorf("replays queued = %d, want 1", got)
	}
}
