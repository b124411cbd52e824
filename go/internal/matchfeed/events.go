package matchfeed

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
)

// FeedEvent is what websocket clients receive
type FeedEvent struct {
	ID        string          `json:"id"`
	Channel   string          `json:"channel"` // league or server the event belongs to
	Type      string          `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Data      json.RawMessage `json:"data"`
}

// EventTypeMatchMinute is a replayed minute of a played match
const EventTypeMatchMinute = "MatchMinute"

// MinutePayload is one minute of a match replay with the running score
type MinutePayload struct {
	MatchID   string              `json:"match_id"`
	Minute    int                 `json:"minute"`
	HomeScore int                 `json:"home_score"`
	AwayScore int                 `json:"away_score"`
	Events    []models.MatchEvent `json:"events"`
	FullTime  bool                `json:"full_time"`
}

func newFeedEvent(id uuid.UUID, channel uuid.UUID, eventType string, at time.Time, data json.RawMessage) *FeedEvent {
	return &FeedEvent{
		ID:        id.String(),
		Channel:   channel.String(),
		Type:      eventType,
		Timestamp: at,
		Data:      data,
	}
}
