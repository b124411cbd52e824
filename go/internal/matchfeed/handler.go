package matchfeed

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
)

// recentMatches is how many results a league snapshot carries
const recentMatches = 5

// StateProvider reads the league a viewer joins
type StateProvider interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	GetStandings(ctx context.Context, id uuid.UUID) (*models.Standings, error)
}

// LeagueState is the snapshot a viewer loads before following the live feed
type LeagueState struct {
	LeagueID        string              `json:"league_id"`
	Name            string              `json:"name"`
	Status          models.LeagueStatus `json:"status"`
	CurrentMatchday int                 `json:"current_matchday"`
	TotalMatchdays  int                 `json:"total_matchdays"`
	Standings       models.Standings    `json:"standings"`
	Matchday        []models.Fixture    `json:"matchday"`
	Recent          []models.Match      `json:"recent"`
}

// Handler serves the websocket and snapshot endpoints of the feed
type Handler struct {
	connections *ConnectionManager
	state       StateProvider
}

// NewHandler creates the feed routes. state may be nil when no league data is reachable.
func NewHandler(connections *ConnectionManager, state StateProvider) *Handler {
	return &Handler{
		connections: connections,
		state:       state,
	}
}

// Routes mounts under /feed
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Get("/leagues/{channelID}", h.HandleConnection)
	r.Get("/servers/{channelID}", h.HandleConnection)
	if h.state != nil {
		r.Get("/leagues/{channelID}/state", h.HandleLeagueState)
	}
	r.Get("/stats", h.HandleStats)
	return r
}

// HandleConnection subscribes a websocket client to a league or server channel
func (h *Handler) HandleConnection(w http.ResponseWriter, r *http.Request) {
	channel, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		http.Error(w, "invalid channel id", http.StatusBadRequest)
		return
	}
	viewer := r.URL.Query().Get("viewer")
	if viewer == "" {
		viewer = "anonymous"
	}
	if err := h.connections.UpgradeConnection(w, r, viewer, channel); err != nil {
		// the upgrader has already written the failure response
		log.Error().Err(err).Str("channel", channel.String()).Msg("failed to upgrade websocket connection")
	}
}

func (h *Handler) HandleLeagueState(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "channelID"))
	if err != nil {
		http.Error(w, "invalid league id", http.StatusBadRequest)
		return
	}

	league, err := h.state.GetLeague(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	standings, err := h.state.GetStandings(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}

	state := LeagueState{
		LeagueID:        league.ID.String(),
		Name:            league.Name,
		Status:          league.Status,
		CurrentMatchday: league.CurrentMatchday,
		TotalMatchdays:  league.TotalMatchdays(),
		Standings:       *standings,
		Matchday:        []models.Fixture{},
		Recent:          []models.Match{},
	}
	for _, f := range league.Fixtures {
		if f.Matchday == league.CurrentMatchday {
			state.Matchday = append(state.Matchday, f)
		}
	}
	for i := len(league.Matches) - 1; i >= 0 && len(state.Recent) < recentMatches; i-- {
		m := league.Matches[i]
		m.Events = nil
		state.Recent = append(state.Recent, m)
	}
	writeJSON(w, http.StatusOK, state)
}

func (h *Handler) HandleStats(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.connections.Stats())
}

func writeError(w http.ResponseWriter, err error) {
	if errors.Is(err, apperr.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	log.Error().Err(err).Msg("failed to load league state")
	http.Error(w, "internal error", http.StatusInternalServerError)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Error().Err(err).Msg("failed to write response")
	}
}
