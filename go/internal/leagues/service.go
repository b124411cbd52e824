package leagues

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/rpc"
)

// ServicePath is the Connect route prefix of the league service
const ServicePath = "/matchday.league.v1.LeagueService/"

// LeaguesApp defines what the service layer needs from the leagues application
type LeaguesApp interface {
	CreateLeague(ctx context.Context, req CreateLeagueRequest) (*models.League, error)
	GetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	ListLeagues(ctx context.Context, status models.LeagueStatus) ([]models.League, error)
	GetStandings(ctx context.Context, id uuid.UUID) (*models.Standings, error)
	JoinLeague(ctx context.Context, req JoinLeagueRequest) (*models.League, error)
	StartLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
	PlayFixture(ctx context.Context, req PlayFixtureRequest) (*models.Match, error)
	ProcessAutoForfeits(ctx context.Context, id uuid.UUID) (int, error)
	TerminateLeague(ctx context.Context, id uuid.UUID) (*TerminateResponse, error)
	ResetLeague(ctx context.Context, id uuid.UUID) (*models.League, error)
}

// Service exposes the league operations over Connect
type Service struct {
	app LeaguesApp
}

// NewService creates a new leagues service
func NewService(app LeaguesApp) *Service {
	return &Service{
		app: app,
	}
}

// Register mounts every league procedure on r
func (s *Service) Register(r rpc.Router) {
	rpc.Unary(r, ServicePath+"CreateLeague", s.CreateLeague)
	rpc.Unary(r, ServicePath+"GetLeague", s.GetLeague)
	rpc.Unary(r, ServicePath+"ListLeagues", s.ListLeagues)
	rpc.Unary(r, ServicePath+"GetStandings", s.GetStandings)
	rpc.Unary(r, ServicePath+"JoinLeague", s.JoinLeague)
	rpc.Unary(r, ServicePath+"StartLeague", s.StartLeague)
	rpc.Unary(r, ServicePath+"PlayFixture", s.PlayFixture)
	rpc.Unary(r, ServicePath+"ProcessAutoForfeits", s.ProcessAutoForfeits)
	rpc.Unary(r, ServicePath+"TerminateLeague", s.TerminateLeague)
	rpc.Unary(r, ServicePath+"ResetLeague", s.ResetLeague)
}

func (s *Service) CreateLeague(ctx context.Context, req *CreateLeagueRequest) (*models.League, error) {
	return s.app.CreateLeague(ctx, *req)
}

func (s *Service) GetLeague(ctx context.Context, req *LeagueRequest) (*models.League, error) {
	return s.app.GetLeague(ctx, req.LeagueID)
}

func (s *Service) ListLeagues(ctx context.Context, req *ListLeaguesRequest) (*ListLeaguesResponse, error) {
	leagues, err := s.app.ListLeagues(ctx, req.Status)
	if err != nil {
		return nil, err
	}
	return &ListLeaguesResponse{Leagues: leagues}, nil
}

func (s *Service) GetStandings(ctx context.Context, req *LeagueRequest) (*models.Standings, error) {
	return s.app.GetStandings(ctx, req.LeagueID)
}

func (s *Service) JoinLeague(ctx context.Context, req *JoinLeagueRequest) (*models.League, error) {
	return s.app.JoinLeague(ctx, *req)
}

func (s *Service) StartLeague(ctx context.Context, req *LeagueRequest) (*models.League, error) {
	return s.app.StartLeague(ctx, req.LeagueID)
}

func (s *Service) PlayFixture(ctx context.Context, req *PlayFixtureRequest) (*models.Match, error) {
	return s.app.PlayFixture(ctx, *req)
}

func (s *Service) ProcessAutoForfeits(ctx context.Context, req *LeagueRequest) (*ForfeitResponse, error) {
	n, err := s.app.ProcessAutoForfeits(ctx, req.LeagueID)
	if err != nil {
		return nil, err
	}
	return &ForfeitResponse{Forfeited: n}, nil
}

func (s *Service) TerminateLeague(ctx context.Context, req *LeagueRequest) (*TerminateResponse, error) {
	return s.app.TerminateLeague(ctx, req.LeagueID)
}

func (s *Service) ResetLeague(ctx context.Context, req *LeagueRequest) (*models.League, error) {
	return s.app.ResetLeague(ctx, req.LeagueID)
}
