package clubs

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/rpc"
)

// ServicePath is the Connect route prefix of the club service
const ServicePath = "/matchday.club.v1.ClubService/"

// ClubsApp defines what the service layer needs from the clubs application
type ClubsApp interface {
	CreateClub(ctx context.Context, req CreateClubRequest) (*models.Club, error)
	GetClub(ctx context.Context, id uuid.UUID) (*models.Club, error)
	GetClubByOwner(ctx context.Context, serverID uuid.UUID, ownerID string) (*models.Club, error)
	ListClubs(ctx context.Context, serverID uuid.UUID) ([]models.Club, error)
	AvailablePlayers(ctx context.Context, serverID uuid.UUID) ([]models.Player, error)
	SetLineup(ctx context.Context, req SetLineupRequest) (*models.Club, error)
	ClearSuspensions(ctx context.Context, id uuid.UUID) (int, error)
	AdjustBudget(ctx context.Context, req AdjustBudgetRequest) (*models.Club, error)
}

// ListClubsResponse wraps a list of clubs
type ListClubsResponse struct {
	Clubs []models.Club `json:"clubs"`
}

// PlayersResponse wraps a list of players
type PlayersResponse struct {
	Players []models.Player `json:"players"`
}

// Service exposes the club operations over Connect
type Service struct {
	app ClubsApp
}

// NewService creates a new clubs service
func NewService(app ClubsApp) *Service {
	return &Service{
		app: app,
	}
}

// Register mounts every club procedure on r
func (s *Service) Register(r rpc.Router) {
	rpc.Unary(r, ServicePath+"CreateClub", s.CreateClub)
	rpc.Unary(r, ServicePath+"GetClub", s.GetClub)
	rpc.Unary(r, ServicePath+"GetClubByOwner", s.GetClubByOwner)
	rpc.Unary(r, ServicePath+"ListClubs", s.ListClubs)
	rpc.Unary(r, ServicePath+"AvailablePlayers", s.AvailablePlayers)
	rpc.Unary(r, ServicePath+"SetLineup", s.SetLineup)
	rpc.Unary(r, ServicePath+"ClearSuspensions", s.ClearSuspensions)
	rpc.Unary(r, ServicePath+"AdjustBudget", s.AdjustBudget)
}

func (s *Service) CreateClub(ctx context.Context, req *CreateClubRequest) (*models.Club, error) {
	return s.app.CreateClub(ctx, *req)
}

func (s *Service) GetClub(ctx context.Context, req *ClubRequest) (*models.Club, error) {
	return s.app.GetClub(ctx, req.ClubID)
}

func (s *Service) GetClubByOwner(ctx context.Context, req *OwnerRequest) (*models.Club, error) {
	return s.app.GetClubByOwner(ctx, req.ServerID, req.OwnerID)
}

func (s *Service) ListClubs(ctx context.Context, req *ServerRequest) (*ListClubsResponse, error) {
	clubs, err := s.app.ListClubs(ctx, req.ServerID)
	if err != nil {
		return nil, err
	}
	return &ListClubsResponse{Clubs: clubs}, nil
}

func (s *Service) AvailablePlayers(ctx context.Context, req *ServerRequest) (*PlayersResponse, error) {
	players, err := s.app.AvailablePlayers(ctx, req.ServerID)
	if err != nil {
		return nil, err
	}
	return &PlayersResponse{Players: players}, nil
}

func (s *Service) SetLineup(ctx context.Context, req *SetLineupRequest) (*models.Club, error) {
	return s.app.SetLineup(ctx, *req)
}

func (s *Service) ClearSuspensions(ctx context.Context, req *ClubRequest) (*ClearSuspensionsResponse, error) {
	n, err := s.app.ClearSuspensions(ctx, req.ClubID)
	if err != nil {
		return nil, err
	}
	return &ClearSuspensionsResponse{Cleared: n}, nil
}

func (s *Service) AdjustBudget(ctx context.Context, req *AdjustBudgetRequest) (*models.Club, error) {
	return s.app.AdjustBudget(ctx, *req)
}
