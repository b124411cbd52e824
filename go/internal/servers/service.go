package servers

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/rpc"
)

// ServicePath is the Connect route prefix of the server service
const ServicePath = "/matchday.server.v1.ServerService/"

// ServersApp defines what the service layer needs from the servers application
type ServersApp interface {
	CreateServer(ctx context.Context, req CreateServerRequest) (*models.Server, error)
	JoinServer(ctx context.Context, req JoinServerRequest) (*models.Server, error)
	GetServer(ctx context.Context, id uuid.UUID) (*models.Server, error)
	ListServers(ctx context.Context) ([]models.Server, error)
}

// ListServersResponse wraps a list of servers
type ListServersResponse struct {
	Servers []models.Server `json:"servers"`
}

// Service exposes the server operations over Connect
type Service struct {
	app ServersApp
}

// NewService creates a new servers service
func NewService(app ServersApp) *Service {
	return &Service{
		app: app,
	}
}

// Register mounts every server procedure on r
func (s *Service) Register(r rpc.Router) {
	rpc.Unary(r, ServicePath+"CreateServer", s.CreateServer)
	rpc.Unary(r, ServicePath+"JoinServer", s.JoinServer)
	rpc.Unary(r, ServicePath+"GetServer", s.GetServer)
	rpc.Unary(r, ServicePath+"ListServers", s.ListServers)
}

func (s *Service) CreateServer(ctx context.Context, req *CreateServerRequest) (*models.Server, error) {
	return s.app.CreateServer(ctx, *req)
}

func (s *Service) JoinServer(ctx context.Context, req *JoinServerRequest) (*models.Server, error) {
	return s.app.JoinServer(ctx, *req)
}

func (s *Service) GetServer(ctx context.Context, req *GetServerRequest) (*models.Server, error) {
	return s.app.GetServer(ctx, req.ServerID)
}

func (s *Service) ListServers(ctx context.Context, _ *rpc.Empty) (*ListServersResponse, error) {
	servers, err := s.app.ListServers(ctx)
	if err != nil {
		return nil, err
	}
	return &ListServersResponse{Servers: servers}, nil
}
