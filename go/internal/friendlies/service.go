package friendlies

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/rpc"
)

// ServicePath is the Connect route prefix of the friendly service
const ServicePath = "/matchday.friendly.v1.FriendlyService/"

// FriendliesApp defines what the service layer needs from the friendlies application
type FriendliesApp interface {
	Invite(ctx context.Context, req InviteRequest) (*models.FriendlyInvite, error)
	Respond(ctx context.Context, req RespondRequest) (*RespondResponse, error)
	ListInvites(ctx context.Context, clubID uuid.UUID) (*InvitesResponse, error)
	Availability(ctx context.Context, clubID uuid.UUID) (*AvailabilityResponse, error)
	MatchHistory(ctx context.Context, req HistoryRequest) ([]models.Match, error)
}

// Service exposes friendly operations over Connect
type Service struct {
	app FriendliesApp
}

// NewService creates a new friendlies service
func NewService(app FriendliesApp) *Service {
	return &Service{
		app: app,
	}
}

// Register mounts every friendly procedure on r
func (s *Service) Register(r rpc.Router) {
	rpc.Unary(r, ServicePath+"Invite", s.Invite)
	rpc.Unary(r, ServicePath+"Respond", s.Respond)
	rpc.Unary(r, ServicePath+"ListInvites", s.ListInvites)
	rpc.Unary(r, ServicePath+"Availability", s.Availability)
	rpc.Unary(r, ServicePath+"MatchHistory", s.MatchHistory)
}

func (s *Service) Invite(ctx context.Context, req *InviteRequest) (*models.FriendlyInvite, error) {
	return s.app.Invite(ctx, *req)
}

func (s *Service) Respond(ctx context.Context, req *RespondRequest) (*RespondResponse, error) {
	return s.app.Respond(ctx, *req)
}

func (s *Service) ListInvites(ctx context.Context, req *ClubRequest) (*InvitesResponse, error) {
	return s.app.ListInvites(ctx, req.ClubID)
}

func (s *Service) Availability(ctx context.Context, req *ClubRequest) (*AvailabilityResponse, error) {
	return s.app.Availability(ctx, req.ClubID)
}

func (s *Service) MatchHistory(ctx context.Context, req *HistoryRequest) (*MatchesResponse, error) {
	matches, err := s.app.MatchHistory(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &MatchesResponse{Matches: matches}, nil
}
