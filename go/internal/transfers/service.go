package transfers

import (
	"context"

	"github.com/google/uuid"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/mcdev12/matchday/go/internal/rpc"
)

// ServicePath is the Connect route prefix of the transfer service
const ServicePath = "/matchday.transfer.v1.TransferService/"

// TransfersApp defines what the service layer needs from the transfers application
type TransfersApp interface {
	MakeDirectOffer(ctx context.Context, req DirectOfferRequest) (*models.TransferOffer, error)
	MakeSwapOffer(ctx context.Context, req SwapOfferRequest) (*models.TransferOffer, error)
	RespondToOffer(ctx context.Context, req RespondRequest) (*TransferResult, error)
	ProcessTransfer(ctx context.Context, offerID uuid.UUID) (*TransferResult, error)
	ListOffers(ctx context.Context, clubID uuid.UUID) (*OffersResponse, error)
	History(ctx context.Context, req HistoryRequest) ([]models.TransferRecord, error)
}

// Service exposes transfer operations over Connect
type Service struct {
	app TransfersApp
}

// NewService creates a new transfers service
func NewService(app TransfersApp) *Service {
	return &Service{
		app: app,
	}
}

// Register mounts every transfer procedure on r
func (s *Service) Register(r rpc.Router) {
	rpc.Unary(r, ServicePath+"MakeDirectOffer", s.MakeDirectOffer)
	rpc.Unary(r, ServicePath+"MakeSwapOffer", s.MakeSwapOffer)
	rpc.Unary(r, ServicePath+"RespondToOffer", s.RespondToOffer)
	rpc.Unary(r, ServicePath+"ProcessTransfer", s.ProcessTransfer)
	rpc.Unary(r, ServicePath+"ListOffers", s.ListOffers)
	rpc.Unary(r, ServicePath+"History", s.History)
}

func (s *Service) MakeDirectOffer(ctx context.Context, req *DirectOfferRequest) (*models.TransferOffer, error) {
	return s.app.MakeDirectOffer(ctx, *req)
}

func (s *Service) MakeSwapOffer(ctx context.Context, req *SwapOfferRequest) (*models.TransferOffer, error) {
	return s.app.MakeSwapOffer(ctx, *req)
}

func (s *Service) RespondToOffer(ctx context.Context, req *RespondRequest) (*TransferResult, error) {
	return s.app.RespondToOffer(ctx, *req)
}

func (s *Service) ProcessTransfer(ctx context.Context, req *OfferRequest) (*TransferResult, error) {
	return s.app.ProcessTransfer(ctx, req.OfferID)
}

func (s *Service) ListOffers(ctx context.Context, req *ClubRequest) (*OffersResponse, error) {
	return s.app.ListOffers(ctx, req.ClubID)
}

func (s *Service) History(ctx context.Context, req *HistoryRequest) (*HistoryResponse, error) {
	records, err := s.app.History(ctx, *req)
	if err != nil {
		return nil, err
	}
	return &HistoryResponse{Transfers: records}, nil
}
