package servers

import (
	"context"
	"fmt"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/mcdev12/matchday/go/internal/apperr"
	"github.com/mcdev12/matchday/go/internal/models"
	"github.com/rs/zerolog/log"
	"golang.org/x/crypto/bcrypt"
)

// ServersRepository defines what the app layer needs from the repository
type ServersRepository interface {
	CreateServer(ctx context.Context, s *models.Server) error
	GetServer(ctx context.Context, id uuid.UUID) (*models.Server, error)
	ListServers(ctx context.Context) ([]models.Server, error)
}

// App handles servers business logic
type App struct {
	repo            ServersRepository
	clock           clockwork.Clock
	defaultCapacity int
	validate        *validator.Validate
}

// NewApp creates a new servers App
func NewApp(repo ServersRepository, clock clockwork.Clock, defaultCapacity int) *App {
	return &App{
		repo:            repo,
		clock:           clock,
		defaultCapacity: defaultCapacity,
		validate:        validator.New(),
	}
}

// CreateServer creates a server, hashing its password when one is given
func (a *App) CreateServer(ctx context.Context, req CreateServerRequest) (*models.Server, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}

	s := &models.Server{
		ID:          uuid.New(),
		Name:        req.Name,
		MaxCapacity: req.MaxCapacity,
		CreatedAt:   a.clock.Now().UTC(),
	}
	if s.MaxCapacity == 0 {
		s.MaxCapacity = a.defaultCapacity
	}
	if req.Password != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("failed to hash server password: %w", err)
		}
		s.PasswordHash = string(h)
	}

	if err := a.repo.CreateServer(ctx, s); err != nil {
		return nil, err
	}

	log.Info().Str("server_id", s.ID.String()).Str("name", s.Name).Int("max_capacity", s.MaxCapacity).Msg("created server")
	return s, nil
}

// JoinServer checks the password and capacity of a server.
// Membership itself is recorded when the manager creates a club there.
func (a *App) JoinServer(ctx context.Context, req JoinServerRequest) (*models.Server, error) {
	if err := a.validate.Struct(req); err != nil {
		return nil, apperr.Wrap(apperr.KindValidation, "validation failed", err)
	}
	s, err := a.repo.GetServer(ctx, req.ServerID)
	if err != nil {
		return nil, err
	}
	if err := CheckAccess(s, req.Password); err != nil {
		return nil, err
	}
	return s, nil
}

// GetServer retrieves a server by ID
func (a *App) GetServer(ctx context.Context, id uuid.UUID) (*models.Server, error) {
	return a.repo.GetServer(ctx, id)
}

// ListServers lists every server
func (a *App) ListServers(ctx context.Context) ([]models.Server, error) {
	return a.repo.ListServers(ctx)
}
