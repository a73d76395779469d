package identity

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/edi-app/edi-intake/internal"
	userDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/user"
	"github.com/edi-app/edi-intake/internal/core/events"
	"github.com/google/uuid"
)

// Repository defines the data access methods for users. Create must fail
// with the conflict sentinel when the email is already registered.
type Repository interface {
	Create(user *userDatamodel.User) error
	GetByEmail(email string) (*userDatamodel.User, error)
}

type Service struct {
	repo     Repository
	eventBus *events.EventBus
	logger   *slog.Logger
}

func NewService(repo Repository, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		eventBus: eventBus,
		logger:   logger,
	}
}

// CreateUser registers a user with a pre-hashed credential. The email is
// stored lowercased so uniqueness is case-insensitive.
func (s *Service) CreateUser(ctx context.Context, dto CreateUserDTO) (*User, error) {
	if err := dto.Validate(); err != nil {
		s.logger.Warn("user validation failed", "error", err, "email", dto.Email)
		return nil, err
	}

	user := &User{
		ID:           uuid.New().String(),
		Email:        NormalizeEmail(dto.Email),
		PasswordHash: dto.PasswordHash,
		Role:         dto.Role,
		CreatedAt:    time.Now(),
	}

	if err := s.repo.Create(ToDataModel(user)); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeConflict {
			s.logger.Warn("duplicate email rejected", "email", user.Email)
			return nil, err
		}
		s.logger.Error("failed to create user", "error", err, "email", user.Email)
		return nil, apperrors.NewStoreUnavailableError("creating user failed", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewUserCreatedEvent(user.ID, user.Email, user.Role))
	}

	s.logger.Info("user created",
		"user_id", user.ID,
		"email", user.Email,
		"role", user.Role)

	return user, nil
}

// FindByEmail looks a user up by address, case-insensitively.
func (s *Service) FindByEmail(ctx context.Context, email string) (*User, error) {
	dataUser, err := s.repo.GetByEmail(NormalizeEmail(email))
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return nil, err
		}
		s.logger.Error("user lookup failed", "error", err, "email", email)
		return nil, apperrors.NewStoreUnavailableError("user lookup failed", err)
	}

	return FromDataModel(dataUser), nil
}
