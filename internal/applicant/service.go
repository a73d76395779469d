package applicant

import (
	"context"
	"log/slog"
	"time"

	apperrors "github.com/edi-app/edi-intake/internal"
	"github.com/edi-app/edi-intake/internal/auth"
	applicantDatamodel "github.com/edi-app/edi-intake/internal/core/datamodel/applicant"
	"github.com/edi-app/edi-intake/internal/core/events"
	"github.com/edi-app/edi-intake/internal/policy"
	"github.com/edi-app/edi-intake/internal/sequence"
	"github.com/google/uuid"
)

// Repository defines the data access methods for applicant records. Create
// must fail with the conflict sentinel when the auto number is already taken.
type Repository interface {
	Create(applicant *applicantDatamodel.Applicant) error
	GetByID(id string) (*applicantDatamodel.Applicant, error)
	List(filter Filter) ([]*applicantDatamodel.Applicant, error)
	Update(applicant *applicantDatamodel.Applicant) error
	Delete(id string) error
}

type Service struct {
	repo      Repository
	allocator sequence.Allocator
	engine    *policy.Engine
	eventBus  *events.EventBus
	logger    *slog.Logger
}

func NewService(repo Repository, allocator sequence.Allocator, engine *policy.Engine, eventBus *events.EventBus, logger *slog.Logger) *Service {
	return &Service{
		repo:      repo,
		allocator: allocator,
		engine:    engine,
		eventBus:  eventBus,
		logger:    logger,
	}
}

func subjectOf(principal *auth.Principal) policy.Subject {
	if principal == nil {
		return policy.Subject{}
	}
	return principal.Subject()
}

func rowOf(a *Applicant) policy.Row {
	row := policy.Row{ApplicantID: a.ID}
	if a.CollectedBy != nil {
		row.CollectedBy = *a.CollectedBy
	}
	return row
}

// Insert validates the intake payload, allocates the next auto number and
// persists the record. The number is allocated outside the insert itself, so
// a failed insert leaves a gap in the series rather than a reused number.
func (s *Service) Insert(ctx context.Context, principal *auth.Principal, dto CreateApplicantDTO) (*Applicant, error) {
	subject := subjectOf(principal)

	var collectedBy string
	if principal != nil {
		collectedBy = principal.UserID
	}

	if err := s.engine.Authorize(policy.ActionInsert, subject, policy.Row{CollectedBy: collectedBy}); err != nil {
		s.logger.Warn("applicant insert denied", "user_id", collectedBy)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		s.logger.Warn("applicant validation failed", "error", err, "user_id", collectedBy)
		return nil, err
	}

	applicant := dto.toDomain()
	applicant.ID = uuid.New().String()
	applicant.CreatedAt = time.Now()
	if collectedBy != "" {
		applicant.CollectedBy = &collectedBy
	}

	number, err := s.allocator.Next(ctx)
	if err != nil {
		return nil, err
	}
	applicant.AutoNumber = number

	if err := s.repo.Create(ToDataModel(applicant)); err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeConflict {
			s.logger.Warn("auto number collision", "auto_number", number)
			return nil, err
		}
		s.logger.Error("failed to create applicant", "error", err, "auto_number", number)
		return nil, apperrors.NewStoreUnavailableError("creating applicant failed", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewApplicantCreatedEvent(applicant.ID, applicant.AutoNumber, collectedBy))
	}

	s.logger.Info("applicant created",
		"applicant_id", applicant.ID,
		"auto_number", applicant.AutoNumber,
		"collected_by", collectedBy)

	return applicant, nil
}

// Select lists applicants ordered by auto number. Rows the select predicate
// denies are filtered out silently; the caller sees a shorter page, not an
// error.
func (s *Service) Select(ctx context.Context, principal *auth.Principal, filter Filter) (*ApplicantsResponse, error) {
	filter.Normalize()

	rows, err := s.repo.List(filter)
	if err != nil {
		s.logger.Error("failed to list applicants", "error", err)
		return nil, apperrors.NewStoreUnavailableError("listing applicants failed", err)
	}

	subject := subjectOf(principal)
	applicants := make([]*Applicant, 0, len(rows))
	for _, row := range rows {
		applicant := FromDataModel(row)
		if s.engine.Evaluate(policy.ActionSelect, subject, rowOf(applicant)).Allowed {
			applicants = append(applicants, applicant)
		}
	}

	return &ApplicantsResponse{
		Applicants: applicants,
		Limit:      filter.Limit,
		Offset:     filter.Offset,
	}, nil
}

// GetByID fetches one record. Unlike listing, a select-predicate deny here is
// explicit: the caller named the row, so they get the authorization error.
func (s *Service) GetByID(ctx context.Context, principal *auth.Principal, id string) (*Applicant, error) {
	row, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return nil, err
		}
		s.logger.Error("applicant lookup failed", "error", err, "applicant_id", id)
		return nil, apperrors.NewStoreUnavailableError("applicant lookup failed", err)
	}

	applicant := FromDataModel(row)
	if err := s.engine.Authorize(policy.ActionSelect, subjectOf(principal), rowOf(applicant)); err != nil {
		s.logger.Warn("applicant read denied", "applicant_id", id)
		return nil, err
	}

	return applicant, nil
}

// Update applies an elevated-path patch. The capability check runs before
// anything else; callers without it never touch the store. The employee
// total is recomputed after the patch lands so it stays derived.
func (s *Service) Update(ctx context.Context, capability policy.Capability, actorID string, id string, dto UpdateApplicantDTO) (*Applicant, error) {
	if err := s.engine.AuthorizeMutation(capability); err != nil {
		s.logger.Warn("applicant update denied", "applicant_id", id, "actor_id", actorID)
		return nil, err
	}

	if err := dto.Validate(); err != nil {
		s.logger.Warn("applicant patch validation failed", "error", err, "applicant_id", id)
		return nil, err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return nil, err
		}
		s.logger.Error("applicant lookup failed", "error", err, "applicant_id", id)
		return nil, apperrors.NewStoreUnavailableError("applicant lookup failed", err)
	}

	applicant := FromDataModel(row)
	changed := dto.Apply(applicant)
	if len(changed) == 0 {
		return applicant, nil
	}
	applicant.RecomputeTotalEmployees()

	if err := s.repo.Update(ToDataModel(applicant)); err != nil {
		s.logger.Error("failed to update applicant", "error", err, "applicant_id", id)
		return nil, apperrors.NewStoreUnavailableError("updating applicant failed", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewApplicantUpdatedEvent(applicant.ID, changed, actorID))
	}

	s.logger.Info("applicant updated",
		"applicant_id", applicant.ID,
		"changed_fields", changed,
		"actor_id", actorID)

	return applicant, nil
}

// Delete removes a record on the elevated path. Like Update, the capability
// check precedes any store access.
func (s *Service) Delete(ctx context.Context, capability policy.Capability, actorID string, id string) error {
	if err := s.engine.AuthorizeMutation(capability); err != nil {
		s.logger.Warn("applicant delete denied", "applicant_id", id, "actor_id", actorID)
		return err
	}

	row, err := s.repo.GetByID(id)
	if err != nil {
		if appErr, ok := apperrors.IsAppError(err); ok && appErr.Type == apperrors.ErrorTypeNotFound {
			return err
		}
		s.logger.Error("applicant lookup failed", "error", err, "applicant_id", id)
		return apperrors.NewStoreUnavailableError("applicant lookup failed", err)
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error("failed to delete applicant", "error", err, "applicant_id", id)
		return apperrors.NewStoreUnavailableError("deleting applicant failed", err)
	}

	if s.eventBus != nil {
		s.eventBus.Publish(ctx, events.NewApplicantDeletedEvent(id, row.AutoNumber, actorID))
	}

	s.logger.Info("applicant deleted",
		"applicant_id", id,
		"auto_number", row.AutoNumber,
		"actor_id", actorID)

	return nil
}
