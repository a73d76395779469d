// Package sequence mints the human-facing applicant numbers. Values are
// strictly increasing and unique across concurrent allocators; gaps are
// permitted and expected, a number handed to a caller whose write later
// fails is never reissued.
package sequence

import (
	"context"
	"log/slog"

	apperrors "github.com/edi-app/edi-intake/internal"
)

// ApplicantCounter is the counter row backing applicant auto numbers.
const ApplicantCounter = "applicant_auto_number"

// Allocator is what write paths depend on.
type Allocator interface {
	Next(ctx context.Context) (int64, error)
}

// Store is the persistence port. Increment must be a single atomic
// read-modify-write on the counter row; linearizability comes from the
// store, not from application-level locking.
type Store interface {
	Increment(ctx context.Context, name string) (int64, error)
	Ensure(ctx context.Context, name string) error
	Current(ctx context.Context, name string) (int64, error)
}

type Service struct {
	store  Store
	name   string
	logger *slog.Logger
}

func NewService(store Store, name string, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		name:   name,
		logger: logger,
	}
}

// Next returns the next value of the counter. Allocation happens outside
// the caller's transaction so allocators never block one another; the cost
// of that choice is a permanent gap whenever the caller's write fails.
func (s *Service) Next(ctx context.Context) (int64, error) {
	value, err := s.store.Increment(ctx, s.name)
	if err != nil {
		s.logger.Error("sequence allocation failed", "sequence", s.name, "error", err)
		return 0, apperrors.NewStoreUnavailableError("sequence allocation failed", err)
	}

	s.logger.Debug("sequence value allocated", "sequence", s.name, "value", value)
	return value, nil
}

// EnsureCounter creates the counter row if missing. Safe to call on every
// startup; it never resets an existing counter.
func (s *Service) EnsureCounter(ctx context.Context) error {
	if err := s.store.Ensure(ctx, s.name); err != nil {
		s.logger.Error("ensuring sequence counter failed", "sequence", s.name, "error", err)
		return apperrors.NewStoreUnavailableError("ensuring sequence counter failed", err)
	}
	return nil
}

// Current reports the last allocated value without advancing the counter.
func (s *Service) Current(ctx context.Context) (int64, error) {
	value, err := s.store.Current(ctx, s.name)
	if err != nil {
		s.logger.Error("reading sequence counter failed", "sequence", s.name, "error", err)
		return 0, apperrors.NewStoreUnavailableError("reading sequence counter failed", err)
	}
	return value, nil
}
