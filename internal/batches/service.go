package batches

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for batches.
type RepositoryPort interface {
	ListBatches(ctx context.Context, sectionID int64) ([]Batch, error)
	GetBatch(ctx context.Context, id int64) (Batch, error)
	CreateBatch(ctx context.Context, b Batch) (Batch, error)
	CloseBatch(ctx context.Context, id int64) (Batch, error)
}

// CreateInput carries the fields accepted on batch creation.
type CreateInput struct {
	SectionID    int64
	Name         string
	InitialCount int
	StartedAt    time.Time
}

// Service handles batch business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListBatches returns batches, optionally filtered by section.
func (s *Service) ListBatches(ctx context.Context, sectionID int64) ([]Batch, error) {
	return s.repo.ListBatches(ctx, sectionID)
}

// GetBatch fetches a batch by ID.
func (s *Service) GetBatch(ctx context.Context, id int64) (Batch, error) {
	batch, err := s.repo.GetBatch(ctx, id)
	if err != nil {
		return Batch{}, mapRepoError(err)
	}
	return batch, nil
}

// CreateBatch validates and inserts a new active batch.
func (s *Service) CreateBatch(ctx context.Context, in CreateInput) (Batch, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Batch{}, fmt.Errorf("%w: batch name required", httpx.ErrValidation)
	}
	if in.SectionID <= 0 {
		return Batch{}, fmt.Errorf("%w: section required", httpx.ErrValidation)
	}
	if in.InitialCount <= 0 {
		return Batch{}, fmt.Errorf("%w: initial count must be positive", httpx.ErrValidation)
	}
	startedAt := in.StartedAt
	if startedAt.IsZero() {
		startedAt = time.Now()
	}
	created, err := s.repo.CreateBatch(ctx, Batch{
		SectionID:    in.SectionID,
		Name:         name,
		InitialCount: in.InitialCount,
		StartedAt:    startedAt,
	})
	if err != nil {
		return Batch{}, mapRepoError(err)
	}
	return created, nil
}

// CloseBatch marks a batch closed. Idempotent.
func (s *Service) CloseBatch(ctx context.Context, id int64) (Batch, error) {
	closed, err := s.repo.CloseBatch(ctx, id)
	if err != nil {
		return Batch{}, mapRepoError(err)
	}
	return closed, nil
}

func mapRepoError(err error) error {
	switch {
	case errors.Is(err, ErrUnknownSection):
		return fmt.Errorf("%w: section does not exist", httpx.ErrValidation)
	case errors.Is(err, shared.ErrNotFound):
		return fmt.Errorf("%w: batch", httpx.ErrNotFound)
	default:
		return err
	}
}
