package sections

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for sections.
type RepositoryPort interface {
	ListSections(ctx context.Context) ([]Section, error)
	GetSection(ctx context.Context, id int64) (Section, error)
	CreateSection(ctx context.Context, s Section) (Section, error)
	UpdateSection(ctx context.Context, s Section) (Section, error)
}

// Input carries the fields accepted on section create and update.
type Input struct {
	Name            string
	Capacity        int
	Latitude        float64
	Longitude       float64
	GeofenceRadiusM float64
}

// Service handles section business logic.
type Service struct {
	repo RepositoryPort
}

// NewService builds Service instance.
func NewService(repo RepositoryPort) *Service {
	return &Service{repo: repo}
}

// ListSections returns all sections.
func (s *Service) ListSections(ctx context.Context) ([]Section, error) {
	return s.repo.ListSections(ctx)
}

// GetSection fetches a section by ID.
func (s *Service) GetSection(ctx context.Context, id int64) (Section, error) {
	section, err := s.repo.GetSection(ctx, id)
	if err != nil {
		return Section{}, mapRepoError(err)
	}
	return section, nil
}

// CreateSection validates and inserts a new section.
func (s *Service) CreateSection(ctx context.Context, in Input) (Section, error) {
	section, err := validateInput(in)
	if err != nil {
		return Section{}, err
	}
	return s.repo.CreateSection(ctx, section)
}

// UpdateSection validates and applies changes to an existing section.
func (s *Service) UpdateSection(ctx context.Context, id int64, in Input) (Section, error) {
	section, err := validateInput(in)
	if err != nil {
		return Section{}, err
	}
	section.ID = id
	updated, err := s.repo.UpdateSection(ctx, section)
	if err != nil {
		return Section{}, mapRepoError(err)
	}
	return updated, nil
}

func validateInput(in Input) (Section, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Section{}, fmt.Errorf("%w: section name required", httpx.ErrValidation)
	}
	if in.Capacity < 0 {
		return Section{}, fmt.Errorf("%w: capacity must not be negative", httpx.ErrValidation)
	}
	if in.GeofenceRadiusM < 0 {
		return Section{}, fmt.Errorf("%w: geofence radius must not be negative", httpx.ErrValidation)
	}
	return Section{
		Name:            name,
		Capacity:        in.Capacity,
		Latitude:        in.Latitude,
		Longitude:       in.Longitude,
		GeofenceRadiusM: in.GeofenceRadiusM,
	}, nil
}

func mapRepoError(err error) error {
	if errors.Is(err, shared.ErrNotFound) {
		return fmt.Errorf("%w: section", httpx.ErrNotFound)
	}
	return err
}
