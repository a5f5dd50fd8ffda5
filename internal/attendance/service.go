package attendance

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/sections"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"
)

// RepositoryPort defines data access methods for attendance records.
type RepositoryPort interface {
	Insert(ctx context.Context, rec Record) (Record, error)
	LastFor(ctx context.Context, userID int64) (Record, error)
	ListFor(ctx context.Context, userID int64, from, to time.Time) ([]Record, error)
	ListForSection(ctx context.Context, sectionID int64, from, to time.Time) ([]Record, error)
}

// SectionSource resolves section geofences.
type SectionSource interface {
	GetSection(ctx context.Context, id int64) (sections.Section, error)
}

// CheckInput carries a check-in or check-out attempt.
type CheckInput struct {
	UserID    int64
	SectionID int64
	Latitude  float64
	Longitude float64
}

// Service handles attendance business logic. Check-ins are only accepted
// inside the target section's geofence.
type Service struct {
	repo     RepositoryPort
	sections SectionSource
	now      func() time.Time
}

// NewService builds Service instance.
func NewService(repo RepositoryPort, sectionSource SectionSource) *Service {
	return &Service{repo: repo, sections: sectionSource, now: time.Now}
}

// CheckIn records a worker's arrival at a section.
func (s *Service) CheckIn(ctx context.Context, in CheckInput) (Record, error) {
	return s.record(ctx, in, KindCheckIn)
}

// CheckOut records a worker's departure from a section.
func (s *Service) CheckOut(ctx context.Context, in CheckInput) (Record, error) {
	return s.record(ctx, in, KindCheckOut)
}

func (s *Service) record(ctx context.Context, in CheckInput, kind string) (Record, error) {
	section, err := s.sections.GetSection(ctx, in.SectionID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return Record{}, fmt.Errorf("%w: section does not exist", httpx.ErrValidation)
		}
		return Record{}, err
	}
	if section.GeofenceRadiusM > 0 {
		distance := haversineMeters(section.Latitude, section.Longitude, in.Latitude, in.Longitude)
		if distance > section.GeofenceRadiusM {
			return Record{}, fmt.Errorf("%w: location is %.0fm from section %q, outside the %.0fm geofence",
				httpx.ErrValidation, distance, section.Name, section.GeofenceRadiusM)
		}
	}
	last, err := s.repo.LastFor(ctx, in.UserID)
	if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return Record{}, err
	}
	if err == nil && last.Kind == kind {
		if kind == KindCheckIn {
			return Record{}, fmt.Errorf("%w: already checked in", httpx.ErrValidation)
		}
		return Record{}, fmt.Errorf("%w: not checked in", httpx.ErrValidation)
	}
	if errors.Is(err, shared.ErrNotFound) && kind == KindCheckOut {
		return Record{}, fmt.Errorf("%w: not checked in", httpx.ErrValidation)
	}
	return s.repo.Insert(ctx, Record{
		UserID:    in.UserID,
		SectionID: in.SectionID,
		Kind:      kind,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		At:        s.now(),
	})
}

// History returns a user's records for the given window. A zero window
// defaults to the last 30 days.
func (s *Service) History(ctx context.Context, userID int64, from, to time.Time) ([]Record, error) {
	from, to = normalizeWindow(from, to, s.now())
	return s.repo.ListFor(ctx, userID, from, to)
}

// SectionHistory returns a section's records for the given window.
func (s *Service) SectionHistory(ctx context.Context, sectionID int64, from, to time.Time) ([]Record, error) {
	from, to = normalizeWindow(from, to, s.now())
	return s.repo.ListForSection(ctx, sectionID, from, to)
}

func normalizeWindow(from, to, now time.Time) (time.Time, time.Time) {
	if to.IsZero() {
		to = now
	}
	if from.IsZero() {
		from = to.AddDate(0, 0, -30)
	}
	return from, to
}

const earthRadiusM = 6371000

// haversineMeters returns the great-circle distance between two points.
func haversineMeters(lat1, lon1, lat2, lon2 float64) float64 {
	rad := func(deg float64) float64 { return deg * math.Pi / 180 }
	dLat := rad(lat2 - lat1)
	dLon := rad(lon2 - lon1)
	a := math.Sin(dLat/2)*math.Sin(dLat/2) +
		math.Cos(rad(lat1))*math.Cos(rad(lat2))*math.Sin(dLon/2)*math.Sin(dLon/2)
	return 2 * earthRadiusM * math.Asin(math.Sqrt(a))
}
