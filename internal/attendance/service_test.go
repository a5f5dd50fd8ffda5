package attendance

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/programmistyigit/blessing-antigravity-sub002/internal/platform/httpx"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/sections"
	"github.com/programmistyigit/blessing-antigravity-sub002/internal/shared"

	_ "github.com/programmistyigit/blessing-antigravity-sub002/testing"
)

type memoryRepo struct {
	nextID  int64
	records []Record
}

func (m *memoryRepo) Insert(_ context.Context, rec Record) (Record, error) {
	m.nextID++
	rec.ID = m.nextID
	m.records = append(m.records, rec)
	return rec, nil
}

func (m *memoryRepo) LastFor(_ context.Context, userID int64) (Record, error) {
	for i := len(m.records) - 1; i >= 0; i-- {
		if m.records[i].UserID == userID {
			return m.records[i], nil
		}
	}
	return Record{}, shared.ErrNotFound
}

func (m *memoryRepo) ListFor(_ context.Context, userID int64, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.UserID == userID && !rec.At.Before(from) && rec.At.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

func (m *memoryRepo) ListForSection(_ context.Context, sectionID int64, from, to time.Time) ([]Record, error) {
	var out []Record
	for _, rec := range m.records {
		if rec.SectionID == sectionID && !rec.At.Before(from) && rec.At.Before(to) {
			out = append(out, rec)
		}
	}
	return out, nil
}

type staticSections map[int64]sections.Section

func (s staticSections) GetSection(_ context.Context, id int64) (sections.Section, error) {
	section, ok := s[id]
	if !ok {
		return sections.Section{}, shared.ErrNotFound
	}
	return section, nil
}

// Tashkent city centre with a 150m geofence.
var barn = sections.Section{
	ID:              1,
	Name:            "Barn A",
	Latitude:        41.311081,
	Longitude:       69.240562,
	GeofenceRadiusM: 150,
}

func newTestService() (*Service, *memoryRepo) {
	repo := &memoryRepo{}
	svc := NewService(repo, staticSections{1: barn})
	return svc, repo
}

func TestCheckInInsideGeofence(t *testing.T) {
	svc, repo := newTestService()

	// about 60m north of the barn
	rec, err := svc.CheckIn(context.Background(), CheckInput{
		UserID:    7,
		SectionID: 1,
		Latitude:  41.31162,
		Longitude: 69.240562,
	})
	require.NoError(t, err)
	require.Equal(t, KindCheckIn, rec.Kind)
	require.Len(t, repo.records, 1)
}

func TestCheckInOutsideGeofence(t *testing.T) {
	svc, repo := newTestService()

	// roughly 1.1km away
	_, err := svc.CheckIn(context.Background(), CheckInput{
		UserID:    7,
		SectionID: 1,
		Latitude:  41.321081,
		Longitude: 69.240562,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
	require.Empty(t, repo.records)
}

func TestCheckInUnknownSection(t *testing.T) {
	svc, _ := newTestService()
	_, err := svc.CheckIn(context.Background(), CheckInput{UserID: 7, SectionID: 99, Latitude: barn.Latitude, Longitude: barn.Longitude})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestDoubleCheckInRejected(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	in := CheckInput{UserID: 7, SectionID: 1, Latitude: barn.Latitude, Longitude: barn.Longitude}

	_, err := svc.CheckIn(ctx, in)
	require.NoError(t, err)

	_, err = svc.CheckIn(ctx, in)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestCheckOutRequiresCheckIn(t *testing.T) {
	svc, _ := newTestService()
	ctx := context.Background()
	in := CheckInput{UserID: 7, SectionID: 1, Latitude: barn.Latitude, Longitude: barn.Longitude}

	_, err := svc.CheckOut(ctx, in)
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CheckIn(ctx, in)
	require.NoError(t, err)

	rec, err := svc.CheckOut(ctx, in)
	require.NoError(t, err)
	require.Equal(t, KindCheckOut, rec.Kind)
}

func TestHistoryWindowDefaults(t *testing.T) {
	svc, repo := newTestService()
	now := time.Now()
	svc.now = func() time.Time { return now }

	repo.records = []Record{
		{ID: 1, UserID: 7, SectionID: 1, Kind: KindCheckIn, At: now.AddDate(0, 0, -40)},
		{ID: 2, UserID: 7, SectionID: 1, Kind: KindCheckIn, At: now.AddDate(0, 0, -2)},
	}
	repo.nextID = 2

	records, err := svc.History(context.Background(), 7, time.Time{}, time.Time{})
	require.NoError(t, err)
	require.Len(t, records, 1)
	require.Equal(t, int64(2), records[0].ID)
}

func TestHaversine(t *testing.T) {
	// same point
	require.InDelta(t, 0, haversineMeters(41.31, 69.24, 41.31, 69.24), 0.01)

	// one degree of latitude is about 111.2km
	d := haversineMeters(41, 69, 42, 69)
	require.InDelta(t, 111195, d, 200)
}
