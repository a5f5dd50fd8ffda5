package attendance

import "time"

// Record is a geofenced check-in or check-out event for a worker.
type Record struct {
	ID        int64
	UserID    int64
	SectionID int64
	Kind      string
	Latitude  float64
	Longitude float64
	At        time.Time
}

// Record kinds.
const (
	KindCheckIn  = "CHECK_IN"
	KindCheckOut = "CHECK_OUT"
)
