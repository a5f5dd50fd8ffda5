package sections

import "time"

// Section is a physical barn with a geofence for attendance check-in.
type Section struct {
	ID              int64
	Name            string
	Capacity        int
	Latitude        float64
	Longitude       float64
	GeofenceRadiusM float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}
