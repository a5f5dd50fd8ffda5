package batches

import "time"

// Batch statuses.
const (
	StatusActive = "ACTIVE"
	StatusClosed = "CLOSED"
)

// Batch is a production run housed in a section.
type Batch struct {
	ID           int64
	SectionID    int64
	Name         string
	InitialCount int
	Status       string
	StartedAt    time.Time
	ClosedAt     time.Time
	CreatedAt    time.Time
}
