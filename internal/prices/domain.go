package prices

import "time"

// Price is one entry in the append-only price history of a product.
type Price struct {
	ID          int64
	Product     string
	Amount      float64
	Currency    string
	SetBy       int64
	EffectiveAt time.Time
	CreatedAt   time.Time
}
