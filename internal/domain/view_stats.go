package domain

import (
	"time"

	"github.com/google/uuid"
)

// CampsiteViewDay is one campsite's view counter for a single UTC day.
type CampsiteViewDay struct {
	CampsiteID uuid.UUID `db:"campsite_id"`
	Day        time.Time `db:"day"`
	Views      int64     `db:"views"`
}

// PopularityInput collects everything the nightly recompute weighs for one
// campsite: recent traffic plus the approved-review aggregate.
type PopularityInput struct {
	CampsiteID    uuid.UUID `db:"campsite_id"`
	Views7d       int64     `db:"views_7d"`
	Views30d      int64     `db:"views_30d"`
	AverageRating float64   `db:"average_rating"`
	ReviewCount   int       `db:"review_count"`
}
