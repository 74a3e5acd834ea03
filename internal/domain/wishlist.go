package domain

import (
	"time"

	"github.com/google/uuid"
)

// MaxCompareCampsites caps the side-by-side comparison size.
const MaxCompareCampsites = 3

type WishlistItem struct {
	ID         uuid.UUID `db:"id" json:"id"`
	UserID     uuid.UUID `db:"user_account_id" json:"user_id"`
	CampsiteID uuid.UUID `db:"campsite_id" json:"campsite_id"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// WishlistListItem joins the saved row with the campsite summary the
// wishlist page renders.
type WishlistListItem struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	CampsiteID    uuid.UUID    `db:"campsite_id" json:"campsite_id"`
	CreatedAt     time.Time    `db:"created_at" json:"created_at"`
	CampsiteName  string       `db:"campsite_name" json:"campsite_name"`
	CampsiteSlug  string       `db:"campsite_slug" json:"campsite_slug"`
	Type          CampsiteType `db:"campsite_type" json:"type"`
	ProvinceName  *string      `db:"province_name" json:"province_name,omitempty"`
	PriceMin      int          `db:"price_min" json:"price_min"`
	PriceMax      int          `db:"price_max" json:"price_max"`
	HeroImageURL  *string      `db:"hero_image_url" json:"hero_image_url,omitempty"`
	AverageRating float64      `db:"average_rating" json:"average_rating"`
	ReviewCount   int          `db:"review_count" json:"review_count"`
}
