package domain

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
)

type CampsiteType string

const (
	CampsiteTypeTent     CampsiteType = "tent"
	CampsiteTypeGlamping CampsiteType = "glamping"
	CampsiteTypeBungalow CampsiteType = "bungalow"
	CampsiteTypeRV       CampsiteType = "rv"
	CampsiteTypeCabin    CampsiteType = "cabin"
)

var CampsiteTypesOrdered = []CampsiteType{
	CampsiteTypeTent,
	CampsiteTypeGlamping,
	CampsiteTypeBungalow,
	CampsiteTypeRV,
	CampsiteTypeCabin,
}

func (t CampsiteType) Valid() bool {
	for _, known := range CampsiteTypesOrdered {
		if t == known {
			return true
		}
	}
	return false
}

type CampsiteStatus string

const (
	CampsiteStatusPending   CampsiteStatus = "pending"
	CampsiteStatusPublished CampsiteStatus = "published"
	CampsiteStatusArchived  CampsiteStatus = "archived"
)

// StringList is stored as a jsonb column (amenities, gallery).
type StringList []string

func (l StringList) Value() (driver.Value, error) {
	if l == nil {
		l = StringList{}
	}
	return json.Marshal(l)
}

func (l *StringList) Scan(value any) error {
	if value == nil {
		*l = StringList{}
		return nil
	}
	raw, ok := value.([]byte)
	if !ok {
		return errors.New("string list must be []byte")
	}
	return json.Unmarshal(raw, l)
}

type Campsite struct {
	ID            uuid.UUID      `db:"id" json:"id"`
	Name          string         `db:"name" json:"name"`
	Slug          string         `db:"slug" json:"slug"`
	Type          CampsiteType   `db:"campsite_type" json:"type"`
	Status        CampsiteStatus `db:"status" json:"-"`
	Description   *string        `db:"description" json:"description,omitempty"`
	ProvinceID    int            `db:"province_id" json:"province_id"`
	ProvinceName  *string        `db:"province_name" json:"province_name,omitempty"`
	District      *string        `db:"district" json:"district,omitempty"`
	Latitude      float64        `db:"latitude" json:"latitude"`
	Longitude     float64        `db:"longitude" json:"longitude"`
	PriceMin      int            `db:"price_min" json:"price_min"`
	PriceMax      int            `db:"price_max" json:"price_max"`
	Amenities     StringList     `db:"amenities" json:"amenities"`
	HeroImage     *string        `db:"hero_image_url" json:"hero_image_url,omitempty"`
	Gallery       StringList     `db:"gallery" json:"gallery,omitempty"`
	Contact       *string        `db:"contact" json:"contact,omitempty"`
	AverageRating float64        `db:"average_rating" json:"average_rating"`
	ReviewCount   int            `db:"review_count" json:"review_count"`
	Popularity    float64        `db:"popularity" json:"-"`
	CreatedAt     time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt     time.Time      `db:"updated_at" json:"updated_at"`
	DeletedAt     *time.Time     `db:"deleted_at" json:"-"`
}

func (c *Campsite) IsPublished() bool {
	return c.Status == CampsiteStatusPublished && c.DeletedAt == nil
}

type CampsiteSort string

const (
	CampsiteSortRecommended CampsiteSort = "recommended"
	CampsiteSortPriceAsc    CampsiteSort = "price_asc"
	CampsiteSortPriceDesc   CampsiteSort = "price_desc"
	CampsiteSortRating      CampsiteSort = "rating"
	CampsiteSortNewest      CampsiteSort = "newest"
)

type CampsiteFilter struct {
	Query      string
	ProvinceID *int
	Types      []CampsiteType
	Amenities  []string
	MinPrice   *int
	MaxPrice   *int
	MinRating  *float64
	Sort       CampsiteSort
	Limit      int
	Offset     int
}

// MapBounds is a viewport rectangle in WGS84 degrees.
type MapBounds struct {
	MinLat float64
	MaxLat float64
	MinLng float64
	MaxLng float64
}

func (b MapBounds) Validate() error {
	if b.MinLat < -90 || b.MaxLat > 90 || b.MinLng < -180 || b.MaxLng > 180 {
		return errors.New("bounds out of range")
	}
	if b.MinLat >= b.MaxLat || b.MinLng >= b.MaxLng {
		return errors.New("bounds must satisfy min < max")
	}
	return nil
}

// CampsiteMarker is the trimmed row the map viewport query returns.
type CampsiteMarker struct {
	ID            uuid.UUID    `db:"id" json:"id"`
	Name          string       `db:"name" json:"name"`
	Slug          string       `db:"slug" json:"slug"`
	Type          CampsiteType `db:"campsite_type" json:"type"`
	Latitude      float64      `db:"latitude" json:"latitude"`
	Longitude     float64      `db:"longitude" json:"longitude"`
	PriceMin      int          `db:"price_min" json:"price_min"`
	AverageRating float64      `db:"average_rating" json:"average_rating"`
}
