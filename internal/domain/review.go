package domain

import (
	"time"

	"github.com/google/uuid"
)

type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

type Review struct {
	ID           uuid.UUID    `db:"id" json:"id"`
	CampsiteID   uuid.UUID    `db:"campsite_id" json:"campsite_id"`
	UserID       uuid.UUID    `db:"user_id" json:"user_id"`
	Rating       int          `db:"rating" json:"rating"`
	Title        *string      `db:"title" json:"title,omitempty"`
	Content      *string      `db:"content" json:"content,omitempty"`
	Status       ReviewStatus `db:"status" json:"status"`
	ModeratedBy  *uuid.UUID   `db:"moderated_by" json:"-"`
	ModeratedAt  *time.Time   `db:"moderated_at" json:"-"`
	RejectReason *string      `db:"reject_reason" json:"-"`
	CreatedAt    time.Time    `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time    `db:"updated_at" json:"updated_at"`
	DeletedAt    *time.Time   `db:"deleted_at" json:"-"`
	DeletedBy    *uuid.UUID   `db:"deleted_by" json:"-"`

	ReviewerName     *string `db:"reviewer_name" json:"-"`
	ReviewerUsername *string `db:"reviewer_username" json:"-"`
	ReviewerAvatar   *string `db:"reviewer_avatar_url" json:"-"`

	CampsiteName *string `db:"campsite_name" json:"-"`

	Photos []ReviewPhoto `json:"photos,omitempty"`
}

type ReviewPhoto struct {
	ID        uuid.UUID `db:"id" json:"id"`
	ReviewID  uuid.UUID `db:"review_id" json:"review_id"`
	ObjectKey string    `db:"object_key" json:"-"`
	URL       string    `db:"url" json:"url"`
	Ordering  int       `db:"ordering" json:"ordering"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

type ReviewAggregate struct {
	CampsiteID    uuid.UUID   `json:"campsite_id"`
	AverageRating float64     `json:"average_rating"`
	TotalReviews  int         `json:"total_reviews"`
	RatingCounts  map[int]int `json:"rating_counts"`
}

type ReviewListResult struct {
	CampsiteID uuid.UUID       `json:"campsite_id"`
	Reviews    []Review        `json:"reviews"`
	Aggregate  ReviewAggregate `json:"aggregate"`
	Limit      int             `json:"limit"`
	Offset     int             `json:"offset"`
}

type ReviewSortField string

const (
	ReviewSortCreatedAt ReviewSortField = "created_at"
	ReviewSortRating    ReviewSortField = "rating"
)

type SortOrder string

const (
	SortOrderAsc  SortOrder = "asc"
	SortOrderDesc SortOrder = "desc"
)

type ReviewListFilter struct {
	Limit     int
	Offset    int
	Rating    *int
	MinRating *int
	MaxRating *int
	SortField ReviewSortField
	SortOrder SortOrder
}

type ReviewAggregateFilter struct {
	Rating    *int
	MinRating *int
	MaxRating *int
}
