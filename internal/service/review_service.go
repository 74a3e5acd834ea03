package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/media"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

var (
	ErrReviewNotFound      = errors.New("review not found")
	ErrReviewValidation    = errors.New("review validation failed")
	ErrReviewNotPending    = errors.New("review is not pending moderation")
	ErrReviewForbidden     = errors.New("not allowed to modify this review")
	ErrReviewAlreadyExists = errors.New("a review for this campsite already exists")
)

var allowedPhotoTypes = map[string]struct{}{
	"image/jpeg": {},
	"image/png":  {},
	"image/webp": {},
}

type ReviewServiceConfig struct {
	PhotoBucket   string
	MaxPhotos     int
	MaxPhotoBytes int64
	MaxPhotoDim   int
}

type ReviewService struct {
	reviews   ports.ReviewRepository
	photos    ports.ReviewPhotoRepository
	campsites ports.CampsiteRepository
	storage   ports.ObjectStorage
	processor media.Processor

	photoBucket   string
	maxPhotos     int
	maxPhotoBytes int64
	maxPhotoDim   int
}

type CreateReviewInput struct {
	CampsiteID uuid.UUID
	UserID     uuid.UUID
	Rating     int
	Title      *string
	Content    *string
	Photos     []media.Upload
}

type ModerateReviewInput struct {
	ReviewID     uuid.UUID
	ModeratorID  uuid.UUID
	RejectReason *string
}

func NewReviewService(
	reviewRepo ports.ReviewRepository,
	photoRepo ports.ReviewPhotoRepository,
	campsiteRepo ports.CampsiteRepository,
	storage ports.ObjectStorage,
	processor media.Processor,
	cfg ReviewServiceConfig,
) *ReviewService {
	maxPhotos := cfg.MaxPhotos
	if maxPhotos <= 0 {
		maxPhotos = 5
	}
	maxBytes := cfg.MaxPhotoBytes
	if maxBytes <= 0 {
		maxBytes = 5 * 1024 * 1024
	}
	return &ReviewService{
		reviews:       reviewRepo,
		photos:        photoRepo,
		campsites:     campsiteRepo,
		storage:       storage,
		processor:     processor,
		photoBucket:   cfg.PhotoBucket,
		maxPhotos:     maxPhotos,
		maxPhotoBytes: maxBytes,
		maxPhotoDim:   cfg.MaxPhotoDim,
	}
}

// Create stores a new review in pending state. Photos are processed and
// uploaded before the review row is written so a storage failure never
// leaves a review pointing at missing objects.
func (s *ReviewService) Create(ctx context.Context, input CreateReviewInput) (*domain.Review, error) {
	if err := s.validateCreate(input); err != nil {
		return nil, err
	}
	if err := s.ensureCampsitePublished(ctx, input.CampsiteID); err != nil {
		return nil, err
	}

	// One live review per user and campsite. Deleting the old review
	// frees the slot for a new submission.
	exists, err := s.reviews.HasLiveReview(ctx, input.UserID, input.CampsiteID)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrReviewAlreadyExists
	}

	uploaded, err := s.uploadPhotos(ctx, input.CampsiteID, input.Photos)
	if err != nil {
		return nil, err
	}

	review := &domain.Review{
		CampsiteID: input.CampsiteID,
		UserID:     input.UserID,
		Rating:     input.Rating,
		Title:      trimToNil(input.Title),
		Content:    trimToNil(input.Content),
		Status:     domain.ReviewStatusPending,
	}

	created, err := s.reviews.Create(ctx, review)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrReviewAlreadyExists
		}
		return nil, err
	}

	if len(uploaded) > 0 {
		for i := range uploaded {
			uploaded[i].ReviewID = created.ID
			uploaded[i].Ordering = i
		}
		if err := s.photos.CreateMany(ctx, uploaded); err != nil {
			return nil, err
		}
		created.Photos = uploaded
	}

	return created, nil
}

func (s *ReviewService) ListByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewListFilter) (*domain.ReviewListResult, error) {
	if err := s.ensureCampsitePublished(ctx, campsiteID); err != nil {
		return nil, err
	}
	normalized, err := normalizeReviewFilter(filter)
	if err != nil {
		return nil, err
	}

	reviews, err := s.reviews.ListByCampsite(ctx, campsiteID, normalized)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}

	if err := s.attachPhotos(ctx, reviews); err != nil {
		return nil, err
	}

	aggregate, err := s.reviews.AggregateByCampsite(ctx, campsiteID, domain.ReviewAggregateFilter{
		Rating:    normalized.Rating,
		MinRating: normalized.MinRating,
		MaxRating: normalized.MaxRating,
	})
	if err != nil {
		return nil, err
	}

	return &domain.ReviewListResult{
		CampsiteID: campsiteID,
		Reviews:    reviews,
		Aggregate:  *aggregate,
		Limit:      normalized.Limit,
		Offset:     normalized.Offset,
	}, nil
}

func (s *ReviewService) ListPending(ctx context.Context, limit, offset int) ([]domain.Review, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	reviews, err := s.reviews.ListPending(ctx, limit, offset)
	if err != nil {
		return nil, err
	}
	if reviews == nil {
		reviews = []domain.Review{}
	}
	if err := s.attachPhotos(ctx, reviews); err != nil {
		return nil, err
	}
	return reviews, nil
}

func (s *ReviewService) Approve(ctx context.Context, input ModerateReviewInput) error {
	review, err := s.getReview(ctx, input.ReviewID)
	if err != nil {
		return err
	}

	if err := s.reviews.SetStatus(ctx, input.ReviewID, domain.ReviewStatusApproved, input.ModeratorID, nil); err != nil {
		if isNotFound(err) {
			return ErrReviewNotPending
		}
		return err
	}

	s.refreshCampsiteRating(ctx, review.CampsiteID)
	return nil
}

func (s *ReviewService) Reject(ctx context.Context, input ModerateReviewInput) error {
	reason := trimToNil(input.RejectReason)
	if reason == nil {
		return fmt.Errorf("%w: reject reason is required", ErrReviewValidation)
	}

	if _, err := s.getReview(ctx, input.ReviewID); err != nil {
		return err
	}

	if err := s.reviews.SetStatus(ctx, input.ReviewID, domain.ReviewStatusRejected, input.ModeratorID, reason); err != nil {
		if isNotFound(err) {
			return ErrReviewNotPending
		}
		return err
	}
	return nil
}

// Delete soft-deletes a review. The author can delete their own review;
// admins can delete any. Deleting an approved review re-derives the
// campsite aggregate.
func (s *ReviewService) Delete(ctx context.Context, reviewID, actorID uuid.UUID, actorIsAdmin bool) error {
	review, err := s.getReview(ctx, reviewID)
	if err != nil {
		return err
	}
	if review.UserID != actorID && !actorIsAdmin {
		return ErrReviewForbidden
	}

	if err := s.reviews.SoftDelete(ctx, reviewID, actorID); err != nil {
		if isNotFound(err) {
			return ErrReviewNotFound
		}
		return err
	}

	if review.Status == domain.ReviewStatusApproved {
		s.refreshCampsiteRating(ctx, review.CampsiteID)
	}
	return nil
}

func (s *ReviewService) getReview(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	review, err := s.reviews.GetByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrReviewNotFound
		}
		return nil, err
	}
	if review.DeletedAt != nil {
		return nil, ErrReviewNotFound
	}
	return review, nil
}

func (s *ReviewService) ensureCampsitePublished(ctx context.Context, campsiteID uuid.UUID) error {
	if _, err := s.campsites.FindPublishedByID(ctx, campsiteID); err != nil {
		if isNotFound(err) {
			return ErrCampsiteNotFound
		}
		return err
	}
	return nil
}

func (s *ReviewService) validateCreate(input CreateReviewInput) error {
	if input.Rating < 1 || input.Rating > 5 {
		return fmt.Errorf("%w: rating must be between 1 and 5", ErrReviewValidation)
	}
	if title := trimToNil(input.Title); title != nil && len(*title) > 120 {
		return fmt.Errorf("%w: title cannot exceed 120 characters", ErrReviewValidation)
	}
	if content := trimToNil(input.Content); content != nil {
		if len(*content) > 4000 {
			return fmt.Errorf("%w: content cannot exceed 4000 characters", ErrReviewValidation)
		}
		if trimToNil(input.Title) == nil {
			return fmt.Errorf("%w: a written review requires a title", ErrReviewValidation)
		}
	}
	if len(input.Photos) > s.maxPhotos {
		return fmt.Errorf("%w: at most %d photos per review", ErrReviewValidation, s.maxPhotos)
	}
	for _, photo := range input.Photos {
		if photo.Size > s.maxPhotoBytes {
			return fmt.Errorf("%w: photo %q exceeds %d bytes", ErrReviewValidation, photo.FileName, s.maxPhotoBytes)
		}
		if _, ok := allowedPhotoTypes[strings.ToLower(photo.ContentType)]; !ok {
			return fmt.Errorf("%w: unsupported photo type %q", ErrReviewValidation, photo.ContentType)
		}
	}
	return nil
}

func (s *ReviewService) uploadPhotos(ctx context.Context, campsiteID uuid.UUID, uploads []media.Upload) ([]domain.ReviewPhoto, error) {
	if len(uploads) == 0 {
		return nil, nil
	}

	photos := make([]domain.ReviewPhoto, 0, len(uploads))
	for _, upload := range uploads {
		processed, err := s.processor.Process(ctx, upload, s.maxPhotoDim)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrReviewValidation, err)
		}

		objectKey := fmt.Sprintf("%s/%d-%s%s",
			campsiteID, time.Now().UnixNano(), uuid.NewString(), extensionFor(processed.ContentType))
		url, err := s.storage.Upload(ctx, s.photoBucket, objectKey, processed.ContentType,
			bytes.NewReader(processed.Bytes), int64(len(processed.Bytes)))
		if err != nil {
			return nil, err
		}

		photos = append(photos, domain.ReviewPhoto{
			ID:        uuid.New(),
			ObjectKey: objectKey,
			URL:       url,
		})
	}
	return photos, nil
}

func (s *ReviewService) attachPhotos(ctx context.Context, reviews []domain.Review) error {
	if len(reviews) == 0 {
		return nil
	}
	ids := make([]uuid.UUID, 0, len(reviews))
	for _, r := range reviews {
		ids = append(ids, r.ID)
	}
	byReview, err := s.photos.ListByReviewIDs(ctx, ids)
	if err != nil {
		return err
	}
	for i := range reviews {
		if photos, ok := byReview[reviews[i].ID]; ok {
			reviews[i].Photos = photos
		}
	}
	return nil
}

// refreshCampsiteRating re-derives the denormalized rating columns from
// approved reviews. Best effort: the moderation action already committed.
func (s *ReviewService) refreshCampsiteRating(ctx context.Context, campsiteID uuid.UUID) {
	aggregate, err := s.reviews.AggregateByCampsite(ctx, campsiteID, domain.ReviewAggregateFilter{})
	if err != nil {
		log.Printf("aggregate reviews for %s failed: %v", campsiteID, err)
		return
	}
	if err := s.campsites.UpdateRatingAggregate(ctx, campsiteID, aggregate.AverageRating, aggregate.TotalReviews); err != nil {
		log.Printf("update rating for %s failed: %v", campsiteID, err)
	}
}

func normalizeReviewFilter(filter domain.ReviewListFilter) (domain.ReviewListFilter, error) {
	result := filter
	if result.Limit <= 0 {
		result.Limit = 10
	}
	if result.Limit > 50 {
		result.Limit = 50
	}
	if result.Offset < 0 {
		result.Offset = 0
	}

	for _, r := range []*int{result.Rating, result.MinRating, result.MaxRating} {
		if r != nil && (*r < 1 || *r > 5) {
			return domain.ReviewListFilter{}, fmt.Errorf("%w: rating filters must be between 1 and 5", ErrReviewValidation)
		}
	}
	if result.MinRating != nil && result.MaxRating != nil && *result.MinRating > *result.MaxRating {
		return domain.ReviewListFilter{}, fmt.Errorf("%w: min_rating cannot be greater than max_rating", ErrReviewValidation)
	}

	switch result.SortField {
	case domain.ReviewSortCreatedAt, domain.ReviewSortRating:
	case "":
		result.SortField = domain.ReviewSortCreatedAt
	default:
		return domain.ReviewListFilter{}, fmt.Errorf("%w: unknown sort field %q", ErrReviewValidation, result.SortField)
	}

	switch result.SortOrder {
	case domain.SortOrderAsc, domain.SortOrderDesc:
	case "":
		result.SortOrder = domain.SortOrderDesc
	default:
		return domain.ReviewListFilter{}, fmt.Errorf("%w: unknown sort order %q", ErrReviewValidation, result.SortOrder)
	}

	return result, nil
}

func extensionFor(contentType string) string {
	switch contentType {
	case "image/png":
		return ".png"
	case "image/webp":
		return ".webp"
	default:
		return ".jpg"
	}
}

func trimToNil(s *string) *string {
	if s == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*s)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}
