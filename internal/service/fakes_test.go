package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"io"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/media"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

type fakeCampsiteRepo struct {
	mu        sync.Mutex
	campsites map[uuid.UUID]*domain.Campsite

	ratingUpdates     map[uuid.UUID][2]float64
	popularityUpdates map[uuid.UUID]float64
}

func newFakeCampsiteRepo() *fakeCampsiteRepo {
	return &fakeCampsiteRepo{
		campsites:         make(map[uuid.UUID]*domain.Campsite),
		ratingUpdates:     make(map[uuid.UUID][2]float64),
		popularityUpdates: make(map[uuid.UUID]float64),
	}
}

func (f *fakeCampsiteRepo) add(c domain.Campsite) *domain.Campsite {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	if c.Status == "" {
		c.Status = domain.CampsiteStatusPublished
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.campsites[c.ID] = &c
	return &c
}

func (f *fakeCampsiteRepo) FindByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	c, ok := f.campsites[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *c
	return &clone, nil
}

func (f *fakeCampsiteRepo) FindPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error) {
	c, err := f.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !c.IsPublished() {
		return nil, sql.ErrNoRows
	}
	return c, nil
}

func (f *fakeCampsiteRepo) FindBySlug(ctx context.Context, slug string) (*domain.Campsite, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, c := range f.campsites {
		if c.Slug == slug {
			clone := *c
			return &clone, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeCampsiteRepo) Search(ctx context.Context, filter domain.CampsiteFilter) ([]domain.Campsite, int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Campsite, 0, len(f.campsites))
	for _, c := range f.campsites {
		if c.IsPublished() {
			out = append(out, *c)
		}
	}
	return out, int64(len(out)), nil
}

func (f *fakeCampsiteRepo) MarkersInBounds(ctx context.Context, bounds domain.MapBounds, filter domain.CampsiteFilter, limit int) ([]domain.CampsiteMarker, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.CampsiteMarker, 0)
	for _, c := range f.campsites {
		if !c.IsPublished() {
			continue
		}
		if c.Latitude < bounds.MinLat || c.Latitude > bounds.MaxLat ||
			c.Longitude < bounds.MinLng || c.Longitude > bounds.MaxLng {
			continue
		}
		out = append(out, domain.CampsiteMarker{
			ID: c.ID, Name: c.Name, Slug: c.Slug, Type: c.Type,
			Latitude: c.Latitude, Longitude: c.Longitude,
			PriceMin: c.PriceMin, AverageRating: c.AverageRating,
		})
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

func (f *fakeCampsiteRepo) ListPopular(ctx context.Context, limit int) ([]domain.Campsite, error) {
	out, _, err := f.Search(ctx, domain.CampsiteFilter{})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (f *fakeCampsiteRepo) UpdateRatingAggregate(ctx context.Context, id uuid.UUID, average float64, count int) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.ratingUpdates[id] = [2]float64{average, float64(count)}
	if c, ok := f.campsites[id]; ok {
		c.AverageRating = average
		c.ReviewCount = count
	}
	return nil
}

func (f *fakeCampsiteRepo) UpdatePopularity(ctx context.Context, id uuid.UUID, score float64) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.popularityUpdates[id] = score
	return nil
}

var _ ports.CampsiteRepository = (*fakeCampsiteRepo)(nil)

type fakeReviewRepo struct {
	mu      sync.Mutex
	reviews map[uuid.UUID]*domain.Review
}

func newFakeReviewRepo() *fakeReviewRepo {
	return &fakeReviewRepo{reviews: make(map[uuid.UUID]*domain.Review)}
}

func (f *fakeReviewRepo) Create(ctx context.Context, review *domain.Review) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	stored := *review
	stored.ID = uuid.New()
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	f.reviews[stored.ID] = &stored
	clone := stored
	return &clone, nil
}

func (f *fakeReviewRepo) HasLiveReview(ctx context.Context, userID, campsiteID uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, r := range f.reviews {
		if r.UserID == userID && r.CampsiteID == campsiteID && r.DeletedAt == nil {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeReviewRepo) GetByID(ctx context.Context, id uuid.UUID) (*domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok {
		return nil, sql.ErrNoRows
	}
	clone := *r
	return &clone, nil
}

func (f *fakeReviewRepo) ListByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewListFilter) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Review, 0)
	for _, r := range f.reviews {
		if r.CampsiteID == campsiteID && r.Status == domain.ReviewStatusApproved && r.DeletedAt == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) ListPending(ctx context.Context, limit, offset int) ([]domain.Review, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.Review, 0)
	for _, r := range f.reviews {
		if r.Status == domain.ReviewStatusPending && r.DeletedAt == nil {
			out = append(out, *r)
		}
	}
	return out, nil
}

func (f *fakeReviewRepo) AggregateByCampsite(ctx context.Context, campsiteID uuid.UUID, filter domain.ReviewAggregateFilter) (*domain.ReviewAggregate, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	agg := &domain.ReviewAggregate{CampsiteID: campsiteID, RatingCounts: make(map[int]int)}
	sum := 0
	for _, r := range f.reviews {
		if r.CampsiteID != campsiteID || r.Status != domain.ReviewStatusApproved || r.DeletedAt != nil {
			continue
		}
		agg.TotalReviews++
		agg.RatingCounts[r.Rating]++
		sum += r.Rating
	}
	if agg.TotalReviews > 0 {
		agg.AverageRating = float64(sum) / float64(agg.TotalReviews)
	}
	return agg, nil
}

func (f *fakeReviewRepo) SetStatus(ctx context.Context, id uuid.UUID, status domain.ReviewStatus, moderatedBy uuid.UUID, rejectReason *string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.Status != domain.ReviewStatusPending || r.DeletedAt != nil {
		return sql.ErrNoRows
	}
	now := time.Now()
	r.Status = status
	r.ModeratedBy = &moderatedBy
	r.ModeratedAt = &now
	r.RejectReason = rejectReason
	return nil
}

func (f *fakeReviewRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	r, ok := f.reviews[id]
	if !ok || r.DeletedAt != nil {
		return sql.ErrNoRows
	}
	now := time.Now()
	r.DeletedAt = &now
	r.DeletedBy = &deletedBy
	return nil
}

var _ ports.ReviewRepository = (*fakeReviewRepo)(nil)

type fakeReviewPhotoRepo struct {
	mu     sync.Mutex
	photos []domain.ReviewPhoto
}

func (f *fakeReviewPhotoRepo) CreateMany(ctx context.Context, photos []domain.ReviewPhoto) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.photos = append(f.photos, photos...)
	return nil
}

func (f *fakeReviewPhotoRepo) ListByReviewIDs(ctx context.Context, reviewIDs []uuid.UUID) (map[uuid.UUID][]domain.ReviewPhoto, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	wanted := make(map[uuid.UUID]struct{}, len(reviewIDs))
	for _, id := range reviewIDs {
		wanted[id] = struct{}{}
	}
	out := make(map[uuid.UUID][]domain.ReviewPhoto)
	for _, p := range f.photos {
		if _, ok := wanted[p.ReviewID]; ok {
			out[p.ReviewID] = append(out[p.ReviewID], p)
		}
	}
	return out, nil
}

var _ ports.ReviewPhotoRepository = (*fakeReviewPhotoRepo)(nil)

type fakeWishlistRepo struct {
	mu    sync.Mutex
	items map[uuid.UUID]map[uuid.UUID]time.Time
}

func newFakeWishlistRepo() *fakeWishlistRepo {
	return &fakeWishlistRepo{items: make(map[uuid.UUID]map[uuid.UUID]time.Time)}
}

func (f *fakeWishlistRepo) Add(ctx context.Context, userID, campsiteID uuid.UUID) (*domain.WishlistItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.items[userID] == nil {
		f.items[userID] = make(map[uuid.UUID]time.Time)
	}
	if _, exists := f.items[userID][campsiteID]; exists {
		return nil, &pgconn.PgError{Code: "23505"}
	}
	now := time.Now()
	f.items[userID][campsiteID] = now
	return &domain.WishlistItem{UserID: userID, CampsiteID: campsiteID, CreatedAt: now}, nil
}

func (f *fakeWishlistRepo) Remove(ctx context.Context, userID, campsiteID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, exists := f.items[userID][campsiteID]; !exists {
		return sql.ErrNoRows
	}
	delete(f.items[userID], campsiteID)
	return nil
}

func (f *fakeWishlistRepo) ListByUser(ctx context.Context, userID uuid.UUID, limit, offset int) ([]domain.WishlistListItem, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]domain.WishlistListItem, 0)
	for campsiteID, addedAt := range f.items[userID] {
		out = append(out, domain.WishlistListItem{CampsiteID: campsiteID, CreatedAt: addedAt})
	}
	return out, nil
}

func (f *fakeWishlistRepo) CountByUser(ctx context.Context, userID uuid.UUID) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.items[userID])), nil
}

func (f *fakeWishlistRepo) ContainsAll(ctx context.Context, userID uuid.UUID, campsiteIDs []uuid.UUID) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, id := range campsiteIDs {
		if _, ok := f.items[userID][id]; !ok {
			return false, nil
		}
	}
	return true, nil
}

var _ ports.WishlistRepository = (*fakeWishlistRepo)(nil)

type fakeViewStatsRepo struct {
	mu     sync.Mutex
	views  map[uuid.UUID]int
	inputs []domain.PopularityInput
}

func newFakeViewStatsRepo() *fakeViewStatsRepo {
	return &fakeViewStatsRepo{views: make(map[uuid.UUID]int)}
}

func (f *fakeViewStatsRepo) RecordView(ctx context.Context, campsiteID uuid.UUID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.views[campsiteID]++
	return nil
}

func (f *fakeViewStatsRepo) ListPopularityInputs(ctx context.Context) ([]domain.PopularityInput, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.PopularityInput(nil), f.inputs...), nil
}

var _ ports.ViewStatsRepository = (*fakeViewStatsRepo)(nil)

type fakeStorage struct {
	mu      sync.Mutex
	uploads map[string][]byte
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{uploads: make(map[string][]byte)}
}

func (f *fakeStorage) Upload(ctx context.Context, bucket, objectName, contentType string, reader io.Reader, size int64) (string, error) {
	data, err := io.ReadAll(reader)
	if err != nil {
		return "", err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.uploads[bucket+"/"+objectName] = data
	return fmt.Sprintf("https://cdn.test/%s/%s", bucket, objectName), nil
}

var _ ports.ObjectStorage = (*fakeStorage)(nil)

type fakeCache struct {
	mu      sync.Mutex
	entries map[string][]byte
	sets    int
	hits    int
}

func newFakeCache() *fakeCache {
	return &fakeCache{entries: make(map[string][]byte)}
}

func (f *fakeCache) Get(ctx context.Context, key string, dst any) (bool, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	raw, ok := f.entries[key]
	if !ok {
		return false, nil
	}
	f.hits++
	return true, json.Unmarshal(raw, dst)
}

func (f *fakeCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.entries[key] = raw
	f.sets++
	return nil
}

func (f *fakeCache) Del(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.entries, key)
	return nil
}

var _ ports.Cache = (*fakeCache)(nil)

// passthroughProcessor hands the upload bytes straight back.
type passthroughProcessor struct{}

func (passthroughProcessor) Process(ctx context.Context, upload media.Upload, maxDimension int) (*media.Result, error) {
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, err
	}
	return &media.Result{Bytes: data, ContentType: upload.ContentType}, nil
}

var _ media.Processor = passthroughProcessor{}
