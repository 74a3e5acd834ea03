package service

import (
	"context"
	"errors"
	"fmt"
	"hash/fnv"
	"log"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

var ErrSearchValidation = errors.New("search validation failed")

type CampsiteServiceConfig struct {
	MapMarkerLimit  int
	MapCacheTTL     time.Duration
	SearchCacheTTL  time.Duration
	PopularCacheTTL time.Duration
	PopularLimit    int
}

type CampsiteService struct {
	campsites ports.CampsiteRepository
	views     ports.ViewStatsRepository
	cache     ports.Cache

	markerLimit     int
	mapCacheTTL     time.Duration
	searchCacheTTL  time.Duration
	popularCacheTTL time.Duration
	popularLimit    int
}

type SearchResult struct {
	Items  []domain.Campsite
	Total  int64
	Limit  int
	Offset int
}

func NewCampsiteService(campsiteRepo ports.CampsiteRepository, viewRepo ports.ViewStatsRepository, cache ports.Cache, cfg CampsiteServiceConfig) *CampsiteService {
	markerLimit := cfg.MapMarkerLimit
	if markerLimit <= 0 {
		markerLimit = 500
	}
	popularLimit := cfg.PopularLimit
	if popularLimit <= 0 {
		popularLimit = 12
	}
	return &CampsiteService{
		campsites:       campsiteRepo,
		views:           viewRepo,
		cache:           cache,
		markerLimit:     markerLimit,
		mapCacheTTL:     cfg.MapCacheTTL,
		searchCacheTTL:  cfg.SearchCacheTTL,
		popularCacheTTL: cfg.PopularCacheTTL,
		popularLimit:    popularLimit,
	}
}

func (s *CampsiteService) Search(ctx context.Context, filter domain.CampsiteFilter) (*SearchResult, error) {
	normalized, err := normalizeCampsiteFilter(filter)
	if err != nil {
		return nil, err
	}

	key := "search:" + filterCacheKey(normalized, nil)
	if s.cache != nil && s.searchCacheTTL > 0 {
		var cached SearchResult
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
			return &cached, nil
		}
	}

	items, total, err := s.campsites.Search(ctx, normalized)
	if err != nil {
		return nil, err
	}

	result := &SearchResult{
		Items:  items,
		Total:  total,
		Limit:  normalized.Limit,
		Offset: normalized.Offset,
	}
	if s.cache != nil && s.searchCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, result, s.searchCacheTTL); err != nil {
			log.Printf("campsite search cache set failed: %v", err)
		}
	}
	return result, nil
}

// MarkersInBounds serves the map viewport fetch. The client debounces and
// cancels superseded requests, so the same normalized query arrives in
// bursts; a short-TTL cache keeps those bursts off Postgres.
func (s *CampsiteService) MarkersInBounds(ctx context.Context, bounds domain.MapBounds, filter domain.CampsiteFilter) ([]domain.CampsiteMarker, error) {
	if err := bounds.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrSearchValidation, err)
	}
	normalized, err := normalizeCampsiteFilter(filter)
	if err != nil {
		return nil, err
	}

	key := "map:" + filterCacheKey(normalized, &bounds)
	if s.cache != nil && s.mapCacheTTL > 0 {
		var cached []domain.CampsiteMarker
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	markers, err := s.campsites.MarkersInBounds(ctx, bounds, normalized, s.markerLimit)
	if err != nil {
		return nil, err
	}
	if markers == nil {
		markers = []domain.CampsiteMarker{}
	}

	if s.cache != nil && s.mapCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, markers, s.mapCacheTTL); err != nil {
			log.Printf("map marker cache set failed: %v", err)
		}
	}
	return markers, nil
}

func (s *CampsiteService) GetPublishedByID(ctx context.Context, id uuid.UUID) (*domain.Campsite, error) {
	campsite, err := s.campsites.FindPublishedByID(ctx, id)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCampsiteNotFound
		}
		return nil, err
	}

	// View recording is best effort; a stats failure never breaks the page.
	if s.views != nil {
		if err := s.views.RecordView(ctx, campsite.ID); err != nil {
			log.Printf("record view for %s failed: %v", campsite.ID, err)
		}
	}
	return campsite, nil
}

func (s *CampsiteService) GetPublishedBySlug(ctx context.Context, slug string) (*domain.Campsite, error) {
	campsite, err := s.campsites.FindBySlug(ctx, slug)
	if err != nil {
		if isNotFound(err) {
			return nil, ErrCampsiteNotFound
		}
		return nil, err
	}
	if !campsite.IsPublished() {
		return nil, ErrCampsiteNotFound
	}
	return campsite, nil
}

func (s *CampsiteService) ListPopular(ctx context.Context) ([]domain.Campsite, error) {
	const key = "campsites:popular"
	if s.cache != nil && s.popularCacheTTL > 0 {
		var cached []domain.Campsite
		if ok, err := s.cache.Get(ctx, key, &cached); err == nil && ok {
			return cached, nil
		}
	}

	campsites, err := s.campsites.ListPopular(ctx, s.popularLimit)
	if err != nil {
		return nil, err
	}
	if campsites == nil {
		campsites = []domain.Campsite{}
	}

	if s.cache != nil && s.popularCacheTTL > 0 {
		if err := s.cache.Set(ctx, key, campsites, s.popularCacheTTL); err != nil {
			log.Printf("popular campsites cache set failed: %v", err)
		}
	}
	return campsites, nil
}

// InvalidatePopular drops the popular-campsites cache entry, called after
// the nightly popularity recompute.
func (s *CampsiteService) InvalidatePopular(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Del(ctx, "campsites:popular"); err != nil {
		log.Printf("popular campsites cache invalidation failed: %v", err)
	}
}

func normalizeCampsiteFilter(filter domain.CampsiteFilter) (domain.CampsiteFilter, error) {
	result := filter
	result.Query = strings.TrimSpace(result.Query)

	if result.Limit <= 0 {
		result.Limit = 20
	}
	if result.Limit > 100 {
		result.Limit = 100
	}
	if result.Offset < 0 {
		result.Offset = 0
	}

	for _, t := range result.Types {
		if !t.Valid() {
			return domain.CampsiteFilter{}, fmt.Errorf("%w: unknown campsite type %q", ErrSearchValidation, t)
		}
	}
	if result.MinPrice != nil && *result.MinPrice < 0 {
		return domain.CampsiteFilter{}, fmt.Errorf("%w: min_price cannot be negative", ErrSearchValidation)
	}
	if result.MaxPrice != nil && *result.MaxPrice < 0 {
		return domain.CampsiteFilter{}, fmt.Errorf("%w: max_price cannot be negative", ErrSearchValidation)
	}
	if result.MinPrice != nil && result.MaxPrice != nil && *result.MinPrice > *result.MaxPrice {
		return domain.CampsiteFilter{}, fmt.Errorf("%w: min_price cannot be greater than max_price", ErrSearchValidation)
	}
	if result.MinRating != nil && (*result.MinRating < 0 || *result.MinRating > 5) {
		return domain.CampsiteFilter{}, fmt.Errorf("%w: min_rating must be between 0 and 5", ErrSearchValidation)
	}

	switch result.Sort {
	case domain.CampsiteSortRecommended, domain.CampsiteSortPriceAsc, domain.CampsiteSortPriceDesc,
		domain.CampsiteSortRating, domain.CampsiteSortNewest:
	case "":
		result.Sort = domain.CampsiteSortRecommended
	default:
		return domain.CampsiteFilter{}, fmt.Errorf("%w: unknown sort %q", ErrSearchValidation, result.Sort)
	}

	return result, nil
}

// filterCacheKey builds a stable key from the normalized filter. Bounds are
// rounded to four decimals (~11m) so tiny pans reuse the same entry.
func filterCacheKey(filter domain.CampsiteFilter, bounds *domain.MapBounds) string {
	var b strings.Builder

	fmt.Fprintf(&b, "q=%s", strings.ToLower(filter.Query))
	if filter.ProvinceID != nil {
		fmt.Fprintf(&b, "|prov=%d", *filter.ProvinceID)
	}
	if len(filter.Types) > 0 {
		types := make([]string, 0, len(filter.Types))
		for _, t := range filter.Types {
			types = append(types, string(t))
		}
		sort.Strings(types)
		fmt.Fprintf(&b, "|types=%s", strings.Join(types, ","))
	}
	if len(filter.Amenities) > 0 {
		amenities := append([]string(nil), filter.Amenities...)
		sort.Strings(amenities)
		fmt.Fprintf(&b, "|amen=%s", strings.Join(amenities, ","))
	}
	if filter.MinPrice != nil {
		fmt.Fprintf(&b, "|minp=%d", *filter.MinPrice)
	}
	if filter.MaxPrice != nil {
		fmt.Fprintf(&b, "|maxp=%d", *filter.MaxPrice)
	}
	if filter.MinRating != nil {
		fmt.Fprintf(&b, "|minr=%.1f", *filter.MinRating)
	}
	fmt.Fprintf(&b, "|sort=%s|l=%d|o=%d", filter.Sort, filter.Limit, filter.Offset)
	if bounds != nil {
		fmt.Fprintf(&b, "|bb=%.4f,%.4f,%.4f,%.4f", bounds.MinLat, bounds.MaxLat, bounds.MinLng, bounds.MaxLng)
	}

	h := fnv.New64a()
	_, _ = h.Write([]byte(b.String()))
	return fmt.Sprintf("%x", h.Sum64())
}
