package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

var (
	ErrWishlistAlreadyExists = errors.New("campsite already in wishlist")
	ErrWishlistNotFound      = errors.New("campsite not in wishlist")
	ErrCompareValidation     = errors.New("compare validation failed")
)

type WishlistService struct {
	wishlists ports.WishlistRepository
	campsites ports.CampsiteRepository
}

type WishlistPage struct {
	Items  []domain.WishlistListItem `json:"items"`
	Total  int64                     `json:"total"`
	Limit  int                       `json:"limit"`
	Offset int                       `json:"offset"`
}

func NewWishlistService(wishlistRepo ports.WishlistRepository, campsiteRepo ports.CampsiteRepository) *WishlistService {
	return &WishlistService{wishlists: wishlistRepo, campsites: campsiteRepo}
}

func (s *WishlistService) Save(ctx context.Context, userID, campsiteID uuid.UUID) (*domain.WishlistItem, error) {
	if _, err := s.campsites.FindPublishedByID(ctx, campsiteID); err != nil {
		if isNotFound(err) {
			return nil, ErrCampsiteNotFound
		}
		return nil, err
	}

	item, err := s.wishlists.Add(ctx, userID, campsiteID)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, ErrWishlistAlreadyExists
		}
		return nil, err
	}
	return item, nil
}

func (s *WishlistService) Remove(ctx context.Context, userID, campsiteID uuid.UUID) error {
	if err := s.wishlists.Remove(ctx, userID, campsiteID); err != nil {
		if isNotFound(err) {
			return ErrWishlistNotFound
		}
		return err
	}
	return nil
}

func (s *WishlistService) List(ctx context.Context, userID uuid.UUID, limit, offset int) (*WishlistPage, error) {
	if limit <= 0 {
		limit = 20
	}
	if limit > 100 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}

	items, err := s.wishlists.ListByUser(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	if items == nil {
		items = []domain.WishlistListItem{}
	}

	total, err := s.wishlists.CountByUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &WishlistPage{Items: items, Total: total, Limit: limit, Offset: offset}, nil
}

// Compare returns full campsite records for side-by-side comparison. All
// requested campsites must already be on the caller's wishlist.
func (s *WishlistService) Compare(ctx context.Context, userID uuid.UUID, campsiteIDs []uuid.UUID) ([]domain.Campsite, error) {
	unique := dedupeIDs(campsiteIDs)
	if len(unique) < 2 {
		return nil, fmt.Errorf("%w: at least 2 campsites are required", ErrCompareValidation)
	}
	if len(unique) > domain.MaxCompareCampsites {
		return nil, fmt.Errorf("%w: at most %d campsites can be compared", ErrCompareValidation, domain.MaxCompareCampsites)
	}

	onWishlist, err := s.wishlists.ContainsAll(ctx, userID, unique)
	if err != nil {
		return nil, err
	}
	if !onWishlist {
		return nil, fmt.Errorf("%w: all campsites must be on your wishlist", ErrCompareValidation)
	}

	campsites := make([]domain.Campsite, 0, len(unique))
	for _, id := range unique {
		campsite, err := s.campsites.FindPublishedByID(ctx, id)
		if err != nil {
			if isNotFound(err) {
				return nil, ErrCampsiteNotFound
			}
			return nil, err
		}
		campsites = append(campsites, *campsite)
	}
	return campsites, nil
}

func dedupeIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
