package service

import (
	"context"
	"log"
	"math"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/campthai/campthai-backend/internal/domain"
	"github.com/campthai/campthai-backend/internal/repository/ports"
)

// Popularity weights. Recent views dominate, older traffic and the review
// aggregate keep long-standing favorites from falling off the list.
const (
	weightViews7d    = 3.0
	weightViews30d   = 1.0
	weightRating     = 10.0
	popularityWorker = 8
)

type PopularityService struct {
	campsites ports.CampsiteRepository
	views     ports.ViewStatsRepository
}

func NewPopularityService(campsiteRepo ports.CampsiteRepository, viewRepo ports.ViewStatsRepository) *PopularityService {
	return &PopularityService{campsites: campsiteRepo, views: viewRepo}
}

// RecomputeAll re-derives every published campsite's popularity score from
// recent view counts and the approved-review aggregate. Scheduled nightly;
// also safe to run by hand.
func (s *PopularityService) RecomputeAll(ctx context.Context) (int, error) {
	started := time.Now()
	inputs, err := s.views.ListPopularityInputs(ctx)
	if err != nil {
		return 0, err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(popularityWorker)
	for _, input := range inputs {
		g.Go(func() error {
			score := Score(input)
			return s.campsites.UpdatePopularity(ctx, input.CampsiteID, score)
		})
	}
	if err := g.Wait(); err != nil {
		return 0, err
	}

	log.Printf("popularity recompute finished: %d campsites in %s", len(inputs), time.Since(started).Round(time.Millisecond))
	return len(inputs), nil
}

// Score turns one campsite's traffic and rating aggregate into a single
// sortable number. Log-damped views keep one viral campsite from pinning
// the list; the rating term is confidence-weighted by review count.
func Score(input domain.PopularityInput) float64 {
	views := weightViews7d*math.Log1p(float64(input.Views7d)) +
		weightViews30d*math.Log1p(float64(input.Views30d))

	confidence := float64(input.ReviewCount) / (float64(input.ReviewCount) + 5.0)
	rating := weightRating * input.AverageRating * confidence

	return views + rating
}
