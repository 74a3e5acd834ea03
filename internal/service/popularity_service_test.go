package service

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/campthai/campthai-backend/internal/domain"
)

func TestScoreOrdersByTrafficAndRating(t *testing.T) {
	quiet := Score(domain.PopularityInput{Views7d: 2, Views30d: 10, AverageRating: 3.5, ReviewCount: 4})
	busy := Score(domain.PopularityInput{Views7d: 200, Views30d: 900, AverageRating: 3.5, ReviewCount: 4})
	if busy <= quiet {
		t.Fatalf("more traffic should score higher: busy=%f quiet=%f", busy, quiet)
	}

	fewReviews := Score(domain.PopularityInput{Views7d: 50, Views30d: 200, AverageRating: 5, ReviewCount: 1})
	manyReviews := Score(domain.PopularityInput{Views7d: 50, Views30d: 200, AverageRating: 5, ReviewCount: 100})
	if manyReviews <= fewReviews {
		t.Fatalf("rating confidence should grow with review count: many=%f few=%f", manyReviews, fewReviews)
	}

	if zero := Score(domain.PopularityInput{}); zero != 0 {
		t.Fatalf("expected zero score for empty input, got %f", zero)
	}
}

func TestRecomputeAllUpdatesEveryCampsite(t *testing.T) {
	campsites := newFakeCampsiteRepo()
	views := newFakeViewStatsRepo()

	ids := []uuid.UUID{uuid.New(), uuid.New(), uuid.New()}
	for i, id := range ids {
		views.inputs = append(views.inputs, domain.PopularityInput{
			CampsiteID:    id,
			Views7d:       int64(10 * (i + 1)),
			Views30d:      int64(40 * (i + 1)),
			AverageRating: 4,
			ReviewCount:   5,
		})
	}

	svc := NewPopularityService(campsites, views)
	updated, err := svc.RecomputeAll(context.Background())
	if err != nil {
		t.Fatalf("RecomputeAll returned error: %v", err)
	}
	if updated != len(ids) {
		t.Fatalf("expected %d updates, got %d", len(ids), updated)
	}

	var previous float64
	for i, id := range ids {
		score, ok := campsites.popularityUpdates[id]
		if !ok {
			t.Fatalf("campsite %s missing popularity update", id)
		}
		if i > 0 && score <= previous {
			t.Fatalf("scores should increase with traffic: %f <= %f", score, previous)
		}
		previous = score
	}
}
