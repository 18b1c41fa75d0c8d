package service

import (
	"context"
	"time"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/pkg/logger"
	"github.com/viraleats/viraleats-backend/pkg/tripadvisor"
)

// TripAdvisorSearcher is what the enrichment step needs from the scraper.
type TripAdvisorSearcher interface {
	Search(ctx context.Context, name, city string) (*tripadvisor.Enrichment, error)
}

// EnrichmentService attaches TripAdvisor data to a restaurant the first time
// its detail page is viewed. Strictly best-effort: every failure degrades to
// the plain record.
type EnrichmentService struct {
	scraper TripAdvisorSearcher
	repo    repository.RestaurantRepository
	timeout time.Duration
}

func NewEnrichmentService(scraper TripAdvisorSearcher, repo repository.RestaurantRepository, timeout time.Duration) *EnrichmentService {
	return &EnrichmentService{scraper: scraper, repo: repo, timeout: timeout}
}

// Enrich fetches and persists enrichment data, mutating restaurant in place
// on success. Already-enriched restaurants are left alone.
func (s *EnrichmentService) Enrich(ctx context.Context, restaurant *model.Restaurant) {
	if restaurant.TAEnriched || s.scraper == nil {
		return
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	result, err := s.scraper.Search(ctx, restaurant.Name, restaurant.City)
	if err != nil {
		logger.Warn("TripAdvisor enrichment failed", map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"name":          restaurant.Name,
			"error":         err.Error(),
		})
		return
	}

	fetchedAt := time.Now()
	fields := repository.EnrichmentFields{
		Rank:       result.Rank,
		PriceRange: result.PriceRange,
		Tags:       result.Tags,
		Snippet:    result.Snippet,
		FetchedAt:  fetchedAt,
	}
	if err := s.repo.UpdateEnrichment(restaurant.ID, fields); err != nil {
		logger.Warn("Failed to persist enrichment data", map[string]interface{}{
			"restaurant_id": restaurant.ID,
			"error":         err.Error(),
		})
		return
	}

	restaurant.TARank = result.Rank
	restaurant.TAPriceRange = result.PriceRange
	restaurant.TATags = result.Tags
	restaurant.TASnippet = result.Snippet
	restaurant.TAEnriched = true
	restaurant.TAEnrichedAt = &fetchedAt

	logger.Info("Restaurant enriched from TripAdvisor", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"rank":          result.Rank,
	})
}
