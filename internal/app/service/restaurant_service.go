package service

import (
	"context"
	"errors"
	"sort"
	"strings"
	"time"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/pkg/cache"
	"github.com/viraleats/viraleats-backend/pkg/halal"
	"github.com/viraleats/viraleats-backend/pkg/logger"
	"github.com/viraleats/viraleats-backend/pkg/util"
	"gorm.io/gorm"
)

var ErrRestaurantNotFound = errors.New("restaurant not found")

// Source tags returned alongside a restaurant so clients can tell which
// cache tier answered.
const (
	SourceMemoryCache    = "memory-cache"
	SourcePersistedCache = "persisted-cache"
	SourceDatabase       = "source"
)

const (
	// DefaultLimit bounds the candidate fetch when the caller does not set one.
	DefaultLimit = 50
	// UnlimitedRadiusKm is the sentinel at or above which a radius filter is
	// treated as "no radius".
	UnlimitedRadiusKm = 100.0
	// halalPoolFactor widens the candidate fetch for halal-only requests: the
	// halal filter is a post-fetch heuristic that discards many candidates,
	// so it needs a larger input pool to fill the requested limit.
	halalPoolFactor = 3

	defaultMustTry   = "Ask the locals"
	defaultPriceTier = model.PriceModerate
)

// CacheStore is the persisted (tier 2) cache. The production binding is
// Redis; tests use an in-memory fake.
type CacheStore interface {
	Get(ctx context.Context, id string) (*model.Restaurant, time.Time, error)
	Put(ctx context.Context, id string, restaurant *model.Restaurant, cachedAt time.Time) error
	Delete(ctx context.Context, id string) error
}

// Enricher lazily attaches third-party data to a restaurant on detail views.
type Enricher interface {
	Enrich(ctx context.Context, restaurant *model.Restaurant)
}

// ListOptions are the public list/filter parameters.
type ListOptions struct {
	Lat          *float64
	Lng          *float64
	RadiusKm     float64
	HalalOnly    bool
	Category     string
	PriceTier    string
	OpenNow      bool
	Search       string
	TrendingOnly bool
	Limit        int
}

type RestaurantService interface {
	GetByID(ctx context.Context, id string) (*model.Restaurant, string, error)
	List(ctx context.Context, opts ListOptions) ([]model.Restaurant, error)
}

type restaurantService struct {
	repo         repository.RestaurantRepository
	memCache     *cache.TTLCache
	persisted    CacheStore
	persistedTTL time.Duration
	enricher     Enricher
	now          func() time.Time
}

// NewRestaurantService wires the read path. persisted and enricher may be
// nil, which disables the corresponding tier or step. A nil clock defaults
// to time.Now.
func NewRestaurantService(
	repo repository.RestaurantRepository,
	memCache *cache.TTLCache,
	persisted CacheStore,
	persistedTTL time.Duration,
	enricher Enricher,
	clock func() time.Time,
) RestaurantService {
	if clock == nil {
		clock = time.Now
	}
	return &restaurantService{
		repo:         repo,
		memCache:     memCache,
		persisted:    persisted,
		persistedTTL: persistedTTL,
		enricher:     enricher,
		now:          clock,
	}
}

// GetByID looks a restaurant up through the three cache tiers. Cache write
// failures are logged, never surfaced: the read path succeeds whenever the
// source of truth does.
func (s *restaurantService) GetByID(ctx context.Context, id string) (*model.Restaurant, string, error) {
	// Tier 1: process-local.
	if cached, ok := s.memCache.Get(id); ok {
		restaurant := cached.(model.Restaurant)
		return &restaurant, SourceMemoryCache, nil
	}

	// Tier 2: persisted cache.
	if s.persisted != nil {
		cached, cachedAt, err := s.persisted.Get(ctx, id)
		if err != nil {
			logger.Warn("Persisted cache read failed, falling through", map[string]interface{}{
				"restaurant_id": id,
				"error":         err.Error(),
			})
		} else if cached != nil {
			if s.now().Sub(cachedAt) < s.persistedTTL {
				s.memCache.Set(id, *cached)
				return cached, SourcePersistedCache, nil
			}
			// Stale: best-effort delete, then fall through to the source.
			if err := s.persisted.Delete(ctx, id); err != nil {
				logger.Warn("Failed to delete stale cache entry", map[string]interface{}{
					"restaurant_id": id,
					"error":         err.Error(),
				})
			}
		}
	}

	// Tier 3: source of truth.
	restaurant, err := s.repo.FindByID(id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrRestaurantNotFound
		}
		logger.Error("Failed to fetch restaurant", err, map[string]interface{}{
			"restaurant_id": id,
		})
		return nil, "", err
	}

	shapeRestaurant(restaurant)

	if s.enricher != nil && !restaurant.TAEnriched {
		s.enricher.Enrich(ctx, restaurant)
	}

	s.memCache.Set(id, *restaurant)
	if s.persisted != nil {
		if err := s.persisted.Put(ctx, id, restaurant, s.now()); err != nil {
			logger.Warn("Persisted cache write failed", map[string]interface{}{
				"restaurant_id": id,
				"error":         err.Error(),
			})
		}
	}

	return restaurant, SourceDatabase, nil
}

// List runs the filter pipeline: candidate fetch, optional distance
// annotation, then halal, category, price, open-now and search filters in
// that fixed order, and finally projection to the public shape.
func (s *restaurantService) List(ctx context.Context, opts ListOptions) ([]model.Restaurant, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = DefaultLimit
	}

	if opts.TrendingOnly {
		return s.listTrending(limit)
	}

	fetchLimit := limit
	if opts.HalalOnly {
		fetchLimit = limit * halalPoolFactor
	}

	candidates, err := s.repo.FindCandidates(repository.CandidateFilter{Limit: fetchLimit})
	if err != nil {
		logger.Error("Failed to fetch restaurant candidates", err)
		return nil, err
	}

	if opts.Lat != nil && opts.Lng != nil {
		candidates = annotateAndSortByDistance(candidates, *opts.Lat, *opts.Lng, opts.RadiusKm)
	}

	filtered := make([]model.Restaurant, 0, len(candidates))
	for i := range candidates {
		r := &candidates[i]
		if opts.HalalOnly && halal.IsExcluded(r.Name, r.Address, r.Cuisine, string(r.Category), strings.Join(r.TATags, " "), r.TASnippet) {
			continue
		}
		if opts.Category != "" && string(r.Category) != opts.Category {
			continue
		}
		if opts.PriceTier != "" && string(r.PriceTier) != opts.PriceTier {
			continue
		}
		if opts.OpenNow && !util.IsOpenNow(r.Hours, s.now()) {
			continue
		}
		if opts.Search != "" && !matchesSearch(r, opts.Search) {
			continue
		}
		filtered = append(filtered, *r)
		if len(filtered) == limit {
			break
		}
	}

	for i := range filtered {
		shapeRestaurant(&filtered[i])
	}
	return filtered, nil
}

// listTrending returns flagged restaurants by score. When nothing is flagged
// (e.g. the batch has never run), fall back to top-N by raw score.
func (s *restaurantService) listTrending(limit int) ([]model.Restaurant, error) {
	restaurants, err := s.repo.FindTrending(limit)
	if err != nil {
		return nil, err
	}
	if len(restaurants) == 0 {
		logger.Debug("No trending flags set, falling back to raw score ordering")
		restaurants, err = s.repo.FindTopByScore(limit)
		if err != nil {
			return nil, err
		}
	}
	for i := range restaurants {
		shapeRestaurant(&restaurants[i])
	}
	return restaurants, nil
}

func annotateAndSortByDistance(candidates []model.Restaurant, lat, lng, radiusKm float64) []model.Restaurant {
	for i := range candidates {
		d := util.RoundDistance(util.CalculateDistance(lat, lng, candidates[i].Latitude, candidates[i].Longitude))
		candidates[i].Distance = &d
	}

	if radiusKm > 0 && radiusKm < UnlimitedRadiusKm {
		inRange := candidates[:0]
		for _, r := range candidates {
			if *r.Distance <= radiusKm {
				inRange = append(inRange, r)
			}
		}
		candidates = inRange
	}

	sort.SliceStable(candidates, func(a, b int) bool {
		return *candidates[a].Distance < *candidates[b].Distance
	})
	return candidates
}

func matchesSearch(r *model.Restaurant, search string) bool {
	needle := strings.ToLower(search)
	if strings.Contains(strings.ToLower(r.Name), needle) {
		return true
	}
	if strings.Contains(strings.ToLower(string(r.Category)), needle) {
		return true
	}
	for _, dish := range r.MustTry {
		if strings.Contains(strings.ToLower(dish), needle) {
			return true
		}
	}
	return false
}

// shapeRestaurant applies the field-level defaults of the public shape. The
// aggregate rating is always present, never nil.
func shapeRestaurant(r *model.Restaurant) {
	aggregate := r.AggregateRating()
	r.Rating = &aggregate

	if r.PriceTier == "" {
		r.PriceTier = defaultPriceTier
	}
	if len(r.MustTry) == 0 {
		r.MustTry = model.StringArray{defaultMustTry}
	}
}
