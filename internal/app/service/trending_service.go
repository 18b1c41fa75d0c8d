package service

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/pkg/logger"
)

// UpdateReport summarizes one trending batch run. Per-record failures are
// counted here instead of aborting the run.
type UpdateReport struct {
	Total          int `json:"total"`
	Updated        int `json:"updated"`
	Failed         int `json:"failed"`
	MarkedTrending int `json:"marked_trending"`
	DishesCreated  int `json:"dishes_created"`
	DishFailures   int `json:"dish_failures"`
}

// TrendingConfig holds the batch knobs. Both 10% and 15% have been used as
// the trending cut upstream; 15% is the default.
type TrendingConfig struct {
	TopPercent float64 // fraction of restaurants marked trending
	TopDishes  int     // how many top restaurants get a dish synthesized
}

type TrendingService interface {
	UpdateTrendingRanks() (*UpdateReport, error)
	ListTrendingDishes(limit int) ([]model.TrendingDish, error)
}

type trendingService struct {
	restaurantRepo repository.RestaurantRepository
	dishRepo       repository.DishRepository
	cfg            TrendingConfig
	now            func() time.Time
}

// NewTrendingService creates the trending batch service. A nil clock
// defaults to time.Now; tests inject a fixed one so the daily rotation term
// is reproducible.
func NewTrendingService(
	restaurantRepo repository.RestaurantRepository,
	dishRepo repository.DishRepository,
	cfg TrendingConfig,
	clock func() time.Time,
) TrendingService {
	if cfg.TopPercent <= 0 || cfg.TopPercent > 1 {
		cfg.TopPercent = 0.15
	}
	if cfg.TopDishes <= 0 {
		cfg.TopDishes = 5
	}
	if clock == nil {
		clock = time.Now
	}
	return &trendingService{
		restaurantRepo: restaurantRepo,
		dishRepo:       dishRepo,
		cfg:            cfg,
		now:            clock,
	}
}

// ComputeViralScore is the canonical scoring formula:
//
//	rating*10 + min(log10(reviews+1)*10, 30) + 10 if halal + rotation
//
// A nil rating counts as 0. The result is rounded to two decimals and never
// negative. The rotation term is deterministic (see DailyRotation); a random
// jitter variant existed upstream but makes batches non-reproducible.
func ComputeViralScore(rating *float64, reviewCount int, isHalal bool, rotation float64) float64 {
	score := 0.0
	if rating != nil {
		score += *rating * 10
	}

	if reviewCount > 0 {
		volume := math.Log10(float64(reviewCount)+1) * 10
		score += math.Min(volume, 30)
	}

	if isHalal {
		score += 10
	}

	score += rotation
	if score < 0 {
		return 0
	}
	return math.Round(score*100) / 100
}

// DailyRotation derives a small deterministic term in [0, 10) from a
// restaurant id and the calendar day of month, so the ranking reshuffles
// slightly each day without storing any state.
func DailyRotation(id string, dayOfMonth int) float64 {
	if id == "" {
		return float64(dayOfMonth % 10)
	}
	return float64((int(id[0]) + dayOfMonth) % 10)
}

// UpdateTrendingRanks scores every restaurant, marks the top slice as
// trending and synthesizes dishes for the very top. Persistence is attempted
// per record; one bad row never aborts the batch.
func (s *trendingService) UpdateTrendingRanks() (*UpdateReport, error) {
	started := s.now()
	logger.Info("Starting trending rank update", map[string]interface{}{
		"top_percent": s.cfg.TopPercent,
	})

	restaurants, err := s.restaurantRepo.FindAllForScoring()
	if err != nil {
		logger.Error("Failed to fetch restaurants for trending update", err)
		return nil, err
	}

	report := &UpdateReport{Total: len(restaurants)}
	if len(restaurants) == 0 {
		logger.Warn("No restaurants to score", nil)
		return report, nil
	}

	day := started.Day()
	scores := make([]float64, len(restaurants))
	for i := range restaurants {
		r := &restaurants[i]
		rating := r.Rating
		if rating == nil {
			rating = r.GoogleRating
		}
		if rating == nil {
			rating = r.TripAdvisorRating
		}
		scores[i] = ComputeViralScore(rating, r.ReviewCount, r.IsHalal, DailyRotation(r.ID, day))
	}

	// Stable sort: ties keep their fetch order, so the percentile boundary
	// is reproducible between runs.
	order := make([]int, len(restaurants))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return scores[order[a]] > scores[order[b]]
	})

	trendingCount := int(math.Ceil(float64(len(restaurants)) * s.cfg.TopPercent))
	if trendingCount < 1 {
		trendingCount = 1
	}
	report.MarkedTrending = trendingCount

	for rank, idx := range order {
		r := &restaurants[idx]
		isTrending := rank < trendingCount

		if err := s.restaurantRepo.UpdateTrendingFields(r.ID, scores[idx], isTrending); err != nil {
			report.Failed++
			logger.Error("Failed to persist trending fields", err, map[string]interface{}{
				"restaurant_id": r.ID,
			})
			continue
		}
		report.Updated++

		if rank < s.cfg.TopDishes {
			s.synthesizeDish(r, scores[idx], report)
		}
	}

	logger.Info("Trending rank update completed", map[string]interface{}{
		"total":           report.Total,
		"updated":         report.Updated,
		"failed":          report.Failed,
		"marked_trending": report.MarkedTrending,
		"dishes_created":  report.DishesCreated,
		"dish_failures":   report.DishFailures,
		"duration_ms":     time.Since(started).Milliseconds(),
	})
	return report, nil
}

// synthesizeDish creates at most one trending dish per restaurant. Existing
// dishes are never refreshed.
func (s *trendingService) synthesizeDish(r *model.Restaurant, score float64, report *UpdateReport) {
	exists, err := s.dishRepo.ExistsForRestaurant(r.ID)
	if err != nil {
		report.DishFailures++
		logger.Error("Failed to check for existing trending dish", err, map[string]interface{}{
			"restaurant_id": r.ID,
		})
		return
	}
	if exists {
		return
	}

	name := fmt.Sprintf("%s Signature Dish", r.Name)
	if len(r.MustTry) > 0 {
		name = r.MustTry[0]
	}

	dish := &model.TrendingDish{
		RestaurantID: r.ID,
		Name:         name,
		Description:  fmt.Sprintf("The dish everyone is talking about at %s", r.Name),
		Price:        "RM 15-30",
		MentionCount: r.ReviewCount,
		RecommendPct: recommendPercent(score),
		ViralScore:   score,
	}

	if err := s.dishRepo.Create(dish); err != nil {
		report.DishFailures++
		return
	}
	report.DishesCreated++
}

// recommendPercent derives a stable percentage from the score, clamped to
// [75, 95].
func recommendPercent(score float64) int {
	pct := 70 + int(score)/4
	if pct < 75 {
		return 75
	}
	if pct > 95 {
		return 95
	}
	return pct
}

func (s *trendingService) ListTrendingDishes(limit int) ([]model.TrendingDish, error) {
	dishes, err := s.dishRepo.ListTrending(limit)
	if err != nil {
		return nil, err
	}
	return dishes, nil
}
