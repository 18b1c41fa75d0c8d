package service

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/internal/db"
)

func floatPtr(v float64) *float64 { return &v }

func fixedClock(t time.Time) func() time.Time {
	return func() time.Time { return t }
}

func TestComputeViralScore(t *testing.T) {
	tests := []struct {
		name        string
		rating      *float64
		reviewCount int
		isHalal     bool
		rotation    float64
		expected    float64
	}{
		{"nil rating counts as zero", nil, 0, false, 0, 0},
		{"rating only", floatPtr(4.5), 0, false, 0, 45},
		{"halal bonus", floatPtr(4.5), 0, true, 0, 55},
		{"rotation added", floatPtr(4.0), 0, false, 7, 47},
		{"99 reviews add 20", floatPtr(0), 99, false, 0, 20},
		{"review volume caps at 30", floatPtr(5.0), 10_000_000, true, 0, 90},
		{"rounded to two decimals", floatPtr(3.33), 0, false, 0, 33.3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ComputeViralScore(tt.rating, tt.reviewCount, tt.isHalal, tt.rotation)
			assert.InDelta(t, tt.expected, got, 0.001)
		})
	}
}

func TestComputeViralScore_Monotonic(t *testing.T) {
	base := ComputeViralScore(floatPtr(4.0), 100, false, 0)

	assert.Greater(t, ComputeViralScore(floatPtr(4.0), 100, true, 0), base,
		"halal never lowers the score")
	assert.Greater(t, ComputeViralScore(floatPtr(4.0), 500, false, 0), base,
		"more reviews never lower the score below the cap")
	assert.Greater(t, ComputeViralScore(floatPtr(4.5), 100, false, 0), base,
		"higher rating never lowers the score")
}

func TestDailyRotation(t *testing.T) {
	for day := 1; day <= 31; day++ {
		for _, id := range []string{"", "a", "ChIJabc123", "r-9981"} {
			got := DailyRotation(id, day)
			assert.GreaterOrEqual(t, got, 0.0)
			assert.Less(t, got, 10.0)
			assert.Equal(t, got, DailyRotation(id, day), "same inputs give the same rotation")
		}
	}

	// Different days usually reshuffle.
	assert.NotEqual(t, DailyRotation("abc", 1), DailyRotation("abc", 2))
}

func TestRecommendPercent_Clamped(t *testing.T) {
	assert.Equal(t, 75, recommendPercent(0))
	assert.Equal(t, 75, recommendPercent(19))
	assert.Equal(t, 80, recommendPercent(40))
	assert.Equal(t, 95, recommendPercent(100))
	assert.Equal(t, 95, recommendPercent(500))
}

func seedScoringRestaurants(t *testing.T, repo repository.RestaurantRepository, n int) {
	t.Helper()
	for i := 0; i < n; i++ {
		rating := 3.0 + float64(i)*0.2
		r := &model.Restaurant{
			ID:          fmt.Sprintf("r%02d", i),
			Name:        fmt.Sprintf("Restoran %02d", i),
			City:        "Kuala Lumpur",
			Category:    model.CategoryRestaurant,
			Rating:      &rating,
			ReviewCount: 50 + i*100,
			IsHalal:     i%2 == 0,
		}
		require.NoError(t, repo.Create(r))
	}
}

func TestUpdateTrendingRanks(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	restaurantRepo := repository.NewRestaurantRepository(gdb)
	dishRepo := repository.NewDishRepository(gdb)
	clock := fixedClock(time.Date(2026, time.August, 31, 3, 0, 0, 0, time.UTC))
	svc := NewTrendingService(restaurantRepo, dishRepo, TrendingConfig{TopPercent: 0.15, TopDishes: 5}, clock)

	seedScoringRestaurants(t, restaurantRepo, 10)

	report, err := svc.UpdateTrendingRanks()
	require.NoError(t, err)

	assert.Equal(t, 10, report.Total)
	assert.Equal(t, 10, report.Updated)
	assert.Equal(t, 0, report.Failed)
	assert.Equal(t, 2, report.MarkedTrending, "ceil(10 * 0.15) = 2")
	assert.Equal(t, 5, report.DishesCreated)
	assert.Equal(t, 0, report.DishFailures)

	var trendingCount int64
	require.NoError(t, gdb.Model(&model.Restaurant{}).Where("is_trending = ?", true).Count(&trendingCount).Error)
	assert.EqualValues(t, 2, trendingCount)

	var unscored int64
	require.NoError(t, gdb.Model(&model.Restaurant{}).Where("viral_score = 0").Count(&unscored).Error)
	assert.EqualValues(t, 0, unscored, "every restaurant gets a score")
}

func TestUpdateTrendingRanks_SingleRestaurant(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	restaurantRepo := repository.NewRestaurantRepository(gdb)
	dishRepo := repository.NewDishRepository(gdb)
	svc := NewTrendingService(restaurantRepo, dishRepo, TrendingConfig{}, nil)

	seedScoringRestaurants(t, restaurantRepo, 1)

	report, err := svc.UpdateTrendingRanks()
	require.NoError(t, err)

	assert.Equal(t, 1, report.MarkedTrending, "at least one restaurant is always marked")
	assert.Equal(t, 1, report.DishesCreated)
}

func TestUpdateTrendingRanks_EmptyTable(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	svc := NewTrendingService(
		repository.NewRestaurantRepository(gdb),
		repository.NewDishRepository(gdb),
		TrendingConfig{}, nil,
	)

	report, err := svc.UpdateTrendingRanks()
	require.NoError(t, err)
	assert.Equal(t, 0, report.Total)
	assert.Equal(t, 0, report.MarkedTrending)
}

func TestUpdateTrendingRanks_DishesAreIdempotent(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	restaurantRepo := repository.NewRestaurantRepository(gdb)
	dishRepo := repository.NewDishRepository(gdb)
	clock := fixedClock(time.Date(2026, time.September, 4, 3, 0, 0, 0, time.UTC))
	svc := NewTrendingService(restaurantRepo, dishRepo, TrendingConfig{TopPercent: 0.15, TopDishes: 5}, clock)

	seedScoringRestaurants(t, restaurantRepo, 10)

	first, err := svc.UpdateTrendingRanks()
	require.NoError(t, err)
	assert.Equal(t, 5, first.DishesCreated)

	second, err := svc.UpdateTrendingRanks()
	require.NoError(t, err)
	assert.Equal(t, 0, second.DishesCreated, "existing dishes are never recreated")
	assert.Equal(t, 0, second.DishFailures)

	var dishCount int64
	require.NoError(t, gdb.Model(&model.TrendingDish{}).Count(&dishCount).Error)
	assert.EqualValues(t, 5, dishCount)
}

func TestUpdateTrendingRanks_DishUsesMustTry(t *testing.T) {
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	defer db.CleanupTestDB(gdb)

	restaurantRepo := repository.NewRestaurantRepository(gdb)
	dishRepo := repository.NewDishRepository(gdb)
	svc := NewTrendingService(restaurantRepo, dishRepo, TrendingConfig{}, nil)

	rating := 4.8
	require.NoError(t, restaurantRepo.Create(&model.Restaurant{
		ID:          "r-musttry",
		Name:        "Restoran Rebung",
		Rating:      &rating,
		ReviewCount: 1200,
		MustTry:     model.StringArray{"Nasi Lemak Royale", "Rendang Tok"},
	}))
	require.NoError(t, restaurantRepo.Create(&model.Restaurant{
		ID:          "r-plain",
		Name:        "Kedai Kopi Lim",
		Rating:      &rating,
		ReviewCount: 300,
	}))

	_, err = svc.UpdateTrendingRanks()
	require.NoError(t, err)

	var dishes []model.TrendingDish
	require.NoError(t, gdb.Order("restaurant_id").Find(&dishes).Error)
	require.Len(t, dishes, 2)

	assert.Equal(t, "Nasi Lemak Royale", dishes[0].Name)
	assert.Equal(t, "Kedai Kopi Lim Signature Dish", dishes[1].Name)
	assert.Contains(t, dishes[1].Description, "Kedai Kopi Lim")
	assert.Equal(t, "RM 15-30", dishes[1].Price)
	assert.GreaterOrEqual(t, dishes[0].RecommendPct, 75)
	assert.LessOrEqual(t, dishes[0].RecommendPct, 95)
}
