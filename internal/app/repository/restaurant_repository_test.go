package repository

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/db"
)

func setupRepos(t *testing.T) (*gorm.DB, RestaurantRepository, DishRepository) {
	t.Helper()
	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })
	return gdb, NewRestaurantRepository(gdb), NewDishRepository(gdb)
}

func TestRestaurantRepository_CreateAndFind(t *testing.T) {
	_, repo, _ := setupRepos(t)

	rating := 4.3
	require.NoError(t, repo.Create(&model.Restaurant{
		ID:        "ChIJtest1",
		Name:      "Restoran Yut Kee",
		City:      "Kuala Lumpur",
		Category:  model.CategoryRestaurant,
		Rating:    &rating,
		Hours:     model.HoursMap{"monday": "8am-5pm"},
		PhotoURLs: model.StringArray{"https://example.com/p1.jpg"},
	}))

	got, err := repo.FindByID("ChIJtest1")
	require.NoError(t, err)
	assert.Equal(t, "Restoran Yut Kee", got.Name)
	assert.Equal(t, "8am-5pm", got.Hours["monday"])
	assert.Equal(t, model.StringArray{"https://example.com/p1.jpg"}, got.PhotoURLs)

	_, err = repo.FindByID("nope")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestRestaurantRepository_UpsertRefreshesDiscoveryFields(t *testing.T) {
	_, repo, _ := setupRepos(t)

	google := 4.0
	require.NoError(t, repo.Upsert(&model.Restaurant{
		ID:           "place-1",
		Name:         "Kedai Makan Lama",
		GoogleRating: &google,
		ReviewCount:  100,
	}))

	// Simulate the trending batch having run since discovery.
	require.NoError(t, repo.UpdateTrendingFields("place-1", 77.5, true))

	// Rediscovery refreshes provider data but not batch-computed fields.
	google2 := 4.4
	require.NoError(t, repo.Upsert(&model.Restaurant{
		ID:           "place-1",
		Name:         "Kedai Makan Baharu",
		GoogleRating: &google2,
		ReviewCount:  160,
	}))

	got, err := repo.FindByID("place-1")
	require.NoError(t, err)
	assert.Equal(t, "Kedai Makan Baharu", got.Name)
	assert.Equal(t, 160, got.ReviewCount)
	require.NotNil(t, got.GoogleRating)
	assert.InDelta(t, 4.4, *got.GoogleRating, 0.001)
	assert.True(t, got.IsTrending)
	assert.InDelta(t, 77.5, got.ViralScore, 0.001)
}

func TestRestaurantRepository_FindCandidatesStableOrder(t *testing.T) {
	gdb, repo, _ := setupRepos(t)

	base := time.Date(2026, time.August, 1, 0, 0, 0, 0, time.UTC)
	for _, seed := range []struct {
		id     string
		offset time.Duration
	}{
		{"c-late", 2 * time.Hour},
		{"a-early", 0},
		{"b-early", 0}, // same timestamp as a-early, id breaks the tie
	} {
		r := model.Restaurant{ID: seed.id, Name: "Restoran " + seed.id}
		require.NoError(t, repo.Create(&r))
		require.NoError(t, gdb.Model(&model.Restaurant{}).
			Where("id = ?", seed.id).
			Update("created_at", base.Add(seed.offset)).Error)
	}

	got, err := repo.FindCandidates(CandidateFilter{})
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, "a-early", got[0].ID)
	assert.Equal(t, "b-early", got[1].ID)
	assert.Equal(t, "c-late", got[2].ID)

	limited, err := repo.FindCandidates(CandidateFilter{Limit: 2})
	require.NoError(t, err)
	assert.Len(t, limited, 2)
}

func TestRestaurantRepository_UpdateEnrichment(t *testing.T) {
	_, repo, _ := setupRepos(t)

	require.NoError(t, repo.Create(&model.Restaurant{ID: "r1", Name: "Restoran Rebung"}))

	fetchedAt := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateEnrichment("r1", EnrichmentFields{
		Rank:       "#12 of 450",
		PriceRange: "RM 20 - RM 60",
		Tags:       []string{"Malaysian", "Halal"},
		Snippet:    "Buffet-style kampung cooking.",
		FetchedAt:  fetchedAt,
	}))

	got, err := repo.FindByID("r1")
	require.NoError(t, err)
	assert.True(t, got.TAEnriched)
	assert.Equal(t, "#12 of 450", got.TARank)
	assert.Equal(t, model.StringArray{"Malaysian", "Halal"}, got.TATags)
	require.NotNil(t, got.TAEnrichedAt)
}

func TestDishRepository_ExistsForRestaurant(t *testing.T) {
	_, restaurantRepo, dishRepo := setupRepos(t)

	require.NoError(t, restaurantRepo.Create(&model.Restaurant{ID: "r1", Name: "Restoran Rebung"}))

	exists, err := dishRepo.ExistsForRestaurant("r1")
	require.NoError(t, err)
	assert.False(t, exists)

	require.NoError(t, dishRepo.Create(&model.TrendingDish{
		RestaurantID: "r1",
		Name:         "Gulai Lemak Cili Api",
		Price:        "RM 15-30",
		RecommendPct: 88,
		ViralScore:   81.2,
	}))

	exists, err = dishRepo.ExistsForRestaurant("r1")
	require.NoError(t, err)
	assert.True(t, exists)

	// The unique index keeps it at one dish per restaurant.
	err = dishRepo.Create(&model.TrendingDish{RestaurantID: "r1", Name: "Duplicate"})
	assert.Error(t, err)
}

func TestDishRepository_ListTrendingOrdersByScore(t *testing.T) {
	_, restaurantRepo, dishRepo := setupRepos(t)

	for _, seed := range []struct {
		id    string
		score float64
	}{
		{"r-low", 40}, {"r-high", 90}, {"r-mid", 65},
	} {
		require.NoError(t, restaurantRepo.Create(&model.Restaurant{ID: seed.id, Name: "Restoran " + seed.id}))
		require.NoError(t, dishRepo.Create(&model.TrendingDish{
			RestaurantID: seed.id,
			Name:         seed.id + " dish",
			ViralScore:   seed.score,
		}))
	}

	got, err := dishRepo.ListTrending(2)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "r-high", got[0].RestaurantID)
	assert.Equal(t, "r-mid", got[1].RestaurantID)
}
