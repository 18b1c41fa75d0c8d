package controller

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/repository"
	"github.com/viraleats/viraleats-backend/internal/app/service"
	"github.com/viraleats/viraleats-backend/internal/db"
	"github.com/viraleats/viraleats-backend/internal/middleware"
	"github.com/viraleats/viraleats-backend/pkg/cache"
)

type controllerFixture struct {
	engine         *gin.Engine
	restaurantRepo repository.RestaurantRepository
	dishRepo       repository.DishRepository
}

func setupControllerTest(t *testing.T, cronSecret string) *controllerFixture {
	t.Helper()
	gin.SetMode(gin.TestMode)

	gdb, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() { db.CleanupTestDB(gdb) })

	restaurantRepo := repository.NewRestaurantRepository(gdb)
	dishRepo := repository.NewDishRepository(gdb)

	clock := func() time.Time {
		return time.Date(2026, time.August, 31, 11, 0, 0, 0, time.UTC)
	}
	restaurantSvc := service.NewRestaurantService(
		restaurantRepo, cache.New(30*time.Minute, clock), nil, 0, nil, clock)
	trendingSvc := service.NewTrendingService(
		restaurantRepo, dishRepo, service.TrendingConfig{}, clock)

	restaurantCtrl := NewRestaurantController(restaurantSvc)
	trendingCtrl := NewTrendingController(trendingSvc)

	engine := gin.New()
	v1 := engine.Group("/api/v1")
	v1.GET("/restaurants", restaurantCtrl.ListRestaurants)
	v1.GET("/restaurants/:id", restaurantCtrl.GetRestaurantByID)
	v1.GET("/dishes/trending", trendingCtrl.ListTrendingDishes)

	cron := v1.Group("/cron")
	cron.Use(middleware.CronAuth(cronSecret))
	cron.POST("/update-trending", trendingCtrl.UpdateTrending)

	return &controllerFixture{
		engine:         engine,
		restaurantRepo: restaurantRepo,
		dishRepo:       dishRepo,
	}
}

func (f *controllerFixture) request(t *testing.T, method, target string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, nil)
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	f.engine.ServeHTTP(w, req)
	return w
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]interface{} {
	t.Helper()
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func seedControllerRestaurants(t *testing.T, repo repository.RestaurantRepository) {
	t.Helper()
	rating := 4.5
	require.NoError(t, repo.Create(&model.Restaurant{
		ID: "r1", Name: "Nasi Kandar Pelita",
		Category: model.CategoryRestaurant, Rating: &rating,
		PriceTier: model.PriceBudget, IsHalal: true,
	}))
	require.NoError(t, repo.Create(&model.Restaurant{
		ID: "r2", Name: "Village Park Restaurant",
		Category: model.CategoryRestaurant, Rating: &rating,
		PriceTier: model.PriceModerate, IsHalal: true,
	}))
}

func TestListRestaurants(t *testing.T) {
	f := setupControllerTest(t, "")
	seedControllerRestaurants(t, f.restaurantRepo)

	w := f.request(t, http.MethodGet, "/api/v1/restaurants", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])
	assert.Equal(t, "source", body["source"])
	assert.Len(t, body["data"], 2)
}

func TestListRestaurants_Validation(t *testing.T) {
	f := setupControllerTest(t, "")

	tests := []struct {
		name      string
		target    string
		errorCode string
	}{
		{"unknown category", "/api/v1/restaurants?category=foodtruck", "VALIDATION_INVALID_CATEGORY"},
		{"unknown price tier", "/api/v1/restaurants?price=cheap", "VALIDATION_INVALID_INPUT"},
		{"lat without lng", "/api/v1/restaurants?lat=3.15", "VALIDATION_INVALID_LOCATION"},
		{"non-numeric lat", "/api/v1/restaurants?lat=north&lng=101.7", "VALIDATION_INVALID_LOCATION"},
		{"negative radius", "/api/v1/restaurants?lat=3.15&lng=101.7&radius=-5", "VALIDATION_INVALID_LOCATION"},
		{"bad limit", "/api/v1/restaurants?limit=zero", "VALIDATION_INVALID_INPUT"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := f.request(t, http.MethodGet, tt.target, nil)
			require.Equal(t, http.StatusBadRequest, w.Code)
			body := decodeBody(t, w)
			assert.Equal(t, tt.errorCode, body["error"])
			assert.NotEmpty(t, body["message"])
		})
	}
}

func TestListRestaurants_FilterPassthrough(t *testing.T) {
	f := setupControllerTest(t, "")
	seedControllerRestaurants(t, f.restaurantRepo)

	w := f.request(t, http.MethodGet, "/api/v1/restaurants?price=$&limit=10", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 1, body["count"])
}

func TestGetRestaurantByID(t *testing.T) {
	f := setupControllerTest(t, "")
	seedControllerRestaurants(t, f.restaurantRepo)

	w := f.request(t, http.MethodGet, "/api/v1/restaurants/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.Equal(t, "source", body["source"])
	data := body["data"].(map[string]interface{})
	assert.Equal(t, "Nasi Kandar Pelita", data["name"])
	assert.NotNil(t, data["rating"])

	// Second hit is answered by the memory tier.
	w = f.request(t, http.MethodGet, "/api/v1/restaurants/r1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "memory-cache", decodeBody(t, w)["source"])
}

func TestGetRestaurantByID_NotFound(t *testing.T) {
	f := setupControllerTest(t, "")

	w := f.request(t, http.MethodGet, "/api/v1/restaurants/missing", nil)
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "RESTAURANT_NOT_FOUND", decodeBody(t, w)["error"])
}
