package controller

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viraleats/viraleats-backend/internal/app/model"
)

func TestUpdateTrending_RequiresSecret(t *testing.T) {
	f := setupControllerTest(t, "s3cret")
	seedControllerRestaurants(t, f.restaurantRepo)

	w := f.request(t, http.MethodPost, "/api/v1/cron/update-trending", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "CRON_UNAUTHORIZED", decodeBody(t, w)["error"])

	w = f.request(t, http.MethodPost, "/api/v1/cron/update-trending", map[string]string{
		"X-Cron-Secret": "wrong",
	})
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestUpdateTrending_WithHeaderSecret(t *testing.T) {
	f := setupControllerTest(t, "s3cret")
	seedControllerRestaurants(t, f.restaurantRepo)

	w := f.request(t, http.MethodPost, "/api/v1/cron/update-trending", map[string]string{
		"X-Cron-Secret": "s3cret",
	})
	require.Equal(t, http.StatusOK, w.Code)

	report := decodeBody(t, w)["data"].(map[string]interface{})
	assert.EqualValues(t, 2, report["total"])
	assert.EqualValues(t, 2, report["updated"])
	assert.EqualValues(t, 0, report["failed"])
	assert.EqualValues(t, 1, report["marked_trending"])
}

func TestUpdateTrending_WithQuerySecret(t *testing.T) {
	f := setupControllerTest(t, "s3cret")

	w := f.request(t, http.MethodPost, "/api/v1/cron/update-trending?secret=s3cret", nil)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestUpdateTrending_DisabledWithoutConfiguredSecret(t *testing.T) {
	f := setupControllerTest(t, "")

	w := f.request(t, http.MethodPost, "/api/v1/cron/update-trending?secret=anything", nil)
	require.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Equal(t, "CRON_UNAUTHORIZED", decodeBody(t, w)["error"])
}

func TestListTrendingDishes(t *testing.T) {
	f := setupControllerTest(t, "")

	require.NoError(t, f.restaurantRepo.Create(&model.Restaurant{ID: "r1", Name: "Restoran Rebung"}))
	require.NoError(t, f.restaurantRepo.Create(&model.Restaurant{ID: "r2", Name: "Warung Sri"}))
	require.NoError(t, f.dishRepo.Create(&model.TrendingDish{
		RestaurantID: "r1", Name: "Gulai Lemak Cili Api", ViralScore: 88,
	}))
	require.NoError(t, f.dishRepo.Create(&model.TrendingDish{
		RestaurantID: "r2", Name: "Nasi Lemak Special", ViralScore: 72,
	}))

	w := f.request(t, http.MethodGet, "/api/v1/dishes/trending", nil)
	require.Equal(t, http.StatusOK, w.Code)

	body := decodeBody(t, w)
	assert.EqualValues(t, 2, body["count"])
	dishes := body["data"].([]interface{})
	first := dishes[0].(map[string]interface{})
	assert.Equal(t, "Gulai Lemak Cili Api", first["name"])

	w = f.request(t, http.MethodGet, "/api/v1/dishes/trending?limit=1", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, decodeBody(t, w)["count"])

	w = f.request(t, http.MethodGet, "/api/v1/dishes/trending?limit=-3", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
