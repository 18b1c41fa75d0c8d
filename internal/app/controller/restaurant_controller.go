package controller

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/viraleats/viraleats-backend/internal/app/model"
	"github.com/viraleats/viraleats-backend/internal/app/service"
	"github.com/viraleats/viraleats-backend/internal/errors"
	"github.com/viraleats/viraleats-backend/internal/middleware"
)

type RestaurantController struct {
	restaurantService service.RestaurantService
}

func NewRestaurantController(restaurantService service.RestaurantService) *RestaurantController {
	return &RestaurantController{restaurantService: restaurantService}
}

// ListRestaurants handles GET /restaurants with the optional filters
// lat/lng/radius, halal, category, price, open_now, search, trending, limit.
func (ctrl *RestaurantController) ListRestaurants(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	opts := service.ListOptions{
		HalalOnly:    boolQuery(c, "halal"),
		Category:     c.Query("category"),
		PriceTier:    c.Query("price"),
		OpenNow:      boolQuery(c, "open_now"),
		Search:       c.Query("search"),
		TrendingOnly: boolQuery(c, "trending"),
	}

	if opts.Category != "" && !model.IsValidCategory(opts.Category) {
		errors.BadRequest(c, errors.ValidationInvalidCategory, "Unknown category: "+opts.Category)
		return
	}
	if opts.PriceTier != "" && !model.IsValidPriceTier(opts.PriceTier) {
		errors.BadRequest(c, errors.ValidationInvalidInput, "Unknown price tier: "+opts.PriceTier)
		return
	}

	latStr, lngStr := c.Query("lat"), c.Query("lng")
	if latStr != "" || lngStr != "" {
		lat, errLat := strconv.ParseFloat(latStr, 64)
		lng, errLng := strconv.ParseFloat(lngStr, 64)
		if errLat != nil || errLng != nil {
			errors.BadRequest(c, errors.ValidationInvalidLocation, "lat and lng must both be valid numbers")
			return
		}
		opts.Lat, opts.Lng = &lat, &lng

		if radiusStr := c.Query("radius"); radiusStr != "" {
			radius, err := strconv.ParseFloat(radiusStr, 64)
			if err != nil || radius <= 0 {
				errors.BadRequest(c, errors.ValidationInvalidLocation, "radius must be a positive number of km")
				return
			}
			opts.RadiusKm = radius
		}
	}

	if limitStr := c.Query("limit"); limitStr != "" {
		limit, err := strconv.Atoi(limitStr)
		if err != nil || limit <= 0 {
			errors.BadRequest(c, errors.ValidationInvalidInput, "limit must be a positive integer")
			return
		}
		opts.Limit = limit
	}

	restaurants, err := ctrl.restaurantService.List(c.Request.Context(), opts)
	if err != nil {
		log.Error("Failed to list restaurants", err, nil)
		info := errors.ParseError(err, "restaurant list")
		errors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	log.Info("Restaurants listed", map[string]interface{}{
		"count":    len(restaurants),
		"trending": opts.TrendingOnly,
		"halal":    opts.HalalOnly,
	})

	c.JSON(http.StatusOK, gin.H{
		"data":   restaurants,
		"count":  len(restaurants),
		"source": service.SourceDatabase,
	})
}

// GetRestaurantByID handles GET /restaurants/:id through the tiered cache.
func (ctrl *RestaurantController) GetRestaurantByID(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	id := strings.TrimSpace(c.Param("id"))
	if id == "" {
		errors.BadRequest(c, errors.ValidationRequired, "Restaurant id is required")
		return
	}

	restaurant, source, err := ctrl.restaurantService.GetByID(c.Request.Context(), id)
	if err != nil {
		if err == service.ErrRestaurantNotFound {
			log.Warn("Restaurant not found", map[string]interface{}{
				"restaurant_id": id,
			})
			errors.NotFound(c, errors.RestaurantNotFound, "Restaurant not found")
			return
		}
		log.Error("Failed to fetch restaurant", err, map[string]interface{}{
			"restaurant_id": id,
		})
		info := errors.ParseError(err, "restaurant")
		errors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	log.Info("Restaurant fetched", map[string]interface{}{
		"restaurant_id": restaurant.ID,
		"source":        source,
	})

	c.JSON(http.StatusOK, gin.H{
		"data":   restaurant,
		"source": source,
	})
}

func boolQuery(c *gin.Context, key string) bool {
	return strings.EqualFold(c.DefaultQuery(key, "false"), "true")
}
