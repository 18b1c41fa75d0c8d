package controller

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/viraleats/viraleats-backend/internal/app/service"
	"github.com/viraleats/viraleats-backend/internal/errors"
	"github.com/viraleats/viraleats-backend/internal/middleware"
)

type TrendingController struct {
	trendingService service.TrendingService
}

func NewTrendingController(trendingService service.TrendingService) *TrendingController {
	return &TrendingController{trendingService: trendingService}
}

// ListTrendingDishes handles GET /dishes/trending.
func (ctrl *TrendingController) ListTrendingDishes(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	limit := 0
	if limitStr := c.Query("limit"); limitStr != "" {
		n, err := strconv.Atoi(limitStr)
		if err != nil || n <= 0 {
			errors.BadRequest(c, errors.ValidationInvalidInput, "limit must be a positive integer")
			return
		}
		limit = n
	}

	dishes, err := ctrl.trendingService.ListTrendingDishes(limit)
	if err != nil {
		log.Error("Failed to list trending dishes", err, nil)
		info := errors.ParseError(err, "dish")
		errors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"data":  dishes,
		"count": len(dishes),
	})
}

// UpdateTrending handles POST /cron/update-trending, the manual trigger for
// the trending batch. The CronAuth middleware has already checked the secret.
func (ctrl *TrendingController) UpdateTrending(c *gin.Context) {
	log := middleware.GetLoggerFromContext(c)

	report, err := ctrl.trendingService.UpdateTrendingRanks()
	if err != nil {
		log.Error("Trending update failed", err, nil)
		info := errors.ParseError(err, "trending update")
		errors.RespondWithError(c, http.StatusInternalServerError, info.Code, info.Message)
		return
	}

	log.Info("Trending update triggered via HTTP", map[string]interface{}{
		"total":   report.Total,
		"updated": report.Updated,
		"failed":  report.Failed,
	})

	c.JSON(http.StatusOK, gin.H{
		"data": report,
	})
}
