package router

import (
	"github.com/gin-gonic/gin"
	"github.com/viraleats/viraleats-backend/config"
	"github.com/viraleats/viraleats-backend/internal/app/controller"
	"github.com/viraleats/viraleats-backend/internal/middleware"
)

type Router struct {
	restaurantController *controller.RestaurantController
	trendingController   *controller.TrendingController
	config               *config.Config
}

func NewRouter(
	restaurantController *controller.RestaurantController,
	trendingController *controller.TrendingController,
	cfg *config.Config,
) *Router {
	return &Router{
		restaurantController: restaurantController,
		trendingController:   trendingController,
		config:               cfg,
	}
}

func (r *Router) Setup() *gin.Engine {
	gin.SetMode(r.config.Server.GinMode)

	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.LoggingMiddleware())
	router.Use(corsMiddleware(r.config.CORS.AllowedOrigins))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "healthy",
			"message": "Viral Eats MY API is running",
		})
	})

	v1 := router.Group("/api/v1")
	{
		restaurants := v1.Group("/restaurants")
		{
			restaurants.GET("", r.restaurantController.ListRestaurants)
			restaurants.GET("/:id", r.restaurantController.GetRestaurantByID)
		}

		dishes := v1.Group("/dishes")
		{
			dishes.GET("/trending", r.trendingController.ListTrendingDishes)
		}

		cron := v1.Group("/cron")
		cron.Use(middleware.CronAuth(r.config.Trending.Secret))
		{
			cron.POST("/update-trending", r.trendingController.UpdateTrending)
		}
	}

	return router
}

func corsMiddleware(allowedOrigins []string) gin.HandlerFunc {
	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")

		allowed := false
		for _, allowedOrigin := range allowedOrigins {
			if origin == allowedOrigin || allowedOrigin == "*" {
				allowed = true
				break
			}
		}

		if allowed {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}

		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-Cron-Secret, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT, DELETE, PATCH")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	}
}
