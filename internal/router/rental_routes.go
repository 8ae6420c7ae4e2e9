package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-rental/internal/config"
	"github.com/iliyamo/movie-rental/internal/handler"
	"github.com/iliyamo/movie-rental/internal/middleware"
)

// RegisterRentals registers the rental endpoints. Writes move stock, so
// they also purge cached movie listings.
func RegisterRentals(e *echo.Echo, h *handler.RentalHandler, jwtSecret string, cc config.CacheConfig, rdb *redis.Client) {
	api := e.Group(BasePath + "/rentals")
	auth := middleware.JWTAuth(jwtSecret)
	purge := middleware.InvalidateCache(cc, rdb)

	api.GET("", h.List)
	api.GET("/:id", h.Get)
	api.POST("", h.Create, auth, purge)
	api.PUT("/:id", h.Update, auth, purge)
	api.DELETE("/:id", h.Delete, auth, purge)
}
