package router

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/iliyamo/movie-rental/internal/config"
	"github.com/iliyamo/movie-rental/internal/handler"
	"github.com/iliyamo/movie-rental/internal/middleware"
)

// Catalog groups the handlers for genres, movies and customers.
type Catalog struct {
	Genres    *handler.GenreHandler
	Movies    *handler.MovieHandler
	Customers *handler.CustomerHandler
}

// RegisterCatalog registers genre, movie and customer endpoints. Reads are
// public and genre/movie listings are served from the Redis cache; writes
// need a JWT and deletes an admin JWT. Every successful write purges the
// cache.
func RegisterCatalog(e *echo.Echo, h Catalog, jwtSecret string, cc config.CacheConfig, rdb *redis.Client) {
	api := e.Group(BasePath)
	cached := middleware.NewRedisCache(cc, rdb)
	auth := middleware.JWTAuth(jwtSecret)
	admin := middleware.RequireAdmin()
	purge := middleware.InvalidateCache(cc, rdb)

	// ---- Genres ----
	api.GET("/genres", h.Genres.List, cached)
	api.GET("/genres/:id", h.Genres.Get, cached)
	api.POST("/genres", h.Genres.Create, auth, purge)
	api.PUT("/genres/:id", h.Genres.Update, auth, purge)
	api.DELETE("/genres/:id", h.Genres.Delete, auth, admin, purge)

	// ---- Movies ----
	api.GET("/movies", h.Movies.List, cached)
	api.GET("/movies/search", h.Movies.Search, cached)
	api.GET("/movies/:id", h.Movies.Get, cached)
	api.POST("/movies", h.Movies.Create, auth, purge)
	api.PUT("/movies/:id", h.Movies.Update, auth, purge)
	api.DELETE("/movies/:id", h.Movies.Delete, auth, admin, purge)

	// ---- Customers ----
	api.GET("/customers", h.Customers.List)
	api.GET("/customers/:id", h.Customers.Get)
	api.POST("/customers", h.Customers.Create, auth)
	api.PUT("/customers/:id", h.Customers.Update, auth)
	api.DELETE("/customers/:id", h.Customers.Delete, auth, admin)
}
