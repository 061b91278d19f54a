// Package router wires the HTTP routes to their handlers and middleware.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/reelstack/movie-catalogue/internal/handler"
)

// Handlers collects everything the router needs. Authn resolves the
// request identity, Admin additionally enforces the admin role, Limiter
// throttles the credential endpoints; any of the three may be a
// pass-through in tests.
type Handlers struct {
	Auth      *handler.AuthHandler
	Movies    *handler.MovieHandler
	Cast      *handler.CastHandler
	Reviews   *handler.ReviewHandler
	Favorites *handler.FavoriteHandler

	Authn   echo.MiddlewareFunc
	Admin   echo.MiddlewareFunc
	Limiter echo.MiddlewareFunc
}

// Register attaches every route. Registration and login are the only
// mutating operations outside the authorization gate.
func Register(e *echo.Echo, h Handlers) {
	e.GET("/healthz", handler.Health)

	api := e.Group("/api")

	auth := api.Group("/auth")
	auth.POST("/register", h.Auth.Register, h.Limiter)
	auth.POST("/login", h.Auth.Login, h.Limiter)
	auth.POST("/logout", h.Auth.Logout)
	auth.GET("/me", h.Auth.Me, h.Authn)
	auth.PUT("/update", h.Auth.UpdateProfile, h.Authn)

	users := api.Group("/users")
	users.GET("/favorites", h.Favorites.List, h.Authn)
	users.POST("/favorites", h.Favorites.Add, h.Authn)
	users.DELETE("/favorites", h.Favorites.Remove, h.Authn)
	users.GET("/:id", h.Auth.GetUser)

	movies := api.Group("/movies")
	movies.GET("", h.Movies.List)
	movies.GET("/:id", h.Movies.Get)
	movies.POST("", h.Movies.Create, h.Authn, h.Admin)
	movies.PUT("/:id", h.Movies.Update, h.Authn, h.Admin)
	movies.DELETE("/:id", h.Movies.Delete, h.Authn, h.Admin)
	movies.POST("/:id/cast/:castId", h.Movies.AddCast, h.Authn, h.Admin)

	cast := api.Group("/cast")
	cast.GET("/movie/:id", h.Cast.GetByMovie, h.Authn)
	cast.GET("/:id", h.Cast.Get, h.Authn)
	cast.POST("", h.Cast.Create, h.Authn, h.Admin)
	cast.DELETE("/:id", h.Cast.Delete, h.Authn, h.Admin)

	reviews := api.Group("/reviews")
	reviews.GET("/movie/:movieId", h.Reviews.ListByMovie)
	reviews.GET("/:id", h.Reviews.Get)
	reviews.POST("", h.Reviews.Create, h.Authn)
	reviews.PUT("/:id", h.Reviews.Update, h.Authn)
	reviews.DELETE("/:id", h.Reviews.Delete, h.Authn)
}
