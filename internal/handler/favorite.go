package handler

import (
	"errors"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/middleware"
	"github.com/reelstack/movie-catalogue/internal/repository"
)

// FavoriteHandler manages the authenticated user's favorites set. The
// acting identity is always the target user; there is no favoriting on
// behalf of someone else.
type FavoriteHandler struct {
	Users  UserStore
	Movies MovieStore
}

func NewFavoriteHandler(u UserStore, m MovieStore) *FavoriteHandler {
	return &FavoriteHandler{Users: u, Movies: m}
}

type favoriteReq struct {
	MovieID string `json:"movieId"`
}

// Add inserts a movie into the caller's favorites set. Adding a movie that
// is already present returns the unchanged set.
func (h *FavoriteHandler) Add(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	var req favoriteReq
	if err := c.Bind(&req); err != nil || req.MovieID == "" {
		return respondError(c, http.StatusBadRequest, "movieId is required")
	}
	movieID, err := primitive.ObjectIDFromHex(req.MovieID)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}

	favorites, err := h.Users.AddFavorite(c.Request().Context(), u.ID, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "user not found")
		}
		log.Printf("add favorite: update failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "added to favorites", favorites)
}

// Remove pulls a movie from the caller's favorites set. Removing a
// non-member is a no-op success.
func (h *FavoriteHandler) Remove(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	var req favoriteReq
	if err := c.Bind(&req); err != nil || req.MovieID == "" {
		return respondError(c, http.StatusBadRequest, "movieId is required")
	}
	movieID, err := primitive.ObjectIDFromHex(req.MovieID)
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}

	favorites, err := h.Users.RemoveFavorite(c.Request().Context(), u.ID, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "user not found")
		}
		log.Printf("remove favorite: update failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "removed from favorites", favorites)
}

// List resolves the caller's favorites to full movie records. References
// whose movie has been deleted out-of-band are dropped, not reported.
func (h *FavoriteHandler) List(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	ctx := c.Request().Context()
	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "user not found")
		}
		log.Printf("list favorites: query failed: %v", err)
		return internalError(c)
	}
	movies, err := h.Movies.ByIDs(ctx, fresh.Favorites)
	if err != nil {
		log.Printf("list favorites: resolve failed: %v", err)
		return internalError(c)
	}
	return respondList(c, http.StatusOK, len(movies), movies)
}
