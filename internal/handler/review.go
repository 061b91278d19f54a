package handler

import (
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/middleware"
	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/repository"
	"github.com/reelstack/movie-catalogue/internal/validation"
)

// ReviewHandler bundles dependencies for the review endpoints.
type ReviewHandler struct {
	Reviews ReviewStore
}

func NewReviewHandler(rv ReviewStore) *ReviewHandler {
	return &ReviewHandler{Reviews: rv}
}

type reviewReq struct {
	MovieID string `json:"movieID" validate:"required"`
	Rating  int    `json:"rating" validate:"required,gte=1,lte=10"`
	Title   string `json:"title" validate:"required,min=1"`
	Text    string `json:"text"`
}

type reviewUpdateReq struct {
	Rating *int    `json:"rating"`
	Title  *string `json:"title"`
	Text   *string `json:"text"`
}

// Create adds a review authored by the authenticated user.
func (h *ReviewHandler) Create(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if msgs := validation.Struct(req); msgs != nil {
		return respondViolations(c, msgs)
	}
	movieID, err := primitive.ObjectIDFromHex(req.MovieID)
	if err != nil {
		return respondViolations(c, []string{"movieid must be a valid id"})
	}

	rv := model.Review{
		UserID:  u.ID,
		MovieID: movieID,
		Rating:  req.Rating,
		Title:   req.Title,
		Text:    req.Text,
	}
	id, err := h.Reviews.Insert(c.Request().Context(), &rv)
	if err != nil {
		log.Printf("create review: insert failed: %v", err)
		return internalError(c)
	}
	rv.ID = id
	return respondData(c, http.StatusCreated, rv)
}

// Get returns one review.
func (h *ReviewHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	rv, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "review not found")
		}
		log.Printf("get review: query failed: %v", err)
		return internalError(c)
	}
	return respondData(c, http.StatusOK, rv)
}

// ListByMovie returns all reviews for a movie, newest first.
func (h *ReviewHandler) ListByMovie(c echo.Context) error {
	movieID, err := primitive.ObjectIDFromHex(c.Param("movieId"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	reviews, err := h.Reviews.ListByMovie(c.Request().Context(), movieID)
	if err != nil {
		log.Printf("list reviews: query failed: %v", err)
		return internalError(c)
	}
	return respondList(c, http.StatusOK, len(reviews), reviews)
}

// Update patches a review. Only the author or an admin may mutate it; the
// patched rating is re-validated against the 1..10 range.
func (h *ReviewHandler) Update(c echo.Context) error {
	rv, ok, failed := h.loadOwned(c)
	if !ok {
		return failed
	}
	var req reviewUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if req.Rating == nil && req.Title == nil && req.Text == nil {
		return respondError(c, http.StatusBadRequest, "no fields provided")
	}
	if req.Rating != nil && (*req.Rating < model.RatingMin || *req.Rating > model.RatingMax) {
		return respondViolations(c, []string{
			fmt.Sprintf("rating must be between %d and %d", model.RatingMin, model.RatingMax),
		})
	}
	if req.Title != nil && *req.Title == "" {
		return respondViolations(c, []string{"title is required"})
	}

	ctx := c.Request().Context()
	patch := model.ReviewUpdate{Rating: req.Rating, Title: req.Title, Text: req.Text}
	if err := h.Reviews.Update(ctx, rv.ID, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "review not found")
		}
		log.Printf("update review: update failed: %v", err)
		return internalError(c)
	}
	fresh, err := h.Reviews.GetByID(ctx, rv.ID)
	if err != nil {
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "review updated", fresh)
}

// Delete removes a review under the same ownership rule as Update.
func (h *ReviewHandler) Delete(c echo.Context) error {
	rv, ok, failed := h.loadOwned(c)
	if !ok {
		return failed
	}
	if err := h.Reviews.Delete(c.Request().Context(), rv.ID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "review not found")
		}
		log.Printf("delete review: delete failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "review deleted", nil)
}

// loadOwned fetches the review from the path and enforces that the caller
// is its author or an admin. When the check fails it writes the response and
// reports ok=false; the caller returns the accompanying error as-is.
func (h *ReviewHandler) loadOwned(c echo.Context) (model.Review, bool, error) {
	u := middleware.CurrentUser(c)
	if u == nil {
		return model.Review{}, false, respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return model.Review{}, false, respondError(c, http.StatusBadRequest, "invalid id format")
	}
	rv, err := h.Reviews.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return model.Review{}, false, respondError(c, http.StatusNotFound, "review not found")
		}
		log.Printf("load review: query failed: %v", err)
		return model.Review{}, false, internalError(c)
	}
	if rv.UserID != u.ID && !u.IsAdmin() {
		return model.Review{}, false, respondError(c, http.StatusForbidden, "not allowed to modify this review")
	}
	return rv, true, nil
}
