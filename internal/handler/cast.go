package handler

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/queue"
	"github.com/reelstack/movie-catalogue/internal/repository"
	"github.com/reelstack/movie-catalogue/internal/validation"
)

// CastHandler bundles dependencies for the cast endpoints.
type CastHandler struct {
	Casts     CastStore
	Movies    MovieStore
	Publisher IntegrityPublisher // may be nil
}

func NewCastHandler(cs CastStore, m MovieStore, p IntegrityPublisher) *CastHandler {
	return &CastHandler{Casts: cs, Movies: m, Publisher: p}
}

type castReq struct {
	Name     string `json:"name" validate:"required,min=1"`
	Bio      string `json:"bio" validate:"required,min=1"`
	Role     string `json:"role" validate:"required,min=1"`
	PhotoURL string `json:"photoURL"`
	BirthDay string `json:"birthDay" validate:"required"`
}

// Get returns one cast member.
func (h *CastHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	member, err := h.Casts.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "cast member not found")
		}
		log.Printf("get cast: query failed: %v", err)
		return internalError(c)
	}
	return respondData(c, http.StatusOK, member)
}

// GetByMovie returns the resolved cast set of a movie.
func (h *CastHandler) GetByMovie(c echo.Context) error {
	movieID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	ctx := c.Request().Context()
	m, err := h.Movies.GetByID(ctx, movieID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "movie not found")
		}
		log.Printf("get movie cast: query failed: %v", err)
		return internalError(c)
	}
	members, err := h.Casts.ByIDs(ctx, m.Cast)
	if err != nil {
		log.Printf("get movie cast: resolve failed: %v", err)
		return internalError(c)
	}
	return respondData(c, http.StatusOK, members)
}

// Create adds a new cast member. Admin only.
func (h *CastHandler) Create(c echo.Context) error {
	var req castReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if msgs := validation.Struct(req); msgs != nil {
		return respondViolations(c, msgs)
	}
	birthday, err := parseDate(req.BirthDay)
	if err != nil {
		return respondViolations(c, []string{"birthday must be a valid date"})
	}

	member := model.Cast{
		Name:     req.Name,
		Bio:      req.Bio,
		Role:     req.Role,
		PhotoURL: req.PhotoURL,
		BirthDay: birthday,
	}
	id, err := h.Casts.Insert(c.Request().Context(), &member)
	if err != nil {
		log.Printf("create cast: insert failed: %v", err)
		return internalError(c)
	}
	member.ID = id
	return respondMessage(c, http.StatusCreated, "cast member created", member)
}

// Delete removes a cast member. Admin only. The member is pulled from every
// movie's cast set first; only then is the document removed, so an
// interrupted cascade leaves the record in place to retry against. A pull
// failure publishes an integrity event for the queue consumer.
func (h *CastHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	ctx := c.Request().Context()
	if _, err := h.Casts.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "cast member not found")
		}
		log.Printf("delete cast: lookup failed: %v", err)
		return internalError(c)
	}

	if err := h.Movies.PullCastFromAll(ctx, id); err != nil {
		log.Printf("delete cast: pull cascade failed: %v", err)
		if h.Publisher != nil {
			ev := queue.IntegrityEvent{Type: queue.EventCastCascade, CastID: id.Hex(), OccurredAt: time.Now().UTC()}
			if perr := h.Publisher.Publish(ctx, ev); perr != nil {
				log.Printf("integrity event publish failed: %v", perr)
			}
		}
		return internalError(c)
	}
	if err := h.Casts.Delete(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "cast member not found")
		}
		log.Printf("delete cast: delete failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "cast member deleted", nil)
}
