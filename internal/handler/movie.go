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

// MovieHandler bundles dependencies for the movie endpoints, including the
// stores touched by the delete cascade.
type MovieHandler struct {
	Movies    MovieStore
	Casts     CastStore
	Reviews   ReviewStore
	Users     UserStore
	Publisher IntegrityPublisher // may be nil
}

func NewMovieHandler(m MovieStore, cs CastStore, rv ReviewStore, u UserStore, p IntegrityPublisher) *MovieHandler {
	return &MovieHandler{Movies: m, Casts: cs, Reviews: rv, Users: u, Publisher: p}
}

type movieReq struct {
	Title       string   `json:"title" validate:"required,min=1"`
	Description string   `json:"description"`
	Genre       []string `json:"genre" validate:"required,min=1,dive,required"`
	ReleaseDate string   `json:"releaseDate" validate:"required"`
	PosterURL   string   `json:"posterURL" validate:"required,url"`
	Cast        []string `json:"cast"`
}

type movieUpdateReq struct {
	Title       *string  `json:"title"`
	Description *string  `json:"description"`
	Genre       []string `json:"genre"`
	ReleaseDate *string  `json:"releaseDate"`
	PosterURL   *string  `json:"posterURL"`
}

// movieOut is a movie document with the cast set resolved to cast members.
type movieOut struct {
	model.Movie
	Cast []model.Cast `json:"cast"`
}

// List returns all movies, optionally filtered with ?genre=Action, each with
// its cast populated.
func (h *MovieHandler) List(c echo.Context) error {
	ctx := c.Request().Context()
	movies, err := h.Movies.List(ctx, c.QueryParam("genre"))
	if err != nil {
		log.Printf("list movies: query failed: %v", err)
		return internalError(c)
	}
	out, err := h.populate(c, movies)
	if err != nil {
		return internalError(c)
	}
	return respondList(c, http.StatusOK, len(out), out)
}

// Get returns one movie with its cast populated.
func (h *MovieHandler) Get(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	m, err := h.Movies.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "movie not found")
		}
		log.Printf("get movie: query failed: %v", err)
		return internalError(c)
	}
	out, err := h.populate(c, []model.Movie{m})
	if err != nil {
		return internalError(c)
	}
	return respondData(c, http.StatusOK, out[0])
}

// Create adds a new movie. Admin only. Cast ids, when given, are stored as
// weak references; linking through AddCast is what checks existence.
func (h *MovieHandler) Create(c echo.Context) error {
	var req movieReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if msgs := validation.Struct(req); msgs != nil {
		return respondViolations(c, msgs)
	}
	release, err := parseDate(req.ReleaseDate)
	if err != nil {
		return respondViolations(c, []string{"releasedate must be a valid date"})
	}
	castIDs, err := parseObjectIDs(req.Cast)
	if err != nil {
		return respondViolations(c, []string{"cast must contain valid ids"})
	}

	m := model.Movie{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		ReleaseDate: release,
		PosterURL:   req.PosterURL,
		Cast:        castIDs,
	}
	id, err := h.Movies.Insert(c.Request().Context(), &m)
	if err != nil {
		log.Printf("create movie: insert failed: %v", err)
		return internalError(c)
	}
	m.ID = id
	return respondMessage(c, http.StatusCreated, "movie added successfully", m)
}

// Update applies a partial movie update. Admin only.
func (h *MovieHandler) Update(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	var req movieUpdateReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	if req.Title == nil && req.Description == nil && req.Genre == nil &&
		req.ReleaseDate == nil && req.PosterURL == nil {
		return respondError(c, http.StatusBadRequest, "no fields provided")
	}
	if req.Genre != nil && len(req.Genre) == 0 {
		return respondViolations(c, []string{"genre must contain at least 1 entries"})
	}

	patch := model.MovieUpdate{
		Title:       req.Title,
		Description: req.Description,
		Genre:       req.Genre,
		PosterURL:   req.PosterURL,
	}
	if req.ReleaseDate != nil {
		release, err := parseDate(*req.ReleaseDate)
		if err != nil {
			return respondViolations(c, []string{"releasedate must be a valid date"})
		}
		patch.ReleaseDate = &release
	}

	ctx := c.Request().Context()
	if err := h.Movies.Update(ctx, id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "movie not found")
		}
		log.Printf("update movie: update failed: %v", err)
		return internalError(c)
	}
	m, err := h.Movies.GetByID(ctx, id)
	if err != nil {
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "movie updated", m)
}

// Delete removes a movie and cascades to its reviews and to favorites.
// Dependent cleanup runs first: reviews are deleted, then the movie id is
// pulled from favorites, then the movie document is removed. A failure
// after the first step publishes an integrity event so the queue consumer
// can finish the sweep.
func (h *MovieHandler) Delete(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	ctx := c.Request().Context()
	if _, err := h.Movies.GetByID(ctx, id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "movie not found")
		}
		log.Printf("delete movie: lookup failed: %v", err)
		return internalError(c)
	}

	if _, err := h.Reviews.DeleteByMovie(ctx, id); err != nil {
		log.Printf("delete movie: review cascade failed: %v", err)
		h.reportCascade(c, queue.IntegrityEvent{Type: queue.EventMovieCascade, MovieID: id.Hex()})
		return internalError(c)
	}
	if err := h.Users.PullFavoriteFromAll(ctx, id); err != nil {
		log.Printf("delete movie: favorites cascade failed: %v", err)
		h.reportCascade(c, queue.IntegrityEvent{Type: queue.EventMovieCascade, MovieID: id.Hex()})
		return internalError(c)
	}
	if err := h.Movies.Delete(ctx, id); err != nil {
		// Reviews are already gone; re-running the delete is safe.
		log.Printf("delete movie: delete failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "movie deleted", nil)
}

// AddCast links an existing cast member to a movie. Admin only. The set-add
// is duplicate-safe: relinking is a no-op success.
func (h *MovieHandler) AddCast(c echo.Context) error {
	movieID, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	castID, err := primitive.ObjectIDFromHex(c.Param("castId"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	ctx := c.Request().Context()
	if _, err := h.Casts.GetByID(ctx, castID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "cast member not found")
		}
		log.Printf("link cast: lookup failed: %v", err)
		return internalError(c)
	}
	if err := h.Movies.AddCastMember(ctx, movieID, castID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "movie not found")
		}
		log.Printf("link cast: update failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusOK, "cast member linked", nil)
}

// populate resolves the cast sets of the given movies with one batched
// lookup.
func (h *MovieHandler) populate(c echo.Context, movies []model.Movie) ([]movieOut, error) {
	union := []primitive.ObjectID{}
	seen := map[primitive.ObjectID]bool{}
	for _, m := range movies {
		for _, id := range m.Cast {
			if !seen[id] {
				seen[id] = true
				union = append(union, id)
			}
		}
	}
	members, err := h.Casts.ByIDs(c.Request().Context(), union)
	if err != nil {
		log.Printf("populate cast failed: %v", err)
		return nil, err
	}
	byID := make(map[primitive.ObjectID]model.Cast, len(members))
	for _, cm := range members {
		byID[cm.ID] = cm
	}
	out := make([]movieOut, 0, len(movies))
	for _, m := range movies {
		cast := []model.Cast{}
		for _, id := range m.Cast {
			if cm, ok := byID[id]; ok {
				cast = append(cast, cm)
			}
		}
		out = append(out, movieOut{Movie: m, Cast: cast})
	}
	return out, nil
}

func (h *MovieHandler) reportCascade(c echo.Context, ev queue.IntegrityEvent) {
	if h.Publisher == nil {
		return
	}
	ev.OccurredAt = time.Now().UTC()
	if err := h.Publisher.Publish(c.Request().Context(), ev); err != nil {
		log.Printf("integrity event publish failed: %v", err)
	}
}

func parseObjectIDs(hexes []string) ([]primitive.ObjectID, error) {
	ids := make([]primitive.ObjectID, 0, len(hexes))
	for _, h := range hexes {
		id, err := primitive.ObjectIDFromHex(h)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, nil
}
