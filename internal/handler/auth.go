package handler

import (
	"errors"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/config"
	"github.com/reelstack/movie-catalogue/internal/middleware"
	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/repository"
	"github.com/reelstack/movie-catalogue/internal/utils"
	"github.com/reelstack/movie-catalogue/internal/validation"
)

// AuthHandler bundles dependencies for registration, login, logout and
// profile endpoints.
type AuthHandler struct {
	Cfg      config.Config
	Users    UserStore
	Sessions SessionStore
	Movies   MovieStore // favorites population on /me and /users/:id
}

func NewAuthHandler(cfg config.Config, u UserStore, s SessionStore, m MovieStore) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Sessions: s, Movies: m}
}

type registerReq struct {
	Username string `json:"username" validate:"required,min=2"`
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type loginReq struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8"`
}

type updateProfileReq struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userPart struct {
	ID       primitive.ObjectID `json:"id"`
	Username string             `json:"username"`
	Email    string             `json:"email"`
}

// userOut is a user document with the favorites set resolved to movies.
type userOut struct {
	model.User
	Favorites []model.Movie `json:"favorites"`
}

// Register creates a new account with the default user role.
func (h *AuthHandler) Register(c echo.Context) error {
	var req registerReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msgs := validation.Struct(req); msgs != nil {
		return respondViolations(c, msgs)
	}
	if msg := validation.Password(req.Password); msg != "" {
		return respondViolations(c, []string{msg})
	}

	hash, err := utils.HashPassword(req.Password, h.Cfg.BcryptCost)
	if err != nil {
		return internalError(c)
	}
	ctx := c.Request().Context()
	id, err := h.Users.Create(ctx, req.Username, req.Email, hash, model.RoleUser)
	if err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return respondError(c, http.StatusConflict, "user already exists")
		}
		log.Printf("register: create user failed: %v", err)
		return internalError(c)
	}
	return respondMessage(c, http.StatusCreated, "user created", echo.Map{"id": id})
}

// Login verifies credentials and establishes both identity proofs: a
// server-side session and a signed bearer token, each delivered as an
// HttpOnly cookie. The bcrypt comparison runs to completion on this
// goroutine before any response is written; an unknown email and a wrong
// password are indistinguishable to the caller.
func (h *AuthHandler) Login(c echo.Context) error {
	var req loginReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if msgs := validation.Struct(req); msgs != nil {
		return respondViolations(c, msgs)
	}

	ctx := c.Request().Context()
	u, err := h.Users.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusUnauthorized, "incorrect credentials")
		}
		log.Printf("login: query failed: %v", err)
		return internalError(c)
	}
	if !utils.VerifyPassword(u.Password, req.Password) {
		return respondError(c, http.StatusUnauthorized, "incorrect credentials")
	}

	token, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID.Hex(), u.Role,
		time.Duration(h.Cfg.TokenTTLHours)*time.Hour)
	if err != nil {
		return internalError(c)
	}

	sessionTTL := time.Duration(h.Cfg.SessionTTLHours) * time.Hour
	if h.Sessions != nil {
		sid, err := h.Sessions.Create(ctx, u.ID.Hex())
		if err != nil {
			log.Printf("login: session create failed: %v", err)
			return internalError(c)
		}
		c.SetCookie(identityCookie(middleware.SessionCookie, sid, sessionTTL))
	}
	c.SetCookie(identityCookie(middleware.TokenCookie, token, sessionTTL))

	if err := h.Users.TouchLastSeen(ctx, u.ID); err != nil {
		log.Printf("login: touch lastSeen failed: %v", err)
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"message": "login true",
		"user":    userPart{ID: u.ID, Username: u.Username, Email: u.Email},
		"token":   token,
	})
}

// Logout invalidates the server-side session and clears both identity
// cookies. A session-store failure is reported, not swallowed.
func (h *AuthHandler) Logout(c echo.Context) error {
	if h.Sessions != nil {
		if cookie, err := c.Cookie(middleware.SessionCookie); err == nil && cookie.Value != "" {
			if err := h.Sessions.Delete(c.Request().Context(), cookie.Value); err != nil {
				log.Printf("logout: session delete failed: %v", err)
				return respondError(c, http.StatusInternalServerError, "logout failed")
			}
		}
	}
	c.SetCookie(expiredCookie(middleware.SessionCookie))
	c.SetCookie(expiredCookie(middleware.TokenCookie))
	return respondMessage(c, http.StatusOK, "logged out", nil)
}

// Me returns the authenticated user with favorites resolved to movies.
func (h *AuthHandler) Me(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	return h.respondUser(c, *u)
}

// GetUser returns a user's public profile by id.
func (h *AuthHandler) GetUser(c echo.Context) error {
	id, err := primitive.ObjectIDFromHex(c.Param("id"))
	if err != nil {
		return respondError(c, http.StatusBadRequest, "invalid id format")
	}
	u, err := h.Users.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return respondError(c, http.StatusNotFound, "user not found")
		}
		log.Printf("get user: query failed: %v", err)
		return internalError(c)
	}
	u.Password = ""
	return h.respondUser(c, u)
}

// UpdateProfile changes the authenticated user's email and/or password.
// At least one field must be provided and pass validation.
func (h *AuthHandler) UpdateProfile(c echo.Context) error {
	u := middleware.CurrentUser(c)
	if u == nil {
		return respondError(c, http.StatusUnauthorized, "not authenticated")
	}
	var req updateProfileReq
	if err := c.Bind(&req); err != nil {
		return respondError(c, http.StatusBadRequest, "invalid body")
	}
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	if req.Email == "" && req.Password == "" {
		return respondError(c, http.StatusBadRequest, "no fields provided")
	}

	ctx := c.Request().Context()
	if req.Email != "" {
		if msgs := validation.Struct(struct {
			Email string `validate:"required,email"`
		}{req.Email}); msgs != nil {
			return respondViolations(c, []string{"email must be a valid email address"})
		}
		taken, err := h.Users.EmailTaken(ctx, req.Email, u.ID)
		if err != nil {
			log.Printf("update profile: uniqueness check failed: %v", err)
			return internalError(c)
		}
		if taken {
			return respondError(c, http.StatusConflict, "email already in use")
		}
	}
	var hash string
	if req.Password != "" {
		if msg := validation.Password(req.Password); msg != "" {
			return respondViolations(c, []string{msg})
		}
		var err error
		hash, err = utils.HashPassword(req.Password, h.Cfg.BcryptCost)
		if err != nil {
			return internalError(c)
		}
	}

	if err := h.Users.UpdateCredentials(ctx, u.ID, req.Email, hash); err != nil {
		switch {
		case errors.Is(err, repository.ErrEmailExists):
			return respondError(c, http.StatusConflict, "email already in use")
		case errors.Is(err, repository.ErrNotFound):
			return respondError(c, http.StatusNotFound, "user not found")
		}
		log.Printf("update profile: update failed: %v", err)
		return internalError(c)
	}

	fresh, err := h.Users.GetByID(ctx, u.ID)
	if err != nil {
		log.Printf("update profile: reload failed: %v", err)
		return internalError(c)
	}
	fresh.Password = ""
	return h.respondUser(c, fresh)
}

func (h *AuthHandler) respondUser(c echo.Context, u model.User) error {
	favorites, err := h.Movies.ByIDs(c.Request().Context(), u.Favorites)
	if err != nil {
		log.Printf("resolve favorites failed: %v", err)
		return internalError(c)
	}
	return respondData(c, http.StatusOK, userOut{User: u, Favorites: favorites})
}

func identityCookie(name, value string, ttl time.Duration) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    value,
		Path:     "/",
		MaxAge:   int(ttl.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}

func expiredCookie(name string) *http.Cookie {
	return &http.Cookie{
		Name:     name,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	}
}
