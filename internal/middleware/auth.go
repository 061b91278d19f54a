// Package middleware implements the request authorization gate: identity
// resolution (session first, bearer token second) and role enforcement.
package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/reelstack/movie-catalogue/internal/model"
	"github.com/reelstack/movie-catalogue/internal/utils"
)

// SessionCookie is the cookie carrying the server-side session id;
// TokenCookie carries the signed bearer token for browser clients that do
// not set an Authorization header.
const (
	SessionCookie = "sid"
	TokenCookie   = "token"
)

const userContextKey = "user"

// SessionLookup resolves a session id to the owning user id hex.
// Implemented by repository.SessionRepo.
type SessionLookup interface {
	Lookup(ctx context.Context, sid string) (string, error)
}

// UserLoader fetches the user document behind a resolved identity.
// Implemented by repository.UserRepo.
type UserLoader interface {
	GetByID(ctx context.Context, id primitive.ObjectID) (model.User, error)
}

// Authenticate returns middleware that resolves the request's identity and
// attaches the user to the echo context. Resolution order is fixed: the
// session cookie is consulted first, then the bearer token (Authorization
// header or token cookie). When both proofs are present they must agree on
// the user id; a mismatch is rejected outright instead of silently picking
// one. The gate only reads state.
func Authenticate(sessions SessionLookup, users UserLoader, secret string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			ctx := c.Request().Context()

			var sessionUID string
			if sessions != nil {
				if cookie, err := c.Cookie(SessionCookie); err == nil && cookie.Value != "" {
					uid, err := sessions.Lookup(ctx, cookie.Value)
					if err == nil {
						sessionUID = uid
					}
				}
			}

			var tokenUID string
			if raw := bearerToken(c); raw != "" {
				uid, _, err := utils.ParseAccessToken(secret, raw)
				if err != nil {
					// A present-but-invalid token only fails the request
					// when there is no valid session to fall back on.
					if sessionUID == "" {
						return unauthenticated(c, "invalid or expired token")
					}
				} else {
					tokenUID = uid
				}
			}

			if sessionUID != "" && tokenUID != "" && sessionUID != tokenUID {
				return unauthenticated(c, "credentials do not match")
			}

			uid := sessionUID
			if uid == "" {
				uid = tokenUID
			}
			if uid == "" {
				return unauthenticated(c, "access denied: no token or session provided")
			}

			oid, err := primitive.ObjectIDFromHex(uid)
			if err != nil {
				return unauthenticated(c, "invalid identity")
			}
			u, err := users.GetByID(ctx, oid)
			if err != nil {
				return unauthenticated(c, "user not found")
			}
			u.Password = ""
			c.Set(userContextKey, &u)
			return next(c)
		}
	}
}

// CurrentUser returns the user attached by Authenticate, or nil on routes
// that did not pass through the gate.
func CurrentUser(c echo.Context) *model.User {
	u, _ := c.Get(userContextKey).(*model.User)
	return u
}

func bearerToken(c echo.Context) string {
	auth := c.Request().Header.Get("Authorization")
	if strings.HasPrefix(auth, "Bearer ") {
		return strings.TrimPrefix(auth, "Bearer ")
	}
	if cookie, err := c.Cookie(TokenCookie); err == nil {
		return cookie.Value
	}
	return ""
}

func unauthenticated(c echo.Context, msg string) error {
	return c.JSON(http.StatusUnauthorized, echo.Map{"success": false, "error": msg})
}
