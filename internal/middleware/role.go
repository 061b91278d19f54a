package middleware

import (
	"net/http"

	"github.com/labstack/echo/v4"
)

// RequireAdmin rejects requests whose authenticated user does not hold the
// admin role. It must run after Authenticate.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			u := CurrentUser(c)
			if u == nil || !u.IsAdmin() {
				return c.JSON(http.StatusForbidden, echo.Map{
					"success": false,
					"error":   "access denied: admin privileges required",
				})
			}
			return next(c)
		}
	}
}
