package handler

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// Every response uses the same envelope the frontend consumes:
// {success, data?, error?, message?, count?}.

func respondData(c echo.Context, status int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "data": data})
}

func respondList(c echo.Context, status int, count int, data any) error {
	return c.JSON(status, echo.Map{"success": true, "count": count, "data": data})
}

func respondMessage(c echo.Context, status int, msg string, data any) error {
	body := echo.Map{"success": true, "message": msg}
	if data != nil {
		body["data"] = data
	}
	return c.JSON(status, body)
}

func respondError(c echo.Context, status int, msg string) error {
	return c.JSON(status, echo.Map{"success": false, "error": msg})
}

// respondViolations reports a failed validation: the first violation is the
// headline error, the full list rides along for form display.
func respondViolations(c echo.Context, msgs []string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"error":   msgs[0],
		"details": msgs,
	})
}

func internalError(c echo.Context) error {
	return respondError(c, http.StatusInternalServerError, "internal server error")
}

// parseDate accepts the date formats clients actually send: plain dates and
// RFC 3339 timestamps.
func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
