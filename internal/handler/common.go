package handler // handler defines http handlers

import (
	"context"
	"errors"
	"time"

	"github.com/labstack/echo/v4"
)

// dbTimeout bounds every persistence call made from a handler so a slow
// store cannot accumulate unbounded concurrent request holders.
const dbTimeout = 5 * time.Second

// reqContext derives a deadline-bound context from the request.
func reqContext(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), dbTimeout)
}

// getUserID extracts the authenticated user's ID from echo.Context.
// JWTAuth stores it as uint64; anything else means the route was wired
// without the middleware.
func getUserID(c echo.Context) (uint64, error) {
	if v, ok := c.Get("user_id").(uint64); ok {
		return v, nil
	}
	return 0, errors.New("invalid user_id in context")
}
