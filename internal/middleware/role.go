package middleware // middleware provides shared request processing for handlers

import (
	"net/http" // http package defines standard HTTP status codes

	"github.com/labstack/echo/v4" // echo provides middleware chaining and context
)

// RequireAdmin returns a middleware that enforces the admin role on a
// route group.  It assumes JWTAuth already ran and stored the verified
// is_admin flag in the context; a valid token with is_admin=false is
// rejected with 403 Forbidden, distinguishing insufficient role from
// missing authentication.
func RequireAdmin() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			// Retrieve the flag from context.  It should have been stored
			// by JWTAuth as a bool.  If not present or of wrong type,
			// treat as not an admin.
			v := c.Get("is_admin")
			isAdmin, ok := v.(bool)
			if !ok || !isAdmin {
				return c.JSON(http.StatusForbidden, echo.Map{"detail": "admin access required"})
			}
			// Otherwise call the next handler in the chain
			return next(c)
		}
	}
}
