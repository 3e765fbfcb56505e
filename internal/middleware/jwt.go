package middleware // declare the middleware package; contains reusable HTTP middleware functions

import (
	"net/http" // HTTP status codes for responses
	"strings"  // string utilities for prefix checking and trimming

	"github.com/labstack/echo/v4" // Echo framework used for defining middleware and handlers

	"github.com/sury19/ExamPaperPortal/internal/utils" // session token parsing
)

// JWTAuth returns an Echo middleware that validates a Bearer session token
// and injects the caller's identity into the request context.  The
// provided secret must match the one used when issuing tokens.  This
// middleware is the single choke point for protected routes: no handler
// behind it runs without a verified identity, and handlers read the
// caller via `c.Get("user_id")`, `c.Get("email")` and `c.Get("is_admin")`.
func JWTAuth(secret string) echo.MiddlewareFunc {
	// The outer function returns a middleware function.  Echo executes this
	// once when registering the middleware.
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		// The returned handler is invoked for each incoming HTTP request.
		return func(c echo.Context) error {
			// Read the Authorization header.  A valid header should start
			// with "Bearer " followed by the token.  If it doesn't, respond
			// with 401 Unauthorized indicating that authentication is
			// required.
			auth := c.Request().Header.Get("Authorization")
			if !strings.HasPrefix(auth, "Bearer ") {
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "missing bearer token"})
			}
			// Remove the "Bearer " prefix to obtain the raw token string.
			raw := strings.TrimPrefix(auth, "Bearer ")

			// Validate signature and expiry and recover the identity the
			// token encodes.  Expired and tampered tokens are both rejected
			// with 401; the distinction only matters for the message.
			id, err := utils.ParseAccessToken(secret, raw)
			if err != nil {
				msg := "invalid token"
				if err == utils.ErrTokenExpired {
					msg = "token expired"
				}
				return c.JSON(http.StatusUnauthorized, echo.Map{"detail": msg})
			}

			// Store the identity fields in the context.  Handlers and
			// downstream middleware access these values via c.Get().
			c.Set("user_id", id.UserID)
			c.Set("email", id.Email)
			c.Set("is_admin", id.IsAdmin)
			role := "STUDENT"
			if id.IsAdmin {
				role = "ADMIN"
			}
			c.Set("role", role)
			// Call the next handler in the chain and return its result.
			return next(c)
		}
	}
}
