package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/utils"
)

const testSecret = "middleware-test-secret"

// run sends a request through the given middleware chain with a probe
// handler that records whether it was reached and what identity the
// context carried.
func run(t *testing.T, header string, mws ...echo.MiddlewareFunc) (*httptest.ResponseRecorder, bool, echo.Context) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if header != "" {
		req.Header.Set("Authorization", header)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	reached := false
	h := func(c echo.Context) error {
		reached = true
		return c.NoContent(http.StatusOK)
	}
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	if err := h(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	return rec, reached, c
}

func TestJWTAuthMissingHeader(t *testing.T) {
	rec, reached, _ := run(t, "", JWTAuth(testSecret))
	if reached {
		t.Fatal("handler ran without a token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthMalformedHeader(t *testing.T) {
	for _, h := range []string{"Bearer", "Token abc", "bearer abc", "Bearer not-a-jwt"} {
		rec, reached, _ := run(t, h, JWTAuth(testSecret))
		if reached {
			t.Fatalf("handler ran with header %q", h)
		}
		if rec.Code != http.StatusUnauthorized {
			t.Errorf("header %q: status = %d, want 401", h, rec.Code)
		}
	}
}

func TestJWTAuthExpiredToken(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 5, "s@x.edu", "STUDENT", -1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, reached, _ := run(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if reached {
		t.Fatal("handler ran with an expired token")
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestJWTAuthValidTokenInjectsIdentity(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 5, "s@x.edu", "STUDENT", 1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, reached, c := run(t, "Bearer "+tok.Token, JWTAuth(testSecret))
	if !reached {
		t.Fatalf("handler not reached, status = %d body = %s", rec.Code, rec.Body.String())
	}
	if got, _ := c.Get("user_id").(uint64); got != 5 {
		t.Errorf("user_id = %v, want 5", c.Get("user_id"))
	}
	if got, _ := c.Get("email").(string); got != "s@x.edu" {
		t.Errorf("email = %v", c.Get("email"))
	}
	if got, _ := c.Get("is_admin").(bool); got {
		t.Error("student token marked is_admin")
	}
	if got, _ := c.Get("role").(string); got != "STUDENT" {
		t.Errorf("role = %v, want STUDENT", c.Get("role"))
	}
}

func TestRequireAdminBlocksStudent(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 5, "s@x.edu", "STUDENT", 1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, reached, _ := run(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireAdmin())
	if reached {
		t.Fatal("handler ran for a student on an admin route")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}

func TestRequireAdminAllowsAdmin(t *testing.T) {
	tok, err := utils.NewAccessToken(testSecret, 1, "a@x.edu", "ADMIN", 1)
	if err != nil {
		t.Fatalf("NewAccessToken: %v", err)
	}
	rec, reached, _ := run(t, "Bearer "+tok.Token, JWTAuth(testSecret), RequireAdmin())
	if !reached {
		t.Fatalf("handler not reached, status = %d body = %s", rec.Code, rec.Body.String())
	}
	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", rec.Code)
	}
}

func TestRequireAdminWithoutAuthContext(t *testing.T) {
	// RequireAdmin alone, no JWTAuth before it: must fail closed.
	rec, reached, _ := run(t, "", RequireAdmin())
	if reached {
		t.Fatal("handler ran without any identity in context")
	}
	if rec.Code != http.StatusForbidden {
		t.Errorf("status = %d, want 403", rec.Code)
	}
}
