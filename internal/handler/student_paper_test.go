package handler

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
)

func uploadCtx(t *testing.T, form url.Values, uid interface{}) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodPost, "/papers/upload", strings.NewReader(form.Encode()))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationForm)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if uid != nil {
		c.Set("user_id", uid)
	}
	return c, rec
}

func TestUploadRequiresAuthContext(t *testing.T) {
	h := &StudentHandler{}
	c, rec := uploadCtx(t, url.Values{}, nil)
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", rec.Code)
	}
}

func TestUploadMissingTitle(t *testing.T) {
	h := &StudentHandler{}
	form := url.Values{"paper_type": {"quiz"}, "course_id": {"1"}}
	c, rec := uploadCtx(t, form, uint64(7))
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestUploadInvalidPaperType(t *testing.T) {
	h := &StudentHandler{}
	form := url.Values{"title": {"DS quiz 3"}, "paper_type": {"pop-quiz"}, "course_id": {"1"}}
	c, rec := uploadCtx(t, form, uint64(7))
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestUploadInvalidCourseID(t *testing.T) {
	h := &StudentHandler{}
	form := url.Values{"title": {"DS quiz 3"}, "paper_type": {"quiz"}, "course_id": {"not-a-number"}}
	c, rec := uploadCtx(t, form, uint64(7))
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestUploadMissingFile(t *testing.T) {
	h := &StudentHandler{}
	form := url.Values{"title": {"DS quiz 3"}, "paper_type": {"quiz"}, "course_id": {"1"}}
	c, rec := uploadCtx(t, form, uint64(7))
	if err := h.Upload(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}
