package handler

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/config"
)

func strPtr(s string) *string { return &s }

func TestValidateReview(t *testing.T) {
	cases := []struct {
		name       string
		req        reviewReq
		wantStatus string
		wantReason *string
		wantErr    bool
	}{
		{name: "approve", req: reviewReq{Status: "approved"}, wantStatus: "approved"},
		{name: "approve mixed case", req: reviewReq{Status: " Approved "}, wantStatus: "approved"},
		{
			// Approval always clears any reason the client sent along.
			name:       "approve with stray reason",
			req:        reviewReq{Status: "approved", RejectionReason: strPtr("old reason")},
			wantStatus: "approved",
		},
		{
			name:       "reject with reason",
			req:        reviewReq{Status: "rejected", RejectionReason: strPtr("  duplicate upload  ")},
			wantStatus: "rejected",
			wantReason: strPtr("duplicate upload"),
		},
		{name: "reject without reason", req: reviewReq{Status: "rejected"}, wantErr: true},
		{name: "reject with blank reason", req: reviewReq{Status: "rejected", RejectionReason: strPtr("   ")}, wantErr: true},
		{name: "unknown status", req: reviewReq{Status: "pending"}, wantErr: true},
		{name: "empty status", req: reviewReq{}, wantErr: true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			status, reason, err := validateReview(c.req)
			if c.wantErr {
				if err == nil {
					t.Fatalf("expected error, got status=%q", status)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if status != c.wantStatus {
				t.Errorf("status = %q, want %q", status, c.wantStatus)
			}
			switch {
			case c.wantReason == nil && reason != nil:
				t.Errorf("reason = %q, want nil", *reason)
			case c.wantReason != nil && reason == nil:
				t.Errorf("reason = nil, want %q", *c.wantReason)
			case c.wantReason != nil && *reason != *c.wantReason:
				t.Errorf("reason = %q, want %q", *reason, *c.wantReason)
			}
		})
	}
}

func TestReviewPaperBadID(t *testing.T) {
	h := &AdminHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/papers/abc/review", strings.NewReader(`{"status":"approved"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("abc")

	if err := h.ReviewPaper(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestReviewPaperInvalidBody(t *testing.T) {
	h := &AdminHandler{}
	e := echo.New()
	req := httptest.NewRequest(http.MethodPatch, "/papers/1/review", strings.NewReader(`{"status":"maybe"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.SetParamNames("id")
	c.SetParamValues("1")

	if err := h.ReviewPaper(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestNewAdminHandlerNilRepo(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Error("expected panic on nil repository")
		}
	}()
	NewAdminHandler(nil, nil, nil, nil, config.CacheConfig{})
}
