package handler

import (
	"database/sql" // SQL database interactions
	"errors"       // sentinel error matching
	"log"          // delivery failure logging
	"net/http"     // HTTP status codes and primitives
	"net/mail"     // RFC 5322 address validation
	"strings"      // string manipulation utilities
	"time"         // TTL arithmetic

	"github.com/labstack/echo/v4" // Echo framework for HTTP routing

	"github.com/sury19/ExamPaperPortal/internal/config"     // app configuration
	"github.com/sury19/ExamPaperPortal/internal/mailer"     // OTP message templates
	"github.com/sury19/ExamPaperPortal/internal/queue"      // outbound email events
	"github.com/sury19/ExamPaperPortal/internal/repository" // DB repositories
	queue_publisher "github.com/sury19/ExamPaperPortal/internal/service"
	"github.com/sury19/ExamPaperPortal/internal/utils" // token issuing
)

// AuthHandler bundles dependencies for the authentication endpoints:
// OTP issuance/verification for students and password login for admins.
type AuthHandler struct {
	Cfg   config.Config
	Users *repository.UserRepo
	Otps  *repository.OtpRepo
}

func NewAuthHandler(cfg config.Config, u *repository.UserRepo, o *repository.OtpRepo) *AuthHandler {
	return &AuthHandler{Cfg: cfg, Users: u, Otps: o}
}

// ----- DTOs -----

type sendOtpReq struct {
	Email string `json:"email"`
}
type verifyOtpReq struct {
	Email string `json:"email"`
	Otp   string `json:"otp"`
}

type userPart struct {
	ID      uint64 `json:"id"`
	Email   string `json:"email"`
	Name    string `json:"name"`
	IsAdmin bool   `json:"is_admin"`
}
type tokenResp struct {
	AccessToken string   `json:"access_token"`
	TokenType   string   `json:"token_type"`
	User        userPart `json:"user"`
}

func normalizeEmail(raw string) (string, bool) {
	email := strings.ToLower(strings.TrimSpace(raw))
	if email == "" {
		return "", false
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return "", false
	}
	return email, true
}

// SendOtp issues a fresh one-time code for the email and queues it for
// delivery.  The request succeeds once the challenge row is persisted;
// a failed queue publish is logged for operators but does not fail the
// call, since the user can always request a new code.  Re-requests
// inside the configured minimum interval are rejected with 429.
func (h *AuthHandler) SendOtp(c echo.Context) error {
	var req sendOtpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	email, ok := normalizeEmail(req.Email)
	if !ok {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "valid email required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	ttl := time.Duration(h.Cfg.OtpTTLMin) * time.Minute
	minGap := time.Duration(h.Cfg.OtpIssueGapSec) * time.Second
	ch, err := h.Otps.Issue(ctx, email, ttl, minGap)
	if err != nil {
		if errors.Is(err, repository.ErrIssueThrottled) {
			return c.JSON(http.StatusTooManyRequests, echo.Map{"detail": "code already sent, wait before retrying"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "could not create verification code"})
	}

	html, text := mailer.OtpBody(ch.Code, ttl)
	ev := queue.EmailRequestedEvent{
		To:          email,
		Subject:     mailer.OtpSubject(),
		HTML:        html,
		Text:        text,
		Kind:        "otp",
		RequestedAt: time.Now().UTC().Format(time.RFC3339),
	}
	if err := queue_publisher.PublishEmailRequested(ctx, ev); err != nil {
		// Challenge is persisted; surface the delivery problem to ops only.
		log.Printf("send-otp: email dispatch deferred for %s: %v", email, err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "OTP sent to your email"})
}

// VerifyOtp checks a submitted code.  On success the challenge is
// consumed, the student account is created if it did not exist, and a
// session token is returned.  Each failure mode maps to a distinct
// message so clients can explain what happened, but replays and wrong
// codes are all authentication failures.
func (h *AuthHandler) VerifyOtp(c echo.Context) error {
	var req verifyOtpReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	email, ok := normalizeEmail(req.Email)
	code := strings.TrimSpace(req.Otp)
	if !ok || code == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "email and otp required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Otps.Verify(ctx, email, code)
	if err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "no verification code found, request a new one"})
		case errors.Is(err, repository.ErrOTPExpired):
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "code expired, request a new one"})
		case errors.Is(err, repository.ErrOTPConsumed):
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "code already used, request a new one"})
		case errors.Is(err, repository.ErrOTPMismatch):
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "incorrect code"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "verification failed"})
		}
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role(), h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "issue token failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: access.Token,
		TokenType:   "bearer",
		User:        userPart{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin},
	})
}

// AdminLogin authenticates a pre-provisioned administrator with a
// password.  The form field is called "username" but carries the
// admin's email.  Wrong email, non-admin account and wrong password all
// return the same 401 so probing reveals nothing.
func (h *AuthHandler) AdminLogin(c echo.Context) error {
	email, okEmail := normalizeEmail(c.FormValue("username"))
	password := c.FormValue("password")
	if !okEmail || password == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "username and password required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid credentials"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "query failed"})
	}
	if !u.IsAdmin || u.PasswordHash == nil || !utils.VerifyPassword(*u.PasswordHash, password) {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "invalid credentials"})
	}

	access, err := utils.NewAccessToken(h.Cfg.JWTSecret, u.ID, u.Email, u.Role(), h.Cfg.SessionTTLHours)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "issue token failed"})
	}
	return c.JSON(http.StatusOK, tokenResp{
		AccessToken: access.Token,
		TokenType:   "bearer",
		User:        userPart{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin},
	})
}

// Me resolves the caller's identity from their token, returning the
// stored user record.
func (h *AuthHandler) Me(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	u, err := h.Users.GetByID(ctx, uid)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unknown user"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "load user failed"})
	}
	return c.JSON(http.StatusOK, userPart{ID: u.ID, Email: u.Email, Name: u.Name, IsAdmin: u.IsAdmin})
}
