// Package handler defines HTTP handlers for the admin review surface:
// the dashboard counters, the pending queue and the two paper
// mutations (review and metadata edit). All routes in this file sit
// behind JWTAuth plus RequireAdmin.
package handler

import (
	"context"
	"database/sql"
	"errors"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/sury19/ExamPaperPortal/internal/config"
	"github.com/sury19/ExamPaperPortal/internal/middleware"
	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/repository"
)

// AdminHandler bundles the repositories the review and course
// management endpoints need, plus the Redis client used to purge the
// public listing cache after writes.  Cache may be nil; purging then
// degrades to a no-op the same way the cache middleware itself does.
type AdminHandler struct {
	Users    *repository.UserRepo
	Papers   *repository.PaperRepo
	Courses  *repository.CourseRepo
	Cache    *redis.Client
	CacheCfg config.CacheConfig
}

func NewAdminHandler(u *repository.UserRepo, p *repository.PaperRepo, cr *repository.CourseRepo, rdb *redis.Client, cacheCfg config.CacheConfig) *AdminHandler {
	if u == nil || p == nil || cr == nil {
		panic("nil repository passed to NewAdminHandler")
	}
	return &AdminHandler{Users: u, Papers: p, Courses: cr, Cache: rdb, CacheCfg: cacheCfg}
}

// purgeListingCache drops cached public listing responses after a write
// that changes what anonymous browsers see.  The database commit already
// happened, so failures are logged for operators, never surfaced to the
// caller.
func (h *AdminHandler) purgeListingCache(ctx context.Context) {
	if err := middleware.PurgeCache(ctx, h.Cache, h.CacheCfg); err != nil {
		log.Printf("cache purge failed: %v", err)
	}
}

// Dashboard handles GET /admin/dashboard and returns aggregate counts
// for the admin landing page.
func (h *AdminHandler) Dashboard(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	totalPapers, pendingPapers, err := h.Papers.Counts(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "count papers failed"})
	}
	totalUsers, err := h.Users.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "count users failed"})
	}
	totalCourses, err := h.Courses.Count(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "count courses failed"})
	}
	return c.JSON(http.StatusOK, echo.Map{
		"total_papers":   totalPapers,
		"pending_papers": pendingPapers,
		"total_users":    totalUsers,
		"total_courses":  totalCourses,
	})
}

// ListPending handles GET /papers/pending: every paper awaiting review,
// newest first, denormalized with course and uploader details.
func (h *AdminHandler) ListPending(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Papers.ListPending(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "list pending failed"})
	}
	return c.JSON(http.StatusOK, rows)
}

type reviewReq struct {
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason"`
}

// validateReview normalizes and checks a review request body.  A
// rejection needs a non-empty reason; an approval always clears it.
func validateReview(req reviewReq) (status string, reason *string, err error) {
	status = strings.ToLower(strings.TrimSpace(req.Status))
	switch status {
	case model.PaperStatusApproved:
		return status, nil, nil
	case model.PaperStatusRejected:
		if req.RejectionReason == nil || strings.TrimSpace(*req.RejectionReason) == "" {
			return "", nil, errors.New("rejection_reason required when rejecting")
		}
		r := strings.TrimSpace(*req.RejectionReason)
		return status, &r, nil
	default:
		return "", nil, errors.New("status must be approved or rejected")
	}
}

// ReviewPaper handles PATCH /papers/:id/review, transitioning a paper
// between pending, approved and rejected. Repeated reviews are allowed;
// the last writer wins and status plus reason always change together.
func (h *AdminHandler) ReviewPaper(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req reviewReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	status, reason, err := validateReview(req)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": err.Error()})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Papers.Review(ctx, id, status, reason); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "paper not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "review failed"})
	}
	// A review changes public visibility; stale listings must not survive.
	h.purgeListingCache(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "paper " + status})
}

// EditPaper handles PUT /papers/:id/edit. Fields arrive as multipart or
// urlencoded form values; only supplied fields change. Admins may edit
// metadata regardless of review status.
func (h *AdminHandler) EditPaper(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}

	var m repository.MetadataUpdate
	if v := c.FormValue("title"); v != "" {
		t := strings.TrimSpace(v)
		m.Title = &t
	}
	if v := c.FormValue("description"); v != "" {
		d := strings.TrimSpace(v)
		m.Description = &d
	}
	if v := c.FormValue("paper_type"); v != "" {
		pt := strings.ToLower(strings.TrimSpace(v))
		if !model.ValidPaperType(pt) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid paper_type"})
		}
		m.PaperType = &pt
	}
	if v := c.FormValue("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid year"})
		}
		m.Year = &y
	}
	if v := c.FormValue("semester"); v != "" {
		s := strings.TrimSpace(v)
		m.Semester = &s
	}
	if v := c.FormValue("course_id"); v != "" {
		cid, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid course_id"})
		}
		m.CourseID = &cid
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Papers.UpdateMetadata(ctx, id, m); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "paper not found"})
		case errors.Is(err, repository.ErrUnknownCourse):
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "unknown course_id"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update failed"})
		}
	}
	h.purgeListingCache(ctx)
	return c.JSON(http.StatusOK, echo.Map{"message": "paper updated"})
}
