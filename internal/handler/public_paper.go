// Public browse endpoints. These require no authentication: anyone may
// list approved papers and download their files. Pending and rejected
// papers are invisible here in every case.
package handler

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/repository"
)

// PublicHandler exposes the anonymous read surface.
type PublicHandler struct {
	Papers *repository.PaperRepo
}

func NewPublicHandler(p *repository.PaperRepo) *PublicHandler {
	return &PublicHandler{Papers: p}
}

// ListApproved handles GET /papers/public/all. Optional query
// parameters course_code, paper_type, year and search narrow the
// result; only approved papers are ever returned.
func (h *PublicHandler) ListApproved(c echo.Context) error {
	q := repository.PaperSearchQuery{
		CourseCode: c.QueryParam("course_code"),
		PaperType:  c.QueryParam("paper_type"),
		Search:     c.QueryParam("search"),
	}
	if v := c.QueryParam("year"); v != "" {
		if y, err := strconv.Atoi(v); err == nil {
			q.Year = y
		}
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Papers.SearchApproved(ctx, q)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "list papers failed"})
	}
	return c.JSON(http.StatusOK, rows)
}

// Download handles GET /papers/:id/download, streaming the stored file
// under its original name. Only approved papers can be fetched through
// the public flow, so unreviewed uploads never leak.
func (h *PublicHandler) Download(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	p, err := h.Papers.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "paper not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "load paper failed"})
	}
	if p.Status != model.PaperStatusApproved {
		// Same response as a missing paper: existence of pending or
		// rejected uploads is not disclosed.
		return c.JSON(http.StatusNotFound, echo.Map{"detail": "paper not found"})
	}
	return c.Attachment(p.FilePath, p.FileName)
}
