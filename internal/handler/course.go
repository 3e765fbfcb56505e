// Course management endpoints. Reading the course list is public so
// the upload form can offer choices; creation, update and deletion are
// admin only. Deleting a course cascades to its papers in one
// transaction, then removes the stored files best-effort.
package handler

import (
	"database/sql"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/repository"
)

type courseReq struct {
	Code        string  `json:"code" form:"code"`
	Name        string  `json:"name" form:"name"`
	Description *string `json:"description" form:"description"`
}

type courseResp struct {
	ID          uint64  `json:"id"`
	Code        string  `json:"code"`
	Name        string  `json:"name"`
	Description *string `json:"description"`
}

func toCourseResp(c model.Course) courseResp {
	return courseResp{ID: c.ID, Code: c.Code, Name: c.Name, Description: c.Description}
}

// ListCourses handles GET /courses.
func (h *AdminHandler) ListCourses(c echo.Context) error {
	ctx, cancel := reqContext(c)
	defer cancel()

	courses, err := h.Courses.List(ctx)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "list courses failed"})
	}
	out := make([]courseResp, 0, len(courses))
	for _, cr := range courses {
		out = append(out, toCourseResp(cr))
	}
	return c.JSON(http.StatusOK, out)
}

// CreateCourse handles POST /courses.
func (h *AdminHandler) CreateCourse(c echo.Context) error {
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "code and name required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	course := model.Course{Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.Courses.Create(ctx, &course); err != nil {
		if errors.Is(err, repository.ErrCourseCodeExists) {
			return c.JSON(http.StatusConflict, echo.Map{"detail": "course code already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create course failed"})
	}
	return c.JSON(http.StatusCreated, toCourseResp(course))
}

// UpdateCourse handles PUT /courses/:id.
func (h *AdminHandler) UpdateCourse(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}
	var req courseReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid body"})
	}
	req.Code = strings.TrimSpace(req.Code)
	req.Name = strings.TrimSpace(req.Name)
	if req.Code == "" || req.Name == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "code and name required"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	course := model.Course{ID: id, Code: req.Code, Name: req.Name, Description: req.Description}
	if err := h.Courses.Update(ctx, &course); err != nil {
		switch {
		case errors.Is(err, sql.ErrNoRows):
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "course not found"})
		case errors.Is(err, repository.ErrCourseCodeExists):
			return c.JSON(http.StatusConflict, echo.Map{"detail": "course code already exists"})
		default:
			return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "update course failed"})
		}
	}
	// Listings denormalize course code and name at read time; cached
	// copies carry the old values.
	h.purgeListingCache(ctx)
	return c.JSON(http.StatusOK, toCourseResp(course))
}

// DeleteCourse handles DELETE /courses/:id. The course and all papers
// referencing it disappear atomically; stored files are unlinked after
// the commit and failures there only get logged, the rows are already
// gone.
func (h *AdminHandler) DeleteCourse(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"detail": "invalid id"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	paths, err := h.Courses.Delete(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return c.JSON(http.StatusNotFound, echo.Map{"detail": "course not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "delete course failed"})
	}
	for _, p := range paths {
		if rmErr := os.Remove(p); rmErr != nil && !os.IsNotExist(rmErr) {
			log.Printf("delete-course: could not remove file %s: %v", p, rmErr)
		}
	}
	h.purgeListingCache(ctx)
	return c.NoContent(http.StatusNoContent)
}
