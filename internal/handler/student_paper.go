// Student endpoints: uploading a paper and listing one's own uploads.
// Both require a valid session token but no admin role.
package handler

import (
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/sury19/ExamPaperPortal/internal/config"
	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/repository"
	"github.com/sury19/ExamPaperPortal/internal/utils"
)

// maxUploadBytes caps a single paper file.
const maxUploadBytes = 32 << 20 // 32 MiB

// StudentHandler exposes the authenticated upload surface.
type StudentHandler struct {
	Cfg    config.Config
	Papers *repository.PaperRepo
}

func NewStudentHandler(cfg config.Config, p *repository.PaperRepo) *StudentHandler {
	return &StudentHandler{Cfg: cfg, Papers: p}
}

// Upload handles POST /papers/upload. The multipart form carries title,
// optional description, paper_type, optional year and semester,
// course_id and the file itself. The paper always starts pending; only
// an admin review makes it publicly visible.
func (h *StudentHandler) Upload(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}

	title := strings.TrimSpace(c.FormValue("title"))
	paperType := strings.ToLower(strings.TrimSpace(c.FormValue("paper_type")))
	courseIDRaw := c.FormValue("course_id")
	if title == "" || courseIDRaw == "" {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "title and course_id required"})
	}
	if !model.ValidPaperType(paperType) {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid paper_type"})
	}
	courseID, err := strconv.ParseUint(courseIDRaw, 10, 64)
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid course_id"})
	}

	p := model.Paper{
		Title:      title,
		PaperType:  paperType,
		CourseID:   courseID,
		UploaderID: uid,
	}
	if v := strings.TrimSpace(c.FormValue("description")); v != "" {
		p.Description = &v
	}
	if v := c.FormValue("year"); v != "" {
		y, err := strconv.Atoi(v)
		if err != nil {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "invalid year"})
		}
		p.Year = &y
	}
	if v := strings.TrimSpace(c.FormValue("semester")); v != "" {
		p.Semester = &v
	}

	fh, err := c.FormFile("file")
	if err != nil {
		return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "file required"})
	}
	if fh.Size > maxUploadBytes {
		return c.JSON(http.StatusRequestEntityTooLarge, echo.Map{"detail": "file too large"})
	}

	storedPath, err := h.storeFile(fh)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "store file failed"})
	}
	p.FileName = filepath.Base(fh.Filename)
	p.FilePath = storedPath

	ctx, cancel := reqContext(c)
	defer cancel()

	if err := h.Papers.Create(ctx, &p); err != nil {
		_ = os.Remove(storedPath) // roll back the stored file, the row never existed
		if errors.Is(err, repository.ErrUnknownCourse) {
			return c.JSON(http.StatusUnprocessableEntity, echo.Map{"detail": "unknown course_id"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "create paper failed"})
	}

	return c.JSON(http.StatusCreated, echo.Map{
		"id":      p.ID,
		"status":  p.Status,
		"message": "paper submitted for review",
	})
}

// storeFile copies the uploaded bytes under the configured upload
// directory with a random hex name, keeping the original extension so
// downloads get a sensible content type.
func (h *StudentHandler) storeFile(fh *multipart.FileHeader) (string, error) {
	if err := os.MkdirAll(h.Cfg.UploadDir, 0o755); err != nil {
		return "", err
	}
	name, err := utils.RandomHex(16)
	if err != nil {
		return "", err
	}
	dst := filepath.Join(h.Cfg.UploadDir, name+filepath.Ext(fh.Filename))

	src, err := fh.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", err
	}
	defer out.Close()

	if _, err := io.Copy(out, src); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return dst, nil
}

// MyPapers handles GET /papers/mine: the caller's own uploads in every
// status, so students can track reviews and see rejection reasons.
func (h *StudentHandler) MyPapers(c echo.Context) error {
	uid, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"detail": "unauthorized"})
	}

	ctx, cancel := reqContext(c)
	defer cancel()

	rows, err := h.Papers.ListByUploader(ctx, uid)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"detail": "list papers failed"})
	}
	return c.JSON(http.StatusOK, rows)
}
