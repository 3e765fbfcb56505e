package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sury19/ExamPaperPortal/internal/model"
)

// PaperRepo persists papers and drives their review lifecycle.  Status
// transitions are single UPDATE statements carrying status and
// rejection reason together, so no reader can ever observe the two out
// of sync.
type PaperRepo struct {
	db *sql.DB
}

func NewPaperRepo(db *sql.DB) *PaperRepo { return &PaperRepo{db: db} }

// ErrUnknownCourse is returned when a paper insert or metadata update
// references a course that does not exist.
var ErrUnknownCourse = errors.New("unknown course")

// Create inserts a new paper in pending state and populates the
// generated ID and timestamps on the given record.
func (r *PaperRepo) Create(ctx context.Context, p *model.Paper) error {
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO papers (title, description, paper_type, year, semester, course_id, uploader_id, status, file_name, file_path)
		 VALUES (?,?,?,?,?,?,?,?,?,?)`,
		p.Title, p.Description, p.PaperType, p.Year, p.Semester, p.CourseID, p.UploaderID,
		model.PaperStatusPending, p.FileName, p.FilePath)
	if err != nil {
		// 1452 = foreign key constraint fails (bad course_id)
		if strings.Contains(err.Error(), "1452") {
			return ErrUnknownCourse
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.Status = model.PaperStatusPending

	const sel = `SELECT uploaded_at, updated_at FROM papers WHERE id = ?`
	return r.db.QueryRowContext(ctx, sel, p.ID).Scan(&p.UploadedAt, &p.UpdatedAt)
}

// GetByID retrieves a paper row, returning sql.ErrNoRows when absent.
func (r *PaperRepo) GetByID(ctx context.Context, id uint64) (model.Paper, error) {
	const q = `SELECT id, title, description, paper_type, year, semester, course_id, uploader_id,
					  status, rejection_reason, file_name, file_path, uploaded_at, updated_at
			   FROM papers WHERE id = ? LIMIT 1`
	var p model.Paper
	var desc, sem, reason sql.NullString
	var year sql.NullInt64
	err := r.db.QueryRowContext(ctx, q, id).Scan(
		&p.ID, &p.Title, &desc, &p.PaperType, &year, &sem, &p.CourseID, &p.UploaderID,
		&p.Status, &reason, &p.FileName, &p.FilePath, &p.UploadedAt, &p.UpdatedAt)
	if err != nil {
		return model.Paper{}, err
	}
	if desc.Valid {
		v := desc.String
		p.Description = &v
	}
	if sem.Valid {
		v := sem.String
		p.Semester = &v
	}
	if reason.Valid {
		v := reason.String
		p.RejectionReason = &v
	}
	if year.Valid {
		v := int(year.Int64)
		p.Year = &v
	}
	return p, nil
}

// Review transitions a paper to approved or rejected.  The reason must
// already be validated by the caller: non-empty for rejections, nil for
// approvals.  Status and reason are written in one statement and the
// last writer wins; repeated review calls may move a paper between
// approved and rejected freely.  Returns sql.ErrNoRows when the paper
// does not exist.
func (r *PaperRepo) Review(ctx context.Context, id uint64, status string, reason *string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE papers SET status=?, rejection_reason=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		status, reason, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if scanErr := r.db.QueryRowContext(ctx,
			"SELECT id FROM papers WHERE id=? LIMIT 1", id).Scan(&exists); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// MetadataUpdate carries the optional fields of an admin metadata edit.
// Nil fields keep their current value.
type MetadataUpdate struct {
	Title       *string
	Description *string
	PaperType   *string
	Year        *int
	Semester    *string
	CourseID    *uint64
}

// UpdateMetadata applies a partial update to a paper regardless of its
// status.  The SET clause is built dynamically from the supplied
// fields.  Returns sql.ErrNoRows when the paper does not exist and
// ErrUnknownCourse when relinking to a missing course.
func (r *PaperRepo) UpdateMetadata(ctx context.Context, id uint64, m MetadataUpdate) error {
	set := []string{}
	args := []any{}
	if m.Title != nil {
		set = append(set, "title=?")
		args = append(args, *m.Title)
	}
	if m.Description != nil {
		set = append(set, "description=?")
		args = append(args, *m.Description)
	}
	if m.PaperType != nil {
		set = append(set, "paper_type=?")
		args = append(args, *m.PaperType)
	}
	if m.Year != nil {
		set = append(set, "year=?")
		args = append(args, *m.Year)
	}
	if m.Semester != nil {
		set = append(set, "semester=?")
		args = append(args, *m.Semester)
	}
	if m.CourseID != nil {
		set = append(set, "course_id=?")
		args = append(args, *m.CourseID)
	}
	if len(set) == 0 {
		// Nothing to change; still report missing papers.
		var exists uint64
		return r.db.QueryRowContext(ctx,
			"SELECT id FROM papers WHERE id=? LIMIT 1", id).Scan(&exists)
	}
	set = append(set, "updated_at=CURRENT_TIMESTAMP")
	args = append(args, id)

	res, err := r.db.ExecContext(ctx,
		"UPDATE papers SET "+strings.Join(set, ", ")+" WHERE id=?", args...)
	if err != nil {
		if strings.Contains(err.Error(), "1452") {
			return ErrUnknownCourse
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		var exists uint64
		if scanErr := r.db.QueryRowContext(ctx,
			"SELECT id FROM papers WHERE id=? LIMIT 1", id).Scan(&exists); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// PaperRow is a paper joined with its course and uploader for listing
// responses.  Course and uploader fields are denormalized at read time,
// never stored redundantly.
type PaperRow struct {
	ID              uint64  `json:"id"`
	Title           string  `json:"title"`
	Description     *string `json:"description"`
	PaperType       string  `json:"paper_type"`
	Year            *int    `json:"year"`
	Semester        *string `json:"semester"`
	CourseID        uint64  `json:"course_id"`
	CourseCode      string  `json:"course_code"`
	CourseName      string  `json:"course_name"`
	UploaderName    string  `json:"uploader_name"`
	UploaderEmail   string  `json:"uploader_email"`
	Status          string  `json:"status"`
	RejectionReason *string `json:"rejection_reason,omitempty"`
	FileName        string  `json:"file_name"`
	UploadedAt      string  `json:"uploaded_at"`
}

const paperRowSelect = `SELECT p.id, p.title, p.description, p.paper_type, p.year, p.semester,
		p.course_id, c.code, c.name, u.name, u.email,
		p.status, p.rejection_reason, p.file_name,
		DATE_FORMAT(p.uploaded_at, '%Y-%m-%d %T')
	FROM papers p
	JOIN courses c ON c.id = p.course_id
	JOIN users u   ON u.id = p.uploader_id`

func scanPaperRows(rows *sql.Rows) ([]PaperRow, error) {
	out := []PaperRow{}
	for rows.Next() {
		var d PaperRow
		var desc, sem, reason sql.NullString
		var year sql.NullInt64
		if err := rows.Scan(
			&d.ID, &d.Title, &desc, &d.PaperType, &year, &sem,
			&d.CourseID, &d.CourseCode, &d.CourseName, &d.UploaderName, &d.UploaderEmail,
			&d.Status, &reason, &d.FileName, &d.UploadedAt,
		); err != nil {
			return nil, err
		}
		if desc.Valid {
			v := desc.String
			d.Description = &v
		}
		if sem.Valid {
			v := sem.String
			d.Semester = &v
		}
		if reason.Valid {
			v := reason.String
			d.RejectionReason = &v
		}
		if year.Valid {
			v := int(year.Int64)
			d.Year = &v
		}
		out = append(out, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// ListPending returns all papers awaiting review, newest first.
func (r *PaperRepo) ListPending(ctx context.Context) ([]PaperRow, error) {
	rows, err := r.db.QueryContext(ctx,
		paperRowSelect+` WHERE p.status = ? ORDER BY p.uploaded_at DESC, p.id DESC`,
		model.PaperStatusPending)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaperRows(rows)
}

// ListByUploader returns a student's own uploads in every status,
// newest first.
func (r *PaperRepo) ListByUploader(ctx context.Context, uploaderID uint64) ([]PaperRow, error) {
	rows, err := r.db.QueryContext(ctx,
		paperRowSelect+` WHERE p.uploader_id = ? ORDER BY p.uploaded_at DESC, p.id DESC`,
		uploaderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaperRows(rows)
}

// Counts returns total and pending paper counts for the dashboard.
func (r *PaperRepo) Counts(ctx context.Context) (total, pending int64, err error) {
	if err = r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM papers").Scan(&total); err != nil {
		return 0, 0, err
	}
	if err = r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM papers WHERE status=?", model.PaperStatusPending).Scan(&pending); err != nil {
		return 0, 0, err
	}
	return total, pending, nil
}
