package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/sury19/ExamPaperPortal/internal/model"
)

// ErrCourseCodeExists is returned when creating or renaming a course
// would collide with another course's unique code.
var ErrCourseCodeExists = errors.New("course code already exists")

// CourseRepo provides CRUD for courses plus the transactional cascade
// delete of a course and all of its papers.
type CourseRepo struct {
	db *sql.DB
}

func NewCourseRepo(db *sql.DB) *CourseRepo { return &CourseRepo{db: db} }

const courseCols = "id, code, name, description, created_at, updated_at"

// Create inserts a course and populates its generated ID.
func (r *CourseRepo) Create(ctx context.Context, c *model.Course) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	res, err := r.db.ExecContext(ctx,
		"INSERT INTO courses (code, name, description) VALUES (?,?,?)",
		c.Code, c.Name, c.Description)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCourseCodeExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	c.ID = uint64(id)
	return nil
}

// GetByID retrieves a course, returning sql.ErrNoRows when absent.
func (r *CourseRepo) GetByID(ctx context.Context, id uint64) (model.Course, error) {
	var c model.Course
	var desc sql.NullString
	err := r.db.QueryRowContext(ctx,
		"SELECT "+courseCols+" FROM courses WHERE id=? LIMIT 1", id).
		Scan(&c.ID, &c.Code, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt)
	if err != nil {
		return model.Course{}, err
	}
	if desc.Valid {
		d := desc.String
		c.Description = &d
	}
	return c, nil
}

// List returns all courses ordered by code.
func (r *CourseRepo) List(ctx context.Context) ([]model.Course, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+courseCols+" FROM courses ORDER BY code")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []model.Course{}
	for rows.Next() {
		var c model.Course
		var desc sql.NullString
		if err := rows.Scan(&c.ID, &c.Code, &c.Name, &desc, &c.CreatedAt, &c.UpdatedAt); err != nil {
			return nil, err
		}
		if desc.Valid {
			d := desc.String
			c.Description = &d
		}
		out = append(out, c)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// Update rewrites code, name and description.  Returns sql.ErrNoRows
// when the course does not exist.
func (r *CourseRepo) Update(ctx context.Context, c *model.Course) error {
	c.Code = strings.ToUpper(strings.TrimSpace(c.Code))
	res, err := r.db.ExecContext(ctx,
		`UPDATE courses SET code=?, name=?, description=?, updated_at=CURRENT_TIMESTAMP WHERE id=?`,
		c.Code, c.Name, c.Description, c.ID)
	if err != nil {
		if strings.Contains(strings.ToLower(err.Error()), "1062") {
			return ErrCourseCodeExists
		}
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		// RowsAffected is 0 both for a missing row and for a no-op update,
		// so check existence explicitly before reporting not found.
		var exists uint64
		if scanErr := r.db.QueryRowContext(ctx,
			"SELECT id FROM courses WHERE id=? LIMIT 1", c.ID).Scan(&exists); scanErr != nil {
			return scanErr
		}
	}
	return nil
}

// Delete removes a course and every paper linked to it in a single
// transaction, so concurrent readers never observe a partial cascade.
// The file paths of the deleted papers are returned so the caller can
// remove the stored files after commit.  Deleting a course with no
// papers is not an error.
func (r *CourseRepo) Delete(ctx context.Context, id uint64) (paths []string, err error) {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Verify the course exists before cascading.
	var courseID uint64
	if err = tx.QueryRowContext(ctx,
		"SELECT id FROM courses WHERE id=? FOR UPDATE", id).Scan(&courseID); err != nil {
		return nil, err
	}

	// Collect stored file paths for post-commit cleanup.
	rows, err := tx.QueryContext(ctx, "SELECT file_path FROM papers WHERE course_id=?", id)
	if err != nil {
		return nil, err
	}
	for rows.Next() {
		var p string
		if err = rows.Scan(&p); err != nil {
			rows.Close()
			return nil, err
		}
		paths = append(paths, p)
	}
	if err = rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	if _, err = tx.ExecContext(ctx, "DELETE FROM papers WHERE course_id=?", id); err != nil {
		return nil, err
	}
	if _, err = tx.ExecContext(ctx, "DELETE FROM courses WHERE id=?", id); err != nil {
		return nil, err
	}
	return paths, nil
}

// Count returns the total number of courses, for the admin dashboard.
func (r *CourseRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	err := r.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM courses").Scan(&n)
	return n, err
}
