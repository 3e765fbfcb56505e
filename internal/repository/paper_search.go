package repository

import (
	"context"
	"strings"

	"github.com/sury19/ExamPaperPortal/internal/model"
)

// PaperSearchQuery defines the optional filters of the public approved
// listing.  Search matches case-insensitively against title,
// description, course code and uploader name.
type PaperSearchQuery struct {
	CourseCode string
	PaperType  string
	Year       int
	Search     string
}

// SearchApproved returns approved papers matching the query, newest
// first.  Only approved papers are ever visible here regardless of the
// filters supplied.
func (r *PaperRepo) SearchApproved(ctx context.Context, q PaperSearchQuery) ([]PaperRow, error) {
	where := []string{"p.status = ?"}
	args := []any{model.PaperStatusApproved}

	if q.CourseCode != "" {
		where = append(where, "LOWER(c.code) = ?")
		args = append(args, strings.ToLower(q.CourseCode))
	}
	if q.PaperType != "" {
		where = append(where, "p.paper_type = ?")
		args = append(args, strings.ToLower(q.PaperType))
	}
	if q.Year > 0 {
		where = append(where, "p.year = ?")
		args = append(args, q.Year)
	}
	if q.Search != "" {
		pat := "%" + strings.ToLower(q.Search) + "%"
		where = append(where,
			"(LOWER(p.title) LIKE ? OR LOWER(COALESCE(p.description,'')) LIKE ? OR LOWER(c.code) LIKE ? OR LOWER(u.name) LIKE ?)")
		args = append(args, pat, pat, pat, pat)
	}

	rows, err := r.db.QueryContext(ctx,
		paperRowSelect+" WHERE "+strings.Join(where, " AND ")+
			" ORDER BY p.uploaded_at DESC, p.id DESC",
		args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return scanPaperRows(rows)
}
