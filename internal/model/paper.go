package model

import "time"

// Paper lifecycle states.  A paper is created pending and moves to
// approved or rejected through admin review; re-review between the two
// terminal states is allowed.
const (
	PaperStatusPending  = "pending"
	PaperStatusApproved = "approved"
	PaperStatusRejected = "rejected"
)

// ValidPaperType reports whether t is one of the accepted paper type
// enumeration values.
func ValidPaperType(t string) bool {
	switch t {
	case "quiz", "midterm", "endterm", "assignment", "project":
		return true
	}
	return false
}

// Paper represents a row in the `papers` table.  The uploaded file
// itself lives on disk under FilePath; FileName preserves the name the
// student uploaded it with for downloads.
//
// Fields:
//  ID              – primary key identifier.
//  Title           – paper title as entered by the uploader.
//  Description     – optional free text.
//  PaperType       – one of quiz, midterm, endterm, assignment, project.
//  Year            – exam year, optional.
//  Semester        – semester label, optional.
//  CourseID        – owning course.
//  UploaderID      – student who uploaded the paper.
//  Status          – pending, approved or rejected.
//  RejectionReason – populated only while status is rejected.
//  FileName        – original upload file name.
//  FilePath        – storage path of the file on disk.
//  UploadedAt      – creation timestamp.
//  UpdatedAt       – last update timestamp.
type Paper struct {
	ID              uint64    // papers.id
	Title           string    // papers.title
	Description     *string   // papers.description (nullable)
	PaperType       string    // papers.paper_type
	Year            *int      // papers.year (nullable)
	Semester        *string   // papers.semester (nullable)
	CourseID        uint64    // papers.course_id
	UploaderID      uint64    // papers.uploader_id
	Status          string    // papers.status
	RejectionReason *string   // papers.rejection_reason (nullable)
	FileName        string    // papers.file_name
	FilePath        string    // papers.file_path
	UploadedAt      time.Time // papers.uploaded_at
	UpdatedAt       time.Time // papers.updated_at
}
