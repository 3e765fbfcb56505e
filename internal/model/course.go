package model

import "time"

// Course represents a row in the `courses` table.  Papers reference a
// course by ID; deleting a course removes its papers in the same
// transaction.
//
// Fields:
//  ID          – primary key identifier.
//  Code        – unique short code such as CS2201.
//  Name        – human readable course title.
//  Description – optional free text.
//  CreatedAt   – creation timestamp.
//  UpdatedAt   – last update timestamp.
type Course struct {
	ID          uint64    // courses.id
	Code        string    // courses.code
	Name        string    // courses.name
	Description *string   // courses.description (nullable)
	CreatedAt   time.Time // courses.created_at
	UpdatedAt   time.Time // courses.updated_at
}
