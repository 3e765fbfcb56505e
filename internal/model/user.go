package model

import "time"

// User represents an application user record as stored in the
// `users` table. Each field corresponds to a column in the
// database. The json tags are omitted here because these structs
// are primarily used internally by the repository layer; handlers
// define separate response types with appropriate JSON tags.
// Students created through OTP verification have no password hash;
// administrators are pre-provisioned with one.
//
// Fields:
//  ID           – primary key identifier of the user.
//  Email        – unique email address, stored lower-cased.
//  Name         – display name shown next to uploaded papers.
//  PasswordHash – bcrypt hashed password (nil for OTP-only students).
//  IsAdmin      – whether the user may review papers and manage courses.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type User struct {
	ID           uint64    // users.id
	Email        string    // users.email
	Name         string    // users.name
	PasswordHash *string   // users.password_hash (nullable)
	IsAdmin      bool      // users.is_admin
	CreatedAt    time.Time // users.created_at
	UpdatedAt    time.Time // users.updated_at
}

// Role returns the role string embedded in session tokens for this
// user.  The role model is a flat boolean; the two names below are
// the only values that ever appear in a token.
func (u User) Role() string {
	if u.IsAdmin {
		return "ADMIN"
	}
	return "STUDENT"
}
