// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios. For
// example, ErrOTPMismatch indicates a wrong code was supplied while
// ErrOTPConsumed signals a replayed verification attempt against a
// challenge that already authenticated once.
package repository

import "errors"

// ErrForbidden is returned when the caller attempts an operation
// on a resource they do not own. Handlers should translate this
// into an HTTP 403 response.
var ErrForbidden = errors.New("forbidden")

// ErrConflict is returned when a delete or update cannot be
// performed because of conflicting state. Handlers should
// translate this into an HTTP 409 response.
var ErrConflict = errors.New("conflict")

// OTP verification sentinels.  Lookups that find no challenge at all
// surface sql.ErrNoRows like every other repository.
var (
	// ErrOTPExpired means the latest challenge's expiry has passed.
	ErrOTPExpired = errors.New("otp expired")
	// ErrOTPConsumed means the latest challenge was already used, either
	// by a successful verification or by a newer issuance superseding it.
	ErrOTPConsumed = errors.New("otp already consumed")
	// ErrOTPMismatch means the supplied code differs from the stored one.
	// The challenge stays live so the user may retry until expiry.
	ErrOTPMismatch = errors.New("otp mismatch")
	// ErrIssueThrottled means a new code was requested before the minimum
	// interval since the previous issuance elapsed.  Handlers translate
	// this into HTTP 429.
	ErrIssueThrottled = errors.New("otp issuance throttled")
)
