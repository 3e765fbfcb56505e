package model

import "time"

// OtpChallenge models a row in the `otp_challenges` table.  At most one
// challenge per email is live (unconsumed and unexpired) at a time:
// issuing a new code marks every previous unconsumed row consumed, and a
// successful verification consumes the row it matched.  A consumed or
// expired challenge can never authenticate again.
//
// Fields:
//  ID        – primary key identifier.
//  Email     – address the code was sent to, lower-cased.
//  Code      – the six ASCII digits mailed to the user.
//  IssuedAt  – when the challenge was created.
//  ExpiresAt – after this instant verification fails with an expiry error.
//  Consumed  – set once, on invalidation or first successful verification.
type OtpChallenge struct {
	ID        uint64    // otp_challenges.id
	Email     string    // otp_challenges.email
	Code      string    // otp_challenges.code
	IssuedAt  time.Time // otp_challenges.issued_at
	ExpiresAt time.Time // otp_challenges.expires_at
	Consumed  bool      // otp_challenges.consumed
}
