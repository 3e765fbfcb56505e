package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/sury19/ExamPaperPortal/internal/model"
	"github.com/sury19/ExamPaperPortal/internal/utils"
)

// OtpRepo manages one-time passcode challenges.  Issuance and
// verification for the same email must be linearizable, so both run as
// a single transaction that locks the latest challenge row with
// SELECT ... FOR UPDATE before deciding anything.  Two concurrent
// verifications of the same challenge therefore serialize: the first
// consumes it, the second sees consumed=1 and fails deterministically.
type OtpRepo struct {
	DB *sql.DB
}

func NewOtpRepo(db *sql.DB) *OtpRepo { return &OtpRepo{DB: db} }

// Expired challenges are kept around briefly so replays fail with a
// meaningful error, then swept opportunistically on the next issuance.
const otpRetention = 24 * time.Hour

// Issue creates a fresh challenge for the email and returns the code to
// dispatch.  Inside one transaction it:
//   1. locks the most recent unconsumed challenge, if any;
//   2. rejects with ErrIssueThrottled when that challenge was issued
//      less than minGap ago;
//   3. marks every prior unconsumed challenge consumed, so only the new
//      code can ever verify;
//   4. inserts the new challenge with the given TTL.
// Old expired rows beyond the retention window are deleted in the same
// transaction.
func (r *OtpRepo) Issue(ctx context.Context, email string, ttl, minGap time.Duration) (ch model.OtpChallenge, err error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.OtpChallenge{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	// Lock the latest unconsumed challenge to serialize against a
	// concurrent verification or issuance for the same email.
	var lastIssued time.Time
	err = tx.QueryRowContext(ctx,
		`SELECT issued_at FROM otp_challenges
		 WHERE email=? AND consumed=0
		 ORDER BY issued_at DESC, id DESC LIMIT 1
		 FOR UPDATE`, email).Scan(&lastIssued)
	switch {
	case err == nil:
		if time.Now().UTC().Sub(lastIssued) < minGap {
			err = ErrIssueThrottled
			return model.OtpChallenge{}, err
		}
	case errors.Is(err, sql.ErrNoRows):
		err = nil // no live challenge, nothing to throttle against
	default:
		return model.OtpChallenge{}, err
	}

	// Invalidate all prior unconsumed challenges for this email.
	if _, err = tx.ExecContext(ctx,
		"UPDATE otp_challenges SET consumed=1 WHERE email=? AND consumed=0", email); err != nil {
		return model.OtpChallenge{}, err
	}

	code, err := utils.NewOtpCode()
	if err != nil {
		return model.OtpChallenge{}, err
	}
	now := time.Now().UTC()
	exp := now.Add(ttl)
	res, err := tx.ExecContext(ctx,
		"INSERT INTO otp_challenges (email, code, issued_at, expires_at) VALUES (?,?,?,?)",
		email, code, now, exp)
	if err != nil {
		return model.OtpChallenge{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.OtpChallenge{}, err
	}

	// Garbage-collect long-expired rows; failures here are not worth
	// aborting the issuance for, but inside the tx they never are partial.
	if _, err = tx.ExecContext(ctx,
		"DELETE FROM otp_challenges WHERE expires_at < ?", now.Add(-otpRetention)); err != nil {
		return model.OtpChallenge{}, err
	}

	return model.OtpChallenge{
		ID:        uint64(id),
		Email:     email,
		Code:      code,
		IssuedAt:  now,
		ExpiresAt: exp,
	}, nil
}

// Verify checks a code against the most recent challenge for the email
// and, on success, consumes it and upserts the user record in the same
// transaction.  Exactly one verification can ever succeed per
// challenge.  Failure modes, in order of checking:
//   - sql.ErrNoRows    no challenge exists for the email
//   - ErrOTPExpired    the expiry window has passed
//   - ErrOTPConsumed   the challenge was already used or superseded
//   - ErrOTPMismatch   wrong code (constant-time compare); row stays live
func (r *OtpRepo) Verify(ctx context.Context, email, code string) (u model.User, err error) {
	email = strings.ToLower(strings.TrimSpace(email))

	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return model.User{}, err
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		} else {
			err = tx.Commit()
		}
	}()

	var ch model.OtpChallenge
	err = tx.QueryRowContext(ctx,
		`SELECT id, email, code, issued_at, expires_at, consumed FROM otp_challenges
		 WHERE email=?
		 ORDER BY issued_at DESC, id DESC LIMIT 1
		 FOR UPDATE`, email).
		Scan(&ch.ID, &ch.Email, &ch.Code, &ch.IssuedAt, &ch.ExpiresAt, &ch.Consumed)
	if err != nil {
		return model.User{}, err
	}
	// Expiry wins over consumption for challenges that are both: the
	// user's takeaway is the same either way, request a new code.
	if time.Now().UTC().After(ch.ExpiresAt) {
		err = ErrOTPExpired
		return model.User{}, err
	}
	if ch.Consumed {
		err = ErrOTPConsumed
		return model.User{}, err
	}
	if !utils.ConstantTimeEquals(ch.Code, code) {
		err = ErrOTPMismatch
		return model.User{}, err
	}

	if _, err = tx.ExecContext(ctx,
		"UPDATE otp_challenges SET consumed=1 WHERE id=?", ch.ID); err != nil {
		return model.User{}, err
	}

	u, err = upsertStudentTx(ctx, tx, email)
	if err != nil {
		return model.User{}, err
	}
	return u, nil
}

// upsertStudentTx loads the user for the email, creating a student
// record on first verification.  The name defaults to the local part of
// the address until the user changes it.
func upsertStudentTx(ctx context.Context, tx *sql.Tx, email string) (model.User, error) {
	var u model.User
	var hash sql.NullString
	err := tx.QueryRowContext(ctx,
		"SELECT "+userCols+" FROM users WHERE email=? LIMIT 1", email).
		Scan(&u.ID, &u.Email, &u.Name, &hash, &u.IsAdmin, &u.CreatedAt, &u.UpdatedAt)
	if err == nil {
		if hash.Valid {
			h := hash.String
			u.PasswordHash = &h
		}
		return u, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return model.User{}, err
	}

	name := email
	if i := strings.IndexByte(email, '@'); i > 0 {
		name = email[:i]
	}
	res, err := tx.ExecContext(ctx,
		"INSERT INTO users (email, name, is_admin) VALUES (?,?,0)", email, name)
	if err != nil {
		return model.User{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return model.User{}, err
	}
	return model.User{ID: uint64(id), Email: email, Name: name}, nil
}
