package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/sury19/ExamPaperPortal/internal/database"
	"github.com/sury19/ExamPaperPortal/internal/model"
)

// These tests run against a real MySQL instance and require:
//  1. RUN_INTEGRATION_TESTS=true
//  2. DB_USER, DB_HOST, DB_PORT, DB_NAME (and optionally DB_PASS) pointing
//     at a throwaway database; migrations are applied automatically.
func testDB(t *testing.T) *sql.DB {
	t.Helper()
	if os.Getenv("RUN_INTEGRATION_TESTS") != "true" {
		t.Skip("Skipping integration test. Set RUN_INTEGRATION_TESTS=true to run")
	}
	for _, k := range []string{"DB_USER", "DB_HOST", "DB_PORT", "DB_NAME"} {
		if os.Getenv(k) == "" {
			t.Skipf("%s not set", k)
		}
	}
	db, err := database.Open(os.Getenv("DB_USER"), os.Getenv("DB_PASS"),
		os.Getenv("DB_HOST"), os.Getenv("DB_PORT"), os.Getenv("DB_NAME"))
	if err != nil {
		t.Fatalf("open database: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	if err := database.Migrate(db, "../../migrations", os.Getenv("DB_NAME")); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// uniqueEmail keeps repeated runs against the same database from
// colliding on the users.email unique index.
func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@it.example.edu", prefix, time.Now().UnixNano())
}

func TestOtpIssueVerifyFlow(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)
	ctx := context.Background()
	email := uniqueEmail("flow")

	ch, err := repo.Issue(ctx, email, 10*time.Minute, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if len(ch.Code) != 6 {
		t.Fatalf("code %q, want 6 digits", ch.Code)
	}

	// Wrong code leaves the challenge live.
	wrong := "000000"
	if wrong == ch.Code {
		wrong = "000001"
	}
	if _, err := repo.Verify(ctx, email, wrong); !errors.Is(err, ErrOTPMismatch) {
		t.Fatalf("wrong code err = %v, want ErrOTPMismatch", err)
	}

	// Correct code succeeds and creates the student account.
	u, err := repo.Verify(ctx, email, ch.Code)
	if err != nil {
		t.Fatalf("Verify: %v", err)
	}
	if u.Email != email {
		t.Errorf("user email = %q, want %q", u.Email, email)
	}
	if u.IsAdmin {
		t.Error("OTP-created user must not be admin")
	}
	if u.Role() != "STUDENT" {
		t.Errorf("role = %q, want STUDENT", u.Role())
	}

	// Replaying the consumed code must fail.
	if _, err := repo.Verify(ctx, email, ch.Code); !errors.Is(err, ErrOTPConsumed) {
		t.Errorf("replay err = %v, want ErrOTPConsumed", err)
	}
}

func TestOtpVerifyUnknownEmail(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)

	_, err := repo.Verify(context.Background(), uniqueEmail("nochallenge"), "123456")
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestOtpIssueThrottle(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)
	ctx := context.Background()
	email := uniqueEmail("throttle")

	if _, err := repo.Issue(ctx, email, 10*time.Minute, time.Minute); err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	if _, err := repo.Issue(ctx, email, 10*time.Minute, time.Minute); !errors.Is(err, ErrIssueThrottled) {
		t.Fatalf("second Issue err = %v, want ErrIssueThrottled", err)
	}
}

func TestOtpReissueInvalidatesOldCode(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)
	ctx := context.Background()
	email := uniqueEmail("reissue")

	first, err := repo.Issue(ctx, email, 10*time.Minute, 0)
	if err != nil {
		t.Fatalf("first Issue: %v", err)
	}
	second, err := repo.Issue(ctx, email, 10*time.Minute, 0)
	if err != nil {
		t.Fatalf("second Issue: %v", err)
	}
	if first.Code == second.Code {
		t.Skip("random codes collided, supersession not observable")
	}

	// The old code can no longer verify.
	if _, err := repo.Verify(ctx, email, first.Code); err == nil {
		t.Fatal("superseded code verified")
	}
	// The fresh one still can.
	if _, err := repo.Verify(ctx, email, second.Code); err != nil {
		t.Fatalf("fresh code Verify: %v", err)
	}
}

func TestOtpExpiry(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)
	ctx := context.Background()
	email := uniqueEmail("expiry")

	ch, err := repo.Issue(ctx, email, -time.Second, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	if _, err := repo.Verify(ctx, email, ch.Code); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("err = %v, want ErrOTPExpired", err)
	}
}

func TestOtpExpiredAndConsumedReportsExpired(t *testing.T) {
	db := testDB(t)
	repo := NewOtpRepo(db)
	ctx := context.Background()
	email := uniqueEmail("expired-consumed")

	ch, err := repo.Issue(ctx, email, 10*time.Minute, 0)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	// Age the challenge past its expiry and consume it, the state a used
	// code reaches once its window lapses.
	if _, err := db.ExecContext(ctx,
		"UPDATE otp_challenges SET consumed=1, expires_at=? WHERE id=?",
		time.Now().UTC().Add(-time.Minute), ch.ID); err != nil {
		t.Fatalf("age challenge: %v", err)
	}

	if _, err := repo.Verify(ctx, email, ch.Code); !errors.Is(err, ErrOTPExpired) {
		t.Errorf("err = %v, want ErrOTPExpired for an expired consumed challenge", err)
	}
}

// seedPaper creates a course, a student and one pending paper for the
// review and cascade tests.
func seedPaper(t *testing.T, db *sql.DB, tag string) (courseID uint64, paper model.Paper) {
	t.Helper()
	ctx := context.Background()

	courses := NewCourseRepo(db)
	course := model.Course{Code: fmt.Sprintf("IT%d", time.Now().UnixNano()%1_000_000), Name: "Integration " + tag}
	if err := courses.Create(ctx, &course); err != nil {
		t.Fatalf("create course: %v", err)
	}

	otps := NewOtpRepo(db)
	email := uniqueEmail(tag)
	ch, err := otps.Issue(ctx, email, 10*time.Minute, 0)
	if err != nil {
		t.Fatalf("issue otp: %v", err)
	}
	u, err := otps.Verify(ctx, email, ch.Code)
	if err != nil {
		t.Fatalf("verify otp: %v", err)
	}

	papers := NewPaperRepo(db)
	p := model.Paper{
		Title:      "Sample " + tag,
		PaperType:  "quiz",
		CourseID:   course.ID,
		UploaderID: u.ID,
		FileName:   tag + ".pdf",
		FilePath:   "uploads/" + tag + ".pdf",
	}
	if err := papers.Create(ctx, &p); err != nil {
		t.Fatalf("create paper: %v", err)
	}
	if p.Status != model.PaperStatusPending {
		t.Fatalf("new paper status = %q, want pending", p.Status)
	}
	return course.ID, p
}

func TestPaperReviewTransitions(t *testing.T) {
	db := testDB(t)
	_, p := seedPaper(t, db, "review")
	papers := NewPaperRepo(db)
	ctx := context.Background()

	if err := papers.Review(ctx, p.ID, model.PaperStatusApproved, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	got, err := papers.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.PaperStatusApproved || got.RejectionReason != nil {
		t.Fatalf("after approve: status=%q reason=%v", got.Status, got.RejectionReason)
	}

	reason := "wrong course"
	if err := papers.Review(ctx, p.ID, model.PaperStatusRejected, &reason); err != nil {
		t.Fatalf("reject: %v", err)
	}
	got, err = papers.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.PaperStatusRejected {
		t.Errorf("status = %q, want rejected", got.Status)
	}
	if got.RejectionReason == nil || *got.RejectionReason != reason {
		t.Errorf("reason = %v, want %q", got.RejectionReason, reason)
	}

	// Re-review back to approved clears the reason atomically.
	if err := papers.Review(ctx, p.ID, model.PaperStatusApproved, nil); err != nil {
		t.Fatalf("re-approve: %v", err)
	}
	got, err = papers.GetByID(ctx, p.ID)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	if got.Status != model.PaperStatusApproved || got.RejectionReason != nil {
		t.Errorf("after re-approve: status=%q reason=%v", got.Status, got.RejectionReason)
	}
}

func TestPaperReviewMissing(t *testing.T) {
	db := testDB(t)
	papers := NewPaperRepo(db)

	err := papers.Review(context.Background(), 0, model.PaperStatusApproved, nil)
	if !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestCourseDeleteCascades(t *testing.T) {
	db := testDB(t)
	courseID, p := seedPaper(t, db, "cascade")
	courses := NewCourseRepo(db)
	papers := NewPaperRepo(db)
	ctx := context.Background()

	paths, err := courses.Delete(ctx, courseID)
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	found := false
	for _, path := range paths {
		if path == p.FilePath {
			found = true
		}
	}
	if !found {
		t.Errorf("deleted paths %v missing %q", paths, p.FilePath)
	}

	if _, err := papers.GetByID(ctx, p.ID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("paper still present after cascade, err = %v", err)
	}
	if _, err := courses.GetByID(ctx, courseID); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("course still present, err = %v", err)
	}
}

func TestCourseDeleteMissing(t *testing.T) {
	db := testDB(t)
	courses := NewCourseRepo(db)

	if _, err := courses.Delete(context.Background(), 0); !errors.Is(err, sql.ErrNoRows) {
		t.Errorf("err = %v, want sql.ErrNoRows", err)
	}
}

func TestSearchApprovedOnlyReturnsApproved(t *testing.T) {
	db := testDB(t)
	_, p := seedPaper(t, db, "search")
	papers := NewPaperRepo(db)
	ctx := context.Background()

	rows, err := papers.SearchApproved(ctx, PaperSearchQuery{Search: p.Title})
	if err != nil {
		t.Fatalf("SearchApproved: %v", err)
	}
	for _, r := range rows {
		if r.ID == p.ID {
			t.Fatal("pending paper visible in public search")
		}
	}

	if err := papers.Review(ctx, p.ID, model.PaperStatusApproved, nil); err != nil {
		t.Fatalf("approve: %v", err)
	}
	rows, err = papers.SearchApproved(ctx, PaperSearchQuery{Search: p.Title})
	if err != nil {
		t.Fatalf("SearchApproved: %v", err)
	}
	found := false
	for _, r := range rows {
		if r.ID == p.ID {
			found = true
		}
	}
	if !found {
		t.Error("approved paper not returned by public search")
	}
}
