package moderation

import (
	"context"
	"errors"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

func seedPending(t *testing.T, db *gorm.DB, id, author string, ts time.Time) {
	t.Helper()
	post := types.Post{
		ID:        id,
		AuthorID:  author,
		Review:    "pending review text",
		Status:    types.PostStatusPending,
		LikedBy:   types.StringList{},
		Timestamp: ts,
	}
	if err := db.Create(&post).Error; err != nil {
		t.Fatalf("seed post %s: %v", id, err)
	}
}

func newTestReview(db *gorm.DB) *Review {
	return NewReview(db, NewLedger(db, 5))
}

func TestReview_NonAdminForbidden(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	seedPending(t, db, "p1", "alice", time.Now())
	r := newTestReview(db)

	if _, err := r.ListPending(context.Background(), "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("ListPending err = %v, want ErrForbidden", err)
	}
	if _, err := r.Approve(context.Background(), "p1", "alice"); !errors.Is(err, ErrForbidden) {
		t.Errorf("Approve err = %v, want ErrForbidden", err)
	}
	if _, err := r.Reject(context.Background(), "p1", "alice", ""); !errors.Is(err, ErrForbidden) {
		t.Errorf("Reject err = %v, want ErrForbidden", err)
	}
}

func TestReview_UnknownUserNotFound(t *testing.T) {
	db := newTestDB(t)
	r := newTestReview(db)

	if _, err := r.ListPending(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ListPending err = %v, want ErrNotFound", err)
	}
}

func TestReview_MissingPostNotFound(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	r := newTestReview(db)

	if _, err := r.Approve(context.Background(), "nope", "admin"); !errors.Is(err, ErrNotFound) {
		t.Errorf("Approve err = %v, want ErrNotFound", err)
	}
	if _, err := r.Reject(context.Background(), "nope", "admin", ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("Reject err = %v, want ErrNotFound", err)
	}
}

func TestReview_ListPendingNewestFirst(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	seedUser(t, db, "alice", false, 0, 0, false)
	base := time.Now().Add(-time.Hour)
	seedPending(t, db, "old", "alice", base)
	seedPending(t, db, "new", "alice", base.Add(30*time.Minute))

	// Approved posts must not appear in the queue.
	approved := types.Post{ID: "done", AuthorID: "alice", Status: types.PostStatusApproved, LikedBy: types.StringList{}, Timestamp: base}
	if err := db.Create(&approved).Error; err != nil {
		t.Fatal(err)
	}

	r := newTestReview(db)
	posts, err := r.ListPending(context.Background(), "admin")
	if err != nil {
		t.Fatalf("ListPending: %v", err)
	}
	if len(posts) != 2 {
		t.Fatalf("queue length = %d, want 2", len(posts))
	}
	if posts[0].ID != "new" || posts[1].ID != "old" {
		t.Errorf("order = [%s %s], want [new old]", posts[0].ID, posts[1].ID)
	}
}

func TestReview_ApproveIsNotATrustEvent(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	seedUser(t, db, "alice", false, 2, 0, false)
	seedPending(t, db, "p1", "alice", time.Now())
	r := newTestReview(db)

	post, err := r.Approve(context.Background(), "p1", "admin")
	if err != nil {
		t.Fatalf("Approve: %v", err)
	}
	if post.Status != types.PostStatusApproved {
		t.Errorf("Status = %q, want approved", post.Status)
	}
	if post.ApprovedBy != "admin" || post.ApprovedAt == nil {
		t.Errorf("approval record incomplete: by=%q at=%v", post.ApprovedBy, post.ApprovedAt)
	}

	// The clean-post credit was already given at submission time.
	u := getUser(t, db, "alice")
	if u.CleanPostCount != 2 || u.PostViolations != 0 {
		t.Errorf("trust counters moved on approval: clean=%d violations=%d", u.CleanPostCount, u.PostViolations)
	}
}

func TestReview_RejectRecordsViolation(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	seedUser(t, db, "alice", false, 3, 0, false)
	seedPending(t, db, "p1", "alice", time.Now())
	r := newTestReview(db)

	post, err := r.Reject(context.Background(), "p1", "admin", "misleading review")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if post.Status != types.PostStatusRejected {
		t.Errorf("Status = %q, want rejected", post.Status)
	}
	if post.ModerationReason != "misleading review" {
		t.Errorf("ModerationReason = %q", post.ModerationReason)
	}
	if post.RejectedBy != "admin" || post.RejectedAt == nil {
		t.Errorf("rejection record incomplete: by=%q at=%v", post.RejectedBy, post.RejectedAt)
	}

	u := getUser(t, db, "alice")
	if u.PostViolations != 1 {
		t.Errorf("PostViolations = %d, want 1", u.PostViolations)
	}
	if u.CleanPostCount != 0 {
		t.Errorf("CleanPostCount = %d, want 0 (streak reset)", u.CleanPostCount)
	}
}

func TestReview_RepeatedRejectCountsOneViolation(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	seedUser(t, db, "alice", false, 2, 0, false)
	seedPending(t, db, "p1", "alice", time.Now())
	r := newTestReview(db)

	if _, err := r.Reject(context.Background(), "p1", "admin", "misleading review"); err != nil {
		t.Fatalf("first Reject: %v", err)
	}
	post, err := r.Reject(context.Background(), "p1", "admin", "changed my mind")
	if err != nil {
		t.Fatalf("second Reject: %v", err)
	}
	if post.Status != types.PostStatusRejected {
		t.Errorf("Status = %q", post.Status)
	}
	if post.ModerationReason != "misleading review" {
		t.Errorf("ModerationReason = %q, want the first decision's reason", post.ModerationReason)
	}

	u := getUser(t, db, "alice")
	if u.PostViolations != 1 {
		t.Errorf("PostViolations = %d, want 1 after repeated rejects", u.PostViolations)
	}
}

func TestReview_RejectDefaultReason(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "admin", true, 0, 0, false)
	seedUser(t, db, "alice", false, 0, 0, false)
	seedPending(t, db, "p1", "alice", time.Now())
	r := newTestReview(db)

	post, err := r.Reject(context.Background(), "p1", "admin", "")
	if err != nil {
		t.Fatalf("Reject: %v", err)
	}
	if post.ModerationReason != defaultRejectReason {
		t.Errorf("ModerationReason = %q, want %q", post.ModerationReason, defaultRejectReason)
	}
}
