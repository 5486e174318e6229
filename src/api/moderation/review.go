package moderation

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/metrics"
	"github.com/roadway-app/roadway/src/api/types"
)

// defaultRejectReason is stored when an admin rejects without giving one.
const defaultRejectReason = "Rejected by moderator"

var (
	// ErrForbidden means the requesting user exists but is not an admin.
	ErrForbidden = errors.New("admin access required")
	// ErrNotFound means the referenced user or post does not exist.
	ErrNotFound = errors.New("not found")
)

// Review exposes the moderation queue to privileged reviewers. Posts that
// passed automated screening sit in pending until a human approves them.
type Review struct {
	db    *gorm.DB
	trust *Ledger
}

func NewReview(db *gorm.DB, trust *Ledger) *Review {
	return &Review{db: db, trust: trust}
}

// requireAdmin resolves the requesting user and checks the admin flag.
func (r *Review) requireAdmin(ctx context.Context, userID string) error {
	var user types.User
	err := r.db.WithContext(ctx).First(&user, "id = ?", userID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return ErrForbidden
	}
	return nil
}

// ListPending returns all posts awaiting review, newest first.
func (r *Review) ListPending(ctx context.Context, requestingUserID string) ([]types.Post, error) {
	if err := r.requireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}
	var posts []types.Post
	err := r.db.WithContext(ctx).
		Where("status = ?", types.PostStatusPending).
		Order("timestamp desc").
		Find(&posts).Error
	return posts, err
}

// Approve makes a pending post visible. Approval is a visibility gate, not
// a second trust signal: the clean-post increment already happened at
// submission time, so the ledger is not touched here.
func (r *Review) Approve(ctx context.Context, postID, requestingUserID string) (*types.Post, error) {
	if err := r.requireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	post, err := r.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	now := time.Now()
	updates := map[string]interface{}{
		"status":      types.PostStatusApproved,
		"approved_by": requestingUserID,
		"approved_at": now,
	}
	if err := r.db.WithContext(ctx).Model(post).Updates(updates).Error; err != nil {
		return nil, err
	}

	log.Printf("moderation: admin %s approved post %s", requestingUserID, postID)
	metrics.AdminReviews.WithLabelValues("approved").Inc()
	return r.getPost(ctx, postID)
}

// Reject marks a post rejected and records the human-confirmed violation
// against the author's trust record: the post passed automated screening,
// but a reviewer found a real problem.
func (r *Review) Reject(ctx context.Context, postID, requestingUserID, reason string) (*types.Post, error) {
	if err := r.requireAdmin(ctx, requestingUserID); err != nil {
		return nil, err
	}

	post, err := r.getPost(ctx, postID)
	if err != nil {
		return nil, err
	}

	if reason == "" {
		reason = defaultRejectReason
	}
	now := time.Now()
	updates := map[string]interface{}{
		"status":            types.PostStatusRejected,
		"moderation_reason": reason,
		"rejected_by":       requestingUserID,
		"rejected_at":       now,
	}
	// Guard on the current status so a repeated reject (admin double-click)
	// cannot count a second violation against the author.
	res := r.db.WithContext(ctx).Model(&types.Post{}).
		Where("id = ? AND status <> ?", postID, types.PostStatusRejected).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		return r.getPost(ctx, postID)
	}

	r.trust.RecordOutcome(ctx, post.AuthorID, false)

	log.Printf("moderation: admin %s rejected post %s: %s", requestingUserID, postID, reason)
	metrics.AdminReviews.WithLabelValues("rejected").Inc()
	return r.getPost(ctx, postID)
}

func (r *Review) getPost(ctx context.Context, postID string) (*types.Post, error) {
	var post types.Post
	err := r.db.WithContext(ctx).First(&post, "id = ?", postID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &post, nil
}
