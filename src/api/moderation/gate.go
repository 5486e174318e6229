package moderation

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/metrics"
	"github.com/roadway-app/roadway/src/api/types"
)

// linkRejectionReason is the fixed user-facing reason when the content
// verdict is clean but the link verdict is not.
const linkRejectionReason = "Suspicious or malicious link detected"

// Notifier delivers best-effort notifications. Implementations log their
// own failures; the gate never checks them.
type Notifier interface {
	Notify(ctx context.Context, typ, targetUserID, sourceUserID, postID string)
}

// Candidate is a post submission awaiting admission.
type Candidate struct {
	AuthorID        string
	CourseName      string
	Review          string
	Rating          int
	LinkURL         string
	Field           string
	IsCommunityPost bool
	ImageURLs       []string
	RepostOfID      string
}

// Result is the outcome of one admission decision.
type Result struct {
	Accepted       bool
	Reason         string
	ViolationTypes []string
	Post           *types.Post
}

// Gate screens candidate posts. Rejected content is never persisted;
// accepted content is stored as pending and still requires human approval
// before it becomes visible. Automated screening filters clear violations,
// it does not grant visibility.
type Gate struct {
	db       *gorm.DB
	filter   *Filter
	content  ContentChecker
	links    LinkChecker
	trust    *Ledger
	notifier Notifier
}

func NewGate(db *gorm.DB, filter *Filter, content ContentChecker, links LinkChecker, trust *Ledger, notifier Notifier) *Gate {
	return &Gate{
		db:       db,
		filter:   filter,
		content:  content,
		links:    links,
		trust:    trust,
		notifier: notifier,
	}
}

// Admit runs the admission pipeline: local blocklist, then content
// classification and (when a link is present) link risk assessment, the two
// external checks in parallel. A returned error means storage failure only;
// a content rejection is a normal outcome with Accepted=false.
func (g *Gate) Admit(ctx context.Context, cand Candidate) (Result, error) {
	text := strings.TrimSpace(strings.TrimSpace(cand.CourseName) + " " + strings.TrimSpace(cand.Review))

	// Local screen first: always available, so unambiguous violations are
	// caught even during a classifier outage.
	if hit := g.filter.Check(text); hit.Blocked {
		return g.reject(ctx, cand, Verdict{
			IsViolation:    true,
			Reason:         "Prohibited content detected",
			Severity:       SeverityHigh,
			ViolationTypes: []string{hit.Category},
		}), nil
	}

	var (
		verdict     Verdict
		linkVerdict LinkVerdict
	)
	if cand.LinkURL != "" {
		// Both checks are independent and read-only; run them together.
		var wg sync.WaitGroup
		wg.Add(2)
		go func() {
			defer wg.Done()
			verdict = g.content.Classify(ctx, text, cand.LinkURL)
		}()
		go func() {
			defer wg.Done()
			linkVerdict = g.links.CheckLink(ctx, cand.LinkURL)
		}()
		wg.Wait()
	} else {
		verdict = g.content.Classify(ctx, text, "")
		linkVerdict = LinkVerdict{IsSafe: true, RiskLevel: SeverityLow}
	}

	if verdict.IsViolation || !linkVerdict.IsSafe {
		if !verdict.IsViolation {
			verdict = Verdict{
				IsViolation:    true,
				Reason:         linkRejectionReason,
				Severity:       linkVerdict.RiskLevel,
				ViolationTypes: []string{ViolationMaliciousLink},
			}
		}
		return g.reject(ctx, cand, verdict), nil
	}

	// The write happens only after both verdicts are known, so an aborted
	// request can never leave a partial post behind.
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	now := time.Now()
	post := &types.Post{
		ID:              uuid.NewString(),
		AuthorID:        cand.AuthorID,
		CourseName:      cand.CourseName,
		Review:          cand.Review,
		Rating:          cand.Rating,
		LinkURL:         cand.LinkURL,
		Field:           cand.Field,
		IsCommunityPost: cand.IsCommunityPost,
		ImageURLs:       cand.ImageURLs,
		RepostOfID:      cand.RepostOfID,
		Status:          types.PostStatusPending,
		LikedBy:         types.StringList{},
		Timestamp:       now,
	}
	if err := g.db.WithContext(ctx).Create(post).Error; err != nil {
		return Result{}, err
	}

	g.trust.RecordOutcome(ctx, cand.AuthorID, true)
	metrics.PostsModerated.WithLabelValues("accepted").Inc()

	if cand.RepostOfID != "" {
		g.notifyRepost(ctx, cand, post.ID)
	}

	return Result{Accepted: true, Post: post}, nil
}

// Screen applies only the local blocklist. Post edits go through this
// cheaper check; the full admission pass already ran at submission time.
func (g *Gate) Screen(text string) FilterResult {
	return g.filter.Check(text)
}

func (g *Gate) reject(ctx context.Context, cand Candidate, verdict Verdict) Result {
	log.Printf("moderation: rejected post by %s: %s %v", cand.AuthorID, verdict.Reason, verdict.ViolationTypes)
	g.trust.RecordOutcome(ctx, cand.AuthorID, false)
	metrics.PostsModerated.WithLabelValues("rejected").Inc()
	return Result{
		Accepted:       false,
		Reason:         verdict.Reason,
		ViolationTypes: verdict.ViolationTypes,
	}
}

// notifyRepost tells the original author their post was reposted.
// Best-effort: a notification failure never rolls back the post.
func (g *Gate) notifyRepost(ctx context.Context, cand Candidate, postID string) {
	var orig types.Post
	if err := g.db.WithContext(ctx).First(&orig, "id = ?", cand.RepostOfID).Error; err != nil {
		log.Printf("moderation: repost source %s not found: %v", cand.RepostOfID, err)
		return
	}
	if orig.AuthorID == cand.AuthorID {
		return
	}
	g.notifier.Notify(ctx, types.NotificationRepost, orig.AuthorID, cand.AuthorID, postID)
}
