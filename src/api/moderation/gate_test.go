package moderation

import (
	"context"
	"testing"

	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

type stubContent struct{ v Verdict }

func (s stubContent) Classify(ctx context.Context, text, linkURL string) Verdict { return s.v }

type stubLinks struct{ v LinkVerdict }

func (s stubLinks) CheckLink(ctx context.Context, url string) LinkVerdict { return s.v }

type notifyEvent struct {
	typ, target, source, postID string
}

type stubNotifier struct{ events []notifyEvent }

func (s *stubNotifier) Notify(ctx context.Context, typ, target, source, postID string) {
	s.events = append(s.events, notifyEvent{typ, target, source, postID})
}

func newTestGate(db *gorm.DB, content ContentChecker, links LinkChecker, notifier Notifier) *Gate {
	return NewGate(db, NewFilter(), content, links, NewLedger(db, 5), notifier)
}

func countPosts(t *testing.T, db *gorm.DB) int64 {
	t.Helper()
	var n int64
	if err := db.Model(&types.Post{}).Count(&n).Error; err != nil {
		t.Fatalf("count posts: %v", err)
	}
	return n
}

func TestAdmit_CleanPostStoredPending(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	g := newTestGate(db, stubContent{}, stubLinks{}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID:   "alice",
		CourseName: "Algorithms II",
		Review:     "Great class!",
		Rating:     5,
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !res.Accepted {
		t.Fatalf("clean post rejected: %+v", res)
	}
	if res.Post.Status != types.PostStatusPending {
		t.Errorf("Status = %q, want pending", res.Post.Status)
	}

	u := getUser(t, db, "alice")
	if u.CleanPostCount != 1 {
		t.Errorf("CleanPostCount = %d, want 1", u.CleanPostCount)
	}
	if countPosts(t, db) != 1 {
		t.Error("post not persisted")
	}
}

func TestAdmit_ViolationNeverPersisted(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 3, 0, false)
	g := newTestGate(db, stubContent{v: Verdict{
		IsViolation:    true,
		Reason:         "hate speech detected",
		Severity:       SeverityHigh,
		ViolationTypes: []string{ViolationHateSpeech},
	}}, stubLinks{}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID:   "alice",
		CourseName: "Algorithms II",
		Review:     "some slur text",
		Rating:     1,
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Accepted {
		t.Fatal("violation accepted")
	}
	if res.Reason != "hate speech detected" {
		t.Errorf("Reason = %q", res.Reason)
	}
	if len(res.ViolationTypes) != 1 || res.ViolationTypes[0] != ViolationHateSpeech {
		t.Errorf("ViolationTypes = %v", res.ViolationTypes)
	}
	if countPosts(t, db) != 0 {
		t.Error("rejected content reached the post store")
	}

	u := getUser(t, db, "alice")
	if u.PostViolations != 1 {
		t.Errorf("PostViolations = %d, want 1", u.PostViolations)
	}
	if u.CleanPostCount != 0 {
		t.Errorf("CleanPostCount = %d, want 0 (streak reset)", u.CleanPostCount)
	}
}

func TestAdmit_FailOpenOnClassifierOutage(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	// A broken classifier yields the zero (clean) verdict.
	g := newTestGate(db, stubContent{}, stubLinks{v: LinkVerdict{IsSafe: true, RiskLevel: SeverityLow}}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID:   "alice",
		CourseName: "Course",
		Review:     "normal review",
		Rating:     4,
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if !res.Accepted {
		t.Fatal("classifier outage blocked a legitimate post")
	}
}

func TestAdmit_UnsafeLinkPrecedence(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	// Clean content, unsafe link: the fixed link reason must win.
	g := newTestGate(db, stubContent{}, stubLinks{v: LinkVerdict{
		IsSafe:    false,
		RiskLevel: SeverityHigh,
		Reason:    "known phishing domain",
	}}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID:   "alice",
		CourseName: "Course",
		Review:     "check this resource",
		Rating:     5,
		LinkURL:    "http://paypa1-login.example",
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Accepted {
		t.Fatal("unsafe link accepted")
	}
	if res.Reason != "Suspicious or malicious link detected" {
		t.Errorf("Reason = %q, want fixed link rejection message", res.Reason)
	}
	if len(res.ViolationTypes) != 1 || res.ViolationTypes[0] != ViolationMaliciousLink {
		t.Errorf("ViolationTypes = %v", res.ViolationTypes)
	}
	if countPosts(t, db) != 0 {
		t.Error("rejected content reached the post store")
	}
}

func TestAdmit_ContentReasonPreferredOverLink(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	g := newTestGate(db, stubContent{v: Verdict{
		IsViolation:    true,
		Reason:         "spam content",
		Severity:       SeverityMedium,
		ViolationTypes: []string{ViolationSpam},
	}}, stubLinks{v: LinkVerdict{IsSafe: false, RiskLevel: SeverityHigh, Reason: "bad link"}}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID: "alice",
		Review:   "buy now",
		LinkURL:  "http://spam.example",
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Accepted {
		t.Fatal("violation accepted")
	}
	if res.Reason != "spam content" {
		t.Errorf("Reason = %q, want content verdict reason", res.Reason)
	}
}

func TestAdmit_LocalFilterBlocksDuringOutage(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	// Classifier down (clean zero verdict), but the blocklist still fires.
	g := newTestGate(db, stubContent{}, stubLinks{}, &stubNotifier{})

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID: "alice",
		Review:   "you should kill yourself",
	})
	if err != nil {
		t.Fatalf("Admit: %v", err)
	}
	if res.Accepted {
		t.Fatal("blocklisted content accepted")
	}
	if countPosts(t, db) != 0 {
		t.Error("rejected content reached the post store")
	}
}

func TestAdmit_RepostNotifiesOriginalAuthor(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "alice", false, 0, 0, false)
	seedUser(t, db, "bob", false, 0, 0, false)
	notifier := &stubNotifier{}
	g := newTestGate(db, stubContent{}, stubLinks{}, notifier)

	orig, err := g.Admit(context.Background(), Candidate{AuthorID: "bob", Review: "original take", Rating: 4})
	if err != nil || !orig.Accepted {
		t.Fatalf("seed post: %v %+v", err, orig)
	}

	res, err := g.Admit(context.Background(), Candidate{
		AuthorID:   "alice",
		Review:     "sharing this",
		Rating:     4,
		RepostOfID: orig.Post.ID,
	})
	if err != nil || !res.Accepted {
		t.Fatalf("repost: %v %+v", err, res)
	}

	if len(notifier.events) != 1 {
		t.Fatalf("notifications = %d, want 1", len(notifier.events))
	}
	ev := notifier.events[0]
	if ev.typ != types.NotificationRepost || ev.target != "bob" || ev.source != "alice" {
		t.Errorf("unexpected notification %+v", ev)
	}
}

func TestAdmit_SelfRepostNotNotified(t *testing.T) {
	db := newTestDB(t)
	seedUser(t, db, "bob", false, 0, 0, false)
	notifier := &stubNotifier{}
	g := newTestGate(db, stubContent{}, stubLinks{}, notifier)

	orig, err := g.Admit(context.Background(), Candidate{AuthorID: "bob", Review: "mine", Rating: 3})
	if err != nil || !orig.Accepted {
		t.Fatalf("seed post: %v", err)
	}
	_, err = g.Admit(context.Background(), Candidate{AuthorID: "bob", Review: "mine again", Rating: 3, RepostOfID: orig.Post.ID})
	if err != nil {
		t.Fatalf("self repost: %v", err)
	}
	if len(notifier.events) != 0 {
		t.Errorf("self repost produced notifications: %+v", notifier.events)
	}
}
