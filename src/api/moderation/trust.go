package moderation

import (
	"context"
	"log"

	"gorm.io/gorm"

	"github.com/roadway-app/roadway/src/api/types"
)

// Ledger maintains per-user trust counters. All mutations are single-row
// atomic updates so that concurrent moderation outcomes for the same user
// cannot lose increments.
type Ledger struct {
	db        *gorm.DB
	threshold int
}

// NewLedger returns a ledger promoting users to trusted after threshold
// consecutive clean posts.
func NewLedger(db *gorm.DB, threshold int) *Ledger {
	if threshold <= 0 {
		threshold = 5
	}
	return &Ledger{db: db, threshold: threshold}
}

// RecordOutcome applies one moderation outcome to the author's trust record.
// Call exactly once per admission or review decision. A missing user is a
// no-op: moderation must not crash on a dangling author reference.
//
// A violation resets the clean streak but never clears the trusted flag:
// trusted status, once granted, is only removable by hand.
func (l *Ledger) RecordOutcome(ctx context.Context, userID string, wasClean bool) {
	if userID == "" {
		return
	}

	if !wasClean {
		res := l.db.WithContext(ctx).Model(&types.User{}).
			Where("id = ?", userID).
			UpdateColumns(map[string]interface{}{
				"post_violations":  gorm.Expr("post_violations + 1"),
				"clean_post_count": 0,
			})
		if res.Error != nil {
			log.Printf("trust: record violation for %s: %v", userID, res.Error)
			return
		}
		if res.RowsAffected == 0 {
			log.Printf("trust: unknown user %s, skipping violation", userID)
		}
		return
	}

	res := l.db.WithContext(ctx).Model(&types.User{}).
		Where("id = ?", userID).
		UpdateColumn("clean_post_count", gorm.Expr("clean_post_count + 1"))
	if res.Error != nil {
		log.Printf("trust: record clean outcome for %s: %v", userID, res.Error)
		return
	}
	if res.RowsAffected == 0 {
		log.Printf("trust: unknown user %s, skipping clean outcome", userID)
		return
	}

	// Promote once the streak reaches the threshold. The guard makes the
	// update idempotent under races.
	if err := l.db.WithContext(ctx).Model(&types.User{}).
		Where("id = ? AND clean_post_count >= ? AND is_trusted = ?", userID, l.threshold, false).
		UpdateColumn("is_trusted", true).Error; err != nil {
		log.Printf("trust: promote %s: %v", userID, err)
	}
}
