package identifier

import (
	"context"
	"errors"

	"github.com/ariebrainware/hospital-core/model"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Counter hands out the next sequence of a scope. Implementations must be safe
// for concurrent use by independent processes, not just goroutines.
//
// tx is the transaction the caller will create the entity in; counters that
// live in the same database use it so the sequence commits or rolls back with
// the entity.
type Counter interface {
	Next(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) (int, error)
}

// TableCounter keeps one sequence_counters row per scope and increments it
// with a guarded UPDATE inside the caller's transaction. The row lock taken by
// the UPDATE serialises concurrent callers of the same scope until commit.
type TableCounter struct{}

func (TableCounter) Next(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) (int, error) {
	tx = tx.WithContext(ctx)

	if err := ensureCounter(ctx, tx, s, prefix); err != nil {
		return 0, err
	}

	res := tx.Model(&model.SequenceCounter{}).
		Where("scope = ? AND last_sequence < ?", prefix, MaxSequence).
		Update("last_sequence", gorm.Expr("last_sequence + 1"))
	if res.Error != nil {
		return 0, Unavailable("increment "+string(s.Kind)+" counter", res.Error)
	}
	if res.RowsAffected == 0 {
		return 0, rangeExceeded(s, prefix)
	}

	var counter model.SequenceCounter
	if err := tx.Where("scope = ?", prefix).Take(&counter).Error; err != nil {
		return 0, Unavailable("read "+string(s.Kind)+" counter", err)
	}
	return counter.LastSequence, nil
}

// ensureCounter creates the scope's row when missing. A new row starts at the
// highest sequence already persisted for the scope, so identifiers written
// before the counter existed are never reissued.
//
// The existence check must not lock: on MySQL a locking read of a missing row
// takes a gap lock that deadlocks concurrent inserts of the same scope. The
// guarded UPDATE in Next takes the row lock.
func ensureCounter(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) error {
	var count int64
	if err := tx.Model(&model.SequenceCounter{}).Where("scope = ?", prefix).Count(&count).Error; err != nil {
		return Unavailable("read "+string(s.Kind)+" counter", err)
	}
	if count > 0 {
		return nil
	}

	last, err := LastSequence(ctx, tx, s, prefix)
	if err != nil {
		return err
	}
	return seedCounter(tx, s, prefix, last)
}

// seedCounter inserts the scope's row at last. A row committed meanwhile by
// another transaction wins and is left untouched.
func seedCounter(tx *gorm.DB, s Scheme, prefix string, last int) error {
	counter := model.SequenceCounter{Kind: string(s.Kind), Scope: prefix, LastSequence: last}
	if err := tx.Clauses(clause.OnConflict{DoNothing: true}).Create(&counter).Error; err != nil {
		return Unavailable("create "+string(s.Kind)+" counter", err)
	}
	return nil
}

// Current reports the last sequence issued for prefix without consuming one.
func (TableCounter) Current(ctx context.Context, db *gorm.DB, s Scheme, prefix string) (int, error) {
	var counter model.SequenceCounter
	err := db.WithContext(ctx).Where("scope = ?", prefix).Take(&counter).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return LastSequence(ctx, db, s, prefix)
	}
	if err != nil {
		return 0, Unavailable("read "+string(s.Kind)+" counter", err)
	}
	return counter.LastSequence, nil
}
