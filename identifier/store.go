package identifier

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"
)

// LastIdentifier returns the greatest identifier of scheme made of prefix and a
// SequenceWidth suffix, or "" when the scope is empty. Longer values sharing the
// prefix are ignored. Ordering is lexicographic, which matches numeric
// order because the sequence suffix is fixed width.
//
// Soft-deleted rows are included: they keep their identifier under the unique index.
func LastIdentifier(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) (string, error) {
	var ids []string
	err := tx.WithContext(ctx).
		Table(s.Table).
		Where(fmt.Sprintf("%s LIKE ?", s.Column), SequencePattern(prefix)).
		Order(fmt.Sprintf("%s DESC", s.Column)).
		Limit(1).
		Pluck(s.Column, &ids).Error
	if err != nil {
		return "", Unavailable("find last "+string(s.Kind), err)
	}
	if len(ids) == 0 {
		return "", nil
	}
	return ids[0], nil
}

// SequencePattern is a LIKE pattern matching prefix followed by exactly
// SequenceWidth characters.
func SequencePattern(prefix string) string {
	return prefix + strings.Repeat("_", SequenceWidth)
}

// LastSequence is LastIdentifier parsed down to its sequence; 0 when the scope is empty.
func LastSequence(ctx context.Context, tx *gorm.DB, s Scheme, prefix string) (int, error) {
	last, err := LastIdentifier(ctx, tx, s, prefix)
	if err != nil || last == "" {
		return 0, err
	}
	id, err := s.Parse(last)
	if err != nil {
		return 0, err
	}
	return id.Sequence, nil
}
