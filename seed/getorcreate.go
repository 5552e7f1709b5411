// Package seed bootstraps a database with reference and demo data. Every
// record is looked up first and only created when missing, so a run can be
// repeated against the same database.
package seed

import (
	"context"
	"errors"

	"github.com/ariebrainware/hospital-core/identifier"
	"gorm.io/gorm"
)

// Outcome tells whether GetOrCreate found or inserted its record.
type Outcome int

const (
	Existing Outcome = iota
	Created
)

func (o Outcome) String() string {
	if o == Created {
		return "created"
	}
	return "existing"
}

// Result is the record returned by GetOrCreate tagged with its Outcome.
type Result[T any] struct {
	Record  T
	Outcome Outcome
}

// Scope narrows a lookup, in the shape of gorm's Scopes.
type Scope func(*gorm.DB) *gorm.DB

// Where builds a Scope from a gorm condition.
func Where(query interface{}, args ...interface{}) Scope {
	return func(db *gorm.DB) *gorm.DB { return db.Where(query, args...) }
}

// GetOrCreate returns the first T matching scope. When none exists it calls
// create and returns what create produced.
func GetOrCreate[T any](ctx context.Context, db *gorm.DB, scope Scope, create func(ctx context.Context) (T, error)) (Result[T], error) {
	var rec T
	err := db.WithContext(ctx).Scopes(scope).First(&rec).Error
	if err == nil {
		return Result[T]{Record: rec, Outcome: Existing}, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return Result[T]{}, identifier.Unavailable("lookup", err)
	}

	rec, err = create(ctx)
	if err != nil {
		return Result[T]{}, err
	}
	return Result[T]{Record: rec, Outcome: Created}, nil
}

// Insert returns a create func for GetOrCreate that inserts rec as is.
func Insert[T any](db *gorm.DB, rec T) func(ctx context.Context) (T, error) {
	return func(ctx context.Context) (T, error) {
		if err := db.WithContext(ctx).Create(&rec).Error; err != nil {
			var zero T
			return zero, identifier.Unavailable("insert", err)
		}
		return rec, nil
	}
}
