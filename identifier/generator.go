package identifier

import (
	"context"
	"errors"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

// Generator issues identifiers for any Scheme on top of a Counter.
type Generator struct {
	db      *gorm.DB
	counter Counter
	now     func() time.Time
	loc     *time.Location
	metrics *Metrics
	log     zerolog.Logger
}

// Option configures a Generator.
type Option func(*Generator)

// WithCounter replaces the default TableCounter.
func WithCounter(c Counter) Option {
	return func(g *Generator) { g.counter = c }
}

// WithClock sets the clock used when no date is given.
func WithClock(now func() time.Time) Option {
	return func(g *Generator) { g.now = now }
}

// WithLocation sets the time zone scopes are derived in.
func WithLocation(loc *time.Location) Option {
	return func(g *Generator) { g.loc = loc }
}

func WithMetrics(m *Metrics) Option {
	return func(g *Generator) { g.metrics = m }
}

func WithLogger(l zerolog.Logger) Option {
	return func(g *Generator) { g.log = l }
}

// NewGenerator returns a Generator backed by db.
func NewGenerator(db *gorm.DB, opts ...Option) *Generator {
	g := &Generator{
		db:      db,
		counter: TableCounter{},
		now:     time.Now,
		loc:     time.Local,
		log:     zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// Today is the generator's current date in its location.
func (g *Generator) Today() time.Time {
	return g.now().In(g.loc)
}

// Day returns midnight of date's calendar day in the generator's location.
// A zero date means today.
func (g *Generator) Day(date time.Time) time.Time {
	if date.IsZero() {
		date = g.now()
	}
	d := date.In(g.loc)
	return time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, g.loc)
}

// Prefix is the scope prefix of s for date in the generator's location.
func (g *Generator) Prefix(s Scheme, date time.Time) string {
	if date.IsZero() {
		date = g.now()
	}
	return s.Prefix(date.In(g.loc))
}

// Next reserves the next identifier of s for date inside tx. The caller must
// create the owning entity in the same transaction. A zero date means today.
func (g *Generator) Next(ctx context.Context, tx *gorm.DB, s Scheme, date time.Time) (string, error) {
	prefix := g.Prefix(s, date)

	seq, err := g.counter.Next(ctx, tx, s, prefix)
	if err != nil {
		if errors.Is(err, ErrRangeExceeded) {
			g.metrics.rangeExceeded(s.Kind)
			g.log.Warn().Str("kind", string(s.Kind)).Str("scope", prefix).Msg("identifier scope exhausted")
		}
		return "", err
	}

	id, err := s.Format(prefix, seq)
	if err != nil {
		g.metrics.rangeExceeded(s.Kind)
		return "", err
	}

	g.metrics.issued(s.Kind)
	g.log.Debug().Str("kind", string(s.Kind)).Str("id", id).Msg("identifier reserved")
	return id, nil
}

// Assign opens a transaction, reserves the next identifier of s for date and
// calls create with it. The identifier is only kept if create succeeds and the
// transaction commits.
func (g *Generator) Assign(ctx context.Context, s Scheme, date time.Time, create func(tx *gorm.DB, id string) error) (string, error) {
	var (
		assigned string
		inner    error
	)
	err := g.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		id, err := g.Next(ctx, tx, s, date)
		if err != nil {
			inner = err
			return err
		}
		if err := create(tx, id); err != nil {
			inner = err
			return err
		}
		assigned = id
		return nil
	})
	if inner != nil {
		return "", inner
	}
	if err != nil {
		// begin or commit failed
		return "", Unavailable("assign "+string(s.Kind), err)
	}
	return assigned, nil
}

// Peek returns the identifier the next Assign for date would produce, without
// reserving it. Only meaningful with a TableCounter; other counters fall back
// to scanning the entity table.
func (g *Generator) Peek(ctx context.Context, s Scheme, date time.Time) (string, error) {
	prefix := g.Prefix(s, date)

	var (
		last int
		err  error
	)
	if tc, ok := g.counter.(TableCounter); ok {
		last, err = tc.Current(ctx, g.db, s, prefix)
	} else {
		last, err = LastSequence(ctx, g.db, s, prefix)
	}
	if err != nil {
		return "", err
	}
	return s.Format(prefix, last+1)
}
