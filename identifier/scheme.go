// Package identifier issues human-readable, date-scoped sequential identifiers
// such as medical record numbers (MRN20250601001) and visit queue numbers
// (250601-001).
//
// An identifier is a scope prefix derived from a calendar date followed by a
// zero-padded sequence that is unique within that scope. Sequences are handed
// out by a Counter owned by the persistence layer so that concurrent callers
// never observe the same value.
package identifier

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Kind names an identifier family.
type Kind string

const (
	KindMedicalRecord Kind = "mrn"
	KindQueueNumber   Kind = "queue"
)

const (
	// SequenceWidth is the number of digits of the sequence suffix.
	SequenceWidth = 3
	// MaxSequence is the largest sequence a scope can hold.
	MaxSequence = 999
)

// Scheme describes how identifiers of one kind are built and where they are stored.
type Scheme struct {
	Kind Kind
	// Literal is placed in front of the date, e.g. "MRN".
	Literal string
	// DateLayout is a time layout for the date part of the prefix.
	DateLayout string
	// Separator sits between the date and the sequence, e.g. "-".
	Separator string
	// Table and Column locate persisted identifiers of this kind.
	Table  string
	Column string
}

// MedicalRecord identifies patients: MRN + YYYYMMDD + 3-digit sequence.
var MedicalRecord = Scheme{
	Kind:       KindMedicalRecord,
	Literal:    "MRN",
	DateLayout: "20060102",
	Table:      "patients",
	Column:     "medical_record_number",
}

// QueueNumber identifies visits within a day: YYMMDD-NNN.
var QueueNumber = Scheme{
	Kind:       KindQueueNumber,
	DateLayout: "060102",
	Separator:  "-",
	Table:      "visits",
	Column:     "queue_number",
}

// SchemeFor returns the built-in scheme for kind.
func SchemeFor(kind Kind) (Scheme, error) {
	switch kind {
	case KindMedicalRecord:
		return MedicalRecord, nil
	case KindQueueNumber:
		return QueueNumber, nil
	}
	return Scheme{}, fmt.Errorf("%w: %q", ErrUnknownScheme, kind)
}

// Identifier is a parsed identifier.
type Identifier struct {
	Kind     Kind
	Prefix   string
	Date     time.Time
	Sequence int
}

func (id Identifier) String() string {
	return id.Prefix + pad(id.Sequence)
}

// Prefix returns the scope prefix for date. Only the calendar date of t, in
// t's own location, is used.
func (s Scheme) Prefix(t time.Time) string {
	return s.Literal + t.Format(s.DateLayout) + s.Separator
}

// Format joins a scope prefix and a sequence.
func (s Scheme) Format(prefix string, seq int) (string, error) {
	if seq < 1 || seq > MaxSequence {
		return "", fmt.Errorf("%w: %s sequence %d in scope %s", ErrRangeExceeded, s.Kind, seq, prefix)
	}
	return prefix + pad(seq), nil
}

// Parse splits id into its scope prefix and sequence and validates both.
func (s Scheme) Parse(id string) (Identifier, error) {
	want := len(s.Literal) + len(s.DateLayout) + len(s.Separator) + SequenceWidth
	if len(id) != want {
		return Identifier{}, fmt.Errorf("%w: %s %q has length %d, want %d", ErrMalformedIdentifier, s.Kind, id, len(id), want)
	}
	if !strings.HasPrefix(id, s.Literal) {
		return Identifier{}, fmt.Errorf("%w: %s %q does not start with %q", ErrMalformedIdentifier, s.Kind, id, s.Literal)
	}

	split := len(id) - SequenceWidth
	prefix, suffix := id[:split], id[split:]
	if !strings.HasSuffix(prefix, s.Separator) {
		return Identifier{}, fmt.Errorf("%w: %s %q is missing separator %q", ErrMalformedIdentifier, s.Kind, id, s.Separator)
	}

	datePart := strings.TrimSuffix(strings.TrimPrefix(prefix, s.Literal), s.Separator)
	date, err := time.Parse(s.DateLayout, datePart)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %s %q has invalid date: %v", ErrMalformedIdentifier, s.Kind, id, err)
	}

	seq, err := parseSequence(suffix)
	if err != nil {
		return Identifier{}, fmt.Errorf("%w: %s %q: %v", ErrMalformedIdentifier, s.Kind, id, err)
	}

	return Identifier{Kind: s.Kind, Prefix: prefix, Date: date, Sequence: seq}, nil
}

func parseSequence(suffix string) (int, error) {
	for _, r := range suffix {
		if r < '0' || r > '9' {
			return 0, fmt.Errorf("sequence %q is not numeric", suffix)
		}
	}
	seq, err := strconv.Atoi(suffix)
	if err != nil {
		return 0, err
	}
	if seq < 1 {
		return 0, fmt.Errorf("sequence %q out of range", suffix)
	}
	return seq, nil
}

func pad(seq int) string {
	return fmt.Sprintf("%0*d", SequenceWidth, seq)
}
