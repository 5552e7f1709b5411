package identifier

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 10, 30, 0, 0, time.UTC)
}

func TestScheme_Prefix(t *testing.T) {
	assert.Equal(t, "MRN20250601", MedicalRecord.Prefix(date(2025, time.June, 1)))
	assert.Equal(t, "250601-", QueueNumber.Prefix(date(2025, time.June, 1)))
	assert.Equal(t, "251231-", QueueNumber.Prefix(date(2025, time.December, 31)))
}

func TestScheme_Format(t *testing.T) {
	id, err := MedicalRecord.Format("MRN20250601", 1)
	assert.NoError(t, err)
	assert.Equal(t, "MRN20250601001", id)

	id, err = QueueNumber.Format("250601-", 42)
	assert.NoError(t, err)
	assert.Equal(t, "250601-042", id)

	id, err = QueueNumber.Format("250601-", MaxSequence)
	assert.NoError(t, err)
	assert.Equal(t, "250601-999", id)
}

func TestScheme_FormatRejectsOutOfRange(t *testing.T) {
	for _, seq := range []int{0, -1, MaxSequence + 1, 12345} {
		_, err := MedicalRecord.Format("MRN20250601", seq)
		assert.True(t, errors.Is(err, ErrRangeExceeded), "seq %d: %v", seq, err)
	}
}

func TestScheme_ParseRoundTrip(t *testing.T) {
	dates := []time.Time{
		date(2025, time.June, 1),
		date(2024, time.February, 29),
		date(1999, time.December, 31),
	}
	for _, s := range []Scheme{MedicalRecord, QueueNumber} {
		for _, d := range dates {
			for _, seq := range []int{1, 2, 10, 99, 100, 500, MaxSequence} {
				prefix := s.Prefix(d)
				id, err := s.Format(prefix, seq)
				require.NoError(t, err)

				parsed, err := s.Parse(id)
				require.NoError(t, err, id)
				assert.Equal(t, s.Kind, parsed.Kind)
				assert.Equal(t, prefix, parsed.Prefix)
				assert.Equal(t, seq, parsed.Sequence)
				assert.Equal(t, d.Format("2006-01-02"), parsed.Date.Format("2006-01-02"))
				assert.Equal(t, id, parsed.String())
			}
		}
	}
}

func TestScheme_ParseMalformed(t *testing.T) {
	cases := []struct {
		scheme Scheme
		id     string
	}{
		{MedicalRecord, ""},
		{MedicalRecord, "MRN2025060100"},
		{MedicalRecord, "MRN202506010001"},
		{MedicalRecord, "XYZ20250601001"},
		{MedicalRecord, "MRN20251301001"},
		{MedicalRecord, "MRN20250601000"},
		{MedicalRecord, "MRN2025060100a"},
		{MedicalRecord, "MRN20250601-01"},
		{QueueNumber, "250601001"},
		{QueueNumber, "250601_001"},
		{QueueNumber, "251301-001"},
		{QueueNumber, "250601-+01"},
		{QueueNumber, "MRN20250601001"},
	}
	for _, tc := range cases {
		_, err := tc.scheme.Parse(tc.id)
		assert.True(t, errors.Is(err, ErrMalformedIdentifier), "%s %q: %v", tc.scheme.Kind, tc.id, err)
	}
}

func TestSchemeFor(t *testing.T) {
	s, err := SchemeFor(KindMedicalRecord)
	assert.NoError(t, err)
	assert.Equal(t, "patients", s.Table)

	s, err = SchemeFor(KindQueueNumber)
	assert.NoError(t, err)
	assert.Equal(t, "visits", s.Table)

	_, err = SchemeFor("invoice")
	assert.True(t, errors.Is(err, ErrUnknownScheme))
}

func TestUnavailable(t *testing.T) {
	assert.Nil(t, Unavailable("op", nil))

	err := Unavailable("op", errors.New("connection refused"))
	assert.True(t, errors.Is(err, ErrPersistenceUnavailable))
	assert.Contains(t, err.Error(), "connection refused")

	// already classified errors pass through untouched
	assert.Equal(t, err, Unavailable("outer", err))
	ranged := rangeExceeded(QueueNumber, "250601-")
	assert.Equal(t, ranged, Unavailable("outer", ranged))
	assert.False(t, errors.Is(Unavailable("outer", ranged), ErrPersistenceUnavailable))
}
