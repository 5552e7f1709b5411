package registry

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/util"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var june1 = time.Date(2025, time.June, 1, 9, 0, 0, 0, time.UTC)

func setupRegistry(t *testing.T) (*Registry, *gorm.DB) {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_registry_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(model.AllModels()...))

	gen := identifier.NewGenerator(db,
		identifier.WithClock(func() time.Time { return june1 }),
		identifier.WithLocation(time.UTC),
	)
	return New(db, gen, WithPatientCache(util.NewPatientIDCache(10))), db
}

func johnDoe() RegisterPatientRequest {
	return RegisterPatientRequest{
		FullName:     "  John   Doe ",
		Gender:       "Male",
		BloodType:    "O+",
		PhoneNumbers: []string{"081200000", " 081200000 ", ""},
		Address:      "Test St",
	}
}

func TestRegisterPatient_AssignsSequentialMRN(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	p1, err := r.RegisterPatient(ctx, johnDoe())
	require.NoError(t, err)
	assert.Equal(t, "MRN20250601001", p1.MedicalRecordNumber)
	assert.Equal(t, "John Doe", p1.FullName)
	assert.Equal(t, "081200000", p1.PhoneNumber)
	assert.NotZero(t, p1.ID)

	p2, err := r.RegisterPatient(ctx, RegisterPatientRequest{FullName: "Jane Roe", PhoneNumbers: []string{"0813"}})
	require.NoError(t, err)
	assert.Equal(t, "MRN20250601002", p2.MedicalRecordNumber)

	var stored model.Patient
	require.NoError(t, db.Where("medical_record_number = ?", "MRN20250601002").First(&stored).Error)
	assert.Equal(t, "Jane Roe", stored.FullName)

	id, ok := r.patients.Get(p1.MedicalRecordNumber)
	assert.True(t, ok)
	assert.Equal(t, p1.ID, id)
}

func TestRegisterPatient_Validation(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	cases := []struct {
		name string
		req  RegisterPatientRequest
		msg  string
	}{
		{"missing name", RegisterPatientRequest{FullName: "   ", PhoneNumbers: []string{"0812"}}, "full_name is required"},
		{"blank phones", RegisterPatientRequest{FullName: "A", PhoneNumbers: []string{" ", ""}}, "phone_number must have at least 1 entries"},
		{"bad gender", RegisterPatientRequest{FullName: "A", Gender: "X", PhoneNumbers: []string{"0812"}}, "gender must be one of"},
		{"bad national id", RegisterPatientRequest{FullName: "A", NationalID: "12ab", PhoneNumbers: []string{"0812"}}, "national_id must be numeric"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := r.RegisterPatient(ctx, tc.req)
			assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
			assert.Contains(t, err.Error(), tc.msg)
		})
	}

	count, err := r.CountPatients(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)
}

func TestRegisterPatient_DuplicateDoesNotConsumeSequence(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterPatient(ctx, johnDoe())
	require.NoError(t, err)

	_, err = r.RegisterPatient(ctx, johnDoe())
	assert.True(t, errors.Is(err, ErrDuplicatePatient), "got %v", err)

	p, err := r.RegisterPatient(ctx, RegisterPatientRequest{FullName: "John Doe", PhoneNumbers: []string{"0899"}})
	require.NoError(t, err)
	assert.Equal(t, "MRN20250601002", p.MedicalRecordNumber)
}

func TestRegisterPatient_DuplicateNationalID(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	_, err := r.RegisterPatient(ctx, RegisterPatientRequest{FullName: "A One", NationalID: "3174", PhoneNumbers: []string{"1"}})
	require.NoError(t, err)

	_, err = r.RegisterPatient(ctx, RegisterPatientRequest{FullName: "B Two", NationalID: "3174", PhoneNumbers: []string{"2"}})
	assert.True(t, errors.Is(err, ErrDuplicatePatient), "got %v", err)
}

func TestOpenVisit_QueueNumbersPerDay(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	p, err := r.RegisterPatient(ctx, johnDoe())
	require.NoError(t, err)

	v1, err := r.OpenVisit(ctx, OpenVisitRequest{MedicalRecordNumber: p.MedicalRecordNumber, Department: "General Practice"})
	require.NoError(t, err)
	assert.Equal(t, "250601-001", v1.QueueNumber)
	assert.Equal(t, model.VisitWaiting, v1.Status)
	assert.Equal(t, time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC), v1.VisitDate)

	v2, err := r.OpenVisit(ctx, OpenVisitRequest{PatientID: p.ID, Department: "Dental"})
	require.NoError(t, err)
	assert.Equal(t, "250601-002", v2.QueueNumber)

	june2 := time.Date(2025, time.June, 2, 15, 0, 0, 0, time.UTC)
	v3, err := r.OpenVisit(ctx, OpenVisitRequest{PatientID: p.ID, Department: "Dental", VisitDate: june2})
	require.NoError(t, err)
	assert.Equal(t, "250602-001", v3.QueueNumber)

	visits, err := r.VisitsOn(ctx, june1)
	require.NoError(t, err)
	require.Len(t, visits, 2)
	assert.Equal(t, "250601-001", visits[0].QueueNumber)
	assert.Equal(t, "250601-002", visits[1].QueueNumber)
}

func TestOpenVisit_UnknownPatient(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	_, err := r.OpenVisit(ctx, OpenVisitRequest{MedicalRecordNumber: "MRN20250601042", Department: "ER"})
	assert.True(t, errors.Is(err, ErrPatientNotFound), "got %v", err)

	_, err = r.OpenVisit(ctx, OpenVisitRequest{PatientID: 404, Department: "ER"})
	assert.True(t, errors.Is(err, ErrPatientNotFound), "got %v", err)

	_, err = r.OpenVisit(ctx, OpenVisitRequest{Department: "ER"})
	assert.True(t, errors.Is(err, ErrInvalidRequest), "got %v", err)
	assert.Contains(t, err.Error(), "medical_record_number is required")
}

func TestPatientByMRN(t *testing.T) {
	r, _ := setupRegistry(t)
	ctx := context.Background()

	p, err := r.RegisterPatient(ctx, johnDoe())
	require.NoError(t, err)

	found, err := r.PatientByMRN(ctx, p.MedicalRecordNumber)
	require.NoError(t, err)
	assert.Equal(t, p.ID, found.ID)

	_, err = r.PatientByMRN(ctx, "MRN20990101001")
	assert.True(t, errors.Is(err, ErrPatientNotFound))

	_, err = r.PatientByMRN(ctx, "not-an-mrn")
	assert.True(t, errors.Is(err, identifier.ErrMalformedIdentifier))
}

func TestRegistry_StoreUnavailable(t *testing.T) {
	r, db := setupRegistry(t)
	ctx := context.Background()

	sqlDB, err := db.DB()
	require.NoError(t, err)
	require.NoError(t, sqlDB.Close())

	_, err = r.RegisterPatient(ctx, johnDoe())
	assert.True(t, errors.Is(err, identifier.ErrPersistenceUnavailable), "got %v", err)

	_, err = r.CountPatients(ctx)
	assert.True(t, errors.Is(err, identifier.ErrPersistenceUnavailable), "got %v", err)
}
