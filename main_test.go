package main

import (
	"bytes"
	"context"
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

func execute(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	t.Setenv("APPENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Cleanup(func() { util.SetAuditLoggerDB(nil) })

	cmd := newRootCmd()
	var out, errOut bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), errOut.String(), err
}

func setupMigratedDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:testdb_main_%d?mode=memory&cache=shared", time.Now().UnixNano())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(model.AllModels()...))
	return db
}

func TestPrintNextID(t *testing.T) {
	db := setupMigratedDB(t)
	ctx := context.Background()
	gen := identifier.NewGenerator(db, identifier.WithLocation(time.UTC))

	require.NoError(t, db.Create(&model.Patient{FullName: "John Doe", MedicalRecordNumber: "MRN20250601004"}).Error)

	var out bytes.Buffer
	require.NoError(t, printNextID(ctx, &out, gen, identifier.MedicalRecord, "2025-06-01", time.UTC))
	assert.Equal(t, "MRN20250601005\n", out.String())

	out.Reset()
	require.NoError(t, printNextID(ctx, &out, gen, identifier.QueueNumber, "2025-06-02", time.UTC))
	assert.Equal(t, "250602-001\n", out.String())

	err := printNextID(ctx, &out, gen, identifier.QueueNumber, "06/02/2025", time.UTC)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")
}

func TestNextID_DoesNotMigrate(t *testing.T) {
	out, _, err := execute(t, "next-id", "mrn", "2025-06-01")
	assert.ErrorIs(t, err, identifier.ErrPersistenceUnavailable)
	assert.Empty(t, out)
}

func TestNextID_InvalidArgs(t *testing.T) {
	_, _, err := execute(t, "next-id", "ticket")
	assert.ErrorIs(t, err, identifier.ErrUnknownScheme)

	_, _, err = execute(t, "next-id", "mrn", "2025-13-01")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid date")

	_, _, err = execute(t, "next-id")
	assert.Error(t, err)
}

func TestSeedCommand(t *testing.T) {
	out, _, err := execute(t, "seed", "--password", "secret")
	require.NoError(t, err)
	assert.Contains(t, out, "seed run ")
	assert.Regexp(t, `patients\s+created=3 existing=0`, out)
	assert.Regexp(t, `billings\s+created=3 existing=0`, out)
}

func TestCheckCommand_FailsWithoutSchema(t *testing.T) {
	_, stderr, err := execute(t, "check")
	assert.ErrorIs(t, err, errCheckFailed)
	assert.Contains(t, stderr, "error: ")
	assert.Contains(t, stderr, "count patients")
}

func TestColumnsCommand_UnknownTable(t *testing.T) {
	_, _, err := execute(t, "columns", "patients")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "does not exist")
}
