// Package dbcheck verifies that the configured database is reachable and
// describes its tables.
package dbcheck

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/util"
	"gorm.io/gorm"
)

// Exit codes of the check command.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// DefaultTimeout bounds a single Check.
const DefaultTimeout = 5 * time.Second

// PoolStats mirrors the parts of sql.DBStats worth reporting.
type PoolStats struct {
	OpenConnections int `json:"open_connections"`
	InUse           int `json:"in_use"`
	Idle            int `json:"idle"`
	MaxOpen         int `json:"max_open"`
}

// Status is the outcome of a connectivity check.
type Status struct {
	Healthy  bool          `json:"healthy"`
	Dialect  string        `json:"dialect"`
	Patients int64         `json:"patients"`
	Latency  time.Duration `json:"latency"`
	Pool     PoolStats     `json:"pool"`
	Err      error         `json:"-"`
}

// ExitCode maps the status to a process exit code.
func (s Status) ExitCode() int {
	if s.Healthy {
		return ExitOK
	}
	return ExitFailure
}

// Check pings the database and counts patients. Any failure leaves the
// status unhealthy with Err wrapping identifier.ErrPersistenceUnavailable.
func Check(ctx context.Context, db *gorm.DB) Status {
	ctx, cancel := context.WithTimeout(ctx, DefaultTimeout)
	defer cancel()

	status := Status{Dialect: db.Dialector.Name()}
	start := time.Now()

	sqlDB, err := db.DB()
	if err != nil {
		status.Err = identifier.Unavailable("open connection", err)
		return finish(status, start)
	}
	if err := sqlDB.PingContext(ctx); err != nil {
		status.Err = identifier.Unavailable("ping", err)
		return finish(status, start)
	}

	stats := sqlDB.Stats()
	status.Pool = PoolStats{
		OpenConnections: stats.OpenConnections,
		InUse:           stats.InUse,
		Idle:            stats.Idle,
		MaxOpen:         stats.MaxOpenConnections,
	}

	if err := db.WithContext(ctx).Model(&model.Patient{}).Count(&status.Patients).Error; err != nil {
		status.Err = identifier.Unavailable("count patients", err)
		return finish(status, start)
	}

	status.Healthy = true
	return finish(status, start)
}

func finish(s Status, start time.Time) Status {
	s.Latency = time.Since(start)
	details := map[string]interface{}{"dialect": s.Dialect, "patients": s.Patients}
	msg := "database reachable"
	if s.Err != nil {
		msg = s.Err.Error()
	}
	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventDBCheck,
		Subject:   s.Dialect,
		Message:   msg,
		Details:   details,
	})
	return s
}

// Column describes one column of a table.
type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
}

// Columns lists the columns of table in database order.
func Columns(db *gorm.DB, table string) ([]Column, error) {
	m := db.Migrator()
	if !m.HasTable(table) {
		return nil, fmt.Errorf("table %q does not exist", table)
	}

	types, err := m.ColumnTypes(table)
	if err != nil {
		return nil, identifier.Unavailable("describe "+table, err)
	}

	cols := make([]Column, 0, len(types))
	for _, ct := range types {
		col := Column{Name: ct.Name(), Type: ct.DatabaseTypeName()}
		if nullable, ok := ct.Nullable(); ok {
			col.Nullable = nullable
		}
		if pk, ok := ct.PrimaryKey(); ok {
			col.PrimaryKey = pk
		}
		cols = append(cols, col)
	}
	return cols, nil
}

// WriteColumns prints cols as an aligned table.
func WriteColumns(w io.Writer, cols []Column) error {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "COLUMN\tTYPE\tNULL\tKEY")
	for _, c := range cols {
		null := "NO"
		if c.Nullable {
			null = "YES"
		}
		key := ""
		if c.PrimaryKey {
			key = "PRI"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", c.Name, c.Type, null, key)
	}
	return tw.Flush()
}
