package util

import (
	"encoding/json"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ariebrainware/hospital-core/model"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditEventType represents different types of audit events
type AuditEventType string

const (
	EventIdentifierAssigned      AuditEventType = "IDENTIFIER_ASSIGNED"
	EventIdentifierRangeExceeded AuditEventType = "IDENTIFIER_RANGE_EXCEEDED"
	EventSeedCreated             AuditEventType = "SEED_CREATED"
	EventSeedExisting            AuditEventType = "SEED_EXISTING"
	EventSeedFailed              AuditEventType = "SEED_FAILED"
	EventDBCheck                 AuditEventType = "DB_CHECK"
)

// AuditEvent represents an audit event to be logged
type AuditEvent struct {
	EventType AuditEventType
	Subject   string
	RunID     string
	Message   string
	Details   map[string]interface{}
}

var (
	auditMu     sync.RWMutex
	auditLogger = log.With().Str("component", "audit").Logger()
	auditDB     *gorm.DB
)

// SetAuditLoggerDB sets a gorm DB instance used to persist audit events.
// Call this during startup after the database is migrated. nil disables persistence.
func SetAuditLoggerDB(db *gorm.DB) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditDB = db
}

// SetAuditLogger replaces the zerolog logger audit events are written to.
func SetAuditLogger(l zerolog.Logger) {
	auditMu.Lock()
	defer auditMu.Unlock()
	auditLogger = l.With().Str("component", "audit").Logger()
}

const maxLogValueRunes = 200

// sanitizeLogValue removes newlines and other characters that could break log parsing
func sanitizeLogValue(value string) string {
	value = strings.ReplaceAll(value, "\n", " ")
	value = strings.ReplaceAll(value, "\r", " ")
	value = strings.ReplaceAll(value, "\t", " ")
	if utf8.RuneCountInString(value) > maxLogValueRunes {
		value = string([]rune(value)[:maxLogValueRunes]) + "..."
	}
	return value
}

// LogAuditEvent writes event to the log and, when a DB is set, to the audit_logs table.
// Persistence is best-effort and never fails the caller.
func LogAuditEvent(event AuditEvent) {
	auditMu.RLock()
	logger, db := auditLogger, auditDB
	auditMu.RUnlock()

	entry := logger.Info()
	if event.EventType == EventIdentifierRangeExceeded || event.EventType == EventSeedFailed {
		entry = logger.Warn()
	}
	entry.
		Str("event", string(event.EventType)).
		Str("subject", sanitizeLogValue(event.Subject)).
		Str("run_id", event.RunID).
		Int("details", len(event.Details)).
		Msg(sanitizeLogValue(event.Message))

	if db == nil {
		return
	}

	var details datatypes.JSON
	if event.Details != nil {
		if b, err := json.Marshal(event.Details); err == nil {
			details = datatypes.JSON(b)
		}
	}

	row := model.AuditLog{
		EventType: string(event.EventType),
		Subject:   sanitizeLogValue(event.Subject),
		RunID:     event.RunID,
		Message:   sanitizeLogValue(event.Message),
		Details:   details,
	}
	if err := db.Create(&row).Error; err != nil {
		logger.Error().Err(err).Msg("failed to persist audit event")
	}
}

// LogIdentifierAssigned records that id was given to an entity of kind.
func LogIdentifierAssigned(kind, id, runID string, entityID uint) {
	LogAuditEvent(AuditEvent{
		EventType: EventIdentifierAssigned,
		Subject:   id,
		RunID:     runID,
		Message:   kind + " assigned",
		Details:   map[string]interface{}{"kind": kind, "entity_id": entityID},
	})
}

// LogIdentifierRangeExceeded records a rejected request on an exhausted scope.
func LogIdentifierRangeExceeded(kind, scope string, err error) {
	LogAuditEvent(AuditEvent{
		EventType: EventIdentifierRangeExceeded,
		Subject:   scope,
		Message:   err.Error(),
		Details:   map[string]interface{}{"kind": kind},
	})
}
