package model

import (
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// AuditLog represents a persisted audit event
type AuditLog struct {
	gorm.Model
	EventType string `json:"event_type" gorm:"column:event_type;type:varchar(64);index"`
	// Subject is the identifier or record key the event is about, e.g. an MRN.
	Subject string         `json:"subject" gorm:"column:subject;type:varchar(191);index"`
	RunID   string         `json:"run_id" gorm:"column:run_id;type:varchar(36);index"`
	Message string         `json:"message" gorm:"column:message;type:text"`
	Details datatypes.JSON `json:"details" gorm:"column:details;type:json"`
}
