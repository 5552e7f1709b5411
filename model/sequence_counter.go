package model

import "time"

// SequenceCounter holds the last sequence issued for one identifier scope.
// Rows are never soft deleted: a scope's counter must survive as long as the
// identifiers it produced.
type SequenceCounter struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	Kind         string    `json:"kind" gorm:"size:32;not null;index"`
	Scope        string    `json:"scope" gorm:"uniqueIndex;size:64;not null"`
	LastSequence int       `json:"last_sequence" gorm:"not null;default:0"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
