package model

import (
	"time"

	"gorm.io/gorm"
)

// Visit statuses
const (
	VisitWaiting    = "waiting"
	VisitInProgress = "in_progress"
	VisitDone       = "done"
	VisitCancelled  = "cancelled"
)

// Visit is a single outpatient visit. QueueNumber is scoped to VisitDate.
type Visit struct {
	gorm.Model
	QueueNumber string    `json:"queue_number" gorm:"uniqueIndex;size:16;not null" example:"250601-001"`
	PatientID   uint      `json:"patient_id" gorm:"not null;index"`
	Patient     *Patient  `json:"patient,omitempty"`
	VisitDate   time.Time `json:"visit_date" gorm:"not null;index"`
	Department  string    `json:"department" gorm:"size:64" example:"General Practice"`
	RoomID      *uint     `json:"room_id"`
	Room        *Room     `json:"room,omitempty"`
	Complaint   string    `json:"complaint" example:"Fever for two days"`
	Status      string    `json:"status" gorm:"size:16;not null;default:waiting"`
}
