package model

import (
	"time"

	"gorm.io/gorm"
)

// Patient is a registered hospital patient.
// MedicalRecordNumber is assigned once at registration and never changes.
type Patient struct {
	gorm.Model
	MedicalRecordNumber string     `json:"medical_record_number" gorm:"uniqueIndex;size:32;not null" example:"MRN20250601001"`
	FullName            string     `json:"full_name" gorm:"size:191;not null;index" example:"John Doe"`
	NationalID          string     `json:"national_id" gorm:"size:32;index" example:"3174091201900001"`
	Gender              string     `json:"gender" gorm:"size:16" example:"Male"`
	DateOfBirth         *time.Time `json:"date_of_birth"`
	BloodType           string     `json:"blood_type" gorm:"size:4" example:"O+"`
	PhoneNumber         string     `json:"phone_number" gorm:"size:64" example:"081234567890"`
	Address             string     `json:"address" example:"123 Main St"`
	Visits              []Visit    `json:"visits,omitempty"`
}
