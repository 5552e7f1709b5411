package model

import (
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Medicine is a formulary entry.
type Medicine struct {
	gorm.Model
	Code     string `json:"code" gorm:"uniqueIndex;size:32;not null" example:"PCT500"`
	Name     string `json:"name" gorm:"size:191;not null" example:"Paracetamol"`
	Form     string `json:"form" gorm:"size:32" example:"tablet"`
	Strength string `json:"strength" gorm:"size:32" example:"500 mg"`
	Unit     string `json:"unit" gorm:"size:16" example:"tablet"`
	// Price is stored in the smallest currency unit.
	Price      int64           `json:"price" example:"1500"`
	Attributes datatypes.JSON  `json:"attributes" gorm:"type:json"`
	Batches    []MedicineBatch `json:"batches,omitempty"`
}

// MedicineBatch tracks stock received under one manufacturer batch number.
type MedicineBatch struct {
	gorm.Model
	MedicineID  uint      `json:"medicine_id" gorm:"not null;index"`
	BatchNumber string    `json:"batch_number" gorm:"uniqueIndex;size:64;not null" example:"PCT-2406-A"`
	ExpiresAt   time.Time `json:"expires_at"`
	Quantity    int       `json:"quantity"`
}
