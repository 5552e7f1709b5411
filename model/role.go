package model

import "gorm.io/gorm"

// Role names
const (
	RoleAdmin      = "Admin"
	RoleDoctor     = "Doctor"
	RoleNurse      = "Nurse"
	RolePharmacist = "Pharmacist"
	RoleCashier    = "Cashier"
)

type Role struct {
	gorm.Model
	Name string `gorm:"type:varchar(100);uniqueIndex;not null" json:"name"`
}

type User struct {
	gorm.Model
	Name     string `json:"name" gorm:"size:191;not null"`
	Email    string `json:"email" gorm:"uniqueIndex;size:191;not null"`
	Password string `json:"-" gorm:"size:255;not null"`
	RoleID   uint   `json:"role_id" gorm:"not null;index"`
	Role     *Role  `json:"role,omitempty"`
}
