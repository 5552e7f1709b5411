package model

import "gorm.io/gorm"

type Room struct {
	gorm.Model
	Code     string `json:"code" gorm:"uniqueIndex;size:16;not null" example:"OPD-01"`
	Name     string `json:"name" gorm:"size:100" example:"Outpatient 1"`
	Type     string `json:"type" gorm:"size:32" example:"outpatient"`
	Floor    int    `json:"floor"`
	Capacity int    `json:"capacity"`
}
