package model

import "gorm.io/gorm"

// Billing statuses
const (
	BillingUnpaid = "unpaid"
	BillingPaid   = "paid"
)

// Billing is the invoice raised for one visit.
type Billing struct {
	gorm.Model
	Reference string        `json:"reference" gorm:"uniqueIndex;size:36;not null"`
	VisitID   uint          `json:"visit_id" gorm:"not null;index"`
	Status    string        `json:"status" gorm:"size:16;not null;default:unpaid"`
	Total     int64         `json:"total"`
	Items     []BillingItem `json:"items,omitempty"`
}

type BillingItem struct {
	gorm.Model
	BillingID   uint   `json:"billing_id" gorm:"not null;index"`
	Description string `json:"description" gorm:"size:191"`
	MedicineID  *uint  `json:"medicine_id"`
	Quantity    int    `json:"quantity"`
	UnitPrice   int64  `json:"unit_price"`
}

// Subtotal is Quantity * UnitPrice.
func (i BillingItem) Subtotal() int64 {
	return int64(i.Quantity) * i.UnitPrice
}
