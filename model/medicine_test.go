package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/datatypes"
)

func TestMedicineModel_AttributesAndBatches(t *testing.T) {
	db := setupTestDB(t, "medicine", &Medicine{}, &MedicineBatch{})

	med := Medicine{
		Code:       "PCT500",
		Name:       "Paracetamol",
		Form:       "tablet",
		Strength:   "500 mg",
		Unit:       "tablet",
		Price:      1500,
		Attributes: datatypes.JSON(`{"category":"analgesic","prescription":false}`),
		Batches: []MedicineBatch{
			{BatchNumber: "PCT-2406-A", ExpiresAt: time.Date(2027, time.June, 1, 0, 0, 0, 0, time.UTC), Quantity: 500},
			{BatchNumber: "PCT-2409-B", ExpiresAt: time.Date(2027, time.December, 1, 0, 0, 0, 0, time.UTC), Quantity: 300},
		},
	}
	require.NoError(t, db.Create(&med).Error)

	var found Medicine
	require.NoError(t, db.Preload("Batches").First(&found, med.ID).Error)
	assert.Len(t, found.Batches, 2)

	var attrs map[string]interface{}
	require.NoError(t, json.Unmarshal(found.Attributes, &attrs))
	assert.Equal(t, "analgesic", attrs["category"])
	assert.Equal(t, false, attrs["prescription"])

	dup := MedicineBatch{MedicineID: med.ID, BatchNumber: "PCT-2406-A"}
	assert.Error(t, db.Create(&dup).Error)
}

func TestBillingModel_ItemsAndSubtotal(t *testing.T) {
	db := setupTestDB(t, "billing", &Billing{}, &BillingItem{})

	billing := Billing{
		Reference: "9b2f6c1e-7d4a-4b8e-a1c3-2f5e6d7c8b9a",
		VisitID:   1,
		Items: []BillingItem{
			{Description: "Consultation", Quantity: 1, UnitPrice: 150000},
			{Description: "Paracetamol 500 mg", Quantity: 10, UnitPrice: 1500},
		},
	}
	require.NoError(t, db.Create(&billing).Error)

	var found Billing
	require.NoError(t, db.Preload("Items").First(&found, billing.ID).Error)
	assert.Equal(t, BillingUnpaid, found.Status)
	require.Len(t, found.Items, 2)

	var total int64
	for _, item := range found.Items {
		total += item.Subtotal()
	}
	assert.Equal(t, int64(165000), total)
	assert.Equal(t, int64(15000), BillingItem{Quantity: 10, UnitPrice: 1500}.Subtotal())
}
