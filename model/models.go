package model

// AllModels lists every table the application migrates, parents first.
func AllModels() []interface{} {
	return []interface{}{
		&Role{},
		&User{},
		&Room{},
		&Medicine{},
		&MedicineBatch{},
		&Patient{},
		&Visit{},
		&Billing{},
		&BillingItem{},
		&SequenceCounter{},
		&AuditLog{},
	}
}
