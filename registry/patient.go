package registry

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/util"
	"gorm.io/gorm"
)

// RegisterPatientRequest carries the details of a new patient.
type RegisterPatientRequest struct {
	FullName     string     `json:"full_name" validate:"required,max=191"`
	NationalID   string     `json:"national_id" validate:"omitempty,numeric,max=32"`
	Gender       string     `json:"gender" validate:"omitempty,oneof=Male Female"`
	DateOfBirth  *time.Time `json:"date_of_birth"`
	BloodType    string     `json:"blood_type" validate:"omitempty,oneof=A+ A- B+ B- AB+ AB- O+ O-"`
	PhoneNumbers []string   `json:"phone_number" validate:"required,min=1,dive,max=32"`
	Address      string     `json:"address"`
}

// RegisterPatient creates a patient and assigns today's next medical record number.
func (r *Registry) RegisterPatient(ctx context.Context, req RegisterPatientRequest) (model.Patient, error) {
	// Normalize before validating so whitespace-only input cannot slip through
	req.FullName = util.NormalizeName(req.FullName)
	req.NationalID = strings.TrimSpace(req.NationalID)
	req.PhoneNumbers = util.NormalizePhoneNumbers(req.PhoneNumbers)
	if err := r.validate.Struct(req); err != nil {
		return model.Patient{}, validationError(err)
	}

	patient := model.Patient{
		FullName:    req.FullName,
		NationalID:  req.NationalID,
		Gender:      req.Gender,
		DateOfBirth: req.DateOfBirth,
		BloodType:   req.BloodType,
		PhoneNumber: strings.Join(req.PhoneNumbers, ","),
		Address:     req.Address,
	}

	mrn, err := r.gen.Assign(ctx, identifier.MedicalRecord, time.Time{}, func(tx *gorm.DB, mrn string) error {
		duplicate, err := hasDuplicatePatient(tx, req.FullName, req.NationalID, req.PhoneNumbers)
		if err != nil {
			return identifier.Unavailable("check existing patient", err)
		}
		if duplicate {
			return ErrDuplicatePatient
		}

		patient.MedicalRecordNumber = mrn
		if err := tx.Create(&patient).Error; err != nil {
			return identifier.Unavailable("create patient", err)
		}
		return nil
	})
	if err != nil {
		r.reportRangeExceeded(identifier.KindMedicalRecord, r.gen.Prefix(identifier.MedicalRecord, time.Time{}), err)
		return model.Patient{}, err
	}

	r.patients.Set(mrn, patient.ID)
	util.LogIdentifierAssigned(string(identifier.KindMedicalRecord), mrn, r.runID, patient.ID)
	r.log.Info().Str("mrn", mrn).Uint("patient_id", patient.ID).Msg("patient registered")
	return patient, nil
}

// hasDuplicatePatient reports whether a live patient shares the national ID,
// or the full name and at least one phone number.
func hasDuplicatePatient(db *gorm.DB, fullName, nationalID string, phoneNumbers []string) (bool, error) {
	if nationalID != "" {
		var count int64
		if err := db.Model(&model.Patient{}).Where("national_id = ?", nationalID).Count(&count).Error; err != nil {
			return false, err
		}
		if count > 0 {
			return true, nil
		}
	}

	if len(phoneNumbers) == 0 {
		return false, nil
	}
	phoneSet := make(map[string]struct{}, len(phoneNumbers))
	for _, p := range phoneNumbers {
		phoneSet[p] = struct{}{}
	}

	var matches []model.Patient
	if err := db.Where("full_name = ?", fullName).Find(&matches).Error; err != nil {
		return false, err
	}

	for _, m := range matches {
		for _, sp := range strings.Split(m.PhoneNumber, ",") {
			if _, ok := phoneSet[strings.TrimSpace(sp)]; ok {
				return true, nil
			}
		}
	}

	return false, nil
}

// PatientByMRN loads a live patient by medical record number.
func (r *Registry) PatientByMRN(ctx context.Context, mrn string) (model.Patient, error) {
	if _, err := identifier.MedicalRecord.Parse(mrn); err != nil {
		return model.Patient{}, err
	}

	var patient model.Patient
	err := r.db.WithContext(ctx).Where("medical_record_number = ?", mrn).First(&patient).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return model.Patient{}, ErrPatientNotFound
	}
	if err != nil {
		return model.Patient{}, identifier.Unavailable("find patient", err)
	}
	return patient, nil
}

// CountPatients counts live patients.
func (r *Registry) CountPatients(ctx context.Context) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Patient{}).Count(&count).Error; err != nil {
		return 0, identifier.Unavailable("count patients", err)
	}
	return count, nil
}
