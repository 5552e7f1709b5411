package registry

import (
	"context"
	"errors"
	"time"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/util"
	"gorm.io/gorm"
)

// OpenVisitRequest identifies the patient by PatientID or MedicalRecordNumber.
// A zero VisitDate means today.
type OpenVisitRequest struct {
	PatientID           uint      `json:"patient_id"`
	MedicalRecordNumber string    `json:"medical_record_number" validate:"required_without=PatientID"`
	VisitDate           time.Time `json:"visit_date"`
	Department          string    `json:"department" validate:"required,max=64"`
	RoomID              *uint     `json:"room_id"`
	Complaint           string    `json:"complaint"`
}

// OpenVisit creates a waiting visit numbered with the next queue number of its day.
func (r *Registry) OpenVisit(ctx context.Context, req OpenVisitRequest) (model.Visit, error) {
	if err := r.validate.Struct(req); err != nil {
		return model.Visit{}, validationError(err)
	}

	patientID, err := r.resolvePatient(ctx, req)
	if err != nil {
		return model.Visit{}, err
	}

	day := r.gen.Day(req.VisitDate)
	visit := model.Visit{
		PatientID:  patientID,
		VisitDate:  day,
		Department: req.Department,
		RoomID:     req.RoomID,
		Complaint:  req.Complaint,
		Status:     model.VisitWaiting,
	}

	queue, err := r.gen.Assign(ctx, identifier.QueueNumber, day, func(tx *gorm.DB, queue string) error {
		visit.QueueNumber = queue
		if err := tx.Create(&visit).Error; err != nil {
			return identifier.Unavailable("create visit", err)
		}
		return nil
	})
	if err != nil {
		r.reportRangeExceeded(identifier.KindQueueNumber, r.gen.Prefix(identifier.QueueNumber, day), err)
		return model.Visit{}, err
	}

	util.LogIdentifierAssigned(string(identifier.KindQueueNumber), queue, r.runID, visit.ID)
	r.log.Info().Str("queue_number", queue).Uint("patient_id", patientID).Msg("visit opened")
	return visit, nil
}

func (r *Registry) resolvePatient(ctx context.Context, req OpenVisitRequest) (uint, error) {
	db := r.db.WithContext(ctx)

	if req.MedicalRecordNumber != "" {
		id, err := r.patients.LookupPatientID(db, req.MedicalRecordNumber)
		if err != nil {
			return 0, identifier.Unavailable("find patient", err)
		}
		if id == 0 {
			return 0, ErrPatientNotFound
		}
		return id, nil
	}

	var patient model.Patient
	err := db.Select("id").First(&patient, req.PatientID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return 0, ErrPatientNotFound
	}
	if err != nil {
		return 0, identifier.Unavailable("find patient", err)
	}
	return patient.ID, nil
}

// VisitsOn lists the visits of date's calendar day in queue order.
func (r *Registry) VisitsOn(ctx context.Context, date time.Time) ([]model.Visit, error) {
	prefix := r.gen.Prefix(identifier.QueueNumber, date)

	var visits []model.Visit
	err := r.db.WithContext(ctx).
		Where("queue_number LIKE ?", identifier.SequencePattern(prefix)).
		Order("queue_number ASC").
		Find(&visits).Error
	if err != nil {
		return nil, identifier.Unavailable("list visits", err)
	}
	return visits, nil
}
