package seed

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/registry"
	"github.com/ariebrainware/hospital-core/util"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Kinds in the order Run seeds them.
const (
	KindRoles     = "roles"
	KindUsers     = "users"
	KindRooms     = "rooms"
	KindMedicines = "medicines"
	KindBatches   = "batches"
	KindPatients  = "patients"
	KindVisits    = "visits"
	KindBillings  = "billings"
)

// Kinds lists every kind a Report counts.
var Kinds = []string{KindRoles, KindUsers, KindRooms, KindMedicines, KindBatches, KindPatients, KindVisits, KindBillings}

// Report counts what a run created and what it found already present.
type Report struct {
	RunID    string
	Created  map[string]int
	Existing map[string]int
}

func newReport(runID string) *Report {
	return &Report{RunID: runID, Created: map[string]int{}, Existing: map[string]int{}}
}

func (r *Report) add(kind string, o Outcome) {
	if o == Created {
		r.Created[kind]++
		return
	}
	r.Existing[kind]++
}

// TotalCreated sums the created counts of every kind.
func (r *Report) TotalCreated() int {
	total := 0
	for _, n := range r.Created {
		total += n
	}
	return total
}

// Option configures Run.
type Option func(*seeder)

// WithPassword overrides DefaultPassword for seeded users.
func WithPassword(password string) Option {
	return func(s *seeder) { s.password = password }
}

func WithLogger(l zerolog.Logger) Option {
	return func(s *seeder) { s.log = l }
}

type seeder struct {
	db       *gorm.DB
	reg      *registry.Registry
	password string
	log      zerolog.Logger
	report   *Report

	roleIDs     map[string]uint
	roomIDs     map[string]uint
	medicineIDs map[string]model.Medicine
	patientIDs  []uint
	visits      []model.Visit
}

// Run seeds roles, users, rooms, medicines with their batches, patients,
// today's visits and their bills. Patients and visits go through reg so they
// receive fresh identifiers; records that already exist are left untouched.
// The first error aborts the run.
func Run(ctx context.Context, db *gorm.DB, reg *registry.Registry, opts ...Option) (*Report, error) {
	runID := reg.RunID()
	if runID == "" {
		runID = uuid.NewString()
	}
	s := &seeder{
		db:          db,
		reg:         reg,
		password:    DefaultPassword,
		log:         zerolog.Nop(),
		report:      newReport(runID),
		roleIDs:     map[string]uint{},
		roomIDs:     map[string]uint{},
		medicineIDs: map[string]model.Medicine{},
	}
	for _, opt := range opts {
		opt(s)
	}

	steps := []struct {
		kind string
		fn   func(context.Context) error
	}{
		{KindRoles, s.roles},
		{KindUsers, s.users},
		{KindRooms, s.rooms},
		{KindMedicines, s.medicines},
		{KindPatients, s.patients},
		{KindVisits, s.visitsToday},
		{KindBillings, s.billings},
	}
	for _, step := range steps {
		if err := step.fn(ctx); err != nil {
			return s.report, err
		}
		s.log.Debug().Str("kind", step.kind).Int("created", s.report.Created[step.kind]).Msg("seeded")
	}

	s.log.Info().
		Str("run_id", runID).
		Int("created", s.report.TotalCreated()).
		Msg("seed completed")
	return s.report, nil
}

// record tallies one outcome and writes its audit event.
func (s *seeder) record(kind, subject string, o Outcome) {
	s.report.add(kind, o)
	event := util.EventSeedExisting
	if o == Created {
		event = util.EventSeedCreated
	}
	util.LogAuditEvent(util.AuditEvent{
		EventType: event,
		Subject:   subject,
		RunID:     s.report.RunID,
		Message:   kind + " " + o.String(),
	})
}

func (s *seeder) fail(kind, subject string, err error) error {
	util.LogAuditEvent(util.AuditEvent{
		EventType: util.EventSeedFailed,
		Subject:   subject,
		RunID:     s.report.RunID,
		Message:   err.Error(),
		Details:   map[string]interface{}{"kind": kind},
	})
	return fmt.Errorf("seed %s %s: %w", kind, subject, err)
}

func (s *seeder) roles(ctx context.Context) error {
	for _, name := range roleNames {
		res, err := GetOrCreate(ctx, s.db, Where("name = ?", name), Insert(s.db, model.Role{Name: name}))
		if err != nil {
			return s.fail(KindRoles, name, err)
		}
		s.roleIDs[name] = res.Record.ID
		s.record(KindRoles, "role:"+name, res.Outcome)
	}
	return nil
}

func (s *seeder) users(ctx context.Context) error {
	for _, u := range users {
		create := func(ctx context.Context) (model.User, error) {
			hash, err := util.HashPassword(s.password)
			if err != nil {
				return model.User{}, err
			}
			return Insert(s.db, model.User{
				Name:     u.Name,
				Email:    u.Email,
				Password: hash,
				RoleID:   s.roleIDs[u.Role],
			})(ctx)
		}
		res, err := GetOrCreate(ctx, s.db, Where("email = ?", u.Email), create)
		if err != nil {
			return s.fail(KindUsers, u.Email, err)
		}
		s.record(KindUsers, "user:"+u.Email, res.Outcome)
	}
	return nil
}

func (s *seeder) rooms(ctx context.Context) error {
	for _, room := range rooms {
		res, err := GetOrCreate(ctx, s.db, Where("code = ?", room.Code), Insert(s.db, room))
		if err != nil {
			return s.fail(KindRooms, room.Code, err)
		}
		s.roomIDs[room.Code] = res.Record.ID
		s.record(KindRooms, "room:"+room.Code, res.Outcome)
	}
	return nil
}

func (s *seeder) medicines(ctx context.Context) error {
	today := s.reg.Generator().Day(time.Time{})

	for _, m := range medicines {
		med := m.Medicine
		attrs, err := json.Marshal(m.Attributes)
		if err != nil {
			return s.fail(KindMedicines, med.Code, err)
		}
		med.Attributes = datatypes.JSON(attrs)

		res, err := GetOrCreate(ctx, s.db, Where("code = ?", med.Code), Insert(s.db, med))
		if err != nil {
			return s.fail(KindMedicines, med.Code, err)
		}
		s.medicineIDs[med.Code] = res.Record
		s.record(KindMedicines, "medicine:"+med.Code, res.Outcome)

		for _, b := range m.Batches {
			batch := model.MedicineBatch{
				MedicineID:  res.Record.ID,
				BatchNumber: b.BatchNumber,
				ExpiresAt:   today.AddDate(0, b.ExpiresInMonths, 0),
				Quantity:    b.Quantity,
			}
			bres, err := GetOrCreate(ctx, s.db, Where("batch_number = ?", b.BatchNumber), Insert(s.db, batch))
			if err != nil {
				return s.fail(KindBatches, b.BatchNumber, err)
			}
			s.record(KindBatches, "batch:"+b.BatchNumber, bres.Outcome)
		}
	}
	return nil
}

func (s *seeder) patients(ctx context.Context) error {
	for _, p := range patients {
		req := p.Request
		create := func(ctx context.Context) (model.Patient, error) {
			return s.reg.RegisterPatient(ctx, req)
		}
		res, err := GetOrCreate(ctx, s.db, Where("national_id = ?", req.NationalID), create)
		if err != nil {
			return s.fail(KindPatients, req.NationalID, err)
		}
		s.patientIDs = append(s.patientIDs, res.Record.ID)
		s.record(KindPatients, "patient:"+res.Record.MedicalRecordNumber, res.Outcome)
	}
	return nil
}

// visitsToday opens one visit per seeded patient unless the patient already
// has a visit today.
func (s *seeder) visitsToday(ctx context.Context) error {
	gen := s.reg.Generator()
	day := gen.Day(time.Time{})
	prefix := gen.Prefix(identifier.QueueNumber, day)

	for i, p := range patients {
		patientID := s.patientIDs[i]
		var roomID *uint
		if id, ok := s.roomIDs[p.Visit.RoomCode]; ok {
			roomID = &id
		}
		req := registry.OpenVisitRequest{
			PatientID:  patientID,
			VisitDate:  day,
			Department: p.Visit.Department,
			RoomID:     roomID,
			Complaint:  p.Visit.Complaint,
		}
		create := func(ctx context.Context) (model.Visit, error) {
			return s.reg.OpenVisit(ctx, req)
		}
		scope := Where("patient_id = ? AND queue_number LIKE ?", patientID, identifier.SequencePattern(prefix))
		res, err := GetOrCreate(ctx, s.db, scope, create)
		if err != nil {
			return s.fail(KindVisits, p.Request.NationalID, err)
		}
		s.visits = append(s.visits, res.Record)
		s.record(KindVisits, "visit:"+res.Record.QueueNumber, res.Outcome)
	}
	return nil
}

// billings raises an unpaid bill for each of today's seeded visits: the
// consultation fee plus ten units of the visit's medicine.
func (s *seeder) billings(ctx context.Context) error {
	for i, visit := range s.visits {
		items := []model.BillingItem{{Description: "Consultation", Quantity: 1, UnitPrice: ConsultationFee}}
		if med, ok := s.medicineIDs[patients[i].Visit.Medicine]; ok {
			medID := med.ID
			items = append(items, model.BillingItem{
				Description: med.Name + " " + med.Strength,
				MedicineID:  &medID,
				Quantity:    10,
				UnitPrice:   med.Price,
			})
		}
		var total int64
		for _, item := range items {
			total += item.Subtotal()
		}

		billing := model.Billing{
			Reference: uuid.NewString(),
			VisitID:   visit.ID,
			Status:    model.BillingUnpaid,
			Total:     total,
			Items:     items,
		}
		res, err := GetOrCreate(ctx, s.db, Where("visit_id = ?", visit.ID), Insert(s.db, billing))
		if err != nil {
			return s.fail(KindBillings, visit.QueueNumber, err)
		}
		s.record(KindBillings, "billing:"+res.Record.Reference, res.Outcome)
	}
	return nil
}
