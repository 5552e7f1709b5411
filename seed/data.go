package seed

import (
	"github.com/ariebrainware/hospital-core/model"
	"github.com/ariebrainware/hospital-core/registry"
)

// DefaultPassword is given to every seeded user account.
const DefaultPassword = "ChangeMe!2025"

// ConsultationFee is billed on every seeded visit, in the smallest currency unit.
const ConsultationFee int64 = 150000

var roleNames = []string{
	model.RoleAdmin,
	model.RoleDoctor,
	model.RoleNurse,
	model.RolePharmacist,
	model.RoleCashier,
}

type userSeed struct {
	Name  string
	Email string
	Role  string
}

var users = []userSeed{
	{"System Administrator", "admin@hospital.local", model.RoleAdmin},
	{"dr. Sarah Putri", "sarah.putri@hospital.local", model.RoleDoctor},
	{"dr. Rizky Pratama", "rizky.pratama@hospital.local", model.RoleDoctor},
	{"Budi Santoso", "budi.santoso@hospital.local", model.RoleNurse},
	{"Rina Wulandari", "rina.wulandari@hospital.local", model.RolePharmacist},
	{"Andi Saputra", "andi.saputra@hospital.local", model.RoleCashier},
}

var rooms = []model.Room{
	{Code: "OPD-01", Name: "General Practice 1", Type: "outpatient", Floor: 1, Capacity: 1},
	{Code: "OPD-02", Name: "Dental Clinic", Type: "outpatient", Floor: 1, Capacity: 1},
	{Code: "ER-01", Name: "Emergency Room", Type: "emergency", Floor: 1, Capacity: 6},
	{Code: "WARD-A1", Name: "Ward A1", Type: "inpatient", Floor: 2, Capacity: 4},
}

type batchSeed struct {
	BatchNumber string
	// ExpiresInMonths is counted from the day of the run.
	ExpiresInMonths int
	Quantity        int
}

type medicineSeed struct {
	Medicine   model.Medicine
	Attributes map[string]interface{}
	Batches    []batchSeed
}

var medicines = []medicineSeed{
	{
		Medicine:   model.Medicine{Code: "PCT500", Name: "Paracetamol", Form: "tablet", Strength: "500 mg", Unit: "tablet", Price: 1500},
		Attributes: map[string]interface{}{"category": "analgesic", "prescription": false},
		Batches:    []batchSeed{{"PCT-2406-A", 24, 500}, {"PCT-2409-B", 30, 300}},
	},
	{
		Medicine:   model.Medicine{Code: "AMX500", Name: "Amoxicillin", Form: "capsule", Strength: "500 mg", Unit: "capsule", Price: 3000},
		Attributes: map[string]interface{}{"category": "antibiotic", "prescription": true},
		Batches:    []batchSeed{{"AMX-2405-A", 18, 200}},
	},
	{
		Medicine:   model.Medicine{Code: "OMZ20", Name: "Omeprazole", Form: "capsule", Strength: "20 mg", Unit: "capsule", Price: 2500},
		Attributes: map[string]interface{}{"category": "proton pump inhibitor", "prescription": true},
		Batches:    []batchSeed{{"OMZ-2407-A", 24, 150}},
	},
}

type visitSeed struct {
	Department string
	RoomCode   string
	Complaint  string
	// Medicine is dispensed on the visit's bill, ten units.
	Medicine string
}

type patientSeed struct {
	Request registry.RegisterPatientRequest
	Visit   visitSeed
}

var patients = []patientSeed{
	{
		Request: registry.RegisterPatientRequest{
			FullName:     "John Doe",
			NationalID:   "3174091201900001",
			Gender:       "Male",
			BloodType:    "O+",
			PhoneNumbers: []string{"081234567890"},
			Address:      "Jl. Merdeka No. 1, Jakarta",
		},
		Visit: visitSeed{"General Practice", "OPD-01", "Fever for two days", "PCT500"},
	},
	{
		Request: registry.RegisterPatientRequest{
			FullName:     "Jane Smith",
			NationalID:   "3174094505850002",
			Gender:       "Female",
			BloodType:    "A+",
			PhoneNumbers: []string{"081298765432"},
			Address:      "Jl. Sudirman No. 10, Jakarta",
		},
		Visit: visitSeed{"Dental", "OPD-02", "Toothache", "AMX500"},
	},
	{
		Request: registry.RegisterPatientRequest{
			FullName:     "Ahmad Wijaya",
			NationalID:   "3273011507780003",
			Gender:       "Male",
			BloodType:    "B-",
			PhoneNumbers: []string{"082112223333", "0215550101"},
			Address:      "Jl. Asia Afrika No. 8, Bandung",
		},
		Visit: visitSeed{"General Practice", "OPD-01", "Epigastric pain", "OMZ20"},
	},
}
