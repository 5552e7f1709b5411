// Package registry registers patients and opens visits, assigning each its
// medical record number or queue number as part of the same insert.
package registry

import (
	"errors"
	"fmt"
	"reflect"
	"strings"

	"github.com/ariebrainware/hospital-core/identifier"
	"github.com/ariebrainware/hospital-core/util"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequest   = errors.New("invalid request")
	ErrDuplicatePatient = errors.New("patient already exists with same name and phone number")
	ErrPatientNotFound  = errors.New("patient not found")
)

// Registry is safe for concurrent use.
type Registry struct {
	db       *gorm.DB
	gen      *identifier.Generator
	validate *validator.Validate
	patients *util.PatientIDCache
	log      zerolog.Logger
	runID    string
}

// Option configures a Registry.
type Option func(*Registry)

// WithPatientCache sets the MRN lookup cache used by OpenVisit.
func WithPatientCache(c *util.PatientIDCache) Option {
	return func(r *Registry) { r.patients = c }
}

func WithLogger(l zerolog.Logger) Option {
	return func(r *Registry) { r.log = l }
}

// WithRunID tags audit events written by this registry, e.g. with a seed run.
func WithRunID(id string) Option {
	return func(r *Registry) { r.runID = id }
}

// New returns a Registry writing through db and numbering with gen.
func New(db *gorm.DB, gen *identifier.Generator, opts ...Option) *Registry {
	r := &Registry{
		db:       db,
		gen:      gen,
		validate: newValidator(),
		patients: util.NewPatientIDCache(0),
		log:      zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RunID is the run tag attached to this registry's audit events.
func (r *Registry) RunID() string {
	return r.runID
}

// Generator exposes the identifier generator the registry numbers with.
func (r *Registry) Generator() *identifier.Generator {
	return r.gen
}

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	return v
}

// validationError turns validator failures into one readable ErrInvalidRequest.
func validationError(err error) error {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("%w: %v", ErrInvalidRequest, err)
	}

	msgs := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		switch fe.Tag() {
		case "required", "required_without":
			msgs = append(msgs, fmt.Sprintf("%s is required", fe.Field()))
		case "oneof":
			msgs = append(msgs, fmt.Sprintf("%s must be one of [%s]", fe.Field(), fe.Param()))
		case "max":
			msgs = append(msgs, fmt.Sprintf("%s must be at most %s characters", fe.Field(), fe.Param()))
		case "min":
			msgs = append(msgs, fmt.Sprintf("%s must have at least %s entries", fe.Field(), fe.Param()))
		case "numeric":
			msgs = append(msgs, fmt.Sprintf("%s must be numeric", fe.Field()))
		default:
			msgs = append(msgs, fmt.Sprintf("%s is invalid (%s)", fe.Field(), fe.Tag()))
		}
	}
	return fmt.Errorf("%w: %s", ErrInvalidRequest, strings.Join(msgs, "; "))
}

func (r *Registry) reportRangeExceeded(kind identifier.Kind, scope string, err error) {
	if errors.Is(err, identifier.ErrRangeExceeded) {
		util.LogIdentifierRangeExceeded(string(kind), scope, err)
	}
}
