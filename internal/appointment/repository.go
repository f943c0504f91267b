package appointment

import (
	"context"
	"errors"
	"time"
)

var (
	ErrAppointmentNotFound = errors.New("appointment not found")
	ErrPetNotFound         = errors.New("invalid petId: pet not found")
	ErrRequiredFields      = errors.New("required fields missing")
	ErrStatusRequired      = errors.New("status is required")
)

// ListFilter narrows List by exact match; zero values mean "no filter".
// Both filters combine with AND.
type ListFilter struct {
	Status string
	PetID  string
}

// Repository contains all store interactions needed by the service.
type Repository interface {
	// Insert persists a new record and assigns its id.
	Insert(ctx context.Context, a Appointment) (*Appointment, error)

	GetByID(ctx context.Context, id string) (*Appointment, error)

	// List returns matching records ordered by creation time, newest first.
	List(ctx context.Context, f ListFilter) ([]Appointment, error)

	// Update merges the patch over the stored record atomically: absent
	// patch fields keep their stored values and concurrent updates to the
	// same row serialize instead of overwriting each other.
	Update(ctx context.Context, id string, p Patch, now time.Time) (*Appointment, error)

	// UpdateStatus replaces only the status field.
	UpdateStatus(ctx context.Context, id, status string, now time.Time) (*Appointment, error)

	Delete(ctx context.Context, id string) error
}

// PetRegistry answers existence lookups against the pet registry, which is
// owned by a separate service. Nothing beyond existence is read here.
type PetRegistry interface {
	Exists(ctx context.Context, petID string) (bool, error)
}
