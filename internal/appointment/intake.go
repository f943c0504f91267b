package appointment

import "time"

// DefaultVet is assigned to walk-in bookings that do not name a vet.
const DefaultVet = "Any Available Vet"

// BookingIntake is the raw creation payload. Two client generations send
// two different shapes and both must stay accepted: the walk-in form
// (owner, petName, service, date, time) and the older registry-linked
// shape (petId, vetName, scheduledAt). Classify picks the variant.
type BookingIntake struct {
	Owner   string `json:"owner"`
	Phone   string `json:"phone"`
	PetName string `json:"petName"`
	PetType string `json:"petType"`
	Service string `json:"service"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Vet     string `json:"vet"`

	PetID       string  `json:"petId"`
	VetName     string  `json:"vetName"`
	Reason      *string `json:"reason"`
	ScheduledAt string  `json:"scheduledAt"`

	Status string `json:"status"`
}

// Booking is the tagged union of the accepted intake variants. Record
// produces the canonical Appointment (without an id, which the repository
// assigns); PetRef reports the registry reference to validate, if any.
type Booking interface {
	Record(now time.Time) Appointment
	PetRef() string
}

// Classify resolves the intake to one variant. The walk-in required set
// acts as the discriminator: when all five fields are present the payload
// is a walk-in booking regardless of what else it carries. Anything else
// must satisfy the legacy contract or the intake is rejected.
func (in BookingIntake) Classify() (Booking, error) {
	if in.Owner != "" && in.PetName != "" && in.Service != "" && in.Date != "" && in.Time != "" {
		return WalkInBooking{
			Owner:   in.Owner,
			Phone:   in.Phone,
			PetName: in.PetName,
			PetType: in.PetType,
			Service: in.Service,
			Date:    in.Date,
			Time:    in.Time,
			Vet:     in.Vet,
			Status:  in.Status,
		}, nil
	}

	if in.PetID == "" || in.VetName == "" || in.ScheduledAt == "" {
		return nil, ErrRequiredFields
	}

	return LegacyBooking{
		PetID:       in.PetID,
		VetName:     in.VetName,
		Reason:      in.Reason,
		ScheduledAt: in.ScheduledAt,
		Status:      in.Status,
	}, nil
}

// WalkInBooking is the current client shape: self-contained free text with
// no pet registry dependency.
type WalkInBooking struct {
	Owner   string
	Phone   string
	PetName string
	PetType string
	Service string
	Date    string
	Time    string
	Vet     string
	Status  string
}

// PetRef is always empty: walk-in bookings never reference the registry,
// so creation skips the existence check entirely.
func (b WalkInBooking) PetRef() string { return "" }

func (b WalkInBooking) Record(now time.Time) Appointment {
	vet := b.Vet
	if vet == "" {
		vet = DefaultVet
	}
	status := b.Status
	if status == "" {
		status = StatusPending
	}

	return Appointment{
		Owner:     ptr(b.Owner),
		Phone:     ptr(b.Phone),
		PetName:   ptr(b.PetName),
		PetType:   ptr(b.PetType),
		Service:   ptr(b.Service),
		Date:      ptr(b.Date),
		Time:      ptr(b.Time),
		Vet:       ptr(vet),
		Status:    status,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// LegacyBooking is the older client shape keyed on a pet registry id.
type LegacyBooking struct {
	PetID       string
	VetName     string
	Reason      *string
	ScheduledAt string
	Status      string
}

func (b LegacyBooking) PetRef() string { return b.PetID }

func (b LegacyBooking) Record(now time.Time) Appointment {
	status := b.Status
	if status == "" {
		status = StatusScheduled
	}

	return Appointment{
		PetID:       ptr(b.PetID),
		VetName:     ptr(b.VetName),
		Reason:      b.Reason,
		ScheduledAt: ptr(b.ScheduledAt),
		Status:      status,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
}
