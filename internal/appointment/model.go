package appointment

import "time"

// Status values observed in stored records. The status column itself is
// free-form: clients may store any string and move between values in any
// order; these constants only name the defaults and the seed-data spread.
const (
	StatusPending    = "pending"
	StatusScheduled  = "scheduled"
	StatusConfirmed  = "confirmed"
	StatusInProgress = "in-progress"
	StatusCompleted  = "completed"
	StatusCancelled  = "cancelled"
)

// Appointment is the canonical record both intake shapes normalize into.
// The walk-in and registry-linked field sets coexist on the stored row;
// which set is populated depends on the shape the client sent at creation.
// Pointer fields distinguish "absent" from "present but empty" so a record
// round-trips with exactly the fields its variant carries.
type Appointment struct {
	ID string `json:"id"`

	// Walk-in bookings: free-text contact and visit details, no registry link.
	Owner   *string `json:"owner,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	PetName *string `json:"petName,omitempty"`
	PetType *string `json:"petType,omitempty"`
	Service *string `json:"service,omitempty"`
	Date    *string `json:"date,omitempty"`
	Time    *string `json:"time,omitempty"`
	Vet     *string `json:"vet,omitempty"`

	// Registry-linked bookings. PetID is a weak reference into the pet
	// registry: no FK, no cascade, it may dangle if the pet is deleted.
	PetID       *string `json:"petId,omitempty"`
	VetName     *string `json:"vetName,omitempty"`
	Reason      *string `json:"reason,omitempty"`
	ScheduledAt *string `json:"scheduledAt,omitempty"`

	Status    string    `json:"status"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Patch carries the fields of a full-update request. Nil means "leave the
// stored value untouched"; the merge never clears a field it was not given.
type Patch struct {
	Owner   *string `json:"owner"`
	Phone   *string `json:"phone"`
	PetName *string `json:"petName"`
	PetType *string `json:"petType"`
	Service *string `json:"service"`
	Date    *string `json:"date"`
	Time    *string `json:"time"`
	Vet     *string `json:"vet"`

	PetID       *string `json:"petId"`
	VetName     *string `json:"vetName"`
	Reason      *string `json:"reason"`
	ScheduledAt *string `json:"scheduledAt"`

	Status *string `json:"status"`
}

func (p Patch) apply(a *Appointment) {
	if p.Owner != nil {
		a.Owner = p.Owner
	}
	if p.Phone != nil {
		a.Phone = p.Phone
	}
	if p.PetName != nil {
		a.PetName = p.PetName
	}
	if p.PetType != nil {
		a.PetType = p.PetType
	}
	if p.Service != nil {
		a.Service = p.Service
	}
	if p.Date != nil {
		a.Date = p.Date
	}
	if p.Time != nil {
		a.Time = p.Time
	}
	if p.Vet != nil {
		a.Vet = p.Vet
	}
	if p.PetID != nil {
		a.PetID = p.PetID
	}
	if p.VetName != nil {
		a.VetName = p.VetName
	}
	if p.Reason != nil {
		a.Reason = p.Reason
	}
	if p.ScheduledAt != nil {
		a.ScheduledAt = p.ScheduledAt
	}
	if p.Status != nil {
		a.Status = *p.Status
	}
}

// Stats is the aggregate view over the whole collection: row count per
// lower-cased status plus the total.
type Stats struct {
	Total    int            `json:"total"`
	ByStatus map[string]int `json:"byStatus"`
}

func ptr(s string) *string {
	return &s
}
