package appointment

import (
	"context"
	"fmt"
	"strings"
	"time"
)

type Service struct {
	repo Repository
	pets PetRegistry

	// Now is swappable in tests.
	Now func() time.Time
}

func NewService(repo Repository, pets PetRegistry) *Service {
	return &Service{
		repo: repo,
		pets: pets,
		Now:  time.Now,
	}
}

// Create normalizes the intake into the canonical record and persists it.
// Only registry-linked bookings consult the pet registry; walk-in bookings
// are self-contained free text and skip the check. Duplicates (same pet,
// same time) are allowed: the generated id is the only uniqueness.
func (s *Service) Create(ctx context.Context, in BookingIntake) (*Appointment, error) {
	booking, err := in.Classify()
	if err != nil {
		return nil, err
	}

	if petID := booking.PetRef(); petID != "" {
		if err := s.checkPetRef(ctx, petID); err != nil {
			return nil, err
		}
	}

	created, err := s.repo.Insert(ctx, booking.Record(s.Now().UTC()))
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}
	return created, nil
}

func (s *Service) Get(ctx context.Context, id string) (*Appointment, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	items, err := s.repo.List(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}
	return items, nil
}

// Update merges the patch over the stored record. A patch that carries a
// petId is re-validated against the registry, same as on create; createdAt
// is never touched.
func (s *Service) Update(ctx context.Context, id string, p Patch) (*Appointment, error) {
	// A missing record is not-found even when the patch also carries a bad
	// reference; existence is settled before the patch is looked at.
	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	if p.PetID != nil {
		if err := s.checkPetRef(ctx, *p.PetID); err != nil {
			return nil, err
		}
	}

	return s.repo.Update(ctx, id, p, s.Now().UTC())
}

// UpdateStatus replaces only the status field. Any non-empty string is a
// valid status and any transition is allowed; there is no enumerated set.
func (s *Service) UpdateStatus(ctx context.Context, id, status string) (*Appointment, error) {
	if status == "" {
		return nil, ErrStatusRequired
	}

	return s.repo.UpdateStatus(ctx, id, status, s.Now().UTC())
}

func (s *Service) Delete(ctx context.Context, id string) error {
	return s.repo.Delete(ctx, id)
}

// Stats scans the whole collection and counts records per status. Records
// without a status count as scheduled; grouping lower-cases the value, in
// contrast with the exact-match list filter. The full scan is acceptable
// at this collection's size.
func (s *Service) Stats(ctx context.Context) (*Stats, error) {
	items, err := s.repo.List(ctx, ListFilter{})
	if err != nil {
		return nil, fmt.Errorf("scan appointments: %w", err)
	}

	byStatus := make(map[string]int)
	for _, a := range items {
		key := a.Status
		if key == "" {
			key = StatusScheduled
		}
		byStatus[strings.ToLower(key)]++
	}

	return &Stats{Total: len(items), ByStatus: byStatus}, nil
}

// checkPetRef enforces referential integrity for registry-linked records.
// A failed lookup propagates as a store error rather than being read as
// "pet missing".
func (s *Service) checkPetRef(ctx context.Context, petID string) error {
	ok, err := s.pets.Exists(ctx, petID)
	if err != nil {
		return fmt.Errorf("check pet reference: %w", err)
	}
	if !ok {
		return ErrPetNotFound
	}
	return nil
}
