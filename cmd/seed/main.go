package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/petcare/appointment-service/internal/appointment"
	"github.com/petcare/appointment-service/internal/config"
	"github.com/petcare/appointment-service/internal/db"
)

// Seeds sample pets and appointments for local development. The command is
// explicit and idempotent: it refuses to run without SEED_SAMPLE_DATA=true
// and skips entirely when appointments already exist. The server itself
// never seeds.
func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("seed starting")

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}
	if !cfg.SeedSampleData {
		log.Fatal("refusing to seed: set SEED_SAMPLE_DATA=true")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	pool, err := db.ConnectPostgres(ctx, cfg.PostgresDSN, cfg.PGMaxConns)
	if err != nil {
		log.Fatalf("connect postgres: %v", err)
	}
	defer pool.Close()

	runCtx := context.Background()

	repo := appointment.NewPgRepository(pool)
	if err := repo.EnsureSchema(runCtx); err != nil {
		log.Fatalf("ensure schema: %v", err)
	}
	if err := ensurePetsTable(runCtx, pool); err != nil {
		log.Fatalf("ensure pets table: %v", err)
	}

	var haveAppointments bool
	if err := pool.QueryRow(runCtx, `SELECT EXISTS (SELECT 1 FROM appointments)`).Scan(&haveAppointments); err != nil {
		log.Fatalf("check appointments: %v", err)
	}
	if haveAppointments {
		log.Println("sample data already exists, skipping")
		return
	}

	gofakeit.Seed(time.Now().UnixNano())

	petIDs, err := seedPets(runCtx, pool, 8)
	if err != nil {
		log.Fatalf("seed pets: %v", err)
	}
	if err := seedAppointments(runCtx, repo, petIDs); err != nil {
		log.Fatalf("seed appointments: %v", err)
	}

	log.Println("seed complete")
}

// ensurePetsTable creates the registry's pets table when it is missing, so
// the seed works on a fresh local database before the pet service has run.
func ensurePetsTable(ctx context.Context, pool *pgxpool.Pool) error {
	_, err := pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS pets (
			id            text PRIMARY KEY,
			name          text NOT NULL,
			species       text,
			breed         text,
			age           int,
			gender        text,
			owner_name    text,
			owner_email   text,
			owner_phone   text,
			medical_notes text,
			created_at    timestamptz NOT NULL,
			updated_at    timestamptz NOT NULL
		)
	`)
	return err
}

var petSpecies = map[string][]string{
	"dog":    {"Golden Retriever", "Beagle", "German Shepherd", "Labrador", "Poodle"},
	"cat":    {"Siamese", "Persian", "Maine Coon", "Bengal"},
	"rabbit": {"Holland Lop", "Netherland Dwarf"},
}

func seedPets(ctx context.Context, pool *pgxpool.Pool, count int) ([]string, error) {
	var existing int
	if err := pool.QueryRow(ctx, `SELECT count(*) FROM pets`).Scan(&existing); err != nil {
		return nil, err
	}
	if existing > 0 {
		log.Printf("pets already present (%d), reusing them", existing)
		return existingPetIDs(ctx, pool, count)
	}

	log.Printf("seeding %d pets", count)

	species := make([]string, 0, len(petSpecies))
	for s := range petSpecies {
		species = append(species, s)
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	ids := make([]string, 0, count)
	for i := 0; i < count; i++ {
		id := uuid.NewString()
		sp := species[gofakeit.Number(0, len(species)-1)]
		breeds := petSpecies[sp]
		created := time.Now().UTC().Add(-time.Duration(gofakeit.Number(5, 30)) * 24 * time.Hour)

		_, err := tx.Exec(ctx, `
			INSERT INTO pets (id, name, species, breed, age, gender, owner_name, owner_email, owner_phone, medical_notes, created_at, updated_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		`,
			id,
			gofakeit.PetName(),
			sp,
			breeds[gofakeit.Number(0, len(breeds)-1)],
			gofakeit.Number(1, 12),
			[]string{"male", "female"}[gofakeit.Number(0, 1)],
			gofakeit.Name(),
			gofakeit.Email(),
			gofakeit.Phone(),
			gofakeit.Sentence(8),
			created,
		)
		if err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}

	log.Println("pets seeded")
	return ids, nil
}

func existingPetIDs(ctx context.Context, pool *pgxpool.Pool, limit int) ([]string, error) {
	rows, err := pool.Query(ctx, `SELECT id FROM pets LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

var visitReasons = []string{
	"Annual checkup and vaccinations",
	"Dental cleaning",
	"Follow-up examination",
	"Emergency visit - stomach upset",
	"Spay surgery consultation",
	"Routine wellness exam",
}

var walkInServices = []string{
	"Grooming",
	"Vaccination",
	"Checkup",
	"Dental Cleaning",
	"Nail Trim",
}

func seedAppointments(ctx context.Context, repo *appointment.PgRepository, petIDs []string) error {
	if len(petIDs) == 0 {
		log.Println("no pets found, skipping appointment seeding")
		return nil
	}

	log.Printf("seeding appointments for %d pets", len(petIDs))

	legacyStatuses := []string{
		appointment.StatusScheduled,
		appointment.StatusConfirmed,
		appointment.StatusCompleted,
		appointment.StatusInProgress,
	}

	for i, petID := range petIDs {
		reason := visitReasons[gofakeit.Number(0, len(visitReasons)-1)]
		scheduled := time.Now().UTC().Add(time.Duration(gofakeit.Number(-3, 7)) * 24 * time.Hour)

		booking := appointment.LegacyBooking{
			PetID:       petID,
			VetName:     "Dr. " + gofakeit.LastName(),
			Reason:      &reason,
			ScheduledAt: scheduled.Format(time.RFC3339),
			Status:      legacyStatuses[i%len(legacyStatuses)],
		}

		createdAt := time.Now().UTC().Add(-time.Duration(gofakeit.Number(1, 10)) * 24 * time.Hour)
		if _, err := repo.Insert(ctx, booking.Record(createdAt)); err != nil {
			return err
		}
	}

	// A few walk-in bookings from the current client shape.
	for i := 0; i < 4; i++ {
		visit := time.Now().UTC().Add(time.Duration(gofakeit.Number(1, 14)) * 24 * time.Hour)

		booking := appointment.WalkInBooking{
			Owner:   gofakeit.Name(),
			Phone:   gofakeit.Phone(),
			PetName: gofakeit.PetName(),
			PetType: []string{"dog", "cat"}[gofakeit.Number(0, 1)],
			Service: walkInServices[gofakeit.Number(0, len(walkInServices)-1)],
			Date:    visit.Format("2006-01-02"),
			Time:    fmt.Sprintf("%02d:00", gofakeit.Number(9, 17)),
		}

		if _, err := repo.Insert(ctx, booking.Record(time.Now().UTC())); err != nil {
			return err
		}
	}

	log.Println("appointments seeded")
	return nil
}
