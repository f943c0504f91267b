package appointment

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const appointmentColumns = `id, owner, phone, pet_name, pet_type, service, visit_date, visit_time, vet,
		       pet_id, vet_name, reason, scheduled_at, status, created_at, updated_at`

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// EnsureSchema creates the appointments table when it does not exist yet.
// pet_id deliberately has no foreign key: the reference into the registry
// is weak and may dangle after a pet is deleted.
func (r *PgRepository) EnsureSchema(ctx context.Context) error {
	_, err := r.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS appointments (
			id           text PRIMARY KEY,
			owner        text,
			phone        text,
			pet_name     text,
			pet_type     text,
			service      text,
			visit_date   text,
			visit_time   text,
			vet          text,
			pet_id       text,
			vet_name     text,
			reason       text,
			scheduled_at text,
			status       text NOT NULL,
			created_at   timestamptz NOT NULL,
			updated_at   timestamptz NOT NULL
		);
		CREATE INDEX IF NOT EXISTS appointments_created_at_idx ON appointments (created_at DESC);
	`)
	if err != nil {
		return fmt.Errorf("ensure appointments schema: %w", err)
	}
	return nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment

	err := row.Scan(
		&a.ID,
		&a.Owner,
		&a.Phone,
		&a.PetName,
		&a.PetType,
		&a.Service,
		&a.Date,
		&a.Time,
		&a.Vet,
		&a.PetID,
		&a.VetName,
		&a.Reason,
		&a.ScheduledAt,
		&a.Status,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	return &a, nil
}

func appointmentArgs(a *Appointment) []any {
	return []any{
		a.ID,
		a.Owner,
		a.Phone,
		a.PetName,
		a.PetType,
		a.Service,
		a.Date,
		a.Time,
		a.Vet,
		a.PetID,
		a.VetName,
		a.Reason,
		a.ScheduledAt,
		a.Status,
		a.CreatedAt,
		a.UpdatedAt,
	}
}

func (r *PgRepository) Insert(ctx context.Context, a Appointment) (*Appointment, error) {
	a.ID = uuid.NewString()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO appointments (`+appointmentColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING `+appointmentColumns+`
	`, appointmentArgs(&a)...)

	return scanAppointment(row)
}

func (r *PgRepository) GetByID(ctx context.Context, id string) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

func (r *PgRepository) List(ctx context.Context, f ListFilter) ([]Appointment, error) {
	query := `SELECT ` + appointmentColumns + ` FROM appointments`

	var conds []string
	var args []any
	if f.Status != "" {
		args = append(args, f.Status)
		conds = append(conds, fmt.Sprintf("status = $%d", len(args)))
	}
	if f.PetID != "" {
		args = append(args, f.PetID)
		conds = append(conds, fmt.Sprintf("pet_id = $%d", len(args)))
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY created_at DESC"

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make([]Appointment, 0)
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

// Update merges the patch inside one transaction with the row locked, so
// two overlapping updates cannot discard each other's fields.
func (r *PgRepository) Update(ctx context.Context, id string, p Patch, now time.Time) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin update: %w", err)
	}
	defer tx.Rollback(ctx)

	row := tx.QueryRow(ctx, `
		SELECT `+appointmentColumns+`
		FROM appointments
		WHERE id = $1
		FOR UPDATE
	`, id)

	a, err := scanAppointment(row)
	if err != nil {
		return nil, err
	}

	p.apply(a)
	a.UpdatedAt = now

	_, err = tx.Exec(ctx, `
		UPDATE appointments
		SET owner = $2, phone = $3, pet_name = $4, pet_type = $5, service = $6,
		    visit_date = $7, visit_time = $8, vet = $9,
		    pet_id = $10, vet_name = $11, reason = $12, scheduled_at = $13,
		    status = $14, created_at = $15, updated_at = $16
		WHERE id = $1
	`, appointmentArgs(a)...)
	if err != nil {
		return nil, fmt.Errorf("update appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit update: %w", err)
	}

	return a, nil
}

func (r *PgRepository) UpdateStatus(ctx context.Context, id, status string, now time.Time) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = $3
		WHERE id = $1
		RETURNING `+appointmentColumns+`
	`, id, status, now)

	return scanAppointment(row)
}

func (r *PgRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM appointments
		WHERE id = $1
	`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrAppointmentNotFound
	}
	return nil
}
