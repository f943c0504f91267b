package appointment

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
)

// PgPetRegistry resolves pet existence against the pets table, which the
// pet registry service owns. This service never reads any other pet field.
type PgPetRegistry struct {
	pool *pgxpool.Pool
}

func NewPgPetRegistry(pool *pgxpool.Pool) *PgPetRegistry {
	return &PgPetRegistry{pool: pool}
}

func (r *PgPetRegistry) Exists(ctx context.Context, petID string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `
		SELECT EXISTS (SELECT 1 FROM pets WHERE id = $1)
	`, petID).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("pet lookup: %w", err)
	}
	return exists, nil
}
