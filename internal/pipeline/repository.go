package pipeline

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrLeadNotFound is returned when a stage update targets a lead that does
// not exist (e.g. deleted by an admin while the board was open).
var ErrLeadNotFound = errors.New("lead not found")

// Repository provides data access for leads.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository creates a new pipeline repository.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// ListLeads returns all leads, oldest first. Stored stage values are
// normalized on read so the projection never sees an unknown stage.
func (r *Repository) ListLeads(ctx context.Context) ([]Lead, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, address, rating, has_whatsapp, phone,
		       COALESCE(pipeline_stage, ''), created_at, updated_at
		FROM leads
		ORDER BY created_at ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var leads []Lead
	for rows.Next() {
		var l Lead
		if err := rows.Scan(
			&l.ID, &l.Name, &l.Address, &l.Rating, &l.HasWhatsApp, &l.Phone,
			&l.Stage, &l.CreatedAt, &l.UpdatedAt,
		); err != nil {
			return nil, err
		}
		l.Stage = NormalizeStage(l.Stage)
		leads = append(leads, l)
	}
	return leads, rows.Err()
}

// UpdateLeadStage persists a stage transition for one lead.
func (r *Repository) UpdateLeadStage(ctx context.Context, leadID uuid.UUID, stage string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE leads SET pipeline_stage = $2, updated_at = now()
		WHERE id = $1
	`, leadID, stage)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrLeadNotFound
	}
	return nil
}
