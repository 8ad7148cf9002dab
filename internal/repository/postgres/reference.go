package postgres

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

type referenceRepository struct {
	db *sqlx.DB
}

func NewReferenceRepository(db *sqlx.DB) repository.ReferenceRepository {
	return &referenceRepository{db: db}
}

func (r *referenceRepository) ListAntiHbs(ctx context.Context) ([]*model.AntiHbsReference, error) {
	query := `SELECT * FROM anti_hbs_references ORDER BY age_min_months, booster`
	refs := []*model.AntiHbsReference{}
	if err := r.db.SelectContext(ctx, &refs, query); err != nil {
		return nil, fmt.Errorf("failed to list anti-HBs references: %w", err)
	}
	return refs, nil
}

func (r *referenceRepository) UpsertAntiHbs(ctx context.Context, ref *model.AntiHbsReference) error {
	if ref.ID == uuid.Nil {
		ref.ID = uuid.New()
	}
	now := time.Now()
	if ref.CreatedAt.IsZero() {
		ref.CreatedAt = now
	}
	ref.UpdatedAt = now

	query := `
		INSERT INTO anti_hbs_references (
			id, age_min_months, age_max_months, booster, min_titer, max_titer, unit, created_at, updated_at
		) VALUES (
			:id, :age_min_months, :age_max_months, :booster, :min_titer, :max_titer, :unit, :created_at, :updated_at
		)
		ON CONFLICT (age_min_months, age_max_months, booster) DO UPDATE SET
			min_titer = EXCLUDED.min_titer,
			max_titer = EXCLUDED.max_titer,
			unit = EXCLUDED.unit,
			updated_at = EXCLUDED.updated_at
	`
	if _, err := r.db.NamedExecContext(ctx, query, ref); err != nil {
		return fmt.Errorf("failed to upsert anti-HBs reference: %w", err)
	}
	return nil
}
