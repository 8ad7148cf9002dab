package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
)

type trainingSampleRepository struct {
	db *sqlx.DB
}

func NewTrainingSampleRepository(db *sqlx.DB) repository.TrainingSampleRepository {
	return &trainingSampleRepository{db: db}
}

func (r *trainingSampleRepository) Create(ctx context.Context, sample *model.TrainingSample) error {
	if sample.ID == uuid.Nil {
		sample.ID = uuid.New()
	}
	now := time.Now()
	sample.CreatedAt = now
	sample.UpdatedAt = now

	query := `
		INSERT INTO training_samples (
			id, age_months, gender, parental_consanguinity, family_immune_deficiency,
			early_infant_deaths, growth_failure, skin_issues, chronic_diarrhea,
			bcg_lymphadenopathy, oral_thrush, recurrent_abscesses, congenital_heart_disease,
			infection_count, severe_infection_count, iv_antibiotic_history,
			hospitalization_count, icu_admission, bcg_vaccinated, birth_weight_kg,
			gestational_age_weeks, cord_fall_day, label, source, created_at, updated_at
		) VALUES (
			:id, :age_months, :gender, :parental_consanguinity, :family_immune_deficiency,
			:early_infant_deaths, :growth_failure, :skin_issues, :chronic_diarrhea,
			:bcg_lymphadenopathy, :oral_thrush, :recurrent_abscesses, :congenital_heart_disease,
			:infection_count, :severe_infection_count, :iv_antibiotic_history,
			:hospitalization_count, :icu_admission, :bcg_vaccinated, :birth_weight_kg,
			:gestational_age_weeks, :cord_fall_day, :label, :source, :created_at, :updated_at
		)
	`
	if _, err := r.db.NamedExecContext(ctx, query, sample); err != nil {
		return fmt.Errorf("failed to create training sample: %w", err)
	}
	return nil
}

func (r *trainingSampleRepository) List(ctx context.Context) ([]*model.TrainingSample, error) {
	query := `SELECT * FROM training_samples ORDER BY created_at DESC`
	samples := []*model.TrainingSample{}
	if err := r.db.SelectContext(ctx, &samples, query); err != nil {
		return nil, fmt.Errorf("failed to list training samples: %w", err)
	}
	return samples, nil
}

func (r *trainingSampleRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM training_samples WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete training sample: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("training sample", sql.ErrNoRows)
	}
	return nil
}
