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

type occurrenceRepository struct {
	db *sqlx.DB
}

func NewOccurrenceRepository(db *sqlx.DB) repository.OccurrenceRepository {
	return &occurrenceRepository{db: db}
}

func (r *occurrenceRepository) CreateInfectionTx(ctx context.Context, tx *sqlx.Tx, infection *model.Infection) error {
	if infection.ID == uuid.Nil {
		infection.ID = uuid.New()
	}
	now := time.Now()
	infection.CreatedAt = now
	infection.UpdatedAt = now

	query := `
		INSERT INTO infections (
			id, patient_id, infection_type, severity, onset_date,
			treated_with_iv, notes, created_at, updated_at
		) VALUES (
			:id, :patient_id, :infection_type, :severity, :onset_date,
			:treated_with_iv, :notes, :created_at, :updated_at
		)
	`
	if _, err := tx.NamedExecContext(ctx, query, infection); err != nil {
		return fmt.Errorf("failed to create infection: %w", err)
	}
	return nil
}

func (r *occurrenceRepository) CreateHospitalizationTx(ctx context.Context, tx *sqlx.Tx, hospitalization *model.Hospitalization) error {
	if hospitalization.ID == uuid.Nil {
		hospitalization.ID = uuid.New()
	}
	now := time.Now()
	hospitalization.CreatedAt = now
	hospitalization.UpdatedAt = now

	query := `
		INSERT INTO hospitalizations (
			id, patient_id, reason, admission_date, discharge_date,
			icu_admission, created_at, updated_at
		) VALUES (
			:id, :patient_id, :reason, :admission_date, :discharge_date,
			:icu_admission, :created_at, :updated_at
		)
	`
	if _, err := tx.NamedExecContext(ctx, query, hospitalization); err != nil {
		return fmt.Errorf("failed to create hospitalization: %w", err)
	}
	return nil
}

func (r *occurrenceRepository) ListInfections(ctx context.Context, patientID uuid.UUID) ([]*model.Infection, error) {
	query := `SELECT * FROM infections WHERE patient_id = $1 ORDER BY created_at DESC`
	infections := []*model.Infection{}
	if err := r.db.SelectContext(ctx, &infections, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list infections: %w", err)
	}
	return infections, nil
}

func (r *occurrenceRepository) ListHospitalizations(ctx context.Context, patientID uuid.UUID) ([]*model.Hospitalization, error) {
	query := `SELECT * FROM hospitalizations WHERE patient_id = $1 ORDER BY created_at DESC`
	hospitalizations := []*model.Hospitalization{}
	if err := r.db.SelectContext(ctx, &hospitalizations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list hospitalizations: %w", err)
	}
	return hospitalizations, nil
}
