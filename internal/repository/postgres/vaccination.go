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

type vaccinationRepository struct {
	db *sqlx.DB
}

func NewVaccinationRepository(db *sqlx.DB) repository.VaccinationRepository {
	return &vaccinationRepository{db: db}
}

func (r *vaccinationRepository) Create(ctx context.Context, vaccination *model.Vaccination) error {
	if vaccination.ID == uuid.Nil {
		vaccination.ID = uuid.New()
	}
	now := time.Now()
	vaccination.CreatedAt = now
	vaccination.UpdatedAt = now

	query := `
		INSERT INTO vaccinations (id, patient_id, vaccine, dose_number, given_at, notes, created_at, updated_at)
		VALUES (:id, :patient_id, :vaccine, :dose_number, :given_at, :notes, :created_at, :updated_at)
	`
	if _, err := r.db.NamedExecContext(ctx, query, vaccination); err != nil {
		return fmt.Errorf("failed to create vaccination: %w", err)
	}
	return nil
}

func (r *vaccinationRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM vaccinations WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete vaccination: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("vaccination", sql.ErrNoRows)
	}
	return nil
}

func (r *vaccinationRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Vaccination, error) {
	query := `SELECT * FROM vaccinations WHERE patient_id = $1 ORDER BY given_at DESC NULLS LAST`
	vaccinations := []*model.Vaccination{}
	if err := r.db.SelectContext(ctx, &vaccinations, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list vaccinations: %w", err)
	}
	return vaccinations, nil
}
