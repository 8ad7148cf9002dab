package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
)

type patientRepository struct {
	db *sqlx.DB
}

func NewPatientRepository(db *sqlx.DB) repository.PatientRepository {
	return &patientRepository{db: db}
}

func (r *patientRepository) Create(ctx context.Context, patient *model.Patient) error {
	query := `
		INSERT INTO patients (
			id, file_number, first_name, last_name, birth_date, age_months,
			gender, ethnicity, height_cm, weight_kg, birth_weight_kg,
			gestational_age_weeks, cord_fall_day, parental_consanguinity,
			has_immune_deficiency, diagnosis_type, diagnosis_date,
			created_at, updated_at
		) VALUES (
			:id, :file_number, :first_name, :last_name, :birth_date, :age_months,
			:gender, :ethnicity, :height_cm, :weight_kg, :birth_weight_kg,
			:gestational_age_weeks, :cord_fall_day, :parental_consanguinity,
			:has_immune_deficiency, :diagnosis_type, :diagnosis_date,
			:created_at, :updated_at
		)
	`
	patient.CreatedAt = time.Now()
	patient.UpdatedAt = time.Now()

	if _, err := r.db.NamedExecContext(ctx, query, patient); err != nil {
		return fmt.Errorf("failed to create patient: %w", err)
	}
	return nil
}

func (r *patientRepository) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	query := `SELECT * FROM patients WHERE id = $1`
	var patient model.Patient
	err := r.db.GetContext(ctx, &patient, query, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("patient", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get patient: %w", err)
	}
	return &patient, nil
}

func (r *patientRepository) Update(ctx context.Context, patient *model.Patient) error {
	query := `
		UPDATE patients SET
			file_number = :file_number,
			first_name = :first_name,
			last_name = :last_name,
			birth_date = :birth_date,
			age_months = :age_months,
			gender = :gender,
			ethnicity = :ethnicity,
			height_cm = :height_cm,
			weight_kg = :weight_kg,
			birth_weight_kg = :birth_weight_kg,
			gestational_age_weeks = :gestational_age_weeks,
			cord_fall_day = :cord_fall_day,
			parental_consanguinity = :parental_consanguinity,
			has_immune_deficiency = :has_immune_deficiency,
			diagnosis_type = :diagnosis_type,
			diagnosis_date = :diagnosis_date,
			updated_at = :updated_at
		WHERE id = :id
	`
	patient.UpdatedAt = time.Now()

	result, err := r.db.NamedExecContext(ctx, query, patient)
	if err != nil {
		return fmt.Errorf("failed to update patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", sql.ErrNoRows)
	}
	return nil
}

func (r *patientRepository) Delete(ctx context.Context, id uuid.UUID) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM patients WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete patient: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", sql.ErrNoRows)
	}
	return nil
}

func (r *patientRepository) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	query := `SELECT * FROM patients WHERE 1=1`
	args := []interface{}{}

	if filters != nil && filters.SearchTerm != "" {
		args = append(args, "%"+filters.SearchTerm+"%")
		query += fmt.Sprintf(" AND (first_name ILIKE $%d OR last_name ILIKE $%d OR file_number ILIKE $%d)", len(args), len(args), len(args))
	}
	if filters != nil && filters.RiskLevel != "" {
		args = append(args, filters.RiskLevel)
		query += fmt.Sprintf(" AND final_risk_level = $%d", len(args))
	}
	query += " ORDER BY created_at DESC"

	if filters != nil && filters.PageSize > 0 {
		page := filters.Page
		if page < 1 {
			page = 1
		}
		args = append(args, filters.PageSize)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
		args = append(args, (page-1)*filters.PageSize)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	patients := []*model.Patient{}
	if err := r.db.SelectContext(ctx, &patients, query, args...); err != nil {
		return nil, fmt.Errorf("failed to list patients: %w", err)
	}
	return patients, nil
}

// UpdateRiskSnapshot overwrites the denormalized latest-score fields. It runs
// inside the assessment transaction so snapshot and history stay consistent.
func (r *patientRepository) UpdateRiskSnapshot(ctx context.Context, tx *sqlx.Tx, patientID uuid.UUID, ruleScore int, mlScore *float64, level string) error {
	query := `
		UPDATE patients
		SET rule_based_score = $1, ml_score = $2, final_risk_level = $3, updated_at = $4
		WHERE id = $5
	`
	result, err := tx.ExecContext(ctx, query, ruleScore, mlScore, level, time.Now(), patientID)
	if err != nil {
		return fmt.Errorf("failed to update risk snapshot: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rows == 0 {
		return apperrors.NotFound("patient", sql.ErrNoRows)
	}
	return nil
}
