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
)

type clinicalFeatureRepository struct {
	db *sqlx.DB
}

func NewClinicalFeatureRepository(db *sqlx.DB) repository.ClinicalFeatureRepository {
	return &clinicalFeatureRepository{db: db}
}

const insertClinicalFeature = `
	INSERT INTO clinical_features (
		id, patient_id, visit_date, growth_failure, skin_issues,
		diarrhea_duration_days, bcg_lymphadenopathy, oral_thrush,
		recurrent_abscesses, congenital_heart_disease, notes,
		created_at, updated_at
	) VALUES (
		:id, :patient_id, :visit_date, :growth_failure, :skin_issues,
		:diarrhea_duration_days, :bcg_lymphadenopathy, :oral_thrush,
		:recurrent_abscesses, :congenital_heart_disease, :notes,
		:created_at, :updated_at
	)
`

func (r *clinicalFeatureRepository) Create(ctx context.Context, feature *model.ClinicalFeature) error {
	stamp(feature)
	if _, err := r.db.NamedExecContext(ctx, insertClinicalFeature, feature); err != nil {
		return fmt.Errorf("failed to create clinical feature: %w", err)
	}
	return nil
}

func (r *clinicalFeatureRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, feature *model.ClinicalFeature) error {
	stamp(feature)
	if _, err := tx.NamedExecContext(ctx, insertClinicalFeature, feature); err != nil {
		return fmt.Errorf("failed to create clinical feature: %w", err)
	}
	return nil
}

func (r *clinicalFeatureRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalFeature, error) {
	query := `SELECT * FROM clinical_features WHERE patient_id = $1 ORDER BY visit_date DESC`
	features := []*model.ClinicalFeature{}
	if err := r.db.SelectContext(ctx, &features, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list clinical features: %w", err)
	}
	return features, nil
}

func (r *clinicalFeatureRepository) Latest(ctx context.Context, patientID uuid.UUID) (*model.ClinicalFeature, error) {
	query := `SELECT * FROM clinical_features WHERE patient_id = $1 ORDER BY visit_date DESC LIMIT 1`
	var feature model.ClinicalFeature
	err := r.db.GetContext(ctx, &feature, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get latest clinical feature: %w", err)
	}
	return &feature, nil
}

func stamp(feature *model.ClinicalFeature) {
	if feature.ID == uuid.Nil {
		feature.ID = uuid.New()
	}
	now := time.Now()
	feature.CreatedAt = now
	feature.UpdatedAt = now
	if feature.VisitDate.IsZero() {
		feature.VisitDate = now
	}
}
