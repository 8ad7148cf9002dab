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

type riskAssessmentRepository struct {
	db *sqlx.DB
}

func NewRiskAssessmentRepository(db *sqlx.DB) repository.RiskAssessmentRepository {
	return &riskAssessmentRepository{db: db}
}

// CreateTx appends a history row. Assessments are immutable once created, so
// there is no update path.
func (r *riskAssessmentRepository) CreateTx(ctx context.Context, tx *sqlx.Tx, assessment *model.RiskAssessment) error {
	if assessment.ID == uuid.Nil {
		assessment.ID = uuid.New()
	}
	now := time.Now()
	assessment.CreatedAt = now
	assessment.UpdatedAt = now

	query := `
		INSERT INTO risk_assessments (
			id, patient_id, rule_based_score, ml_score, ml_prediction,
			final_risk_level, recommendations, created_at, updated_at
		) VALUES (
			:id, :patient_id, :rule_based_score, :ml_score, :ml_prediction,
			:final_risk_level, :recommendations, :created_at, :updated_at
		)
	`
	if _, err := tx.NamedExecContext(ctx, query, assessment); err != nil {
		return fmt.Errorf("failed to create risk assessment: %w", err)
	}
	return nil
}

func (r *riskAssessmentRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.RiskAssessment, error) {
	query := `SELECT * FROM risk_assessments WHERE patient_id = $1 ORDER BY created_at DESC`
	assessments := []*model.RiskAssessment{}
	if err := r.db.SelectContext(ctx, &assessments, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list risk assessments: %w", err)
	}
	return assessments, nil
}
