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

type familyHistoryRepository struct {
	BaseRepository
}

func NewFamilyHistoryRepository(base BaseRepository) repository.FamilyHistoryRepository {
	return &familyHistoryRepository{base}
}

// One current record per patient: the patient_id unique constraint turns the
// insert into an update when a record already exists.
const upsertFamilyHistory = `
	INSERT INTO family_histories (
		id, patient_id, immune_deficiency_history, early_infant_deaths,
		affected_relatives, consanguinity_degree, notes, created_at, updated_at
	) VALUES (
		:id, :patient_id, :immune_deficiency_history, :early_infant_deaths,
		:affected_relatives, :consanguinity_degree, :notes, :created_at, :updated_at
	)
	ON CONFLICT (patient_id) DO UPDATE SET
		immune_deficiency_history = EXCLUDED.immune_deficiency_history,
		early_infant_deaths = EXCLUDED.early_infant_deaths,
		affected_relatives = EXCLUDED.affected_relatives,
		consanguinity_degree = EXCLUDED.consanguinity_degree,
		notes = EXCLUDED.notes,
		updated_at = EXCLUDED.updated_at
`

func (r *familyHistoryRepository) Upsert(ctx context.Context, history *model.FamilyHistory) error {
	prepareFamilyHistory(history)
	if _, err := r.GetDB().NamedExecContext(ctx, upsertFamilyHistory, history); err != nil {
		return fmt.Errorf("failed to upsert family history: %w", err)
	}
	return nil
}

func (r *familyHistoryRepository) UpsertTx(ctx context.Context, tx *sqlx.Tx, history *model.FamilyHistory) error {
	prepareFamilyHistory(history)
	if _, err := tx.NamedExecContext(ctx, upsertFamilyHistory, history); err != nil {
		return fmt.Errorf("failed to upsert family history: %w", err)
	}
	return nil
}

func (r *familyHistoryRepository) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.FamilyHistory, error) {
	query := `SELECT * FROM family_histories WHERE patient_id = $1`
	var history model.FamilyHistory
	err := r.GetDB().GetContext(ctx, &history, query, patientID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, apperrors.NotFound("family history", err)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get family history: %w", err)
	}
	return &history, nil
}

func prepareFamilyHistory(history *model.FamilyHistory) {
	if history.ID == uuid.Nil {
		history.ID = uuid.New()
	}
	now := time.Now()
	if history.CreatedAt.IsZero() {
		history.CreatedAt = now
	}
	history.UpdatedAt = now
}
