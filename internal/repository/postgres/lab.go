package postgres

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
)

type labResultRepository struct {
	db *sqlx.DB
}

func NewLabResultRepository(db *sqlx.DB) repository.LabResultRepository {
	return &labResultRepository{db: db}
}

// CreateBatch inserts every row of a submission in one multi-row statement.
func (r *labResultRepository) CreateBatch(ctx context.Context, results []*model.LabResult) error {
	if len(results) == 0 {
		return nil
	}

	now := time.Now()
	valueStrings := make([]string, 0, len(results))
	valueArgs := make([]interface{}, 0, len(results)*8)
	for i, res := range results {
		if res.ID == uuid.Nil {
			res.ID = uuid.New()
		}
		res.CreatedAt = now
		res.UpdatedAt = now

		base := i * 8
		valueStrings = append(valueStrings, fmt.Sprintf("($%d, $%d, $%d, $%d, $%d, $%d, $%d, $%d)",
			base+1, base+2, base+3, base+4, base+5, base+6, base+7, base+8))
		valueArgs = append(valueArgs,
			res.ID, res.PatientID, res.TestName, res.Value, res.Unit, res.TestDate, now, now)
	}

	query := fmt.Sprintf(`
		INSERT INTO lab_results (id, patient_id, test_name, value, unit, test_date, created_at, updated_at)
		VALUES %s
	`, strings.Join(valueStrings, ", "))

	if _, err := r.db.ExecContext(ctx, query, valueArgs...); err != nil {
		return fmt.Errorf("failed to insert lab results: %w", err)
	}
	return nil
}

func (r *labResultRepository) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.LabResult, error) {
	query := `SELECT * FROM lab_results WHERE patient_id = $1 ORDER BY test_date DESC, test_name`
	results := []*model.LabResult{}
	if err := r.db.SelectContext(ctx, &results, query, patientID); err != nil {
		return nil, fmt.Errorf("failed to list lab results: %w", err)
	}
	return results, nil
}

// LatestPanel picks the newest value per named assay of the fixed panel.
func (r *labResultRepository) LatestPanel(ctx context.Context, patientID uuid.UUID) (*model.LabPanel, error) {
	query := `
		SELECT DISTINCT ON (test_name) test_name, value
		FROM lab_results
		WHERE patient_id = $1 AND test_name = ANY($2)
		ORDER BY test_name, test_date DESC, created_at DESC
	`
	names := []string{
		model.AssayNeutrophils, model.AssayLymphocytes,
		model.AssayIgG, model.AssayIgA, model.AssayIgM, model.AssayIgE,
	}

	rows := []struct {
		TestName string  `db:"test_name"`
		Value    float64 `db:"value"`
	}{}
	if err := r.db.SelectContext(ctx, &rows, query, patientID, pq.Array(names)); err != nil {
		return nil, fmt.Errorf("failed to load latest lab panel: %w", err)
	}

	panel := &model.LabPanel{}
	for _, row := range rows {
		v := row.Value
		switch row.TestName {
		case model.AssayNeutrophils:
			panel.Neutrophils = &v
		case model.AssayLymphocytes:
			panel.Lymphocytes = &v
		case model.AssayIgG:
			panel.IgG = &v
		case model.AssayIgA:
			panel.IgA = &v
		case model.AssayIgM:
			panel.IgM = &v
		case model.AssayIgE:
			panel.IgE = &v
		}
	}
	return panel, nil
}
