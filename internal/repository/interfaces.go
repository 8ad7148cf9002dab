package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
)

// TxRunner executes a function inside a database transaction.
type TxRunner interface {
	WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error
}

// All repository interfaces in one file
type (
	PatientRepository interface {
		Create(ctx context.Context, patient *model.Patient) error
		Get(ctx context.Context, id uuid.UUID) (*model.Patient, error)
		Update(ctx context.Context, patient *model.Patient) error
		Delete(ctx context.Context, id uuid.UUID) error
		List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)
		UpdateRiskSnapshot(ctx context.Context, tx *sqlx.Tx, patientID uuid.UUID, ruleScore int, mlScore *float64, level string) error
	}

	ClinicalFeatureRepository interface {
		Create(ctx context.Context, feature *model.ClinicalFeature) error
		CreateTx(ctx context.Context, tx *sqlx.Tx, feature *model.ClinicalFeature) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalFeature, error)
		Latest(ctx context.Context, patientID uuid.UUID) (*model.ClinicalFeature, error)
	}

	LabResultRepository interface {
		CreateBatch(ctx context.Context, results []*model.LabResult) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.LabResult, error)
		LatestPanel(ctx context.Context, patientID uuid.UUID) (*model.LabPanel, error)
	}

	FamilyHistoryRepository interface {
		Upsert(ctx context.Context, history *model.FamilyHistory) error
		UpsertTx(ctx context.Context, tx *sqlx.Tx, history *model.FamilyHistory) error
		GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.FamilyHistory, error)
	}

	OccurrenceRepository interface {
		CreateInfectionTx(ctx context.Context, tx *sqlx.Tx, infection *model.Infection) error
		CreateHospitalizationTx(ctx context.Context, tx *sqlx.Tx, hospitalization *model.Hospitalization) error
		ListInfections(ctx context.Context, patientID uuid.UUID) ([]*model.Infection, error)
		ListHospitalizations(ctx context.Context, patientID uuid.UUID) ([]*model.Hospitalization, error)
	}

	VaccinationRepository interface {
		Create(ctx context.Context, vaccination *model.Vaccination) error
		Delete(ctx context.Context, id uuid.UUID) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.Vaccination, error)
	}

	RiskAssessmentRepository interface {
		CreateTx(ctx context.Context, tx *sqlx.Tx, assessment *model.RiskAssessment) error
		ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.RiskAssessment, error)
	}

	UserRepository interface {
		Create(ctx context.Context, user *model.User) error
		Get(ctx context.Context, id uuid.UUID) (*model.User, error)
		GetByEmail(ctx context.Context, email string) (*model.User, error)
		Update(ctx context.Context, user *model.User) error
		UpdateLastLogin(ctx context.Context, id uuid.UUID, at time.Time) error
		List(ctx context.Context) ([]*model.User, error)
	}

	ResetTokenRepository interface {
		Create(ctx context.Context, token *model.PasswordResetToken) error
		Redeem(ctx context.Context, userID uuid.UUID, code string) error
	}

	ReferenceRepository interface {
		ListAntiHbs(ctx context.Context) ([]*model.AntiHbsReference, error)
		UpsertAntiHbs(ctx context.Context, ref *model.AntiHbsReference) error
	}

	NotificationRepository interface {
		Create(ctx context.Context, notification *model.Notification) error
		List(ctx context.Context, unreadOnly bool) ([]*model.Notification, error)
		MarkRead(ctx context.Context, id uuid.UUID) error
	}

	TrainingSampleRepository interface {
		Create(ctx context.Context, sample *model.TrainingSample) error
		List(ctx context.Context) ([]*model.TrainingSample, error)
		Delete(ctx context.Context, id uuid.UUID) error
	}

	AdminRepository interface {
		ListTables(ctx context.Context) ([]string, error)
		TableSizes(ctx context.Context) ([]*model.TableSize, error)
		IndexUsage(ctx context.Context) ([]*model.IndexUsage, error)
		RowCount(ctx context.Context, table string) (int64, error)
		Sessions(ctx context.Context) ([]*model.SessionInfo, error)
		RunQuery(ctx context.Context, query string) (*model.QueryResult, error)
		TableRows(ctx context.Context, table string) (*model.QueryResult, error)
	}
)
