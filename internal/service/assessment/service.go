package assessment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	"github.com/bbabur/immune-risk-next-sub001/internal/riskscore"
	"github.com/bbabur/immune-risk-next-sub001/internal/service/notification"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
	"github.com/bbabur/immune-risk-next-sub001/pkg/mlclient"
)

// Result is the outcome of a risk assessment run. Degraded is set when the
// predictor was unreachable and only the rule score contributed.
type Result struct {
	Assessment *model.RiskAssessment `json:"assessment"`
	Degraded   bool                  `json:"degraded"`
}

// Submission is the outcome of a composite clinical submission: the stored
// visit record plus the risk assessment triggered by it.
type Submission struct {
	ClinicalFeature *model.ClinicalFeature `json:"clinical_feature"`
	Assessment      *model.RiskAssessment  `json:"assessment,omitempty"`
	Degraded        bool                   `json:"degraded,omitempty"`
}

type Service interface {
	SubmitClinicalAssessment(ctx context.Context, patientID uuid.UUID, req *model.ClinicalAssessmentRequest) (*Submission, error)
	AssessRisk(ctx context.Context, patientID uuid.UUID) (*Result, error)
	ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*model.RiskAssessment, error)
}

type service struct {
	tx              repository.TxRunner
	patientRepo     repository.PatientRepository
	clinicalRepo    repository.ClinicalFeatureRepository
	labRepo         repository.LabResultRepository
	familyRepo      repository.FamilyHistoryRepository
	occurrenceRepo  repository.OccurrenceRepository
	vaccinationRepo repository.VaccinationRepository
	riskRepo        repository.RiskAssessmentRepository
	ml              mlclient.Client
	notifier        notification.Service
	metrics         *metrics.Metrics
	logger          *logger.Logger
}

func NewService(
	tx repository.TxRunner,
	patientRepo repository.PatientRepository,
	clinicalRepo repository.ClinicalFeatureRepository,
	labRepo repository.LabResultRepository,
	familyRepo repository.FamilyHistoryRepository,
	occurrenceRepo repository.OccurrenceRepository,
	vaccinationRepo repository.VaccinationRepository,
	riskRepo repository.RiskAssessmentRepository,
	ml mlclient.Client,
	notifier notification.Service,
	m *metrics.Metrics,
	log *logger.Logger,
) Service {
	return &service{
		tx:              tx,
		patientRepo:     patientRepo,
		clinicalRepo:    clinicalRepo,
		labRepo:         labRepo,
		familyRepo:      familyRepo,
		occurrenceRepo:  occurrenceRepo,
		vaccinationRepo: vaccinationRepo,
		riskRepo:        riskRepo,
		ml:              ml,
		notifier:        notifier,
		metrics:         m,
		logger:          log,
	}
}

// SubmitClinicalAssessment writes the clinical feature row, the occurrence
// records and the family history update in one transaction, then runs a risk
// assessment over the updated record. A failure on any row leaves nothing
// behind; an assessment failure does not undo the committed submission.
func (s *service) SubmitClinicalAssessment(ctx context.Context, patientID uuid.UUID, req *model.ClinicalAssessmentRequest) (*Submission, error) {
	if _, err := s.patientRepo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	visitDate := time.Now()
	if req.Clinical.VisitDate != nil {
		visitDate = *req.Clinical.VisitDate
	}

	feature := &model.ClinicalFeature{
		PatientID:              patientID,
		VisitDate:              visitDate,
		GrowthFailure:          req.Clinical.GrowthFailure,
		SkinIssues:             req.Clinical.SkinIssues,
		DiarrheaDurationDays:   req.Clinical.DiarrheaDurationDays,
		BCGLymphadenopathy:     req.Clinical.BCGLymphadenopathy,
		OralThrush:             req.Clinical.OralThrush,
		RecurrentAbscesses:     req.Clinical.RecurrentAbscesses,
		CongenitalHeartDisease: req.Clinical.CongenitalHeartDisease,
		Notes:                  req.Clinical.Notes,
	}

	err := s.runTx(ctx, "clinical_assessment", func(tx *sqlx.Tx) error {
		if err := s.clinicalRepo.CreateTx(ctx, tx, feature); err != nil {
			return fmt.Errorf("failed to store clinical feature: %w", err)
		}

		for _, inf := range req.Infections {
			infection := &model.Infection{
				PatientID:     patientID,
				InfectionType: inf.InfectionType,
				Severity:      inf.Severity,
				OnsetDate:     inf.OnsetDate,
				TreatedWithIV: inf.TreatedWithIV,
				Notes:         inf.Notes,
			}
			if err := s.occurrenceRepo.CreateInfectionTx(ctx, tx, infection); err != nil {
				return fmt.Errorf("failed to store infection: %w", err)
			}
		}

		for _, hosp := range req.Hospitalizations {
			hospitalization := &model.Hospitalization{
				PatientID:     patientID,
				Reason:        hosp.Reason,
				AdmissionDate: hosp.AdmissionDate,
				DischargeDate: hosp.DischargeDate,
				ICUAdmission:  hosp.ICUAdmission,
			}
			if err := s.occurrenceRepo.CreateHospitalizationTx(ctx, tx, hospitalization); err != nil {
				return fmt.Errorf("failed to store hospitalization: %w", err)
			}
		}

		if req.FamilyHistory != nil {
			history := &model.FamilyHistory{
				PatientID:               patientID,
				ImmuneDeficiencyHistory: req.FamilyHistory.ImmuneDeficiencyHistory,
				EarlyInfantDeaths:       req.FamilyHistory.EarlyInfantDeaths,
				AffectedRelatives:       req.FamilyHistory.AffectedRelatives,
				ConsanguinityDegree:     req.FamilyHistory.ConsanguinityDegree,
				Notes:                   req.FamilyHistory.Notes,
			}
			if err := s.familyRepo.UpsertTx(ctx, tx, history); err != nil {
				return fmt.Errorf("failed to save family history: %w", err)
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	submission := &Submission{ClinicalFeature: feature}
	result, err := s.AssessRisk(ctx, patientID)
	if err != nil {
		s.logger.Error(err, "assessment after clinical submission failed")
		return submission, nil
	}
	submission.Assessment = result.Assessment
	submission.Degraded = result.Degraded
	return submission, nil
}

// AssessRisk runs the rule scorer over the latest lab panel, asks the
// predictor for a probability and persists the composed result. When the
// predictor is unavailable the assessment completes rule-based only.
func (s *service) AssessRisk(ctx context.Context, patientID uuid.UUID) (*Result, error) {
	patient, err := s.patientRepo.Get(ctx, patientID)
	if err != nil {
		return nil, err
	}

	panel, err := s.labRepo.LatestPanel(ctx, patientID)
	if err != nil {
		return nil, fmt.Errorf("failed to load lab panel: %w", err)
	}
	if panel == nil {
		panel = &model.LabPanel{}
	}
	ruleScore := riskscore.RuleScore(panel)

	features, err := s.buildFeatures(ctx, patient)
	if err != nil {
		return nil, err
	}

	var mlScore *float64
	var mlPrediction *int
	degraded := false

	prediction, err := s.ml.Predict(ctx, features)
	switch {
	case err == nil:
		mlScore = prediction.Probability
		mlPrediction = &prediction.Prediction
	case errors.Is(err, mlclient.ErrUnavailable):
		degraded = true
		s.metrics.AssessmentDegrade.Inc()
		s.logger.Warn("predictor unavailable, assessment is rule-based only")
	default:
		return nil, fmt.Errorf("prediction failed: %w", err)
	}

	// Without a probability the composed banding would understate the rule
	// signal (a rule-High of 6 lands in the composed Medium band), so the
	// rule banding stands on its own.
	level := riskscore.Categorize(ruleScore)
	if mlScore != nil {
		level = riskscore.Compose(ruleScore, mlScore)
	}
	result := &model.RiskAssessment{
		PatientID:       patientID,
		RuleBasedScore:  ruleScore,
		MLScore:         mlScore,
		MLPrediction:    mlPrediction,
		FinalRiskLevel:  level,
		Recommendations: riskscore.Recommendations(level),
	}

	err = s.runTx(ctx, "risk_assessment", func(tx *sqlx.Tx) error {
		if err := s.riskRepo.CreateTx(ctx, tx, result); err != nil {
			return fmt.Errorf("failed to store assessment: %w", err)
		}
		return s.patientRepo.UpdateRiskSnapshot(ctx, tx, patientID, ruleScore, mlScore, level)
	})
	if err != nil {
		return nil, err
	}

	s.metrics.AssessmentsTotal.WithLabelValues(level).Inc()

	if level == model.RiskLevelHigh {
		s.notifyHighRisk(ctx, patient)
	}

	return &Result{Assessment: result, Degraded: degraded}, nil
}

func (s *service) ListAssessments(ctx context.Context, patientID uuid.UUID) ([]*model.RiskAssessment, error) {
	return s.riskRepo.ListByPatient(ctx, patientID)
}

func (s *service) buildFeatures(ctx context.Context, patient *model.Patient) (*model.MLFeatures, error) {
	clinical, err := s.clinicalRepo.Latest(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load clinical features: %w", err)
	}
	family, err := s.familyRepo.GetByPatient(ctx, patient.ID)
	if err != nil {
		if !isNotFound(err) {
			return nil, fmt.Errorf("failed to load family history: %w", err)
		}
		family = nil
	}
	infections, err := s.occurrenceRepo.ListInfections(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load infections: %w", err)
	}
	hospitalizations, err := s.occurrenceRepo.ListHospitalizations(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load hospitalizations: %w", err)
	}
	vaccinations, err := s.vaccinationRepo.ListByPatient(ctx, patient.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to load vaccinations: %w", err)
	}

	return riskscore.BuildFeatures(patient, clinical, family, infections, hospitalizations, vaccinations), nil
}

func (s *service) runTx(ctx context.Context, operation string, fn func(*sqlx.Tx) error) error {
	start := time.Now()
	err := s.tx.WithTx(ctx, fn)

	status := "ok"
	if err != nil {
		status = "error"
	}
	s.metrics.DatabaseOperations.WithLabelValues(operation, status).Inc()
	s.metrics.DatabaseLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())

	return err
}

func isNotFound(err error) bool {
	var appErr *apperrors.AppError
	return errors.As(err, &appErr) && appErr.Code == apperrors.ErrNotFound
}

func (s *service) notifyHighRisk(ctx context.Context, patient *model.Patient) {
	if s.notifier == nil {
		return
	}
	_, err := s.notifier.Create(ctx, &model.CreateNotificationRequest{
		PatientID: &patient.ID,
		Level:     model.NotificationAlert,
		Title:     "High risk assessment",
		Message:   fmt.Sprintf("Patient %s %s (file %s) scored High on the latest risk assessment", patient.FirstName, patient.LastName, patient.FileNumber),
	})
	if err != nil {
		s.logger.Error(err, "failed to create high-risk notification")
	}
}
