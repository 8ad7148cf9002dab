package patient

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/internal/repository"
	"github.com/bbabur/immune-risk-next-sub001/internal/sanitize"
	apperrors "github.com/bbabur/immune-risk-next-sub001/pkg/errors"
)

type PatientService interface {
	CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error)
	GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error)
	UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error)
	DeletePatient(ctx context.Context, id uuid.UUID) error
	ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error)

	AddClinicalFeature(ctx context.Context, patientID uuid.UUID, req *model.CreateClinicalFeatureRequest) (*model.ClinicalFeature, error)
	ListClinicalFeatures(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalFeature, error)

	AddLabResults(ctx context.Context, patientID uuid.UUID, req *model.CreateLabResultsRequest) ([]*model.LabResult, error)
	ListLabResults(ctx context.Context, patientID uuid.UUID) ([]*model.LabResult, error)

	UpsertFamilyHistory(ctx context.Context, patientID uuid.UUID, req *model.UpsertFamilyHistoryRequest) (*model.FamilyHistory, error)
	GetFamilyHistory(ctx context.Context, patientID uuid.UUID) (*model.FamilyHistory, error)

	AddVaccination(ctx context.Context, patientID uuid.UUID, req *model.CreateVaccinationRequest) (*model.Vaccination, error)
	DeleteVaccination(ctx context.Context, id uuid.UUID) error
	ListVaccinations(ctx context.Context, patientID uuid.UUID) ([]*model.Vaccination, error)

	ListInfections(ctx context.Context, patientID uuid.UUID) ([]*model.Infection, error)
	ListHospitalizations(ctx context.Context, patientID uuid.UUID) ([]*model.Hospitalization, error)
}

type Service struct {
	repo            repository.PatientRepository
	clinicalRepo    repository.ClinicalFeatureRepository
	labRepo         repository.LabResultRepository
	familyRepo      repository.FamilyHistoryRepository
	vaccinationRepo repository.VaccinationRepository
	occurrenceRepo  repository.OccurrenceRepository
}

func NewService(
	repo repository.PatientRepository,
	clinicalRepo repository.ClinicalFeatureRepository,
	labRepo repository.LabResultRepository,
	familyRepo repository.FamilyHistoryRepository,
	vaccinationRepo repository.VaccinationRepository,
	occurrenceRepo repository.OccurrenceRepository,
) *Service {
	return &Service{
		repo:            repo,
		clinicalRepo:    clinicalRepo,
		labRepo:         labRepo,
		familyRepo:      familyRepo,
		vaccinationRepo: vaccinationRepo,
		occurrenceRepo:  occurrenceRepo,
	}
}

func (s *Service) CreatePatient(ctx context.Context, req *model.CreatePatientRequest) (*model.Patient, error) {
	if req.BirthDate == nil && req.AgeMonths == nil {
		return nil, apperrors.BadRequest("either birth_date or age_months is required", nil)
	}

	patient := &model.Patient{
		FileNumber:            sanitize.String(req.FileNumber),
		FirstName:             sanitize.String(req.FirstName),
		LastName:              sanitize.String(req.LastName),
		BirthDate:             req.BirthDate,
		AgeMonths:             req.AgeMonths,
		Gender:                req.Gender,
		Ethnicity:             req.Ethnicity,
		HeightCm:              req.HeightCm,
		WeightKg:              req.WeightKg,
		BirthWeightKg:         req.BirthWeightKg,
		GestationalAgeWeeks:   req.GestationalAgeWeeks,
		CordFallDay:           req.CordFallDay,
		ParentalConsanguinity: req.ParentalConsanguinity,
		HasImmuneDeficiency:   req.HasImmuneDeficiency,
		DiagnosisType:         req.DiagnosisType,
		DiagnosisDate:         req.DiagnosisDate,
	}
	patient.ID = uuid.New()

	if err := s.repo.Create(ctx, patient); err != nil {
		return nil, fmt.Errorf("failed to create patient: %w", err)
	}
	return patient, nil
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) UpdatePatient(ctx context.Context, id uuid.UUID, req *model.UpdatePatientRequest) (*model.Patient, error) {
	patient, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.FileNumber != nil {
		patient.FileNumber = sanitize.String(*req.FileNumber)
	}
	if req.FirstName != nil {
		patient.FirstName = sanitize.String(*req.FirstName)
	}
	if req.LastName != nil {
		patient.LastName = sanitize.String(*req.LastName)
	}
	if req.BirthDate != nil {
		patient.BirthDate = req.BirthDate
	}
	if req.AgeMonths != nil {
		patient.AgeMonths = req.AgeMonths
	}
	if req.Gender != nil {
		patient.Gender = *req.Gender
	}
	if req.Ethnicity != nil {
		patient.Ethnicity = req.Ethnicity
	}
	if req.HeightCm != nil {
		patient.HeightCm = req.HeightCm
	}
	if req.WeightKg != nil {
		patient.WeightKg = req.WeightKg
	}
	if req.BirthWeightKg != nil {
		patient.BirthWeightKg = req.BirthWeightKg
	}
	if req.GestationalAgeWeeks != nil {
		patient.GestationalAgeWeeks = req.GestationalAgeWeeks
	}
	if req.CordFallDay != nil {
		patient.CordFallDay = req.CordFallDay
	}
	if req.ParentalConsanguinity != nil {
		patient.ParentalConsanguinity = *req.ParentalConsanguinity
	}
	if req.HasImmuneDeficiency != nil {
		patient.HasImmuneDeficiency = req.HasImmuneDeficiency
	}
	if req.DiagnosisType != nil {
		patient.DiagnosisType = req.DiagnosisType
	}
	if req.DiagnosisDate != nil {
		patient.DiagnosisDate = req.DiagnosisDate
	}

	if err := s.repo.Update(ctx, patient); err != nil {
		return nil, err
	}
	return patient, nil
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	if filters != nil {
		filters.SearchTerm = sanitize.String(filters.SearchTerm)
	}
	return s.repo.List(ctx, filters)
}

func (s *Service) AddClinicalFeature(ctx context.Context, patientID uuid.UUID, req *model.CreateClinicalFeatureRequest) (*model.ClinicalFeature, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	visitDate := time.Now()
	if req.VisitDate != nil {
		visitDate = *req.VisitDate
	}

	feature := &model.ClinicalFeature{
		PatientID:              patientID,
		VisitDate:              visitDate,
		GrowthFailure:          req.GrowthFailure,
		SkinIssues:             req.SkinIssues,
		DiarrheaDurationDays:   req.DiarrheaDurationDays,
		BCGLymphadenopathy:     req.BCGLymphadenopathy,
		OralThrush:             req.OralThrush,
		RecurrentAbscesses:     req.RecurrentAbscesses,
		CongenitalHeartDisease: req.CongenitalHeartDisease,
		Notes:                  req.Notes,
	}
	if err := s.clinicalRepo.Create(ctx, feature); err != nil {
		return nil, fmt.Errorf("failed to create clinical feature: %w", err)
	}
	return feature, nil
}

func (s *Service) ListClinicalFeatures(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalFeature, error) {
	return s.clinicalRepo.ListByPatient(ctx, patientID)
}

// AddLabResults expands the panel request into individual rows and writes
// them in one batched insert.
func (s *Service) AddLabResults(ctx context.Context, patientID uuid.UUID, req *model.CreateLabResultsRequest) ([]*model.LabResult, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	testDate := time.Now()
	if req.TestDate != nil {
		testDate = *req.TestDate
	}

	rows := req.Rows(patientID, testDate)
	if len(rows) == 0 {
		return nil, apperrors.BadRequest("at least one lab value is required", nil)
	}

	if err := s.labRepo.CreateBatch(ctx, rows); err != nil {
		return nil, fmt.Errorf("failed to store lab results: %w", err)
	}
	return rows, nil
}

func (s *Service) ListLabResults(ctx context.Context, patientID uuid.UUID) ([]*model.LabResult, error) {
	return s.labRepo.ListByPatient(ctx, patientID)
}

// UpsertFamilyHistory keeps one record per patient; repeated submissions
// overwrite the previous one.
func (s *Service) UpsertFamilyHistory(ctx context.Context, patientID uuid.UUID, req *model.UpsertFamilyHistoryRequest) (*model.FamilyHistory, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	history := &model.FamilyHistory{
		PatientID:               patientID,
		ImmuneDeficiencyHistory: req.ImmuneDeficiencyHistory,
		EarlyInfantDeaths:       req.EarlyInfantDeaths,
		AffectedRelatives:       req.AffectedRelatives,
		ConsanguinityDegree:     req.ConsanguinityDegree,
		Notes:                   req.Notes,
	}
	if err := s.familyRepo.Upsert(ctx, history); err != nil {
		return nil, fmt.Errorf("failed to save family history: %w", err)
	}
	return history, nil
}

func (s *Service) GetFamilyHistory(ctx context.Context, patientID uuid.UUID) (*model.FamilyHistory, error) {
	return s.familyRepo.GetByPatient(ctx, patientID)
}

func (s *Service) AddVaccination(ctx context.Context, patientID uuid.UUID, req *model.CreateVaccinationRequest) (*model.Vaccination, error) {
	if _, err := s.repo.Get(ctx, patientID); err != nil {
		return nil, err
	}

	vaccination := &model.Vaccination{
		PatientID:  patientID,
		Vaccine:    sanitize.String(req.Vaccine),
		DoseNumber: req.DoseNumber,
		GivenAt:    req.GivenAt,
		Notes:      req.Notes,
	}
	if err := s.vaccinationRepo.Create(ctx, vaccination); err != nil {
		return nil, fmt.Errorf("failed to create vaccination: %w", err)
	}
	return vaccination, nil
}

func (s *Service) DeleteVaccination(ctx context.Context, id uuid.UUID) error {
	return s.vaccinationRepo.Delete(ctx, id)
}

func (s *Service) ListVaccinations(ctx context.Context, patientID uuid.UUID) ([]*model.Vaccination, error) {
	return s.vaccinationRepo.ListByPatient(ctx, patientID)
}

func (s *Service) ListInfections(ctx context.Context, patientID uuid.UUID) ([]*model.Infection, error) {
	return s.occurrenceRepo.ListInfections(ctx, patientID)
}

func (s *Service) ListHospitalizations(ctx context.Context, patientID uuid.UUID) ([]*model.Hospitalization, error) {
	return s.occurrenceRepo.ListHospitalizations(ctx, patientID)
}
