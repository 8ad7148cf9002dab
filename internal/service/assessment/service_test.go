package assessment

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
	"github.com/bbabur/immune-risk-next-sub001/pkg/logger"
	"github.com/bbabur/immune-risk-next-sub001/pkg/metrics"
	"github.com/bbabur/immune-risk-next-sub001/pkg/mlclient"
)

// fakeStore implements every repository interface the service touches. Tests
// set the fields they care about; the zero value behaves like an empty
// database with one patient.
type fakeStore struct {
	patient          *model.Patient
	panel            *model.LabPanel
	clinical         *model.ClinicalFeature
	infections       []*model.Infection
	hospitalizations []*model.Hospitalization

	savedAssessment  *model.RiskAssessment
	snapshotLevel    string
	snapshotRule     int
	txCalls          int
	clinicalCreated  int
	infectionsSaved  int
	hospsSaved       int
	familySaved      *model.FamilyHistory
}

func (f *fakeStore) WithTx(ctx context.Context, fn func(*sqlx.Tx) error) error {
	f.txCalls++
	return fn(nil)
}

func (f *fakeStore) Create(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakeStore) Get(ctx context.Context, id uuid.UUID) (*model.Patient, error) {
	return f.patient, nil
}
func (f *fakeStore) Update(ctx context.Context, p *model.Patient) error { return nil }
func (f *fakeStore) Delete(ctx context.Context, id uuid.UUID) error     { return nil }
func (f *fakeStore) List(ctx context.Context, filters *model.PatientFilters) ([]*model.Patient, error) {
	return nil, nil
}
func (f *fakeStore) UpdateRiskSnapshot(ctx context.Context, tx *sqlx.Tx, patientID uuid.UUID, ruleScore int, mlScore *float64, level string) error {
	f.snapshotRule = ruleScore
	f.snapshotLevel = level
	return nil
}

func (f *fakeStore) CreateFeature(ctx context.Context, feature *model.ClinicalFeature) error {
	return nil
}
func (f *fakeStore) CreateTx(ctx context.Context, tx *sqlx.Tx, feature *model.ClinicalFeature) error {
	f.clinicalCreated++
	return nil
}
func (f *fakeStore) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.ClinicalFeature, error) {
	return nil, nil
}
func (f *fakeStore) Latest(ctx context.Context, patientID uuid.UUID) (*model.ClinicalFeature, error) {
	return f.clinical, nil
}

type fakeClinicalRepo struct{ *fakeStore }

func (f fakeClinicalRepo) Create(ctx context.Context, feature *model.ClinicalFeature) error {
	return f.fakeStore.CreateFeature(ctx, feature)
}

type fakeLabRepo struct{ *fakeStore }

func (f fakeLabRepo) CreateBatch(ctx context.Context, results []*model.LabResult) error { return nil }
func (f fakeLabRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.LabResult, error) {
	return nil, nil
}
func (f fakeLabRepo) LatestPanel(ctx context.Context, patientID uuid.UUID) (*model.LabPanel, error) {
	return f.panel, nil
}

type fakeFamilyRepo struct{ *fakeStore }

func (f fakeFamilyRepo) Upsert(ctx context.Context, h *model.FamilyHistory) error { return nil }
func (f fakeFamilyRepo) UpsertTx(ctx context.Context, tx *sqlx.Tx, h *model.FamilyHistory) error {
	f.fakeStore.familySaved = h
	return nil
}
func (f fakeFamilyRepo) GetByPatient(ctx context.Context, patientID uuid.UUID) (*model.FamilyHistory, error) {
	return f.fakeStore.familySaved, nil
}

type fakeOccurrenceRepo struct{ *fakeStore }

func (f fakeOccurrenceRepo) CreateInfectionTx(ctx context.Context, tx *sqlx.Tx, i *model.Infection) error {
	f.fakeStore.infectionsSaved++
	return nil
}
func (f fakeOccurrenceRepo) CreateHospitalizationTx(ctx context.Context, tx *sqlx.Tx, h *model.Hospitalization) error {
	f.fakeStore.hospsSaved++
	return nil
}
func (f fakeOccurrenceRepo) ListInfections(ctx context.Context, patientID uuid.UUID) ([]*model.Infection, error) {
	return f.fakeStore.infections, nil
}
func (f fakeOccurrenceRepo) ListHospitalizations(ctx context.Context, patientID uuid.UUID) ([]*model.Hospitalization, error) {
	return f.fakeStore.hospitalizations, nil
}

type fakeVaccinationRepo struct{ *fakeStore }

func (f fakeVaccinationRepo) Create(ctx context.Context, v *model.Vaccination) error     { return nil }
func (f fakeVaccinationRepo) Delete(ctx context.Context, id uuid.UUID) error             { return nil }
func (f fakeVaccinationRepo) ListByPatient(ctx context.Context, id uuid.UUID) ([]*model.Vaccination, error) {
	return nil, nil
}

type fakeRiskRepo struct{ *fakeStore }

func (f fakeRiskRepo) CreateTx(ctx context.Context, tx *sqlx.Tx, a *model.RiskAssessment) error {
	f.fakeStore.savedAssessment = a
	return nil
}
func (f fakeRiskRepo) ListByPatient(ctx context.Context, patientID uuid.UUID) ([]*model.RiskAssessment, error) {
	return nil, nil
}

type fakeML struct {
	prediction *model.MLPrediction
	err        error
}

func (f *fakeML) Health(ctx context.Context) error { return f.err }
func (f *fakeML) Predict(ctx context.Context, features *model.MLFeatures) (*model.MLPrediction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.prediction, nil
}

type fakeNotifier struct {
	created []*model.CreateNotificationRequest
}

func (f *fakeNotifier) Create(ctx context.Context, req *model.CreateNotificationRequest) (*model.Notification, error) {
	f.created = append(f.created, req)
	return &model.Notification{}, nil
}
func (f *fakeNotifier) List(ctx context.Context, unreadOnly bool) ([]*model.Notification, error) {
	return nil, nil
}
func (f *fakeNotifier) MarkRead(ctx context.Context, id uuid.UUID) error { return nil }

var testMetrics = metrics.NewMetrics("assessment_test")

func newTestService(store *fakeStore, ml mlclient.Client, notifier *fakeNotifier) Service {
	log := logger.NewLogger(nil)
	return NewService(
		store,
		store,
		fakeClinicalRepo{store},
		fakeLabRepo{store},
		fakeFamilyRepo{store},
		fakeOccurrenceRepo{store},
		fakeVaccinationRepo{store},
		fakeRiskRepo{store},
		ml,
		notifier,
		testMetrics,
		log,
	)
}

func floatPtr(v float64) *float64 { return &v }

func testPatient() *model.Patient {
	age := 18
	p := &model.Patient{
		AgeMonths: &age,
		Gender:    model.GenderMale,
	}
	p.ID = uuid.New()
	p.FileNumber = "F-2001"
	p.FirstName = "Deniz"
	p.LastName = "Kaya"
	return p
}

func TestAssessRisk_ComposesRuleAndML(t *testing.T) {
	store := &fakeStore{
		patient: testPatient(),
		panel: &model.LabPanel{
			Neutrophils: floatPtr(1200),
			Lymphocytes: floatPtr(900),
			IgG:         floatPtr(500),
		},
	}
	ml := &fakeML{prediction: &model.MLPrediction{
		Prediction:  1,
		Probability: floatPtr(0.85),
		RiskLevel:   "High",
	}}
	notifier := &fakeNotifier{}
	svc := newTestService(store, ml, notifier)

	result, err := svc.AssessRisk(context.Background(), store.patient.ID)

	require.NoError(t, err)
	assert.False(t, result.Degraded)
	assert.Equal(t, 7, result.Assessment.RuleBasedScore)
	assert.Equal(t, model.RiskLevelHigh, result.Assessment.FinalRiskLevel)
	assert.Equal(t, 0.85, *result.Assessment.MLScore)
	assert.NotEmpty(t, result.Assessment.Recommendations)

	// history row and snapshot written in the same transaction
	assert.Equal(t, 1, store.txCalls)
	assert.NotNil(t, store.savedAssessment)
	assert.Equal(t, model.RiskLevelHigh, store.snapshotLevel)
	assert.Equal(t, 7, store.snapshotRule)

	// High result raises an alert
	require.Len(t, notifier.created, 1)
	assert.Equal(t, model.NotificationAlert, notifier.created[0].Level)
}

func TestAssessRisk_DegradesWhenPredictorDown(t *testing.T) {
	store := &fakeStore{
		patient: testPatient(),
		panel: &model.LabPanel{
			Neutrophils: floatPtr(1200),
			IgA:         floatPtr(30),
		},
	}
	ml := &fakeML{err: mlclient.ErrUnavailable}
	svc := newTestService(store, ml, &fakeNotifier{})

	result, err := svc.AssessRisk(context.Background(), store.patient.ID)

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Nil(t, result.Assessment.MLScore)
	assert.Equal(t, 3, result.Assessment.RuleBasedScore)
	// rule banding applies when the predictor did not contribute
	assert.Equal(t, model.RiskLevelMedium, result.Assessment.FinalRiskLevel)
	assert.Equal(t, 1, store.txCalls)
}

func TestAssessRisk_DegradedKeepsRuleBanding(t *testing.T) {
	// rule score 6: High under the rule banding, Medium under the composed
	// one. With the predictor down the rule banding must stand.
	store := &fakeStore{
		patient: testPatient(),
		panel: &model.LabPanel{
			Lymphocytes: floatPtr(900),
			IgA:         floatPtr(30),
			IgE:         floatPtr(250),
		},
	}
	svc := newTestService(store, &fakeML{err: mlclient.ErrUnavailable}, &fakeNotifier{})

	result, err := svc.AssessRisk(context.Background(), store.patient.ID)

	require.NoError(t, err)
	assert.True(t, result.Degraded)
	assert.Equal(t, 6, result.Assessment.RuleBasedScore)
	assert.Equal(t, model.RiskLevelHigh, result.Assessment.FinalRiskLevel)
	assert.Equal(t, model.RiskLevelHigh, store.snapshotLevel)
}

func TestAssessRisk_NoLabsScoresZero(t *testing.T) {
	store := &fakeStore{patient: testPatient()}
	ml := &fakeML{err: mlclient.ErrUnavailable}
	svc := newTestService(store, ml, &fakeNotifier{})

	result, err := svc.AssessRisk(context.Background(), store.patient.ID)

	require.NoError(t, err)
	assert.Equal(t, 0, result.Assessment.RuleBasedScore)
	assert.Equal(t, model.RiskLevelLow, result.Assessment.FinalRiskLevel)
}

func TestSubmitClinicalAssessment_WritesEverythingInOneTx(t *testing.T) {
	store := &fakeStore{patient: testPatient()}
	ml := &fakeML{prediction: &model.MLPrediction{Prediction: 0, Probability: floatPtr(0.1), RiskLevel: "Low"}}
	svc := newTestService(store, ml, &fakeNotifier{})

	visit := time.Now()
	req := &model.ClinicalAssessmentRequest{
		Clinical: model.CreateClinicalFeatureRequest{
			VisitDate:     &visit,
			GrowthFailure: true,
			OralThrush:    true,
		},
		Infections: []model.CreateInfectionRequest{
			{InfectionType: "pneumonia", TreatedWithIV: true},
			{InfectionType: "otitis media"},
		},
		Hospitalizations: []model.CreateHospitalizationRequest{
			{Reason: "pneumonia", ICUAdmission: true},
		},
		FamilyHistory: &model.UpsertFamilyHistoryRequest{
			ImmuneDeficiencyHistory: true,
			EarlyInfantDeaths:       1,
		},
	}

	submission, err := svc.SubmitClinicalAssessment(context.Background(), store.patient.ID, req)

	require.NoError(t, err)
	assert.True(t, submission.ClinicalFeature.GrowthFailure)
	// one tx for the submission, one for the triggered assessment
	assert.Equal(t, 2, store.txCalls)
	assert.Equal(t, 1, store.clinicalCreated)
	assert.Equal(t, 2, store.infectionsSaved)
	assert.Equal(t, 1, store.hospsSaved)
	require.NotNil(t, store.familySaved)
	assert.True(t, store.familySaved.ImmuneDeficiencyHistory)

	// submission triggers an assessment over the stored record
	require.NotNil(t, submission.Assessment)
	assert.False(t, submission.Degraded)
	assert.Equal(t, model.RiskLevelLow, submission.Assessment.FinalRiskLevel)
}
