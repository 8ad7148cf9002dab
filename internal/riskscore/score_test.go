package riskscore

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
)

func f(v float64) *float64 { return &v }

func TestRuleScoreSumsContributions(t *testing.T) {
	tests := []struct {
		name  string
		panel model.LabPanel
		score int
		level string
	}{
		{
			name:  "empty panel scores zero",
			panel: model.LabPanel{},
			score: 0,
			level: model.RiskLevelLow,
		},
		{
			name:  "low neutrophils lymphocytes and IgG",
			panel: model.LabPanel{Neutrophils: f(1200), Lymphocytes: f(900), IgG: f(500)},
			score: 7,
			level: model.RiskLevelHigh,
		},
		{
			name:  "all thresholds tripped",
			panel: model.LabPanel{Neutrophils: f(100), Lymphocytes: f(100), IgG: f(100), IgA: f(10), IgM: f(10), IgE: f(500)},
			score: 11,
			level: model.RiskLevelHigh,
		},
		{
			name:  "normal values score zero",
			panel: model.LabPanel{Neutrophils: f(3000), Lymphocytes: f(2500), IgG: f(900), IgA: f(120), IgM: f(80), IgE: f(50)},
			score: 0,
			level: model.RiskLevelLow,
		},
		{
			name:  "boundary values are not low",
			panel: model.LabPanel{Neutrophils: f(1500), Lymphocytes: f(1000), IgG: f(600), IgA: f(50), IgM: f(40), IgE: f(200)},
			score: 0,
			level: model.RiskLevelLow,
		},
		{
			name:  "single IgA deficit",
			panel: model.LabPanel{IgA: f(30)},
			score: 1,
			level: model.RiskLevelLow,
		},
		{
			name:  "medium band",
			panel: model.LabPanel{Lymphocytes: f(800)},
			score: 3,
			level: model.RiskLevelMedium,
		},
		{
			name:  "missing value is not treated as normal or abnormal",
			panel: model.LabPanel{IgE: f(300), IgM: f(35)},
			score: 3,
			level: model.RiskLevelMedium,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			score := RuleScore(&tt.panel)
			assert.Equal(t, tt.score, score)
			assert.Equal(t, tt.level, Categorize(score))
		})
	}
}

func TestComposeTakesSeverestBand(t *testing.T) {
	tests := []struct {
		name  string
		rule  int
		prob  *float64
		level string
	}{
		{"both quiet", 2, f(0.1), model.RiskLevelLow},
		{"rule alone high", 7, f(0.1), model.RiskLevelHigh},
		{"probability alone high", 1, f(0.75), model.RiskLevelHigh},
		{"rule alone medium", 4, f(0.1), model.RiskLevelMedium},
		{"probability alone medium", 1, f(0.45), model.RiskLevelMedium},
		{"nil probability degrades to rule only", 5, nil, model.RiskLevelMedium},
		{"nil probability low rule", 3, nil, model.RiskLevelLow},
		{"exact high probability boundary", 0, f(0.7), model.RiskLevelHigh},
		{"exact medium rule boundary", 4, nil, model.RiskLevelMedium},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.level, Compose(tt.rule, tt.prob))
		})
	}
}

func TestRecommendationsPerLevel(t *testing.T) {
	assert.NotEmpty(t, Recommendations(model.RiskLevelHigh))
	assert.NotEmpty(t, Recommendations(model.RiskLevelMedium))
	assert.NotEmpty(t, Recommendations(model.RiskLevelLow))
	assert.Contains(t, Recommendations(model.RiskLevelHigh)[0], "immunology")
}

func TestBuildFeatures(t *testing.T) {
	age := 18
	weight := 3.2
	gest := 38
	cord := 12
	diarrhea := 21
	severity := "severe"

	patient := &model.Patient{
		AgeMonths:             &age,
		Gender:                model.GenderMale,
		ParentalConsanguinity: true,
		BirthWeightKg:         &weight,
		GestationalAgeWeeks:   &gest,
		CordFallDay:           &cord,
	}
	clinical := &model.ClinicalFeature{
		GrowthFailure:        true,
		OralThrush:           true,
		DiarrheaDurationDays: &diarrhea,
	}
	family := &model.FamilyHistory{ImmuneDeficiencyHistory: true, EarlyInfantDeaths: 2}
	infections := []*model.Infection{
		{InfectionType: "pneumonia", Severity: &severity, TreatedWithIV: true},
		{InfectionType: "otitis"},
	}
	hospitalizations := []*model.Hospitalization{{Reason: "pneumonia", ICUAdmission: true}}
	vaccinations := []*model.Vaccination{{Vaccine: model.VaccineBCG, DoseNumber: 1}}

	got := BuildFeatures(patient, clinical, family, infections, hospitalizations, vaccinations)

	assert.Equal(t, 18, got.AgeMonths)
	assert.Equal(t, 1, got.Gender)
	assert.Equal(t, 1, got.ParentalConsanguinity)
	assert.Equal(t, 1, got.FamilyImmuneDeficiency)
	assert.Equal(t, 2, got.EarlyInfantDeaths)
	assert.Equal(t, 1, got.GrowthFailure)
	assert.Equal(t, 1, got.OralThrush)
	assert.Equal(t, 1, got.ChronicDiarrhea)
	assert.Equal(t, 2, got.InfectionCount)
	assert.Equal(t, 1, got.SevereInfectionCount)
	assert.Equal(t, 1, got.IVAntibioticHistory)
	assert.Equal(t, 1, got.HospitalizationCount)
	assert.Equal(t, 1, got.ICUAdmission)
	assert.Equal(t, 1, got.BCGVaccinated)
	assert.Equal(t, 3.2, got.BirthWeightKg)
	assert.Equal(t, 38, got.GestationalAgeWeeks)
	assert.Equal(t, 12, got.CordFallDay)
}
