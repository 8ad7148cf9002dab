package model

import (
	"github.com/google/uuid"
	"github.com/lib/pq"
)

// Risk levels shared by the rule scorer and the composed assessment.
const (
	RiskLevelLow    = "Low"
	RiskLevelMedium = "Medium"
	RiskLevelHigh   = "High"
)

// RiskAssessment is an immutable historical snapshot; the newest one is also
// denormalized onto the patient row.
type RiskAssessment struct {
	Base
	PatientID       uuid.UUID      `db:"patient_id" json:"patient_id"`
	RuleBasedScore  int            `db:"rule_based_score" json:"rule_based_score"`
	MLScore         *float64       `db:"ml_score" json:"ml_score,omitempty"`
	MLPrediction    *int           `db:"ml_prediction" json:"ml_prediction,omitempty"`
	FinalRiskLevel  string         `db:"final_risk_level" json:"final_risk_level"`
	Recommendations pq.StringArray `db:"recommendations" json:"recommendations"`
}

// MLFeatures is the fixed-shape feature record the external predictor expects.
type MLFeatures struct {
	AgeMonths              int     `json:"age_months" db:"age_months"`
	Gender                 int     `json:"gender" db:"gender"`
	ParentalConsanguinity  int     `json:"parental_consanguinity" db:"parental_consanguinity"`
	FamilyImmuneDeficiency int     `json:"family_immune_deficiency" db:"family_immune_deficiency"`
	EarlyInfantDeaths      int     `json:"early_infant_deaths" db:"early_infant_deaths"`
	GrowthFailure          int     `json:"growth_failure" db:"growth_failure"`
	SkinIssues             int     `json:"skin_issues" db:"skin_issues"`
	ChronicDiarrhea        int     `json:"chronic_diarrhea" db:"chronic_diarrhea"`
	BCGLymphadenopathy     int     `json:"bcg_lymphadenopathy" db:"bcg_lymphadenopathy"`
	OralThrush             int     `json:"oral_thrush" db:"oral_thrush"`
	RecurrentAbscesses     int     `json:"recurrent_abscesses" db:"recurrent_abscesses"`
	CongenitalHeartDisease int     `json:"congenital_heart_disease" db:"congenital_heart_disease"`
	InfectionCount         int     `json:"infection_count" db:"infection_count"`
	SevereInfectionCount   int     `json:"severe_infection_count" db:"severe_infection_count"`
	IVAntibioticHistory    int     `json:"iv_antibiotic_history" db:"iv_antibiotic_history"`
	HospitalizationCount   int     `json:"hospitalization_count" db:"hospitalization_count"`
	ICUAdmission           int     `json:"icu_admission" db:"icu_admission"`
	BCGVaccinated          int     `json:"bcg_vaccinated" db:"bcg_vaccinated"`
	BirthWeightKg          float64 `json:"birth_weight_kg" db:"birth_weight_kg"`
	GestationalAgeWeeks    int     `json:"gestational_age_weeks" db:"gestational_age_weeks"`
	CordFallDay            int     `json:"cord_fall_day" db:"cord_fall_day"`
}

// MLPrediction is the external predictor's response.
type MLPrediction struct {
	Prediction  int      `json:"prediction" db:"prediction"`
	Probability *float64 `json:"probability"`
	RiskLevel   string   `json:"risk_level"`
	Message     string   `json:"message"`
}
