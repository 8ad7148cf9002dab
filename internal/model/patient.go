package model

import (
	"time"
)

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
)

// Patient is the root clinical record. The latest risk scores are denormalized
// onto the row; the full history lives in risk_assessments.
type Patient struct {
	Base
	FileNumber            string     `db:"file_number" json:"file_number"`
	FirstName             string     `db:"first_name" json:"first_name"`
	LastName              string     `db:"last_name" json:"last_name"`
	BirthDate             *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	AgeMonths             *int       `db:"age_months" json:"age_months,omitempty"`
	Gender                Gender     `db:"gender" json:"gender"`
	Ethnicity             *string    `db:"ethnicity" json:"ethnicity,omitempty"`
	HeightCm              *float64   `db:"height_cm" json:"height_cm,omitempty"`
	WeightKg              *float64   `db:"weight_kg" json:"weight_kg,omitempty"`
	BirthWeightKg         *float64   `db:"birth_weight_kg" json:"birth_weight_kg,omitempty"`
	GestationalAgeWeeks   *int       `db:"gestational_age_weeks" json:"gestational_age_weeks,omitempty"`
	CordFallDay           *int       `db:"cord_fall_day" json:"cord_fall_day,omitempty"`
	ParentalConsanguinity bool       `db:"parental_consanguinity" json:"parental_consanguinity"`
	HasImmuneDeficiency   *bool      `db:"has_immune_deficiency" json:"has_immune_deficiency,omitempty"`
	DiagnosisType         *string    `db:"diagnosis_type" json:"diagnosis_type,omitempty"`
	DiagnosisDate         *time.Time `db:"diagnosis_date" json:"diagnosis_date,omitempty"`

	// Denormalized latest risk snapshot
	RuleBasedScore *int     `db:"rule_based_score" json:"rule_based_score,omitempty"`
	MLScore        *float64 `db:"ml_score" json:"ml_score,omitempty"`
	FinalRiskLevel *string  `db:"final_risk_level" json:"final_risk_level,omitempty"`
}

// AgeInMonths resolves the patient age from the explicit field or birth date.
func (p *Patient) AgeInMonths(now time.Time) int {
	if p.AgeMonths != nil {
		return *p.AgeMonths
	}
	if p.BirthDate == nil {
		return 0
	}
	months := int(now.Sub(*p.BirthDate).Hours() / (24 * 30.44))
	if months < 0 {
		return 0
	}
	return months
}

type CreatePatientRequest struct {
	FileNumber            string     `json:"file_number" binding:"required,notblank"`
	FirstName             string     `json:"first_name" binding:"required,notblank"`
	LastName              string     `json:"last_name" binding:"required,notblank"`
	BirthDate             *time.Time `json:"birth_date"`
	AgeMonths             *int       `json:"age_months" binding:"omitempty,min=0"`
	Gender                Gender     `json:"gender" binding:"required,oneof=male female"`
	Ethnicity             *string    `json:"ethnicity"`
	HeightCm              *float64   `json:"height_cm" binding:"omitempty,gt=0"`
	WeightKg              *float64   `json:"weight_kg" binding:"omitempty,gt=0"`
	BirthWeightKg         *float64   `json:"birth_weight_kg" binding:"omitempty,gt=0"`
	GestationalAgeWeeks   *int       `json:"gestational_age_weeks" binding:"omitempty,min=20,max=45"`
	CordFallDay           *int       `json:"cord_fall_day" binding:"omitempty,min=0"`
	ParentalConsanguinity bool       `json:"parental_consanguinity"`
	HasImmuneDeficiency   *bool      `json:"has_immune_deficiency"`
	DiagnosisType         *string    `json:"diagnosis_type"`
	DiagnosisDate         *time.Time `json:"diagnosis_date"`
}

type UpdatePatientRequest struct {
	FileNumber            *string    `json:"file_number"`
	FirstName             *string    `json:"first_name"`
	LastName              *string    `json:"last_name"`
	BirthDate             *time.Time `json:"birth_date"`
	AgeMonths             *int       `json:"age_months" binding:"omitempty,min=0"`
	Gender                *Gender    `json:"gender" binding:"omitempty,oneof=male female"`
	Ethnicity             *string    `json:"ethnicity"`
	HeightCm              *float64   `json:"height_cm" binding:"omitempty,gt=0"`
	WeightKg              *float64   `json:"weight_kg" binding:"omitempty,gt=0"`
	BirthWeightKg         *float64   `json:"birth_weight_kg" binding:"omitempty,gt=0"`
	GestationalAgeWeeks   *int       `json:"gestational_age_weeks" binding:"omitempty,min=20,max=45"`
	CordFallDay           *int       `json:"cord_fall_day" binding:"omitempty,min=0"`
	ParentalConsanguinity *bool      `json:"parental_consanguinity"`
	HasImmuneDeficiency   *bool      `json:"has_immune_deficiency"`
	DiagnosisType         *string    `json:"diagnosis_type"`
	DiagnosisDate         *time.Time `json:"diagnosis_date"`
}

type PatientFilters struct {
	SearchTerm string `form:"search"`
	RiskLevel  string `form:"risk_level"`
	Pagination
}
