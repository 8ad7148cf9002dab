package model

import (
	"time"

	"github.com/google/uuid"
)

// Infection is an occurrence record created during clinical assessment
// submission.
type Infection struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	InfectionType string     `db:"infection_type" json:"infection_type"`
	Severity      *string    `db:"severity" json:"severity,omitempty"`
	OnsetDate     *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	TreatedWithIV bool       `db:"treated_with_iv" json:"treated_with_iv"`
	Notes         *string    `db:"notes" json:"notes,omitempty"`
}

type Hospitalization struct {
	Base
	PatientID     uuid.UUID  `db:"patient_id" json:"patient_id"`
	Reason        string     `db:"reason" json:"reason"`
	AdmissionDate *time.Time `db:"admission_date" json:"admission_date,omitempty"`
	DischargeDate *time.Time `db:"discharge_date" json:"discharge_date,omitempty"`
	ICUAdmission  bool       `db:"icu_admission" json:"icu_admission"`
}

type CreateInfectionRequest struct {
	InfectionType string     `json:"infection_type" binding:"required"`
	Severity      *string    `json:"severity"`
	OnsetDate     *time.Time `json:"onset_date"`
	TreatedWithIV bool       `json:"treated_with_iv"`
	Notes         *string    `json:"notes"`
}

type CreateHospitalizationRequest struct {
	Reason        string     `json:"reason" binding:"required"`
	AdmissionDate *time.Time `json:"admission_date"`
	DischargeDate *time.Time `json:"discharge_date"`
	ICUAdmission  bool       `json:"icu_admission"`
}

// ClinicalAssessmentRequest is the composite submission: clinical features,
// occurrence records and the family history update are written atomically.
type ClinicalAssessmentRequest struct {
	Clinical         CreateClinicalFeatureRequest   `json:"clinical" binding:"required"`
	Infections       []CreateInfectionRequest       `json:"infections" binding:"omitempty,dive"`
	Hospitalizations []CreateHospitalizationRequest `json:"hospitalizations" binding:"omitempty,dive"`
	FamilyHistory    *UpsertFamilyHistoryRequest    `json:"family_history"`
}
