package model

import (
	"time"

	"github.com/google/uuid"
)

// ClinicalFeature records per-visit findings. Multiple rows per patient form a
// time series; rows are never edited after creation.
type ClinicalFeature struct {
	Base
	PatientID              uuid.UUID `db:"patient_id" json:"patient_id"`
	VisitDate              time.Time `db:"visit_date" json:"visit_date"`
	GrowthFailure          bool      `db:"growth_failure" json:"growth_failure"`
	SkinIssues             bool      `db:"skin_issues" json:"skin_issues"`
	DiarrheaDurationDays   *int      `db:"diarrhea_duration_days" json:"diarrhea_duration_days,omitempty"`
	BCGLymphadenopathy     bool      `db:"bcg_lymphadenopathy" json:"bcg_lymphadenopathy"`
	OralThrush             bool      `db:"oral_thrush" json:"oral_thrush"`
	RecurrentAbscesses     bool      `db:"recurrent_abscesses" json:"recurrent_abscesses"`
	CongenitalHeartDisease bool      `db:"congenital_heart_disease" json:"congenital_heart_disease"`
	Notes                  *string   `db:"notes" json:"notes,omitempty"`
}

type CreateClinicalFeatureRequest struct {
	VisitDate              *time.Time `json:"visit_date"`
	GrowthFailure          bool       `json:"growth_failure"`
	SkinIssues             bool       `json:"skin_issues"`
	DiarrheaDurationDays   *int       `json:"diarrhea_duration_days" binding:"omitempty,min=0"`
	BCGLymphadenopathy     bool       `json:"bcg_lymphadenopathy"`
	OralThrush             bool       `json:"oral_thrush"`
	RecurrentAbscesses     bool       `json:"recurrent_abscesses"`
	CongenitalHeartDisease bool       `json:"congenital_heart_disease"`
	Notes                  *string    `json:"notes"`
}
