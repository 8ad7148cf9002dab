package model

import (
	"time"

	"github.com/google/uuid"
)

const VaccineBCG = "bcg"

type Vaccination struct {
	Base
	PatientID  uuid.UUID  `db:"patient_id" json:"patient_id"`
	Vaccine    string     `db:"vaccine" json:"vaccine"`
	DoseNumber int        `db:"dose_number" json:"dose_number"`
	GivenAt    *time.Time `db:"given_at" json:"given_at,omitempty"`
	Notes      *string    `db:"notes" json:"notes,omitempty"`
}

type CreateVaccinationRequest struct {
	Vaccine    string     `json:"vaccine" binding:"required"`
	DoseNumber int        `json:"dose_number" binding:"required,min=1"`
	GivenAt    *time.Time `json:"given_at"`
	Notes      *string    `json:"notes"`
}
