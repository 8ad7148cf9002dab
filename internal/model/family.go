package model

import (
	"github.com/google/uuid"
)

// FamilyHistory keeps a single current record per patient; writes upsert by
// patient id.
type FamilyHistory struct {
	Base
	PatientID              uuid.UUID `db:"patient_id" json:"patient_id"`
	ImmuneDeficiencyHistory bool     `db:"immune_deficiency_history" json:"immune_deficiency_history"`
	EarlyInfantDeaths      int       `db:"early_infant_deaths" json:"early_infant_deaths"`
	AffectedRelatives      *string   `db:"affected_relatives" json:"affected_relatives,omitempty"`
	ConsanguinityDegree    *string   `db:"consanguinity_degree" json:"consanguinity_degree,omitempty"`
	Notes                  *string   `db:"notes" json:"notes,omitempty"`
}

type UpsertFamilyHistoryRequest struct {
	ImmuneDeficiencyHistory bool    `json:"immune_deficiency_history"`
	EarlyInfantDeaths       int     `json:"early_infant_deaths" binding:"omitempty,min=0"`
	AffectedRelatives       *string `json:"affected_relatives"`
	ConsanguinityDegree     *string `json:"consanguinity_degree"`
	Notes                   *string `json:"notes"`
}
