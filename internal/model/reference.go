package model

// AntiHbsReference maps an age range plus booster flag to the expected
// antibody titer band. Read-mostly reference data.
type AntiHbsReference struct {
	Base
	AgeMinMonths int     `db:"age_min_months" json:"age_min_months"`
	AgeMaxMonths int     `db:"age_max_months" json:"age_max_months"`
	Booster      bool    `db:"booster" json:"booster"`
	MinTiter     float64 `db:"min_titer" json:"min_titer"`
	MaxTiter     float64 `db:"max_titer" json:"max_titer"`
	Unit         string  `db:"unit" json:"unit"`
}

type UpsertAntiHbsReferenceRequest struct {
	AgeMinMonths int     `json:"age_min_months" binding:"min=0"`
	AgeMaxMonths int     `json:"age_max_months" binding:"required,gtfield=AgeMinMonths"`
	Booster      bool    `json:"booster"`
	MinTiter     float64 `json:"min_titer" binding:"min=0"`
	MaxTiter     float64 `json:"max_titer" binding:"required,gtfield=MinTiter"`
	Unit         string  `json:"unit" binding:"required"`
}
