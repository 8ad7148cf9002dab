package model

import (
	"time"

	"github.com/google/uuid"
)

// Names of the fixed assay panel. A lab submission inserts one row per assay
// present in the request, in a single batched statement.
const (
	AssayNeutrophils = "neutrophils"
	AssayLymphocytes = "lymphocytes"
	AssayIgG         = "igg"
	AssayIgA         = "iga"
	AssayIgM         = "igm"
	AssayIgE         = "ige"
)

type LabResult struct {
	Base
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	TestName  string    `db:"test_name" json:"test_name"`
	Value     float64   `db:"value" json:"value"`
	Unit      string    `db:"unit" json:"unit"`
	TestDate  time.Time `db:"test_date" json:"test_date"`
}

// LabPanel carries the optional values of the fixed panel plus free extras.
type LabPanel struct {
	Neutrophils *float64 `json:"neutrophils" binding:"omitempty,min=0"`
	Lymphocytes *float64 `json:"lymphocytes" binding:"omitempty,min=0"`
	IgG         *float64 `json:"igg" binding:"omitempty,min=0"`
	IgA         *float64 `json:"iga" binding:"omitempty,min=0"`
	IgM         *float64 `json:"igm" binding:"omitempty,min=0"`
	IgE         *float64 `json:"ige" binding:"omitempty,min=0"`
}

type ExtraLabValue struct {
	TestName string  `json:"test_name" binding:"required"`
	Value    float64 `json:"value"`
	Unit     string  `json:"unit"`
}

type CreateLabResultsRequest struct {
	LabPanel
	TestDate *time.Time      `json:"test_date"`
	Extras   []ExtraLabValue `json:"extras" binding:"omitempty,dive"`
}

// Rows expands the request into one LabResult per present named assay, plus
// the extras, stamped with the given patient and date.
func (r *CreateLabResultsRequest) Rows(patientID uuid.UUID, testDate time.Time) []*LabResult {
	type assay struct {
		name  string
		value *float64
		unit  string
	}
	panel := []assay{
		{AssayNeutrophils, r.Neutrophils, "cells/µL"},
		{AssayLymphocytes, r.Lymphocytes, "cells/µL"},
		{AssayIgG, r.IgG, "mg/dL"},
		{AssayIgA, r.IgA, "mg/dL"},
		{AssayIgM, r.IgM, "mg/dL"},
		{AssayIgE, r.IgE, "IU/mL"},
	}

	var rows []*LabResult
	for _, a := range panel {
		if a.value == nil {
			continue
		}
		rows = append(rows, &LabResult{
			PatientID: patientID,
			TestName:  a.name,
			Value:     *a.value,
			Unit:      a.unit,
			TestDate:  testDate,
		})
	}
	for _, e := range r.Extras {
		rows = append(rows, &LabResult{
			PatientID: patientID,
			TestName:  e.TestName,
			Value:     e.Value,
			Unit:      e.Unit,
			TestDate:  testDate,
		})
	}
	return rows
}
