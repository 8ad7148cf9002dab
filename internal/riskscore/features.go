package riskscore

import (
	"time"

	"github.com/bbabur/immune-risk-next-sub001/internal/model"
)

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// BuildFeatures assembles the fixed-shape predictor input from the patient's
// stored records. Absent optional records leave their fields at zero.
func BuildFeatures(
	patient *model.Patient,
	clinical *model.ClinicalFeature,
	family *model.FamilyHistory,
	infections []*model.Infection,
	hospitalizations []*model.Hospitalization,
	vaccinations []*model.Vaccination,
) *model.MLFeatures {
	f := &model.MLFeatures{
		AgeMonths:             patient.AgeInMonths(time.Now()),
		ParentalConsanguinity: boolToInt(patient.ParentalConsanguinity),
	}
	if patient.Gender == model.GenderMale {
		f.Gender = 1
	}
	if patient.BirthWeightKg != nil {
		f.BirthWeightKg = *patient.BirthWeightKg
	}
	if patient.GestationalAgeWeeks != nil {
		f.GestationalAgeWeeks = *patient.GestationalAgeWeeks
	}
	if patient.CordFallDay != nil {
		f.CordFallDay = *patient.CordFallDay
	}

	if clinical != nil {
		f.GrowthFailure = boolToInt(clinical.GrowthFailure)
		f.SkinIssues = boolToInt(clinical.SkinIssues)
		f.BCGLymphadenopathy = boolToInt(clinical.BCGLymphadenopathy)
		f.OralThrush = boolToInt(clinical.OralThrush)
		f.RecurrentAbscesses = boolToInt(clinical.RecurrentAbscesses)
		f.CongenitalHeartDisease = boolToInt(clinical.CongenitalHeartDisease)
		if clinical.DiarrheaDurationDays != nil && *clinical.DiarrheaDurationDays >= 14 {
			f.ChronicDiarrhea = 1
		}
	}

	if family != nil {
		f.FamilyImmuneDeficiency = boolToInt(family.ImmuneDeficiencyHistory)
		f.EarlyInfantDeaths = family.EarlyInfantDeaths
	}

	f.InfectionCount = len(infections)
	for _, inf := range infections {
		if inf.Severity != nil && *inf.Severity == "severe" {
			f.SevereInfectionCount++
		}
		if inf.TreatedWithIV {
			f.IVAntibioticHistory = 1
		}
	}

	f.HospitalizationCount = len(hospitalizations)
	for _, h := range hospitalizations {
		if h.ICUAdmission {
			f.ICUAdmission = 1
		}
	}

	for _, v := range vaccinations {
		if v.Vaccine == model.VaccineBCG {
			f.BCGVaccinated = 1
		}
	}

	return f
}
