package factory

import "encoding/json"

// =============================================================================
// PRESET CADRES
// =============================================================================

// GeneralCadreJSON returns JSON for the general administrative cadre: civil
// service defaults, GL 01-17.
func GeneralCadreJSON() string {
	pj := map[string]interface{}{
		"id":                "general",
		"name":              "General Administrative",
		"retirement_age":    60,
		"max_service_years": 35,
		"promotion_intervals": map[string]int{
			"01-06": 2,
			"07-14": 3,
			"15-17": 4,
		},
		"requires_nysc": true,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// TeachingCadreJSON returns JSON for the teaching service: retirement at 65
// or 40 years of service, and NCE holders entering as Education Officer II.
func TeachingCadreJSON() string {
	pj := map[string]interface{}{
		"id":                "teaching",
		"name":              "Teaching Service",
		"retirement_age":    65,
		"max_service_years": 40,
		"promotion_intervals": map[string]int{
			"03-06": 2,
			"07-14": 3,
			"15-17": 4,
		},
		"requires_nysc": true,
		"qualification_overrides": map[string]interface{}{
			"NCE": map[string]interface{}{"min_grade_level": 7, "designation": "Education Officer II"},
			"BSC": map[string]interface{}{"min_grade_level": 8, "designation": "Education Officer I"},
		},
		"min_grade_level":                   6,
		"max_grade_level":                   17,
		"requires_professional_certificate": true,
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// MedicalCadreJSON returns JSON for medical officers: graduate entry on
// GL 10 and a professional registration on file.
func MedicalCadreJSON() string {
	pj := map[string]interface{}{
		"id":                "medical",
		"name":              "Medical and Health",
		"retirement_age":    65,
		"max_service_years": 35,
		"promotion_intervals": map[string]int{
			"08-12": 3,
			"13-17": 4,
		},
		"requires_nysc": true,
		"qualification_overrides": map[string]interface{}{
			"MBBS": map[string]interface{}{"min_grade_level": 10, "designation": "Medical Officer"},
		},
		"min_grade_level":                   8,
		"max_grade_level":                   17,
		"requires_professional_certificate": true,
		"thresholds": map[string]interface{}{
			"max_entry_age": 45,
		},
	}
	b, _ := json.MarshalIndent(pj, "", "  ")
	return string(b)
}

// Presets returns every built-in cadre keyed by id.
func Presets() map[string]string {
	return map[string]string{
		"general":  GeneralCadreJSON(),
		"teaching": TeachingCadreJSON(),
		"medical":  MedicalCadreJSON(),
	}
}
