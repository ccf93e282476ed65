package diagnosis

import "strings"

// normalizeName case-folds and trims a condition/medication/symptom name so
// all matching in the engine happens on one canonical form.
func normalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// NewPatientHistory normalizes a raw collaborator record into the snapshot
// the engine scores against. Entries are deduplicated by normalized name
// with the most recent entry winning (records append chronologically, so
// later entries supersede earlier ones). Absent collections become empty
// slices, never nil. A record without a patient identifier is unusable and
// returns MalformedHistoryError.
func NewPatientHistory(rec HistoryRecord) (PatientHistory, error) {
	if strings.TrimSpace(rec.PatientID) == "" {
		return PatientHistory{}, &MalformedHistoryError{Reason: "missing patient identifier"}
	}

	hist := PatientHistory{
		PatientID:   strings.TrimSpace(rec.PatientID),
		Conditions:  []HistoryCondition{},
		Medications: []HistoryMedication{},
		RiskFactors: []string{},
	}

	condIndex := map[string]int{}
	for _, c := range rec.Conditions {
		name := normalizeName(c.Name)
		if name == "" {
			continue
		}
		cond := HistoryCondition{
			Name:      name,
			OnsetDate: c.OnsetDate,
			Active:    c.ResolvedDate == nil,
		}
		if i, seen := condIndex[name]; seen {
			hist.Conditions[i] = cond
			continue
		}
		condIndex[name] = len(hist.Conditions)
		hist.Conditions = append(hist.Conditions, cond)
	}

	medIndex := map[string]int{}
	for _, m := range rec.Medications {
		name := normalizeName(m.Name)
		if name == "" {
			continue
		}
		med := HistoryMedication{
			Name:   name,
			Dose:   strings.TrimSpace(m.Dose),
			Active: m.DiscontinuedDate == nil,
		}
		if i, seen := medIndex[name]; seen {
			hist.Medications[i] = med
			continue
		}
		medIndex[name] = len(hist.Medications)
		hist.Medications = append(hist.Medications, med)
	}

	seenRisk := map[string]bool{}
	for _, rf := range rec.RiskFactors {
		name := normalizeName(rf)
		if name == "" || seenRisk[name] {
			continue
		}
		seenRisk[name] = true
		hist.RiskFactors = append(hist.RiskFactors, name)
	}

	return hist, nil
}
