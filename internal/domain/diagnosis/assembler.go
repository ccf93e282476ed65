package diagnosis

import "strings"

// AssembleDiagnosis composes the final immutable result and verifies its
// cross-field invariants. A violation means an internal logic defect and is
// returned as InvariantViolationError rather than shipping a broken record.
func AssembleDiagnosis(
	conditions []ScoredCondition,
	assessment SeverityAssessment,
	recommendations []string,
	differentialNotes string,
	history PatientHistory,
	warnings []InteractionWarning,
	oracleAdvisory *OracleResponse,
) (*DiagnosisResult, error) {
	result := &DiagnosisResult{
		PossibleConditions: append([]ScoredCondition{}, conditions...),
		SeverityAssessment: assessment.Severity,
		UrgentCareNeeded:   assessment.UrgentCare,
		Recommendations:    append([]string{}, recommendations...),
		DifferentialNotes:  differentialNotes,
		HistoryAnalysis: HistoryAnalysis{
			PreviousConditionsImpact: previousConditionsImpact(history, oracleAdvisory),
			MedicationInteractions:   SummarizeInteractions(warnings),
			RiskFactors:              append([]string{}, history.RiskFactors...),
		},
	}
	if err := verifyInvariants(result, history); err != nil {
		return nil, err
	}
	return result, nil
}

func verifyInvariants(r *DiagnosisResult, history PatientHistory) error {
	for i, c := range r.PossibleConditions {
		if c.Confidence < 0 || c.Confidence > 1 {
			return &InvariantViolationError{Invariant: "condition confidence outside [0,1]"}
		}
		if i == 0 {
			continue
		}
		prev := r.PossibleConditions[i-1]
		if c.Confidence > prev.Confidence {
			return &InvariantViolationError{Invariant: "possible_conditions not sorted by descending confidence"}
		}
		if c.Confidence == prev.Confidence && normalizeName(c.Name) < normalizeName(prev.Name) {
			return &InvariantViolationError{Invariant: "confidence tie not broken by ascending name"}
		}
	}
	if r.UrgentCareNeeded && len(r.PossibleConditions) == 0 {
		return &InvariantViolationError{Invariant: "urgent care flagged with no possible conditions"}
	}
	if len(r.HistoryAnalysis.RiskFactors) != len(history.RiskFactors) {
		return &InvariantViolationError{Invariant: "history_analysis risk factors diverge from patient history"}
	}
	for i, rf := range history.RiskFactors {
		if r.HistoryAnalysis.RiskFactors[i] != rf {
			return &InvariantViolationError{Invariant: "history_analysis risk factors diverge from patient history"}
		}
	}
	return nil
}

// previousConditionsImpact carries the oracle's advisory narrative when one
// was given, falling back to a local summary of the history snapshot.
func previousConditionsImpact(history PatientHistory, advisory *OracleResponse) string {
	if advisory != nil && advisory.HistoryAnalysis.PreviousConditionsImpact != "" {
		return advisory.HistoryAnalysis.PreviousConditionsImpact
	}
	active := history.ActiveConditions()
	if len(active) == 0 {
		return "no active prior conditions on record"
	}
	names := make([]string, len(active))
	for i, cond := range active {
		names[i] = cond.Name
	}
	return "active prior conditions considered during scoring: " + strings.Join(names, ", ")
}
