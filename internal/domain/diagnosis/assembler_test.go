package diagnosis

import (
	"errors"
	"testing"
)

func TestAssembleDiagnosis_PassesThroughRiskFactors(t *testing.T) {
	hist := PatientHistory{
		PatientID:   "p-1",
		RiskFactors: []string{"smoking", "obesity"},
	}
	result, err := AssembleDiagnosis(nil,
		SeverityAssessment{Severity: "uncertain — insufficient data for confident assessment"},
		nil, "notes", hist, nil, nil)
	if err != nil {
		t.Fatalf("AssembleDiagnosis: %v", err)
	}
	if len(result.HistoryAnalysis.RiskFactors) != 2 {
		t.Errorf("risk factors = %v", result.HistoryAnalysis.RiskFactors)
	}
	if result.HistoryAnalysis.MedicationInteractions != NoInteractionsStatement {
		t.Errorf("medication_interactions = %q", result.HistoryAnalysis.MedicationInteractions)
	}
}

func TestAssembleDiagnosis_OracleNarrativePreferred(t *testing.T) {
	advisory := &OracleResponse{
		HistoryAnalysis: OracleHistoryAnalysis{
			PreviousConditionsImpact: "hypertension raises cardiovascular risk here",
		},
	}
	result, err := AssembleDiagnosis(nil,
		SeverityAssessment{Severity: "moderate — routine follow-up advised"},
		nil, "notes", PatientHistory{PatientID: "p-1"}, nil, advisory)
	if err != nil {
		t.Fatalf("AssembleDiagnosis: %v", err)
	}
	if result.HistoryAnalysis.PreviousConditionsImpact != advisory.HistoryAnalysis.PreviousConditionsImpact {
		t.Errorf("previous_conditions_impact = %q", result.HistoryAnalysis.PreviousConditionsImpact)
	}
}

func TestAssembleDiagnosis_LocalNarrativeFallback(t *testing.T) {
	hist := PatientHistory{
		PatientID: "p-1",
		Conditions: []HistoryCondition{
			{Name: "asthma", Active: true},
			{Name: "eczema", Active: true},
			{Name: "pneumonia", Active: false},
		},
	}
	result, err := AssembleDiagnosis(nil,
		SeverityAssessment{Severity: "moderate — routine follow-up advised"},
		nil, "notes", hist, nil, nil)
	if err != nil {
		t.Fatalf("AssembleDiagnosis: %v", err)
	}
	want := "active prior conditions considered during scoring: asthma, eczema"
	if result.HistoryAnalysis.PreviousConditionsImpact != want {
		t.Errorf("previous_conditions_impact = %q, want %q",
			result.HistoryAnalysis.PreviousConditionsImpact, want)
	}
}

func TestAssembleDiagnosis_InvariantViolations(t *testing.T) {
	hist := PatientHistory{PatientID: "p-1", RiskFactors: []string{}}
	assessment := SeverityAssessment{Severity: "moderate — routine follow-up advised"}

	cases := []struct {
		name       string
		conditions []ScoredCondition
		assessment SeverityAssessment
	}{
		{
			name: "unsorted confidence",
			conditions: []ScoredCondition{
				{Name: "a", Confidence: 0.3},
				{Name: "b", Confidence: 0.8},
			},
			assessment: assessment,
		},
		{
			name: "tie not broken by name",
			conditions: []ScoredCondition{
				{Name: "zoster", Confidence: 0.5},
				{Name: "anemia", Confidence: 0.5},
			},
			assessment: assessment,
		},
		{
			name: "confidence out of range",
			conditions: []ScoredCondition{
				{Name: "a", Confidence: 1.2},
			},
			assessment: assessment,
		},
		{
			name:       "urgent without conditions",
			assessment: SeverityAssessment{Severity: "critical — immediate evaluation recommended", UrgentCare: true},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := AssembleDiagnosis(tc.conditions, tc.assessment, nil, "notes", hist, nil, nil)
			var violation *InvariantViolationError
			if !errors.As(err, &violation) {
				t.Fatalf("expected InvariantViolationError, got %v", err)
			}
		})
	}
}
