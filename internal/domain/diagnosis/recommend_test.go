package diagnosis

import (
	"reflect"
	"testing"
)

func TestAggregateRecommendations_SharedTestsFirst(t *testing.T) {
	conditions := []ScoredCondition{
		{Name: "Angina", Confidence: 0.7, RecommendedTests: []string{"ECG", "Troponin"}},
		{Name: "Arrhythmia", Confidence: 0.5, RecommendedTests: []string{"ecg", "Holter monitor"}},
		{Name: "Anemia", Confidence: 0.3, RecommendedTests: []string{"CBC"}},
	}

	got := AggregateRecommendations(conditions, nil)
	want := []string{"ECG", "Troponin", "Holter monitor", "CBC"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
}

func TestAggregateRecommendations_DedupedCaseInsensitively(t *testing.T) {
	conditions := []ScoredCondition{
		{Name: "A", Confidence: 0.6, RecommendedTests: []string{"ECG"}},
		{Name: "B", Confidence: 0.4, RecommendedTests: []string{"ECG"}},
	}
	got := AggregateRecommendations(conditions, nil)
	if len(got) != 1 || got[0] != "ECG" {
		t.Errorf("recommendations = %v, want single ECG", got)
	}
}

func TestAggregateRecommendations_InteractionReviewAppended(t *testing.T) {
	warnings := []InteractionWarning{
		{MedicationA: "warfarin", MedicationB: "aspirin", Severity: SeveritySevere},
		{MedicationA: "levothyroxine", MedicationB: "calcium carbonate", Severity: SeverityLow},
	}
	got := AggregateRecommendations([]ScoredCondition{
		{Name: "A", Confidence: 0.5, RecommendedTests: []string{"INR check"}},
	}, warnings)

	want := []string{"INR check", "review interaction between warfarin and aspirin"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("recommendations = %v, want %v", got, want)
	}
}

func TestAggregateRecommendations_Empty(t *testing.T) {
	got := AggregateRecommendations(nil, nil)
	if len(got) != 0 {
		t.Errorf("recommendations = %v, want empty", got)
	}
}
