package diagnosis

import (
	"time"

	"github.com/google/uuid"
)

// HistoryRecord is the raw patient record handed to the engine by the
// history collaborator. It is the unnormalized external format; use
// NewPatientHistory to turn it into a PatientHistory.
type HistoryRecord struct {
	PatientID   string
	Conditions  []RecordCondition
	Medications []RecordMedication
	RiskFactors []string
}

// RecordCondition is one prior condition as stored by the collaborator. A
// nil ResolvedDate means the condition is still active.
type RecordCondition struct {
	Name         string
	OnsetDate    *time.Time
	ResolvedDate *time.Time
}

// RecordMedication is one medication entry as stored by the collaborator. A
// nil DiscontinuedDate means the medication is still being taken.
type RecordMedication struct {
	Name             string
	Dose             string
	DiscontinuedDate *time.Time
}

// PatientHistory is the normalized, immutable snapshot the engine scores
// against. Names are case-folded and trimmed, entries deduplicated. Owned
// exclusively by the engine invocation that receives it.
type PatientHistory struct {
	PatientID   string              `json:"patient_id"`
	Conditions  []HistoryCondition  `json:"conditions"`
	Medications []HistoryMedication `json:"medications"`
	RiskFactors []string            `json:"risk_factors"`
}

type HistoryCondition struct {
	Name      string     `json:"name"`
	OnsetDate *time.Time `json:"onset_date,omitempty"`
	Active    bool       `json:"active"`
}

type HistoryMedication struct {
	Name   string `json:"name"`
	Dose   string `json:"dose,omitempty"`
	Active bool   `json:"active"`
}

// ActiveMedications returns the names of medications still being taken.
func (h PatientHistory) ActiveMedications() []string {
	var names []string
	for _, m := range h.Medications {
		if m.Active {
			names = append(names, m.Name)
		}
	}
	return names
}

// ActiveConditions returns the prior conditions not yet resolved.
func (h PatientHistory) ActiveConditions() []HistoryCondition {
	var out []HistoryCondition
	for _, c := range h.Conditions {
		if c.Active {
			out = append(out, c)
		}
	}
	return out
}

// RawCandidate is one candidate condition as proposed by the oracle, after
// tolerant parsing but before scoring. Confidence is already clamped to
// [0,1] by the parser; everything else is the oracle's text verbatim.
type RawCandidate struct {
	Name              string   `json:"name"`
	Confidence        float64  `json:"confidence"`
	Description       string   `json:"description"`
	RecommendedTests  []string `json:"recommended_tests"`
	RelationToHistory string   `json:"relation_to_history"`
}

// OracleResponse is the parsed oracle document. Only PossibleConditions
// carries decision input; the remaining fields are advisory text that the
// engine may quote but never trusts for safety decisions. Severity and the
// urgent-care flag are always recomputed locally.
type OracleResponse struct {
	PossibleConditions []RawCandidate
	SeverityAssessment string
	UrgentCareNeeded   bool
	Recommendations    []string
	DifferentialNotes  string
	HistoryAnalysis    OracleHistoryAnalysis
}

// OracleHistoryAnalysis is the oracle's advisory narrative about the
// patient's history.
type OracleHistoryAnalysis struct {
	PreviousConditionsImpact string
	MedicationInteractions   string
	RiskFactors              []string
}

// ScoredCondition is a candidate after confidence recomputation. Invariant:
// Confidence in [0,1] and PenaltyApplied >= 0.
type ScoredCondition struct {
	Name              string   `json:"name"`
	Confidence        float64  `json:"confidence"`
	Description       string   `json:"description"`
	RecommendedTests  []string `json:"recommended_tests"`
	RelationToHistory string   `json:"relation_to_history,omitempty"`
	PenaltyApplied    float64  `json:"penalty_applied"`
}

// InteractionSeverity grades a known medication interaction.
type InteractionSeverity string

const (
	SeverityLow      InteractionSeverity = "low"
	SeverityModerate InteractionSeverity = "moderate"
	SeveritySevere   InteractionSeverity = "severe"
)

// Actionable reports whether the interaction is serious enough to penalize
// condition confidence and emit a review recommendation.
func (s InteractionSeverity) Actionable() bool {
	return s == SeverityModerate || s == SeveritySevere
}

// InteractionWarning is a flagged pairwise medication risk. Warnings come
// only from rule table matches, never from inference.
type InteractionWarning struct {
	MedicationA string              `json:"medication_a"`
	MedicationB string              `json:"medication_b"`
	Severity    InteractionSeverity `json:"severity"`
	Note        string              `json:"note"`
}

// HistoryAnalysis is the history narrative of the final record. RiskFactors
// is always an exact pass-through of PatientHistory.RiskFactors.
type HistoryAnalysis struct {
	PreviousConditionsImpact string   `json:"previous_conditions_impact"`
	MedicationInteractions   string   `json:"medication_interactions"`
	RiskFactors              []string `json:"risk_factors"`
}

// DiagnosisResult is the final immutable diagnosis record. PossibleConditions
// is sorted by descending confidence with ties broken by name ascending.
type DiagnosisResult struct {
	PossibleConditions []ScoredCondition `json:"possible_conditions"`
	SeverityAssessment string            `json:"severity_assessment"`
	UrgentCareNeeded   bool              `json:"urgent_care_needed"`
	Recommendations    []string          `json:"recommendations"`
	DifferentialNotes  string            `json:"differential_notes"`
	HistoryAnalysis    HistoryAnalysis   `json:"history_analysis"`
}

// Report is one persisted diagnosis run: the inputs as submitted and the
// validated result.
type Report struct {
	ID                uuid.UUID        `db:"id" json:"id"`
	PatientID         uuid.UUID        `db:"patient_id" json:"patient_id"`
	PrimarySymptoms   []string         `db:"primary_symptoms" json:"primary_symptoms"`
	SecondarySymptoms []string         `db:"secondary_symptoms" json:"secondary_symptoms"`
	Result            *DiagnosisResult `db:"result" json:"result"`
	Fallback          bool             `db:"fallback" json:"fallback"`
	DroppedCandidates int              `db:"dropped_candidates" json:"dropped_candidates"`
	CreatedAt         time.Time        `db:"created_at" json:"created_at"`
}
