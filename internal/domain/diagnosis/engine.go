package diagnosis

import "fmt"

// Engine is the diagnosis scoring pipeline. It is a pure transformation
// over its inputs: no I/O, no shared mutable state, safe for concurrent use
// across requests.
type Engine struct {
	policy Policy
	table  *InteractionTable
}

func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy: policy,
		table:  NewInteractionTable(policy.Interactions),
	}
}

// EvaluateInput is one diagnosis request after the oracle call has resolved.
type EvaluateInput struct {
	History  PatientHistory
	Oracle   *OracleResponse
	Symptoms []string
}

// Evaluate runs the full pipeline: interaction check, scoring, severity
// classification, recommendation aggregation, assembly. The returned result
// is immutable; re-running on identical inputs yields an identical record.
func (e *Engine) Evaluate(in EvaluateInput) (*DiagnosisResult, error) {
	if in.Oracle == nil {
		return nil, &OracleResponseError{Reason: "no oracle response available"}
	}

	warnings := e.table.Check(in.History, in.Oracle.Recommendations)
	scored := ScoreCandidates(e.policy.Scoring, in.Oracle.PossibleConditions, in.History, warnings)
	assessment := ClassifySeverity(e.policy.Scoring, scored, in.Symptoms)
	recommendations := AggregateRecommendations(scored, warnings)

	notes := in.Oracle.DifferentialNotes
	if notes == "" {
		notes = fmt.Sprintf("differential of %d candidate condition(s) ranked by adjusted confidence", len(scored))
	}

	return AssembleDiagnosis(scored, assessment, recommendations, notes, in.History, warnings, in.Oracle)
}

// EvaluateFallback produces a degraded result without any oracle input,
// using only the interaction rule table and red-flag symptom rules. Used
// when the oracle is unavailable or its output failed structural parsing.
func (e *Engine) EvaluateFallback(history PatientHistory, symptoms []string) (*DiagnosisResult, error) {
	warnings := e.table.Check(history, nil)
	assessment := ClassifySeverity(e.policy.Scoring, nil, symptoms)
	recommendations := AggregateRecommendations(nil, warnings)

	notes := "fallback analysis: the external analysis service was unavailable or returned an unusable response; " +
		"results are limited to rule-based symptom and medication screening"

	return AssembleDiagnosis(nil, assessment, recommendations, notes, history, warnings, nil)
}
