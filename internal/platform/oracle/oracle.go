// Package oracle holds the clients for the external AI services that
// propose candidate conditions. The oracle is untrusted and replaceable:
// everything it returns is re-validated and re-scored by the diagnosis
// engine before it reaches a clinician.
package oracle

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrUnavailable is returned when no oracle backend is configured. The
// diagnosis service treats it like any other oracle failure and answers in
// rule-based fallback mode.
var ErrUnavailable = errors.New("oracle backend not configured")

// Client is the narrow surface the diagnosis service depends on. Analyze
// sends one analysis prompt and returns the raw model text verbatim.
type Client interface {
	Analyze(ctx context.Context, prompt string) (string, error)
}

// Disabled is a Client that always fails. Used when ORACLE_PROVIDER=none.
type Disabled struct{}

func (Disabled) Analyze(context.Context, string) (string, error) {
	return "", ErrUnavailable
}

const analysisSystemPrompt = "Act as a medical expert system analyzing patient symptoms and history. " +
	"Consider the patient's history first, then analyze how current symptoms might relate to or differ from previous conditions. " +
	"Respond with valid JSON only."

// PromptInput carries the patient context for one analysis request. The
// fields are plain strings so the package stays independent of the engine's
// domain types.
type PromptInput struct {
	PreviousConditions []string
	Medications        []string
	RiskFactors        []string
	PrimarySymptoms    []string
	SecondarySymptoms  []string
}

// BuildAnalysisPrompt renders the analysis prompt. The JSON schema embedded
// here is the response contract the candidate parser expects; the two must
// change together.
func BuildAnalysisPrompt(in PromptInput) string {
	var b strings.Builder

	if len(in.PreviousConditions) > 0 || len(in.Medications) > 0 || len(in.RiskFactors) > 0 {
		b.WriteString("Patient History:\n")
		writeListSection(&b, "Previous Conditions:", in.PreviousConditions)
		writeListSection(&b, "Current Medications:", in.Medications)
		writeListSection(&b, "Risk Factors:", in.RiskFactors)
		b.WriteString("\n")
	}

	b.WriteString("Current Symptoms:\n")
	b.WriteString("Primary (More Severe) Symptoms:\n")
	b.WriteString(joinOrNone(in.PrimarySymptoms))
	b.WriteString("\n\nSecondary (Less Severe) Symptoms:\n")
	b.WriteString(joinOrNone(in.SecondarySymptoms))

	b.WriteString(`

Provide your analysis in the following JSON format:
{
    "possible_conditions": [
        {
            "name": "condition_name",
            "confidence": 0.XX,
            "description": "Brief description of the condition",
            "recommended_tests": ["test1", "test2"],
            "relation_to_history": "Explanation of how this relates to patient history (if applicable)"
        }
    ],
    "severity_assessment": "Detailed assessment of overall symptom severity",
    "urgent_care_needed": true,
    "recommendations": ["Specific action items or recommendations"],
    "differential_notes": "Important notes about differential diagnosis and potential complications",
    "history_analysis": {
        "previous_conditions_impact": "Analysis of how previous conditions might affect current symptoms",
        "medication_interactions": "Potential interactions with current medications",
        "risk_factors": ["List of identified risk factors based on history"]
    }
}

Important guidelines:
1. First analyze how current symptoms relate to patient history
2. Consider potential complications due to previous conditions
3. Check for medication interactions or contraindications
4. Base confidence scores on both history and current symptoms
5. Include at least 2-3 possible conditions when applicable
6. Be specific with test recommendations
7. Format output as valid JSON

Analyze the patient's history and symptoms and provide your response:`)

	return b.String()
}

func writeListSection(b *strings.Builder, heading string, items []string) {
	if len(items) == 0 {
		return
	}
	b.WriteString(heading)
	b.WriteString("\n")
	for _, item := range items {
		fmt.Fprintf(b, "- %s\n", item)
	}
}

func joinOrNone(items []string) string {
	if len(items) == 0 {
		return "None reported"
	}
	return strings.Join(items, ", ")
}
