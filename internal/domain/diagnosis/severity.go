package diagnosis

import "strings"

// SeverityAssessment is the outcome of one severity rule.
type SeverityAssessment struct {
	Severity   string
	UrgentCare bool
}

// severityRule pairs a predicate with its outcome. Rules are evaluated in
// order and the first match wins, so the safety decision is a fixed,
// auditable table rather than oracle wording.
type severityRule struct {
	name    string
	matches func(in severityInput) bool
	outcome SeverityAssessment
}

type severityInput struct {
	topConfidence float64
	haveCandidate bool
	redFlag       bool
}

func severityRules(policy ScoringPolicy) []severityRule {
	return []severityRule{
		{
			name: "red-flag-urgent",
			matches: func(in severityInput) bool {
				return in.redFlag && in.haveCandidate && in.topConfidence >= policy.UrgentTopConfidence
			},
			outcome: SeverityAssessment{
				Severity:   "critical — immediate evaluation recommended",
				UrgentCare: true,
			},
		},
		{
			name: "high-confidence",
			matches: func(in severityInput) bool {
				return in.haveCandidate && in.topConfidence >= policy.SignificantTopConfidence
			},
			outcome: SeverityAssessment{
				Severity: "significant — prompt follow-up recommended",
			},
		},
		{
			name: "low-confidence",
			matches: func(in severityInput) bool {
				return !in.haveCandidate || in.topConfidence < policy.UncertainTopConfidence
			},
			outcome: SeverityAssessment{
				Severity: "uncertain — insufficient data for confident assessment",
			},
		},
		{
			name:    "default",
			matches: func(severityInput) bool { return true },
			outcome: SeverityAssessment{
				Severity: "moderate — routine follow-up advised",
			},
		},
	}
}

// ClassifySeverity derives the overall severity label and urgent-care flag
// from the ranked conditions and the raw symptom input.
func ClassifySeverity(policy ScoringPolicy, conditions []ScoredCondition, symptoms []string) SeverityAssessment {
	in := severityInput{redFlag: hasRedFlagSymptom(policy, symptoms)}
	if len(conditions) > 0 {
		in.haveCandidate = true
		in.topConfidence = conditions[0].Confidence
	}
	for _, rule := range severityRules(policy) {
		if rule.matches(in) {
			return rule.outcome
		}
	}
	// The table ends with a catch-all, so this is unreachable.
	return SeverityAssessment{Severity: "uncertain — insufficient data for confident assessment"}
}

func hasRedFlagSymptom(policy ScoringPolicy, symptoms []string) bool {
	for _, s := range symptoms {
		ns := normalizeName(s)
		for _, flag := range policy.RedFlagSymptoms {
			if strings.Contains(ns, normalizeName(flag)) {
				return true
			}
		}
	}
	return false
}
