package diagnosis

import (
	"sort"
	"strings"
)

// ScoreCandidates turns raw oracle candidates into scored conditions:
// confidence is clamped to [0,1], boosted when the condition relates to an
// active prior condition, and penalized when an actionable interaction
// warning is implicated in the candidate's own text. Candidates sharing a
// normalized name are deduplicated with the higher adjusted score winning.
// Output ordering is the final ranked order.
func ScoreCandidates(policy ScoringPolicy, candidates []RawCandidate, history PatientHistory, warnings []InteractionWarning) []ScoredCondition {
	byName := map[string]int{}
	var scored []ScoredCondition

	active := history.ActiveConditions()

	for _, c := range candidates {
		name := normalizeName(c.Name)
		if name == "" {
			continue
		}

		conf := clamp01(c.Confidence)
		if relatesToHistory(c, active) {
			conf = clamp01(conf + policy.HistoryBoost)
		}

		var penalty float64
		for _, w := range warnings {
			if !w.Severity.Actionable() {
				continue
			}
			if candidateImplicates(c, w) {
				penalty += policy.InteractionPenalty
			}
		}
		if penalty > conf {
			penalty = conf
		}
		conf -= penalty

		sc := ScoredCondition{
			Name:              c.Name,
			Description:       c.Description,
			Confidence:        conf,
			RecommendedTests:  dedupeTests(c.RecommendedTests),
			RelationToHistory: c.RelationToHistory,
			PenaltyApplied:    penalty,
		}

		if i, seen := byName[name]; seen {
			if sc.Confidence > scored[i].Confidence {
				scored[i] = sc
			}
			continue
		}
		byName[name] = len(scored)
		scored = append(scored, sc)
	}

	sort.SliceStable(scored, func(i, j int) bool {
		a, b := scored[i], scored[j]
		// Conditions under the floor rank behind everything else.
		af, bf := a.Confidence < policy.LowConfidenceFloor, b.Confidence < policy.LowConfidenceFloor
		if af != bf {
			return bf
		}
		if a.Confidence != b.Confidence {
			return a.Confidence > b.Confidence
		}
		return normalizeName(a.Name) < normalizeName(b.Name)
	})
	return scored
}

// dedupeTests removes case-insensitive duplicates keeping first-seen order
// and original casing.
func dedupeTests(tests []string) []string {
	if len(tests) == 0 {
		return nil
	}
	seen := map[string]bool{}
	out := make([]string, 0, len(tests))
	for _, t := range tests {
		key := normalizeName(t)
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, t)
	}
	return out
}

// relatesToHistory reports whether the candidate's name matches an active
// prior condition.
func relatesToHistory(c RawCandidate, active []HistoryCondition) bool {
	name := normalizeName(c.Name)
	for _, prior := range active {
		p := normalizeName(prior.Name)
		if p == "" {
			continue
		}
		if conditionNamesMatch(name, p) {
			return true
		}
	}
	return false
}

// conditionNamesMatch handles clinical name variants that plain containment
// misses ("hypertensive crisis" vs "hypertension"). Two names match when one
// contains the other, or when any token pair shares a prefix of at least six
// characters covering at least 60% of the longer token.
func conditionNamesMatch(a, b string) bool {
	if a == "" || b == "" {
		return false
	}
	if strings.Contains(a, b) || strings.Contains(b, a) {
		return true
	}
	for _, ta := range strings.Fields(a) {
		for _, tb := range strings.Fields(b) {
			if tokenStemMatch(ta, tb) {
				return true
			}
		}
	}
	return false
}

func tokenStemMatch(a, b string) bool {
	n := commonPrefixLen(a, b)
	if n < 6 {
		return false
	}
	longer := len(a)
	if len(b) > longer {
		longer = len(b)
	}
	return float64(n) >= 0.6*float64(longer)
}

func commonPrefixLen(a, b string) int {
	n := 0
	for n < len(a) && n < len(b) && a[n] == b[n] {
		n++
	}
	return n
}

// candidateImplicates reports whether either of a warning's medications is
// mentioned in the candidate's description or stated relation to history. A
// warning only penalizes candidates that mention it.
func candidateImplicates(c RawCandidate, w InteractionWarning) bool {
	text := normalizeName(c.Description) + " " + normalizeName(c.RelationToHistory)
	return strings.Contains(text, w.MedicationA) || strings.Contains(text, w.MedicationB)
}
