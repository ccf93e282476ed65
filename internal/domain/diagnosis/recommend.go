package diagnosis

import (
	"fmt"
	"sort"
)

// AggregateRecommendations merges recommended tests across conditions and
// appends one review item per actionable interaction warning. Tests shared
// by two or more conditions rank first, then remaining tests by the
// confidence of the condition that requested them. Duplicates are removed
// case-insensitively; equal ranks keep first-seen order.
func AggregateRecommendations(conditions []ScoredCondition, warnings []InteractionWarning) []string {
	type test struct {
		text       string
		key        string
		count      int
		confidence float64
		order      int
	}

	byKey := map[string]*test{}
	var tests []*test
	for _, c := range conditions {
		seenHere := map[string]bool{}
		for _, rt := range c.RecommendedTests {
			key := normalizeName(rt)
			if key == "" || seenHere[key] {
				continue
			}
			seenHere[key] = true
			t, ok := byKey[key]
			if !ok {
				t = &test{text: rt, key: key, confidence: c.Confidence, order: len(tests)}
				byKey[key] = t
				tests = append(tests, t)
			}
			t.count++
			if c.Confidence > t.confidence {
				t.confidence = c.Confidence
			}
		}
	}

	sort.SliceStable(tests, func(i, j int) bool {
		a, b := tests[i], tests[j]
		as, bs := a.count >= 2, b.count >= 2
		if as != bs {
			return as
		}
		if as && bs {
			return a.order < b.order
		}
		if a.confidence != b.confidence {
			return a.confidence > b.confidence
		}
		return a.order < b.order
	})

	out := make([]string, 0, len(tests)+len(warnings))
	for _, t := range tests {
		out = append(out, t.text)
	}

	seen := map[string]bool{}
	for _, t := range tests {
		seen[t.key] = true
	}
	for _, w := range warnings {
		if !w.Severity.Actionable() {
			continue
		}
		rec := fmt.Sprintf("review interaction between %s and %s", w.MedicationA, w.MedicationB)
		key := normalizeName(rec)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, rec)
	}
	return out
}
