package diagnosis

import (
	"fmt"
	"sort"
	"strings"
)

// NoInteractionsStatement is reported in history_analysis when no rule
// matches. The checker never infers unknown interactions, so an empty
// result must not read as a guarantee of safety.
const NoInteractionsStatement = "no known interactions found among active medications; " +
	"the interaction rule table is not exhaustive and absence of a warning does not imply safety"

// InteractionTable is the static pairwise rule table, indexed for symmetric
// lookup. Built once at startup from policy and read-only afterwards.
type InteractionTable struct {
	rules map[string]InteractionRule
	meds  []string // every medication named by a rule, normalized, sorted
}

func NewInteractionTable(rules []InteractionRule) *InteractionTable {
	t := &InteractionTable{rules: make(map[string]InteractionRule, len(rules))}
	medSet := map[string]bool{}
	for _, r := range rules {
		a := normalizeName(r.MedicationA)
		b := normalizeName(r.MedicationB)
		if a == "" || b == "" || a == b {
			continue
		}
		t.rules[pairKey(a, b)] = InteractionRule{
			MedicationA: a, MedicationB: b, Severity: r.Severity, Note: r.Note,
		}
		medSet[a] = true
		medSet[b] = true
	}
	for m := range medSet {
		t.meds = append(t.meds, m)
	}
	sort.Strings(t.meds)
	return t
}

// pairKey builds one canonical key for an unordered medication pair, so
// (A,B) and (B,A) hit the same rule.
func pairKey(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return a + "\x00" + b
}

// Check matches every unordered pair of medications against the rule table
// and returns the warnings in deterministic order. The medication set is
// the patient's active medications plus any rule-table medication mentioned
// in the proposed recommendation texts. No warning is ever produced without
// a rule match.
func (t *InteractionTable) Check(history PatientHistory, recommendations []string) []InteractionWarning {
	medSet := map[string]bool{}
	for _, m := range history.ActiveMedications() {
		medSet[normalizeName(m)] = true
	}
	for _, m := range t.proposedMedications(recommendations) {
		medSet[m] = true
	}

	meds := make([]string, 0, len(medSet))
	for m := range medSet {
		meds = append(meds, m)
	}
	sort.Strings(meds)

	var warnings []InteractionWarning
	for i := 0; i < len(meds); i++ {
		for j := i + 1; j < len(meds); j++ {
			rule, ok := t.rules[pairKey(meds[i], meds[j])]
			if !ok {
				continue
			}
			warnings = append(warnings, InteractionWarning{
				MedicationA: rule.MedicationA,
				MedicationB: rule.MedicationB,
				Severity:    rule.Severity,
				Note:        rule.Note,
			})
		}
	}
	return warnings
}

// proposedMedications scans recommendation texts for medications the rule
// table knows about. Recommendations are free text ("start low-dose
// aspirin"), so this is a containment scan over the table's vocabulary, not
// an attempt to parse prescriptions.
func (t *InteractionTable) proposedMedications(recommendations []string) []string {
	if len(recommendations) == 0 {
		return nil
	}
	var found []string
	for _, med := range t.meds {
		for _, rec := range recommendations {
			if strings.Contains(normalizeName(rec), med) {
				found = append(found, med)
				break
			}
		}
	}
	return found
}

// SummarizeInteractions renders the warning list for the final record's
// history_analysis. An empty list yields the explicit limitation statement.
func SummarizeInteractions(warnings []InteractionWarning) string {
	if len(warnings) == 0 {
		return NoInteractionsStatement
	}
	parts := make([]string, 0, len(warnings))
	for _, w := range warnings {
		parts = append(parts, fmt.Sprintf("%s + %s (%s): %s", w.MedicationA, w.MedicationB, w.Severity, w.Note))
	}
	return fmt.Sprintf("%d known interaction(s) flagged: %s", len(warnings), strings.Join(parts, "; "))
}
