package diagnosis

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ScoringPolicy collects the tunable weights and thresholds of the engine.
// The zero value is not usable; start from DefaultPolicy.
type ScoringPolicy struct {
	// HistoryBoost is added to a candidate's confidence when its name
	// matches an active prior condition.
	HistoryBoost float64 `yaml:"history_boost"`
	// InteractionPenalty is subtracted per actionable interaction warning
	// implicated in a candidate.
	InteractionPenalty float64 `yaml:"interaction_penalty"`
	// LowConfidenceFloor marks candidates ranked as rule-outs. They are
	// always retained so a clinician sees them, but sort after everything
	// else.
	LowConfidenceFloor float64 `yaml:"low_confidence_floor"`
	// UrgentTopConfidence is the minimum top confidence for a red-flag
	// presentation to be classified critical.
	UrgentTopConfidence float64 `yaml:"urgent_top_confidence"`
	// SignificantTopConfidence classifies a presentation as significant.
	SignificantTopConfidence float64 `yaml:"significant_top_confidence"`
	// UncertainTopConfidence is the ceiling under which the assessment is
	// reported as uncertain.
	UncertainTopConfidence float64 `yaml:"uncertain_top_confidence"`
	// RedFlagSymptoms are the symptom keywords that force heightened
	// severity consideration.
	RedFlagSymptoms []string `yaml:"red_flag_symptoms"`
}

// InteractionRule is one known pairwise medication interaction. Matching is
// symmetric: (A,B) and (B,A) are the same rule.
type InteractionRule struct {
	MedicationA string              `yaml:"medication_a"`
	MedicationB string              `yaml:"medication_b"`
	Severity    InteractionSeverity `yaml:"severity"`
	Note        string              `yaml:"note"`
}

// SymptomCatalog is the list of symptoms the intake UI offers, split the
// way the product presents them.
type SymptomCatalog struct {
	Primary   []string `yaml:"primary" json:"primary"`
	Secondary []string `yaml:"secondary" json:"secondary"`
}

// Policy is the full engine policy document: scoring knobs, the interaction
// rule table, and the symptom catalog. Loaded once at startup and treated
// as read-only afterwards.
type Policy struct {
	Scoring      ScoringPolicy     `yaml:"scoring"`
	Interactions []InteractionRule `yaml:"interactions"`
	Symptoms     SymptomCatalog    `yaml:"symptoms"`
}

func DefaultScoringPolicy() ScoringPolicy {
	return ScoringPolicy{
		HistoryBoost:             0.10,
		InteractionPenalty:       0.05,
		LowConfidenceFloor:       0.05,
		UrgentTopConfidence:      0.5,
		SignificantTopConfidence: 0.7,
		UncertainTopConfidence:   0.3,
		RedFlagSymptoms: []string{
			"chest pain",
			"difficulty breathing",
			"shortness of breath",
			"severe bleeding",
			"loss of consciousness",
			"sudden confusion",
			"slurred speech",
			"severe abdominal pain",
		},
	}
}

// DefaultInteractionRules is the built-in rule table. It is deliberately
// small and conservative: the checker never infers interactions beyond it.
func DefaultInteractionRules() []InteractionRule {
	return []InteractionRule{
		{MedicationA: "warfarin", MedicationB: "aspirin", Severity: SeveritySevere,
			Note: "combined anticoagulant and antiplatelet effect greatly increases bleeding risk"},
		{MedicationA: "warfarin", MedicationB: "ibuprofen", Severity: SeveritySevere,
			Note: "NSAID use with warfarin increases risk of gastrointestinal bleeding"},
		{MedicationA: "lisinopril", MedicationB: "spironolactone", Severity: SeverityModerate,
			Note: "ACE inhibitor with potassium-sparing diuretic can cause hyperkalemia"},
		{MedicationA: "lisinopril", MedicationB: "ibuprofen", Severity: SeverityModerate,
			Note: "NSAIDs blunt ACE inhibitor effect and can impair renal function"},
		{MedicationA: "metformin", MedicationB: "prednisone", Severity: SeverityModerate,
			Note: "corticosteroids raise blood glucose and oppose metformin control"},
		{MedicationA: "sertraline", MedicationB: "tramadol", Severity: SeveritySevere,
			Note: "combined serotonergic agents carry risk of serotonin syndrome"},
		{MedicationA: "simvastatin", MedicationB: "clarithromycin", Severity: SeveritySevere,
			Note: "CYP3A4 inhibition raises statin levels and risk of rhabdomyolysis"},
		{MedicationA: "digoxin", MedicationB: "amiodarone", Severity: SeverityModerate,
			Note: "amiodarone raises digoxin levels; dose reduction usually required"},
		{MedicationA: "levothyroxine", MedicationB: "calcium carbonate", Severity: SeverityLow,
			Note: "calcium reduces levothyroxine absorption; separate doses by several hours"},
	}
}

func defaultSymptomCatalog() SymptomCatalog {
	return SymptomCatalog{
		Primary: []string{
			"chest pain", "difficulty breathing", "severe headache", "high fever",
			"severe abdominal pain", "palpitations", "fainting",
		},
		Secondary: []string{
			"fatigue", "nausea", "dizziness", "mild fever", "cough",
			"muscle aches", "loss of appetite",
		},
	}
}

// DefaultPolicy returns the compiled-in policy document.
func DefaultPolicy() Policy {
	return Policy{
		Scoring:      DefaultScoringPolicy(),
		Interactions: DefaultInteractionRules(),
		Symptoms:     defaultSymptomCatalog(),
	}
}

// LoadPolicy reads a YAML policy file over the defaults: keys absent from
// the file keep their compiled-in values. An empty path returns the
// defaults unchanged.
func LoadPolicy(path string) (Policy, error) {
	policy := DefaultPolicy()
	if path == "" {
		return policy, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Policy{}, fmt.Errorf("read policy file: %w", err)
	}

	if err := yaml.Unmarshal(data, &policy); err != nil {
		return Policy{}, fmt.Errorf("parse policy file %s: %w", path, err)
	}

	if err := policy.Scoring.validate(); err != nil {
		return Policy{}, fmt.Errorf("policy file %s: %w", path, err)
	}
	return policy, nil
}

func (s ScoringPolicy) validate() error {
	inUnit := func(name string, v float64) error {
		if v < 0 || v > 1 {
			return fmt.Errorf("%s must be in [0,1], got %v", name, v)
		}
		return nil
	}
	for _, check := range []struct {
		name string
		v    float64
	}{
		{"history_boost", s.HistoryBoost},
		{"interaction_penalty", s.InteractionPenalty},
		{"low_confidence_floor", s.LowConfidenceFloor},
		{"urgent_top_confidence", s.UrgentTopConfidence},
		{"significant_top_confidence", s.SignificantTopConfidence},
		{"uncertain_top_confidence", s.UncertainTopConfidence},
	} {
		if err := inUnit(check.name, check.v); err != nil {
			return err
		}
	}
	return nil
}
