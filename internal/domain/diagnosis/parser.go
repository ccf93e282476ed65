package diagnosis

import (
	"encoding/json"
	"strconv"
	"strings"
)

// ParseOracleResponse validates and coerces the oracle's raw text into an
// OracleResponse. The oracle is untrusted: missing optional fields get
// defaults, out-of-range confidences are clamped, and unnamed candidates
// are dropped with a warning each. The only unrecoverable outcome is a
// response that is not structurally a collection of candidate records at
// all, which returns OracleResponseError so the caller can fall back.
func ParseOracleResponse(raw string) (*OracleResponse, []DroppedCandidateWarning, error) {
	block, ok := extractJSONBlock(raw)
	if !ok {
		return nil, nil, &OracleResponseError{Reason: "no JSON document in response"}
	}

	var top map[string]json.RawMessage
	if err := json.Unmarshal([]byte(block), &top); err != nil {
		// Some models answer with a bare array of candidates.
		var items []json.RawMessage
		if arrErr := json.Unmarshal([]byte(block), &items); arrErr == nil {
			candidates, dropped := parseCandidates(items)
			return &OracleResponse{PossibleConditions: candidates}, dropped, nil
		}
		return nil, nil, &OracleResponseError{Reason: "response is not a JSON document", Err: err}
	}

	condsRaw, ok := top["possible_conditions"]
	if !ok {
		return nil, nil, &OracleResponseError{Reason: "response has no possible_conditions collection"}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(condsRaw, &items); err != nil {
		return nil, nil, &OracleResponseError{Reason: "possible_conditions is not an array", Err: err}
	}

	candidates, dropped := parseCandidates(items)

	resp := &OracleResponse{
		PossibleConditions: candidates,
		SeverityAssessment: lenientString(top["severity_assessment"]),
		UrgentCareNeeded:   lenientBool(top["urgent_care_needed"]),
		Recommendations:    lenientStringSlice(top["recommendations"]),
		DifferentialNotes:  lenientString(top["differential_notes"]),
	}

	if haRaw, ok := top["history_analysis"]; ok {
		var ha map[string]json.RawMessage
		if err := json.Unmarshal(haRaw, &ha); err == nil {
			resp.HistoryAnalysis = OracleHistoryAnalysis{
				PreviousConditionsImpact: lenientString(ha["previous_conditions_impact"]),
				MedicationInteractions:   lenientString(ha["medication_interactions"]),
				RiskFactors:              lenientStringSlice(ha["risk_factors"]),
			}
		}
	}

	return resp, dropped, nil
}

// extractJSONBlock cuts the substring from the first '{' or '[' to the
// matching last '}' or ']'. Models wrap their JSON in prose or markdown
// fences often enough that decoding the raw text directly is hopeless.
func extractJSONBlock(raw string) (string, bool) {
	objStart := strings.IndexByte(raw, '{')
	arrStart := strings.IndexByte(raw, '[')

	start := objStart
	end := strings.LastIndexByte(raw, '}')
	if objStart == -1 || (arrStart != -1 && arrStart < objStart) {
		start = arrStart
		end = strings.LastIndexByte(raw, ']')
	}
	if start == -1 || end <= start {
		return "", false
	}
	return raw[start : end+1], true
}

func parseCandidates(items []json.RawMessage) ([]RawCandidate, []DroppedCandidateWarning) {
	candidates := make([]RawCandidate, 0, len(items))
	var dropped []DroppedCandidateWarning

	for i, item := range items {
		var fields map[string]json.RawMessage
		if err := json.Unmarshal(item, &fields); err != nil {
			dropped = append(dropped, DroppedCandidateWarning{
				Index: i, Reason: "candidate is not an object",
			})
			continue
		}

		name := strings.TrimSpace(lenientString(fields["name"]))
		if name == "" {
			dropped = append(dropped, DroppedCandidateWarning{
				Index: i, Reason: "candidate has no name",
			})
			continue
		}

		candidates = append(candidates, RawCandidate{
			Name:              name,
			Confidence:        clamp01(lenientFloat(fields["confidence"])),
			Description:       lenientString(fields["description"]),
			RecommendedTests:  lenientStringSlice(fields["recommended_tests"]),
			RelationToHistory: lenientString(fields["relation_to_history"]),
		})
	}

	return candidates, dropped
}

// lenientString decodes a JSON string, falling back to the raw token text
// for scalars of the wrong type. Absent or null values become "".
func lenientString(raw json.RawMessage) string {
	if len(raw) == 0 {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	token := strings.TrimSpace(string(raw))
	if token == "null" || strings.HasPrefix(token, "{") || strings.HasPrefix(token, "[") {
		return ""
	}
	return token
}

// lenientFloat decodes a JSON number, also accepting numeric strings
// (oracles quote confidence values now and then). Anything else is 0.
func lenientFloat(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return f
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if f, err := strconv.ParseFloat(strings.TrimSpace(s), 64); err == nil {
			return f
		}
	}
	return 0
}

func lenientBool(raw json.RawMessage) bool {
	if len(raw) == 0 {
		return false
	}
	var b bool
	if err := json.Unmarshal(raw, &b); err == nil {
		return b
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.EqualFold(strings.TrimSpace(s), "true")
	}
	return false
}

// lenientStringSlice decodes an array of strings, skipping elements of the
// wrong type. A scalar string becomes a one-element slice.
func lenientStringSlice(raw json.RawMessage) []string {
	if len(raw) == 0 {
		return []string{}
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		if s := lenientString(raw); s != "" {
			return []string{s}
		}
		return []string{}
	}
	out := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		if err := json.Unmarshal(item, &s); err == nil && strings.TrimSpace(s) != "" {
			out = append(out, s)
		}
	}
	return out
}

// clamp01 clamps v into [0,1].
func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
