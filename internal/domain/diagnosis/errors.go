package diagnosis

import "fmt"

// MalformedHistoryError means the patient record is unusable (no patient
// identifier). Fatal to the request.
type MalformedHistoryError struct {
	Reason string
}

func (e *MalformedHistoryError) Error() string {
	return fmt.Sprintf("malformed patient history: %s", e.Reason)
}

// OracleResponseError means the oracle's output was not structurally a
// collection of candidate records at all. Not fatal: the caller switches to
// rule-based fallback mode.
type OracleResponseError struct {
	Reason string
	Err    error
}

func (e *OracleResponseError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("unusable oracle response: %s: %v", e.Reason, e.Err)
	}
	return fmt.Sprintf("unusable oracle response: %s", e.Reason)
}

func (e *OracleResponseError) Unwrap() error { return e.Err }

// InvariantViolationError means the engine produced a record that violates
// one of its own cross-field invariants. This indicates an internal logic
// defect; the record must never be returned to a caller.
type InvariantViolationError struct {
	Invariant string
}

func (e *InvariantViolationError) Error() string {
	return fmt.Sprintf("diagnosis invariant violated: %s", e.Invariant)
}

// DroppedCandidateWarning records one oracle candidate that was discarded
// during parsing. Non-fatal; surfaced for observability.
type DroppedCandidateWarning struct {
	Index  int    `json:"index"`
	Reason string `json:"reason"`
}

func (w DroppedCandidateWarning) String() string {
	return fmt.Sprintf("candidate %d dropped: %s", w.Index, w.Reason)
}
