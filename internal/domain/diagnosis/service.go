package diagnosis

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/clinsight/clinsight/internal/platform/oracle"
)

// HistorySource provides the stored medical record for a patient. The
// patient domain implements it; fetch is synchronous and resolved before
// the engine runs.
type HistorySource interface {
	History(ctx context.Context, patientID uuid.UUID) (HistoryRecord, error)
}

type Service struct {
	engine  *Engine
	oracle  oracle.Client
	history HistorySource
	reports ReportRepository
	log     zerolog.Logger
}

func NewService(engine *Engine, client oracle.Client, history HistorySource, reports ReportRepository, log zerolog.Logger) *Service {
	return &Service{
		engine:  engine,
		oracle:  client,
		history: history,
		reports: reports,
		log:     log,
	}
}

// AnalyzeRequest is one diagnosis submission.
type AnalyzeRequest struct {
	PatientID         uuid.UUID `json:"patient_id"`
	PrimarySymptoms   []string  `json:"primary_symptoms"`
	SecondarySymptoms []string  `json:"secondary_symptoms"`
}

func (r AnalyzeRequest) symptoms() []string {
	out := make([]string, 0, len(r.PrimarySymptoms)+len(r.SecondarySymptoms))
	out = append(out, r.PrimarySymptoms...)
	out = append(out, r.SecondarySymptoms...)
	return out
}

// Analyze runs one diagnosis request end to end: history fetch, oracle
// call, scoring, persistence. Oracle failures of any kind degrade to the
// rule-based fallback rather than failing the request; a fallback result is
// labeled as such on the stored report.
func (s *Service) Analyze(ctx context.Context, req AnalyzeRequest) (*Report, error) {
	if req.PatientID == uuid.Nil {
		return nil, fmt.Errorf("patient_id is required")
	}
	if len(req.PrimarySymptoms) == 0 {
		return nil, fmt.Errorf("primary_symptoms is required")
	}

	record, err := s.history.History(ctx, req.PatientID)
	if err != nil {
		return nil, fmt.Errorf("fetch patient history: %w", err)
	}
	history, err := NewPatientHistory(record)
	if err != nil {
		return nil, err
	}

	result, fallback, dropped, err := s.evaluate(ctx, history, req)
	if err != nil {
		return nil, err
	}

	report := &Report{
		PatientID:         req.PatientID,
		PrimarySymptoms:   req.PrimarySymptoms,
		SecondarySymptoms: req.SecondarySymptoms,
		Result:            result,
		Fallback:          fallback,
		DroppedCandidates: dropped,
	}
	if err := s.reports.Create(ctx, report); err != nil {
		return nil, fmt.Errorf("persist report: %w", err)
	}
	return report, nil
}

func (s *Service) evaluate(ctx context.Context, history PatientHistory, req AnalyzeRequest) (*DiagnosisResult, bool, int, error) {
	symptoms := req.symptoms()

	parsed, dropped, err := s.consultOracle(ctx, history, req)
	if err != nil {
		var oracleErr *OracleResponseError
		if !errors.As(err, &oracleErr) && !errors.Is(err, oracle.ErrUnavailable) {
			return nil, false, 0, err
		}
		s.log.Warn().Err(err).Str("patient_id", req.PatientID.String()).
			Msg("oracle unusable, running rule-based fallback")
		result, ferr := s.engine.EvaluateFallback(history, symptoms)
		if ferr != nil {
			return nil, false, 0, ferr
		}
		return result, true, 0, nil
	}

	result, err := s.engine.Evaluate(EvaluateInput{
		History:  history,
		Oracle:   parsed,
		Symptoms: symptoms,
	})
	if err != nil {
		return nil, false, 0, err
	}
	return result, false, len(dropped), nil
}

func (s *Service) consultOracle(ctx context.Context, history PatientHistory, req AnalyzeRequest) (*OracleResponse, []DroppedCandidateWarning, error) {
	prompt := oracle.BuildAnalysisPrompt(oracle.PromptInput{
		PreviousConditions: describeConditions(history.Conditions),
		Medications:        describeMedications(history.Medications),
		RiskFactors:        history.RiskFactors,
		PrimarySymptoms:    req.PrimarySymptoms,
		SecondarySymptoms:  req.SecondarySymptoms,
	})

	raw, err := s.oracle.Analyze(ctx, prompt)
	if err != nil {
		if errors.Is(err, oracle.ErrUnavailable) {
			return nil, nil, err
		}
		return nil, nil, &OracleResponseError{Reason: "oracle call failed", Err: err}
	}

	parsed, dropped, err := ParseOracleResponse(raw)
	if err != nil {
		return nil, nil, err
	}
	for _, w := range dropped {
		s.log.Warn().Str("patient_id", req.PatientID.String()).Msg(w.String())
	}
	return parsed, dropped, nil
}

// GetReport returns one stored diagnosis run.
func (s *Service) GetReport(ctx context.Context, id uuid.UUID) (*Report, error) {
	return s.reports.GetByID(ctx, id)
}

// ListReports returns a patient's stored runs, newest first.
func (s *Service) ListReports(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	if patientID == uuid.Nil {
		return nil, 0, fmt.Errorf("patient_id is required")
	}
	return s.reports.ListByPatient(ctx, patientID, limit, offset)
}

// SymptomCatalog exposes the configured symptom lists for client pickers.
func (s *Service) SymptomCatalog() SymptomCatalog {
	return s.engine.policy.Symptoms
}

func describeConditions(conditions []HistoryCondition) []string {
	var out []string
	for _, c := range conditions {
		desc := c.Name
		if !c.Active {
			desc += " (resolved)"
		}
		out = append(out, desc)
	}
	return out
}

func describeMedications(meds []HistoryMedication) []string {
	var out []string
	for _, m := range meds {
		desc := m.Name
		if m.Dose != "" {
			desc += " " + m.Dose
		}
		if !m.Active {
			desc += " (discontinued)"
		}
		out = append(out, desc)
	}
	return out
}
