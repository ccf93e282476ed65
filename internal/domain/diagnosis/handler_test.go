package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
)

func setupHandlerTest(orc *mockOracle, patientID uuid.UUID, rec HistoryRecord) (*echo.Echo, *mockReportRepo) {
	e := echo.New()
	repo := newMockReportRepo()
	h := NewHandler(newTestService(orc, repo, patientID, rec))
	h.RegisterRoutes(e.Group("/api"))
	return e, repo
}

func TestHandler_Analyze(t *testing.T) {
	patientID := uuid.New()
	orc := &mockOracle{response: `{"possible_conditions": [{"name": "Flu", "confidence": 0.7}]}`}
	e, _ := setupHandlerTest(orc, patientID, HistoryRecord{PatientID: patientID.String()})

	body := fmt.Sprintf(`{"patient_id": %q, "primary_symptoms": ["fever", "cough"]}`, patientID)
	req := httptest.NewRequest(http.MethodPost, "/api/diagnosis/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var report Report
	if err := json.Unmarshal(rec.Body.Bytes(), &report); err != nil {
		t.Fatal(err)
	}
	if report.ID == uuid.Nil {
		t.Error("report id missing")
	}
	if len(report.Result.PossibleConditions) != 1 {
		t.Errorf("conditions = %+v", report.Result.PossibleConditions)
	}
}

func TestHandler_Analyze_MissingSymptoms(t *testing.T) {
	patientID := uuid.New()
	e, _ := setupHandlerTest(&mockOracle{}, patientID, HistoryRecord{PatientID: patientID.String()})

	body := fmt.Sprintf(`{"patient_id": %q}`, patientID)
	req := httptest.NewRequest(http.MethodPost, "/api/diagnosis/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_Analyze_MalformedHistory(t *testing.T) {
	patientID := uuid.New()
	// Stored record has no patient identifier.
	e, _ := setupHandlerTest(&mockOracle{}, patientID, HistoryRecord{})

	body := fmt.Sprintf(`{"patient_id": %q, "primary_symptoms": ["fever"]}`, patientID)
	req := httptest.NewRequest(http.MethodPost, "/api/diagnosis/analyze", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandler_GetReport_NotFound(t *testing.T) {
	patientID := uuid.New()
	e, _ := setupHandlerTest(&mockOracle{}, patientID, HistoryRecord{PatientID: patientID.String()})

	req := httptest.NewRequest(http.MethodGet, "/api/diagnosis/reports/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", rec.Code)
	}
}

func TestHandler_ListReports(t *testing.T) {
	patientID := uuid.New()
	orc := &mockOracle{response: `{"possible_conditions": []}`}
	e, repo := setupHandlerTest(orc, patientID, HistoryRecord{PatientID: patientID.String()})

	if err := repo.Create(context.Background(), &Report{PatientID: patientID, Result: &DiagnosisResult{}}); err != nil {
		t.Fatal(err)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/patients/"+patientID.String()+"/diagnoses", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Total int `json:"total"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Total != 1 {
		t.Errorf("total = %d, want 1", resp.Total)
	}
}

func TestHandler_ListReports_BadPatientID(t *testing.T) {
	patientID := uuid.New()
	e, _ := setupHandlerTest(&mockOracle{}, patientID, HistoryRecord{PatientID: patientID.String()})

	req := httptest.NewRequest(http.MethodGet, "/api/patients/not-a-uuid/diagnoses", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandler_ListSymptoms(t *testing.T) {
	patientID := uuid.New()
	e, _ := setupHandlerTest(&mockOracle{}, patientID, HistoryRecord{PatientID: patientID.String()})

	req := httptest.NewRequest(http.MethodGet, "/api/symptoms", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var catalog SymptomCatalog
	if err := json.Unmarshal(rec.Body.Bytes(), &catalog); err != nil {
		t.Fatal(err)
	}
	if len(catalog.Primary) == 0 || len(catalog.Secondary) == 0 {
		t.Errorf("catalog = %+v", catalog)
	}
}
