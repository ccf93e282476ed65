package main

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/clinsight/clinsight/internal/config"
	"github.com/clinsight/clinsight/internal/domain/diagnosis"
	"github.com/clinsight/clinsight/internal/domain/patient"
	"github.com/clinsight/clinsight/internal/platform/oracle"
)

func TestNewOracleClient(t *testing.T) {
	cases := []struct {
		name         string
		cfg          config.Config
		wantDisabled bool
		wantErr      bool
	}{
		{
			name:         "gemini with key",
			cfg:          config.Config{OracleProvider: "gemini", GeminiAPIKey: "key", OracleTimeout: 30},
			wantDisabled: false,
		},
		{
			name:         "gemini without key degrades to disabled",
			cfg:          config.Config{OracleProvider: "gemini", OracleTimeout: 30},
			wantDisabled: true,
		},
		{
			name:         "anthropic with key",
			cfg:          config.Config{OracleProvider: "anthropic", AnthropicKey: "key", OracleTimeout: 30},
			wantDisabled: false,
		},
		{
			name:         "none",
			cfg:          config.Config{OracleProvider: "none", OracleTimeout: 30},
			wantDisabled: true,
		},
		{
			name:    "unknown provider",
			cfg:     config.Config{OracleProvider: "cohere", OracleTimeout: 30},
			wantErr: true,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, err := newOracleClient(&tc.cfg)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected error")
				}
				return
			}
			if err != nil {
				t.Fatalf("newOracleClient: %v", err)
			}
			_, disabled := client.(oracle.Disabled)
			if disabled != tc.wantDisabled {
				t.Errorf("disabled = %v, want %v", disabled, tc.wantDisabled)
			}
		})
	}
}

func TestConvertHistory(t *testing.T) {
	patientID := uuid.New()
	onset := time.Date(2019, 3, 1, 0, 0, 0, 0, time.UTC)
	resolved := time.Date(2021, 2, 1, 0, 0, 0, 0, time.UTC)
	discontinued := time.Date(2022, 6, 1, 0, 0, 0, 0, time.UTC)

	hist := &patient.History{
		Patient: &patient.Patient{ID: patientID, Name: "Jane Doe"},
		Conditions: []patient.Condition{
			{Name: "hypertension", OnsetDate: &onset},
			{Name: "pneumonia", ResolvedDate: &resolved},
		},
		Medications: []patient.Medication{
			{Name: "lisinopril", Dose: "5mg"},
			{Name: "amoxicillin", DiscontinuedDate: &discontinued},
		},
		RiskFactors: []patient.RiskFactor{{Name: "smoking"}},
	}

	rec := convertHistory(hist)

	if rec.PatientID != patientID.String() {
		t.Errorf("patient id = %q", rec.PatientID)
	}
	if len(rec.Conditions) != 2 {
		t.Fatalf("conditions = %+v", rec.Conditions)
	}
	if rec.Conditions[0].ResolvedDate != nil {
		t.Error("active condition should have nil resolved date")
	}
	if rec.Conditions[1].ResolvedDate == nil {
		t.Error("resolved condition lost its resolved date")
	}
	if len(rec.Medications) != 2 || rec.Medications[0].Dose != "5mg" {
		t.Errorf("medications = %+v", rec.Medications)
	}
	if len(rec.RiskFactors) != 1 || rec.RiskFactors[0] != "smoking" {
		t.Errorf("risk factors = %+v", rec.RiskFactors)
	}

	// Converted record feeds straight into the engine's normalizer.
	norm, err := diagnosis.NewPatientHistory(rec)
	if err != nil {
		t.Fatalf("NewPatientHistory: %v", err)
	}
	if got := norm.ActiveMedications(); len(got) != 1 || got[0] != "lisinopril" {
		t.Errorf("active medications = %v", got)
	}
}
