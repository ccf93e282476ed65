package patient

import (
	"time"

	"github.com/google/uuid"
)

type Patient struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	Name      string     `db:"name" json:"name"`
	BirthDate *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt time.Time  `db:"updated_at" json:"updated_at"`
}

// Condition is one entry in a patient's condition history. A nil
// ResolvedDate means the condition is still active.
type Condition struct {
	ID           uuid.UUID  `db:"id" json:"id"`
	PatientID    uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name         string     `db:"name" json:"name"`
	OnsetDate    *time.Time `db:"onset_date" json:"onset_date,omitempty"`
	ResolvedDate *time.Time `db:"resolved_date" json:"resolved_date,omitempty"`
	CreatedAt    time.Time  `db:"created_at" json:"created_at"`
}

// Medication is one entry in a patient's medication list. A nil
// DiscontinuedDate means the medication is still being taken.
type Medication struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	PatientID        uuid.UUID  `db:"patient_id" json:"patient_id"`
	Name             string     `db:"name" json:"name"`
	Dose             string     `db:"dose" json:"dose,omitempty"`
	StartedDate      *time.Time `db:"started_date" json:"started_date,omitempty"`
	DiscontinuedDate *time.Time `db:"discontinued_date" json:"discontinued_date,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
}

type RiskFactor struct {
	ID        uuid.UUID `db:"id" json:"id"`
	PatientID uuid.UUID `db:"patient_id" json:"patient_id"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// History is the full stored record for one patient, as served by the
// history endpoint and handed to the diagnosis engine.
type History struct {
	Patient     *Patient     `json:"patient"`
	Conditions  []Condition  `json:"conditions"`
	Medications []Medication `json:"medications"`
	RiskFactors []RiskFactor `json:"risk_factors"`
}
