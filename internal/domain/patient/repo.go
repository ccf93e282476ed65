package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	Delete(ctx context.Context, id uuid.UUID) error

	AddCondition(ctx context.Context, c *Condition) error
	ListConditions(ctx context.Context, patientID uuid.UUID) ([]Condition, error)
	ResolveCondition(ctx context.Context, id uuid.UUID) error

	AddMedication(ctx context.Context, m *Medication) error
	ListMedications(ctx context.Context, patientID uuid.UUID) ([]Medication, error)
	DiscontinueMedication(ctx context.Context, id uuid.UUID) error

	AddRiskFactor(ctx context.Context, r *RiskFactor) error
	ListRiskFactors(ctx context.Context, patientID uuid.UUID) ([]RiskFactor, error)
}
