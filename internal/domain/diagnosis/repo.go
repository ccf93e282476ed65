package diagnosis

import (
	"context"

	"github.com/google/uuid"
)

// ReportRepository persists completed diagnosis runs.
type ReportRepository interface {
	Create(ctx context.Context, report *Report) error
	GetByID(ctx context.Context, id uuid.UUID) (*Report, error)
	ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error)
}
