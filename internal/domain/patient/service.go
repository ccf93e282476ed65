package patient

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if strings.TrimSpace(p.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) DeletePatient(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}

func (s *Service) AddCondition(ctx context.Context, c *Condition) error {
	if c.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(c.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.AddCondition(ctx, c)
}

func (s *Service) ResolveCondition(ctx context.Context, id uuid.UUID) error {
	return s.repo.ResolveCondition(ctx, id)
}

func (s *Service) AddMedication(ctx context.Context, m *Medication) error {
	if m.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(m.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.AddMedication(ctx, m)
}

func (s *Service) DiscontinueMedication(ctx context.Context, id uuid.UUID) error {
	return s.repo.DiscontinueMedication(ctx, id)
}

func (s *Service) AddRiskFactor(ctx context.Context, f *RiskFactor) error {
	if f.PatientID == uuid.Nil {
		return fmt.Errorf("patient_id is required")
	}
	if strings.TrimSpace(f.Name) == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.AddRiskFactor(ctx, f)
}

// History assembles the patient's full stored record.
func (s *Service) History(ctx context.Context, id uuid.UUID) (*History, error) {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	conditions, err := s.repo.ListConditions(ctx, id)
	if err != nil {
		return nil, err
	}
	medications, err := s.repo.ListMedications(ctx, id)
	if err != nil {
		return nil, err
	}
	riskFactors, err := s.repo.ListRiskFactors(ctx, id)
	if err != nil {
		return nil, err
	}
	if conditions == nil {
		conditions = []Condition{}
	}
	if medications == nil {
		medications = []Medication{}
	}
	if riskFactors == nil {
		riskFactors = []RiskFactor{}
	}
	return &History{
		Patient:     p,
		Conditions:  conditions,
		Medications: medications,
		RiskFactors: riskFactors,
	}, nil
}
