package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient (id, name, birth_date)
		VALUES ($1, $2, $3)
		RETURNING created_at, updated_at`,
		p.ID, p.Name, p.BirthDate,
	).Scan(&p.CreatedAt, &p.UpdatedAt)
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	var p Patient
	err := r.pool.QueryRow(ctx, `
		SELECT id, name, birth_date, created_at, updated_at
		FROM patient WHERE id = $1`, id,
	).Scan(&p.ID, &p.Name, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, name, birth_date, created_at, updated_at
		FROM patient ORDER BY created_at DESC LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		var p Patient
		if err := rows.Scan(&p.ID, &p.Name, &p.BirthDate, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, 0, err
		}
		patients = append(patients, &p)
	}
	return patients, total, rows.Err()
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM patient WHERE id = $1`, id)
	return err
}

func (r *repoPG) AddCondition(ctx context.Context, c *Condition) error {
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_condition (id, patient_id, name, onset_date, resolved_date)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`,
		c.ID, c.PatientID, c.Name, c.OnsetDate, c.ResolvedDate,
	).Scan(&c.CreatedAt)
}

func (r *repoPG) ListConditions(ctx context.Context, patientID uuid.UUID) ([]Condition, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, name, onset_date, resolved_date, created_at
		FROM patient_condition WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Condition, error) {
		var c Condition
		err := row.Scan(&c.ID, &c.PatientID, &c.Name, &c.OnsetDate, &c.ResolvedDate, &c.CreatedAt)
		return c, err
	})
}

func (r *repoPG) ResolveCondition(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE patient_condition SET resolved_date = NOW() WHERE id = $1 AND resolved_date IS NULL`, id)
	return err
}

func (r *repoPG) AddMedication(ctx context.Context, m *Medication) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_medication (id, patient_id, name, dose, started_date, discontinued_date)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at`,
		m.ID, m.PatientID, m.Name, m.Dose, m.StartedDate, m.DiscontinuedDate,
	).Scan(&m.CreatedAt)
}

func (r *repoPG) ListMedications(ctx context.Context, patientID uuid.UUID) ([]Medication, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, name, dose, started_date, discontinued_date, created_at
		FROM patient_medication WHERE patient_id = $1 ORDER BY created_at`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (Medication, error) {
		var m Medication
		err := row.Scan(&m.ID, &m.PatientID, &m.Name, &m.Dose, &m.StartedDate, &m.DiscontinuedDate, &m.CreatedAt)
		return m, err
	})
}

func (r *repoPG) DiscontinueMedication(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`UPDATE patient_medication SET discontinued_date = NOW() WHERE id = $1 AND discontinued_date IS NULL`, id)
	return err
}

func (r *repoPG) AddRiskFactor(ctx context.Context, f *RiskFactor) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return r.pool.QueryRow(ctx, `
		INSERT INTO patient_risk_factor (id, patient_id, name)
		VALUES ($1, $2, $3)
		ON CONFLICT (patient_id, name) DO UPDATE SET name = EXCLUDED.name
		RETURNING created_at`,
		f.ID, f.PatientID, f.Name,
	).Scan(&f.CreatedAt)
}

func (r *repoPG) ListRiskFactors(ctx context.Context, patientID uuid.UUID) ([]RiskFactor, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, patient_id, name, created_at
		FROM patient_risk_factor WHERE patient_id = $1 ORDER BY name`, patientID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return pgx.CollectRows(rows, func(row pgx.CollectableRow) (RiskFactor, error) {
		var f RiskFactor
		err := row.Scan(&f.ID, &f.PatientID, &f.Name, &f.CreatedAt)
		return f, err
	})
}
