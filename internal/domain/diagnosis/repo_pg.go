package diagnosis

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) ReportRepository {
	return &repoPG{pool: pool}
}

const reportCols = `id, patient_id, primary_symptoms, secondary_symptoms, result, fallback, dropped_candidates, created_at`

func (r *repoPG) Create(ctx context.Context, report *Report) error {
	if report.ID == uuid.Nil {
		report.ID = uuid.New()
	}
	primary, err := json.Marshal(orEmpty(report.PrimarySymptoms))
	if err != nil {
		return fmt.Errorf("encode primary symptoms: %w", err)
	}
	secondary, err := json.Marshal(orEmpty(report.SecondarySymptoms))
	if err != nil {
		return fmt.Errorf("encode secondary symptoms: %w", err)
	}
	result, err := json.Marshal(report.Result)
	if err != nil {
		return fmt.Errorf("encode result: %w", err)
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO diagnosis_report (
			id, patient_id, primary_symptoms, secondary_symptoms, result, fallback, dropped_candidates
		) VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		report.ID, report.PatientID, primary, secondary, result, report.Fallback, report.DroppedCandidates,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Report, error) {
	return scanReport(r.pool.QueryRow(ctx, `SELECT `+reportCols+` FROM diagnosis_report WHERE id = $1`, id))
}

func (r *repoPG) ListByPatient(ctx context.Context, patientID uuid.UUID, limit, offset int) ([]*Report, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM diagnosis_report WHERE patient_id = $1`, patientID).Scan(&total); err != nil {
		return nil, 0, err
	}
	rows, err := r.pool.Query(ctx,
		`SELECT `+reportCols+` FROM diagnosis_report WHERE patient_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`,
		patientID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	var reports []*Report
	for rows.Next() {
		rep, err := scanReport(rows)
		if err != nil {
			return nil, 0, err
		}
		reports = append(reports, rep)
	}
	return reports, total, rows.Err()
}

func scanReport(row pgx.Row) (*Report, error) {
	var (
		rep       Report
		primary   []byte
		secondary []byte
		result    []byte
	)
	if err := row.Scan(&rep.ID, &rep.PatientID, &primary, &secondary, &result, &rep.Fallback, &rep.DroppedCandidates, &rep.CreatedAt); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(primary, &rep.PrimarySymptoms); err != nil {
		return nil, fmt.Errorf("decode primary symptoms: %w", err)
	}
	if err := json.Unmarshal(secondary, &rep.SecondarySymptoms); err != nil {
		return nil, fmt.Errorf("decode secondary symptoms: %w", err)
	}
	if err := json.Unmarshal(result, &rep.Result); err != nil {
		return nil, fmt.Errorf("decode result: %w", err)
	}
	return &rep, nil
}

func orEmpty(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
