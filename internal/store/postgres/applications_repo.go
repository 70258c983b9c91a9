package postgres

import (
	"context"

	"github.com/uptrace/bun"

	"interviews/backend/internal/store"
)

// ApplicationRepo reads the job board's applications table. The interview
// service never writes to it.
type ApplicationRepo struct {
	db *bun.DB
}

func NewApplicationRepo(db *bun.DB) *ApplicationRepo {
	return &ApplicationRepo{db: db}
}

func (r *ApplicationRepo) GetApplication(ctx context.Context, applicationID string) (store.Application, error) {
	var row struct {
		ID          string `bun:"id"`
		JobID       string `bun:"job_id"`
		EmployerID  string `bun:"employer_id"`
		ApplicantID string `bun:"applicant_id"`
	}
	err := r.db.NewRaw(
		"SELECT id, job_id, employer_id, applicant_id FROM applications WHERE id = ? LIMIT 1",
		applicationID,
	).Scan(ctx, &row)
	if err != nil {
		return store.Application{}, classify(err)
	}
	return store.Application{
		ID:          row.ID,
		JobID:       row.JobID,
		EmployerID:  row.EmployerID,
		ApplicantID: row.ApplicantID,
	}, nil
}
