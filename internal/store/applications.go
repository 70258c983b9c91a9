package store

import "context"

// Application is the slice of a job application the interview workflow needs.
type Application struct {
	ID          string
	JobID       string
	EmployerID  string
	ApplicantID string
}

type ApplicationLookup interface {
	// GetApplication returns ErrNotFound when the application does not exist.
	GetApplication(ctx context.Context, applicationID string) (Application, error)
}
