package grpc

import "time"

type MarkCompletedRequest struct {
	InterviewID    string `json:"interview_id"`
	Feedback       string `json:"feedback,omitempty"`
	FeedbackRating *int   `json:"feedback_rating,omitempty"`
}

type MarkNoShowRequest struct {
	InterviewID string `json:"interview_id"`
}

type CancelInterviewRequest struct {
	InterviewID string `json:"interview_id"`
	Reason      string `json:"reason,omitempty"`
}

type GetInterviewRequest struct {
	InterviewID string `json:"interview_id"`
}

type InterviewReply struct {
	Interview *Interview `json:"interview"`
}

type Interview struct {
	ID              string      `json:"id"`
	ApplicationID   string      `json:"application_id"`
	JobID           string      `json:"job_id,omitempty"`
	EmployerID      string      `json:"employer_id"`
	ApplicantID     string      `json:"applicant_id"`
	Status          string      `json:"status"`
	ProposedTimes   []time.Time `json:"proposed_times"`
	ConfirmedTime   *time.Time  `json:"confirmed_time,omitempty"`
	Type            string      `json:"type"`
	DurationMinutes int         `json:"duration_minutes"`
	Feedback        string      `json:"feedback,omitempty"`
	FeedbackRating  *int        `json:"feedback_rating,omitempty"`
	CancelledBy     string      `json:"cancelled_by,omitempty"`
	CancelReason    string      `json:"cancel_reason,omitempty"`
	UpdatedAt       time.Time   `json:"updated_at"`
}
