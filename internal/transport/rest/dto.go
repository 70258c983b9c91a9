package rest

import (
	"time"

	"interviews/backend/internal/domain"
	"interviews/backend/internal/service/interviews"
)

type proposeRequest struct {
	ApplicationID    string      `json:"application_id" validate:"required,max=128"`
	ProposedTimes    []time.Time `json:"proposed_times" validate:"required,min=1,max=3,dive,required"`
	Type             string      `json:"type" validate:"required,oneof=in-person video phone"`
	Location         string      `json:"location"`
	VideoLink        string      `json:"video_link"`
	Notes            string      `json:"notes"`
	DurationMinutes  int         `json:"duration_minutes" validate:"required,gt=0"`
	InterviewerName  string      `json:"interviewer_name"`
	InterviewerEmail string      `json:"interviewer_email"`
}

type confirmRequest struct {
	ConfirmedTime time.Time `json:"confirmed_time" validate:"required"`
}

type cancelRequest struct {
	Reason string `json:"reason"`
}

type completeRequest struct {
	Feedback       string `json:"feedback"`
	FeedbackRating *int   `json:"feedback_rating" validate:"omitempty,min=1,max=5"`
}

type updateDetailsRequest struct {
	Location         *string `json:"location"`
	VideoLink        *string `json:"video_link"`
	Notes            *string `json:"notes"`
	InterviewerName  *string `json:"interviewer_name"`
	InterviewerEmail *string `json:"interviewer_email"`
}

type interviewResponse struct {
	ID               string      `json:"id"`
	ApplicationID    string      `json:"application_id"`
	JobID            string      `json:"job_id,omitempty"`
	EmployerID       string      `json:"employer_id"`
	ApplicantID      string      `json:"applicant_id"`
	Status           string      `json:"status"`
	ProposedTimes    []time.Time `json:"proposed_times"`
	ConfirmedTime    *time.Time  `json:"confirmed_time"`
	EffectiveTime    time.Time   `json:"effective_time"`
	Type             string      `json:"type"`
	Location         string      `json:"location,omitempty"`
	VideoLink        string      `json:"video_link,omitempty"`
	Notes            string      `json:"notes,omitempty"`
	InterviewerName  string      `json:"interviewer_name,omitempty"`
	InterviewerEmail string      `json:"interviewer_email,omitempty"`
	DurationMinutes  int         `json:"duration_minutes"`
	Feedback         string      `json:"feedback,omitempty"`
	FeedbackRating   *int        `json:"feedback_rating,omitempty"`
	CreatedBy        string      `json:"created_by"`
	CancelledBy      string      `json:"cancelled_by,omitempty"`
	CancelReason     string      `json:"cancel_reason,omitempty"`
	CreatedAt        time.Time   `json:"created_at"`
	UpdatedAt        time.Time   `json:"updated_at"`
}

type interviewEnvelope struct {
	Interview interviewResponse `json:"interview"`
}

type listResponse struct {
	Interviews []interviewResponse `json:"interviews"`
}

type calendarDayResponse struct {
	Date       string              `json:"date"`
	Interviews []interviewResponse `json:"interviews"`
}

type calendarResponse struct {
	TimeZone string                `json:"time_zone"`
	Days     []calendarDayResponse `json:"days"`
}

func toInterviewResponse(iv domain.Interview) interviewResponse {
	return interviewResponse{
		ID:               iv.ID.String(),
		ApplicationID:    iv.ApplicationID,
		JobID:            iv.JobID,
		EmployerID:       iv.EmployerID,
		ApplicantID:      iv.ApplicantID,
		Status:           string(iv.Status),
		ProposedTimes:    iv.ProposedTimes,
		ConfirmedTime:    iv.ConfirmedTime,
		EffectiveTime:    iv.EffectiveTime(),
		Type:             string(iv.Type),
		Location:         iv.Location,
		VideoLink:        iv.VideoLink,
		Notes:            iv.Notes,
		InterviewerName:  iv.InterviewerName,
		InterviewerEmail: iv.InterviewerEmail,
		DurationMinutes:  iv.DurationMinutes,
		Feedback:         iv.Feedback,
		FeedbackRating:   iv.FeedbackRating,
		CreatedBy:        iv.CreatedBy,
		CancelledBy:      iv.CancelledBy,
		CancelReason:     iv.CancelReason,
		CreatedAt:        iv.CreatedAt,
		UpdatedAt:        iv.UpdatedAt,
	}
}

func toListResponse(rows []domain.Interview) listResponse {
	out := listResponse{Interviews: make([]interviewResponse, 0, len(rows))}
	for _, iv := range rows {
		out.Interviews = append(out.Interviews, toInterviewResponse(iv))
	}
	return out
}

func toCalendarResponse(tz string, days []interviews.CalendarDay) calendarResponse {
	out := calendarResponse{TimeZone: tz, Days: make([]calendarDayResponse, 0, len(days))}
	for _, d := range days {
		out.Days = append(out.Days, calendarDayResponse{
			Date:       d.Date,
			Interviews: toListResponse(d.Interviews).Interviews,
		})
	}
	return out
}
