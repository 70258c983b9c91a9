package rest

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/service/interviews"
)

type interviewsService interface {
	Propose(ctx context.Context, actor auth.Actor, in interviews.ProposeInput) (domain.Interview, error)
	Confirm(ctx context.Context, actor auth.Actor, id uuid.UUID, chosen time.Time) (domain.Interview, error)
	Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (domain.Interview, error)
	MarkCompleted(ctx context.Context, actor auth.Actor, id uuid.UUID, in interviews.CompleteInput) (domain.Interview, error)
	MarkNoShow(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error)
	UpdateDetails(ctx context.Context, actor auth.Actor, id uuid.UUID, in interviews.DetailsInput) (domain.Interview, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error)
	ListFor(ctx context.Context, actor auth.Actor, q interviews.ListQuery) ([]domain.Interview, error)
	ListForApplicant(ctx context.Context, applicantID string, q interviews.ListQuery) ([]domain.Interview, error)
	Calendar(ctx context.Context, actor auth.Actor, period interviews.Period, timeZone string) ([]interviews.CalendarDay, error)
}

type InterviewsHandler struct {
	svc      interviewsService
	validate *validator.Validate
	log      *slog.Logger
}

func NewInterviewsHandler(svc interviewsService, log *slog.Logger) *InterviewsHandler {
	if log == nil {
		log = slog.Default()
	}
	return &InterviewsHandler{
		svc:      svc,
		validate: newValidator(),
		log:      log.With(slog.String("component", "rest.interviews")),
	}
}

func (h *InterviewsHandler) Propose(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Propose")
	if !ok {
		return
	}

	var req proposeRequest
	if !h.bind(w, r, log, &req, false) {
		return
	}

	iv, err := h.svc.Propose(r.Context(), actor, interviews.ProposeInput{
		ApplicationID:    req.ApplicationID,
		ProposedTimes:    req.ProposedTimes,
		Type:             domain.InterviewType(req.Type),
		Location:         req.Location,
		VideoLink:        req.VideoLink,
		Notes:            req.Notes,
		DurationMinutes:  req.DurationMinutes,
		InterviewerName:  req.InterviewerName,
		InterviewerEmail: req.InterviewerEmail,
		IdempotencyKey:   idempotencyKey(r),
	})
	if err != nil {
		writeServiceError(w, r, log, "Propose", err, msgAlreadyActive)
		return
	}

	log.Info("interview proposed",
		slog.String("interview_id", iv.ID.String()),
		slog.String("application_id", iv.ApplicationID),
	)
	writeJSON(w, http.StatusCreated, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) Confirm(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Confirm")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	var req confirmRequest
	if !h.bind(w, r, log, &req, false) {
		return
	}

	iv, err := h.svc.Confirm(r.Context(), actor, id, req.ConfirmedTime)
	if err != nil {
		writeServiceError(w, r, log, "Confirm", err, msgInviteUnavailable)
		return
	}

	log.Info("interview confirmed", slog.String("interview_id", iv.ID.String()))
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Cancel")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	var req cancelRequest
	if !h.bind(w, r, log, &req, true) {
		return
	}

	iv, err := h.svc.Cancel(r.Context(), actor, id, req.Reason)
	if err != nil {
		writeServiceError(w, r, log, "Cancel", err, msgNoLongerChangeable)
		return
	}

	log.Info("interview cancelled", slog.String("interview_id", iv.ID.String()))
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) Complete(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Complete")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	var req completeRequest
	if !h.bind(w, r, log, &req, true) {
		return
	}

	iv, err := h.svc.MarkCompleted(r.Context(), actor, id, interviews.CompleteInput{
		Feedback:       req.Feedback,
		FeedbackRating: req.FeedbackRating,
	})
	if err != nil {
		writeServiceError(w, r, log, "Complete", err, msgNoLongerChangeable)
		return
	}
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) NoShow(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "NoShow")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	iv, err := h.svc.MarkNoShow(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, log, "NoShow", err, msgNoLongerChangeable)
		return
	}
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) UpdateDetails(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "UpdateDetails")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	var req updateDetailsRequest
	if !h.bind(w, r, log, &req, false) {
		return
	}

	iv, err := h.svc.UpdateDetails(r.Context(), actor, id, interviews.DetailsInput{
		Location:         req.Location,
		VideoLink:        req.VideoLink,
		Notes:            req.Notes,
		InterviewerName:  req.InterviewerName,
		InterviewerEmail: req.InterviewerEmail,
	})
	if err != nil {
		writeServiceError(w, r, log, "UpdateDetails", err, msgNoLongerChangeable)
		return
	}
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) Get(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Get")
	if !ok {
		return
	}
	id, ok := h.interviewID(w, r, log)
	if !ok {
		return
	}

	iv, err := h.svc.Get(r.Context(), actor, id)
	if err != nil {
		writeServiceError(w, r, log, "Get", err, msgNoLongerChangeable)
		return
	}
	writeJSON(w, http.StatusOK, interviewEnvelope{Interview: toInterviewResponse(iv)})
}

func (h *InterviewsHandler) List(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "List")
	if !ok {
		return
	}
	q, ok := h.listQuery(w, r, log)
	if !ok {
		return
	}

	rows, err := h.svc.ListFor(r.Context(), actor, q)
	if err != nil {
		writeServiceError(w, r, log, "List", err, msgNoLongerChangeable)
		return
	}
	log.Debug("interviews listed", slog.String("period", string(q.Period)), slog.Int("count", len(rows)))
	writeJSON(w, http.StatusOK, toListResponse(rows))
}

func (h *InterviewsHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "ListMine")
	if !ok {
		return
	}
	q, ok := h.listQuery(w, r, log)
	if !ok {
		return
	}
	// Applicants see their upcoming interviews unless they ask for another period.
	if strings.TrimSpace(r.URL.Query().Get("period")) == "" {
		q.Period = interviews.PeriodUpcoming
	}

	rows, err := h.svc.ListForApplicant(r.Context(), actor.ID, q)
	if err != nil {
		writeServiceError(w, r, log, "ListMine", err, msgNoLongerChangeable)
		return
	}
	writeJSON(w, http.StatusOK, toListResponse(rows))
}

func (h *InterviewsHandler) Calendar(w http.ResponseWriter, r *http.Request) {
	actor, log, ok := h.begin(w, r, "Calendar")
	if !ok {
		return
	}

	period, err := interviews.ParsePeriod(r.URL.Query().Get("period"))
	if err != nil {
		writeServiceError(w, r, log, "Calendar", err, "")
		return
	}
	tz := strings.TrimSpace(r.URL.Query().Get("tz"))

	days, err := h.svc.Calendar(r.Context(), actor, period, tz)
	if err != nil {
		writeServiceError(w, r, log, "Calendar", err, "")
		return
	}
	if tz == "" {
		tz = "UTC"
	}
	writeJSON(w, http.StatusOK, toCalendarResponse(tz, days))
}

func (h *InterviewsHandler) begin(w http.ResponseWriter, r *http.Request, op string) (auth.Actor, *slog.Logger, bool) {
	actor, ok := auth.ActorFrom(r.Context())
	if !ok {
		writeError(w, http.StatusUnauthorized, "unauthenticated", "Missing bearer token.")
		return auth.Actor{}, nil, false
	}
	return actor, h.log.With(slog.String("op", op), slog.String("actor_id", actor.ID)), true
}

func (h *InterviewsHandler) interviewID(w http.ResponseWriter, r *http.Request, log *slog.Logger) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "bad_interview_id"))
		writeError(w, http.StatusBadRequest, "invalid_input", "interview id must be a UUID")
		return uuid.Nil, false
	}
	return id, true
}

// bind decodes and validates the body. optional endpoints accept an empty body.
func (h *InterviewsHandler) bind(w http.ResponseWriter, r *http.Request, log *slog.Logger, dst any, optional bool) bool {
	if err := decodeJSON(w, r, dst); err != nil {
		if !(optional && errors.Is(err, errEmptyBody)) {
			log.Warn("invalid request", slog.String("reason", "bad_body"), slog.Any("err", err))
			writeError(w, http.StatusBadRequest, "invalid_input", err.Error())
			return false
		}
	}
	if err := h.validate.Struct(dst); err != nil {
		msg := validationMessage(err)
		log.Warn("invalid request", slog.String("reason", msg))
		writeError(w, http.StatusBadRequest, "invalid_input", msg)
		return false
	}
	return true
}

func (h *InterviewsHandler) listQuery(w http.ResponseWriter, r *http.Request, log *slog.Logger) (interviews.ListQuery, bool) {
	values := r.URL.Query()
	period, err := interviews.ParsePeriod(values.Get("period"))
	if err != nil {
		writeServiceError(w, r, log, "List", err, "")
		return interviews.ListQuery{}, false
	}
	return interviews.ListQuery{
		Period: period,
		Status: domain.Status(strings.TrimSpace(values.Get("status"))),
		JobID:  values.Get("job_id"),
	}, true
}

func idempotencyKey(r *http.Request) string {
	key := r.Header.Get("Idempotency-Key")
	if key == "" {
		key = r.Header.Get("X-Idempotency-Key")
	}
	return strings.TrimSpace(key)
}
