package grpc

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/service/interviews"
	"interviews/backend/internal/store"
)

const opsServiceName = "interviews.v1.InterviewOps"

// InterviewOpsServer is the operator surface. NewServer only lets admin bearer
// tokens through; the verified actor rides on the context.
type InterviewOpsServer interface {
	MarkCompleted(context.Context, *MarkCompletedRequest) (*InterviewReply, error)
	MarkNoShow(context.Context, *MarkNoShowRequest) (*InterviewReply, error)
	CancelInterview(context.Context, *CancelInterviewRequest) (*InterviewReply, error)
	GetInterview(context.Context, *GetInterviewRequest) (*InterviewReply, error)
}

type opsService interface {
	MarkCompleted(ctx context.Context, actor auth.Actor, id uuid.UUID, in interviews.CompleteInput) (domain.Interview, error)
	MarkNoShow(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error)
	Cancel(ctx context.Context, actor auth.Actor, id uuid.UUID, reason string) (domain.Interview, error)
	Get(ctx context.Context, actor auth.Actor, id uuid.UUID) (domain.Interview, error)
}

type OpsServer struct {
	svc opsService
	log *slog.Logger
}

func NewOpsServer(svc opsService, log *slog.Logger) *OpsServer {
	if log == nil {
		log = slog.Default()
	}
	return &OpsServer{
		svc: svc,
		log: log.With(slog.String("component", "grpc.ops")),
	}
}

func (s *OpsServer) MarkCompleted(ctx context.Context, req *MarkCompletedRequest) (*InterviewReply, error) {
	log := s.log.With(slog.String("rpc", "MarkCompleted"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, id, err := s.begin(ctx, log, req.InterviewID)
	if err != nil {
		return nil, err
	}

	iv, err := s.svc.MarkCompleted(ctx, actor, id, interviews.CompleteInput{
		Feedback:       req.Feedback,
		FeedbackRating: req.FeedbackRating,
	})
	if err != nil {
		return nil, s.toStatus(log, err, id, "Only a confirmed interview can be marked completed.")
	}

	log.Info("interview marked completed", slog.String("interview_id", id.String()), slog.String("actor_id", actor.ID))
	return &InterviewReply{Interview: toWireInterview(iv)}, nil
}

func (s *OpsServer) MarkNoShow(ctx context.Context, req *MarkNoShowRequest) (*InterviewReply, error) {
	log := s.log.With(slog.String("rpc", "MarkNoShow"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, id, err := s.begin(ctx, log, req.InterviewID)
	if err != nil {
		return nil, err
	}

	iv, err := s.svc.MarkNoShow(ctx, actor, id)
	if err != nil {
		return nil, s.toStatus(log, err, id, "Only a confirmed interview can be marked as a no-show.")
	}

	log.Info("interview marked no-show", slog.String("interview_id", id.String()), slog.String("actor_id", actor.ID))
	return &InterviewReply{Interview: toWireInterview(iv)}, nil
}

func (s *OpsServer) CancelInterview(ctx context.Context, req *CancelInterviewRequest) (*InterviewReply, error) {
	log := s.log.With(slog.String("rpc", "CancelInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, id, err := s.begin(ctx, log, req.InterviewID)
	if err != nil {
		return nil, err
	}

	iv, err := s.svc.Cancel(ctx, actor, id, req.Reason)
	if err != nil {
		return nil, s.toStatus(log, err, id, "This interview can no longer be cancelled.")
	}

	log.Info("interview cancelled", slog.String("interview_id", id.String()), slog.String("actor_id", actor.ID))
	return &InterviewReply{Interview: toWireInterview(iv)}, nil
}

func (s *OpsServer) GetInterview(ctx context.Context, req *GetInterviewRequest) (*InterviewReply, error) {
	log := s.log.With(slog.String("rpc", "GetInterview"))

	if req == nil {
		log.Warn("invalid request", slog.String("reason", "nil_request"))
		return nil, status.Error(codes.InvalidArgument, "request is required")
	}
	actor, id, err := s.begin(ctx, log, req.InterviewID)
	if err != nil {
		return nil, err
	}

	iv, err := s.svc.Get(ctx, actor, id)
	if err != nil {
		return nil, s.toStatus(log, err, id, "")
	}

	log.Debug("interview fetched", slog.String("interview_id", id.String()))
	return &InterviewReply{Interview: toWireInterview(iv)}, nil
}

func (s *OpsServer) begin(ctx context.Context, log *slog.Logger, rawID string) (auth.Actor, uuid.UUID, error) {
	actor, ok := auth.ActorFrom(ctx)
	if !ok {
		log.Warn("unauthenticated", slog.String("reason", "missing_actor"))
		return auth.Actor{}, uuid.Nil, status.Error(codes.Unauthenticated, "authentication required")
	}
	if !actor.IsAdmin() {
		log.Warn("forbidden", slog.String("reason", "not_admin"), slog.String("actor_id", actor.ID))
		return auth.Actor{}, uuid.Nil, status.Error(codes.PermissionDenied, "admin role required")
	}
	id, err := uuid.Parse(strings.TrimSpace(rawID))
	if err != nil {
		log.Warn("invalid request", slog.String("reason", "invalid_uuid"), slog.String("actor_id", actor.ID))
		return auth.Actor{}, uuid.Nil, status.Error(codes.InvalidArgument, "interview_id must be a UUID")
	}
	return actor, id, nil
}

func (s *OpsServer) toStatus(log *slog.Logger, err error, id uuid.UUID, conflictMsg string) error {
	idAttr := slog.String("interview_id", id.String())

	var vErr *interviews.ValidationError
	switch {
	case errors.As(err, &vErr):
		log.Warn("invalid request", slog.Any("err", err), idAttr)
		return status.Error(codes.InvalidArgument, vErr.Error())
	case errors.Is(err, interviews.ErrForbidden):
		log.Info("forbidden", idAttr)
		return status.Error(codes.PermissionDenied, "not allowed")
	case errors.Is(err, store.ErrNotFound):
		log.Info("interview not found", idAttr)
		return status.Error(codes.NotFound, "interview not found")
	case errors.Is(err, store.ErrConflict):
		log.Info("state conflict", idAttr)
		if conflictMsg == "" {
			conflictMsg = "interview state changed"
		}
		return status.Error(codes.FailedPrecondition, conflictMsg)
	case errors.Is(err, store.ErrConstraint):
		log.Warn("constraint violation", slog.Any("err", err), idAttr)
		return status.Error(codes.InvalidArgument, "request violates a data constraint")
	case errors.Is(err, store.ErrUnavailable), errors.Is(err, context.DeadlineExceeded):
		log.Error("store unavailable", slog.Any("err", err), idAttr)
		return status.Error(codes.Unavailable, "service temporarily unavailable")
	default:
		log.Error("rpc failed", slog.Any("err", err), idAttr)
		return status.Error(codes.Internal, "internal error")
	}
}

func toWireInterview(iv domain.Interview) *Interview {
	out := &Interview{
		ID:              iv.ID.String(),
		ApplicationID:   iv.ApplicationID,
		JobID:           iv.JobID,
		EmployerID:      iv.EmployerID,
		ApplicantID:     iv.ApplicantID,
		Status:          string(iv.Status),
		ProposedTimes:   iv.ProposedTimes,
		Type:            string(iv.Type),
		DurationMinutes: iv.DurationMinutes,
		Feedback:        iv.Feedback,
		FeedbackRating:  iv.FeedbackRating,
		CancelledBy:     iv.CancelledBy,
		CancelReason:    iv.CancelReason,
		UpdatedAt:       iv.UpdatedAt,
	}
	if iv.ConfirmedTime != nil {
		t := *iv.ConfirmedTime
		out.ConfirmedTime = &t
	}
	return out
}

// unaryHandler adapts one typed method to the handler signature grpc.MethodDesc
// expects, which is what protoc-gen-go-grpc would otherwise generate per method.
func unaryHandler[Req any](method string, call func(InterviewOpsServer, context.Context, *Req) (*InterviewReply, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	fullMethod := "/" + opsServiceName + "/" + method
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(InterviewOpsServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(InterviewOpsServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var InterviewOpsServiceDesc = grpc.ServiceDesc{
	ServiceName: opsServiceName,
	HandlerType: (*InterviewOpsServer)(nil),
	Methods: []grpc.MethodDesc{
		{
			MethodName: "MarkCompleted",
			Handler:    unaryHandler("MarkCompleted", InterviewOpsServer.MarkCompleted),
		},
		{
			MethodName: "MarkNoShow",
			Handler:    unaryHandler("MarkNoShow", InterviewOpsServer.MarkNoShow),
		},
		{
			MethodName: "CancelInterview",
			Handler:    unaryHandler("CancelInterview", InterviewOpsServer.CancelInterview),
		},
		{
			MethodName: "GetInterview",
			Handler:    unaryHandler("GetInterview", InterviewOpsServer.GetInterview),
		},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "interviews/v1/ops.json",
}

func RegisterInterviewOpsServer(s grpc.ServiceRegistrar, srv InterviewOpsServer) {
	s.RegisterService(&InterviewOpsServiceDesc, srv)
}
