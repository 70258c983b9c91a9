package grpc

import (
	"context"
	"net"
	"testing"
	"time"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	healthpb "google.golang.org/grpc/health/grpc_health_v1"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/domain"
	"interviews/backend/internal/service/interviews"
	"interviews/backend/internal/store"
	"interviews/backend/internal/store/memory"
)

const testSecret = "grpc-test-secret-0123456789"

func testTokens(t *testing.T) *auth.Tokens {
	t.Helper()
	tokens, err := auth.NewTokens(testSecret)
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}
	return tokens
}

func issue(t *testing.T, tokens *auth.Tokens, actor auth.Actor) string {
	t.Helper()
	token, err := tokens.Issue(actor, time.Hour)
	if err != nil {
		t.Fatalf("Issue: %v", err)
	}
	return token
}

func startOps(t *testing.T, svc *interviews.Service, tokens *auth.Tokens) *grpc.ClientConn {
	t.Helper()

	lis := bufconn.Listen(1 << 20)
	srv, hs := NewServer(NewOpsServer(svc, discardLogger()), tokens, 2*time.Second, discardLogger())
	MarkServing(hs)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
	)
	if err != nil {
		t.Fatalf("dial bufnet: %v", err)
	}
	t.Cleanup(func() { _ = conn.Close() })
	return conn
}

func TestOpsOverBufconn_OutcomeLifecycle(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	apps := memory.NewApplications(store.Application{ID: "a1", JobID: "job-1", EmployerID: "emp-1", ApplicantID: "app-1"})
	svc := interviews.NewService(memory.NewInterviewRepo(), apps, nil)

	slot := time.Now().UTC().Add(48 * time.Hour).Truncate(time.Second)
	iv, err := svc.Propose(ctx, auth.Actor{ID: "emp-1", Role: auth.RoleEmployer}, interviews.ProposeInput{
		ApplicationID:   "a1",
		ProposedTimes:   []time.Time{slot},
		Type:            domain.InterviewTypePhone,
		DurationMinutes: 30,
	})
	if err != nil {
		t.Fatalf("Propose: %v", err)
	}

	tokens := testTokens(t)
	client := NewOpsClient(startOps(t, svc, tokens), issue(t, tokens, auth.Actor{ID: "ops-1", Role: auth.RoleAdmin}))

	_, err = client.MarkNoShow(ctx, &MarkNoShowRequest{InterviewID: iv.ID.String()})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("MarkNoShow on proposed: code = %v, want FailedPrecondition", status.Code(err))
	}

	if _, err := svc.Confirm(ctx, auth.Actor{ID: "app-1", Role: auth.RoleApplicant}, iv.ID, slot); err != nil {
		t.Fatalf("Confirm: %v", err)
	}

	rating := 3
	resp, err := client.MarkCompleted(ctx, &MarkCompletedRequest{InterviewID: iv.ID.String(), Feedback: "ok", FeedbackRating: &rating})
	if err != nil {
		t.Fatalf("MarkCompleted: %v", err)
	}
	if resp.Interview.Status != string(domain.StatusCompleted) {
		t.Fatalf("status = %q, want completed", resp.Interview.Status)
	}
	if resp.Interview.ConfirmedTime == nil || !resp.Interview.ConfirmedTime.Equal(slot) {
		t.Fatalf("confirmed time = %v, want %v", resp.Interview.ConfirmedTime, slot)
	}

	_, err = client.CancelInterview(ctx, &CancelInterviewRequest{InterviewID: iv.ID.String(), Reason: "late"})
	if status.Code(err) != codes.FailedPrecondition {
		t.Fatalf("Cancel after completion: code = %v, want FailedPrecondition", status.Code(err))
	}

	got, err := client.GetInterview(ctx, &GetInterviewRequest{InterviewID: iv.ID.String()})
	if err != nil {
		t.Fatalf("GetInterview: %v", err)
	}
	if got.Interview.Feedback != "ok" || got.Interview.FeedbackRating == nil || *got.Interview.FeedbackRating != 3 {
		t.Fatalf("feedback not persisted: %+v", got.Interview)
	}

	_, err = client.GetInterview(ctx, &GetInterviewRequest{InterviewID: "00000000-0000-0000-0000-000000000001"})
	if status.Code(err) != codes.NotFound {
		t.Fatalf("GetInterview missing: code = %v, want NotFound", status.Code(err))
	}
}

func TestOpsOverBufconn_RequiresAdminTokenAndReportsHealth(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	svc := interviews.NewService(memory.NewInterviewRepo(), memory.NewApplications(), nil)
	tokens := testTokens(t)
	conn := startOps(t, svc, tokens)

	otherTokens, err := auth.NewTokens("some-other-secret-0123456789")
	if err != nil {
		t.Fatalf("NewTokens: %v", err)
	}

	tests := []struct {
		name string
		ctx  context.Context
		want codes.Code
	}{
		{"no token", ctx, codes.Unauthenticated},
		{
			name: "actor header without token",
			ctx:  metadata.AppendToOutgoingContext(ctx, "x-actor-id", "ops-1"),
			want: codes.Unauthenticated,
		},
		{
			name: "token signed with another secret",
			ctx:  metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+issue(t, otherTokens, auth.Actor{ID: "ops-1", Role: auth.RoleAdmin})),
			want: codes.Unauthenticated,
		},
		{
			name: "employer token",
			ctx:  metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+issue(t, tokens, auth.Actor{ID: "emp-1", Role: auth.RoleEmployer})),
			want: codes.PermissionDenied,
		},
		{
			name: "admin token",
			ctx:  metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+issue(t, tokens, auth.Actor{ID: "ops-1", Role: auth.RoleAdmin})),
			want: codes.NotFound,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewOpsClient(conn, "").GetInterview(tt.ctx, &GetInterviewRequest{InterviewID: "00000000-0000-0000-0000-000000000001"})
			if got := status.Code(err); got != tt.want {
				t.Fatalf("code = %v, want %v", got, tt.want)
			}
		})
	}

	hc := healthpb.NewHealthClient(conn)
	for _, name := range []string{"", opsServiceName} {
		resp, err := hc.Check(ctx, &healthpb.HealthCheckRequest{Service: name})
		if err != nil {
			t.Fatalf("health check %q: %v", name, err)
		}
		if resp.Status != healthpb.HealthCheckResponse_SERVING {
			t.Fatalf("health %q = %v, want SERVING", name, resp.Status)
		}
	}
}
