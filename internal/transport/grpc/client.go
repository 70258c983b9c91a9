package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/metadata"
)

// OpsClient calls the ops service with the JSON codec, sending token as a
// bearer credential on every call.
type OpsClient struct {
	cc    grpc.ClientConnInterface
	token string
}

func NewOpsClient(cc grpc.ClientConnInterface, token string) *OpsClient {
	return &OpsClient{cc: cc, token: token}
}

func (c *OpsClient) MarkCompleted(ctx context.Context, req *MarkCompletedRequest) (*InterviewReply, error) {
	return c.invoke(ctx, "MarkCompleted", req)
}

func (c *OpsClient) MarkNoShow(ctx context.Context, req *MarkNoShowRequest) (*InterviewReply, error) {
	return c.invoke(ctx, "MarkNoShow", req)
}

func (c *OpsClient) CancelInterview(ctx context.Context, req *CancelInterviewRequest) (*InterviewReply, error) {
	return c.invoke(ctx, "CancelInterview", req)
}

func (c *OpsClient) GetInterview(ctx context.Context, req *GetInterviewRequest) (*InterviewReply, error) {
	return c.invoke(ctx, "GetInterview", req)
}

func (c *OpsClient) invoke(ctx context.Context, method string, req any) (*InterviewReply, error) {
	if c.token != "" {
		ctx = metadata.AppendToOutgoingContext(ctx, authorizationMetadata, "Bearer "+c.token)
	}
	out := new(InterviewReply)
	err := c.cc.Invoke(ctx, "/"+opsServiceName+"/"+method, req, out, grpc.CallContentSubtype(codecName))
	if err != nil {
		return nil, err
	}
	return out, nil
}
