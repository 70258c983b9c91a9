package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"interviews/backend/internal/auth"
	"interviews/backend/internal/config"
	"interviews/backend/internal/service/interviews"
	grpcTransport "interviews/backend/internal/transport/grpc"
)

var outcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Record the outcome of a confirmed interview as an operator",
	Long: `Marks a confirmed interview completed or no-show. With --grpc-addr the call goes through a running
server's operator surface; otherwise it runs directly against the configured store.`,
	RunE: runOutcome,
}

var (
	outcomeID        string
	outcomeCompleted bool
	outcomeNoShow    bool
	outcomeFeedback  string
	outcomeRating    int
	outcomeActor     string
	outcomeGRPCAddr  string
)

func init() {
	outcomeCmd.Flags().StringVar(&outcomeID, "id", "", "Interview id")
	outcomeCmd.Flags().BoolVar(&outcomeCompleted, "completed", false, "Mark the interview completed")
	outcomeCmd.Flags().BoolVar(&outcomeNoShow, "no-show", false, "Mark the interview as a no-show")
	outcomeCmd.Flags().StringVar(&outcomeFeedback, "feedback", "", "Feedback recorded with --completed")
	outcomeCmd.Flags().IntVar(&outcomeRating, "rating", 0, "Rating 1-5 recorded with --completed")
	outcomeCmd.Flags().StringVar(&outcomeActor, "actor", "ops-cli", "Operator id recorded in logs and in the minted admin token")
	outcomeCmd.Flags().StringVar(&outcomeGRPCAddr, "grpc-addr", "", "Operator gRPC address of a running server")
	_ = outcomeCmd.MarkFlagRequired("id")
	outcomeCmd.MarkFlagsMutuallyExclusive("completed", "no-show")
	outcomeCmd.MarkFlagsOneRequired("completed", "no-show")
}

func runOutcome(cmd *cobra.Command, _ []string) error {
	id, err := uuid.Parse(outcomeID)
	if err != nil {
		return fmt.Errorf("--id must be a UUID: %w", err)
	}
	if outcomeNoShow && (outcomeFeedback != "" || outcomeRating != 0) {
		return errors.New("--feedback and --rating only apply to --completed")
	}
	var rating *int
	if outcomeRating != 0 {
		rating = &outcomeRating
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	var out any
	if outcomeGRPCAddr != "" {
		out, err = outcomeRemote(ctx, id, rating)
	} else {
		out, err = outcomeLocal(ctx, id, rating)
	}
	if err != nil {
		return err
	}

	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

// outcomeRemote signs a short-lived admin token with the shared JWT secret; the
// server rejects ops calls without one.
func outcomeRemote(ctx context.Context, id uuid.UUID, rating *int) (any, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	tokens, err := auth.NewTokens(cfg.JWTSecret)
	if err != nil {
		return nil, fmt.Errorf("jwt secret: %w", err)
	}
	token, err := tokens.Issue(auth.Actor{ID: outcomeActor, Role: auth.RoleAdmin}, 5*time.Minute)
	if err != nil {
		return nil, err
	}

	conn, err := grpc.NewClient(outcomeGRPCAddr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	client := grpcTransport.NewOpsClient(conn, token)
	if outcomeNoShow {
		return client.MarkNoShow(ctx, &grpcTransport.MarkNoShowRequest{InterviewID: id.String()})
	}
	return client.MarkCompleted(ctx, &grpcTransport.MarkCompletedRequest{
		InterviewID:    id.String(),
		Feedback:       outcomeFeedback,
		FeedbackRating: rating,
	})
}

func outcomeLocal(ctx context.Context, id uuid.UUID, rating *int) (any, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if cfg.StoreDriver == config.StoreDriverMemory {
		return nil, errors.New("outcome needs a persistent store; use --grpc-addr with a memory-backed server")
	}
	log := newLogger(cfg.LogLevel)

	be, err := openBackend(ctx, cfg, "", log)
	if err != nil {
		return nil, err
	}
	defer be.close()

	svc := interviews.NewService(be.interviews, be.apps, nil, interviews.WithLogger(log))
	actor := auth.Actor{ID: outcomeActor, Role: auth.RoleAdmin}
	if outcomeNoShow {
		return svc.MarkNoShow(ctx, actor, id)
	}
	return svc.MarkCompleted(ctx, actor, id, interviews.CompleteInput{Feedback: outcomeFeedback, FeedbackRating: rating})
}
