// Package auth resolves the calling identity. The job board issues the tokens;
// this service only verifies them and carries the resulting Actor in the context.
package auth

import (
	"context"
	"fmt"
)

type Role string

const (
	RoleEmployer  Role = "employer"
	RoleApplicant Role = "applicant"
	RoleAdmin     Role = "admin"
)

func ParseRole(s string) (Role, error) {
	switch r := Role(s); r {
	case RoleEmployer, RoleApplicant, RoleAdmin:
		return r, nil
	default:
		return "", fmt.Errorf("unknown role %q", s)
	}
}

type Actor struct {
	ID   string
	Role Role
}

func (a Actor) IsAdmin() bool {
	return a.Role == RoleAdmin
}

type actorKey struct{}

func WithActor(ctx context.Context, a Actor) context.Context {
	return context.WithValue(ctx, actorKey{}, a)
}

func ActorFrom(ctx context.Context) (Actor, bool) {
	a, ok := ctx.Value(actorKey{}).(Actor)
	return a, ok && a.ID != ""
}
