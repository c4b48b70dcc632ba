package services

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
)

type AuthService interface {
	Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error)
	Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error)
	Me(ctx context.Context, p policy.Principal) (*dto.UserResponse, error)
	GenerateToken(user *models.User) (string, error)
}

// PrincipalResolver turns a verified token subject into a Principal backed
// by a live user record. A subject with no backing record resolves to an
// Unauthenticated error, never Forbidden.
type PrincipalResolver interface {
	Resolve(ctx context.Context, subject uuid.UUID) (policy.Principal, error)
	// Invalidate drops any cached entry for the subject, called after
	// admin updates or deletes.
	Invalidate(ctx context.Context, subject uuid.UUID)
}
