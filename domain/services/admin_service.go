package services

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/policy"
)

type AdminService interface {
	ListUsers(ctx context.Context, p policy.Principal) ([]*dto.UserResponse, error)
	UpdateUser(ctx context.Context, p policy.Principal, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error)
	// DeleteUser removes the user and cascades deletion of their owned
	// tasks. Self-deletion is forbidden, even for admins.
	DeleteUser(ctx context.Context, p policy.Principal, userID uuid.UUID) error
}
