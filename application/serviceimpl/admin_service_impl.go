package serviceimpl

import (
	"context"

	"github.com/google/uuid"

	"taskhub/domain/dto"
	"taskhub/domain/policy"
	"taskhub/domain/ports"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/pkg/apperr"
	"taskhub/pkg/logger"
)

type AdminServiceImpl struct {
	userRepo repositories.UserRepository
	taskRepo repositories.TaskRepository
	resolver services.PrincipalResolver
	events   ports.EventPublisher
}

func NewAdminService(
	userRepo repositories.UserRepository,
	taskRepo repositories.TaskRepository,
	resolver services.PrincipalResolver,
	events ports.EventPublisher,
) services.AdminService {
	return &AdminServiceImpl{
		userRepo: userRepo,
		taskRepo: taskRepo,
		resolver: resolver,
		events:   events,
	}
}

func (s *AdminServiceImpl) ListUsers(ctx context.Context, p policy.Principal) ([]*dto.UserResponse, error) {
	if !policy.CanManageUsers(p) {
		return nil, apperr.Forbidden("admin access required")
	}

	users, err := s.userRepo.List(ctx)
	if err != nil {
		return nil, err
	}

	responses := make([]*dto.UserResponse, 0, len(users))
	for _, user := range users {
		responses = append(responses, dto.UserToUserResponse(user))
	}
	return responses, nil
}

func (s *AdminServiceImpl) UpdateUser(ctx context.Context, p policy.Principal, userID uuid.UUID, req *dto.UpdateUserRequest) (*dto.UserResponse, error) {
	if !policy.CanManageUsers(p) {
		return nil, apperr.Forbidden("admin access required")
	}

	fields := map[string]interface{}{}
	if req.Name != nil {
		fields["name"] = *req.Name
	}
	if req.Email != nil {
		fields["email"] = *req.Email
	}
	if req.Role != nil {
		fields["role"] = *req.Role
	}

	if len(fields) > 0 {
		if err := s.userRepo.UpdatePartial(ctx, userID, fields); err != nil {
			return nil, err
		}
		// A role change must take effect on the target's next request, not
		// after the cache TTL.
		s.resolver.Invalidate(ctx, userID)
	}

	user, err := s.userRepo.GetByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "User updated", "user_id", userID, "by", p.ID)
	return dto.UserToUserResponse(user), nil
}

func (s *AdminServiceImpl) DeleteUser(ctx context.Context, p policy.Principal, userID uuid.UUID) error {
	if !policy.CanManageUsers(p) {
		return apperr.Forbidden("admin access required")
	}
	if !policy.CanDeleteUser(p, userID) {
		return apperr.Forbidden("you cannot delete your own account")
	}

	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return err
	}

	// Owned tasks go first. Their attachment blobs are left in storage;
	// the sweeper reclaims them later. A cascade failure does not stop the
	// user delete, but it is reported once both steps ran.
	removed, cascadeErr := s.taskRepo.DeleteByOwner(ctx, userID)
	if cascadeErr != nil {
		logger.WarnContext(ctx, "Failed to cascade task deletion",
			"user_id", userID, "error", cascadeErr)
	} else if removed > 0 {
		logger.InfoContext(ctx, "Owned tasks deleted with user",
			"user_id", userID, "count", removed)
	}

	if err := s.userRepo.Delete(ctx, userID); err != nil {
		return err
	}

	s.resolver.Invalidate(ctx, userID)

	logger.InfoContext(ctx, "User deleted", "user_id", userID, "by", p.ID)
	publishEvent(ctx, s.events, ports.SubjectUserDeleted, map[string]interface{}{
		"userId": userID,
	})

	if cascadeErr != nil {
		return apperr.Storage("user deleted but owned tasks could not be removed", cascadeErr)
	}
	return nil
}
