package serviceimpl

import (
	"context"
	"errors"
	"time"

	"golang.org/x/crypto/bcrypt"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/pkg/apperr"
	"taskhub/pkg/config"
	"taskhub/pkg/logger"
	"taskhub/pkg/utils"
)

type AuthServiceImpl struct {
	userRepo repositories.UserRepository
	jwtCfg   config.JWTConfig
}

func NewAuthService(userRepo repositories.UserRepository, jwtCfg config.JWTConfig) services.AuthService {
	return &AuthServiceImpl{
		userRepo: userRepo,
		jwtCfg:   jwtCfg,
	}
}

func (s *AuthServiceImpl) Register(ctx context.Context, req *dto.RegisterRequest) (*dto.TokenResponse, error) {
	existing, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		return nil, apperr.Conflict("email already registered")
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to hash password", err)
	}

	role := req.Role
	if role == "" {
		role = models.RoleUser
	}

	user := &models.User{
		Email:          req.Email,
		Name:           req.Name,
		Role:           role,
		HashedPassword: string(hashed),
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, err
	}

	logger.InfoContext(ctx, "User registered", "user_id", user.ID, "role", user.Role)
	return s.tokenResponse(user)
}

func (s *AuthServiceImpl) Login(ctx context.Context, req *dto.LoginRequest) (*dto.TokenResponse, error) {
	user, err := s.userRepo.GetByEmail(ctx, req.Email)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// Unknown email and wrong password look the same to the caller.
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.HashedPassword), []byte(req.Password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return nil, apperr.Unauthenticated("invalid email or password")
		}
		return nil, apperr.Wrap(apperr.KindInternal, "failed to verify password", err)
	}

	logger.InfoContext(ctx, "User logged in", "user_id", user.ID)
	return s.tokenResponse(user)
}

func (s *AuthServiceImpl) Me(ctx context.Context, p policy.Principal) (*dto.UserResponse, error) {
	user, err := s.userRepo.GetByID(ctx, p.ID)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			return nil, apperr.Unauthenticated("account no longer exists")
		}
		return nil, err
	}
	return dto.UserToUserResponse(user), nil
}

func (s *AuthServiceImpl) GenerateToken(user *models.User) (string, error) {
	expiry := time.Duration(s.jwtCfg.ExpiryMinutes) * time.Minute
	return utils.GenerateToken(user.ID, user.Role, s.jwtCfg.Secret, expiry)
}

func (s *AuthServiceImpl) tokenResponse(user *models.User) (*dto.TokenResponse, error) {
	token, err := s.GenerateToken(user)
	if err != nil {
		return nil, apperr.Wrap(apperr.KindInternal, "failed to sign token", err)
	}
	return &dto.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		User:        *dto.UserToUserResponse(user),
	}, nil
}
