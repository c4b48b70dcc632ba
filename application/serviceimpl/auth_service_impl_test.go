package serviceimpl

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"taskhub/domain/dto"
	"taskhub/domain/models"
	"taskhub/domain/policy"
	"taskhub/domain/services"
	"taskhub/infrastructure/memory"
	"taskhub/pkg/apperr"
	"taskhub/pkg/config"
	"taskhub/pkg/utils"
)

const testJWTSecret = "test-secret"

func newAuthTestEnv() (*memory.UserRepository, services.AuthService) {
	users := memory.NewUserRepository()
	service := NewAuthService(users, config.JWTConfig{
		Secret:        testJWTSecret,
		ExpiryMinutes: 60,
	})
	return users, service
}

func TestRegisterAndLogin(t *testing.T) {
	_, auth := newAuthTestEnv()
	ctx := context.Background()

	token, err := auth.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)
	assert.NotEmpty(t, token.AccessToken)
	assert.Equal(t, "Bearer", token.TokenType)
	// Role defaults to user when omitted.
	assert.Equal(t, models.RoleUser, token.User.Role)

	// The signed token round-trips through validation.
	identity, err := utils.ValidateToken(token.AccessToken, testJWTSecret)
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, identity.Subject)
	assert.Equal(t, models.RoleUser, identity.Role)

	login, err := auth.Login(ctx, &dto.LoginRequest{
		Email:    "alice@example.com",
		Password: "password123",
	})
	require.NoError(t, err)
	assert.Equal(t, token.User.ID, login.User.ID)
}

func TestRegisterDuplicateEmail(t *testing.T) {
	_, auth := newAuthTestEnv()
	ctx := context.Background()

	_, err := auth.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)

	_, err = auth.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "different",
		Name:     "Imposter",
	})
	assert.True(t, apperr.IsKind(err, apperr.KindConflict))
}

func TestLoginBadCredentials(t *testing.T) {
	_, auth := newAuthTestEnv()
	ctx := context.Background()

	_, err := auth.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)

	// Wrong password and unknown email both come back as the same
	// authentication failure.
	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "alice@example.com", Password: "wrong"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))

	_, err = auth.Login(ctx, &dto.LoginRequest{Email: "nobody@example.com", Password: "password123"})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestRegisterAdminRole(t *testing.T) {
	_, auth := newAuthTestEnv()

	token, err := auth.Register(context.Background(), &dto.RegisterRequest{
		Email:    "root@example.com",
		Password: "password123",
		Name:     "Root",
		Role:     models.RoleAdmin,
	})
	require.NoError(t, err)
	assert.Equal(t, models.RoleAdmin, token.User.Role)
}

func TestMe(t *testing.T) {
	users, auth := newAuthTestEnv()
	ctx := context.Background()

	token, err := auth.Register(ctx, &dto.RegisterRequest{
		Email:    "alice@example.com",
		Password: "password123",
		Name:     "Alice",
	})
	require.NoError(t, err)

	me, err := auth.Me(ctx, policy.Principal{ID: token.User.ID, Role: token.User.Role})
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", me.Email)

	// A principal whose record is gone resolves to unauthenticated.
	require.NoError(t, users.Delete(ctx, token.User.ID))
	_, err = auth.Me(ctx, policy.Principal{ID: token.User.ID, Role: token.User.Role})
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}

func TestPrincipalResolver(t *testing.T) {
	users := memory.NewUserRepository()
	resolver := NewPrincipalResolver(users, nil)
	ctx := context.Background()

	user := &models.User{Email: "alice@example.com", Name: "Alice", Role: models.RoleAdmin}
	require.NoError(t, users.Create(ctx, user))

	principal, err := resolver.Resolve(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.ID, principal.ID)
	assert.Equal(t, models.RoleAdmin, principal.Role)

	_, err = resolver.Resolve(ctx, uuid.New())
	assert.True(t, apperr.IsKind(err, apperr.KindUnauthenticated))
}
