package serviceimpl

import (
	"context"
	"time"

	"github.com/google/uuid"

	"taskhub/domain/policy"
	"taskhub/domain/repositories"
	"taskhub/domain/services"
	"taskhub/infrastructure/redis"
	"taskhub/pkg/apperr"
	"taskhub/pkg/logger"
)

const (
	principalCachePrefix = "principal:"
	principalCacheTTL    = 5 * time.Minute
)

type cachedPrincipal struct {
	ID   uuid.UUID `json:"id"`
	Role string    `json:"role"`
}

// PrincipalResolverImpl resolves token subjects against live user records,
// optionally backed by a Redis cache. The cache is a read-through layer;
// admin role changes and deletes call Invalidate so stale entries expire
// immediately instead of after the TTL.
type PrincipalResolverImpl struct {
	userRepo repositories.UserRepository
	cache    *redis.Client // nil when Redis is not configured
}

func NewPrincipalResolver(userRepo repositories.UserRepository, cache *redis.Client) services.PrincipalResolver {
	return &PrincipalResolverImpl{
		userRepo: userRepo,
		cache:    cache,
	}
}

func (r *PrincipalResolverImpl) Resolve(ctx context.Context, subject uuid.UUID) (policy.Principal, error) {
	if r.cache != nil {
		var cached cachedPrincipal
		err := r.cache.GetJSON(ctx, principalCachePrefix+subject.String(), &cached)
		if err == nil {
			return policy.Principal{ID: cached.ID, Role: cached.Role}, nil
		}
		if err != redis.Nil {
			logger.WarnContext(ctx, "Principal cache read failed", "error", err)
		}
	}

	user, err := r.userRepo.GetByID(ctx, subject)
	if err != nil {
		if apperr.IsKind(err, apperr.KindNotFound) {
			// A valid token whose user is gone is an authentication failure,
			// not a permission failure.
			return policy.Principal{}, apperr.Unauthenticated("account no longer exists")
		}
		return policy.Principal{}, err
	}

	principal := policy.Principal{ID: user.ID, Role: user.Role}

	if r.cache != nil {
		entry := cachedPrincipal{ID: principal.ID, Role: principal.Role}
		if err := r.cache.SetJSON(ctx, principalCachePrefix+subject.String(), entry, principalCacheTTL); err != nil {
			logger.WarnContext(ctx, "Principal cache write failed", "error", err)
		}
	}

	return principal, nil
}

func (r *PrincipalResolverImpl) Invalidate(ctx context.Context, subject uuid.UUID) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, principalCachePrefix+subject.String()); err != nil {
		logger.WarnContext(ctx, "Principal cache invalidation failed", "subject", subject, "error", err)
	}
}
