package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/application/policy"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"go.uber.org/zap"
)

// ProfileService resolves authenticated users to their estate profiles
type ProfileService struct {
	profiles identity.ProfileRepository
	policy   *policy.Policy
	logger   *zap.Logger
}

// NewProfileService creates a new ProfileService
func NewProfileService(profiles identity.ProfileRepository, p *policy.Policy, logger *zap.Logger) *ProfileService {
	if p == nil {
		p = policy.Default()
	}
	return &ProfileService{profiles: profiles, policy: p, logger: logger}
}

// Resolve loads the profile of an authenticated user.
// A token for a user without a profile is a permission error, not a 404.
func (s *ProfileService) Resolve(ctx context.Context, userID uuid.UUID) (*identity.Profile, error) {
	var profile *identity.Profile
	err := s.policy.Read(ctx, "profile.resolve", func(ctx context.Context) error {
		var err error
		profile, err = s.profiles.FindByID(ctx, userID)
		return err
	})
	if err != nil {
		if shared.HasCode(err, shared.CodeNotFound) {
			logger.For(ctx, s.logger).Warn("Token for unknown profile", zap.String("user_id", userID.String()))
			return nil, shared.NewPermissionError("no profile is registered for this user")
		}
		return nil, err
	}
	if !profile.Role.IsValid() {
		return nil, shared.NewPermissionError("profile has no valid role").
			WithDetail("role", profile.Role.String())
	}
	return profile, nil
}

// Me returns the profile with its capabilities and permissions
func (s *ProfileService) Me(ctx context.Context, userID uuid.UUID) (*MeResponse, error) {
	profile, err := s.Resolve(ctx, userID)
	if err != nil {
		return nil, err
	}
	return ToMeResponse(profile), nil
}
