package middleware

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/pentol/backend/internal/infrastructure/logger"
	"github.com/pentol/backend/internal/interfaces/http/dto"
	"go.uber.org/zap"
)

// ProfileKey is the gin context key holding the resolved *identity.Profile
const ProfileKey = "profile"

// ProfileResolver loads the estate profile of an authenticated user
type ProfileResolver interface {
	Resolve(ctx context.Context, userID uuid.UUID) (*identity.Profile, error)
}

// ResolveProfile turns the JWT user id into a profile. Role and division
// always come from the stored profile, never from the token.
// Must run after JWTAuthMiddleware.
func ResolveProfile(resolver ProfileResolver, log *zap.Logger) gin.HandlerFunc {
	if log == nil {
		log = zap.NewNop()
	}
	return func(c *gin.Context) {
		userID, err := uuid.Parse(GetJWTUserID(c))
		if err != nil {
			abortWithError(c, http.StatusUnauthorized, dto.ErrCodeTokenInvalid, "Token does not carry a valid user id")
			return
		}

		profile, err := resolver.Resolve(c.Request.Context(), userID)
		if err != nil {
			code := dto.ErrCodeInternal
			message := "Failed to resolve profile"
			var de *shared.DomainError
			if errors.As(err, &de) {
				code = dto.NormalizeErrorCode(de.Code)
				message = de.Message
			}
			log.Warn("Profile resolution failed",
				zap.String("user_id", userID.String()),
				zap.Error(err),
			)
			abortWithError(c, dto.GetHTTPStatus(code), code, message)
			return
		}

		c.Set(ProfileKey, profile)

		divisi := ""
		if profile.DivisiID != nil {
			divisi = profile.DivisiID.String()
		}
		ctx, _ := logger.WithActor(c.Request.Context(), logger.FromContext(c.Request.Context()), profile.Role.String(), divisi)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// GetProfile returns the profile resolved for this request, or nil
func GetProfile(c *gin.Context) *identity.Profile {
	if v, ok := c.Get(ProfileKey); ok {
		if p, ok := v.(*identity.Profile); ok {
			return p
		}
	}
	return nil
}

// RequireAnyAction rejects profiles whose role may perform none of actions.
// Services still authorize every operation.
func RequireAnyAction(actions ...identity.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		profile := GetProfile(c)
		if profile == nil {
			abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "No authenticated profile")
			return
		}
		for _, a := range actions {
			if profile.Role.Can(a) {
				c.Next()
				return
			}
		}
		abortWithError(c, http.StatusForbidden, dto.ErrCodeForbidden, "Access denied: role "+profile.Role.String()+" may not use this resource")
	}
}
