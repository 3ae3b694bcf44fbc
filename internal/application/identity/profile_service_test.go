package identity

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// MockProfileRepository is a mock implementation of identity.ProfileRepository
type MockProfileRepository struct {
	mock.Mock
}

func (m *MockProfileRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Profile, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Profile), args.Error(1)
}

func (m *MockProfileRepository) Save(ctx context.Context, profile *identity.Profile) error {
	args := m.Called(ctx, profile)
	return args.Error(0)
}

func TestProfileService_Me(t *testing.T) {
	repo := new(MockProfileRepository)
	svc := NewProfileService(repo, nil, zap.NewNop())

	divisi := uuid.New()
	profile := &identity.Profile{
		ID:       uuid.New(),
		Email:    "mandor@pentol.test",
		FullName: "Pak Mandor",
		Role:     identity.RoleMandor,
		DivisiID: &divisi,
	}
	repo.On("FindByID", mock.Anything, profile.ID).Return(profile, nil)

	me, err := svc.Me(context.Background(), profile.ID)
	require.NoError(t, err)
	assert.Equal(t, "mandor", me.Role)
	assert.Equal(t, []string{"mandor", "approval", "profile"}, me.Capabilities)
	assert.Contains(t, me.Permissions, "approve")
	assert.NotContains(t, me.Permissions, "create_spb")
	assert.False(t, me.EstateWide)
	assert.Equal(t, &divisi, me.DivisiID)
	repo.AssertExpectations(t)
}

func TestProfileService_Resolve_UnknownUserIsForbidden(t *testing.T) {
	repo := new(MockProfileRepository)
	svc := NewProfileService(repo, nil, zap.NewNop())

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.NewNotFoundError("profile", id))

	_, err := svc.Resolve(context.Background(), id)
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}

func TestProfileService_Resolve_InvalidRole(t *testing.T) {
	repo := new(MockProfileRepository)
	svc := NewProfileService(repo, nil, zap.NewNop())

	profile := &identity.Profile{ID: uuid.New(), Role: "tamu"}
	repo.On("FindByID", mock.Anything, profile.ID).Return(profile, nil)

	_, err := svc.Resolve(context.Background(), profile.ID)
	assert.True(t, shared.HasCode(err, shared.CodeForbidden))
}

func TestProfileService_Resolve_PassesTransientErrors(t *testing.T) {
	repo := new(MockProfileRepository)
	svc := NewProfileService(repo, nil, zap.NewNop())

	id := uuid.New()
	repo.On("FindByID", mock.Anything, id).Return(nil, shared.NewTransientError("db down", nil))

	_, err := svc.Resolve(context.Background(), id)
	assert.True(t, shared.IsTransient(err))
}
