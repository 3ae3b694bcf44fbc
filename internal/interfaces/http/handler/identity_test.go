package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	identityapp "github.com/pentol/backend/internal/application/identity"
	"github.com/pentol/backend/internal/domain/identity"
	"github.com/pentol/backend/internal/domain/organization"
	"github.com/pentol/backend/internal/domain/shared"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

func TestIdentityHandler_Me(t *testing.T) {
	actor := testProfile(identity.RoleMandor)
	profiles := new(MockProfileReader)
	profiles.On("Me", mock.Anything, actor.ID).Return(identityapp.ToMeResponse(actor), nil)
	h := NewIdentityHandler(profiles, new(MockOrganizationLookup))

	w := serve(http.MethodGet, "/me", "/me", "", actor, h.Me)

	assert.Equal(t, http.StatusOK, w.Code)
	data := decodeResponse(t, w).Data.(map[string]any)
	assert.Equal(t, "mandor", data["role"])
	assert.NotEmpty(t, data["permissions"])
}

func TestIdentityHandler_Lookups(t *testing.T) {
	actor := testProfile(identity.RoleAsisten)
	divisiID, blokID, gangID := *actor.DivisiID, uuid.New(), uuid.New()

	lookups := new(MockOrganizationLookup)
	lookups.On("ListDivisi", mock.Anything, actor).Return([]organization.Divisi{{ID: divisiID, Name: "Divisi I"}}, nil)
	lookups.On("ListGangs", mock.Anything, actor, divisiID).Return([]organization.Gang{{ID: gangID, Name: "Gang A"}}, nil)
	lookups.On("ListBloks", mock.Anything, actor, divisiID).Return([]organization.Blok{{ID: blokID, Name: "A01"}}, nil)
	lookups.On("ListTPH", mock.Anything, blokID).Return([]organization.TPH{{NomorTPH: "TPH-01"}}, nil)
	lookups.On("ListPemanen", mock.Anything, gangID).Return([]organization.Pemanen{{Name: "Joko"}}, nil)
	h := NewIdentityHandler(new(MockProfileReader), lookups)

	tests := []struct {
		name    string
		pattern string
		target  string
		handle  func(h *IdentityHandler) func(*gin.Context)
		field   string
		want    string
	}{
		{"divisi", "/org/divisi", "/org/divisi", func(h *IdentityHandler) func(*gin.Context) { return h.ListDivisi }, "name", "Divisi I"},
		{"gangs", "/org/divisi/:id/gangs", "/org/divisi/" + divisiID.String() + "/gangs", func(h *IdentityHandler) func(*gin.Context) { return h.ListGangs }, "name", "Gang A"},
		{"bloks", "/org/divisi/:id/bloks", "/org/divisi/" + divisiID.String() + "/bloks", func(h *IdentityHandler) func(*gin.Context) { return h.ListBloks }, "name", "A01"},
		{"tph", "/org/bloks/:id/tph", "/org/bloks/" + blokID.String() + "/tph", func(h *IdentityHandler) func(*gin.Context) { return h.ListTPH }, "nomor_tph", "TPH-01"},
		{"pemanen", "/org/gangs/:id/pemanen", "/org/gangs/" + gangID.String() + "/pemanen", func(h *IdentityHandler) func(*gin.Context) { return h.ListPemanen }, "name", "Joko"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := serve(http.MethodGet, tt.pattern, tt.target, "", actor, tt.handle(h))

			require.Equal(t, http.StatusOK, w.Code)
			items := decodeResponse(t, w).Data.([]any)
			require.Len(t, items, 1)
			assert.Equal(t, tt.want, items[0].(map[string]any)[tt.field])
		})
	}
	lookups.AssertExpectations(t)
}

func TestIdentityHandler_ListGangsOtherDivision(t *testing.T) {
	actor := testProfile(identity.RoleMandor)
	other := uuid.New()
	lookups := new(MockOrganizationLookup)
	lookups.On("ListGangs", mock.Anything, actor, other).
		Return([]organization.Gang(nil), shared.NewPermissionError("division is outside your scope"))
	h := NewIdentityHandler(new(MockProfileReader), lookups)

	w := serve(http.MethodGet, "/org/divisi/:id/gangs", "/org/divisi/"+other.String()+"/gangs", "", actor, h.ListGangs)
	assert.Equal(t, http.StatusForbidden, w.Code)
}
